package report

import (
	"bytes"
	"testing"

	"github.com/podkolzin/go-hero-metrics/internal/model"
)

func TestWriteStrategyCSV(t *testing.T) {
	results := []model.StrategyResult{
		{StrategyGroup: "Pct10", HeroFilter: "none", OddsCondition: "<1.6", Metric: "WR_DELTA",
			DeltaThreshold: 100, Bets: 1, Wins: 1, Losses: 0, WinPct: 100,
			FinalBank: 1050, Profit: 50, TotalStaked: 100, ROI: 0.5, MaxDrawdown: 0, MaxStake: 100},
	}

	var buf bytes.Buffer
	if err := WriteStrategyCSV(&buf, results); err != nil {
		t.Fatalf("WriteStrategyCSV: %v", err)
	}

	want := "strategy_group,hero_filter,odds_condition,metric,delta_threshold," +
		"bets,wins,losses,win_pct,final_bank,profit,total_staked,roi,max_drawdown,max_stake\n" +
		"Pct10,none,<1.6,WR_DELTA,100,1,1,0,100.00,1050,50,100,0.5000,0,100\n"
	if buf.String() != want {
		t.Errorf("csv mismatch:\n got %q\nwant %q", buf.String(), want)
	}
}

func TestWriteMartingaleCSV(t *testing.T) {
	results := []model.MartingaleResult{
		{OddsCap: 1.9, DeltaThreshold: 50, TotalTrades: 4, Wins: 1, Losses: 3,
			MaxLosingStreak: 3, BaseBet: 66, FinalBank: 802},
		{OddsCap: 1.2, DeltaThreshold: 400, Bankrupt: true, FinalBank: 0},
	}

	var buf bytes.Buffer
	if err := WriteMartingaleCSV(&buf, results); err != nil {
		t.Fatalf("WriteMartingaleCSV: %v", err)
	}

	want := "odds_cap,delta_threshold,total_trades,wins,losses,max_losing_streak,base_bet,final_bank,bankrupt\n" +
		"1.9,50,4,1,3,3,66,802,0\n" +
		"1.2,400,0,0,0,0,0,0,1\n"
	if buf.String() != want {
		t.Errorf("csv mismatch:\n got %q\nwant %q", buf.String(), want)
	}
}

func TestWriteProjectionCSV(t *testing.T) {
	rows := []model.ProjectedMatch{
		{Delta: -27.5, OddsTeam1: 1.5, OddsTeam2: 2.4, Winner: model.SideTeam1},
		{Delta: 310, OddsTeam1: 2.1, OddsTeam2: 1.7, Winner: model.SideTeam2},
	}

	var buf bytes.Buffer
	if err := WriteProjectionCSV(&buf, rows); err != nil {
		t.Fatalf("WriteProjectionCSV: %v", err)
	}

	want := "delta,odds_team1,odds_team2,winner\n" +
		"-27.5,1.5,2.4,team1\n" +
		"310,2.1,1.7,team2\n"
	if buf.String() != want {
		t.Errorf("csv mismatch:\n got %q\nwant %q", buf.String(), want)
	}
}
