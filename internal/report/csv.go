package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/podkolzin/go-hero-metrics/internal/model"
)

// WriteStrategyCSV writes strategy results in grid order with a fixed
// header. Downstream spreadsheets key on these exact column names.
func WriteStrategyCSV(w io.Writer, results []model.StrategyResult) error {
	cw := csv.NewWriter(w)

	header := []string{
		"strategy_group", "hero_filter", "odds_condition", "metric", "delta_threshold",
		"bets", "wins", "losses", "win_pct", "final_bank", "profit", "total_staked",
		"roi", "max_drawdown", "max_stake",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range results {
		row := []string{
			r.StrategyGroup,
			r.HeroFilter,
			r.OddsCondition,
			r.Metric,
			strconv.Itoa(r.DeltaThreshold),
			strconv.Itoa(r.Bets),
			strconv.Itoa(r.Wins),
			strconv.Itoa(r.Losses),
			fmt.Sprintf("%.2f", r.WinPct),
			strconv.Itoa(r.FinalBank),
			strconv.Itoa(r.Profit),
			strconv.Itoa(r.TotalStaked),
			fmt.Sprintf("%.4f", r.ROI),
			strconv.Itoa(r.MaxDrawdown),
			strconv.Itoa(r.MaxStake),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// WriteMartingaleCSV writes martingale results in grid order.
func WriteMartingaleCSV(w io.Writer, results []model.MartingaleResult) error {
	cw := csv.NewWriter(w)

	header := []string{
		"odds_cap", "delta_threshold", "total_trades", "wins", "losses",
		"max_losing_streak", "base_bet", "final_bank", "bankrupt",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range results {
		bankrupt := "0"
		if r.Bankrupt {
			bankrupt = "1"
		}
		row := []string{
			strconv.FormatFloat(r.OddsCap, 'g', -1, 64),
			strconv.Itoa(r.DeltaThreshold),
			strconv.Itoa(r.TotalTrades),
			strconv.Itoa(r.Wins),
			strconv.Itoa(r.Losses),
			strconv.Itoa(r.MaxLosingStreak),
			strconv.Itoa(r.BaseBet),
			strconv.Itoa(r.FinalBank),
			bankrupt,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// WriteProjectionCSV writes the projected dataset in input row order.
func WriteProjectionCSV(w io.Writer, rows []model.ProjectedMatch) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"delta", "odds_team1", "odds_team2", "winner"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range rows {
		row := []string{
			strconv.FormatFloat(r.Delta, 'f', -1, 64),
			strconv.FormatFloat(r.OddsTeam1, 'f', -1, 64),
			strconv.FormatFloat(r.OddsTeam2, 'f', -1, 64),
			r.Winner.String(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}
