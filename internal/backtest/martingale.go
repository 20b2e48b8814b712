package backtest

import (
	"math"

	"github.com/podkolzin/go-hero-metrics/internal/model"
)

// RunMartingale sizes and replays a loss-doubling ladder for every
// odds-cap x threshold cell. The base bet is sized so the historical worst
// losing streak is survivable: a streak of S doublings needs 2^(S+1)-1
// bankroll units.
func RunMartingale(matches []model.ProjectedMatch, cfg Config) []model.MartingaleResult {
	results := make([]model.MartingaleResult, 0, len(cfg.OddsCaps)*len(cfg.DeltaThresholds))
	for _, oddsCap := range cfg.OddsCaps {
		for _, threshold := range cfg.DeltaThresholds {
			results = append(results, runMartingale(matches, cfg, oddsCap, threshold))
		}
	}
	return results
}

// trade is one eligible entry: the decided side won or it did not.
type trade struct {
	won  bool
	odds float64
}

func runMartingale(matches []model.ProjectedMatch, cfg Config, oddsCap float64, threshold int) model.MartingaleResult {
	res := model.MartingaleResult{
		OddsCap:        oddsCap,
		DeltaThreshold: threshold,
		FinalBank:      int(math.Round(cfg.StartBankroll)),
	}

	// A zero delta gives no side to back, so unlike the flat-pct strategy
	// the cap comparison here keeps strictly-below odds only.
	var trades []trade
	for _, m := range matches {
		if m.Delta == 0 || math.Abs(m.Delta) < float64(threshold) {
			continue
		}
		predicted := model.SideTeam2
		if m.Delta > 0 {
			predicted = model.SideTeam1
		}
		odds := m.Odds(predicted)
		if odds >= oddsCap {
			continue
		}
		trades = append(trades, trade{won: m.Winner == predicted, odds: odds})
	}

	if len(trades) == 0 {
		return res
	}

	res.TotalTrades = len(trades)
	streak := 0
	for _, tr := range trades {
		if tr.won {
			res.Wins++
			streak = 0
			continue
		}
		res.Losses++
		streak++
		if streak > res.MaxLosingStreak {
			res.MaxLosingStreak = streak
		}
	}

	res.BaseBet = baseBet(cfg.StartBankroll, res.MaxLosingStreak)
	if res.BaseBet < 1 {
		// Even one pass through the worst historical streak is unaffordable.
		res.Bankrupt = true
		return res
	}

	bankroll := cfg.StartBankroll
	stake := res.BaseBet
	streak = 0
	for _, tr := range trades {
		if stake <= 0 || float64(stake) > bankroll {
			res.Bankrupt = true
			break
		}
		if tr.won {
			bankroll += float64(stake) * (tr.odds - 1)
			streak = 0
			stake = res.BaseBet
			continue
		}
		bankroll -= float64(stake)
		streak++
		stake = res.BaseBet << streak
		if bankroll <= 0 {
			bankroll = 0
			res.Bankrupt = true
			break
		}
	}

	res.FinalBank = int(math.Round(bankroll))
	return res
}

// baseBet is the largest unit stake whose doubling ladder survives streak
// consecutive losses from the starting bankroll.
func baseBet(startBankroll float64, streak int) int {
	if streak >= 62 {
		return 0
	}
	required := (int64(1) << (streak + 1)) - 1
	return int(math.Floor(startBankroll / float64(required)))
}
