// Package backtest replays the projected match sequence under staking
// strategies, sweeping a parameter grid with one isolated bankroll per cell.
package backtest

import (
	"fmt"
	"math"
	"strconv"

	"github.com/podkolzin/go-hero-metrics/internal/model"
)

// Config bounds a simulation sweep. Matches are always replayed in dataset
// order; nothing is shared between grid cells.
type Config struct {
	StartBankroll   float64
	MaxStake        float64
	Percents        []float64
	OddsCaps        []float64
	DeltaThresholds []int
}

// DefaultConfig returns the standard sweep grid.
func DefaultConfig() Config {
	return Config{
		StartBankroll:   1000,
		MaxStake:        10000,
		Percents:        []float64{0.10, 0.20, 0.30, 0.40, 0.50},
		OddsCaps:        []float64{1.9, 1.8, 1.7, 1.6, 1.5, 1.4, 1.3, 1.2},
		DeltaThresholds: []int{50, 100, 150, 200, 250, 300, 350, 400},
	}
}

// RunStrategies sweeps the full pct x odds-cap x threshold grid and returns
// one result row per cell, in grid order.
func RunStrategies(matches []model.ProjectedMatch, cfg Config) []model.StrategyResult {
	results := make([]model.StrategyResult, 0, len(cfg.Percents)*len(cfg.OddsCaps)*len(cfg.DeltaThresholds))
	for _, pct := range cfg.Percents {
		for _, oddsCap := range cfg.OddsCaps {
			for _, threshold := range cfg.DeltaThresholds {
				results = append(results, runStrategy(matches, cfg, pct, oddsCap, threshold))
			}
		}
	}
	return results
}

func runStrategy(matches []model.ProjectedMatch, cfg Config, pct, oddsCap float64, threshold int) model.StrategyResult {
	bankroll := cfg.StartBankroll
	peak := bankroll

	var (
		bets, wins, losses                 int
		totalStaked, maxDrawdown, maxStake float64
	)

	for _, m := range matches {
		if math.Abs(m.Delta) < float64(threshold) {
			continue
		}

		// delta == 0 lands on team2 here; kept as-is.
		predicted := model.SideTeam2
		if m.Delta > 0 {
			predicted = model.SideTeam1
		}

		// Only odds strictly below the cap are playable.
		odds := m.Odds(predicted)
		if odds >= oddsCap {
			continue
		}

		stake := bankroll * pct
		if stake > cfg.MaxStake {
			stake = cfg.MaxStake
		}
		if stake <= 0 {
			continue
		}

		bets++
		totalStaked += stake
		if stake > maxStake {
			maxStake = stake
		}

		if m.Winner == predicted {
			wins++
			bankroll += stake * (odds - 1)
		} else {
			losses++
			bankroll -= stake
		}

		if bankroll > peak {
			peak = bankroll
		}
		if dd := peak - bankroll; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}

	profit := bankroll - cfg.StartBankroll
	winPct := 0.0
	if bets > 0 {
		winPct = float64(wins) / float64(bets) * 100
	}
	roi := 0.0
	if totalStaked > 0 {
		roi = profit / totalStaked
	}

	return model.StrategyResult{
		StrategyGroup:  fmt.Sprintf("Pct%d", int(math.Round(pct*100))),
		HeroFilter:     "none",
		OddsCondition:  "<" + strconv.FormatFloat(oddsCap, 'g', -1, 64),
		Metric:         "WR_DELTA",
		DeltaThreshold: threshold,
		Bets:           bets,
		Wins:           wins,
		Losses:         losses,
		WinPct:         math.Round(winPct*100) / 100,
		FinalBank:      int(math.Round(bankroll)),
		Profit:         int(math.Round(profit)),
		TotalStaked:    int(math.Round(totalStaked)),
		ROI:            math.Round(roi*10000) / 10000,
		MaxDrawdown:    int(math.Round(maxDrawdown)),
		MaxStake:       int(math.Round(maxStake)),
	}
}
