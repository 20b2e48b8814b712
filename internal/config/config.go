// Package config defines the herometrics runtime configuration and provides
// validation helpers.
package config

import (
	"fmt"
	"strings"

	"github.com/podkolzin/go-hero-metrics/internal/backtest"
	"github.com/podkolzin/go-hero-metrics/internal/matrix"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by HEROMETRICS_* environment
// variables.
type Config struct {
	Simulation SimulationConfig `toml:"simulation"`
	Matrix     MatrixConfig     `toml:"matrix"`
	Storage    StorageConfig    `toml:"storage"`
}

// SimulationConfig holds the staking sweep parameters.
type SimulationConfig struct {
	StartBankroll   float64   `toml:"start_bankroll"`
	MaxStake        float64   `toml:"max_stake"`
	Percents        []float64 `toml:"percents"`
	OddsCaps        []float64 `toml:"odds_caps"`
	DeltaThresholds []int     `toml:"delta_thresholds"`
}

// MatrixConfig holds matrix-build parameters.
type MatrixConfig struct {
	MinSample int `toml:"min_sample"`
}

// StorageConfig holds the archive database location. An empty path defers to
// the command-line default.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	sim := backtest.DefaultConfig()
	return Config{
		Simulation: SimulationConfig{
			StartBankroll:   sim.StartBankroll,
			MaxStake:        sim.MaxStake,
			Percents:        sim.Percents,
			OddsCaps:        sim.OddsCaps,
			DeltaThresholds: sim.DeltaThresholds,
		},
		Matrix: MatrixConfig{
			MinSample: matrix.DefaultMinSample,
		},
	}
}

// BacktestConfig converts the simulation section into sweep parameters.
func (s SimulationConfig) BacktestConfig() backtest.Config {
	return backtest.Config{
		StartBankroll:   s.StartBankroll,
		MaxStake:        s.MaxStake,
		Percents:        s.Percents,
		OddsCaps:        s.OddsCaps,
		DeltaThresholds: s.DeltaThresholds,
	}
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Simulation.StartBankroll <= 0 {
		errs = append(errs, "simulation: start_bankroll must be > 0")
	}
	if c.Simulation.MaxStake <= 0 {
		errs = append(errs, "simulation: max_stake must be > 0")
	}
	if len(c.Simulation.Percents) == 0 {
		errs = append(errs, "simulation: percents must not be empty")
	}
	for _, p := range c.Simulation.Percents {
		if p <= 0 || p > 1 {
			errs = append(errs, fmt.Sprintf("simulation: percent %v must be in (0, 1]", p))
		}
	}
	if len(c.Simulation.OddsCaps) == 0 {
		errs = append(errs, "simulation: odds_caps must not be empty")
	}
	for _, cap := range c.Simulation.OddsCaps {
		if cap <= 1 {
			errs = append(errs, fmt.Sprintf("simulation: odds cap %v must be > 1", cap))
		}
	}
	if len(c.Simulation.DeltaThresholds) == 0 {
		errs = append(errs, "simulation: delta_thresholds must not be empty")
	}
	for _, th := range c.Simulation.DeltaThresholds {
		if th < 0 {
			errs = append(errs, fmt.Sprintf("simulation: delta threshold %d must be >= 0", th))
		}
	}

	if c.Matrix.MinSample < 1 {
		errs = append(errs, "matrix: min_sample must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
