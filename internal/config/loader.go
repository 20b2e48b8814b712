package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load builds the effective configuration: built-in defaults, then the TOML
// file at path (skipped when path is empty), then HEROMETRICS_* environment
// overrides. The result has NOT been validated; callers should invoke
// Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides overwrites config fields from well-known HEROMETRICS_*
// variables when set.
func applyEnvOverrides(cfg *Config) {
	setFloat64(&cfg.Simulation.StartBankroll, "HEROMETRICS_START_BANKROLL")
	setFloat64(&cfg.Simulation.MaxStake, "HEROMETRICS_MAX_STAKE")
	setFloatSlice(&cfg.Simulation.Percents, "HEROMETRICS_PERCENTS")
	setFloatSlice(&cfg.Simulation.OddsCaps, "HEROMETRICS_ODDS_CAPS")
	setIntSlice(&cfg.Simulation.DeltaThresholds, "HEROMETRICS_DELTA_THRESHOLDS")

	setInt(&cfg.Matrix.MinSample, "HEROMETRICS_MIN_SAMPLE")

	setStr(&cfg.Storage.DBPath, "HEROMETRICS_DB")
}

// Typed env-var helpers. Each only mutates the target when the variable is
// present and parseable.

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setFloatSlice(dst *[]float64, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var out []float64
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return
		}
		out = append(out, f)
	}
	if len(out) > 0 {
		*dst = out
	}
}

func setIntSlice(dst *[]int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var out []int
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return
		}
		out = append(out, n)
	}
	if len(out) > 0 {
		*dst = out
	}
}
