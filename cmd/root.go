package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/podkolzin/go-hero-metrics/internal/config"
	"github.com/podkolzin/go-hero-metrics/internal/storage"
)

var (
	dbPath     string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "herometrics",
	Short: "Hero matchup metrics and staking backtest tool",
	Long:  "Build hero-vs-hero advantage matrices from match dumps and backtest staking strategies against historical wagers.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite match archive (default: config db_path or ~/.herometrics/metrics.db)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to TOML config file (default: $HEROMETRICS_CONFIG)")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(matrixCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(backtestCmd)
	rootCmd.AddCommand(martingaleCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(matchupCmd)
	rootCmd.AddCommand(heroCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// loadConfig reads and validates the runtime configuration. The --config
// flag wins over $HEROMETRICS_CONFIG; both absent means defaults plus env
// overrides.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("HEROMETRICS_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveDBPath picks the archive location: --db flag, then config, then
// the default under the user home.
func resolveDBPath(cfg *config.Config) string {
	if dbPath != "" {
		return expandHome(dbPath)
	}
	if cfg != nil && cfg.Storage.DBPath != "" {
		return expandHome(cfg.Storage.DBPath)
	}
	return filepath.Join(mustUserHome(), ".herometrics", "metrics.db")
}

func openArchive(cfg *config.Config) (*storage.DB, error) {
	db, err := storage.Open(resolveDBPath(cfg))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(mustUserHome(), p[2:])
	}
	return p
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
