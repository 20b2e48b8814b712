package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/podkolzin/go-hero-metrics/internal/backtest"
	"github.com/podkolzin/go-hero-metrics/internal/config"
	"github.com/podkolzin/go-hero-metrics/internal/dataset"
	"github.com/podkolzin/go-hero-metrics/internal/model"
	"github.com/podkolzin/go-hero-metrics/internal/report"
	"github.com/podkolzin/go-hero-metrics/internal/storage"
)

var (
	btMatrix string
	btWagers string
	btOut    string
	btSave   bool
	btTop    int
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run the flat-percentage staking grid",
	Long: `Replay the projected wager dataset through every configured
(percent, odds cap, delta threshold) combination with a running bankroll
and report each combination's outcome.`,
	Args: cobra.NoArgs,
	RunE: runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&btMatrix, "matrix", "", "published matrix file (required)")
	backtestCmd.Flags().StringVar(&btWagers, "wagers", "", "historical wager CSV (required)")
	backtestCmd.Flags().StringVar(&btOut, "out", "", "write the full result grid to this CSV")
	backtestCmd.Flags().BoolVar(&btSave, "save", false, "store the run in the archive")
	backtestCmd.Flags().IntVar(&btTop, "top", 20, "rows to show in the results table (0 = all)")
	_ = backtestCmd.MarkFlagRequired("matrix")
	_ = backtestCmd.MarkFlagRequired("wagers")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	proj, err := loadProjection(btMatrix, btWagers)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Projected %d of %d wager row(s) (%d dropped)\n",
		len(proj.Matches), proj.Rows, proj.Dropped)

	results := backtest.RunStrategies(proj.Matches, cfg.Simulation.BacktestConfig())

	if btOut != "" {
		if err := writeStrategyFile(btOut, results); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %d result row(s) to %s\n", len(results), btOut)
	}

	report.PrintStrategyTable(os.Stdout, results, btTop)

	if btSave {
		run, err := saveRun(cfg, "strategy", btMatrix, btWagers, proj, func(db *storage.DB, run model.BacktestRun) error {
			return db.SaveStrategyRun(run, results)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Saved run %s\n", run.RunID)
	}
	return nil
}

func writeStrategyFile(path string, results []model.StrategyResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := report.WriteStrategyCSV(f, results); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// saveRun opens the archive, stores one run under a fresh id, and returns
// the run row.
func saveRun(cfg *config.Config, kind, matrixPath, wagersPath string, proj dataset.Projection,
	store func(*storage.DB, model.BacktestRun) error) (model.BacktestRun, error) {

	db, err := openArchive(cfg)
	if err != nil {
		return model.BacktestRun{}, err
	}
	defer db.Close()

	run := model.BacktestRun{
		RunID:       uuid.NewString(),
		Kind:        kind,
		MatrixPath:  matrixPath,
		WagersPath:  wagersPath,
		DatasetRows: len(proj.Matches),
		DroppedRows: proj.Dropped,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := store(db, run); err != nil {
		return model.BacktestRun{}, fmt.Errorf("save run: %w", err)
	}
	return run, nil
}
