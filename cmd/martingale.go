package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/podkolzin/go-hero-metrics/internal/backtest"
	"github.com/podkolzin/go-hero-metrics/internal/model"
	"github.com/podkolzin/go-hero-metrics/internal/report"
	"github.com/podkolzin/go-hero-metrics/internal/storage"
)

var (
	mgMatrix string
	mgWagers string
	mgOut    string
	mgSave   bool
)

var martingaleCmd = &cobra.Command{
	Use:   "martingale",
	Short: "Run the loss-doubling ruin analysis",
	Long: `Replay the projected wager dataset with a loss-doubling staking plan
for every configured (odds cap, delta threshold) combination. The base bet is
sized from the worst losing streak the combination produces, so the table shows
whether the bankroll could have survived it at all.`,
	Args: cobra.NoArgs,
	RunE: runMartingaleCmd,
}

func init() {
	martingaleCmd.Flags().StringVar(&mgMatrix, "matrix", "", "published matrix file (required)")
	martingaleCmd.Flags().StringVar(&mgWagers, "wagers", "", "historical wager CSV (required)")
	martingaleCmd.Flags().StringVar(&mgOut, "out", "", "write the full result grid to this CSV")
	martingaleCmd.Flags().BoolVar(&mgSave, "save", false, "store the run in the archive")
	_ = martingaleCmd.MarkFlagRequired("matrix")
	_ = martingaleCmd.MarkFlagRequired("wagers")
}

func runMartingaleCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	proj, err := loadProjection(mgMatrix, mgWagers)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Projected %d of %d wager row(s) (%d dropped)\n",
		len(proj.Matches), proj.Rows, proj.Dropped)

	results := backtest.RunMartingale(proj.Matches, cfg.Simulation.BacktestConfig())

	if mgOut != "" {
		if err := writeMartingaleFile(mgOut, results); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %d result row(s) to %s\n", len(results), mgOut)
	}

	report.PrintMartingaleTable(os.Stdout, results)

	if mgSave {
		run, err := saveRun(cfg, "martingale", mgMatrix, mgWagers, proj, func(db *storage.DB, run model.BacktestRun) error {
			return db.SaveMartingaleRun(run, results)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Saved run %s\n", run.RunID)
	}
	return nil
}

func writeMartingaleFile(path string, results []model.MartingaleResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := report.WriteMartingaleCSV(f, results); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
