package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/podkolzin/go-hero-metrics/internal/report"
)

var (
	runsKind  string
	runsLimit int
)

var runsCmd = &cobra.Command{
	Use:   "runs [run-id-prefix]",
	Short: "List saved backtest runs or show one run's results",
	Long: `Without arguments, list saved backtest runs newest first. With a
run id prefix, print the stored result grid of that run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().StringVar(&runsKind, "kind", "", "only runs of this kind (strategy or martingale)")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to list (0 = all)")
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openArchive(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if len(args) == 0 {
		runs, err := db.ListRuns(runsLimit)
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
		if runsKind != "" {
			filtered := runs[:0]
			for _, r := range runs {
				if r.Kind == runsKind {
					filtered = append(filtered, r)
				}
			}
			runs = filtered
		}
		if len(runs) == 0 {
			fmt.Fprintln(os.Stdout, "No saved runs. Re-run backtest or martingale with --save to keep one.")
			return nil
		}
		report.PrintRunList(os.Stdout, runs)
		return nil
	}

	prefix := args[0]
	run, err := db.GetRunByPrefix(prefix)
	if err != nil {
		return fmt.Errorf("query run: %w", err)
	}
	if run == nil {
		fmt.Fprintf(os.Stderr, "No run found with id prefix %q\n", prefix)
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n%s\n\n", run.Describe())
	switch run.Kind {
	case "strategy":
		results, err := db.GetStrategyResults(run.RunID)
		if err != nil {
			return fmt.Errorf("get strategy results: %w", err)
		}
		report.PrintStrategyTable(os.Stdout, results, 0)
	case "martingale":
		results, err := db.GetMartingaleResults(run.RunID)
		if err != nil {
			return fmt.Errorf("get martingale results: %w", err)
		}
		report.PrintMartingaleTable(os.Stdout, results)
	default:
		return fmt.Errorf("unknown run kind %q", run.Kind)
	}
	return nil
}
