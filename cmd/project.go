package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/podkolzin/go-hero-metrics/internal/dataset"
	"github.com/podkolzin/go-hero-metrics/internal/matrix"
	"github.com/podkolzin/go-hero-metrics/internal/report"
)

var (
	projectMatrix string
	projectWagers string
	projectOut    string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project historical wagers into a delta dataset",
	Long: `Resolve each wager's rosters against a published matrix and reduce it
to a single predictive delta per match. Rows that cannot be fully
resolved are dropped and counted. Output preserves input row order.`,
	Args: cobra.NoArgs,
	RunE: runProject,
}

func init() {
	projectCmd.Flags().StringVar(&projectMatrix, "matrix", "", "published matrix file (required)")
	projectCmd.Flags().StringVar(&projectWagers, "wagers", "", "historical wager CSV (required)")
	projectCmd.Flags().StringVar(&projectOut, "out", "", "output CSV path (stdout if omitted)")
	_ = projectCmd.MarkFlagRequired("matrix")
	_ = projectCmd.MarkFlagRequired("wagers")
}

func runProject(cmd *cobra.Command, args []string) error {
	proj, err := loadProjection(projectMatrix, projectWagers)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Projected %d of %d wager row(s) (%d dropped)\n",
		len(proj.Matches), proj.Rows, proj.Dropped)

	if projectOut == "" {
		return report.WriteProjectionCSV(os.Stdout, proj.Matches)
	}
	f, err := os.Create(projectOut)
	if err != nil {
		return fmt.Errorf("create %s: %w", projectOut, err)
	}
	defer f.Close()
	if err := report.WriteProjectionCSV(f, proj.Matches); err != nil {
		return fmt.Errorf("write %s: %w", projectOut, err)
	}
	fmt.Fprintf(os.Stdout, "Wrote %d row(s) to %s\n", len(proj.Matches), projectOut)
	return nil
}

// loadProjection reads a published matrix and a wager CSV and projects the
// wagers through the matrix.
func loadProjection(matrixPath, wagersPath string) (dataset.Projection, error) {
	m, err := matrix.ReadFile(matrixPath)
	if err != nil {
		return dataset.Projection{}, err
	}
	wagers, err := dataset.ReadWagersFile(wagersPath)
	if err != nil {
		return dataset.Projection{}, err
	}
	return dataset.Project(m, wagers), nil
}
