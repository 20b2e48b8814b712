package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/podkolzin/go-hero-metrics/internal/dataset"
	"github.com/podkolzin/go-hero-metrics/internal/matrix"
	"github.com/podkolzin/go-hero-metrics/internal/model"
	"github.com/podkolzin/go-hero-metrics/internal/report"
)

var matchupMatrix string

var matchupCmd = &cobra.Command{
	Use:   "matchup <hero> <hero>",
	Short: "Show both directions of a hero pairing from a published matrix",
	Long: `Look two heroes up in a published matrix and print the advantage,
win rate, and sample count for each direction of the pairing. Hero names
are matched case-insensitively.`,
	Args: cobra.ExactArgs(2),
	RunE: runMatchup,
}

func init() {
	matchupCmd.Flags().StringVar(&matchupMatrix, "matrix", "", "published matrix file (required)")
	_ = matchupCmd.MarkFlagRequired("matrix")
}

func runMatchup(cmd *cobra.Command, args []string) error {
	m, err := matrix.ReadFile(matchupMatrix)
	if err != nil {
		return err
	}
	i, err := heroIndex(m, args[0])
	if err != nil {
		return err
	}
	j, err := heroIndex(m, args[1])
	if err != nil {
		return err
	}
	report.PrintMatchup(os.Stdout, m, i, j)
	return nil
}

func heroIndex(m *model.PublishedMatrix, name string) (int, error) {
	want := dataset.NormalizeHeroName(name)
	for i, h := range m.Heroes {
		if dataset.NormalizeHeroName(h) == want {
			return i, nil
		}
	}
	return 0, fmt.Errorf("hero %q not found in matrix", name)
}
