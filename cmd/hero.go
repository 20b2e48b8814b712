package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/podkolzin/go-hero-metrics/internal/matrix"
	"github.com/podkolzin/go-hero-metrics/internal/report"
)

var (
	heroMatrix string
	heroTop    int
	heroWorst  bool
)

var heroCmd = &cobra.Command{
	Use:   "hero <name>",
	Short: "Show one hero's profile and matchup row from a published matrix",
	Long: `Look a hero up in a published matrix and print its per-hero line plus
its full matchup row sorted by advantage, best pairing first. Pairings
withheld by the sample gate are not shown.`,
	Args: cobra.ExactArgs(1),
	RunE: runHero,
}

func init() {
	heroCmd.Flags().StringVar(&heroMatrix, "matrix", "", "published matrix file (required)")
	heroCmd.Flags().IntVar(&heroTop, "top", 0, "rows to show (0 = all)")
	heroCmd.Flags().BoolVar(&heroWorst, "worst", false, "sort worst pairing first")
	_ = heroCmd.MarkFlagRequired("matrix")
}

func runHero(cmd *cobra.Command, args []string) error {
	m, err := matrix.ReadFile(heroMatrix)
	if err != nil {
		return err
	}
	i, err := heroIndex(m, args[0])
	if err != nil {
		return err
	}
	report.PrintHeroProfile(os.Stdout, m, i)
	report.PrintHeroMatchups(os.Stdout, m, i, heroTop, heroWorst)
	return nil
}
