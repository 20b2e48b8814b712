package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/podkolzin/go-hero-metrics/internal/report"
)

var (
	listTeam  string
	listLimit int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived matches",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listTeam, "team", "", "only matches where this team played (substring match)")
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "maximum rows to show (0 = all)")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openArchive(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	matches, err := db.ListMatches(listTeam, listLimit)
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	if len(matches) == 0 {
		if listTeam != "" {
			fmt.Fprintf(os.Stdout, "No archived matches involve %q.\n", listTeam)
			return nil
		}
		fmt.Fprintln(os.Stdout, "No matches archived yet. Run 'herometrics import <file.ndjson>' to add some.")
		return nil
	}

	report.PrintMatchList(os.Stdout, matches)
	return nil
}
