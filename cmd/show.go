package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/podkolzin/go-hero-metrics/internal/report"
)

var showCmd = &cobra.Command{
	Use:   "show <id-prefix>",
	Short: "Show an archived match by id prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	prefix := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openArchive(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	match, err := db.GetMatchByPrefix(prefix)
	if err != nil {
		return fmt.Errorf("query match: %w", err)
	}
	if match == nil {
		fmt.Fprintf(os.Stderr, "No match found with id prefix %q\n", prefix)
		return nil
	}

	players, err := db.GetMatchPlayers(match.MatchID)
	if err != nil {
		return fmt.Errorf("get match players: %w", err)
	}

	report.PrintMatchHeader(os.Stdout, *match)
	report.PrintPlayerRows(os.Stdout, players)
	return nil
}
