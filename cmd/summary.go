package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/podkolzin/go-hero-metrics/internal/aggregator"
	"github.com/podkolzin/go-hero-metrics/internal/matrix"
	"github.com/podkolzin/go-hero-metrics/internal/model"
	"github.com/podkolzin/go-hero-metrics/internal/report"
	"github.com/podkolzin/go-hero-metrics/internal/storage"
)

var (
	summaryHeroMap string
	summaryMatrix  string
)

// summaryCmd is the cobra command for displaying a high-level archive overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the archive",
	Long: `Display aggregate statistics about all matches stored in the archive:
total match count, import date range, team records, and source files.
Pass --hero-map and --matrix to also fold the archive into per-hero
aggregates and print them.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().StringVar(&summaryHeroMap, "hero-map", "", "hero name -> index map file")
	summaryCmd.Flags().StringVar(&summaryMatrix, "matrix", "", "published matrix file (supplies hero names)")
}

func runSummary(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openArchive(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.Stats()
	if err != nil {
		return fmt.Errorf("get archive stats: %w", err)
	}
	if stats.Matches == 0 {
		fmt.Fprintln(os.Stdout, "No matches archived yet. Run 'herometrics import <file.ndjson>' to add some.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n=== Archive Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Matches stored  : %d\n", stats.Matches)
	fmt.Fprintf(os.Stdout, "  Player rows     : %d\n", stats.PlayerRows)
	fmt.Fprintf(os.Stdout, "  Teams seen      : %d\n", stats.Teams)
	fmt.Fprintf(os.Stdout, "  Import range    : %s → %s\n", stats.FirstImport, stats.LastImport)

	teams, err := db.TeamRecords(15)
	if err != nil {
		return fmt.Errorf("get team records: %w", err)
	}
	fmt.Fprintf(os.Stdout, "\n--- Teams ---\n\n")
	report.PrintTeamRecords(os.Stdout, teams)

	sources, err := db.SourceFiles()
	if err != nil {
		return fmt.Errorf("get source files: %w", err)
	}
	if len(sources) > 0 {
		fmt.Fprintf(os.Stdout, "\n--- Sources ---\n\n")
		st := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
			Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
			Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
		}))
		st.Header("SOURCE", "MATCHES", "LAST IMPORT")
		for _, s := range sources {
			st.Append(s.SourceFile, fmt.Sprintf("%d", s.Matches), s.LastImport)
		}
		st.Render()
	}

	if summaryHeroMap != "" && summaryMatrix != "" {
		names, aggs, err := foldArchiveHeroes(db, summaryMatrix, summaryHeroMap)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "\n--- Heroes ---\n\n")
		report.PrintHeroTable(os.Stdout, names, aggs)
	}

	return nil
}

// foldArchiveHeroes replays every archived match through the aggregator.
// The published matrix supplies the hero names and the index count the
// hero map must cover.
func foldArchiveHeroes(db *storage.DB, matrixPath, heroMapPath string) ([]string, []model.HeroAggregate, error) {
	m, err := matrix.ReadFile(matrixPath)
	if err != nil {
		return nil, nil, err
	}
	hm, err := aggregator.LoadHeroMap(heroMapPath, m.HeroCount())
	if err != nil {
		return nil, nil, err
	}
	agg := aggregator.New(hm)
	err = db.ForEachMatch(func(rec model.MatchRecord) error {
		agg.Fold(rec)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("read archive: %w", err)
	}
	res := agg.Result()
	return m.Heroes, res.Heroes, nil
}
