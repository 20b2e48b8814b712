package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/podkolzin/go-hero-metrics/internal/aggregator"
	"github.com/podkolzin/go-hero-metrics/internal/matrix"
	"github.com/podkolzin/go-hero-metrics/internal/model"
	"github.com/podkolzin/go-hero-metrics/internal/parser"
	"github.com/podkolzin/go-hero-metrics/internal/report"
)

var (
	matrixHeroMap   string
	matrixTemplate  string
	matrixOut       string
	matrixMinSample int
	matrixQuiet     bool
)

var matrixCmd = &cobra.Command{
	Use:   "matrix [matches.ndjson...]",
	Short: "Build and publish the hero matchup matrix",
	Long: `Aggregate match records into per-hero and hero-vs-hero counters and
publish the advantage matrix. With file arguments the records stream
straight from NDJSON dumps; with none they come from the archive.`,
	RunE: runMatrix,
}

func init() {
	matrixCmd.Flags().StringVar(&matrixHeroMap, "hero-map", "", "hero id → matrix index JSON file (required)")
	matrixCmd.Flags().StringVar(&matrixTemplate, "template", "", "template file carrying the heroes and heroes_bg arrays (required)")
	matrixCmd.Flags().StringVar(&matrixOut, "out", "", "output matrix file (required)")
	matrixCmd.Flags().IntVar(&matrixMinSample, "min-sample", 0, "min pair observations to publish a cell (default from config)")
	matrixCmd.Flags().BoolVar(&matrixQuiet, "quiet", false, "skip the hero summary table")
	_ = matrixCmd.MarkFlagRequired("hero-map")
	_ = matrixCmd.MarkFlagRequired("template")
	_ = matrixCmd.MarkFlagRequired("out")
}

func runMatrix(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tpl, err := matrix.LoadHeroTemplate(matrixTemplate)
	if err != nil {
		return err
	}
	hm, err := aggregator.LoadHeroMap(matrixHeroMap, tpl.Size())
	if err != nil {
		return err
	}

	agg := aggregator.New(hm)
	malformed := 0
	if len(args) > 0 {
		for _, file := range args {
			n, err := foldFile(agg, file)
			if err != nil {
				return err
			}
			malformed += n
		}
	} else {
		db, err := openArchive(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.ForEachMatch(func(rec model.MatchRecord) error {
			agg.Fold(rec)
			return nil
		}); err != nil {
			return fmt.Errorf("read archive: %w", err)
		}
	}

	res := agg.Result()
	fmt.Fprintf(os.Stderr, "Aggregated %d match(es), skipped %d (plus %d malformed lines)\n",
		res.Processed, res.Skipped, malformed)

	minSample := matrixMinSample
	if minSample <= 0 {
		minSample = cfg.Matrix.MinSample
	}
	m, err := matrix.Build(res.Heroes, res.Pairs, tpl, matrix.Params{MinSample: minSample})
	if err != nil {
		return err
	}
	if err := matrix.WriteFile(matrixOut, m); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Wrote %d-hero matrix to %s\n", m.HeroCount(), matrixOut)

	if !matrixQuiet {
		report.PrintHeroTable(os.Stdout, tpl.Names, res.Heroes)
	}
	return nil
}

// foldFile streams one NDJSON dump into the aggregator and returns its
// malformed-line count.
func foldFile(agg *aggregator.Aggregator, path string) (int, error) {
	r, err := parser.Open(path)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	for r.Scan() {
		agg.Fold(r.Record())
	}
	if err := r.Err(); err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	return r.Malformed(), nil
}
