package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/spf13/cobra"

	"github.com/podkolzin/go-hero-metrics/internal/model"
	"github.com/podkolzin/go-hero-metrics/internal/parser"
	"github.com/podkolzin/go-hero-metrics/internal/storage"
)

var importCmd = &cobra.Command{
	Use:   "import <matches.ndjson> [more files...]",
	Short: "Import NDJSON match dumps into the archive",
	Long: `Stream one or more NDJSON match dumps (plain or .gz) into the archive.
Records already archived are skipped, so re-importing a dump is safe.
Lines that fail to decode are counted and reported, never fatal.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openArchive(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	seen, err := warmFilter(db)
	if err != nil {
		return fmt.Errorf("load archived ids: %w", err)
	}

	importedAt := time.Now().UTC().Format(time.RFC3339)
	var imported, duplicates, malformed int

	for _, file := range args {
		fmt.Fprintf(os.Stderr, "Importing %s...\n", file)

		r, err := parser.Open(file)
		if err != nil {
			return err
		}

		var fresh []model.MatchRecord
		fileDupes := 0
		for r.Scan() {
			rec := r.Record()
			// Bloom-negative means definitely new; a positive still has to
			// be confirmed against the archive before it counts as a dupe.
			if seen.TestString(rec.MatchID) {
				has, err := db.HasMatch(rec.MatchID)
				if err != nil {
					r.Close()
					return fmt.Errorf("check match %s: %w", rec.MatchID, err)
				}
				if has {
					fileDupes++
					continue
				}
			}
			seen.AddString(rec.MatchID)
			fresh = append(fresh, rec)
		}
		scanErr := r.Err()
		fileMalformed := r.Malformed()
		r.Close()
		if scanErr != nil {
			return fmt.Errorf("read %s: %w", file, scanErr)
		}

		if err := db.SaveMatches(fresh, file, importedAt); err != nil {
			return fmt.Errorf("save %s: %w", file, err)
		}

		fmt.Fprintf(os.Stderr, "  %d imported, %d duplicate(s), %d malformed line(s)\n",
			len(fresh), fileDupes, fileMalformed)
		imported += len(fresh)
		duplicates += fileDupes
		malformed += fileMalformed
	}

	fmt.Fprintf(os.Stdout, "Imported %d match(es) from %d file(s) (%d duplicates, %d malformed lines skipped)\n",
		imported, len(args), duplicates, malformed)
	return nil
}

// warmFilter builds a bloom filter over every archived match id so most
// new records skip the per-record EXISTS query.
func warmFilter(db *storage.DB) (*bloom.BloomFilter, error) {
	ids, err := db.MatchIDs()
	if err != nil {
		return nil, err
	}
	capacity := uint(len(ids)*2 + 1)
	if capacity < 100000 {
		capacity = 100000
	}
	f := bloom.NewWithEstimates(capacity, 0.001)
	for _, id := range ids {
		f.AddString(id)
	}
	return f, nil
}
