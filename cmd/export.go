package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"

	"github.com/podkolzin/go-hero-metrics/internal/model"
)

var (
	exportOut  string
	exportTeam string
)

// wirePlayer and wireMatch mirror the NDJSON dump schema the import command
// reads, so an exported archive re-imports cleanly. Absent metrics are
// omitted rather than written as null.
type wirePlayer struct {
	HeroID                 *int     `json:"hero_id,omitempty"`
	PlayerTeam             string   `json:"player_team"`
	GPM                    *float64 `json:"gpm,omitempty"`
	XPM                    *float64 `json:"xpm,omitempty"`
	HeroDamage             *float64 `json:"hero_damage,omitempty"`
	TowerDamage            *float64 `json:"tower_damage,omitempty"`
	DamageTaken            *float64 `json:"damage_taken,omitempty"`
	TeamfightParticipation *float64 `json:"teamfight_participation,omitempty"`
}

type wireMatch struct {
	MatchID         string       `json:"match_id"`
	RadiantTeam     string       `json:"radiant_team"`
	DireTeam        string       `json:"dire_team"`
	Winner          string       `json:"winner"`
	DurationMinutes *float64     `json:"duration_minutes,omitempty"`
	Players         []wirePlayer `json:"players"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the archive as an NDJSON match dump",
	Long: `Stream every archived match back out in the NDJSON dump format that
'import' reads, one record per line. A --out path ending in .gz is
gzip-compressed. The dump re-imports cleanly, so this doubles as a backup
format and as input for the flat-file matrix pipeline.

Example:
  herometrics export --out matches.ndjson.gz
  herometrics export --team "Iron Wolves" | herometrics matrix /dev/stdin ...`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path (default: stdout; .gz compresses)")
	exportCmd.Flags().StringVar(&exportTeam, "team", "", "only matches where this team played (substring match)")
}

func runExport(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openArchive(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var w io.Writer = os.Stdout
	var file *os.File
	var gz *gzip.Writer
	if exportOut != "" {
		file, err = os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOut, err)
		}
		w = file
		if strings.HasSuffix(exportOut, ".gz") {
			gz = gzip.NewWriter(file)
			w = gz
		}
	}
	bw := bufio.NewWriter(w)

	exported := 0
	err = db.ForEachMatch(func(rec model.MatchRecord) error {
		if exportTeam != "" && !teamPlayed(rec, exportTeam) {
			return nil
		}
		line, err := json.Marshal(toWire(rec))
		if err != nil {
			return fmt.Errorf("encode match %s: %w", rec.MatchID, err)
		}
		if _, err := bw.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("write match %s: %w", rec.MatchID, err)
		}
		exported++
		return nil
	})
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("close gzip: %w", err)
		}
	}
	if file != nil {
		if err := file.Close(); err != nil {
			return fmt.Errorf("close %s: %w", exportOut, err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %d match(es) to %s\n", exported, exportOut)
	} else {
		fmt.Fprintf(os.Stderr, "Exported %d match(es)\n", exported)
	}
	return nil
}

// teamPlayed reports whether the team substring matches either side,
// case-insensitively — the same semantics as the list command's filter.
func teamPlayed(rec model.MatchRecord, team string) bool {
	t := strings.ToLower(team)
	return strings.Contains(strings.ToLower(rec.RadiantTeam), t) ||
		strings.Contains(strings.ToLower(rec.DireTeam), t)
}

func toWire(rec model.MatchRecord) wireMatch {
	out := wireMatch{
		MatchID:         rec.MatchID,
		RadiantTeam:     rec.RadiantTeam,
		DireTeam:        rec.DireTeam,
		Winner:          rec.Winner,
		DurationMinutes: optPtr(rec.DurationMinutes),
		Players:         make([]wirePlayer, 0, len(rec.Players)),
	}
	for _, p := range rec.Players {
		wp := wirePlayer{
			PlayerTeam:             p.Team,
			GPM:                    optPtr(p.GPM),
			XPM:                    optPtr(p.XPM),
			HeroDamage:             optPtr(p.HeroDamage),
			TowerDamage:            optPtr(p.TowerDamage),
			DamageTaken:            optPtr(p.DamageTaken),
			TeamfightParticipation: optPtr(p.TeamfightParticipation),
		}
		if p.HeroID >= 0 {
			id := p.HeroID
			wp.HeroID = &id
		}
		out.Players = append(out.Players, wp)
	}
	return out
}

func optPtr(v model.OptFloat) *float64 {
	if !v.OK {
		return nil
	}
	f := v.Value
	return &f
}
