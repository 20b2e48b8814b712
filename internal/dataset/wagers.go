// Package dataset projects historical wager rows against a published matrix
// into the ordered sequence the bankroll simulators replay.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/podkolzin/go-hero-metrics/internal/model"
)

// wagerColumns must all appear in the CSV header.
var wagerColumns = []string{
	"team1", "team2",
	"team1_heroes", "team2_heroes",
	"team1_odds", "team2_odds",
	"winner",
}

// ReadWagersFile loads the historical wager CSV at path.
func ReadWagersFile(path string) ([]model.HistoricalWager, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wagers: %w", err)
	}
	defer f.Close()
	return ReadWagers(f)
}

// ReadWagers decodes wager rows. Header columns are matched by name; rows
// keep their source order. Unusable values stay in the row as absent fields
// for the projector to drop, only structural CSV problems are errors.
func ReadWagers(r io.Reader) ([]model.HistoricalWager, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("wagers: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read wagers header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, want := range wagerColumns {
		if _, ok := col[want]; !ok {
			return nil, fmt.Errorf("wagers: missing %s column", want)
		}
	}

	var out []model.HistoricalWager
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read wagers row %d: %w", len(out)+2, err)
		}

		get := func(name string) string {
			if i := col[name]; i < len(rec) {
				return rec[i]
			}
			return ""
		}
		out = append(out, model.HistoricalWager{
			Team1:       get("team1"),
			Team2:       get("team2"),
			Team1Heroes: splitRoster(get("team1_heroes")),
			Team2Heroes: splitRoster(get("team2_heroes")),
			Team1Odds:   parseOdds(get("team1_odds")),
			Team2Odds:   parseOdds(get("team2_odds")),
			Winner:      get("winner"),
		})
	}
	return out, nil
}

// splitRoster splits a pipe-delimited hero list, trimming entries and
// dropping empty ones.
func splitRoster(s string) []string {
	var out []string
	for _, h := range strings.Split(s, "|") {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}

// parseOdds reads a decimal odds value. Blank, unparseable, or non-finite
// input stays absent.
func parseOdds(s string) model.OptFloat {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.OptFloat{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return model.OptFloat{}
	}
	return model.OptFloat{Value: v, OK: true}
}
