// Package parser reads newline-delimited JSON match records, the dump format
// produced by the upstream match scrapers. Files may be plain or gzipped.
package parser

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/podkolzin/go-hero-metrics/internal/model"
)

// maxLineBytes bounds a single NDJSON line; full-lobby records with metrics
// run a few KB, so this leaves generous headroom.
const maxLineBytes = 4 * 1024 * 1024

// rawPlayer mirrors one player object on the wire. Numeric fields use
// RawMessage because feeds serialize them as numbers, quoted numbers, or null.
type rawPlayer struct {
	HeroID                 json.RawMessage `json:"hero_id"`
	PlayerTeam             string          `json:"player_team"`
	GPM                    json.RawMessage `json:"gpm"`
	XPM                    json.RawMessage `json:"xpm"`
	HeroDamage             json.RawMessage `json:"hero_damage"`
	TowerDamage            json.RawMessage `json:"tower_damage"`
	DamageTaken            json.RawMessage `json:"damage_taken"`
	TeamfightParticipation json.RawMessage `json:"teamfight_participation"`
}

type rawMatch struct {
	MatchID         string          `json:"match_id"`
	RadiantTeam     string          `json:"radiant_team"`
	DireTeam        string          `json:"dire_team"`
	Winner          string          `json:"winner"`
	DurationMinutes json.RawMessage `json:"duration_minutes"`
	Players         []rawPlayer     `json:"players"`
}

// Reader streams match records from one NDJSON file.
type Reader struct {
	f  *os.File
	gz *gzip.Reader
	sc *bufio.Scanner

	rec       model.MatchRecord
	malformed int
}

// Open opens an NDJSON match file for streaming. Files ending in .gz are
// decompressed transparently.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open matches: %w", err)
	}

	r := &Reader{f: f}
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open gzip matches: %w", err)
		}
		r.gz = gz
		r.sc = bufio.NewScanner(gz)
	} else {
		r.sc = bufio.NewScanner(f)
	}
	r.sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return r, nil
}

// Scan advances to the next decodable record, skipping blank lines and
// counting lines that fail to decode. Returns false at end of input.
func (r *Reader) Scan() bool {
	for r.sc.Scan() {
		line := bytes.TrimSpace(r.sc.Bytes())
		if len(line) == 0 {
			continue
		}
		rec, ok := decodeLine(line)
		if !ok {
			r.malformed++
			continue
		}
		r.rec = rec
		return true
	}
	return false
}

// Record returns the record decoded by the last successful Scan.
func (r *Reader) Record() model.MatchRecord { return r.rec }

// Malformed returns how many non-blank lines failed to decode so far.
func (r *Reader) Malformed() int { return r.malformed }

// Err returns the first underlying read error, if any.
func (r *Reader) Err() error { return r.sc.Err() }

func (r *Reader) Close() error {
	if r.gz != nil {
		r.gz.Close()
	}
	return r.f.Close()
}

// decodeLine decodes one NDJSON line into a normalized record. The second
// return is false when the line is not a JSON object.
func decodeLine(line []byte) (model.MatchRecord, bool) {
	var raw rawMatch
	if err := json.Unmarshal(line, &raw); err != nil {
		return model.MatchRecord{}, false
	}

	rec := model.MatchRecord{
		MatchID:         raw.MatchID,
		RadiantTeam:     raw.RadiantTeam,
		DireTeam:        raw.DireTeam,
		Winner:          raw.Winner,
		DurationMinutes: looseFloat(raw.DurationMinutes),
	}
	if rec.MatchID == "" {
		rec.MatchID = lineDigest(line)
	}

	for _, p := range raw.Players {
		rec.Players = append(rec.Players, model.PlayerEntry{
			HeroID:                 looseHeroID(p.HeroID),
			Team:                   p.PlayerTeam,
			GPM:                    looseFloat(p.GPM),
			XPM:                    looseFloat(p.XPM),
			HeroDamage:             looseFloat(p.HeroDamage),
			TowerDamage:            looseFloat(p.TowerDamage),
			DamageTaken:            looseFloat(p.DamageTaken),
			TeamfightParticipation: looseFloat(p.TeamfightParticipation),
		})
	}
	return rec, true
}

// lineDigest derives a stable match id for feeds that carry none, so
// re-importing the same dump stays idempotent.
func lineDigest(line []byte) string {
	sum := sha256.Sum256(line)
	return fmt.Sprintf("%x", sum[:12])
}

// looseFloat interprets a raw JSON value as an optional finite float.
// Accepts numbers and numeric strings; null, NaN/Inf, and anything else
// are absent.
func looseFloat(raw json.RawMessage) model.OptFloat {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return model.OptFloat{}
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
		if s == "" {
			return model.OptFloat{}
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return model.OptFloat{}
	}
	return model.OptFloat{Value: v, OK: true}
}

// looseHeroID interprets a raw JSON value as a hero id: integers, integral
// floats, and quoted integers all resolve; everything else is -1 (the slot
// is then dropped by attribution, not an error).
func looseHeroID(raw json.RawMessage) int {
	f := looseFloat(raw)
	if !f.OK {
		return -1
	}
	id := int(f.Value)
	if float64(id) != f.Value || id < 0 {
		return -1
	}
	return id
}
