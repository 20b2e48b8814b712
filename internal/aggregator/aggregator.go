// Package aggregator folds match records into per-hero aggregates and the
// ordered-pair opposition counters the matrix is built from.
package aggregator

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/podkolzin/go-hero-metrics/internal/model"
)

// HeroMapError reports a hero-id mapping that fails to cover every matrix
// index in [0, N). Missing is sorted ascending.
type HeroMapError struct {
	Missing []int
}

func (e *HeroMapError) Error() string {
	return fmt.Sprintf("hero map does not cover all hero slots, missing indices: %v", e.Missing)
}

// HeroMap resolves feed hero ids to matrix indices. Construction fails unless
// every index in [0, N) is covered; many-to-one id mappings are allowed.
type HeroMap struct {
	byID map[int]int
	n    int
}

// NewHeroMap validates ids against the matrix size n.
func NewHeroMap(ids map[int]int, n int) (*HeroMap, error) {
	covered := make([]bool, n)
	for id, idx := range ids {
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("hero map: id %d maps to index %d, outside [0,%d)", id, idx, n)
		}
		covered[idx] = true
	}

	var missing []int
	for i, ok := range covered {
		if !ok {
			missing = append(missing, i)
		}
	}
	if len(missing) > 0 {
		return nil, &HeroMapError{Missing: missing}
	}

	m := make(map[int]int, len(ids))
	for id, idx := range ids {
		m[id] = idx
	}
	return &HeroMap{byID: m, n: n}, nil
}

// LoadHeroMap reads a JSON object of hero-id → matrix-index pairs. Keys are
// JSON strings; values may be numbers or numeric strings.
func LoadHeroMap(path string, n int) (*HeroMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hero map: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse hero map: %w", err)
	}

	ids := make(map[int]int, len(raw))
	for k, v := range raw {
		id, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return nil, fmt.Errorf("hero map: invalid hero id %q", k)
		}
		idx, ok := asIndex(v)
		if !ok {
			return nil, fmt.Errorf("hero map: invalid index %v for hero id %d", v, id)
		}
		ids[id] = idx
	}
	return NewHeroMap(ids, n)
}

// asIndex converts a decoded JSON value (number or numeric string) to an int.
func asIndex(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		idx := int(t)
		return idx, float64(idx) == t
	case string:
		idx, err := strconv.Atoi(strings.TrimSpace(t))
		return idx, err == nil
	default:
		return 0, false
	}
}

// Lookup resolves a feed hero id to its matrix index.
func (m *HeroMap) Lookup(heroID int) (int, bool) {
	idx, ok := m.byID[heroID]
	return idx, ok
}

// Size returns the matrix dimension N.
func (m *HeroMap) Size() int { return m.n }

// Result groups everything one aggregation run produces. Processed+Skipped
// equals the number of records folded.
type Result struct {
	Heroes    []model.HeroAggregate
	Pairs     *model.PairCounter
	Processed int
	Skipped   int
}

// Aggregator accumulates hero and pair counters across a stream of records.
// Malformed records are counted and dropped, never surfaced as errors.
type Aggregator struct {
	hm     *HeroMap
	heroes []model.HeroAggregate
	pairs  *model.PairCounter

	processed int
	skipped   int
}

// New returns an Aggregator sized for the hero map's matrix dimension.
func New(hm *HeroMap) *Aggregator {
	return &Aggregator{
		hm:     hm,
		heroes: make([]model.HeroAggregate, hm.Size()),
		pairs:  model.NewPairCounter(hm.Size()),
	}
}

// attributed is one player slot resolved to a matrix index.
type attributed struct {
	idx    int
	player model.PlayerEntry
}

// Fold applies one match record to the counters. Records are rejected whole
// (skip counter, no error) when a team name or the winner is unusable or
// fewer than two players are present; individual players with unknown hero
// ids or team names are dropped without rejecting the record.
func (a *Aggregator) Fold(rec model.MatchRecord) {
	if rec.RadiantTeam == "" || rec.DireTeam == "" || rec.Winner == "" || len(rec.Players) < 2 {
		a.skipped++
		return
	}

	radiantWon := rec.Winner == rec.RadiantTeam
	if !radiantWon && rec.Winner != rec.DireTeam {
		a.skipped++
		return
	}

	// Attribute players to sides by exact team-name match.
	var radiant, dire []attributed
	for _, p := range rec.Players {
		if p.HeroID < 0 {
			continue
		}
		idx, ok := a.hm.Lookup(p.HeroID)
		if !ok {
			continue
		}
		switch p.Team {
		case rec.RadiantTeam:
			radiant = append(radiant, attributed{idx: idx, player: p})
		case rec.DireTeam:
			dire = append(dire, attributed{idx: idx, player: p})
		}
	}
	if len(radiant) == 0 || len(dire) == 0 {
		a.skipped++
		return
	}

	a.foldSide(radiant, radiantWon, rec.DurationMinutes)
	a.foldSide(dire, !radiantWon, rec.DurationMinutes)

	// Every radiant/dire hero combination is one opposing encounter, counted
	// once from each perspective; a full 5v5 contributes 25 observations.
	for _, r := range radiant {
		for _, d := range dire {
			a.pairs.Matches[r.idx][d.idx]++
			a.pairs.Matches[d.idx][r.idx]++
			if radiantWon {
				a.pairs.Wins[r.idx][d.idx]++
			} else {
				a.pairs.Wins[d.idx][r.idx]++
			}
		}
	}

	a.processed++
}

// foldSide rolls one side's attributed players into the hero aggregates.
// Metrics accumulate independently per field: a missing GPM sample never
// excludes a present XPM.
func (a *Aggregator) foldSide(side []attributed, won bool, duration model.OptFloat) {
	for _, at := range side {
		h := &a.heroes[at.idx]
		h.Matches++
		if won {
			h.Wins++
		}
		if duration.OK {
			h.Duration.Add(duration.Value)
		}

		p := at.player
		if p.GPM.OK {
			h.GPM.Add(p.GPM.Value)
		}
		if p.XPM.OK {
			h.XPM.Add(p.XPM.Value)
		}
		if p.HeroDamage.OK {
			h.HeroDamage.Add(p.HeroDamage.Value)
		}
		if p.TowerDamage.OK {
			h.TowerDamage.Add(p.TowerDamage.Value)
		}
		if p.DamageTaken.OK {
			h.DamageTaken.Add(p.DamageTaken.Value)
		}
		if p.TeamfightParticipation.OK {
			h.TeamfightParticipation.Add(p.TeamfightParticipation.Value)
		}
	}
}

// Result returns the accumulated counters and fold diagnostics.
func (a *Aggregator) Result() Result {
	return Result{
		Heroes:    a.heroes,
		Pairs:     a.pairs,
		Processed: a.processed,
		Skipped:   a.skipped,
	}
}
