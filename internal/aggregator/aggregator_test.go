package aggregator

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/podkolzin/go-hero-metrics/internal/model"
)

// Feed-side hero ids. The test map sends them to matrix indices 0..3.
const (
	axeID     = 11
	banditID  = 27
	corsairID = 42
	drakeID   = 58
)

const (
	teamIron  = "Iron Wolves"
	teamCrest = "Crest Gaming"
)

// testHeroMap returns a 4-slot map covering axe..drake in order.
func testHeroMap(t *testing.T) *HeroMap {
	t.Helper()
	hm, err := NewHeroMap(map[int]int{axeID: 0, banditID: 1, corsairID: 2, drakeID: 3}, 4)
	if err != nil {
		t.Fatalf("NewHeroMap: %v", err)
	}
	return hm
}

// opt wraps a present metric value.
func opt(v float64) model.OptFloat {
	return model.OptFloat{Value: v, OK: true}
}

// player returns a bare attributed player entry.
func player(heroID int, team string) model.PlayerEntry {
	return model.PlayerEntry{HeroID: heroID, Team: team}
}

// makeMatch returns a 1v1 record between Iron Wolves (axe) and Crest Gaming
// (bandit), with the given winner.
func makeMatch(id, winner string) model.MatchRecord {
	return model.MatchRecord{
		MatchID:     id,
		RadiantTeam: teamIron,
		DireTeam:    teamCrest,
		Winner:      winner,
		Players: []model.PlayerEntry{
			player(axeID, teamIron),
			player(banditID, teamCrest),
		},
	}
}

func TestNewHeroMapValidation(t *testing.T) {
	tests := []struct {
		name        string
		ids         map[int]int
		n           int
		wantMissing []int
	}{
		{name: "complete", ids: map[int]int{1: 0, 2: 1, 3: 2}, n: 3},
		{name: "many to one", ids: map[int]int{1: 0, 2: 0, 3: 1}, n: 2},
		{name: "one slot missing", ids: map[int]int{1: 0, 2: 2}, n: 3, wantMissing: []int{1}},
		{name: "several missing sorted", ids: map[int]int{9: 2}, n: 4, wantMissing: []int{0, 1, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHeroMap(tt.ids, tt.n)
			if tt.wantMissing == nil {
				if err != nil {
					t.Fatalf("NewHeroMap: %v", err)
				}
				return
			}
			var hmErr *HeroMapError
			if !errors.As(err, &hmErr) {
				t.Fatalf("want *HeroMapError, got %v", err)
			}
			if len(hmErr.Missing) != len(tt.wantMissing) {
				t.Fatalf("missing = %v, want %v", hmErr.Missing, tt.wantMissing)
			}
			for i, idx := range tt.wantMissing {
				if hmErr.Missing[i] != idx {
					t.Errorf("missing[%d] = %d, want %d", i, hmErr.Missing[i], idx)
				}
			}
		})
	}
}

func TestNewHeroMapRejectsOutOfRangeIndex(t *testing.T) {
	if _, err := NewHeroMap(map[int]int{1: 0, 2: 5}, 2); err == nil {
		t.Fatal("want error for index outside the matrix, got nil")
	}
}

func TestLoadHeroMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.json")
	if err := os.WriteFile(path, []byte(`{"11": 0, "27": "1"}`), 0o644); err != nil {
		t.Fatalf("write map: %v", err)
	}

	hm, err := LoadHeroMap(path, 2)
	if err != nil {
		t.Fatalf("LoadHeroMap: %v", err)
	}
	if idx, ok := hm.Lookup(27); !ok || idx != 1 {
		t.Errorf("Lookup(27) = %d, %v, want 1, true", idx, ok)
	}
	if _, ok := hm.Lookup(99); ok {
		t.Error("Lookup(99) resolved, want miss")
	}
}

func TestLoadHeroMapMissingFile(t *testing.T) {
	if _, err := LoadHeroMap(filepath.Join(t.TempDir(), "absent.json"), 2); err == nil {
		t.Fatal("want error for missing file, got nil")
	}
}

func TestFoldWinLossCounts(t *testing.T) {
	agg := New(testHeroMap(t))

	// Axe takes two of three against bandit.
	agg.Fold(makeMatch("m1", teamIron))
	agg.Fold(makeMatch("m2", teamIron))
	agg.Fold(makeMatch("m3", teamCrest))

	res := agg.Result()
	if res.Processed != 3 || res.Skipped != 0 {
		t.Fatalf("processed/skipped = %d/%d, want 3/0", res.Processed, res.Skipped)
	}

	if got := res.Pairs.Matches[0][1]; got != 3 {
		t.Errorf("Matches[0][1] = %d, want 3", got)
	}
	if got := res.Pairs.Matches[1][0]; got != 3 {
		t.Errorf("Matches[1][0] = %d, want 3", got)
	}
	if got := res.Pairs.Wins[0][1]; got != 2 {
		t.Errorf("Wins[0][1] = %d, want 2", got)
	}
	if got := res.Pairs.Wins[1][0]; got != 1 {
		t.Errorf("Wins[1][0] = %d, want 1", got)
	}

	// Wins across the two directions account for every encounter.
	if sum := res.Pairs.Wins[0][1] + res.Pairs.Wins[1][0]; sum != res.Pairs.Matches[0][1] {
		t.Errorf("wins sum = %d, want %d", sum, res.Pairs.Matches[0][1])
	}

	if res.Heroes[0].Matches != 3 || res.Heroes[0].Wins != 2 {
		t.Errorf("axe aggregate = %d/%d, want 3/2", res.Heroes[0].Matches, res.Heroes[0].Wins)
	}
	if res.Heroes[1].Matches != 3 || res.Heroes[1].Wins != 1 {
		t.Errorf("bandit aggregate = %d/%d, want 3/1", res.Heroes[1].Matches, res.Heroes[1].Wins)
	}
}

func TestFoldSkipsUnusableRecords(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.MatchRecord)
	}{
		{name: "no radiant team", mutate: func(r *model.MatchRecord) { r.RadiantTeam = "" }},
		{name: "no dire team", mutate: func(r *model.MatchRecord) { r.DireTeam = "" }},
		{name: "no winner", mutate: func(r *model.MatchRecord) { r.Winner = "" }},
		{name: "winner is neither team", mutate: func(r *model.MatchRecord) { r.Winner = "Third Team" }},
		{name: "single player", mutate: func(r *model.MatchRecord) { r.Players = r.Players[:1] }},
		{name: "no players", mutate: func(r *model.MatchRecord) { r.Players = nil }},
		{name: "one side fully unattributed", mutate: func(r *model.MatchRecord) {
			r.Players[1].HeroID = -1
		}},
		{name: "unknown hero ids everywhere", mutate: func(r *model.MatchRecord) {
			r.Players[0].HeroID = 999
			r.Players[1].HeroID = 998
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := New(testHeroMap(t))
			rec := makeMatch("m1", teamIron)
			tt.mutate(&rec)
			agg.Fold(rec)

			res := agg.Result()
			if res.Processed != 0 || res.Skipped != 1 {
				t.Errorf("processed/skipped = %d/%d, want 0/1", res.Processed, res.Skipped)
			}
			if got := res.Pairs.Matches[0][1]; got != 0 {
				t.Errorf("Matches[0][1] = %d, want 0", got)
			}
		})
	}
}

func TestFoldDropsPlayersWithoutRejectingRecord(t *testing.T) {
	agg := New(testHeroMap(t))

	rec := model.MatchRecord{
		MatchID:     "m1",
		RadiantTeam: teamIron,
		DireTeam:    teamCrest,
		Winner:      teamIron,
		Players: []model.PlayerEntry{
			player(axeID, teamIron),
			player(banditID, teamIron),
			player(999, teamIron),          // unknown hero id
			player(corsairID, "Stand-Ins"), // team name matches neither side
			player(drakeID, teamCrest),
		},
	}
	agg.Fold(rec)

	res := agg.Result()
	if res.Processed != 1 || res.Skipped != 0 {
		t.Fatalf("processed/skipped = %d/%d, want 1/0", res.Processed, res.Skipped)
	}

	// Two attributed radiant heroes against one dire hero.
	if got := res.Pairs.Matches[0][3]; got != 1 {
		t.Errorf("Matches[axe][drake] = %d, want 1", got)
	}
	if got := res.Pairs.Matches[1][3]; got != 1 {
		t.Errorf("Matches[bandit][drake] = %d, want 1", got)
	}
	if got := res.Pairs.Matches[3][0]; got != 1 {
		t.Errorf("Matches[drake][axe] = %d, want 1", got)
	}
	if res.Heroes[2].Matches != 0 {
		t.Errorf("corsair matches = %d, want 0", res.Heroes[2].Matches)
	}
	if res.Heroes[3].Matches != 1 || res.Heroes[3].Wins != 0 {
		t.Errorf("drake aggregate = %d/%d, want 1/0", res.Heroes[3].Matches, res.Heroes[3].Wins)
	}
}

func TestFoldAccumulatesMetricsIndependently(t *testing.T) {
	agg := New(testHeroMap(t))

	rec := makeMatch("m1", teamIron)
	rec.DurationMinutes = opt(38.5)
	rec.Players[0].GPM = opt(520)
	rec.Players[0].XPM = opt(610)
	rec.Players[1].GPM = opt(480)
	// Bandit's XPM sample is absent.
	agg.Fold(rec)

	rec2 := makeMatch("m2", teamCrest)
	rec2.Players[0].GPM = opt(500)
	agg.Fold(rec2)

	res := agg.Result()
	axe, bandit := res.Heroes[0], res.Heroes[1]

	if axe.GPM.Count != 2 || axe.GPM.Sum != 1020 {
		t.Errorf("axe GPM = %v/%d, want 1020/2", axe.GPM.Sum, axe.GPM.Count)
	}
	if axe.XPM.Count != 1 || axe.XPM.Sum != 610 {
		t.Errorf("axe XPM = %v/%d, want 610/1", axe.XPM.Sum, axe.XPM.Count)
	}
	if bandit.GPM.Count != 1 || bandit.GPM.Sum != 480 {
		t.Errorf("bandit GPM = %v/%d, want 480/1", bandit.GPM.Sum, bandit.GPM.Count)
	}
	if bandit.XPM.Count != 0 {
		t.Errorf("bandit XPM count = %d, want 0", bandit.XPM.Count)
	}

	// Match duration lands on every attributed player of the match.
	if axe.Duration.Count != 1 || axe.Duration.Sum != 38.5 {
		t.Errorf("axe duration = %v/%d, want 38.5/1", axe.Duration.Sum, axe.Duration.Count)
	}
	if bandit.Duration.Count != 1 {
		t.Errorf("bandit duration count = %d, want 1", bandit.Duration.Count)
	}
}

func TestFoldFullLineupPairObservations(t *testing.T) {
	hm, err := NewHeroMap(map[int]int{
		1: 0, 2: 1, 3: 2, 4: 3, 5: 4,
		6: 5, 7: 6, 8: 7, 9: 8, 10: 9,
	}, 10)
	if err != nil {
		t.Fatalf("NewHeroMap: %v", err)
	}
	agg := New(hm)

	rec := model.MatchRecord{
		MatchID:     "m1",
		RadiantTeam: teamIron,
		DireTeam:    teamCrest,
		Winner:      teamCrest,
	}
	for id := 1; id <= 5; id++ {
		rec.Players = append(rec.Players, player(id, teamIron))
	}
	for id := 6; id <= 10; id++ {
		rec.Players = append(rec.Players, player(id, teamCrest))
	}
	agg.Fold(rec)

	res := agg.Result()

	// 5x5 lineups: 25 encounters, mirrored into both directions.
	var total, direWins int
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			total += res.Pairs.Matches[i][j]
			direWins += res.Pairs.Wins[i][j]
		}
	}
	if total != 50 {
		t.Errorf("total directed observations = %d, want 50", total)
	}
	if direWins != 25 {
		t.Errorf("winning-side observations = %d, want 25", direWins)
	}
	if got := res.Pairs.Wins[0][5]; got != 0 {
		t.Errorf("Wins[radiant][dire] = %d, want 0 for a dire win", got)
	}
	if got := res.Pairs.Wins[5][0]; got != 1 {
		t.Errorf("Wins[dire][radiant] = %d, want 1 for a dire win", got)
	}
}
