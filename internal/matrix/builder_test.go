package matrix

import (
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/podkolzin/go-hero-metrics/internal/model"
)

// buildFixture returns a 3-hero build: axe beats bandit 4 of 6, the
// axe/corsair pairing sits below the sample floor, corsair never plays.
func buildFixture(t *testing.T) *model.PublishedMatrix {
	t.Helper()

	heroes := make([]model.HeroAggregate, 3)
	heroes[0].Matches, heroes[0].Wins = 6, 4
	heroes[0].GPM = model.MetricAccum{Sum: 1021, Count: 3}
	heroes[0].Duration = model.MetricAccum{Sum: 77, Count: 2}
	heroes[1].Matches, heroes[1].Wins = 6, 2

	pairs := model.NewPairCounter(3)
	pairs.Matches[0][1], pairs.Matches[1][0] = 6, 6
	pairs.Wins[0][1], pairs.Wins[1][0] = 4, 2
	pairs.Matches[0][2], pairs.Matches[2][0] = 4, 4
	pairs.Wins[0][2] = 4

	tpl := &HeroTemplate{
		Names:       []string{"Axe", "Bandit", "Corsair"},
		Backgrounds: []string{"axe.jpg", "bandit.jpg", "corsair.jpg"},
	}

	m, err := Build(heroes, pairs, tpl, Params{
		MinSample:  5,
		UpdateTime: time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

func TestBuildFormatting(t *testing.T) {
	m := buildFixture(t)

	if got := m.WinRates[0]; got != "66.67" {
		t.Errorf("WinRates[0] = %q, want 66.67", got)
	}
	if got := m.WinRates[1]; got != "33.33" {
		t.Errorf("WinRates[1] = %q, want 33.33", got)
	}
	// Zero matches renders the guarded default, not a division result.
	if got := m.WinRates[2]; got != "0.00" {
		t.Errorf("WinRates[2] = %q, want 0.00", got)
	}

	if got := m.GPM[0]; got != 340.33 {
		t.Errorf("GPM[0] = %v, want 340.33", got)
	}
	if got := m.GPM[1]; got != 0 {
		t.Errorf("GPM[1] = %v, want 0", got)
	}
	if got := m.MatchDuration[0]; got != 38.5 {
		t.Errorf("MatchDuration[0] = %v, want 38.5", got)
	}

	if got := m.UpdateTime; got != "2026-08-23" {
		t.Errorf("UpdateTime = %q, want 2026-08-23", got)
	}
}

func TestBuildCellContract(t *testing.T) {
	m := buildFixture(t)

	c := m.Cell(0, 1)
	if c == nil {
		t.Fatal("Cell(0,1) absent, want present")
	}
	if c.Advantage != "16.6667" || c.WinRate != "66.6667" || c.Samples != 6 {
		t.Errorf("Cell(0,1) = %q/%q/%d, want 16.6667/66.6667/6", c.Advantage, c.WinRate, c.Samples)
	}

	r := m.Cell(1, 0)
	if r == nil {
		t.Fatal("Cell(1,0) absent, want present")
	}
	if r.Advantage != "-16.6667" || r.WinRate != "33.3333" {
		t.Errorf("Cell(1,0) = %q/%q, want -16.6667/33.3333", r.Advantage, r.WinRate)
	}
}

func TestBuildGating(t *testing.T) {
	m := buildFixture(t)

	for i := 0; i < 3; i++ {
		if m.Cell(i, i) != nil {
			t.Errorf("Cell(%d,%d) present on the diagonal", i, i)
		}
	}
	// 4 samples against a floor of 5.
	if m.Cell(0, 2) != nil {
		t.Error("Cell(0,2) present below the sample floor")
	}
	if m.Cell(2, 0) != nil {
		t.Error("Cell(2,0) present below the sample floor")
	}
}

func TestBuildPairProperties(t *testing.T) {
	m := buildFixture(t)

	a, b := m.Cell(0, 1), m.Cell(1, 0)
	if got := a.AdvantagePct() + b.AdvantagePct(); math.Abs(got) > 1e-9 {
		t.Errorf("advantage(0,1) + advantage(1,0) = %v, want 0", got)
	}

	wrSum := parsePct(t, a.WinRate) + parsePct(t, b.WinRate)
	if math.Abs(wrSum-100) > 0.001 {
		t.Errorf("win rates sum to %v, want 100", wrSum)
	}
}

func parsePct(t *testing.T, s string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return v
}

func TestBuildSizeMismatch(t *testing.T) {
	tpl := &HeroTemplate{Names: []string{"Axe"}, Backgrounds: []string{"axe.jpg"}}
	_, err := Build(make([]model.HeroAggregate, 2), model.NewPairCounter(2), tpl, Params{MinSample: 5})
	if err == nil {
		t.Fatal("want error for aggregate/template size mismatch, got nil")
	}
}

func TestBuildDefaults(t *testing.T) {
	heroes := make([]model.HeroAggregate, 2)
	pairs := model.NewPairCounter(2)
	pairs.Matches[0][1], pairs.Matches[1][0] = 4, 4
	pairs.Wins[0][1] = 3
	tpl := &HeroTemplate{Names: []string{"A", "B"}, Backgrounds: []string{"a", "b"}}

	m, err := Build(heroes, pairs, tpl, Params{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// 4 samples stay below the default floor of 5.
	if m.Cell(0, 1) != nil {
		t.Error("Cell(0,1) present, want gated by DefaultMinSample")
	}
	if m.UpdateTime == "" {
		t.Error("UpdateTime empty, want today")
	}
}
