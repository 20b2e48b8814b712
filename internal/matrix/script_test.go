package matrix

import (
	"bytes"
	"strings"
	"testing"

	"github.com/podkolzin/go-hero-metrics/internal/model"
)

// scriptFixture is a hand-built two-hero matrix with one qualified pairing.
func scriptFixture() *model.PublishedMatrix {
	return &model.PublishedMatrix{
		Heroes:                 []string{"Axe", "Bandit"},
		Backgrounds:            []string{"axe.jpg", "bandit.jpg"},
		WinRates:               []string{"66.67", "33.33"},
		GPM:                    []float64{512.25, 0},
		XPM:                    []float64{601, 0},
		HeroDamage:             []float64{0, 0},
		TowerDamage:            []float64{0, 0},
		DamageTaken:            []float64{0, 0},
		TeamfightParticipation: []float64{0, 0},
		MatchDuration:          []float64{38.5, 38.5},
		Cells: [][]*model.AdvantageCell{
			{nil, {Advantage: "16.6667", WinRate: "66.6667", Samples: 6}},
			{{Advantage: "-16.6667", WinRate: "33.3333", Samples: 6}, nil},
		},
		UpdateTime: "2026-08-23",
	}
}

const wantScript = `var heroes = ["Axe", "Bandit"];
var heroes_bg = ["axe.jpg", "bandit.jpg"];
var heroes_wr = ["66.67", "33.33"];
var heroes_gpm = [512.25, 0.0];
var heroes_xpm = [601.0, 0.0];
var heroes_hero_damage = [0.0, 0.0];
var heroes_tower_damage = [0.0, 0.0];
var heroes_damage_taken = [0.0, 0.0];
var heroes_teamfight_participation = [0.0, 0.0];
var heroes_match_duration = [38.5, 38.5];
var win_rates = [[null,["16.6667","66.6667",6]],[["-16.6667","33.3333",6],null]];
var update_time = "2026-08-23";
`

func TestWriteScriptLayout(t *testing.T) {
	var b bytes.Buffer
	if err := WriteScript(&b, scriptFixture()); err != nil {
		t.Fatalf("WriteScript: %v", err)
	}
	if b.String() != wantScript {
		t.Errorf("script mismatch:\ngot:\n%s\nwant:\n%s", b.String(), wantScript)
	}
}

func TestScriptRoundTrip(t *testing.T) {
	var first bytes.Buffer
	if err := WriteScript(&first, scriptFixture()); err != nil {
		t.Fatalf("WriteScript: %v", err)
	}

	parsed, err := ParseScript(bytes.NewReader(first.Bytes()))
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}

	var second bytes.Buffer
	if err := WriteScript(&second, parsed); err != nil {
		t.Fatalf("WriteScript after reload: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Errorf("round trip not byte-identical:\nfirst:\n%s\nsecond:\n%s", first.String(), second.String())
	}
}

func TestParseScriptFields(t *testing.T) {
	m, err := ParseScript(strings.NewReader(wantScript))
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}

	if m.HeroCount() != 2 {
		t.Fatalf("HeroCount = %d, want 2", m.HeroCount())
	}
	if m.Heroes[0] != "Axe" || m.WinRates[1] != "33.33" {
		t.Errorf("heroes/wr = %q/%q, want Axe/33.33", m.Heroes[0], m.WinRates[1])
	}
	if m.XPM[0] != 601 {
		t.Errorf("XPM[0] = %v, want 601", m.XPM[0])
	}
	if m.Cell(0, 0) != nil {
		t.Error("Cell(0,0) present, want null")
	}
	c := m.Cell(0, 1)
	if c == nil {
		t.Fatal("Cell(0,1) absent, want present")
	}
	if c.Advantage != "16.6667" || c.Samples != 6 {
		t.Errorf("Cell(0,1) = %q/%d, want 16.6667/6", c.Advantage, c.Samples)
	}
	if got := c.AdvantagePct(); got != 16.6667 {
		t.Errorf("AdvantagePct = %v, want 16.6667", got)
	}
	if m.UpdateTime != "2026-08-23" {
		t.Errorf("UpdateTime = %q, want 2026-08-23", m.UpdateTime)
	}
}

func TestParseScriptToleratesLooseLayout(t *testing.T) {
	// Spaced JSON, a bare assignment without the var keyword, blank lines.
	doc := `
heroes = ["Axe", "Bandit"];
var heroes_bg = ["a.jpg", "b.jpg"];
var heroes_wr = ["50.00", "50.00"];
var heroes_gpm = [1.0, 2.0];
var heroes_xpm = [0.0, 0.0];
var heroes_hero_damage = [0.0, 0.0];
var heroes_tower_damage = [0.0, 0.0];
var heroes_damage_taken = [0.0, 0.0];
var heroes_teamfight_participation = [0.0, 0.0];
var heroes_match_duration = [0.0, 0.0];
var win_rates = [[null, null], [null, null]];
var update_time = "2026-01-01";
`
	m, err := ParseScript(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}
	if m.Heroes[1] != "Bandit" || m.GPM[1] != 2 {
		t.Errorf("parsed %q/%v, want Bandit/2", m.Heroes[1], m.GPM[1])
	}
}

func TestParseScriptRejects(t *testing.T) {
	valid := wantScript

	tests := []struct {
		name   string
		mutate func(string) string
	}{
		{name: "missing semicolon", mutate: func(s string) string {
			return strings.Replace(s, `var update_time = "2026-08-23";`, `var update_time = "2026-08-23"`, 1)
		}},
		{name: "statement instead of assignment", mutate: func(s string) string {
			return s + "alert(1);\n"
		}},
		{name: "missing win_rates", mutate: func(s string) string {
			return removeLine(s, "var win_rates")
		}},
		{name: "missing heroes", mutate: func(s string) string {
			return removeLine(s, "var heroes =")
		}},
		{name: "cell with wrong arity", mutate: func(s string) string {
			return strings.Replace(s, `["16.6667","66.6667",6]`, `["16.6667","66.6667"]`, 1)
		}},
		{name: "length mismatch", mutate: func(s string) string {
			return strings.Replace(s, `var heroes_wr = ["66.67", "33.33"];`, `var heroes_wr = ["66.67"];`, 1)
		}},
		{name: "win_rates row too short", mutate: func(s string) string {
			return strings.Replace(s, `[["-16.6667","33.3333",6],null]`, `[["-16.6667","33.3333",6]]`, 1)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseScript(strings.NewReader(tt.mutate(valid))); err == nil {
				t.Error("want parse error, got nil")
			}
		})
	}
}

// removeLine drops the first line starting with prefix.
func removeLine(s, prefix string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, ln := range lines {
		if strings.HasPrefix(ln, prefix) {
			prefix = "\x00" // drop only the first hit
			continue
		}
		out = append(out, ln)
	}
	return strings.Join(out, "\n")
}
