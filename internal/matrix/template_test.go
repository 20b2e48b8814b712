package matrix

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestExtractArray(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "plain assignment",
			doc:  `var heroes = ["Axe", "Bandit"];`,
			want: `["Axe", "Bandit"]`,
		},
		{
			name: "surrounded by markup",
			doc:  "<script>\nvar junk = 1;\nvar heroes = [\"Axe\"];\n</script>",
			want: `["Axe"]`,
		},
		{
			name: "nested brackets",
			doc:  `heroes = [["Axe", 1], ["Bandit", 2]]; trailing`,
			want: `[["Axe", 1], ["Bandit", 2]]`,
		},
		{
			name: "longer identifier earlier in the document",
			doc:  `var heroes_bg = ["bg.jpg"]; var heroes = ["Axe"];`,
			want: `["Axe"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractArray([]byte(tt.doc), "heroes")
			if err != nil {
				t.Fatalf("ExtractArray: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("ExtractArray = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExtractArrayErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "marker absent", doc: `var villains = ["X"];`},
		{name: "no array after marker", doc: `var heroes = "not an array";`},
		{name: "unmatched bracket", doc: `var heroes = ["Axe", ["Bandit"];`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractArray([]byte(tt.doc), "heroes")
			var tErr *TemplateError
			if !errors.As(err, &tErr) {
				t.Fatalf("want *TemplateError, got %v", err)
			}
			if tErr.Name != "heroes" {
				t.Errorf("error names %q, want heroes", tErr.Name)
			}
		})
	}
}

func TestLoadHeroTemplate(t *testing.T) {
	doc := `<script>
var heroes = ["Axe", "Bandit", "Corsair"];
var heroes_bg = ["axe.jpg", "bandit.jpg", "corsair.jpg"];
</script>`
	path := filepath.Join(t.TempDir(), "template.html")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	tpl, err := LoadHeroTemplate(path)
	if err != nil {
		t.Fatalf("LoadHeroTemplate: %v", err)
	}
	if tpl.Size() != 3 {
		t.Fatalf("Size = %d, want 3", tpl.Size())
	}
	if tpl.Names[1] != "Bandit" || tpl.Backgrounds[1] != "bandit.jpg" {
		t.Errorf("index 1 = %q/%q, want Bandit/bandit.jpg", tpl.Names[1], tpl.Backgrounds[1])
	}
}

func TestLoadHeroTemplateLengthMismatch(t *testing.T) {
	doc := `var heroes = ["Axe", "Bandit"];
var heroes_bg = ["axe.jpg"];`
	path := filepath.Join(t.TempDir(), "template.html")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	_, err := LoadHeroTemplate(path)
	var tErr *TemplateError
	if !errors.As(err, &tErr) {
		t.Fatalf("want *TemplateError, got %v", err)
	}
}

func TestLoadHeroTemplateMissingFile(t *testing.T) {
	if _, err := LoadHeroTemplate(filepath.Join(t.TempDir(), "absent.html")); err == nil {
		t.Fatal("want error for missing file, got nil")
	}
}
