// Package matrix builds the published hero-advantage matrix and reads and
// writes its script-assignment wire format.
package matrix

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// TemplateError reports a hero template that cannot be used: a missing
// assignment marker, a malformed array, or name/background lists of
// different lengths.
type TemplateError struct {
	Name   string
	Reason string
}

func (e *TemplateError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("hero template: %s", e.Reason)
	}
	return fmt.Sprintf("hero template: %s: %s", e.Name, e.Reason)
}

// HeroTemplate fixes the matrix ordering: Names[i] and Backgrounds[i] belong
// to matrix index i.
type HeroTemplate struct {
	Names       []string
	Backgrounds []string
}

// Size returns the matrix dimension N.
func (t *HeroTemplate) Size() int { return len(t.Names) }

// ExtractArray locates `name =` in doc and returns the bracket-delimited
// array literal that follows. The scan tracks bracket depth only; string
// values containing unescaped brackets are outside the format.
func ExtractArray(doc []byte, name string) ([]byte, error) {
	marker := []byte(name + " =")
	at := bytes.Index(doc, marker)
	if at == -1 {
		return nil, &TemplateError{Name: name, Reason: "assignment marker not found"}
	}

	rest := doc[at+len(marker):]
	open := bytes.IndexByte(rest, '[')
	if open == -1 {
		return nil, &TemplateError{Name: name, Reason: "no array literal after marker"}
	}

	depth := 0
	for i := open; i < len(rest); i++ {
		switch rest[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return rest[open : i+1], nil
			}
		}
	}
	return nil, &TemplateError{Name: name, Reason: "unmatched opening bracket"}
}

// LoadHeroTemplate extracts the heroes and heroes_bg arrays from the template
// file. The two arrays must have the same length.
func LoadHeroTemplate(path string) (*HeroTemplate, error) {
	doc, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hero template: %w", err)
	}

	names, err := extractStrings(doc, "heroes")
	if err != nil {
		return nil, err
	}
	bgs, err := extractStrings(doc, "heroes_bg")
	if err != nil {
		return nil, err
	}
	if len(names) != len(bgs) {
		return nil, &TemplateError{
			Reason: fmt.Sprintf("heroes has %d entries but heroes_bg has %d", len(names), len(bgs)),
		}
	}
	return &HeroTemplate{Names: names, Backgrounds: bgs}, nil
}

func extractStrings(doc []byte, name string) ([]string, error) {
	raw, err := ExtractArray(doc, name)
	if err != nil {
		return nil, err
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &TemplateError{Name: name, Reason: fmt.Sprintf("array is not valid JSON: %v", err)}
	}
	return out, nil
}
