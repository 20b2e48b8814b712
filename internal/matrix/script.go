package matrix

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/podkolzin/go-hero-metrics/internal/model"
)

// The published matrix is a sequence of `var name = <json>;` lines in this
// fixed order. Everything after the `=` is a JSON literal, so the file can
// be reloaded with a line splitter and a JSON decoder instead of a script
// engine.

// WriteScript renders m into the published assignment format.
func WriteScript(w io.Writer, m *model.PublishedMatrix) error {
	rows, err := cellRows(m.Cells)
	if err != nil {
		return fmt.Errorf("encode win_rates: %w", err)
	}

	// The per-hero list lines carry ", " between elements; only the
	// win_rates table is compact.
	steps := []struct {
		name    string
		value   any
		compact bool
	}{
		{"heroes", m.Heroes, false},
		{"heroes_bg", m.Backgrounds, false},
		{"heroes_wr", m.WinRates, false},
		{"heroes_gpm", floatArray(m.GPM), false},
		{"heroes_xpm", floatArray(m.XPM), false},
		{"heroes_hero_damage", floatArray(m.HeroDamage), false},
		{"heroes_tower_damage", floatArray(m.TowerDamage), false},
		{"heroes_damage_taken", floatArray(m.DamageTaken), false},
		{"heroes_teamfight_participation", floatArray(m.TeamfightParticipation), false},
		{"heroes_match_duration", floatArray(m.MatchDuration), false},
		{"win_rates", rows, true},
		{"update_time", m.UpdateTime, true},
	}

	var b bytes.Buffer
	for _, s := range steps {
		var v []byte
		if s.compact {
			v, err = jsonValue(s.value)
		} else {
			v, err = spacedArray(s.value)
		}
		if err != nil {
			return fmt.Errorf("encode %s: %w", s.name, err)
		}
		b.WriteString("var ")
		b.WriteString(s.name)
		b.WriteString(" = ")
		b.Write(v)
		b.WriteString(";\n")
	}

	_, err = w.Write(b.Bytes())
	return err
}

// WriteFile publishes m to path.
func WriteFile(path string, m *model.PublishedMatrix) error {
	var b bytes.Buffer
	if err := WriteScript(&b, m); err != nil {
		return err
	}
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write matrix: %w", err)
	}
	return nil
}

// ReadFile loads a published matrix from path.
func ReadFile(path string) (*model.PublishedMatrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open matrix: %w", err)
	}
	defer f.Close()
	return ParseScript(f)
}

// ParseScript reloads a published matrix. Only the restricted assignment
// grammar is recognized: one `name = <json>;` per line, names limited to
// identifier characters, null as the absent-cell marker.
func ParseScript(r io.Reader) (*model.PublishedMatrix, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read matrix: %w", err)
	}

	fields := make(map[string]json.RawMessage)
	for i, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		name, raw, err := splitAssignment(line)
		if err != nil {
			return nil, fmt.Errorf("matrix script: line %d: %w", i+1, err)
		}
		fields[name] = raw
	}

	m := &model.PublishedMatrix{}

	stringArrays := []struct {
		name string
		dst  *[]string
	}{
		{"heroes", &m.Heroes},
		{"heroes_bg", &m.Backgrounds},
		{"heroes_wr", &m.WinRates},
	}
	for _, f := range stringArrays {
		if err := decodeField(fields, f.name, f.dst); err != nil {
			return nil, err
		}
	}

	floatArrays := []struct {
		name string
		dst  *[]float64
	}{
		{"heroes_gpm", &m.GPM},
		{"heroes_xpm", &m.XPM},
		{"heroes_hero_damage", &m.HeroDamage},
		{"heroes_tower_damage", &m.TowerDamage},
		{"heroes_damage_taken", &m.DamageTaken},
		{"heroes_teamfight_participation", &m.TeamfightParticipation},
		{"heroes_match_duration", &m.MatchDuration},
	}
	for _, f := range floatArrays {
		if err := decodeField(fields, f.name, f.dst); err != nil {
			return nil, err
		}
	}

	rawCells, ok := fields["win_rates"]
	if !ok {
		return nil, fmt.Errorf("matrix script: missing win_rates assignment")
	}
	if m.Cells, err = decodeCells(rawCells); err != nil {
		return nil, err
	}

	if err := decodeField(fields, "update_time", &m.UpdateTime); err != nil {
		return nil, err
	}

	n := len(m.Heroes)
	for _, f := range stringArrays[1:] {
		if len(*f.dst) != n {
			return nil, fmt.Errorf("matrix script: %s has %d entries, want %d", f.name, len(*f.dst), n)
		}
	}
	for _, f := range floatArrays {
		if len(*f.dst) != n {
			return nil, fmt.Errorf("matrix script: %s has %d entries, want %d", f.name, len(*f.dst), n)
		}
	}
	if len(m.Cells) != n {
		return nil, fmt.Errorf("matrix script: win_rates has %d rows, want %d", len(m.Cells), n)
	}
	for i, row := range m.Cells {
		if len(row) != n {
			return nil, fmt.Errorf("matrix script: win_rates row %d has %d cells, want %d", i, len(row), n)
		}
	}

	return m, nil
}

// splitAssignment takes one `var name = <json>;` line apart. The leading var
// keyword is optional on read.
func splitAssignment(line string) (string, json.RawMessage, error) {
	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, "var ")

	eq := strings.IndexByte(s, '=')
	if eq < 0 {
		return "", nil, fmt.Errorf("not an assignment")
	}

	name := strings.TrimSpace(s[:eq])
	if name == "" {
		return "", nil, fmt.Errorf("empty assignment name")
	}
	for _, r := range name {
		if r != '_' && !('a' <= r && r <= 'z') && !('A' <= r && r <= 'Z') && !('0' <= r && r <= '9') {
			return "", nil, fmt.Errorf("invalid identifier %q", name)
		}
	}

	val := strings.TrimSpace(s[eq+1:])
	val, ok := strings.CutSuffix(val, ";")
	if !ok {
		return "", nil, fmt.Errorf("missing trailing semicolon")
	}
	val = strings.TrimSpace(val)
	if val == "" {
		return "", nil, fmt.Errorf("empty value for %s", name)
	}
	return name, json.RawMessage(val), nil
}

func decodeField(fields map[string]json.RawMessage, name string, dst any) error {
	raw, ok := fields[name]
	if !ok {
		return fmt.Errorf("matrix script: missing %s assignment", name)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("matrix script: %s: %w", name, err)
	}
	return nil
}

func decodeCells(raw json.RawMessage) ([][]*model.AdvantageCell, error) {
	var rows [][]json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("matrix script: win_rates: %w", err)
	}

	cells := make([][]*model.AdvantageCell, len(rows))
	for i, row := range rows {
		cells[i] = make([]*model.AdvantageCell, len(row))
		for j, rc := range row {
			if string(rc) == "null" {
				continue
			}
			var vals []any
			if err := json.Unmarshal(rc, &vals); err != nil || len(vals) != 3 {
				return nil, fmt.Errorf("matrix script: win_rates[%d][%d]: want [advantage, win_rate, samples] or null", i, j)
			}
			adv, ok1 := vals[0].(string)
			wr, ok2 := vals[1].(string)
			samples, ok3 := vals[2].(float64)
			if !ok1 || !ok2 || !ok3 {
				return nil, fmt.Errorf("matrix script: win_rates[%d][%d]: want [string, string, number]", i, j)
			}
			cells[i][j] = &model.AdvantageCell{
				Advantage: adv,
				WinRate:   wr,
				Samples:   int(samples),
			}
		}
	}
	return cells, nil
}

// jsonValue marshals v without HTML escaping so hero names survive verbatim.
func jsonValue(v any) ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(b.Bytes(), "\n"), nil
}

// spacedArray renders a flat array with ", " between elements.
func spacedArray(v any) ([]byte, error) {
	var elems []json.RawMessage
	switch vv := v.(type) {
	case []string:
		elems = make([]json.RawMessage, len(vv))
		for i, s := range vv {
			e, err := jsonValue(s)
			if err != nil {
				return nil, err
			}
			elems[i] = e
		}
	case []json.RawMessage:
		elems = vv
	default:
		return jsonValue(v)
	}

	var b bytes.Buffer
	b.WriteByte('[')
	for i, e := range elems {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Write(e)
	}
	b.WriteByte(']')
	return b.Bytes(), nil
}

// floatArray pre-renders metric averages so integral values keep a trailing
// .0 and stay visibly float-typed in the published file.
func floatArray(vs []float64) []json.RawMessage {
	out := make([]json.RawMessage, len(vs))
	for i, v := range vs {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		out[i] = json.RawMessage(s)
	}
	return out
}

func cellRows(cells [][]*model.AdvantageCell) ([][]json.RawMessage, error) {
	rows := make([][]json.RawMessage, len(cells))
	for i, row := range cells {
		rows[i] = make([]json.RawMessage, len(row))
		for j, c := range row {
			if c == nil {
				continue
			}
			v, err := jsonValue([]any{c.Advantage, c.WinRate, c.Samples})
			if err != nil {
				return nil, fmt.Errorf("cell [%d][%d]: %w", i, j, err)
			}
			rows[i][j] = v
		}
	}
	return rows, nil
}
