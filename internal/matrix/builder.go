package matrix

import (
	"fmt"
	"math"
	"time"

	"github.com/podkolzin/go-hero-metrics/internal/model"
)

// DefaultMinSample is the pair-sample floor below which an advantage cell is
// withheld from the published matrix.
const DefaultMinSample = 5

// Params bound one matrix build.
type Params struct {
	// MinSample gates advantage cells; values below 1 fall back to
	// DefaultMinSample.
	MinSample int
	// UpdateTime stamps the published file. Zero means now.
	UpdateTime time.Time
}

// Build renders aggregated counters into a PublishedMatrix ordered by the
// hero template. It never mutates its inputs and is deterministic for a
// fixed Params.
func Build(heroes []model.HeroAggregate, pairs *model.PairCounter, tpl *HeroTemplate, p Params) (*model.PublishedMatrix, error) {
	n := tpl.Size()
	if len(heroes) != n || pairs.Size() != n {
		return nil, fmt.Errorf("matrix build: %d hero aggregates and %d pair rows against a %d-hero template",
			len(heroes), pairs.Size(), n)
	}
	if p.MinSample < 1 {
		p.MinSample = DefaultMinSample
	}
	if p.UpdateTime.IsZero() {
		p.UpdateTime = time.Now()
	}

	m := &model.PublishedMatrix{
		Heroes:      append([]string(nil), tpl.Names...),
		Backgrounds: append([]string(nil), tpl.Backgrounds...),
		WinRates:    make([]string, n),
		UpdateTime:  p.UpdateTime.Format("2006-01-02"),
	}

	m.GPM = make([]float64, n)
	m.XPM = make([]float64, n)
	m.HeroDamage = make([]float64, n)
	m.TowerDamage = make([]float64, n)
	m.DamageTaken = make([]float64, n)
	m.TeamfightParticipation = make([]float64, n)
	m.MatchDuration = make([]float64, n)

	for i, h := range heroes {
		m.WinRates[i] = fmt.Sprintf("%.2f", h.WinRatePct())
		m.GPM[i] = round2(h.GPM.Avg())
		m.XPM[i] = round2(h.XPM.Avg())
		m.HeroDamage[i] = round2(h.HeroDamage.Avg())
		m.TowerDamage[i] = round2(h.TowerDamage.Avg())
		m.DamageTaken[i] = round2(h.DamageTaken.Avg())
		m.TeamfightParticipation[i] = round2(h.TeamfightParticipation.Avg())
		m.MatchDuration[i] = round2(h.Duration.Avg())
	}

	// advantage_pct and win_rate_pct ship as 4-decimal strings while
	// sample_size stays numeric; consumers parse the matrix as text and
	// rely on this exact shape.
	m.Cells = make([][]*model.AdvantageCell, n)
	for i := 0; i < n; i++ {
		m.Cells[i] = make([]*model.AdvantageCell, n)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			samples := pairs.Matches[i][j]
			if samples < p.MinSample {
				continue
			}
			winRate := float64(pairs.Wins[i][j]) / float64(samples) * 100
			m.Cells[i][j] = &model.AdvantageCell{
				Advantage: fmt.Sprintf("%.4f", winRate-50),
				WinRate:   fmt.Sprintf("%.4f", winRate),
				Samples:   samples,
			}
		}
	}

	return m, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
