package dataset

import (
	"strconv"
	"strings"

	"github.com/podkolzin/go-hero-metrics/internal/model"
)

const rosterSize = 5

// NormalizeHeroName flattens a display name for lookup: non-breaking spaces
// become regular spaces, surrounding whitespace is trimmed, case is folded.
func NormalizeHeroName(name string) string {
	name = strings.ReplaceAll(name, " ", " ")
	return strings.ToLower(strings.TrimSpace(name))
}

// Projection is the simulator input: matches in source-row order plus drop
// diagnostics.
type Projection struct {
	Matches []model.ProjectedMatch
	Rows    int
	Dropped int
}

// Project resolves each wager row against the matrix and reduces it to a
// skill delta. Rows that cannot be fully resolved (roster size, unknown
// hero name, ambiguous winner, missing odds) are dropped and counted, never
// surfaced as errors. Output order follows input order.
func Project(m *model.PublishedMatrix, wagers []model.HistoricalWager) Projection {
	index := make(map[string]int, len(m.Heroes))
	for i, name := range m.Heroes {
		index[NormalizeHeroName(name)] = i
	}

	winRate := make([]float64, len(m.WinRates))
	for i, s := range m.WinRates {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			winRate[i] = v
		}
	}

	p := Projection{Rows: len(wagers)}
	for _, w := range wagers {
		team1, ok1 := resolveRoster(index, w.Team1Heroes)
		team2, ok2 := resolveRoster(index, w.Team2Heroes)
		if !ok1 || !ok2 {
			p.Dropped++
			continue
		}

		winner := model.SideUnknown
		switch {
		case w.Winner != "" && w.Winner == w.Team1:
			winner = model.SideTeam1
		case w.Winner != "" && w.Winner == w.Team2:
			winner = model.SideTeam2
		}
		if winner == model.SideUnknown || !w.Team1Odds.OK || !w.Team2Odds.OK {
			p.Dropped++
			continue
		}

		delta := teamScore(m, winRate, team1, team2) - teamScore(m, winRate, team2, team1)
		p.Matches = append(p.Matches, model.ProjectedMatch{
			Delta:     delta,
			OddsTeam1: w.Team1Odds.Value,
			OddsTeam2: w.Team2Odds.Value,
			Winner:    winner,
		})
	}
	return p
}

// resolveRoster maps five display names to matrix indices; any miss or a
// wrong roster size fails the whole roster.
func resolveRoster(index map[string]int, names []string) ([]int, bool) {
	if len(names) != rosterSize {
		return nil, false
	}
	out := make([]int, 0, rosterSize)
	for _, n := range names {
		i, ok := index[NormalizeHeroName(n)]
		if !ok {
			return nil, false
		}
		out = append(out, i)
	}
	return out, true
}

// teamScore sums each hero's own win rate with its aggregate advantage over
// the opposing lineup. A stored cell advantage(o, h) speaks from the
// opponent's perspective, so the accumulated sum is subtracted to face h.
func teamScore(m *model.PublishedMatrix, winRate []float64, team, opps []int) float64 {
	var score float64
	for _, h := range team {
		adv := 0.0
		for _, o := range opps {
			if c := m.Cell(o, h); c != nil {
				adv += c.AdvantagePct()
			}
		}
		score += winRate[h] - adv
	}
	return score
}
