package model

import (
	"fmt"
	"strconv"
)

// Side represents which of the two wager sides a value refers to.
type Side int

const (
	SideUnknown Side = 0
	SideTeam1   Side = 1
	SideTeam2   Side = 2
)

func (s Side) String() string {
	switch s {
	case SideTeam1:
		return "team1"
	case SideTeam2:
		return "team2"
	default:
		return "?"
	}
}

// OptFloat is an optional numeric value. Raw feeds serialize numbers
// inconsistently (float, quoted string, null, NaN/Inf); absent or
// unparseable values carry OK == false and are skipped, never errors.
type OptFloat struct {
	Value float64
	OK    bool
}

// ---- Raw records produced by the parser ----

// PlayerEntry is one player line inside a match record, already normalized:
// HeroID is -1 when the feed had no usable hero id for the slot.
type PlayerEntry struct {
	HeroID int
	Team   string

	GPM, XPM               OptFloat
	HeroDamage             OptFloat
	TowerDamage            OptFloat
	DamageTaken            OptFloat
	TeamfightParticipation OptFloat
}

// MatchRecord is one newline-delimited match observation. MatchID is the
// feed's id when present, otherwise a digest of the raw line (stable across
// re-imports).
type MatchRecord struct {
	MatchID         string
	RadiantTeam     string
	DireTeam        string
	Winner          string
	DurationMinutes OptFloat
	Players         []PlayerEntry
}

// ---- Aggregated counters ----

// MetricAccum accumulates one tracked metric for one hero. Each metric is
// counted independently: a missing GPM sample does not exclude a present XPM.
type MetricAccum struct {
	Sum   float64
	Count int
}

func (m *MetricAccum) Add(v float64) {
	m.Sum += v
	m.Count++
}

// Avg returns the accumulated average, 0 when no samples exist.
func (m MetricAccum) Avg() float64 {
	if m.Count == 0 {
		return 0
	}
	return m.Sum / float64(m.Count)
}

// HeroAggregate holds per-hero totals across all folded matches. The tracked
// metrics are a fixed set of named fields so the schema is checked at compile
// time rather than by map-key convention.
type HeroAggregate struct {
	Matches int
	Wins    int

	Duration               MetricAccum // match duration in minutes
	GPM, XPM               MetricAccum
	HeroDamage             MetricAccum
	TowerDamage            MetricAccum
	DamageTaken            MetricAccum
	TeamfightParticipation MetricAccum
}

// WinRatePct returns the hero's win rate as a percentage, 0 with no matches.
func (h HeroAggregate) WinRatePct() float64 {
	if h.Matches == 0 {
		return 0
	}
	return float64(h.Wins) / float64(h.Matches) * 100
}

// PairCounter holds the ordered-pair opposition grids. For every opposing
// encounter both directions are counted, so Matches[i][j] == Matches[j][i]
// and Wins[i][j] + Wins[j][i] == Matches[i][j] hold by construction.
type PairCounter struct {
	Matches [][]int
	Wins    [][]int
}

// NewPairCounter allocates zeroed n×n grids.
func NewPairCounter(n int) *PairCounter {
	p := &PairCounter{
		Matches: make([][]int, n),
		Wins:    make([][]int, n),
	}
	for i := 0; i < n; i++ {
		p.Matches[i] = make([]int, n)
		p.Wins[i] = make([]int, n)
	}
	return p
}

func (p *PairCounter) Size() int { return len(p.Matches) }

// ---- Published matrix ----

// AdvantageCell is one present cell of the published matrix. Advantage and
// WinRate stay formatted strings because the published file is parsed as
// text by consumers — the string-vs-int asymmetry is the wire contract.
type AdvantageCell struct {
	Advantage string // win rate − 50, "%.4f"
	WinRate   string // "%.4f"
	Samples   int
}

// AdvantagePct returns the cell's advantage as a number, 0 when the stored
// string does not parse.
func (c *AdvantageCell) AdvantagePct() float64 {
	v, err := strconv.ParseFloat(c.Advantage, 64)
	if err != nil {
		return 0
	}
	return v
}

// PublishedMatrix is the full published artifact: hero ordering, background
// assets, per-hero strings/averages, and the N×N cell grid (nil = withheld
// by the sample gate or diagonal). Built once per run, immutable after.
type PublishedMatrix struct {
	Heroes      []string
	Backgrounds []string
	WinRates    []string // "%.2f" per hero, "0.00" with no matches

	GPM, XPM               []float64
	HeroDamage             []float64
	TowerDamage            []float64
	DamageTaken            []float64
	TeamfightParticipation []float64
	MatchDuration          []float64

	Cells      [][]*AdvantageCell
	UpdateTime string // ISO date, e.g. "2026-08-23"
}

func (m *PublishedMatrix) HeroCount() int { return len(m.Heroes) }

// Cell returns the (i, j) advantage cell or nil when absent or out of range.
func (m *PublishedMatrix) Cell(i, j int) *AdvantageCell {
	if i < 0 || i >= len(m.Cells) {
		return nil
	}
	row := m.Cells[i]
	if j < 0 || j >= len(row) {
		return nil
	}
	return row[j]
}

// ---- Wagers and projection ----

// HistoricalWager is one parsed row of the historical wager CSV.
type HistoricalWager struct {
	Team1, Team2             string
	Team1Heroes, Team2Heroes []string
	Team1Odds, Team2Odds     OptFloat
	Winner                   string
}

// ProjectedMatch is a resolved wager reduced to the single predictive scalar
// plus the settled facts. Slice order mirrors wager input order; bankroll
// simulation depends on it.
type ProjectedMatch struct {
	Delta     float64
	OddsTeam1 float64
	OddsTeam2 float64
	Winner    Side
}

// Odds returns the decimal odds for the given side.
func (p ProjectedMatch) Odds(s Side) float64 {
	if s == SideTeam1 {
		return p.OddsTeam1
	}
	return p.OddsTeam2
}

// ---- Simulation results ----

// StrategyResult is one flat-percentage grid cell. Immutable once built.
type StrategyResult struct {
	StrategyGroup  string // e.g. "Pct20"
	HeroFilter     string // always "none" in this pipeline
	OddsCondition  string // e.g. "<1.6"
	Metric         string // always "WR_DELTA"
	DeltaThreshold int

	Bets, Wins, Losses int
	WinPct             float64 // 2dp
	FinalBank          int
	Profit             int
	TotalStaked        int
	ROI                float64 // 4dp, 0 when nothing staked
	MaxDrawdown        int
	MaxStake           int
}

// MartingaleResult is one loss-doubling grid cell. Trade/win/loss counts
// describe the whole eligible trade list; FinalBank and Bankrupt come from
// the simulated portion of it.
type MartingaleResult struct {
	OddsCap        float64
	DeltaThreshold int

	TotalTrades, Wins, Losses int
	MaxLosingStreak           int
	BaseBet                   int
	FinalBank                 int
	Bankrupt                  bool
}

// ---- Archive records ----

// MatchSummary is a lightweight archived-match record for list/show commands.
type MatchSummary struct {
	MatchID         string
	RadiantTeam     string
	DireTeam        string
	Winner          string
	DurationMinutes float64 // 0 when the feed had none
	SourceFile      string
	ImportedAt      string
}

// BacktestRun describes one stored simulation run.
type BacktestRun struct {
	RunID       string
	Kind        string // "strategy" or "martingale"
	MatrixPath  string
	WagersPath  string
	DatasetRows int
	DroppedRows int
	CreatedAt   string
}

func (r *BacktestRun) Describe() string {
	return fmt.Sprintf("%s run %s (%d rows, %d dropped)", r.Kind, r.RunID, r.DatasetRows, r.DroppedRows)
}
