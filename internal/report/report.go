package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/podkolzin/go-hero-metrics/internal/model"
	"github.com/podkolzin/go-hero-metrics/internal/storage"
)

// PrintHeroTable prints per-hero aggregate stats, one row per hero index.
// names may be nil; unnamed heroes are shown by index.
func PrintHeroTable(w io.Writer, names []string, aggs []model.HeroAggregate) {
	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))

	table.Header("HERO", "MATCHES", "WINS", "WR%", "GPM", "XPM",
		"HERO_DMG", "TOWER_DMG", "DMG_TAKEN", "TF", "MINUTES")

	for i, a := range aggs {
		table.Append(
			heroLabel(names, i),
			strconv.Itoa(a.Matches),
			strconv.Itoa(a.Wins),
			fmt.Sprintf("%.2f", a.WinRatePct()),
			fmt.Sprintf("%.0f", a.GPM.Avg()),
			fmt.Sprintf("%.0f", a.XPM.Avg()),
			fmt.Sprintf("%.0f", a.HeroDamage.Avg()),
			fmt.Sprintf("%.0f", a.TowerDamage.Avg()),
			fmt.Sprintf("%.0f", a.DamageTaken.Avg()),
			fmt.Sprintf("%.2f", a.TeamfightParticipation.Avg()),
			fmt.Sprintf("%.1f", a.Duration.Avg()),
		)
	}
	table.Render()
}

func heroLabel(names []string, i int) string {
	if i < len(names) && names[i] != "" {
		return names[i]
	}
	return "#" + strconv.Itoa(i)
}

// PrintStrategyTable prints strategy results sorted by final bank, best
// first. topN limits the row count; non-positive means all rows.
func PrintStrategyTable(w io.Writer, results []model.StrategyResult, topN int) {
	sorted := make([]model.StrategyResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FinalBank > sorted[j].FinalBank
	})
	if topN > 0 && topN < len(sorted) {
		sorted = sorted[:topN]
	}

	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))

	table.Header("STRATEGY", "ODDS", "DELTA", "BETS", "W", "L", "WIN%",
		"FINAL", "PROFIT", "STAKED", "ROI", "MAX_DD", "MAX_STAKE")

	for _, r := range sorted {
		table.Append(
			r.StrategyGroup,
			r.OddsCondition,
			strconv.Itoa(r.DeltaThreshold),
			strconv.Itoa(r.Bets),
			strconv.Itoa(r.Wins),
			strconv.Itoa(r.Losses),
			fmt.Sprintf("%.2f", r.WinPct),
			strconv.Itoa(r.FinalBank),
			strconv.Itoa(r.Profit),
			strconv.Itoa(r.TotalStaked),
			fmt.Sprintf("%.4f", r.ROI),
			strconv.Itoa(r.MaxDrawdown),
			strconv.Itoa(r.MaxStake),
		)
	}
	table.Render()
}

// PrintMartingaleTable prints the martingale grid in its original order.
func PrintMartingaleTable(w io.Writer, results []model.MartingaleResult) {
	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))

	table.Header("ODDS_CAP", "DELTA", "TRADES", "W", "L", "MAX_STREAK",
		"BASE_BET", "FINAL_BANK", "BANKRUPT")

	for _, r := range results {
		bankrupt := "no"
		if r.Bankrupt {
			bankrupt = "yes"
		}
		table.Append(
			"<"+strconv.FormatFloat(r.OddsCap, 'g', -1, 64),
			strconv.Itoa(r.DeltaThreshold),
			strconv.Itoa(r.TotalTrades),
			strconv.Itoa(r.Wins),
			strconv.Itoa(r.Losses),
			strconv.Itoa(r.MaxLosingStreak),
			strconv.Itoa(r.BaseBet),
			strconv.Itoa(r.FinalBank),
			bankrupt,
		)
	}
	table.Render()
}

// PrintMatchList prints archived match summaries.
func PrintMatchList(w io.Writer, list []model.MatchSummary) {
	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))

	table.Header("MATCH_ID", "RADIANT", "DIRE", "WINNER", "MIN", "IMPORTED")

	for _, s := range list {
		min := "—"
		if s.DurationMinutes > 0 {
			min = fmt.Sprintf("%.1f", s.DurationMinutes)
		}
		table.Append(
			shortID(s.MatchID),
			s.RadiantTeam,
			s.DireTeam,
			s.Winner,
			min,
			s.ImportedAt,
		)
	}
	table.Render()
}

// PrintMatchHeader prints a one-line summary header for one archived match.
func PrintMatchHeader(w io.Writer, s model.MatchSummary) {
	min := "—"
	if s.DurationMinutes > 0 {
		min = fmt.Sprintf("%.1f", s.DurationMinutes)
	}
	fmt.Fprintf(w, "\nRadiant: %s  |  Dire: %s  |  Winner: %s  |  Min: %s  |  ID: %s\n\n",
		s.RadiantTeam, s.DireTeam, s.Winner, min, shortID(s.MatchID))
}

// PrintPlayerRows prints the player lines of one archived match.
func PrintPlayerRows(w io.Writer, players []model.PlayerEntry) {
	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))

	table.Header("SLOT", "HERO_ID", "TEAM", "GPM", "XPM",
		"HERO_DMG", "TOWER_DMG", "DMG_TAKEN", "TF")

	for slot, p := range players {
		hero := "—"
		if p.HeroID >= 0 {
			hero = strconv.Itoa(p.HeroID)
		}
		table.Append(
			strconv.Itoa(slot),
			hero,
			p.Team,
			optCell(p.GPM, "%.0f"),
			optCell(p.XPM, "%.0f"),
			optCell(p.HeroDamage, "%.0f"),
			optCell(p.TowerDamage, "%.0f"),
			optCell(p.DamageTaken, "%.0f"),
			optCell(p.TeamfightParticipation, "%.2f"),
		)
	}
	table.Render()
}

func optCell(v model.OptFloat, format string) string {
	if !v.OK {
		return "—"
	}
	return fmt.Sprintf(format, v.Value)
}

// PrintRunList prints stored backtest runs.
func PrintRunList(w io.Writer, runs []model.BacktestRun) {
	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))

	table.Header("RUN_ID", "KIND", "ROWS", "DROPPED", "MATRIX", "WAGERS", "CREATED")

	for _, r := range runs {
		table.Append(
			shortID(r.RunID),
			r.Kind,
			strconv.Itoa(r.DatasetRows),
			strconv.Itoa(r.DroppedRows),
			r.MatrixPath,
			r.WagersPath,
			r.CreatedAt,
		)
	}
	table.Render()
}

// PrintMatchup prints both directed cells of one hero pair.
func PrintMatchup(w io.Writer, m *model.PublishedMatrix, i, j int) {
	fmt.Fprintf(w, "\n%s (WR %s)  vs  %s (WR %s)\n\n",
		m.Heroes[i], m.WinRates[i], m.Heroes[j], m.WinRates[j])

	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))

	table.Header("DIRECTION", "ADV%", "WR%", "SAMPLES")
	appendCell := func(a, b int) {
		label := m.Heroes[a] + " vs " + m.Heroes[b]
		if c := m.Cell(a, b); c != nil {
			table.Append(label, c.Advantage, c.WinRate, strconv.Itoa(c.Samples))
		} else {
			table.Append(label, "—", "—", "—")
		}
	}
	appendCell(i, j)
	appendCell(j, i)
	table.Render()
}

// PrintHeroProfile prints one hero's published per-hero line.
func PrintHeroProfile(w io.Writer, m *model.PublishedMatrix, i int) {
	fmt.Fprintf(w, "\nHero: %s  |  WR: %s  |  GPM: %.1f  |  XPM: %.1f  |  Min: %.1f  |  Updated: %s\n\n",
		m.Heroes[i], m.WinRates[i],
		metricAt(m.GPM, i), metricAt(m.XPM, i), metricAt(m.MatchDuration, i),
		m.UpdateTime)
}

// PrintHeroMatchups prints one hero's row of the matrix sorted by advantage,
// best pairing first (worst first when worst is set). topN limits the row
// count; non-positive means all rows. Gated cells are left out entirely.
func PrintHeroMatchups(w io.Writer, m *model.PublishedMatrix, i, topN int, worst bool) {
	type row struct {
		opp  string
		cell *model.AdvantageCell
		adv  float64
	}
	rows := make([]row, 0, m.HeroCount())
	for j := 0; j < m.HeroCount(); j++ {
		c := m.Cell(i, j)
		if c == nil {
			continue
		}
		rows = append(rows, row{m.Heroes[j], c, c.AdvantagePct()})
	}
	sort.SliceStable(rows, func(a, b int) bool {
		if worst {
			return rows[a].adv < rows[b].adv
		}
		return rows[a].adv > rows[b].adv
	})
	if topN > 0 && topN < len(rows) {
		rows = rows[:topN]
	}

	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))

	table.Header("OPPONENT", "ADV%", "WR%", "SAMPLES")
	for _, r := range rows {
		table.Append(r.opp, r.cell.Advantage, r.cell.WinRate, strconv.Itoa(r.cell.Samples))
	}
	table.Render()
}

func metricAt(arr []float64, i int) float64 {
	if i < 0 || i >= len(arr) {
		return 0
	}
	return arr[i]
}

// PrintTeamRecords prints per-team archive records.
func PrintTeamRecords(w io.Writer, recs []storage.TeamRecord) {
	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))

	table.Header("TEAM", "MATCHES", "W", "L", "WIN%")

	for _, r := range recs {
		winPct := "—"
		if r.Matches > 0 {
			winPct = fmt.Sprintf("%.2f", float64(r.Wins)/float64(r.Matches)*100)
		}
		table.Append(
			r.Team,
			strconv.Itoa(r.Matches),
			strconv.Itoa(r.Wins),
			strconv.Itoa(r.Losses),
			winPct,
		)
	}
	table.Render()
}

// PrintQueryResult prints an arbitrary query result set.
func PrintQueryResult(w io.Writer, cols []string, rows [][]string) {
	table := tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))

	hdr := make([]any, len(cols))
	for i, c := range cols {
		hdr[i] = c
	}
	table.Header(hdr...)

	for _, row := range rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		table.Append(cells...)
	}
	table.Render()
}

// shortID truncates long ids (uuids, line digests) for table display.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
