package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/podkolzin/go-hero-metrics/internal/matrix"
	"github.com/podkolzin/go-hero-metrics/internal/model"
	"github.com/podkolzin/go-hero-metrics/internal/report"
	"github.com/podkolzin/go-hero-metrics/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellMatrixPath string

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long: `Open a persistent session against the archive. Type 'help' for available
commands. Pass --matrix to also load a published matrix and enable the
'matchup' command in-session.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	shellCmd.Flags().StringVar(&shellMatrixPath, "matrix", "", "published matrix file to load")
}

func runShell(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openArchive(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var m *model.PublishedMatrix
	if shellMatrixPath != "" {
		m, err = matrix.ReadFile(shellMatrixPath)
		if err != nil {
			cWarn.Fprintf(os.Stderr, "matrix not loaded: %v\n", err)
		}
	}

	cGreeting.Println("herometrics shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("herometrics")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		cmd, args := tokens[0], tokens[1:]

		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp(m != nil)
		case "list":
			shellList(db, strings.Join(args, " "))
		case "show":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: show <id-prefix>")
				continue
			}
			shellShow(db, args[0])
		case "summary":
			shellSummary(db)
		case "sql":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: sql <query>")
				continue
			}
			shellSQL(db, strings.Join(args, " "))
		case "runs":
			shellRuns(db, args)
		case "matchup":
			if m == nil {
				cWarn.Fprintln(os.Stderr, "no matrix loaded; restart with --matrix <file>")
				continue
			}
			shellMatchup(m, strings.Join(args, " "))
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q — type 'help'\n", cmd)
		}
	}
	return nil
}

func shellHelp(haveMatrix bool) {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"list [team]", "list archived matches, optionally filtered by team"},
		{"show <id-prefix>", "show one match and its player rows"},
		{"summary", "archive totals and team records"},
		{"sql <query>", "run a raw SQL query"},
		{"runs [id-prefix]", "list saved runs, or show one run's results"},
		{"matchup <hero> vs <hero>", "look a pairing up in the loaded matrix"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-28s", r.cmd)
		fmt.Println(r.desc)
	}
	if !haveMatrix {
		cMuted.Println("  (matchup needs a matrix: restart with --matrix <file>)")
	}
	fmt.Println()
}

func shellList(db *storage.DB, team string) {
	matches, err := db.ListMatches(team, 20)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(matches) == 0 {
		cMuted.Println("No matches archived yet.")
		return
	}
	report.PrintMatchList(os.Stdout, matches)
}

func shellShow(db *storage.DB, prefix string) {
	match, err := db.GetMatchByPrefix(prefix)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if match == nil {
		cWarn.Fprintf(os.Stderr, "no match found with prefix %q\n", prefix)
		return
	}
	players, err := db.GetMatchPlayers(match.MatchID)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	report.PrintMatchHeader(os.Stdout, *match)
	report.PrintPlayerRows(os.Stdout, players)
}

func shellSummary(db *storage.DB) {
	stats, err := db.Stats()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if stats.Matches == 0 {
		cMuted.Println("No matches archived yet.")
		return
	}
	fmt.Fprintf(os.Stdout, "\n  Matches stored  : %d\n", stats.Matches)
	fmt.Fprintf(os.Stdout, "  Player rows     : %d\n", stats.PlayerRows)
	fmt.Fprintf(os.Stdout, "  Teams seen      : %d\n", stats.Teams)
	fmt.Fprintf(os.Stdout, "  Import range    : %s → %s\n\n", stats.FirstImport, stats.LastImport)

	teams, err := db.TeamRecords(10)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	report.PrintTeamRecords(os.Stdout, teams)
}

func shellSQL(db *storage.DB, query string) {
	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(rows) == 0 {
		cMuted.Println("(no rows)")
		return
	}
	report.PrintQueryResult(os.Stdout, cols, rows)
	fmt.Fprintf(os.Stdout, "\n(%d rows)\n", len(rows))
}

func shellRuns(db *storage.DB, args []string) {
	if len(args) == 0 {
		runs, err := db.ListRuns(20)
		if err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		if len(runs) == 0 {
			cMuted.Println("No saved runs.")
			return
		}
		report.PrintRunList(os.Stdout, runs)
		return
	}

	run, err := db.GetRunByPrefix(args[0])
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if run == nil {
		cWarn.Fprintf(os.Stderr, "no run found with prefix %q\n", args[0])
		return
	}
	fmt.Println()
	cHeader.Fprintf(os.Stdout, "--- %s ---\n\n", run.Describe())
	switch run.Kind {
	case "strategy":
		results, err := db.GetStrategyResults(run.RunID)
		if err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		report.PrintStrategyTable(os.Stdout, results, 0)
	case "martingale":
		results, err := db.GetMartingaleResults(run.RunID)
		if err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		report.PrintMartingaleTable(os.Stdout, results)
	default:
		cWarn.Fprintf(os.Stderr, "unknown run kind %q\n", run.Kind)
	}
}

func shellMatchup(m *model.PublishedMatrix, rest string) {
	parts := strings.SplitN(rest, " vs ", 2)
	if len(parts) != 2 {
		cError.Fprintln(os.Stderr, "usage: matchup <hero> vs <hero>")
		return
	}
	i, err := heroIndex(m, strings.TrimSpace(parts[0]))
	if err != nil {
		cWarn.Fprintf(os.Stderr, "%v\n", err)
		return
	}
	j, err := heroIndex(m, strings.TrimSpace(parts[1]))
	if err != nil {
		cWarn.Fprintf(os.Stderr, "%v\n", err)
		return
	}
	report.PrintMatchup(os.Stdout, m, i, j)
}
