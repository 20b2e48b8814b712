package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/podkolzin/go-hero-metrics/internal/report"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the archive",
	Long: `Run an arbitrary SQL query against the archive and print results as a table.

Schema overview:
  matches(match_id, radiant_team, dire_team, winner, duration_minutes,
    source_file, imported_at)
  match_players(match_id, slot, hero_id, team, gpm, xpm, hero_damage,
    tower_damage, damage_taken, teamfight_participation)
  backtest_runs(run_id, kind, matrix_path, wagers_path, dataset_rows,
    dropped_rows, created_at)
  strategy_results(run_id, seq, strategy_group, hero_filter, odds_condition,
    metric, delta_threshold, bets, wins, losses, win_pct, final_bank, profit,
    total_staked, roi, max_drawdown, max_stake)
  martingale_results(run_id, seq, odds_cap, delta_threshold, total_trades,
    wins, losses, max_losing_streak, base_bet, final_bank, bankrupt)

Note: match_id is stored as TEXT. Use quotes: WHERE match_id LIKE 'deadbeef%'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openArchive(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}

	report.PrintQueryResult(os.Stdout, cols, rows)
	fmt.Fprintf(os.Stdout, "\n(%d rows)\n", len(rows))
	return nil
}
