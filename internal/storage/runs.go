package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/podkolzin/go-hero-metrics/internal/model"
)

// SaveStrategyRun stores one flat-percentage simulation run with its full
// result grid. Results keep their slice order via the seq column.
func (db *DB) SaveStrategyRun(run model.BacktestRun, results []model.StrategyResult) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertRun(tx, run); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO strategy_results(
			run_id, seq, strategy_group, hero_filter, odds_condition, metric, delta_threshold,
			bets, wins, losses, win_pct, final_bank, profit, total_staked, roi, max_drawdown, max_stake
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for seq, r := range results {
		_, err = stmt.Exec(
			run.RunID, seq, r.StrategyGroup, r.HeroFilter, r.OddsCondition, r.Metric, r.DeltaThreshold,
			r.Bets, r.Wins, r.Losses, r.WinPct, r.FinalBank, r.Profit, r.TotalStaked, r.ROI, r.MaxDrawdown, r.MaxStake,
		)
		if err != nil {
			return fmt.Errorf("insert strategy result %d: %w", seq, err)
		}
	}
	return tx.Commit()
}

// SaveMartingaleRun stores one loss-doubling simulation run with its grid.
func (db *DB) SaveMartingaleRun(run model.BacktestRun, results []model.MartingaleResult) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertRun(tx, run); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO martingale_results(
			run_id, seq, odds_cap, delta_threshold,
			total_trades, wins, losses, max_losing_streak, base_bet, final_bank, bankrupt
		) VALUES (?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for seq, r := range results {
		_, err = stmt.Exec(
			run.RunID, seq, r.OddsCap, r.DeltaThreshold,
			r.TotalTrades, r.Wins, r.Losses, r.MaxLosingStreak, r.BaseBet, r.FinalBank, boolInt(r.Bankrupt),
		)
		if err != nil {
			return fmt.Errorf("insert martingale result %d: %w", seq, err)
		}
	}
	return tx.Commit()
}

func insertRun(tx *sql.Tx, run model.BacktestRun) error {
	_, err := tx.Exec(`
		INSERT INTO backtest_runs(run_id, kind, matrix_path, wagers_path, dataset_rows, dropped_rows, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Kind, run.MatrixPath, run.WagersPath, run.DatasetRows, run.DroppedRows, run.CreatedAt)
	return err
}

// ListRuns returns stored runs, newest first. A non-positive limit returns
// everything.
func (db *DB) ListRuns(limit int) ([]model.BacktestRun, error) {
	q := `
		SELECT run_id, kind, matrix_path, wagers_path, dataset_rows, dropped_rows, created_at
		FROM backtest_runs ORDER BY created_at DESC, run_id`
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BacktestRun
	for rows.Next() {
		var r model.BacktestRun
		if err := rows.Scan(&r.RunID, &r.Kind, &r.MatrixPath, &r.WagersPath,
			&r.DatasetRows, &r.DroppedRows, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRunByPrefix finds the first run whose id starts with the given prefix.
func (db *DB) GetRunByPrefix(prefix string) (*model.BacktestRun, error) {
	row := db.conn.QueryRow(`
		SELECT run_id, kind, matrix_path, wagers_path, dataset_rows, dropped_rows, created_at
		FROM backtest_runs WHERE run_id LIKE ? ORDER BY run_id LIMIT 1`, prefix+"%")

	var r model.BacktestRun
	err := row.Scan(&r.RunID, &r.Kind, &r.MatrixPath, &r.WagersPath,
		&r.DatasetRows, &r.DroppedRows, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetStrategyResults returns the stored grid of one run in its original order.
func (db *DB) GetStrategyResults(runID string) ([]model.StrategyResult, error) {
	rows, err := db.conn.Query(`
		SELECT strategy_group, hero_filter, odds_condition, metric, delta_threshold,
		       bets, wins, losses, win_pct, final_bank, profit, total_staked, roi, max_drawdown, max_stake
		FROM strategy_results WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.StrategyResult
	for rows.Next() {
		var r model.StrategyResult
		if err := rows.Scan(&r.StrategyGroup, &r.HeroFilter, &r.OddsCondition, &r.Metric, &r.DeltaThreshold,
			&r.Bets, &r.Wins, &r.Losses, &r.WinPct, &r.FinalBank, &r.Profit, &r.TotalStaked,
			&r.ROI, &r.MaxDrawdown, &r.MaxStake); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetMartingaleResults returns the stored grid of one run in its original order.
func (db *DB) GetMartingaleResults(runID string) ([]model.MartingaleResult, error) {
	rows, err := db.conn.Query(`
		SELECT odds_cap, delta_threshold, total_trades, wins, losses,
		       max_losing_streak, base_bet, final_bank, bankrupt
		FROM martingale_results WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MartingaleResult
	for rows.Next() {
		var (
			r        model.MartingaleResult
			bankrupt int
		)
		if err := rows.Scan(&r.OddsCap, &r.DeltaThreshold, &r.TotalTrades, &r.Wins, &r.Losses,
			&r.MaxLosingStreak, &r.BaseBet, &r.FinalBank, &bankrupt); err != nil {
			return nil, err
		}
		r.Bankrupt = bankrupt != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
