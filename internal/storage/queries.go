package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/podkolzin/go-hero-metrics/internal/model"
)

// HasMatch returns true if a match with the given id is already archived.
func (db *DB) HasMatch(matchID string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM matches WHERE match_id = ?", matchID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MatchIDs returns every archived match id.
func (db *DB) MatchIDs() ([]string, error) {
	rows, err := db.conn.Query("SELECT match_id FROM matches")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// CountMatches returns the number of archived matches.
func (db *DB) CountMatches() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM matches").Scan(&count)
	return count, err
}

// SaveMatches bulk-inserts match records in a transaction. INSERT OR
// REPLACE keyed by match id keeps re-imports idempotent; each match's
// old player rows are cleared before the fresh ones land.
func (db *DB) SaveMatches(records []model.MatchRecord, sourceFile, importedAt string) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	matchStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO matches(match_id, radiant_team, dire_team, winner, duration_minutes, source_file, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer matchStmt.Close()

	clearStmt, err := tx.Prepare(`DELETE FROM match_players WHERE match_id = ?`)
	if err != nil {
		return err
	}
	defer clearStmt.Close()

	playerStmt, err := tx.Prepare(`
		INSERT INTO match_players(
			match_id, slot, hero_id, team,
			gpm, xpm, hero_damage, tower_damage, damage_taken, teamfight_participation
		) VALUES (?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer playerStmt.Close()

	for _, rec := range records {
		_, err = matchStmt.Exec(
			rec.MatchID, rec.RadiantTeam, rec.DireTeam, rec.Winner,
			optNull(rec.DurationMinutes), sourceFile, importedAt,
		)
		if err != nil {
			return fmt.Errorf("insert match %s: %w", rec.MatchID, err)
		}
		if _, err = clearStmt.Exec(rec.MatchID); err != nil {
			return fmt.Errorf("clear players of match %s: %w", rec.MatchID, err)
		}
		for slot, p := range rec.Players {
			_, err = playerStmt.Exec(
				rec.MatchID, slot, p.HeroID, p.Team,
				optNull(p.GPM), optNull(p.XPM), optNull(p.HeroDamage),
				optNull(p.TowerDamage), optNull(p.DamageTaken), optNull(p.TeamfightParticipation),
			)
			if err != nil {
				return fmt.Errorf("insert player %d of match %s: %w", slot, rec.MatchID, err)
			}
		}
	}
	return tx.Commit()
}

// ForEachMatch streams every archived match record in match-id order.
// Returning an error from fn aborts the scan.
func (db *DB) ForEachMatch(fn func(model.MatchRecord) error) error {
	rows, err := db.conn.Query(`
		SELECT m.match_id, m.radiant_team, m.dire_team, m.winner, m.duration_minutes,
		       p.hero_id, p.team,
		       p.gpm, p.xpm, p.hero_damage, p.tower_damage, p.damage_taken, p.teamfight_participation
		FROM matches m
		LEFT JOIN match_players p ON p.match_id = m.match_id
		ORDER BY m.match_id, p.slot`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var cur *model.MatchRecord
	for rows.Next() {
		var (
			id, radiant, dire, winner               string
			duration                                sql.NullFloat64
			heroID                                  sql.NullInt64
			team                                    sql.NullString
			gpm, xpm, heroDmg, towerDmg, taken, tfp sql.NullFloat64
		)
		if err := rows.Scan(&id, &radiant, &dire, &winner, &duration,
			&heroID, &team, &gpm, &xpm, &heroDmg, &towerDmg, &taken, &tfp); err != nil {
			return err
		}

		if cur == nil || cur.MatchID != id {
			if cur != nil {
				if err := fn(*cur); err != nil {
					return err
				}
			}
			cur = &model.MatchRecord{
				MatchID:         id,
				RadiantTeam:     radiant,
				DireTeam:        dire,
				Winner:          winner,
				DurationMinutes: nullOpt(duration),
			}
		}
		if heroID.Valid {
			cur.Players = append(cur.Players, model.PlayerEntry{
				HeroID:                 int(heroID.Int64),
				Team:                   team.String,
				GPM:                    nullOpt(gpm),
				XPM:                    nullOpt(xpm),
				HeroDamage:             nullOpt(heroDmg),
				TowerDamage:            nullOpt(towerDmg),
				DamageTaken:            nullOpt(taken),
				TeamfightParticipation: nullOpt(tfp),
			})
		}
	}
	if cur != nil {
		if err := fn(*cur); err != nil {
			return err
		}
	}
	return rows.Err()
}

// ListMatches returns archived match summaries, newest import first. A
// non-empty team narrows the list to matches that team played on either
// side; a non-positive limit returns everything.
func (db *DB) ListMatches(team string, limit int) ([]model.MatchSummary, error) {
	q := `
		SELECT match_id, radiant_team, dire_team, winner, duration_minutes, source_file, imported_at
		FROM matches`
	var args []any
	if team != "" {
		q += " WHERE radiant_team LIKE ? OR dire_team LIKE ?"
		pat := "%" + team + "%"
		args = append(args, pat, pat)
	}
	q += " ORDER BY imported_at DESC, match_id"
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MatchSummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetMatchByPrefix finds the first match whose id starts with the given prefix.
func (db *DB) GetMatchByPrefix(prefix string) (*model.MatchSummary, error) {
	row := db.conn.QueryRow(`
		SELECT match_id, radiant_team, dire_team, winner, duration_minutes, source_file, imported_at
		FROM matches WHERE match_id LIKE ? ORDER BY match_id LIMIT 1`, prefix+"%")

	s, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetMatchPlayers returns the archived player rows of one match in slot order.
func (db *DB) GetMatchPlayers(matchID string) ([]model.PlayerEntry, error) {
	rows, err := db.conn.Query(`
		SELECT hero_id, team, gpm, xpm, hero_damage, tower_damage, damage_taken, teamfight_participation
		FROM match_players WHERE match_id = ? ORDER BY slot`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayerEntry
	for rows.Next() {
		var (
			p                                       model.PlayerEntry
			gpm, xpm, heroDmg, towerDmg, taken, tfp sql.NullFloat64
		)
		if err := rows.Scan(&p.HeroID, &p.Team, &gpm, &xpm, &heroDmg, &towerDmg, &taken, &tfp); err != nil {
			return nil, err
		}
		p.GPM = nullOpt(gpm)
		p.XPM = nullOpt(xpm)
		p.HeroDamage = nullOpt(heroDmg)
		p.TowerDamage = nullOpt(towerDmg)
		p.DamageTaken = nullOpt(taken)
		p.TeamfightParticipation = nullOpt(tfp)
		out = append(out, p)
	}
	return out, rows.Err()
}

// QueryRaw executes an arbitrary read query and renders every value as text.
func (db *DB) QueryRaw(query string, args ...any) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		for i := range vals {
			vals[i] = new(sql.NullString)
		}
		if err := rows.Scan(vals...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			ns := v.(*sql.NullString)
			if ns.Valid {
				row[i] = ns.String
			} else {
				row[i] = "NULL"
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(s scanner) (model.MatchSummary, error) {
	var (
		out      model.MatchSummary
		duration sql.NullFloat64
	)
	err := s.Scan(&out.MatchID, &out.RadiantTeam, &out.DireTeam, &out.Winner,
		&duration, &out.SourceFile, &out.ImportedAt)
	if err != nil {
		return out, err
	}
	out.DurationMinutes = duration.Float64
	return out, nil
}

func optNull(v model.OptFloat) any {
	if v.OK {
		return v.Value
	}
	return nil
}

func nullOpt(v sql.NullFloat64) model.OptFloat {
	if v.Valid {
		return model.OptFloat{Value: v.Float64, OK: true}
	}
	return model.OptFloat{}
}
