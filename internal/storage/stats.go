package storage

// ArchiveStats summarizes the whole match archive.
type ArchiveStats struct {
	Matches     int
	PlayerRows  int
	Teams       int
	FirstImport string
	LastImport  string
}

// TeamRecord holds one team's win/loss record across the archive.
type TeamRecord struct {
	Team    string
	Matches int
	Wins    int
	Losses  int
}

// SourceStats holds per-source-file import counts.
type SourceStats struct {
	SourceFile string
	Matches    int
	LastImport string
}

// Stats returns archive-wide totals. COALESCE guards the empty archive.
func (db *DB) Stats() (ArchiveStats, error) {
	var s ArchiveStats
	err := db.conn.QueryRow(`
		SELECT
		  (SELECT COUNT(1) FROM matches),
		  (SELECT COUNT(1) FROM match_players),
		  (SELECT COUNT(1) FROM (
		     SELECT radiant_team AS team FROM matches
		     UNION SELECT dire_team FROM matches)),
		  COALESCE((SELECT MIN(imported_at) FROM matches), ''),
		  COALESCE((SELECT MAX(imported_at) FROM matches), '')`).Scan(
		&s.Matches, &s.PlayerRows, &s.Teams, &s.FirstImport, &s.LastImport)
	return s, err
}

// TeamRecords returns per-team records ordered by matches played, busiest
// first. Both sides of every match are counted once each. A non-positive
// limit returns every team.
func (db *DB) TeamRecords(limit int) ([]TeamRecord, error) {
	q := `
		SELECT team,
		       COUNT(*),
		       COALESCE(SUM(CASE WHEN team = winner THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN team != winner THEN 1 ELSE 0 END), 0)
		FROM (
		  SELECT radiant_team AS team, winner FROM matches
		  UNION ALL
		  SELECT dire_team, winner FROM matches
		)
		GROUP BY team
		ORDER BY COUNT(*) DESC, team`
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

	var out []TeamRecord
	for rows.Next() {
		var r TeamRecord
		if err := rows.Scan(&r.Team, &r.Matches, &r.Wins, &r.Losses); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SourceFiles returns per-source import counts, newest import first.
func (db *DB) SourceFiles() ([]SourceStats, error) {
	rows, err := db.conn.Query(`
		SELECT source_file, COUNT(*), MAX(imported_at)
		FROM matches
		GROUP BY source_file
		ORDER BY MAX(imported_at) DESC, source_file`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SourceStats
	for rows.Next() {
		var s SourceStats
		if err := rows.Scan(&s.SourceFile, &s.Matches, &s.LastImport); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
