package database

import (
	"database/sql"
	"fmt"

	"github.com/rsheldon/wayfinder/internal/models"
)

// RecordHit logs one 404 pageview for a broken URL, upserting the
// aggregate row and bumping the per-referrer and per-agent tallies.
func (db *DB) RecordHit(url, referrer, agent string) error {
	_, err := db.conn.Exec(`
		INSERT INTO notfound_log (url, hits) VALUES (?, 1)
		ON CONFLICT(url) DO UPDATE SET
			hits = hits + 1,
			last_seen = datetime('now')`,
		url)
	if err != nil {
		return fmt.Errorf("record hit: %w", err)
	}

	var id int64
	if err := db.conn.QueryRow(`SELECT id FROM notfound_log WHERE url = ?`, url).Scan(&id); err != nil {
		return err
	}

	if referrer != "" {
		_, err = db.conn.Exec(`
			INSERT INTO notfound_referrers (notfound_id, referrer, hits) VALUES (?, ?, 1)
			ON CONFLICT(notfound_id, referrer) DO UPDATE SET hits = hits + 1`,
			id, referrer)
		if err != nil {
			return err
		}
	}

	if agent != "" {
		_, err = db.conn.Exec(`
			INSERT INTO notfound_agents (notfound_id, agent, hits) VALUES (?, ?, 1)
			ON CONFLICT(notfound_id, agent) DO UPDATE SET hits = hits + 1`,
			id, agent)
		if err != nil {
			return err
		}
	}

	return nil
}

// RecordClick logs that a visitor followed one of the suggestions
// offered for a broken URL. No-op for URLs never seen as hits.
func (db *DB) RecordClick(url string) error {
	_, err := db.conn.Exec(`UPDATE notfound_log SET clicks = clicks + 1 WHERE url = ?`, url)
	return err
}

// ListNotFound returns tracked URLs ordered by hit count, each with
// its top referrer. An empty status matches all.
func (db *DB) ListNotFound(status string, limit int) ([]models.NotFoundEntry, error) {
	query := `
		SELECT l.id, l.url, l.hits, l.clicks, l.status, l.notes, l.first_seen, l.last_seen,
		       COALESCE(r.referrer, ''), COALESCE(r.hits, 0)
		FROM notfound_log l
		LEFT JOIN notfound_referrers r ON r.id = (
			SELECT id FROM notfound_referrers
			WHERE notfound_id = l.id ORDER BY hits DESC, id ASC LIMIT 1
		)`
	args := []any{}
	if status != "" {
		query += ` WHERE l.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY l.hits DESC, l.last_seen DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.NotFoundEntry
	for rows.Next() {
		var e models.NotFoundEntry
		var firstSeen, lastSeen string
		if err := rows.Scan(&e.ID, &e.URL, &e.Hits, &e.Clicks, &e.Status, &e.Notes,
			&firstSeen, &lastSeen, &e.TopReferrer, &e.ReferrerHits); err != nil {
			return nil, err
		}
		e.FirstSeen, _ = parseTime(firstSeen)
		e.LastSeen, _ = parseTime(lastSeen)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UpdateNotFoundStatus sets the triage status and notes for a tracked URL.
func (db *DB) UpdateNotFoundStatus(id int64, status, notes string) error {
	if !models.ValidStatus(status) {
		return fmt.Errorf("invalid status %q", status)
	}
	result, err := db.conn.Exec(
		`UPDATE notfound_log SET status = ?, notes = ? WHERE id = ?`,
		status, notes, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AgentBreakdown returns hit counts per simplified browser family for
// one tracked URL.
func (db *DB) AgentBreakdown(id int64) ([]models.AgentCount, error) {
	rows, err := db.conn.Query(
		`SELECT agent, hits FROM notfound_agents WHERE notfound_id = ? ORDER BY hits DESC`,
		id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.AgentCount
	for rows.Next() {
		var c models.AgentCount
		if err := rows.Scan(&c.Agent, &c.Hits); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// ReferrerBreakdown returns hit counts per referrer for one tracked URL.
func (db *DB) ReferrerBreakdown(id int64) ([]models.ReferrerCount, error) {
	rows, err := db.conn.Query(
		`SELECT referrer, hits FROM notfound_referrers WHERE notfound_id = ? ORDER BY hits DESC`,
		id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.ReferrerCount
	for rows.Next() {
		var c models.ReferrerCount
		if err := rows.Scan(&c.Referrer, &c.Hits); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
