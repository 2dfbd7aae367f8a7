package database

import (
	"context"
	"strings"

	"github.com/rsheldon/wayfinder/internal/content"
)

// UpsertContentItem stores or refreshes one crawled page, keyed by URL.
func (db *DB) UpsertContentItem(c content.Candidate) error {
	_, err := db.conn.Exec(`
		INSERT INTO content_items (url, title, excerpt, body, categories) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			excerpt = excluded.excerpt,
			body = excluded.body,
			categories = excluded.categories,
			updated_at = datetime('now')`,
		c.URL, c.Title, c.Excerpt, c.Body, strings.Join(c.Categories, ","))
	return err
}

// Candidates returns crawled pages for relevance matching, most
// recently updated first.
func (db *DB) Candidates(ctx context.Context, limit int) ([]content.Candidate, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT url, title, excerpt, body, categories
		FROM content_items
		ORDER BY updated_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []content.Candidate
	for rows.Next() {
		var c content.Candidate
		var categories string
		if err := rows.Scan(&c.URL, &c.Title, &c.Excerpt, &c.Body, &categories); err != nil {
			return nil, err
		}
		if categories != "" {
			c.Categories = strings.Split(categories, ",")
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// ContentItemCount returns the number of crawled pages in the index.
func (db *DB) ContentItemCount() (int, error) {
	var count int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM content_items`).Scan(&count)
	return count, err
}
