package database

import (
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

type DB struct {
	conn *sql.DB
	path string

	cacheMu  sync.RWMutex
	settings map[string]string
}

func New(path string) (*DB, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	conn.SetMaxOpenConns(2)

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &DB{conn: conn, path: path, settings: make(map[string]string)}
	if err := db.migrate(); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	if err := db.loadSettingsCache(); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// DatabaseSizeBytes returns the file size of the database.
func (db *DB) DatabaseSizeBytes() (int64, error) {
	info, err := os.Stat(db.path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// sqlite's datetime() output, stored and compared as text.
const timeLayout = "2006-01-02 15:04:05"

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func (db *DB) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT    NOT NULL UNIQUE,
			password_hash TEXT    NOT NULL,
			created_at    TEXT    NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			token      TEXT    NOT NULL UNIQUE,
			user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			expires_at TEXT    NOT NULL,
			created_at TEXT    NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE IF NOT EXISTS notfound_log (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			url        TEXT    NOT NULL UNIQUE,
			hits       INTEGER NOT NULL DEFAULT 0,
			clicks     INTEGER NOT NULL DEFAULT 0,
			status     TEXT    NOT NULL DEFAULT 'unresolved',
			notes      TEXT    NOT NULL DEFAULT '',
			first_seen TEXT    NOT NULL DEFAULT (datetime('now')),
			last_seen  TEXT    NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE IF NOT EXISTS notfound_referrers (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			notfound_id INTEGER NOT NULL REFERENCES notfound_log(id) ON DELETE CASCADE,
			referrer    TEXT    NOT NULL,
			hits        INTEGER NOT NULL DEFAULT 0,
			UNIQUE(notfound_id, referrer)
		)`,
		`CREATE TABLE IF NOT EXISTS notfound_agents (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			notfound_id INTEGER NOT NULL REFERENCES notfound_log(id) ON DELETE CASCADE,
			agent       TEXT    NOT NULL,
			hits        INTEGER NOT NULL DEFAULT 0,
			UNIQUE(notfound_id, agent)
		)`,
		`CREATE TABLE IF NOT EXISTS content_items (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			url        TEXT    NOT NULL UNIQUE,
			title      TEXT    NOT NULL,
			excerpt    TEXT    NOT NULL DEFAULT '',
			body       TEXT    NOT NULL DEFAULT '',
			categories TEXT    NOT NULL DEFAULT '',
			updated_at TEXT    NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notfound_referrers_id ON notfound_referrers(notfound_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notfound_agents_id ON notfound_agents(notfound_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("exec migration: %w\nstatement: %s", err, stmt)
		}
	}

	return db.seedSettings()
}

func (db *DB) seedSettings() error {
	defaults := map[string]string{
		"ai_provider":       "openai",
		"openai_api_key":    "",
		"openai_model":      "gpt-4o-mini",
		"anthropic_api_key": "",
		"anthropic_model":   "claude-3-haiku-20240307",
		"gemini_api_key":    "",
		"gemini_model":      "gemini-1.5-flash",
		"suggestion_source": "ai",
		"brand_tone":        "friendly",
		"brand_industry":    "",
		"writing_sample":    "",
		"message_length":    "standard",
		"include_emoji":     "false",
		"fallback_message":  "",
		"chat_enabled":      "true",
		"analytics_enabled": "true",
		"admin_api_key":     "",
	}

	stmt, err := db.conn.Prepare(`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for key, value := range defaults {
		if _, err := stmt.Exec(key, value); err != nil {
			return err
		}
	}
	return nil
}
