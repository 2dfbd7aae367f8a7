package database

import (
	"fmt"

	"github.com/rsheldon/wayfinder/internal/models"
)

// UserCount reports how many admin accounts exist. Zero means the
// create-admin bootstrap has not run yet.
func (db *DB) UserCount() (int, error) {
	var count int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func (db *DB) GetUserByUsername(username string) (models.User, error) {
	var u models.User
	var createdAt string
	err := db.conn.QueryRow(
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt)
	if err != nil {
		return u, err
	}
	u.CreatedAt, _ = parseTime(createdAt)
	return u, nil
}

// CreateUser stores a new admin account and fills in its assigned ID.
func (db *DB) CreateUser(u *models.User) error {
	result, err := db.conn.Exec(
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`,
		u.Username, u.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

func (db *DB) CreateSession(sess *models.Session) error {
	_, err := db.conn.Exec(
		`INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, datetime(?))`,
		sess.Token, sess.UserID, sess.ExpiresAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession looks up a session by token. Expired tokens are treated
// the same as unknown ones.
func (db *DB) GetSession(token string) (models.Session, error) {
	var sess models.Session
	var expiresAt, createdAt string
	err := db.conn.QueryRow(
		`SELECT id, token, user_id, expires_at, created_at
		 FROM sessions
		 WHERE token = ? AND expires_at > datetime('now')`,
		token,
	).Scan(&sess.ID, &sess.Token, &sess.UserID, &expiresAt, &createdAt)
	if err != nil {
		return sess, err
	}
	sess.ExpiresAt, _ = parseTime(expiresAt)
	sess.CreatedAt, _ = parseTime(createdAt)
	return sess, nil
}

// DeleteSession logs one token out.
func (db *DB) DeleteSession(token string) error {
	_, err := db.conn.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	return err
}

// DeleteExpiredSessions sweeps rows GetSession would never return
// again, reporting how many were removed. The server runs this at
// startup and periodically from its janitor.
func (db *DB) DeleteExpiredSessions() (int64, error) {
	result, err := db.conn.Exec(`DELETE FROM sessions WHERE expires_at <= datetime('now')`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
