// Package auth covers admin credentials and browser sessions: bcrypt
// password storage, random session tokens, and the login flow over the
// user store.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/rsheldon/wayfinder/internal/models"
)

const sessionTTL = 7 * 24 * time.Hour

var ErrInvalidCredentials = errors.New("invalid username or password")

// Store is the slice of the database the auth flow needs.
type Store interface {
	UserCount() (int, error)
	GetUserByUsername(username string) (models.User, error)
	CreateUser(u *models.User) error
	CreateSession(sess *models.Session) error
	GetSession(token string) (models.Session, error)
	DeleteSession(token string) error
}

// HashPassword hashes a plaintext password using bcrypt with cost 12.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func CheckPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateToken produces a cryptographically random token suitable for
// session IDs (32 bytes, base64url-encoded, 43 characters).
func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Bootstrap creates the initial admin user if no users exist yet.
// Returns true when a user was created.
func Bootstrap(store Store, username, password string) (bool, error) {
	count, err := store.UserCount()
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}
	u := &models.User{Username: username, PasswordHash: hash}
	if err := store.CreateUser(u); err != nil {
		return false, err
	}
	return true, nil
}

// Login verifies credentials and opens a session. The error for a
// missing user and a wrong password is the same on purpose.
func Login(store Store, username, password string) (models.Session, error) {
	user, err := store.GetUserByUsername(username)
	if err != nil {
		return models.Session{}, ErrInvalidCredentials
	}
	if err := CheckPassword(password, user.PasswordHash); err != nil {
		return models.Session{}, ErrInvalidCredentials
	}

	token, err := GenerateToken()
	if err != nil {
		return models.Session{}, err
	}
	sess := &models.Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(sessionTTL),
	}
	if err := store.CreateSession(sess); err != nil {
		return models.Session{}, err
	}
	return *sess, nil
}

// Logout removes the session for a token. Unknown tokens are not an error.
func Logout(store Store, token string) error {
	return store.DeleteSession(token)
}

// Validate resolves a session token, rejecting expired or unknown ones.
func Validate(store Store, token string) (models.Session, bool) {
	if token == "" {
		return models.Session{}, false
	}
	sess, err := store.GetSession(token)
	if err != nil {
		return models.Session{}, false
	}
	return sess, true
}
