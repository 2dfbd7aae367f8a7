package auth

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/rsheldon/wayfinder/internal/models"
)

type memStore struct {
	users    map[string]models.User
	sessions map[string]models.Session
	nextID   int64
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]models.User),
		sessions: make(map[string]models.Session),
	}
}

func (s *memStore) UserCount() (int, error) { return len(s.users), nil }

func (s *memStore) GetUserByUsername(username string) (models.User, error) {
	u, ok := s.users[username]
	if !ok {
		return models.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *memStore) CreateUser(u *models.User) error {
	s.nextID++
	u.ID = s.nextID
	s.users[u.Username] = *u
	return nil
}

func (s *memStore) CreateSession(sess *models.Session) error {
	s.sessions[sess.Token] = *sess
	return nil
}

func (s *memStore) GetSession(token string) (models.Session, error) {
	sess, ok := s.sessions[token]
	if !ok || sess.ExpiresAt.Before(time.Now()) {
		return models.Session{}, sql.ErrNoRows
	}
	return sess, nil
}

func (s *memStore) DeleteSession(token string) error {
	delete(s.sessions, token)
	return nil
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "hunter2" {
		t.Fatal("password stored in plaintext")
	}
	if err := CheckPassword("hunter2", hash); err != nil {
		t.Errorf("CheckPassword() with correct password = %v", err)
	}
	if err := CheckPassword("wrong", hash); err == nil {
		t.Error("CheckPassword() accepted wrong password")
	}
}

func TestGenerateTokenUnique(t *testing.T) {
	a, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	b, _ := GenerateToken()
	if a == b {
		t.Error("tokens not unique")
	}
	if len(a) != 43 {
		t.Errorf("token length = %d, want 43", len(a))
	}
}

func TestBootstrapOnlyOnce(t *testing.T) {
	store := newMemStore()

	created, err := Bootstrap(store, "admin", "secret")
	if err != nil || !created {
		t.Fatalf("Bootstrap() = %v, %v", created, err)
	}
	created, err = Bootstrap(store, "admin2", "secret")
	if err != nil || created {
		t.Errorf("second Bootstrap() = %v, %v, want no-op", created, err)
	}
	if len(store.users) != 1 {
		t.Errorf("user count = %d", len(store.users))
	}
}

func TestLoginFlow(t *testing.T) {
	store := newMemStore()
	if _, err := Bootstrap(store, "admin", "secret"); err != nil {
		t.Fatal(err)
	}

	sess, err := Login(store, "admin", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if sess.Token == "" || !sess.ExpiresAt.After(time.Now()) {
		t.Errorf("unexpected session: %+v", sess)
	}

	if got, ok := Validate(store, sess.Token); !ok || got.UserID != sess.UserID {
		t.Errorf("Validate() = %+v, %v", got, ok)
	}

	if err := Logout(store, sess.Token); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, ok := Validate(store, sess.Token); ok {
		t.Error("session valid after logout")
	}
}

func TestLoginRejections(t *testing.T) {
	store := newMemStore()
	if _, err := Bootstrap(store, "admin", "secret"); err != nil {
		t.Fatal(err)
	}

	if _, err := Login(store, "admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v", err)
	}
	if _, err := Login(store, "ghost", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user error = %v", err)
	}
	if _, ok := Validate(store, ""); ok {
		t.Error("empty token validated")
	}
}
