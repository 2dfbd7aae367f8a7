package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Session struct {
	ID        int64     `json:"id"`
	Token     string    `json:"-"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Valid status values for a tracked 404 URL.
const (
	StatusUnresolved = "unresolved"
	StatusFixed      = "fixed"
	StatusRedirected = "redirected"
	StatusIgnored    = "ignored"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusUnresolved, StatusFixed, StatusRedirected, StatusIgnored:
		return true
	}
	return false
}

// NotFoundEntry is the aggregate record for one broken URL: how often
// it was hit, how often a visitor clicked through to a suggestion, and
// the admin's triage state.
type NotFoundEntry struct {
	ID           int64     `json:"id"`
	URL          string    `json:"url"`
	Hits         int       `json:"hits"`
	Clicks       int       `json:"clicks"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes"`
	FirstSeen    time.Time `json:"first_seen"`
	LastSeen     time.Time `json:"last_seen"`
	TopReferrer  string    `json:"top_referrer"`
	ReferrerHits int       `json:"referrer_hits"`
}

// SuccessRate is clicks over hits as a percentage, 0 when unseen.
func (e NotFoundEntry) SuccessRate() float64 {
	if e.Hits == 0 {
		return 0
	}
	return float64(e.Clicks) / float64(e.Hits) * 100
}

// ReferrerCount is one referrer's hit tally for a broken URL.
type ReferrerCount struct {
	Referrer string `json:"referrer"`
	Hits     int    `json:"hits"`
}

// AgentCount is one simplified browser family's hit tally.
type AgentCount struct {
	Agent string `json:"agent"`
	Hits  int    `json:"hits"`
}
