package models

import "time"

// RefreshToken is a server-side session handle (refresh_tokens table). It is
// deleted and reissued on every refresh, and deleted on logout.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is past its lifetime at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.Expires)
}
