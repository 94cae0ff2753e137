package models

import "time"

// RefreshToken is a server-stored opaque credential bound to one account.
// Persist records the user's "trust this device" choice made at signin.
// A non-nil RevokedAt makes the token permanently unusable.
type RefreshToken struct {
	Token     string
	AccountID string
	Persist   bool
	Expires   time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Usable reports whether the token may still mint access tokens at time now.
func (t *RefreshToken) Usable(now time.Time) bool {
	return t.RevokedAt == nil && t.Expires.After(now)
}
