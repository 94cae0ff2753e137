// Package models defines server-side data models persisted in the database.
package models

import "time"

// Account is a user account row. ID is stable and immutable once assigned;
// Email is stored lowercase and is unique among active accounts. A non-nil
// DeletedAt marks the account as soft-deleted: the row (and the email) is
// kept for a restore window instead of being freed immediately.
type Account struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	IsActive     bool
	IsVerified   bool
	Location     string
	Roles        []string
	DeletedAt    *time.Time
	CreatedAt    time.Time
}

// Deleted reports whether the account is soft-deleted.
func (a *Account) Deleted() bool {
	return a.DeletedAt != nil
}

// HasRole reports whether the account carries the given role name.
func (a *Account) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}
