// Package accounts declares the account store contract: lookup, insert,
// partial update, soft-delete and restore of account rows.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

// Update carries the optional fields of a partial account update. Nil fields
// are left untouched.
type Update struct {
	Username     *string
	Email        *string
	PasswordHash *string
}

type Repository interface {
	// Create inserts a new active, unverified account with the default role
	// and returns it with ID and CreatedAt populated. A duplicate email
	// (active or soft-deleted) yields common.ErrorConflict: the storage
	// uniqueness constraint is the authoritative conflict signal.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// GetByEmail looks up an account by normalized email, including
	// soft-deleted rows. Absent rows yield common.ErrorNotFound.
	GetByEmail(ctx context.Context, email string) (*models.Account, error)

	// GetByID looks up an account by its stable identifier.
	GetByID(ctx context.Context, id string) (*models.Account, error)

	// Update applies a partial update. No-op updates are rejected.
	Update(ctx context.Context, id string, upd Update) error

	// SoftDelete marks the account deleted and inactive, keeping the row.
	// Already-deleted or absent rows yield common.ErrorNotFound.
	SoftDelete(ctx context.Context, id string) error

	// Restore clears the soft-delete mark and reactivates the account,
	// preserving its ID, roles and history.
	Restore(ctx context.Context, id string) error
}
