// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking
// refresh tokens.
type Repository interface {
	// Create stores a new refresh token for accountID with an expiry of
	// now+validity. Persist records the "trust this device" choice.
	Create(ctx context.Context, accountID string, token string, persist bool, validity time.Duration) error

	// Find looks up a token by its opaque string, revoked or not.
	// Absent tokens yield common.ErrorNotFound.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Revoke marks a token unusable. Revoking an already-revoked or absent
	// token is not an error.
	Revoke(ctx context.Context, token string) error

	// RevokeAllForAccount invalidates every live token of one account,
	// e.g. after a password change.
	RevokeAllForAccount(ctx context.Context, accountID string) error
}
