// Package store persists the CLI's saved session in a local SQLite database,
// so a trusted device can renew its access token without asking for the
// password again.
package store

import "context"

// Keys under which session attributes are stored.
const (
	KeyUserID       = "user_id"
	KeyEmail        = "email"
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
