// Package loginhistory declares the repository contract for recording
// successful signins. History is keyed by account ID and therefore survives
// soft-delete and restore.
package loginhistory

import (
	"context"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

type Repository interface {
	// Record appends one signin at the given time.
	Record(ctx context.Context, accountID string, at time.Time) error

	// ListByAccount returns the most recent records, newest first.
	ListByAccount(ctx context.Context, accountID string, limit int) ([]*models.LoginRecord, error)
}
