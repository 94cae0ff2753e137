package models

import "time"

// LoginRecord is one successful signin. Records survive soft-delete and
// restore, so a restored account keeps its history.
type LoginRecord struct {
	ID        int64
	AccountID string
	LoginTime time.Time
}
