// Package notification dispatches account-related emails. The only message
// the core sends is the password-reset link; delivery mechanics beyond
// "the message was handed to SMTP" are out of scope.
package notification

import "context"

// ResetNotifier dispatches a password-reset link to the given address.
type ResetNotifier interface {
	SendResetLink(ctx context.Context, to string, resetURL string) error
}
