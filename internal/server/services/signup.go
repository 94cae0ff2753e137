package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/dbx"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/password"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/accountkeeper/internal/validate"
)

// State names a signup submission's position in its lifecycle. Submissions
// start in StateValidating and always end in one of the terminal states
// (Created, Restored, RestorePending, Rejected).
type State string

const (
	StateValidating     State = "validating"
	StateChecking       State = "checking"
	StateCreating       State = "creating"
	StateCreated        State = "created"
	StateRestorePending State = "restore_pending"
	StateRestored       State = "restored"
	StateRejected       State = "rejected"
)

// RestoreOffer is returned when a signup collides with a soft-deleted account
// sharing the same email. The signup is never completed automatically: the
// caller has to explicitly choose between restoring the old account and
// signing up with a different email.
type RestoreOffer struct {
	UserID  string
	Message string
}

const restoreMessage = "An account with this email was deleted. You can restore it or create a new account with a different email."

// SignupResult is the terminal outcome of one submission.
type SignupResult struct {
	State   State
	Offer   *RestoreOffer
	Account *models.Account
}

// SignupService reconciles signup submissions against the account store,
// detecting and resolving collisions with soft-deleted accounts.
type SignupService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      password.Hasher
	logger      logging.Logger
}

func NewSignupService(db *sql.DB, m repomanager.RepositoryManager, hasher password.Hasher, logger logging.Logger) *SignupService {
	return &SignupService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		logger:      logger.With("module", "signup"),
	}
}

// Signup runs one submission through the state machine.
//
// Terminal outcomes:
//   - (StateRejected, common.ErrorInvalidEntry): a field failed validation;
//     the store is never consulted.
//   - (StateRejected, common.ErrorConflict): the email belongs to an active
//     account, or a concurrent signup won the insert race.
//   - (StateRestorePending, nil): the email belongs to a soft-deleted
//     account; Result.Offer carries the restore choice. Not an error.
//   - (StateCreated, nil): a new active, unverified account was inserted.
//
// The email lookup is advisory under concurrent signups: the storage
// uniqueness constraint at insert time is the authoritative conflict signal.
func (s *SignupService) Signup(ctx context.Context, form validate.Form) (*SignupResult, error) {
	// Validating
	if !form.Submittable() {
		return &SignupResult{State: StateRejected}, common.ErrorInvalidEntry
	}

	// Checking
	email := validate.NormalizeEmail(form.Email)
	existing, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Deleted() {
			s.logger.Info(ctx, "signup collided with soft-deleted account", "user_id", existing.ID)
			return &SignupResult{
				State: StateRestorePending,
				Offer: &RestoreOffer{UserID: existing.ID, Message: restoreMessage},
			}, nil
		}
		return &SignupResult{State: StateRejected}, common.ErrorConflict
	case errors.Is(err, common.ErrorNotFound):
		// fall through to Creating
	default:
		return nil, err
	}

	// Creating
	hash, err := s.hasher.Hash(form.Password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	account := &models.Account{
		Username:     form.Username,
		Email:        email,
		PasswordHash: hash,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, createErr := s.repomanager.Accounts(tx).Create(ctx, account)
		if createErr != nil {
			return createErr
		}
		account = created
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return &SignupResult{State: StateRejected}, common.ErrorConflict
		}
		return nil, err
	}

	s.logger.Info(ctx, "account created", "user_id", account.ID)
	return &SignupResult{State: StateCreated, Account: account}, nil
}

// Restore reactivates the soft-deleted account holding the given email,
// keeping its original ID, roles, login history and password hash. The call
// is unauthenticated, so it must not change anything a caller could use to
// take the account over: knowing a stale email only brings the account back,
// signing in still takes the original password (or the reset flow, which
// proves mailbox ownership).
func (s *SignupService) Restore(ctx context.Context, email string) (*SignupResult, error) {
	account, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, validate.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if !account.Deleted() {
		// nothing to restore; treat like any other duplicate-email attempt
		return &SignupResult{State: StateRejected}, common.ErrorConflict
	}

	if err := s.repomanager.Accounts(s.db).Restore(ctx, account.ID); err != nil {
		return nil, err
	}

	account.DeletedAt = nil
	account.IsActive = true
	s.logger.Info(ctx, "account restored", "user_id", account.ID)
	return &SignupResult{State: StateRestored, Account: account}, nil
}
