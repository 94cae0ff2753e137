package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/dbx"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/password"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/accountkeeper/internal/validate"
)

// UpdateRequest carries optional account changes; nil fields stay untouched.
type UpdateRequest struct {
	Username *string
	Email    *string
	Password *string
}

// AccountService covers the plain account lifecycle: read, partial update,
// soft delete. Signup and restore live in SignupService.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      password.Hasher
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, hasher password.Hasher) *AccountService {
	return &AccountService{db: db, repomanager: m, hasher: hasher}
}

// Get returns the account plus its most recent login history.
func (s *AccountService) Get(ctx context.Context, id string) (*models.Account, []*models.LoginRecord, error) {
	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	history, err := s.repomanager.LoginHistory(s.db).ListByAccount(ctx, id, 20)
	if err != nil {
		return nil, nil, err
	}
	return account, history, nil
}

// Update applies a partial update after validating the provided fields.
// A password change revokes every live refresh token of the account in the
// same transaction, invalidating all other devices.
func (s *AccountService) Update(ctx context.Context, id string, req UpdateRequest) error {
	if req.Username == nil && req.Email == nil && req.Password == nil {
		return common.ErrorInvalidEntry
	}
	if req.Username != nil && !validate.Username(*req.Username).Valid {
		return common.ErrorInvalidEntry
	}
	if req.Email != nil && !validate.Email(*req.Email).Valid {
		return common.ErrorInvalidEntry
	}
	if req.Password != nil && !validate.Password(*req.Password).Valid {
		return common.ErrorInvalidEntry
	}

	var hash *string
	if req.Password != nil {
		h, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return common.ErrorInternal
		}
		hash = &h
	}

	var email *string
	if req.Email != nil {
		normalized := validate.NormalizeEmail(*req.Email)
		email = &normalized
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Accounts(tx).Update(ctx, id, accountsUpdate(req.Username, email, hash)); err != nil {
			return err
		}
		if hash != nil {
			return s.repomanager.RefreshTokens(tx).RevokeAllForAccount(ctx, id)
		}
		return nil
	})
}

// SoftDelete marks the account deleted and revokes its refresh tokens. The
// row and its login history are kept for the restore window.
func (s *AccountService) SoftDelete(ctx context.Context, id string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Accounts(tx).SoftDelete(ctx, id); err != nil {
			return err
		}
		return s.repomanager.RefreshTokens(tx).RevokeAllForAccount(ctx, id)
	})
}

func accountsUpdate(username, email, passwordHash *string) accounts.Update {
	return accounts.Update{Username: username, Email: email, PasswordHash: passwordHash}
}
