package services

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/dbx"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/server/config"
	"github.com/dmitrijs2005/accountkeeper/internal/server/notification"
	"github.com/dmitrijs2005/accountkeeper/internal/server/password"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/accountkeeper/internal/validate"
)

// ResetService dispatches password-reset links and applies confirmed resets.
//
// RequestReset deliberately reports an unknown email as common.ErrorNotFound,
// which the HTTP boundary maps to 403. This leaks account existence and a
// generic acknowledgment would be safer, but callers depend on the 403 and
// the behavior is kept for compatibility.
type ResetService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	hasher        password.Hasher
	notifier      notification.ResetNotifier
	logger        logging.Logger
	jwtSecret     []byte
	tokenValidity time.Duration
	baseURL       string
}

func NewResetService(db *sql.DB, m repomanager.RepositoryManager, hasher password.Hasher,
	notifier notification.ResetNotifier, logger logging.Logger, cfg *config.Config) *ResetService {
	return &ResetService{
		db:            db,
		repomanager:   m,
		hasher:        hasher,
		notifier:      notifier,
		logger:        logger.With("module", "reset"),
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.ResetTokenValidityDuration,
		baseURL:       cfg.ResetBaseURL,
	}
}

// RequestReset mails a short-lived reset link to the account holding email.
func (s *ResetService) RequestReset(ctx context.Context, email string) error {
	account, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, validate.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}
	if account.Deleted() || !account.IsActive {
		return common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(account.ID, nil, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return common.ErrorInternal
	}

	link := s.baseURL + "?token=" + url.QueryEscape(token)
	if err := s.notifier.SendResetLink(ctx, account.Email, link); err != nil {
		s.logger.Error(ctx, "reset link dispatch failed", "user_id", account.ID, "error", err.Error())
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "reset link dispatched", "user_id", account.ID)
	return nil
}

// ConfirmReset validates the reset token, stores the new password hash, and
// revokes every live refresh token of the account.
func (s *ResetService) ConfirmReset(ctx context.Context, token, newPassword string) error {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return common.ErrorUnauthorized
	}
	if !validate.Password(newPassword).Valid {
		return common.ErrorInvalidEntry
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return common.ErrorInternal
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Accounts(tx).Update(ctx, claims.UserID, accountsUpdate(nil, nil, &hash)); err != nil {
			return err
		}
		return s.repomanager.RefreshTokens(tx).RevokeAllForAccount(ctx, claims.UserID)
	})
}
