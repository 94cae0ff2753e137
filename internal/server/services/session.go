// Package services contains server-side business logic. This file implements
// SessionService: credential verification, issuing access/refresh token pairs,
// renewing access tokens, and revocation.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/server/config"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/password"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/accountkeeper/internal/validate"
)

// Session bundles a short-lived access token with a longer-lived opaque
// refresh token, plus the identity the pair is bound to.
type Session struct {
	AccessToken  string
	RefreshToken string
	UserID       string
	Roles        []string
	Persist      bool
}

// SessionService issues, renews and revokes sessions.
//
// Failure semantics: a forged, expired or revoked refresh token all surface
// as common.ErrSessionExpired. Callers must treat them identically and force
// re-authentication; no finer-grained token-error taxonomy is exposed.
type SessionService struct {
	db                     *sql.DB
	repomanager            repomanager.RepositoryManager
	hasher                 password.Hasher
	jwtSecret              []byte
	accessTokenValidity    time.Duration
	refreshTokenValidity   time.Duration
	sessionRefreshValidity time.Duration
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, hasher password.Hasher, cfg *config.Config) *SessionService {
	return &SessionService{
		db:                     db,
		repomanager:            m,
		hasher:                 hasher,
		jwtSecret:              []byte(cfg.SecretKey),
		accessTokenValidity:    cfg.AccessTokenValidityDuration,
		refreshTokenValidity:   cfg.RefreshTokenValidityDuration,
		sessionRefreshValidity: cfg.SessionRefreshValidityDuration,
	}
}

// SignIn verifies the email/password pair and returns a fresh Session.
// Unknown emails, wrong passwords and soft-deleted accounts all yield
// common.ErrorUnauthorized without further detail.
func (s *SessionService) SignIn(ctx context.Context, email, pwd string, persist bool) (*Session, error) {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByEmail(ctx, validate.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if account.Deleted() || !account.IsActive {
		return nil, common.ErrorUnauthorized
	}

	ok, err := s.hasher.Verify(pwd, account.PasswordHash)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	if err := s.repomanager.LoginHistory(s.db).Record(ctx, account.ID, time.Now()); err != nil {
		return nil, common.ErrorInternal
	}

	return s.Issue(ctx, account, persist)
}

// Issue mints a Session for an already-verified account. The refresh token
// lifetime depends on persist: long for trusted devices, session-scoped
// otherwise.
func (s *SessionService) Issue(ctx context.Context, account *models.Account, persist bool) (*Session, error) {
	access, err := auth.GenerateToken(account.ID, account.Roles, s.jwtSecret, s.accessTokenValidity)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}

	validity := s.sessionRefreshValidity
	if persist {
		validity = s.refreshTokenValidity
	}
	if err := s.repomanager.RefreshTokens(s.db).Create(ctx, account.ID, refresh, persist, validity); err != nil {
		return nil, common.ErrorInternal
	}

	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		UserID:       account.ID,
		Roles:        account.Roles,
		Persist:      persist,
	}, nil
}

// Renew validates a refresh token and mints a new access token bound to the
// same account and roles. The refresh token itself is not rotated.
func (s *SessionService) Renew(ctx context.Context, refreshToken string) (string, error) {
	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrSessionExpired
		}
		return "", fmt.Errorf("error searching refresh token: %w", err)
	}
	if !token.Usable(time.Now()) {
		return "", common.ErrSessionExpired
	}

	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, token.AccountID)
	if err != nil {
		return "", common.ErrSessionExpired
	}
	if account.Deleted() || !account.IsActive {
		return "", common.ErrSessionExpired
	}

	access, err := auth.GenerateToken(account.ID, account.Roles, s.jwtSecret, s.accessTokenValidity)
	if err != nil {
		return "", common.ErrorInternal
	}
	return access, nil
}

// Revoke marks the refresh token unusable. Idempotent.
func (s *SessionService) Revoke(ctx context.Context, refreshToken string) error {
	return s.repomanager.RefreshTokens(s.db).Revoke(ctx, refreshToken)
}

// VerifyAccessToken parses an access token and returns its claims. Used by
// the transport middleware.
func (s *SessionService) VerifyAccessToken(tokenString string) (*auth.Claims, error) {
	return auth.ParseToken(tokenString, s.jwtSecret)
}
