// Package services contains application services for the account CLI. This
// file defines the authentication service: signing in and out, restoring
// soft-deleted accounts, and housekeeping of the locally saved session.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/accountkeeper/internal/client/client"
	"github.com/dmitrijs2005/accountkeeper/internal/client/store"
	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/dbx"
)

// SavedSession is the locally persisted session of a trusted device.
type SavedSession struct {
	UserID       string
	Email        string
	AccessToken  string
	RefreshToken string
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Signup / Restore: create an account or reactivate a soft-deleted one.
//   - SignIn: authenticate; with persist=true the session is saved locally.
//   - Resume: load the saved session from disk and seed the API client.
//   - SignOut: revoke the server-side session and wipe the local one.
//   - Close: release underlying client resources.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Signup(ctx context.Context, form client.SignupForm) (*client.SignupOutcome, error)
	Restore(ctx context.Context, email string) error
	SignIn(ctx context.Context, email, password string, persist bool) (*client.Session, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
	Resume(ctx context.Context) (*SavedSession, error)
	SaveSession(ctx context.Context) error
	SignOut(ctx context.Context) error
	Close(ctx context.Context) error
}

// authService is the concrete AuthService backed by a remote Client
// and a local SQL database for the saved session.
type authService struct {
	client client.Client
	db     *sql.DB

	userID string
	email  string
}

// NewAuthService constructs an AuthService bound to the given API client and DB.
func NewAuthService(client client.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db}
}

func (a *authService) getSessionRepo() store.Repository {
	return store.NewSQLiteRepository(a.db)
}

func (a *authService) Signup(ctx context.Context, form client.SignupForm) (*client.SignupOutcome, error) {
	return a.client.Signup(ctx, form)
}

func (a *authService) Restore(ctx context.Context, email string) error {
	return a.client.Restore(ctx, email)
}

func (a *authService) RequestPasswordReset(ctx context.Context, email string) error {
	return a.client.RequestPasswordReset(ctx, email)
}

func (a *authService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	return a.client.ConfirmPasswordReset(ctx, token, newPassword)
}

// SignIn authenticates against the server. With persist=true the resulting
// session is written to the local database so the next run can resume it;
// otherwise any previously saved session is wiped.
func (a *authService) SignIn(ctx context.Context, email, password string, persist bool) (*client.Session, error) {
	session, err := a.client.SignIn(ctx, email, password, persist)
	if err != nil {
		return nil, err
	}

	a.userID = session.UserID
	a.email = email

	if persist {
		if err := a.saveSession(ctx, session.UserID, email, session.AccessToken, session.RefreshToken); err != nil {
			return nil, fmt.Errorf("session saving error: %w", err)
		}
	} else {
		if err := a.getSessionRepo().Clear(ctx); err != nil {
			return nil, fmt.Errorf("session cleanup error: %w", err)
		}
	}

	return session, nil
}

// saveSession persists the session attributes in a single transaction.
func (a *authService) saveSession(ctx context.Context, userID, email, accessToken, refreshToken string) error {
	repo := a.getSessionRepo()

	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := repo.Set(ctx, store.KeyUserID, []byte(userID)); err != nil {
			return err
		}
		if err := repo.Set(ctx, store.KeyEmail, []byte(email)); err != nil {
			return err
		}
		if err := repo.Set(ctx, store.KeyAccessToken, []byte(accessToken)); err != nil {
			return err
		}
		return repo.Set(ctx, store.KeyRefreshToken, []byte(refreshToken))
	})
}

// Resume loads the saved session and seeds the API client with its tokens.
// Returns common.ErrorNotFound when no session was saved.
func (a *authService) Resume(ctx context.Context) (*SavedSession, error) {
	repo := a.getSessionRepo()

	values, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}

	saved := &SavedSession{
		UserID:       string(values[store.KeyUserID]),
		Email:        string(values[store.KeyEmail]),
		AccessToken:  string(values[store.KeyAccessToken]),
		RefreshToken: string(values[store.KeyRefreshToken]),
	}
	if saved.RefreshToken == "" {
		return nil, common.ErrorNotFound
	}

	a.client.SetTokens(saved.AccessToken, saved.RefreshToken)
	a.userID = saved.UserID
	a.email = saved.Email

	return saved, nil
}

// SaveSession re-persists the client's current tokens, e.g. after a renewal
// replaced the access token. A no-op when nothing was saved before.
func (a *authService) SaveSession(ctx context.Context) error {
	repo := a.getSessionRepo()

	existing, err := repo.Get(ctx, store.KeyRefreshToken)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}

	accessToken, refreshToken := a.client.Tokens()
	return a.saveSession(ctx, a.userID, a.email, accessToken, refreshToken)
}

// SignOut revokes the server-side session and wipes the saved one.
func (a *authService) SignOut(ctx context.Context) error {
	if err := a.client.SignOut(ctx); err != nil {
		return err
	}
	a.userID = ""
	a.email = ""
	return a.getSessionRepo().Clear(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
