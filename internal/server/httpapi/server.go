// Package httpapi terminates HTTP transport for the account service. It
// parses requests into typed values, invokes the services, and maps the error
// taxonomy onto status codes (400 invalid entry, 401 unauthorized, 403 reset
// for an unknown email, 409 conflict).
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/services"
	"github.com/dmitrijs2005/accountkeeper/internal/validate"
)

type sessionSvc interface {
	SignIn(ctx context.Context, email, password string, persist bool) (*services.Session, error)
	Renew(ctx context.Context, refreshToken string) (string, error)
	Revoke(ctx context.Context, refreshToken string) error
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type signupSvc interface {
	Signup(ctx context.Context, form validate.Form) (*services.SignupResult, error)
	Restore(ctx context.Context, email string) (*services.SignupResult, error)
}

type accountSvc interface {
	Get(ctx context.Context, id string) (*models.Account, []*models.LoginRecord, error)
	Update(ctx context.Context, id string, req services.UpdateRequest) error
	SoftDelete(ctx context.Context, id string) error
}

type resetSvc interface {
	RequestReset(ctx context.Context, email string) error
	ConfirmReset(ctx context.Context, token, newPassword string) error
}

type profileSvc interface {
	UploadURL(ctx context.Context, userID string) (string, error)
	ImageURL(ctx context.Context, userID string) (string, error)
}

type Server struct {
	address    string
	logger     logging.Logger
	sessions   sessionSvc
	signups    signupSvc
	accounts   accountSvc
	resets     resetSvc
	profiles   profileSvc
	refreshTTL time.Duration
}

func NewServer(address string, logger logging.Logger,
	sessions sessionSvc, signups signupSvc,
	accounts accountSvc, resets resetSvc,
	profiles profileSvc, refreshTTL time.Duration) *Server {
	return &Server{
		address:    address,
		logger:     logger.With("module", "http_server"),
		sessions:   sessions,
		signups:    signups,
		accounts:   accounts,
		resets:     resets,
		profiles:   profiles,
		refreshTTL: refreshTTL,
	}
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
