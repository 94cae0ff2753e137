package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/services"
	"github.com/dmitrijs2005/accountkeeper/internal/validate"
	"github.com/go-chi/render"
)

type signupRequest struct {
	Username             string `json:"username"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"passwordConfirmation"`
}

type signupResponse struct {
	Success bool   `json:"success,omitempty"`
	Action  string `json:"action,omitempty"`
	Message string `json:"message,omitempty"`
	UserID  string `json:"userId,omitempty"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "malformed request")
		return
	}

	result, err := s.signups.Signup(r.Context(), validate.Form{
		Username:             req.Username,
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorInvalidEntry):
			respondError(w, r, http.StatusBadRequest, "Invalid Entry")
		case errors.Is(err, common.ErrorConflict):
			respondError(w, r, http.StatusConflict, "Username or Email Taken")
		default:
			s.logger.Error(r.Context(), "signup failed", "error", err.Error())
			respondError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	if result.State == services.StateRestorePending {
		respondJSON(w, r, http.StatusOK, signupResponse{
			Action:  "restore",
			Message: result.Offer.Message,
			UserID:  result.Offer.UserID,
		})
		return
	}

	s.logger.Info(r.Context(), "signup completed", "user_id", result.Account.ID)
	respondJSON(w, r, http.StatusCreated, signupResponse{Success: true})
}

type signinRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Persist  bool   `json:"persist"`
}

type signinResponse struct {
	AccessToken string   `json:"accessToken"`
	UserID      string   `json:"userId"`
	Roles       []string `json:"roles"`
}

func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "malformed request")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, r, http.StatusBadRequest, "email and password are required")
		return
	}

	session, err := s.sessions.SignIn(r.Context(), req.Email, req.Password, req.Persist)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			respondError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}
		s.logger.Error(r.Context(), "signin failed", "error", err.Error())
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	s.setRefreshCookie(w, session)
	respondJSON(w, r, http.StatusOK, signinResponse{
		AccessToken: session.AccessToken,
		UserID:      session.UserID,
		Roles:       session.Roles,
	})
}

// setRefreshCookie delivers the refresh token over the persistent credential
// channel. A trusted device gets a cookie that survives browser restarts;
// otherwise the cookie is session-scoped.
func (s *Server) setRefreshCookie(w http.ResponseWriter, session *services.Session) {
	cookie := &http.Cookie{
		Name:     common.RefreshTokenCookieName,
		Value:    session.RefreshToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if session.Persist {
		cookie.MaxAge = int(s.refreshTTL.Seconds())
	}
	http.SetCookie(w, cookie)
}

type restoreRequest struct {
	Email string `json:"email"`
}

// handleRestore reactivates a soft-deleted account by email alone. The
// endpoint is unauthenticated and therefore never accepts credentials: the
// restored account keeps its previous password, and a forgotten one goes
// through the reset flow.
func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	var req restoreRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "malformed request")
		return
	}

	result, err := s.signups.Restore(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			respondError(w, r, http.StatusNotFound, "account not found")
		case errors.Is(err, common.ErrorConflict):
			respondError(w, r, http.StatusConflict, "account is not deleted")
		default:
			s.logger.Error(r.Context(), "restore failed", "error", err.Error())
			respondError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	s.logger.Info(r.Context(), "account restored", "user_id", result.Account.ID)
	respondJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

func (s *Server) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(common.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		respondError(w, r, http.StatusUnauthorized, common.ErrSessionExpired.Error())
		return
	}

	access, err := s.sessions.Renew(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, common.ErrSessionExpired) {
			respondError(w, r, http.StatusUnauthorized, common.ErrSessionExpired.Error())
			return
		}
		s.logger.Error(r.Context(), "token renewal failed", "error", err.Error())
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, r, http.StatusOK, refreshResponse{AccessToken: access})
}

func (s *Server) handleSignout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(common.RefreshTokenCookieName); err == nil && cookie.Value != "" {
		if err := s.sessions.Revoke(r.Context(), cookie.Value); err != nil {
			s.logger.Error(r.Context(), "signout revoke failed", "error", err.Error())
		}
	}

	// clear the cookie regardless: signout must always succeed locally
	http.SetCookie(w, &http.Cookie{
		Name:     common.RefreshTokenCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	respondJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

type resetRequest struct {
	Email string `json:"email"`
}

// handleResetRequest maps an unknown email to 403. This leaks account
// existence; kept because existing callers distinguish 403 from 401 here.
func (s *Server) handleResetRequest(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "malformed request")
		return
	}

	err := s.resets.RequestReset(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			respondError(w, r, http.StatusForbidden, "email not found")
		case errors.Is(err, common.ErrorUnauthorized):
			respondError(w, r, http.StatusUnauthorized, "unauthorized")
		default:
			s.logger.Error(r.Context(), "reset request failed", "error", err.Error())
			respondError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

type resetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (s *Server) handleResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req resetConfirmRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "malformed request")
		return
	}

	err := s.resets.ConfirmReset(r.Context(), req.Token, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorUnauthorized):
			respondError(w, r, http.StatusUnauthorized, "unauthorized")
		case errors.Is(err, common.ErrorInvalidEntry):
			respondError(w, r, http.StatusBadRequest, "Invalid Entry")
		case errors.Is(err, common.ErrorNotFound):
			respondError(w, r, http.StatusNotFound, "account not found")
		default:
			s.logger.Error(r.Context(), "reset confirm failed", "error", err.Error())
			respondError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}
