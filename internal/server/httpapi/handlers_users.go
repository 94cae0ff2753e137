package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type userResponse struct {
	ID         string      `json:"id"`
	Username   string      `json:"username"`
	Email      string      `json:"email"`
	IsActive   bool        `json:"isActive"`
	IsVerified bool        `json:"isVerified"`
	Location   string      `json:"location,omitempty"`
	Roles      []string    `json:"roles"`
	CreatedAt  time.Time   `json:"createdAt"`
	Logins     []time.Time `json:"logins,omitempty"`
}

func newUserResponse(account *models.Account, logins []*models.LoginRecord) userResponse {
	resp := userResponse{
		ID:         account.ID,
		Username:   account.Username,
		Email:      account.Email,
		IsActive:   account.IsActive,
		IsVerified: account.IsVerified,
		Location:   account.Location,
		Roles:      account.Roles,
		CreatedAt:  account.CreatedAt,
	}
	for _, l := range logins {
		resp.Logins = append(resp.Logins, l.LoginTime)
	}
	return resp
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	userID := chi.URLParam(r, "userID")
	if !canAccess(claims, userID) {
		respondError(w, r, http.StatusForbidden, "forbidden")
		return
	}

	account, logins, err := s.accounts.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			respondError(w, r, http.StatusNotFound, "account not found")
			return
		}
		s.logger.Error(r.Context(), "get user failed", "error", err.Error())
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, r, http.StatusOK, newUserResponse(account, logins))
}

type updateUserRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// handleUpdateUser updates the authenticated account. A password change
// invalidates every refresh token the account holds.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req updateUserRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "malformed request")
		return
	}

	err := s.accounts.Update(r.Context(), claims.UserID, services.UpdateRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorInvalidEntry):
			respondError(w, r, http.StatusBadRequest, "Invalid Entry")
		case errors.Is(err, common.ErrorConflict):
			respondError(w, r, http.StatusConflict, "Username or Email Taken")
		case errors.Is(err, common.ErrorNotFound):
			respondError(w, r, http.StatusNotFound, "account not found")
		default:
			s.logger.Error(r.Context(), "update user failed", "error", err.Error())
			respondError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	userID := chi.URLParam(r, "userID")
	if !canAccess(claims, userID) {
		respondError(w, r, http.StatusForbidden, "forbidden")
		return
	}

	if err := s.accounts.SoftDelete(r.Context(), userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			respondError(w, r, http.StatusNotFound, "account not found")
			return
		}
		s.logger.Error(r.Context(), "delete user failed", "error", err.Error())
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

type presignedURLResponse struct {
	URL string `json:"url"`
}

func (s *Server) handleProfileUploadURL(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	userID := chi.URLParam(r, "userID")
	if !canAccess(claims, userID) {
		respondError(w, r, http.StatusForbidden, "forbidden")
		return
	}

	url, err := s.profiles.UploadURL(r.Context(), userID)
	if err != nil {
		s.logger.Error(r.Context(), "presigning upload url failed", "error", err.Error())
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, r, http.StatusOK, presignedURLResponse{URL: url})
}

func (s *Server) handleProfileImageURL(w http.ResponseWriter, r *http.Request) {
	if _, ok := claimsFromContext(r.Context()); !ok {
		respondError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	userID := chi.URLParam(r, "userID")

	url, err := s.profiles.ImageURL(r.Context(), userID)
	if err != nil {
		s.logger.Error(r.Context(), "presigning image url failed", "error", err.Error())
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, r, http.StatusOK, presignedURLResponse{URL: url})
}
