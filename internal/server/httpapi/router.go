package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/signup", s.handleSignup)
	r.Post("/signin", s.handleSignin)
	r.Post("/restore-account", s.handleRestore)
	r.Post("/refresh-token", s.handleRefreshToken)
	r.Post("/signout", s.handleSignout)
	r.Post("/reset-password-request", s.handleResetRequest)
	r.Post("/reset-password", s.handleResetConfirm)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/users/{userID}", s.handleGetUser)
		r.Put("/users", s.handleUpdateUser)
		r.Delete("/users/{userID}", s.handleDeleteUser)
		r.Post("/users/{userID}/profile-picture/upload-url", s.handleProfileUploadURL)
		r.Get("/users/{userID}/profile-picture", s.handleProfileImageURL)
	})

	return r
}
