package httpapi

import (
	"net/http"

	"github.com/go-chi/render"
)

// errorResponse is the uniform error body. The message is user-facing; no
// internal error detail crosses the wire.
type errorResponse struct {
	Message string `json:"message"`
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Message: message})
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}
