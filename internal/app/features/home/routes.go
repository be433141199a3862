// internal/app/features/home/routes.go
package home

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the landing page (typically "/").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeRoot)
	return r
}
