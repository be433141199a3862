// internal/app/features/passwordreset/routes.go
package passwordreset

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the public reset routes (typically "/password-reset").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeRequestForm)
	r.Post("/", h.HandleRequest)
	r.Get("/confirm", h.ServeConfirmForm)
	r.Post("/confirm", h.HandleConfirm)

	return r
}
