// internal/app/features/users/routes.go
package users

import (
	"github.com/go-chi/chi/v5"
	"github.com/temanawa/iwihub/internal/app/system/auth"
)

// Routes mounts member administration (typically "/admin/users").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Get("/{userID}", h.ServeDetail)
		pr.Post("/{userID}/verify", h.HandleVerify)
		pr.Post("/{userID}/reject", h.HandleReject)
		pr.Get("/{userID}/document", h.ServeDocument)
		pr.Post("/{userID}/leaderships/iwi", h.HandleIwiLeadership)
		pr.Post("/{userID}/leaderships/hapu", h.HandleHapuLeadership)
	})

	return r
}
