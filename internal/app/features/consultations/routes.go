// internal/app/features/consultations/routes.go
package consultations

import (
	"github.com/go-chi/chi/v5"
	"github.com/temanawa/iwihub/internal/app/system/auth"
)

// Routes mounts the consultation pages (typically "/consultations").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Get("/new", h.ServeNewForm)
		pr.Post("/new", h.HandleCreate)
		pr.Get("/{proposalID}", h.ServeDetail)
		pr.Post("/{proposalID}/vote", h.HandleVote)
		pr.Post("/{proposalID}/comments", h.HandleComment)
		pr.Get("/{proposalID}/results", h.ServeResults)
		pr.Post("/{proposalID}/publish", h.HandlePublish)
		pr.Post("/{proposalID}/comments/{commentID}/moderate", h.HandleModerate)
	})

	return r
}
