// internal/app/features/iwis/routes.go
package iwis

import (
	"github.com/go-chi/chi/v5"
	"github.com/temanawa/iwihub/internal/app/system/auth"
)

// Routes mounts iwi administration (typically "/admin/iwis").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Get("/new", h.ServeNewForm)
		pr.Post("/new", h.HandleCreate)
		pr.Get("/{iwiID}", h.ServeDetail)
		pr.Get("/{iwiID}/edit", h.ServeEditForm)
		pr.Post("/{iwiID}/edit", h.HandleUpdate)
		pr.Get("/{iwiID}/archive", h.ServeArchiveForm)
		pr.Post("/{iwiID}/archive", h.HandleArchive)
		pr.Post("/{iwiID}/unarchive", h.HandleUnarchive)
	})

	return r
}
