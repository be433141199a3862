// internal/app/features/hapus/routes.go
package hapus

import (
	"github.com/go-chi/chi/v5"
	"github.com/temanawa/iwihub/internal/app/system/auth"
)

// Routes mounts hapū administration (typically "/admin/hapus").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Get("/new", h.ServeNewForm)
		pr.Post("/new", h.HandleCreate)
		pr.Get("/{hapuID}", h.ServeDetail)
		pr.Get("/{hapuID}/edit", h.ServeEditForm)
		pr.Post("/{hapuID}/edit", h.HandleUpdate)
		pr.Post("/{hapuID}/archive", h.HandleArchive)
		pr.Post("/{hapuID}/unarchive", h.HandleUnarchive)
		pr.Get("/{hapuID}/transfer", h.ServeTransferForm)
		pr.Post("/{hapuID}/transfer", h.HandleTransfer)
	})

	return r
}

// APIRoutes mounts the public hapū lookup used by dependent dropdowns
// (typically "/api/hapus"). The registration form calls it before any
// session exists, so it takes no auth middleware.
func APIRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeOptions)

	return r
}
