// internal/app/features/notices/routes.go
package notices

import (
	"github.com/go-chi/chi/v5"
	"github.com/temanawa/iwihub/internal/app/system/auth"
)

// Routes mounts the notice board (typically "/notices").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Get("/new", h.ServeNewForm)
		pr.Post("/new", h.HandleCreate)
		pr.Get("/{noticeID}", h.ServeDetail)
		pr.Get("/{noticeID}/attachment", h.ServeAttachment)
		pr.Get("/{noticeID}/edit", h.ServeEditForm)
		pr.Post("/{noticeID}/edit", h.HandleUpdate)
		pr.Post("/{noticeID}/expire", h.HandleExpire)
		pr.Post("/{noticeID}/delete", h.HandleDelete)
		pr.Get("/{noticeID}/engagement", h.ServeEngagement)
	})

	return r
}
