// internal/app/features/events/routes.go
package events

import (
	"github.com/go-chi/chi/v5"
	"github.com/temanawa/iwihub/internal/app/system/auth"
)

// Routes mounts the event pages (typically "/events").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Get("/mine", h.ServeMine)
		pr.Get("/api/events", h.ServeCalendarFeed)
		pr.Get("/new", h.ServeNewForm)
		pr.Post("/new", h.HandleCreate)
		pr.Get("/{eventID}", h.ServeDetail)
		pr.Get("/{eventID}/attachment", h.ServeAttachment)
		pr.Post("/{eventID}/join", h.HandleJoin)
		pr.Post("/{eventID}/leave", h.HandleLeave)
		pr.Get("/{eventID}/attendees", h.ServeAttendees)
	})

	return r
}
