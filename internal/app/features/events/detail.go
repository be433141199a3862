// internal/app/features/events/detail.go
package events

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"github.com/temanawa/iwihub/internal/app/policy/eventpolicy"
	eventstore "github.com/temanawa/iwihub/internal/app/store/events"
	participantstore "github.com/temanawa/iwihub/internal/app/store/participants"
	userstore "github.com/temanawa/iwihub/internal/app/store/users"
	"github.com/temanawa/iwihub/internal/app/system/authz"
	"github.com/temanawa/iwihub/internal/app/system/paging"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"github.com/temanawa/iwihub/internal/app/system/viewdata"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type detailVM struct {
	viewdata.BaseVM

	Event            models.Event
	HasEnded         bool
	IsParticipant    bool
	ParticipantCount int64
	CanViewAttendees bool
}

// loadEvent resolves {eventID} and checks visibility.
func (h *Handler) loadEvent(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Event, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "eventID"))
	if err != nil {
		uierrors.RenderError(w, r, "That event does not exist.", "/events")
		return models.Event{}, false
	}
	e, err := eventstore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		uierrors.RenderError(w, r, "That event does not exist.", "/events")
		return models.Event{}, false
	}
	if d := eventpolicy.CanView(r, e); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/events")
		return models.Event{}, false
	}
	return e, true
}

// ServeDetail shows one event with its RSVP controls.
// GET /events/{eventID}
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	e, ok := h.loadEvent(ctx, w, r)
	if !ok {
		return
	}

	store := participantstore.New(h.DB)
	count, err := store.CountForEvent(ctx, e.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to count participants", err, "Failed to load the event.", "/events")
		return
	}

	var joined bool
	if _, userID, signedIn := authz.UserCtx(r); signedIn {
		joined, err = store.IsParticipant(ctx, e.ID, userID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to check participation", err, "Failed to load the event.", "/events")
			return
		}
	}

	vm := detailVM{
		BaseVM:           viewdata.NewBaseVM(r, e.Title, "/events"),
		Event:            e,
		HasEnded:         !e.EndAt.After(time.Now().UTC()),
		IsParticipant:    joined,
		ParticipantCount: count,
		CanViewAttendees: eventpolicy.CanViewAttendees(r, e).Allowed,
	}
	templates.Render(w, r, "event_detail", vm)
}

// HandleJoin records an RSVP. Joining twice is harmless; the unique
// (event, user) index keeps one record.
// POST /events/{eventID}/join
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	e, ok := h.loadEvent(ctx, w, r)
	if !ok {
		return
	}
	_, userID, signedIn := authz.UserCtx(r)
	if !signedIn {
		uierrors.RenderUnauthorized(w, r, "/events")
		return
	}
	if !e.EndAt.After(time.Now().UTC()) {
		uierrors.RenderError(w, r, "This event has already ended.", "/events/"+e.ID.Hex())
		return
	}

	if err := participantstore.New(h.DB).Join(ctx, e.ID, userID); err != nil {
		h.ErrLog.LogServerError(w, r, "failed to join event", err, "Failed to record your RSVP.", "/events/"+e.ID.Hex())
		return
	}

	h.Log.Info("event joined",
		zap.String("event_id", e.ID.Hex()),
		zap.String("user_id", userID.Hex()))
	http.Redirect(w, r, "/events/"+e.ID.Hex()+"?success=joined", http.StatusSeeOther)
}

// HandleLeave withdraws an RSVP. Leaving an event never joined is a no-op.
// POST /events/{eventID}/leave
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	e, ok := h.loadEvent(ctx, w, r)
	if !ok {
		return
	}
	_, userID, signedIn := authz.UserCtx(r)
	if !signedIn {
		uierrors.RenderUnauthorized(w, r, "/events")
		return
	}

	if _, err := participantstore.New(h.DB).Leave(ctx, e.ID, userID); err != nil {
		h.ErrLog.LogServerError(w, r, "failed to leave event", err, "Failed to withdraw your RSVP.", "/events/"+e.ID.Hex())
		return
	}

	http.Redirect(w, r, "/events/"+e.ID.Hex()+"?success=left", http.StatusSeeOther)
}

type attendeeRow struct {
	Name     string
	JoinedAt time.Time
}

type attendeesVM struct {
	viewdata.BaseVM

	Event models.Event
	Rows  []attendeeRow
	Count int64
	Page  paging.Page
}

// ServeAttendees lists who has joined the event, oldest RSVP first.
// GET /events/{eventID}/attendees
func (h *Handler) ServeAttendees(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	e, ok := h.loadEvent(ctx, w, r)
	if !ok {
		return
	}
	if d := eventpolicy.CanViewAttendees(r, e); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/events/"+e.ID.Hex())
		return
	}

	store := participantstore.New(h.DB)
	count, err := store.CountForEvent(ctx, e.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to count participants", err, "Failed to load attendees.", "/events/"+e.ID.Hex())
		return
	}

	start := paging.ParseStart(r)
	skip, limit := paging.Window(start)
	parts, err := store.ListForEvent(ctx, e.ID, skip, limit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to list participants", err, "Failed to load attendees.", "/events/"+e.ID.Hex())
		return
	}
	page := paging.Trim(&parts, start)

	var userIDs []primitive.ObjectID
	for _, p := range parts {
		userIDs = append(userIDs, p.UserID)
	}
	members, err := userstore.New(h.DB).GetByIDs(ctx, userIDs)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to load members", err, "Failed to load attendees.", "/events/"+e.ID.Hex())
		return
	}
	names := make(map[primitive.ObjectID]string, len(members))
	for _, m := range members {
		names[m.ID] = m.FullName
	}

	vm := attendeesVM{
		BaseVM: viewdata.NewBaseVM(r, e.Title+" - attendees", "/events/"+e.ID.Hex()),
		Event:  e,
		Count:  count,
		Page:   page,
	}
	for _, p := range parts {
		vm.Rows = append(vm.Rows, attendeeRow{
			Name:     names[p.UserID],
			JoinedAt: p.JoinedAt,
		})
	}

	templates.Render(w, r, "event_attendees", vm)
}
