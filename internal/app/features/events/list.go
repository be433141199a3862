// internal/app/features/events/list.go
package events

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/temanawa/iwihub/internal/app/policy/eventpolicy"
	eventstore "github.com/temanawa/iwihub/internal/app/store/events"
	participantstore "github.com/temanawa/iwihub/internal/app/store/participants"
	"github.com/temanawa/iwihub/internal/app/system/authz"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"github.com/temanawa/iwihub/internal/app/system/viewdata"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type listVM struct {
	viewdata.BaseVM

	Upcoming  []models.Event
	Past      []models.Event
	CanCreate bool
}

// visibleFilter builds the event visibility filter for the current
// user. Staff see everything.
func (h *Handler) visibleFilter(r *http.Request) bson.M {
	if authz.IsStaff(r) {
		return bson.M{}
	}
	iwiID, hapuID := authz.UserScope(r)
	return eventstore.VisibleFilter(iwiID, hapuID, authz.LeaderIwiIDs(r), authz.LeaderHapuIDs(r))
}

// ServeList shows the events visible to the user, upcoming first.
// GET /events
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := eventstore.New(h.DB)

	upcoming, err := store.ListUpcoming(ctx, h.visibleFilter(r))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to list events", err, "Failed to load events.", "/dashboard")
		return
	}
	past, err := store.ListPast(ctx, h.visibleFilter(r))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to list events", err, "Failed to load events.", "/dashboard")
		return
	}
	if len(past) > 20 {
		past = past[:20]
	}

	vm := listVM{
		BaseVM:    viewdata.NewBaseVM(r, "Events", "/dashboard"),
		Upcoming:  upcoming,
		Past:      past,
		CanCreate: eventpolicy.CanCreate(r).Allowed,
	}
	templates.Render(w, r, "event_list", vm)
}

// ServeMine lists the events the user has joined.
// GET /events/mine
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	eventIDs, err := participantstore.New(h.DB).EventIDsForUser(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to load joined events", err, "Failed to load your events.", "/events")
		return
	}

	var joined []models.Event
	if len(eventIDs) > 0 {
		joined, err = eventstore.New(h.DB).Find(ctx, bson.M{"_id": bson.M{"$in": eventIDs}})
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to load joined events", err, "Failed to load your events.", "/events")
			return
		}
	}

	now := time.Now().UTC()
	vm := listVM{BaseVM: viewdata.NewBaseVM(r, "My events", "/events")}
	for _, e := range joined {
		if e.EndAt.After(now) {
			vm.Upcoming = append(vm.Upcoming, e)
		} else {
			vm.Past = append(vm.Past, e)
		}
	}

	templates.Render(w, r, "event_mine", vm)
}

type feedEntry struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Location string `json:"location"`
	URL      string `json:"url"`
}

// ServeCalendarFeed returns the user's visible events as JSON for the
// calendar widget.
// GET /events/api/events
func (h *Handler) ServeCalendarFeed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	events, err := eventstore.New(h.DB).Find(ctx, h.visibleFilter(r))
	if err != nil {
		h.Log.Error("calendar feed query failed", zap.Error(err))
		http.Error(w, "feed unavailable", http.StatusInternalServerError)
		return
	}

	feed := make([]feedEntry, 0, len(events))
	for _, e := range events {
		feed = append(feed, feedEntry{
			ID:       e.ID.Hex(),
			Title:    e.Title,
			Start:    e.StartAt.Format(time.RFC3339),
			End:      e.EndAt.Format(time.RFC3339),
			Location: e.LocationText(),
			URL:      "/events/" + e.ID.Hex(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(feed); err != nil {
		h.Log.Error("calendar feed encode failed", zap.Error(err))
	}
}
