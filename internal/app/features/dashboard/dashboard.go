// internal/app/features/dashboard/dashboard.go
package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	eventstore "github.com/temanawa/iwihub/internal/app/store/events"
	hapustore "github.com/temanawa/iwihub/internal/app/store/hapus"
	iwistore "github.com/temanawa/iwihub/internal/app/store/iwis"
	noticestore "github.com/temanawa/iwihub/internal/app/store/notices"
	proposalstore "github.com/temanawa/iwihub/internal/app/store/proposals"
	userstore "github.com/temanawa/iwihub/internal/app/store/users"
	"github.com/temanawa/iwihub/internal/app/system/authz"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"github.com/temanawa/iwihub/internal/app/system/viewdata"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

type memberVM struct {
	viewdata.BaseVM

	OpenConsultations []models.Proposal
	Notices           []models.Notice
	UpcomingEvents    []models.Event
}

type adminVM struct {
	viewdata.BaseVM

	ActiveIwis    int64
	ArchivedIwis  int64
	ActiveHapus   int64
	PendingUsers  int64
	VerifiedUsers int64
	RejectedUsers int64
	OpenConsults  int64
	ActiveNotices int64
}

// ServeDashboard renders the member dashboard, or the portal overview
// for staff.
// GET /dashboard
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if authz.IsStaff(r) {
		h.serveAdmin(ctx, w, r)
		return
	}

	iwiID, hapuID := authz.UserScope(r)
	now := time.Now().UTC()

	vm := memberVM{BaseVM: viewdata.NewBaseVM(r, "Dashboard", "/")}

	ledIwiIDs, ledHapuIDs := authz.LeaderIwiIDs(r), authz.LeaderHapuIDs(r)

	openFilter := proposalstore.VisibleFilter(iwiID, hapuID, ledIwiIDs, ledHapuIDs, false)
	openFilter["start_at"] = bson.M{"$lte": now}
	openFilter["end_at"] = bson.M{"$gt": now}
	proposals, err := proposalstore.New(h.DB).Find(ctx, openFilter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to load consultations", err, "Failed to load your dashboard.", "/")
		return
	}
	vm.OpenConsultations = trimProposals(proposals, 5)

	notices, err := noticestore.New(h.DB).ListActiveFor(ctx, iwiID, hapuID, ledIwiIDs, ledHapuIDs)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to load notices", err, "Failed to load your dashboard.", "/")
		return
	}
	if len(notices) > 5 {
		notices = notices[:5]
	}
	vm.Notices = notices

	events, err := eventstore.New(h.DB).ListUpcoming(ctx, eventstore.VisibleFilter(iwiID, hapuID, ledIwiIDs, ledHapuIDs))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to load events", err, "Failed to load your dashboard.", "/")
		return
	}
	if len(events) > 5 {
		events = events[:5]
	}
	vm.UpcomingEvents = events

	templates.Render(w, r, "dashboard_member", vm)
}

func (h *Handler) serveAdmin(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	vm := adminVM{BaseVM: viewdata.NewBaseVM(r, "Portal overview", "/")}
	now := time.Now().UTC()

	counts := []struct {
		dst   *int64
		count func() (int64, error)
	}{
		{&vm.ActiveIwis, func() (int64, error) {
			return iwistore.New(h.DB).Count(ctx, bson.M{"is_archived": false})
		}},
		{&vm.ArchivedIwis, func() (int64, error) {
			return iwistore.New(h.DB).Count(ctx, bson.M{"is_archived": true})
		}},
		{&vm.ActiveHapus, func() (int64, error) {
			return hapustore.New(h.DB).Count(ctx, bson.M{"is_archived": false})
		}},
		{&vm.PendingUsers, func() (int64, error) {
			return userstore.New(h.DB).Count(ctx, bson.M{"state": models.StatePending})
		}},
		{&vm.VerifiedUsers, func() (int64, error) {
			return userstore.New(h.DB).Count(ctx, bson.M{"state": models.StateVerified})
		}},
		{&vm.RejectedUsers, func() (int64, error) {
			return userstore.New(h.DB).Count(ctx, bson.M{"state": models.StateRejected})
		}},
		{&vm.OpenConsults, func() (int64, error) {
			return proposalstore.New(h.DB).Count(ctx, bson.M{
				"is_draft": false,
				"start_at": bson.M{"$lte": now},
				"end_at":   bson.M{"$gt": now},
			})
		}},
		{&vm.ActiveNotices, func() (int64, error) {
			return noticestore.New(h.DB).Count(ctx, bson.M{
				"expires_at": bson.M{"$gt": now},
			})
		}},
	}
	for _, c := range counts {
		n, err := c.count()
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to load overview counts", err, "Failed to load the overview.", "/")
			return
		}
		*c.dst = n
	}

	templates.Render(w, r, "dashboard_admin", vm)
}

func trimProposals(in []models.Proposal, n int) []models.Proposal {
	if len(in) > n {
		return in[:n]
	}
	return in
}
