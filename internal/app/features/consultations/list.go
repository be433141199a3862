// internal/app/features/consultations/list.go
package consultations

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/temanawa/iwihub/internal/app/policy/consultationpolicy"
	proposalstore "github.com/temanawa/iwihub/internal/app/store/proposals"
	"github.com/temanawa/iwihub/internal/app/system/authz"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"github.com/temanawa/iwihub/internal/app/system/viewdata"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type listVM struct {
	viewdata.BaseVM

	Active    []models.Proposal
	Scheduled []models.Proposal
	Closed    []models.Proposal
	Drafts    []models.Proposal
	CanCreate bool
}

// ServeList shows the consultations visible to the user, grouped by
// lifecycle state. Staff also see drafts.
// GET /consultations
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	iwiID, hapuID := authz.UserScope(r)
	filter := proposalstore.VisibleFilter(iwiID, hapuID, authz.LeaderIwiIDs(r), authz.LeaderHapuIDs(r), false)
	if authz.IsStaff(r) {
		// Staff administer every consultation, drafts included.
		filter = bson.M{}
	}

	opts := options.Find().SetSort(bson.D{{Key: "end_at", Value: -1}})
	proposals, err := proposalstore.New(h.DB).Find(ctx, filter, opts)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to list consultations", err, "Failed to load consultations.", "/dashboard")
		return
	}

	vm := listVM{
		BaseVM:    viewdata.NewBaseVM(r, "Consultations", "/dashboard"),
		CanCreate: consultationpolicy.CanCreate(r).Allowed,
	}

	now := time.Now().UTC()
	for _, p := range proposals {
		switch p.State(now) {
		case models.ProposalDraft:
			vm.Drafts = append(vm.Drafts, p)
		case models.ProposalScheduled:
			vm.Scheduled = append(vm.Scheduled, p)
		case models.ProposalActive:
			vm.Active = append(vm.Active, p)
		default:
			vm.Closed = append(vm.Closed, p)
		}
	}

	// Members see the next five upcoming consultations; staff see the
	// whole schedule.
	sort.Slice(vm.Scheduled, func(i, j int) bool {
		return vm.Scheduled[i].StartAt.Before(vm.Scheduled[j].StartAt)
	})
	if !authz.IsStaff(r) && len(vm.Scheduled) > 5 {
		vm.Scheduled = vm.Scheduled[:5]
	}

	templates.Render(w, r, "consultation_list", vm)
}
