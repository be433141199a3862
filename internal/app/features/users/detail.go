// internal/app/features/users/detail.go
package users

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"github.com/temanawa/iwihub/internal/app/policy/userpolicy"
	hapustore "github.com/temanawa/iwihub/internal/app/store/hapus"
	iwistore "github.com/temanawa/iwihub/internal/app/store/iwis"
	leadershipstore "github.com/temanawa/iwihub/internal/app/store/leaderships"
	userstore "github.com/temanawa/iwihub/internal/app/store/users"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"github.com/temanawa/iwihub/internal/app/system/viewdata"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type detailVM struct {
	viewdata.BaseVM

	Member    models.User
	IwiName   string
	HapuName  string
	LeadsIwis []models.Iwi
	LeadsHaps []models.Hapu
	CanVerify bool
	CanAssign bool
	AllIwis   []models.Iwi
	AllHapus  []models.Hapu
}

// loadMember resolves the {userID} route parameter.
func (h *Handler) loadMember(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.User, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		uierrors.RenderError(w, r, "That member does not exist.", "/admin/users")
		return models.User{}, false
	}
	member, err := userstore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		uierrors.RenderError(w, r, "That member does not exist.", "/admin/users")
		return models.User{}, false
	}
	return member, true
}

// ServeDetail shows one member: affiliation, verification state, the
// citizenship document link, and leadership grants.
// GET /admin/users/{userID}
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	if d := userpolicy.CanListUsers(r); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/dashboard")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	member, ok := h.loadMember(ctx, w, r)
	if !ok {
		return
	}

	vm := detailVM{
		BaseVM:    viewdata.NewBaseVM(r, member.FullName, "/admin/users"),
		Member:    member,
		CanVerify: userpolicy.CanVerify(r, member).Allowed,
		CanAssign: userpolicy.CanAssignLeaders(r).Allowed,
	}

	if member.IwiID != nil {
		if iwi, err := iwistore.New(h.DB).GetByID(ctx, *member.IwiID); err == nil {
			vm.IwiName = iwi.Name
		}
	}
	if member.HapuID != nil {
		if hp, err := hapustore.New(h.DB).GetByID(ctx, *member.HapuID); err == nil {
			vm.HapuName = hp.Name
		}
	}

	leads := leadershipstore.New(h.DB)
	iwiLeads, err := leads.ListIwiLeaderships(ctx, member.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to load leaderships", err, "Failed to load this member.", "/admin/users")
		return
	}
	hapuLeads, err := leads.ListHapuLeaderships(ctx, member.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to load leaderships", err, "Failed to load this member.", "/admin/users")
		return
	}

	var iwiIDs []primitive.ObjectID
	for _, l := range iwiLeads {
		iwiIDs = append(iwiIDs, l.IwiID)
	}
	var hapuIDs []primitive.ObjectID
	for _, l := range hapuLeads {
		hapuIDs = append(hapuIDs, l.HapuID)
	}
	if vm.LeadsIwis, err = iwistore.New(h.DB).GetByIDs(ctx, iwiIDs); err != nil {
		h.ErrLog.LogServerError(w, r, "failed to load led iwis", err, "Failed to load this member.", "/admin/users")
		return
	}
	if vm.LeadsHaps, err = hapustore.New(h.DB).GetByIDs(ctx, hapuIDs); err != nil {
		h.ErrLog.LogServerError(w, r, "failed to load led hapus", err, "Failed to load this member.", "/admin/users")
		return
	}

	if vm.CanAssign {
		if vm.AllIwis, err = iwistore.New(h.DB).ListActive(ctx); err != nil {
			h.ErrLog.LogServerError(w, r, "failed to load iwis", err, "Failed to load this member.", "/admin/users")
			return
		}
		if vm.AllHapus, err = hapustore.New(h.DB).Find(ctx, bson.M{"is_archived": false}); err != nil {
			h.ErrLog.LogServerError(w, r, "failed to load hapus", err, "Failed to load this member.", "/admin/users")
			return
		}
	}

	templates.Render(w, r, "user_detail", vm)
}
