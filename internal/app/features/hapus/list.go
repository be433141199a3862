// internal/app/features/hapus/list.go
package hapus

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"github.com/temanawa/iwihub/internal/app/policy/unitpolicy"
	hapustore "github.com/temanawa/iwihub/internal/app/store/hapus"
	iwistore "github.com/temanawa/iwihub/internal/app/store/iwis"
	"github.com/temanawa/iwihub/internal/app/system/authz"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"github.com/temanawa/iwihub/internal/app/system/viewdata"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type listRow struct {
	Hapu    models.Hapu
	IwiName string
}

type listVM struct {
	viewdata.BaseVM

	Active   []listRow
	Archived []listRow
}

// ServeList shows the hapū the user may manage, grouped by status.
// Staff see everything; iwi leaders see their own iwi's hapū.
// GET /admin/hapus
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	if d := unitpolicy.CanCreateHapu(r); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/dashboard")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	filter := bson.M{}
	if !authz.IsStaff(r) {
		filter["iwi_id"] = bson.M{"$in": authz.LeaderIwiIDs(r)}
	}

	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	hapus, err := hapustore.New(h.DB).Find(ctx, filter, opts)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to list hapus", err, "Failed to load hapū records.", "/dashboard")
		return
	}

	names, err := h.iwiNames(ctx, hapus)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to load iwi names", err, "Failed to load hapū records.", "/dashboard")
		return
	}

	vm := listVM{BaseVM: viewdata.NewBaseVM(r, "Hapū", "/dashboard")}
	for _, hp := range hapus {
		row := listRow{Hapu: hp, IwiName: names[hp.IwiID]}
		if hp.IsArchived {
			vm.Archived = append(vm.Archived, row)
		} else {
			vm.Active = append(vm.Active, row)
		}
	}

	templates.Render(w, r, "hapu_list", vm)
}

type detailVM struct {
	viewdata.BaseVM

	Hapu           models.Hapu
	IwiName        string
	ParentArchived bool
}

// ServeDetail shows one hapū with its management actions. The transfer
// action appears only while the parent iwi is archived.
// GET /admin/hapus/{hapuID}
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	hapu, ok := h.loadHapu(ctx, w, r)
	if !ok {
		return
	}
	if d := unitpolicy.CanManageHapu(r, hapu); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/admin/hapus")
		return
	}

	iwi, err := iwistore.New(h.DB).GetByID(ctx, hapu.IwiID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to load parent iwi", err, "Failed to load this hapū.", "/admin/hapus")
		return
	}

	vm := detailVM{
		BaseVM:         viewdata.NewBaseVM(r, hapu.Name, "/admin/hapus"),
		Hapu:           hapu,
		IwiName:        iwi.Name,
		ParentArchived: iwi.IsArchived,
	}
	templates.Render(w, r, "hapu_detail", vm)
}

// iwiNames resolves the distinct parent iwi names for a hapū listing.
func (h *Handler) iwiNames(ctx context.Context, hapus []models.Hapu) (map[primitive.ObjectID]string, error) {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, hp := range hapus {
		if !seen[hp.IwiID] {
			seen[hp.IwiID] = true
			ids = append(ids, hp.IwiID)
		}
	}

	iwis, err := iwistore.New(h.DB).GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	names := make(map[primitive.ObjectID]string, len(iwis))
	for _, iwi := range iwis {
		names[iwi.ID] = iwi.Name
	}
	return names, nil
}
