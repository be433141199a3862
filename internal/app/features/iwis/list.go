// internal/app/features/iwis/list.go
package iwis

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"github.com/temanawa/iwihub/internal/app/policy/unitpolicy"
	hapustore "github.com/temanawa/iwihub/internal/app/store/hapus"
	iwistore "github.com/temanawa/iwihub/internal/app/store/iwis"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"github.com/temanawa/iwihub/internal/app/system/viewdata"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type listVM struct {
	viewdata.BaseVM

	Iwis         []models.Iwi
	ShowArchived bool
}

type detailVM struct {
	viewdata.BaseVM

	Iwi   models.Iwi
	Hapus []models.Hapu
}

// ServeList shows all iwi, optionally including archived ones.
// GET /admin/iwis
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	if d := unitpolicy.CanManageIwis(r); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/dashboard")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	showArchived := query.Get(r, "show_archived") == "true"
	filter := bson.M{}
	if !showArchived {
		filter["is_archived"] = false
	}

	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	iwis, err := iwistore.New(h.DB).Find(ctx, filter, opts)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to list iwis", err, "Failed to load iwi records.", "/dashboard")
		return
	}

	vm := listVM{
		BaseVM:       viewdata.NewBaseVM(r, "Iwi", "/dashboard"),
		Iwis:         iwis,
		ShowArchived: showArchived,
	}
	templates.Render(w, r, "iwi_list", vm)
}

// ServeDetail shows one iwi with its hapū.
// GET /admin/iwis/{iwiID}
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	if d := unitpolicy.CanManageIwis(r); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/dashboard")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	iwi, ok := h.loadIwi(ctx, w, r)
	if !ok {
		return
	}

	hapus, err := hapustore.New(h.DB).ListByIwi(ctx, iwi.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to list hapus", err, "Failed to load this iwi.", "/admin/iwis")
		return
	}

	vm := detailVM{
		BaseVM: viewdata.NewBaseVM(r, iwi.Name, "/admin/iwis"),
		Iwi:    iwi,
		Hapus:  hapus,
	}
	templates.Render(w, r, "iwi_detail", vm)
}
