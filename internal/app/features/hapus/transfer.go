// internal/app/features/hapus/transfer.go
package hapus

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"github.com/temanawa/iwihub/internal/app/policy/unitpolicy"
	hapustore "github.com/temanawa/iwihub/internal/app/store/hapus"
	iwistore "github.com/temanawa/iwihub/internal/app/store/iwis"
	"github.com/temanawa/iwihub/internal/app/system/formutil"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type transferVM struct {
	formutil.Base

	Hapu       models.Hapu
	ParentName string
	Targets    []models.Iwi
}

// ServeTransferForm shows the destination picker. Only reachable for a
// hapū whose parent iwi is archived.
// GET /admin/hapus/{hapuID}/transfer
func (h *Handler) ServeTransferForm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	hapu, ok := h.loadHapu(ctx, w, r)
	if !ok {
		return
	}

	parent, err := iwistore.New(h.DB).GetByID(ctx, hapu.IwiID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to load parent iwi", err, "Failed to load this hapū.", "/admin/hapus")
		return
	}

	if d := unitpolicy.CanManageHapu(r, hapu); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/admin/hapus")
		return
	}
	if !parent.IsArchived {
		uierrors.RenderForbidden(w, r, "A hapū can only be transferred while its current iwi is archived.", "/admin/hapus")
		return
	}

	targets, err := iwistore.New(h.DB).ListActive(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to list iwis", err, "Failed to load this hapū.", "/admin/hapus")
		return
	}

	vm := transferVM{Hapu: hapu, ParentName: parent.Name, Targets: targets}
	formutil.SetBase(&vm.Base, r, "Transfer "+hapu.Name, "/admin/hapus")
	templates.Render(w, r, "hapu_transfer", vm)
}

// HandleTransfer moves the hapū to the chosen iwi and reactivates it.
// POST /admin/hapus/{hapuID}/transfer
func (h *Handler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/admin/hapus")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	hapu, ok := h.loadHapu(ctx, w, r)
	if !ok {
		return
	}

	targetID, err := primitive.ObjectIDFromHex(r.FormValue("target_iwi_id"))
	if err != nil {
		uierrors.RenderError(w, r, "Please choose a destination iwi.", "/admin/hapus")
		return
	}

	stores := iwistore.New(h.DB)
	parent, err := stores.GetByID(ctx, hapu.IwiID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to load parent iwi", err, "Failed to transfer the hapū.", "/admin/hapus")
		return
	}
	target, err := stores.GetByID(ctx, targetID)
	if err != nil {
		uierrors.RenderError(w, r, "That destination iwi does not exist.", "/admin/hapus")
		return
	}

	if d := unitpolicy.CanTransferHapu(r, hapu, parent, target); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/admin/hapus")
		return
	}

	err = hapustore.New(h.DB).Transfer(ctx, hapu.ID, target.ID)
	if err == hapustore.ErrDuplicateHapu {
		uierrors.RenderError(w, r, "The destination iwi already has an active hapū with this name.", "/admin/hapus")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to transfer hapu", err, "Failed to transfer the hapū.", "/admin/hapus")
		return
	}

	h.Log.Info("hapu transferred",
		zap.String("hapu_id", hapu.ID.Hex()),
		zap.String("from_iwi", parent.ID.Hex()),
		zap.String("to_iwi", target.ID.Hex()))
	http.Redirect(w, r, "/admin/hapus?success=transferred", http.StatusSeeOther)
}
