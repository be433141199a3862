// internal/app/features/hapus/archive.go
package hapus

import (
	"context"
	"net/http"

	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"github.com/temanawa/iwihub/internal/app/policy/unitpolicy"
	hapustore "github.com/temanawa/iwihub/internal/app/store/hapus"
	"github.com/temanawa/iwihub/internal/app/system/authz"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleArchive archives a hapū, freeing its name within the iwi.
// POST /admin/hapus/{hapuID}/archive
func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/admin/hapus")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	hapu, loaded := h.loadHapu(ctx, w, r)
	if !loaded {
		return
	}
	if d := unitpolicy.CanManageHapu(r, hapu); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/admin/hapus")
		return
	}

	err := hapustore.New(h.DB).Archive(ctx, hapu.ID, userID)
	if err == hapustore.ErrAlreadyArchived {
		http.Redirect(w, r, "/admin/hapus", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to archive hapu", err, "Failed to archive the hapū.", "/admin/hapus")
		return
	}

	h.Log.Info("hapu archived", zap.String("hapu_id", hapu.ID.Hex()), zap.String("archived_by", userID.Hex()))
	http.Redirect(w, r, "/admin/hapus?success=archived", http.StatusSeeOther)
}

// HandleUnarchive restores an archived hapū under its current iwi.
// POST /admin/hapus/{hapuID}/unarchive
func (h *Handler) HandleUnarchive(w http.ResponseWriter, r *http.Request) {
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

	err := hapustore.New(h.DB).Unarchive(ctx, hapu.ID)
	if err == hapustore.ErrDuplicateHapu {
		uierrors.RenderError(w, r, "Another active hapū in this iwi now uses this name. Rename it first.", "/admin/hapus")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to unarchive hapu", err, "Failed to restore the hapū.", "/admin/hapus")
		return
	}

	h.Log.Info("hapu unarchived", zap.String("hapu_id", hapu.ID.Hex()))
	http.Redirect(w, r, "/admin/hapus?success=updated", http.StatusSeeOther)
}
