// internal/app/features/iwis/archive.go
package iwis

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"github.com/temanawa/iwihub/internal/app/policy/unitpolicy"
	hapustore "github.com/temanawa/iwihub/internal/app/store/hapus"
	iwistore "github.com/temanawa/iwihub/internal/app/store/iwis"
	"github.com/temanawa/iwihub/internal/app/system/authz"
	"github.com/temanawa/iwihub/internal/app/system/formutil"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type archiveVM struct {
	formutil.Base

	Iwi       models.Iwi
	HapuCount int64
}

// ServeArchiveForm shows the confirmation form with the cascade warning.
// GET /admin/iwis/{iwiID}/archive
func (h *Handler) ServeArchiveForm(w http.ResponseWriter, r *http.Request) {
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
	if iwi.IsArchived {
		http.Redirect(w, r, "/admin/iwis/"+iwi.ID.Hex(), http.StatusSeeOther)
		return
	}

	count, err := hapustore.New(h.DB).Count(ctx, bson.M{"iwi_id": iwi.ID, "is_archived": false})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to count hapus", err, "Failed to load this iwi.", "/admin/iwis")
		return
	}

	vm := archiveVM{Iwi: iwi, HapuCount: count}
	formutil.SetBase(&vm.Base, r, "Archive "+iwi.Name, "/admin/iwis/"+iwi.ID.Hex())
	templates.Render(w, r, "iwi_archive", vm)
}

// HandleArchive archives the iwi and cascades to its active hapū. The
// freed name becomes available to new iwi immediately.
// POST /admin/iwis/{iwiID}/archive
func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	if d := unitpolicy.CanManageIwis(r); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/dashboard")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/admin/iwis")
		return
	}

	_, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/admin/iwis")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	iwi, loaded := h.loadIwi(ctx, w, r)
	if !loaded {
		return
	}

	reason := strings.TrimSpace(r.FormValue("reason"))

	err := iwistore.New(h.DB).Archive(ctx, iwi.ID, userID, reason)
	if err == iwistore.ErrAlreadyArchived {
		http.Redirect(w, r, "/admin/iwis/"+iwi.ID.Hex(), http.StatusSeeOther)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to archive iwi", err, "Failed to archive the iwi.", "/admin/iwis")
		return
	}

	archived, err := hapustore.New(h.DB).ArchiveByIwi(ctx, iwi.ID, userID)
	if err != nil {
		// The iwi is archived; the cascade can be retried by archiving
		// the remaining hapū individually.
		h.Log.Error("hapu cascade archive failed", zap.String("iwi_id", iwi.ID.Hex()), zap.Error(err))
	}

	h.Log.Info("iwi archived",
		zap.String("iwi_id", iwi.ID.Hex()),
		zap.Int64("hapus_archived", archived),
		zap.String("archived_by", userID.Hex()))
	http.Redirect(w, r, "/admin/iwis?success=archived", http.StatusSeeOther)
}

// HandleUnarchive restores an archived iwi. Its hapū stay archived and
// can be restored or transferred individually.
// POST /admin/iwis/{iwiID}/unarchive
func (h *Handler) HandleUnarchive(w http.ResponseWriter, r *http.Request) {
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

	err := iwistore.New(h.DB).Unarchive(ctx, iwi.ID)
	if err == iwistore.ErrDuplicateIwi {
		uierrors.RenderError(w, r, "Another active iwi now uses this name. Rename it first.", "/admin/iwis")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to unarchive iwi", err, "Failed to restore the iwi.", "/admin/iwis")
		return
	}

	h.Log.Info("iwi unarchived", zap.String("iwi_id", iwi.ID.Hex()))
	http.Redirect(w, r, "/admin/iwis/"+iwi.ID.Hex()+"?success=updated", http.StatusSeeOther)
}
