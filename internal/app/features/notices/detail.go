// internal/app/features/notices/detail.go
package notices

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"github.com/temanawa/iwihub/internal/app/policy/noticepolicy"
	ackstore "github.com/temanawa/iwihub/internal/app/store/noticeacks"
	noticestore "github.com/temanawa/iwihub/internal/app/store/notices"
	userstore "github.com/temanawa/iwihub/internal/app/store/users"
	"github.com/temanawa/iwihub/internal/app/system/authz"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"github.com/temanawa/iwihub/internal/app/system/viewdata"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type detailVM struct {
	viewdata.BaseVM

	Notice    models.Notice
	Content   template.HTML
	IsExpired bool
	CanManage bool
}

// loadNotice resolves {noticeID} and checks the audience.
func (h *Handler) loadNotice(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Notice, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "noticeID"))
	if err != nil {
		uierrors.RenderError(w, r, "That notice does not exist.", "/notices")
		return models.Notice{}, false
	}
	n, err := noticestore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		uierrors.RenderError(w, r, "That notice does not exist.", "/notices")
		return models.Notice{}, false
	}
	if d := noticepolicy.CanView(r, n); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/notices")
		return models.Notice{}, false
	}
	return n, true
}

// ServeDetail shows one notice and records that the member has seen
// it. The first view acknowledges; repeats are absorbed by the unique
// index.
// GET /notices/{noticeID}
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, ok := h.loadNotice(ctx, w, r)
	if !ok {
		return
	}

	if _, userID, signedIn := authz.UserCtx(r); signedIn {
		if err := ackstore.New(h.DB).Acknowledge(ctx, n.ID, userID); err != nil {
			// A failed acknowledgment must not hide the notice.
			h.Log.Warn("failed to record acknowledgment",
				zap.String("notice_id", n.ID.Hex()), zap.Error(err))
		}
	}

	vm := detailVM{
		BaseVM:    viewdata.NewBaseVM(r, n.Title, "/notices"),
		Notice:    n,
		Content:   template.HTML(n.Content), // sanitized at write time
		IsExpired: !n.IsActive(time.Now().UTC()),
		CanManage: noticepolicy.CanManage(r, n).Allowed,
	}
	templates.Render(w, r, "notice_detail", vm)
}

// HandleExpire retires a notice immediately by moving its expiry to now.
// POST /notices/{noticeID}/expire
func (h *Handler) HandleExpire(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, ok := h.loadNotice(ctx, w, r)
	if !ok {
		return
	}
	if d := noticepolicy.CanManage(r, n); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/notices")
		return
	}

	if err := noticestore.New(h.DB).Expire(ctx, n.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "failed to expire notice", err, "Failed to expire the notice.", "/notices")
		return
	}

	h.Log.Info("notice expired", zap.String("notice_id", n.ID.Hex()))
	http.Redirect(w, r, "/notices?success=expired", http.StatusSeeOther)
}

// HandleDelete removes a notice. Its acknowledgments stay behind as an
// audit trail.
// POST /notices/{noticeID}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, ok := h.loadNotice(ctx, w, r)
	if !ok {
		return
	}
	if d := noticepolicy.CanManage(r, n); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/notices")
		return
	}

	if _, err := noticestore.New(h.DB).Delete(ctx, n.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "failed to delete notice", err, "Failed to delete the notice.", "/notices")
		return
	}

	if n.AttachmentPath != "" {
		if err := h.Storage.Delete(ctx, n.AttachmentPath); err != nil {
			h.Log.Warn("failed to delete notice attachment",
				zap.String("path", n.AttachmentPath), zap.Error(err))
		}
	}

	h.Log.Info("notice deleted", zap.String("notice_id", n.ID.Hex()))
	http.Redirect(w, r, "/notices?success=updated", http.StatusSeeOther)
}

type engagementRow struct {
	Name           string
	AcknowledgedAt time.Time
}

type engagementVM struct {
	viewdata.BaseVM

	Notice models.Notice
	Rows   []engagementRow
	Count  int64
}

// ServeEngagement lists who has acknowledged the notice.
// GET /notices/{noticeID}/engagement
func (h *Handler) ServeEngagement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, ok := h.loadNotice(ctx, w, r)
	if !ok {
		return
	}
	if d := noticepolicy.CanManage(r, n); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/notices")
		return
	}

	acks, err := ackstore.New(h.DB).ListForNotice(ctx, n.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to list acknowledgments", err, "Failed to load engagement.", "/notices")
		return
	}

	var userIDs []primitive.ObjectID
	for _, a := range acks {
		userIDs = append(userIDs, a.UserID)
	}
	members, err := userstore.New(h.DB).GetByIDs(ctx, userIDs)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to load members", err, "Failed to load engagement.", "/notices")
		return
	}
	names := make(map[primitive.ObjectID]string, len(members))
	for _, m := range members {
		names[m.ID] = m.FullName
	}

	vm := engagementVM{
		BaseVM: viewdata.NewBaseVM(r, n.Title+" - engagement", "/notices/"+n.ID.Hex()),
		Notice: n,
		Count:  int64(len(acks)),
	}
	for _, a := range acks {
		vm.Rows = append(vm.Rows, engagementRow{
			Name:           names[a.UserID],
			AcknowledgedAt: a.AcknowledgedAt,
		})
	}

	templates.Render(w, r, "notice_engagement", vm)
}
