// internal/app/features/consultations/moderate.go
package consultations

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"github.com/temanawa/iwihub/internal/app/policy/consultationpolicy"
	commentstore "github.com/temanawa/iwihub/internal/app/store/comments"
	proposalstore "github.com/temanawa/iwihub/internal/app/store/proposals"
	"github.com/temanawa/iwihub/internal/app/system/authz"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandlePublish makes a draft visible. Publication also triggers the
// member notification emails the draft skipped.
// POST /consultations/{proposalID}/publish
func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	if !authz.IsStaff(r) {
		uierrors.RenderForbidden(w, r, "Only administrators can publish drafts.", "/consultations")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, ok := h.loadProposal(ctx, w, r)
	if !ok {
		return
	}
	if !p.IsDraft {
		http.Redirect(w, r, "/consultations/"+p.ID.Hex(), http.StatusSeeOther)
		return
	}

	if err := proposalstore.New(h.DB).Publish(ctx, p.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "failed to publish consultation", err, "Failed to publish the draft.", "/consultations")
		return
	}

	h.Log.Info("consultation published", zap.String("proposal_id", p.ID.Hex()))
	h.notifyMembers(ctx, p)

	http.Redirect(w, r, "/consultations/"+p.ID.Hex()+"?success=published", http.StatusSeeOther)
}

// HandleModerate approves, unapproves, or removes a comment.
// POST /consultations/{proposalID}/comments/{commentID}/moderate  (action=approve|unapprove|delete)
func (h *Handler) HandleModerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/consultations")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, ok := h.loadProposal(ctx, w, r)
	if !ok {
		return
	}
	if d := consultationpolicy.CanModerate(r, p); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/consultations/"+p.ID.Hex())
		return
	}

	commentID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "commentID"))
	if err != nil {
		uierrors.RenderError(w, r, "That comment does not exist.", "/consultations/"+p.ID.Hex())
		return
	}

	comments := commentstore.New(h.DB)
	action := r.FormValue("action")
	switch action {
	case "approve":
		_, err = comments.SetApproved(ctx, commentID, true)
	case "unapprove":
		_, err = comments.SetApproved(ctx, commentID, false)
	case "delete":
		_, err = comments.Delete(ctx, commentID)
	default:
		uierrors.RenderError(w, r, "Unknown moderation action.", "/consultations/"+p.ID.Hex())
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to moderate comment", err, "Failed to update the comment.", "/consultations/"+p.ID.Hex())
		return
	}

	h.Log.Info("comment moderated",
		zap.String("proposal_id", p.ID.Hex()),
		zap.String("comment_id", commentID.Hex()),
		zap.String("action", action))
	http.Redirect(w, r, "/consultations/"+p.ID.Hex()+"?success=updated", http.StatusSeeOther)
}
