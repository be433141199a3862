// internal/app/features/users/verify.go
package users

import (
	"context"
	"net/http"

	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"github.com/temanawa/iwihub/internal/app/policy/userpolicy"
	userstore "github.com/temanawa/iwihub/internal/app/store/users"
	"github.com/temanawa/iwihub/internal/app/system/authz"
	"github.com/temanawa/iwihub/internal/app/system/mailer"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"github.com/temanawa/iwihub/internal/app/system/viewdata"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.uber.org/zap"
)

// HandleVerify approves a pending registration.
// POST /admin/users/{userID}/verify
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, models.StateVerified, "verified")
}

// HandleReject declines a registration. The record is kept; rejected
// members cannot sign in.
// POST /admin/users/{userID}/reject
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, models.StateRejected, "rejected")
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, state, flash string) {
	_, actorID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/admin/users")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	member, loaded := h.loadMember(ctx, w, r)
	if !loaded {
		return
	}
	if d := userpolicy.CanVerify(r, member); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/admin/users")
		return
	}

	if err := userstore.New(h.DB).SetState(ctx, member.ID, state); err != nil {
		h.ErrLog.LogServerError(w, r, "failed to set member state", err, "Failed to update this member.", "/admin/users")
		return
	}

	// The decision email is fire-and-forget; a mail outage must not
	// block verification.
	msg := mailer.BuildVerificationResultEmail(mailer.VerificationResultEmailData{
		SiteName: viewdata.SiteName,
		FullName: member.FullName,
		Verified: state == models.StateVerified,
		LoginURL: h.BaseURL + "/login",
	})
	msg.To = member.Email
	h.Mail.SendAsync(msg)

	h.Log.Info("member state changed",
		zap.String("user_id", member.ID.Hex()),
		zap.String("state", state),
		zap.String("decided_by", actorID.Hex()))
	http.Redirect(w, r, "/admin/users/"+member.ID.Hex()+"?success="+flash, http.StatusSeeOther)
}
