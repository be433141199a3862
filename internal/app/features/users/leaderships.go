// internal/app/features/users/leaderships.go
package users

import (
	"context"
	"net/http"

	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"github.com/temanawa/iwihub/internal/app/policy/userpolicy"
	hapustore "github.com/temanawa/iwihub/internal/app/store/hapus"
	iwistore "github.com/temanawa/iwihub/internal/app/store/iwis"
	leadershipstore "github.com/temanawa/iwihub/internal/app/store/leaderships"
	"github.com/temanawa/iwihub/internal/app/system/authz"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleIwiLeadership grants or revokes iwi leadership for a member.
// Only verified members can hold leaderships.
// POST /admin/users/{userID}/leaderships/iwi  (action=add|remove, iwi_id=...)
func (h *Handler) HandleIwiLeadership(w http.ResponseWriter, r *http.Request) {
	_, actorID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/admin/users")
		return
	}
	if d := userpolicy.CanAssignLeaders(r); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/admin/users")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/admin/users")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	member, loaded := h.loadMember(ctx, w, r)
	if !loaded {
		return
	}

	iwiID, err := primitive.ObjectIDFromHex(r.FormValue("iwi_id"))
	if err != nil {
		uierrors.RenderError(w, r, "Please choose an iwi.", "/admin/users/"+member.ID.Hex())
		return
	}
	iwi, err := iwistore.New(h.DB).GetByID(ctx, iwiID)
	if err != nil {
		uierrors.RenderError(w, r, "That iwi does not exist.", "/admin/users/"+member.ID.Hex())
		return
	}

	leads := leadershipstore.New(h.DB)
	switch r.FormValue("action") {
	case "remove":
		if _, err := leads.RemoveIwiLeader(ctx, iwi.ID, member.ID); err != nil {
			h.ErrLog.LogServerError(w, r, "failed to remove leadership", err, "Failed to update leaderships.", "/admin/users")
			return
		}
		h.Log.Info("iwi leadership revoked",
			zap.String("user_id", member.ID.Hex()),
			zap.String("iwi_id", iwi.ID.Hex()),
			zap.String("by", actorID.Hex()))
	default:
		if !member.IsVerified() {
			uierrors.RenderError(w, r, "Only verified members can hold leaderships.", "/admin/users/"+member.ID.Hex())
			return
		}
		if iwi.IsArchived {
			uierrors.RenderError(w, r, "Leaderships cannot be granted on an archived iwi.", "/admin/users/"+member.ID.Hex())
			return
		}
		_, err := leads.AssignIwiLeader(ctx, iwi.ID, member.ID, actorID)
		if err != nil && err != leadershipstore.ErrAlreadyLeader {
			h.ErrLog.LogServerError(w, r, "failed to assign leadership", err, "Failed to update leaderships.", "/admin/users")
			return
		}
		h.Log.Info("iwi leadership granted",
			zap.String("user_id", member.ID.Hex()),
			zap.String("iwi_id", iwi.ID.Hex()),
			zap.String("by", actorID.Hex()))
	}

	http.Redirect(w, r, "/admin/users/"+member.ID.Hex()+"?success=updated", http.StatusSeeOther)
}

// HandleHapuLeadership grants or revokes hapū leadership for a member.
// POST /admin/users/{userID}/leaderships/hapu  (action=add|remove, hapu_id=...)
func (h *Handler) HandleHapuLeadership(w http.ResponseWriter, r *http.Request) {
	_, actorID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/admin/users")
		return
	}
	if d := userpolicy.CanAssignLeaders(r); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/admin/users")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/admin/users")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	member, loaded := h.loadMember(ctx, w, r)
	if !loaded {
		return
	}

	hapuID, err := primitive.ObjectIDFromHex(r.FormValue("hapu_id"))
	if err != nil {
		uierrors.RenderError(w, r, "Please choose a hapū.", "/admin/users/"+member.ID.Hex())
		return
	}
	hapu, err := hapustore.New(h.DB).GetByID(ctx, hapuID)
	if err != nil {
		uierrors.RenderError(w, r, "That hapū does not exist.", "/admin/users/"+member.ID.Hex())
		return
	}

	leads := leadershipstore.New(h.DB)
	switch r.FormValue("action") {
	case "remove":
		if _, err := leads.RemoveHapuLeader(ctx, hapu.ID, member.ID); err != nil {
			h.ErrLog.LogServerError(w, r, "failed to remove leadership", err, "Failed to update leaderships.", "/admin/users")
			return
		}
		h.Log.Info("hapu leadership revoked",
			zap.String("user_id", member.ID.Hex()),
			zap.String("hapu_id", hapu.ID.Hex()),
			zap.String("by", actorID.Hex()))
	default:
		if !member.IsVerified() {
			uierrors.RenderError(w, r, "Only verified members can hold leaderships.", "/admin/users/"+member.ID.Hex())
			return
		}
		if hapu.IsArchived {
			uierrors.RenderError(w, r, "Leaderships cannot be granted on an archived hapū.", "/admin/users/"+member.ID.Hex())
			return
		}
		_, err := leads.AssignHapuLeader(ctx, hapu.ID, member.ID, actorID)
		if err != nil && err != leadershipstore.ErrAlreadyLeader {
			h.ErrLog.LogServerError(w, r, "failed to assign leadership", err, "Failed to update leaderships.", "/admin/users")
			return
		}
		h.Log.Info("hapu leadership granted",
			zap.String("user_id", member.ID.Hex()),
			zap.String("hapu_id", hapu.ID.Hex()),
			zap.String("by", actorID.Hex()))
	}

	http.Redirect(w, r, "/admin/users/"+member.ID.Hex()+"?success=updated", http.StatusSeeOther)
}
