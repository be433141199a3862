// internal/app/features/consultations/detail.go
package consultations

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"github.com/temanawa/iwihub/internal/app/policy/consultationpolicy"
	commentstore "github.com/temanawa/iwihub/internal/app/store/comments"
	proposalstore "github.com/temanawa/iwihub/internal/app/store/proposals"
	votestore "github.com/temanawa/iwihub/internal/app/store/votes"
	"github.com/temanawa/iwihub/internal/app/system/authz"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"github.com/temanawa/iwihub/internal/app/system/viewdata"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type detailVM struct {
	viewdata.BaseVM

	Proposal    models.Proposal
	State       string
	HasVoted    bool
	CanVote     bool
	VoteReason  string
	CanModerate bool
	Comments    []models.Comment
	IsDraft     bool
}

// loadProposal resolves {proposalID} and checks visibility.
func (h *Handler) loadProposal(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Proposal, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "proposalID"))
	if err != nil {
		uierrors.RenderError(w, r, "That consultation does not exist.", "/consultations")
		return models.Proposal{}, false
	}
	p, err := proposalstore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		uierrors.RenderError(w, r, "That consultation does not exist.", "/consultations")
		return models.Proposal{}, false
	}
	if d := consultationpolicy.CanView(r, p); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/consultations")
		return models.Proposal{}, false
	}
	return p, true
}

// ServeDetail shows one consultation with its voting form or status.
// GET /consultations/{proposalID}
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, ok := h.loadProposal(ctx, w, r)
	if !ok {
		return
	}

	_, userID, signedIn := authz.UserCtx(r)
	now := time.Now().UTC()

	vm := detailVM{
		BaseVM:      viewdata.NewBaseVM(r, p.Title, "/consultations"),
		Proposal:    p,
		State:       p.State(now),
		CanModerate: consultationpolicy.CanModerate(r, p).Allowed,
		IsDraft:     p.IsDraft,
	}

	if signedIn {
		voted, err := votestore.New(h.DB).HasVoted(ctx, p.ID, userID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to check vote", err, "Failed to load this consultation.", "/consultations")
			return
		}
		vm.HasVoted = voted
	}

	if d := consultationpolicy.CanVote(r, p, now); d.Allowed {
		vm.CanVote = !vm.HasVoted
	} else {
		vm.VoteReason = d.Reason
	}

	if p.EnableComments {
		comments := commentstore.New(h.DB)
		var err error
		if vm.CanModerate {
			vm.Comments, err = comments.ListAll(ctx, p.ID)
		} else {
			vm.Comments, err = comments.ListApproved(ctx, p.ID)
		}
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to load comments", err, "Failed to load this consultation.", "/consultations")
			return
		}
	}

	templates.Render(w, r, "consultation_detail", vm)
}

// HandleVote casts the user's vote. Uniqueness is enforced by the
// unique (proposal, user) index at insert time; there is deliberately
// no lookup first.
// POST /consultations/{proposalID}/vote
func (h *Handler) HandleVote(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/consultations")
		return
	}

	_, userID, signedIn := authz.UserCtx(r)
	if !signedIn {
		uierrors.RenderUnauthorized(w, r, "/consultations")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, ok := h.loadProposal(ctx, w, r)
	if !ok {
		return
	}

	if d := consultationpolicy.CanVote(r, p, time.Now().UTC()); !d.Allowed {
		uierrors.RenderForbidden(w, r, d.Reason, "/consultations/"+p.ID.Hex())
		return
	}

	optionID, err := primitive.ObjectIDFromHex(r.FormValue("option_id"))
	if err != nil {
		uierrors.RenderError(w, r, "Please choose an option.", "/consultations/"+p.ID.Hex())
		return
	}
	valid := false
	for _, opt := range p.Options {
		if opt.ID == optionID {
			valid = true
			break
		}
	}
	if !valid {
		uierrors.RenderError(w, r, "That option does not belong to this consultation.", "/consultations/"+p.ID.Hex())
		return
	}

	_, err = votestore.New(h.DB).Cast(ctx, p.ID, userID, optionID)
	if err == votestore.ErrAlreadyVoted {
		uierrors.RenderError(w, r, "You have already voted in this consultation.", "/consultations/"+p.ID.Hex())
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to cast vote", err, "Failed to record your vote.", "/consultations/"+p.ID.Hex())
		return
	}

	h.Log.Info("vote cast", zap.String("proposal_id", p.ID.Hex()))
	http.Redirect(w, r, "/consultations/"+p.ID.Hex()+"?success=voted", http.StatusSeeOther)
}

// HandleComment stores member feedback. On anonymous-feedback
// consultations the author reference is dropped before the write.
// POST /consultations/{proposalID}/comments
func (h *Handler) HandleComment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/consultations")
		return
	}

	_, userID, signedIn := authz.UserCtx(r)
	if !signedIn {
		uierrors.RenderUnauthorized(w, r, "/consultations")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, ok := h.loadProposal(ctx, w, r)
	if !ok {
		return
	}
	if !p.EnableComments {
		uierrors.RenderForbidden(w, r, "Comments are not enabled on this consultation.", "/consultations/"+p.ID.Hex())
		return
	}

	text := strings.TrimSpace(r.FormValue("text"))
	if text == "" {
		uierrors.RenderError(w, r, "A comment cannot be empty.", "/consultations/"+p.ID.Hex())
		return
	}

	author := &userID
	if p.AnonymousFeedback {
		author = nil
	}

	if _, err := commentstore.New(h.DB).Create(ctx, p.ID, author, text); err != nil {
		h.ErrLog.LogServerError(w, r, "failed to store comment", err, "Failed to submit your feedback.", "/consultations/"+p.ID.Hex())
		return
	}

	http.Redirect(w, r, "/consultations/"+p.ID.Hex()+"?success=commented", http.StatusSeeOther)
}
