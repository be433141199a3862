// internal/app/policy/consultationpolicy/consultationpolicy.go
package consultationpolicy

import (
	"net/http"
	"time"

	"github.com/temanawa/iwihub/internal/app/system/authz"
	"github.com/temanawa/iwihub/internal/domain/models"
)

// CanView decides whether the current user may see a consultation.
// Drafts are staff-only; scoped consultations require matching
// affiliation or leadership of the target unit.
func CanView(r *http.Request, p models.Proposal) authz.Decision {
	if authz.IsStaff(r) {
		return authz.Allow()
	}
	if p.IsDraft {
		return authz.Deny("This consultation is not available.")
	}

	switch p.Type {
	case models.ConsultationPublic:
		return authz.Allow()
	case models.ConsultationIwi:
		if p.IwiID != nil && (authz.UserIwiID(r) == *p.IwiID || authz.LeadsIwi(r, *p.IwiID)) {
			return authz.Allow()
		}
	case models.ConsultationHapu:
		if p.HapuID != nil && (authz.UserHapuID(r) == *p.HapuID || authz.LeadsHapu(r, *p.HapuID)) {
			return authz.Allow()
		}
		// Leading the parent iwi covers its hapū consultations.
		if p.IwiID != nil && authz.LeadsIwi(r, *p.IwiID) {
			return authz.Allow()
		}
	}
	return authz.Deny("This consultation is not open to you.")
}

// CanCreate decides whether the current user may open new consultations.
func CanCreate(r *http.Request) authz.Decision {
	if authz.IsStaff(r) || authz.IsLeader(r) {
		return authz.Allow()
	}
	return authz.Deny("Only leaders can create consultations.")
}

// AllowedTypes returns the consultation types the current user may
// create. Staff may use every type; iwi leaders reach down into their
// hapū; hapū-only leaders stay within hapū scope.
func AllowedTypes(r *http.Request) []string {
	if authz.IsStaff(r) {
		return []string{models.ConsultationPublic, models.ConsultationIwi, models.ConsultationHapu}
	}
	if len(authz.LeaderIwiIDs(r)) > 0 {
		return []string{models.ConsultationIwi, models.ConsultationHapu}
	}
	if len(authz.LeaderHapuIDs(r)) > 0 {
		return []string{models.ConsultationHapu}
	}
	return nil
}

// CanVote decides whether the current user may cast a vote right now.
// The one-vote-per-user rule is not checked here; the votes collection
// enforces it with a unique index.
func CanVote(r *http.Request, p models.Proposal, now time.Time) authz.Decision {
	if d := CanView(r, p); !d.Allowed {
		return d
	}
	switch p.State(now) {
	case models.ProposalDraft, models.ProposalScheduled:
		return authz.Deny("Voting has not started yet.")
	case models.ProposalClosed:
		return authz.Deny("This consultation has ended; voting is closed.")
	}
	return authz.Allow()
}

// CanModerate decides whether the current user may approve or remove
// comments on a consultation.
func CanModerate(r *http.Request, p models.Proposal) authz.Decision {
	if authz.IsStaff(r) {
		return authz.Allow()
	}
	if p.IwiID != nil && authz.LeadsIwi(r, *p.IwiID) {
		return authz.Allow()
	}
	if p.HapuID != nil && authz.LeadsHapu(r, *p.HapuID) {
		return authz.Allow()
	}
	// Public consultations are moderated by any leader.
	if p.Type == models.ConsultationPublic && authz.IsLeader(r) {
		return authz.Allow()
	}
	return authz.Deny("Only leaders can moderate comments.")
}
