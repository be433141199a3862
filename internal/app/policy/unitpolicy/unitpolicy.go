// internal/app/policy/unitpolicy/unitpolicy.go
package unitpolicy

import (
	"net/http"

	"github.com/temanawa/iwihub/internal/app/system/authz"
	"github.com/temanawa/iwihub/internal/domain/models"
)

// CanManageIwis decides whether the current user may create, edit, or
// archive iwi records. Staff only.
func CanManageIwis(r *http.Request) authz.Decision {
	if authz.IsStaff(r) {
		return authz.Allow()
	}
	return authz.Deny("Only administrators can manage iwi records.")
}

// CanManageHapu decides whether the current user may edit or archive a
// hapū: staff, or a leader of the hapū's parent iwi.
func CanManageHapu(r *http.Request, hapu models.Hapu) authz.Decision {
	if authz.IsStaff(r) || authz.LeadsIwi(r, hapu.IwiID) {
		return authz.Allow()
	}
	return authz.Deny("You do not lead this hapū's iwi.")
}

// CanCreateHapu decides whether the current user may create hapū at
// all: staff, or a leader of at least one iwi.
func CanCreateHapu(r *http.Request) authz.Decision {
	if authz.IsStaff(r) || len(authz.LeaderIwiIDs(r)) > 0 {
		return authz.Allow()
	}
	return authz.Deny("Only iwi leaders can create hapū.")
}

// CanTransferHapu decides whether the hapū may be moved to the target
// iwi. A transfer is only valid while the current parent is archived,
// and only to a different, active iwi.
func CanTransferHapu(r *http.Request, hapu models.Hapu, parent, target models.Iwi) authz.Decision {
	if d := CanManageHapu(r, hapu); !d.Allowed {
		return d
	}
	if !parent.IsArchived {
		return authz.Deny("A hapū can only be transferred while its current iwi is archived.")
	}
	if target.ID == hapu.IwiID {
		return authz.Deny("Choose a different iwi to transfer to.")
	}
	if target.IsArchived {
		return authz.Deny("The destination iwi must be active.")
	}
	return authz.Allow()
}
