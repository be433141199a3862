// internal/app/policy/userpolicy/userpolicy.go
package userpolicy

import (
	"net/http"

	"github.com/temanawa/iwihub/internal/app/system/authz"
	"github.com/temanawa/iwihub/internal/domain/models"
)

// CanVerify decides whether the current user may verify or reject the
// target user's registration. Staff verify anyone; hapū leaders verify
// members of their own hapū.
func CanVerify(r *http.Request, target models.User) authz.Decision {
	if authz.IsStaff(r) {
		return authz.Allow()
	}
	if target.HapuID != nil && authz.LeadsHapu(r, *target.HapuID) {
		return authz.Allow()
	}
	return authz.Deny("You cannot verify this member.")
}

// CanViewDocument decides whether the current user may open the target
// user's citizenship document. Mirrors CanVerify: whoever verifies
// needs to see the document.
func CanViewDocument(r *http.Request, target models.User) authz.Decision {
	return CanVerify(r, target)
}

// CanListUsers decides whether the current user may browse the member
// admin list. Hapū leaders get a list scoped to their hapū.
func CanListUsers(r *http.Request) authz.Decision {
	if authz.IsStaff(r) || len(authz.LeaderHapuIDs(r)) > 0 {
		return authz.Allow()
	}
	return authz.Deny("You do not have access to member administration.")
}

// CanAssignLeaders decides whether the current user may grant or
// revoke leaderships. Staff only.
func CanAssignLeaders(r *http.Request) authz.Decision {
	if authz.IsStaff(r) {
		return authz.Allow()
	}
	return authz.Deny("Only administrators can assign leaderships.")
}
