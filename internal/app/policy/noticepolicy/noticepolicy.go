// internal/app/policy/noticepolicy/noticepolicy.go
package noticepolicy

import (
	"net/http"

	"github.com/temanawa/iwihub/internal/app/system/authz"
	"github.com/temanawa/iwihub/internal/domain/models"
)

// CanView decides whether the current user may read a notice.
func CanView(r *http.Request, n models.Notice) authz.Decision {
	if authz.IsStaff(r) {
		return authz.Allow()
	}

	switch n.Audience {
	case models.AudienceAll:
		return authz.Allow()
	case models.AudienceIwi:
		if n.IwiID != nil && (authz.UserIwiID(r) == *n.IwiID || authz.LeadsIwi(r, *n.IwiID)) {
			return authz.Allow()
		}
	case models.AudienceHapu:
		if n.HapuID != nil && (authz.UserHapuID(r) == *n.HapuID || authz.LeadsHapu(r, *n.HapuID)) {
			return authz.Allow()
		}
		// Leading the parent iwi covers its hapū notices.
		if n.IwiID != nil && authz.LeadsIwi(r, *n.IwiID) {
			return authz.Allow()
		}
	}
	return authz.Deny("This notice is not addressed to you.")
}

// CanPost decides whether the current user may create notices.
func CanPost(r *http.Request) authz.Decision {
	if authz.IsStaff(r) || authz.IsLeader(r) {
		return authz.Allow()
	}
	return authz.Deny("Only leaders can post notices.")
}

// CanManage decides whether the current user may edit, expire, or
// delete a specific notice, or view its engagement.
func CanManage(r *http.Request, n models.Notice) authz.Decision {
	if authz.IsStaff(r) {
		return authz.Allow()
	}
	_, userID, ok := authz.UserCtx(r)
	if ok && n.CreatedByID == userID {
		return authz.Allow()
	}
	if n.IwiID != nil && authz.LeadsIwi(r, *n.IwiID) {
		return authz.Allow()
	}
	if n.HapuID != nil && authz.LeadsHapu(r, *n.HapuID) {
		return authz.Allow()
	}
	return authz.Deny("You do not manage this notice.")
}

// AllowedAudiences returns the audiences the current user may address.
func AllowedAudiences(r *http.Request) []string {
	if authz.IsStaff(r) {
		return []string{models.AudienceAll, models.AudienceIwi, models.AudienceHapu}
	}
	if len(authz.LeaderIwiIDs(r)) > 0 {
		return []string{models.AudienceIwi, models.AudienceHapu}
	}
	if len(authz.LeaderHapuIDs(r)) > 0 {
		return []string{models.AudienceHapu}
	}
	return nil
}
