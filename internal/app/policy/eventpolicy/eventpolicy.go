// internal/app/policy/eventpolicy/eventpolicy.go
package eventpolicy

import (
	"net/http"

	"github.com/temanawa/iwihub/internal/app/system/authz"
	"github.com/temanawa/iwihub/internal/domain/models"
)

// CanView decides whether the current user may see an event.
func CanView(r *http.Request, e models.Event) authz.Decision {
	if authz.IsStaff(r) {
		return authz.Allow()
	}

	switch e.Visibility {
	case models.EventPublic:
		return authz.Allow()
	case models.EventIwi:
		if e.IwiID != nil && (authz.UserIwiID(r) == *e.IwiID || authz.LeadsIwi(r, *e.IwiID)) {
			return authz.Allow()
		}
	case models.EventHapu:
		if e.HapuID != nil && (authz.UserHapuID(r) == *e.HapuID || authz.LeadsHapu(r, *e.HapuID)) {
			return authz.Allow()
		}
		// Leading the parent iwi covers its hapū events.
		if e.IwiID != nil && authz.LeadsIwi(r, *e.IwiID) {
			return authz.Allow()
		}
	}
	return authz.Deny("This event is not open to you.")
}

// CanCreate decides whether the current user may create events.
func CanCreate(r *http.Request) authz.Decision {
	if authz.IsStaff(r) || authz.IsLeader(r) {
		return authz.Allow()
	}
	return authz.Deny("Only leaders can create events.")
}

// CanViewAttendees decides whether the current user may see who has
// joined an event.
func CanViewAttendees(r *http.Request, e models.Event) authz.Decision {
	if authz.IsStaff(r) || authz.IsLeader(r) {
		return authz.Allow()
	}
	_, userID, ok := authz.UserCtx(r)
	if ok && e.CreatedByID == userID {
		return authz.Allow()
	}
	return authz.Deny("Only leaders and the organiser can view attendees.")
}
