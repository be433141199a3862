// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/gorilla/csrf"
	"github.com/temanawa/iwihub/internal/app/system/auth"
)

// SiteName is the portal's display name shown in page chrome and emails.
const SiteName = "Te Puna Iwi Portal"

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, "Page Title", "/default-back"),
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	IsStaff    bool
	IsLeader   bool
	UserName   string
	UserIwi    string
	UserHapu   string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string

	// Flash carries a one-shot success message from the "success"
	// query parameter set by redirects after a successful write.
	Flash string
}

// NewBaseVM creates a fully populated BaseVM for a page.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	vm := BaseVM{
		SiteName:    SiteName,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
		Flash:       flashMessage(query.Get(r, "success")),
	}

	if u, ok := auth.CurrentUser(r); ok {
		vm.IsLoggedIn = true
		vm.IsStaff = u.IsStaff
		vm.IsLeader = u.IsLeader()
		vm.UserName = u.Name
		vm.UserIwi = u.IwiName
		vm.UserHapu = u.HapuName
	}

	return vm
}

// flashMessage maps redirect flash codes to user-facing text.
func flashMessage(code string) string {
	switch code {
	case "created":
		return "Created successfully."
	case "updated":
		return "Updated successfully."
	case "voted":
		return "Your vote has been recorded."
	case "commented":
		return "Your feedback has been submitted."
	case "published":
		return "Consultation published."
	case "joined":
		return "You have joined this event."
	case "left":
		return "You have left this event."
	case "archived":
		return "Archived successfully."
	case "transferred":
		return "Transferred successfully."
	case "verified":
		return "Member verified."
	case "rejected":
		return "Member rejected."
	case "expired":
		return "Notice expired."
	case "registered":
		return "Registration received. Your account is pending verification."
	case "":
		return ""
	default:
		return ""
	}
}
