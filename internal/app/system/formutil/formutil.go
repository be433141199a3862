// Package formutil provides helpers for form re-rendering with validation errors.
//
// When a form submission fails validation, the form should be re-rendered with
// the user's previously entered values echoed back, an error message, and all
// the context data needed for the form (dropdowns, etc.).
//
// Example usage:
//
//	type newNoticeData struct {
//		formutil.Base
//		Title    string
//		Content  string
//	}
//
//	// In your handler:
//	data := newNoticeData{Title: title, Content: content}
//	formutil.SetBase(&data.Base, r, "New Notice", "/notices")
//	data.SetError("Title must be between 5 and 200 characters.")
//	templates.Render(w, r, "notice_new", data)
package formutil

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
	"github.com/temanawa/iwihub/internal/app/system/auth"
)

// Base contains common fields for form pages that can be embedded in form data structs.
type Base struct {
	Title       string
	IsLoggedIn  bool
	IsStaff     bool
	IsLeader    bool
	UserName    string
	BackURL     string
	CurrentPath string
	CSRFToken   string
	Error       template.HTML
}

// SetBase populates the common Base fields from the request context.
func SetBase(b *Base, r *http.Request, title, backDefault string) {
	b.Title = title
	b.BackURL = httpnav.ResolveBackURL(r, backDefault)
	b.CurrentPath = httpnav.CurrentPath(r)
	b.CSRFToken = csrf.Token(r)

	if u, ok := auth.CurrentUser(r); ok {
		b.IsLoggedIn = true
		b.IsStaff = u.IsStaff
		b.IsLeader = u.IsLeader()
		b.UserName = u.Name
	}
}

// SetError sets the error message on a Base struct.
func (b *Base) SetError(msg string) {
	b.Error = template.HTML(msg)
}
