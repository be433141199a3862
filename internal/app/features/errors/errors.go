// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/temanawa/iwihub/internal/app/system/authz"
)

// pageData is the basic view model for error pages. It carries the
// header fields so the shared layout renders without a full BaseVM.
type pageData struct {
	Title      string
	IsLoggedIn bool
	IsStaff    bool
	UserName   string
	CSRFToken  string
	Flash      string
	Message    string
	BackURL    string
}

// Handler renders the standalone error pages. No DB needed.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden renders a friendly "access denied" page.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	name, _, signedIn := authz.UserCtx(r)

	data := pageData{
		Title:      "Access denied",
		IsLoggedIn: signedIn,
		UserName:   name,
		Message:    "You don't have permission to view this page.",
		BackURL:    "/",
	}

	templates.Render(w, r, "error_forbidden", data)
}

// Unauthorized renders a friendly "sign in required" page.
// GET /unauthorized
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	name, _, signedIn := authz.UserCtx(r)

	data := pageData{
		Title:      "Sign in required",
		IsLoggedIn: signedIn,
		UserName:   name,
		Message:    "Please sign in to continue.",
		BackURL:    "/login",
	}

	templates.Render(w, r, "error_forbidden", data)
}

// NotFound renders the catch-all 404 page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	name, _, signedIn := authz.UserCtx(r)

	w.WriteHeader(http.StatusNotFound)
	data := pageData{
		Title:      "Page not found",
		IsLoggedIn: signedIn,
		UserName:   name,
		Message:    "The page you are looking for does not exist.",
		BackURL:    "/",
	}

	templates.Render(w, r, "error_notfound", data)
}
