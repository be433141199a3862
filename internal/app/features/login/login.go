// internal/app/features/login/login.go
package login

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	loginstore "github.com/temanawa/iwihub/internal/app/store/logins"
	userstore "github.com/temanawa/iwihub/internal/app/store/users"
	"github.com/temanawa/iwihub/internal/app/system/authutil"
	"github.com/temanawa/iwihub/internal/app/system/formutil"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type loginVM struct {
	formutil.Base

	Email     string
	ReturnURL string
	Flash     string
}

// ServeForm renders the sign-in form.
// GET /login
func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	vm := loginVM{
		ReturnURL: urlutil.SafeReturn(query.Get(r, "return"), "", "/"),
	}
	if query.Get(r, "success") == "registered" {
		vm.Flash = "Registration received. You can sign in once your account has been verified."
	}
	if query.Get(r, "success") == "password" {
		vm.Flash = "Your password has been reset. Please sign in."
	}
	formutil.SetBase(&vm.Base, r, "Sign in", "/")
	templates.Render(w, r, "login", vm)
}

// HandleSubmit checks credentials and starts a session. Unverified
// accounts are refused, and repeated failures throttle the email.
// POST /login
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/login")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	returnURL := urlutil.SafeReturn(r.FormValue("return"), "", "/")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	renderWithError := func(msg string) {
		vm := loginVM{Email: email, ReturnURL: returnURL}
		formutil.SetBase(&vm.Base, r, "Sign in", "/")
		vm.SetError(msg)
		templates.Render(w, r, "login", vm)
	}

	if email == "" || password == "" {
		renderWithError("Email and password are required.")
		return
	}

	logins := loginstore.New(h.DB)
	throttled, err := logins.IsThrottled(ctx, email)
	if err != nil {
		h.Log.Error("login throttle check failed", zap.Error(err))
	}
	if throttled {
		renderWithError("Too many failed attempts. Please wait a few minutes and try again.")
		return
	}

	recordFailure := func(userID *primitive.ObjectID) {
		if err := logins.Record(ctx, r, email, userID, false); err != nil {
			h.Log.Warn("failed to record login attempt", zap.Error(err))
		}
	}

	user, err := userstore.New(h.DB).GetByEmail(ctx, email)
	if err != nil {
		// Same message as a wrong password so addresses can't be probed.
		recordFailure(nil)
		renderWithError("Invalid email or password.")
		return
	}

	if !authutil.CheckPassword(password, user.PasswordHash) {
		recordFailure(&user.ID)
		renderWithError("Invalid email or password.")
		return
	}

	if !user.IsVerified() {
		recordFailure(&user.ID)
		if user.State == models.StateRejected {
			renderWithError("Your registration was not approved. Please contact your hapū leadership.")
			return
		}
		renderWithError("Your account is not verified yet.")
		return
	}

	if err := logins.Record(ctx, r, email, &user.ID, true); err != nil {
		h.Log.Warn("failed to record login", zap.Error(err))
	}

	if err := h.SessionMgr.SignIn(w, r, user.ID.Hex()); err != nil {
		h.ErrLog.LogServerError(w, r, "session sign-in failed", err, "Failed to sign you in. Please try again.", "/login")
		return
	}

	h.Log.Info("user signed in", zap.String("user_id", user.ID.Hex()))

	if returnURL != "/" {
		http.Redirect(w, r, returnURL, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
