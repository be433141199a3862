// internal/app/features/passwordreset/reset.go
package passwordreset

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	resettokenstore "github.com/temanawa/iwihub/internal/app/store/resettokens"
	userstore "github.com/temanawa/iwihub/internal/app/store/users"
	"github.com/temanawa/iwihub/internal/app/system/authutil"
	"github.com/temanawa/iwihub/internal/app/system/formutil"
	"github.com/temanawa/iwihub/internal/app/system/mailer"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"github.com/temanawa/iwihub/internal/app/system/viewdata"
	"go.uber.org/zap"
)

type requestVM struct {
	formutil.Base

	Email string
	Flash string
}

type confirmVM struct {
	formutil.Base

	Token string
}

// ServeRequestForm renders the "enter your email" form.
// GET /password-reset
func (h *Handler) ServeRequestForm(w http.ResponseWriter, r *http.Request) {
	vm := requestVM{}
	if query.Get(r, "success") == "sent" {
		vm.Flash = "If that email belongs to a verified account, a reset link is on its way."
	}
	formutil.SetBase(&vm.Base, r, "Reset password", "/login")
	templates.Render(w, r, "reset_request", vm)
}

// HandleRequest issues a reset token and emails the link. The response
// is the same whether or not the address matches an account.
// POST /password-reset
func (h *Handler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/password-reset")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	if email == "" {
		vm := requestVM{}
		formutil.SetBase(&vm.Base, r, "Reset password", "/login")
		vm.SetError("Please enter your email address.")
		templates.Render(w, r, "reset_request", vm)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := userstore.New(h.DB).GetByEmail(ctx, email)
	if err == nil && user.IsVerified() {
		tokens := resettokenstore.New(h.DB, h.TokenExpiry)
		tok, err := tokens.Create(ctx, user.ID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "failed to create reset token", err, "Something went wrong. Please try again.", "/password-reset")
			return
		}

		msg := mailer.BuildPasswordResetEmail(mailer.PasswordResetEmailData{
			SiteName:  viewdata.SiteName,
			FullName:  user.FullName,
			ResetLink: fmt.Sprintf("%s/password-reset/confirm?token=%s", h.BaseURL, tok.Token),
			ExpiresIn: formatExpiry(h.TokenExpiry),
		})
		msg.To = user.Email
		h.Mail.SendAsync(msg)

		h.Log.Info("password reset requested", zap.String("user_id", user.ID.Hex()))
	}

	// Unknown or unverified addresses fall through to the same redirect.
	http.Redirect(w, r, "/password-reset?success=sent", http.StatusSeeOther)
}

// ServeConfirmForm renders the new-password form. Token validity is
// checked at submit time, when the token is consumed.
// GET /password-reset/confirm?token=...
func (h *Handler) ServeConfirmForm(w http.ResponseWriter, r *http.Request) {
	token := query.Get(r, "token")
	if token == "" {
		http.Redirect(w, r, "/password-reset", http.StatusSeeOther)
		return
	}

	vm := confirmVM{Token: token}
	formutil.SetBase(&vm.Base, r, "Choose a new password", "/login")
	templates.Render(w, r, "reset_confirm", vm)
}

// HandleConfirm consumes the token and stores the new password.
// POST /password-reset/confirm
func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form submission.", "/password-reset")
		return
	}

	token := r.FormValue("token")
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	renderWithError := func(msg string) {
		vm := confirmVM{Token: token}
		formutil.SetBase(&vm.Base, r, "Choose a new password", "/login")
		vm.SetError(msg)
		templates.Render(w, r, "reset_confirm", vm)
	}

	if len(password) < 8 {
		renderWithError("The password must be at least 8 characters long.")
		return
	}
	if password != confirm {
		renderWithError("Passwords do not match.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	userID, err := resettokenstore.New(h.DB, h.TokenExpiry).Consume(ctx, token)
	if err == resettokenstore.ErrInvalidToken {
		renderWithError("This reset link is invalid or has expired. Please request a new one.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to consume reset token", err, "Something went wrong. Please try again.", "/password-reset")
		return
	}

	hash, err := authutil.HashPassword(password)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "failed to hash password", err, "Something went wrong. Please try again.", "/password-reset")
		return
	}
	if err := userstore.New(h.DB).SetPasswordHash(ctx, userID, hash); err != nil {
		h.ErrLog.LogServerError(w, r, "failed to update password", err, "Something went wrong. Please try again.", "/password-reset")
		return
	}

	h.Log.Info("password reset completed", zap.String("user_id", userID.Hex()))
	http.Redirect(w, r, "/login?success=password", http.StatusSeeOther)
}

func formatExpiry(d time.Duration) string {
	if h := int(d.Hours()); h >= 1 {
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	}
	return fmt.Sprintf("%d minutes", int(d.Minutes()))
}
