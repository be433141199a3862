// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/temanawa/iwihub/internal/app/system/auth"
	"go.uber.org/zap"
)

// Handler clears the session.
type Handler struct {
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		SessionMgr: sessionMgr,
		Log:        logger,
	}
}

// HandleLogout signs the user out and returns to the landing page.
// POST /logout
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("sign-out failed", zap.Error(err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
