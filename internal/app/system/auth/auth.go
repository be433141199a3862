// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	isAuthKey = "is_authenticated"
	userIDKey = "user_id"
)

// SessionUser is what LoadSessionUser injects into r.Context() on every
// request. Only the user ID is stored in the cookie; everything else is
// fetched fresh via the UserFetcher so state changes (verification,
// leadership grants) take effect immediately.
type SessionUser struct {
	ID       string
	Name     string
	Email    string
	IsStaff  bool
	State    string
	IwiID    string
	IwiName  string
	HapuID   string
	HapuName string

	// Hex IDs of the iwi and hapū this user leads.
	LeaderIwiIDs  []string
	LeaderHapuIDs []string
}

// LeadsIwi reports whether the user holds a leadership record for the iwi.
func (u *SessionUser) LeadsIwi(iwiID string) bool {
	for _, id := range u.LeaderIwiIDs {
		if id == iwiID {
			return true
		}
	}
	return false
}

// LeadsHapu reports whether the user holds a leadership record for the hapū.
func (u *SessionUser) LeadsHapu(hapuID string) bool {
	for _, id := range u.LeaderHapuIDs {
		if id == hapuID {
			return true
		}
	}
	return false
}

// IsLeader reports whether the user leads any iwi or hapū.
func (u *SessionUser) IsLeader() bool {
	return len(u.LeaderIwiIDs) > 0 || len(u.LeaderHapuIDs) > 0
}

// UserFetcher loads fresh user data for a session's user ID.
// Implementations return nil when the user no longer exists or may not
// sign in (e.g. verification revoked).
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user injected by LoadSessionUser, if any.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser injects a user into the request context directly,
// bypassing the session middleware. For tests only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// SessionManager owns the cookie store and the auth middleware.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	log     *zap.Logger
	fetcher UserFetcher
}

// NewSessionManager builds a SessionManager with the given signing key
// and cookie settings. Secure should be true in production so cookies
// are marked Secure.
func NewSessionManager(sessionKey, cookieName, domain string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide 32+ random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: cookieName, log: logger}, nil
}

// SetUserFetcher sets the fetcher used by LoadSessionUser. Must be
// called before the handler starts serving requests.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) { sm.fetcher = f }

// SignIn records the user ID in the session cookie.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, userID string) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = userID
	return sess.Save(r, w)
}

// SignOut clears the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSessionUser injects the current user into the request context if
// the session cookie is valid and the fetcher still recognizes the user.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := sm.store.Get(r, sm.name)

		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			id, _ := sess.Values[userIDKey].(string)
			if id != "" && sm.fetcher != nil {
				if u := sm.fetcher.FetchUser(r.Context(), id); u != nil {
					r = withUser(r, u)
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// If not signed in:
//   - HTMX: sends HX-Redirect to /login?return=...
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 Unauthorized with a plain error body.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		redirectToLogin(w, r)
	})
}

// RequireStaff ensures the current user is a portal administrator.
func (sm *SessionManager) RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r)
		if !ok {
			redirectToLogin(w, r)
			return
		}
		if !u.IsStaff {
			renderForbidden(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireLeadership ensures the current user is staff or leads at least
// one iwi or hapū. Fine-grained scope checks happen in the policy layer;
// this middleware only keeps ordinary members off management pages.
func (sm *SessionManager) RequireLeadership(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r)
		if !ok {
			redirectToLogin(w, r)
			return
		}
		if !u.IsStaff && !u.IsLeader() {
			renderForbidden(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// helpers

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	ret := url.QueryEscape(r.URL.RequestURI())

	// HTMX: full-page client redirect (no partial swap)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login?return="+ret)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if wantsHTML(r) {
		http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
		return
	}

	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

func renderForbidden(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/forbidden")
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
		return
	}
	http.Error(w, "forbidden", http.StatusForbidden)
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
