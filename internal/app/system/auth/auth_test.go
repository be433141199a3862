package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestNewSessionManager_EmptyKey(t *testing.T) {
	_, err := NewSessionManager("", "iwihub-session", "", false, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for empty session key")
	}
}

func TestCurrentUser_NotSet(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	if _, ok := CurrentUser(r); ok {
		t.Error("expected no user in fresh request context")
	}
}

func TestWithTestUser(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	u := &SessionUser{ID: "507f1f77bcf86cd799439011", Name: "Mere", IsStaff: true}
	r = WithTestUser(r, u)

	got, ok := CurrentUser(r)
	if !ok {
		t.Fatal("expected user in context")
	}
	if got.Name != "Mere" || !got.IsStaff {
		t.Errorf("unexpected user: %+v", got)
	}
}

func TestRequireSignedIn_Anonymous(t *testing.T) {
	sm, err := NewSessionManager("0123456789abcdef0123456789abcdef", "iwihub-session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}

	called := false
	h := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	// API caller (no Accept: text/html) gets a plain 401.
	r := httptest.NewRequest("GET", "/dashboard", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if called {
		t.Error("next handler should not run for anonymous request")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestRequireSignedIn_HTMLRedirect(t *testing.T) {
	sm, _ := NewSessionManager("0123456789abcdef0123456789abcdef", "iwihub-session", "", false, zap.NewNop())

	h := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	r := httptest.NewRequest("GET", "/consultations?scope=iwi", nil)
	r.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if loc != "/login?return=%2Fconsultations%3Fscope%3Diwi" {
		t.Errorf("unexpected redirect location %q", loc)
	}
}

func TestRequireSignedIn_HTMX(t *testing.T) {
	sm, _ := NewSessionManager("0123456789abcdef0123456789abcdef", "iwihub-session", "", false, zap.NewNop())

	h := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	r := httptest.NewRequest("GET", "/notices", nil)
	r.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if rec.Header().Get("HX-Redirect") == "" {
		t.Error("expected HX-Redirect header for HTMX request")
	}
}

func TestRequireStaff(t *testing.T) {
	sm, _ := NewSessionManager("0123456789abcdef0123456789abcdef", "iwihub-session", "", false, zap.NewNop())

	called := false
	h := sm.RequireStaff(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	// Ordinary member gets a 403 via the forbidden page redirect.
	r := httptest.NewRequest("GET", "/admin/users", nil)
	r.Header.Set("Accept", "text/html")
	r = WithTestUser(r, &SessionUser{ID: "507f1f77bcf86cd799439011", Name: "Hine"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if called {
		t.Error("next handler should not run for non-staff user")
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/forbidden" {
		t.Errorf("expected redirect to /forbidden, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	// Staff passes through.
	r = httptest.NewRequest("GET", "/admin/users", nil)
	r = WithTestUser(r, &SessionUser{ID: "507f1f77bcf86cd799439011", Name: "Rangi", IsStaff: true})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if !called {
		t.Error("next handler should run for staff user")
	}
}

func TestSessionUser_Leads(t *testing.T) {
	u := &SessionUser{
		LeaderIwiIDs:  []string{"507f1f77bcf86cd799439011"},
		LeaderHapuIDs: []string{"507f1f77bcf86cd799439012"},
	}

	if !u.LeadsIwi("507f1f77bcf86cd799439011") {
		t.Error("expected LeadsIwi true for assigned iwi")
	}
	if u.LeadsIwi("507f1f77bcf86cd799439012") {
		t.Error("expected LeadsIwi false for other ID")
	}
	if !u.LeadsHapu("507f1f77bcf86cd799439012") {
		t.Error("expected LeadsHapu true for assigned hapū")
	}
	if !u.IsLeader() {
		t.Error("expected IsLeader true")
	}
	if (&SessionUser{}).IsLeader() {
		t.Error("expected IsLeader false with no grants")
	}
}
