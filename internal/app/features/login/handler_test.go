package login_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"github.com/temanawa/iwihub/internal/app/features/login"
	loginstore "github.com/temanawa/iwihub/internal/app/store/logins"
	userstore "github.com/temanawa/iwihub/internal/app/store/users"
	"github.com/temanawa/iwihub/internal/app/system/auth"
	"github.com/temanawa/iwihub/internal/app/system/authutil"
	"github.com/temanawa/iwihub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*login.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)
	sessionMgr, err := auth.NewSessionManager("test-session-key-0123456789ABCDEF", "iwihub-test", "", false, logger)
	if err != nil {
		t.Fatalf("session manager init failed: %v", err)
	}
	return login.NewHandler(db, sessionMgr, errLog, logger), db
}

func loginPost(t *testing.T, email, password string) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()
	form := url.Values{"email": {email}, "password": {password}}
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return httptest.NewRecorder(), req
}

func TestHandleSubmit_VerifiedUserSignsIn(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	iwi := fx.CreateIwi(ctx, "Ngāti Test")
	user := fx.CreateUser(ctx, "Mere Test", "mere@test.com", &iwi.ID, nil)

	hash, err := authutil.HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if err := userstore.New(db).SetPasswordHash(ctx, user.ID, hash); err != nil {
		t.Fatalf("SetPasswordHash() error: %v", err)
	}

	rec, req := loginPost(t, "mere@test.com", "correct horse battery")
	handler.HandleSubmit(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("HandleSubmit status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("redirect location = %q, want /dashboard", loc)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("no session cookie set on successful sign-in")
	}
}

func TestHandleSubmit_WrongPasswordRecordsFailure(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	user := fx.CreateUser(ctx, "Mere Test", "mere@test.com", nil, nil)

	hash, err := authutil.HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if err := userstore.New(db).SetPasswordHash(ctx, user.ID, hash); err != nil {
		t.Fatalf("SetPasswordHash() error: %v", err)
	}

	// The failure path re-renders the form, which panics without the
	// template engine booted.
	rec, req := loginPost(t, "mere@test.com", "wrong")
	func() {
		defer func() { _ = recover() }()
		handler.HandleSubmit(rec, req)
	}()
	if rec.Code == http.StatusSeeOther {
		t.Error("wrong password redirected; want rejection")
	}

	n, err := db.Collection("login_records").CountDocuments(ctx, bson.M{"success": false})
	if err != nil {
		t.Fatalf("failed to count login records: %v", err)
	}
	if n != 1 {
		t.Errorf("failed login records = %d, want 1", n)
	}
}

func TestHandleSubmit_PendingUserRefused(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	user := fx.CreatePendingUser(ctx, "Hemi Test", "hemi@test.com", nil, nil)

	hash, err := authutil.HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if err := userstore.New(db).SetPasswordHash(ctx, user.ID, hash); err != nil {
		t.Fatalf("SetPasswordHash() error: %v", err)
	}

	rec, req := loginPost(t, "hemi@test.com", "correct horse battery")
	func() {
		defer func() { _ = recover() }()
		handler.HandleSubmit(rec, req)
	}()
	if rec.Code == http.StatusSeeOther {
		t.Error("pending user redirected; want refusal")
	}
}

func TestHandleSubmit_ThrottledAfterRepeatedFailures(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	user := fx.CreateUser(ctx, "Mere Test", "mere@test.com", nil, nil)

	hash, err := authutil.HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if err := userstore.New(db).SetPasswordHash(ctx, user.ID, hash); err != nil {
		t.Fatalf("SetPasswordHash() error: %v", err)
	}

	seed := httptest.NewRequest("POST", "/login", nil)
	logins := loginstore.New(db)
	for i := 0; i < loginstore.MaxFailures; i++ {
		if err := logins.Record(ctx, seed, "mere@test.com", &user.ID, false); err != nil {
			t.Fatalf("Record() error: %v", err)
		}
	}

	// Even the correct password is refused while throttled.
	rec, req := loginPost(t, "mere@test.com", "correct horse battery")
	func() {
		defer func() { _ = recover() }()
		handler.HandleSubmit(rec, req)
	}()
	if rec.Code == http.StatusSeeOther {
		t.Error("throttled account redirected; want refusal")
	}
}
