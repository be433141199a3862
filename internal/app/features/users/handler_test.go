package users_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"github.com/temanawa/iwihub/internal/app/features/users"
	userstore "github.com/temanawa/iwihub/internal/app/store/users"
	"github.com/temanawa/iwihub/internal/app/system/mailer"
	"github.com/temanawa/iwihub/internal/domain/models"
	"github.com/temanawa/iwihub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*users.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)
	mail := mailer.New("localhost", 1025, "", "", "noreply@test.local", "Test", logger)
	return users.NewHandler(db, nil, mail, errLog, logger, "http://localhost:3000"), db
}

func decisionPost(t *testing.T, memberID primitive.ObjectID, action string, user testutil.TestUser) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()
	req := httptest.NewRequest("POST", "/admin/users/"+memberID.Hex()+"/"+action, nil)
	req = testutil.WithUser(req, user)
	req = testutil.WithChiURLParam(req, "userID", memberID.Hex())
	return httptest.NewRecorder(), req
}

func TestHandleVerify_ApprovesPendingMember(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	iwi := fx.CreateIwi(ctx, "Ngāti Test")
	member := fx.CreatePendingUser(ctx, "Hemi Test", "hemi@test.com", &iwi.ID, nil)

	rec, req := decisionPost(t, member.ID, "verify", testutil.StaffUser())
	handler.HandleVerify(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("HandleVerify status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "success=verified") {
		t.Errorf("redirect location = %q, want success=verified", loc)
	}

	reloaded, err := userstore.New(db).GetByEmail(ctx, "hemi@test.com")
	if err != nil {
		t.Fatalf("GetByEmail() error: %v", err)
	}
	if reloaded.State != models.StateVerified {
		t.Errorf("member state = %q, want %q", reloaded.State, models.StateVerified)
	}
}

func TestHandleReject_KeepsRecord(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	iwi := fx.CreateIwi(ctx, "Ngāti Test")
	member := fx.CreatePendingUser(ctx, "Hemi Test", "hemi@test.com", &iwi.ID, nil)

	rec, req := decisionPost(t, member.ID, "reject", testutil.StaffUser())
	handler.HandleReject(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("HandleReject status = %d, want %d", rec.Code, http.StatusSeeOther)
	}

	reloaded, err := userstore.New(db).GetByEmail(ctx, "hemi@test.com")
	if err != nil {
		t.Fatalf("GetByEmail() error: %v", err)
	}
	if reloaded.State != models.StateRejected {
		t.Errorf("member state = %q, want %q", reloaded.State, models.StateRejected)
	}
}

func TestHandleVerify_NonStaffForbidden(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	iwi := fx.CreateIwi(ctx, "Ngāti Test")
	hapu := fx.CreateHapu(ctx, "Test Hapū", iwi.ID)
	member := fx.CreatePendingUser(ctx, "Hemi Test", "hemi@test.com", &iwi.ID, nil)

	// The refusal renders an error page, which panics without the
	// template engine booted.
	rec, req := decisionPost(t, member.ID, "verify", testutil.MemberUser(iwi.ID, hapu.ID))
	func() {
		defer func() { _ = recover() }()
		handler.HandleVerify(rec, req)
	}()
	if rec.Code == http.StatusSeeOther {
		t.Error("non-staff verify redirected; want refusal")
	}

	reloaded, err := userstore.New(db).GetByEmail(ctx, "hemi@test.com")
	if err != nil {
		t.Fatalf("GetByEmail() error: %v", err)
	}
	if reloaded.State != models.StatePending {
		t.Errorf("member state = %q, want unchanged %q", reloaded.State, models.StatePending)
	}
}
