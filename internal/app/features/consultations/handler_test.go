package consultations_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/temanawa/iwihub/internal/app/features/consultations"
	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	votestore "github.com/temanawa/iwihub/internal/app/store/votes"
	"github.com/temanawa/iwihub/internal/app/system/mailer"
	"github.com/temanawa/iwihub/internal/domain/models"
	"github.com/temanawa/iwihub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*consultations.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)
	mail := mailer.New("localhost", 1025, "", "", "noreply@test.local", "Test", logger)
	return consultations.NewHandler(db, mail, errLog, logger, "http://localhost:3000"), db
}

func votePost(t *testing.T, proposalID primitive.ObjectID, optionID string, user testutil.TestUser) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()
	form := url.Values{"option_id": {optionID}}
	req := httptest.NewRequest("POST", "/consultations/"+proposalID.Hex()+"/vote", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = testutil.WithUser(req, user)
	req = testutil.WithChiURLParam(req, "proposalID", proposalID.Hex())
	return httptest.NewRecorder(), req
}

func TestHandleVote_RecordsVote(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	iwi := fx.CreateIwi(ctx, "Ngāti Test")
	hapu := fx.CreateHapu(ctx, "Test Hapū", iwi.ID)
	staff := fx.CreateStaff(ctx, "Staff", "staff@test.com")
	proposal := fx.CreateProposal(ctx, "Marae renovation", staff.ID)

	rec, req := votePost(t, proposal.ID, proposal.Options[0].ID.Hex(), testutil.MemberUser(iwi.ID, hapu.ID))
	handler.HandleVote(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("HandleVote status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "success=voted") {
		t.Errorf("redirect location = %q, want success=voted", loc)
	}

	total, err := votestore.New(db).Total(ctx, proposal.ID)
	if err != nil {
		t.Fatalf("Total() error: %v", err)
	}
	if total != 1 {
		t.Errorf("vote total = %d, want 1", total)
	}
}

func TestHandleVote_SecondVoteRejected(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	iwi := fx.CreateIwi(ctx, "Ngāti Test")
	hapu := fx.CreateHapu(ctx, "Test Hapū", iwi.ID)
	staff := fx.CreateStaff(ctx, "Staff", "staff@test.com")
	proposal := fx.CreateProposal(ctx, "Marae renovation", staff.ID)
	voter := testutil.MemberUser(iwi.ID, hapu.ID)

	rec, req := votePost(t, proposal.ID, proposal.Options[0].ID.Hex(), voter)
	handler.HandleVote(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("first vote status = %d, want %d", rec.Code, http.StatusSeeOther)
	}

	// The second attempt renders an error page, which panics without
	// the template engine booted.
	rec2, req2 := votePost(t, proposal.ID, proposal.Options[1].ID.Hex(), voter)
	func() {
		defer func() { _ = recover() }()
		handler.HandleVote(rec2, req2)
	}()
	if rec2.Code == http.StatusSeeOther {
		t.Error("second vote redirected; want rejection")
	}

	total, err := votestore.New(db).Total(ctx, proposal.ID)
	if err != nil {
		t.Fatalf("Total() error: %v", err)
	}
	if total != 1 {
		t.Errorf("vote total after duplicate = %d, want 1", total)
	}
}

// createForm builds a valid draft submission; tests mutate fields to
// exercise rejections.
func createForm(now time.Time) url.Values {
	return url.Values{
		"title":       {"Marae kitchen upgrade"},
		"description": {"Deciding how to fund the marae kitchen upgrade."},
		"type":        {models.ConsultationPublic},
		"start_at":    {now.Add(time.Hour).Format("2006-01-02T15:04")},
		"end_at":      {now.Add(3 * time.Hour).Format("2006-01-02T15:04")},
		"options":     {"Support\nOppose"},
		"is_draft":    {"on"},
	}
}

func createPost(t *testing.T, form url.Values, user testutil.TestUser) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()
	req := httptest.NewRequest("POST", "/consultations/new", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = testutil.WithUser(req, user)
	return httptest.NewRecorder(), req
}

func TestHandleCreate_HapuScopeStoresParentIwi(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	iwi := fx.CreateIwi(ctx, "Ngāti Test")
	hapu := fx.CreateHapu(ctx, "Test Hapū", iwi.ID)

	form := createForm(time.Now())
	form.Set("type", models.ConsultationHapu)
	form.Set("hapu_id", hapu.ID.Hex())

	rec, req := createPost(t, form, testutil.IwiLeaderUser(iwi.ID))
	handler.HandleCreate(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("HandleCreate status = %d, want %d", rec.Code, http.StatusSeeOther)
	}

	var p models.Proposal
	if err := db.Collection("proposals").FindOne(ctx, bson.M{"title": "Marae kitchen upgrade"}).Decode(&p); err != nil {
		t.Fatalf("stored proposal not found: %v", err)
	}
	if p.HapuID == nil || *p.HapuID != hapu.ID {
		t.Error("stored proposal missing its hapū scope")
	}
	if p.IwiID == nil || *p.IwiID != iwi.ID {
		t.Error("stored proposal missing the hapū's parent iwi")
	}
}

func TestHandleCreate_RejectsInvalidInput(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	staff := fx.CreateStaff(ctx, "Staff", "staff@test.com")
	archived := fx.CreateArchivedIwi(ctx, "Ngāti Archived", staff.ID)

	now := time.Now()
	tests := []struct {
		name   string
		mutate func(url.Values)
	}{
		{"short title", func(f url.Values) { f.Set("title", "Hui") }},
		{"short description", func(f url.Values) { f.Set("description", "Soon") }},
		{"start in the past", func(f url.Values) {
			f.Set("start_at", now.Add(-2*time.Hour).Format("2006-01-02T15:04"))
		}},
		{"archived iwi target", func(f url.Values) {
			f.Set("type", models.ConsultationIwi)
			f.Set("iwi_id", archived.ID.Hex())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := createForm(now)
			tt.mutate(form)

			// Rejections re-render the form, which panics without the
			// template engine booted.
			rec, req := createPost(t, form, testutil.StaffUser())
			func() {
				defer func() { _ = recover() }()
				handler.HandleCreate(rec, req)
			}()
			if rec.Code == http.StatusSeeOther {
				t.Error("invalid submission redirected; want rejection")
			}
		})
	}

	count, err := db.Collection("proposals").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments() error: %v", err)
	}
	if count != 0 {
		t.Errorf("proposals stored from invalid submissions = %d, want 0", count)
	}
}

func TestServeResults_RedirectsWhileVotingOpen(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	iwi := fx.CreateIwi(ctx, "Ngāti Test")
	hapu := fx.CreateHapu(ctx, "Test Hapū", iwi.ID)
	staff := fx.CreateStaff(ctx, "Staff", "staff@test.com")
	proposal := fx.CreateProposal(ctx, "Marae renovation", staff.ID)

	req := httptest.NewRequest("GET", "/consultations/"+proposal.ID.Hex()+"/results", nil)
	req = testutil.WithUser(req, testutil.MemberUser(iwi.ID, hapu.ID))
	req = testutil.WithChiURLParam(req, "proposalID", proposal.ID.Hex())
	rec := httptest.NewRecorder()
	handler.ServeResults(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("ServeResults status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/consultations/"+proposal.ID.Hex() {
		t.Errorf("redirect location = %q, want the detail page", loc)
	}
}

func TestHandleVote_ForeignOptionRejected(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	iwi := fx.CreateIwi(ctx, "Ngāti Test")
	hapu := fx.CreateHapu(ctx, "Test Hapū", iwi.ID)
	staff := fx.CreateStaff(ctx, "Staff", "staff@test.com")
	proposal := fx.CreateProposal(ctx, "Marae renovation", staff.ID)

	rec, req := votePost(t, proposal.ID, primitive.NewObjectID().Hex(), testutil.MemberUser(iwi.ID, hapu.ID))
	func() {
		defer func() { _ = recover() }()
		handler.HandleVote(rec, req)
	}()
	if rec.Code == http.StatusSeeOther {
		t.Error("vote for foreign option redirected; want rejection")
	}

	total, err := votestore.New(db).Total(ctx, proposal.ID)
	if err != nil {
		t.Fatalf("Total() error: %v", err)
	}
	if total != 0 {
		t.Errorf("vote total = %d, want 0", total)
	}
}
