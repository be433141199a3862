package proposalstore_test

import (
	"testing"
	"time"

	proposalstore "github.com/temanawa/iwihub/internal/app/store/proposals"
	"github.com/temanawa/iwihub/internal/domain/models"
	"github.com/temanawa/iwihub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestVisibleFilter_LeadershipScopes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	iwi := fx.CreateIwi(ctx, "Ngāti Test")
	hapu := fx.CreateHapu(ctx, "Test Hapū", iwi.ID)
	staff := fx.CreateStaff(ctx, "Staff", "staff@test.com")

	store := proposalstore.New(db)
	now := time.Now().UTC()
	stored, err := store.Create(ctx, models.Proposal{
		Title:   "Hapū wānanga dates",
		Type:    models.ConsultationHapu,
		IwiID:   &iwi.ID,
		HapuID:  &hapu.ID,
		StartAt: now.Add(-time.Hour),
		EndAt:   now.Add(time.Hour),
		Options: []models.VotingOption{
			{Text: "Support"},
			{Text: "Oppose"},
		},
		CreatedByID: staff.ID,
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	contains := func(proposals []models.Proposal) bool {
		for _, p := range proposals {
			if p.ID == stored.ID {
				return true
			}
		}
		return false
	}

	// A leader of the hapū who belongs to no unit themselves.
	got, err := store.Find(ctx, proposalstore.VisibleFilter(nil, nil, nil, []primitive.ObjectID{hapu.ID}, false))
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if !contains(got) {
		t.Error("hapū leader does not see the hapū's consultation")
	}

	// A leader of the parent iwi.
	got, err = store.Find(ctx, proposalstore.VisibleFilter(nil, nil, []primitive.ObjectID{iwi.ID}, nil, false))
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if !contains(got) {
		t.Error("iwi leader does not see the hapū consultations of their iwi")
	}

	// An unaffiliated member sees public consultations only.
	got, err = store.Find(ctx, proposalstore.VisibleFilter(nil, nil, nil, nil, false))
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if contains(got) {
		t.Error("unaffiliated member sees a hapū-scoped consultation")
	}
}
