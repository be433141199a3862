package noticestore_test

import (
	"testing"
	"time"

	noticestore "github.com/temanawa/iwihub/internal/app/store/notices"
	"github.com/temanawa/iwihub/internal/domain/models"
	"github.com/temanawa/iwihub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestListActiveFor_LeadershipScopes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	iwi := fx.CreateIwi(ctx, "Ngāti Test")
	hapu := fx.CreateHapu(ctx, "Test Hapū", iwi.ID)
	staff := fx.CreateStaff(ctx, "Staff", "staff@test.com")

	store := noticestore.New(db)
	stored, err := store.Create(ctx, models.Notice{
		Title:       "Hapū hui rescheduled",
		Content:     "<p>The monthly hui moves to Saturday.</p>",
		Audience:    models.AudienceHapu,
		IwiID:       &iwi.ID,
		HapuID:      &hapu.ID,
		Priority:    5,
		ExpiresAt:   time.Now().UTC().Add(24 * time.Hour),
		CreatedByID: staff.ID,
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	contains := func(notices []models.Notice) bool {
		for _, n := range notices {
			if n.ID == stored.ID {
				return true
			}
		}
		return false
	}

	got, err := store.ListActiveFor(ctx, nil, nil, nil, []primitive.ObjectID{hapu.ID})
	if err != nil {
		t.Fatalf("ListActiveFor() error: %v", err)
	}
	if !contains(got) {
		t.Error("hapū leader does not see the hapū's notice")
	}

	got, err = store.ListActiveFor(ctx, nil, nil, []primitive.ObjectID{iwi.ID}, nil)
	if err != nil {
		t.Fatalf("ListActiveFor() error: %v", err)
	}
	if !contains(got) {
		t.Error("iwi leader does not see the hapū notices of their iwi")
	}

	got, err = store.ListActiveFor(ctx, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("ListActiveFor() error: %v", err)
	}
	if contains(got) {
		t.Error("unaffiliated member sees a hapū-scoped notice")
	}
}
