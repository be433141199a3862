package eventstore_test

import (
	"testing"
	"time"

	eventstore "github.com/temanawa/iwihub/internal/app/store/events"
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

	store := eventstore.New(db)
	now := time.Now().UTC()
	stored, err := store.Create(ctx, models.Event{
		Title:        "Hapū planting day",
		StartAt:      now.Add(24 * time.Hour),
		EndAt:        now.Add(26 * time.Hour),
		LocationType: models.LocationPhysical,
		Location:     "Test Marae",
		Visibility:   models.EventHapu,
		IwiID:        &iwi.ID,
		HapuID:       &hapu.ID,
		CreatedByID:  staff.ID,
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	contains := func(events []models.Event) bool {
		for _, e := range events {
			if e.ID == stored.ID {
				return true
			}
		}
		return false
	}

	got, err := store.ListUpcoming(ctx, eventstore.VisibleFilter(nil, nil, nil, []primitive.ObjectID{hapu.ID}))
	if err != nil {
		t.Fatalf("ListUpcoming() error: %v", err)
	}
	if !contains(got) {
		t.Error("hapū leader does not see the hapū's event")
	}

	got, err = store.ListUpcoming(ctx, eventstore.VisibleFilter(nil, nil, []primitive.ObjectID{iwi.ID}, nil))
	if err != nil {
		t.Fatalf("ListUpcoming() error: %v", err)
	}
	if !contains(got) {
		t.Error("iwi leader does not see the hapū events of their iwi")
	}

	got, err = store.ListUpcoming(ctx, eventstore.VisibleFilter(nil, nil, nil, nil))
	if err != nil {
		t.Fatalf("ListUpcoming() error: %v", err)
	}
	if contains(got) {
		t.Error("unaffiliated member sees a hapū-scoped event")
	}
}
