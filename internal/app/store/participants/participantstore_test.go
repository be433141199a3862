package participantstore_test

import (
	"testing"

	participantstore "github.com/temanawa/iwihub/internal/app/store/participants"
	"github.com/temanawa/iwihub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Join_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := participantstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	staff := fixtures.CreateStaff(ctx, "Staff", "staff@example.com")
	event := fixtures.CreateEvent(ctx, "Test Hui", staff.ID)
	user := primitive.NewObjectID()

	if err := store.Join(ctx, event.ID, user); err != nil {
		t.Fatalf("first Join failed: %v", err)
	}
	if err := store.Join(ctx, event.ID, user); err != nil {
		t.Errorf("second Join should be a no-op, got %v", err)
	}

	count, err := store.CountForEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("CountForEvent failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 participant, got %d", count)
	}
}

func TestStore_Leave(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := participantstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	staff := fixtures.CreateStaff(ctx, "Staff", "staff@example.com")
	event := fixtures.CreateEvent(ctx, "Test Hui", staff.ID)
	user := primitive.NewObjectID()

	if err := store.Join(ctx, event.ID, user); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	removed, err := store.Leave(ctx, event.ID, user)
	if err != nil {
		t.Fatalf("Leave failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}

	is, err := store.IsParticipant(ctx, event.ID, user)
	if err != nil {
		t.Fatalf("IsParticipant failed: %v", err)
	}
	if is {
		t.Error("expected user to no longer be a participant")
	}

	// Leaving an event the user never joined removes nothing.
	removed, err = store.Leave(ctx, event.ID, user)
	if err != nil {
		t.Fatalf("second Leave failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("expected 0 removed, got %d", removed)
	}
}

func TestStore_EventIDsForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := participantstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	staff := fixtures.CreateStaff(ctx, "Staff", "staff@example.com")
	e1 := fixtures.CreateEvent(ctx, "Hui One", staff.ID)
	e2 := fixtures.CreateEvent(ctx, "Hui Two", staff.ID)
	fixtures.CreateEvent(ctx, "Hui Three", staff.ID)
	user := primitive.NewObjectID()

	if err := store.Join(ctx, e1.ID, user); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if err := store.Join(ctx, e2.ID, user); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	ids, err := store.EventIDsForUser(ctx, user)
	if err != nil {
		t.Fatalf("EventIDsForUser failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("expected 2 event IDs, got %d", len(ids))
	}
}
