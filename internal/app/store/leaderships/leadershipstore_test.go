package leadershipstore_test

import (
	"testing"

	leadershipstore "github.com/temanawa/iwihub/internal/app/store/leaderships"
	"github.com/temanawa/iwihub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_AssignIwiLeader(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := leadershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	iwi := fixtures.CreateIwi(ctx, "Lead Iwi")
	user := fixtures.CreateUser(ctx, "Leader", "leader@example.com", &iwi.ID, nil)
	staff := primitive.NewObjectID()

	l, err := store.AssignIwiLeader(ctx, iwi.ID, user.ID, staff)
	if err != nil {
		t.Fatalf("AssignIwiLeader failed: %v", err)
	}
	if l.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}

	is, err := store.IsIwiLeader(ctx, iwi.ID, user.ID)
	if err != nil {
		t.Fatalf("IsIwiLeader failed: %v", err)
	}
	if !is {
		t.Error("expected user to be an iwi leader")
	}
}

func TestStore_AssignIwiLeader_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := leadershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	iwi := fixtures.CreateIwi(ctx, "Lead Iwi")
	user := fixtures.CreateUser(ctx, "Leader", "leader@example.com", &iwi.ID, nil)
	staff := primitive.NewObjectID()

	if _, err := store.AssignIwiLeader(ctx, iwi.ID, user.ID, staff); err != nil {
		t.Fatalf("first AssignIwiLeader failed: %v", err)
	}

	_, err := store.AssignIwiLeader(ctx, iwi.ID, user.ID, staff)
	if err != leadershipstore.ErrAlreadyLeader {
		t.Errorf("expected ErrAlreadyLeader, got %v", err)
	}
}

func TestStore_RemoveIwiLeader(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := leadershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	iwi := fixtures.CreateIwi(ctx, "Lead Iwi")
	user := fixtures.CreateUser(ctx, "Leader", "leader@example.com", &iwi.ID, nil)
	staff := primitive.NewObjectID()

	if _, err := store.AssignIwiLeader(ctx, iwi.ID, user.ID, staff); err != nil {
		t.Fatalf("AssignIwiLeader failed: %v", err)
	}

	removed, err := store.RemoveIwiLeader(ctx, iwi.ID, user.ID)
	if err != nil {
		t.Fatalf("RemoveIwiLeader failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}

	is, err := store.IsIwiLeader(ctx, iwi.ID, user.ID)
	if err != nil {
		t.Fatalf("IsIwiLeader failed: %v", err)
	}
	if is {
		t.Error("expected leadership to be removed")
	}
}

func TestStore_AssignHapuLeader_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := leadershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	iwi := fixtures.CreateIwi(ctx, "Lead Iwi")
	hapu := fixtures.CreateHapu(ctx, "Lead Hapū", iwi.ID)
	user := fixtures.CreateUser(ctx, "Leader", "leader@example.com", &iwi.ID, &hapu.ID)
	staff := primitive.NewObjectID()

	if _, err := store.AssignHapuLeader(ctx, hapu.ID, user.ID, staff); err != nil {
		t.Fatalf("first AssignHapuLeader failed: %v", err)
	}

	_, err := store.AssignHapuLeader(ctx, hapu.ID, user.ID, staff)
	if err != leadershipstore.ErrAlreadyLeader {
		t.Errorf("expected ErrAlreadyLeader, got %v", err)
	}
}

func TestStore_ListIwiLeaders(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := leadershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	iwi := fixtures.CreateIwi(ctx, "Lead Iwi")
	u1 := fixtures.CreateUser(ctx, "Leader One", "one@example.com", &iwi.ID, nil)
	u2 := fixtures.CreateUser(ctx, "Leader Two", "two@example.com", &iwi.ID, nil)
	staff := primitive.NewObjectID()

	if _, err := store.AssignIwiLeader(ctx, iwi.ID, u1.ID, staff); err != nil {
		t.Fatalf("AssignIwiLeader failed: %v", err)
	}
	if _, err := store.AssignIwiLeader(ctx, iwi.ID, u2.ID, staff); err != nil {
		t.Fatalf("AssignIwiLeader failed: %v", err)
	}

	leaders, err := store.ListIwiLeaders(ctx, iwi.ID)
	if err != nil {
		t.Fatalf("ListIwiLeaders failed: %v", err)
	}
	if len(leaders) != 2 {
		t.Errorf("expected 2 leaders, got %d", len(leaders))
	}
}
