package hapustore_test

import (
	"testing"

	hapustore "github.com/temanawa/iwihub/internal/app/store/hapus"
	"github.com/temanawa/iwihub/internal/domain/models"
	"github.com/temanawa/iwihub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create_DuplicateNameInSameIwi(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := hapustore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	iwi := fixtures.CreateIwi(ctx, "Parent Iwi")

	if _, err := store.Create(ctx, models.Hapu{Name: "Ngāti Hapū", IwiID: iwi.ID}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := store.Create(ctx, models.Hapu{Name: "NGATI HAPU", IwiID: iwi.ID})
	if err != hapustore.ErrDuplicateHapu {
		t.Errorf("expected ErrDuplicateHapu, got %v", err)
	}
}

func TestStore_Create_SameNameDifferentIwis(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := hapustore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	iwi1 := fixtures.CreateIwi(ctx, "Iwi One")
	iwi2 := fixtures.CreateIwi(ctx, "Iwi Two")

	if _, err := store.Create(ctx, models.Hapu{Name: "Shared Name", IwiID: iwi1.ID}); err != nil {
		t.Fatalf("Create in iwi1 failed: %v", err)
	}
	if _, err := store.Create(ctx, models.Hapu{Name: "Shared Name", IwiID: iwi2.ID}); err != nil {
		t.Errorf("Create in iwi2 should succeed: %v", err)
	}
}

func TestStore_ArchiveByIwi_Cascade(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := hapustore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	staff := primitive.NewObjectID()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	iwi := fixtures.CreateIwi(ctx, "Cascade Iwi")
	other := fixtures.CreateIwi(ctx, "Other Iwi")
	fixtures.CreateHapu(ctx, "Hapū A", iwi.ID)
	fixtures.CreateHapu(ctx, "Hapū B", iwi.ID)
	untouched := fixtures.CreateHapu(ctx, "Hapū C", other.ID)

	count, err := store.ArchiveByIwi(ctx, iwi.ID, staff)
	if err != nil {
		t.Fatalf("ArchiveByIwi failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 hapū archived, got %d", count)
	}

	// Hapū under other iwis are untouched.
	found, err := store.GetByID(ctx, untouched.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if found.IsArchived {
		t.Error("hapū under a different iwi should not be archived")
	}
}

func TestStore_Transfer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := hapustore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	staff := primitive.NewObjectID()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	oldIwi := fixtures.CreateIwi(ctx, "Old Parent")
	newIwi := fixtures.CreateIwi(ctx, "New Parent")
	hapu := fixtures.CreateHapu(ctx, "Moving Hapū", oldIwi.ID)

	if err := store.Archive(ctx, hapu.ID, staff); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	if err := store.Transfer(ctx, hapu.ID, newIwi.ID); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	found, err := store.GetByID(ctx, hapu.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if found.IwiID != newIwi.ID {
		t.Errorf("IwiID: got %v, want %v", found.IwiID, newIwi.ID)
	}
	// Transfer reactivates the hapū under its new parent.
	if found.IsArchived {
		t.Error("transferred hapū should be active")
	}
	if found.ArchivedAt != nil {
		t.Error("transferred hapū should have archive fields cleared")
	}
}

func TestStore_Transfer_NameCollisionInTarget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := hapustore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	staff := primitive.NewObjectID()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	oldIwi := fixtures.CreateIwi(ctx, "Old Parent")
	newIwi := fixtures.CreateIwi(ctx, "New Parent")
	fixtures.CreateHapu(ctx, "Taken Name", newIwi.ID)
	hapu := fixtures.CreateHapu(ctx, "Taken Name", oldIwi.ID)

	if err := store.Archive(ctx, hapu.ID, staff); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	err := store.Transfer(ctx, hapu.ID, newIwi.ID)
	if err != hapustore.ErrDuplicateHapu {
		t.Errorf("expected ErrDuplicateHapu, got %v", err)
	}
}

func TestStore_ListActiveByIwi(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := hapustore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	staff := primitive.NewObjectID()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	iwi := fixtures.CreateIwi(ctx, "List Iwi")
	active := fixtures.CreateHapu(ctx, "Active Hapū", iwi.ID)
	archived := fixtures.CreateHapu(ctx, "Archived Hapū", iwi.ID)
	if err := store.Archive(ctx, archived.ID, staff); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	list, err := store.ListActiveByIwi(ctx, iwi.ID)
	if err != nil {
		t.Fatalf("ListActiveByIwi failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 active hapū, got %d", len(list))
	}
	if list[0].ID != active.ID {
		t.Errorf("expected %v, got %v", active.ID, list[0].ID)
	}
}
