package votestore_test

import (
	"testing"

	votestore "github.com/temanawa/iwihub/internal/app/store/votes"
	"github.com/temanawa/iwihub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Cast(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := votestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	staff := fixtures.CreateStaff(ctx, "Staff", "staff@example.com")
	proposal := fixtures.CreateProposal(ctx, "Test Proposal", staff.ID)
	voter := primitive.NewObjectID()

	vote, err := store.Cast(ctx, proposal.ID, voter, proposal.Options[0].ID)
	if err != nil {
		t.Fatalf("Cast failed: %v", err)
	}
	if vote.VotedAt.IsZero() {
		t.Error("expected VotedAt to be set")
	}

	has, err := store.HasVoted(ctx, proposal.ID, voter)
	if err != nil {
		t.Fatalf("HasVoted failed: %v", err)
	}
	if !has {
		t.Error("expected HasVoted to be true")
	}
}

func TestStore_Cast_SecondVoteRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := votestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	staff := fixtures.CreateStaff(ctx, "Staff", "staff@example.com")
	proposal := fixtures.CreateProposal(ctx, "Test Proposal", staff.ID)
	voter := primitive.NewObjectID()

	if _, err := store.Cast(ctx, proposal.ID, voter, proposal.Options[0].ID); err != nil {
		t.Fatalf("first Cast failed: %v", err)
	}

	// Second vote on the same proposal, even for a different option,
	// hits the unique (proposal, user) index.
	_, err := store.Cast(ctx, proposal.ID, voter, proposal.Options[1].ID)
	if err != votestore.ErrAlreadyVoted {
		t.Errorf("expected ErrAlreadyVoted, got %v", err)
	}
}

func TestStore_Cast_SameUserDifferentProposals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := votestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	staff := fixtures.CreateStaff(ctx, "Staff", "staff@example.com")
	p1 := fixtures.CreateProposal(ctx, "Proposal One", staff.ID)
	p2 := fixtures.CreateProposal(ctx, "Proposal Two", staff.ID)
	voter := primitive.NewObjectID()

	if _, err := store.Cast(ctx, p1.ID, voter, p1.Options[0].ID); err != nil {
		t.Fatalf("Cast on p1 failed: %v", err)
	}
	if _, err := store.Cast(ctx, p2.ID, voter, p2.Options[0].ID); err != nil {
		t.Errorf("Cast on p2 should succeed: %v", err)
	}
}

func TestStore_CountByOption(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := votestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	staff := fixtures.CreateStaff(ctx, "Staff", "staff@example.com")
	proposal := fixtures.CreateProposal(ctx, "Tally Proposal", staff.ID)
	opt0 := proposal.Options[0].ID
	opt1 := proposal.Options[1].ID

	for i := 0; i < 3; i++ {
		if _, err := store.Cast(ctx, proposal.ID, primitive.NewObjectID(), opt0); err != nil {
			t.Fatalf("Cast failed: %v", err)
		}
	}
	if _, err := store.Cast(ctx, proposal.ID, primitive.NewObjectID(), opt1); err != nil {
		t.Fatalf("Cast failed: %v", err)
	}

	counts, err := store.CountByOption(ctx, proposal.ID)
	if err != nil {
		t.Fatalf("CountByOption failed: %v", err)
	}
	if counts[opt0] != 3 {
		t.Errorf("option 0 count: got %d, want 3", counts[opt0])
	}
	if counts[opt1] != 1 {
		t.Errorf("option 1 count: got %d, want 1", counts[opt1])
	}

	total, err := store.Total(ctx, proposal.ID)
	if err != nil {
		t.Fatalf("Total failed: %v", err)
	}
	if total != 4 {
		t.Errorf("total: got %d, want 4", total)
	}
}
