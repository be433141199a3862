package userpolicy_test

import (
	"net/http/httptest"
	"testing"

	"github.com/temanawa/iwihub/internal/app/policy/userpolicy"
	"github.com/temanawa/iwihub/internal/domain/models"
	"github.com/temanawa/iwihub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanVerify(t *testing.T) {
	iwiID := primitive.NewObjectID()
	hapuID := primitive.NewObjectID()
	otherHapu := primitive.NewObjectID()
	target := models.User{
		ID:     primitive.NewObjectID(),
		State:  models.StatePending,
		IwiID:  &iwiID,
		HapuID: &hapuID,
	}

	r := httptest.NewRequest("POST", "/admin/users/x/verify", nil)
	r = testutil.WithUser(r, testutil.StaffUser())
	if d := userpolicy.CanVerify(r, target); !d.Allowed {
		t.Errorf("staff should verify anyone: %s", d.Reason)
	}

	r = httptest.NewRequest("POST", "/admin/users/x/verify", nil)
	r = testutil.WithUser(r, testutil.HapuLeaderUser(iwiID, hapuID))
	if d := userpolicy.CanVerify(r, target); !d.Allowed {
		t.Errorf("leader of the member's hapū should verify: %s", d.Reason)
	}

	r = httptest.NewRequest("POST", "/admin/users/x/verify", nil)
	r = testutil.WithUser(r, testutil.HapuLeaderUser(iwiID, otherHapu))
	if d := userpolicy.CanVerify(r, target); d.Allowed {
		t.Error("leader of a different hapū should be denied")
	}

	r = httptest.NewRequest("POST", "/admin/users/x/verify", nil)
	r = testutil.WithUser(r, testutil.MemberUser(iwiID, hapuID))
	if d := userpolicy.CanVerify(r, target); d.Allowed {
		t.Error("plain member should be denied")
	}
}

func TestCanVerify_NoHapuAffiliation(t *testing.T) {
	iwiID := primitive.NewObjectID()
	hapuID := primitive.NewObjectID()
	// Target has no hapū, so only staff can verify.
	target := models.User{ID: primitive.NewObjectID(), State: models.StatePending}

	r := httptest.NewRequest("POST", "/admin/users/x/verify", nil)
	r = testutil.WithUser(r, testutil.HapuLeaderUser(iwiID, hapuID))
	if d := userpolicy.CanVerify(r, target); d.Allowed {
		t.Error("hapū leader should not verify an unaffiliated member")
	}
}

func TestCanAssignLeaders_StaffOnly(t *testing.T) {
	iwiID := primitive.NewObjectID()

	r := httptest.NewRequest("POST", "/admin/leaderships", nil)
	r = testutil.WithUser(r, testutil.StaffUser())
	if d := userpolicy.CanAssignLeaders(r); !d.Allowed {
		t.Errorf("staff should assign leaders: %s", d.Reason)
	}

	r = httptest.NewRequest("POST", "/admin/leaderships", nil)
	r = testutil.WithUser(r, testutil.IwiLeaderUser(iwiID))
	if d := userpolicy.CanAssignLeaders(r); d.Allowed {
		t.Error("iwi leaders should not assign leaderships")
	}
}
