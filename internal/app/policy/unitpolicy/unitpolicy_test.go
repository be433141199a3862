package unitpolicy_test

import (
	"net/http/httptest"
	"testing"

	"github.com/temanawa/iwihub/internal/app/policy/unitpolicy"
	"github.com/temanawa/iwihub/internal/domain/models"
	"github.com/temanawa/iwihub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanManageIwis_StaffOnly(t *testing.T) {
	r := httptest.NewRequest("GET", "/admin/iwis", nil)
	r = testutil.WithUser(r, testutil.StaffUser())
	if d := unitpolicy.CanManageIwis(r); !d.Allowed {
		t.Errorf("staff should manage iwis: %s", d.Reason)
	}

	iwiID := primitive.NewObjectID()
	r = httptest.NewRequest("GET", "/admin/iwis", nil)
	r = testutil.WithUser(r, testutil.IwiLeaderUser(iwiID))
	if d := unitpolicy.CanManageIwis(r); d.Allowed {
		t.Error("iwi leaders should not manage iwi records")
	}
}

func TestCanManageHapu(t *testing.T) {
	iwiID := primitive.NewObjectID()
	hapu := models.Hapu{ID: primitive.NewObjectID(), IwiID: iwiID}

	r := httptest.NewRequest("GET", "/hapus/x/edit", nil)
	r = testutil.WithUser(r, testutil.IwiLeaderUser(iwiID))
	if d := unitpolicy.CanManageHapu(r, hapu); !d.Allowed {
		t.Errorf("parent iwi leader should manage: %s", d.Reason)
	}

	otherIwi := primitive.NewObjectID()
	r = httptest.NewRequest("GET", "/hapus/x/edit", nil)
	r = testutil.WithUser(r, testutil.IwiLeaderUser(otherIwi))
	if d := unitpolicy.CanManageHapu(r, hapu); d.Allowed {
		t.Error("leader of a different iwi should be denied")
	}
}

func TestCanTransferHapu(t *testing.T) {
	parentID := primitive.NewObjectID()
	targetID := primitive.NewObjectID()
	hapu := models.Hapu{ID: primitive.NewObjectID(), IwiID: parentID, IsArchived: true}

	archived := func(id primitive.ObjectID) models.Iwi {
		return models.Iwi{ID: id, IsArchived: true}
	}
	active := func(id primitive.ObjectID) models.Iwi {
		return models.Iwi{ID: id}
	}

	tests := []struct {
		name    string
		parent  models.Iwi
		target  models.Iwi
		allowed bool
	}{
		{"valid transfer", archived(parentID), active(targetID), true},
		{"parent still active", active(parentID), active(targetID), false},
		{"target is archived", archived(parentID), archived(targetID), false},
		{"target is current parent", archived(parentID), archived(parentID), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/hapus/x/transfer", nil)
			r = testutil.WithUser(r, testutil.StaffUser())

			d := unitpolicy.CanTransferHapu(r, hapu, tt.parent, tt.target)
			if d.Allowed != tt.allowed {
				t.Errorf("Allowed: got %v, want %v (%s)", d.Allowed, tt.allowed, d.Reason)
			}
		})
	}
}

func TestCanTransferHapu_RequiresManagement(t *testing.T) {
	parentID := primitive.NewObjectID()
	targetID := primitive.NewObjectID()
	otherIwi := primitive.NewObjectID()
	hapu := models.Hapu{ID: primitive.NewObjectID(), IwiID: parentID, IsArchived: true}

	r := httptest.NewRequest("POST", "/hapus/x/transfer", nil)
	r = testutil.WithUser(r, testutil.IwiLeaderUser(otherIwi))

	d := unitpolicy.CanTransferHapu(r, hapu,
		models.Iwi{ID: parentID, IsArchived: true},
		models.Iwi{ID: targetID})
	if d.Allowed {
		t.Error("leader of an unrelated iwi should not transfer the hapū")
	}
}
