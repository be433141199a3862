package eventpolicy_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/temanawa/iwihub/internal/app/policy/eventpolicy"
	"github.com/temanawa/iwihub/internal/domain/models"
	"github.com/temanawa/iwihub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func hapuEvent(iwiID, hapuID primitive.ObjectID) models.Event {
	now := time.Now().UTC()
	return models.Event{
		ID:           primitive.NewObjectID(),
		Title:        "Test event",
		StartAt:      now.Add(24 * time.Hour),
		EndAt:        now.Add(26 * time.Hour),
		LocationType: models.LocationPhysical,
		Location:     "Test Marae",
		Visibility:   models.EventHapu,
		IwiID:        &iwiID,
		HapuID:       &hapuID,
	}
}

func TestCanView_HapuVisibility(t *testing.T) {
	iwiID := primitive.NewObjectID()
	hapuID := primitive.NewObjectID()
	e := hapuEvent(iwiID, hapuID)

	r := httptest.NewRequest("GET", "/events/x", nil)
	r = testutil.WithUser(r, testutil.MemberUser(iwiID, hapuID))
	if d := eventpolicy.CanView(r, e); !d.Allowed {
		t.Errorf("hapū member should view: %s", d.Reason)
	}

	r = httptest.NewRequest("GET", "/events/x", nil)
	r = testutil.WithUser(r, testutil.IwiLeaderUser(iwiID))
	if d := eventpolicy.CanView(r, e); !d.Allowed {
		t.Errorf("leader of the parent iwi should view: %s", d.Reason)
	}

	r = httptest.NewRequest("GET", "/events/x", nil)
	r = testutil.WithUser(r, testutil.MemberUser(iwiID, primitive.NewObjectID()))
	if d := eventpolicy.CanView(r, e); d.Allowed {
		t.Error("member of a different hapū should be denied")
	}
}
