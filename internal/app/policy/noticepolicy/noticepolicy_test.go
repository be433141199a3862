package noticepolicy_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/temanawa/iwihub/internal/app/policy/noticepolicy"
	"github.com/temanawa/iwihub/internal/domain/models"
	"github.com/temanawa/iwihub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func hapuNotice(iwiID, hapuID primitive.ObjectID) models.Notice {
	return models.Notice{
		ID:        primitive.NewObjectID(),
		Title:     "Test notice",
		Audience:  models.AudienceHapu,
		IwiID:     &iwiID,
		HapuID:    &hapuID,
		Priority:  5,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
}

func TestCanView_HapuAudience(t *testing.T) {
	iwiID := primitive.NewObjectID()
	hapuID := primitive.NewObjectID()
	n := hapuNotice(iwiID, hapuID)

	r := httptest.NewRequest("GET", "/notices/x", nil)
	r = testutil.WithUser(r, testutil.MemberUser(iwiID, hapuID))
	if d := noticepolicy.CanView(r, n); !d.Allowed {
		t.Errorf("hapū member should view: %s", d.Reason)
	}

	r = httptest.NewRequest("GET", "/notices/x", nil)
	r = testutil.WithUser(r, testutil.IwiLeaderUser(iwiID))
	if d := noticepolicy.CanView(r, n); !d.Allowed {
		t.Errorf("leader of the parent iwi should view: %s", d.Reason)
	}

	r = httptest.NewRequest("GET", "/notices/x", nil)
	r = testutil.WithUser(r, testutil.MemberUser(iwiID, primitive.NewObjectID()))
	if d := noticepolicy.CanView(r, n); d.Allowed {
		t.Error("member of a different hapū should be denied")
	}
}

func TestCanManage_ParentIwiLeader(t *testing.T) {
	iwiID := primitive.NewObjectID()
	hapuID := primitive.NewObjectID()
	n := hapuNotice(iwiID, hapuID)
	n.CreatedByID = primitive.NewObjectID()

	r := httptest.NewRequest("POST", "/notices/x/edit", nil)
	r = testutil.WithUser(r, testutil.IwiLeaderUser(iwiID))
	if d := noticepolicy.CanManage(r, n); !d.Allowed {
		t.Errorf("leader of the parent iwi should manage: %s", d.Reason)
	}

	r = httptest.NewRequest("POST", "/notices/x/edit", nil)
	r = testutil.WithUser(r, testutil.MemberUser(iwiID, hapuID))
	if d := noticepolicy.CanManage(r, n); d.Allowed {
		t.Error("plain member should not manage")
	}
}
