package consultationpolicy_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/temanawa/iwihub/internal/app/policy/consultationpolicy"
	"github.com/temanawa/iwihub/internal/domain/models"
	"github.com/temanawa/iwihub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func activeProposal(pType string, iwiID, hapuID *primitive.ObjectID) models.Proposal {
	now := time.Now().UTC()
	return models.Proposal{
		ID:      primitive.NewObjectID(),
		Title:   "Test",
		Type:    pType,
		IwiID:   iwiID,
		HapuID:  hapuID,
		StartAt: now.Add(-time.Hour),
		EndAt:   now.Add(time.Hour),
	}
}

func TestCanView_PublicAllowsAnyMember(t *testing.T) {
	iwiID := primitive.NewObjectID()
	hapuID := primitive.NewObjectID()
	r := httptest.NewRequest("GET", "/consultations/x", nil)
	r = testutil.WithUser(r, testutil.MemberUser(iwiID, hapuID))

	d := consultationpolicy.CanView(r, activeProposal(models.ConsultationPublic, nil, nil))
	if !d.Allowed {
		t.Errorf("expected allow, got deny: %s", d.Reason)
	}
}

func TestCanView_IwiScopeRequiresMembership(t *testing.T) {
	iwiID := primitive.NewObjectID()
	otherIwi := primitive.NewObjectID()
	hapuID := primitive.NewObjectID()
	p := activeProposal(models.ConsultationIwi, &iwiID, nil)

	r := httptest.NewRequest("GET", "/consultations/x", nil)
	r = testutil.WithUser(r, testutil.MemberUser(iwiID, hapuID))
	if d := consultationpolicy.CanView(r, p); !d.Allowed {
		t.Errorf("member of the iwi should view: %s", d.Reason)
	}

	r = httptest.NewRequest("GET", "/consultations/x", nil)
	r = testutil.WithUser(r, testutil.MemberUser(otherIwi, hapuID))
	if d := consultationpolicy.CanView(r, p); d.Allowed {
		t.Error("member of a different iwi should be denied")
	}
}

func TestCanView_HapuScopeCoversParentIwiLeader(t *testing.T) {
	iwiID := primitive.NewObjectID()
	hapuID := primitive.NewObjectID()
	p := activeProposal(models.ConsultationHapu, &iwiID, &hapuID)

	r := httptest.NewRequest("GET", "/consultations/x", nil)
	r = testutil.WithUser(r, testutil.IwiLeaderUser(iwiID))
	if d := consultationpolicy.CanView(r, p); !d.Allowed {
		t.Errorf("leader of the parent iwi should view: %s", d.Reason)
	}

	otherIwi := primitive.NewObjectID()
	r = httptest.NewRequest("GET", "/consultations/x", nil)
	r = testutil.WithUser(r, testutil.IwiLeaderUser(otherIwi))
	if d := consultationpolicy.CanView(r, p); d.Allowed {
		t.Error("leader of an unrelated iwi should be denied")
	}
}

func TestCanView_DraftStaffOnly(t *testing.T) {
	iwiID := primitive.NewObjectID()
	hapuID := primitive.NewObjectID()
	p := activeProposal(models.ConsultationPublic, nil, nil)
	p.IsDraft = true

	r := httptest.NewRequest("GET", "/consultations/x", nil)
	r = testutil.WithUser(r, testutil.MemberUser(iwiID, hapuID))
	if d := consultationpolicy.CanView(r, p); d.Allowed {
		t.Error("draft should be hidden from members")
	}

	r = httptest.NewRequest("GET", "/consultations/x", nil)
	r = testutil.WithUser(r, testutil.StaffUser())
	if d := consultationpolicy.CanView(r, p); !d.Allowed {
		t.Errorf("staff should see drafts: %s", d.Reason)
	}
}

func TestCanVote_WindowGating(t *testing.T) {
	iwiID := primitive.NewObjectID()
	hapuID := primitive.NewObjectID()
	now := time.Now().UTC()

	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		allowed bool
		reason  string
	}{
		{"active", now.Add(-time.Hour), now.Add(time.Hour), true, ""},
		{"scheduled", now.Add(time.Hour), now.Add(2 * time.Hour), false, "Voting has not started yet."},
		{"closed", now.Add(-2 * time.Hour), now.Add(-time.Hour), false, "This consultation has ended; voting is closed."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := activeProposal(models.ConsultationPublic, nil, nil)
			p.StartAt = tt.start
			p.EndAt = tt.end

			r := httptest.NewRequest("POST", "/consultations/x/vote", nil)
			r = testutil.WithUser(r, testutil.MemberUser(iwiID, hapuID))

			d := consultationpolicy.CanVote(r, p, now)
			if d.Allowed != tt.allowed {
				t.Fatalf("Allowed: got %v, want %v (%s)", d.Allowed, tt.allowed, d.Reason)
			}
			if !tt.allowed && d.Reason != tt.reason {
				t.Errorf("Reason: got %q, want %q", d.Reason, tt.reason)
			}
		})
	}
}

func TestAllowedTypes(t *testing.T) {
	iwiID := primitive.NewObjectID()
	hapuID := primitive.NewObjectID()

	r := httptest.NewRequest("GET", "/consultations/new", nil)
	r = testutil.WithUser(r, testutil.StaffUser())
	if got := consultationpolicy.AllowedTypes(r); len(got) != 3 {
		t.Errorf("staff types: got %v", got)
	}

	r = httptest.NewRequest("GET", "/consultations/new", nil)
	r = testutil.WithUser(r, testutil.IwiLeaderUser(iwiID))
	got := consultationpolicy.AllowedTypes(r)
	if len(got) != 2 || got[0] != models.ConsultationIwi {
		t.Errorf("iwi leader types: got %v", got)
	}

	r = httptest.NewRequest("GET", "/consultations/new", nil)
	r = testutil.WithUser(r, testutil.HapuLeaderUser(iwiID, hapuID))
	got = consultationpolicy.AllowedTypes(r)
	if len(got) != 1 || got[0] != models.ConsultationHapu {
		t.Errorf("hapū leader types: got %v", got)
	}

	r = httptest.NewRequest("GET", "/consultations/new", nil)
	r = testutil.WithUser(r, testutil.MemberUser(iwiID, hapuID))
	if got := consultationpolicy.AllowedTypes(r); got != nil {
		t.Errorf("plain member types: got %v", got)
	}
}

func TestCanModerate(t *testing.T) {
	iwiID := primitive.NewObjectID()
	hapuID := primitive.NewObjectID()
	p := activeProposal(models.ConsultationHapu, &iwiID, &hapuID)

	r := httptest.NewRequest("POST", "/consultations/x/comments/y/approve", nil)
	r = testutil.WithUser(r, testutil.HapuLeaderUser(iwiID, hapuID))
	if d := consultationpolicy.CanModerate(r, p); !d.Allowed {
		t.Errorf("hapū leader should moderate: %s", d.Reason)
	}

	r = httptest.NewRequest("POST", "/consultations/x/comments/y/approve", nil)
	r = testutil.WithUser(r, testutil.IwiLeaderUser(iwiID))
	if d := consultationpolicy.CanModerate(r, p); !d.Allowed {
		t.Errorf("leader of the parent iwi should moderate: %s", d.Reason)
	}

	r = httptest.NewRequest("POST", "/consultations/x/comments/y/approve", nil)
	r = testutil.WithUser(r, testutil.MemberUser(iwiID, hapuID))
	if d := consultationpolicy.CanModerate(r, p); d.Allowed {
		t.Error("plain member should not moderate")
	}
}
