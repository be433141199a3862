package authz

import (
	"net/http/httptest"
	"testing"

	"github.com/temanawa/iwihub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserCtx_Anonymous(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	name, id, ok := UserCtx(r)
	if ok {
		t.Error("expected ok=false for anonymous request")
	}
	if name != "" || id != primitive.NilObjectID {
		t.Errorf("expected zero values, got %q %v", name, id)
	}
}

func TestUserCtx_MalformedID(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r = auth.WithTestUser(r, &auth.SessionUser{ID: "not-a-valid-id", Name: "Aroha"})

	if _, _, ok := UserCtx(r); ok {
		t.Error("expected ok=false for malformed user ID")
	}
}

func TestUserCtx_Valid(t *testing.T) {
	oid := primitive.NewObjectID()
	r := httptest.NewRequest("GET", "/", nil)
	r = auth.WithTestUser(r, &auth.SessionUser{ID: oid.Hex(), Name: "Aroha"})

	name, id, ok := UserCtx(r)
	if !ok || name != "Aroha" || id != oid {
		t.Errorf("UserCtx = %q %v %v", name, id, ok)
	}
}

func TestLeadershipHelpers(t *testing.T) {
	iwiID := primitive.NewObjectID()
	hapuID := primitive.NewObjectID()

	r := httptest.NewRequest("GET", "/", nil)
	r = auth.WithTestUser(r, &auth.SessionUser{
		ID:            primitive.NewObjectID().Hex(),
		LeaderIwiIDs:  []string{iwiID.Hex()},
		LeaderHapuIDs: []string{hapuID.Hex()},
	})

	if !LeadsIwi(r, iwiID) {
		t.Error("expected LeadsIwi true")
	}
	if LeadsIwi(r, primitive.NewObjectID()) {
		t.Error("expected LeadsIwi false for other iwi")
	}
	if !LeadsHapu(r, hapuID) {
		t.Error("expected LeadsHapu true")
	}
	if !IsLeader(r) {
		t.Error("expected IsLeader true")
	}

	ids := LeaderIwiIDs(r)
	if len(ids) != 1 || ids[0] != iwiID {
		t.Errorf("LeaderIwiIDs = %v", ids)
	}
}

func TestUserIwiID(t *testing.T) {
	iwiID := primitive.NewObjectID()
	r := httptest.NewRequest("GET", "/", nil)
	r = auth.WithTestUser(r, &auth.SessionUser{
		ID:    primitive.NewObjectID().Hex(),
		IwiID: iwiID.Hex(),
	})

	if got := UserIwiID(r); got != iwiID {
		t.Errorf("UserIwiID = %v, want %v", got, iwiID)
	}

	anon := httptest.NewRequest("GET", "/", nil)
	if got := UserIwiID(anon); got != primitive.NilObjectID {
		t.Errorf("UserIwiID for anonymous = %v", got)
	}
}

func TestDecision(t *testing.T) {
	if d := Allow(); !d.Allowed || d.Reason != "" {
		t.Errorf("Allow() = %+v", d)
	}
	if d := Deny("no"); d.Allowed || d.Reason != "no" {
		t.Errorf("Deny() = %+v", d)
	}
}
