// internal/testutil/http.go
package testutil

import (
	"net/http"

	"github.com/temanawa/iwihub/internal/app/system/auth"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID            string
	Name          string
	Email         string
	IsStaff       bool
	IwiID         string
	HapuID        string
	LeaderIwiIDs  []string
	LeaderHapuIDs []string
}

// StaffUser returns a TestUser with staff permissions.
func StaffUser() TestUser {
	return TestUser{
		ID:      primitive.NewObjectID().Hex(),
		Name:    "Test Staff",
		Email:   "staff@test.com",
		IsStaff: true,
	}
}

// MemberUser returns a verified TestUser affiliated with the given units.
func MemberUser(iwiID, hapuID primitive.ObjectID) TestUser {
	return TestUser{
		ID:     primitive.NewObjectID().Hex(),
		Name:   "Test Member",
		Email:  "member@test.com",
		IwiID:  iwiID.Hex(),
		HapuID: hapuID.Hex(),
	}
}

// IwiLeaderUser returns a TestUser leading the given iwi.
func IwiLeaderUser(iwiID primitive.ObjectID) TestUser {
	return TestUser{
		ID:           primitive.NewObjectID().Hex(),
		Name:         "Test Iwi Leader",
		Email:        "iwileader@test.com",
		IwiID:        iwiID.Hex(),
		LeaderIwiIDs: []string{iwiID.Hex()},
	}
}

// HapuLeaderUser returns a TestUser leading the given hapū.
func HapuLeaderUser(iwiID, hapuID primitive.ObjectID) TestUser {
	return TestUser{
		ID:            primitive.NewObjectID().Hex(),
		Name:          "Test Hapū Leader",
		Email:         "hapuleader@test.com",
		IwiID:         iwiID.Hex(),
		HapuID:        hapuID.Hex(),
		LeaderHapuIDs: []string{hapuID.Hex()},
	}
}

// FromModel converts a fixture user into a TestUser for request contexts.
func FromModel(u models.User, leaderIwiIDs, leaderHapuIDs []string) TestUser {
	tu := TestUser{
		ID:            u.ID.Hex(),
		Name:          u.FullName,
		Email:         u.Email,
		IsStaff:       u.IsStaff,
		LeaderIwiIDs:  leaderIwiIDs,
		LeaderHapuIDs: leaderHapuIDs,
	}
	if u.IwiID != nil {
		tu.IwiID = u.IwiID.Hex()
	}
	if u.HapuID != nil {
		tu.HapuID = u.HapuID.Hex()
	}
	return tu
}

// WithUser adds a user to the request context for testing authenticated
// handlers. This bypasses the session middleware entirely.
func WithUser(r *http.Request, user TestUser) *http.Request {
	sessionUser := &auth.SessionUser{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		IsStaff:       user.IsStaff,
		State:         models.StateVerified,
		IwiID:         user.IwiID,
		HapuID:        user.HapuID,
		LeaderIwiIDs:  user.LeaderIwiIDs,
		LeaderHapuIDs: user.LeaderHapuIDs,
	}
	return auth.WithTestUser(r, sessionUser)
}
