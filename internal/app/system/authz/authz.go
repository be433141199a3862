// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/temanawa/iwihub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the current user's name, Mongo ObjectID, and a found
// flag. If no user is present in context or the user ID is malformed,
// it returns "", NilObjectID, false. Callers can trust that ok=true
// means a valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "", primitive.NilObjectID, false
	}
	return user.Name, userID, true
}

// IsStaff reports whether the current request's user is a portal administrator.
func IsStaff(r *http.Request) bool {
	user, ok := auth.CurrentUser(r)
	return ok && user.IsStaff
}

// LeadsIwi reports whether the current user leads the given iwi.
func LeadsIwi(r *http.Request, iwiID primitive.ObjectID) bool {
	user, ok := auth.CurrentUser(r)
	return ok && user.LeadsIwi(iwiID.Hex())
}

// LeadsHapu reports whether the current user leads the given hapū.
func LeadsHapu(r *http.Request, hapuID primitive.ObjectID) bool {
	user, ok := auth.CurrentUser(r)
	return ok && user.LeadsHapu(hapuID.Hex())
}

// IsLeader reports whether the current user leads any iwi or hapū.
func IsLeader(r *http.Request) bool {
	user, ok := auth.CurrentUser(r)
	return ok && user.IsLeader()
}

// UserIwiID returns the current user's iwi membership as an ObjectID.
// Returns NilObjectID if not signed in or not affiliated with an iwi.
func UserIwiID(r *http.Request) primitive.ObjectID {
	user, ok := auth.CurrentUser(r)
	if !ok || user.IwiID == "" {
		return primitive.NilObjectID
	}
	oid, err := primitive.ObjectIDFromHex(user.IwiID)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}

// UserHapuID returns the current user's hapū membership as an ObjectID.
func UserHapuID(r *http.Request) primitive.ObjectID {
	user, ok := auth.CurrentUser(r)
	if !ok || user.HapuID == "" {
		return primitive.NilObjectID
	}
	oid, err := primitive.ObjectIDFromHex(user.HapuID)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}

// UserScope returns the current user's iwi and hapū memberships as
// nullable IDs, the shape the store visibility filters take.
func UserScope(r *http.Request) (iwiID, hapuID *primitive.ObjectID) {
	if id := UserIwiID(r); id != primitive.NilObjectID {
		iwiID = &id
	}
	if id := UserHapuID(r); id != primitive.NilObjectID {
		hapuID = &id
	}
	return iwiID, hapuID
}

// LeaderIwiIDs returns the iwi this user leads as ObjectIDs.
func LeaderIwiIDs(r *http.Request) []primitive.ObjectID {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return nil
	}
	return hexToObjectIDs(user.LeaderIwiIDs)
}

// LeaderHapuIDs returns the hapū this user leads as ObjectIDs.
func LeaderHapuIDs(r *http.Request) []primitive.ObjectID {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return nil
	}
	return hexToObjectIDs(user.LeaderHapuIDs)
}

func hexToObjectIDs(hexes []string) []primitive.ObjectID {
	if len(hexes) == 0 {
		return nil
	}
	out := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		if oid, err := primitive.ObjectIDFromHex(h); err == nil {
			out = append(out, oid)
		}
	}
	return out
}
