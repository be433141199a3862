// internal/app/store/users/fetcher.go
package userstore

import (
	"context"

	"github.com/temanawa/iwihub/internal/app/system/auth"
	"github.com/temanawa/iwihub/internal/app/system/timeouts"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.UserFetcher to load fresh user data on each
// request, so verification changes and leadership grants take effect
// immediately instead of at next sign-in.
type Fetcher struct {
	users           *mongo.Collection
	iwis            *mongo.Collection
	hapus           *mongo.Collection
	iwiLeaderships  *mongo.Collection
	hapuLeaderships *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{
		users:           db.Collection("users"),
		iwis:            db.Collection("iwis"),
		hapus:           db.Collection("hapus"),
		iwiLeaderships:  db.Collection("iwi_leaderships"),
		hapuLeaderships: db.Collection("hapu_leaderships"),
	}
}

// FetchUser retrieves a user by ID and returns nil if the user is not
// found, not verified, or if any error occurs. This implements
// auth.UserFetcher.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"full_name": 1,
		"email":     1,
		"is_staff":  1,
		"state":     1,
		"iwi_id":    1,
		"hapu_id":   1,
	})
	if err := f.users.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&u); err != nil {
		return nil
	}

	// Only verified users may hold a session.
	if !u.IsVerified() {
		return nil
	}

	su := &auth.SessionUser{
		ID:      u.ID.Hex(),
		Name:    u.FullName,
		Email:   u.Email,
		IsStaff: u.IsStaff,
		State:   u.State,
	}

	nameProj := options.FindOne().SetProjection(bson.M{"name": 1})
	if u.IwiID != nil {
		su.IwiID = u.IwiID.Hex()
		var iwi models.Iwi
		if err := f.iwis.FindOne(ctx, bson.M{"_id": u.IwiID}, nameProj).Decode(&iwi); err == nil {
			su.IwiName = iwi.Name
		}
	}
	if u.HapuID != nil {
		su.HapuID = u.HapuID.Hex()
		var hapu models.Hapu
		if err := f.hapus.FindOne(ctx, bson.M{"_id": u.HapuID}, nameProj).Decode(&hapu); err == nil {
			su.HapuName = hapu.Name
		}
	}

	su.LeaderIwiIDs = f.leadershipIDs(ctx, f.iwiLeaderships, "iwi_id", oid)
	su.LeaderHapuIDs = f.leadershipIDs(ctx, f.hapuLeaderships, "hapu_id", oid)

	return su
}

func (f *Fetcher) leadershipIDs(ctx context.Context, coll *mongo.Collection, field string, userID primitive.ObjectID) []string {
	cur, err := coll.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		// Query failure degrades to no leadership grants (safe fallback).
		return nil
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		var doc bson.M
		if cur.Decode(&doc) != nil {
			continue
		}
		if oid, ok := doc[field].(primitive.ObjectID); ok {
			ids = append(ids, oid.Hex())
		}
	}
	return ids
}
