// internal/app/store/leaderships/leadershipstore.go
package leadershipstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store manages the iwi_leaderships and hapu_leaderships collections.
// These collections, not flags on the user document, are the
// authoritative record of who leads what.
type Store struct {
	iwi  *mongo.Collection
	hapu *mongo.Collection
}

var ErrAlreadyLeader = errors.New("this user already holds that leadership")

func New(db *mongo.Database) *Store {
	return &Store{
		iwi:  db.Collection("iwi_leaderships"),
		hapu: db.Collection("hapu_leaderships"),
	}
}

// AssignIwiLeader grants iwi leadership. The unique (iwi, user) index
// rejects a second grant for the same pair.
func (s *Store) AssignIwiLeader(ctx context.Context, iwiID, userID, createdBy primitive.ObjectID) (models.IwiLeadership, error) {
	l := models.IwiLeadership{
		ID:          primitive.NewObjectID(),
		IwiID:       iwiID,
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
		CreatedByID: createdBy,
	}
	if _, err := s.iwi.InsertOne(ctx, l); err != nil {
		if wafflemongo.IsDup(err) {
			return models.IwiLeadership{}, ErrAlreadyLeader
		}
		return models.IwiLeadership{}, err
	}
	return l, nil
}

// RemoveIwiLeader revokes iwi leadership. Returns the number removed (0 or 1).
func (s *Store) RemoveIwiLeader(ctx context.Context, iwiID, userID primitive.ObjectID) (int64, error) {
	res, err := s.iwi.DeleteOne(ctx, bson.M{"iwi_id": iwiID, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// AssignHapuLeader grants hapū leadership.
func (s *Store) AssignHapuLeader(ctx context.Context, hapuID, userID, createdBy primitive.ObjectID) (models.HapuLeadership, error) {
	l := models.HapuLeadership{
		ID:          primitive.NewObjectID(),
		HapuID:      hapuID,
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
		CreatedByID: createdBy,
	}
	if _, err := s.hapu.InsertOne(ctx, l); err != nil {
		if wafflemongo.IsDup(err) {
			return models.HapuLeadership{}, ErrAlreadyLeader
		}
		return models.HapuLeadership{}, err
	}
	return l, nil
}

// RemoveHapuLeader revokes hapū leadership.
func (s *Store) RemoveHapuLeader(ctx context.Context, hapuID, userID primitive.ObjectID) (int64, error) {
	res, err := s.hapu.DeleteOne(ctx, bson.M{"hapu_id": hapuID, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// IsIwiLeader reports whether the user leads the iwi according to the
// authoritative collection.
func (s *Store) IsIwiLeader(ctx context.Context, iwiID, userID primitive.ObjectID) (bool, error) {
	n, err := s.iwi.CountDocuments(ctx, bson.M{"iwi_id": iwiID, "user_id": userID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsHapuLeader reports whether the user leads the hapū.
func (s *Store) IsHapuLeader(ctx context.Context, hapuID, userID primitive.ObjectID) (bool, error) {
	n, err := s.hapu.CountDocuments(ctx, bson.M{"hapu_id": hapuID, "user_id": userID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListIwiLeaderships returns the iwi leadership records held by one user.
func (s *Store) ListIwiLeaderships(ctx context.Context, userID primitive.ObjectID) ([]models.IwiLeadership, error) {
	cur, err := s.iwi.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.IwiLeadership
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListHapuLeaderships returns the hapū leadership records held by one user.
func (s *Store) ListHapuLeaderships(ctx context.Context, userID primitive.ObjectID) ([]models.HapuLeadership, error) {
	cur, err := s.hapu.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.HapuLeadership
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListIwiLeaders returns the leadership records for one iwi.
func (s *Store) ListIwiLeaders(ctx context.Context, iwiID primitive.ObjectID) ([]models.IwiLeadership, error) {
	cur, err := s.iwi.Find(ctx, bson.M{"iwi_id": iwiID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.IwiLeadership
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListHapuLeaders returns the leadership records for one hapū.
func (s *Store) ListHapuLeaders(ctx context.Context, hapuID primitive.ObjectID) ([]models.HapuLeadership, error) {
	cur, err := s.hapu.Find(ctx, bson.M{"hapu_id": hapuID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.HapuLeadership
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
