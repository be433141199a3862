// internal/app/store/participants/participantstore.go
package participantstore

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("event_participants")}
}

// Join records participation. Idempotent: joining twice is a no-op and
// keeps the original join time, enforced by the unique (event, user) index.
func (s *Store) Join(ctx context.Context, eventID, userID primitive.ObjectID) error {
	p := models.Participation{
		ID:       primitive.NewObjectID(),
		EventID:  eventID,
		UserID:   userID,
		JoinedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return nil
		}
		return err
	}
	return nil
}

// Leave removes participation. Returns the number removed (0 or 1).
func (s *Store) Leave(ctx context.Context, eventID, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"event_id": eventID, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// IsParticipant reports whether the user has joined the event.
func (s *Store) IsParticipant(ctx context.Context, eventID, userID primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"event_id": eventID, "user_id": userID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountForEvent returns the number of participants for one event.
func (s *Store) CountForEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"event_id": eventID})
}

// ListForEvent returns one page of participation records for one
// event, oldest first.
func (s *Store) ListForEvent(ctx context.Context, eventID primitive.ObjectID, skip, limit int64) ([]models.Participation, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "joined_at", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"event_id": eventID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Participation
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EventIDsForUser returns the IDs of events the user has joined.
func (s *Store) EventIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"event_id": 1})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var doc struct {
			EventID primitive.ObjectID `bson:"event_id"`
		}
		if cur.Decode(&doc) == nil {
			ids = append(ids, doc.EventID)
		}
	}
	return ids, cur.Err()
}
