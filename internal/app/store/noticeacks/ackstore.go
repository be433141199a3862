// internal/app/store/noticeacks/ackstore.go
package ackstore

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
	return &Store{c: db.Collection("notice_acks")}
}

// Acknowledge records that the user saw the notice. Idempotent: the
// unique (notice, user) index absorbs repeat views, keeping the first
// acknowledgment timestamp.
func (s *Store) Acknowledge(ctx context.Context, noticeID, userID primitive.ObjectID) error {
	ack := models.Acknowledgment{
		ID:             primitive.NewObjectID(),
		NoticeID:       noticeID,
		UserID:         userID,
		AcknowledgedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, ack); err != nil {
		if wafflemongo.IsDup(err) {
			return nil
		}
		return err
	}
	return nil
}

// HasAcknowledged reports whether the user has seen the notice.
func (s *Store) HasAcknowledged(ctx context.Context, noticeID, userID primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"notice_id": noticeID, "user_id": userID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountForNotice returns how many members have acknowledged the notice.
func (s *Store) CountForNotice(ctx context.Context, noticeID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"notice_id": noticeID})
}

// ListForNotice returns the acknowledgments for a notice, newest first.
func (s *Store) ListForNotice(ctx context.Context, noticeID primitive.ObjectID) ([]models.Acknowledgment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "acknowledged_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"notice_id": noticeID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var acks []models.Acknowledgment
	if err := cur.All(ctx, &acks); err != nil {
		return nil, err
	}
	return acks, nil
}
