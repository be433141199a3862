// internal/app/store/comments/commentstore.go
package commentstore

import (
	"context"
	"time"

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
	return &Store{c: db.Collection("proposal_comments")}
}

// Create inserts a comment. Callers pass userID=nil when the proposal
// requires anonymous feedback; comments await moderation.
func (s *Store) Create(ctx context.Context, proposalID primitive.ObjectID, userID *primitive.ObjectID, text string) (models.Comment, error) {
	c := models.Comment{
		ID:         primitive.NewObjectID(),
		ProposalID: proposalID,
		UserID:     userID,
		Text:       text,
		IsApproved: false,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Comment{}, err
	}
	return c, nil
}

// ListApproved returns moderated comments for a proposal, oldest first.
func (s *Store) ListApproved(ctx context.Context, proposalID primitive.ObjectID) ([]models.Comment, error) {
	return s.list(ctx, bson.M{"proposal_id": proposalID, "is_approved": true})
}

// ListAll returns every comment for a proposal, for moderators.
func (s *Store) ListAll(ctx context.Context, proposalID primitive.ObjectID) ([]models.Comment, error) {
	return s.list(ctx, bson.M{"proposal_id": proposalID})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var comments []models.Comment
	if err := cur.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// SetApproved toggles a comment's moderation flag. Returns the number
// matched (0 or 1).
func (s *Store) SetApproved(ctx context.Context, id primitive.ObjectID, approved bool) (int64, error) {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"is_approved": approved}})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// Delete removes a comment. Returns the number deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
