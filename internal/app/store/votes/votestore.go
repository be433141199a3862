// internal/app/store/votes/votestore.go
package votestore

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

type Store struct {
	c *mongo.Collection
}

// ErrAlreadyVoted is returned when the unique (proposal, user) index
// rejects a second ballot. Handlers insert first and map this error;
// there is deliberately no check-then-insert, which would race under
// concurrent submissions.
var ErrAlreadyVoted = errors.New("you have already voted on this consultation")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("votes")}
}

// Cast records a vote. The database index is the sole enforcement of
// one vote per user per proposal.
func (s *Store) Cast(ctx context.Context, proposalID, userID, optionID primitive.ObjectID) (models.Vote, error) {
	v := models.Vote{
		ID:         primitive.NewObjectID(),
		ProposalID: proposalID,
		UserID:     userID,
		OptionID:   optionID,
		VotedAt:    time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, v); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Vote{}, ErrAlreadyVoted
		}
		return models.Vote{}, err
	}
	return v, nil
}

// HasVoted reports whether the user already has a ballot on the proposal.
// Display-only; Cast is the authority on duplicates.
func (s *Store) HasVoted(ctx context.Context, proposalID, userID primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"proposal_id": proposalID, "user_id": userID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountByOption tallies ballots per option for one proposal.
func (s *Store) CountByOption(ctx context.Context, proposalID primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"proposal_id": proposalID}}},
		{{Key: "$group", Value: bson.M{"_id": "$option_id", "count": bson.M{"$sum": 1}}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	counts := make(map[primitive.ObjectID]int64)
	for cur.Next(ctx) {
		var row struct {
			OptionID primitive.ObjectID `bson:"_id"`
			Count    int64              `bson:"count"`
		}
		if cur.Decode(&row) == nil {
			counts[row.OptionID] = row.Count
		}
	}
	return counts, cur.Err()
}

// Total returns the total ballot count for one proposal.
func (s *Store) Total(ctx context.Context, proposalID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"proposal_id": proposalID})
}
