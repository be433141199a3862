// internal/app/store/resettokens/resettokenstore.go
package resettokenstore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c      *mongo.Collection
	expiry time.Duration
}

var ErrInvalidToken = errors.New("this reset link is invalid or has expired")

func New(db *mongo.Database, expiry time.Duration) *Store {
	return &Store{c: db.Collection("password_reset_tokens"), expiry: expiry}
}

// Create issues a fresh single-use token for the user.
func (s *Store) Create(ctx context.Context, userID primitive.ObjectID) (models.PasswordResetToken, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return models.PasswordResetToken{}, err
	}

	now := time.Now().UTC()
	t := models.PasswordResetToken{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Token:     hex.EncodeToString(buf),
		ExpiresAt: now.Add(s.expiry),
		CreatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.PasswordResetToken{}, err
	}
	return t, nil
}

// Consume looks a token up, deletes it, and returns the owning user ID.
// A token can be consumed exactly once; the delete-first shape means a
// raced second consume fails cleanly.
func (s *Store) Consume(ctx context.Context, token string) (primitive.ObjectID, error) {
	var t models.PasswordResetToken
	err := s.c.FindOneAndDelete(ctx, bson.M{"token": token}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return primitive.NilObjectID, ErrInvalidToken
	}
	if err != nil {
		return primitive.NilObjectID, err
	}
	if time.Now().UTC().After(t.ExpiresAt) {
		return primitive.NilObjectID, ErrInvalidToken
	}
	return t.UserID, nil
}

// CleanupExpired removes tokens past their expiry. Backup for when
// MongoDB's TTL sweep is delayed.
func (s *Store) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": time.Now().UTC()}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
