// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateEmail = errors.New("this email is already registered")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// Create inserts a new registration in the pending state.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.FullNameCI = text.Fold(u.FullName)
	u.EmailCI = text.Fold(u.Email)
	if u.State == "" {
		u.State = models.StatePending
	}
	u.RegisteredAt = now
	u.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetByEmail looks a user up by case-folded email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(email)}).Decode(&u)
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetByIDs loads multiple users by their ObjectIDs.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ExistsByEmail checks whether any account uses the email.
func (s *Store) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(email)}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SetState moves a user between verification states.
func (s *Store) SetState(ctx context.Context, id primitive.ObjectID, state string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"state":      state,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// SetPasswordHash replaces the stored bcrypt hash.
func (s *Store) SetPasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	}})
	return err
}

// UpdateProfile changes the user's display name and affiliation.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, fullName string, iwiID, hapuID *primitive.ObjectID) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if fullName != "" {
		set["full_name"] = fullName
		set["full_name_ci"] = text.Fold(fullName)
	}
	update := bson.M{"$set": set}
	if iwiID != nil {
		set["iwi_id"] = *iwiID
	}
	if hapuID != nil {
		set["hapu_id"] = *hapuID
	}
	_, err := s.c.UpdateByID(ctx, id, update)
	return err
}

// Find returns users matching the given filter with optional find options.
// The caller builds the filter and options (pagination, sorting, projection).
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.User, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Count returns the number of users matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}

// VerifiedIDsByScope returns the IDs of verified members of an iwi or
// hapū. Used to fan out consultation notifications.
func (s *Store) VerifiedIDsByScope(ctx context.Context, iwiID, hapuID *primitive.ObjectID) ([]primitive.ObjectID, error) {
	filter := bson.M{"state": models.StateVerified}
	if iwiID != nil {
		filter["iwi_id"] = *iwiID
	}
	if hapuID != nil {
		filter["hapu_id"] = *hapuID
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if cur.Decode(&doc) == nil {
			ids = append(ids, doc.ID)
		}
	}
	return ids, cur.Err()
}

// VerifiedEmailsByScope returns the email addresses of verified members
// of an iwi or hapū (or of everyone when both IDs are nil).
func (s *Store) VerifiedEmailsByScope(ctx context.Context, iwiID, hapuID *primitive.ObjectID) ([]string, error) {
	filter := bson.M{"state": models.StateVerified}
	if iwiID != nil {
		filter["iwi_id"] = *iwiID
	}
	if hapuID != nil {
		filter["hapu_id"] = *hapuID
	}
	opts := options.Find().SetProjection(bson.M{"email": 1})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var emails []string
	for cur.Next(ctx) {
		var doc struct {
			Email string `bson:"email"`
		}
		if cur.Decode(&doc) == nil && doc.Email != "" {
			emails = append(emails, doc.Email)
		}
	}
	return emails, cur.Err()
}
