// internal/app/store/hapus/hapustore.go
package hapustore

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

var (
	ErrDuplicateHapu   = errors.New("an active hapū with this name already exists in this iwi")
	ErrAlreadyArchived = errors.New("hapū is already archived")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("hapus")}
}

func (s *Store) Create(ctx context.Context, hapu models.Hapu) (models.Hapu, error) {
	now := time.Now().UTC()
	hapu.ID = primitive.NewObjectID()
	hapu.NameCI = text.Fold(hapu.Name)
	hapu.IsArchived = false
	hapu.CreatedAt = now
	hapu.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, hapu); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Hapu{}, ErrDuplicateHapu
		}
		return models.Hapu{}, err
	}
	return hapu, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Hapu, error) {
	var hapu models.Hapu
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&hapu)
	if err != nil {
		return models.Hapu{}, err
	}
	return hapu, nil
}

// GetByIDs loads multiple hapū by their ObjectIDs.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Hapu, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var hapus []models.Hapu
	if err := cur.All(ctx, &hapus); err != nil {
		return nil, err
	}
	return hapus, nil
}

// Update modifies a hapū's name and description and refreshes UpdatedAt.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, name, description string) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if name != "" {
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	if description != "" {
		set["description"] = description
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateHapu
		}
		return err
	}
	return nil
}

// Archive marks the hapū archived with the actor recorded.
func (s *Store) Archive(ctx context.Context, id, archivedBy primitive.ObjectID) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "is_archived": false},
		bson.M{"$set": bson.M{
			"is_archived":    true,
			"archived_at":    now,
			"archived_by_id": archivedBy,
			"updated_at":     now,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrAlreadyArchived
	}
	return nil
}

// ArchiveByIwi archives every active hapū under the iwi. Called when
// the parent iwi is archived; returns the number of hapū affected.
func (s *Store) ArchiveByIwi(ctx context.Context, iwiID, archivedBy primitive.ObjectID) (int64, error) {
	now := time.Now().UTC()
	res, err := s.c.UpdateMany(ctx,
		bson.M{"iwi_id": iwiID, "is_archived": false},
		bson.M{"$set": bson.M{
			"is_archived":    true,
			"archived_at":    now,
			"archived_by_id": archivedBy,
			"updated_at":     now,
		}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// Unarchive restores an archived hapū to active. Fails with
// ErrDuplicateHapu when the name is taken by another active hapū of
// the same iwi.
func (s *Store) Unarchive(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "is_archived": true},
		bson.M{
			"$set": bson.M{
				"is_archived": false,
				"updated_at":  time.Now().UTC(),
			},
			"$unset": bson.M{
				"archived_at":    "",
				"archived_by_id": "",
			},
		})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateHapu
		}
		return err
	}
	return nil
}

// Transfer moves the hapū to a new parent iwi and reactivates it.
// Policy checks (parent archived, target active) happen before this call.
func (s *Store) Transfer(ctx context.Context, id, newIwiID primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"iwi_id":      newIwiID,
			"is_archived": false,
			"updated_at":  time.Now().UTC(),
		},
		"$unset": bson.M{
			"archived_at":    "",
			"archived_by_id": "",
		},
	})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateHapu
		}
		return err
	}
	return nil
}

// ListActiveByIwi returns the non-archived hapū of one iwi sorted by
// folded name. Used for registration and notice-target dropdowns.
func (s *Store) ListActiveByIwi(ctx context.Context, iwiID primitive.ObjectID) ([]models.Hapu, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"iwi_id": iwiID, "is_archived": false}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var hapus []models.Hapu
	if err := cur.All(ctx, &hapus); err != nil {
		return nil, err
	}
	return hapus, nil
}

// ListByIwi returns all hapū of one iwi, archived included.
func (s *Store) ListByIwi(ctx context.Context, iwiID primitive.ObjectID) ([]models.Hapu, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"iwi_id": iwiID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var hapus []models.Hapu
	if err := cur.All(ctx, &hapus); err != nil {
		return nil, err
	}
	return hapus, nil
}

// Find returns hapū matching the given filter with optional find options.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Hapu, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var hapus []models.Hapu
	if err := cur.All(ctx, &hapus); err != nil {
		return nil, err
	}
	return hapus, nil
}

// Count returns the number of hapū matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
