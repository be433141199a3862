// internal/app/store/iwis/iwistore.go
package iwistore

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
	ErrDuplicateIwi    = errors.New("an active iwi with this name already exists")
	ErrAlreadyArchived = errors.New("iwi is already archived")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("iwis")}
}

func (s *Store) Create(ctx context.Context, iwi models.Iwi) (models.Iwi, error) {
	now := time.Now().UTC()
	iwi.ID = primitive.NewObjectID()
	iwi.NameCI = text.Fold(iwi.Name)
	iwi.IsArchived = false
	iwi.CreatedAt = now
	iwi.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, iwi); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Iwi{}, ErrDuplicateIwi
		}
		return models.Iwi{}, err
	}
	return iwi, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Iwi, error) {
	var iwi models.Iwi
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&iwi)
	if err != nil {
		return models.Iwi{}, err
	}
	return iwi, nil
}

// GetByIDs loads multiple iwi by their ObjectIDs.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Iwi, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var iwis []models.Iwi
	if err := cur.All(ctx, &iwis); err != nil {
		return nil, err
	}
	return iwis, nil
}

// Update modifies an iwi's name and description and refreshes UpdatedAt.
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
			return ErrDuplicateIwi
		}
		return err
	}
	return nil
}

// Archive marks the iwi archived with the actor and reason. Archiving
// an already-archived iwi fails so the original archive record is kept.
func (s *Store) Archive(ctx context.Context, id, archivedBy primitive.ObjectID, reason string) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "is_archived": false},
		bson.M{"$set": bson.M{
			"is_archived":    true,
			"archived_at":    now,
			"archived_by_id": archivedBy,
			"archive_reason": reason,
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

// Unarchive restores an archived iwi to active. Fails with
// ErrDuplicateIwi when another active iwi has since taken the name.
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
				"archive_reason": "",
			},
		})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateIwi
		}
		return err
	}
	return nil
}

// ListActive returns all non-archived iwi sorted by folded name. Used
// for dropdowns; paged listings go through Find.
func (s *Store) ListActive(ctx context.Context) ([]models.Iwi, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"is_archived": false}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var iwis []models.Iwi
	if err := cur.All(ctx, &iwis); err != nil {
		return nil, err
	}
	return iwis, nil
}

// Find returns iwi matching the given filter with optional find options.
// The caller builds the filter and options (pagination, sorting).
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Iwi, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var iwis []models.Iwi
	if err := cur.All(ctx, &iwis); err != nil {
		return nil, err
	}
	return iwis, nil
}

// Count returns the number of iwi matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
