// internal/app/store/notices/noticestore.go
package noticestore

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
	return &Store{c: db.Collection("notices")}
}

func (s *Store) Create(ctx context.Context, n models.Notice) (models.Notice, error) {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return models.Notice{}, err
	}
	return n, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Notice, error) {
	var n models.Notice
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if err != nil {
		return models.Notice{}, err
	}
	return n, nil
}

// Update replaces the editable fields of a notice.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, n models.Notice) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"title":      n.Title,
		"content":    n.Content,
		"audience":   n.Audience,
		"iwi_id":     n.IwiID,
		"hapu_id":    n.HapuID,
		"priority":   n.Priority,
		"expires_at": n.ExpiresAt,
	}})
	return err
}

// Delete removes a notice and leaves its acknowledgments behind as an
// audit trail.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Expire ends a notice immediately by moving its expiry to now.
func (s *Store) Expire(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"expires_at": time.Now().UTC()}})
	return err
}

// VisibleFilter builds the listing filter for one member: ALL notices,
// plus iwi/hapū notices matching the member's affiliation or any unit
// they lead. Leading an iwi also covers the notices of that iwi's hapū.
func VisibleFilter(iwiID, hapuID *primitive.ObjectID, ledIwiIDs, ledHapuIDs []primitive.ObjectID) bson.M {
	iwiIDs := append([]primitive.ObjectID{}, ledIwiIDs...)
	if iwiID != nil {
		iwiIDs = append(iwiIDs, *iwiID)
	}
	hapuIDs := append([]primitive.ObjectID{}, ledHapuIDs...)
	if hapuID != nil {
		hapuIDs = append(hapuIDs, *hapuID)
	}

	scopes := []bson.M{{"audience": models.AudienceAll}}
	if len(iwiIDs) > 0 {
		scopes = append(scopes, bson.M{"audience": models.AudienceIwi, "iwi_id": bson.M{"$in": iwiIDs}})
	}
	if len(hapuIDs) > 0 {
		scopes = append(scopes, bson.M{"audience": models.AudienceHapu, "hapu_id": bson.M{"$in": hapuIDs}})
	}
	if len(ledIwiIDs) > 0 {
		scopes = append(scopes, bson.M{"audience": models.AudienceHapu, "iwi_id": bson.M{"$in": ledIwiIDs}})
	}
	return bson.M{"$or": scopes}
}

// ListActiveFor returns unexpired notices visible to the member,
// highest priority first, then newest.
func (s *Store) ListActiveFor(ctx context.Context, iwiID, hapuID *primitive.ObjectID, ledIwiIDs, ledHapuIDs []primitive.ObjectID) ([]models.Notice, error) {
	filter := VisibleFilter(iwiID, hapuID, ledIwiIDs, ledHapuIDs)
	filter["expires_at"] = bson.M{"$gt": time.Now().UTC()}

	opts := options.Find().SetSort(bson.D{
		{Key: "priority", Value: -1},
		{Key: "created_at", Value: -1},
	})
	return s.Find(ctx, filter, opts)
}

// Find returns notices matching the given filter with optional find options.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Notice, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var notices []models.Notice
	if err := cur.All(ctx, &notices); err != nil {
		return nil, err
	}
	return notices, nil
}

// Count returns the number of notices matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
