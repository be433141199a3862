// internal/app/store/events/eventstore.go
package eventstore

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
	return &Store{c: db.Collection("events")}
}

func (s *Store) Create(ctx context.Context, e models.Event) (models.Event, error) {
	e.ID = primitive.NewObjectID()
	e.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Event, error) {
	var e models.Event
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// VisibleFilter builds the listing filter for one member: public
// events, plus iwi/hapū events matching the member's affiliation or
// any unit they lead. Leading an iwi also covers the events of that
// iwi's hapū.
func VisibleFilter(iwiID, hapuID *primitive.ObjectID, ledIwiIDs, ledHapuIDs []primitive.ObjectID) bson.M {
	iwiIDs := append([]primitive.ObjectID{}, ledIwiIDs...)
	if iwiID != nil {
		iwiIDs = append(iwiIDs, *iwiID)
	}
	hapuIDs := append([]primitive.ObjectID{}, ledHapuIDs...)
	if hapuID != nil {
		hapuIDs = append(hapuIDs, *hapuID)
	}

	scopes := []bson.M{{"visibility": models.EventPublic}}
	if len(iwiIDs) > 0 {
		scopes = append(scopes, bson.M{"visibility": models.EventIwi, "iwi_id": bson.M{"$in": iwiIDs}})
	}
	if len(hapuIDs) > 0 {
		scopes = append(scopes, bson.M{"visibility": models.EventHapu, "hapu_id": bson.M{"$in": hapuIDs}})
	}
	if len(ledIwiIDs) > 0 {
		scopes = append(scopes, bson.M{"visibility": models.EventHapu, "iwi_id": bson.M{"$in": ledIwiIDs}})
	}
	return bson.M{"$or": scopes}
}

// ListUpcoming returns events matching the visibility filter that have
// not yet ended, soonest first. The filter is modified in place.
func (s *Store) ListUpcoming(ctx context.Context, visible bson.M) ([]models.Event, error) {
	visible["end_at"] = bson.M{"$gte": time.Now().UTC()}

	opts := options.Find().SetSort(bson.D{{Key: "start_at", Value: 1}})
	return s.Find(ctx, visible, opts)
}

// ListPast returns events matching the visibility filter that have
// ended, most recent first. The filter is modified in place.
func (s *Store) ListPast(ctx context.Context, visible bson.M) ([]models.Event, error) {
	visible["end_at"] = bson.M{"$lt": time.Now().UTC()}

	opts := options.Find().SetSort(bson.D{{Key: "start_at", Value: -1}})
	return s.Find(ctx, visible, opts)
}

// Find returns events matching the given filter with optional find options.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Event, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var events []models.Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Count returns the number of events matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
