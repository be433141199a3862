// internal/app/store/proposals/proposalstore.go
package proposalstore

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
	return &Store{c: db.Collection("proposals")}
}

// Create inserts a proposal with fresh IDs for its voting options.
func (s *Store) Create(ctx context.Context, p models.Proposal) (models.Proposal, error) {
	p.ID = primitive.NewObjectID()
	for i := range p.Options {
		p.Options[i].ID = primitive.NewObjectID()
	}
	p.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Proposal{}, err
	}
	return p, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Proposal, error) {
	var p models.Proposal
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		return models.Proposal{}, err
	}
	return p, nil
}

// VisibleFilter builds the listing filter for one member: public
// proposals, plus iwi/hapū proposals matching the member's affiliation
// or any unit they lead. Leading an iwi also covers the consultations
// of that iwi's hapū. Drafts are excluded unless the caller is staff.
func VisibleFilter(iwiID, hapuID *primitive.ObjectID, ledIwiIDs, ledHapuIDs []primitive.ObjectID, includeDrafts bool) bson.M {
	iwiIDs := append([]primitive.ObjectID{}, ledIwiIDs...)
	if iwiID != nil {
		iwiIDs = append(iwiIDs, *iwiID)
	}
	hapuIDs := append([]primitive.ObjectID{}, ledHapuIDs...)
	if hapuID != nil {
		hapuIDs = append(hapuIDs, *hapuID)
	}

	scopes := []bson.M{{"type": models.ConsultationPublic}}
	if len(iwiIDs) > 0 {
		scopes = append(scopes, bson.M{"type": models.ConsultationIwi, "iwi_id": bson.M{"$in": iwiIDs}})
	}
	if len(hapuIDs) > 0 {
		scopes = append(scopes, bson.M{"type": models.ConsultationHapu, "hapu_id": bson.M{"$in": hapuIDs}})
	}
	if len(ledIwiIDs) > 0 {
		scopes = append(scopes, bson.M{"type": models.ConsultationHapu, "iwi_id": bson.M{"$in": ledIwiIDs}})
	}

	filter := bson.M{"$or": scopes}
	if !includeDrafts {
		filter["is_draft"] = false
	}
	return filter
}

// Find returns proposals matching the given filter with optional find options.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Proposal, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var proposals []models.Proposal
	if err := cur.All(ctx, &proposals); err != nil {
		return nil, err
	}
	return proposals, nil
}

// Count returns the number of proposals matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}

// Publish clears the draft flag.
func (s *Store) Publish(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"is_draft": false}})
	return err
}
