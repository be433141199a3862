// internal/domain/models/leadership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IwiLeadership grants a user elevated permissions scoped to one iwi.
// Uniqueness of the (iwi, user) pair is enforced by a database index.
type IwiLeadership struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	IwiID       primitive.ObjectID `bson:"iwi_id" json:"iwi_id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	CreatedByID primitive.ObjectID `bson:"created_by_id" json:"created_by_id"`
}

// HapuLeadership grants a user elevated permissions scoped to one hapū.
type HapuLeadership struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	HapuID      primitive.ObjectID `bson:"hapu_id" json:"hapu_id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	CreatedByID primitive.ObjectID `bson:"created_by_id" json:"created_by_id"`
}
