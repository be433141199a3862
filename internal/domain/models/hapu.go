// internal/domain/models/hapu.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Hapu is a sub-unit nested under exactly one Iwi.
//
// A hapū shares the iwi archive lifecycle and may be transferred to a
// different iwi, but only while its current parent is archived.
type Hapu struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	IwiID       primitive.ObjectID `bson:"iwi_id" json:"iwi_id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"name_ci"`
	Description string             `bson:"description" json:"description"`

	IsArchived   bool                `bson:"is_archived" json:"is_archived"`
	ArchivedAt   *time.Time          `bson:"archived_at,omitempty" json:"archived_at,omitempty"`
	ArchivedByID *primitive.ObjectID `bson:"archived_by_id,omitempty" json:"archived_by_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
