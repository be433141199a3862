// internal/domain/models/iwi.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Iwi is a top-level tribal organizational unit.
//
// Archiving hides an iwi from active listings and assignment dropdowns
// without deleting it; users, hapū, consultations, notices, and events
// keep their references to an archived iwi.
type Iwi struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"name_ci"` // lowercase, diacritics-stripped
	Description string             `bson:"description" json:"description"`

	IsArchived    bool                `bson:"is_archived" json:"is_archived"`
	ArchivedAt    *time.Time          `bson:"archived_at,omitempty" json:"archived_at,omitempty"`
	ArchivedByID  *primitive.ObjectID `bson:"archived_by_id,omitempty" json:"archived_by_id,omitempty"`
	ArchiveReason string              `bson:"archive_reason,omitempty" json:"archive_reason,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
