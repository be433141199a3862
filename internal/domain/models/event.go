// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event visibility scopes.
const (
	EventPublic = "public"
	EventIwi    = "iwi"
	EventHapu   = "hapu"
)

// Event location types. Physical events carry an address; online events
// carry a URL. The two are mutually exclusive.
const (
	LocationPhysical = "physical"
	LocationOnline   = "online"
)

// Event is a calendar entry members can join.
type Event struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`

	StartAt time.Time `bson:"start_at" json:"start_at"`
	EndAt   time.Time `bson:"end_at" json:"end_at"`

	LocationType string `bson:"location_type" json:"location_type"`
	Location     string `bson:"location,omitempty" json:"location,omitempty"`
	OnlineURL    string `bson:"online_url,omitempty" json:"online_url,omitempty"`

	Visibility string              `bson:"visibility" json:"visibility"`
	IwiID      *primitive.ObjectID `bson:"iwi_id,omitempty" json:"iwi_id,omitempty"`
	HapuID     *primitive.ObjectID `bson:"hapu_id,omitempty" json:"hapu_id,omitempty"`

	AttachmentPath        string `bson:"attachment_path,omitempty" json:"-"`
	AttachmentName        string `bson:"attachment_name,omitempty" json:"attachment_name,omitempty"`
	AttachmentContentType string `bson:"attachment_content_type,omitempty" json:"-"`

	CreatedByID primitive.ObjectID `bson:"created_by_id" json:"created_by_id"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// LocationText returns the display string used in listings and the
// calendar feed.
func (e Event) LocationText() string {
	if e.LocationType == LocationOnline {
		return "Online Event"
	}
	if e.Location != "" {
		return e.Location
	}
	return "Location TBA"
}

// Participation records that a user joined an event. Joining is
// idempotent via the unique (event, user) index.
type Participation struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID  primitive.ObjectID `bson:"event_id" json:"event_id"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	JoinedAt time.Time          `bson:"joined_at" json:"joined_at"`
}
