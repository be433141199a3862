// internal/domain/models/notice.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notice audience scopes.
const (
	AudienceAll  = "all"
	AudienceIwi  = "iwi"
	AudienceHapu = "hapu"
)

// Notice priority bounds (1 lowest, 10 highest).
const (
	MinNoticePriority = 1
	MaxNoticePriority = 10
)

// Notice is a scoped announcement with an expiry. A notice is active
// while now < ExpiresAt; expiring a notice simply sets ExpiresAt to now.
type Notice struct {
	ID       primitive.ObjectID  `bson:"_id" json:"id"`
	Title    string              `bson:"title" json:"title"`
	Content  string              `bson:"content" json:"content"` // sanitized HTML
	Audience string              `bson:"audience" json:"audience"`
	IwiID    *primitive.ObjectID `bson:"iwi_id,omitempty" json:"iwi_id,omitempty"`
	HapuID   *primitive.ObjectID `bson:"hapu_id,omitempty" json:"hapu_id,omitempty"`
	Priority int                 `bson:"priority" json:"priority"`

	AttachmentPath        string `bson:"attachment_path,omitempty" json:"-"`
	AttachmentName        string `bson:"attachment_name,omitempty" json:"attachment_name,omitempty"`
	AttachmentContentType string `bson:"attachment_content_type,omitempty" json:"-"`

	ExpiresAt   time.Time          `bson:"expires_at" json:"expires_at"`
	CreatedByID primitive.ObjectID `bson:"created_by_id" json:"created_by_id"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// IsActive reports whether the notice has not yet expired.
func (n Notice) IsActive(now time.Time) bool { return now.Before(n.ExpiresAt) }

// Acknowledgment records that a user has seen a notice. Created on first
// view; the unique (notice, user) index makes repeat views no-ops.
type Acknowledgment struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	NoticeID       primitive.ObjectID `bson:"notice_id" json:"notice_id"`
	UserID         primitive.ObjectID `bson:"user_id" json:"user_id"`
	AcknowledgedAt time.Time          `bson:"acknowledged_at" json:"acknowledged_at"`
}
