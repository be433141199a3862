// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User verification states. New registrations always start pending and
// move to verified or rejected by an admin or hapū-leader action; user
// records are never deleted.
const (
	StatePending  = "pending_verification"
	StateVerified = "verified"
	StateRejected = "rejected"
)

// VerificationStates lists all states for filter dropdowns.
var VerificationStates = []string{StatePending, StateVerified, StateRejected}

// User represents a registered member. Staff users administer the whole
// portal; leadership grants are stored in the iwi_leaderships and
// hapu_leaderships collections, not on the user document.
type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FullName     string              `bson:"full_name" json:"full_name"`
	FullNameCI   string              `bson:"full_name_ci" json:"full_name_ci"`
	Email        string              `bson:"email" json:"email"`
	EmailCI      string              `bson:"email_ci" json:"email_ci"`
	PasswordHash string              `bson:"password_hash" json:"-"`
	IwiID        *primitive.ObjectID `bson:"iwi_id,omitempty" json:"iwi_id,omitempty"`
	HapuID       *primitive.ObjectID `bson:"hapu_id,omitempty" json:"hapu_id,omitempty"`

	// Citizenship document uploaded at registration. Stored under a
	// protected path with a randomized filename and served only through
	// the authenticated proxy endpoint.
	DocumentPath        string `bson:"document_path,omitempty" json:"-"`
	DocumentName        string `bson:"document_name,omitempty" json:"-"`
	DocumentContentType string `bson:"document_content_type,omitempty" json:"-"`

	IsStaff bool   `bson:"is_staff" json:"is_staff"`
	State   string `bson:"state" json:"state"`

	RegisteredAt time.Time `bson:"registered_at" json:"registered_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// IsVerified reports whether the user may sign in.
func (u User) IsVerified() bool { return u.State == StateVerified }
