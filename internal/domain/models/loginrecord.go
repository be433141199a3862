// internal/domain/models/loginrecord.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoginRecord captures one sign-in attempt. Failed attempts are counted
// per email to throttle password guessing; records age out via a TTL
// index.
type LoginRecord struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`
	EmailCI   string              `bson:"email_ci" json:"email_ci"`
	IP        string              `bson:"ip" json:"ip"`
	UserAgent string              `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	Success   bool                `bson:"success" json:"success"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
}
