// internal/app/store/logins/loginstore.go
package loginstore

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/temanawa/iwihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Throttling parameters for failed sign-ins.
const (
	MaxFailures   = 5
	FailureWindow = 15 * time.Minute
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("login_records")}
}

// Record inserts a sign-in attempt built from the HTTP request. userID
// is nil when the email did not match an account.
func (s *Store) Record(ctx context.Context, r *http.Request, email string, userID *primitive.ObjectID, success bool) error {
	rec := models.LoginRecord{
		UserID:    userID,
		EmailCI:   text.Fold(email),
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.c.InsertOne(ctx, rec)
	return err
}

// IsThrottled reports whether the email has accumulated too many
// recent failures and should be refused before password checking.
func (s *Store) IsThrottled(ctx context.Context, email string) (bool, error) {
	since := time.Now().UTC().Add(-FailureWindow)
	n, err := s.c.CountDocuments(ctx, bson.M{
		"email_ci":   text.Fold(email),
		"success":    false,
		"created_at": bson.M{"$gte": since},
	})
	if err != nil {
		return false, err
	}
	return n >= MaxFailures, nil
}

// clientIP extracts the client address, preferring proxy headers
// (X-Forwarded-For, then X-Real-IP) over RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// XFF may contain a list; first is the original client
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xr := r.Header.Get("X-Real-IP"); xr != "" {
		return strings.TrimSpace(xr)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
