// internal/app/features/events/handler.go
package events

import (
	"github.com/dalemusser/waffle/pantry/storage"
	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the event calendar: listings, creation, RSVP, and the
// JSON feed.
type Handler struct {
	DB      *mongo.Database
	Storage storage.Store
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, store storage.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Storage: store,
		ErrLog:  errLog,
		Log:     logger,
	}
}
