// internal/app/features/notices/handler.go
package notices

import (
	"github.com/dalemusser/waffle/pantry/storage"
	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves notices: the member board, posting, editing, expiry,
// and the acknowledgment ledger.
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
