// internal/app/features/register/handler.go
package register

import (
	"github.com/dalemusser/waffle/pantry/storage"
	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"github.com/temanawa/iwihub/internal/app/system/mailer"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves member registration, including the citizenship
// document upload.
type Handler struct {
	DB      *mongo.Database
	Storage storage.Store
	Mail    *mailer.Mailer
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, store storage.Store, mail *mailer.Mailer, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Storage: store,
		Mail:    mail,
		ErrLog:  errLog,
		Log:     logger,
	}
}
