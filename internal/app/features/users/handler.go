// internal/app/features/users/handler.go
package users

import (
	"github.com/dalemusser/waffle/pantry/storage"
	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"github.com/temanawa/iwihub/internal/app/system/mailer"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves member administration: verification, citizenship
// document review, and leadership assignment.
type Handler struct {
	DB      *mongo.Database
	Storage storage.Store
	Mail    *mailer.Mailer
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
	BaseURL string
}

func NewHandler(db *mongo.Database, store storage.Store, mail *mailer.Mailer, errLog *uierrors.ErrorLogger, logger *zap.Logger, baseURL string) *Handler {
	return &Handler{
		DB:      db,
		Storage: store,
		Mail:    mail,
		ErrLog:  errLog,
		Log:     logger,
		BaseURL: baseURL,
	}
}
