// internal/app/features/consultations/handler.go
package consultations

import (
	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"github.com/temanawa/iwihub/internal/app/system/mailer"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves consultations: listing, creation, voting, feedback,
// results, and comment moderation.
type Handler struct {
	DB      *mongo.Database
	Mail    *mailer.Mailer
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
	BaseURL string
}

func NewHandler(db *mongo.Database, mail *mailer.Mailer, errLog *uierrors.ErrorLogger, logger *zap.Logger, baseURL string) *Handler {
	return &Handler{
		DB:      db,
		Mail:    mail,
		ErrLog:  errLog,
		Log:     logger,
		BaseURL: baseURL,
	}
}
