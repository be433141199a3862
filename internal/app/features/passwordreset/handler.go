// internal/app/features/passwordreset/handler.go
package passwordreset

import (
	"time"

	uierrors "github.com/temanawa/iwihub/internal/app/features/errors"
	"github.com/temanawa/iwihub/internal/app/system/mailer"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the forgot-password flow: request a reset link by
// email, then set a new password via the emailed token.
type Handler struct {
	DB          *mongo.Database
	Mail        *mailer.Mailer
	ErrLog      *uierrors.ErrorLogger
	Log         *zap.Logger
	BaseURL     string
	TokenExpiry time.Duration
}

func NewHandler(db *mongo.Database, mail *mailer.Mailer, errLog *uierrors.ErrorLogger, logger *zap.Logger, baseURL string, tokenExpiry time.Duration) *Handler {
	return &Handler{
		DB:          db,
		Mail:        mail,
		ErrLog:      errLog,
		Log:         logger,
		BaseURL:     baseURL,
		TokenExpiry: tokenExpiry,
	}
}
