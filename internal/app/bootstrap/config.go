// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the portal. They
// are loaded through WAFFLE's config system, so each key can come from
// a config file (mongo_uri), an environment variable (IWIHUB_MONGO_URI),
// or a command-line flag (--mongo_uri).
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "iwihub", Desc: "MongoDB database name"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "iwihub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Citizenship document storage
	{Name: "storage_local_path", Default: "./uploads/documents", Desc: "Local storage path for citizenship documents"},
	{Name: "storage_local_url", Default: "/files/documents", Desc: "URL prefix for locally stored files"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@temanawa.example", Desc: "From email address"},
	{Name: "mail_from_name", Default: "Te Puna Iwi Portal", Desc: "From display name"},

	// Base URL for email links (password reset, verification results)
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for email links"},

	// Password reset settings
	{Name: "reset_token_expiry", Default: "1h", Desc: "Password reset link expiry (e.g., 30m, 1h)"},
}

// LoadConfig loads WAFFLE core config and app-specific config. It runs
// before any backends or handlers are built.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "IWIHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		BaseURL: appValues.String("base_url"),

		ResetTokenExpiry: appValues.Duration("reset_token_expiry", time.Hour),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation. The MongoDB
// URI format is checked here so a typo fails startup instead of the
// first connection attempt.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.ResetTokenExpiry < time.Minute {
		return fmt.Errorf("reset_token_expiry must be at least one minute, got %s", appCfg.ResetTokenExpiry)
	}

	return nil
}
