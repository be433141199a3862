// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers framework-level settings (ports, TLS,
// logging, timeouts). AppConfig is everything specific to the portal:
// the MongoDB connection, session cookies, document storage, SMTP, and
// the base URL used when composing email links.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase string // Database name within MongoDB

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions
	SessionDomain string // Cookie domain (blank means current host)

	// Citizenship document storage. Documents are served through an
	// authenticated proxy, never from a public URL.
	StorageLocalPath string // Local storage path (e.g., "./uploads/documents")
	StorageLocalURL  string // URL prefix for locally stored files

	// Email/SMTP configuration
	MailSMTPHost string // SMTP server host
	MailSMTPPort int    // SMTP server port
	MailSMTPUser string // SMTP username (empty for local Mailpit)
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address
	MailFromName string // From display name

	// Base URL for email links (password reset, verification results)
	BaseURL string // e.g., "https://portal.temanawa.example" or "http://localhost:3000"

	// Password reset link lifetime
	ResetTokenExpiry time.Duration
}
