// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	consultationsfeature "github.com/temanawa/iwihub/internal/app/features/consultations"
	dashboardfeature "github.com/temanawa/iwihub/internal/app/features/dashboard"
	errorsfeature "github.com/temanawa/iwihub/internal/app/features/errors"
	eventsfeature "github.com/temanawa/iwihub/internal/app/features/events"
	hapusfeature "github.com/temanawa/iwihub/internal/app/features/hapus"
	healthfeature "github.com/temanawa/iwihub/internal/app/features/health"
	homefeature "github.com/temanawa/iwihub/internal/app/features/home"
	iwisfeature "github.com/temanawa/iwihub/internal/app/features/iwis"
	loginfeature "github.com/temanawa/iwihub/internal/app/features/login"
	logoutfeature "github.com/temanawa/iwihub/internal/app/features/logout"
	noticesfeature "github.com/temanawa/iwihub/internal/app/features/notices"
	passwordresetfeature "github.com/temanawa/iwihub/internal/app/features/passwordreset"
	registerfeature "github.com/temanawa/iwihub/internal/app/features/register"
	usersfeature "github.com/temanawa/iwihub/internal/app/features/users"
	resettokenstore "github.com/temanawa/iwihub/internal/app/store/resettokens"
	userstore "github.com/temanawa/iwihub/internal/app/store/users"
	"github.com/temanawa/iwihub/internal/app/system/auth"
	"github.com/temanawa/iwihub/internal/app/system/mailer"
	"github.com/temanawa/iwihub/internal/app/system/workers"
	"go.uber.org/zap"
)

// tokenCleanup is stopped from Shutdown.
var tokenCleanup *workers.TokenCleanup

// BuildHandler constructs the root HTTP handler for the portal.
//
// WAFFLE calls this after configuration, DB connection, and schema
// setup have completed. It boots the template engine, builds the
// shared session/mail/storage plumbing, and mounts one feature router
// per application area.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser fetches fresh user data on each request, so
	// verification decisions and leadership changes take effect
	// without a new sign-in.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	// Boot the template engine once at startup. Dev mode enables
	// template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Citizenship documents live on local disk and are served through
	// the authenticated proxy in the users feature.
	docStore, err := storage.NewLocal(storage.LocalConfig{
		BasePath: appCfg.StorageLocalPath,
		BaseURL:  appCfg.StorageLocalURL,
	})
	if err != nil {
		logger.Error("document storage init failed", zap.Error(err))
		return nil, err
	}

	mail := mailer.New(
		appCfg.MailSMTPHost, appCfg.MailSMTPPort,
		appCfg.MailSMTPUser, appCfg.MailSMTPPass,
		appCfg.MailFrom, appCfg.MailFromName,
		logger,
	)

	errLog := errorsfeature.NewErrorLogger(logger)

	// Expired reset tokens are also swept by a TTL index; the worker
	// keeps the collection tidy between sweeps.
	tokens := resettokenstore.New(deps.MongoDatabase, appCfg.ResetTokenExpiry)
	tokenCleanup = workers.NewTokenCleanup(tokens, logger, time.Hour)
	tokenCleanup.Start()

	r := chi.NewRouter()

	// Global middleware: session user into context, then CSRF
	// protection for every form post.
	r.Use(sessionMgr.LoadSessionUser)
	r.Use(csrf.Protect([]byte(appCfg.SessionKey), csrf.Secure(secure), csrf.Path("/")))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	registerHandler := registerfeature.NewHandler(deps.MongoDatabase, docStore, mail, errLog, logger)
	r.Mount("/register", registerfeature.Routes(registerHandler))

	// The registration form loads hapū options for the chosen iwi
	// before the visitor has a session, so this stays public.
	hapusHandler := hapusfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/api/hapus", hapusfeature.APIRoutes(hapusHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	resetHandler := passwordresetfeature.NewHandler(deps.MongoDatabase, mail, errLog, logger, appCfg.BaseURL, appCfg.ResetTokenExpiry)
	r.Mount("/password-reset", passwordresetfeature.Routes(resetHandler))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Member pages
	dashboardHandler := dashboardfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	consultationsHandler := consultationsfeature.NewHandler(deps.MongoDatabase, mail, errLog, logger, appCfg.BaseURL)
	r.Mount("/consultations", consultationsfeature.Routes(consultationsHandler, sessionMgr))

	noticesHandler := noticesfeature.NewHandler(deps.MongoDatabase, docStore, errLog, logger)
	r.Mount("/notices", noticesfeature.Routes(noticesHandler, sessionMgr))

	eventsHandler := eventsfeature.NewHandler(deps.MongoDatabase, docStore, errLog, logger)
	r.Mount("/events", eventsfeature.Routes(eventsHandler, sessionMgr))

	// Administration
	iwisHandler := iwisfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/admin/iwis", iwisfeature.Routes(iwisHandler, sessionMgr))

	r.Mount("/admin/hapus", hapusfeature.Routes(hapusHandler, sessionMgr))

	usersHandler := usersfeature.NewHandler(deps.MongoDatabase, docStore, mail, errLog, logger, appCfg.BaseURL)
	r.Mount("/admin/users", usersfeature.Routes(usersHandler, sessionMgr))

	return r, nil
}
