// internal/app/features/errors/errorlog.go
package errors

import (
	"net/http"

	"go.uber.org/zap"
)

// ErrorLogger pairs zap logging with the user-facing error pages so
// handlers report failures in one call. logMsg goes to the log with
// the error; userMsg is what the visitor sees.
type ErrorLogger struct {
	log *zap.Logger
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogServerError records an internal failure and renders the error
// page with a safe message.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Error(logMsg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method))

	w.WriteHeader(http.StatusInternalServerError)
	RenderError(w, r, userMsg, backURL)
}

// LogBadRequest records a malformed request and renders the error
// page. Logged at warn since these are usually client mistakes.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Warn(logMsg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method))

	w.WriteHeader(http.StatusBadRequest)
	RenderError(w, r, userMsg, backURL)
}
