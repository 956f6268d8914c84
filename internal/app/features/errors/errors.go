// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/healthdash/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ErrorLogger wraps the zap logger for handler error logging.
type ErrorLogger struct {
	logger *zap.Logger
}

// NewErrorLogger creates a new ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{logger: logger}
}

func requestFields(r *http.Request, err error) []zap.Field {
	return []zap.Field{
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	}
}

// Log logs an unexpected error at Error level.
func (e *ErrorLogger) Log(r *http.Request, msg string, err error) {
	e.logger.Error(msg, requestFields(r, err)...)
}

// Warn logs a recoverable failure, such as the health API being unreachable.
func (e *ErrorLogger) Warn(r *http.Request, msg string, err error) {
	e.logger.Warn(msg, requestFields(r, err)...)
}

// LogWithFields logs an error with additional fields.
func (e *ErrorLogger) LogWithFields(r *http.Request, msg string, err error, fields ...zap.Field) {
	e.logger.Error(msg, append(requestFields(r, err), fields...)...)
}

// Handler provides error page handlers.
type Handler struct{}

// NewHandler creates a new error Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// PageVM is the view model for every error page.
type PageVM struct {
	viewdata.BaseVM
	Message string
}

func render(w http.ResponseWriter, r *http.Request, status int, page, title, msg string) {
	vm := PageVM{BaseVM: viewdata.NewBaseVM(r, title, "/"), Message: msg}
	w.WriteHeader(status)
	templates.Render(w, r, page, vm)
}

// Forbidden renders the 403 forbidden page.
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusForbidden, "errors/forbidden", "Access Denied",
		"You do not have permission to view this page.")
}

// Unauthorized renders the 401 unauthorized page.
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusUnauthorized, "errors/unauthorized", "Unauthorized",
		"Please sign in to continue.")
}

// NotFound renders the 404 not found page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusNotFound, "errors/not_found", "Not Found",
		"The page you were looking for does not exist.")
}

// InternalError renders the 500 internal server error page.
func (h *Handler) InternalError(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusInternalServerError, "errors/internal", "Server Error",
		"Something went wrong on our side. Please try again.")
}

// Unavailable renders the 503 page used when the health API cannot be reached.
func (h *Handler) Unavailable(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusServiceUnavailable, "errors/unavailable", "Service Unavailable",
		"The health data service is temporarily unavailable. Please try again shortly.")
}
