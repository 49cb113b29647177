package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/zkvault/internal/models"
	pkghttp "github.com/BradenHooton/zkvault/pkg/http"
)

// Client-facing error messages
const (
	msgUnregistered   = "Username not registered"
	msgInvalidOTP     = "Invalid OTP secrets"
	msgInvalidRequest = "Invalid request"
	msgUnavailable    = "Service unavailable"
	msgInternal       = "Internal server error"
	msgNotFound       = "Invalid endpoint"
)

// writeServiceError maps a service error to its status and body. Internal
// detail is logged, never written.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, models.ErrUnregisteredUser):
		pkghttp.WriteUnauthorized(w, msgUnregistered)
	case errors.Is(err, models.ErrInvalidOTP):
		pkghttp.WriteUnauthorized(w, msgInvalidOTP)
	case errors.Is(err, models.ErrUpstreamStore):
		logger.Error("secret store failure", slog.Any("error", err))
		pkghttp.WriteServiceUnavailable(w, msgUnavailable)
	default:
		logger.Error("request failed", slog.Any("error", err))
		pkghttp.WriteInternalError(w, msgInternal)
	}
}

// NotFound is the fallback for every unmatched path or method
func NotFound(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteNotFound(w, msgNotFound)
}
