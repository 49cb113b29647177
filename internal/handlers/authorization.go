package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/zkvault/internal/auth"
	"github.com/BradenHooton/zkvault/internal/middleware"
	"github.com/BradenHooton/zkvault/internal/models"
	"github.com/BradenHooton/zkvault/internal/services"
	pkghttp "github.com/BradenHooton/zkvault/pkg/http"
)

const (
	maxBodyBytes = 16 << 10
	qrImageSize  = 256
)

// AuthorizationHandler handles registration and signing requests
type AuthorizationHandler struct {
	service *services.AuthorizationService
	logger  *slog.Logger
}

// NewAuthorizationHandler creates a new authorization handler
func NewAuthorizationHandler(service *services.AuthorizationService, logger *slog.Logger) *AuthorizationHandler {
	return &AuthorizationHandler{
		service: service,
		logger:  logger,
	}
}

// Register handles POST /register
func (h *AuthorizationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	enrollment, err := h.service.Register(r.Context(), req.Username, middleware.GetClientIP(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	resp := RegisterResponse{
		QRURIOne: enrollment.URIOne,
		QRURITwo: enrollment.URITwo,
	}

	if r.URL.Query().Get("format") == "png" {
		if resp.QRPNGOne, err = auth.QRCodeDataURL(enrollment.URIOne, qrImageSize); err == nil {
			resp.QRPNGTwo, err = auth.QRCodeDataURL(enrollment.URITwo, qrImageSize)
		}
		if err != nil {
			h.logger.Error("failed to render QR code", slog.Any("error", err))
			pkghttp.WriteInternalError(w, msgInternal)
			return
		}
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// Sign handles POST /sign
func (h *AuthorizationHandler) Sign(w http.ResponseWriter, r *http.Request) {
	var req SignRequest
	if !h.decode(w, r, &req) {
		return
	}

	out, err := h.service.Sign(r.Context(), models.SigningRequest{
		Username:  req.Username,
		RequestID: req.RequestID,
		CodeOne:   string(req.OTPSecretOne),
		CodeTwo:   string(req.OTPSecretTwo),
		ClientIP:  middleware.GetClientIP(r.Context()),
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, SignResponse{
		SignedMessageOne: out.Get(models.FactorOne),
		SignedMessageTwo: out.Get(models.FactorTwo),
	})
}

// Signers handles GET /signers
func (h *AuthorizationHandler) Signers(w http.ResponseWriter, r *http.Request) {
	one, two := h.service.Signers()
	pkghttp.WriteJSON(w, http.StatusOK, SignersResponse{SignerOne: one, SignerTwo: two})
}

// Health handles GET /health
func (h *AuthorizationHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.service.HealthCheck(r.Context()); err != nil {
		h.logger.Warn("health check failed", slog.Any("error", err))
		pkghttp.WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy"})
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

// decode reads and validates a JSON body, writing a 400 on failure
func (h *AuthorizationHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		pkghttp.WriteBadRequest(w, msgInvalidRequest)
		return false
	}

	if err := ValidateRequest(dst); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return false
	}
	return true
}
