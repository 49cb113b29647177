package routes

import (
	"log/slog"
	"time"

	"github.com/BradenHooton/zkvault/internal/handlers"
	"github.com/BradenHooton/zkvault/internal/middleware"
	pkghttp "github.com/BradenHooton/zkvault/pkg/http"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RouterConfig holds the settings of the middleware chain
type RouterConfig struct {
	Env               string
	AllowedOrigins    []string
	IPConfig          *pkghttp.IPConfig
	RegisterPerMinute int
	SignPerMinute     int
	RequestTimeout    time.Duration
}

// NewRouter builds the application router with the full middleware chain
func NewRouter(cfg RouterConfig, h *handlers.AuthorizationHandler, logger *slog.Logger) chi.Router {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(middleware.ClientIP(cfg.IPConfig))
	router.Use(middleware.SecurityHeaders(middleware.SecurityHeadersConfig{Env: cfg.Env}))
	router.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: cfg.AllowedOrigins, MaxAge: 3600}))
	router.Use(middleware.SecureLogger(logger))
	router.Use(chimiddleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		router.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	}

	RegisterRoutes(router, h, cfg)

	return router
}

// RegisterRoutes registers all application routes
func RegisterRoutes(router chi.Router, h *handlers.AuthorizationHandler, cfg RouterConfig) {
	router.With(middleware.RateLimitByIP(middleware.RateLimitConfig{RequestsPerMinute: cfg.RegisterPerMinute})).
		Post("/register", h.Register)
	router.With(middleware.RateLimitByIP(middleware.RateLimitConfig{RequestsPerMinute: cfg.SignPerMinute})).
		Post("/sign", h.Sign)

	router.Get("/signers", h.Signers)
	router.Get("/health", h.Health)

	// Unknown paths and wrong methods share one answer
	router.NotFound(handlers.NotFound)
	router.MethodNotAllowed(handlers.NotFound)
}
