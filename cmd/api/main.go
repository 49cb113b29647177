package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BradenHooton/zkvault/internal/auth"
	"github.com/BradenHooton/zkvault/internal/clock"
	"github.com/BradenHooton/zkvault/internal/config"
	"github.com/BradenHooton/zkvault/internal/database"
	"github.com/BradenHooton/zkvault/internal/handlers"
	"github.com/BradenHooton/zkvault/internal/models"
	"github.com/BradenHooton/zkvault/internal/repositories"
	"github.com/BradenHooton/zkvault/internal/routes"
	"github.com/BradenHooton/zkvault/internal/services"
	"github.com/BradenHooton/zkvault/internal/signing"
	pkghttp "github.com/BradenHooton/zkvault/pkg/http"
	pkglogger "github.com/BradenHooton/zkvault/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Server.LogLevel)}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("store", cfg.Store.Backend),
	)

	// Key material is validated before anything can be served
	keys, err := signing.NewKeyRing(cfg.Signing.PrivateKeyOne, cfg.Signing.PrivateKeyTwo)
	if err != nil {
		logger.Error("invalid signing key configuration", slog.Any("error", err))
		os.Exit(1)
	}
	one, two := keys.Signer(models.FactorOne).Address(), keys.Signer(models.FactorTwo).Address()
	logger.Info("signing keys loaded",
		slog.String("signer_one", one.Hex()),
		slog.String("signer_two", two.Hex()),
	)

	// Initialize secret store
	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	repo, closeStore, err := openStore(startCtx, cfg, logger)
	startCancel()
	if err != nil {
		logger.Error("failed to initialize secret store", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	var sealer auth.Sealer = auth.PlainSealer{}
	if cfg.Store.EncryptionKey != nil {
		sealer, err = auth.NewSecretSealer(cfg.Store.EncryptionKey)
		if err != nil {
			logger.Error("failed to initialize secret sealer", slog.Any("error", err))
			os.Exit(1)
		}
	} else {
		logger.Warn("SECRET_ENCRYPTION_KEY not set, TOTP secrets are stored unsealed")
	}

	ipConfig, err := pkghttp.NewIPConfig(cfg.Server.TrustedProxies)
	if err != nil {
		logger.Error("invalid TRUSTED_PROXIES", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize services
	totpManager := auth.NewTOTPManager(auth.TOTPConfig{Period: cfg.OTP.Period, Skew: cfg.OTP.Skew})
	auditLogger := pkglogger.NewAuditLogger(logger)
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   cfg.Timing.BaseDelayMs,
		RandomDelayMs: cfg.Timing.RandomDelayMs,
	})

	secretService := services.NewSecretService(repo, totpManager, sealer, logger, services.SecretConfig{
		Timeout:         cfg.Store.Timeout,
		ConflictRetries: cfg.Store.ConflictRetries,
	})
	authorizationService := services.NewAuthorizationService(
		secretService,
		keys,
		totpManager,
		clock.New(),
		timingDelay,
		auditLogger,
		logger,
		services.AuthorizationConfig{IssuerOne: cfg.OTP.IssuerOne, IssuerTwo: cfg.OTP.IssuerTwo},
	)

	// Setup router
	router := routes.NewRouter(routes.RouterConfig{
		Env:               cfg.Server.Env,
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		IPConfig:          ipConfig,
		RegisterPerMinute: cfg.RateLimit.RegisterPerMinute,
		SignPerMinute:     cfg.RateLimit.SignPerMinute,
		RequestTimeout:    cfg.Server.WriteTimeout,
	}, handlers.NewAuthorizationHandler(authorizationService, logger), logger)

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// openStore connects the configured credential backend. The returned
// function releases its connections.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.CredentialRepository, func(), error) {
	switch cfg.Store.Backend {
	case config.StorePostgres:
		db, err := database.NewConnection(&cfg.Database, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if cfg.Database.AutoMigrate {
			if err := db.Migrate(ctx); err != nil {
				db.Close()
				return nil, nil, err
			}
		}
		return repositories.NewPostgresCredentialRepository(db), db.Close, nil

	case config.StoreDynamoDB:
		client, err := repositories.NewDynamoDBClient(ctx, cfg.DynamoDB)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("dynamodb store configured",
			slog.String("table", cfg.DynamoDB.Table),
			slog.String("region", cfg.DynamoDB.Region),
		)
		return repositories.NewDynamoDBCredentialRepository(client, cfg.DynamoDB.Table), func() {}, nil

	case config.StoreRedis:
		client, err := repositories.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("redis store connected")
		return repositories.NewRedisCredentialRepository(client, cfg.Redis.KeyPrefix), func() { _ = client.Close() }, nil

	case config.StoreMemory:
		logger.Warn("using in-memory secret store, registrations are lost on restart")
		return repositories.NewMemoryCredentialRepository(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
