package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/BradenHooton/zkvault/internal/auth"
	"github.com/BradenHooton/zkvault/internal/models"
	"github.com/BradenHooton/zkvault/internal/repositories"
	"github.com/sethvargo/go-retry"
)

// SecretConfig holds store call bounds
type SecretConfig struct {
	Timeout         time.Duration
	ConflictRetries uint64
}

// SecretService owns the per-username TOTP secret pair
type SecretService struct {
	repo   repositories.CredentialRepository
	totp   *auth.TOTPManager
	sealer auth.Sealer
	logger *slog.Logger
	config SecretConfig
}

// NewSecretService creates a new secret service
func NewSecretService(
	repo repositories.CredentialRepository,
	totp *auth.TOTPManager,
	sealer auth.Sealer,
	logger *slog.Logger,
	config SecretConfig,
) *SecretService {
	if sealer == nil {
		sealer = auth.PlainSealer{}
	}
	return &SecretService{
		repo:   repo,
		totp:   totp,
		sealer: sealer,
		logger: logger,
		config: config,
	}
}

// GetOrCreateSecrets returns the username's secrets, generating and
// persisting a fresh pair on first use. Concurrent first calls for the
// same username all return the single pair that won the conditional write.
func (s *SecretService) GetOrCreateSecrets(ctx context.Context, username string) (*models.UserCredential, error) {
	cred, err := s.get(ctx, username)
	if err == nil {
		return s.open(cred)
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, upstream(err)
	}

	secretOne, err := s.totp.GenerateSecret()
	if err != nil {
		s.logger.Error("failed to generate TOTP secret", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	secretTwo, err := s.totp.GenerateSecret()
	if err != nil {
		s.logger.Error("failed to generate TOTP secret", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	sealedOne, err := s.sealer.Seal(secretOne)
	if err != nil {
		s.logger.Error("failed to seal secret", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	sealedTwo, err := s.sealer.Seal(secretTwo)
	if err != nil {
		s.logger.Error("failed to seal secret", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	stored, err := s.createIfAbsent(ctx, &models.UserCredential{
		Username:  username,
		SecretOne: sealedOne,
		SecretTwo: sealedTwo,
	})
	if errors.Is(err, models.ErrConflict) {
		stored, err = s.readBack(ctx, username)
	}
	if err != nil {
		return nil, upstream(err)
	}

	return s.open(stored)
}

// LookupSecrets returns the username's secrets or models.ErrUnregisteredUser
func (s *SecretService) LookupSecrets(ctx context.Context, username string) (*models.UserCredential, error) {
	cred, err := s.get(ctx, username)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrUnregisteredUser
	}
	if err != nil {
		return nil, upstream(err)
	}
	return s.open(cred)
}

// HealthCheck reports whether the backing store is reachable
func (s *SecretService) HealthCheck(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.repo.HealthCheck(ctx); err != nil {
		return upstream(err)
	}
	return nil
}

// readBack waits for the winning writer's record to become visible
func (s *SecretService) readBack(ctx context.Context, username string) (*models.UserCredential, error) {
	b := retry.NewFibonacci(10 * time.Millisecond)
	b = retry.WithMaxRetries(s.config.ConflictRetries, b)
	b = retry.WithCappedDuration(250*time.Millisecond, b)

	var cred *models.UserCredential
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		c, err := s.get(ctx, username)
		if errors.Is(err, models.ErrNotFound) {
			return retry.RetryableError(models.ErrConflict)
		}
		if err != nil {
			return err
		}
		cred = c
		return nil
	})
	if err != nil {
		s.logger.Warn("credential not visible after conflicting create",
			slog.Uint64("retries", s.config.ConflictRetries),
			slog.Any("error", err),
		)
		return nil, err
	}
	return cred, nil
}

func (s *SecretService) get(ctx context.Context, username string) (*models.UserCredential, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.Get(ctx, username)
}

func (s *SecretService) createIfAbsent(ctx context.Context, cred *models.UserCredential) (*models.UserCredential, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.CreateIfAbsent(ctx, cred)
}

func (s *SecretService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.config.Timeout)
}

// open returns a copy of cred with both secrets unsealed
func (s *SecretService) open(cred *models.UserCredential) (*models.UserCredential, error) {
	out := *cred

	var err error
	if out.SecretOne, err = s.sealer.Open(cred.SecretOne); err != nil {
		s.logger.Error("failed to open stored secret", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if out.SecretTwo, err = s.sealer.Open(cred.SecretTwo); err != nil {
		s.logger.Error("failed to open stored secret", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return &out, nil
}

// upstream tags a store failure so handlers can map it to 503
func upstream(err error) error {
	if errors.Is(err, models.ErrUpstreamStore) {
		return err
	}
	return fmt.Errorf("%w: %w", models.ErrUpstreamStore, err)
}
