package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/zkvault/internal/auth"
	"github.com/BradenHooton/zkvault/internal/clock"
	"github.com/BradenHooton/zkvault/internal/models"
	"github.com/BradenHooton/zkvault/internal/signing"
	"github.com/BradenHooton/zkvault/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// SecretProvider is the secret lookup the authorization flows depend on
type SecretProvider interface {
	GetOrCreateSecrets(ctx context.Context, username string) (*models.UserCredential, error)
	LookupSecrets(ctx context.Context, username string) (*models.UserCredential, error)
	HealthCheck(ctx context.Context) error
}

// AuthorizationConfig holds the enrollment labels for each factor
type AuthorizationConfig struct {
	IssuerOne string
	IssuerTwo string
}

// issuer returns the enrollment label for a factor
func (c AuthorizationConfig) issuer(f models.Factor) string {
	if f == models.FactorTwo {
		return c.IssuerTwo
	}
	return c.IssuerOne
}

// AuthorizationService runs the register and sign flows
type AuthorizationService struct {
	secrets SecretProvider
	keys    *signing.KeyRing
	totp    *auth.TOTPManager
	clock   clock.Clocker
	timing  *auth.TimingDelay
	audit   *logger.AuditLogger
	logger  *slog.Logger
	config  AuthorizationConfig
}

// NewAuthorizationService creates a new authorization service.
// A nil timing delay disables failure padding.
func NewAuthorizationService(
	secrets SecretProvider,
	keys *signing.KeyRing,
	totp *auth.TOTPManager,
	clk clock.Clocker,
	timing *auth.TimingDelay,
	audit *logger.AuditLogger,
	logger *slog.Logger,
	config AuthorizationConfig,
) *AuthorizationService {
	return &AuthorizationService{
		secrets: secrets,
		keys:    keys,
		totp:    totp,
		clock:   clk,
		timing:  timing,
		audit:   audit,
		logger:  logger,
		config:  config,
	}
}

// Register returns the two provisioning URIs for a username, creating its
// secrets on first call. Repeat calls derive URIs from the same secrets.
func (s *AuthorizationService) Register(ctx context.Context, username, clientIP string) (*models.Enrollment, error) {
	cred, err := s.secrets.GetOrCreateSecrets(ctx, username)
	if err != nil {
		s.logger.Error("failed to get or create secrets", slog.Any("error", err))
		s.audit.LogRegistration(ctx, username, clientIP, false, "store_error")
		return nil, err
	}

	var uris [2]string
	for i, f := range models.Factors {
		issuer := s.config.issuer(f)
		uris[i], err = s.totp.ProvisioningURI(cred.Secret(f), username+"@"+issuer, issuer)
		if err != nil {
			s.logger.Error("failed to build provisioning URI", slog.Any("error", err))
			s.audit.LogRegistration(ctx, username, clientIP, false, "uri_error")
			return nil, models.ErrInternalServer
		}
	}

	s.audit.LogRegistration(ctx, username, clientIP, true, "")

	return &models.Enrollment{URIOne: uris[0], URITwo: uris[1]}, nil
}

// Sign verifies each submitted code independently and signs one shared
// message with the key of every factor that passes. At least one factor
// must pass.
func (s *AuthorizationService) Sign(ctx context.Context, req models.SigningRequest) (*models.SignedMessages, error) {
	started := time.Now()
	now := s.clock.Now()

	event := logger.SignAuditEvent{
		AttemptID: uuid.New().String(),
		Username:  req.Username,
		RequestID: req.RequestID,
		IPAddress: req.ClientIP,
	}
	for _, f := range models.Factors {
		if req.Code(f) != "" {
			event.FactorsPresented++
		}
	}

	cred, err := s.secrets.LookupSecrets(ctx, req.Username)
	if err != nil {
		if errors.Is(err, models.ErrUnregisteredUser) {
			event.FailureReason = "unregistered_user"
			s.audit.LogSignAttempt(ctx, event)
			s.timing.WaitFrom(started)
			return nil, err
		}
		s.logger.Error("failed to look up secrets", slog.Any("error", err))
		event.FailureReason = "store_error"
		s.audit.LogSignAttempt(ctx, event)
		return nil, err
	}

	message := signing.BuildMessage(req.Username, req.RequestID, now.Unix())

	var (
		mu  sync.Mutex
		out models.SignedMessages
		g   errgroup.Group
	)
	for _, f := range models.Factors {
		g.Go(func() error {
			code := req.Code(f)
			if code == "" || !s.totp.Verify(cred.Secret(f), code, now) {
				return nil
			}

			result, err := s.keys.Signer(f).Sign(message)
			if err != nil {
				return fmt.Errorf("%s: %w", f, err)
			}

			mu.Lock()
			out.Set(f, result)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to sign message", slog.Any("error", err))
		event.FailureReason = "signing_error"
		s.audit.LogSignAttempt(ctx, event)
		return nil, err
	}

	event.FactorsValid = out.Len()
	if event.FactorsValid == 0 {
		event.FailureReason = "invalid_otp"
		s.audit.LogSignAttempt(ctx, event)
		s.timing.WaitFrom(started)
		return nil, models.ErrInvalidOTP
	}

	event.Success = true
	s.audit.LogSignAttempt(ctx, event)

	return &out, nil
}

// Signers returns the checksummed address of each factor's key
func (s *AuthorizationService) Signers() (one, two string) {
	return s.keys.Signer(models.FactorOne).Address().Hex(), s.keys.Signer(models.FactorTwo).Address().Hex()
}

// HealthCheck reports whether the secret store is reachable
func (s *AuthorizationService) HealthCheck(ctx context.Context) error {
	return s.secrets.HealthCheck(ctx)
}
