package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/BradenHooton/zkvault/internal/models"
)

// MockCredentialRepository implements CredentialRepository for testing
type MockCredentialRepository struct {
	GetFunc            func(ctx context.Context, username string) (*models.UserCredential, error)
	CreateIfAbsentFunc func(ctx context.Context, cred *models.UserCredential) (*models.UserCredential, error)
	HealthCheckFunc    func(ctx context.Context) error
}

func (m *MockCredentialRepository) Get(ctx context.Context, username string) (*models.UserCredential, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockCredentialRepository) CreateIfAbsent(ctx context.Context, cred *models.UserCredential) (*models.UserCredential, error) {
	if m.CreateIfAbsentFunc != nil {
		return m.CreateIfAbsentFunc(ctx, cred)
	}
	return cred, nil
}

func (m *MockCredentialRepository) HealthCheck(ctx context.Context) error {
	if m.HealthCheckFunc != nil {
		return m.HealthCheckFunc(ctx)
	}
	return nil
}

// MockSecretProvider implements SecretProvider for testing
type MockSecretProvider struct {
	GetOrCreateSecretsFunc func(ctx context.Context, username string) (*models.UserCredential, error)
	LookupSecretsFunc      func(ctx context.Context, username string) (*models.UserCredential, error)
	HealthCheckFunc        func(ctx context.Context) error
}

func (m *MockSecretProvider) GetOrCreateSecrets(ctx context.Context, username string) (*models.UserCredential, error) {
	if m.GetOrCreateSecretsFunc != nil {
		return m.GetOrCreateSecretsFunc(ctx, username)
	}
	return nil, models.ErrInternalServer
}

func (m *MockSecretProvider) LookupSecrets(ctx context.Context, username string) (*models.UserCredential, error) {
	if m.LookupSecretsFunc != nil {
		return m.LookupSecretsFunc(ctx, username)
	}
	return nil, models.ErrUnregisteredUser
}

func (m *MockSecretProvider) HealthCheck(ctx context.Context) error {
	if m.HealthCheckFunc != nil {
		return m.HealthCheckFunc(ctx)
	}
	return nil
}

// discardLogger returns a logger that drops everything
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
