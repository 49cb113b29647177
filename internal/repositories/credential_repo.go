package repositories

import (
	"context"
	"time"

	"github.com/BradenHooton/zkvault/internal/models"
	"github.com/google/uuid"
)

// CredentialRepository persists the per-username TOTP secret pair.
// Credentials are immutable: there is no update or delete.
type CredentialRepository interface {
	// Get returns models.ErrNotFound when the username has no credential.
	Get(ctx context.Context, username string) (*models.UserCredential, error)

	// CreateIfAbsent stores cred unless the username already has a credential,
	// and returns whichever credential is stored afterwards. It returns
	// models.ErrConflict when another writer won but its record is not yet readable.
	CreateIfAbsent(ctx context.Context, cred *models.UserCredential) (*models.UserCredential, error)

	HealthCheck(ctx context.Context) error
}

// prepareCredential fills in the identity fields a new record needs
func prepareCredential(cred *models.UserCredential) *models.UserCredential {
	out := *cred
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now().UTC()
	}
	return &out
}
