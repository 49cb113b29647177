package repositories

import (
	"context"
	"sync"

	"github.com/BradenHooton/zkvault/internal/models"
)

// MemoryCredentialRepository keeps credentials in process memory.
// Used for local development and tests.
type MemoryCredentialRepository struct {
	mu    sync.RWMutex
	creds map[string]models.UserCredential
}

func NewMemoryCredentialRepository() *MemoryCredentialRepository {
	return &MemoryCredentialRepository{creds: make(map[string]models.UserCredential)}
}

func (r *MemoryCredentialRepository) Get(_ context.Context, username string) (*models.UserCredential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cred, ok := r.creds[username]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &cred, nil
}

func (r *MemoryCredentialRepository) CreateIfAbsent(_ context.Context, cred *models.UserCredential) (*models.UserCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.creds[cred.Username]; ok {
		return &existing, nil
	}

	rec := prepareCredential(cred)
	r.creds[rec.Username] = *rec
	out := *rec
	return &out, nil
}

func (r *MemoryCredentialRepository) HealthCheck(context.Context) error {
	return nil
}

// Len reports how many usernames are registered
func (r *MemoryCredentialRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.creds)
}
