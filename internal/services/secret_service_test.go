package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/BradenHooton/zkvault/internal/auth"
	"github.com/BradenHooton/zkvault/internal/models"
	"github.com/BradenHooton/zkvault/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSecretService(repo repositories.CredentialRepository, sealer auth.Sealer) *SecretService {
	return NewSecretService(
		repo,
		auth.NewTOTPManager(auth.TOTPConfig{}),
		sealer,
		discardLogger(),
		SecretConfig{Timeout: time.Second, ConflictRetries: 3},
	)
}

func TestSecretService_GetOrCreateSecrets_Idempotent(t *testing.T) {
	svc := newTestSecretService(repositories.NewMemoryCredentialRepository(), nil)
	ctx := context.Background()

	first, err := svc.GetOrCreateSecrets(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, first.SecretOne, 32)
	assert.Len(t, first.SecretTwo, 32)
	assert.NotEqual(t, first.SecretOne, first.SecretTwo)

	second, err := svc.GetOrCreateSecrets(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, first.SecretOne, second.SecretOne)
	assert.Equal(t, first.SecretTwo, second.SecretTwo)
}

func TestSecretService_GetOrCreateSecrets_Concurrent(t *testing.T) {
	repo := repositories.NewMemoryCredentialRepository()
	svc := newTestSecretService(repo, nil)
	ctx := context.Background()

	const callers = 16
	results := make([]*models.UserCredential, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.GetOrCreateSecrets(ctx, "alice")
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].SecretOne, results[i].SecretOne)
		assert.Equal(t, results[0].SecretTwo, results[i].SecretTwo)
	}
	assert.Equal(t, 1, repo.Len())
}

func TestSecretService_GetOrCreateSecrets_ConflictReadBack(t *testing.T) {
	winner := &models.UserCredential{Username: "alice", SecretOne: "JBSWY3DPEHPK3PXP", SecretTwo: "KRSXG5CTMVRXEZLU"}
	gets := 0

	repo := &MockCredentialRepository{
		GetFunc: func(ctx context.Context, username string) (*models.UserCredential, error) {
			gets++
			// First lookup and first read-back miss, then the winner is visible
			if gets <= 2 {
				return nil, models.ErrNotFound
			}
			return winner, nil
		},
		CreateIfAbsentFunc: func(ctx context.Context, cred *models.UserCredential) (*models.UserCredential, error) {
			return nil, models.ErrConflict
		},
	}

	svc := newTestSecretService(repo, nil)
	cred, err := svc.GetOrCreateSecrets(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", cred.SecretOne)
	assert.Equal(t, 3, gets)
}

func TestSecretService_GetOrCreateSecrets_ConflictExhausted(t *testing.T) {
	repo := &MockCredentialRepository{
		CreateIfAbsentFunc: func(ctx context.Context, cred *models.UserCredential) (*models.UserCredential, error) {
			return nil, models.ErrConflict
		},
	}

	svc := newTestSecretService(repo, nil)
	_, err := svc.GetOrCreateSecrets(context.Background(), "alice")
	assert.ErrorIs(t, err, models.ErrUpstreamStore)
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestSecretService_StoreFailure(t *testing.T) {
	boom := errors.New("connection refused")
	repo := &MockCredentialRepository{
		GetFunc: func(ctx context.Context, username string) (*models.UserCredential, error) {
			return nil, boom
		},
	}
	svc := newTestSecretService(repo, nil)
	ctx := context.Background()

	_, err := svc.GetOrCreateSecrets(ctx, "alice")
	assert.ErrorIs(t, err, models.ErrUpstreamStore)
	assert.ErrorIs(t, err, boom)

	_, err = svc.LookupSecrets(ctx, "alice")
	assert.ErrorIs(t, err, models.ErrUpstreamStore)
}

func TestSecretService_StoreTimeout(t *testing.T) {
	repo := &MockCredentialRepository{
		GetFunc: func(ctx context.Context, username string) (*models.UserCredential, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	svc := NewSecretService(repo, auth.NewTOTPManager(auth.TOTPConfig{}), nil, discardLogger(),
		SecretConfig{Timeout: 20 * time.Millisecond})

	_, err := svc.LookupSecrets(context.Background(), "alice")
	assert.ErrorIs(t, err, models.ErrUpstreamStore)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSecretService_LookupSecrets_Unregistered(t *testing.T) {
	svc := newTestSecretService(repositories.NewMemoryCredentialRepository(), nil)

	_, err := svc.LookupSecrets(context.Background(), "ghost")
	assert.ErrorIs(t, err, models.ErrUnregisteredUser)
}

func TestSecretService_SealsSecretsAtRest(t *testing.T) {
	sealer, err := auth.NewSecretSealer([]byte(strings.Repeat("k", 32)))
	require.NoError(t, err)

	repo := repositories.NewMemoryCredentialRepository()
	svc := newTestSecretService(repo, sealer)
	ctx := context.Background()

	created, err := svc.GetOrCreateSecrets(ctx, "alice")
	require.NoError(t, err)

	stored, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.SecretOne, "enc:v1:"))
	assert.True(t, strings.HasPrefix(stored.SecretTwo, "enc:v1:"))
	assert.NotContains(t, stored.SecretOne, created.SecretOne)

	looked, err := svc.LookupSecrets(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.SecretOne, looked.SecretOne)
	assert.Equal(t, created.SecretTwo, looked.SecretTwo)
}

func TestSecretService_HealthCheck(t *testing.T) {
	repo := &MockCredentialRepository{
		HealthCheckFunc: func(ctx context.Context) error { return errors.New("down") },
	}
	svc := newTestSecretService(repo, nil)

	assert.ErrorIs(t, svc.HealthCheck(context.Background()), models.ErrUpstreamStore)
}
