package repositories

import (
	"context"
	"sync"
	"testing"

	"github.com/BradenHooton/zkvault/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCredentialRepositorySuite exercises the contract every backend must honour
func runCredentialRepositorySuite(t *testing.T, newRepo func(t *testing.T) CredentialRepository) {
	t.Helper()
	ctx := context.Background()

	t.Run("get unknown username", func(t *testing.T) {
		repo := newRepo(t)

		cred, err := repo.Get(ctx, "nobody")
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.Nil(t, cred)
	})

	t.Run("create then get", func(t *testing.T) {
		repo := newRepo(t)

		stored, err := repo.CreateIfAbsent(ctx, &models.UserCredential{
			Username:  "alice",
			SecretOne: "JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP",
			SecretTwo: "KRSXG5CTMVRXEZLUKRSXG5CTMVRXEZLU",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, stored.ID)
		assert.False(t, stored.CreatedAt.IsZero())

		got, err := repo.Get(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, stored.ID, got.ID)
		assert.Equal(t, "JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP", got.SecretOne)
		assert.Equal(t, "KRSXG5CTMVRXEZLUKRSXG5CTMVRXEZLU", got.SecretTwo)
	})

	t.Run("existing credential is never overwritten", func(t *testing.T) {
		repo := newRepo(t)

		first, err := repo.CreateIfAbsent(ctx, &models.UserCredential{Username: "bob", SecretOne: "AAAA", SecretTwo: "BBBB"})
		require.NoError(t, err)

		second, err := repo.CreateIfAbsent(ctx, &models.UserCredential{Username: "bob", SecretOne: "CCCC", SecretTwo: "DDDD"})
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "AAAA", second.SecretOne)
		assert.Equal(t, "BBBB", second.SecretTwo)

		got, err := repo.Get(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, "AAAA", got.SecretOne)
	})

	t.Run("concurrent creates agree on one pair", func(t *testing.T) {
		repo := newRepo(t)

		const writers = 8
		results := make([]*models.UserCredential, writers)
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				cred, err := repo.CreateIfAbsent(ctx, &models.UserCredential{
					Username:  "carol",
					SecretOne: string(rune('A'+i)) + "ONE",
					SecretTwo: string(rune('A'+i)) + "TWO",
				})
				if err == nil {
					results[i] = cred
				}
			}(i)
		}
		wg.Wait()

		stored, err := repo.Get(ctx, "carol")
		require.NoError(t, err)
		for _, cred := range results {
			if cred == nil {
				continue
			}
			assert.Equal(t, stored.SecretOne, cred.SecretOne)
			assert.Equal(t, stored.SecretTwo, cred.SecretTwo)
		}
	})

	t.Run("health check", func(t *testing.T) {
		repo := newRepo(t)
		assert.NoError(t, repo.HealthCheck(ctx))
	})
}
