package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/BradenHooton/zkvault/internal/config"
	"github.com/BradenHooton/zkvault/internal/models"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient parses the URL and verifies the server is reachable
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("unable to ping redis: %w", err)
	}
	return client, nil
}

type redisCredentialRepo struct {
	client *redis.Client
	prefix string
}

// NewRedisCredentialRepository stores each credential as a JSON value under prefix+username
func NewRedisCredentialRepository(client *redis.Client, prefix string) CredentialRepository {
	return &redisCredentialRepo{client: client, prefix: prefix}
}

func (r *redisCredentialRepo) Get(ctx context.Context, username string) (*models.UserCredential, error) {
	raw, err := r.client.Get(ctx, r.prefix+username).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	var cred models.UserCredential
	if err := json.Unmarshal(raw, &cred); err != nil {
		return nil, fmt.Errorf("failed to decode credential: %w", err)
	}
	return &cred, nil
}

func (r *redisCredentialRepo) CreateIfAbsent(ctx context.Context, cred *models.UserCredential) (*models.UserCredential, error) {
	rec := prepareCredential(cred)

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode credential: %w", err)
	}

	// No expiry: credentials live for the lifetime of the store
	created, err := r.client.SetNX(ctx, r.prefix+rec.Username, data, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to store credential: %w", err)
	}
	if created {
		return rec, nil
	}

	existing, err := r.Get(ctx, rec.Username)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return existing, nil
}

func (r *redisCredentialRepo) HealthCheck(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}
