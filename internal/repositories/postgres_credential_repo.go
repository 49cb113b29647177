package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/BradenHooton/zkvault/internal/database"
	"github.com/BradenHooton/zkvault/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresCredentialRepo struct {
	db   *database.DB
	pool *pgxpool.Pool
}

// NewPostgresCredentialRepository creates a credential repository backed by the user_secrets table
func NewPostgresCredentialRepository(db *database.DB) CredentialRepository {
	return &postgresCredentialRepo{db: db, pool: db.Pool}
}

// rowScanner is satisfied by pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCredentialRow(scanner rowScanner) (*models.UserCredential, error) {
	var cred models.UserCredential
	err := scanner.Scan(&cred.ID, &cred.Username, &cred.SecretOne, &cred.SecretTwo, &cred.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &cred, nil
}

func (r *postgresCredentialRepo) Get(ctx context.Context, username string) (*models.UserCredential, error) {
	query := `
		SELECT id, username, secret_one, secret_two, created_at
		FROM user_secrets WHERE username = $1
	`

	return scanCredentialRow(r.pool.QueryRow(ctx, query, username))
}

func (r *postgresCredentialRepo) CreateIfAbsent(ctx context.Context, cred *models.UserCredential) (*models.UserCredential, error) {
	rec := prepareCredential(cred)

	query := `
		INSERT INTO user_secrets (id, username, secret_one, secret_two, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (username) DO NOTHING
		RETURNING id, username, secret_one, secret_two, created_at
	`

	row := r.pool.QueryRow(ctx, query, rec.ID, rec.Username, rec.SecretOne, rec.SecretTwo, rec.CreatedAt)
	stored, err := scanCredentialRow(row)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to insert credential: %w", err)
	}

	// No row returned: another writer already owns the username
	existing, err := r.Get(ctx, rec.Username)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read existing credential: %w", err)
	}
	return existing, nil
}

func (r *postgresCredentialRepo) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}
