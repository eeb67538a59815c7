package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/image-moderation-service/internal/domain"
)

// ErrDuplicateCredential indicates the token string is already stored.
var ErrDuplicateCredential = errors.New("credential already exists")

// CredentialRepository defines persistence access for issued tokens.
type CredentialRepository interface {
	Insert(ctx context.Context, cred *domain.Credential) error
	Find(ctx context.Context, token string) (*domain.Credential, error)
	Delete(ctx context.Context, token string) (int64, error)
	ListAll(ctx context.Context) ([]domain.Credential, error)
}

type credentialRepository struct {
	pool *pgxpool.Pool
}

// NewCredentialRepository returns a Postgres-backed implementation.
func NewCredentialRepository(pool *pgxpool.Pool) CredentialRepository {
	return &credentialRepository{pool: pool}
}

func (r *credentialRepository) Insert(ctx context.Context, cred *domain.Credential) error {
	const query = `
        INSERT INTO credentials (token, is_admin, created_at)
        VALUES ($1, $2, $3)`

	_, err := r.pool.Exec(ctx, query, cred.Token, cred.IsAdmin, cred.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateCredential
		}
		return err
	}
	return nil
}

func (r *credentialRepository) Find(ctx context.Context, token string) (*domain.Credential, error) {
	const query = `
        SELECT token, is_admin, created_at
        FROM credentials WHERE token=$1`

	var cred domain.Credential
	if err := r.pool.QueryRow(ctx, query, token).Scan(
		&cred.Token,
		&cred.IsAdmin,
		&cred.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *credentialRepository) Delete(ctx context.Context, token string) (int64, error) {
	const query = `DELETE FROM credentials WHERE token=$1`

	cmd, err := r.pool.Exec(ctx, query, token)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *credentialRepository) ListAll(ctx context.Context) ([]domain.Credential, error) {
	const query = `
        SELECT token, is_admin, created_at
        FROM credentials ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	creds := make([]domain.Credential, 0)
	for rows.Next() {
		var cred domain.Credential
		if err := rows.Scan(&cred.Token, &cred.IsAdmin, &cred.CreatedAt); err != nil {
			return nil, err
		}
		creds = append(creds, cred)
	}
	return creds, rows.Err()
}
