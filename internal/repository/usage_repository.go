package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UsageRepository persists the append-only usage log. No read API: the
// core only writes; reporting is out of scope.
type UsageRepository interface {
	Append(ctx context.Context, token, endpoint string, timestamp time.Time) error
}

type usageRepository struct {
	pool *pgxpool.Pool
}

// NewUsageRepository returns a Postgres-backed implementation.
func NewUsageRepository(pool *pgxpool.Pool) UsageRepository {
	return &usageRepository{pool: pool}
}

func (r *usageRepository) Append(ctx context.Context, token, endpoint string, timestamp time.Time) error {
	const query = `
        INSERT INTO usage_records (token, endpoint, recorded_at)
        VALUES ($1, $2, $3)`

	_, err := r.pool.Exec(ctx, query, token, endpoint, timestamp)
	return err
}
