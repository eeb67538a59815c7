package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheClient is the subset of the Redis API the moderation service uses.
// The abstraction decouples the service from a concrete client so tests
// can substitute an in-memory fake.
type CacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}
