package order

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// idempotencyTTL bounds how long a checkout key maps to its order.
const idempotencyTTL = 24 * time.Hour

// IdempotencyStore remembers which order a checkout key produced, so a
// retried request returns the existing order instead of charging twice.
type IdempotencyStore interface {
	Get(ctx context.Context, userID uint, key string) (uint, bool, error)
	Set(ctx context.Context, userID uint, key string, orderID uint) error
}

type redisIdempotencyStore struct {
	client *redis.Client
}

func NewRedisIdempotencyStore(client *redis.Client) IdempotencyStore {
	return &redisIdempotencyStore{client: client}
}

func idempotencyKey(userID uint, key string) string {
	return fmt.Sprintf("checkout:%d:%s", userID, key)
}

func (s *redisIdempotencyStore) Get(ctx context.Context, userID uint, key string) (uint, bool, error) {
	val, err := s.client.Get(ctx, idempotencyKey(userID, key)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	orderID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return uint(orderID), true, nil
}

func (s *redisIdempotencyStore) Set(ctx context.Context, userID uint, key string, orderID uint) error {
	return s.client.Set(ctx, idempotencyKey(userID, key),
		strconv.FormatUint(uint64(orderID), 10), idempotencyTTL).Err()
}

// noopIdempotencyStore is used when Redis is not configured. Every
// checkout is then treated as a fresh request.
type noopIdempotencyStore struct{}

func NewNoopIdempotencyStore() IdempotencyStore {
	return noopIdempotencyStore{}
}

func (noopIdempotencyStore) Get(ctx context.Context, userID uint, key string) (uint, bool, error) {
	return 0, false, nil
}

func (noopIdempotencyStore) Set(ctx context.Context, userID uint, key string, orderID uint) error {
	return nil
}
