package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"geekgalaxy_pos/internal/domain/entities"
	"geekgalaxy_pos/internal/usecase/interfaces"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyKeyPrefix = "pos:idempotency:"
	pendingMarker        = "pending"
	claimAttempts        = 2
	defaultPendingTTL    = 30 * time.Second
	defaultCompletedTTL  = 24 * time.Hour
)

type redisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// IdempotencyStore keeps one entry per client key: "pending" for at most pendingTTL while the
// sale is being created, then the sale id until ttl expires.
type IdempotencyStore struct {
	client     redisClient
	closer     func() error
	ttl        time.Duration
	pendingTTL time.Duration
}

var _ interfaces.IIdempotencyStore = (*IdempotencyStore)(nil)

func NewIdempotencyStore(redisURL string, ttl, pendingTTL time.Duration) (*IdempotencyStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	s := newIdempotencyStore(client, ttl, pendingTTL)
	s.closer = client.Close
	return s, nil
}

func newIdempotencyStore(client redisClient, ttl, pendingTTL time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultCompletedTTL
	}
	if pendingTTL <= 0 {
		pendingTTL = defaultPendingTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl, pendingTTL: pendingTTL}
}

func (s *IdempotencyStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

func (s *IdempotencyStore) Claim(ctx context.Context, key string) (string, bool, error) {
	k := idempotencyKeyPrefix + key
	for i := 0; i < claimAttempts; i++ {
		ok, err := s.client.SetNX(ctx, k, pendingMarker, s.pendingTTL).Result()
		if err != nil {
			return "", false, err
		}
		if ok {
			return "", true, nil
		}

		v, err := s.client.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			// expired between SETNX and GET
			continue
		}
		if err != nil {
			return "", false, err
		}
		if v == pendingMarker {
			return "", false, entities.ErrIdempotencyInFlight
		}
		return v, false, nil
	}
	return "", false, entities.ErrIdempotencyInFlight
}

func (s *IdempotencyStore) Complete(ctx context.Context, key, saleID string) error {
	return s.client.Set(ctx, idempotencyKeyPrefix+key, saleID, s.ttl).Err()
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, idempotencyKeyPrefix+key).Err()
}
