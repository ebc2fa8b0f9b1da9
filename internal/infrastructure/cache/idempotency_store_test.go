package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"geekgalaxy_pos/internal/domain/entities"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRedis struct {
	data map[string]string
	ttls map[string]time.Duration
	fail error
}

func newMemRedis() *memRedis {
	return &memRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memRedis) SetNX(_ context.Context, key string, value interface{}, exp time.Duration) *redis.BoolCmd {
	if m.fail != nil {
		return redis.NewBoolResult(false, m.fail)
	}
	if _, ok := m.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = value.(string)
	m.ttls[key] = exp
	return redis.NewBoolResult(true, nil)
}

func (m *memRedis) Set(_ context.Context, key string, value interface{}, exp time.Duration) *redis.StatusCmd {
	m.data[key] = value.(string)
	m.ttls[key] = exp
	return redis.NewStatusResult("OK", nil)
}

func (m *memRedis) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestIdempotencyStore_Lifecycle(t *testing.T) {
	mem := newMemRedis()
	s := newIdempotencyStore(mem, time.Hour, 15*time.Second)
	ctx := context.Background()

	id, claimed, err := s.Claim(ctx, "att-1:abc")
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.Empty(t, id)
	assert.Equal(t, 15*time.Second, mem.ttls["pos:idempotency:att-1:abc"], "pending marker must expire quickly")

	_, _, err = s.Claim(ctx, "att-1:abc")
	assert.ErrorIs(t, err, entities.ErrIdempotencyInFlight)

	require.NoError(t, s.Complete(ctx, "att-1:abc", "sale-1"))
	assert.Equal(t, time.Hour, mem.ttls["pos:idempotency:att-1:abc"], "completed entry keeps the replay window")
	id, claimed, err = s.Claim(ctx, "att-1:abc")
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Equal(t, "sale-1", id)
}

func TestIdempotencyStore_ReleaseAllowsRetry(t *testing.T) {
	s := newIdempotencyStore(newMemRedis(), 0, 0)
	ctx := context.Background()

	_, claimed, err := s.Claim(ctx, "k")
	require.NoError(t, err)
	require.True(t, claimed)
	require.NoError(t, s.Release(ctx, "k"))

	_, claimed, err = s.Claim(ctx, "k")
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.Equal(t, 24*time.Hour, s.ttl)
	assert.Equal(t, 30*time.Second, s.pendingTTL)
}

func TestIdempotencyStore_ClaimError(t *testing.T) {
	mem := newMemRedis()
	mem.fail = errors.New("connection refused")
	_, _, err := newIdempotencyStore(mem, time.Minute, time.Second).Claim(context.Background(), "k")
	assert.EqualError(t, err, "connection refused")
	assert.NoError(t, newIdempotencyStore(mem, time.Minute, time.Second).Close())
}
