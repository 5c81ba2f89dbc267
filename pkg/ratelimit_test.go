package pkg

import (
	"context"
	"testing"
	"time"

	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/pkg/testutils"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDistributedLimiter_ZeroRateIsUnlimited(t *testing.T) {
	limiter := NewDistributedLimiter(nil, "k", 0, 1, time.Minute, zap.NewNop())

	for i := 0; i < 100; i++ {
		assert.True(t, limiter.Allow(context.Background()))
	}
}

func TestDistributedLimiter_LocalOnlyEnforcesBurst(t *testing.T) {
	limiter := NewDistributedLimiter(nil, "k", 1, 3, time.Minute, zap.NewNop())

	allowed := 0
	for i := 0; i < 10; i++ {
		if limiter.Allow(context.Background()) {
			allowed++
		}
	}
	assert.Equal(t, 3, allowed)
}

func TestDistributedLimiter_WindowLimit(t *testing.T) {
	logger := zap.NewNop()

	assert.Equal(t, int64(6000), NewDistributedLimiter(nil, "k", 100, 5, time.Minute, logger).WindowLimit())
	assert.Equal(t, int64(100), NewDistributedLimiter(nil, "k", 100, 5, time.Second, logger).WindowLimit())
	// never below the burst
	assert.Equal(t, int64(10), NewDistributedLimiter(nil, "k", 5, 10, time.Second, logger).WindowLimit())
	// a missing window falls back to one second
	assert.Equal(t, int64(7), NewDistributedLimiter(nil, "k", 7, 1, 0, logger).WindowLimit())
}

func TestDistributedLimiter_NilIsUnlimited(t *testing.T) {
	var limiter *DistributedLimiter
	assert.True(t, limiter.Allow(context.Background()))
}

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	testutils.SkipIfShort(t)
	client := redis.NewClient(&redis.Options{Addr: testutils.StartRedisForTests(t)})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
	return client
}

func TestDistributedLimiter_Redis_SteadyTrafficBelowRateIsAdmitted(t *testing.T) {
	client := newRedisClient(t)
	key := "rate:" + uuid.NewString()
	limiter := NewDistributedLimiter(client, key, 100, 5, time.Second, zap.NewNop())

	allowed := 0
	for i := 0; i < 40; i++ {
		if limiter.Allow(context.Background()) {
			allowed++
		}
		time.Sleep(100 * time.Millisecond)
	}

	assert.Equal(t, 40, allowed)
	ttl, err := client.PTTL(context.Background(), key).Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, time.Second)
}

func TestDistributedLimiter_Redis_ExpiryIsNotRefreshed(t *testing.T) {
	client := newRedisClient(t)
	key := "rate:" + uuid.NewString()
	limiter := NewDistributedLimiter(client, key, 10, 10, 2*time.Second, zap.NewNop())
	ctx := context.Background()

	require.True(t, limiter.Allow(ctx))
	time.Sleep(1100 * time.Millisecond)
	require.True(t, limiter.Allow(ctx))

	ttl, err := client.PTTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 900*time.Millisecond)
}

func TestDistributedLimiter_Redis_WindowSharedAcrossReplicas(t *testing.T) {
	client := newRedisClient(t)
	key := "rate:" + uuid.NewString()
	logger := zap.NewNop()
	// each replica's local bucket admits 10, the shared window only 10 in total
	replicas := []*DistributedLimiter{
		NewDistributedLimiter(client, key, 5, 10, time.Second, logger),
		NewDistributedLimiter(client, key, 5, 10, time.Second, logger),
	}

	allowed := 0
	for i := 0; i < 10; i++ {
		for _, l := range replicas {
			if l.Allow(context.Background()) {
				allowed++
			}
		}
	}
	assert.Equal(t, 10, allowed)
}

func TestDistributedLimiter_Redis_NewWindowAfterExpiry(t *testing.T) {
	client := newRedisClient(t)
	key := "rate:" + uuid.NewString()
	logger := zap.NewNop()
	first := NewDistributedLimiter(client, key, 2, 4, time.Second, logger)
	second := NewDistributedLimiter(client, key, 2, 4, time.Second, logger)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.True(t, first.Allow(ctx))
	}
	// second still has local tokens, but the shared window is spent
	assert.False(t, second.Allow(ctx))

	time.Sleep(1100 * time.Millisecond)
	assert.True(t, second.Allow(ctx))
}
