package pkg

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Errors
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// DistributedLimiter combines local rate.Limiter with Redis for global enforcement.
// A nil redis client keeps the limiter process-local.
type DistributedLimiter struct {
	localLimiter *rate.Limiter
	redisClient  *redis.Client
	key          string        // e.g: "ledger:api_rate"
	window       time.Duration // e.g: 1m fixed window shared by all replicas
	windowLimit  int64         // e.g: 100/s over a 1m window = 6000
	logger       *zap.Logger
}

// NewDistributedLimiter creates a limiter; if globalRate=0, it's unlimited.
// Locally each process allows globalRate tokens per second with the given burst. With redis, all
// processes share a fixed window of length window starting at its first request, admitting
// globalRate*window requests (never fewer than burst) before the window expires.
func NewDistributedLimiter(redisClient *redis.Client, key string, globalRate, burst int, window time.Duration, logger *zap.Logger) *DistributedLimiter {
	var local *rate.Limiter
	if globalRate > 0 {
		local = rate.NewLimiter(rate.Limit(globalRate), burst)
	}
	if window <= 0 {
		window = time.Second
	}
	limit := int64(math.Ceil(float64(globalRate) * window.Seconds()))
	if limit < int64(burst) {
		limit = int64(burst)
	}
	return &DistributedLimiter{
		localLimiter: local,
		redisClient:  redisClient,
		key:          key,
		window:       window,
		windowLimit:  limit,
		logger:       logger,
	}
}

// WindowLimit is the number of requests all replicas may admit per redis window.
func (d *DistributedLimiter) WindowLimit() int64 {
	return d.windowLimit
}

// Allow checks the local bucket first, then counts the request in the shared redis window.
// Redis errors fall back to the local decision.
func (d *DistributedLimiter) Allow(ctx context.Context) bool {
	if d == nil || d.localLimiter == nil {
		return true // Unlimited
	}

	// Local check first (fast path)
	if !d.localLimiter.Allow() {
		return false
	}
	if d.redisClient == nil {
		return true
	}

	// INCR and EXPIRE NX run in one MULTI, so the expiry is set once per window and never pushed
	// forward by later requests.
	pipe := d.redisClient.TxPipeline()
	incr := pipe.Incr(ctx, d.key)
	pipe.ExpireNX(ctx, d.key, d.window)
	if _, err := pipe.Exec(ctx); err != nil {
		d.logger.Error("redis rate limit error; falling back to local", zap.Error(err))
		return true
	}

	if count := incr.Val(); count > d.windowLimit {
		d.logger.Warn("global rate limit exceeded", zap.Int64("count", count), zap.Int64("limit", d.windowLimit))
		return false
	}
	return true
}
