package utils

import (
	"math/rand"
	"time"
)

// CalculateExponentialBackoffWithJitter returns base * 2^(count-1) with roughly ±12.5% jitter,
// capped at max. count is 1-based; count <= 0 yields zero.
func CalculateExponentialBackoffWithJitter(count int, base time.Duration, max time.Duration) time.Duration {
	if count <= 0 || base <= 0 {
		return 0
	}

	delay := base
	for i := 1; i < count && delay < max; i++ {
		delay *= 2
	}
	if delay >= max {
		return max
	}

	if spread := int64(delay / 4); spread > 0 {
		delay += time.Duration(rand.Int63n(spread)) - delay/8
	}
	if delay > max {
		delay = max
	}
	return delay
}
