package cache

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config holds the redis options used by the shared rate-limit counter.
// An empty Addr disables redis entirely.
type Config struct {
	Addr         string
	Password     string
	DB           int
	UseTLS       bool
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
}

// New returns a connected redis.Client verified with PING, and a closer for shutdown.
// When cfg.Addr is empty it returns a nil client and a no-op closer.
func New(ctx context.Context, logger *zap.Logger, cfg Config) (*redis.Client, func(), error) {
	if cfg.Addr == "" {
		logger.Info("redis address not configured; rate limiting stays process-local")
		return nil, func() {}, nil
	}

	opts := &redis.Options{
		Addr:            cfg.Addr,
		Password:        cfg.Password,
		DB:              cfg.DB,
		DialTimeout:     defaultDuration(cfg.DialTimeout, 3*time.Second),
		ReadTimeout:     defaultDuration(cfg.ReadTimeout, 500*time.Millisecond),
		WriteTimeout:    defaultDuration(cfg.WriteTimeout, 500*time.Millisecond),
		PoolSize:        defaultInt(cfg.PoolSize, 10),
		MaxRetries:      2,
		MinRetryBackoff: 50 * time.Millisecond,
		MaxRetryBackoff: 250 * time.Millisecond,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	logger.Info("redis connected", zap.String("addr", cfg.Addr))

	closer := func() {
		if err := client.Close(); err != nil {
			logger.Warn("redis close failed", zap.Error(err))
		}
	}
	return client, closer, nil
}

func defaultDuration(v, d time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return d
}

func defaultInt(v, d int) int {
	if v > 0 {
		return v
	}
	return d
}
