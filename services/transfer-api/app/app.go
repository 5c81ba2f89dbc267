package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/pkg"
	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/pkg/cache"
	middleware "github.com/deepakmhnp25/intra-bank-transfer-system-v1/pkg/middlewares"
	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/pkg/repositories"
	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/services/transfer-api/configs"
	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/services/transfer-api/internal/handlers"
	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/services/transfer-api/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const rateLimitKey = "ledger:transfer_api:rate"

// Dependencies are the collaborators NewRouter needs.
type Dependencies struct {
	Logger    *zap.Logger
	Ledger    services.LedgerService
	Publisher services.EventPublisher
	Limiter   *pkg.DistributedLimiter
}

// NewRouter builds the gin engine with all routes and middleware.
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api/v1")
	api.Use(middleware.TraceID())
	api.Use(middleware.Metrics())
	api.Use(middleware.RateLimit(deps.Logger, deps.Limiter))

	handlers.NewAccountHandler(deps.Logger, deps.Ledger, deps.Publisher).RegisterRoutes(api)
	handlers.NewBaseHandler(deps.Logger, deps.Ledger).RegisterRoutes(r)
	return r
}

// NewApp wires dependencies, builds the Gin engine, and returns an *http.Server and a cleanup func.
// It reads configuration from environment variables via configs.Load.
func NewApp(ctx context.Context, logger *zap.Logger) (*http.Server, *configs.Config, func(), error) {
	cfg, err := configs.Load(logger)
	if err != nil {
		return nil, nil, nil, err
	}

	redisClient, closeRedis, err := cache.New(ctx, logger, cache.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	publisher, err := services.NewEventPublisher(ctx, logger, cfg)
	if err != nil {
		closeRedis()
		return nil, nil, nil, err
	}

	ledger := services.NewLedgerService(services.LedgerServiceConfig{
		Logger: logger,
		Repo:   repositories.NewAccountRepository(),
	})
	limiter := pkg.NewDistributedLimiter(redisClient, rateLimitKey, cfg.RateLimitPerSec, cfg.RateLimitBurst, cfg.RateLimitWindow, logger)

	r := NewRouter(Dependencies{
		Logger:    logger,
		Ledger:    ledger,
		Publisher: publisher,
		Limiter:   limiter,
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%s", cfg.Port), Handler: r}
	cleanup := func() {
		publisher.Close()
		closeRedis()
	}
	return srv, cfg, cleanup, nil
}
