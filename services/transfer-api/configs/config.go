package configs

import (
	"time"

	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	Port            string        `mapstructure:"PORT" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"gt=0"`

	RateLimitPerSec int           `mapstructure:"RATE_LIMIT_PER_SEC" validate:"min=0"`
	RateLimitBurst  int           `mapstructure:"RATE_LIMIT_BURST" validate:"min=1"`
	RateLimitWindow time.Duration `mapstructure:"RATE_LIMIT_WINDOW" validate:"gt=0"`
	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`

	KafkaBrokers       string        `mapstructure:"KAFKA_BROKERS"`
	KafkaTransferTopic string        `mapstructure:"KAFKA_TRANSFER_TOPIC" validate:"required"`
	KafkaPartition     uint32        `mapstructure:"KAFKA_PARTITION" validate:"min=1"`
	KafkaRetry         int           `mapstructure:"KAFKA_RETRY" validate:"min=1"`
	KafkaRetention     time.Duration `mapstructure:"KAFKA_RETENTION" validate:"gt=0"`
}

func Load(logger *zap.Logger) (*Config, error) {
	// .env is optional; real environment variables take precedence
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", zap.Error(err))
	}

	viper.SetEnvPrefix("app") // Prefix for env vars
	viper.AutomaticEnv()

	// Default values
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("SHUTDOWN_TIMEOUT", "5s")
	viper.SetDefault("RATE_LIMIT_PER_SEC", "0")
	viper.SetDefault("RATE_LIMIT_BURST", "50")
	viper.SetDefault("RATE_LIMIT_WINDOW", "1m")
	viper.SetDefault("KAFKA_TRANSFER_TOPIC", "ledger.transfers")
	viper.SetDefault("KAFKA_PARTITION", "4")
	viper.SetDefault("KAFKA_RETRY", "3")
	viper.SetDefault("KAFKA_RETENTION", "168h")

	// Optional: Read from config.yaml if exists
	if gin.ReleaseMode == gin.Mode() {
		viper.SetConfigName("config.prod")
	} else if gin.TestMode == gin.Mode() {
		viper.SetConfigName("config.test")
	} else {
		logger.Warn("running in development mode")
		viper.SetConfigName("config.dev")
	}
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./services/transfer-api/configs")
	_ = viper.ReadInConfig() // Ignore if no file

	var cfg Config
	if err := utils.ParseStructEnv(&cfg); err != nil {
		return nil, err
	}
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, utils.FormatConfigErrors(logger, err, cfg)
	}
	return &cfg, nil
}
