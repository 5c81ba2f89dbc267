package kafkautils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

type KafkaConfig struct {
	BootstrapServers string
	Topics           []TopicConfig
	// MaxElapsedTime bounds topic creation retries. Zero means two minutes.
	MaxElapsedTime time.Duration
}

type TopicConfig struct {
	Topic             string
	NumPartitions     int
	ReplicationFactor int
	Config            map[string]string
}

// InitKafkaTopics creates the specified Kafka topics, treating existing topics as success.
// Creation is retried with exponential backoff until MaxElapsedTime passes or ctx is done.
func InitKafkaTopics(ctx context.Context, logger *zap.Logger, cnf KafkaConfig) error {
	admin, err := kafka.NewAdminClient(&kafka.ConfigMap{"bootstrap.servers": cnf.BootstrapServers})
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer admin.Close()

	topics := make([]kafka.TopicSpecification, 0, len(cnf.Topics))
	for _, topic := range cnf.Topics {
		topics = append(topics, kafka.TopicSpecification{
			Topic:             topic.Topic,
			NumPartitions:     topic.NumPartitions,
			ReplicationFactor: topic.ReplicationFactor,
			Config:            topic.Config,
		})
	}

	operation := func() error {
		results, err := admin.CreateTopics(ctx, topics, kafka.SetAdminOperationTimeout(30*time.Second))
		if err != nil {
			return fmt.Errorf("failed to create topics: %w", err)
		}
		for _, result := range results {
			switch result.Error.Code() {
			case kafka.ErrNoError:
				logger.Info("kafka topic created", zap.String("topic", result.Topic))
			case kafka.ErrTopicAlreadyExists:
				logger.Debug("kafka topic already exists", zap.String("topic", result.Topic))
			default:
				return fmt.Errorf("kafka topic %s creation failed: %v", result.Topic, result.Error)
			}
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = cnf.MaxElapsedTime
	if b.MaxElapsedTime <= 0 {
		b.MaxElapsedTime = 2 * time.Minute
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("kafka topic creation failed; retrying", zap.Error(err), zap.Duration("wait", wait))
	}
	return backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify)
}

// IsQueueFull reports whether err is librdkafka's local queue-full condition, which clears once
// outstanding deliveries drain.
func IsQueueFull(err error) bool {
	var kErr kafka.Error
	if errors.As(err, &kErr) {
		return kErr.Code() == kafka.ErrQueueFull
	}
	return false
}
