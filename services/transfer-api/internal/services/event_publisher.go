package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/pkg"
	kafkautils "github.com/deepakmhnp25/intra-bank-transfer-system-v1/pkg/kafka"
	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/pkg/utils"
	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/services/transfer-api/configs"
	"github.com/deepakmhnp25/intra-bank-transfer-system-v1/services/transfer-api/internal/views"
	"go.uber.org/zap"
)

const (
	publishBaseBackoff = 50 * time.Millisecond
	publishMaxBackoff  = time.Second
	flushTimeoutMs     = 5000
)

// EventPublisher forwards committed transfers to downstream consumers.
type EventPublisher interface {
	PublishTransfer(ctx context.Context, event views.TransferEvent) error
	Close()
}

// NewEventPublisher returns a kafka publisher when brokers are configured, otherwise a no-op publisher.
func NewEventPublisher(ctx context.Context, logger *zap.Logger, cnf *configs.Config) (EventPublisher, error) {
	if utils.IsEmpty(cnf.KafkaBrokers) {
		logger.Info("kafka brokers not configured; transfer events disabled")
		return NewNoopPublisher(logger), nil
	}
	return NewKafkaPublisher(ctx, logger, cnf)
}

type NoopPublisher struct {
	logger *zap.Logger
}

func NewNoopPublisher(logger *zap.Logger) EventPublisher {
	return &NoopPublisher{logger: logger}
}

func (n *NoopPublisher) PublishTransfer(ctx context.Context, event views.TransferEvent) error {
	n.logger.Debug("transfer event dropped",
		zap.String(pkg.TraceId, utils.TraceIDFromContext(ctx)),
		zap.String(pkg.Reference, event.Reference))
	return nil
}

func (n *NoopPublisher) Close() {}

type KafkaPublisherImpl struct {
	logger   *zap.Logger
	producer *kafka.Producer
	topic    string
	retries  int
}

// NewKafkaPublisher ensures the transfer topic exists and starts an idempotent producer.
func NewKafkaPublisher(ctx context.Context, logger *zap.Logger, cnf *configs.Config) (EventPublisher, error) {
	topicConfig := kafkautils.KafkaConfig{
		BootstrapServers: cnf.KafkaBrokers,
		Topics: []kafkautils.TopicConfig{
			{
				Topic:             cnf.KafkaTransferTopic,
				NumPartitions:     int(cnf.KafkaPartition),
				ReplicationFactor: 1,
				Config: map[string]string{
					"cleanup.policy": "delete",
					"retention.ms":   fmt.Sprintf("%d", cnf.KafkaRetention.Milliseconds()),
				},
			},
		},
	}
	if err := kafkautils.InitKafkaTopics(ctx, logger, topicConfig); err != nil {
		return nil, fmt.Errorf("failed to initialize kafka topics: %w", err)
	}

	p, err := kafka.NewProducer(producerConfig(cnf.KafkaBrokers))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	logger.Info("kafka producer created", zap.String("brokers", cnf.KafkaBrokers), zap.String("topic", cnf.KafkaTransferTopic))
	return newKafkaPublisher(logger, p, cnf.KafkaTransferTopic, cnf.KafkaRetry), nil
}

func producerConfig(brokers string) *kafka.ConfigMap {
	return &kafka.ConfigMap{
		"bootstrap.servers":  brokers,
		"acks":               "all",
		"enable.idempotence": "true",
		"linger.ms":          "5",
	}
}

func newKafkaPublisher(logger *zap.Logger, p *kafka.Producer, topic string, retries int) *KafkaPublisherImpl {
	if retries < 1 {
		retries = 1
	}
	go handleDeliveryReports(logger, p)
	return &KafkaPublisherImpl{
		logger:   logger,
		producer: p,
		topic:    topic,
		retries:  retries,
	}
}

// PublishTransfer enqueues the event keyed by sender account id, so one sender's transfers
// land on one partition in commit order. A full local queue is retried with jittered backoff.
func (k *KafkaPublisherImpl) PublishTransfer(ctx context.Context, event views.TransferEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &k.topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.FromAccountID),
		Value:          payload,
		Headers: []kafka.Header{
			{Key: pkg.HeaderTraceId, Value: []byte(utils.TraceIDFromContext(ctx))},
			{Key: pkg.Reference, Value: []byte(event.Reference)},
		},
	}

	for attempt := 1; ; attempt++ {
		err = k.producer.Produce(msg, nil)
		if err == nil || !kafkautils.IsQueueFull(err) || attempt >= k.retries {
			return err
		}
		wait := utils.CalculateExponentialBackoffWithJitter(attempt, publishBaseBackoff, publishMaxBackoff)
		k.logger.Warn("kafka queue full; retrying",
			zap.String(pkg.Reference, event.Reference),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (k *KafkaPublisherImpl) Close() {
	if remaining := k.producer.Flush(flushTimeoutMs); remaining > 0 {
		k.logger.Warn("kafka producer closed with undelivered events", zap.Int("remaining", remaining))
	}
	k.producer.Close()
}

func handleDeliveryReports(logger *zap.Logger, p *kafka.Producer) {
	for e := range p.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				logger.Error("failed to deliver transfer event",
					zap.String("key", string(ev.Key)),
					zap.Error(ev.TopicPartition.Error))
			}
		case kafka.Error:
			logger.Error("kafka producer error", zap.Error(ev))
		}
	}
}
