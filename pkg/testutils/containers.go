// Package testutils starts disposable containers for integration tests.
package testutils

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tckafkamod "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	redisImage = "redis:7-alpine"
	kafkaImage = "confluentinc/confluent-local:7.5.0"
)

// SkipIfShort skips container-backed tests under -short.
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
}

// StartRedisForTests spins up a Redis container and returns host:port. The container is
// terminated when the test finishes.
func StartRedisForTests(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rc, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        redisImage,
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start redis test container: %v", err)
	}
	t.Cleanup(func() { terminate(rc) })

	host, err := rc.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get redis host: %v", err)
	}
	mapped, err := rc.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("failed to get redis mapped port: %v", err)
	}
	return fmt.Sprintf("%s:%s", host, mapped.Port())
}

// StartKafkaForTests spins up a single-node Kafka container and returns its bootstrap servers.
func StartKafkaForTests(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	kc, err := tckafkamod.Run(ctx, kafkaImage, tckafkamod.WithClusterID("ledger-test"))
	if err != nil {
		t.Fatalf("failed to start kafka test container: %v", err)
	}
	t.Cleanup(func() { terminate(kc) })

	brokers, err := kc.Brokers(ctx)
	if err != nil || len(brokers) == 0 {
		t.Fatalf("failed to get kafka brokers: %v", err)
	}
	return brokers[0]
}

func terminate(c testcontainers.Container) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = c.Terminate(ctx)
}
