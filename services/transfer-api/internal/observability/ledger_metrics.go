package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransfersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "transfers_total",
			Help:      "Transfers by outcome (committed or the rejection code)",
		},
		[]string{"outcome"},
	)

	AccountsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "accounts_created_total",
			Help:      "Accounts successfully created",
		},
	)

	OperationLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ledger",
			Name:      "operation_duration_seconds",
			Help:      "Ledger operation latency including lock wait",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
		[]string{"operation"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "events_published_total",
			Help:      "Transfer events handed to the publisher by result",
		},
		[]string{"result"},
	)
)
