package metrics

import (
	// External Packages
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "buschat_messages_published_total",
			Help: "Messages acknowledged by the bus",
		},
	)

	PublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buschat_publish_failures_total",
			Help: "Publish calls that failed, by error kind",
		},
		[]string{"kind"},
	)

	MessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "buschat_messages_received_total",
			Help: "Messages delivered to the output",
		},
	)

	RecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buschat_records_skipped_total",
			Help: "Records that were not delivered, by reason",
		},
		[]string{"reason"},
	)

	ConnectionRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buschat_connection_retries_total",
			Help: "Connectivity failures retried by a loop",
		},
		[]string{"loop"},
	)

	PublishLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "buschat_publish_latency_seconds",
			Help:    "Time from publish call to broker acknowledgment",
			Buckets: prometheus.DefBuckets,
		},
	)
)
