package metrics

import (
	// Go Internal Packages
	"context"
	"errors"
	"net/http"
	"time"

	// External Packages
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kprom"
	"go.uber.org/zap"
)

// Exporter serves the chat counters on /metrics and the franz-go client
// metrics on /metrics/kafka/producer and /metrics/kafka/consumer. Each kgo
// client gets its own kprom instance and registry.
type Exporter struct {
	Producer *kprom.Metrics
	Consumer *kprom.Metrics
	server   *http.Server
	logger   *zap.Logger
}

func NewExporter(namespace, addr string, logger *zap.Logger) *Exporter {
	producer := kprom.NewMetrics(namespace + "_producer")
	consumer := kprom.NewMetrics(namespace + "_consumer")

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/metrics/kafka/producer", producer.Handler())
	mux.Handle("/metrics/kafka/consumer", consumer.Handler())

	return &Exporter{
		Producer: producer,
		Consumer: consumer,
		server:   &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		logger:   logger,
	}
}

// ProducerHooks returns the kgo hooks for the producer client; nil when the
// exporter is disabled.
func (e *Exporter) ProducerHooks() []kgo.Hook {
	if e == nil {
		return nil
	}
	return []kgo.Hook{e.Producer}
}

func (e *Exporter) ConsumerHooks() []kgo.Hook {
	if e == nil {
		return nil
	}
	return []kgo.Hook{e.Consumer}
}

// Start listens in the background. Listen failures are logged, never fatal.
func (e *Exporter) Start() {
	go func() {
		e.logger.Info("metrics exporter listening", zap.String("addr", e.server.Addr))
		if err := e.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.logger.Error("metrics exporter stopped", zap.Error(err))
		}
	}()
}

func (e *Exporter) Shutdown(ctx context.Context) error {
	return e.server.Shutdown(ctx)
}
