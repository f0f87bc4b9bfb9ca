package kafka

import (
	// Go Internal Packages
	"context"
	"sync"
	"time"

	// Local Packages
	errors "bus-chat/errors"
	models "bus-chat/models"

	// External Packages
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

// Publisher publishes chat messages synchronously and reports where they landed.
type Publisher struct {
	client      *kgo.Client
	topic       string
	timeout     time.Duration
	pingTimeout time.Duration
	logger      *zap.Logger
	closeOnce   sync.Once
}

// NewPublisher wraps client. pingTimeout bounds the reachability check made
// after a failed produce.
func NewPublisher(client *kgo.Client, topic string, timeout, pingTimeout time.Duration, logger *zap.Logger) *Publisher {
	return &Publisher{client: client, topic: topic, timeout: timeout, pingTimeout: pingTimeout, logger: logger}
}

// Publish produces msg and waits for the broker acknowledgment.
func (p *Publisher) Publish(ctx context.Context, msg models.Message) (models.DeliveryReceipt, error) {
	topic := msg.Topic
	if topic == "" {
		topic = p.topic
	}

	pubCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	rec := &kgo.Record{
		Topic:     topic,
		Key:       msg.Key,
		Value:     msg.Value,
		Timestamp: msg.ProducedAt,
	}
	produced, err := p.client.ProduceSync(pubCtx, rec).First()
	if err != nil {
		if ctx.Err() != nil {
			return models.DeliveryReceipt{}, ctx.Err()
		}
		p.logger.Debug("produce failed", zap.String("topic", topic), zap.Bool("retriable", retriable(err)), zap.Error(err))
		return models.DeliveryReceipt{}, p.failure(ctx, topic, err)
	}

	return models.DeliveryReceipt{
		Topic:     produced.Topic,
		Partition: produced.Partition,
		Offset:    produced.Offset,
	}, nil
}

// failure decides what a failed produce means. franz-go retries unreachable
// brokers internally until the delivery timeout, so a timed out record is
// followed by a ping: a bus that cannot answer it is a Connection failure,
// anything else stays a Publish failure for this one message.
func (p *Publisher) failure(ctx context.Context, topic string, err error) error {
	if isConnectivity(err) {
		return errors.ConnectionErr("publish to "+topic, err)
	}
	if !timedOut(err) {
		return errors.PublishErr(topic, err)
	}
	if pingErr := ping(ctx, p.client, p.pingTimeout); pingErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.logger.Warn("bus unreachable after produce timeout", zap.String("topic", topic), zap.Error(pingErr))
		return errors.ConnectionErr("publish to "+topic, errors.Join(err, pingErr))
	}
	return errors.PublishErr(topic, err)
}

// Close closes the producer client. It is safe to call more than once.
func (p *Publisher) Close() error {
	p.closeOnce.Do(func() {
		p.client.Close()
		p.logger.Debug("publisher closed")
	})
	return nil
}
