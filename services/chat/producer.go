package chat

import (
	// Go Internal Packages
	"context"
	"sync"
	"sync/atomic"
	"time"

	// Local Packages
	errors "bus-chat/errors"
	metrics "bus-chat/metrics"
	models "bus-chat/models"
	shutdown "bus-chat/shutdown"

	// External Packages
	"go.uber.org/zap"
)

type ProducerConfig struct {
	Topic  string
	Sender string
}

// ProducerStats are the producer loop counters.
type ProducerStats struct {
	Published int64
	Failed    int64
}

// ProducerLoop publishes every non blank input line as one message.
type ProducerLoop struct {
	Config    *ProducerConfig
	Publisher Publisher
	Sink      Sink
	Logger    *zap.Logger
	Now       func() time.Time

	published atomic.Int64
	failed    atomic.Int64
	closeOnce sync.Once
}

// NewProducerLoop takes ownership of pub.
func NewProducerLoop(conf *ProducerConfig, pub Publisher, sink Sink, logger *zap.Logger) *ProducerLoop {
	return &ProducerLoop{
		Config:    conf,
		Publisher: pub,
		Sink:      sink,
		Logger:    logger.With(zap.String("loop", "producer")),
		Now:       time.Now,
	}
}

// Run reads lines until input ends or sig fires; both are clean exits. A
// Connection error from the publisher ends the loop and is returned. The
// publisher is closed on every path.
func (p *ProducerLoop) Run(sig *shutdown.Signal, lines <-chan Line) error {
	defer p.release()
	ctx := sig.Context()

	if err := p.Sink.Notice(InputPrompt); err != nil {
		p.Logger.Error("failed to write prompt", zap.Error(err))
	}

	for {
		select {
		case <-sig.Done():
			p.Logger.Info("producer stopping", zap.String("reason", sig.Reason()))
			return nil

		case line, ok := <-lines:
			if !ok {
				p.Logger.Info("input exhausted")
				return nil
			}
			if line.Err != nil {
				p.Logger.Error("failed to read input", zap.Error(line.Err))
				return nil
			}
			if sig.Fired() {
				p.Logger.Info("producer stopping", zap.String("reason", sig.Reason()))
				return nil
			}
			if models.IsBlank(line.Text) {
				continue
			}
			if err := p.publish(ctx, line.Text); err != nil {
				return err
			}
		}
	}
}

func (p *ProducerLoop) publish(ctx context.Context, text string) error {
	msg := models.NewMessage(p.Config.Topic, p.Config.Sender, text, p.Now())

	start := time.Now()
	receipt, err := p.Publisher.Publish(ctx, msg)
	if err != nil {
		if ctx.Err() != nil {
			p.Logger.Info("publish interrupted by shutdown")
			return nil
		}
		kind := errors.KindOf(err)
		metrics.PublishFailures.WithLabelValues(kind.String()).Inc()
		if kind == errors.Connection {
			p.Logger.Error("bus unreachable, stopping producer", zap.Error(err))
			return err
		}
		p.failed.Add(1)
		p.Logger.Warn("failed to publish message", zap.String("topic", msg.Topic), zap.Error(err))
		return nil
	}
	metrics.PublishLatency.Observe(time.Since(start).Seconds())
	metrics.MessagesPublished.Inc()
	p.published.Add(1)

	if err = p.Sink.Receipt(receipt); err != nil {
		p.Logger.Error("failed to write receipt", zap.Error(err))
	}
	return nil
}

func (p *ProducerLoop) release() {
	p.closeOnce.Do(func() {
		if err := p.Publisher.Close(); err != nil {
			p.Logger.Error("failed to close publisher", zap.Error(err))
		}
	})
}

// Stats is safe to call while Run is active.
func (p *ProducerLoop) Stats() ProducerStats {
	return ProducerStats{
		Published: p.published.Load(),
		Failed:    p.failed.Load(),
	}
}
