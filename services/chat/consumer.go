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

type ConsumerConfig struct {
	Identity        models.ConsumerIdentity
	PollTimeout     time.Duration
	MaxConnRetries  int
	RetryBackoff    time.Duration
	MaxRetryBackoff time.Duration
	MaxMessageBytes int
}

// ConsumerStats are the consumer loop counters.
type ConsumerStats struct {
	Received int64
	Skipped  int64
	Dropped  int64
}

// ConsumerLoop forwards records from its subscriber to the sink until the
// shutdown signal fires or the bus stays unreachable.
type ConsumerLoop struct {
	Config     *ConsumerConfig
	Subscriber Subscriber
	Sink       Sink
	DLQ        DeadLetterQueue
	Logger     *zap.Logger
	Now        func() time.Time

	received  atomic.Int64
	skipped   atomic.Int64
	dropped   atomic.Int64
	closeOnce sync.Once
}

// NewConsumerLoop takes ownership of sub. dlq may be nil.
func NewConsumerLoop(conf *ConsumerConfig, sub Subscriber, sink Sink, dlq DeadLetterQueue, logger *zap.Logger) *ConsumerLoop {
	return &ConsumerLoop{
		Config:     conf,
		Subscriber: sub,
		Sink:       sink,
		DLQ:        dlq,
		Logger:     logger.With(zap.String("loop", "consumer")),
		Now:        time.Now,
	}
}

// Run polls until sig fires, which is a clean exit (nil), or until the
// subscriber reports more consecutive connectivity failures than allowed,
// which is returned. The subscriber is closed on every path.
func (c *ConsumerLoop) Run(sig *shutdown.Signal) error {
	defer c.release()

	ctx := sig.Context()
	activatedAt := c.Now()
	bo := newBackoff(c.Config.RetryBackoff, c.Config.MaxRetryBackoff)
	failures := 0

	c.Logger.Info("consuming",
		zap.String("topic", c.Config.Identity.Topic),
		zap.String("group", c.Config.Identity.GroupID),
		zap.Stringer("initial_position", c.Config.Identity.InitialPosition),
	)
	if err := c.Sink.Notice(ConsumerBanner); err != nil {
		c.Logger.Error("failed to write banner", zap.Error(err))
	}

	for {
		if sig.Fired() {
			c.Logger.Info("consumer stopping", zap.String("reason", sig.Reason()))
			return nil
		}

		rec, err := c.Subscriber.Poll(ctx, c.Config.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				// Cancelled mid-poll; the next iteration sees the signal.
				continue
			}
			if errors.IsKind(err, errors.Connection) {
				failures++
				if failures > c.Config.MaxConnRetries {
					c.Logger.Error("bus unreachable, giving up", zap.Int("attempts", failures), zap.Error(err))
					return err
				}
				metrics.ConnectionRetries.WithLabelValues("consumer").Inc()
				wait := bo.duration()
				c.Logger.Warn("poll failed, retrying",
					zap.Int("attempt", failures),
					zap.Duration("backoff", wait),
					zap.Error(err),
				)
				sig.Wait(wait)
				continue
			}
			c.skipped.Add(1)
			metrics.RecordsSkipped.WithLabelValues("fetch").Inc()
			c.Logger.Warn("poll returned an error, skipping", zap.Error(err))
			continue
		}

		failures = 0
		bo.reset()

		// Poll timed out
		if rec == nil {
			continue
		}
		c.handle(ctx, *rec, activatedAt)
	}
}

func (c *ConsumerLoop) handle(ctx context.Context, rec models.Record, activatedAt time.Time) {
	msg, err := models.DecodeRecord(rec, c.Config.MaxMessageBytes)
	if err != nil {
		c.skipped.Add(1)
		metrics.RecordsSkipped.WithLabelValues("malformed").Inc()
		c.Logger.Warn("skipping malformed record",
			zap.String("topic", rec.Topic),
			zap.Int32("partition", rec.Partition),
			zap.Int64("offset", rec.Offset),
			zap.Error(err),
		)
		if c.DLQ != nil {
			if dlqErr := c.DLQ.Send(ctx, rec, err); dlqErr != nil {
				c.Logger.Error("failed to dead-letter record", zap.Int64("offset", rec.Offset), zap.Error(dlqErr))
			}
		}
		return
	}

	// A fresh group reading from the latest offset only shows what was said
	// after it joined. A named group resumes from its committed offsets and
	// keeps its backlog.
	if c.hidesHistory() && !msg.ProducedAt.IsZero() && msg.ProducedAt.Before(activatedAt) {
		c.dropped.Add(1)
		metrics.RecordsSkipped.WithLabelValues("before_activation").Inc()
		c.Logger.Debug("dropping record produced before subscription",
			zap.Int64("offset", rec.Offset),
			zap.Time("produced_at", msg.ProducedAt),
		)
		return
	}

	if err = c.Sink.Message(msg); err != nil {
		c.Logger.Error("failed to write message", zap.Error(err))
		return
	}
	c.received.Add(1)
	metrics.MessagesReceived.Inc()
}

func (c *ConsumerLoop) hidesHistory() bool {
	id := c.Config.Identity
	return id.FreshGroup && id.InitialPosition == models.Latest
}

func (c *ConsumerLoop) release() {
	c.closeOnce.Do(func() {
		if err := c.Subscriber.Close(); err != nil {
			c.Logger.Error("failed to close subscriber", zap.Error(err))
		}
	})
}

// Stats is safe to call while Run is active.
func (c *ConsumerLoop) Stats() ConsumerStats {
	return ConsumerStats{
		Received: c.received.Load(),
		Skipped:  c.skipped.Load(),
		Dropped:  c.dropped.Load(),
	}
}
