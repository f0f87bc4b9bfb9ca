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

// Subscriber hands out records one at a time in the order they were fetched.
// It is owned by a single goroutine.
type Subscriber struct {
	client         *kgo.Client
	recordsPerPoll int
	pingAfter      int
	pingTimeout    time.Duration
	logger         *zap.Logger

	pending    []models.Record
	pendingErr error
	idle       int
	suspect    bool
	closeOnce  sync.Once
}

// NewSubscriber wraps client. After pingAfter consecutive empty polls the
// brokers are pinged under pingTimeout; a pingAfter of zero or less never
// pings.
func NewSubscriber(client *kgo.Client, recordsPerPoll, pingAfter int, pingTimeout time.Duration, logger *zap.Logger) *Subscriber {
	return &Subscriber{
		client:         client,
		recordsPerPoll: recordsPerPoll,
		pingAfter:      pingAfter,
		pingTimeout:    pingTimeout,
		logger:         logger,
	}
}

// Poll returns the next record, waiting at most wait for one to arrive. It
// returns (nil, nil) when the wait elapsed without data and ctx.Err() when
// ctx was cancelled. A bus that stays silent and then fails a ping yields a
// Connection error.
func (s *Subscriber) Poll(ctx context.Context, wait time.Duration) (*models.Record, error) {
	if len(s.pending) == 0 && s.pendingErr == nil {
		if err := s.fetch(ctx, wait); err != nil {
			return nil, err
		}
	}

	if len(s.pending) > 0 {
		s.idle, s.suspect = 0, false
		rec := s.pending[0]
		s.pending = s.pending[1:]
		return &rec, nil
	}

	if s.pendingErr != nil {
		s.idle = 0
		s.suspect = errors.IsKind(s.pendingErr, errors.Connection)
		err := s.pendingErr
		s.pendingErr = nil
		return nil, err
	}
	return nil, s.idleCheck(ctx)
}

// idleCheck counts an empty poll. franz-go keeps retrying unreachable
// brokers behind PollRecords, so silence alone cannot tell a quiet topic
// from an outage; every pingAfter empty polls the brokers must answer a ping.
// Once a ping has failed, every empty poll pings until one succeeds, so a
// plain timeout after a Connection error means the bus is back.
func (s *Subscriber) idleCheck(ctx context.Context) error {
	if s.pingAfter <= 0 {
		return nil
	}
	if !s.suspect {
		s.idle++
		if s.idle < s.pingAfter {
			return nil
		}
	}
	s.idle = 0

	if err := ping(ctx, s.client, s.pingTimeout); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.suspect = true
		s.logger.Warn("bus unreachable while idle", zap.Error(err))
		return errors.ConnectionErr("poll", err)
	}
	if s.suspect {
		s.logger.Info("bus reachable again")
		s.suspect = false
	}
	return nil
}

func (s *Subscriber) fetch(ctx context.Context, wait time.Duration) error {
	pollCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	fetches := s.client.PollRecords(pollCtx, s.recordsPerPoll)

	// Handle client shutdown
	if fetches.IsClientClosed() {
		return errors.ConnectionErr("poll", kgo.ErrClientClosed)
	}

	// Handle context cancellation explicitly
	if ctx.Err() != nil {
		return ctx.Err()
	}

	fetches.EachError(func(topic string, partition int32, err error) {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return
		}
		s.logger.Warn("fetch error", zap.String("topic", topic), zap.Int32("partition", partition), zap.Error(err))
		if s.pendingErr == nil {
			s.pendingErr = classify(err, errors.TransientRead, "fetch "+topic)
		}
	})

	fetches.EachRecord(func(r *kgo.Record) {
		s.pending = append(s.pending, models.Record{
			Key:       r.Key,
			Value:     r.Value,
			Topic:     r.Topic,
			Partition: r.Partition,
			Offset:    r.Offset,
			Timestamp: r.Timestamp,
		})
	})
	return nil
}

// Close leaves the consumer group and closes the client. It is safe to call
// more than once.
func (s *Subscriber) Close() error {
	s.closeOnce.Do(func() {
		s.client.Close()
		s.pending = nil
		s.logger.Debug("subscriber closed")
	})
	return nil
}
