// Package app wires a chat session together: it builds the bus clients,
// runs the consumer loop in the background and the producer loop on the
// calling goroutine, and makes sure the consumer has released its connection
// before Run returns.
package app

import (
	// Go Internal Packages
	"context"
	"io"
	"sync/atomic"
	"time"

	// Local Packages
	errors "bus-chat/errors"
	models "bus-chat/models"
	chat "bus-chat/services/chat"
	shutdown "bus-chat/shutdown"

	// External Packages
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientFactory builds the bus handles. A failure here aborts the run before
// any loop starts.
type ClientFactory func(ctx context.Context) (chat.Publisher, chat.Subscriber, error)

// SessionStore records one entry per run.
type SessionStore interface {
	Start(ctx context.Context, s models.Session) error
	Finish(ctx context.Context, s models.Session) error
}

type Config struct {
	Producer     chat.ProducerConfig
	Consumer     chat.ConsumerConfig
	GracePeriod  time.Duration
	MaxLineBytes int
	Host         string
}

type App struct {
	Config      *Config
	Factory     ClientFactory
	Input       io.Reader
	Sink        chat.Sink
	DLQ         chat.DeadLetterQueue
	Sessions    SessionStore
	Coordinator *shutdown.Coordinator
	Logger      *zap.Logger

	state atomic.Int32
}

func New(conf *Config, factory ClientFactory, input io.Reader, sink chat.Sink, coord *shutdown.Coordinator, logger *zap.Logger) *App {
	return &App{
		Config:      conf,
		Factory:     factory,
		Input:       input,
		Sink:        sink,
		Coordinator: coord,
		Logger:      logger,
	}
}

// State returns the current lifecycle state.
func (a *App) State() State {
	return State(a.state.Load())
}

// advance moves the lifecycle forward; moving backwards or staying put is
// refused, so Stopped is entered exactly once.
func (a *App) advance(to State) bool {
	for {
		cur := a.state.Load()
		if State(cur) >= to {
			return false
		}
		if a.state.CompareAndSwap(cur, int32(to)) {
			a.Logger.Info("state changed", zap.Stringer("from", State(cur)), zap.Stringer("to", to))
			return true
		}
	}
}

// Run executes one chat session. It returns nil on a clean shutdown and the
// fatal error otherwise: a Connection error when the bus could not be
// reached, or a Timeout error when the consumer did not stop within the
// grace period.
func (a *App) Run(ctx context.Context) error {
	defer a.advance(Stopped)

	pub, sub, err := a.Factory(ctx)
	if err != nil {
		a.Logger.Error("cannot connect to bus", zap.Error(err))
		return err
	}

	a.Coordinator.Arm()
	defer a.Coordinator.Disarm()
	sig := a.Coordinator.Signal

	go func() {
		select {
		case <-ctx.Done():
			sig.Fire("context cancelled")
		case <-sig.Done():
		}
	}()

	consumer := chat.NewConsumerLoop(&a.Config.Consumer, sub, a.Sink, a.DLQ, a.Logger)
	producer := chat.NewProducerLoop(&a.Config.Producer, pub, a.Sink, a.Logger)

	session := a.startSession(ctx)

	consumerDone := make(chan error, 1)
	go func() {
		err := consumer.Run(sig)
		if err != nil {
			// The producer would otherwise keep waiting for input.
			sig.Fire("consumer failed")
		}
		consumerDone <- err
	}()

	a.advance(Running)
	lines := chat.ReadLines(a.Input, a.Config.MaxLineBytes, sig.Done())
	producerErr := producer.Run(sig, lines)

	a.advance(ShuttingDown)
	sig.Fire("producer finished")

	consumerErr := a.join(consumerDone)

	result := errors.Join(producerErr, consumerErr)
	a.finishSession(session, producer.Stats(), consumer.Stats(), result)
	return result
}

// join waits for the consumer loop, but no longer than the grace period.
func (a *App) join(done <-chan error) error {
	grace := time.NewTimer(a.Config.GracePeriod)
	defer grace.Stop()

	select {
	case err := <-done:
		return err
	case <-grace.C:
		err := errors.GracePeriodErr("consumer", a.Config.GracePeriod)
		a.Logger.Error("consumer still running after grace period", zap.Error(err))
		return err
	}
}

func (a *App) startSession(ctx context.Context) *models.Session {
	if a.Sessions == nil {
		return nil
	}
	s := &models.Session{
		ID:              uuid.NewString(),
		GroupID:         a.Config.Consumer.Identity.GroupID,
		Topic:           a.Config.Consumer.Identity.Topic,
		User:            a.Config.Producer.Sender,
		Host:            a.Config.Host,
		InitialPosition: a.Config.Consumer.Identity.InitialPosition.String(),
		StartedAt:       time.Now().UTC(),
	}
	if err := a.Sessions.Start(ctx, *s); err != nil {
		a.Logger.Warn("failed to record session start", zap.Error(err))
		return nil
	}
	return s
}

func (a *App) finishSession(s *models.Session, ps chat.ProducerStats, cs chat.ConsumerStats, result error) {
	if s == nil {
		return
	}
	stoppedAt := time.Now().UTC()
	s.StoppedAt = &stoppedAt
	s.Published = ps.Published
	s.PublishFailures = ps.Failed
	s.Received = cs.Received
	s.Skipped = cs.Skipped
	s.Dropped = cs.Dropped
	s.Result = "ok"
	if result != nil {
		s.Result = result.Error()
	}

	// The run context may already be cancelled; give the store its own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.GracePeriod)
	defer cancel()
	if err := a.Sessions.Finish(ctx, *s); err != nil {
		a.Logger.Warn("failed to record session finish", zap.Error(err))
	}
}
