package chat

import (
	// Go Internal Packages
	"testing"
	"time"

	// Local Packages
	errors "bus-chat/errors"
	models "bus-chat/models"
	shutdown "bus-chat/shutdown"

	// External Packages
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var t0 = time.Unix(1700000000, 0)

func newTestConsumer(sub Subscriber, sink Sink, dlq DeadLetterQueue, pos models.InitialPosition) *ConsumerLoop {
	conf := &ConsumerConfig{
		Identity:        models.ConsumerIdentity{GroupID: "g", Topic: "chat", InitialPosition: pos, FreshGroup: true},
		PollTimeout:     50 * time.Millisecond,
		MaxConnRetries:  2,
		RetryBackoff:    time.Millisecond,
		MaxRetryBackoff: 4 * time.Millisecond,
	}
	loop := NewConsumerLoop(conf, sub, sink, dlq, zap.NewNop())
	loop.Now = func() time.Time { return t0 }
	return loop
}

func TestConsumerSkipsMalformedRecord(t *testing.T) {
	sig := shutdown.NewSignal()
	malformed := step{rec: &models.Record{Topic: "chat", Offset: 2, Value: []byte{0xff, 0xfe}, Timestamp: t0}}
	sub := newScriptedSubscriber(sig,
		okStep("one", t0.Add(time.Second)),
		timeoutStep(),
		malformed,
		okStep("two", t0.Add(2*time.Second)),
		okStep("three", t0.Add(3*time.Second)),
		cancelStep(),
	)
	sink := &recordingSink{}
	dlq := &recordingDLQ{}
	loop := newTestConsumer(sub, sink, dlq, models.Latest)

	require.NoError(t, loop.Run(sig))

	assert.Equal(t, []string{"one", "two", "three"}, sink.Messages())
	assert.Equal(t, []string{ConsumerBanner}, sink.Notices())
	assert.Equal(t, ConsumerStats{Received: 3, Skipped: 1}, loop.Stats())
	require.Len(t, dlq.records, 1)
	assert.Equal(t, int64(2), dlq.records[0].Offset)

	_, closes := sub.counts()
	assert.Equal(t, 1, closes)
}

func TestConsumerSkipsTransientFetchError(t *testing.T) {
	sig := shutdown.NewSignal()
	sub := newScriptedSubscriber(sig,
		errStep(errors.TransientReadErr("fetch chat", errors.New("corrupt batch"))),
		okStep("after", t0.Add(time.Second)),
		cancelStep(),
	)
	sink := &recordingSink{}
	loop := newTestConsumer(sub, sink, nil, models.Latest)

	require.NoError(t, loop.Run(sig))
	assert.Equal(t, []string{"after"}, sink.Messages())
	assert.Equal(t, int64(1), loop.Stats().Skipped)
}

func TestConsumerPreFiredSignal(t *testing.T) {
	sig := shutdown.NewFired("test")
	sub := newScriptedSubscriber(sig, okStep("never", t0))
	loop := newTestConsumer(sub, &recordingSink{}, nil, models.Latest)

	require.NoError(t, loop.Run(sig))

	polls, closes := sub.counts()
	assert.Equal(t, 0, polls)
	assert.Equal(t, 1, closes)
}

func TestConsumerGivesUpAfterConnectionRetries(t *testing.T) {
	sig := shutdown.NewSignal()
	connErr := errors.ConnectionErr("fetch chat", errors.New("connection refused"))
	sub := newScriptedSubscriber(sig, errStep(connErr), errStep(connErr), errStep(connErr), okStep("late", t0))
	loop := newTestConsumer(sub, &recordingSink{}, nil, models.Latest)

	err := loop.Run(sig)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.Connection))

	polls, closes := sub.counts()
	assert.Equal(t, 3, polls)
	assert.Equal(t, 1, closes)
}

func TestConsumerRecoversFromConnectionError(t *testing.T) {
	sig := shutdown.NewSignal()
	connErr := errors.ConnectionErr("fetch chat", errors.New("connection reset"))
	sub := newScriptedSubscriber(sig,
		errStep(connErr), errStep(connErr), okStep("back", t0.Add(time.Second)),
		errStep(connErr), errStep(connErr), okStep("again", t0.Add(2*time.Second)),
		cancelStep(),
	)
	sink := &recordingSink{}
	loop := newTestConsumer(sub, sink, nil, models.Latest)

	require.NoError(t, loop.Run(sig))
	assert.Equal(t, []string{"back", "again"}, sink.Messages())
}

func TestConsumerLatestDropsEarlierRecords(t *testing.T) {
	sig := shutdown.NewSignal()
	sub := newScriptedSubscriber(sig,
		okStep("history", t0.Add(-time.Minute)),
		okStep("fresh", t0.Add(time.Second)),
		cancelStep(),
	)
	sink := &recordingSink{}
	loop := newTestConsumer(sub, sink, nil, models.Latest)

	require.NoError(t, loop.Run(sig))
	assert.Equal(t, []string{"fresh"}, sink.Messages())
	assert.Equal(t, int64(1), loop.Stats().Dropped)
}

func TestConsumerNamedGroupKeepsBacklog(t *testing.T) {
	sig := shutdown.NewSignal()
	sub := newScriptedSubscriber(sig,
		okStep("missed while away", t0.Add(-time.Hour)),
		okStep("fresh", t0.Add(time.Second)),
		cancelStep(),
	)
	sink := &recordingSink{}
	loop := newTestConsumer(sub, sink, nil, models.Latest)
	loop.Config.Identity = models.NewConsumerIdentity("team", "bus-chat", "chat", models.Latest)

	require.NoError(t, loop.Run(sig))
	assert.Equal(t, []string{"missed while away", "fresh"}, sink.Messages())
	assert.Zero(t, loop.Stats().Dropped)
}

func TestConsumerEarliestKeepsHistory(t *testing.T) {
	sig := shutdown.NewSignal()
	sub := newScriptedSubscriber(sig,
		okStep("history", t0.Add(-time.Minute)),
		okStep("fresh", t0.Add(time.Second)),
		cancelStep(),
	)
	sink := &recordingSink{}
	loop := newTestConsumer(sub, sink, nil, models.Earliest)

	require.NoError(t, loop.Run(sig))
	assert.Equal(t, []string{"history", "fresh"}, sink.Messages())
}

func TestConsumerStopsWithinPollTimeout(t *testing.T) {
	sig := shutdown.NewSignal()
	sub := newScriptedSubscriber(sig)
	loop := newTestConsumer(sub, &recordingSink{}, nil, models.Latest)

	done := make(chan error, 1)
	go func() { done <- loop.Run(sig) }()

	time.Sleep(80 * time.Millisecond)
	sig.Fire("interrupt")
	sig.Fire("interrupt")

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(loop.Config.PollTimeout + 500*time.Millisecond):
		t.Fatal("consumer did not stop within one poll interval")
	}
	_, closes := sub.counts()
	assert.Equal(t, 1, closes)
}
