package chat

import (
	// Go Internal Packages
	"context"
	"sync"
	"time"

	// Local Packages
	models "bus-chat/models"
	shutdown "bus-chat/shutdown"

	// External Packages
	"github.com/stretchr/testify/mock"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, msg models.Message) (models.DeliveryReceipt, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(models.DeliveryReceipt), args.Error(1)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// step is one scripted Poll result. cancel fires the signal and returns the
// context error, the way a real subscriber reacts to cancellation mid-poll.
type step struct {
	rec    *models.Record
	err    error
	cancel bool
}

func okStep(value string, ts time.Time) step {
	return step{rec: &models.Record{Topic: "chat", Value: []byte(value), Timestamp: ts}}
}

func timeoutStep() step {
	return step{}
}

func errStep(err error) step {
	return step{err: err}
}

func cancelStep() step {
	return step{cancel: true}
}

// scriptedSubscriber plays its steps in order and then idles like a quiet
// topic until the context is cancelled.
type scriptedSubscriber struct {
	mu     sync.Mutex
	steps  []step
	sig    *shutdown.Signal
	polls  int
	closes int
}

func newScriptedSubscriber(sig *shutdown.Signal, steps ...step) *scriptedSubscriber {
	return &scriptedSubscriber{sig: sig, steps: steps}
}

func (s *scriptedSubscriber) Poll(ctx context.Context, wait time.Duration) (*models.Record, error) {
	s.mu.Lock()
	s.polls++
	if len(s.steps) == 0 {
		s.mu.Unlock()
		t := time.NewTimer(wait)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
			return nil, nil
		}
	}
	st := s.steps[0]
	s.steps = s.steps[1:]
	s.mu.Unlock()

	if st.cancel {
		s.sig.Fire("scripted cancel")
		return nil, ctx.Err()
	}
	return st.rec, st.err
}

func (s *scriptedSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

func (s *scriptedSubscriber) counts() (polls, closes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls, s.closes
}

type recordingSink struct {
	mu       sync.Mutex
	messages []string
	receipts []models.DeliveryReceipt
	notices  []string
}

func (s *recordingSink) Message(msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg.Text())
	return nil
}

func (s *recordingSink) Receipt(r models.DeliveryReceipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipts = append(s.receipts, r)
	return nil
}

func (s *recordingSink) Notice(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, text)
	return nil
}

func (s *recordingSink) Notices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.notices...)
}

func (s *recordingSink) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

func (s *recordingSink) Receipts() []models.DeliveryReceipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.DeliveryReceipt(nil), s.receipts...)
}

type recordingDLQ struct {
	mu      sync.Mutex
	records []models.Record
}

func (d *recordingDLQ) Send(_ context.Context, rec models.Record, _ error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.records = append(d.records, rec)
	return nil
}

// feed returns a closed channel holding lines, like input that has ended.
func feed(lines ...string) <-chan Line {
	ch := make(chan Line, len(lines))
	for _, l := range lines {
		ch <- Line{Text: l}
	}
	close(ch)
	return ch
}
