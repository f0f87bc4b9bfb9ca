// Package shutdown holds the process wide stop signal and the interrupt
// handling that fires it.
package shutdown

import (
	// Go Internal Packages
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Signal is a single fire, broadcast flag. Once fired it stays fired. It is
// safe to fire from one goroutine and observe from any number of others.
type Signal struct {
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	fired  atomic.Bool
	reason atomic.Value
}

// NewSignal returns a signal that is not fired.
func NewSignal() *Signal {
	ctx, cancel := context.WithCancel(context.Background())
	return &Signal{ctx: ctx, cancel: cancel}
}

// NewFired returns a signal that is already fired.
func NewFired(reason string) *Signal {
	s := NewSignal()
	s.Fire(reason)
	return s
}

// Fire sets the signal. Only the first call has an effect; it returns true
// for that call.
func (s *Signal) Fire(reason string) bool {
	first := false
	s.once.Do(func() {
		s.reason.Store(reason)
		s.fired.Store(true)
		s.cancel()
		first = true
	})
	return first
}

// Fired reports whether the signal was set.
func (s *Signal) Fired() bool {
	return s.fired.Load()
}

// Reason returns the reason given to the first Fire call.
func (s *Signal) Reason() string {
	r, _ := s.reason.Load().(string)
	return r
}

// Done is closed when the signal fires.
func (s *Signal) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Context is cancelled when the signal fires.
func (s *Signal) Context() context.Context {
	return s.ctx
}

// Wait blocks until the signal fires or timeout elapses and reports whether
// it fired.
func (s *Signal) Wait(timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-s.Done():
		return true
	case <-t.C:
		return s.Fired()
	}
}
