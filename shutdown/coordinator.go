package shutdown

import (
	// Go Internal Packages
	"os"
	"os/signal"
	"sync"
	"syscall"

	// External Packages
	"go.uber.org/zap"
)

// Coordinator turns process interrupts into a cooperative shutdown by firing
// its Signal instead of letting the runtime terminate the process.
type Coordinator struct {
	Signal *Signal
	logger *zap.Logger

	mu    sync.Mutex
	sigCh chan os.Signal
	done  chan struct{}
}

func NewCoordinator(sig *Signal, logger *zap.Logger) *Coordinator {
	return &Coordinator{Signal: sig, logger: logger}
}

// Arm starts handling SIGINT and SIGTERM. Calling it again is a no-op.
func (c *Coordinator) Arm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sigCh != nil {
		return
	}

	c.sigCh = make(chan os.Signal, 1)
	c.done = make(chan struct{})
	signal.Notify(c.sigCh, os.Interrupt, syscall.SIGTERM)

	go func(sigCh <-chan os.Signal, done <-chan struct{}) {
		for {
			select {
			case s := <-sigCh:
				c.handle(s)
			case <-done:
				return
			}
		}
	}(c.sigCh, c.done)
}

// Disarm restores default signal handling. Calling it again is a no-op.
func (c *Coordinator) Disarm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sigCh == nil {
		return
	}
	signal.Stop(c.sigCh)
	close(c.done)
	c.sigCh = nil
}

func (c *Coordinator) handle(s os.Signal) {
	if c.Signal.Fire("received " + s.String()) {
		c.logger.Info("shutdown requested", zap.String("signal", s.String()))
		return
	}
	c.logger.Info("shutdown already in progress", zap.String("signal", s.String()))
}
