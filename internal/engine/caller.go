package engine

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type CallerState string

const (
	CallerIdle    CallerState = "idle"
	CallerRunning CallerState = "running"
	CallerPaused  CallerState = "paused"
	CallerStopped CallerState = "stopped"
)

// Caller fires call every interval while running. It does not know about
// matches; the owner decides what a call does and when to stop.
type Caller struct {
	interval time.Duration
	call     func()

	mu     sync.Mutex
	state  CallerState
	cancel context.CancelFunc
}

func NewCaller(interval time.Duration, call func()) *Caller {
	return &Caller{
		interval: interval,
		call:     call,
		state:    CallerIdle,
	}
}

func (c *Caller) State() CallerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start moves an idle caller to running.
func (c *Caller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != CallerIdle {
		return fmt.Errorf("caller: cannot start from %s", c.state)
	}
	c.run()
	return nil
}

// Pause stops ticking but keeps the caller resumable.
func (c *Caller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != CallerRunning {
		return fmt.Errorf("caller: cannot pause from %s", c.state)
	}
	c.halt(CallerPaused)
	return nil
}

func (c *Caller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != CallerPaused {
		return fmt.Errorf("caller: cannot resume from %s", c.state)
	}
	c.run()
	return nil
}

// Stop is terminal and safe to call more than once.
func (c *Caller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == CallerStopped {
		return
	}
	c.halt(CallerStopped)
}

// run must be called with mu held.
func (c *Caller) run() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.state = CallerRunning
	go c.loop(ctx)
}

// halt must be called with mu held.
func (c *Caller) halt(next CallerState) {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = next
}

func (c *Caller) loop(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			c.call()
		}
	}
}
