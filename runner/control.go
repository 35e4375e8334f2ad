package runner

import (
	"context"
	"sync"
)

// Control lets an operator pause, resume or stop a running Loop between
// ticks. A tick in flight always finishes.
type Control interface {
	WaitIfPaused(ctx context.Context) error
	Done() <-chan struct{}
	CancelCause() error
}

type noopControl struct{}

func (noopControl) WaitIfPaused(ctx context.Context) error {
	return ctx.Err()
}

func (noopControl) Done() <-chan struct{} {
	return nil
}

func (noopControl) CancelCause() error {
	return nil
}

// RunState is what an operator sees of a loop.
type RunState string

const (
	StateRunning RunState = "running"
	StatePaused  RunState = "paused"
	StateStopped RunState = "stopped"
)

// ManualControl is driven by hand, from a signal handler or a test.
type ManualControl struct {
	mu    sync.Mutex
	state RunState
	// changed is closed and replaced on every transition.
	changed chan struct{}
	done    chan struct{}
	cause   error
}

func NewManualControl() *ManualControl {
	return &ManualControl{
		state:   StateRunning,
		changed: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// WaitIfPaused returns at once unless paused. A paused control blocks until
// it is resumed, stopped or ctx is done.
func (c *ManualControl) WaitIfPaused(ctx context.Context) error {
	if c == nil {
		return ctx.Err()
	}
	for {
		c.mu.Lock()
		state, changed, cause := c.state, c.changed, c.cause
		c.mu.Unlock()

		switch state {
		case StateStopped:
			return cause
		case StateRunning:
			return ctx.Err()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}

func (c *ManualControl) Done() <-chan struct{} {
	if c == nil {
		return nil
	}
	return c.done
}

func (c *ManualControl) CancelCause() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cause
}

// Pause holds the loop before its next tick until Resume or Cancel.
func (c *ManualControl) Pause() {
	c.move(StatePaused, nil)
}

func (c *ManualControl) Resume() {
	c.move(StateRunning, nil)
}

// Cancel stops the loop for good. Run returns cause, or ErrStopped when
// cause is nil. Only the first cancel counts.
func (c *ManualControl) Cancel(cause error) {
	if cause == nil {
		cause = ErrStopped.Clone()
	}
	c.move(StateStopped, cause)
}

// Toggle flips between running and paused and reports whether the loop is
// paused afterwards.
func (c *ManualControl) Toggle() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateRunning:
		c.transition(StatePaused, nil)
	case StatePaused:
		c.transition(StateRunning, nil)
	}
	return c.state == StatePaused
}

func (c *ManualControl) Paused() bool {
	return c.State() == StatePaused
}

func (c *ManualControl) State() RunState {
	if c == nil {
		return StateRunning
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *ManualControl) move(to RunState, cause error) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transition(to, cause)
}

// transition must hold c.mu. Stopped is final.
func (c *ManualControl) transition(to RunState, cause error) {
	if c.state == StateStopped || c.state == to {
		return
	}
	c.state = to
	if to == StateStopped {
		c.cause = cause
		close(c.done)
	}
	close(c.changed)
	c.changed = make(chan struct{})
}
