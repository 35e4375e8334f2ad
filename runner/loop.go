// Package runner owns the outer loop: it ticks an executor, sleeps on the
// delay it returns and stops on a tick budget, a condition or cancellation.
package runner

import (
	"context"
	"sync"
	"time"

	stagehand "github.com/goliatone/go-stagehand"
)

type Loop struct {
	mu sync.Mutex

	ticker      stagehand.Ticker
	logger      stagehand.Logger
	control     Control
	doneHandler func(*Loop)
	tickHook    func(tick int, delay time.Duration)
	until       func() bool

	maxTicks  int
	timeScale float64
	timeout   time.Duration
	deadline  time.Time

	ticks int
	slept time.Duration
}

// New builds a loop over t. Delays are honoured as returned unless
// WithTimeScale says otherwise.
func New(t stagehand.Ticker, opts ...Option) *Loop {
	l := &Loop{
		ticker:      t,
		control:     noopControl{},
		doneHandler: func(*Loop) {},
		timeScale:   1,
	}
	for _, o := range opts {
		if o != nil {
			o(l)
		}
	}
	l.logger = stagehand.NormalizeLogger(l.logger)
	return l
}

// Run ticks until the until condition holds, the tick budget runs out, the
// control is cancelled or ctx is done. Reaching the condition returns nil.
func (l *Loop) Run(ctx context.Context) error {
	ctx, cancel := l.contextWithSettings(ctx)
	defer cancel()

	for {
		if l.until != nil && l.until() {
			l.logger.Info("run finished after %d ticks", l.Ticks())
			l.doneHandler(l)
			return nil
		}
		if l.maxTicks > 0 && l.Ticks() >= l.maxTicks {
			return ErrMaxTicks.Clone().WithMetadata(map[string]any{"max_ticks": l.maxTicks})
		}
		if err := l.control.WaitIfPaused(ctx); err != nil {
			return err
		}

		delay := l.ticker.Tick(ctx)

		l.mu.Lock()
		l.ticks++
		tick := l.ticks
		l.mu.Unlock()

		if l.tickHook != nil {
			l.tickHook(tick, delay)
		}
		if err := l.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// Ticks returns how many ticks Run has issued.
func (l *Loop) Ticks() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ticks
}

// Slept returns the scaled time spent waiting between ticks.
func (l *Loop) Slept() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.slept
}

func (l *Loop) sleep(ctx context.Context, delay time.Duration) error {
	d := time.Duration(float64(delay) * l.timeScale)
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.control.Done():
		return l.control.CancelCause()
	case <-timer.C:
	}

	l.mu.Lock()
	l.slept += d
	l.mu.Unlock()
	return nil
}

func (l *Loop) contextWithSettings(parent context.Context) (context.Context, context.CancelFunc) {
	switch {
	case l.timeout != 0 && !l.deadline.IsZero():
		ctx, cancelTimeout := context.WithTimeout(parent, l.timeout)
		ctxDeadline, cancelDeadline := context.WithDeadline(ctx, l.deadline)
		return ctxDeadline, func() {
			cancelDeadline()
			cancelTimeout()
		}
	case l.timeout != 0:
		return context.WithTimeout(parent, l.timeout)
	case !l.deadline.IsZero():
		return context.WithDeadline(parent, l.deadline)
	default:
		return context.WithCancel(parent)
	}
}
