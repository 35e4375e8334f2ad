package runner

import (
	"time"

	stagehand "github.com/goliatone/go-stagehand"
)

type Option func(*Loop)

// WithTimeout bounds the whole run.
func WithTimeout(t time.Duration) Option {
	return func(l *Loop) {
		l.timeout = t
	}
}

func WithDeadline(d time.Time) Option {
	return func(l *Loop) {
		l.deadline = d
	}
}

// WithMaxTicks stops the run with ErrMaxTicks after max ticks. Zero means no
// limit.
func WithMaxTicks(max int) Option {
	return func(l *Loop) {
		l.maxTicks = max
	}
}

// WithTimeScale multiplies every delay before sleeping on it. Zero skips the
// sleeps entirely, which is what simulations want.
func WithTimeScale(scale float64) Option {
	return func(l *Loop) {
		if scale < 0 {
			scale = 0
		}
		l.timeScale = scale
	}
}

// WithUntil stops the run cleanly once done reports true. It is checked
// before every tick.
func WithUntil(done func() bool) Option {
	return func(l *Loop) {
		l.until = done
	}
}

// WithTickHook is called after every tick with the tick count and the delay
// the ticker asked for.
func WithTickHook(hook func(tick int, delay time.Duration)) Option {
	return func(l *Loop) {
		l.tickHook = hook
	}
}

func WithLogger(logger stagehand.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

func WithDoneHandler(d func(*Loop)) Option {
	return func(l *Loop) {
		if d == nil {
			d = func(*Loop) {}
		}
		l.doneHandler = d
	}
}

func WithControl(c Control) Option {
	return func(l *Loop) {
		if c == nil {
			c = noopControl{}
		}
		l.control = c
	}
}
