package stagehand

import "time"

// DefaultIdleDelay is returned by Tick when no workflow is authoritative.
const DefaultIdleDelay = 600 * time.Millisecond

type Option func(*Executor)

func WithLogger(logger Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithIdleDelay(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.idle = d
		}
	}
}

// WithInitialStage resumes a run at stage instead of the first one.
func WithInitialStage(stage Stage) Option {
	return func(e *Executor) {
		e.initial = stage
	}
}

// WithStallWarning logs a warning every n ticks spent in the same stage.
// It never changes state. Zero disables the warning.
func WithStallWarning(n int) Option {
	return func(e *Executor) {
		if n >= 0 {
			e.stallWarn = n
		}
	}
}

func WithPanicLogger(logger PanicLogger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.panicLogger = logger
		}
	}
}

// WithTransitionHook registers fn to be called after every effective stage
// change with the number of ticks spent in the stage being left.
func WithTransitionHook(fn func(from, to Stage, ticks int)) Option {
	return func(e *Executor) {
		if fn != nil {
			e.hooks = append(e.hooks, fn)
		}
	}
}
