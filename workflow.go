package stagehand

import (
	"context"
	"time"
)

// Stage identifies one macro step of a procedure. The set of stages and their
// order is fixed when the Executor is constructed.
type Stage string

func (s Stage) String() string { return string(s) }

// Workflow drives a single stage. Exactly one registered workflow validates
// for any given stage.
type Workflow interface {
	// Stage is the stage this workflow owns.
	Stage() Stage
	// Validate reports whether the workflow is authoritative this cycle.
	// It must not act on the world.
	Validate(ctx context.Context) bool
	// Execute performs at most one world action and returns the delay the
	// caller should wait before the next tick.
	Execute(ctx context.Context) time.Duration
	// IsComplete reports whether the stage has been left behind.
	IsComplete() bool
	// Substate names the workflow's current internal progress.
	Substate() string
}

// FlagReporter is implemented by workflows that keep provenance flags.
type FlagReporter interface {
	Flags() map[string]bool
}

// Controller is the capability handed to workflows so they can inspect and
// advance the shared macro state.
type Controller interface {
	Current() Stage
	Advance(to Stage)
	IncrementTick()
	IsComplete(stage Stage) bool
}

// Ticker is implemented by anything the outer loop can poll.
type Ticker interface {
	Tick(ctx context.Context) time.Duration
}
