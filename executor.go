package stagehand

import (
	"context"
	"time"
)

// Executor owns the macro state and dispatches each tick to the single
// workflow that validates for it.
type Executor struct {
	stages  []Stage
	order   map[Stage]int
	initial Stage

	current Stage
	ticks   int
	reached int

	workflows []Workflow
	sealed    bool

	idle        time.Duration
	stallWarn   int
	logger      Logger
	panicLogger PanicLogger
	hooks       []func(from, to Stage, ticks int)
}

// Snapshot is a read-only view of executor progress.
type Snapshot struct {
	Stage     Stage           `json:"stage"`
	Workflow  Stage           `json:"workflow,omitempty"`
	Substate  string          `json:"substate,omitempty"`
	Flags     map[string]bool `json:"flags,omitempty"`
	Ticks     int             `json:"ticks"`
	Completed []Stage         `json:"completed,omitempty"`
}

// NewExecutor builds an executor over the ordered stage list. The first stage
// is active unless WithInitialStage selects another one.
func NewExecutor(stages []Stage, opts ...Option) (*Executor, error) {
	if len(stages) == 0 {
		return nil, ErrEmptyStages.Clone()
	}

	e := &Executor{
		stages: make([]Stage, 0, len(stages)),
		order:  make(map[Stage]int, len(stages)),
		idle:   DefaultIdleDelay,
	}

	for i, stage := range stages {
		if _, ok := e.order[stage]; ok {
			return nil, stageError(ErrDuplicateStage, stage)
		}
		e.order[stage] = i
		e.stages = append(e.stages, stage)
	}

	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	e.logger = NormalizeLogger(e.logger)
	if e.panicLogger == nil {
		e.panicLogger = LoggerPanicLogger(e.logger)
	}

	e.current = e.stages[0]
	if e.initial != "" {
		idx, ok := e.order[e.initial]
		if !ok {
			return nil, stageError(ErrUnknownStage, e.initial)
		}
		e.current = e.initial
		e.reached = idx
	}

	return e, nil
}

// Register installs the workflow registry. Order is significant: the first
// workflow that validates wins. Register can only succeed once.
func (e *Executor) Register(workflows ...Workflow) error {
	if e.sealed {
		return ErrRegistryInitialized.Clone()
	}

	owners := make(map[Stage]bool, len(workflows))
	for _, wf := range workflows {
		if wf == nil {
			return ErrNilWorkflow.Clone()
		}
		stage := wf.Stage()
		if _, ok := e.order[stage]; !ok {
			return stageError(ErrUnknownStage, stage)
		}
		if owners[stage] {
			return stageError(ErrDuplicateWorkflow, stage)
		}
		owners[stage] = true
	}

	e.workflows = append([]Workflow(nil), workflows...)
	e.sealed = true
	return nil
}

// Tick runs one cycle: the first workflow that validates executes, otherwise
// the idle delay is returned. Tick never panics.
func (e *Executor) Tick(ctx context.Context) time.Duration {
	if ctx.Err() != nil {
		return e.idle
	}

	wf := e.Active(ctx)
	if wf == nil {
		return e.idle
	}

	delay := e.execute(ctx, wf)
	e.warnIfStalled(wf)
	return delay
}

// Active returns the authoritative workflow for the current stage, or nil.
func (e *Executor) Active(ctx context.Context) Workflow {
	for _, wf := range e.workflows {
		if wf.Validate(ctx) {
			return wf
		}
	}
	return nil
}

func (e *Executor) execute(ctx context.Context, wf Workflow) (delay time.Duration) {
	delay = e.idle
	defer MakePanicHandler(func(funcName string, err any, stack []byte, fields ...map[string]any) {
		e.panicLogger(funcName, err, stack, fields...)
		delay = e.idle
	})("workflow.Execute", map[string]any{
		"stage":    string(wf.Stage()),
		"substate": wf.Substate(),
	})

	delay = wf.Execute(ctx)
	if delay <= 0 {
		e.logger.Warn("workflow %s returned non-positive delay %s", wf.Stage(), delay)
		delay = e.idle
	}
	return delay
}

func (e *Executor) warnIfStalled(wf Workflow) {
	if e.stallWarn <= 0 || e.ticks == 0 || e.ticks%e.stallWarn != 0 {
		return
	}
	WithLoggerFields(e.logger, map[string]any{
		"stage":    string(e.current),
		"substate": wf.Substate(),
		"ticks":    e.ticks,
	}).Warn("stage %s has not advanced after %d ticks", e.current, e.ticks)
}

// Current returns the active macro stage.
func (e *Executor) Current() Stage {
	return e.current
}

// Ticks returns the number of executions since the current stage became active.
func (e *Executor) Ticks() int {
	return e.ticks
}

// IncrementTick is called by the authoritative workflow on every execute.
func (e *Executor) IncrementTick() {
	e.ticks++
}

// Advance moves the macro state to stage and resets the tick counter. Moving to
// the current stage is a no-op; unknown stages are ignored.
func (e *Executor) Advance(to Stage) {
	idx, ok := e.order[to]
	if !ok {
		e.logger.Error("ignoring advance to unknown stage %q", to)
		return
	}
	if to == e.current {
		e.logger.Trace("advance to current stage %s ignored", to)
		return
	}

	from, spent := e.current, e.ticks
	e.current = to
	e.ticks = 0
	if idx > e.reached {
		e.reached = idx
	}

	WithLoggerFields(e.logger, map[string]any{
		"from":  string(from),
		"to":    string(to),
		"ticks": spent,
	}).Info("stage changed %s -> %s", from, to)

	for _, hook := range e.hooks {
		hook(from, to, spent)
	}
}

// IsComplete reports whether the run has moved past stage. Once true it stays
// true for the lifetime of the executor.
func (e *Executor) IsComplete(stage Stage) bool {
	idx, ok := e.order[stage]
	if !ok {
		return false
	}
	return idx < e.reached
}

// Stages returns the ordered stage list.
func (e *Executor) Stages() []Stage {
	return append([]Stage(nil), e.stages...)
}

// Workflows returns the registry in dispatch order.
func (e *Executor) Workflows() []Workflow {
	return append([]Workflow(nil), e.workflows...)
}

// Snapshot reports the current stage, the authoritative workflow's substate
// and flags, the tick counter and every completed stage.
func (e *Executor) Snapshot(ctx context.Context) Snapshot {
	snap := Snapshot{
		Stage: e.current,
		Ticks: e.ticks,
	}
	for _, stage := range e.stages {
		if e.IsComplete(stage) {
			snap.Completed = append(snap.Completed, stage)
		}
	}
	if wf := e.Active(ctx); wf != nil {
		snap.Workflow = wf.Stage()
		snap.Substate = wf.Substate()
		if fr, ok := wf.(FlagReporter); ok {
			snap.Flags = fr.Flags()
		}
	}
	return snap
}
