package stagehand

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorkflow struct {
	stage Stage
	next  Stage
	ctl   Controller
	delay time.Duration

	// advanceAfter hands over to next once this many executes have run.
	advanceAfter int
	panicOn      int

	executes  int
	validates int
}

func (f *fakeWorkflow) Stage() Stage { return f.stage }

func (f *fakeWorkflow) Validate(context.Context) bool {
	f.validates++
	return f.ctl.Current() == f.stage
}

func (f *fakeWorkflow) Execute(context.Context) time.Duration {
	f.ctl.IncrementTick()
	f.executes++
	if f.panicOn > 0 && f.executes == f.panicOn {
		panic("boom")
	}
	if f.advanceAfter > 0 && f.executes >= f.advanceAfter {
		f.ctl.Advance(f.next)
	}
	return f.delay
}

func (f *fakeWorkflow) IsComplete() bool { return f.ctl.IsComplete(f.stage) }
func (f *fakeWorkflow) Substate() string { return "working" }
func (f *fakeWorkflow) Flags() map[string]bool {
	return map[string]bool{"seen": f.executes > 0}
}

func quiet() Logger {
	return NewFmtLogger(io.Discard)
}

func newTestExecutor(t *testing.T, stages []Stage, opts ...Option) *Executor {
	t.Helper()
	exec, err := NewExecutor(stages, append([]Option{WithLogger(quiet())}, opts...)...)
	require.NoError(t, err)
	return exec
}

func TestNewExecutorRejectsBadStageLists(t *testing.T) {
	tests := []struct {
		name   string
		stages []Stage
		opts   []Option
		code   string
	}{
		{name: "empty", stages: nil, code: ErrCodeEmptyStages},
		{name: "duplicate", stages: []Stage{"a", "b", "a"}, code: ErrCodeDuplicateStage},
		{name: "unknown initial", stages: []Stage{"a"}, opts: []Option{WithInitialStage("z")}, code: ErrCodeUnknownStage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExecutor(tt.stages, tt.opts...)
			require.Error(t, err)
			assert.Equal(t, tt.code, ErrorCode(err))
		})
	}
}

func TestRegisterRejectsBadRegistries(t *testing.T) {
	exec := newTestExecutor(t, []Stage{"a", "b"})
	a := &fakeWorkflow{stage: "a", ctl: exec}

	assert.Equal(t, ErrCodeNilWorkflow, ErrorCode(exec.Register(a, nil)))
	assert.Equal(t, ErrCodeUnknownStage, ErrorCode(exec.Register(&fakeWorkflow{stage: "z", ctl: exec})))
	assert.Equal(t, ErrCodeDuplicateWorkflow, ErrorCode(exec.Register(a, &fakeWorkflow{stage: "a", ctl: exec})))

	require.NoError(t, exec.Register(a))
	assert.Equal(t, ErrCodeRegistryInitialized, ErrorCode(exec.Register(a)))
	assert.Len(t, exec.Workflows(), 1)
}

func TestTickIsIdleWithoutAuthority(t *testing.T) {
	exec := newTestExecutor(t, []Stage{"a", "done"})
	assert.Equal(t, DefaultIdleDelay, exec.Tick(context.Background()))

	exec = newTestExecutor(t, []Stage{"a", "done"}, WithIdleDelay(250*time.Millisecond))
	require.NoError(t, exec.Register(&fakeWorkflow{stage: "a", ctl: exec}))
	exec.Advance("done")

	assert.Equal(t, 250*time.Millisecond, exec.Tick(context.Background()))
	assert.Zero(t, exec.Ticks())
}

func TestTickDispatchesToSingleAuthority(t *testing.T) {
	exec := newTestExecutor(t, []Stage{"a", "b", "done"})
	a := &fakeWorkflow{stage: "a", next: "b", ctl: exec, delay: 300 * time.Millisecond, advanceAfter: 2}
	b := &fakeWorkflow{stage: "b", next: "done", ctl: exec, delay: 400 * time.Millisecond}
	require.NoError(t, exec.Register(a, b))

	ctx := context.Background()
	assert.Equal(t, 300*time.Millisecond, exec.Tick(ctx))
	assert.Equal(t, 300*time.Millisecond, exec.Tick(ctx))
	assert.Equal(t, Stage("b"), exec.Current())

	assert.Equal(t, 400*time.Millisecond, exec.Tick(ctx))
	assert.Equal(t, 2, a.executes)
	assert.Equal(t, 1, b.executes)
	assert.Equal(t, 1, exec.Ticks())
	assert.True(t, a.IsComplete())
	assert.False(t, b.IsComplete())
}

func TestLongStallNeverCompletes(t *testing.T) {
	exec := newTestExecutor(t, []Stage{"a", "done"})
	a := &fakeWorkflow{stage: "a", next: "done", ctl: exec, delay: time.Second}
	require.NoError(t, exec.Register(a))

	for i := 0; i < 1000; i++ {
		exec.Tick(context.Background())
	}

	assert.Equal(t, Stage("a"), exec.Current())
	assert.Equal(t, 1000, exec.Ticks())
	assert.False(t, exec.IsComplete("a"))
}

func TestCompletionIsMonotonic(t *testing.T) {
	var moves []string
	exec := newTestExecutor(t, []Stage{"a", "b", "c"}, WithTransitionHook(func(from, to Stage, ticks int) {
		moves = append(moves, string(from)+">"+string(to))
	}))

	exec.IncrementTick()
	exec.Advance("c")
	assert.True(t, exec.IsComplete("a"))
	assert.True(t, exec.IsComplete("b"))
	assert.False(t, exec.IsComplete("c"))
	assert.Zero(t, exec.Ticks())

	exec.Advance("a")
	assert.Equal(t, Stage("a"), exec.Current())
	assert.True(t, exec.IsComplete("a"))
	assert.True(t, exec.IsComplete("b"))

	assert.Equal(t, []string{"a>c", "c>a"}, moves)
}

func TestAdvanceIgnoresUnknownAndCurrentStage(t *testing.T) {
	var hooks int
	exec := newTestExecutor(t, []Stage{"a", "b"}, WithTransitionHook(func(Stage, Stage, int) { hooks++ }))

	exec.IncrementTick()
	exec.Advance("a")
	exec.Advance("nowhere")

	assert.Equal(t, Stage("a"), exec.Current())
	assert.Equal(t, 1, exec.Ticks())
	assert.Zero(t, hooks)
	assert.False(t, exec.IsComplete("nowhere"))
}

func TestInitialStageMarksEarlierStagesComplete(t *testing.T) {
	exec := newTestExecutor(t, []Stage{"a", "b", "c"}, WithInitialStage("b"))
	assert.Equal(t, Stage("b"), exec.Current())
	assert.True(t, exec.IsComplete("a"))
	assert.False(t, exec.IsComplete("b"))
}

func TestPanickingWorkflowIsIsolated(t *testing.T) {
	var recovered []string
	exec := newTestExecutor(t, []Stage{"a", "done"}, WithPanicLogger(func(funcName string, err any, _ []byte, fields ...map[string]any) {
		recovered = append(recovered, funcName)
		require.NotEmpty(t, fields)
		assert.Equal(t, "a", fields[0]["stage"])
	}))
	a := &fakeWorkflow{stage: "a", ctl: exec, delay: 200 * time.Millisecond, panicOn: 1}
	require.NoError(t, exec.Register(a))

	ctx := context.Background()
	assert.NotPanics(t, func() {
		assert.Equal(t, DefaultIdleDelay, exec.Tick(ctx))
	})
	assert.Equal(t, []string{"workflow.Execute"}, recovered)

	assert.Equal(t, 200*time.Millisecond, exec.Tick(ctx))
	assert.Equal(t, Stage("a"), exec.Current())
}

func TestNonPositiveDelayFallsBackToIdle(t *testing.T) {
	exec := newTestExecutor(t, []Stage{"a"})
	require.NoError(t, exec.Register(&fakeWorkflow{stage: "a", ctl: exec}))
	assert.Equal(t, DefaultIdleDelay, exec.Tick(context.Background()))
}

func TestTickSkipsWorkWhenContextDone(t *testing.T) {
	exec := newTestExecutor(t, []Stage{"a"})
	a := &fakeWorkflow{stage: "a", ctl: exec, delay: time.Second}
	require.NoError(t, exec.Register(a))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, DefaultIdleDelay, exec.Tick(ctx))
	assert.Zero(t, a.executes)
	assert.Zero(t, a.validates)
}

func TestStallWarningOnlyLogs(t *testing.T) {
	var buf bytes.Buffer
	exec, err := NewExecutor([]Stage{"a", "b"}, WithLogger(NewFmtLogger(&buf)), WithStallWarning(5))
	require.NoError(t, err)
	require.NoError(t, exec.Register(&fakeWorkflow{stage: "a", ctl: exec, delay: time.Second}))

	for i := 0; i < 12; i++ {
		exec.Tick(context.Background())
	}

	assert.Equal(t, 2, strings.Count(buf.String(), "has not advanced"))
	assert.Equal(t, Stage("a"), exec.Current())
}

func TestSnapshotReportsProgress(t *testing.T) {
	exec := newTestExecutor(t, []Stage{"a", "b", "done"})
	a := &fakeWorkflow{stage: "a", next: "b", ctl: exec, delay: time.Second, advanceAfter: 1}
	b := &fakeWorkflow{stage: "b", next: "done", ctl: exec, delay: time.Second}
	require.NoError(t, exec.Register(a, b))

	ctx := context.Background()
	exec.Tick(ctx)
	exec.Tick(ctx)

	snap := exec.Snapshot(ctx)
	assert.Equal(t, Stage("b"), snap.Stage)
	assert.Equal(t, Stage("b"), snap.Workflow)
	assert.Equal(t, "working", snap.Substate)
	assert.Equal(t, map[string]bool{"seen": true}, snap.Flags)
	assert.Equal(t, 1, snap.Ticks)
	assert.Equal(t, []Stage{"a"}, snap.Completed)
	assert.Equal(t, []Stage{"a", "b", "done"}, exec.Stages())
}
