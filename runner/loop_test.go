package runner

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	apperrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stagehand "github.com/goliatone/go-stagehand"
)

type countingTicker struct {
	mu     sync.Mutex
	calls  int
	delay  time.Duration
	onTick func(n int)
}

func (c *countingTicker) Tick(context.Context) time.Duration {
	c.mu.Lock()
	c.calls++
	n := c.calls
	c.mu.Unlock()
	if c.onTick != nil {
		c.onTick(n)
	}
	return c.delay
}

func (c *countingTicker) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func quiet() stagehand.Logger {
	return stagehand.NewFmtLogger(io.Discard)
}

func TestLoopStopsAtMaxTicks(t *testing.T) {
	ticker := &countingTicker{delay: time.Second}
	l := New(ticker, WithMaxTicks(5), WithTimeScale(0), WithLogger(quiet()))

	err := l.Run(context.Background())
	require.Error(t, err)

	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrCodeMaxTicks, appErr.TextCode)
	assert.Equal(t, 5, ticker.count())
	assert.Equal(t, 5, l.Ticks())
	assert.Zero(t, l.Slept())
}

func TestLoopStopsWhenConditionHolds(t *testing.T) {
	ticker := &countingTicker{delay: time.Second}
	done := false
	ticker.onTick = func(n int) { done = n == 3 }

	var finished *Loop
	l := New(ticker,
		WithTimeScale(0),
		WithMaxTicks(100),
		WithUntil(func() bool { return done }),
		WithDoneHandler(func(l *Loop) { finished = l }),
		WithLogger(quiet()),
	)

	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, 3, ticker.count())
	assert.Same(t, l, finished)
}

func TestLoopTickHookSeesDelays(t *testing.T) {
	ticker := &countingTicker{delay: 600 * time.Millisecond}
	var seen []time.Duration

	l := New(ticker,
		WithTimeScale(0),
		WithMaxTicks(3),
		WithTickHook(func(tick int, delay time.Duration) {
			assert.Equal(t, len(seen)+1, tick)
			seen = append(seen, delay)
		}),
		WithLogger(quiet()),
	)

	_ = l.Run(context.Background())
	assert.Equal(t, []time.Duration{600 * time.Millisecond, 600 * time.Millisecond, 600 * time.Millisecond}, seen)
}

func TestLoopScalesSleeps(t *testing.T) {
	ticker := &countingTicker{delay: 10 * time.Millisecond}
	l := New(ticker, WithTimeScale(0.5), WithMaxTicks(2), WithLogger(quiet()))

	_ = l.Run(context.Background())
	assert.Equal(t, 10*time.Millisecond, l.Slept())
}

func TestLoopReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ticker := &countingTicker{delay: time.Hour}
	ticker.onTick = func(int) { cancel() }

	l := New(ticker, WithLogger(quiet()))
	err := l.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, ticker.count())
}

func TestLoopTimeout(t *testing.T) {
	ticker := &countingTicker{delay: time.Hour}
	l := New(ticker, WithTimeout(20*time.Millisecond), WithLogger(quiet()))

	err := l.Run(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoopPauseAndResume(t *testing.T) {
	ctl := NewManualControl()
	ticker := &countingTicker{delay: time.Second}
	ticker.onTick = func(n int) {
		if n == 2 {
			ctl.Pause()
		}
	}

	l := New(ticker, WithControl(ctl), WithTimeScale(0), WithMaxTicks(4), WithLogger(quiet()))

	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(context.Background()) }()

	require.Eventually(t, func() bool { return ctl.Paused() && ticker.count() == 2 }, time.Second, 5*time.Millisecond)

	// paused loops do not tick
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 2, ticker.count())

	assert.False(t, ctl.Toggle())

	select {
	case err := <-errCh:
		assert.Equal(t, ErrCodeMaxTicks, stagehand.ErrorCode(err))
	case <-time.After(time.Second):
		t.Fatal("loop did not resume")
	}
	assert.Equal(t, 4, ticker.count())
}

func TestLoopStoppedByControl(t *testing.T) {
	ctl := NewManualControl()
	ticker := &countingTicker{delay: time.Hour}
	ticker.onTick = func(int) { ctl.Cancel(nil) }

	l := New(ticker, WithControl(ctl), WithLogger(quiet()))
	err := l.Run(context.Background())
	assert.Equal(t, ErrCodeStopped, stagehand.ErrorCode(err))
	assert.Equal(t, 1, ticker.count())
}

func TestLoopRunsRealExecutor(t *testing.T) {
	exec, err := stagehand.NewExecutor([]stagehand.Stage{"only"},
		stagehand.WithLogger(quiet()),
		stagehand.WithIdleDelay(250*time.Millisecond),
	)
	require.NoError(t, err)

	var delays []time.Duration
	l := New(exec,
		WithTimeScale(0),
		WithMaxTicks(3),
		WithTickHook(func(_ int, d time.Duration) { delays = append(delays, d) }),
		WithLogger(quiet()),
	)

	assert.Equal(t, ErrCodeMaxTicks, stagehand.ErrorCode(l.Run(context.Background())))
	assert.Equal(t, []time.Duration{250 * time.Millisecond, 250 * time.Millisecond, 250 * time.Millisecond}, delays)
}
