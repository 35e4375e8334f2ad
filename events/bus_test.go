package events_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stagehand "github.com/goliatone/go-stagehand"
	"github.com/goliatone/go-stagehand/events"
)

func quietBus(opts ...events.Option) *events.Bus {
	return events.NewBus(append([]events.Option{events.WithLogger(stagehand.NewFmtLogger(io.Discard))}, opts...)...)
}

func TestMatch(t *testing.T) {
	cases := []struct {
		pattern, topic string
		want           bool
	}{
		{"stage/banker/completed", "stage/banker/completed", true},
		{"stage/+/completed", "stage/banker/completed", true},
		{"stage/*/completed", "stage/banker/completed", true},
		{"stage/+/completed", "stage/banker", false},
		{"stage/#", "stage/banker/completed", true},
		{"stage/#", "stage", true},
		{"#", "substate/banker/open_bank", true},
		{"substate/banker/#", "substate/magic_instructor/move_on", false},
		{"stage/#/completed", "stage/banker/completed", false},
		{"stage/banker", "stage/banker/completed", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, events.Match(tc.pattern, tc.topic), "%s vs %s", tc.pattern, tc.topic)
	}
}

func TestSubscribeValidation(t *testing.T) {
	bus := quietBus()
	noop := func(context.Context, events.Event) error { return nil }

	_, err := bus.Subscribe("", noop)
	assert.Equal(t, events.ErrCodeBadPattern, stagehand.ErrorCode(err))

	_, err = bus.Subscribe("a/#/b", noop)
	assert.Equal(t, events.ErrCodeBadPattern, stagehand.ErrorCode(err))

	_, err = bus.Subscribe("stage/#", nil)
	assert.Equal(t, events.ErrCodeNilHandler, stagehand.ErrorCode(err))
	assert.Zero(t, bus.Len())
}

func TestPublishRoutesByTopic(t *testing.T) {
	bus := quietBus()
	var stages, substates []events.Event

	_, err := bus.Subscribe("stage/+/completed", func(_ context.Context, e events.Event) error {
		stages = append(stages, e)
		return nil
	})
	require.NoError(t, err)
	sub, err := bus.Subscribe("substate/#", func(_ context.Context, e events.Event) error {
		substates = append(substates, e)
		return nil
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, events.StageCompleted("banker", "prayer_instructor", 42)))
	require.NoError(t, bus.Publish(ctx, events.SubstateChanged("banker", "walk_to_bank", "open_bank", "booth in reach")))

	require.Len(t, stages, 1)
	assert.Equal(t, "stage/banker/completed", stages[0].Topic)
	assert.Equal(t, "prayer_instructor", stages[0].To)
	assert.Equal(t, 42, stages[0].Ticks)

	require.Len(t, substates, 1)
	assert.Equal(t, "substate/banker/open_bank", substates[0].Topic)
	assert.Equal(t, "booth in reach", substates[0].Reason)

	sub.Unsubscribe()
	sub.Unsubscribe()
	assert.Equal(t, 1, bus.Len())
	require.NoError(t, bus.Publish(ctx, events.SubstateChanged("banker", "open_bank", "close_bank", "")))
	assert.Len(t, substates, 1)
}

func TestPublishJoinsHandlerErrors(t *testing.T) {
	bus := quietBus()
	boom := errors.New("boom")
	calls := 0

	_, _ = bus.Subscribe("#", func(context.Context, events.Event) error { calls++; return boom })
	_, _ = bus.Subscribe("#", func(context.Context, events.Event) error { calls++; panic("kaput") })
	_, _ = bus.Subscribe("#", func(context.Context, events.Event) error { calls++; return nil })

	err := bus.Publish(context.Background(), events.StageCompleted("a", "b", 1))
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "kaput")
}

func TestPublishExitOnError(t *testing.T) {
	bus := quietBus(events.WithExitOnError())
	calls := 0

	_, _ = bus.Subscribe("#", func(context.Context, events.Event) error { calls++; return errors.New("first") })
	_, _ = bus.Subscribe("#", func(context.Context, events.Event) error { calls++; return nil })

	err := bus.Publish(context.Background(), events.StageCompleted("a", "b", 1))
	assert.Equal(t, events.ErrCodeHandlerFailed, stagehand.ErrorCode(err))
	assert.Equal(t, 1, calls)
}

func TestPublishHonoursContext(t *testing.T) {
	bus := quietBus()
	calls := 0
	_, _ = bus.Subscribe("#", func(context.Context, events.Event) error { calls++; return nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, bus.Publish(ctx, events.StageCompleted("a", "b", 1)), context.Canceled)
	assert.Zero(t, calls)
}
