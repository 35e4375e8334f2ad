package cli

import (
	"context"
	"fmt"
	"sync"

	stagehand "github.com/goliatone/go-stagehand"
	"github.com/goliatone/go-stagehand/events"
)

// progress logs run events off the bus and counts them for the summary.
type progress struct {
	mu        sync.Mutex
	logger    stagehand.Logger
	stages    int
	substates int
}

func watchProgress(bus *events.Bus, logger stagehand.Logger) (*progress, error) {
	p := &progress{logger: logger}
	if _, err := bus.Subscribe("stage/+/completed", p.stageCompleted); err != nil {
		return nil, err
	}
	if _, err := bus.Subscribe("substate/#", p.substateChanged); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *progress) stageCompleted(_ context.Context, e events.Event) error {
	p.mu.Lock()
	p.stages++
	p.mu.Unlock()

	stagehand.WithLoggerFields(p.logger, map[string]any{
		"stage": string(e.Stage),
		"next":  e.To,
		"ticks": e.Ticks,
	}).Info("stage %s completed", e.Stage)
	return nil
}

func (p *progress) substateChanged(_ context.Context, e events.Event) error {
	p.mu.Lock()
	p.substates++
	p.mu.Unlock()

	p.logger.Debug("%s: %s -> %s (%s)", e.Stage, e.From, e.To, e.Reason)
	return nil
}

func (p *progress) summary() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fmt.Sprintf("transitions: %d stages, %d substates", p.stages, p.substates)
}

// publisher reports bus failures instead of returning them; hooks have no
// error path.
func publisher(ctx context.Context, bus *events.Bus, logger stagehand.Logger) func(events.Event) {
	return func(e events.Event) {
		if err := bus.Publish(ctx, e); err != nil {
			logger.Warn("publishing %s failed: %v", e.Topic, err)
		}
	}
}
