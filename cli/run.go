package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	stagehand "github.com/goliatone/go-stagehand"
	"github.com/goliatone/go-stagehand/cron"
	"github.com/goliatone/go-stagehand/events"
	"github.com/goliatone/go-stagehand/flow"
	"github.com/goliatone/go-stagehand/runner"
	"github.com/goliatone/go-stagehand/sim"
	"github.com/goliatone/go-stagehand/tutorial"
	"github.com/goliatone/go-stagehand/world"
)

type RunCmd struct {
	Scenario  string        `help:"Scenario file seeding the simulated world." required:"" type:"existingfile"`
	MaxTicks  int           `help:"Tick budget. Overrides loop.max_ticks when positive."`
	TimeScale float64       `help:"Delay multiplier. Overrides loop.time_scale when not negative." default:"-1"`
	Seed      uint64        `help:"Jitter seed. Zero draws from the global source."`
	Duration  time.Duration `help:"Stop the run after this long."`
}

func (r *RunCmd) Run(ctx context.Context, app *App) error {
	logger := app.Logger

	sc, err := sim.Load(r.Scenario)
	if err != nil {
		return err
	}
	simulation := sim.New(sc, sim.WithLogger(logger))
	view := world.NewView(simulation.World(), logger)

	bus := events.NewBus(events.WithLogger(logger))
	prog, err := watchProgress(bus, logger)
	if err != nil {
		return err
	}
	publish := publisher(ctx, bus, logger)

	exec, err := stagehand.NewExecutor(tutorial.Stages(),
		stagehand.WithLogger(logger),
		stagehand.WithIdleDelay(app.Config.Idle()),
		stagehand.WithInitialStage(app.Config.Start()),
		stagehand.WithStallWarning(app.Config.StallWarnTicks),
		stagehand.WithTransitionHook(func(from, to stagehand.Stage, ticks int) {
			publish(events.StageCompleted(from, to, ticks))
		}),
	)
	if err != nil {
		return err
	}

	flowOpts := []flow.Option{
		flow.WithLogger(logger),
		flow.WithTimetable(app.Config.Timetable()),
		flow.WithSubstateHook(func(stage stagehand.Stage, from, to, reason string) {
			publish(events.SubstateChanged(stage, from, to, reason))
		}),
	}
	if r.Seed != 0 {
		flowOpts = append(flowOpts, flow.WithSource(flow.NewSource(r.Seed)))
	}
	if err := tutorial.Install(exec, view, flowOpts...); err != nil {
		return err
	}

	guard := &guarded{exec: exec}
	ctl := runner.NewManualControl()
	stopWatch := watchPause(ctx, ctl, logger)
	defer stopWatch()

	scheduler := cron.NewScheduler(
		cron.WithLogger(logger),
		cron.WithErrorHandler(func(err error) {
			logger.Error("scheduled job failed: %v", err)
		}),
	)
	if expr := app.Config.Status.Expression; expr != "" {
		if _, err := scheduler.ScheduleCron(expr, cron.Func(func() { guard.report(ctx, logger, ctl.State()) })); err != nil {
			return err
		}
	}
	if r.Duration > 0 {
		if _, err := scheduler.ScheduleAfter(r.Duration, cron.Func(func() {
			ctl.Cancel(ErrDurationElapsed.Clone())
		})); err != nil {
			return err
		}
	}
	if err := scheduler.Start(ctx); err != nil {
		return err
	}

	loop := runner.New(guard,
		runner.WithControl(ctl),
		runner.WithMaxTicks(r.maxTicks(app)),
		runner.WithTimeScale(r.timeScale(app)),
		runner.WithUntil(guard.finished),
		runner.WithLogger(logger),
		runner.WithTickHook(func(tick int, delay time.Duration) {
			logger.Trace("tick %d, next in %s", tick, delay)
		}),
	)

	logger.Info("run started with scenario %s", sc.Name)
	runErr := loop.Run(ctx)
	_ = scheduler.Stop(context.Background())

	title := fmt.Sprintf("stagehand %s", app.RunID)
	if _, err := fmt.Fprintln(app.Out, RenderSnapshot(title, guard.snapshot(ctx), exec.Stages())); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(app.Out, prog.summary()); err != nil {
		return err
	}

	if stagehand.ErrorCode(runErr) == ErrCodeDurationElapsed {
		logger.Info("run stopped after %s", r.Duration)
		return nil
	}
	return runErr
}

func (r *RunCmd) maxTicks(app *App) int {
	if r.MaxTicks > 0 {
		return r.MaxTicks
	}
	return app.Config.Loop.MaxTicks
}

func (r *RunCmd) timeScale(app *App) float64 {
	if r.TimeScale >= 0 {
		return r.TimeScale
	}
	return app.Config.Loop.TimeScale
}

// guarded serialises the loop's ticks with the status job's snapshots.
type guarded struct {
	mu   sync.Mutex
	exec *stagehand.Executor
}

func (g *guarded) Tick(ctx context.Context) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.exec.Tick(ctx)
}

func (g *guarded) snapshot(ctx context.Context) stagehand.Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.exec.Snapshot(ctx)
}

func (g *guarded) finished() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.exec.Current() == tutorial.StageComplete
}

func (g *guarded) report(ctx context.Context, logger stagehand.Logger, state runner.RunState) {
	snap := g.snapshot(ctx)
	stagehand.WithLoggerFields(logger, map[string]any{
		"state":     string(state),
		"stage":     string(snap.Stage),
		"substate":  snap.Substate,
		"ticks":     snap.Ticks,
		"completed": len(snap.Completed),
	}).Info("status")
}
