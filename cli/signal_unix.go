//go:build !windows

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	stagehand "github.com/goliatone/go-stagehand"
	"github.com/goliatone/go-stagehand/runner"
)

// watchPause toggles pause on SIGUSR1 until the returned stop is called.
func watchPause(ctx context.Context, ctl *runner.ManualControl, logger stagehand.Logger) func() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGUSR1)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-sigs:
				if ctl.Toggle() {
					logger.Info("run paused")
				} else {
					logger.Info("run resumed")
				}
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}
