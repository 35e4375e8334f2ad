//go:build windows

package cli

import (
	"context"

	stagehand "github.com/goliatone/go-stagehand"
	"github.com/goliatone/go-stagehand/runner"
)

// watchPause is a no-op: there is no SIGUSR1 on windows.
func watchPause(context.Context, *runner.ManualControl, stagehand.Logger) func() {
	return func() {}
}
