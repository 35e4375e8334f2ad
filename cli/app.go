// Package cli wires the stagehand binary: a kong command tree assembled from
// registered commands, the go-logger backed logger and the status panel.
package cli

import (
	"context"
	"io"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	stagehand "github.com/goliatone/go-stagehand"
	"github.com/goliatone/go-stagehand/config"
)

// Globals are accepted by every command.
type Globals struct {
	Config    string `help:"Configuration file." short:"c" type:"existingfile"`
	LogLevel  string `help:"Log level (trace, debug, info, warn, error). Overrides the config."`
	LogFormat string `help:"Log format (console, json). Overrides the config."`
}

// App carries what commands need once flags are parsed.
type App struct {
	Config config.Config
	Logger stagehand.Logger
	RunID  string
	Out    io.Writer
}

// NewApp loads the configuration named by g, applies flag overrides and
// builds the logger writing to logOut.
func NewApp(g Globals, out, logOut io.Writer) (*App, error) {
	cfg := config.Default()
	if g.Config != "" {
		loaded, err := config.Load(g.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if g.LogLevel != "" || g.LogFormat != "" {
		if g.LogLevel != "" {
			cfg.Log.Level = g.LogLevel
		}
		if g.LogFormat != "" {
			cfg.Log.Format = g.LogFormat
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	runID := uuid.NewString()
	logger := stagehand.WithLoggerFields(NewLogger(logOut, cfg.Log.Level, cfg.Log.Format), map[string]any{
		"run_id": runID,
	})
	return &App{Config: cfg, Logger: logger, RunID: runID, Out: out}, nil
}

// Execute parses args and runs the selected command.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	reg := NewRegistry()
	if err := reg.Register(Commands()...); err != nil {
		return err
	}
	if err := reg.Initialize(); err != nil {
		return err
	}
	opts, err := reg.Options()
	if err != nil {
		return err
	}

	var root struct {
		Globals
	}
	parser, err := kong.New(&root, append(opts,
		kong.Name("stagehand"),
		kong.Description("Tick driven executor for the tutorial island workflows."),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)...)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	app, err := NewApp(root.Globals, stdout, stderr)
	if err != nil {
		return err
	}
	return kctx.Run(app)
}
