// Package config loads the runtime settings of a stagehand run: executor
// delays, the pace timetable, logging, the status job and the outer loop.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"
	"time"

	apperrors "github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"

	stagehand "github.com/goliatone/go-stagehand"
	"github.com/goliatone/go-stagehand/flow"
	"github.com/goliatone/go-stagehand/tutorial"
)

const (
	DefaultStatusExpression = "@every 30s"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "console"
)

type Config struct {
	IdleDelay Duration `yaml:"idle_delay" json:"idle_delay" jsonschema_description:"Go duration such as 600ms or 1.5s"`
	// Jitter applies to every pace that does not set its own.
	Jitter         Duration          `yaml:"jitter" json:"jitter" jsonschema_description:"Go duration such as 600ms or 1.5s"`
	StallWarnTicks int               `yaml:"stall_warn_ticks" json:"stall_warn_ticks" jsonschema:"minimum=0"`
	StartStage     string            `yaml:"start_stage" json:"start_stage"`
	Timings        map[string]Timing `yaml:"timings" json:"timings"`
	Log            LogConfig         `yaml:"log" json:"log"`
	Status         StatusConfig      `yaml:"status" json:"status"`
	Loop           LoopConfig        `yaml:"loop" json:"loop"`
}

type Timing struct {
	Base   Duration  `yaml:"base" json:"base" jsonschema_description:"Go duration such as 600ms or 1.5s"`
	Jitter *Duration `yaml:"jitter,omitempty" json:"jitter,omitempty" jsonschema_description:"Go duration such as 600ms or 1.5s"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level" jsonschema:"enum=trace,enum=debug,enum=info,enum=warn,enum=error"`
	Format string `yaml:"format" json:"format" jsonschema:"enum=console,enum=json"`
}

// StatusConfig drives the periodic status report. An empty expression
// disables it.
type StatusConfig struct {
	Expression string `yaml:"expression" json:"expression"`
}

type LoopConfig struct {
	// MaxTicks bounds a run. Zero means unbounded.
	MaxTicks int `yaml:"max_ticks" json:"max_ticks" jsonschema:"minimum=0"`
	// TimeScale multiplies every delay before sleeping. Zero disables sleeps.
	TimeScale float64 `yaml:"time_scale" json:"time_scale" jsonschema:"minimum=0"`
}

// Default returns the built-in configuration.
func Default() Config {
	cfg := Config{
		IdleDelay: Duration(stagehand.DefaultIdleDelay),
		Jitter:    Duration(flow.DefaultJitter),
		Timings:   make(map[string]Timing),
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Status: StatusConfig{Expression: DefaultStatusExpression},
		Loop:   LoopConfig{TimeScale: 1},
	}
	for pace, timing := range flow.DefaultTimetable() {
		cfg.Timings[string(pace)] = Timing{Base: Duration(timing.Base)}
	}
	return cfg
}

// Load reads and validates the YAML file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, apperrors.Wrap(err, apperrors.CategoryExternal, "failed to read config file").
			WithTextCode(ErrCodeReadFailed).
			WithMetadata(map[string]any{"path": path})
	}
	return Parse(data)
}

// Parse decodes data over the defaults and validates the result. Unknown keys
// are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, apperrors.Wrap(err, apperrors.CategoryBadInput, "failed to parse config").
			WithTextCode(ErrCodeParseFailed)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate runs the schema check followed by the domain rules.
func (c Config) Validate() error {
	if err := validateSchema(c); err != nil {
		return err
	}

	var problems []string
	if c.IdleDelay <= 0 {
		problems = append(problems, "idle_delay must be positive")
	}
	if c.StartStage != "" && !knownStage(c.StartStage) {
		problems = append(problems, "start_stage "+c.StartStage+" is not a tutorial stage")
	}
	for name := range c.Timings {
		if !flow.IsPace(flow.Pace(name)) {
			problems = append(problems, "unknown pace "+name)
		}
	}
	for pace, timing := range c.Timetable() {
		if timing.Validate() != nil {
			problems = append(problems, fmt.Sprintf("pace %s: base %s must exceed jitter %s", pace, timing.Base, timing.Jitter))
		}
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return invalidConfig(strings.Join(problems, "; "), problems)
	}
	return nil
}

// Timetable builds the pace table: defaults, then the global jitter, then
// every configured timing.
func (c Config) Timetable() flow.Timetable {
	table := flow.DefaultTimetable()
	for pace, timing := range table {
		timing.Jitter = c.Jitter.Std()
		table[pace] = timing
	}
	for name, t := range c.Timings {
		jitter := c.Jitter.Std()
		if t.Jitter != nil {
			jitter = t.Jitter.Std()
		}
		table[flow.Pace(name)] = flow.Timing{Base: t.Base.Std(), Jitter: jitter}
	}
	return table
}

// Start returns the configured start stage, or "" for the first one.
func (c Config) Start() stagehand.Stage {
	return stagehand.Stage(c.StartStage)
}

func (c Config) Idle() time.Duration {
	return c.IdleDelay.Std()
}

func knownStage(name string) bool {
	return slices.Contains(tutorial.Stages(), stagehand.Stage(name))
}
