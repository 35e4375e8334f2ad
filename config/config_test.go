package config

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stagehand "github.com/goliatone/go-stagehand"
	"github.com/goliatone/go-stagehand/flow"
	"github.com/goliatone/go-stagehand/tutorial"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, stagehand.DefaultIdleDelay, cfg.Idle())
	assert.Equal(t, stagehand.Stage(""), cfg.Start())
	assert.Len(t, cfg.Timings, len(flow.Paces()))
	assert.Equal(t, DefaultStatusExpression, cfg.Status.Expression)
}

func TestParseEmptyKeepsDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
idle_delay: 750ms
jitter: 50ms
start_stage: banker
timings:
  fish: {base: 3s}
  click: {base: 400ms, jitter: 0s}
log:
  level: debug
loop:
  max_ticks: 500
`))
	require.NoError(t, err)

	assert.Equal(t, 750*time.Millisecond, cfg.Idle())
	assert.Equal(t, tutorial.StageBanker, cfg.Start())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
	assert.Equal(t, 500, cfg.Loop.MaxTicks)
	assert.Equal(t, 1.0, cfg.Loop.TimeScale)

	table := cfg.Timetable()
	assert.Equal(t, flow.Timing{Base: 3 * time.Second, Jitter: 50 * time.Millisecond}, table[flow.PaceFish])
	assert.Equal(t, flow.Timing{Base: 400 * time.Millisecond}, table[flow.PaceClick])
	assert.Equal(t, 50*time.Millisecond, table[flow.PaceIdle].Jitter)
	assert.Equal(t, flow.DefaultTimetable()[flow.PaceWalk].Base, table[flow.PaceWalk].Base)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name     string
		data     string
		code     string
		contains string
	}{
		{name: "unknown key", data: "idle: 1s\n", code: ErrCodeParseFailed},
		{name: "not a duration", data: "idle_delay: soon\n", code: ErrCodeParseFailed},
		{name: "bad log level", data: "log: {level: loud}\n", code: ErrCodeSchemaInvalid, contains: "schema"},
		{name: "negative jitter", data: "jitter: -5ms\n", code: ErrCodeSchemaInvalid, contains: "schema"},
		{name: "negative max ticks", data: "loop: {max_ticks: -1}\n", code: ErrCodeSchemaInvalid, contains: "schema"},
		{name: "zero idle", data: "idle_delay: 0s\n", code: ErrCodeSchemaInvalid, contains: "idle_delay must be positive"},
		{name: "unknown pace", data: "timings: {swim: {base: 1s}}\n", code: ErrCodeSchemaInvalid, contains: "unknown pace swim"},
		{name: "jitter over base", data: "timings: {click: {base: 10ms, jitter: 20ms}}\n", code: ErrCodeSchemaInvalid, contains: "pace click"},
		{name: "unknown stage", data: "start_stage: lobby\n", code: ErrCodeSchemaInvalid, contains: "start_stage lobby"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data))
			require.Error(t, err)
			assert.Equal(t, tc.code, stagehand.ErrorCode(err))
			if tc.contains != "" {
				assert.Contains(t, err.Error(), tc.contains)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ErrCodeReadFailed, stagehand.ErrorCode(err))
}

func TestSchemaDescribesConfig(t *testing.T) {
	data, err := Schema()
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, schemaID)
	assert.Contains(t, s, `"idle_delay"`)
	assert.Contains(t, s, `"stall_warn_ticks"`)
	assert.Contains(t, s, "Go duration such as 600ms or 1.5s")
}

func TestSchemaDocumentsDurationFields(t *testing.T) {
	data, err := Schema()
	require.NoError(t, err)

	var doc struct {
		Properties map[string]struct {
			Description          string `json:"description"`
			Pattern              string `json:"pattern"`
			AdditionalProperties struct {
				Properties map[string]struct {
					Description string `json:"description"`
				} `json:"properties"`
			} `json:"additionalProperties"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	for _, name := range []string{"idle_delay", "jitter"} {
		prop := doc.Properties[name]
		assert.Equal(t, durationDoc, prop.Description, name)
		assert.Equal(t, durationPattern, prop.Pattern, name)
	}

	timing := doc.Properties["timings"].AdditionalProperties.Properties
	assert.Equal(t, durationDoc, timing["base"].Description)
	assert.Equal(t, durationDoc, timing["jitter"].Description)
}
