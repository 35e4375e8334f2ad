package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stagehand "github.com/goliatone/go-stagehand"
	"github.com/goliatone/go-stagehand/config"
	"github.com/goliatone/go-stagehand/runner"
)

const scenarioPath = "../sim/testdata/tutorial.yaml"

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := Execute(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestStagesCommandListsOutlines(t *testing.T) {
	out, _, err := execute(t, "stages")
	require.NoError(t, err)

	assert.Contains(t, out, "gielinor_guide")
	assert.Contains(t, out, "magic_instructor")
	assert.Contains(t, out, "substates:")
}

func TestSchemaCommandPrintsJSONSchema(t *testing.T) {
	out, _, err := execute(t, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "idle_delay")
	assert.Contains(t, out, "$schema")
}

func TestConfigDefaultsRoundTrips(t *testing.T) {
	out, _, err := execute(t, "config", "defaults")
	require.NoError(t, err)
	assert.Contains(t, out, "idle_delay: 600ms")

	cfg, err := config.Parse([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, config.Default().Idle(), cfg.Idle())
}

func TestCheckCommand(t *testing.T) {
	good := writeFile(t, "good.yaml", "idle_delay: 500ms\n")
	out, _, err := execute(t, "check", good)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")

	bad := writeFile(t, "bad.yaml", "idle_delays: 500ms\n")
	_, _, err = execute(t, "check", bad)
	assert.Equal(t, config.ErrCodeParseFailed, stagehand.ErrorCode(err))

	out, _, err = execute(t, "check", "--scenario", scenarioPath)
	require.NoError(t, err)
	assert.Contains(t, out, "reactions")
}

func TestGlobalFlagsAreValidated(t *testing.T) {
	_, _, err := execute(t, "stages", "--log-level", "loud")
	assert.Equal(t, config.ErrCodeSchemaInvalid, stagehand.ErrorCode(err))
}

func TestRunCompletesScenario(t *testing.T) {
	out, _, err := execute(t, "run", "--scenario", scenarioPath, "--time-scale", "0", "--seed", "7", "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, out, glyphDone+" magic_instructor")
	assert.Contains(t, out, "workflow: none")
	assert.Contains(t, out, "transitions: 9 stages")
}

func TestRunStopsAtTickBudget(t *testing.T) {
	out, _, err := execute(t, "run", "--scenario", scenarioPath, "--time-scale", "0", "--max-ticks", "3", "--log-level", "error")
	assert.Equal(t, runner.ErrCodeMaxTicks, stagehand.ErrorCode(err))
	assert.Contains(t, out, glyphCurrent+" gielinor_guide")
}

func TestRunStopsAfterDuration(t *testing.T) {
	out, _, err := execute(t, "run", "--scenario", scenarioPath, "--duration", "50ms", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "gielinor_guide")
}

func TestRunUsesConfigFile(t *testing.T) {
	cfg := writeFile(t, "stagehand.yaml", "loop:\n  max_ticks: 2\n  time_scale: 0\nstatus:\n  expression: \"\"\n")
	_, _, err := execute(t, "run", "--config", cfg, "--scenario", scenarioPath, "--log-level", "error")
	assert.Equal(t, runner.ErrCodeMaxTicks, stagehand.ErrorCode(err))
}
