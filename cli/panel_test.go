package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	stagehand "github.com/goliatone/go-stagehand"
	"github.com/goliatone/go-stagehand/tutorial"
)

func TestRenderSnapshot(t *testing.T) {
	snap := stagehand.Snapshot{
		Stage:     tutorial.StageSurvivalExpert,
		Workflow:  tutorial.StageSurvivalExpert,
		Substate:  "light_fire",
		Flags:     map[string]bool{"chopped_for_logs": true},
		Ticks:     42,
		Completed: []stagehand.Stage{tutorial.StageGielinorGuide},
	}

	out := RenderSnapshot("run", snap, tutorial.Stages())

	assert.Contains(t, out, glyphDone+" gielinor_guide")
	assert.Contains(t, out, glyphCurrent+" survival_expert")
	assert.Contains(t, out, glyphPending+" master_chef")
	assert.Contains(t, out, "substate: light_fire")
	assert.Contains(t, out, "chopped_for_logs=true")
	assert.Contains(t, out, "ticks: 42")
}

func TestRenderOutlinesKeepsRunOrder(t *testing.T) {
	out := RenderOutlines(tutorial.Outlines())
	first := strings.Index(out, "gielinor_guide")
	last := strings.Index(out, "magic_instructor")
	assert.True(t, first >= 0 && last > first)
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "debug", "json")
	stagehand.WithLoggerFields(logger, map[string]any{"run_id": "abc"}).Info("run started")

	out := buf.String()
	assert.Contains(t, out, "run started")
	assert.Contains(t, out, "run_id")
}
