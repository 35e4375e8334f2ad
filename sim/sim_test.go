package sim_test

import (
	"context"
	"errors"
	"io"
	"testing"

	apperrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stagehand "github.com/goliatone/go-stagehand"
	"github.com/goliatone/go-stagehand/sim"
	"github.com/goliatone/go-stagehand/tutorial"
	"github.com/goliatone/go-stagehand/world"
)

func quiet() stagehand.Logger {
	return stagehand.NewFmtLogger(io.Discard)
}

func TestParseRejectsBadScenarios(t *testing.T) {
	cases := map[string]string{
		"unknown field": `
name: x
start: {}
bogus: true
`,
		"missing when": `
name: x
reactions:
  - name: empty
    then: {despawn: [1]}
`,
		"not boolean": `
name: x
reactions:
  - name: number
    when: target + 1
`,
		"unknown identifier": `
name: x
reactions:
  - name: typo
    when: opp == "click"
`,
		"bad widget": `
name: x
reactions:
  - name: widget
    when: op == "click"
    then:
      show: {"abc": "text"}
`,
		"bad start widget": `
name: x
start:
  widgets: {"1": "text"}
`,
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := sim.Parse([]byte(data))
			require.Error(t, err)

			var appErr *apperrors.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, sim.ErrCodeScenarioInvalid, appErr.TextCode)
		})
	}
}

func TestParseNamesUnnamedReactions(t *testing.T) {
	sc, err := sim.Parse([]byte(`
name: names
reactions:
  - when: op == "click"
  - name: kept
    when: op == "move"
`))
	require.NoError(t, err)
	require.Len(t, sc.Reactions, 2)
	assert.Equal(t, "reaction 1", sc.Reactions[0].Name)
	assert.Equal(t, "kept", sc.Reactions[1].Name)
}

func TestSeedBuildsStartState(t *testing.T) {
	sc, err := sim.Parse([]byte(`
name: seed
start:
  player: {x: 10, y: 20}
  hint: 7
  entities:
    - {id: 7, name: Guide, x: 11, y: 20}
    - {kind: object, id: 9, name: Door, x: 12, y: 20, interactable: true}
  inventory:
    - {id: 1, name: Rope}
  equipment: [5]
  widgets: {"263:1:0": "Hello there"}
  dialog: {pages: 2}
  spells: [wind_strike]
`))
	require.NoError(t, err)

	s := sim.New(sc, sim.WithLogger(quiet()))
	v := world.NewView(s.World(), quiet())
	ctx := context.Background()

	pos, ok := v.Position(ctx)
	require.True(t, ok)
	assert.Equal(t, world.Tile(10, 20), pos)
	assert.True(t, v.HintOn(ctx, 7))
	assert.NotNil(t, v.Find(ctx, world.Object(9)))
	assert.True(t, v.Has(ctx, world.ItemNames("rope")))
	assert.True(t, v.Equipped(ctx, 5))
	assert.Equal(t, "hello there", v.Text(ctx, world.WidgetIndex(263, 1, 0)))
	assert.True(t, v.CanContinue(ctx))
	assert.True(t, v.CanCast(ctx, "wind_strike"))
}

func TestReactionsAnswerCommands(t *testing.T) {
	sc, err := sim.Parse([]byte(`
name: react
start:
  player: {x: 0, y: 0}
  entities:
    - {kind: object, id: 9, name: Tree, x: 1, y: 0, interactable: true}
reactions:
  - name: chop
    when: op == "interact" && target == 9 && action == "Chop down"
    then:
      add: [{id: 1511, name: Logs}]
      show: {"263:1:0": "Light a fire"}
  - name: burn
    when: op == "use" && item == 590 && target == 1511
    then:
      remove: [{id: 1511}]
      spawn: [{kind: object, id: 26185, name: Fire, x: 0, y: 1}]
`))
	require.NoError(t, err)

	s := sim.New(sc, sim.WithLogger(quiet()))
	s.World().AddItems(world.Item{ID: 590, Name: "Tinderbox"})
	v := world.NewView(s.World(), quiet())
	ctx := context.Background()

	require.True(t, v.Interact(ctx, v.Find(ctx, world.Object(9)), "Chop down"))
	assert.Equal(t, 1, s.Fired("chop"))
	assert.True(t, v.Has(ctx, world.ItemNames("Logs")))
	assert.True(t, v.TextContains(ctx, world.WidgetIndex(263, 1, 0), "light a fire"))

	logs := v.First(ctx, world.ItemNames("Logs"))
	require.NotNil(t, logs)
	require.True(t, v.UseOn(ctx, v.First(ctx, world.ItemIDs(590)), world.OnItem(*logs)))
	assert.Equal(t, 1, s.Fired("burn"))
	assert.False(t, v.Has(ctx, world.ItemNames("Logs")))
	assert.NotNil(t, v.Find(ctx, world.ObjectNamed("fire")))

	// wrong action leaves the world alone
	require.True(t, v.Interact(ctx, v.Find(ctx, world.Object(9)), "Examine"))
	assert.Equal(t, 1, s.Fired("chop"))
}

func TestOnceReactionsFireOnce(t *testing.T) {
	sc, err := sim.Parse([]byte(`
name: once
start:
  player: {x: 0, y: 0}
reactions:
  - name: first click
    once: true
    when: op == "click" && widget == "164:55"
    then:
      add: [{id: 303, name: Small fishing net}]
  - name: every click
    when: op == "click"
`))
	require.NoError(t, err)

	s := sim.New(sc, sim.WithLogger(quiet()))
	v := world.NewView(s.World(), quiet())
	ctx := context.Background()

	for range 3 {
		require.True(t, v.Click(ctx, world.Widget(164, 55)))
	}
	assert.Equal(t, 1, s.Fired("first click"))
	assert.Equal(t, 3, s.Fired("every click"))
	assert.Len(t, s.World().Journal(), 3)
}

func TestDialogContinueReaction(t *testing.T) {
	sc, err := sim.Parse([]byte(`
name: dialog
start:
  player: {x: 0, y: 0}
  dialog: {pages: 2}
reactions:
  - name: closed
    when: op == "continue" && !dialog_open
    then:
      teleport: {x: 50, y: 60}
`))
	require.NoError(t, err)

	s := sim.New(sc, sim.WithLogger(quiet()))
	v := world.NewView(s.World(), quiet())
	ctx := context.Background()

	require.True(t, v.ContinueDialog(ctx))
	assert.Equal(t, 0, s.Fired("closed"))
	require.True(t, v.ContinueDialog(ctx))
	assert.Equal(t, 1, s.Fired("closed"))

	pos, ok := v.Position(ctx)
	require.True(t, ok)
	assert.Equal(t, world.Tile(50, 60), pos)
}

func TestTutorialScenarioRunsToCompletion(t *testing.T) {
	sc, err := sim.Load("testdata/tutorial.yaml")
	require.NoError(t, err)

	s := sim.New(sc, sim.WithLogger(quiet()))
	exec, err := stagehand.NewExecutor(tutorial.Stages(), stagehand.WithLogger(quiet()))
	require.NoError(t, err)

	view := world.NewView(s.World(), quiet())
	require.NoError(t, tutorial.Install(exec, view))

	ctx := context.Background()
	for i := 0; i < 300 && exec.Current() != tutorial.StageComplete; i++ {
		exec.Tick(ctx)
	}

	require.Equal(t, tutorial.StageComplete, exec.Current())
	for _, stage := range tutorial.Stages() {
		if stage == tutorial.StageComplete {
			continue
		}
		assert.True(t, exec.IsComplete(stage), "stage %s", stage)
	}

	for _, r := range sc.Reactions {
		assert.Equal(t, 1, s.Fired(r.Name), "reaction %q", r.Name)
	}

	// once complete the executor only idles
	assert.Equal(t, stagehand.DefaultIdleDelay, exec.Tick(ctx))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := sim.Load("testdata/missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario")
}
