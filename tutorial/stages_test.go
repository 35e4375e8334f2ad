package tutorial

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stagehand "github.com/goliatone/go-stagehand"
	"github.com/goliatone/go-stagehand/flow"
	"github.com/goliatone/go-stagehand/world"
)

func quiet() stagehand.Logger {
	return stagehand.NewFmtLogger(io.Discard)
}

func startAt(t *testing.T, stage stagehand.Stage, mem *world.Memory, opts ...flow.Option) *stagehand.Executor {
	t.Helper()
	exec, err := stagehand.NewExecutor(Stages(),
		stagehand.WithLogger(quiet()),
		stagehand.WithInitialStage(stage),
	)
	require.NoError(t, err)
	require.NoError(t, Install(exec, world.NewView(mem, quiet()), opts...))
	return exec
}

func lastCommand(t *testing.T, mem *world.Memory) world.Command {
	t.Helper()
	journal := mem.Journal()
	require.NotEmpty(t, journal)
	return journal[len(journal)-1]
}

var (
	bronzeAxe  = world.Item{ID: 1351, Name: "Bronze axe"}
	tinderbox  = world.Item{ID: 590, Name: "Tinderbox"}
	logs       = world.Item{ID: 1511, Name: "Logs"}
	rawShrimps = world.Item{ID: 317, Name: "Raw shrimps"}
)

func TestOutlinesFollowStageOrder(t *testing.T) {
	outlines := Outlines()
	stages := Stages()
	require.Len(t, outlines, 9)
	require.Len(t, stages, 10)

	for i, o := range outlines {
		assert.Equal(t, stages[i], o.Stage)
		assert.Equal(t, stages[i+1], o.Next)
		assert.NotEmpty(t, o.Substates, "stage %s", o.Stage)
		assert.Equal(t, "move_on", o.Substates[len(o.Substates)-1], "stage %s", o.Stage)
	}
	assert.Equal(t, []string{string(flagChoppedLogs)}, outlines[1].Flags)
}

func TestInstallRegistersEveryStage(t *testing.T) {
	exec, err := stagehand.NewExecutor(Stages(), stagehand.WithLogger(quiet()))
	require.NoError(t, err)

	view := world.NewView(world.NewMemory(), quiet())
	require.NoError(t, Install(exec, view))
	assert.Len(t, exec.Workflows(), 9)

	assert.Error(t, Install(exec, view))
}

func TestGuideResumesWhenHintMovedOn(t *testing.T) {
	mem := world.NewMemory().
		SetPlayer(world.Player{Position: world.Tile(3094, 3107)}).
		Spawn(world.Entity{Kind: world.KindNPC, ID: npcSurvivalExpert, Name: "Survival Expert", Position: world.Tile(3103, 3095)}).
		PointHint(npcSurvivalExpert)

	exec := startAt(t, StageGielinorGuide, mem)
	exec.Tick(context.Background())

	assert.Equal(t, StageSurvivalExpert, exec.Current())
	assert.True(t, exec.IsComplete(StageGielinorGuide))
}

func TestSurvivalDistrustsLogsItDidNotChop(t *testing.T) {
	mem := world.NewMemory().
		SetPlayer(world.Player{Position: world.Tile(3100, 3100)}).
		Spawn(
			world.Entity{Kind: world.KindNPC, ID: npcSurvivalExpert, Name: "Survival Expert", Position: world.Tile(3101, 3100)},
			world.Entity{Kind: world.KindObject, ID: objTree, Name: "Tree", Position: world.Tile(3102, 3100), Interactable: true},
		).
		AddItems(bronzeAxe, tinderbox, logs, rawShrimps)

	exec := startAt(t, StageSurvivalExpert, mem)
	ctx := context.Background()

	exec.Tick(ctx)
	snap := exec.Snapshot(ctx)
	assert.Equal(t, string(survivalChop), snap.Substate)
	assert.True(t, snap.Flags[string(flagChoppedLogs)])

	cmd := lastCommand(t, mem)
	assert.Equal(t, world.OpInteract, cmd.Op)
	assert.Equal(t, "Chop down", cmd.Action)
	require.NotNil(t, cmd.Entity)
	assert.Equal(t, objTree, cmd.Entity.ID)

	// the chop is now ours, so the logs get lit
	exec.Tick(ctx)
	assert.Equal(t, string(survivalLightFire), exec.Snapshot(ctx).Substate)

	cmd = lastCommand(t, mem)
	assert.Equal(t, world.OpUse, cmd.Op)
	require.NotNil(t, cmd.Item)
	assert.Equal(t, tinderbox.ID, cmd.Item.ID)
	require.NotNil(t, cmd.Target.Item)
	assert.Equal(t, logs.ID, cmd.Target.Item.ID)
}

func TestSurvivalRoutesToFishingWithoutShrimp(t *testing.T) {
	mem := world.NewMemory().
		SetPlayer(world.Player{Position: world.Tile(3100, 3100)}).
		Spawn(
			world.Entity{Kind: world.KindNPC, ID: npcSurvivalExpert, Name: "Survival Expert", Position: world.Tile(3101, 3100)},
			world.Entity{Kind: world.KindNPC, ID: npcFishingSpot, Name: "Fishing spot", Position: world.Tile(3099, 3098)},
		).
		AddItems(bronzeAxe, tinderbox)

	exec := startAt(t, StageSurvivalExpert, mem)
	ctx := context.Background()
	exec.Tick(ctx)

	assert.Equal(t, string(survivalFish), exec.Snapshot(ctx).Substate)
	cmd := lastCommand(t, mem)
	assert.Equal(t, world.OpInteract, cmd.Op)
	assert.Equal(t, "Net", cmd.Action)
	require.NotNil(t, cmd.Entity)
	assert.Equal(t, npcFishingSpot, cmd.Entity.ID)
}

func TestSurvivalCooksOnNearbyFire(t *testing.T) {
	mem := world.NewMemory().
		SetPlayer(world.Player{Position: world.Tile(3100, 3100)}).
		Spawn(world.Entity{Kind: world.KindObject, ID: 26185, Name: "Fire", Position: world.Tile(3101, 3101)}).
		AddItems(bronzeAxe, tinderbox, rawShrimps)

	exec := startAt(t, StageSurvivalExpert, mem)
	ctx := context.Background()
	exec.Tick(ctx)

	assert.Equal(t, string(survivalCook), exec.Snapshot(ctx).Substate)
	cmd := lastCommand(t, mem)
	assert.Equal(t, world.OpUse, cmd.Op)
	require.NotNil(t, cmd.Item)
	assert.Equal(t, rawShrimps.ID, cmd.Item.ID)
	require.NotNil(t, cmd.Target.Entity)
	assert.Equal(t, "Fire", cmd.Target.Entity.Name)
}

func TestQuestGuideHandsOverInsideMiningCave(t *testing.T) {
	mem := world.NewMemory().SetPlayer(world.Player{Position: tileMining})

	exec := startAt(t, StageQuestGuide, mem)
	exec.Tick(context.Background())

	assert.Equal(t, StageMiningInstructor, exec.Current())
	assert.True(t, exec.IsComplete(StageQuestGuide))
	assert.Empty(t, mem.Journal())
}

func TestQuestGuideClimbsDownBeforeHandingOver(t *testing.T) {
	mem := world.NewMemory().
		SetPlayer(world.Player{Position: tileQuestGuide}).
		Spawn(world.Entity{Kind: world.KindObject, ID: objLadder, Name: "Ladder", Position: world.Tile(3088, 3119), Interactable: true}).
		SetElement(wTutorialText, "It's time to enter some caves. Mining and Smithing awaits.")

	exec := startAt(t, StageQuestGuide, mem)
	ctx := context.Background()
	exec.Tick(ctx)

	assert.Equal(t, StageQuestGuide, exec.Current())
	assert.Equal(t, string(questMoveOn), exec.Snapshot(ctx).Substate)

	cmd := lastCommand(t, mem)
	assert.Equal(t, world.OpInteract, cmd.Op)
	assert.Equal(t, "Climb-down", cmd.Action)

	mem.Teleport(tileMining)
	exec.Tick(ctx)
	assert.Equal(t, StageMiningInstructor, exec.Current())
}

func TestMagicCompletesOnMainland(t *testing.T) {
	mem := world.NewMemory().
		SetPlayer(world.Player{Position: tileLumbridge}).
		SetDialog(world.Dialog{Pages: 1})

	exec := startAt(t, StageMagicInstructor, mem)
	ctx := context.Background()
	exec.Tick(ctx)

	assert.Equal(t, StageComplete, exec.Current())
	assert.True(t, exec.IsComplete(StageMagicInstructor))
	assert.Nil(t, exec.Active(ctx))
}
