package world_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-stagehand/world"
)

func TestMemoryFindsNearestMatchingEntity(t *testing.T) {
	mem := world.NewMemory().
		SetPlayer(world.Player{Position: world.Tile(0, 0)}).
		Spawn(
			world.Entity{Kind: world.KindNPC, ID: 3313, Name: "Giant rat", Position: world.Tile(9, 9)},
			world.Entity{Kind: world.KindNPC, ID: 3313, Name: "Giant rat", Position: world.Tile(2, 1)},
			world.Entity{Kind: world.KindNPC, ID: 3313, Name: "Giant rat", Position: world.Tile(1, 1), Dead: true},
			world.Entity{Kind: world.KindObject, ID: 9730, Name: "Tree", Position: world.Tile(1, 0)},
		)
	ctx := context.Background()

	rat, err := mem.FindEntity(ctx, world.NPC(3313).Alive())
	require.NoError(t, err)
	require.NotNil(t, rat)
	assert.Equal(t, world.Tile(2, 1), rat.Position)

	tree, err := mem.FindEntity(ctx, world.ObjectNamed("tree"))
	require.NoError(t, err)
	require.NotNil(t, tree)
	assert.Equal(t, 9730, tree.ID)

	none, err := mem.FindEntity(ctx, world.NPC(1))
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestMemoryReactorsSeeAppliedCommands(t *testing.T) {
	var seen []world.Coordinate
	mem := world.NewMemory().OnCommand(func(m *world.Memory, cmd world.Command) {
		if cmd.Op != world.OpMove {
			return
		}
		p, _ := m.LocalPlayer(context.Background())
		seen = append(seen, p.Position)
		m.AddItems(world.Item{ID: 995, Name: "Coins"})
	})

	require.NoError(t, mem.MoveTo(context.Background(), world.Tile(5, 6)))
	assert.Equal(t, []world.Coordinate{world.Tile(5, 6)}, seen)
	assert.True(t, mem.Holding(world.ItemIDs(995)))
}

func TestMemoryDialogState(t *testing.T) {
	mem := world.NewMemory().SetDialog(world.Dialog{Pages: 2})
	ctx := context.Background()

	open, _ := mem.DialogOpen(ctx)
	can, _ := mem.DialogCanContinue(ctx)
	assert.True(t, open)
	assert.True(t, can)

	require.NoError(t, mem.ContinueDialog(ctx))
	require.NoError(t, mem.ContinueDialog(ctx))
	require.NoError(t, mem.ContinueDialog(ctx))

	open, _ = mem.DialogOpen(ctx)
	assert.False(t, open)
	assert.Len(t, mem.Journal(), 3)
}

func TestMemoryEquipment(t *testing.T) {
	mem := world.NewMemory().Equip(1205, 1205, 1171)
	assert.True(t, mem.Wearing(1205))

	mem.Unequip(1205)
	ok, err := mem.EquipmentContains(context.Background(), 1205)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, mem.Wearing(1171))
}

func TestParseLocator(t *testing.T) {
	l, err := world.ParseLocator("263:1:0")
	require.NoError(t, err)
	assert.Equal(t, world.WidgetIndex(263, 1, 0), l)
	assert.Equal(t, "263:1:0", l.String())

	l, err = world.ParseLocator(" 164:41 ")
	require.NoError(t, err)
	assert.Equal(t, world.Widget(164, 41), l)
	assert.Equal(t, "164:41", l.String())

	for _, bad := range []string{"", "164", "1:2:3:4", "a:b", "-1:2"} {
		_, err := world.ParseLocator(bad)
		assert.Error(t, err, bad)
	}
}

func TestCoordinateDistance(t *testing.T) {
	a := world.Tile(3100, 3100)
	assert.Equal(t, 3, a.DistanceTo(world.Tile(3103, 3098)))
	assert.True(t, a.Within(world.Tile(3102, 3102), 2))

	upstairs := world.Coordinate{X: 3100, Y: 3100, Plane: 1}
	assert.False(t, a.Within(upstairs, 100))
}
