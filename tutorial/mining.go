package tutorial

import (
	"context"

	"github.com/goliatone/go-stagehand/flow"
	"github.com/goliatone/go-stagehand/world"
)

type miningState string

const (
	miningWalk        miningState = "walk_to_instructor"
	miningTalk1       miningState = "talk_instructor_1"
	miningMineTin     miningState = "mine_tin"
	miningMineCopper  miningState = "mine_copper"
	miningSmeltBar    miningState = "smelt_bar"
	miningTalk2       miningState = "talk_instructor_2"
	miningSmithDagger miningState = "smith_dagger"
	miningMoveOn      miningState = "move_on"
)

var (
	itPickaxe   = world.ItemIDs(itemPickaxe)
	itHammer    = world.ItemIDs(itemHammer)
	itTin       = world.ItemIDs(itemTinOre)
	itCopper    = world.ItemIDs(itemCopperOre)
	itBronzeBar = world.ItemIDs(itemBronzeBar)
	itDagger    = world.ItemIDs(itemDagger)
)

type miningTurn = flow.Turn[miningState]

func miningDefinition() flow.Definition[miningState] {
	return flow.Definition[miningState]{
		Name:     "mining instructor",
		Stage:    StageMiningInstructor,
		Next:     StageCombatInstructor,
		Initial:  miningWalk,
		Terminal: miningMoveOn,
		Order: []miningState{
			miningWalk, miningTalk1, miningMineTin, miningMineCopper,
			miningSmeltBar, miningTalk2, miningSmithDagger, miningMoveOn,
		},
		Rules: []flow.Rule[miningState]{
			flow.When("prompt points at combat", miningMoveOn, func(ctx context.Context, t *miningTurn) bool {
				return says(ctx, t.World(), "combat instructor")
			}),
			flow.When("dagger smithed", miningMoveOn, func(ctx context.Context, t *miningTurn) bool {
				return t.World().Has(ctx, itDagger) || t.World().Equipped(ctx, itemDagger)
			}),
			flow.When("hammer and bar held", miningSmithDagger, func(ctx context.Context, t *miningTurn) bool {
				return t.World().HasAll(ctx, itHammer, itBronzeBar)
			}),
			flow.When("bar without hammer", miningTalk2, func(ctx context.Context, t *miningTurn) bool {
				return t.World().Has(ctx, itBronzeBar)
			}),
			flow.When("both ores held", miningSmeltBar, func(ctx context.Context, t *miningTurn) bool {
				return t.World().HasAll(ctx, itTin, itCopper)
			}),
			flow.When("pickaxe without tin", miningMineTin, func(ctx context.Context, t *miningTurn) bool {
				return t.World().Has(ctx, itPickaxe) && !t.World().Has(ctx, itTin)
			}),
			flow.When("pickaxe without copper", miningMineCopper, func(ctx context.Context, t *miningTurn) bool {
				return t.World().Has(ctx, itPickaxe) && !t.World().Has(ctx, itCopper)
			}),
			flow.When("instructor out of reach", miningWalk, func(ctx context.Context, t *miningTurn) bool {
				return !nearNPC(ctx, t.World(), npcMiningInstructor, nearRadius)
			}),
		},
		Fallback: flow.Constant(miningTalk1),
		Handlers: map[miningState]flow.Handler[miningState]{
			miningWalk:        miningWalkToInstructor,
			miningTalk1:       miningTalkFirst,
			miningMineTin:     miningMine(itTin, objTinRock, miningMineCopper),
			miningMineCopper:  miningMine(itCopper, objCopperRock, miningSmeltBar),
			miningSmeltBar:    miningSmelt,
			miningTalk2:       miningTalkSecond,
			miningSmithDagger: miningSmith,
		},
	}
}

func miningWalkToInstructor(ctx context.Context, t *miningTurn) flow.Pace {
	v := t.World()
	if nearNPC(ctx, v, npcMiningInstructor, nearRadius) {
		t.Goto(miningTalk1)
		return flow.PaceOption
	}
	if approach(ctx, v, npcMiningInstructor, tileMining) {
		return flow.PaceWalk
	}
	return flow.PaceIdle
}

func miningTalkFirst(ctx context.Context, t *miningTurn) flow.Pace {
	v := t.World()
	if pace, ok := stepDialog(ctx, v); ok {
		return pace
	}
	if v.Has(ctx, itPickaxe) {
		t.Goto(miningMineTin)
		return flow.PaceOption
	}
	if talkTo(ctx, v, npcMiningInstructor, talkRadius) {
		return flow.PaceTalk
	}
	return flow.PaceIdle
}

// miningMine mines one ore and moves on to next once it is held.
func miningMine(ore world.ItemQuery, rockID int, next miningState) flow.Handler[miningState] {
	return func(ctx context.Context, t *miningTurn) flow.Pace {
		v := t.World()
		if v.Has(ctx, ore) {
			t.Goto(next)
			return flow.PaceOption
		}
		if !v.Has(ctx, itPickaxe) {
			t.Goto(miningTalk1)
			return flow.PaceOption
		}
		if v.Interacting(ctx) {
			return flow.PaceIdle
		}
		if openObject(ctx, v, world.Object(rockID), "Mine") {
			return flow.PaceGather
		}
		return flow.PaceIdle
	}
}

func miningSmelt(ctx context.Context, t *miningTurn) flow.Pace {
	v := t.World()
	if v.Has(ctx, itBronzeBar) {
		t.Goto(miningTalk2)
		return flow.PaceOption
	}
	if !v.Has(ctx, itTin) {
		t.Goto(miningMineTin)
		return flow.PaceOption
	}
	if !v.Has(ctx, itCopper) {
		t.Goto(miningMineCopper)
		return flow.PaceOption
	}
	if v.Interacting(ctx) {
		return flow.PaceIdle
	}
	furnace := v.Find(ctx, world.Object(objFurnace))
	if furnace == nil {
		return flow.PaceIdle
	}
	if v.UseOn(ctx, v.First(ctx, itTin), world.OnEntity(*furnace)) {
		return flow.PaceSmelt
	}
	return flow.PaceIdle
}

func miningTalkSecond(ctx context.Context, t *miningTurn) flow.Pace {
	v := t.World()
	if pace, ok := stepDialog(ctx, v); ok {
		return pace
	}
	if v.Has(ctx, itHammer) {
		t.Goto(miningSmithDagger)
		return flow.PaceOption
	}
	if talkTo(ctx, v, npcMiningInstructor, nearRadius) {
		return flow.PaceTalk
	}
	if approach(ctx, v, npcMiningInstructor, tileMining) {
		return flow.PaceWalk
	}
	return flow.PaceIdle
}

func miningSmith(ctx context.Context, t *miningTurn) flow.Pace {
	v := t.World()
	if v.Has(ctx, itDagger) {
		t.Goto(miningMoveOn)
		return flow.PaceOption
	}
	if !v.Has(ctx, itBronzeBar) {
		t.Goto(miningSmeltBar)
		return flow.PaceOption
	}
	if clickIfVisible(ctx, v, wSmithDagger) {
		return flow.PaceSmelt
	}
	if v.Interacting(ctx) {
		return flow.PaceIdle
	}
	anvil := v.Find(ctx, world.Object(objAnvil))
	if anvil == nil {
		return flow.PaceIdle
	}
	if v.UseOn(ctx, v.First(ctx, itBronzeBar), world.OnEntity(*anvil)) {
		return flow.PaceTalk
	}
	return flow.PaceIdle
}
