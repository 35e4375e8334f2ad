package tutorial

import (
	"context"

	"github.com/goliatone/go-stagehand/flow"
	"github.com/goliatone/go-stagehand/world"
)

type chefState string

const (
	chefWalk           chefState = "walk_to_chef"
	chefTalk           chefState = "talk_chef"
	chefGetIngredients chefState = "get_ingredients"
	chefMixDough       chefState = "mix_dough"
	chefBakeBread      chefState = "bake_bread"
	chefMoveOn         chefState = "move_on"
)

type chefTurn = flow.Turn[chefState]

func chefDefinition() flow.Definition[chefState] {
	return flow.Definition[chefState]{
		Name:     "master chef",
		Stage:    StageMasterChef,
		Next:     StageQuestGuide,
		Initial:  chefWalk,
		Terminal: chefMoveOn,
		Order:    []chefState{chefWalk, chefTalk, chefGetIngredients, chefMixDough, chefBakeBread, chefMoveOn},
		Rules: []flow.Rule[chefState]{
			flow.When("bread baked", chefMoveOn, func(ctx context.Context, t *chefTurn) bool {
				return t.World().Has(ctx, itBread)
			}),
			flow.When("dough mixed", chefBakeBread, func(ctx context.Context, t *chefTurn) bool {
				return t.World().Has(ctx, itDough)
			}),
			flow.When("ingredients held", chefMixDough, func(ctx context.Context, t *chefTurn) bool {
				return t.World().HasAll(ctx, itFlour, itWater)
			}),
			flow.When("chef out of reach", chefWalk, func(ctx context.Context, t *chefTurn) bool {
				return !nearNPC(ctx, t.World(), npcMasterChef, nearRadius)
			}),
		},
		Fallback: flow.Constant(chefTalk),
		Handlers: map[chefState]flow.Handler[chefState]{
			chefWalk:           chefWalkToChef,
			chefTalk:           chefTalkToChef,
			chefGetIngredients: chefIngredients,
			chefMixDough:       chefMix,
			chefBakeBread:      chefBake,
		},
	}
}

func chefWalkToChef(ctx context.Context, t *chefTurn) flow.Pace {
	v := t.World()
	if nearNPC(ctx, v, npcMasterChef, nearRadius) {
		t.Goto(chefTalk)
		return flow.PaceOption
	}
	if approach(ctx, v, npcMasterChef, tileChef) {
		return flow.PaceWalk
	}
	return flow.PaceIdle
}

func chefTalkToChef(ctx context.Context, t *chefTurn) flow.Pace {
	v := t.World()
	if pace, ok := stepDialog(ctx, v); ok {
		return pace
	}
	if v.HasAll(ctx, itFlour, itWater) {
		t.Goto(chefMixDough)
		return flow.PaceOption
	}
	if talkTo(ctx, v, npcMasterChef, talkRadius) {
		return flow.PaceTalk
	}
	return flow.PaceIdle
}

// chefIngredients waits for the chef's hand-over dialog to finish.
func chefIngredients(ctx context.Context, t *chefTurn) flow.Pace {
	v := t.World()
	if v.HasAll(ctx, itFlour, itWater) {
		t.Goto(chefMixDough)
		return flow.PaceOption
	}
	if pace, ok := stepDialog(ctx, v); ok {
		return pace
	}
	t.Goto(chefTalk)
	return flow.PaceIdle
}

func chefMix(ctx context.Context, t *chefTurn) flow.Pace {
	v := t.World()
	if v.Has(ctx, itDough) {
		t.Goto(chefBakeBread)
		return flow.PaceOption
	}
	flour, water := v.First(ctx, itFlour), v.First(ctx, itWater)
	if flour == nil || water == nil {
		t.Goto(chefGetIngredients)
		return flow.PaceOption
	}
	if v.UseOn(ctx, flour, world.OnItem(*water)) {
		return flow.PaceTalk
	}
	return flow.PaceIdle
}

func chefBake(ctx context.Context, t *chefTurn) flow.Pace {
	v := t.World()
	if v.Has(ctx, itBread) {
		t.Goto(chefMoveOn)
		return flow.PaceOption
	}
	dough := v.First(ctx, itDough)
	if dough == nil {
		t.Goto(chefMixDough)
		return flow.PaceOption
	}
	if v.Interacting(ctx) {
		return flow.PaceIdle
	}
	oven := v.Find(ctx, world.Object(objRange))
	if oven == nil {
		return flow.PaceIdle
	}
	if v.UseOn(ctx, dough, world.OnEntity(*oven)) {
		return flow.PaceGather
	}
	return flow.PaceIdle
}
