package tutorial

import (
	"context"

	"github.com/goliatone/go-stagehand/flow"
	"github.com/goliatone/go-stagehand/world"
)

type survivalState string

const (
	survivalWalk          survivalState = "walk_to_expert"
	survivalTalk1         survivalState = "talk_expert_1"
	survivalOpenInventory survivalState = "open_inventory"
	survivalFish          survivalState = "fish"
	survivalOpenSkills    survivalState = "open_skills"
	survivalTalk2         survivalState = "talk_expert_2"
	survivalChop          survivalState = "chop_tree"
	survivalLightFire     survivalState = "light_fire"
	survivalCook          survivalState = "cook_shrimp"
	survivalMoveOn        survivalState = "move_on"
)

// flagChoppedLogs marks logs that came from our own chop. Logs picked up any
// other way are not trusted for lighting the fire.
const flagChoppedLogs flow.Flag = "chopped_logs"

type survivalTurn = flow.Turn[survivalState]

func survivalDefinition() flow.Definition[survivalState] {
	return flow.Definition[survivalState]{
		Name:     "survival expert",
		Stage:    StageSurvivalExpert,
		Next:     StageMasterChef,
		Initial:  survivalWalk,
		Terminal: survivalMoveOn,
		Flags:    []flow.Flag{flagChoppedLogs},
		Order: []survivalState{
			survivalWalk, survivalTalk1, survivalOpenInventory, survivalFish, survivalOpenSkills,
			survivalTalk2, survivalChop, survivalLightFire, survivalCook, survivalMoveOn,
		},
		Rules: []flow.Rule[survivalState]{
			flow.When("cooked shrimp held", survivalMoveOn, func(ctx context.Context, t *survivalTurn) bool {
				return t.World().Has(ctx, itCookedShrimp)
			}),
			flow.When("prompt gave an item", survivalOpenInventory, func(ctx context.Context, t *survivalTurn) bool {
				return says(ctx, t.World(), "you've been given an item")
			}),
			flow.When("no raw shrimp with tools", survivalFish, func(ctx context.Context, t *survivalTurn) bool {
				return hasTools(ctx, t.World()) && !t.World().Has(ctx, itRawShrimp)
			}),
			flow.When("fire burning for shrimp", survivalCook, func(ctx context.Context, t *survivalTurn) bool {
				v := t.World()
				return hasTools(ctx, v) && !v.Has(ctx, itLogs) && v.Near(ctx, v.Find(ctx, qFire), nearRadius)
			}),
			flow.When("own logs ready", survivalLightFire, func(ctx context.Context, t *survivalTurn) bool {
				return hasTools(ctx, t.World()) && t.World().Has(ctx, itLogs) && t.Has(flagChoppedLogs)
			}),
			flow.When("prompt says light a fire", survivalLightFire, func(ctx context.Context, t *survivalTurn) bool {
				return hasTools(ctx, t.World()) && t.World().Has(ctx, itLogs) && says(ctx, t.World(), "light a fire")
			}),
			flow.When("tools but no usable logs", survivalChop, func(ctx context.Context, t *survivalTurn) bool {
				return hasTools(ctx, t.World())
			}),
			flow.When("prompt says catch shrimp", survivalFish, func(ctx context.Context, t *survivalTurn) bool {
				return says(ctx, t.World(), "catch some shrimp")
			}),
			flow.When("prompt points at skills", survivalOpenSkills, func(ctx context.Context, t *survivalTurn) bool {
				return says(ctx, t.World(), "gained some experience", "check your skills", "view the skills")
			}),
			flow.When("skills menu shown", survivalTalk2, func(ctx context.Context, t *survivalTurn) bool {
				return says(ctx, t.World(), "on this menu you can view your skills")
			}),
			flow.When("shrimp caught without tools", survivalTalk2, func(ctx context.Context, t *survivalTurn) bool {
				return t.World().Has(ctx, itRawShrimp)
			}),
			flow.When("expert out of reach", survivalWalk, func(ctx context.Context, t *survivalTurn) bool {
				return !nearNPC(ctx, t.World(), npcSurvivalExpert, nearRadius)
			}),
		},
		Fallback: flow.Constant(survivalTalk1),
		Handlers: map[survivalState]flow.Handler[survivalState]{
			survivalWalk:          survivalWalkToExpert,
			survivalTalk1:         survivalTalkFirst,
			survivalOpenInventory: survivalInventory,
			survivalFish:          survivalFishing,
			survivalOpenSkills:    survivalSkills,
			survivalTalk2:         survivalTalkSecond,
			survivalChop:          survivalChopTree,
			survivalLightFire:     survivalFire,
			survivalCook:          survivalCooking,
		},
	}
}

func hasTools(ctx context.Context, v *world.View) bool {
	return v.HasAll(ctx, itAxe, itTinderbox)
}

func survivalWalkToExpert(ctx context.Context, t *survivalTurn) flow.Pace {
	v := t.World()
	if nearNPC(ctx, v, npcSurvivalExpert, nearRadius) {
		t.Goto(survivalTalk1)
		return flow.PaceOption
	}
	// the starting house door is closed while the guide is still close by
	if nearNPC(ctx, v, npcGielinorGuide, 6) && openObject(ctx, v, world.Object(objStartDoor), "Open") {
		return flow.PaceTalk
	}
	if expert := v.Find(ctx, world.NPC(npcSurvivalExpert)); expert != nil && v.MoveTo(ctx, expert.Position) {
		return flow.PaceWalk
	}
	return flow.PaceIdle
}

func survivalTalkFirst(ctx context.Context, t *survivalTurn) flow.Pace {
	v := t.World()
	if pace, ok := stepDialog(ctx, v); ok {
		return pace
	}
	if says(ctx, v, "you've been given an item") {
		t.Goto(survivalOpenInventory)
		return flow.PaceOption
	}
	if talkTo(ctx, v, npcSurvivalExpert, talkRadius) {
		return flow.PaceTalk
	}
	return flow.PaceIdle
}

func survivalInventory(ctx context.Context, t *survivalTurn) flow.Pace {
	if clickIfVisible(ctx, t.World(), wInventoryTab) {
		t.Goto(survivalFish)
		return flow.PaceClick
	}
	return flow.PaceIdle
}

func survivalFishing(ctx context.Context, t *survivalTurn) flow.Pace {
	v := t.World()
	if v.Has(ctx, itRawShrimp) {
		t.Goto(survivalOpenSkills)
		return flow.PaceOption
	}
	if v.Interacting(ctx) {
		return flow.PaceIdle
	}
	if openObject(ctx, v, world.NPC(npcFishingSpot), "Net") {
		return flow.PaceFish
	}
	return flow.PaceIdle
}

func survivalSkills(ctx context.Context, t *survivalTurn) flow.Pace {
	if clickIfVisible(ctx, t.World(), wSkillsTab) {
		t.Goto(survivalTalk2)
		return flow.PaceClick
	}
	return flow.PaceIdle
}

func survivalTalkSecond(ctx context.Context, t *survivalTurn) flow.Pace {
	v := t.World()
	if pace, ok := stepDialog(ctx, v); ok {
		return pace
	}
	if hasTools(ctx, v) {
		t.Goto(survivalChop)
		return flow.PaceOption
	}
	if talkTo(ctx, v, npcSurvivalExpert, talkRadius) {
		return flow.PaceTalk
	}
	return flow.PaceIdle
}

func survivalChopTree(ctx context.Context, t *survivalTurn) flow.Pace {
	v := t.World()
	if v.Has(ctx, itLogs) && t.Has(flagChoppedLogs) {
		t.Goto(survivalLightFire)
		return flow.PaceOption
	}
	if v.Interacting(ctx) {
		return flow.PaceIdle
	}
	if openObject(ctx, v, world.Object(objTree), "Chop down") {
		t.Mark(flagChoppedLogs)
		return flow.PaceGather
	}
	return flow.PaceIdle
}

func survivalFire(ctx context.Context, t *survivalTurn) flow.Pace {
	v := t.World()
	if !v.Has(ctx, itLogs) {
		if v.Near(ctx, v.Find(ctx, qFire), nearRadius) {
			t.Clear(flagChoppedLogs)
			t.Goto(survivalCook)
			return flow.PaceOption
		}
		t.Clear(flagChoppedLogs)
		t.Goto(survivalChop)
		return flow.PaceOption
	}
	if v.Interacting(ctx) || v.Animating(ctx, animFiremaking) {
		return flow.PaceIdle
	}
	logs := v.First(ctx, itLogs)
	if logs != nil && v.UseOn(ctx, v.First(ctx, itTinderbox), world.OnItem(*logs)) {
		return flow.PaceFire
	}
	return flow.PaceIdle
}

func survivalCooking(ctx context.Context, t *survivalTurn) flow.Pace {
	v := t.World()
	if !v.Has(ctx, itLogs) {
		t.Clear(flagChoppedLogs)
	}
	if v.Has(ctx, itCookedShrimp) {
		t.Goto(survivalMoveOn)
		return flow.PaceOption
	}
	if !v.Has(ctx, itRawShrimp) {
		t.Goto(survivalFish)
		return flow.PaceOption
	}
	fire := v.Find(ctx, qFire)
	if fire == nil {
		t.Goto(survivalChop)
		return flow.PaceOption
	}
	if v.Interacting(ctx) {
		return flow.PaceIdle
	}
	if v.UseOn(ctx, v.First(ctx, itRawShrimp), world.OnEntity(*fire)) {
		return flow.PaceFire
	}
	return flow.PaceIdle
}
