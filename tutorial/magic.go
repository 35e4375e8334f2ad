package tutorial

import (
	"context"
	"strings"

	"github.com/goliatone/go-stagehand/flow"
	"github.com/goliatone/go-stagehand/world"
)

type magicState string

const (
	magicWalk          magicState = "walk_to_instructor"
	magicTalk1         magicState = "talk_instructor_1"
	magicOpenSpellbook magicState = "open_spellbook"
	magicTalk2         magicState = "talk_instructor_2"
	magicCast          magicState = "cast_wind_strike"
	magicFinal         magicState = "final_dialogue"
	magicMoveOn        magicState = "move_on"
)

const (
	magicAreaRadius = 7
	mainlandRadius  = 3
)

var itRunes = []world.ItemQuery{world.ItemIDs(itemAirRune), world.ItemIDs(itemMindRune)}

type magicTurn = flow.Turn[magicState]

func magicDefinition() flow.Definition[magicState] {
	return flow.Definition[magicState]{
		Name:     "magic instructor",
		Stage:    StageMagicInstructor,
		Next:     StageComplete,
		Initial:  magicWalk,
		Terminal: magicMoveOn,
		Order: []magicState{
			magicWalk, magicTalk1, magicOpenSpellbook, magicTalk2, magicCast, magicFinal, magicMoveOn,
		},
		// dialogs stay readable here: the prompt under them drives the rules
		Blocked: func(ctx context.Context, t *magicTurn) bool {
			return t.World().Interacting(ctx)
		},
		Rules: []flow.Rule[magicState]{
			flow.When("on the mainland", magicMoveOn, func(ctx context.Context, t *magicTurn) bool {
				return onMainland(ctx, t.World())
			}),
			flow.When("tutorial finished", magicFinal, func(ctx context.Context, t *magicTurn) bool {
				return says(ctx, t.World(), "congratulations, you have completed")
			}),
			flow.When("prompt says cast", magicCast, func(ctx context.Context, t *magicTurn) bool {
				return says(ctx, t.World(), "cast wind strike")
			}),
			flow.When("spellbook shown", magicTalk2, func(ctx context.Context, t *magicTurn) bool {
				v := t.World()
				return dialogClosed(ctx, v) && v.Visible(ctx, wSpellbookTab) && says(ctx, v, "this is your magic interface")
			}),
			flow.When("prompt points at magic menu", magicOpenSpellbook, func(ctx context.Context, t *magicTurn) bool {
				v := t.World()
				return dialogClosed(ctx, v) && says(ctx, v, "magic menu")
			}),
			flow.When("runes handed over", magicCast, func(ctx context.Context, t *magicTurn) bool {
				return says(ctx, t.World(), "you now have some runes")
			}),
			flow.When("instructor out of reach", magicWalk, func(ctx context.Context, t *magicTurn) bool {
				v := t.World()
				return !v.HasAll(ctx, itRunes...) && !v.NearTile(ctx, tileMagic, magicAreaRadius) &&
					!nearNPC(ctx, v, npcMagicInstructor, nearRadius)
			}),
		},
		Handlers: map[magicState]flow.Handler[magicState]{
			magicWalk:          magicWalkToInstructor,
			magicTalk1:         magicTalkFirst,
			magicOpenSpellbook: magicSpellbook,
			magicTalk2:         magicTalkSecond,
			magicCast:          magicCastWindStrike,
			magicFinal:         magicFinalDialogue,
		},
	}
}

// onMainland reports the player has left the island: the mainland greeter
// is loaded or the player stands at the Lumbridge arrival tile.
func onMainland(ctx context.Context, v *world.View) bool {
	if v.Find(ctx, world.NPC(npcAdventurerJon)) != nil {
		return true
	}
	return v.NearTile(ctx, tileLumbridge, mainlandRadius)
}

func dialogClosed(ctx context.Context, v *world.View) bool {
	return !v.DialogOpen(ctx) && !v.ViewingOptions(ctx)
}

func magicWalkToInstructor(ctx context.Context, t *magicTurn) flow.Pace {
	v := t.World()
	if v.NearTile(ctx, tileMagic, magicAreaRadius) || nearNPC(ctx, v, npcMagicInstructor, nearRadius) {
		t.Goto(magicTalk1)
		return flow.PaceOption
	}
	if approach(ctx, v, npcMagicInstructor, tileMagic) {
		return flow.PaceWalk
	}
	return flow.PaceIdle
}

func magicTalkFirst(ctx context.Context, t *magicTurn) flow.Pace {
	v := t.World()
	if pace, ok := stepDialog(ctx, v); ok {
		return pace
	}
	if says(ctx, v, "final menu") || v.HasAll(ctx, itRunes...) {
		t.Goto(magicOpenSpellbook)
		return flow.PaceOption
	}
	if talkTo(ctx, v, npcMagicInstructor, talkRadius) {
		return flow.PaceTalk
	}
	if approach(ctx, v, npcMagicInstructor, tileMagic) {
		return flow.PaceWalk
	}
	return flow.PaceIdle
}

func magicSpellbook(ctx context.Context, t *magicTurn) flow.Pace {
	if clickIfVisible(ctx, t.World(), wSpellbookTab) {
		t.Goto(magicTalk2)
		return flow.PaceClick
	}
	return flow.PaceIdle
}

func magicTalkSecond(ctx context.Context, t *magicTurn) flow.Pace {
	v := t.World()
	if pace, ok := stepDialog(ctx, v); ok {
		return pace
	}
	if says(ctx, v, "you now have some runes", "cast wind strike") {
		t.Goto(magicCast)
		return flow.PaceOption
	}
	if talkTo(ctx, v, npcMagicInstructor, talkRadius) {
		return flow.PaceTalk
	}
	return flow.PaceIdle
}

func magicCastWindStrike(ctx context.Context, t *magicTurn) flow.Pace {
	v := t.World()
	if pace, ok := stepDialog(ctx, v); ok {
		return pace
	}
	if !v.CanCast(ctx, spellWindStrike) {
		t.Logger().Warn("cannot cast %s yet", spellWindStrike)
		if !v.HasAll(ctx, itRunes...) {
			t.Goto(magicTalk2)
		}
		return flow.PaceIdle
	}
	chicken := v.Find(ctx, world.NPC(npcChicken).Alive())
	if chicken == nil || chicken.Interacting {
		return flow.PaceWalk
	}
	if v.Cast(ctx, spellWindStrike, chicken) {
		t.Goto(magicFinal)
		return flow.PaceCast
	}
	return flow.PaceWalk
}

func magicFinalDialogue(ctx context.Context, t *magicTurn) flow.Pace {
	v := t.World()
	if onMainland(ctx, v) {
		t.Goto(magicMoveOn)
		return flow.PaceIdle
	}
	if v.ViewingOptions(ctx) {
		option := 1
		if strings.Contains(v.Text(ctx, wDialogOptionThree), "i'm not planning to do that") {
			option = 3
		}
		if v.ChooseOption(ctx, option) {
			return flow.PaceOption
		}
		return flow.PaceIdle
	}
	if pace, ok := stepDialog(ctx, v); ok {
		return pace
	}
	if talkTo(ctx, v, npcMagicInstructor, talkRadius) {
		return flow.PaceTalk
	}
	if approach(ctx, v, npcMagicInstructor, tileMagic) {
		return flow.PaceWalk
	}
	return flow.PaceIdle
}
