package tutorial

import (
	"context"

	"github.com/goliatone/go-stagehand/flow"
	"github.com/goliatone/go-stagehand/world"
)

type guideState string

const (
	guideTalk1        guideState = "talk_guide_1"
	guideOpenSettings guideState = "open_settings"
	guideTalk2        guideState = "talk_guide_2"
	guideMoveOn       guideState = "move_on"
)

type guideTurn = flow.Turn[guideState]

func gielinorDefinition() flow.Definition[guideState] {
	return flow.Definition[guideState]{
		Name:     "gielinor guide",
		Stage:    StageGielinorGuide,
		Next:     StageSurvivalExpert,
		Initial:  guideTalk1,
		Terminal: guideMoveOn,
		Order:    []guideState{guideTalk1, guideOpenSettings, guideTalk2, guideMoveOn},
		Rules: []flow.Rule[guideState]{
			flow.When("prompt says move on", guideMoveOn, func(ctx context.Context, t *guideTurn) bool {
				return says(ctx, t.World(), "catch some shrimp", "moving on", "proceed")
			}),
			flow.When("prompt asks for settings", guideOpenSettings, func(ctx context.Context, t *guideTurn) bool {
				return says(ctx, t.World(), "open your settings", "you've been given an item")
			}),
			flow.When("guide left behind", guideMoveOn, func(ctx context.Context, t *guideTurn) bool {
				return guideDone(ctx, t.World())
			}),
			flow.Keep("settings already opened", nil, guideTalk2),
		},
		Fallback: flow.Constant(guideTalk1),
		Handlers: map[guideState]flow.Handler[guideState]{
			guideTalk1:        guideTalkFirst,
			guideOpenSettings: guideSettings,
			guideTalk2:        guideTalkSecond,
		},
	}
}

// guideDone reports evidence the guide's section is over: the hint moved to
// the survival expert or the guide is out of reach.
func guideDone(ctx context.Context, v *world.View) bool {
	if v.HintOn(ctx, npcSurvivalExpert) {
		return true
	}
	if _, ok := v.Position(ctx); !ok {
		return false
	}
	guide := v.Find(ctx, world.NPC(npcGielinorGuide))
	return guide == nil || !v.Near(ctx, guide, 10)
}

func guideTalkFirst(ctx context.Context, t *guideTurn) flow.Pace {
	v := t.World()
	if guideDone(ctx, v) {
		t.Goto(guideMoveOn)
		return flow.PaceOption
	}
	if pace, ok := stepDialog(ctx, v); ok {
		return pace
	}
	if says(ctx, v, "spanner icon") {
		t.Goto(guideOpenSettings)
		return flow.PaceOption
	}
	if v.HintArrow(ctx) == nil {
		// prompt between dialogs, nothing to click yet
		return flow.PaceIdle
	}
	if talkTo(ctx, v, npcGielinorGuide, nearRadius) {
		return flow.PaceTalk
	}
	return flow.PaceIdle
}

func guideSettings(ctx context.Context, t *guideTurn) flow.Pace {
	v := t.World()
	if clickIfVisible(ctx, v, wSettingsTab) {
		t.Goto(guideTalk2)
		return flow.PaceIdle
	}
	if pace, ok := stepDialog(ctx, v); ok {
		return pace
	}
	return flow.PaceIdle
}

func guideTalkSecond(ctx context.Context, t *guideTurn) flow.Pace {
	v := t.World()
	if pace, ok := stepDialog(ctx, v); ok {
		return pace
	}
	if guideDone(ctx, v) {
		t.Goto(guideMoveOn)
		return flow.PaceOption
	}
	if talkTo(ctx, v, npcGielinorGuide, nearRadius) {
		return flow.PaceTalk
	}
	return flow.PaceIdle
}
