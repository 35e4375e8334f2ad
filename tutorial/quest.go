package tutorial

import (
	"context"

	"github.com/goliatone/go-stagehand/flow"
	"github.com/goliatone/go-stagehand/world"
)

type questState string

const (
	questWalk    questState = "walk_to_guide"
	questTalk1   questState = "talk_guide_1"
	questOpenTab questState = "open_quests_tab"
	questTalk2   questState = "talk_guide_2"
	questMusic   questState = "music_player"
	questMoveOn  questState = "move_on"
)

type questTurn = flow.Turn[questState]

func questDefinition() flow.Definition[questState] {
	return flow.Definition[questState]{
		Name:     "quest guide",
		Stage:    StageQuestGuide,
		Next:     StageMiningInstructor,
		Initial:  questWalk,
		Terminal: questMoveOn,
		Order:    []questState{questWalk, questTalk1, questOpenTab, questTalk2, questMusic, questMoveOn},
		Overrides: []flow.Rule[questState]{
			flow.When("already in the mining cave", questMoveOn, func(ctx context.Context, t *questTurn) bool {
				return inMiningCave(ctx, t.World())
			}),
		},
		Rules: []flow.Rule[questState]{
			flow.When("prompt mentions mining", questMoveOn, func(ctx context.Context, t *questTurn) bool {
				return says(ctx, t.World(), "mining and smithing")
			}),
			flow.When("guide out of reach", questWalk, func(ctx context.Context, t *questTurn) bool {
				return !nearNPC(ctx, t.World(), npcQuestGuide, nearRadius)
			}),
			flow.When("music player shown", questMusic, func(ctx context.Context, t *questTurn) bool {
				return t.World().Visible(ctx, wMusicPanel)
			}),
			flow.When("quest journal shown", questTalk2, func(ctx context.Context, t *questTurn) bool {
				return t.World().Visible(ctx, wQuestPanel)
			}),
			flow.When("quest tab unlocked", questOpenTab, func(ctx context.Context, t *questTurn) bool {
				return says(ctx, t.World(), "quest journal", "flashing icon") && t.World().Visible(ctx, wQuestTab)
			}),
		},
		Fallback: flow.Constant(questTalk1),
		Handlers: map[questState]flow.Handler[questState]{
			questWalk:    questWalkToGuide,
			questTalk1:   questTalkFirst,
			questOpenTab: questOpenJournal,
			questTalk2:   questTalkSecond,
			questMusic:   questTalkSecond,
		},
		Depart: questClimbDown,
	}
}

func inMiningCave(ctx context.Context, v *world.View) bool {
	pos, ok := v.Position(ctx)
	return ok && pos.Y > miningCaveMinimum
}

func questWalkToGuide(ctx context.Context, t *questTurn) flow.Pace {
	v := t.World()
	if nearNPC(ctx, v, npcQuestGuide, nearRadius) {
		t.Goto(questTalk1)
		return flow.PaceOption
	}
	if v.Find(ctx, world.NPC(npcQuestGuide)) == nil && openObject(ctx, v, world.Object(objQuestDoor), "Open") {
		return flow.PaceTalk
	}
	if approach(ctx, v, npcQuestGuide, tileQuestGuide) {
		return flow.PaceWalk
	}
	return flow.PaceIdle
}

func questTalkFirst(ctx context.Context, t *questTurn) flow.Pace {
	v := t.World()
	if pace, ok := stepDialog(ctx, v); ok {
		return pace
	}
	if v.Visible(ctx, wQuestPanel) {
		t.Goto(questTalk2)
		return flow.PaceOption
	}
	if talkTo(ctx, v, npcQuestGuide, talkRadius) {
		return flow.PaceTalk
	}
	return flow.PaceIdle
}

func questOpenJournal(ctx context.Context, t *questTurn) flow.Pace {
	if clickIfVisible(ctx, t.World(), wQuestTab) {
		t.Goto(questTalk2)
		return flow.PaceClick
	}
	return flow.PaceIdle
}

func questTalkSecond(ctx context.Context, t *questTurn) flow.Pace {
	v := t.World()
	if pace, ok := stepDialog(ctx, v); ok {
		return pace
	}
	if says(ctx, v, "mining and smithing") {
		t.Goto(questMoveOn)
		return flow.PaceOption
	}
	if talkTo(ctx, v, npcQuestGuide, talkRadius) {
		return flow.PaceTalk
	}
	return flow.PaceIdle
}

// questClimbDown hands over once the player stands in the mining cave, or
// when there is no ladder left to climb.
func questClimbDown(ctx context.Context, t *questTurn) (flow.Pace, bool) {
	v := t.World()
	if inMiningCave(ctx, v) {
		return flow.PaceIdle, true
	}
	if openObject(ctx, v, world.Object(objLadder), "Climb-down") {
		return flow.PaceTalk, false
	}
	return flow.PaceIdle, v.Find(ctx, world.Object(objLadder)) == nil
}
