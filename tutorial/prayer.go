package tutorial

import (
	"context"
	"strings"

	"github.com/goliatone/go-stagehand/flow"
)

type prayerState string

const (
	prayerWalk        prayerState = "walk_to_chapel"
	prayerTalk1       prayerState = "talk_instructor_1"
	prayerOpenPrayer  prayerState = "open_prayer_tab"
	prayerTalk2       prayerState = "talk_instructor_2"
	prayerOpenFriends prayerState = "open_friends_tab"
	prayerFinal       prayerState = "final_dialogue"
	prayerMoveOn      prayerState = "move_on"
)

const (
	flagPrayerOpened  flow.Flag = "prayer_opened"
	flagFriendsOpened flow.Flag = "friends_opened"
)

type prayerTurn = flow.Turn[prayerState]

func prayerDefinition() flow.Definition[prayerState] {
	return flow.Definition[prayerState]{
		Name:     "prayer instructor",
		Stage:    StagePrayerInstructor,
		Next:     StageMagicInstructor,
		Initial:  prayerWalk,
		Terminal: prayerMoveOn,
		Flags:    []flow.Flag{flagPrayerOpened, flagFriendsOpened},
		Order: []prayerState{
			prayerWalk, prayerTalk1, prayerOpenPrayer, prayerTalk2,
			prayerOpenFriends, prayerFinal, prayerMoveOn,
		},
		Rules: []flow.Rule[prayerState]{
			flow.When("prompt points at the last instructor", prayerMoveOn, func(ctx context.Context, t *prayerTurn) bool {
				return says(ctx, t.World(), "your final instructor")
			}),
			flow.When("brother brace out of reach", prayerWalk, func(ctx context.Context, t *prayerTurn) bool {
				return !nearNPC(ctx, t.World(), npcBrotherBrace, nearRadius)
			}),
			flow.When("friends tab opened", prayerFinal, func(_ context.Context, t *prayerTurn) bool {
				return t.Has(flagFriendsOpened)
			}),
			flow.When("prompt points at friends list", prayerOpenFriends, func(ctx context.Context, t *prayerTurn) bool {
				return says(ctx, t.World(), "friends and ignore")
			}),
			flow.When("prayer tab opened", prayerTalk2, func(_ context.Context, t *prayerTurn) bool {
				return t.Has(flagPrayerOpened)
			}),
			flow.When("prompt points at prayer menu", prayerOpenPrayer, func(ctx context.Context, t *prayerTurn) bool {
				return says(ctx, t.World(), "prayer menu")
			}),
		},
		Fallback: flow.Constant(prayerTalk1),
		Handlers: map[prayerState]flow.Handler[prayerState]{
			prayerWalk:        prayerWalkToChapel,
			prayerTalk1:       prayerTalk,
			prayerOpenPrayer:  prayerClickTab(flagPrayerOpened, prayerTalk2),
			prayerTalk2:       prayerTalk,
			prayerOpenFriends: prayerClickTab(flagFriendsOpened, prayerFinal),
			prayerFinal:       prayerFinalDialogue,
		},
	}
}

func prayerWalkToChapel(ctx context.Context, t *prayerTurn) flow.Pace {
	v := t.World()
	if nearNPC(ctx, v, npcBrotherBrace, nearRadius) {
		t.Goto(prayerTalk1)
		return flow.PaceOption
	}
	if approach(ctx, v, npcBrotherBrace, tileChapel) {
		return flow.PaceWalk
	}
	return flow.PaceIdle
}

func prayerTalk(ctx context.Context, t *prayerTurn) flow.Pace {
	v := t.World()
	if pace, ok := stepDialog(ctx, v); ok {
		return pace
	}
	if talkTo(ctx, v, npcBrotherBrace, talkRadius) {
		return flow.PaceTalk
	}
	return flow.PaceIdle
}

func prayerClickTab(opened flow.Flag, next prayerState) flow.Handler[prayerState] {
	tab := wPrayerTab
	if opened == flagFriendsOpened {
		tab = wFriendsTab
	}
	return func(ctx context.Context, t *prayerTurn) flow.Pace {
		if clickIfVisible(ctx, t.World(), tab) {
			t.Mark(opened)
			t.Goto(next)
			return flow.PaceClick
		}
		t.Logger().Debug("tab %s not shown yet", tab)
		return flow.PaceIdle
	}
}

func prayerFinalDialogue(ctx context.Context, t *prayerTurn) flow.Pace {
	v := t.World()
	if strings.Contains(v.Text(ctx, wDialogOptionThree), "ready to move on") && v.ChooseOption(ctx, 3) {
		t.Goto(prayerMoveOn)
		return flow.PaceOption
	}
	if pace, ok := stepDialog(ctx, v); ok {
		return pace
	}
	if talkTo(ctx, v, npcBrotherBrace, talkRadius) {
		return flow.PaceTalk
	}
	return flow.PaceIdle
}
