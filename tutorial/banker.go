package tutorial

import (
	"context"

	"github.com/goliatone/go-stagehand/flow"
	"github.com/goliatone/go-stagehand/world"
)

type bankerState string

const (
	bankerWalkToBank    bankerState = "walk_to_bank"
	bankerOpenBank      bankerState = "open_bank"
	bankerCloseBank     bankerState = "close_bank"
	bankerWalkToPoll    bankerState = "walk_to_poll_booth"
	bankerOpenPoll      bankerState = "open_poll_booth"
	bankerClosePoll     bankerState = "close_poll"
	bankerWalkToGuide   bankerState = "walk_to_account_guide"
	bankerTalkGuide     bankerState = "talk_account_guide"
	bankerClickAccount  bankerState = "click_account_management"
	bankerFinalDialogue bankerState = "final_dialogue"
	bankerMoveOn        bankerState = "move_on"
)

// The bank and poll panels leave nothing behind once closed, so their use is
// remembered here.
const (
	flagBankUsed      flow.Flag = "bank_used"
	flagPollUsed      flow.Flag = "poll_used"
	flagAccountOpened flow.Flag = "account_opened"
)

const boothRadius = 2

type bankerTurn = flow.Turn[bankerState]

func bankerDefinition() flow.Definition[bankerState] {
	return flow.Definition[bankerState]{
		Name:     "banker",
		Stage:    StageBanker,
		Next:     StagePrayerInstructor,
		Initial:  bankerWalkToBank,
		Terminal: bankerMoveOn,
		Flags:    []flow.Flag{flagBankUsed, flagPollUsed, flagAccountOpened},
		Order: []bankerState{
			bankerWalkToBank, bankerOpenBank, bankerCloseBank, bankerWalkToPoll, bankerOpenPoll,
			bankerClosePoll, bankerWalkToGuide, bankerTalkGuide, bankerClickAccount,
			bankerFinalDialogue, bankerMoveOn,
		},
		Rules: []flow.Rule[bankerState]{
			flow.When("prompt points at the chapel", bankerMoveOn, func(ctx context.Context, t *bankerTurn) bool {
				return says(ctx, t.World(), "continue through the")
			}),
			flow.When("account panel opened", bankerFinalDialogue, func(ctx context.Context, t *bankerTurn) bool {
				return t.Has(flagAccountOpened)
			}),
			flow.When("account icon flashing", bankerClickAccount, func(ctx context.Context, t *bankerTurn) bool {
				return says(ctx, t.World(), "click on the flashing icon to open your account management")
			}),
			flow.When("poll panel shown", bankerClosePoll, func(ctx context.Context, t *bankerTurn) bool {
				return t.World().Visible(ctx, wPollPanel)
			}),
			flow.When("bank panel shown", bankerCloseBank, func(ctx context.Context, t *bankerTurn) bool {
				return t.World().Visible(ctx, wBankPanel)
			}),
			flow.When("poll used, guide near", bankerTalkGuide, func(ctx context.Context, t *bankerTurn) bool {
				return pollDone(ctx, t) && nearNPC(ctx, t.World(), npcAccountGuide, nearRadius)
			}),
			flow.When("poll used", bankerWalkToGuide, pollDone),
			flow.When("bank used, booth near", bankerOpenPoll, func(ctx context.Context, t *bankerTurn) bool {
				return bankDone(ctx, t) && t.World().NearTile(ctx, tilePollBooth, boothRadius)
			}),
			flow.When("bank used", bankerWalkToPoll, bankDone),
			flow.When("bank booth near", bankerOpenBank, func(ctx context.Context, t *bankerTurn) bool {
				return t.World().NearTile(ctx, tileBankBooth, boothRadius)
			}),
		},
		Fallback: flow.Constant(bankerWalkToBank),
		Handlers: map[bankerState]flow.Handler[bankerState]{
			bankerWalkToBank:    bankerWalkTo(tileBankBooth, bankerOpenBank),
			bankerOpenBank:      bankerUseBooth(objBankBooth, bankerCloseBank),
			bankerCloseBank:     bankerClosePanel(wBankPanel, wBankClose, flagBankUsed, bankerOpenBank, bankerWalkToPoll),
			bankerWalkToPoll:    bankerWalkTo(tilePollBooth, bankerOpenPoll),
			bankerOpenPoll:      bankerUseBooth(objPollBooth, bankerClosePoll),
			bankerClosePoll:     bankerClosePanel(wPollPanel, wPollClose, flagPollUsed, bankerOpenPoll, bankerWalkToGuide),
			bankerWalkToGuide:   bankerWalkToAccountGuide,
			bankerTalkGuide:     bankerTalkToGuide,
			bankerClickAccount:  bankerAccount,
			bankerFinalDialogue: bankerFinal,
		},
	}
}

// bankDone also trusts the prompt, which survives a restart where flags do
// not.
func bankDone(ctx context.Context, t *bankerTurn) bool {
	return t.Has(flagBankUsed) || says(ctx, t.World(), "poll booth")
}

func pollDone(ctx context.Context, t *bankerTurn) bool {
	return t.Has(flagPollUsed) || says(ctx, t.World(), "account guide")
}

func bankerWalkTo(tile world.Coordinate, next bankerState) flow.Handler[bankerState] {
	return func(ctx context.Context, t *bankerTurn) flow.Pace {
		v := t.World()
		if v.NearTile(ctx, tile, boothRadius) {
			t.Goto(next)
			return flow.PaceSettle
		}
		if v.MoveTo(ctx, tile) {
			return flow.PaceWalk
		}
		return flow.PaceIdle
	}
}

func bankerUseBooth(boothID int, next bankerState) flow.Handler[bankerState] {
	return func(ctx context.Context, t *bankerTurn) flow.Pace {
		if openObject(ctx, t.World(), world.Object(boothID), "Use") {
			t.Goto(next)
			return flow.PaceTalk
		}
		t.Logger().Warn("booth %d not found", boothID)
		return flow.PaceIdle
	}
}

// bankerClosePanel closes an open panel and records that it was used. While
// the panel has not shown up yet it steps any dialog in front of it, and
// falls back to retry when there is nothing to wait on.
func bankerClosePanel(panel, closer world.Locator, used flow.Flag, retry, next bankerState) flow.Handler[bankerState] {
	return func(ctx context.Context, t *bankerTurn) flow.Pace {
		v := t.World()
		if v.Visible(ctx, panel) {
			t.Mark(used)
			if v.Click(ctx, closer) {
				t.Goto(next)
				return flow.PaceWalk
			}
			return flow.PaceIdle
		}
		if pace, ok := stepDialog(ctx, v); ok {
			return pace
		}
		if t.Has(used) {
			t.Goto(next)
			return flow.PaceSettle
		}
		t.Goto(retry)
		return flow.PaceSettle
	}
}

func bankerWalkToAccountGuide(ctx context.Context, t *bankerTurn) flow.Pace {
	v := t.World()
	if nearNPC(ctx, v, npcAccountGuide, talkRadius) {
		t.Goto(bankerTalkGuide)
		return flow.PaceSettle
	}
	if approach(ctx, v, npcAccountGuide, tileAccountGuide) {
		return flow.PaceWalk
	}
	return flow.PaceIdle
}

func bankerTalkToGuide(ctx context.Context, t *bankerTurn) flow.Pace {
	v := t.World()
	if pace, ok := stepDialog(ctx, v); ok {
		return pace
	}
	if says(ctx, v, "click on the flashing icon to open your account management") {
		t.Goto(bankerClickAccount)
		return flow.PaceOption
	}
	if talkTo(ctx, v, npcAccountGuide, nearRadius) {
		return flow.PaceTalk
	}
	if approach(ctx, v, npcAccountGuide, tileAccountGuide) {
		return flow.PaceWalk
	}
	return flow.PaceIdle
}

func bankerAccount(ctx context.Context, t *bankerTurn) flow.Pace {
	if clickIfVisible(ctx, t.World(), wAccountTab) {
		t.Mark(flagAccountOpened)
		t.Goto(bankerFinalDialogue)
		return flow.PaceClick
	}
	return flow.PaceIdle
}

func bankerFinal(ctx context.Context, t *bankerTurn) flow.Pace {
	v := t.World()
	if says(ctx, v, "continue through the") {
		t.Goto(bankerMoveOn)
		return flow.PaceOption
	}
	if pace, ok := stepDialog(ctx, v); ok {
		return pace
	}
	if talkTo(ctx, v, npcAccountGuide, nearRadius) {
		return flow.PaceTalk
	}
	if approach(ctx, v, npcAccountGuide, tileAccountGuide) {
		return flow.PaceWalk
	}
	return flow.PaceIdle
}
