package tutorial

import (
	"context"

	"github.com/goliatone/go-stagehand/flow"
	"github.com/goliatone/go-stagehand/world"
)

type combatState string

const (
	combatWalk             combatState = "walk_to_instructor"
	combatTalk1            combatState = "talk_instructor_1"
	combatOpenEquipment    combatState = "open_equipment"
	combatOpenStats        combatState = "open_equip_stats"
	combatEquipDagger      combatState = "equip_dagger"
	combatTalk2            combatState = "talk_instructor_2"
	combatOpenEquipment2   combatState = "open_equipment_2"
	combatEquipSwordShield combatState = "equip_sword_shield"
	combatOpenStyles       combatState = "open_combat_styles"
	combatWalkToRat        combatState = "walk_to_rat"
	combatKillMelee        combatState = "kill_melee_rat"
	combatTalk3            combatState = "talk_instructor_3"
	combatEquipBow         combatState = "equip_bow_arrows"
	combatKillRange        combatState = "kill_range_rat"
	combatFinal            combatState = "final_dialogue"
	combatMoveOn           combatState = "move_on"
)

const (
	// flagStylesOpened is set once the combat styles tab was clicked. The
	// world shows no trace of it afterwards.
	flagStylesOpened flow.Flag = "styles_opened"
	flagMeleeKill    flow.Flag = "melee_kill"
)

var (
	itSword    = world.ItemIDs(itemSword)
	itShield   = world.ItemIDs(itemShield)
	itShortbow = world.ItemIDs(itemShortbow)
	itArrows   = world.ItemIDs(itemArrows)

	tileRangeSpot = world.Tile(3106, 9510)
)

type combatTurn = flow.Turn[combatState]

func combatDefinition() flow.Definition[combatState] {
	return flow.Definition[combatState]{
		Name:     "combat instructor",
		Stage:    StageCombatInstructor,
		Next:     StageBanker,
		Initial:  combatWalk,
		Terminal: combatMoveOn,
		Flags:    []flow.Flag{flagStylesOpened, flagMeleeKill},
		Order: []combatState{
			combatWalk, combatTalk1, combatOpenEquipment, combatOpenStats, combatEquipDagger,
			combatTalk2, combatOpenEquipment2, combatEquipSwordShield, combatOpenStyles,
			combatWalkToRat, combatKillMelee, combatTalk3, combatEquipBow, combatKillRange,
			combatFinal, combatMoveOn,
		},
		Rules: []flow.Rule[combatState]{
			flow.When("prompt says moving on", combatMoveOn, func(ctx context.Context, t *combatTurn) bool {
				return says(ctx, t.World(), "moving on")
			}),
			flow.When("weapon just smithed", combatTalk1, func(ctx context.Context, t *combatTurn) bool {
				return says(ctx, t.World(), "congratulations, you've made your first weapon")
			}),
			flow.When("ranged kill done", combatFinal, func(ctx context.Context, t *combatTurn) bool {
				return says(ctx, t.World(), "you have completed the tasks here")
			}),
			flow.When("bow and arrows worn", combatKillRange, func(ctx context.Context, t *combatTurn) bool {
				return wearing(ctx, t.World(), itemShortbow, itemArrows)
			}),
			flow.When("bow and arrows held", combatEquipBow, func(ctx context.Context, t *combatTurn) bool {
				v := t.World()
				return owns(ctx, v, itShortbow, itemShortbow) && owns(ctx, v, itArrows, itemArrows)
			}),
			flow.When("melee kill done", combatTalk3, func(ctx context.Context, t *combatTurn) bool {
				return t.Has(flagMeleeKill) || says(ctx, t.World(), "well done, you've made your first kill")
			}),
			flow.Keep("heading into the pen", func(ctx context.Context, t *combatTurn) bool {
				return t.Has(flagStylesOpened) && wearing(ctx, t.World(), itemSword, itemShield)
			}, combatWalkToRat),
			flow.When("styles opened", combatKillMelee, func(ctx context.Context, t *combatTurn) bool {
				return t.Has(flagStylesOpened) && wearing(ctx, t.World(), itemSword, itemShield)
			}),
			flow.When("sword and shield worn", combatOpenStyles, func(ctx context.Context, t *combatTurn) bool {
				return wearing(ctx, t.World(), itemSword, itemShield)
			}),
			flow.Keep("equipping sword and shield", swordAndShieldOwned, combatOpenEquipment2, combatEquipSwordShield),
			flow.When("sword and shield held", combatOpenEquipment2, swordAndShieldOwned),
			flow.When("dagger worn", combatTalk2, func(ctx context.Context, t *combatTurn) bool {
				return t.World().Equipped(ctx, itemDagger)
			}),
			flow.Keep("equipping dagger", daggerHeld, combatOpenEquipment, combatOpenStats, combatEquipDagger),
			flow.When("dagger held", combatOpenEquipment, daggerHeld),
			flow.When("instructor out of reach", combatWalk, func(ctx context.Context, t *combatTurn) bool {
				return !nearNPC(ctx, t.World(), npcCombatInstructor, nearRadius)
			}),
		},
		Fallback: flow.Constant(combatTalk1),
		Handlers: map[combatState]flow.Handler[combatState]{
			combatWalk:             combatWalkToInstructor,
			combatTalk1:            combatTalkFirst,
			combatOpenEquipment:    combatClickTab(wEquipmentTab, combatOpenStats),
			combatOpenStats:        combatClickTab(wEquipmentStats, combatEquipDagger),
			combatEquipDagger:      combatWieldDagger,
			combatTalk2:            combatTalkSecond,
			combatOpenEquipment2:   combatClickTab(wEquipmentTab, combatEquipSwordShield),
			combatEquipSwordShield: combatWieldPair(itSword, itemSword, itShield, itemShield, combatOpenStyles),
			combatOpenStyles:       combatStyles,
			combatWalkToRat:        combatEnterPen,
			combatKillMelee:        combatMelee,
			combatTalk3:            combatTalkThird,
			combatEquipBow:         combatWieldPair(itShortbow, itemShortbow, itArrows, itemArrows, combatKillRange),
			combatKillRange:        combatRanged,
			combatFinal:            combatFinalDialogue,
		},
	}
}

// owns reports whether the item is in the inventory or worn.
func owns(ctx context.Context, v *world.View, q world.ItemQuery, id int) bool {
	return v.Has(ctx, q) || v.Equipped(ctx, id)
}

func wearing(ctx context.Context, v *world.View, ids ...int) bool {
	for _, id := range ids {
		if !v.Equipped(ctx, id) {
			return false
		}
	}
	return len(ids) > 0
}

func daggerHeld(ctx context.Context, t *combatTurn) bool {
	return t.World().Has(ctx, itDagger)
}

func swordAndShieldOwned(ctx context.Context, t *combatTurn) bool {
	v := t.World()
	return owns(ctx, v, itSword, itemSword) && owns(ctx, v, itShield, itemShield)
}

func combatWalkToInstructor(ctx context.Context, t *combatTurn) flow.Pace {
	v := t.World()
	if nearNPC(ctx, v, npcCombatInstructor, nearRadius) {
		t.Goto(combatTalk1)
		return flow.PaceOption
	}
	if approach(ctx, v, npcCombatInstructor, tileCombat) {
		return flow.PaceWalk
	}
	return flow.PaceIdle
}

func combatTalkFirst(ctx context.Context, t *combatTurn) flow.Pace {
	v := t.World()
	if pace, ok := stepDialog(ctx, v); ok {
		return pace
	}
	if says(ctx, v, "equipping items") && v.Has(ctx, itDagger) {
		t.Goto(combatOpenEquipment)
		return flow.PaceOption
	}
	if talkTo(ctx, v, npcCombatInstructor, talkRadius) {
		return flow.PaceTalk
	}
	if approach(ctx, v, npcCombatInstructor, tileCombat) {
		return flow.PaceWalk
	}
	return flow.PaceIdle
}

// combatClickTab clicks a tab and moves on to next.
func combatClickTab(tab world.Locator, next combatState) flow.Handler[combatState] {
	return func(ctx context.Context, t *combatTurn) flow.Pace {
		if clickIfVisible(ctx, t.World(), tab) {
			t.Goto(next)
			return flow.PaceClick
		}
		return flow.PaceIdle
	}
}

func combatWieldDagger(ctx context.Context, t *combatTurn) flow.Pace {
	v := t.World()
	if v.Equipped(ctx, itemDagger) {
		t.Goto(combatTalk2)
		return flow.PaceOption
	}
	if wield(ctx, v, itDagger) {
		return flow.PaceWield
	}
	t.Goto(combatTalk1)
	return flow.PaceIdle
}

func combatTalkSecond(ctx context.Context, t *combatTurn) flow.Pace {
	v := t.World()
	if pace, ok := stepDialog(ctx, v); ok {
		return pace
	}
	if swordAndShieldOwned(ctx, t) {
		t.Goto(combatOpenEquipment2)
		return flow.PaceOption
	}
	if talkTo(ctx, v, npcCombatInstructor, talkRadius) {
		return flow.PaceTalk
	}
	if approach(ctx, v, npcCombatInstructor, tileCombat) {
		return flow.PaceWalk
	}
	return flow.PaceIdle
}

// combatWieldPair wields both items, one per tick, then moves on to next.
func combatWieldPair(first world.ItemQuery, firstID int, second world.ItemQuery, secondID int, next combatState) flow.Handler[combatState] {
	return func(ctx context.Context, t *combatTurn) flow.Pace {
		v := t.World()
		if wearing(ctx, v, firstID, secondID) {
			t.Goto(next)
			return flow.PaceOption
		}
		if !v.Equipped(ctx, firstID) && wield(ctx, v, first) {
			return flow.PaceWield
		}
		if !v.Equipped(ctx, secondID) && wield(ctx, v, second) {
			return flow.PaceWield
		}
		return flow.PaceIdle
	}
}

func combatStyles(ctx context.Context, t *combatTurn) flow.Pace {
	v := t.World()
	if says(ctx, v, "well done, you've made your first kill") {
		t.Mark(flagMeleeKill)
		t.Goto(combatTalk3)
		return flow.PaceOption
	}
	if clickIfVisible(ctx, v, wCombatTab) {
		t.Mark(flagStylesOpened)
		t.Goto(combatWalkToRat)
		return flow.PaceClick
	}
	return flow.PaceIdle
}

// combatEnterPen opens the gate when it is shut, then walks into the pen.
func combatEnterPen(ctx context.Context, t *combatTurn) flow.Pace {
	v := t.World()
	if v.NearTile(ctx, tileRatPen, 2) {
		t.Goto(combatKillMelee)
		return flow.PaceOption
	}
	if openObject(ctx, v, world.Object(objRatGate), "Open") {
		return flow.PaceWalk
	}
	if v.MoveTo(ctx, tileRatPen) {
		t.Goto(combatKillMelee)
		return flow.PaceWalk
	}
	return flow.PaceIdle
}

func combatMelee(ctx context.Context, t *combatTurn) flow.Pace {
	v := t.World()
	if says(ctx, v, "i can't reach that") {
		t.Goto(combatWalkToRat)
		return flow.PaceWalk
	}
	if says(ctx, v, "well done, you've made your first kill") {
		t.Mark(flagMeleeKill)
		t.Goto(combatTalk3)
		return flow.PaceOption
	}
	if attackRat(ctx, v) {
		return flow.PaceGather
	}
	return flow.PaceWalk
}

// attackRat attacks the nearest live giant rat nobody is fighting.
func attackRat(ctx context.Context, v *world.View) bool {
	if v.Interacting(ctx) {
		return false
	}
	rat := v.Find(ctx, world.NPC(npcGiantRat).Alive())
	if rat == nil || rat.Interacting {
		return false
	}
	return v.Interact(ctx, rat, "Attack")
}

func combatTalkThird(ctx context.Context, t *combatTurn) flow.Pace {
	v := t.World()
	t.Mark(flagMeleeKill)
	if pace, ok := stepDialog(ctx, v); ok {
		return pace
	}
	if owns(ctx, v, itShortbow, itemShortbow) && owns(ctx, v, itArrows, itemArrows) {
		t.Goto(combatEquipBow)
		return flow.PaceOption
	}
	if talkTo(ctx, v, npcCombatInstructor, talkRadius) {
		return flow.PaceTalk
	}
	if approach(ctx, v, npcCombatInstructor, tileCombat) {
		return flow.PaceWalk
	}
	return flow.PaceIdle
}

func combatRanged(ctx context.Context, t *combatTurn) flow.Pace {
	v := t.World()
	if says(ctx, v, "you have completed the tasks here") {
		t.Goto(combatFinal)
		return flow.PaceOption
	}
	if says(ctx, v, "i can't reach that") && v.MoveTo(ctx, tileRangeSpot) {
		return flow.PaceIdle
	}
	if attackRat(ctx, v) {
		return flow.PaceGather
	}
	return flow.PaceIdle
}

func combatFinalDialogue(ctx context.Context, t *combatTurn) flow.Pace {
	v := t.World()
	if pace, ok := stepDialog(ctx, v); ok {
		return pace
	}
	if says(ctx, v, "moving on") {
		t.Goto(combatMoveOn)
		return flow.PaceOption
	}
	if talkTo(ctx, v, npcCombatInstructor, talkRadius) {
		return flow.PaceTalk
	}
	if approach(ctx, v, npcCombatInstructor, tileCombat) {
		return flow.PaceWalk
	}
	return flow.PaceIdle
}
