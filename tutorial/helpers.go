package tutorial

import (
	"context"

	"github.com/goliatone/go-stagehand/flow"
	"github.com/goliatone/go-stagehand/world"
)

const (
	talkRadius = 2
	nearRadius = 4
)

// says reports whether the tutorial prompt contains any of the snippets.
func says(ctx context.Context, v *world.View, snippets ...string) bool {
	return v.TextContains(ctx, wTutorialText, snippets...)
}

// stepDialog advances an open dialog by one step.
func stepDialog(ctx context.Context, v *world.View) (flow.Pace, bool) {
	switch v.AdvanceDialog(ctx) {
	case world.DialogChose:
		return flow.PaceOption, true
	case world.DialogContinued:
		return flow.PaceDialog, true
	default:
		return "", false
	}
}

// talkTo opens a conversation with the NPC when the hint arrow points at it
// or it stands within radius, and the player is free.
func talkTo(ctx context.Context, v *world.View, id, radius int) bool {
	if v.Interacting(ctx) {
		return false
	}
	npc := v.Find(ctx, world.NPC(id))
	if npc == nil {
		return false
	}
	if v.HintOn(ctx, id) || v.Near(ctx, npc, radius) {
		return v.Interact(ctx, npc, "Talk-to")
	}
	return false
}

// nearNPC reports whether the NPC is loaded and within radius.
func nearNPC(ctx context.Context, v *world.View, id, radius int) bool {
	return v.Near(ctx, v.Find(ctx, world.NPC(id)), radius)
}

// approach walks toward the NPC, or toward fallback when it is not loaded.
func approach(ctx context.Context, v *world.View, id int, fallback world.Coordinate) bool {
	if npc := v.Find(ctx, world.NPC(id)); npc != nil {
		return v.MoveTo(ctx, npc.Position)
	}
	return v.MoveTo(ctx, fallback)
}

// clickIfVisible clicks the widget when it is shown.
func clickIfVisible(ctx context.Context, v *world.View, l world.Locator) bool {
	return v.Visible(ctx, l) && v.Click(ctx, l)
}

// openObject interacts with the nearest match. Objects must be interactable.
func openObject(ctx context.Context, v *world.View, q world.Query, action string) bool {
	obj := v.Find(ctx, q)
	if obj == nil || (obj.Kind == world.KindObject && !obj.Interactable) {
		return false
	}
	return v.Interact(ctx, obj, action)
}

// wield equips the first inventory item matching q.
func wield(ctx context.Context, v *world.View, q world.ItemQuery) bool {
	return v.UseItem(ctx, v.First(ctx, q), "Wield")
}
