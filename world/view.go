package world

import (
	"context"
	"strings"

	stagehand "github.com/goliatone/go-stagehand"
)

// DialogStep reports what AdvanceDialog did.
type DialogStep int

const (
	DialogIdle DialogStep = iota
	DialogChose
	DialogContinued
)

// View is the fail-soft face of an Oracle. Oracle errors and panics are
// logged and reported as absence, so callers only ever see plain values.
type View struct {
	oracle Oracle
	logger stagehand.Logger
	guard  func(funcName string, fields ...map[string]any)
}

// NewView wraps oracle. A nil logger falls back to the stdout logger.
func NewView(oracle Oracle, logger stagehand.Logger) *View {
	logger = stagehand.NormalizeLogger(logger)
	return &View{
		oracle: oracle,
		logger: logger,
		guard:  stagehand.MakePanicHandler(stagehand.LoggerPanicLogger(logger)),
	}
}

// Oracle returns the wrapped oracle.
func (v *View) Oracle() Oracle {
	return v.oracle
}

func (v *View) failed(op string, err error) {
	stagehand.WithLoggerFields(v.logger, map[string]any{
		"op":    op,
		"error": err.Error(),
	}).Warn("world oracle %s failed, treating as not found", op)
}

// Player returns the local player, if the world has one loaded.
func (v *View) Player(ctx context.Context) (p Player, ok bool) {
	defer v.guard("world.LocalPlayer")
	player, err := v.oracle.LocalPlayer(ctx)
	if err != nil {
		v.failed("LocalPlayer", err)
		return Player{}, false
	}
	if player == nil {
		return Player{}, false
	}
	return *player, true
}

func (v *View) Position(ctx context.Context) (Coordinate, bool) {
	p, ok := v.Player(ctx)
	return p.Position, ok
}

// Interacting reports whether the player is busy with an ongoing action.
func (v *View) Interacting(ctx context.Context) bool {
	p, ok := v.Player(ctx)
	return ok && p.Interacting
}

// Animating reports whether the player plays animation.
func (v *View) Animating(ctx context.Context, animation int) bool {
	p, ok := v.Player(ctx)
	return ok && p.Animation == animation
}

func (v *View) Find(ctx context.Context, q Query) (found *Entity) {
	defer v.guard("world.FindEntity", map[string]any{"query": q.String()})
	e, err := v.oracle.FindEntity(ctx, q)
	if err != nil {
		v.failed("FindEntity", err)
		return nil
	}
	return e
}

func (v *View) HintArrow(ctx context.Context) (found *Entity) {
	defer v.guard("world.HintArrow")
	e, err := v.oracle.HintArrow(ctx)
	if err != nil {
		v.failed("HintArrow", err)
		return nil
	}
	return e
}

// HintOn reports whether the hint arrow points at the NPC with id.
func (v *View) HintOn(ctx context.Context, id int) bool {
	e := v.HintArrow(ctx)
	return e != nil && e.ID == id
}

// Near reports whether e exists and lies within radius tiles of the player.
func (v *View) Near(ctx context.Context, e *Entity, radius int) bool {
	if e == nil {
		return false
	}
	return v.NearTile(ctx, e.Position, radius)
}

func (v *View) NearTile(ctx context.Context, c Coordinate, radius int) bool {
	pos, ok := v.Position(ctx)
	return ok && pos.Within(c, radius)
}

func (v *View) MoveTo(ctx context.Context, c Coordinate) (issued bool) {
	defer v.guard("world.MoveTo", map[string]any{"tile": c.String()})
	if err := v.oracle.MoveTo(ctx, c); err != nil {
		v.failed("MoveTo", err)
		return false
	}
	return true
}

func (v *View) Interact(ctx context.Context, e *Entity, action string) (issued bool) {
	if e == nil {
		return false
	}
	defer v.guard("world.Interact", map[string]any{"entity": e.String(), "action": action})
	if err := v.oracle.Interact(ctx, *e, action); err != nil {
		v.failed("Interact", err)
		return false
	}
	return true
}

func (v *View) Has(ctx context.Context, q ItemQuery) (found bool) {
	defer v.guard("world.InventoryContains", map[string]any{"items": q.String()})
	ok, err := v.oracle.InventoryContains(ctx, q)
	if err != nil {
		v.failed("InventoryContains", err)
		return false
	}
	return ok
}

// HasAll reports whether every query matches an inventory item.
func (v *View) HasAll(ctx context.Context, qs ...ItemQuery) bool {
	for _, q := range qs {
		if !v.Has(ctx, q) {
			return false
		}
	}
	return len(qs) > 0
}

func (v *View) First(ctx context.Context, q ItemQuery) (found *Item) {
	defer v.guard("world.InventoryFirst", map[string]any{"items": q.String()})
	it, err := v.oracle.InventoryFirst(ctx, q)
	if err != nil {
		v.failed("InventoryFirst", err)
		return nil
	}
	return it
}

func (v *View) UseOn(ctx context.Context, it *Item, target Target) (issued bool) {
	if it == nil || (target.Entity == nil && target.Item == nil) {
		return false
	}
	defer v.guard("world.UseItemOn", map[string]any{"item": it.ID, "target": target.String()})
	if err := v.oracle.UseItemOn(ctx, *it, target); err != nil {
		v.failed("UseItemOn", err)
		return false
	}
	return true
}

func (v *View) UseItem(ctx context.Context, it *Item, action string) (issued bool) {
	if it == nil {
		return false
	}
	defer v.guard("world.InteractItem", map[string]any{"item": it.ID, "action": action})
	if err := v.oracle.InteractItem(ctx, *it, action); err != nil {
		v.failed("InteractItem", err)
		return false
	}
	return true
}

func (v *View) Equipped(ctx context.Context, itemID int) (found bool) {
	defer v.guard("world.EquipmentContains", map[string]any{"item": itemID})
	ok, err := v.oracle.EquipmentContains(ctx, itemID)
	if err != nil {
		v.failed("EquipmentContains", err)
		return false
	}
	return ok
}

func (v *View) Element(ctx context.Context, l Locator) (found *Element) {
	defer v.guard("world.Element", map[string]any{"widget": l.String()})
	el, err := v.oracle.Element(ctx, l)
	if err != nil {
		v.failed("Element", err)
		return nil
	}
	return el
}

func (v *View) Visible(ctx context.Context, l Locator) bool {
	el := v.Element(ctx, l)
	return el != nil && el.Visible
}

// Text returns the lower-cased text of a visible element, or "".
func (v *View) Text(ctx context.Context, l Locator) string {
	el := v.Element(ctx, l)
	if el == nil || !el.Visible {
		return ""
	}
	return strings.ToLower(el.Text)
}

// TextContains reports whether the element text contains any snippet.
func (v *View) TextContains(ctx context.Context, l Locator, snippets ...string) bool {
	text := v.Text(ctx, l)
	if text == "" {
		return false
	}
	for _, s := range snippets {
		if strings.Contains(text, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

func (v *View) Click(ctx context.Context, l Locator) (issued bool) {
	defer v.guard("world.Click", map[string]any{"widget": l.String()})
	if err := v.oracle.Click(ctx, l); err != nil {
		v.failed("Click", err)
		return false
	}
	return true
}

func (v *View) DialogOpen(ctx context.Context) (open bool) {
	defer v.guard("world.DialogOpen")
	ok, err := v.oracle.DialogOpen(ctx)
	if err != nil {
		v.failed("DialogOpen", err)
		return false
	}
	return ok
}

func (v *View) ViewingOptions(ctx context.Context) (viewing bool) {
	defer v.guard("world.DialogViewingOptions")
	ok, err := v.oracle.DialogViewingOptions(ctx)
	if err != nil {
		v.failed("DialogViewingOptions", err)
		return false
	}
	return ok
}

func (v *View) CanContinue(ctx context.Context) (can bool) {
	defer v.guard("world.DialogCanContinue")
	ok, err := v.oracle.DialogCanContinue(ctx)
	if err != nil {
		v.failed("DialogCanContinue", err)
		return false
	}
	return ok
}

func (v *View) ChooseOption(ctx context.Context, n int) (issued bool) {
	defer v.guard("world.ChooseOption", map[string]any{"option": n})
	if err := v.oracle.ChooseOption(ctx, n); err != nil {
		v.failed("ChooseOption", err)
		return false
	}
	return true
}

func (v *View) ContinueDialog(ctx context.Context) (issued bool) {
	defer v.guard("world.ContinueDialog")
	if err := v.oracle.ContinueDialog(ctx); err != nil {
		v.failed("ContinueDialog", err)
		return false
	}
	return true
}

// AdvanceDialog moves an open dialog one step: the first option when options
// are shown, otherwise the continue prompt.
func (v *View) AdvanceDialog(ctx context.Context) DialogStep {
	if v.ViewingOptions(ctx) {
		if v.ChooseOption(ctx, 1) {
			return DialogChose
		}
		return DialogIdle
	}
	if v.DialogOpen(ctx) && v.CanContinue(ctx) {
		if v.ContinueDialog(ctx) {
			return DialogContinued
		}
	}
	return DialogIdle
}

func (v *View) CanCast(ctx context.Context, spell string) (can bool) {
	defer v.guard("world.CanCast", map[string]any{"spell": spell})
	ok, err := v.oracle.CanCast(ctx, spell)
	if err != nil {
		v.failed("CanCast", err)
		return false
	}
	return ok
}

func (v *View) Cast(ctx context.Context, spell string, target *Entity) (issued bool) {
	if target == nil {
		return false
	}
	defer v.guard("world.Cast", map[string]any{"spell": spell, "target": target.String()})
	if err := v.oracle.Cast(ctx, spell, *target); err != nil {
		v.failed("Cast", err)
		return false
	}
	return true
}
