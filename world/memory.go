package world

import (
	"context"
	"slices"
	"sync"
)

// Command ops recorded by Memory.
const (
	OpMove     = "move"
	OpInteract = "interact"
	OpUse      = "use"
	OpItem     = "item"
	OpClick    = "click"
	OpChoose   = "choose"
	OpContinue = "continue"
	OpCast     = "cast"
)

// Command is one world action issued against a Memory world.
type Command struct {
	Op     string
	Action string
	Entity *Entity
	Item   *Item
	Target Target
	Tile   *Coordinate
	Widget *Locator
	Option int
	Spell  string
}

// Dialog is the open conversation state of a Memory world. Pages counts the
// continue prompts left; Options are shown before any further page.
type Dialog struct {
	Pages   int      `yaml:"pages" json:"pages"`
	Options []string `yaml:"options" json:"options,omitempty"`
}

func (d Dialog) open() bool { return d.Pages > 0 || len(d.Options) > 0 }

// Reactor is called after every command Memory records, outside of its lock.
type Reactor func(m *Memory, cmd Command)

// Memory is an in-memory Oracle for tests and simulations.
type Memory struct {
	mu sync.Mutex

	player    *Player
	entities  []Entity
	hint      int
	inventory []Item
	equipment []int
	elements  map[Locator]Element
	dialog    Dialog
	spells    map[string]bool
	failures  map[string]error
	journal   []Command
	reactors  []Reactor
}

// NewMemory returns an empty world with no player loaded.
func NewMemory() *Memory {
	return &Memory{
		elements: make(map[Locator]Element),
		spells:   make(map[string]bool),
		failures: make(map[string]error),
	}
}

// OnCommand registers reactors invoked after each command.
func (m *Memory) OnCommand(reactors ...Reactor) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reactors = append(m.reactors, reactors...)
	return m
}

// Fail makes the named oracle method return err until cleared with a nil err.
func (m *Memory) Fail(method string, err error) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, method)
	} else {
		m.failures[method] = err
	}
	return m
}

func (m *Memory) SetPlayer(p Player) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.player = &p
	return m
}

func (m *Memory) Teleport(c Coordinate) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.player == nil {
		m.player = &Player{}
	}
	m.player.Position = c
	return m
}

func (m *Memory) SetInteracting(interacting bool) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.player != nil {
		m.player.Interacting = interacting
	}
	return m
}

func (m *Memory) SetAnimation(animation int) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.player != nil {
		m.player.Animation = animation
	}
	return m
}

// Spawn adds entities to the world.
func (m *Memory) Spawn(entities ...Entity) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities = append(m.entities, entities...)
	return m
}

// Despawn removes every entity with one of ids.
func (m *Memory) Despawn(ids ...int) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities = slices.DeleteFunc(m.entities, func(e Entity) bool {
		return slices.Contains(ids, e.ID)
	})
	return m
}

// UpdateEntity applies fn to every entity with id.
func (m *Memory) UpdateEntity(id int, fn func(*Entity)) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.entities {
		if m.entities[i].ID == id {
			fn(&m.entities[i])
		}
	}
	return m
}

// PointHint moves the hint arrow to the NPC with id. Zero clears it.
func (m *Memory) PointHint(id int) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hint = id
	return m
}

func (m *Memory) AddItems(items ...Item) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inventory = append(m.inventory, items...)
	return m
}

// RemoveItems drops every inventory item matching q.
func (m *Memory) RemoveItems(q ItemQuery) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inventory = slices.DeleteFunc(m.inventory, q.Matches)
	return m
}

func (m *Memory) Equip(ids ...int) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if !slices.Contains(m.equipment, id) {
			m.equipment = append(m.equipment, id)
		}
	}
	return m
}

func (m *Memory) Unequip(ids ...int) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.equipment = slices.DeleteFunc(m.equipment, func(id int) bool {
		return slices.Contains(ids, id)
	})
	return m
}

// SetElement shows an element with text.
func (m *Memory) SetElement(l Locator, text string) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.elements[l] = Element{Locator: l, Visible: true, Text: text}
	return m
}

func (m *Memory) HideElement(l Locator) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.elements, l)
	return m
}

func (m *Memory) SetDialog(d Dialog) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dialog = Dialog{Pages: d.Pages, Options: slices.Clone(d.Options)}
	return m
}

func (m *Memory) CloseDialog() *Memory {
	return m.SetDialog(Dialog{})
}

func (m *Memory) Learn(spells ...string) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range spells {
		m.spells[s] = true
	}
	return m
}

// Journal returns every command issued so far.
func (m *Memory) Journal() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.journal)
}

// Holding reports whether the inventory contains an item matching q.
func (m *Memory) Holding(q ItemQuery) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.ContainsFunc(m.inventory, q.Matches)
}

// Wearing reports whether the item is equipped.
func (m *Memory) Wearing(id int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Contains(m.equipment, id)
}

// ElementText returns the text of a visible element, or "".
func (m *Memory) ElementText(l Locator) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.elements[l].Text
}

func (m *Memory) failure(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures[method]
}

// record journals cmd, applies its direct effect under the lock and then
// runs the reactors.
func (m *Memory) record(method string, cmd Command, apply func()) error {
	m.mu.Lock()
	if err := m.failures[method]; err != nil {
		m.mu.Unlock()
		return err
	}
	m.journal = append(m.journal, cmd)
	if apply != nil {
		apply()
	}
	reactors := slices.Clone(m.reactors)
	m.mu.Unlock()

	for _, react := range reactors {
		react(m, cmd)
	}
	return nil
}

func (m *Memory) LocalPlayer(_ context.Context) (*Player, error) {
	if err := m.failure("LocalPlayer"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.player == nil {
		return nil, nil
	}
	p := *m.player
	return &p, nil
}

func (m *Memory) HintArrow(_ context.Context) (*Entity, error) {
	if err := m.failure("HintArrow"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hint == 0 {
		return nil, nil
	}
	for _, e := range m.entities {
		if e.Kind == KindNPC && e.ID == m.hint {
			return &e, nil
		}
	}
	return nil, nil
}

// FindEntity returns the matching entity nearest to the player.
func (m *Memory) FindEntity(_ context.Context, q Query) (*Entity, error) {
	if err := m.failure("FindEntity"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var origin Coordinate
	if m.player != nil {
		origin = m.player.Position
	}

	var best *Entity
	for i := range m.entities {
		e := m.entities[i]
		if !q.Matches(e) {
			continue
		}
		if best == nil || origin.DistanceTo(e.Position) < origin.DistanceTo(best.Position) {
			best = &e
		}
	}
	return best, nil
}

// MoveTo places the player on c immediately.
func (m *Memory) MoveTo(_ context.Context, c Coordinate) error {
	return m.record("MoveTo", Command{Op: OpMove, Tile: &c}, func() {
		if m.player == nil {
			m.player = &Player{}
		}
		m.player.Position = c
	})
}

func (m *Memory) Interact(_ context.Context, e Entity, action string) error {
	return m.record("Interact", Command{Op: OpInteract, Entity: &e, Action: action}, nil)
}

func (m *Memory) InventoryContains(_ context.Context, q ItemQuery) (bool, error) {
	if err := m.failure("InventoryContains"); err != nil {
		return false, err
	}
	return m.Holding(q), nil
}

func (m *Memory) InventoryFirst(_ context.Context, q ItemQuery) (*Item, error) {
	if err := m.failure("InventoryFirst"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.inventory {
		if q.Matches(it) {
			return &it, nil
		}
	}
	return nil, nil
}

func (m *Memory) UseItemOn(_ context.Context, it Item, target Target) error {
	return m.record("UseItemOn", Command{Op: OpUse, Item: &it, Target: target}, nil)
}

func (m *Memory) InteractItem(_ context.Context, it Item, action string) error {
	return m.record("InteractItem", Command{Op: OpItem, Item: &it, Action: action}, nil)
}

func (m *Memory) EquipmentContains(_ context.Context, itemID int) (bool, error) {
	if err := m.failure("EquipmentContains"); err != nil {
		return false, err
	}
	return m.Wearing(itemID), nil
}

func (m *Memory) Element(_ context.Context, l Locator) (*Element, error) {
	if err := m.failure("Element"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.elements[l]
	if !ok {
		return nil, nil
	}
	return &el, nil
}

func (m *Memory) Click(_ context.Context, l Locator) error {
	return m.record("Click", Command{Op: OpClick, Widget: &l}, nil)
}

func (m *Memory) DialogOpen(_ context.Context) (bool, error) {
	if err := m.failure("DialogOpen"); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dialog.open(), nil
}

func (m *Memory) DialogViewingOptions(_ context.Context) (bool, error) {
	if err := m.failure("DialogViewingOptions"); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dialog.Options) > 0, nil
}

func (m *Memory) DialogCanContinue(_ context.Context) (bool, error) {
	if err := m.failure("DialogCanContinue"); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dialog.Options) == 0 && m.dialog.Pages > 0, nil
}

// ChooseOption dismisses the option list; remaining pages stay open.
func (m *Memory) ChooseOption(_ context.Context, n int) error {
	return m.record("ChooseOption", Command{Op: OpChoose, Option: n}, func() {
		m.dialog.Options = nil
	})
}

// ContinueDialog consumes one page.
func (m *Memory) ContinueDialog(_ context.Context) error {
	return m.record("ContinueDialog", Command{Op: OpContinue}, func() {
		if m.dialog.Pages > 0 {
			m.dialog.Pages--
		}
	})
}

func (m *Memory) CanCast(_ context.Context, spell string) (bool, error) {
	if err := m.failure("CanCast"); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.spells[spell], nil
}

func (m *Memory) Cast(_ context.Context, spell string, target Entity) error {
	return m.record("Cast", Command{Op: OpCast, Spell: spell, Entity: &target}, nil)
}

var _ Oracle = (*Memory)(nil)
