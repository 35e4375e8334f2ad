package world

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	apperrors "github.com/goliatone/go-errors"
)

// Kind tells NPCs apart from scenery objects.
type Kind string

const (
	KindNPC    Kind = "npc"
	KindObject Kind = "object"
)

// Coordinate is a tile position.
type Coordinate struct {
	X     int `yaml:"x" json:"x"`
	Y     int `yaml:"y" json:"y"`
	Plane int `yaml:"plane" json:"plane"`
}

// Tile is shorthand for a plane 0 coordinate.
func Tile(x, y int) Coordinate {
	return Coordinate{X: x, Y: y}
}

// DistanceTo is the Chebyshev distance between two tiles. Tiles on different
// planes are infinitely far apart.
func (c Coordinate) DistanceTo(o Coordinate) int {
	if c.Plane != o.Plane {
		return math.MaxInt32
	}
	return max(abs(c.X-o.X), abs(c.Y-o.Y))
}

// Within reports whether o is at most radius tiles away.
func (c Coordinate) Within(o Coordinate, radius int) bool {
	return c.DistanceTo(o) <= radius
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y, c.Plane)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Entity is an NPC or object visible in the world.
type Entity struct {
	Kind         Kind       `json:"kind"`
	ID           int        `json:"id"`
	Name         string     `json:"name,omitempty"`
	Position     Coordinate `json:"position"`
	Interactable bool       `json:"interactable"`
	Interacting  bool       `json:"interacting"`
	Dead         bool       `json:"dead"`
}

func (e Entity) String() string {
	if e.Name != "" {
		return fmt.Sprintf("%s %q#%d", e.Kind, e.Name, e.ID)
	}
	return fmt.Sprintf("%s #%d", e.Kind, e.ID)
}

// Player is the local player.
type Player struct {
	Position    Coordinate `json:"position"`
	Interacting bool       `json:"interacting"`
	Animation   int        `json:"animation"`
}

// Item is an inventory stack.
type Item struct {
	ID       int    `json:"id"`
	Name     string `json:"name,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
}

// Query selects entities by kind and any of the given ids or names.
type Query struct {
	Kind       Kind
	IDs        []int
	Names      []string
	Attackable bool
}

func NPC(ids ...int) Query    { return Query{Kind: KindNPC, IDs: ids} }
func Object(ids ...int) Query { return Query{Kind: KindObject, IDs: ids} }

// ObjectNamed selects objects by case-insensitive name.
func ObjectNamed(names ...string) Query { return Query{Kind: KindObject, Names: names} }

// Alive restricts the query to entities that can be attacked.
func (q Query) Alive() Query {
	q.Attackable = true
	return q
}

func (q Query) Matches(e Entity) bool {
	if q.Kind != "" && q.Kind != e.Kind {
		return false
	}
	if q.Attackable && (e.Dead || e.Interacting) {
		return false
	}
	if len(q.IDs) == 0 && len(q.Names) == 0 {
		return true
	}
	if slices.Contains(q.IDs, e.ID) {
		return true
	}
	for _, name := range q.Names {
		if strings.EqualFold(name, e.Name) {
			return true
		}
	}
	return false
}

func (q Query) String() string {
	return fmt.Sprintf("%s ids=%v names=%v", q.Kind, q.IDs, q.Names)
}

// ItemQuery selects inventory items by id or case-insensitive name.
type ItemQuery struct {
	IDs   []int
	Names []string
}

func ItemIDs(ids ...int) ItemQuery        { return ItemQuery{IDs: ids} }
func ItemNames(names ...string) ItemQuery { return ItemQuery{Names: names} }

func (q ItemQuery) Matches(it Item) bool {
	if slices.Contains(q.IDs, it.ID) {
		return true
	}
	for _, name := range q.Names {
		if strings.EqualFold(name, it.Name) {
			return true
		}
	}
	return false
}

func (q ItemQuery) String() string {
	if len(q.Names) > 0 {
		return strings.Join(q.Names, "|")
	}
	return fmt.Sprint(q.IDs)
}

// Locator addresses a UI element as group:child or group:child:index.
type Locator struct {
	Group int `json:"group"`
	Child int `json:"child"`
	Index int `json:"index"`
}

// Widget locates a top level child. Its Index is -1.
func Widget(group, child int) Locator {
	return Locator{Group: group, Child: child, Index: -1}
}

// WidgetIndex locates a nested element.
func WidgetIndex(group, child, index int) Locator {
	return Locator{Group: group, Child: child, Index: index}
}

func (l Locator) String() string {
	if l.Index < 0 {
		return fmt.Sprintf("%d:%d", l.Group, l.Child)
	}
	return fmt.Sprintf("%d:%d:%d", l.Group, l.Child, l.Index)
}

// ParseLocator parses the textual form produced by Locator.String.
func ParseLocator(s string) (Locator, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Locator{}, invalidLocator(s)
	}
	nums := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Locator{}, invalidLocator(s)
		}
		nums[i] = n
	}
	if len(nums) == 2 {
		return Widget(nums[0], nums[1]), nil
	}
	return WidgetIndex(nums[0], nums[1], nums[2]), nil
}

func invalidLocator(s string) error {
	return apperrors.New("invalid widget locator", apperrors.CategoryBadInput).
		WithTextCode("INVALID_LOCATOR").
		WithMetadata(map[string]any{"locator": s})
}

// Element is a UI element snapshot.
type Element struct {
	Locator Locator `json:"locator"`
	Visible bool    `json:"visible"`
	Text    string  `json:"text,omitempty"`
}

// Target is the receiver of an item use: exactly one of Entity or Item is set.
type Target struct {
	Entity *Entity
	Item   *Item
}

func OnEntity(e Entity) Target { return Target{Entity: &e} }
func OnItem(it Item) Target    { return Target{Item: &it} }

func (t Target) String() string {
	switch {
	case t.Entity != nil:
		return t.Entity.String()
	case t.Item != nil:
		return fmt.Sprintf("item %q#%d", t.Item.Name, t.Item.ID)
	default:
		return "nothing"
	}
}

// Players exposes the local player and the tutorial hint arrow.
type Players interface {
	LocalPlayer(ctx context.Context) (*Player, error)
	HintArrow(ctx context.Context) (*Entity, error)
}

// Entities finds the nearest entity matching a query.
type Entities interface {
	FindEntity(ctx context.Context, q Query) (*Entity, error)
}

type Movement interface {
	MoveTo(ctx context.Context, c Coordinate) error
}

type Interactions interface {
	Interact(ctx context.Context, e Entity, action string) error
}

type Inventory interface {
	InventoryContains(ctx context.Context, q ItemQuery) (bool, error)
	InventoryFirst(ctx context.Context, q ItemQuery) (*Item, error)
	UseItemOn(ctx context.Context, it Item, target Target) error
	InteractItem(ctx context.Context, it Item, action string) error
}

type Equipment interface {
	EquipmentContains(ctx context.Context, itemID int) (bool, error)
}

type Widgets interface {
	Element(ctx context.Context, l Locator) (*Element, error)
	Click(ctx context.Context, l Locator) error
}

type Dialogs interface {
	DialogOpen(ctx context.Context) (bool, error)
	DialogViewingOptions(ctx context.Context) (bool, error)
	DialogCanContinue(ctx context.Context) (bool, error)
	ChooseOption(ctx context.Context, n int) error
	ContinueDialog(ctx context.Context) error
}

type Magic interface {
	CanCast(ctx context.Context, spell string) (bool, error)
	Cast(ctx context.Context, spell string, target Entity) error
}

// Oracle is the full world interface. Lookups return nil or false for
// "not found"; a non-nil error means the oracle itself failed.
type Oracle interface {
	Players
	Entities
	Movement
	Interactions
	Inventory
	Equipment
	Widgets
	Dialogs
	Magic
}
