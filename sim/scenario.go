// Package sim drives a world.Memory from a YAML scenario. Reactions match
// the commands a run issues with expr conditions and answer them with world
// changes, standing in for the game client.
package sim

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	apperrors "github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-stagehand/world"
)

const ErrCodeScenarioInvalid = "SCENARIO_INVALID"

var ErrScenarioInvalid = apperrors.New("invalid scenario", apperrors.CategoryBadInput).
	WithTextCode(ErrCodeScenarioInvalid)

type Scenario struct {
	Name      string     `yaml:"name"`
	Start     State      `yaml:"start"`
	Reactions []Reaction `yaml:"reactions"`
}

// State seeds the world before the first tick.
type State struct {
	Player    world.Coordinate  `yaml:"player"`
	Entities  []EntitySpec      `yaml:"entities"`
	Inventory []ItemSpec        `yaml:"inventory"`
	Equipment []int             `yaml:"equipment"`
	Widgets   map[string]string `yaml:"widgets"`
	Hint      int               `yaml:"hint"`
	Dialog    *world.Dialog     `yaml:"dialog"`
	Spells    []string          `yaml:"spells"`
}

type EntitySpec struct {
	Kind         world.Kind `yaml:"kind"`
	ID           int        `yaml:"id"`
	Name         string     `yaml:"name"`
	X            int        `yaml:"x"`
	Y            int        `yaml:"y"`
	Plane        int        `yaml:"plane"`
	Interactable bool       `yaml:"interactable"`
	Dead         bool       `yaml:"dead"`
}

func (e EntitySpec) entity() world.Entity {
	kind := e.Kind
	if kind == "" {
		kind = world.KindNPC
	}
	return world.Entity{
		Kind:         kind,
		ID:           e.ID,
		Name:         e.Name,
		Position:     world.Coordinate{X: e.X, Y: e.Y, Plane: e.Plane},
		Interactable: e.Interactable,
		Dead:         e.Dead,
	}
}

type ItemSpec struct {
	ID       int    `yaml:"id"`
	Name     string `yaml:"name"`
	Quantity int    `yaml:"quantity"`
}

func (i ItemSpec) item() world.Item {
	qty := i.Quantity
	if qty == 0 {
		qty = 1
	}
	return world.Item{ID: i.ID, Name: i.Name, Quantity: qty}
}

func (i ItemSpec) query() world.ItemQuery {
	q := world.ItemQuery{}
	if i.ID != 0 {
		q.IDs = []int{i.ID}
	}
	if i.Name != "" {
		q.Names = []string{i.Name}
	}
	return q
}

// Reaction applies Then whenever When holds for an issued command.
type Reaction struct {
	Name string  `yaml:"name"`
	When string  `yaml:"when"`
	Once bool    `yaml:"once"`
	Then Effects `yaml:"then"`

	program *vm.Program
}

// Effects are world changes. They apply in field order.
type Effects struct {
	Despawn     []int             `yaml:"despawn"`
	Spawn       []EntitySpec      `yaml:"spawn"`
	Remove      []ItemSpec        `yaml:"remove"`
	Add         []ItemSpec        `yaml:"add"`
	Unequip     []int             `yaml:"unequip"`
	Equip       []int             `yaml:"equip"`
	Hide        []string          `yaml:"hide"`
	Show        map[string]string `yaml:"show"`
	Hint        *int              `yaml:"hint"`
	CloseDialog bool              `yaml:"close_dialog"`
	Dialog      *world.Dialog     `yaml:"dialog"`
	Teleport    *world.Coordinate `yaml:"teleport"`
	Learn       []string          `yaml:"learn"`
}

// Env is what a reaction condition sees. Target is the entity id, or the
// item id for item-on-item use.
type Env struct {
	Op         string `expr:"op"`
	Target     int    `expr:"target"`
	TargetName string `expr:"target_name"`
	Action     string `expr:"action"`
	Item       int    `expr:"item"`
	ItemName   string `expr:"item_name"`
	Option     int    `expr:"option"`
	Spell      string `expr:"spell"`
	Widget     string `expr:"widget"`
	X          int    `expr:"x"`
	Y          int    `expr:"y"`
	DialogOpen bool   `expr:"dialog_open"`

	Has      func(id int) bool          `expr:"has"`
	Equipped func(id int) bool          `expr:"equipped"`
	Text     func(widget string) string `expr:"text"`
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryExternal, "failed to read scenario").
			WithTextCode(ErrCodeScenarioInvalid).
			WithMetadata(map[string]any{"path": path})
	}
	return Parse(data)
}

// Parse decodes a scenario and compiles its conditions.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryBadInput, "failed to parse scenario").
			WithTextCode(ErrCodeScenarioInvalid)
	}
	if err := sc.compile(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) compile() error {
	for widget := range sc.Start.Widgets {
		if _, err := world.ParseLocator(widget); err != nil {
			return invalidScenario("start", fmt.Sprintf("bad widget %q", widget))
		}
	}
	for i := range sc.Reactions {
		r := &sc.Reactions[i]
		if r.Name == "" {
			r.Name = fmt.Sprintf("reaction %d", i+1)
		}
		if strings.TrimSpace(r.When) == "" {
			return invalidScenario(r.Name, "when is required")
		}
		program, err := expr.Compile(r.When, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			return invalidScenario(r.Name, err.Error())
		}
		r.program = program
		for _, widget := range slices.Concat(r.Then.Hide, keys(r.Then.Show)) {
			if _, err := world.ParseLocator(widget); err != nil {
				return invalidScenario(r.Name, fmt.Sprintf("bad widget %q", widget))
			}
		}
	}
	return nil
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func invalidScenario(reaction, reason string) *apperrors.Error {
	err := ErrScenarioInvalid.Clone()
	err.Message = "invalid scenario: " + reaction + ": " + reason
	return err.WithMetadata(map[string]any{"reaction": reaction})
}
