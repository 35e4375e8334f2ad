package sim

import (
	"context"
	"strings"
	"sync"

	"github.com/expr-lang/expr"

	stagehand "github.com/goliatone/go-stagehand"
	"github.com/goliatone/go-stagehand/world"
)

// Simulation owns a Memory world seeded from a scenario and reacts to every
// command issued against it.
type Simulation struct {
	scenario *Scenario
	world    *world.Memory
	logger   stagehand.Logger

	mu    sync.Mutex
	fired map[string]int
}

type Option func(*Simulation)

func WithLogger(logger stagehand.Logger) Option {
	return func(s *Simulation) {
		s.logger = logger
	}
}

// New seeds a fresh world from sc.
func New(sc *Scenario, opts ...Option) *Simulation {
	s := &Simulation{
		scenario: sc,
		world:    world.NewMemory(),
		fired:    make(map[string]int),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.logger = stagehand.WithLoggerFields(stagehand.NormalizeLogger(s.logger), map[string]any{
		"scenario": sc.Name,
	})
	seed(s.world, sc.Start)
	s.world.OnCommand(s.react)
	return s
}

// World returns the simulated oracle.
func (s *Simulation) World() *world.Memory {
	return s.world
}

func (s *Simulation) Scenario() *Scenario {
	return s.scenario
}

// Fired reports how many times the named reaction has applied.
func (s *Simulation) Fired(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fired[name]
}

func seed(m *world.Memory, st State) {
	m.SetPlayer(world.Player{Position: st.Player})
	for _, e := range st.Entities {
		m.Spawn(e.entity())
	}
	for _, it := range st.Inventory {
		m.AddItems(it.item())
	}
	m.Equip(st.Equipment...)
	for widget, text := range st.Widgets {
		l, _ := world.ParseLocator(widget)
		m.SetElement(l, text)
	}
	m.PointHint(st.Hint)
	if st.Dialog != nil {
		m.SetDialog(*st.Dialog)
	}
	m.Learn(st.Spells...)
}

func (s *Simulation) react(m *world.Memory, cmd world.Command) {
	for i := range s.scenario.Reactions {
		r := &s.scenario.Reactions[i]
		if r.Once && s.Fired(r.Name) > 0 {
			continue
		}
		out, err := expr.Run(r.program, commandEnv(m, cmd))
		if err != nil {
			stagehand.WithLoggerFields(s.logger, map[string]any{
				"reaction": r.Name,
				"error":    err.Error(),
			}).Warn("reaction %s failed to evaluate", r.Name)
			continue
		}
		if matched, _ := out.(bool); !matched {
			continue
		}
		s.mu.Lock()
		s.fired[r.Name]++
		s.mu.Unlock()
		s.logger.Debug("reaction %s fired on %s", r.Name, cmd.Op)
		apply(m, r.Then)
	}
}

func commandEnv(m *world.Memory, cmd world.Command) Env {
	env := Env{
		Op:     cmd.Op,
		Action: cmd.Action,
		Option: cmd.Option,
		Spell:  cmd.Spell,
		Has: func(id int) bool {
			return m.Holding(world.ItemIDs(id))
		},
		Equipped: m.Wearing,
		Text: func(widget string) string {
			l, err := world.ParseLocator(widget)
			if err != nil {
				return ""
			}
			return strings.ToLower(m.ElementText(l))
		},
	}
	switch {
	case cmd.Entity != nil:
		env.Target, env.TargetName = cmd.Entity.ID, cmd.Entity.Name
	case cmd.Target.Entity != nil:
		env.Target, env.TargetName = cmd.Target.Entity.ID, cmd.Target.Entity.Name
	case cmd.Target.Item != nil:
		env.Target, env.TargetName = cmd.Target.Item.ID, cmd.Target.Item.Name
	}
	if cmd.Item != nil {
		env.Item, env.ItemName = cmd.Item.ID, cmd.Item.Name
	}
	if cmd.Widget != nil {
		env.Widget = cmd.Widget.String()
	}
	if cmd.Tile != nil {
		env.X, env.Y = cmd.Tile.X, cmd.Tile.Y
	}
	env.DialogOpen, _ = m.DialogOpen(context.Background())
	return env
}

func apply(m *world.Memory, eff Effects) {
	m.Despawn(eff.Despawn...)
	for _, e := range eff.Spawn {
		m.Spawn(e.entity())
	}
	for _, it := range eff.Remove {
		m.RemoveItems(it.query())
	}
	for _, it := range eff.Add {
		m.AddItems(it.item())
	}
	m.Unequip(eff.Unequip...)
	m.Equip(eff.Equip...)
	for _, widget := range eff.Hide {
		l, _ := world.ParseLocator(widget)
		m.HideElement(l)
	}
	for widget, text := range eff.Show {
		l, _ := world.ParseLocator(widget)
		m.SetElement(l, text)
	}
	if eff.Hint != nil {
		m.PointHint(*eff.Hint)
	}
	if eff.CloseDialog {
		m.CloseDialog()
	}
	if eff.Dialog != nil {
		m.SetDialog(*eff.Dialog)
	}
	if eff.Teleport != nil {
		m.Teleport(*eff.Teleport)
	}
	m.Learn(eff.Learn...)
}
