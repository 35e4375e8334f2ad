package flow

import (
	"context"
	"fmt"
	"time"

	stagehand "github.com/goliatone/go-stagehand"
	"github.com/goliatone/go-stagehand/world"
)

type settings struct {
	logger    stagehand.Logger
	timetable Timetable
	source    Source
	hooks     []SubstateHook
}

// SubstateHook observes every substate change of a stage workflow.
type SubstateHook func(stage stagehand.Stage, from, to, reason string)

// Option configures a Machine.
type Option func(*settings)

func WithLogger(logger stagehand.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithTimetable replaces the default paces. Missing paces fall back to idle.
func WithTimetable(t Timetable) Option {
	return func(s *settings) {
		if len(t) > 0 {
			s.timetable = t
		}
	}
}

// WithSource sets the jitter randomness.
func WithSource(src Source) Option {
	return func(s *settings) {
		if src != nil {
			s.source = src
		}
	}
}

func WithSubstateHook(fn SubstateHook) Option {
	return func(s *settings) {
		if fn != nil {
			s.hooks = append(s.hooks, fn)
		}
	}
}

// Machine runs a Definition as a stagehand.Workflow. Its substate is never
// trusted across ticks: every unblocked execute re-derives it from the world.
type Machine[S comparable] struct {
	def       Definition[S]
	ctl       stagehand.Controller
	view      *world.View
	logger    stagehand.Logger
	timetable Timetable
	source    Source
	hooks     []SubstateHook

	substate S
	flags    map[Flag]bool
}

// New builds a machine in the definition's initial substate. It does not
// touch the world.
func New[S comparable](def Definition[S], ctl stagehand.Controller, view *world.View, opts ...Option) (*Machine[S], error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if def.Name == "" {
		def.Name = string(def.Stage)
	}
	if ctl == nil {
		return nil, invalidDefinition(def.Name, "controller is required")
	}
	if view == nil {
		return nil, invalidDefinition(def.Name, "world view is required")
	}

	cfg := settings{
		timetable: DefaultTimetable(),
		source:    globalSource{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if err := cfg.timetable.Validate(); err != nil {
		return nil, err
	}

	m := &Machine[S]{
		def:       def,
		ctl:       ctl,
		view:      view,
		timetable: cfg.timetable,
		source:    cfg.source,
		hooks:     cfg.hooks,
		substate:  def.Initial,
		flags:     make(map[Flag]bool, len(def.Flags)),
	}
	m.logger = stagehand.WithLoggerFields(stagehand.NormalizeLogger(cfg.logger), map[string]any{
		"workflow": def.Name,
	})
	return m, nil
}

func (m *Machine[S]) Name() string {
	return m.def.Name
}

func (m *Machine[S]) Stage() stagehand.Stage {
	return m.def.Stage
}

// Definition returns the table the machine runs.
func (m *Machine[S]) Definition() Definition[S] {
	return m.def
}

// Validate reports whether this machine owns the current macro stage.
func (m *Machine[S]) Validate(_ context.Context) bool {
	valid := m.ctl.Current() == m.def.Stage
	m.logger.Trace("%s validate: %t", m.def.Name, valid)
	return valid
}

func (m *Machine[S]) IsComplete() bool {
	return m.ctl.IsComplete(m.def.Stage)
}

func (m *Machine[S]) Substate() string {
	return fmt.Sprint(m.substate)
}

// Current returns the typed substate.
func (m *Machine[S]) Current() S {
	return m.substate
}

// Flags reports every declared provenance flag and any other flag set.
func (m *Machine[S]) Flags() map[string]bool {
	out := make(map[string]bool, len(m.def.Flags)+len(m.flags))
	for _, f := range m.def.Flags {
		out[string(f)] = false
	}
	for f, v := range m.flags {
		out[string(f)] = v
	}
	return out
}

// Infer evaluates the rules once against the world without changing the
// substate.
func (m *Machine[S]) Infer(ctx context.Context) S {
	next, _ := m.infer(ctx, &Turn[S]{m: m})
	return next
}

// Resync re-derives the substate until it stops changing and returns it. It
// issues no world commands.
func (m *Machine[S]) Resync(ctx context.Context) S {
	m.resync(ctx, &Turn[S]{m: m})
	return m.substate
}

// Execute runs one tick: overrides, inference when neither blocked nor
// overridden, then either the terminal departure or the substate handler.
func (m *Machine[S]) Execute(ctx context.Context) time.Duration {
	m.ctl.IncrementTick()
	t := &Turn[S]{m: m}

	switch {
	case m.override(ctx, t):
	case m.blocked(ctx, t):
		m.logger.Trace("%s blocked, keeping %v", m.def.Name, m.substate)
	default:
		m.resync(ctx, t)
	}

	if m.substate == m.def.Terminal {
		return m.delay(m.depart(ctx, t))
	}

	handler, ok := m.def.Handlers[m.substate]
	if !ok {
		m.logger.Error("%s has no handler for %v", m.def.Name, m.substate)
		return m.delay(PaceIdle)
	}

	pace := handler(ctx, t)
	if m.substate == m.def.Terminal && m.def.Depart == nil {
		m.advance()
	}
	return m.delay(pace)
}

// override applies the first matching override. A match stands for the
// whole tick; ordinary rules must not pull it back.
func (m *Machine[S]) override(ctx context.Context, t *Turn[S]) bool {
	for _, rule := range m.def.Overrides {
		if next, ok := rule.Match(ctx, t); ok {
			m.set(next, rule.Name)
			return true
		}
	}
	return false
}

func (m *Machine[S]) infer(ctx context.Context, t *Turn[S]) (S, string) {
	for _, rule := range m.def.Rules {
		if next, ok := rule.Match(ctx, t); ok {
			return next, rule.Name
		}
	}
	if m.def.Fallback != nil {
		return m.def.Fallback(ctx, t), "fallback"
	}
	return m.substate, ""
}

// resync iterates inference to a fixed point. Rules may read the current
// substate, so one pass is not always enough.
func (m *Machine[S]) resync(ctx context.Context, t *Turn[S]) {
	limit := len(m.def.Handlers) + 1
	for i := 0; i < limit; i++ {
		next, reason := m.infer(ctx, t)
		if next == m.substate {
			return
		}
		m.set(next, reason)
	}
	m.logger.Warn("%s inference did not settle after %d passes, keeping %v", m.def.Name, limit, m.substate)
}

func (m *Machine[S]) blocked(ctx context.Context, t *Turn[S]) bool {
	if m.def.Blocked != nil {
		return m.def.Blocked(ctx, t)
	}
	return m.view.DialogOpen(ctx) || m.view.Interacting(ctx)
}

func (m *Machine[S]) depart(ctx context.Context, t *Turn[S]) Pace {
	if m.def.Depart == nil {
		m.advance()
		return PaceIdle
	}
	pace, ready := m.def.Depart(ctx, t)
	if ready {
		m.advance()
	}
	return pace
}

func (m *Machine[S]) advance() {
	if m.ctl.Current() != m.def.Stage {
		return
	}
	m.logger.Info("%s complete, handing over to %s", m.def.Name, m.def.Next)
	m.ctl.Advance(m.def.Next)
}

func (m *Machine[S]) set(next S, reason string) {
	if next == m.substate {
		return
	}
	stagehand.WithLoggerFields(m.logger, map[string]any{
		"from":   fmt.Sprint(m.substate),
		"to":     fmt.Sprint(next),
		"reason": reason,
	}).Info("%s substate %v -> %v", m.def.Name, m.substate, next)
	from := m.substate
	m.substate = next
	for _, hook := range m.hooks {
		hook(m.def.Stage, fmt.Sprint(from), fmt.Sprint(next), reason)
	}
}

func (m *Machine[S]) delay(p Pace) time.Duration {
	return m.timetable.Lookup(p).Delay(m.source)
}

// Turn is the handle rules and handlers get for one execute.
type Turn[S comparable] struct {
	m *Machine[S]
}

func (t *Turn[S]) World() *world.View {
	return t.m.view
}

func (t *Turn[S]) Logger() stagehand.Logger {
	return t.m.logger
}

func (t *Turn[S]) Current() S {
	return t.m.substate
}

// Goto moves the workflow to next.
func (t *Turn[S]) Goto(next S) {
	t.m.set(next, "handler")
}

// Mark sets a provenance flag.
func (t *Turn[S]) Mark(f Flag) {
	if !t.m.flags[f] {
		t.m.logger.Debug("%s flag %s set", t.m.def.Name, f)
	}
	t.m.flags[f] = true
}

// Clear unsets provenance flags.
func (t *Turn[S]) Clear(flags ...Flag) {
	for _, f := range flags {
		if t.m.flags[f] {
			t.m.logger.Debug("%s flag %s cleared", t.m.def.Name, f)
		}
		delete(t.m.flags, f)
	}
}

func (t *Turn[S]) Has(f Flag) bool {
	return t.m.flags[f]
}

// Jump moves the macro state to any stage. Used for recovery when the world
// shows progress past this workflow's terminal substate.
func (t *Turn[S]) Jump(stage stagehand.Stage) {
	t.m.logger.Info("%s jumping to stage %s", t.m.def.Name, stage)
	t.m.ctl.Advance(stage)
}

var _ stagehand.Workflow = (*Machine[string])(nil)
var _ stagehand.FlagReporter = (*Machine[string])(nil)
