package flow

import (
	"context"
	"fmt"
	"slices"

	stagehand "github.com/goliatone/go-stagehand"
)

// Flag is a provenance marker: a fact the world cannot report, such as
// "these logs came from our own chop".
type Flag string

// Rule is one inference step. Match returns the substate the evidence points
// at, or false when the rule does not apply.
type Rule[S comparable] struct {
	Name    string
	Match   func(ctx context.Context, t *Turn[S]) (S, bool)
	targets []S
}

// When builds a rule that selects target whenever pred holds.
func When[S comparable](name string, target S, pred func(ctx context.Context, t *Turn[S]) bool) Rule[S] {
	return Rule[S]{
		Name: name,
		Match: func(ctx context.Context, t *Turn[S]) (S, bool) {
			if pred(ctx, t) {
				return target, true
			}
			var zero S
			return zero, false
		},
		targets: []S{target},
	}
}

// Keep builds a rule that holds the current substate when it is one of states
// and pred holds. A nil pred always holds.
func Keep[S comparable](name string, pred func(ctx context.Context, t *Turn[S]) bool, states ...S) Rule[S] {
	return Rule[S]{
		Name: name,
		Match: func(ctx context.Context, t *Turn[S]) (S, bool) {
			current := t.Current()
			if slices.Contains(states, current) && (pred == nil || pred(ctx, t)) {
				return current, true
			}
			var zero S
			return zero, false
		},
		targets: states,
	}
}

// Handler performs at most one world action for its substate and returns the
// pace to wait before the next tick.
type Handler[S comparable] func(ctx context.Context, t *Turn[S]) Pace

// Definition is the table that describes one stage workflow.
type Definition[S comparable] struct {
	Name  string
	Stage stagehand.Stage
	// Next receives control once Terminal is reached.
	Next     stagehand.Stage
	Initial  S
	Terminal S

	// Overrides are checked every execute, even while blocked. A match skips
	// Rules for that execute.
	Overrides []Rule[S]
	// Rules are checked in order when not blocked, most advanced evidence
	// first. The first match wins.
	Rules []Rule[S]
	// Fallback picks the substate when no rule matches. Nil keeps the
	// current substate.
	Fallback func(ctx context.Context, t *Turn[S]) S
	Handlers map[S]Handler[S]
	// Depart runs while the terminal substate is held. It reports whether
	// control can be handed to Next. Nil hands over immediately.
	Depart func(ctx context.Context, t *Turn[S]) (Pace, bool)
	// Blocked reports a transient interaction that must not be interrupted
	// by inference. Nil means "dialog open or player interacting".
	Blocked func(ctx context.Context, t *Turn[S]) bool
	Flags   []Flag
	// Order is the substate enumeration, earliest first. Optional.
	Order []S
}

// Constant returns a Fallback that always selects s.
func Constant[S comparable](s S) func(context.Context, *Turn[S]) S {
	return func(context.Context, *Turn[S]) S { return s }
}

// Validate checks the definition is complete and self-consistent.
func (d Definition[S]) Validate() error {
	name := d.Name
	if name == "" {
		name = string(d.Stage)
	}

	switch {
	case d.Stage == "":
		return invalidDefinition(name, "stage is required")
	case d.Next == "":
		return invalidDefinition(name, "next stage is required")
	case d.Stage == d.Next:
		return invalidDefinition(name, "next stage must differ from stage")
	case len(d.Handlers) == 0:
		return invalidDefinition(name, "at least one handler is required")
	case d.Initial == d.Terminal:
		return invalidDefinition(name, "initial substate cannot be terminal")
	}

	if _, ok := d.Handlers[d.Initial]; !ok {
		return invalidDefinition(name, fmt.Sprintf("initial substate %v has no handler", d.Initial))
	}
	if _, ok := d.Handlers[d.Terminal]; ok {
		return invalidDefinition(name, fmt.Sprintf("terminal substate %v cannot have a handler", d.Terminal))
	}
	for state, h := range d.Handlers {
		if h == nil {
			return invalidDefinition(name, fmt.Sprintf("handler for %v is nil", state))
		}
	}

	if len(d.Order) > 0 {
		for state := range d.Handlers {
			if !slices.Contains(d.Order, state) {
				return invalidDefinition(name, fmt.Sprintf("substate %v missing from order", state))
			}
		}
		if !slices.Contains(d.Order, d.Terminal) {
			return invalidDefinition(name, "terminal substate missing from order")
		}
	}

	rules := append(slices.Clone(d.Overrides), d.Rules...)
	for _, rule := range rules {
		if rule.Match == nil {
			return invalidDefinition(name, fmt.Sprintf("rule %q has no matcher", rule.Name))
		}
		for _, target := range rule.targets {
			if target == d.Terminal {
				continue
			}
			if _, ok := d.Handlers[target]; !ok {
				return invalidDefinition(name, fmt.Sprintf("rule %q targets %v which has no handler", rule.Name, target))
			}
		}
	}
	return nil
}

// States lists the substates of the definition, in Order when given and
// otherwise lexically with the terminal substate last.
func (d Definition[S]) States() []string {
	if len(d.Order) > 0 {
		out := make([]string, 0, len(d.Order))
		for _, state := range d.Order {
			out = append(out, fmt.Sprint(state))
		}
		return out
	}
	out := make([]string, 0, len(d.Handlers)+1)
	for state := range d.Handlers {
		out = append(out, fmt.Sprint(state))
	}
	slices.Sort(out)
	return append(out, fmt.Sprint(d.Terminal))
}
