package levels

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/SamirShaikh03/Fractured-Causality/internal/causal"
	"github.com/SamirShaikh03/Fractured-Causality/internal/registry"
)

var validate = validator.New()

// Validate checks required fields and the level's internal references:
// entity kinds and ids, states, operators, dependency endpoints, shade
// origins and goals. All problems are reported together.
func (l *Level) Validate() error {
	if err := validate.Struct(l); err != nil {
		return fmt.Errorf("level %s: %w", l.ID, err)
	}

	var errs []error
	ids := make(map[string]bool, len(l.Entities))
	for _, e := range l.Entities {
		if ids[e.ID] {
			errs = append(errs, fmt.Errorf("duplicate entity id %q", e.ID))
		}
		ids[e.ID] = true
		if !registry.Exists(e.Kind) {
			errs = append(errs, fmt.Errorf("entity %s: unknown kind %q", e.ID, e.Kind))
		}
		if _, err := e.NodeState(); err != nil {
			errs = append(errs, fmt.Errorf("entity %s: %w", e.ID, err))
		}
		for u, s := range e.UniverseStates {
			if _, err := causal.ParseState(s); err != nil {
				errs = append(errs, fmt.Errorf("entity %s universe %s: %w", e.ID, u, err))
			}
		}
	}
	for _, e := range l.Entities {
		if e.Origin != "" && !ids[e.Origin] {
			errs = append(errs, fmt.Errorf("entity %s: origin %q is not an entity", e.ID, e.Origin))
		}
	}

	for _, d := range l.Dependencies {
		edge := d.Source + "->" + d.Target
		if !ids[d.Source] {
			errs = append(errs, fmt.Errorf("dependency %s: unknown source %q", edge, d.Source))
		}
		if !ids[d.Target] {
			errs = append(errs, fmt.Errorf("dependency %s: unknown target %q", edge, d.Target))
		}
		op, err := causal.ParseOperator(d.Operator)
		if err != nil {
			errs = append(errs, fmt.Errorf("dependency %s: %w", edge, err))
		}
		if d.Condition != nil {
			if op != causal.OpConditional && err == nil {
				errs = append(errs, fmt.Errorf("dependency %s: condition on a %s edge", edge, op.Upper()))
			}
			if _, err := d.Condition.Predicate(); err != nil {
				errs = append(errs, fmt.Errorf("dependency %s: %w", edge, err))
			}
		}
	}

	for _, g := range l.Goals {
		if !ids[g.Node] {
			errs = append(errs, fmt.Errorf("goal: unknown node %q", g.Node))
		}
		if _, err := parseStates(g.States); err != nil {
			errs = append(errs, fmt.Errorf("goal %s: %w", g.Node, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("level %s: %w", l.ID, err)
	}
	return nil
}
