package levels

import (
	"fmt"

	"github.com/SamirShaikh03/Fractured-Causality/internal/causal"
)

// ConditionSpec is the declarative form of a CONDITIONAL edge's predicate.
// It is evaluated against the target node. All set clauses must hold; an
// empty spec always holds.
type ConditionSpec struct {
	TargetStateIn    []string `yaml:"target_state_in"`
	TargetStateNotIn []string `yaml:"target_state_not_in"`
	TargetExists     *bool    `yaml:"target_exists"`
}

// Predicate compiles the spec into a node predicate.
func (c ConditionSpec) Predicate() (func(*causal.Node) bool, error) {
	in, err := parseStates(c.TargetStateIn)
	if err != nil {
		return nil, fmt.Errorf("target_state_in: %w", err)
	}
	notIn, err := parseStates(c.TargetStateNotIn)
	if err != nil {
		return nil, fmt.Errorf("target_state_not_in: %w", err)
	}
	exists := c.TargetExists

	return func(n *causal.Node) bool {
		st := n.State()
		if len(in) > 0 && !containsState(in, st) {
			return false
		}
		if containsState(notIn, st) {
			return false
		}
		if exists != nil && n.Exists != *exists {
			return false
		}
		return true
	}, nil
}

func parseStates(names []string) ([]causal.State, error) {
	out := make([]causal.State, 0, len(names))
	for _, name := range names {
		st, err := causal.ParseState(name)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func containsState(states []causal.State, s causal.State) bool {
	for _, st := range states {
		if st == s {
			return true
		}
	}
	return false
}
