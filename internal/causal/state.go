// Package causal implements the causal dependency graph: nodes carrying a
// discrete state, directed dependency edges labelled with an operator, and the
// breadth-first propagation that pushes a state change through the graph and
// measures the paradox it creates.
//
// The package holds no rendering or timing code. Entities plug in through
// CausalListener; paradox is reported through ParadoxSink.
package causal

import (
	"fmt"
	"strings"
)

// State is the discrete state of a causal node.
type State string

const (
	StateExists    State = "exists"
	StateDestroyed State = "destroyed"
	StateActive    State = "active"
	StateInactive  State = "inactive"
	StateOpen      State = "open"
	StateClosed    State = "closed"
	StateOn        State = "on"
	StateOff       State = "off"
)

// States lists every state in declaration order.
var States = []State{
	StateExists, StateDestroyed,
	StateActive, StateInactive,
	StateOpen, StateClosed,
	StateOn, StateOff,
}

// ParseState converts a case-insensitive name into a State.
func ParseState(s string) (State, error) {
	st := State(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range States {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("causal: unknown state %q", s)
}

// Upper returns the display form, e.g. "DESTROYED".
func (s State) Upper() string {
	return strings.ToUpper(string(s))
}

// inverse holds the INVERSE operator's pairs. States not listed map to themselves.
var inverse = map[State]State{
	StateExists:    StateDestroyed,
	StateDestroyed: StateExists,
	StateActive:    StateInactive,
	StateInactive:  StateActive,
	StateOpen:      StateClosed,
	StateClosed:    StateOpen,
	StateOn:        StateOff,
	StateOff:       StateOn,
}

// Inverse returns the opposite of s, or s itself if it has none.
func (s State) Inverse() State {
	if inv, ok := inverse[s]; ok {
		return inv
	}
	return s
}

// Operator labels a dependency edge with the rule that computes the target's
// new state from the source's.
type Operator string

const (
	OpEcho        Operator = "echo"
	OpInverse     Operator = "inverse"
	OpConditional Operator = "conditional"
	OpExclusive   Operator = "exclusive"
	OpCascade     Operator = "cascade"
	OpExistence   Operator = "existence"
)

// Operators lists every operator in declaration order.
var Operators = []Operator{OpEcho, OpInverse, OpConditional, OpExclusive, OpCascade, OpExistence}

// ParseOperator converts a case-insensitive name into an Operator.
func ParseOperator(s string) (Operator, error) {
	op := Operator(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Operators {
		if op == known {
			return op, nil
		}
	}
	return "", fmt.Errorf("causal: unknown operator %q", s)
}

// Upper returns the display form, e.g. "ECHO".
func (o Operator) Upper() string {
	return strings.ToUpper(string(o))
}

// Apply computes the state a target in state current takes when its source
// moves to src through operator o.
//
// CONDITIONAL mirrors the source; whether the edge fires at all is decided by
// the dependency's condition before Apply is reached. CASCADE has no defined
// effect and leaves the target unchanged.
func (o Operator) Apply(current, src State) State {
	switch o {
	case OpEcho, OpConditional:
		return src
	case OpInverse:
		return src.Inverse()
	case OpExclusive:
		if src == StateActive || src == StateExists {
			return StateDestroyed
		}
	case OpExistence:
		if src == StateDestroyed {
			return StateDestroyed
		}
	}
	return current
}
