// Package levels provides the YAML level format and level loading for
// Fractured Causality. A level lists its entities, the causal dependencies
// between them and the node states that complete it.
package levels

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/SamirShaikh03/Fractured-Causality/internal/causal"
	"github.com/SamirShaikh03/Fractured-Causality/internal/registry"

	// Register the entity kinds level files refer to.
	_ "github.com/SamirShaikh03/Fractured-Causality/internal/entity"
)

// Level represents a complete level definition.
type Level struct {
	ID            string           `yaml:"id" validate:"required"`
	Name          string           `yaml:"name" validate:"required"`
	Description   string           `yaml:"description"`
	Order         int              `yaml:"order" validate:"gte=0"`
	StartUniverse string           `yaml:"start_universe"`
	Entities      []EntitySpec     `yaml:"entities" validate:"min=1,dive"`
	Dependencies  []DependencySpec `yaml:"dependencies" validate:"dive"`
	Goals         []Goal           `yaml:"goals" validate:"dive"`

	FilePath string `yaml:"-"`
}

// EntitySpec places one entity and its causal node.
type EntitySpec struct {
	ID   string  `yaml:"id" validate:"required"`
	Kind string  `yaml:"kind" validate:"required"`
	X    float64 `yaml:"x" validate:"gte=0"`
	Y    float64 `yaml:"y" validate:"gte=0"`
	// State is the node's canonical state. Empty means exists.
	State          string            `yaml:"state"`
	Weight         float64           `yaml:"weight" validate:"gte=0"`
	Universes      []string          `yaml:"universes"`
	UniverseStates map[string]string `yaml:"universe_states"`
	Origin         string            `yaml:"origin"`
	Locked         bool              `yaml:"locked"`
	RequiredKeys   int               `yaml:"required_keys" validate:"gte=0"`
}

// DependencySpec is one causal edge.
type DependencySpec struct {
	Source         string         `yaml:"source" validate:"required"`
	Target         string         `yaml:"target" validate:"required"`
	Operator       string         `yaml:"operator" validate:"required"`
	SourceUniverse string         `yaml:"source_universe"`
	TargetUniverse string         `yaml:"target_universe"`
	Condition      *ConditionSpec `yaml:"condition"`
	Metadata       map[string]any `yaml:"metadata"`
}

// Goal is met when Node is in one of States.
type Goal struct {
	Node   string   `yaml:"node" validate:"required"`
	States []string `yaml:"states" validate:"min=1"`
}

// Parse decodes a YAML level. Unknown fields are rejected.
func Parse(data []byte) (Level, error) {
	var lvl Level
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&lvl); err != nil {
		return Level{}, fmt.Errorf("invalid YAML: %w", err)
	}
	return lvl, nil
}

// FormatExtensions returns the file extensions level files may use.
func FormatExtensions() []string {
	return []string{".yaml", ".yml"}
}

// Entity returns the entity spec with the given id.
func (l *Level) Entity(id string) (EntitySpec, bool) {
	for _, e := range l.Entities {
		if e.ID == id {
			return e, true
		}
	}
	return EntitySpec{}, false
}

// NodeState returns the parsed canonical state, defaulting to exists.
func (e EntitySpec) NodeState() (causal.State, error) {
	if e.State == "" {
		return causal.StateExists, nil
	}
	return causal.ParseState(e.State)
}

// RegistrySpec converts the entry for the entity registry.
func (e EntitySpec) RegistrySpec() registry.Spec {
	st, _ := e.NodeState()
	return registry.Spec{
		ID:           e.ID,
		X:            e.X,
		Y:            e.Y,
		State:        st,
		Universes:    e.Universes,
		Origin:       e.Origin,
		Locked:       e.Locked,
		RequiredKeys: e.RequiredKeys,
	}
}

// NodeOptions builds the causal node options for the entity.
func (e EntitySpec) NodeOptions(listener causal.CausalListener) ([]causal.NodeOption, error) {
	st, err := e.NodeState()
	if err != nil {
		return nil, err
	}
	opts := []causal.NodeOption{causal.WithState(st), causal.WithPosition(e.X, e.Y)}
	if e.Weight > 0 {
		opts = append(opts, causal.WithWeight(e.Weight))
	}
	if listener != nil {
		opts = append(opts, causal.WithListener(listener))
	}
	return opts, nil
}

// ApplyUniverseStates writes the per-universe overrides onto a node.
func (e EntitySpec) ApplyUniverseStates(n *causal.Node) error {
	for u, s := range e.UniverseStates {
		st, err := causal.ParseState(s)
		if err != nil {
			return fmt.Errorf("entity %s universe %s: %w", e.ID, u, err)
		}
		n.SetStateIn(u, st)
	}
	return nil
}

// Options converts the edge fields to causal dependency options.
func (d DependencySpec) Options() ([]causal.DependencyOption, error) {
	var opts []causal.DependencyOption
	if d.SourceUniverse != "" || d.TargetUniverse != "" {
		opts = append(opts, causal.WithUniverses(d.SourceUniverse, d.TargetUniverse))
	}
	if d.Condition != nil {
		pred, err := d.Condition.Predicate()
		if err != nil {
			return nil, fmt.Errorf("dependency %s->%s: %w", d.Source, d.Target, err)
		}
		opts = append(opts, causal.WithCondition(pred))
	}
	if len(d.Metadata) > 0 {
		opts = append(opts, causal.WithMetadata(d.Metadata))
	}
	return opts, nil
}

// Met reports whether the goal holds for the node's state.
func (g Goal) Met(s causal.State) bool {
	for _, want := range g.States {
		if st, err := causal.ParseState(want); err == nil && st == s {
			return true
		}
	}
	return false
}
