package causal

import (
	"fmt"
	"sort"
)

// Snapshot is the saveable state of a graph. Conditions are functions and
// are not part of it; callers re-attach them after Deserialize.
type Snapshot struct {
	Nodes    []NodeSnapshot `yaml:"nodes"`
	Orphaned []string       `yaml:"orphaned,omitempty"`
}

// NodeSnapshot is the saveable state of one node.
type NodeSnapshot struct {
	ID             string               `yaml:"id"`
	State          State                `yaml:"state"`
	Exists         bool                 `yaml:"exists"`
	ParadoxWeight  float64              `yaml:"paradox_weight"`
	UniverseStates map[string]State     `yaml:"universe_states,omitempty"`
	X              float64              `yaml:"x,omitempty"`
	Y              float64              `yaml:"y,omitempty"`
	Dependencies   []DependencySnapshot `yaml:"dependencies,omitempty"`
}

// DependencySnapshot is the saveable form of a Dependency.
type DependencySnapshot struct {
	SourceID       string         `yaml:"source"`
	TargetID       string         `yaml:"target"`
	Operator       Operator       `yaml:"operator"`
	SourceUniverse string         `yaml:"source_universe,omitempty"`
	TargetUniverse string         `yaml:"target_universe,omitempty"`
	Metadata       map[string]any `yaml:"metadata,omitempty"`
}

// Serialize captures node states, overrides, weights, edges and orphans.
func (g *Graph) Serialize() Snapshot {
	var s Snapshot
	for _, n := range g.Nodes() {
		ns := NodeSnapshot{
			ID:            n.ID,
			State:         n.State(),
			Exists:        n.Exists,
			ParadoxWeight: n.ParadoxWeight,
			X:             n.Position.X,
			Y:             n.Position.Y,
		}
		if len(n.UniverseStates) > 0 {
			ns.UniverseStates = make(map[string]State, len(n.UniverseStates))
			for u, st := range n.UniverseStates {
				ns.UniverseStates[u] = st
			}
		}
		for _, d := range n.Dependencies {
			ns.Dependencies = append(ns.Dependencies, DependencySnapshot{
				SourceID:       d.SourceID,
				TargetID:       d.TargetID,
				Operator:       d.Operator,
				SourceUniverse: d.SourceUniverse,
				TargetUniverse: d.TargetUniverse,
				Metadata:       d.Metadata,
			})
		}
		s.Nodes = append(s.Nodes, ns)
	}
	s.Orphaned = g.Orphaned()
	return s
}

// Deserialize replaces the graph's contents with s. Nodes are bound to the
// listener found under their id in entities, if any. Edges are re-added in
// snapshot order; LinkCreated is emitted for each.
func (g *Graph) Deserialize(s Snapshot, entities map[string]CausalListener) error {
	g.Clear()

	for _, ns := range s.Nodes {
		n := NewNode(ns.ID,
			WithState(ns.State),
			WithWeight(ns.ParadoxWeight),
			WithPosition(ns.X, ns.Y),
		)
		n.Exists = ns.Exists
		for u, st := range ns.UniverseStates {
			n.UniverseStates[u] = st
		}
		if l, ok := entities[ns.ID]; ok {
			n.Listener = l
		}
		if err := g.AddNode(n); err != nil {
			return fmt.Errorf("causal: cannot restore snapshot: %w", err)
		}
	}

	for _, ns := range s.Nodes {
		for _, ds := range ns.Dependencies {
			err := g.AddDependency(ds.SourceID, ds.TargetID, ds.Operator,
				WithUniverses(ds.SourceUniverse, ds.TargetUniverse),
				WithMetadata(ds.Metadata),
			)
			if err != nil {
				return fmt.Errorf("causal: cannot restore snapshot: %w", err)
			}
		}
	}

	for _, id := range s.Orphaned {
		g.orphaned.Put(id)
	}
	return nil
}

// NodeIDs returns the ids in the snapshot, sorted.
func (s Snapshot) NodeIDs() []string {
	ids := make([]string, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		ids = append(ids, n.ID)
	}
	sort.Strings(ids)
	return ids
}
