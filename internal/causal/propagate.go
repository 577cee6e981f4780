package causal

import (
	"fmt"
	"sort"

	"github.com/zyedidia/generic/mapset"

	"github.com/SamirShaikh03/Fractured-Causality/internal/events"
)

// SourceTypeOrphan is the paradox source type reported for orphaned dependents.
const SourceTypeOrphan = "causal_propagation"

// Change records one node's state transition during a propagation.
type Change struct {
	NodeID   string
	OldState State
	NewState State
	SourceID string
	Operator Operator // empty for the triggering node
	Universe string

	// ParadoxGenerated is the paradox charged to this change for orphaning
	// dependents. Only DESTROYED changes carry a value.
	ParadoxGenerated float64
}

// Result is the outcome of a propagation.
type Result struct {
	Changes []Change
	Paradox float64
}

// Empty reports whether the propagation changed nothing.
func (r Result) Empty() bool {
	return len(r.Changes) == 0
}

type workItem struct {
	source      string
	target      string
	sourceState State
}

// Propagate sets node id to state and pushes the change breadth-first
// through its dependents. universe is the universe the change happens in;
// empty means none.
//
// Each node is processed at most once per call and the first path to reach it
// wins. Propagation stops along a branch as soon as a target's state does not
// change. After traversal every DESTROYED change whose dependents still exist
// is charged its node's paradox weight once per such dependent, and the total
// is reported to the paradox sink.
func (g *Graph) Propagate(id string, state State, universe string) Result {
	src, ok := g.nodes[id]
	if !ok {
		return Result{}
	}
	old := src.State()
	if old == state {
		return Result{}
	}

	src.SetState(state)
	if universe != "" {
		src.SetStateIn(universe, state)
	}
	changes := []Change{{
		NodeID:   id,
		OldState: old,
		NewState: state,
		SourceID: id,
		Universe: universe,
	}}
	g.lastPath = g.lastPath[:0]
	g.notifier.Notify(events.PropagationStarted{SourceID: id, NewState: string(state)})

	var queue []workItem
	g.dependents[id].Each(func(target string) {
		queue = append(queue, workItem{source: id, target: target, sourceState: state})
	})
	sortQueue(queue)

	visited := mapset.New[string]()
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if visited.Has(item.target) {
			continue
		}
		visited.Put(item.target)

		target, ok := g.nodes[item.target]
		if !ok {
			continue
		}
		dep, ok := target.edgeFrom(item.source)
		if !ok {
			continue
		}
		if dep.SourceUniverse != "" && universe != "" && dep.SourceUniverse != universe {
			continue
		}
		if dep.Operator == OpConditional && dep.Condition != nil && !dep.Condition(target) {
			continue
		}

		prev := target.State()
		next := target.ApplyOperator(item.sourceState, dep.Operator)
		if next == prev {
			continue
		}

		target.SetState(next)
		if dep.TargetUniverse != "" {
			target.SetStateIn(dep.TargetUniverse, next)
		}
		changes = append(changes, Change{
			NodeID:   target.ID,
			OldState: prev,
			NewState: next,
			SourceID: item.source,
			Operator: dep.Operator,
			Universe: universe,
		})
		g.lastPath = append(g.lastPath, Edge{From: item.source, To: target.ID})
		g.notifyListener(target, next, item.source)

		var children []workItem
		g.dependents[target.ID].Each(func(grandchild string) {
			if !visited.Has(grandchild) {
				children = append(children, workItem{source: target.ID, target: grandchild, sourceState: next})
			}
		})
		sortQueue(children)
		queue = append(queue, children...)
	}

	paradox := g.chargeOrphans(changes)
	if paradox > 0 && g.sink != nil {
		g.sink.AddParadox(paradox, id, SourceTypeOrphan,
			fmt.Sprintf("%s -> %s orphaned dependents", id, state.Upper()))
	}

	g.notifier.Notify(events.PropagationCompleted{SourceID: id, Changes: len(changes), Paradox: paradox})
	return Result{Changes: changes, Paradox: paradox}
}

// chargeOrphans marks dependents of destroyed nodes that still exist and
// returns the total paradox they generate.
func (g *Graph) chargeOrphans(changes []Change) float64 {
	total := 0.0
	for i := range changes {
		c := &changes[i]
		if c.NewState != StateDestroyed {
			continue
		}
		destroyed, ok := g.nodes[c.NodeID]
		if !ok {
			continue
		}
		for _, depID := range g.Dependents(c.NodeID) {
			dep, ok := g.nodes[depID]
			if !ok || !dep.Valid() {
				continue
			}
			total += destroyed.ParadoxWeight
			c.ParadoxGenerated += destroyed.ParadoxWeight
			g.orphaned.Put(depID)
		}
	}
	return total
}

// notifyListener calls the node's listener. A panicking listener is logged
// and does not stop the propagation; the node keeps its new state.
func (g *Graph) notifyListener(n *Node, state State, sourceID string) {
	if n.Listener == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("causal listener failed", "node", n.ID, "state", state, "source", sourceID, "panic", r)
		}
	}()
	n.Listener.OnCausalChange(state, sourceID)
}

// sortQueue orders sibling work items by target id so traversal order does
// not depend on set iteration order.
func sortQueue(items []workItem) {
	sort.Slice(items, func(i, j int) bool { return items[i].target < items[j].target })
}
