package causal

import "fmt"

// Validate checks the graph for dangling dependency sources and outstanding
// orphans. It reports problems; it never repairs them.
func (g *Graph) Validate() (bool, []string) {
	var issues []string

	for _, n := range g.Nodes() {
		for _, d := range n.Dependencies {
			if _, ok := g.nodes[d.SourceID]; !ok {
				issues = append(issues, fmt.Sprintf("node %s depends on missing node %s", n.ID, d.SourceID))
			}
		}
	}

	for _, id := range g.Orphaned() {
		if n, ok := g.nodes[id]; ok && n.Exists {
			issues = append(issues, fmt.Sprintf("node %s is orphaned (paradox)", id))
		}
	}

	return len(issues) == 0, issues
}

// NodeView is one node in a Visualization.
type NodeView struct {
	ID       string
	X        float64
	Y        float64
	State    State
	Orphaned bool
}

// EdgeView is one edge in a Visualization.
type EdgeView struct {
	From     string
	To       string
	Operator Operator
}

// Visualization is a snapshot of the graph for the causal-sight overlay.
type Visualization struct {
	Nodes    []NodeView
	Edges    []EdgeView
	LastPath []Edge
}

// Visualization returns the existing nodes, all edges and the last
// propagation trace. Positions come from the node's listener when it
// implements Locator.
func (g *Graph) Visualization() Visualization {
	var v Visualization
	for _, n := range g.Nodes() {
		if !n.Exists {
			continue
		}
		x, y := n.Position.X, n.Position.Y
		if loc, ok := n.Listener.(Locator); ok {
			x, y = loc.Location()
		}
		v.Nodes = append(v.Nodes, NodeView{
			ID:       n.ID,
			X:        x,
			Y:        y,
			State:    n.State(),
			Orphaned: g.orphaned.Has(n.ID),
		})
		for _, d := range n.Dependencies {
			v.Edges = append(v.Edges, EdgeView{From: d.SourceID, To: d.TargetID, Operator: d.Operator})
		}
	}
	v.LastPath = g.LastPath()
	return v
}
