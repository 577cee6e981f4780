package causal

// CausalListener is implemented by entities that react to propagated changes.
type CausalListener interface {
	OnCausalChange(newState State, sourceID string)
}

// Locator is implemented by listeners that can report their world position.
// Visualization prefers it over Node.Position.
type Locator interface {
	Location() (x, y float64)
}

// Position is a world position used only for visualisation.
type Position struct {
	X float64
	Y float64
}

// Dependency is a directed edge: the target's state depends on the source's.
// Its identity is (SourceID, TargetID, Operator).
type Dependency struct {
	SourceID string
	TargetID string
	Operator Operator

	// SourceUniverse restricts the edge to propagations running in that
	// universe. Empty means any universe.
	SourceUniverse string
	// TargetUniverse, when set, also records the new state as the target's
	// override for that universe.
	TargetUniverse string

	// Condition gates CONDITIONAL edges. Nil means always true.
	Condition func(*Node) bool

	// Metadata is carried for callers and never read by propagation.
	Metadata map[string]any
}

func (d Dependency) sameAs(o Dependency) bool {
	return d.SourceID == o.SourceID && d.TargetID == o.TargetID && d.Operator == o.Operator
}

// Node is a vertex of the causal graph.
type Node struct {
	ID string

	// UniverseStates holds per-universe overrides. Propagation always drives
	// the canonical state; this map is a projection for display and queries.
	UniverseStates map[string]State

	// Dependencies are the incoming edges. Every entry has TargetID == ID.
	Dependencies []Dependency

	Exists        bool
	ParadoxWeight float64
	Listener      CausalListener
	Position      Position

	// OnStateChange is called with the old and new state whenever the
	// canonical state actually changes.
	OnStateChange func(old, new State)

	state State
}

// NodeOption configures a node created with NewNode.
type NodeOption func(*Node)

// WithState sets the initial state.
func WithState(s State) NodeOption {
	return func(n *Node) { n.state = s }
}

// WithWeight sets the paradox weight.
func WithWeight(w float64) NodeOption {
	return func(n *Node) { n.ParadoxWeight = w }
}

// WithListener binds the owning entity.
func WithListener(l CausalListener) NodeOption {
	return func(n *Node) { n.Listener = l }
}

// WithPosition sets the node's last-known position.
func WithPosition(x, y float64) NodeOption {
	return func(n *Node) { n.Position = Position{X: x, Y: y} }
}

// NewNode creates an existing node in state EXISTS with weight 1.0.
func NewNode(id string, opts ...NodeOption) *Node {
	n := &Node{
		ID:             id,
		UniverseStates: make(map[string]State),
		Exists:         true,
		ParadoxWeight:  1.0,
		state:          StateExists,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// State returns the canonical state.
func (n *Node) State() State {
	return n.state
}

// SetState writes the canonical state and fires OnStateChange when it differs.
func (n *Node) SetState(s State) {
	old := n.state
	n.state = s
	if old != s && n.OnStateChange != nil {
		n.OnStateChange(old, s)
	}
}

// StateIn returns the node's state as seen from universe. Without an override
// the canonical state is returned.
func (n *Node) StateIn(universe string) State {
	if s, ok := n.UniverseStates[universe]; ok {
		return s
	}
	return n.state
}

// SetStateIn records a per-universe override.
func (n *Node) SetStateIn(universe string, s State) {
	if n.UniverseStates == nil {
		n.UniverseStates = make(map[string]State)
	}
	n.UniverseStates[universe] = s
}

// ApplyOperator computes this node's state for a source moving to src.
func (n *Node) ApplyOperator(src State, op Operator) State {
	return op.Apply(n.state, src)
}

// Valid reports whether the node exists and is not destroyed.
func (n *Node) Valid() bool {
	return n.Exists && n.state != StateDestroyed
}

// HasDependencyOn reports whether any incoming edge comes from sourceID.
func (n *Node) HasDependencyOn(sourceID string) bool {
	for _, d := range n.Dependencies {
		if d.SourceID == sourceID {
			return true
		}
	}
	return false
}

// DependenciesByOperator returns the incoming edges labelled op.
func (n *Node) DependenciesByOperator(op Operator) []Dependency {
	var out []Dependency
	for _, d := range n.Dependencies {
		if d.Operator == op {
			out = append(out, d)
		}
	}
	return out
}

// edgeFrom returns the first incoming edge from sourceID.
func (n *Node) edgeFrom(sourceID string) (Dependency, bool) {
	for _, d := range n.Dependencies {
		if d.SourceID == sourceID {
			return d, true
		}
	}
	return Dependency{}, false
}

func (n *Node) addDependency(d Dependency) bool {
	for _, existing := range n.Dependencies {
		if existing.sameAs(d) {
			return false
		}
	}
	n.Dependencies = append(n.Dependencies, d)
	return true
}

func (n *Node) removeDependenciesFrom(sourceID string) int {
	kept := n.Dependencies[:0]
	removed := 0
	for _, d := range n.Dependencies {
		if d.SourceID == sourceID {
			removed++
			continue
		}
		kept = append(kept, d)
	}
	n.Dependencies = kept
	return removed
}
