package causal

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/zyedidia/generic/mapset"

	"github.com/SamirShaikh03/Fractured-Causality/internal/events"
)

var (
	// ErrUnknownNode is returned when an operation names a node that is not in the graph.
	ErrUnknownNode = errors.New("unknown node")
	// ErrDuplicateNode is returned by AddNode when the id is already registered.
	ErrDuplicateNode = errors.New("duplicate node")
)

// ParadoxSink receives the paradox generated by a propagation.
type ParadoxSink interface {
	AddParadox(amount float64, sourceID, sourceType, description string) float64
}

// Edge is one step of a propagation trace.
type Edge struct {
	From string
	To   string
}

// Graph is the causal dependency graph of one level.
// It is not safe for concurrent use; a session mutates it from one goroutine.
type Graph struct {
	nodes        map[string]*Node
	dependents   map[string]mapset.Set[string] // source -> targets
	dependencies map[string]mapset.Set[string] // target -> sources
	orphaned     mapset.Set[string]
	lastPath     []Edge

	notifier events.Notifier
	sink     ParadoxSink
	logger   *log.Logger
}

// Option configures a Graph.
type Option func(*Graph)

// WithNotifier sets the event sink. Defaults to events.Nop.
func WithNotifier(n events.Notifier) Option {
	return func(g *Graph) {
		if n != nil {
			g.notifier = n
		}
	}
}

// WithParadoxSink sets where orphan paradox is reported.
func WithParadoxSink(s ParadoxSink) Option {
	return func(g *Graph) { g.sink = s }
}

// WithLogger sets the logger used for recovered listener failures.
func WithLogger(l *log.Logger) Option {
	return func(g *Graph) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		nodes:        make(map[string]*Node),
		dependents:   make(map[string]mapset.Set[string]),
		dependencies: make(map[string]mapset.Set[string]),
		orphaned:     mapset.New[string](),
		notifier:     events.Nop{},
		logger:       log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SetParadoxSink replaces the paradox sink.
func (g *Graph) SetParadoxSink(s ParadoxSink) {
	g.sink = s
}

// SetNotifier replaces the event sink.
func (g *Graph) SetNotifier(n events.Notifier) {
	if n == nil {
		n = events.Nop{}
	}
	g.notifier = n
}

// AddNode registers n with empty adjacency.
func (g *Graph) AddNode(n *Node) error {
	if n == nil || n.ID == "" {
		return fmt.Errorf("causal: node must have an id")
	}
	if _, ok := g.nodes[n.ID]; ok {
		return fmt.Errorf("causal: cannot add %q: %w", n.ID, ErrDuplicateNode)
	}
	g.insert(n)
	return nil
}

// ReplaceNode registers n, discarding any node with the same id together with
// its edges.
func (g *Graph) ReplaceNode(n *Node) {
	if _, ok := g.nodes[n.ID]; ok {
		g.RemoveNode(n.ID)
	}
	g.insert(n)
}

func (g *Graph) insert(n *Node) {
	g.nodes[n.ID] = n
	g.dependents[n.ID] = mapset.New[string]()
	g.dependencies[n.ID] = mapset.New[string]()
}

// RemoveNode deletes the node and every edge it takes part in.
func (g *Graph) RemoveNode(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, false
	}

	g.dependents[id].Each(func(target string) {
		if t, ok := g.nodes[target]; ok {
			t.removeDependenciesFrom(id)
		}
		if srcs, ok := g.dependencies[target]; ok {
			srcs.Remove(id)
		}
	})
	g.dependencies[id].Each(func(source string) {
		if deps, ok := g.dependents[source]; ok {
			deps.Remove(id)
		}
	})

	delete(g.nodes, id)
	delete(g.dependents, id)
	delete(g.dependencies, id)
	g.orphaned.Remove(id)
	return n, true
}

// DependencyOption configures a dependency added with AddDependency.
type DependencyOption func(*Dependency)

// WithUniverses scopes the edge to a source universe and records target
// overrides in a target universe. Either may be empty.
func WithUniverses(source, target string) DependencyOption {
	return func(d *Dependency) {
		d.SourceUniverse = source
		d.TargetUniverse = target
	}
}

// WithCondition sets the predicate that gates a CONDITIONAL edge.
func WithCondition(fn func(*Node) bool) DependencyOption {
	return func(d *Dependency) { d.Condition = fn }
}

// WithMetadata attaches opaque metadata.
func WithMetadata(m map[string]any) DependencyOption {
	return func(d *Dependency) { d.Metadata = m }
}

// AddDependency adds the edge source -> target labelled op. Adding an edge
// that already exists with the same operator is a no-op.
func (g *Graph) AddDependency(source, target string, op Operator, opts ...DependencyOption) error {
	if _, ok := g.nodes[source]; !ok {
		return fmt.Errorf("causal: cannot link %s -> %s: source %w", source, target, ErrUnknownNode)
	}
	t, ok := g.nodes[target]
	if !ok {
		return fmt.Errorf("causal: cannot link %s -> %s: target %w", source, target, ErrUnknownNode)
	}

	d := Dependency{SourceID: source, TargetID: target, Operator: op}
	for _, opt := range opts {
		opt(&d)
	}
	if !t.addDependency(d) {
		return nil
	}

	g.dependents[source].Put(target)
	g.dependencies[target].Put(source)

	g.notifier.Notify(events.LinkCreated{SourceID: source, TargetID: target, Operator: string(op)})
	return nil
}

// RemoveDependency removes every edge from source to target. Removing an
// edge that does not exist does nothing.
func (g *Graph) RemoveDependency(source, target string) {
	deps, ok := g.dependents[source]
	if !ok || !deps.Has(target) {
		return
	}
	if t, ok := g.nodes[target]; ok {
		t.removeDependenciesFrom(source)
	}
	deps.Remove(target)
	if srcs, ok := g.dependencies[target]; ok {
		srcs.Remove(source)
	}
	g.notifier.Notify(events.LinkBroken{SourceID: source, TargetID: target})
}

// SetCondition attaches fn to the edge (source, target, op).
func (g *Graph) SetCondition(source, target string, op Operator, fn func(*Node) bool) error {
	t, ok := g.nodes[target]
	if !ok {
		return fmt.Errorf("causal: cannot set condition on %s -> %s: target %w", source, target, ErrUnknownNode)
	}
	for i := range t.Dependencies {
		d := &t.Dependencies[i]
		if d.SourceID == source && d.Operator == op {
			d.Condition = fn
			return nil
		}
	}
	return fmt.Errorf("causal: no %s edge %s -> %s", op, source, target)
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes sorted by id.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Dependents returns the ids of nodes that depend on id, sorted.
func (g *Graph) Dependents(id string) []string {
	return sortedKeys(g.dependents[id])
}

// DependenciesOf returns the ids of nodes id depends on, sorted.
func (g *Graph) DependenciesOf(id string) []string {
	return sortedKeys(g.dependencies[id])
}

// AllDependencies returns every edge, ordered by target id then insertion.
func (g *Graph) AllDependencies() []Dependency {
	var out []Dependency
	for _, n := range g.Nodes() {
		out = append(out, n.Dependencies...)
	}
	return out
}

// Orphaned returns the ids of nodes left orphaned by propagations, sorted.
func (g *Graph) Orphaned() []string {
	return sortedKeys(g.orphaned)
}

// IsOrphan reports whether id is in the orphan set.
func (g *Graph) IsOrphan(id string) bool {
	return g.orphaned.Has(id)
}

// LastPath returns the edges traversed by the most recent propagation.
func (g *Graph) LastPath() []Edge {
	out := make([]Edge, len(g.lastPath))
	copy(out, g.lastPath)
	return out
}

// Clear removes all nodes, edges, orphans and the last trace.
func (g *Graph) Clear() {
	g.nodes = make(map[string]*Node)
	g.dependents = make(map[string]mapset.Set[string])
	g.dependencies = make(map[string]mapset.Set[string])
	g.orphaned = mapset.New[string]()
	g.lastPath = nil
}

func sortedKeys(s mapset.Set[string]) []string {
	var out []string
	if s.Size() == 0 {
		return out
	}
	s.Each(func(k string) { out = append(out, k) })
	sort.Strings(out)
	return out
}
