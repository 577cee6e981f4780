package causal

import (
	"testing"

	"github.com/SamirShaikh03/Fractured-Causality/internal/events"
)

func TestPropagateNoOpGuard(t *testing.T) {
	var rec events.Recorder
	sink := &sinkRecorder{}
	g := New(WithNotifier(&rec), WithParadoxSink(sink))
	mustAdd(t, g, NewNode("a"), NewNode("b"))
	mustLink(t, g, "a", "b", OpEcho)
	rec.Reset()

	res := g.Propagate("a", StateExists, "")
	if !res.Empty() {
		t.Errorf("changes = %d, want 0", len(res.Changes))
	}
	b, _ := g.Node("b")
	if b.State() != StateExists {
		t.Errorf("b state = %s, want unchanged", b.State())
	}
	if len(rec.Events) != 0 || len(sink.amounts) != 0 {
		t.Error("no-op propagation should not notify")
	}
}

func TestPropagateUnknownNode(t *testing.T) {
	g := New()
	if res := g.Propagate("ghost", StateDestroyed, ""); !res.Empty() {
		t.Errorf("unknown node produced %d changes", len(res.Changes))
	}
}

func TestPropagateDiamondVisitsOnce(t *testing.T) {
	g := New()
	mustAdd(t, g, NewNode("a"), NewNode("b"), NewNode("c"), NewNode("d"))
	mustLink(t, g, "a", "b", OpEcho)
	mustLink(t, g, "a", "c", OpEcho)
	mustLink(t, g, "b", "d", OpEcho)
	mustLink(t, g, "c", "d", OpEcho)

	res := g.Propagate("a", StateDestroyed, "")

	count := 0
	for _, c := range res.Changes {
		if c.NodeID == "d" {
			count++
			if c.SourceID != "b" {
				t.Errorf("d reached from %s, want first path via b", c.SourceID)
			}
		}
	}
	if count != 1 {
		t.Errorf("changes for d = %d, want 1", count)
	}
	if len(res.Changes) != 4 {
		t.Errorf("total changes = %d, want 4", len(res.Changes))
	}
}

func TestPropagateBreadthFirstOrder(t *testing.T) {
	g := New()
	mustAdd(t, g, NewNode("root"), NewNode("near1"), NewNode("near2"), NewNode("far"))
	mustLink(t, g, "root", "near1", OpEcho)
	mustLink(t, g, "root", "near2", OpEcho)
	mustLink(t, g, "near1", "far", OpEcho)

	res := g.Propagate("root", StateActive, "")

	want := []string{"root", "near1", "near2", "far"}
	if len(res.Changes) != len(want) {
		t.Fatalf("changes = %d, want %d", len(res.Changes), len(want))
	}
	for i, id := range want {
		if res.Changes[i].NodeID != id {
			t.Errorf("change[%d] = %s, want %s", i, res.Changes[i].NodeID, id)
		}
	}
}

func TestPropagateCycleTerminates(t *testing.T) {
	g := New()
	mustAdd(t, g, NewNode("a"), NewNode("b"))
	mustLink(t, g, "a", "b", OpEcho)
	mustLink(t, g, "b", "a", OpEcho)

	res := g.Propagate("a", StateActive, "")

	if len(res.Changes) != 2 {
		t.Fatalf("changes = %d, want 2", len(res.Changes))
	}
	b, _ := g.Node("b")
	if b.State() != StateActive {
		t.Errorf("b state = %s, want active", b.State())
	}
}

func TestPropagateInverseCycleTerminates(t *testing.T) {
	g := New()
	mustAdd(t, g, NewNode("a"), NewNode("b"), NewNode("c"))
	mustLink(t, g, "a", "b", OpInverse)
	mustLink(t, g, "b", "c", OpInverse)
	mustLink(t, g, "c", "a", OpInverse)

	// The trigger is not a visited target, so the loop may come back to it
	// once; every other node is processed at most once.
	res := g.Propagate("a", StateOn, "")
	if len(res.Changes) > g.Len()+1 {
		t.Errorf("changes = %d, want at most %d", len(res.Changes), g.Len()+1)
	}
}

func TestPropagateStopsOnEqualState(t *testing.T) {
	g := New()
	mustAdd(t, g, NewNode("a"), NewNode("b", WithState(StateDestroyed)), NewNode("c"))
	mustLink(t, g, "a", "b", OpEcho)
	mustLink(t, g, "b", "c", OpEcho)

	res := g.Propagate("a", StateDestroyed, "")

	if len(res.Changes) != 1 {
		t.Errorf("changes = %d, want 1", len(res.Changes))
	}
	c, _ := g.Node("c")
	if c.State() != StateExists {
		t.Errorf("c state = %s, want exists", c.State())
	}
}

func TestPropagateExistenceIsAsymmetric(t *testing.T) {
	g := New()
	mustAdd(t, g, NewNode("tree"), NewNode("shade"))
	mustLink(t, g, "tree", "shade", OpExistence)

	g.Propagate("tree", StateDestroyed, "")
	shade, _ := g.Node("shade")
	if shade.State() != StateDestroyed {
		t.Fatalf("shade = %s, want destroyed", shade.State())
	}

	res := g.Propagate("tree", StateExists, "")
	if len(res.Changes) != 1 {
		t.Errorf("restoring tree changed %d nodes, want 1", len(res.Changes))
	}
	if shade.State() != StateDestroyed {
		t.Errorf("shade = %s, want still destroyed", shade.State())
	}
}

func TestPropagateInverseTarget(t *testing.T) {
	g := New()
	mustAdd(t, g, NewNode("tree"), NewNode("gate", WithState(StateOpen)))
	mustLink(t, g, "tree", "gate", OpInverse)

	res := g.Propagate("tree", StateDestroyed, "")
	if len(res.Changes) != 2 {
		t.Fatalf("changes = %d, want 2", len(res.Changes))
	}
	got := res.Changes[1]
	if got.NodeID != "gate" || got.OldState != StateOpen || got.NewState != StateExists || got.Operator != OpInverse {
		t.Errorf("gate change = %+v", got)
	}
}

func TestPropagateFirstEdgeWins(t *testing.T) {
	g := New()
	mustAdd(t, g, NewNode("a"), NewNode("b"))
	mustLink(t, g, "a", "b", OpEcho)
	mustLink(t, g, "a", "b", OpInverse)

	g.Propagate("a", StateDestroyed, "")

	b, _ := g.Node("b")
	if b.State() != StateDestroyed {
		t.Errorf("b = %s, want destroyed from the first (ECHO) edge", b.State())
	}
}

func TestPropagateCascadeUnspecified(t *testing.T) {
	g := New()
	mustAdd(t, g, NewNode("a"), NewNode("b"))
	mustLink(t, g, "a", "b", OpCascade)

	res := g.Propagate("a", StateDestroyed, "")
	if len(res.Changes) != 1 {
		t.Errorf("CASCADE (unspecified) produced %d changes, want 1", len(res.Changes))
	}
}

func TestPropagateUniverseFilter(t *testing.T) {
	tests := []struct {
		name     string
		universe string
		fires    bool
	}{
		{"matching universe", "echo", true},
		{"other universe", "prime", false},
		{"no universe context", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			mustAdd(t, g, NewNode("switch"), NewNode("door", WithState(StateClosed)))
			mustLink(t, g, "switch", "door", OpEcho, WithUniverses("echo", ""))

			g.Propagate("switch", StateOpen, tt.universe)

			door, _ := g.Node("door")
			if fired := door.State() == StateOpen; fired != tt.fires {
				t.Errorf("door state = %s, fired = %v, want %v", door.State(), fired, tt.fires)
			}
		})
	}
}

func TestPropagateUniverseOverrides(t *testing.T) {
	g := New()
	mustAdd(t, g, NewNode("switch"), NewNode("door", WithState(StateClosed)))
	mustLink(t, g, "switch", "door", OpEcho, WithUniverses("", "fracture"))

	g.Propagate("switch", StateOpen, "prime")

	sw, _ := g.Node("switch")
	if sw.StateIn("prime") != StateOpen {
		t.Errorf("switch prime override = %s, want open", sw.StateIn("prime"))
	}
	door, _ := g.Node("door")
	if s, ok := door.UniverseStates["fracture"]; !ok || s != StateOpen {
		t.Errorf("door fracture override = %s (set=%v), want open", s, ok)
	}
	if _, ok := door.UniverseStates["prime"]; ok {
		t.Error("door should not get a prime override")
	}
}

func TestPropagateNotifiesListeners(t *testing.T) {
	g := New()
	door := &listenerRecorder{}
	mustAdd(t, g, NewNode("switch"), NewNode("door", WithState(StateClosed), WithListener(door)))
	mustLink(t, g, "switch", "door", OpEcho)

	g.Propagate("switch", StateOpen, "")

	if len(door.states) != 1 || door.states[0] != StateOpen || door.sources[0] != "switch" {
		t.Errorf("listener got states=%v sources=%v", door.states, door.sources)
	}
}

func TestPropagateRecoversListenerPanic(t *testing.T) {
	g := New()
	after := &listenerRecorder{}
	mustAdd(t, g,
		NewNode("src"),
		NewNode("bad", WithListener(panickingListener{})),
		NewNode("good", WithListener(after)),
		NewNode("downstream"),
	)
	mustLink(t, g, "src", "bad", OpEcho)
	mustLink(t, g, "src", "good", OpEcho)
	mustLink(t, g, "bad", "downstream", OpEcho)

	res := g.Propagate("src", StateActive, "")

	if len(res.Changes) != 4 {
		t.Fatalf("changes = %d, want 4", len(res.Changes))
	}
	bad, _ := g.Node("bad")
	if bad.State() != StateActive {
		t.Errorf("panicking node state = %s, want committed active", bad.State())
	}
	if len(after.states) != 1 {
		t.Errorf("later listener called %d times, want 1", len(after.states))
	}
}

func TestPropagateEmitsLifecycleEvents(t *testing.T) {
	var rec events.Recorder
	g := New(WithNotifier(&rec))
	mustAdd(t, g, NewNode("a"), NewNode("b"))
	mustLink(t, g, "a", "b", OpEcho)
	rec.Reset()

	g.Propagate("a", StateDestroyed, "")

	if len(rec.Events) != 2 {
		t.Fatalf("events = %d, want 2", len(rec.Events))
	}
	started, ok := rec.Events[0].(events.PropagationStarted)
	if !ok || started.SourceID != "a" || started.NewState != "destroyed" {
		t.Errorf("first event = %+v", rec.Events[0])
	}
	done, ok := rec.Events[1].(events.PropagationCompleted)
	if !ok || done.Changes != 2 || done.Paradox != 0 {
		t.Errorf("second event = %+v", rec.Events[1])
	}
}

func TestTreeShadeNoOrphan(t *testing.T) {
	sink := &sinkRecorder{}
	g := New(WithParadoxSink(sink))
	mustAdd(t, g, NewNode("tree", WithWeight(10)), NewNode("shade"))
	mustLink(t, g, "tree", "shade", OpExistence)

	res := g.Propagate("tree", StateDestroyed, "")

	if len(res.Changes) != 2 {
		t.Fatalf("changes = %d, want 2", len(res.Changes))
	}
	first, second := res.Changes[0], res.Changes[1]
	if first.NodeID != "tree" || first.OldState != StateExists || first.NewState != StateDestroyed {
		t.Errorf("first change = %+v", first)
	}
	if second.NodeID != "shade" || second.OldState != StateExists || second.NewState != StateDestroyed ||
		second.SourceID != "tree" || second.Operator != OpExistence {
		t.Errorf("second change = %+v", second)
	}
	if res.Paradox != 0 {
		t.Errorf("paradox = %v, want 0", res.Paradox)
	}
	if len(sink.amounts) != 0 {
		t.Errorf("sink called %d times, want 0", len(sink.amounts))
	}
	if ok, issues := g.Validate(); !ok {
		t.Errorf("Validate issues: %v", issues)
	}
}

func TestTreeShadeWithOrphan(t *testing.T) {
	sink := &sinkRecorder{}
	g := New(WithParadoxSink(sink))
	mustAdd(t, g, NewNode("tree", WithWeight(10)), NewNode("shade"))
	mustLink(t, g, "tree", "shade", OpConditional, WithCondition(func(*Node) bool { return false }))

	res := g.Propagate("tree", StateDestroyed, "")

	if len(res.Changes) != 1 {
		t.Fatalf("changes = %d, want 1", len(res.Changes))
	}
	shade, _ := g.Node("shade")
	if shade.State() != StateExists {
		t.Errorf("shade = %s, want exists", shade.State())
	}
	if res.Paradox != 10 {
		t.Errorf("paradox = %v, want 10", res.Paradox)
	}
	if res.Changes[0].ParadoxGenerated != 10 {
		t.Errorf("tree change paradox = %v, want 10", res.Changes[0].ParadoxGenerated)
	}
	if sink.total() != 10 || sink.sources[0] != "tree" {
		t.Errorf("sink got %v from %v, want 10 from tree", sink.amounts, sink.sources)
	}
	if !g.IsOrphan("shade") {
		t.Error("shade should be orphaned")
	}
	ok, issues := g.Validate()
	if ok || len(issues) != 1 {
		t.Errorf("Validate = %v, %v; want one orphan issue", ok, issues)
	}
}

func TestOrphanParadoxCountedOnce(t *testing.T) {
	sink := &sinkRecorder{}
	g := New(WithParadoxSink(sink))
	mustAdd(t, g, NewNode("a", WithWeight(4)), NewNode("b"), NewNode("c"))
	mustLink(t, g, "a", "b", OpConditional, WithCondition(func(*Node) bool { return false }))
	mustLink(t, g, "b", "c", OpExistence)

	res := g.Propagate("a", StateDestroyed, "")

	if res.Paradox != 4 {
		t.Errorf("paradox = %v, want a's weight 4 exactly once", res.Paradox)
	}
	if len(sink.amounts) != 1 {
		t.Errorf("sink calls = %d, want 1", len(sink.amounts))
	}
	if g.IsOrphan("c") {
		t.Error("c was never cut off and should not be orphaned")
	}
}

func TestOrphanParadoxPerDependent(t *testing.T) {
	g := New()
	never := func(*Node) bool { return false }
	mustAdd(t, g, NewNode("pillar", WithWeight(3)), NewNode("roof1"), NewNode("roof2"))
	mustLink(t, g, "pillar", "roof1", OpConditional, WithCondition(never))
	mustLink(t, g, "pillar", "roof2", OpConditional, WithCondition(never))

	res := g.Propagate("pillar", StateDestroyed, "")

	if res.Paradox != 6 {
		t.Errorf("paradox = %v, want 6", res.Paradox)
	}
	if len(g.Orphaned()) != 2 {
		t.Errorf("orphaned = %v, want 2 nodes", g.Orphaned())
	}
}
