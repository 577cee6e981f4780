package causal

import (
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/SamirShaikh03/Fractured-Causality/internal/events"
)

func TestSerializeDeserialize(t *testing.T) {
	g := New()
	mustAdd(t, g,
		NewNode("tree", WithWeight(10), WithPosition(3, 4)),
		NewNode("shade"),
		NewNode("gate", WithState(StateClosed)),
	)
	mustLink(t, g, "tree", "shade", OpConditional,
		WithCondition(func(*Node) bool { return false }),
		WithMetadata(map[string]any{"hint": "shade of the old tree"}),
	)
	mustLink(t, g, "tree", "gate", OpInverse, WithUniverses("prime", "echo"))
	g.Propagate("tree", StateDestroyed, "prime")

	snap := g.Serialize()

	// Snapshots are stored as YAML; make sure they survive the trip.
	data, err := yaml.Marshal(snap)
	if err != nil {
		t.Fatalf("yaml.Marshal failed: %v", err)
	}
	var decoded Snapshot
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("yaml.Unmarshal failed: %v", err)
	}

	var rec events.Recorder
	restored := New(WithNotifier(&rec))
	shadeEntity := &listenerRecorder{}
	if err := restored.Deserialize(decoded, map[string]CausalListener{"shade": shadeEntity}); err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}

	if restored.Len() != 3 {
		t.Fatalf("restored nodes = %d, want 3", restored.Len())
	}
	tree, _ := restored.Node("tree")
	if tree.State() != StateDestroyed || tree.ParadoxWeight != 10 {
		t.Errorf("tree = %s weight %v", tree.State(), tree.ParadoxWeight)
	}
	if tree.StateIn("prime") != StateDestroyed {
		t.Errorf("tree prime override = %s", tree.StateIn("prime"))
	}
	if tree.Position != (Position{X: 3, Y: 4}) {
		t.Errorf("tree position = %+v", tree.Position)
	}
	gate, _ := restored.Node("gate")
	if gate.State() != StateExists || gate.UniverseStates["echo"] != StateExists {
		t.Errorf("gate = %s, echo override %s", gate.State(), gate.UniverseStates["echo"])
	}
	if len(gate.Dependencies) != 1 || gate.Dependencies[0].SourceUniverse != "prime" {
		t.Errorf("gate dependencies = %+v", gate.Dependencies)
	}
	shade, _ := restored.Node("shade")
	if shade.Listener != shadeEntity {
		t.Error("shade not re-bound to its entity")
	}
	if shade.Dependencies[0].Metadata["hint"] != "shade of the old tree" {
		t.Errorf("metadata = %+v", shade.Dependencies[0].Metadata)
	}
	if !restored.IsOrphan("shade") {
		t.Error("orphan set not restored")
	}
	if rec.Count(events.KindLinkCreated) != 2 {
		t.Errorf("LinkCreated on restore = %d, want 2", rec.Count(events.KindLinkCreated))
	}

	// Conditions are not saved: without re-attaching, the edge is open.
	restored.Propagate("tree", StateExists, "")
	restored.Propagate("tree", StateDestroyed, "")
	if shade.State() != StateDestroyed {
		t.Errorf("shade = %s, want destroyed through the open CONDITIONAL edge", shade.State())
	}
}

func TestDeserializeRejectsDanglingEdge(t *testing.T) {
	snap := Snapshot{Nodes: []NodeSnapshot{{
		ID:     "door",
		State:  StateClosed,
		Exists: true,
		Dependencies: []DependencySnapshot{
			{SourceID: "missing", TargetID: "door", Operator: OpEcho},
		},
	}}}

	if err := New().Deserialize(snap, nil); err == nil {
		t.Error("Deserialize with dangling edge should fail")
	}
}

func TestSnapshotNodeIDs(t *testing.T) {
	snap := Snapshot{Nodes: []NodeSnapshot{{ID: "b"}, {ID: "a"}}}
	ids := snap.NodeIDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("NodeIDs = %v", ids)
	}
}
