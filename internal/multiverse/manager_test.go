package multiverse

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/SamirShaikh03/Fractured-Causality/internal/causal"
	"github.com/SamirShaikh03/Fractured-Causality/internal/entity"
	"github.com/SamirShaikh03/Fractured-Causality/internal/events"
	"github.com/SamirShaikh03/Fractured-Causality/internal/levels"
	"github.com/SamirShaikh03/Fractured-Causality/internal/paradox"
)

func newManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	m, err := New(DefaultSettings(), opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return m
}

func builtin(t *testing.T, id string) levels.Level {
	t.Helper()
	lvl, err := levels.Builtin().LoadByID(id)
	if err != nil {
		t.Fatalf("LoadByID(%s) failed: %v", id, err)
	}
	return lvl
}

func loaded(t *testing.T, id string, opts ...Option) *Manager {
	t.Helper()
	m := newManager(t, opts...)
	if err := m.LoadLevel(builtin(t, id)); err != nil {
		t.Fatalf("LoadLevel(%s) failed: %v", id, err)
	}
	return m
}

func nodeState(t *testing.T, m *Manager, id string) causal.State {
	t.Helper()
	n, ok := m.Graph().Node(id)
	if !ok {
		t.Fatalf("node %s missing", id)
	}
	return n.State()
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestNewRejectsUnknownStart(t *testing.T) {
	s := DefaultSettings()
	s.Start = "mirror"
	if _, err := New(s); err == nil {
		t.Error("New should reject an undefined start universe")
	}
	s = DefaultSettings()
	s.Universes = append(s.Universes, UniverseSpec{ID: "echo"})
	if _, err := New(s); err == nil {
		t.Error("New should reject duplicate universes")
	}
}

func TestSwitchCooldownAndTransition(t *testing.T) {
	rec := &events.Recorder{}
	m := newManager(t, WithNotifier(rec))

	if !m.Switch("echo") {
		t.Fatal("first switch should succeed")
	}
	if m.Active() != "echo" || !m.Transitioning() {
		t.Fatalf("active=%s transitioning=%v", m.Active(), m.Transitioning())
	}
	if m.Switch("fracture") {
		t.Error("switch during cooldown should fail")
	}
	failed := rec.OfKind(events.KindSwitchFailed)
	if len(failed) != 1 {
		t.Fatalf("SwitchFailed events = %d", len(failed))
	}
	if f := failed[0].(events.SwitchFailed); f.Reason != "cooldown" || !near(f.Remaining, 0.5) {
		t.Errorf("failure = %+v", f)
	}

	m.Update(0.15)
	if !near(m.TransitionProgress(), 0.5) {
		t.Errorf("progress = %v, want 0.5", m.TransitionProgress())
	}
	m.Update(0.4)
	if m.Transitioning() || m.SwitchCooldown() != 0 {
		t.Errorf("transitioning=%v cooldown=%v", m.Transitioning(), m.SwitchCooldown())
	}
	if !m.Switch("fracture") {
		t.Error("switch after cooldown should succeed")
	}

	switched := rec.OfKind(events.KindUniverseSwitched)
	if len(switched) != 2 {
		t.Fatalf("UniverseSwitched events = %d", len(switched))
	}
	if s := switched[1].(events.UniverseSwitched); s.From != "echo" || s.To != "fracture" {
		t.Errorf("second switch = %+v", s)
	}
}

func TestSwitchRefusals(t *testing.T) {
	rec := &events.Recorder{}
	m := newManager(t, WithNotifier(rec))

	if m.Switch("prime") {
		t.Error("switching to the active universe should fail")
	}
	if m.Switch("mirror") {
		t.Error("switching to an unknown universe should fail")
	}
	var reasons []string
	for _, e := range rec.OfKind(events.KindSwitchFailed) {
		reasons = append(reasons, e.(events.SwitchFailed).Reason)
	}
	if strings.Join(reasons, ",") != "already active,unknown universe" {
		t.Errorf("reasons = %v", reasons)
	}
}

func TestSwitchNextWraps(t *testing.T) {
	m := newManager(t)
	var seen []string
	for i := 0; i < 3; i++ {
		if !m.SwitchNext() {
			t.Fatal("SwitchNext failed")
		}
		seen = append(seen, m.Active())
		m.Update(m.Settings().SwitchCooldown)
	}
	if strings.Join(seen, ",") != "echo,fracture,prime" {
		t.Errorf("order = %v", seen)
	}
}

func TestLoadLevelEmitsLevelLoaded(t *testing.T) {
	rec := &events.Recorder{}
	m := loaded(t, "level_01", WithNotifier(rec))

	got := rec.OfKind(events.KindLevelLoaded)
	if len(got) != 1 {
		t.Fatalf("LevelLoaded events = %d", len(got))
	}
	if e := got[0].(events.LevelLoaded); e.LevelID != "level_01" || e.Nodes != 4 || e.Dependencies != 1 {
		t.Errorf("event = %+v", e)
	}
	door, _ := m.Graph().Node("door_01")
	if door.StateIn("echo") != causal.StateOpen || door.StateIn("prime") != causal.StateClosed {
		t.Errorf("door overrides = %v", door.UniverseStates)
	}
}

func TestPlayLevelOne(t *testing.T) {
	m := loaded(t, "level_01")

	res, err := m.Use("switch_01")
	if err != nil {
		t.Fatalf("Use(switch_01) failed: %v", err)
	}
	if len(res.Changes) != 2 || nodeState(t, m, "door_01") != causal.StateOn {
		t.Fatalf("changes = %+v", res.Changes)
	}
	sw, _ := m.Entity("switch_01")
	door, _ := m.Entity("door_01")
	if sw.Status() != "on" || door.Status() != "open" {
		t.Errorf("switch=%s door=%s", sw.Status(), door.Status())
	}

	if res, _ := m.Use("exit_01"); !res.Empty() {
		t.Error("portal opened without a key")
	}
	if _, err := m.Use("key_01"); err != nil {
		t.Fatalf("Use(key_01) failed: %v", err)
	}
	if m.Keys() != 1 {
		t.Fatalf("keys = %d", m.Keys())
	}
	if m.Outcome() != OutcomePlaying {
		t.Fatalf("outcome = %s before exit", m.Outcome())
	}
	if _, err := m.Use("exit_01"); err != nil {
		t.Fatalf("Use(exit_01) failed: %v", err)
	}
	if m.Outcome() != OutcomeCompleted {
		t.Errorf("outcome = %s, want completed", m.Outcome())
	}
	for _, g := range m.Goals() {
		if !g.Met {
			t.Errorf("goal %s not met (state %s)", g.Node, g.State)
		}
	}
}

func TestFellingTheTree(t *testing.T) {
	m := loaded(t, "level_03")

	res, err := m.Use("ancient_tree")
	if err != nil {
		t.Fatalf("Use(ancient_tree) failed: %v", err)
	}
	var ids []string
	for _, c := range res.Changes {
		ids = append(ids, c.NodeID)
	}
	if strings.Join(ids, ",") != "ancient_tree,exit_gate,shade_01,shade_02" {
		t.Errorf("changes = %v", ids)
	}
	// bridge_01 and exit_gate survive their origin.
	if res.Paradox != 20 || m.Paradox().Level() != 20 {
		t.Errorf("paradox = %v / %v, want 20", res.Paradox, m.Paradox().Level())
	}
	if !m.Graph().IsOrphan("bridge_01") || !m.Graph().IsOrphan("exit_gate") {
		t.Errorf("orphans = %v", m.Graph().Orphaned())
	}

	shade, _ := m.Entity("shade_01")
	if shade.Status() != "fading" {
		t.Fatalf("shade status = %s", shade.Status())
	}
	m.Update(1.0)
	if shade.Status() != "gone" {
		t.Errorf("shade after fade = %s", shade.Status())
	}
}

func TestUseOutsideUniverse(t *testing.T) {
	m := loaded(t, "level_03")
	m.Switch("echo")
	if _, err := m.Use("ancient_tree"); !errors.Is(err, ErrNotPresent) {
		t.Errorf("err = %v, want ErrNotPresent", err)
	}
	if _, err := m.Use("exit_gate"); !errors.Is(err, ErrNotUsable) {
		t.Errorf("err = %v, want ErrNotUsable", err)
	}
	if _, err := m.Use("oak"); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("err = %v, want ErrUnknownEntity", err)
	}
	if _, err := newManager(t).Use("ancient_tree"); !errors.Is(err, ErrNoLevel) {
		t.Errorf("err = %v, want ErrNoLevel", err)
	}
}

func TestVisibleFiltersByUniverse(t *testing.T) {
	m := loaded(t, "level_03")
	has := func(id string) bool {
		for _, e := range m.Visible() {
			if e.ID() == id {
				return true
			}
		}
		return false
	}
	if !has("ancient_tree") || has("bridge_01") {
		t.Error("prime should show the tree and hide the bridge")
	}
	m.Switch("echo")
	if has("ancient_tree") || !has("bridge_01") || !has("key_03") {
		t.Error("echo should hide the tree and show the bridge and key")
	}
}

func TestPulse(t *testing.T) {
	rec := &events.Recorder{}
	m := loaded(t, "level_03", WithNotifier(rec))
	m.Paradox().PauseDecay()

	if m.Pulse() {
		t.Fatal("pulse with an empty meter should fail")
	}
	m.Use("ancient_tree")
	if !m.Pulse() {
		t.Fatal("pulse should fire")
	}
	if m.Paradox().Level() != 15 || !m.Phasing() {
		t.Errorf("level=%v phasing=%v", m.Paradox().Level(), m.Phasing())
	}
	if e := rec.Last().(events.PulseActivated); e.Cost != 5 || e.Remaining != 15 {
		t.Errorf("event = %+v", e)
	}
	if m.Pulse() {
		t.Error("pulse on cooldown should fail")
	}
	m.Update(0.5)
	if m.Phasing() {
		t.Error("phasing should end after the pulse duration")
	}
	m.Update(1.5)
	if !m.Pulse() || m.Paradox().Level() != 10 {
		t.Errorf("second pulse: level=%v", m.Paradox().Level())
	}
}

func TestAnnihilationFailsLevelOnce(t *testing.T) {
	rec := &events.Recorder{}
	m := loaded(t, "level_01", WithNotifier(rec))

	m.Paradox().Add(100, "test", "test", "")
	m.Paradox().Add(10, "test", "test", "")
	if m.Outcome() != OutcomeFailed {
		t.Fatalf("outcome = %s", m.Outcome())
	}
	failed := rec.OfKind(events.KindLevelFailed)
	if len(failed) != 1 {
		t.Fatalf("LevelFailed events = %d, want 1", len(failed))
	}
	if e := failed[0].(events.LevelFailed); e.LevelID != "level_01" || e.Reason != "annihilation" {
		t.Errorf("event = %+v", e)
	}
	if _, err := m.Use("switch_01"); !errors.Is(err, ErrLevelOver) {
		t.Errorf("err = %v, want ErrLevelOver", err)
	}
	if m.PeakTier() != paradox.Annihilation {
		t.Errorf("peak = %s", m.PeakTier())
	}
}

func TestStabilityFollowsDistortion(t *testing.T) {
	m := loaded(t, "level_01")
	m.Paradox().Set(60)
	m.Update(0.01)

	want := map[string]float64{"prime": 0.95, "echo": 0.85, "fracture": 0.75}
	for id, w := range want {
		u, ok := m.Universe(id)
		if !ok {
			t.Fatalf("universe %s missing", id)
		}
		if !near(u.Stability(), w) {
			t.Errorf("%s stability = %v, want %v", id, u.Stability(), w)
		}
	}
}

func TestStabilityStaysInRange(t *testing.T) {
	tests := []struct {
		sensitivity, distortion, expected float64
	}{
		{0.5, 0.2, 0.9},
		{0.5, 4, 0},
		{-1, 0.5, 1},
	}
	for _, tt := range tests {
		u := newUniverse(UniverseSpec{ID: "u", Sensitivity: tt.sensitivity})
		u.distort(tt.distortion)
		if !near(u.Stability(), tt.expected) {
			t.Errorf("sensitivity %v distortion %v: stability = %v, want %v",
				tt.sensitivity, tt.distortion, u.Stability(), tt.expected)
		}
	}
}

func TestResetClearsSession(t *testing.T) {
	m := loaded(t, "level_03")
	m.Use("ancient_tree")
	m.Switch("echo")
	m.Reset()

	if m.Graph().Len() != 0 || m.Paradox().Level() != 0 || m.Active() != "prime" {
		t.Errorf("after reset: nodes=%d level=%v active=%s", m.Graph().Len(), m.Paradox().Level(), m.Active())
	}
	if m.Level() != nil || m.Keys() != 0 || m.Outcome() != OutcomePlaying {
		t.Error("level state not cleared")
	}
}

func TestLoadLevelSkipsBadDependencies(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	m := newManager(t, WithLogger(logger))

	lvl := levels.Level{
		ID:   "loose",
		Name: "Loose",
		Entities: []levels.EntitySpec{
			{ID: "a", Kind: "switch", State: "off"},
			{ID: "b", Kind: "door", State: "closed"},
		},
		Dependencies: []levels.DependencySpec{
			{Source: "a", Target: "ghost", Operator: "echo"},
			{Source: "a", Target: "b", Operator: "echo"},
		},
	}
	if err := m.LoadLevel(lvl); err != nil {
		t.Fatalf("LoadLevel failed: %v", err)
	}
	if n := len(m.Graph().AllDependencies()); n != 1 {
		t.Errorf("dependencies = %d, want 1", n)
	}
	if !strings.Contains(buf.String(), "skipping dependency") {
		t.Errorf("log = %q", buf.String())
	}
}

func TestLoadLevelUnknownStartUniverse(t *testing.T) {
	m := newManager(t)
	lvl := builtin(t, "level_01")
	lvl.StartUniverse = "mirror"
	if err := m.LoadLevel(lvl); err == nil {
		t.Error("LoadLevel should reject an unknown start universe")
	}
}

func TestSaveRestoreRoundTrip(t *testing.T) {
	m := loaded(t, "level_03")
	m.Use("ancient_tree")
	m.Use("key_03")
	m.Update(0.5)
	m.Switch("echo")

	s, err := m.Save()
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, err := MarshalSession(s)
	if err != nil {
		t.Fatalf("MarshalSession failed: %v", err)
	}
	decoded, err := UnmarshalSession(data)
	if err != nil {
		t.Fatalf("UnmarshalSession failed: %v", err)
	}

	r := newManager(t)
	if err := r.Restore(builtin(t, "level_03"), decoded); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if r.Active() != "echo" || r.Keys() != 1 {
		t.Errorf("active=%s keys=%d", r.Active(), r.Keys())
	}
	if r.Paradox().Level() != m.Paradox().Level() {
		t.Errorf("paradox = %v, want %v", r.Paradox().Level(), m.Paradox().Level())
	}
	if nodeState(t, r, "shade_01") != causal.StateDestroyed {
		t.Error("shade_01 should stay destroyed")
	}
	tree, _ := r.Entity("ancient_tree")
	key, _ := r.Entity("key_03")
	if !tree.Destroyed() {
		t.Error("tree entity should be restored as fallen")
	}
	if !key.(entity.Collectible).Collected() {
		t.Error("key should be restored as collected")
	}
	if len(r.Graph().AllDependencies()) != 4 {
		t.Errorf("dependencies = %d", len(r.Graph().AllDependencies()))
	}
	if r.Elapsed() != m.Elapsed() {
		t.Errorf("elapsed = %v, want %v", r.Elapsed(), m.Elapsed())
	}
}

func TestRestoreKeepsFadedShadesGone(t *testing.T) {
	m := loaded(t, "level_03")
	m.Use("ancient_tree")
	m.Update(2)
	shade, _ := m.Entity("shade_01")
	if !shade.Destroyed() {
		t.Fatal("shade_01 should have faded before saving")
	}
	s, err := m.Save()
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	rec := &events.Recorder{}
	r := newManager(t, WithNotifier(rec))
	if err := r.Restore(builtin(t, "level_03"), s); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	for _, id := range []string{"shade_01", "shade_02"} {
		e, _ := r.Entity(id)
		if !e.Destroyed() || e.Status() != "gone" {
			t.Errorf("%s: destroyed=%v status=%s", id, e.Destroyed(), e.Status())
		}
		if fader, ok := e.(interface{ Fading() bool }); ok && fader.Fading() {
			t.Errorf("%s should not fade again after restore", id)
		}
	}
	if got := rec.Count(events.KindLinkCreated); got != 4 {
		t.Errorf("LinkCreated on restore = %d, want 4", got)
	}
}

func TestRestoreReattachesConditions(t *testing.T) {
	m := loaded(t, "level_02")
	s, err := m.Save()
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	r := newManager(t)
	if err := r.Restore(builtin(t, "level_02"), s); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	r.Use("stone_01")
	if nodeState(t, r, "door_upper") != causal.StateActive {
		t.Fatalf("door_upper = %s after press", nodeState(t, r, "door_upper"))
	}
	r.Use("stone_01")
	if nodeState(t, r, "stone_01") != causal.StateInactive {
		t.Fatalf("stone_01 = %s after release", nodeState(t, r, "stone_01"))
	}
	if nodeState(t, r, "door_upper") != causal.StateActive {
		t.Error("latched door should stay open after the stone is released")
	}
}

func TestRestoreRejectsOtherLevel(t *testing.T) {
	m := loaded(t, "level_01")
	s, _ := m.Save()
	if err := newManager(t).Restore(builtin(t, "level_02"), s); err == nil {
		t.Error("Restore should reject a session from another level")
	}
	if _, err := newManager(t).Save(); !errors.Is(err, ErrNoLevel) {
		t.Errorf("Save without level: err = %v", err)
	}
}
