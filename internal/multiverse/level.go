package multiverse

import (
	"errors"
	"fmt"

	"github.com/SamirShaikh03/Fractured-Causality/internal/causal"
	"github.com/SamirShaikh03/Fractured-Causality/internal/entity"
	"github.com/SamirShaikh03/Fractured-Causality/internal/events"
	"github.com/SamirShaikh03/Fractured-Causality/internal/levels"
	"github.com/SamirShaikh03/Fractured-Causality/internal/registry"
)

var (
	ErrNoLevel       = errors.New("multiverse: no level loaded")
	ErrUnknownEntity = errors.New("multiverse: unknown entity")
	ErrNotPresent    = errors.New("multiverse: entity is not in the active universe")
	ErrNotUsable     = errors.New("multiverse: entity cannot be used")
	ErrLevelOver     = errors.New("multiverse: level is over")
)

// LoadLevel resets the session and builds the level's entities, nodes and
// dependencies. Dependencies that cannot be added are logged and skipped.
func (m *Manager) LoadLevel(lvl levels.Level) error {
	if lvl.StartUniverse != "" {
		if _, ok := m.byID[lvl.StartUniverse]; !ok {
			return fmt.Errorf("multiverse: level %s starts in unknown universe %q", lvl.ID, lvl.StartUniverse)
		}
	}
	m.Reset()

	for _, spec := range lvl.Entities {
		e, err := registry.Create(spec.Kind, spec.RegistrySpec())
		if err != nil {
			return fmt.Errorf("multiverse: level %s: %w", lvl.ID, err)
		}
		opts, err := spec.NodeOptions(e)
		if err != nil {
			return fmt.Errorf("multiverse: level %s entity %s: %w", lvl.ID, spec.ID, err)
		}
		n := causal.NewNode(spec.ID, opts...)
		if err := spec.ApplyUniverseStates(n); err != nil {
			return fmt.Errorf("multiverse: level %s: %w", lvl.ID, err)
		}
		if err := m.graph.AddNode(n); err != nil {
			return fmt.Errorf("multiverse: level %s: %w", lvl.ID, err)
		}
		m.entities[spec.ID] = e
		m.order = append(m.order, spec.ID)
	}

	for _, d := range lvl.Dependencies {
		if err := m.addDependency(d); err != nil {
			m.logger.Warn("skipping dependency", "level", lvl.ID, "source", d.Source, "target", d.Target, "error", err)
		}
	}

	if lvl.StartUniverse != "" {
		m.active = lvl.StartUniverse
	}
	m.level = &lvl
	deps := len(m.graph.AllDependencies())
	m.router.Notify(events.LevelLoaded{LevelID: lvl.ID, Nodes: m.graph.Len(), Dependencies: deps})
	m.logger.Info("level loaded", "level", lvl.ID, "nodes", m.graph.Len(), "dependencies", deps)
	return nil
}

func (m *Manager) addDependency(d levels.DependencySpec) error {
	op, err := causal.ParseOperator(d.Operator)
	if err != nil {
		return err
	}
	opts, err := d.Options()
	if err != nil {
		return err
	}
	return m.graph.AddDependency(d.Source, d.Target, op, opts...)
}

// Level returns the loaded level, or nil.
func (m *Manager) Level() *levels.Level { return m.level }

// Entity returns an entity by id.
func (m *Manager) Entity(id string) (registry.Entity, bool) {
	e, ok := m.entities[id]
	return e, ok
}

// Entities returns all entities in level order.
func (m *Manager) Entities() []registry.Entity {
	out := make([]registry.Entity, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.entities[id])
	}
	return out
}

// Visible returns the entities present in the active universe.
func (m *Manager) Visible() []registry.Entity {
	return entity.Present(m.Entities(), m.active)
}

// Use performs the player's action on an entity in the active universe:
// collectibles are picked up, interactables are used.
func (m *Manager) Use(id string) (causal.Result, error) {
	if m.level == nil {
		return causal.Result{}, ErrNoLevel
	}
	if m.outcome != OutcomePlaying && m.outcome != OutcomeCompleted {
		return causal.Result{}, ErrLevelOver
	}
	e, ok := m.entities[id]
	if !ok {
		return causal.Result{}, fmt.Errorf("%w: %s", ErrUnknownEntity, id)
	}
	if !present(e, m.active) {
		return causal.Result{}, fmt.Errorf("%w: %s", ErrNotPresent, id)
	}

	w := &recordingWorld{Manager: m}
	switch v := e.(type) {
	case entity.Collectible:
		if v.Collect(w) {
			m.keys++
			m.collected = append(m.collected, id)
			m.logger.Debug("collected", "entity", id, "keys", m.keys)
		}
		return w.last, nil
	case entity.Interactable:
		return v.Interact(w), nil
	default:
		return causal.Result{}, fmt.Errorf("%w: %s is a %s", ErrNotUsable, id, e.Kind())
	}
}

// recordingWorld remembers the last propagation an entity caused.
type recordingWorld struct {
	*Manager
	last causal.Result
}

func (w *recordingWorld) Propagate(id string, state causal.State) causal.Result {
	w.last = w.Manager.Propagate(id, state)
	return w.last
}

func present(e registry.Entity, universe string) bool {
	return len(entity.Present([]registry.Entity{e}, universe)) == 1
}

// GoalStatus is one goal and whether it currently holds.
type GoalStatus struct {
	levels.Goal
	State causal.State
	Met   bool
}

// Goals reports the loaded level's goals.
func (m *Manager) Goals() []GoalStatus {
	if m.level == nil {
		return nil
	}
	out := make([]GoalStatus, 0, len(m.level.Goals))
	for _, g := range m.level.Goals {
		gs := GoalStatus{Goal: g}
		if n, ok := m.graph.Node(g.Node); ok {
			gs.State = n.State()
			gs.Met = g.Met(gs.State)
		}
		out = append(out, gs)
	}
	return out
}

func (m *Manager) goalsMet() bool {
	goals := m.Goals()
	if len(goals) == 0 {
		return false
	}
	for _, g := range goals {
		if !g.Met {
			return false
		}
	}
	return true
}

func (m *Manager) listeners() map[string]causal.CausalListener {
	out := make(map[string]causal.CausalListener, len(m.entities))
	for id, e := range m.entities {
		out[id] = e
	}
	return out
}
