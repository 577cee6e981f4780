package multiverse

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/SamirShaikh03/Fractured-Causality/internal/causal"
	"github.com/SamirShaikh03/Fractured-Causality/internal/entity"
	"github.com/SamirShaikh03/Fractured-Causality/internal/events"
	"github.com/SamirShaikh03/Fractured-Causality/internal/levels"
	"github.com/SamirShaikh03/Fractured-Causality/internal/paradox"
)

// Session is the saveable state of a Manager.
type Session struct {
	LevelID   string           `yaml:"level_id"`
	Active    string           `yaml:"active_universe"`
	Keys      int              `yaml:"keys"`
	Collected []string         `yaml:"collected,omitempty"`
	Elapsed   float64          `yaml:"elapsed"`
	PeakTier  string           `yaml:"peak_tier"`
	Graph     causal.Snapshot  `yaml:"graph"`
	Paradox   paradox.Snapshot `yaml:"paradox"`
}

// Save captures the session.
func (m *Manager) Save() (Session, error) {
	if m.level == nil {
		return Session{}, ErrNoLevel
	}
	return Session{
		LevelID:   m.level.ID,
		Active:    m.active,
		Keys:      m.keys,
		Collected: append([]string(nil), m.collected...),
		Elapsed:   m.elapsed,
		PeakTier:  m.peak.String(),
		Graph:     m.graph.Serialize(),
		Paradox:   m.paradox.Snapshot(),
	}, nil
}

// Restore rebuilds the session from s. lvl must be the level s was saved
// from: it supplies the entities and the conditions, which are not saved.
func (m *Manager) Restore(lvl levels.Level, s Session) error {
	if lvl.ID != s.LevelID {
		return fmt.Errorf("multiverse: session is for level %s, not %s", s.LevelID, lvl.ID)
	}
	if _, ok := m.byID[s.Active]; !ok {
		return fmt.Errorf("multiverse: session universe %q is not defined", s.Active)
	}
	if err := m.LoadLevel(lvl); err != nil {
		return err
	}

	// LoadLevel already announced the links.
	m.graph.SetNotifier(events.Nop{})
	err := m.graph.Deserialize(s.Graph, m.listeners())
	m.graph.SetNotifier(m.router)
	if err != nil {
		return fmt.Errorf("multiverse: %w", err)
	}
	for _, d := range lvl.Dependencies {
		if d.Condition == nil {
			continue
		}
		pred, err := d.Condition.Predicate()
		if err != nil {
			return fmt.Errorf("multiverse: %w", err)
		}
		op, err := causal.ParseOperator(d.Operator)
		if err != nil {
			return fmt.Errorf("multiverse: %w", err)
		}
		if err := m.graph.SetCondition(d.Source, d.Target, op, pred); err != nil {
			m.logger.Warn("condition not restored", "source", d.Source, "target", d.Target, "error", err)
		}
	}

	// Entities start from the level file; bring them to the saved states.
	// Keys are picked up first so a collected key is not seen as destroyed.
	for _, id := range s.Collected {
		if c, ok := m.entities[id].(entity.Collectible); ok {
			c.Collect(m)
		}
	}
	for _, n := range m.graph.Nodes() {
		e, ok := m.entities[n.ID]
		if !ok {
			continue
		}
		if st, ok := e.(entity.Settler); ok {
			st.Settle(n.State())
		} else {
			e.OnCausalChange(n.State(), "restore")
		}
	}

	m.paradox.Restore(s.Paradox)
	m.active = s.Active
	m.keys = s.Keys
	m.collected = append([]string(nil), s.Collected...)
	m.elapsed = s.Elapsed
	m.peak = max(m.peak, parseTier(s.PeakTier))
	m.observe()
	return nil
}

func parseTier(name string) paradox.Tier {
	for t := paradox.Stable; t <= paradox.Annihilation; t++ {
		if t.String() == name {
			return t
		}
	}
	return paradox.Stable
}

// MarshalSession encodes a session as YAML.
func MarshalSession(s Session) ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("multiverse: cannot encode session: %w", err)
	}
	return data, nil
}

// UnmarshalSession decodes a YAML session.
func UnmarshalSession(data []byte) (Session, error) {
	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("multiverse: cannot decode session: %w", err)
	}
	return s, nil
}
