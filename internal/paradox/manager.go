package paradox

import (
	"github.com/SamirShaikh03/Fractured-Causality/internal/events"
)

// Source records one contribution to the paradox level.
type Source struct {
	ID          string  `yaml:"id"`
	Type        string  `yaml:"type"`
	Amount      float64 `yaml:"amount"`
	Timestamp   float64 `yaml:"timestamp"` // session clock seconds
	Description string  `yaml:"description,omitempty"`
}

// Sample is one point of the level history.
type Sample struct {
	Time  float64
	Level float64
}

// Manager owns the paradox level of one session. It is the only writer of
// the level; everything else reads it through Level, Tier and Effects.
type Manager struct {
	settings Settings
	notifier events.Notifier

	level     float64
	tier      Tier
	sources   []Source
	history   []Sample
	clock     float64
	sinceLast float64
	paused    bool
}

// NewManager creates a manager at level zero. A nil notifier discards events.
func NewManager(s Settings, n events.Notifier) *Manager {
	if n == nil {
		n = events.Nop{}
	}
	return &Manager{settings: s, notifier: n}
}

// Settings returns the manager's tuning.
func (m *Manager) Settings() Settings { return m.settings }

// Level returns the current level.
func (m *Manager) Level() float64 { return m.level }

// Normalized returns the level as a fraction of Max.
func (m *Manager) Normalized() float64 { return m.level / m.settings.Max }

// Tier returns the current tier.
func (m *Manager) Tier() Tier { return m.tier }

// Dangerous reports whether the level is at or above the danger threshold.
func (m *Manager) Dangerous() bool { return m.level >= m.settings.DangerThreshold }

// Clock returns the seconds advanced through Update.
func (m *Manager) Clock() float64 { return m.clock }

// DecayPaused reports whether decay is paused.
func (m *Manager) DecayPaused() bool { return m.paused }

// Add raises the level by amount, capped at Max, and returns the new level.
func (m *Manager) Add(amount float64, sourceID, sourceType, description string) float64 {
	old := m.level
	m.level = min(m.settings.Max, m.level+amount)

	m.sources = append(m.sources, Source{
		ID:          sourceID,
		Type:        sourceType,
		Amount:      amount,
		Timestamp:   m.clock,
		Description: description,
	})
	if n := len(m.sources) - m.settings.SourceLimit; n > 0 {
		m.sources = append(m.sources[:0], m.sources[n:]...)
	}
	m.sinceLast = 0

	oldTier := m.tier
	m.tier = m.settings.TierFor(m.level)
	m.record()

	m.notifier.Notify(events.ParadoxChanged{
		OldLevel: old,
		NewLevel: m.level,
		Delta:    amount,
		Source:   sourceID,
		Tier:     m.tier.String(),
	})
	m.notifyTier(oldTier)

	switch {
	case m.level >= m.settings.Max:
		m.notifier.Notify(events.Annihilation{Level: m.level})
	case old < m.settings.DangerThreshold && m.level >= m.settings.DangerThreshold:
		m.notifier.Notify(events.DangerCrossed{Level: m.level})
	}
	return m.level
}

// AddParadox lets the manager receive paradox from a causal graph.
func (m *Manager) AddParadox(amount float64, sourceID, sourceType, description string) float64 {
	return m.Add(amount, sourceID, sourceType, description)
}

// Reduce lowers the level by amount, floored at zero, and returns the new level.
func (m *Manager) Reduce(amount float64, reason string) float64 {
	m.sinceLast = 0
	m.reduce(amount, reason)
	m.record()
	return m.level
}

func (m *Manager) reduce(amount float64, reason string) {
	old := m.level
	m.level = max(0, m.level-amount)

	oldTier := m.tier
	m.tier = m.settings.TierFor(m.level)

	if old != m.level {
		m.notifier.Notify(events.ParadoxChanged{
			OldLevel: old,
			NewLevel: m.level,
			Delta:    m.level - old,
			Source:   reason,
			Tier:     m.tier.String(),
		})
	}
	m.notifyTier(oldTier)
}

// Set writes the level directly, clamped to [0, Max].
func (m *Manager) Set(level float64) {
	old := m.level
	m.level = max(0, min(m.settings.Max, level))
	m.sinceLast = 0

	oldTier := m.tier
	m.tier = m.settings.TierFor(m.level)
	m.record()

	m.notifier.Notify(events.ParadoxChanged{
		OldLevel: old,
		NewLevel: m.level,
		Delta:    m.level - old,
		Source:   "set",
		Tier:     m.tier.String(),
	})
	m.notifyTier(oldTier)
}

// Consume spends amount of paradox. It fails, changing nothing, when the
// level is below amount.
func (m *Manager) Consume(amount float64) bool {
	if m.level < amount {
		return false
	}
	m.Reduce(amount, "consumed")
	return true
}

// Update advances the clock by dt seconds and applies decay once the level
// has been left alone for DecayDelay seconds. Decay does not restart the
// quiet period.
func (m *Manager) Update(dt float64) {
	m.clock += dt
	m.sinceLast += dt

	if m.paused || m.level <= 0 {
		return
	}
	if m.sinceLast >= m.settings.DecayDelay {
		m.reduce(m.settings.DecayRate*dt, "natural_decay")
	}
}

// PauseDecay stops decay until ResumeDecay.
func (m *Manager) PauseDecay() { m.paused = true }

// ResumeDecay lets decay run again.
func (m *Manager) ResumeDecay() { m.paused = false }

// Effects returns the effects of the current tier.
func (m *Manager) Effects() Effects {
	return EffectsFor(m.tier)
}

// RecentSources returns up to n of the newest sources, oldest first.
func (m *Manager) RecentSources(n int) []Source {
	if n <= 0 || n > len(m.sources) {
		n = len(m.sources)
	}
	out := make([]Source, n)
	copy(out, m.sources[len(m.sources)-n:])
	return out
}

// History returns the recorded level samples, oldest first.
func (m *Manager) History() []Sample {
	out := make([]Sample, len(m.history))
	copy(out, m.history)
	return out
}

// Reset returns the manager to level zero and clears its records. The clock
// and pause flag are kept.
func (m *Manager) Reset() {
	m.level = 0
	m.tier = Stable
	m.sources = nil
	m.history = nil
	m.sinceLast = 0
}

func (m *Manager) record() {
	m.history = append(m.history, Sample{Time: m.clock, Level: m.level})
	if n := len(m.history) - m.settings.HistoryLimit; n > 0 {
		m.history = append(m.history[:0], m.history[n:]...)
	}
}

func (m *Manager) notifyTier(old Tier) {
	if old != m.tier {
		m.notifier.Notify(events.TierChanged{
			OldTier: old.String(),
			NewTier: m.tier.String(),
			Level:   m.level,
		})
	}
}

// Snapshot is the saveable state of a Manager.
type Snapshot struct {
	Level   float64  `yaml:"level"`
	Clock   float64  `yaml:"clock"`
	Paused  bool     `yaml:"paused,omitempty"`
	Sources []Source `yaml:"sources,omitempty"`
}

// snapshotSources is how many recent sources a snapshot keeps.
const snapshotSources = 10

// Snapshot captures the level, clock and most recent sources.
func (m *Manager) Snapshot() Snapshot {
	return Snapshot{
		Level:   m.level,
		Clock:   m.clock,
		Paused:  m.paused,
		Sources: m.RecentSources(snapshotSources),
	}
}

// Restore loads s without emitting events. The quiet timer restarts.
func (m *Manager) Restore(s Snapshot) {
	m.level = max(0, min(m.settings.Max, s.Level))
	m.tier = m.settings.TierFor(m.level)
	m.clock = s.Clock
	m.paused = s.Paused
	m.sources = append([]Source(nil), s.Sources...)
	m.history = nil
	m.sinceLast = 0
	m.record()
}
