package multiverse

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/SamirShaikh03/Fractured-Causality/internal/causal"
	"github.com/SamirShaikh03/Fractured-Causality/internal/entity"
	"github.com/SamirShaikh03/Fractured-Causality/internal/events"
	"github.com/SamirShaikh03/Fractured-Causality/internal/levels"
	"github.com/SamirShaikh03/Fractured-Causality/internal/paradox"
	"github.com/SamirShaikh03/Fractured-Causality/internal/registry"
)

// Outcome is how a level attempt ended.
type Outcome string

const (
	OutcomePlaying   Outcome = "playing"
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
	OutcomeAbandoned Outcome = "abandoned"
)

// Manager is one play session. It owns the causal graph, the paradox meter
// and the event router every component reports to. A Manager is not safe
// for concurrent use; drive it from one goroutine.
type Manager struct {
	settings  Settings
	universes []*Universe
	byID      map[string]*Universe
	active    string

	switchCooldown float64
	transition     float64
	pulseCooldown  float64
	pulseActive    float64

	router  *events.Router
	graph   *causal.Graph
	paradox *paradox.Manager
	logger  *log.Logger

	level     *levels.Level
	entities  map[string]registry.Entity
	order     []string
	keys      int
	collected []string
	elapsed   float64
	peak      paradox.Tier
	outcome   Outcome
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the session logger. Events are logged at debug level.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithNotifier adds a notifier that sees every session event.
func WithNotifier(n events.Notifier) Option {
	return func(m *Manager) {
		if n != nil {
			m.router.SubscribeAll(n.Notify)
		}
	}
}

// New creates a session with no level loaded.
func New(s Settings, opts ...Option) (*Manager, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	m := &Manager{
		settings: s,
		byID:     make(map[string]*Universe, len(s.Universes)),
		active:   s.Start,
		router:   events.NewRouter(),
		logger:   log.New(io.Discard),
		entities: make(map[string]registry.Entity),
		outcome:  OutcomePlaying,
	}
	for _, spec := range s.Universes {
		u := newUniverse(spec)
		m.universes = append(m.universes, u)
		m.byID[spec.ID] = u
	}
	for _, opt := range opts {
		opt(m)
	}
	m.router.SubscribeAll(events.NewLogger(m.logger).Notify)
	m.router.Subscribe(m.onAnnihilation, events.KindAnnihilation)
	m.router.Subscribe(func(events.Event) { m.peak = max(m.peak, m.paradox.Tier()) }, events.KindTierChanged)

	m.paradox = paradox.NewManager(s.Paradox, m.router)
	m.graph = causal.New(
		causal.WithNotifier(m.router),
		causal.WithParadoxSink(m.paradox),
		causal.WithLogger(m.logger),
	)
	return m, nil
}

// Events returns the router, for subscribing to session events.
func (m *Manager) Events() *events.Router { return m.router }

// Graph returns the causal graph.
func (m *Manager) Graph() *causal.Graph { return m.graph }

// Paradox returns the paradox meter.
func (m *Manager) Paradox() *paradox.Manager { return m.paradox }

// Settings returns the session tuning.
func (m *Manager) Settings() Settings { return m.settings }

// Active returns the active universe id.
func (m *Manager) Active() string { return m.active }

// Universe returns a universe by id.
func (m *Manager) Universe(id string) (*Universe, bool) {
	u, ok := m.byID[id]
	return u, ok
}

// Universes returns the universes in configuration order.
func (m *Manager) Universes() []*Universe {
	return append([]*Universe(nil), m.universes...)
}

// SwitchCooldown returns the seconds until the next switch is allowed.
func (m *Manager) SwitchCooldown() float64 { return m.switchCooldown }

// Transitioning reports whether a switch transition is still playing.
func (m *Manager) Transitioning() bool { return m.transition > 0 }

// TransitionProgress returns 0 at the start of a transition and 1 when done.
func (m *Manager) TransitionProgress() float64 {
	if m.settings.SwitchDuration <= 0 || m.transition <= 0 {
		return 1
	}
	return 1 - m.transition/m.settings.SwitchDuration
}

// Switch makes target the active universe. It fails, emitting SwitchFailed,
// when target is unknown, already active, or the cooldown is running.
func (m *Manager) Switch(target string) bool {
	if _, ok := m.byID[target]; !ok {
		m.router.Notify(events.SwitchFailed{Target: target, Reason: "unknown universe"})
		return false
	}
	if target == m.active {
		m.router.Notify(events.SwitchFailed{Target: target, Reason: "already active"})
		return false
	}
	if m.switchCooldown > 0 {
		m.router.Notify(events.SwitchFailed{Target: target, Reason: "cooldown", Remaining: m.switchCooldown})
		return false
	}

	from := m.active
	m.active = target
	m.switchCooldown = m.settings.SwitchCooldown
	m.transition = m.settings.SwitchDuration
	m.router.Notify(events.UniverseSwitched{From: from, To: target})
	return true
}

// SwitchNext switches to the universe after the active one, wrapping around.
func (m *Manager) SwitchNext() bool {
	for i, u := range m.universes {
		if u.ID == m.active {
			return m.Switch(m.universes[(i+1)%len(m.universes)].ID)
		}
	}
	return false
}

// Propagate changes a node in the active universe and returns the changes.
// The trigger's own entity is told about its new state too.
func (m *Manager) Propagate(id string, state causal.State) causal.Result {
	return m.PropagateIn(id, state, m.active)
}

// PropagateIn is Propagate for an explicit universe context.
func (m *Manager) PropagateIn(id string, state causal.State, universe string) causal.Result {
	res := m.graph.Propagate(id, state, universe)
	if !res.Empty() {
		if e, ok := m.entities[id]; ok {
			e.OnCausalChange(state, id)
		}
	}
	m.observe()
	return res
}

// Keys returns the keys collected in the current level.
func (m *Manager) Keys() int { return m.keys }

// Pulse fires the paradox pulse: it spends PulseCost paradox and phases the
// player for PulseDuration. It fails while on cooldown or when the meter
// holds less than the cost.
func (m *Manager) Pulse() bool {
	if m.pulseCooldown > 0 {
		return false
	}
	if !m.paradox.Consume(m.settings.PulseCost) {
		return false
	}
	m.pulseCooldown = m.settings.PulseCooldown
	m.pulseActive = m.settings.PulseDuration
	m.router.Notify(events.PulseActivated{Cost: m.settings.PulseCost, Remaining: m.paradox.Level()})
	return true
}

// PulseCooldown returns the seconds until the pulse is ready.
func (m *Manager) PulseCooldown() float64 { return m.pulseCooldown }

// Phasing reports whether a pulse is in effect.
func (m *Manager) Phasing() bool { return m.pulseActive > 0 }

// Update advances the session by dt seconds: timers, paradox decay,
// animated entities and universe stability.
func (m *Manager) Update(dt float64) {
	if dt <= 0 {
		return
	}
	m.switchCooldown = max(0, m.switchCooldown-dt)
	m.transition = max(0, m.transition-dt)
	m.pulseCooldown = max(0, m.pulseCooldown-dt)
	m.pulseActive = max(0, m.pulseActive-dt)

	m.paradox.Update(dt)
	for _, id := range m.order {
		if u, ok := m.entities[id].(entity.Updatable); ok {
			u.Update(dt)
		}
	}
	if m.outcome == OutcomePlaying && m.level != nil {
		m.elapsed += dt
	}
	m.observe()
}

// observe refreshes everything derived from the paradox meter.
func (m *Manager) observe() {
	d := m.paradox.Effects().VisualDistortion
	for _, u := range m.universes {
		u.distort(d)
	}
	m.peak = max(m.peak, m.paradox.Tier())
	if m.outcome == OutcomePlaying && m.level != nil && m.goalsMet() {
		m.outcome = OutcomeCompleted
		m.logger.Info("level completed", "level", m.level.ID, "paradox", m.paradox.Level(), "elapsed", m.elapsed)
	}
}

func (m *Manager) onAnnihilation(events.Event) {
	if m.outcome != OutcomePlaying {
		return
	}
	m.outcome = OutcomeFailed
	id := ""
	if m.level != nil {
		id = m.level.ID
	}
	m.logger.Warn("reality annihilated", "level", id)
	m.router.Notify(events.LevelFailed{LevelID: id, Reason: "annihilation"})
}

// Outcome returns how the current level attempt stands.
func (m *Manager) Outcome() Outcome { return m.outcome }

// Elapsed returns the seconds played in the current level.
func (m *Manager) Elapsed() float64 { return m.elapsed }

// PeakTier returns the highest tier reached in the current level.
func (m *Manager) PeakTier() paradox.Tier { return m.peak }

// Abandon ends a running attempt without completing it.
func (m *Manager) Abandon() {
	if m.outcome == OutcomePlaying {
		m.outcome = OutcomeAbandoned
	}
}

// Reset clears the session back to no level: empty graph, zero paradox,
// start universe, timers cleared.
func (m *Manager) Reset() {
	m.graph.Clear()
	m.paradox.Reset()
	m.active = m.settings.Start
	m.switchCooldown, m.transition = 0, 0
	m.pulseCooldown, m.pulseActive = 0, 0
	m.level = nil
	m.entities = make(map[string]registry.Entity)
	m.order = nil
	m.keys = 0
	m.collected = nil
	m.elapsed = 0
	m.peak = paradox.Stable
	m.outcome = OutcomePlaying
	for _, u := range m.universes {
		u.distort(0)
	}
}

// Status is a one-line summary for logs and the CLI.
func (m *Manager) Status() string {
	return fmt.Sprintf("universe=%s paradox=%.1f tier=%s keys=%d outcome=%s",
		m.active, m.paradox.Level(), m.paradox.Tier(), m.keys, m.outcome)
}
