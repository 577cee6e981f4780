// Package events defines the notifications emitted by the causal graph, the
// paradox manager and the multiverse session, plus the sinks that receive them.
//
// Notifiers are injected; nothing in this package is global.
package events

// Kind identifies the type of an event for routing.
type Kind int

const (
	KindLinkCreated Kind = iota
	KindLinkBroken
	KindPropagationStarted
	KindPropagationCompleted
	KindParadoxChanged
	KindTierChanged
	KindDangerCrossed
	KindAnnihilation
	KindUniverseSwitched
	KindSwitchFailed
	KindLevelLoaded
	KindLevelFailed
	KindPulseActivated
)

var kindNames = [...]string{
	KindLinkCreated:          "link_created",
	KindLinkBroken:           "link_broken",
	KindPropagationStarted:   "propagation_started",
	KindPropagationCompleted: "propagation_completed",
	KindParadoxChanged:       "paradox_changed",
	KindTierChanged:          "tier_changed",
	KindDangerCrossed:        "danger_crossed",
	KindAnnihilation:         "annihilation",
	KindUniverseSwitched:     "universe_switched",
	KindSwitchFailed:         "switch_failed",
	KindLevelLoaded:          "level_loaded",
	KindLevelFailed:          "level_failed",
	KindPulseActivated:       "pulse_activated",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Event is a notification. The set of events is closed.
type Event interface {
	Kind() Kind
	event()
}

// LinkCreated is emitted after a dependency edge is added.
type LinkCreated struct {
	SourceID string
	TargetID string
	Operator string
}

func (LinkCreated) Kind() Kind { return KindLinkCreated }
func (LinkCreated) event()     {}

// LinkBroken is emitted after the edges from SourceID to TargetID are removed.
type LinkBroken struct {
	SourceID string
	TargetID string
}

func (LinkBroken) Kind() Kind { return KindLinkBroken }
func (LinkBroken) event()     {}

// PropagationStarted is emitted once the source node's new state is committed.
type PropagationStarted struct {
	SourceID string
	NewState string
}

func (PropagationStarted) Kind() Kind { return KindPropagationStarted }
func (PropagationStarted) event()     {}

// PropagationCompleted is emitted at the end of a propagation.
type PropagationCompleted struct {
	SourceID string
	Changes  int
	Paradox  float64
}

func (PropagationCompleted) Kind() Kind { return KindPropagationCompleted }
func (PropagationCompleted) event()     {}

// ParadoxChanged is emitted whenever the paradox level is written.
type ParadoxChanged struct {
	OldLevel float64
	NewLevel float64
	Delta    float64
	Source   string
	Tier     string
}

func (ParadoxChanged) Kind() Kind { return KindParadoxChanged }
func (ParadoxChanged) event()     {}

// TierChanged is emitted when the paradox level moves into another band.
type TierChanged struct {
	OldTier string
	NewTier string
	Level   float64
}

func (TierChanged) Kind() Kind { return KindTierChanged }
func (TierChanged) event()     {}

// DangerCrossed is emitted when the level rises past the danger threshold.
type DangerCrossed struct {
	Level float64
}

func (DangerCrossed) Kind() Kind { return KindDangerCrossed }
func (DangerCrossed) event()     {}

// Annihilation is emitted when the level reaches its maximum.
type Annihilation struct {
	Level float64
}

func (Annihilation) Kind() Kind { return KindAnnihilation }
func (Annihilation) event()     {}

// UniverseSwitched is emitted after the active universe changes.
type UniverseSwitched struct {
	From string
	To   string
}

func (UniverseSwitched) Kind() Kind { return KindUniverseSwitched }
func (UniverseSwitched) event()     {}

// SwitchFailed is emitted when a universe switch is refused.
type SwitchFailed struct {
	Target    string
	Reason    string
	Remaining float64 // cooldown seconds left, 0 when not on cooldown
}

func (SwitchFailed) Kind() Kind { return KindSwitchFailed }
func (SwitchFailed) event()     {}

// LevelLoaded is emitted after a level's causal setup is in place.
type LevelLoaded struct {
	LevelID      string
	Nodes        int
	Dependencies int
}

func (LevelLoaded) Kind() Kind { return KindLevelLoaded }
func (LevelLoaded) event()     {}

// LevelFailed is emitted when a level ends in annihilation.
type LevelFailed struct {
	LevelID string
	Reason  string
}

func (LevelFailed) Kind() Kind { return KindLevelFailed }
func (LevelFailed) event()     {}

// PulseActivated is emitted when the paradox pulse ability fires.
type PulseActivated struct {
	Cost      float64
	Remaining float64 // paradox left after paying the cost
}

func (PulseActivated) Kind() Kind { return KindPulseActivated }
func (PulseActivated) event()     {}
