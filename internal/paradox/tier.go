// Package paradox implements the paradox meter: a bounded level that rises
// when causality is broken, decays after a quiet period, and maps onto tiers
// that drive visual and gameplay effects.
package paradox

import (
	"errors"
	"fmt"
)

// Tier is a band of the paradox level.
type Tier int

const (
	Stable Tier = iota
	Unstable
	Critical
	Collapse
	Annihilation
)

var tierNames = [...]string{"stable", "unstable", "critical", "collapse", "annihilation"}

func (t Tier) String() string {
	if t < Stable || t > Annihilation {
		return "unknown"
	}
	return tierNames[t]
}

// Settings tunes a Manager.
type Settings struct {
	Max             float64 // level ceiling; reaching it is annihilation
	DecayRate       float64 // level lost per second once decay is running
	DecayDelay      float64 // quiet seconds before decay starts
	DangerThreshold float64 // crossing upward emits DangerCrossed

	// Tier bands are (lower, upper]. Stable is [0, UnstableAbove].
	UnstableAbove float64
	CriticalAbove float64
	CollapseAbove float64

	SourceLimit  int // recent sources kept
	HistoryLimit int // level samples kept
}

// DefaultSettings returns the standard tuning.
func DefaultSettings() Settings {
	return Settings{
		Max:             100,
		DecayRate:       0.5,
		DecayDelay:      2.0,
		DangerThreshold: 75,
		UnstableAbove:   25,
		CriticalAbove:   50,
		CollapseAbove:   75,
		SourceLimit:     50,
		HistoryLimit:    100,
	}
}

// Validate checks that the tier bands are contiguous and ordered.
func (s Settings) Validate() error {
	var errs []error
	if s.Max <= 0 {
		errs = append(errs, fmt.Errorf("max must be positive, got %v", s.Max))
	}
	if s.DecayRate < 0 || s.DecayDelay < 0 {
		errs = append(errs, errors.New("decay rate and delay must not be negative"))
	}
	if !(0 < s.UnstableAbove && s.UnstableAbove < s.CriticalAbove &&
		s.CriticalAbove < s.CollapseAbove && s.CollapseAbove < s.Max) {
		errs = append(errs, fmt.Errorf("tier bounds must satisfy 0 < %v < %v < %v < %v",
			s.UnstableAbove, s.CriticalAbove, s.CollapseAbove, s.Max))
	}
	if s.DangerThreshold <= 0 || s.DangerThreshold > s.Max {
		errs = append(errs, fmt.Errorf("danger threshold %v outside (0, %v]", s.DangerThreshold, s.Max))
	}
	if s.SourceLimit <= 0 || s.HistoryLimit <= 0 {
		errs = append(errs, errors.New("source and history limits must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("paradox: invalid settings: %w", errors.Join(errs...))
	}
	return nil
}

// TierFor returns the tier containing level.
func (s Settings) TierFor(level float64) Tier {
	switch {
	case level >= s.Max:
		return Annihilation
	case level > s.CollapseAbove:
		return Collapse
	case level > s.CriticalAbove:
		return Critical
	case level > s.UnstableAbove:
		return Unstable
	default:
		return Stable
	}
}

// Band returns the inclusive lower and upper level of tier t. For every tier
// but Stable the lower bound itself belongs to the tier below.
func (s Settings) Band(t Tier) (low, high float64) {
	switch t {
	case Stable:
		return 0, s.UnstableAbove
	case Unstable:
		return s.UnstableAbove, s.CriticalAbove
	case Critical:
		return s.CriticalAbove, s.CollapseAbove
	case Collapse:
		return s.CollapseAbove, s.Max
	default:
		return s.Max, s.Max
	}
}

// Effects is what rendering and gameplay read from the meter.
type Effects struct {
	Tier             Tier
	VisualDistortion float64
	RealityTears     bool // traversal through tears is possible
	ScreenShake      bool
	ColorShift       float64
	GlitchIntensity  float64
}

var distortion = [...]float64{
	Stable:       0,
	Unstable:     0.2,
	Critical:     0.5,
	Collapse:     0.8,
	Annihilation: 1.0,
}

// EffectsFor returns the effects of tier t.
func EffectsFor(t Tier) Effects {
	d := 1.0
	if t >= Stable && t <= Annihilation {
		d = distortion[t]
	}
	unstable := t == Critical || t == Collapse
	return Effects{
		Tier:             t,
		VisualDistortion: d,
		RealityTears:     unstable,
		ScreenShake:      unstable,
		ColorShift:       d * 0.3,
		GlitchIntensity:  d,
	}
}
