// Package multiverse runs a play session: one causal graph and one paradox
// meter shared by a set of parallel universes, with universe switching, the
// paradox pulse, level loading and save/restore.
package multiverse

import (
	"errors"
	"fmt"

	"github.com/SamirShaikh03/Fractured-Causality/internal/core"
	"github.com/SamirShaikh03/Fractured-Causality/internal/paradox"
)

// UniverseSpec describes one parallel universe.
type UniverseSpec struct {
	ID          string
	Name        string
	Sensitivity float64 // how strongly distortion erodes stability
	Color       string
}

// Settings tunes a session.
type Settings struct {
	Paradox        paradox.Settings
	SwitchCooldown float64 // seconds between switches
	SwitchDuration float64 // seconds of transition after a switch
	Start          string
	Universes      []UniverseSpec
	PulseCost      float64
	PulseCooldown  float64
	PulseDuration  float64
}

// DefaultSettings returns the standard three-universe setup.
func DefaultSettings() Settings {
	return Settings{
		Paradox:        paradox.DefaultSettings(),
		SwitchCooldown: 0.5,
		SwitchDuration: 0.3,
		Start:          "prime",
		Universes: []UniverseSpec{
			{ID: "prime", Name: "Prime", Sensitivity: 0.1, Color: "#6496FF"},
			{ID: "echo", Name: "Echo", Sensitivity: 0.3, Color: "#64FF96"},
			{ID: "fracture", Name: "Fracture", Sensitivity: 0.5, Color: "#FF6464"},
		},
		PulseCost:     5,
		PulseCooldown: 2,
		PulseDuration: 0.5,
	}
}

// Validate checks that the universes are usable.
func (s Settings) Validate() error {
	if len(s.Universes) == 0 {
		return errors.New("multiverse: no universes defined")
	}
	seen := make(map[string]bool, len(s.Universes))
	for _, u := range s.Universes {
		if u.ID == "" {
			return errors.New("multiverse: universe without id")
		}
		if seen[u.ID] {
			return fmt.Errorf("multiverse: duplicate universe %q", u.ID)
		}
		seen[u.ID] = true
	}
	if !seen[s.Start] {
		return fmt.Errorf("multiverse: start universe %q is not defined", s.Start)
	}
	return s.Paradox.Validate()
}

// Universe is one parallel universe in a running session.
type Universe struct {
	UniverseSpec
	stability float64
}

func newUniverse(spec UniverseSpec) *Universe {
	return &Universe{UniverseSpec: spec, stability: 1}
}

// Stability is 1 when the meter is calm and falls as distortion grows.
func (u *Universe) Stability() float64 { return u.stability }

func (u *Universe) distort(distortion float64) {
	u.stability = core.ClampF(1-u.Sensitivity*distortion, 0, 1)
}
