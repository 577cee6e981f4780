// Package config provides YAML-based configuration loading, environment
// overrides and difficulty presets for Fractured Causality.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/SamirShaikh03/Fractured-Causality/internal/multiverse"
	"github.com/SamirShaikh03/Fractured-Causality/internal/paradox"
)

var validate = validator.New()

// Config is the complete game configuration.
type Config struct {
	Paradox    ParadoxConfig    `yaml:"paradox"`
	Multiverse MultiverseConfig `yaml:"multiverse"`
	Abilities  AbilitiesConfig  `yaml:"abilities"`
	Storage    StorageConfig    `yaml:"storage"`
}

// ParadoxConfig tunes the paradox meter.
type ParadoxConfig struct {
	Max             float64    `yaml:"max" env:"CAUSALITY_PARADOX_MAX" validate:"gt=0"`
	DecayRate       float64    `yaml:"decay_rate" env:"CAUSALITY_DECAY_RATE" validate:"gte=0"`
	DecayDelay      float64    `yaml:"decay_delay" env:"CAUSALITY_DECAY_DELAY" validate:"gte=0"`
	DangerThreshold float64    `yaml:"danger_threshold" validate:"gt=0"`
	Tiers           TierBounds `yaml:"tiers"`
	SourceLimit     int        `yaml:"source_limit" validate:"gt=0"`
	HistoryLimit    int        `yaml:"history_limit" validate:"gt=0"`
}

// TierBounds are the levels above which each tier starts.
type TierBounds struct {
	Unstable float64 `yaml:"unstable" validate:"gt=0"`
	Critical float64 `yaml:"critical" validate:"gtfield=Unstable"`
	Collapse float64 `yaml:"collapse" validate:"gtfield=Critical"`
}

// MultiverseConfig tunes universe switching.
type MultiverseConfig struct {
	SwitchCooldown float64          `yaml:"switch_cooldown" env:"CAUSALITY_SWITCH_COOLDOWN" validate:"gte=0"`
	SwitchDuration float64          `yaml:"switch_duration" validate:"gte=0"`
	Start          string           `yaml:"start" validate:"required"`
	Universes      []UniverseConfig `yaml:"universes" validate:"min=1,dive"`
}

// UniverseConfig describes one parallel universe.
type UniverseConfig struct {
	ID   string `yaml:"id" validate:"required"`
	Name string `yaml:"name" validate:"required"`
	// Sensitivity is how strongly paradox distortion erodes the universe's
	// stability: stability = 1 - sensitivity * distortion.
	Sensitivity float64 `yaml:"sensitivity" validate:"gte=0,lte=1"`
	Color       string  `yaml:"color"`
}

// AbilitiesConfig tunes the player's paradox abilities.
type AbilitiesConfig struct {
	Pulse PulseConfig `yaml:"pulse"`
}

// PulseConfig tunes the paradox pulse.
type PulseConfig struct {
	Cost     float64 `yaml:"cost" validate:"gte=0"`
	Cooldown float64 `yaml:"cooldown" validate:"gte=0"`
	Duration float64 `yaml:"duration" validate:"gte=0"`
}

// StorageConfig locates the SQLite database.
type StorageConfig struct {
	DB string `yaml:"db" env:"CAUSALITY_DB" validate:"required"`
}

// Validate checks field ranges and that the tier bands are contiguous.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.ParadoxSettings().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	found := false
	for _, u := range c.Multiverse.Universes {
		if u.ID == c.Multiverse.Start {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("config: start universe %q is not defined", c.Multiverse.Start)
	}
	return nil
}

// ParadoxSettings converts the paradox section for the paradox manager.
func (c Config) ParadoxSettings() paradox.Settings {
	p := c.Paradox
	return paradox.Settings{
		Max:             p.Max,
		DecayRate:       p.DecayRate,
		DecayDelay:      p.DecayDelay,
		DangerThreshold: p.DangerThreshold,
		UnstableAbove:   p.Tiers.Unstable,
		CriticalAbove:   p.Tiers.Critical,
		CollapseAbove:   p.Tiers.Collapse,
		SourceLimit:     p.SourceLimit,
		HistoryLimit:    p.HistoryLimit,
	}
}

// MultiverseSettings converts the multiverse and abilities sections for a
// multiverse session.
func (c Config) MultiverseSettings() multiverse.Settings {
	s := multiverse.Settings{
		Paradox:        c.ParadoxSettings(),
		SwitchCooldown: c.Multiverse.SwitchCooldown,
		SwitchDuration: c.Multiverse.SwitchDuration,
		Start:          c.Multiverse.Start,
		PulseCost:      c.Abilities.Pulse.Cost,
		PulseCooldown:  c.Abilities.Pulse.Cooldown,
		PulseDuration:  c.Abilities.Pulse.Duration,
	}
	for _, u := range c.Multiverse.Universes {
		s.Universes = append(s.Universes, multiverse.UniverseSpec{
			ID:          u.ID,
			Name:        u.Name,
			Sensitivity: u.Sensitivity,
			Color:       u.Color,
		})
	}
	return s
}
