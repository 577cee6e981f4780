package config

import "fmt"

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// Presets lists the known presets in increasing difficulty.
var Presets = []DifficultyPreset{DifficultyEasy, DifficultyNormal, DifficultyHard}

// ParsePreset converts a name into a preset. Empty means normal.
func ParsePreset(name string) (DifficultyPreset, error) {
	if name == "" {
		return DifficultyNormal, nil
	}
	for _, p := range Presets {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("config: unknown difficulty %q (want easy, normal or hard)", name)
}

// presetScaling holds the multipliers a preset applies.
type presetScaling struct {
	decayRate  float64 // faster decay is easier
	decayDelay float64
	pulseCost  float64
	cooldown   float64 // universe switch cooldown
}

func scalingFor(preset DifficultyPreset) presetScaling {
	switch preset {
	case DifficultyEasy:
		return presetScaling{decayRate: 2.0, decayDelay: 0.5, pulseCost: 0.6, cooldown: 0.6}
	case DifficultyHard:
		return presetScaling{decayRate: 0.5, decayDelay: 1.5, pulseCost: 1.6, cooldown: 1.5}
	default:
		return presetScaling{decayRate: 1, decayDelay: 1, pulseCost: 1, cooldown: 1}
	}
}

// ApplyPreset scales the config for a difficulty preset. Normal leaves it unchanged.
func ApplyPreset(cfg *Config, preset DifficultyPreset) {
	s := scalingFor(preset)
	cfg.Paradox.DecayRate *= s.decayRate
	cfg.Paradox.DecayDelay *= s.decayDelay
	cfg.Abilities.Pulse.Cost *= s.pulseCost
	cfg.Multiverse.SwitchCooldown *= s.cooldown
}
