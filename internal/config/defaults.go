package config

import (
	_ "embed"
)

//go:embed defaults/causality.yaml
var defaultYAML []byte

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Paradox: ParadoxConfig{
			Max:             100,
			DecayRate:       0.5,
			DecayDelay:      2.0,
			DangerThreshold: 75,
			Tiers: TierBounds{
				Unstable: 25,
				Critical: 50,
				Collapse: 75,
			},
			SourceLimit:  50,
			HistoryLimit: 100,
		},
		Multiverse: MultiverseConfig{
			SwitchCooldown: 0.5,
			SwitchDuration: 0.3,
			Start:          "prime",
			Universes: []UniverseConfig{
				{ID: "prime", Name: "Prime", Sensitivity: 0.1, Color: "#6496FF"},
				{ID: "echo", Name: "Echo", Sensitivity: 0.3, Color: "#64FF96"},
				{ID: "fracture", Name: "Fracture", Sensitivity: 0.5, Color: "#FF6464"},
			},
		},
		Abilities: AbilitiesConfig{
			Pulse: PulseConfig{
				Cost:     5,
				Cooldown: 2.0,
				Duration: 0.5,
			},
		},
		Storage: StorageConfig{
			DB: "~/.causality/causality.db",
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
