package core

// Action represents a semantic sandbox action, abstracted from physical key presses.
// This allows the session logic to work with intents rather than raw input.
type Action int

const (
	ActionNone         Action = iota
	ActionUp                  // Up, K - previous node
	ActionDown                // Down, J - next node
	ActionDestroy             // D - set DESTROYED
	ActionRestore             // E - set EXISTS
	ActionToggleOpen          // O - OPEN <-> CLOSED
	ActionToggleActive        // A - ACTIVE <-> INACTIVE
	ActionTogglePower         // N - ON <-> OFF
	ActionUse                 // Enter - use or collect the entity
	ActionUniverse1           // 1
	ActionUniverse2           // 2
	ActionUniverse3           // 3
	ActionPulse               // P - paradox pulse
	ActionOverlay             // Tab - causal-sight overlay
	ActionSave                // S - quick save
	ActionHelp                // ? - toggle help
	ActionBack                // Esc - back to the level menu
	ActionQuit                // Q, Ctrl+C - exit
)

var actionNames = [...]string{
	ActionNone:         "None",
	ActionUp:           "Up",
	ActionDown:         "Down",
	ActionDestroy:      "Destroy",
	ActionRestore:      "Restore",
	ActionToggleOpen:   "ToggleOpen",
	ActionToggleActive: "ToggleActive",
	ActionTogglePower:  "TogglePower",
	ActionUse:          "Use",
	ActionUniverse1:    "Universe1",
	ActionUniverse2:    "Universe2",
	ActionUniverse3:    "Universe3",
	ActionPulse:        "Pulse",
	ActionOverlay:      "Overlay",
	ActionSave:         "Save",
	ActionHelp:         "Help",
	ActionBack:         "Back",
	ActionQuit:         "Quit",
}

// String returns a human-readable name for the action.
func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "Unknown"
	}
	return actionNames[a]
}

// UniverseIndex returns the zero-based universe slot for the universe
// actions, or -1.
func (a Action) UniverseIndex() int {
	switch a {
	case ActionUniverse1:
		return 0
	case ActionUniverse2:
		return 1
	case ActionUniverse3:
		return 2
	default:
		return -1
	}
}
