package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/SamirShaikh03/Fractured-Causality/internal/core"
)

// SandboxKeyMap defines the key bindings of the sandbox.
type SandboxKeyMap struct {
	Up           key.Binding
	Down         key.Binding
	Destroy      key.Binding
	Restore      key.Binding
	ToggleOpen   key.Binding
	ToggleActive key.Binding
	TogglePower  key.Binding
	Use          key.Binding
	Universe1    key.Binding
	Universe2    key.Binding
	Universe3    key.Binding
	Pulse        key.Binding
	Overlay      key.Binding
	Save         key.Binding
	Help         key.Binding
	Back         key.Binding
	Quit         key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k SandboxKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Use, k.Destroy, k.Overlay, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k SandboxKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Use},
		{k.Destroy, k.Restore, k.ToggleOpen, k.ToggleActive, k.TogglePower},
		{k.Universe1, k.Universe2, k.Universe3, k.Pulse},
		{k.Overlay, k.Save, k.Help, k.Back, k.Quit},
	}
}

// DefaultSandboxKeyMap returns default key bindings.
func DefaultSandboxKeyMap() SandboxKeyMap {
	return SandboxKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "prev node"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "next node"),
		),
		Destroy: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "destroy"),
		),
		Restore: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "restore"),
		),
		ToggleOpen: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open/close"),
		),
		ToggleActive: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "activate"),
		),
		TogglePower: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "on/off"),
		),
		Use: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "use"),
		),
		Universe1: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "prime"),
		),
		Universe2: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "echo"),
		),
		Universe3: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "fracture"),
		),
		Pulse: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pulse"),
		),
		Overlay: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "causal sight"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "quick save"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc", "levels"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// KeyMapper translates Bubble Tea key messages to sandbox actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct {
	keys SandboxKeyMap
}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{keys: DefaultSandboxKeyMap()}
}

// Keys returns the bindings, for help rendering.
func (km *KeyMapper) Keys() SandboxKeyMap {
	return km.keys
}

// MapKey translates a key message to a sandbox action.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) core.Action {
	k := km.keys
	bindings := []struct {
		binding key.Binding
		action  core.Action
	}{
		{k.Quit, core.ActionQuit},
		{k.Up, core.ActionUp},
		{k.Down, core.ActionDown},
		{k.Destroy, core.ActionDestroy},
		{k.Restore, core.ActionRestore},
		{k.ToggleOpen, core.ActionToggleOpen},
		{k.ToggleActive, core.ActionToggleActive},
		{k.TogglePower, core.ActionTogglePower},
		{k.Use, core.ActionUse},
		{k.Universe1, core.ActionUniverse1},
		{k.Universe2, core.ActionUniverse2},
		{k.Universe3, core.ActionUniverse3},
		{k.Pulse, core.ActionPulse},
		{k.Overlay, core.ActionOverlay},
		{k.Save, core.ActionSave},
		{k.Help, core.ActionHelp},
		{k.Back, core.ActionBack},
	}
	for _, b := range bindings {
		if key.Matches(msg, b.binding) {
			return b.action
		}
	}
	return core.ActionNone
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionRuns
	MenuActionBack
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "tab", "r":
		return MenuActionRuns
	case "b", "esc":
		return MenuActionBack
	}

	return MenuActionNone
}
