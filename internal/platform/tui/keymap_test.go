package tui

import (
	"testing"

	"github.com/SamirShaikh03/Fractured-Causality/internal/core"
)

func TestMapKey(t *testing.T) {
	km := NewKeyMapper()

	tests := []struct {
		key      string
		expected core.Action
	}{
		{"up", core.ActionUp},
		{"k", core.ActionUp},
		{"down", core.ActionDown},
		{"j", core.ActionDown},
		{"d", core.ActionDestroy},
		{"e", core.ActionRestore},
		{"o", core.ActionToggleOpen},
		{"a", core.ActionToggleActive},
		{"n", core.ActionTogglePower},
		{"enter", core.ActionUse},
		{"1", core.ActionUniverse1},
		{"2", core.ActionUniverse2},
		{"3", core.ActionUniverse3},
		{"p", core.ActionPulse},
		{"tab", core.ActionOverlay},
		{"s", core.ActionSave},
		{"?", core.ActionHelp},
		{"esc", core.ActionBack},
		{"q", core.ActionQuit},
		{"ctrl+c", core.ActionQuit},
		{"x", core.ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := km.MapKey(keyMsg(tt.key)); got != tt.expected {
				t.Errorf("MapKey(%q) = %s, expected %s", tt.key, got, tt.expected)
			}
		})
	}
}

func TestMapKeyToMenuAction(t *testing.T) {
	km := NewKeyMapper()

	tests := []struct {
		key      string
		expected MenuAction
	}{
		{"up", MenuActionUp},
		{"w", MenuActionUp},
		{"down", MenuActionDown},
		{"s", MenuActionDown},
		{"enter", MenuActionSelect},
		{"tab", MenuActionRuns},
		{"esc", MenuActionBack},
		{"q", MenuActionQuit},
		{"z", MenuActionNone},
	}

	for _, tt := range tests {
		if got := km.MapKeyToMenuAction(keyMsg(tt.key)); got != tt.expected {
			t.Errorf("MapKeyToMenuAction(%q) = %d, expected %d", tt.key, got, tt.expected)
		}
	}
}

func TestHelpListsEveryBinding(t *testing.T) {
	keys := DefaultSandboxKeyMap()
	count := 0
	for _, col := range keys.FullHelp() {
		for _, b := range col {
			if b.Help().Key == "" {
				t.Errorf("binding %v has no help text", b.Keys())
			}
			count++
		}
	}
	if count != 17 {
		t.Errorf("FullHelp lists %d bindings, expected 17", count)
	}
}
