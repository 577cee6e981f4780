package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/SamirShaikh03/Fractured-Causality/internal/paradox"
)

// Theme contains all configurable visual styles for the sandbox.
type Theme struct {
	// Paradox meter, one style per tier
	Tiers [5]lipgloss.Style

	// HUD styles
	HUDTitle     lipgloss.Style
	HUDValue     lipgloss.Style
	HUDSeparator lipgloss.Style
	HUDControls  lipgloss.Style

	// Universe tabs
	UniverseActive   lipgloss.Style
	UniverseInactive lipgloss.Style

	// Node list
	NodeNormal   lipgloss.Style
	NodeSelected lipgloss.Style
	NodeAbsent   lipgloss.Style // not present in the active universe
	NodeOrphan   lipgloss.Style

	// Side panel
	PanelBorder lipgloss.Style
	GoalMet     lipgloss.Style
	GoalPending lipgloss.Style

	// Banners
	Message   lipgloss.Style
	Completed lipgloss.Style
	Failed    lipgloss.Style

	// Level picker
	MenuTitle       lipgloss.Style
	MenuItemNormal  lipgloss.Style
	MenuItemActive  lipgloss.Style
	MenuDescription lipgloss.Style
}

// DefaultTheme returns the default visual theme.
func DefaultTheme() Theme {
	return Theme{
		Tiers: [5]lipgloss.Style{
			paradox.Stable:       lipgloss.NewStyle().Foreground(lipgloss.Color("46")),  // Green
			paradox.Unstable:     lipgloss.NewStyle().Foreground(lipgloss.Color("226")), // Yellow
			paradox.Critical:     lipgloss.NewStyle().Foreground(lipgloss.Color("208")), // Orange
			paradox.Collapse:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
			paradox.Annihilation: lipgloss.NewStyle().Foreground(lipgloss.Color("201")).Bold(true).Blink(true),
		},

		HUDTitle:     lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
		HUDValue:     lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		HUDSeparator: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		HUDControls:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),

		UniverseActive: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 1),
		UniverseInactive: lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1),

		NodeNormal:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		NodeSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		NodeAbsent:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		NodeOrphan:   lipgloss.NewStyle().Foreground(lipgloss.Color("201")),

		PanelBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		GoalMet:     lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
		GoalPending: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

		Message:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Italic(true),
		Completed: lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true),
		Failed:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),

		MenuTitle:       lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
		MenuItemNormal:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		MenuItemActive:  lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		MenuDescription: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// MonochromeTheme returns a grayscale theme for terminals without colour.
func MonochromeTheme() Theme {
	theme := DefaultTheme()
	for i := range theme.Tiers {
		theme.Tiers[i] = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	}
	theme.Tiers[paradox.Collapse] = theme.Tiers[paradox.Collapse].Bold(true)
	theme.Tiers[paradox.Annihilation] = theme.Tiers[paradox.Annihilation].Bold(true).Reverse(true)
	theme.NodeOrphan = lipgloss.NewStyle().Underline(true)
	return theme
}

// Tier returns the meter style for tier t.
func (t Theme) Tier(tier paradox.Tier) lipgloss.Style {
	if int(tier) < 0 || int(tier) >= len(t.Tiers) {
		return t.HUDValue
	}
	return t.Tiers[tier]
}
