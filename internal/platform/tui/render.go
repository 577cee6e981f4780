package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/SamirShaikh03/Fractured-Causality/internal/core"
	"github.com/SamirShaikh03/Fractured-Causality/internal/paradox"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = func() map[core.Color]lipgloss.Style {
	styles := make(map[core.Color]lipgloss.Style)
	for c := core.ColorDefault; c <= core.ColorGray; c++ {
		style := lipgloss.NewStyle()
		if code := c.ANSI(); code != "" {
			style = style.Foreground(lipgloss.Color(code))
		}
		styles[c] = style
	}
	return styles
}()

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := 0; y < s.Height(); y++ {
		if y > 0 {
			sb.WriteRune('\n')
		}
		for _, run := range s.Runs(y) {
			style, ok := colorStyles[run.Color]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.Text))
		}
	}
	return sb.String()
}

// meterBar draws the paradox level as a bar of width cells.
func meterBar(level, maxLevel float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if maxLevel > 0 {
		filled = core.Clamp(int(level/maxLevel*float64(width)+0.5), 0, width)
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// RenderMeter renders the paradox meter coloured by tier.
func RenderMeter(theme Theme, level, maxLevel float64, tier paradox.Tier, width int) string {
	label := fmt.Sprintf(" %5.1f/%-3.0f %s", level, maxLevel, strings.ToUpper(tier.String()))
	barWidth := max(8, width-lipgloss.Width(label)-len("PARADOX "))
	style := theme.Tier(tier)
	return theme.HUDTitle.Render("PARADOX ") + style.Render(meterBar(level, maxLevel, barWidth)+label)
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text
}

// truncate shortens s to at most n runes, marking the cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:max(0, n)])
	}
	return string(r[:n-1]) + "…"
}
