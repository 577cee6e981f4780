package tui

import (
	"github.com/SamirShaikh03/Fractured-Causality/internal/causal"
	"github.com/SamirShaikh03/Fractured-Causality/internal/core"
)

const maxOverlayLabel = 12

type glyph struct {
	r rune
	c core.Color
}

var stateGlyphs = map[causal.State]glyph{
	causal.StateExists:    {'●', core.ColorWhite},
	causal.StateDestroyed: {'✕', core.ColorRed},
	causal.StateActive:    {'◆', core.ColorBrightGreen},
	causal.StateInactive:  {'◇', core.ColorGray},
	causal.StateOpen:      {'▢', core.ColorBrightCyan},
	causal.StateClosed:    {'▣', core.ColorBlue},
	causal.StateOn:        {'◉', core.ColorBrightYellow},
	causal.StateOff:       {'○', core.ColorYellow},
}

// stateGlyph returns the overlay rune and colour for a node state.
func stateGlyph(s causal.State) (rune, core.Color) {
	g, ok := stateGlyphs[s]
	if !ok {
		return '?', core.ColorDefault
	}
	return g.r, g.c
}

// DrawOverlay renders the causal-sight view of v onto s: every existing node
// at its scaled world position with a state glyph and label, every edge as a
// line, and the last propagation trace highlighted. Orphaned nodes are
// magenta and the selected node is labelled in bright white.
func DrawOverlay(s *core.Screen, v causal.Visualization, selected string) {
	s.Clear()
	if s.Width() < 8 || s.Height() < 4 {
		return
	}
	s.DrawBox(s.Bounds(), core.ColorGray)
	s.DrawText(2, 0, " causal sight ", core.ColorBrightMagenta)

	labelW := 0
	for _, n := range v.Nodes {
		labelW = max(labelW, min(len([]rune(n.ID)), maxOverlayLabel))
	}
	inner := s.Bounds().Inset(1)
	area := core.NewRect(inner.X+1, inner.Y, max(1, inner.W-labelW-3), inner.H)

	xs := make([]float64, len(v.Nodes))
	ys := make([]float64, len(v.Nodes))
	for i, n := range v.Nodes {
		xs[i], ys[i] = n.X, n.Y
	}
	proj := core.Fit(xs, ys, area)

	at := make(map[string]core.Point, len(v.Nodes))
	for _, n := range v.Nodes {
		at[n.ID] = proj.Project(n.X, n.Y)
	}

	// Trace first: DrawLine never overwrites, so highlighted cells win.
	onPath := make(map[causal.Edge]bool, len(v.LastPath))
	for _, e := range v.LastPath {
		onPath[e] = true
		from, okFrom := at[e.From]
		to, okTo := at[e.To]
		if okFrom && okTo {
			s.DrawLine(from, to, core.ColorBrightYellow)
		}
	}
	for _, e := range v.Edges {
		if onPath[causal.Edge{From: e.From, To: e.To}] {
			continue
		}
		from, okFrom := at[e.From]
		to, okTo := at[e.To]
		if okFrom && okTo {
			s.DrawLine(from, to, core.ColorGray)
		}
	}

	occupied := make(map[core.Point]bool, len(v.Nodes))
	for _, n := range v.Nodes {
		p := at[n.ID]
		r, c := stateGlyph(n.State)
		if n.Orphaned {
			c = core.ColorBrightMagenta
		}
		s.SetColored(p.X, p.Y, r, c)
		occupied[p] = true
	}

	for _, n := range v.Nodes {
		p := at[n.ID]
		var c core.Color
		switch {
		case n.ID == selected:
			c = core.ColorBrightWhite
		case n.Orphaned:
			c = core.ColorMagenta
		default:
			c = core.ColorGray
		}
		x := p.X + 2
		for _, r := range truncate(n.ID, maxOverlayLabel) {
			if x >= inner.Right() {
				break
			}
			if !occupied[core.Point{X: x, Y: p.Y}] {
				s.SetColored(x, p.Y, r, c)
			}
			x++
		}
		if n.ID == selected {
			s.SetColored(p.X+1, p.Y, '◂', core.ColorBrightWhite)
		}
	}
}
