package core

import "testing"

func TestRectContains(t *testing.T) {
	r := NewRect(10, 10, 5, 5)

	tests := []struct {
		x, y     int
		expected bool
	}{
		{10, 10, true},  // Top-left corner
		{14, 14, true},  // Bottom-right inside
		{15, 15, false}, // Just outside
		{12, 12, true},  // Center
		{9, 10, false},  // Left of rect
		{10, 9, false},  // Above rect
	}

	for _, tt := range tests {
		if got := r.Contains(tt.x, tt.y); got != tt.expected {
			t.Errorf("Contains(%d, %d) = %v, expected %v", tt.x, tt.y, got, tt.expected)
		}
	}
}

func TestRectEdges(t *testing.T) {
	r := NewRect(10, 20, 30, 40)

	if r.Right() != 40 {
		t.Errorf("Right() = %d, expected 40", r.Right())
	}
	if r.Bottom() != 60 {
		t.Errorf("Bottom() = %d, expected 60", r.Bottom())
	}
}

func TestRectInset(t *testing.T) {
	r := NewRect(0, 0, 10, 6).Inset(1)
	if r != NewRect(1, 1, 8, 4) {
		t.Errorf("Inset(1) = %+v", r)
	}
	if r := NewRect(0, 0, 2, 2).Inset(3); r.W != 0 || r.H != 0 {
		t.Errorf("over-inset should give an empty rect, got %+v", r)
	}
}

func TestLine(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want []Point
	}{
		{"single", Point{2, 2}, Point{2, 2}, []Point{{2, 2}}},
		{"horizontal", Point{0, 0}, Point{3, 0}, []Point{{0, 0}, {1, 0}, {2, 0}, {3, 0}}},
		{"reverse", Point{0, 2}, Point{0, 0}, []Point{{0, 2}, {0, 1}, {0, 0}}},
		{"diagonal", Point{0, 0}, Point{2, 2}, []Point{{0, 0}, {1, 1}, {2, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Line(tt.a, tt.b)
			if len(got) != len(tt.want) {
				t.Fatalf("Line = %v, expected %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Line[%d] = %v, expected %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLineSteep(t *testing.T) {
	got := Line(Point{0, 0}, Point{2, 6})
	if got[0] != (Point{0, 0}) || got[len(got)-1] != (Point{2, 6}) {
		t.Fatalf("Line endpoints = %v", got)
	}
	if len(got) != 7 {
		t.Errorf("steep line should visit one cell per row, got %d", len(got))
	}
}

func TestProjection(t *testing.T) {
	xs := []float64{-5, 0, 5}
	ys := []float64{10, 20, 30}
	p := Fit(xs, ys, NewRect(2, 1, 11, 5))

	tests := []struct {
		x, y float64
		want Point
	}{
		{-5, 10, Point{2, 1}},
		{5, 30, Point{12, 5}},
		{0, 20, Point{7, 3}},
		{100, -100, Point{12, 1}}, // clamped
	}
	for _, tt := range tests {
		if got := p.Project(tt.x, tt.y); got != tt.want {
			t.Errorf("Project(%v, %v) = %v, expected %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestProjectionDegenerate(t *testing.T) {
	// A single point sits in the middle of the area.
	p := Fit([]float64{3}, []float64{3}, NewRect(0, 0, 10, 4))
	if got := p.Project(3, 3); got != (Point{5, 2}) {
		t.Errorf("Project = %v, expected {5 2}", got)
	}

	empty := Fit(nil, nil, NewRect(1, 1, 4, 4))
	if got := empty.Project(0, 0); !NewRect(1, 1, 4, 4).Contains(got.X, got.Y) {
		t.Errorf("empty projection should stay inside the area, got %v", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, lo, hi, expected int
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
		{0, 0, 10, 0},
		{10, 0, 10, 10},
	}

	for _, tt := range tests {
		if got := Clamp(tt.val, tt.lo, tt.hi); got != tt.expected {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tt.val, tt.lo, tt.hi, got, tt.expected)
		}
	}
}

func TestClampF(t *testing.T) {
	tests := []struct {
		val, lo, hi, expected float64
	}{
		{5.5, 0, 10, 5.5},
		{-5.5, 0, 10, 0},
		{15.5, 0, 10, 10},
	}

	for _, tt := range tests {
		if got := ClampF(tt.val, tt.lo, tt.hi); got != tt.expected {
			t.Errorf("ClampF(%f, %f, %f) = %f, expected %f", tt.val, tt.lo, tt.hi, got, tt.expected)
		}
	}
}

func TestActionString(t *testing.T) {
	if ActionPulse.String() != "Pulse" {
		t.Errorf("ActionPulse.String() = %q", ActionPulse.String())
	}
	if Action(99).String() != "Unknown" {
		t.Errorf("Action(99).String() = %q", Action(99).String())
	}
	if ActionUniverse3.UniverseIndex() != 2 || ActionUse.UniverseIndex() != -1 {
		t.Error("UniverseIndex mismatch")
	}
}

func TestRuntimeConfigTick(t *testing.T) {
	if got := DefaultConfig().TickSeconds(); got != 1.0/30 {
		t.Errorf("TickSeconds() = %v", got)
	}
	if got := (RuntimeConfig{TickRate: 10}).TickSeconds(); got != 0.1 {
		t.Errorf("TickSeconds() = %v, expected 0.1", got)
	}
}
