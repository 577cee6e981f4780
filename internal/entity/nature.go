package entity

import (
	"github.com/SamirShaikh03/Fractured-Causality/internal/causal"
	"github.com/SamirShaikh03/Fractured-Causality/internal/registry"
)

// ShadeFadeSeconds is how long a shade takes to vanish once its origin is gone.
const ShadeFadeSeconds = 1.0

func init() {
	registry.Register("tree", "Ancient Tree", func(s registry.Spec) registry.Entity { return NewTree(s) })
	registry.Register("shade", "Shade", func(s registry.Spec) registry.Entity { return NewShade(s) })
	registry.Register("bridge", "Bridge", func(s registry.Spec) registry.Entity { return NewBridge(s) })
	registry.Register("key", "Key", func(s registry.Spec) registry.Entity { return NewKey(s) })
}

// Tree can be felled by the player. Other objects often exist because of it.
type Tree struct {
	Base
}

// NewTree creates a tree, fallen when the spec state is DESTROYED.
func NewTree(spec registry.Spec) *Tree {
	return &Tree{Base: newBase("tree", spec)}
}

// Interact fells the tree.
func (t *Tree) Interact(w World) causal.Result {
	if t.destroyed {
		return causal.Result{}
	}
	return w.Propagate(t.id, causal.StateDestroyed)
}

func (t *Tree) Status() string {
	if t.destroyed {
		return "fallen"
	}
	return "standing"
}

// Shade is a hostile shadow tied to an origin. When the origin is destroyed
// the shade fades out over ShadeFadeSeconds.
type Shade struct {
	Base
	origin string
	fade   float64 // 1 while solid, falls to 0 while fading
	fading bool
}

// NewShade creates a shade bound to spec.Origin.
func NewShade(spec registry.Spec) *Shade {
	s := &Shade{Base: newBase("shade", spec), origin: spec.Origin, fade: 1}
	if s.destroyed {
		s.fade = 0
	}
	return s
}

// Origin is the id of the node the shade exists because of.
func (s *Shade) Origin() string { return s.origin }

// Fading reports whether the shade is vanishing.
func (s *Shade) Fading() bool { return s.fading }

// Opacity runs from 1 (solid) to 0 (gone).
func (s *Shade) Opacity() float64 { return s.fade }

// OnCausalChange starts the fade on DESTROYED and makes the shade solid on EXISTS.
func (s *Shade) OnCausalChange(st causal.State, src string) {
	switch st {
	case causal.StateDestroyed:
		if !s.destroyed && !s.fading {
			s.fading = true
		}
	case causal.StateExists:
		s.fading = false
		s.destroyed = false
		s.fade = 1
	default:
		s.Base.OnCausalChange(st, src)
	}
}

// Settle applies st without fading.
func (s *Shade) Settle(st causal.State) {
	s.OnCausalChange(st, "settle")
	if st == causal.StateDestroyed {
		s.fading = false
		s.destroyed = true
		s.fade = 0
	}
}

// Update advances the fade.
func (s *Shade) Update(dt float64) {
	if !s.fading {
		return
	}
	s.fade -= dt / ShadeFadeSeconds
	if s.fade <= 0 {
		s.fade = 0
		s.fading = false
		s.destroyed = true
	}
}

func (s *Shade) Status() string {
	switch {
	case s.destroyed:
		return "gone"
	case s.fading:
		return "fading"
	default:
		return "lurking"
	}
}

// Bridge spans a gap. It collapses when destroyed and can be restored.
type Bridge struct {
	Base
}

// NewBridge creates a bridge, collapsed when the spec state is DESTROYED.
func NewBridge(spec registry.Spec) *Bridge {
	return &Bridge{Base: newBase("bridge", spec)}
}

func (b *Bridge) Status() string {
	if b.destroyed {
		return "collapsed"
	}
	return "intact"
}

// Key is collected by the player to unseal portals.
type Key struct {
	Base
	collected bool
}

// NewKey creates an uncollected key.
func NewKey(spec registry.Spec) *Key {
	return &Key{Base: newBase("key", spec)}
}

// Collected reports whether the player holds the key.
func (k *Key) Collected() bool { return k.collected }

// Collect picks the key up and removes it from the world.
func (k *Key) Collect(w World) bool {
	if k.collected || k.destroyed {
		return false
	}
	k.collected = true
	w.Propagate(k.id, causal.StateDestroyed)
	return true
}

func (k *Key) Status() string {
	switch {
	case k.collected:
		return "collected"
	case k.destroyed:
		return "destroyed"
	default:
		return "waiting"
	}
}
