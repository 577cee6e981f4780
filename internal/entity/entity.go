// Package entity implements the level objects that take part in causality.
// Every kind registers itself with the registry in init(), so importing
// this package (even blank) makes all kinds available to level loading.
//
// Entities only react to causal changes and drive the world through small
// capability interfaces; they never touch the graph directly.
package entity

import (
	"github.com/SamirShaikh03/Fractured-Causality/internal/causal"
	"github.com/SamirShaikh03/Fractured-Causality/internal/registry"
)

// World is what an entity can act on when the player uses it.
type World interface {
	// Propagate changes the entity's causal node in the active universe.
	Propagate(id string, state causal.State) causal.Result

	// Keys returns how many keys the player holds.
	Keys() int
}

// Interactable entities respond to the player's use action.
type Interactable interface {
	Interact(w World) causal.Result
}

// Collectible entities can be picked up once.
type Collectible interface {
	Collect(w World) bool
	Collected() bool
}

// Updatable entities animate over time.
type Updatable interface {
	Update(dt float64)
}

// Settler entities jump straight to the resting look of a state when a
// session is restored, instead of animating towards it.
type Settler interface {
	Settle(s causal.State)
}

// Positioned entities have a world position.
type Positioned = causal.Locator

// Base carries the fields and default reactions shared by every kind.
type Base struct {
	id        string
	kind      string
	x, y      float64
	universes []string
	destroyed bool
	active    bool
}

func newBase(kind string, spec registry.Spec) Base {
	return Base{
		id:        spec.ID,
		kind:      kind,
		x:         spec.X,
		y:         spec.Y,
		universes: append([]string(nil), spec.Universes...),
		destroyed: spec.State == causal.StateDestroyed,
		active:    spec.State != causal.StateInactive,
	}
}

func (b *Base) ID() string               { return b.id }
func (b *Base) Kind() string             { return b.kind }
func (b *Base) Location() (x, y float64) { return b.x, b.y }
func (b *Base) Destroyed() bool          { return b.destroyed }
func (b *Base) Active() bool             { return b.active }

// Universes returns a copy of the universes the entity is present in.
func (b *Base) Universes() []string {
	return append([]string(nil), b.universes...)
}

// PresentIn reports whether the entity exists in the universe.
func (b *Base) PresentIn(universe string) bool {
	if len(b.universes) == 0 {
		return true
	}
	for _, u := range b.universes {
		if u == universe {
			return true
		}
	}
	return false
}

// OnCausalChange applies the reactions every kind shares.
func (b *Base) OnCausalChange(s causal.State, _ string) {
	switch s {
	case causal.StateDestroyed:
		b.destroyed = true
	case causal.StateExists:
		b.destroyed = false
	case causal.StateActive:
		b.active = true
	case causal.StateInactive:
		b.active = false
	}
}

func (b *Base) Status() string {
	if b.destroyed {
		return "destroyed"
	}
	if !b.active {
		return "inactive"
	}
	return "present"
}

// Present filters entities down to those present in the universe.
func Present(all []registry.Entity, universe string) []registry.Entity {
	var out []registry.Entity
	for _, e := range all {
		if p, ok := e.(interface{ PresentIn(string) bool }); ok && !p.PresentIn(universe) {
			continue
		}
		out = append(out, e)
	}
	return out
}
