package entity

import (
	"fmt"

	"github.com/SamirShaikh03/Fractured-Causality/internal/causal"
	"github.com/SamirShaikh03/Fractured-Causality/internal/registry"
)

func init() {
	registry.Register("switch", "Lever Switch", func(s registry.Spec) registry.Entity { return NewSwitch(s) })
	registry.Register("door", "Door", func(s registry.Spec) registry.Entity { return NewDoor(s) })
	registry.Register("stone", "Pressure Stone", func(s registry.Spec) registry.Entity { return NewStone(s) })
	registry.Register("portal", "Exit Portal", func(s registry.Spec) registry.Entity { return NewPortal(s) })
}

// Switch is a lever with two positions. Using it propagates ON or OFF.
type Switch struct {
	Base
	on bool
}

// NewSwitch creates a switch, on when the spec state is ON.
func NewSwitch(spec registry.Spec) *Switch {
	return &Switch{Base: newBase("switch", spec), on: spec.State == causal.StateOn}
}

// On reports the lever position.
func (s *Switch) On() bool { return s.on }

// OnCausalChange follows ON and OFF.
func (s *Switch) OnCausalChange(st causal.State, src string) {
	switch st {
	case causal.StateOn:
		s.on = true
	case causal.StateOff:
		s.on = false
	default:
		s.Base.OnCausalChange(st, src)
	}
}

// Interact flips the lever.
func (s *Switch) Interact(w World) causal.Result {
	if s.destroyed {
		return causal.Result{}
	}
	if s.on {
		return w.Propagate(s.id, causal.StateOff)
	}
	return w.Propagate(s.id, causal.StateOn)
}

func (s *Switch) Status() string {
	if s.destroyed {
		return "destroyed"
	}
	if s.on {
		return "on"
	}
	return "off"
}

// Door blocks a passage. Doors are driven by causality only.
type Door struct {
	Base
	open   bool
	locked bool
}

// NewDoor creates a door. A door that starts open is never locked.
func NewDoor(spec registry.Spec) *Door {
	open := spec.State == causal.StateOpen || spec.State == causal.StateOn
	return &Door{Base: newBase("door", spec), open: open, locked: spec.Locked && !open}
}

// Open reports whether the door lets the player through.
func (d *Door) Open() bool { return d.open }

// Locked reports whether the door stays shut until causality opens it.
func (d *Door) Locked() bool { return d.locked }

// OnCausalChange opens the door on OPEN, ACTIVE or ON. INACTIVE shuts and locks it.
func (d *Door) OnCausalChange(st causal.State, src string) {
	switch st {
	case causal.StateOpen, causal.StateActive, causal.StateOn:
		d.locked = false
		d.open = true
	case causal.StateClosed, causal.StateOff:
		d.open = false
	case causal.StateInactive:
		d.open = false
		d.locked = true
	default:
		d.Base.OnCausalChange(st, src)
	}
}

func (d *Door) Status() string {
	switch {
	case d.destroyed:
		return "destroyed"
	case d.open:
		return "open"
	case d.locked:
		return "locked"
	default:
		return "closed"
	}
}

// Stone is a pressure stone. Pushing it toggles between ACTIVE and INACTIVE.
type Stone struct {
	Base
}

// NewStone creates a stone, pressed when the spec state is ACTIVE.
func NewStone(spec registry.Spec) *Stone {
	s := &Stone{Base: newBase("stone", spec)}
	s.active = spec.State == causal.StateActive
	return s
}

// Interact presses or releases the stone.
func (s *Stone) Interact(w World) causal.Result {
	if s.destroyed {
		return causal.Result{}
	}
	if s.active {
		return w.Propagate(s.id, causal.StateInactive)
	}
	return w.Propagate(s.id, causal.StateActive)
}

func (s *Stone) Status() string {
	switch {
	case s.destroyed:
		return "destroyed"
	case s.active:
		return "pressed"
	default:
		return "raised"
	}
}

// Portal is a level exit sealed until the player holds enough keys.
type Portal struct {
	Base
	required int
}

// NewPortal creates a portal, open when the spec state is ACTIVE.
func NewPortal(spec registry.Spec) *Portal {
	p := &Portal{Base: newBase("portal", spec), required: spec.RequiredKeys}
	p.active = spec.State == causal.StateActive
	return p
}

// RequiredKeys is the number of keys needed to unseal the portal.
func (p *Portal) RequiredKeys() int { return p.required }

// Interact opens the portal once the player holds enough keys.
func (p *Portal) Interact(w World) causal.Result {
	if p.destroyed || p.active || w.Keys() < p.required {
		return causal.Result{}
	}
	return w.Propagate(p.id, causal.StateActive)
}

func (p *Portal) Status() string {
	switch {
	case p.destroyed:
		return "destroyed"
	case p.active:
		return "open"
	case p.required > 0:
		return fmt.Sprintf("sealed (needs %d keys)", p.required)
	default:
		return "sealed"
	}
}
