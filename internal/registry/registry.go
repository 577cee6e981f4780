// Package registry provides a global registry for level entity factories.
// Entity kinds register themselves in init() functions, allowing the level
// loader to instantiate entities by kind name without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/SamirShaikh03/Fractured-Causality/internal/causal"
)

// Entity is a level object that takes part in causality.
// Entities contain pure logic; rendering is the platform's job.
type Entity interface {
	// ID returns the entity id, which is also its causal node id.
	ID() string

	// Kind returns the registered kind name (e.g., "switch", "door").
	Kind() string

	// OnCausalChange is called when propagation changes the entity's node.
	OnCausalChange(newState causal.State, sourceID string)

	// Location returns the entity's world position in tiles.
	Location() (x, y float64)

	// Universes lists the universes the entity is present in. Empty means all.
	Universes() []string

	// Destroyed reports whether the entity is gone.
	Destroyed() bool

	// Status is a short human-readable description of the entity's condition.
	Status() string
}

// Spec carries the level-file fields an entity is built from.
type Spec struct {
	ID           string
	X, Y         float64
	State        causal.State
	Universes    []string
	Origin       string // causal origin (shades, bridges)
	Locked       bool   // doors
	RequiredKeys int    // portals
}

// KindInfo contains metadata about a registered kind.
type KindInfo struct {
	Kind  string
	Title string
}

// Factory creates a new entity from its spec.
type Factory func(Spec) Entity

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds an entity factory to the registry.
// Typically called from an entity kind's init() function.
// Panics if a kind with the same name is already registered.
func Register(kind, title string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("registry: entity kind %q already registered", kind))
	}

	factories[kind] = f
	titles[kind] = title
}

// List returns information about all registered kinds, sorted by name.
func List() []KindInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]KindInfo, 0, len(factories))
	for kind := range factories {
		result = append(result, KindInfo{
			Kind:  kind,
			Title: titles[kind],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Kind < result[j].Kind
	})

	return result
}

// Create instantiates a new entity of the given kind.
// Returns an error if the kind is not registered.
func Create(kind string, spec Spec) (Entity, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[kind]
	if !ok {
		return nil, fmt.Errorf("registry: unknown entity kind %q", kind)
	}

	return f(spec), nil
}

// Exists checks if an entity kind with the given name is registered.
func Exists(kind string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[kind]
	return ok
}
