package lower

import (
	"fmt"
	"sync/atomic"
)

// Registry maps pass identities to their descriptors. It is populated
// once at startup, frozen before the first pipeline is built, and
// read-only from then on. The frozen flag is atomic so concurrent
// ResolveOrder calls on a frozen registry never race.
type Registry struct {
	entries map[string]Info
	order   []string // registration order, the tie-break for ResolveOrder
	frozen  atomic.Bool
}

// NewRegistry returns an empty, unfrozen registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Info)}
}

// Register adds a pass descriptor. It fails with ErrDuplicateRegistration
// if the name is already present and with ErrRegistryFrozen once the
// registry has been frozen or an order has been resolved from it.
func (r *Registry) Register(info Info) error {
	if r.frozen.Load() {
		return fmt.Errorf("%w: cannot register %q", ErrRegistryFrozen, info.Name)
	}
	if info.Name == "" {
		return fmt.Errorf("pass name must not be empty")
	}
	if info.Factory == nil {
		return fmt.Errorf("pass %q has no factory", info.Name)
	}
	if _, ok := r.entries[info.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateRegistration, info.Name)
	}
	r.entries[info.Name] = info
	r.order = append(r.order, info.Name)
	return nil
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (Info, bool) {
	info, ok := r.entries[name]
	return info, ok
}

// Names returns all registered pass names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Freeze marks the registry read-only. Freeze must be called (directly or
// via the first successful ResolveOrder) before the registry is shared
// across goroutines.
func (r *Registry) Freeze() { r.frozen.Store(true) }

// ResolveOrder returns the requested passes sorted so that every pass
// appears after all of its transitive dependencies within the requested
// set. Ties between independent passes break by registration order, so
// the result is deterministic for a given registration sequence.
//
// It fails with ErrUnknownPass if a requested or dependency name was
// never registered, and with ErrCyclicDependency if no valid order
// exists. A failed resolve mutates nothing; the first successful resolve
// freezes the registry.
func (r *Registry) ResolveOrder(requested []string) ([]string, error) {
	requestedSet := make(map[string]bool, len(requested))
	for _, name := range requested {
		info, ok := r.entries[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPass, name)
		}
		for _, dep := range info.Deps {
			if _, ok := r.entries[dep]; !ok {
				return nil, fmt.Errorf("%w: %q (dependency of %q)", ErrUnknownPass, dep, name)
			}
		}
		requestedSet[name] = true
	}

	// Kahn's algorithm with a ready scan in registration order.
	// Dependencies outside the requested set do not constrain it.
	pending := make(map[string]int, len(requested))
	for name := range requestedSet {
		count := 0
		for _, dep := range r.entries[name].Deps {
			if requestedSet[dep] {
				count++
			}
		}
		pending[name] = count
	}

	sorted := make([]string, 0, len(requested))
	placed := make(map[string]bool, len(requested))
	for len(sorted) < len(pending) {
		progress := false
		for _, name := range r.order {
			if !requestedSet[name] || placed[name] || pending[name] != 0 {
				continue
			}
			sorted = append(sorted, name)
			placed[name] = true
			progress = true
			for other := range requestedSet {
				if placed[other] {
					continue
				}
				for _, dep := range r.entries[other].Deps {
					if dep == name {
						pending[other]--
					}
				}
			}
		}
		if !progress {
			for _, name := range r.order {
				if requestedSet[name] && !placed[name] {
					return nil, fmt.Errorf("%w: involving %q", ErrCyclicDependency, name)
				}
			}
		}
	}
	r.frozen.Store(true)
	return sorted, nil
}
