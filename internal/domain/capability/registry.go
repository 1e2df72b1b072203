package capability

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages the named capabilities a host composition exposes to
// sandboxed runs. Runs select a subset by name; the registry itself is never
// visible inside a sandbox.
type Registry struct {
	handles sync.Map
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a capability handle. Names must be identifier-safe and
// unique.
func (r *Registry) Register(h Handle) error {
	if !h.Valid() {
		return fmt.Errorf("capability handle is incomplete")
	}
	if !ValidName(h.Name) {
		return fmt.Errorf("invalid capability name: %q", h.Name)
	}
	if _, loaded := r.handles.LoadOrStore(h.Name, h); loaded {
		return fmt.Errorf("capability already registered: %s", h.Name)
	}
	return nil
}

// Unregister removes a capability by name.
func (r *Registry) Unregister(name string) {
	r.handles.Delete(name)
}

// Get retrieves a capability handle by name.
func (r *Registry) Get(name string) (Handle, bool) {
	val, ok := r.handles.Load(name)
	if !ok {
		return Handle{}, false
	}
	return val.(Handle), true
}

// Select resolves a set of names into a handle map for one run. Unknown
// names fail the whole selection.
func (r *Registry) Select(names []string) (map[string]Handle, error) {
	out := make(map[string]Handle, len(names))
	for _, name := range names {
		h, ok := r.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown capability: %s", name)
		}
		out[name] = h
	}
	return out, nil
}

// All returns every registered handle keyed by name.
func (r *Registry) All() map[string]Handle {
	out := make(map[string]Handle)
	r.handles.Range(func(key, value any) bool {
		out[key.(string)] = value.(Handle)
		return true
	})
	return out
}

// Names returns the sorted capability names.
func (r *Registry) Names() []string {
	var names []string
	r.handles.Range(func(key, _ any) bool {
		names = append(names, key.(string))
		return true
	})
	sort.Strings(names)
	return names
}
