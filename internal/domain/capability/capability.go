package capability

import (
	"context"
	"regexp"
)

// Value is a JSON-like value crossing the sandbox boundary: nil, bool,
// float64, string, []any or map[string]any of the same. Use Normalize to
// coerce arbitrary Go values into this domain.
type Value = any

// InvokeFunc is the host-side implementation of a capability. It receives
// structurally-copied arguments and must return a JSON-like result or an
// error; the error message is the only thing the sandbox observes on failure.
type InvokeFunc func(ctx context.Context, args []Value) (Value, error)

// Handle is a call-only reference to a single host function. The sandbox can
// invoke it and receive a copied result; it cannot inspect or mutate anything
// else on the host side.
type Handle struct {
	Name        string
	Description string
	invoke      InvokeFunc
}

// New creates a capability handle from a name and an invoke function.
func New(name string, fn InvokeFunc) Handle {
	return Handle{Name: name, invoke: fn}
}

// WithDescription returns a copy of the handle carrying a human-readable
// description, used for discovery listings only.
func (h Handle) WithDescription(desc string) Handle {
	h.Description = desc
	return h
}

// Invoke calls the underlying host function. Arguments are normalized before
// the call and the result is normalized after it, so neither side can smuggle
// a shared reference across the boundary.
func (h Handle) Invoke(ctx context.Context, args []Value) (Value, error) {
	if h.invoke == nil {
		return nil, &NotImplementedError{Name: h.Name}
	}
	copied, err := NormalizeSlice(args)
	if err != nil {
		return nil, err
	}
	result, err := h.invoke(ctx, copied)
	if err != nil {
		return nil, err
	}
	return Normalize(result)
}

// Valid reports whether the handle is usable.
func (h Handle) Valid() bool {
	return h.Name != "" && h.invoke != nil
}

// NotImplementedError is returned when a handle has no invoke function.
type NotImplementedError struct {
	Name string
}

func (e *NotImplementedError) Error() string {
	return "capability not implemented: " + e.Name
}

var nameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidName reports whether a capability name is a legal identifier for the
// sandbox global scope.
func ValidName(name string) bool {
	return nameRe.MatchString(name)
}
