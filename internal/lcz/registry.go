package lcz

import (
	"errors"
	"fmt"
	"math"

	"github.com/rotisserie/eris"
)

// UnknownZoneClassError reports a lookup for a class id that is not in the
// registry. Callers translate it into a user-visible failure; it is an input
// error, never a transient fault.
type UnknownZoneClassError struct {
	ID string
}

func (e *UnknownZoneClassError) Error() string {
	return fmt.Sprintf("unknown LCZ class %q", e.ID)
}

// IsUnknownZoneClass reports whether err is (or wraps) an UnknownZoneClassError.
func IsUnknownZoneClass(err error) bool {
	var uz *UnknownZoneClassError
	return errors.As(err, &uz)
}

// Registry is an immutable mapping from LCZ class id to its metadata.
// It is constructed once and safe for concurrent reads.
type Registry struct {
	byID  map[string]ZoneClass
	order []string
}

// NewRegistry builds a registry from an explicit class table. Ids must be
// unique, names non-empty, and offsets finite.
func NewRegistry(classes []ZoneClass) (*Registry, error) {
	r := &Registry{
		byID:  make(map[string]ZoneClass, len(classes)),
		order: make([]string, 0, len(classes)),
	}
	for _, c := range classes {
		if c.ID == "" {
			return nil, eris.New("lcz: zone class with empty id")
		}
		if c.Name == "" {
			return nil, eris.Errorf("lcz: zone class %q has empty name", c.ID)
		}
		if math.IsNaN(c.ThermalOffset) || math.IsInf(c.ThermalOffset, 0) {
			return nil, eris.Errorf("lcz: zone class %q has non-finite offset", c.ID)
		}
		if _, dup := r.byID[c.ID]; dup {
			return nil, eris.Errorf("lcz: duplicate zone class id %q", c.ID)
		}
		r.byID[c.ID] = c
		r.order = append(r.order, c.ID)
	}
	return r, nil
}

// DefaultRegistry returns a registry holding the standard 17-class LCZ table.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(defaultClasses)
	if err != nil {
		// The built-in table is validated by tests; this cannot happen.
		panic(err)
	}
	return r
}

// Lookup resolves a canonical class id. Unknown ids fail with
// *UnknownZoneClassError.
func (r *Registry) Lookup(id string) (ZoneClass, error) {
	c, ok := r.byID[id]
	if !ok {
		return ZoneClass{}, &UnknownZoneClassError{ID: id}
	}
	return c, nil
}

// Contains reports whether id resolves without allocating an error.
func (r *Registry) Contains(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// All returns the classes in table order. The returned slice is a copy.
func (r *Registry) All() []ZoneClass {
	out := make([]ZoneClass, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Len returns the number of classes in the registry.
func (r *Registry) Len() int {
	return len(r.byID)
}
