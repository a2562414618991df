package geometry

import (
	"github.com/Faultbox/texelscene/pkg/formats"
	smath "github.com/Faultbox/texelscene/pkg/math"
)

// Range is a half-open [Start, End) span of the triangle list.
type Range struct {
	Start, End int
}

// Len returns the number of triangles in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// MaterialEntry is one slot of the material registry.
type MaterialEntry struct {
	ID       int
	Name     string
	Material formats.Material
	Bounds   smath.AABB // Union of the boxes of every object using the material
	Range    Range
}

// Registry assigns dense ids to materials in first-use order.
type Registry struct {
	entries []MaterialEntry
	byName  map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]int)}
}

// Lookup returns the id of a named material if it has been registered.
func (r *Registry) Lookup(name string) (int, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Register returns the id for name, assigning len(registry) on first use.
func (r *Registry) Register(name string, mat formats.Material) int {
	if id, ok := r.byName[name]; ok {
		return id
	}
	id := r.Add(name, mat)
	r.byName[name] = id
	return id
}

// Add appends an anonymous entry that is never returned by Lookup.
// Shape-synthesized materials use it so two shapes never share a slot.
func (r *Registry) Add(name string, mat formats.Material) int {
	id := len(r.entries)
	r.entries = append(r.entries, MaterialEntry{
		ID:       id,
		Name:     name,
		Material: mat,
		Bounds:   smath.EmptyAABB(),
	})
	return id
}

// Len returns the number of registered materials.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Entry returns a pointer to the entry with the given id.
func (r *Registry) Entry(id int) *MaterialEntry {
	return &r.entries[id]
}

// Entries returns the registry in id order.
func (r *Registry) Entries() []MaterialEntry {
	return r.entries
}
