package geometry

import (
	"fmt"

	"github.com/Faultbox/texelscene/pkg/formats"
	smath "github.com/Faultbox/texelscene/pkg/math"
)

// DefaultMaterialName is used for objects that never select a material.
const DefaultMaterialName = "default"

// DefaultMaterial is a neutral grey diffuse surface.
var DefaultMaterial = formats.Material{
	Name:    DefaultMaterialName,
	Diffuse: smath.Vec3{X: 0.7, Y: 0.7, Z: 0.7},
	Fields:  formats.FieldDiffuse,
}

// Geometry is the assembled output: triangles grouped by material and the
// registry whose ranges index into them.
type Geometry struct {
	Triangles []Triangle
	Materials []MaterialEntry
}

// Assembler collects meshes and shapes and produces a Geometry.
//
// Triangles are bucketed by material id and concatenated in id order on
// Build, so every material owns exactly one contiguous range even when
// non-adjacent objects share it.
type Assembler struct {
	library  map[string]formats.Material
	registry *Registry
	buckets  [][]Triangle
}

// NewAssembler creates an assembler over one or more material libraries.
// When a name appears in several libraries the first definition wins.
func NewAssembler(libraries ...[]formats.Material) *Assembler {
	a := &Assembler{
		library:  make(map[string]formats.Material),
		registry: NewRegistry(),
	}
	for _, lib := range libraries {
		a.AddLibrary(lib)
	}
	return a
}

// AddLibrary adds material records that are not already known.
func (a *Assembler) AddLibrary(lib []formats.Material) {
	for _, m := range lib {
		if _, ok := a.library[m.Name]; !ok {
			a.library[m.Name] = m
		}
	}
}

// Registry returns the material registry built so far.
func (a *Assembler) Registry() *Registry {
	return a.registry
}

func (a *Assembler) resolve(name string) (formats.Material, error) {
	if name == "" {
		if m, ok := a.library[DefaultMaterialName]; ok {
			return m, nil
		}
		return DefaultMaterial, nil
	}
	m, ok := a.library[name]
	if !ok {
		return formats.Material{}, formats.NewUnknownMaterialError(name)
	}
	return m, nil
}

// AddMesh triangulates every object of mesh and assigns material ids.
// All material names are checked before anything is registered, so a
// failed call leaves the assembler unchanged.
func (a *Assembler) AddMesh(mesh *formats.Mesh) error {
	resolved := make([]formats.Material, len(mesh.Objects))
	for i, obj := range mesh.Objects {
		m, err := a.resolve(obj.Material)
		if err != nil {
			return fmt.Errorf("object %q: %w", obj.Name, err)
		}
		resolved[i] = m
	}

	// A named material gets its id on first sight even when the object has
	// no faces. The default material is only registered when used.
	for i, obj := range mesh.Objects {
		name := obj.Material
		if name == "" {
			if len(obj.Faces) == 0 {
				continue
			}
			name = DefaultMaterialName
		}
		id := a.registry.Register(name, resolved[i])
		if len(obj.Faces) > 0 {
			a.appendTriangles(id, TriangulateObject(mesh, obj))
		}
	}
	return nil
}

// AddShape registers a shape-synthesized material and its triangles and
// returns the new material id.
func (a *Assembler) AddShape(name string, mat formats.Material, tris []Triangle) int {
	id := a.registry.Add(name, mat)
	a.appendTriangles(id, tris)
	return id
}

func (a *Assembler) appendTriangles(id int, tris []Triangle) {
	for len(a.buckets) <= id {
		a.buckets = append(a.buckets, nil)
	}

	bounds := smath.EmptyAABB()
	for _, t := range tris {
		t.MaterialID = id
		a.buckets[id] = append(a.buckets[id], t)
		bounds = bounds.Union(t.Bounds())
	}

	e := a.registry.Entry(id)
	e.Bounds = e.Bounds.Union(bounds)
}

// Build concatenates the buckets in id order and fills in each material's
// triangle range. The assembler can keep accepting input afterwards.
func (a *Assembler) Build() *Geometry {
	total := 0
	for _, b := range a.buckets {
		total += len(b)
	}

	g := &Geometry{
		Triangles: make([]Triangle, 0, total),
		Materials: make([]MaterialEntry, a.registry.Len()),
	}
	copy(g.Materials, a.registry.Entries())

	for id := range g.Materials {
		start := len(g.Triangles)
		if id < len(a.buckets) {
			g.Triangles = append(g.Triangles, a.buckets[id]...)
		}
		g.Materials[id].Range = Range{Start: start, End: len(g.Triangles)}
	}
	return g
}
