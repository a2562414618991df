// Package geometry turns parsed meshes into the flat triangle list and
// dense material registry consumed by the buffer encoder.
package geometry

import (
	"github.com/Faultbox/texelscene/pkg/formats"
	smath "github.com/Faultbox/texelscene/pkg/math"
)

// Triangle is stored in origin + edge form.
type Triangle struct {
	Origin smath.Vec3
	Edge1  smath.Vec3 // v1 - v0
	Edge2  smath.Vec3 // v2 - v0

	Normals    [3]smath.Vec3 // Per-vertex normals, valid when HasNormals
	HasNormals bool

	MaterialID int
	Smooth     bool
}

// NewTriangle builds a triangle from three corner positions.
func NewTriangle(v0, v1, v2 smath.Vec3) Triangle {
	return Triangle{
		Origin: v0,
		Edge1:  v1.Sub(v0),
		Edge2:  v2.Sub(v0),
	}
}

// Vertices returns the three corner positions.
func (t Triangle) Vertices() [3]smath.Vec3 {
	return [3]smath.Vec3{t.Origin, t.Origin.Add(t.Edge1), t.Origin.Add(t.Edge2)}
}

// Bounds returns the bounding box of the three corners.
func (t Triangle) Bounds() smath.AABB {
	b := smath.EmptyAABB()
	for _, v := range t.Vertices() {
		b = b.Extend(v)
	}
	return b
}

// GeometricNormal returns the unit face normal (edge1 x edge2).
func (t Triangle) GeometricNormal() smath.Vec3 {
	return t.Edge1.Cross(t.Edge2).Normalize()
}

// Degenerate reports whether the triangle has zero area.
func (t Triangle) Degenerate() bool {
	return t.GeometricNormal() == (smath.Vec3{})
}

// Triangulate converts every face of mesh into triangles in document order.
// Material ids are left at zero; the Assembler assigns them.
func Triangulate(mesh *formats.Mesh) []Triangle {
	tris := make([]Triangle, 0, mesh.FaceCount()*2)
	for _, obj := range mesh.Objects {
		tris = appendObject(tris, mesh, obj)
	}
	return tris
}

// TriangulateObject converts the faces of a single object.
func TriangulateObject(mesh *formats.Mesh, obj *formats.MeshObject) []Triangle {
	return appendObject(make([]Triangle, 0, len(obj.Faces)*2), mesh, obj)
}

func appendObject(dst []Triangle, mesh *formats.Mesh, obj *formats.MeshObject) []Triangle {
	for _, f := range obj.Faces {
		r := f.Refs
		normals := f.HasNormals()
		dst = append(dst, corner(mesh, obj, normals, r[0], r[1], r[2]))
		if len(r) == 4 {
			// Quads split along the v0-v2 diagonal.
			dst = append(dst, corner(mesh, obj, normals, r[0], r[3], r[2]))
		}
	}
	return dst
}

// corner builds one triangle. Normals are attached only when the whole
// face carries them.
func corner(mesh *formats.Mesh, obj *formats.MeshObject, normals bool, a, b, c formats.VertexRef) Triangle {
	t := NewTriangle(mesh.Positions[a.Position], mesh.Positions[b.Position], mesh.Positions[c.Position])
	t.Smooth = obj.Smooth
	if normals {
		t.HasNormals = true
		t.Normals = [3]smath.Vec3{mesh.Normals[a.Normal], mesh.Normals[b.Normal], mesh.Normals[c.Normal]}
	}
	return t
}

// Transform returns copies of tris with positions mapped by m and normals
// mapped by the linear part of m and renormalized.
func Transform(tris []Triangle, m smath.Mat4) []Triangle {
	out := make([]Triangle, len(tris))
	for i, t := range tris {
		v := t.Vertices()
		nt := NewTriangle(m.TransformPoint(v[0]), m.TransformPoint(v[1]), m.TransformPoint(v[2]))
		nt.MaterialID = t.MaterialID
		nt.Smooth = t.Smooth
		nt.HasNormals = t.HasNormals
		if t.HasNormals {
			for j, n := range t.Normals {
				nt.Normals[j] = m.TransformDirection(n).Normalize()
			}
		}
		out[i] = nt
	}
	return out
}
