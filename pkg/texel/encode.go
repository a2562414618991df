package texel

import (
	"github.com/Faultbox/texelscene/pkg/geometry"
	smath "github.com/Faultbox/texelscene/pkg/math"
)

// Sphere is an analytic sphere primitive.
type Sphere struct {
	Center   smath.Vec3
	Radius   float32
	Color    smath.Vec3
	Emission smath.Vec3
	Model    ReflectionModel
}

// Rectangle is a parallelogram spanned by two edges from an origin.
type Rectangle struct {
	Origin   smath.Vec3
	Edge1    smath.Vec3
	Edge2    smath.Vec3
	Color    smath.Vec3
	Emission smath.Vec3
	Model    ReflectionModel
}

// Triangles returns the two triangles covering r, sharing the origin
// diagonal.
func (r Rectangle) Triangles() [2]geometry.Triangle {
	corner := r.Origin.Add(r.Edge1).Add(r.Edge2)
	return [2]geometry.Triangle{
		geometry.NewTriangle(r.Origin, r.Origin.Add(r.Edge1), corner),
		geometry.NewTriangle(r.Origin, r.Origin.Add(r.Edge2), corner),
	}
}

func putVec(dst []float32, v smath.Vec3, w float32) {
	dst[0], dst[1], dst[2], dst[3] = v.X, v.Y, v.Z, w
}

func boolLane(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

// EncodeTriangles packs tris into a buffer of the given capacity.
//
//	0  origin.xyz  material id
//	4  edge1.xyz   0
//	8  edge2.xyz   smooth
//	12 normal0     has normals
//	16 normal1     0
//	20 normal2     0
func EncodeTriangles(tris []geometry.Triangle, capacity int) *Buffer {
	b := NewBuffer(TriangleStride, capacity)
	for _, t := range tris {
		rec := b.next()
		if rec == nil {
			break
		}
		putVec(rec[0:], t.Origin, float32(t.MaterialID))
		putVec(rec[4:], t.Edge1, 0)
		putVec(rec[8:], t.Edge2, boolLane(t.Smooth))
		if t.HasNormals {
			putVec(rec[12:], t.Normals[0], 1)
			putVec(rec[16:], t.Normals[1], 0)
			putVec(rec[20:], t.Normals[2], 0)
		}
	}
	return b
}

// DecodeTriangle reads record i of a triangle buffer.
func DecodeTriangle(b *Buffer, i int) geometry.Triangle {
	rec := b.Record(i)
	vec := func(o int) smath.Vec3 { return smath.Vec3{X: rec[o], Y: rec[o+1], Z: rec[o+2]} }

	t := geometry.Triangle{
		Origin:     vec(0),
		Edge1:      vec(4),
		Edge2:      vec(8),
		MaterialID: int(rec[3]),
		Smooth:     rec[11] != 0,
		HasNormals: rec[15] != 0,
	}
	if t.HasNormals {
		t.Normals = [3]smath.Vec3{vec(12), vec(16), vec(20)}
	}
	return t
}

// EncodeMaterials packs registry entries. Lane 11 is an MTL illumination
// id for every material; shape materials convert their ReflectionModel with
// Illum.
//
//	0  diffuse     specular exponent
//	4  emissive    refractive index
//	8  specular    illumination model (MTL illum id)
//	12 aabb min    range start
//	16 aabb max    range end
func EncodeMaterials(entries []geometry.MaterialEntry, capacity int) *Buffer {
	b := NewBuffer(MaterialStride, capacity)
	for _, e := range entries {
		rec := b.next()
		if rec == nil {
			break
		}
		m := e.Material
		putVec(rec[0:], m.Diffuse, m.SpecularExponent)
		putVec(rec[4:], m.Emissive, m.RefractiveIndex)
		putVec(rec[8:], m.Specular, float32(m.Illum))

		bounds := e.Bounds
		if bounds.IsEmpty() {
			bounds = smath.AABB{}
		}
		putVec(rec[12:], bounds.Min, float32(e.Range.Start))
		putVec(rec[16:], bounds.Max, float32(e.Range.End))
	}
	return b
}

// EncodeSpheres packs sphere primitives.
//
//	0 center   radius
//	4 color    model
//	8 emission 0
func EncodeSpheres(spheres []Sphere, capacity int) *Buffer {
	b := NewBuffer(SphereStride, capacity)
	for _, s := range spheres {
		rec := b.next()
		if rec == nil {
			break
		}
		putVec(rec[0:], s.Center, s.Radius)
		putVec(rec[4:], s.Color, float32(s.Model))
		putVec(rec[8:], s.Emission, 0)
	}
	return b
}

// EncodeRectangles packs rectangle primitives.
//
//	0  origin   model
//	4  edge1    0
//	8  edge2    0
//	12 color    0
//	16 emission 0
func EncodeRectangles(rects []Rectangle, capacity int) *Buffer {
	b := NewBuffer(RectangleStride, capacity)
	for _, r := range rects {
		rec := b.next()
		if rec == nil {
			break
		}
		putVec(rec[0:], r.Origin, float32(r.Model))
		putVec(rec[4:], r.Edge1, 0)
		putVec(rec[8:], r.Edge2, 0)
		putVec(rec[12:], r.Color, 0)
		putVec(rec[16:], r.Emission, 0)
	}
	return b
}
