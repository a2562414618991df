package math

import "github.com/chewxy/math32"

// AABB is an axis-aligned bounding box given by its min and max corners.
// The zero value is not empty; use EmptyAABB to start an accumulation.
type AABB struct {
	Min, Max Vec3
}

// EmptyAABB returns an inverted box that any Extend call will replace.
func EmptyAABB() AABB {
	inf := math32.Inf(1)
	return AABB{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether no point has been added to the box.
func (b AABB) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Extend returns the box grown to contain p.
func (b AABB) Extend(p Vec3) AABB {
	return AABB{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest box containing both boxes.
func (b AABB) Union(other AABB) AABB {
	if other.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return other
	}
	return AABB{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// Center returns the midpoint of the box.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}
