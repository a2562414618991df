package scene

import (
	smath "github.com/Faultbox/texelscene/pkg/math"
)

// Lights returns the number of emitting materials and primitives.
func (c *Compiled) Lights() int {
	n := 0
	for _, e := range c.Geometry.Materials {
		if e.Material.Emissive.MaxComponent() > 0 {
			n++
		}
	}
	for _, s := range c.Spheres {
		if s.Emission.MaxComponent() > 0 {
			n++
		}
	}
	for _, r := range c.Rectangles {
		if r.Emission.MaxComponent() > 0 {
			n++
		}
	}
	return n
}

// Bounds returns the box around every triangle, sphere and rectangle.
// It is empty for a scene with no geometry.
func (c *Compiled) Bounds() smath.AABB {
	b := smath.EmptyAABB()
	for _, t := range c.Geometry.Triangles {
		b = b.Union(t.Bounds())
	}
	for _, s := range c.Spheres {
		r := smath.Vec3{X: s.Radius, Y: s.Radius, Z: s.Radius}
		b = b.Extend(s.Center.Sub(r)).Extend(s.Center.Add(r))
	}
	for _, rect := range c.Rectangles {
		for _, t := range rect.Triangles() {
			b = b.Union(t.Bounds())
		}
	}
	return b
}

// countDegenerate returns the number of zero-area triangles.
func (c *Compiled) countDegenerate() int {
	n := 0
	for _, t := range c.Geometry.Triangles {
		if t.Degenerate() {
			n++
		}
	}
	return n
}
