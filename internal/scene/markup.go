package scene

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/texelscene/internal/assets"
	"github.com/Faultbox/texelscene/pkg/encoding"
	"github.com/Faultbox/texelscene/pkg/formats"
	"github.com/Faultbox/texelscene/pkg/geometry"
	smath "github.com/Faultbox/texelscene/pkg/math"
	"github.com/Faultbox/texelscene/pkg/mitsuba"
	"github.com/Faultbox/texelscene/pkg/texel"
)

// defaultReflectance is used for shapes without a BSDF color.
var defaultReflectance = geometry.DefaultMaterial.Diffuse

// meshLoader loads obj files named by markup shapes, relative to the
// markup document.
type meshLoader struct {
	src   assets.Source
	scene string
	log   *zap.Logger
}

func (l *meshLoader) LoadMesh(ctx context.Context, name string) ([]geometry.Triangle, error) {
	full := encoding.JoinAssetPath(l.scene, name)
	text, err := l.src.LoadText(ctx, full)
	if err != nil {
		return nil, err
	}
	mesh, err := formats.ParseOBJ(text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", full, err)
	}
	tris := geometry.Triangulate(mesh)
	l.log.Debug("shape mesh loaded", zap.String("mesh", full), zap.Int("triangles", len(tris)))
	return tris, nil
}

func compileMarkup(ctx context.Context, src assets.Source, name string, asm *geometry.Assembler, c *Compiled, concurrency int, log *zap.Logger) error {
	text, err := loadText(ctx, src, name)
	if err != nil {
		return err
	}

	scene, err := mitsuba.Parse(ctx, strings.NewReader(text), mitsuba.Options{
		Loader:      &meshLoader{src: src, scene: name, log: log},
		Concurrency: concurrency,
	})
	if err != nil {
		return err
	}
	c.Camera = scene.Camera

	for i, s := range scene.Shapes {
		label := s.ID
		if label == "" {
			label = fmt.Sprintf("%s#%d", s.Type, i)
		}
		color, emission, model := surface(s)

		switch s.Type {
		case mitsuba.TypeOBJ:
			mat := formats.Material{
				Name:     label,
				Diffuse:  color,
				Emissive: emission,
				Illum:    model.Illum(),
				Fields:   formats.FieldDiffuse | formats.FieldEmissive | formats.FieldIllum,
			}
			tris := s.Mesh
			if !s.Transform.IsIdentity() {
				tris = geometry.Transform(tris, s.Transform)
			}
			asm.AddShape(label, mat, tris)
		case mitsuba.TypeRectangle:
			c.Rectangles = append(c.Rectangles, rectangle(s.Transform, unitRectangle, color, emission, model))
		case mitsuba.TypeCube:
			for _, face := range cubeFaces {
				c.Rectangles = append(c.Rectangles, rectangle(s.Transform, face, color, emission, model))
			}
		case mitsuba.TypeSphere:
			c.Spheres = append(c.Spheres, sphere(s, color, emission, model))
		default:
			c.Skipped = append(c.Skipped, label)
			log.Warn("unsupported shape skipped", zap.String("shape", label), zap.String("type", s.Type))
		}
	}
	return nil
}

// surface derives the color, emission and reflection model of a shape.
func surface(s mitsuba.Shape) (color, emission smath.Vec3, model texel.ReflectionModel) {
	color = defaultReflectance
	if s.BSDF != nil {
		if s.BSDF.HasReflectance {
			color = s.BSDF.Reflectance
		}
		model = reflectionModel(s.BSDF.Type)
	}
	if s.Emitter != nil {
		emission = s.Emitter.Radiance
	}
	return color, emission, model
}

func reflectionModel(bsdfType string) texel.ReflectionModel {
	switch bsdfType {
	case "dielectric", "roughdielectric", "thindielectric":
		return texel.Refractive
	case "conductor", "roughconductor":
		return texel.Specular
	default:
		return texel.Diffuse
	}
}

// quad is a parallelogram in object space.
type quad struct {
	origin, edge1, edge2 smath.Vec3
}

// unitRectangle covers [-1,1]^2 in the z=0 plane.
var unitRectangle = quad{
	origin: smath.Vec3{X: -1, Y: -1},
	edge1:  smath.Vec3{X: 2},
	edge2:  smath.Vec3{Y: 2},
}

// cubeFaces are the six faces of the [-1,1]^3 cube.
var cubeFaces = [6]quad{
	{smath.Vec3{X: -1, Y: -1, Z: -1}, smath.Vec3{Y: 2}, smath.Vec3{X: 2}}, // -z
	{smath.Vec3{X: -1, Y: -1, Z: 1}, smath.Vec3{X: 2}, smath.Vec3{Y: 2}},  // +z
	{smath.Vec3{X: -1, Y: -1, Z: -1}, smath.Vec3{Z: 2}, smath.Vec3{Y: 2}}, // -x
	{smath.Vec3{X: 1, Y: -1, Z: -1}, smath.Vec3{Y: 2}, smath.Vec3{Z: 2}},  // +x
	{smath.Vec3{X: -1, Y: -1, Z: -1}, smath.Vec3{X: 2}, smath.Vec3{Z: 2}}, // -y
	{smath.Vec3{X: -1, Y: 1, Z: -1}, smath.Vec3{Z: 2}, smath.Vec3{X: 2}},  // +y
}

func rectangle(m smath.Mat4, q quad, color, emission smath.Vec3, model texel.ReflectionModel) texel.Rectangle {
	origin := m.TransformPoint(q.origin)
	return texel.Rectangle{
		Origin:   origin,
		Edge1:    m.TransformPoint(q.origin.Add(q.edge1)).Sub(origin),
		Edge2:    m.TransformPoint(q.origin.Add(q.edge2)).Sub(origin),
		Color:    color,
		Emission: emission,
		Model:    model,
	}
}

// sphere places the sphere in world space. Non-uniform scale is not
// representable; the radius follows the transformed x axis.
func sphere(s mitsuba.Shape, color, emission smath.Vec3, model texel.ReflectionModel) texel.Sphere {
	return texel.Sphere{
		Center:   s.Transform.TransformPoint(s.Center),
		Radius:   s.Transform.TransformDirection(smath.Vec3{X: s.Radius}).Length(),
		Color:    color,
		Emission: emission,
		Model:    model,
	}
}
