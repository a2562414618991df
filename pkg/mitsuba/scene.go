package mitsuba

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/texelscene/pkg/formats"
	"github.com/Faultbox/texelscene/pkg/geometry"
	smath "github.com/Faultbox/texelscene/pkg/math"
)

// Shape type tags understood downstream.
const (
	TypeOBJ       = "obj"
	TypeRectangle = "rectangle"
	TypeCube      = "cube"
	TypeSphere    = "sphere"
)

// DefaultFOV is used when a sensor carries no fov value.
const DefaultFOV = 45

// BSDF is reduced to a diffuse flag and a reflectance color.
type BSDF struct {
	Type           string
	Diffuse        bool
	Reflectance    smath.Vec3
	HasReflectance bool
}

// Emitter is an area light with constant radiance.
type Emitter struct {
	Radiance smath.Vec3
}

// Shape is a fully resolved top-level shape.
type Shape struct {
	Type string
	ID   string

	BSDF      *BSDF
	Emitter   *Emitter
	Transform smath.Mat4 // Identity when absent

	Filename string             // Mesh file, obj shapes only
	Mesh     []geometry.Triangle // Loaded mesh in object space

	Center smath.Vec3 // Sphere center, origin by default
	Radius float32    // Sphere radius, 1 by default
}

// Camera is decomposed from the sensor's to-world matrix.
type Camera struct {
	Position  smath.Vec3
	Direction smath.Vec3
	Up        smath.Vec3
	FOV       float32
}

// CameraFromMatrix reads position, direction and up from columns 3, 2 and
// 1 of a row-major camera-to-world matrix.
func CameraFromMatrix(m smath.Mat4) Camera {
	return Camera{
		Position:  m.Column(3),
		Direction: m.Column(2),
		Up:        m.Column(1),
	}
}

// Scene is the parsed markup document. Shapes are in document order.
type Scene struct {
	Shapes []Shape
	Camera *Camera
}

// MeshLoader fetches and triangulates an external mesh file.
type MeshLoader interface {
	LoadMesh(ctx context.Context, name string) ([]geometry.Triangle, error)
}

// MeshLoaderFunc adapts a function to MeshLoader.
type MeshLoaderFunc func(ctx context.Context, name string) ([]geometry.Triangle, error)

// LoadMesh calls f.
func (f MeshLoaderFunc) LoadMesh(ctx context.Context, name string) ([]geometry.Triangle, error) {
	return f(ctx, name)
}

// Options configures Parse.
type Options struct {
	Loader      MeshLoader // Required when any shape names a mesh file
	Concurrency int        // Max shapes resolved at once; 0 means unbounded
}

// Parse reads a markup document and resolves its shapes and sensor.
func Parse(ctx context.Context, r io.Reader, opts Options) (*Scene, error) {
	root, err := ParseTree(r)
	if err != nil {
		return nil, err
	}
	return ParseElement(ctx, root, opts)
}

// ParseElement resolves the shapes and sensor below root.
//
// Top-level shapes are resolved concurrently. Each result is written to
// the slot of its document index, so the output order never depends on
// which mesh load finishes first. The first failure cancels the rest; the
// error reported is the one from the earliest shape in the document.
func ParseElement(ctx context.Context, root *Element, opts Options) (*Scene, error) {
	ids := indexIDs(root)

	var elems []*Element
	for _, c := range root.Children {
		if c.Name == "shape" {
			elems = append(elems, c)
		}
	}

	shapes := make([]Shape, len(elems))
	errs := make([]error, len(elems))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i, el := range elems {
		g.Go(func() error {
			s, err := newResolver(ids).shape(gctx, el, opts.Loader)
			if err != nil {
				errs[i] = err
				return err
			}
			shapes[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, e := range errs {
			if e != nil && !errors.Is(e, context.Canceled) {
				return nil, e
			}
		}
		return nil, err
	}

	scene := &Scene{Shapes: shapes}
	if sensor := root.Child("sensor"); sensor != nil {
		cam, err := parseSensor(sensor)
		if err != nil {
			return nil, err
		}
		scene.Camera = &cam
	}
	return scene, nil
}

// partial holds the fields set so far while resolving a shape. Nil means
// unset, which lets a reference contribute only what it defines.
type partial struct {
	bsdf      *BSDF
	emitter   *Emitter
	transform *smath.Mat4
	filename  *string
	center    *smath.Vec3
	radius    *float32
}

// merge copies every field set in other over p.
func (p *partial) merge(other partial) {
	if other.bsdf != nil {
		p.bsdf = other.bsdf
	}
	if other.emitter != nil {
		p.emitter = other.emitter
	}
	if other.transform != nil {
		p.transform = other.transform
	}
	if other.filename != nil {
		p.filename = other.filename
	}
	if other.center != nil {
		p.center = other.center
	}
	if other.radius != nil {
		p.radius = other.radius
	}
}

// resolver tracks the chain of ids being expanded for one top-level shape.
// Only the current path counts, so two siblings may share a reference.
// Finished ids are cached, so a shared reference is expanded once.
type resolver struct {
	ids    map[string]*Element
	path   []string
	onPath map[string]bool

	partials map[string]partial
	bsdfs    map[string]BSDF
}

func newResolver(ids map[string]*Element) *resolver {
	return &resolver{
		ids:      ids,
		onPath:   make(map[string]bool),
		partials: make(map[string]partial),
		bsdfs:    make(map[string]BSDF),
	}
}

func (r *resolver) enter(id string) error {
	if id == "" {
		return nil
	}
	if r.onPath[id] {
		return formats.NewCyclicReferenceError(r.path, id)
	}
	r.onPath[id] = true
	r.path = append(r.path, id)
	return nil
}

func (r *resolver) leave(id string) {
	if id == "" {
		return
	}
	delete(r.onPath, id)
	r.path = r.path[:len(r.path)-1]
}

func (r *resolver) lookup(ref *Element) (*Element, error) {
	id := ref.Attr["id"]
	target, ok := r.ids[id]
	if !ok {
		return nil, &formats.Error{
			Kind:     formats.ErrParse,
			Offset:   int(ref.Offset),
			Context:  ref.context(),
			Expected: "reference to a declared id",
			Found:    fmt.Sprintf("%q", id),
		}
	}
	return target, nil
}

func (r *resolver) shape(ctx context.Context, el *Element, loader MeshLoader) (Shape, error) {
	p, err := r.fields(el)
	if err != nil {
		return Shape{}, err
	}

	s := Shape{
		Type:      el.Attr["type"],
		ID:        el.Attr["id"],
		BSDF:      p.bsdf,
		Emitter:   p.emitter,
		Transform: smath.Identity(),
		Radius:    1,
	}
	if p.transform != nil {
		s.Transform = *p.transform
	}
	if p.center != nil {
		s.Center = *p.center
	}
	if p.radius != nil {
		s.Radius = *p.radius
	}

	if p.filename != nil {
		s.Filename = *p.filename
		if loader == nil {
			return Shape{}, formats.NewLoadError(s.Filename, fmt.Errorf("no mesh loader configured"))
		}
		tris, err := loader.LoadMesh(ctx, s.Filename)
		if err != nil {
			return Shape{}, formats.NewLoadError(s.Filename, err)
		}
		s.Mesh = tris
	}
	return s, nil
}

// fields walks the children of a shape-like element in order. Later
// children override earlier ones field by field.
func (r *resolver) fields(el *Element) (partial, error) {
	id := el.Attr["id"]
	if err := r.enter(id); err != nil {
		return partial{}, err
	}
	defer r.leave(id)
	if p, ok := r.partials[id]; ok {
		return p, nil
	}

	var p partial
	for _, c := range el.Children {
		switch c.Name {
		case "bsdf":
			b, err := r.bsdf(c)
			if err != nil {
				return p, err
			}
			p.bsdf = b
		case "emitter":
			e, err := parseEmitter(c)
			if err != nil {
				return p, err
			}
			p.emitter = e
		case "transform":
			m, err := parseTransform(c)
			if err != nil {
				return p, err
			}
			p.transform = &m
		case "string":
			if c.Attr["name"] == "filename" {
				name := c.Attr["value"]
				p.filename = &name
			}
		case "float":
			if c.Attr["name"] == "radius" {
				v, err := parseFloat(c)
				if err != nil {
					return p, err
				}
				p.radius = &v
			}
		case "point":
			if c.Attr["name"] == "center" {
				v, err := parseXYZ(c, xyz, 0)
				if err != nil {
					return p, err
				}
				p.center = &v
			}
		case "ref":
			target, err := r.lookup(c)
			if err != nil {
				return p, err
			}
			switch target.Name {
			case "bsdf":
				b, err := r.bsdf(target)
				if err != nil {
					return p, err
				}
				p.bsdf = b
				continue
			case "emitter":
				e, err := parseEmitter(target)
				if err != nil {
					return p, err
				}
				p.emitter = e
				continue
			}
			inherited, err := r.fields(target)
			if err != nil {
				return p, err
			}
			p.merge(inherited)
		}
	}
	if id != "" {
		r.partials[id] = p
	}
	return p, nil
}

// bsdf resolves a bsdf element. Wrapper BSDFs such as twosided contribute
// whatever their nested BSDF defines.
func (r *resolver) bsdf(el *Element) (*BSDF, error) {
	id := el.Attr["id"]
	if err := r.enter(id); err != nil {
		return nil, err
	}
	defer r.leave(id)
	if cached, ok := r.bsdfs[id]; ok {
		return &cached, nil
	}

	b := &BSDF{Type: el.Attr["type"], Diffuse: el.Attr["type"] == "diffuse"}
	for _, c := range el.Children {
		var inner *BSDF
		var err error
		switch c.Name {
		case "rgb":
			if b.HasReflectance {
				continue
			}
			if b.Reflectance, err = parseColor(c); err != nil {
				return nil, err
			}
			b.HasReflectance = true
			continue
		case "bsdf":
			inner, err = r.bsdf(c)
		case "diffuse":
			inner, err = r.bsdf(c)
			if inner != nil {
				inner.Diffuse = true
			}
		case "ref":
			var target *Element
			if target, err = r.lookup(c); err == nil {
				inner, err = r.bsdf(target)
			}
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		b.Diffuse = b.Diffuse || inner.Diffuse
		if !b.HasReflectance && inner.HasReflectance {
			b.Reflectance = inner.Reflectance
			b.HasReflectance = true
		}
	}
	if id != "" {
		r.bsdfs[id] = *b
	}
	return b, nil
}

func parseEmitter(el *Element) (*Emitter, error) {
	for _, c := range el.Children {
		if c.Name == "rgb" {
			rad, err := parseColor(c)
			if err != nil {
				return nil, err
			}
			return &Emitter{Radiance: rad}, nil
		}
	}
	return nil, &formats.Error{
		Kind:     formats.ErrParse,
		Offset:   int(el.Offset),
		Context:  el.context(),
		Expected: "rgb radiance",
		Found:    "emitter without color",
	}
}

func parseSensor(el *Element) (Camera, error) {
	cam := CameraFromMatrix(smath.Identity())
	cam.FOV = DefaultFOV

	for _, c := range el.Children {
		switch {
		case c.Name == "float" && c.Attr["name"] == "fov":
			v, err := parseFloat(c)
			if err != nil {
				return cam, err
			}
			cam.FOV = v
		case c.Name == "transform":
			m, err := parseTransform(c)
			if err != nil {
				return cam, err
			}
			fov := cam.FOV
			cam = CameraFromMatrix(m)
			cam.FOV = fov
		}
	}
	return cam, nil
}
