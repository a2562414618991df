// Package scene compiles a mesh or markup scene into encoded texel buffers.
package scene

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/texelscene/internal/assets"
	"github.com/Faultbox/texelscene/internal/logger"
	"github.com/Faultbox/texelscene/pkg/encoding"
	"github.com/Faultbox/texelscene/pkg/formats"
	"github.com/Faultbox/texelscene/pkg/geometry"
	"github.com/Faultbox/texelscene/pkg/mitsuba"
	"github.com/Faultbox/texelscene/pkg/texel"
)

// Capacities holds the record capacity of each output buffer.
type Capacities struct {
	GridSide   int // Triangle capacity is GridSide^2
	Materials  int
	Spheres    int
	Rectangles int
}

// Triangles returns the triangle record capacity.
func (c Capacities) Triangles() int {
	return texel.GridCapacity(c.GridSide)
}

// Options configures Compile.
type Options struct {
	Capacities  Capacities
	Concurrency int         // Parallel mesh loads for markup scenes
	Logger      *zap.Logger // Defaults to the "scene" component logger
}

// Compiled is the result of a compile: assembled data and its buffers.
type Compiled struct {
	BuildID string
	Source  string
	Created time.Time

	Geometry   *geometry.Geometry
	Spheres    []texel.Sphere
	Rectangles []texel.Rectangle
	Camera     *mitsuba.Camera
	Skipped    []string // Markup shapes of unsupported type
	Degenerate int      // Zero-area triangles, kept in the output

	Triangles        *texel.Buffer
	Materials        *texel.Buffer
	SphereBuffer     *texel.Buffer
	RectangleBuffer  *texel.Buffer
	TrianglesWanted  int // Records offered to the triangle buffer
	MaterialsWanted  int
	SpheresWanted    int
	RectanglesWanted int
}

// Compile loads name from src and compiles it. The extension selects the
// pipeline: .obj for a mesh with material libraries, .xml for markup.
func Compile(ctx context.Context, src assets.Source, name string, opts Options) (*Compiled, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Named("scene")
	}
	if opts.Capacities.GridSide <= 0 {
		return nil, fmt.Errorf("compile %s: grid side must be positive", name)
	}

	buildID := newBuildID()
	log = log.With(zap.String("build", buildID), zap.String("source", name))
	start := time.Now()

	c := &Compiled{BuildID: buildID, Source: name, Created: start.UTC()}
	asm := geometry.NewAssembler()

	var err error
	switch kind := formats.DetectKind(name); kind {
	case formats.KindMesh:
		err = compileOBJ(ctx, src, name, asm, log)
	case formats.KindMarkup:
		err = compileMarkup(ctx, src, name, asm, c, opts.Concurrency, log)
	default:
		err = fmt.Errorf("%s document is not a scene", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}

	c.Geometry = asm.Build()
	if c.Degenerate = c.countDegenerate(); c.Degenerate > 0 {
		log.Warn("degenerate triangles", zap.Int("count", c.Degenerate))
	}
	c.encode(opts.Capacities, log)

	log.Info("scene compiled",
		zap.Int("triangles", c.Triangles.Count),
		zap.Int("materials", c.Materials.Count),
		zap.Int("spheres", c.SphereBuffer.Count),
		zap.Int("rectangles", c.RectangleBuffer.Count),
		zap.Int("lights", c.Lights()),
		zap.Duration("elapsed", time.Since(start)))
	return c, nil
}

func newBuildID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func loadText(ctx context.Context, src assets.Source, name string) (string, error) {
	text, err := src.LoadText(ctx, name)
	if err != nil {
		return "", formats.NewLoadError(name, err)
	}
	return text, nil
}

// loadMesh parses a mesh document and every material library it names.
// Library names are relative to the mesh.
func loadMesh(ctx context.Context, src assets.Source, name string) (*formats.Mesh, [][]formats.Material, error) {
	text, err := loadText(ctx, src, name)
	if err != nil {
		return nil, nil, err
	}
	mesh, err := formats.ParseOBJ(text)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", name, err)
	}

	libs := make([][]formats.Material, 0, len(mesh.MaterialLibs))
	for _, lib := range mesh.MaterialLibs {
		libName := encoding.JoinAssetPath(name, lib)
		text, err := loadText(ctx, src, libName)
		if err != nil {
			return nil, nil, err
		}
		mats, err := formats.ParseMTL(text)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", libName, err)
		}
		libs = append(libs, mats)
	}
	return mesh, libs, nil
}

func compileOBJ(ctx context.Context, src assets.Source, name string, asm *geometry.Assembler, log *zap.Logger) error {
	mesh, libs, err := loadMesh(ctx, src, name)
	if err != nil {
		return err
	}
	for _, lib := range libs {
		asm.AddLibrary(lib)
	}

	log.Debug("mesh parsed",
		zap.Int("positions", len(mesh.Positions)),
		zap.Int("normals", len(mesh.Normals)),
		zap.Int("objects", len(mesh.Objects)),
		zap.Int("faces", mesh.FaceCount()),
		zap.Int("libraries", len(libs)))

	return asm.AddMesh(mesh)
}

// encode packs everything into fixed-capacity buffers and warns about
// dropped records.
func (c *Compiled) encode(caps Capacities, log *zap.Logger) {
	c.TrianglesWanted = len(c.Geometry.Triangles)
	c.MaterialsWanted = len(c.Geometry.Materials)
	c.SpheresWanted = len(c.Spheres)
	c.RectanglesWanted = len(c.Rectangles)

	c.Triangles = texel.EncodeTriangles(c.Geometry.Triangles, caps.Triangles())
	c.Materials = texel.EncodeMaterials(c.Geometry.Materials, caps.Materials)
	c.SphereBuffer = texel.EncodeSpheres(c.Spheres, caps.Spheres)
	c.RectangleBuffer = texel.EncodeRectangles(c.Rectangles, caps.Rectangles)

	for _, b := range c.buffers() {
		if b.buf.Truncated(b.wanted) {
			log.Warn("buffer truncated",
				zap.String("buffer", b.name),
				zap.Int("records", b.wanted),
				zap.Int("capacity", b.buf.Capacity),
				zap.Int("dropped", b.wanted-b.buf.Count))
		}
	}
}

// Truncated reports whether any buffer dropped records.
func (c *Compiled) Truncated() bool {
	for _, b := range c.buffers() {
		if b.buf.Truncated(b.wanted) {
			return true
		}
	}
	return false
}

type namedBuffer struct {
	name   string
	file   string
	buf    *texel.Buffer
	wanted int
}

func (c *Compiled) buffers() []namedBuffer {
	return []namedBuffer{
		{"triangles", "triangles.f32", c.Triangles, c.TrianglesWanted},
		{"materials", "materials.f32", c.Materials, c.MaterialsWanted},
		{"spheres", "spheres.f32", c.SphereBuffer, c.SpheresWanted},
		{"rectangles", "rectangles.f32", c.RectangleBuffer, c.RectanglesWanted},
	}
}
