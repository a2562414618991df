package formats

import (
	"fmt"
	"strings"

	smath "github.com/Faultbox/texelscene/pkg/math"
)

// DefaultObjectName names the object that collects faces declared before
// any group or material-use statement.
const DefaultObjectName = "default"

// VertexRef is one corner of a face. Indices are resolved 0-based offsets
// into the mesh pools; TexCoord and Normal are -1 when absent.
type VertexRef struct {
	Position int
	TexCoord int
	Normal   int
}

// Face is a triangle (3 refs) or a quad (4 refs).
type Face struct {
	Refs   []VertexRef
	Offset int // Byte offset of the face statement
}

// HasNormals reports whether every corner carries a normal reference.
func (f Face) HasNormals() bool {
	for _, r := range f.Refs {
		if r.Normal < 0 {
			return false
		}
	}
	return len(f.Refs) > 0
}

// MeshObject is a named run of faces sharing one material.
type MeshObject struct {
	Name     string
	Material string // Empty until a material-use statement applies
	Smooth   bool
	Faces    []Face
}

// Mesh is a parsed mesh document.
type Mesh struct {
	MaterialLibs []string
	Positions    []smath.Vec3
	TexCoords    []smath.Vec2
	Normals      []smath.Vec3
	Objects      []*MeshObject
}

// FaceCount returns the number of faces across all objects.
func (m *Mesh) FaceCount() int {
	n := 0
	for _, obj := range m.Objects {
		n += len(obj.Faces)
	}
	return n
}

// ParseOBJ parses a mesh document.
func ParseOBJ(src string) (*Mesh, error) {
	tokens, err := Lex(src, MeshDialect)
	if err != nil {
		return nil, err
	}

	p := &objParser{
		s:    tokenStream{src: src, tokens: tokens},
		mesh: &Mesh{},
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.mesh, nil
}

type objParser struct {
	s    tokenStream
	mesh *Mesh

	cur            *MeshObject
	activeMaterial string
}

func (p *objParser) parse() error {
	for !p.s.done() {
		tok, _ := p.s.next()
		if tok.Kind != TokenKeyword {
			return p.s.errorAtToken(tok, "statement keyword")
		}

		var err error
		switch tok.Text {
		case "mtllib":
			err = p.parseLibraries()
		case "v":
			var v smath.Vec3
			v, err = p.s.vec3("vertex coordinate")
			if err == nil {
				p.s.optionalNumber() // w
				p.mesh.Positions = append(p.mesh.Positions, v)
			}
		case "vt":
			err = p.parseTexCoord()
		case "vn":
			var n smath.Vec3
			n, err = p.s.vec3("normal coordinate")
			if err == nil {
				p.mesh.Normals = append(p.mesh.Normals, n)
			}
		case "g", "o":
			err = p.parseGroup()
		case "usemtl":
			var name string
			name, _, err = p.s.name("material name")
			if err == nil {
				p.useMaterial(name)
			}
		case "f":
			err = p.parseFace(tok)
		case "s":
			err = p.parseSmoothing()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// parseLibraries reads one or more library names. Paths such as
// "../mat/a.mtl" arrive as adjacent identifier and slash tokens and are
// joined back together.
func (p *objParser) parseLibraries() error {
	count := 0
	var b strings.Builder
	var prev Token

	flush := func() {
		if b.Len() > 0 {
			p.mesh.MaterialLibs = append(p.mesh.MaterialLibs, b.String())
			b.Reset()
			count++
		}
	}

	for {
		tok, ok := p.s.peek()
		if !ok || tok.Kind == TokenKeyword {
			break
		}
		if b.Len() > 0 && !adjacent(prev, tok) {
			flush()
		}
		b.WriteString(tok.Text)
		prev = tok
		p.s.pos++
	}
	flush()

	if count == 0 {
		return p.s.errorAt("material library name")
	}
	return nil
}

func (p *objParser) parseTexCoord() error {
	u, err := p.s.float32("texture coordinate")
	if err != nil {
		return err
	}
	v, err := p.s.float32("texture coordinate")
	if err != nil {
		return err
	}
	p.s.optionalNumber() // w
	p.mesh.TexCoords = append(p.mesh.TexCoords, smath.Vec2{X: u, Y: v})
	return nil
}

// parseGroup handles "g"/"o". Several names on one line form one group name.
func (p *objParser) parseGroup() error {
	var names []string
	for p.s.peekKind(TokenIdentifier) || p.s.peekKind(TokenNumber) {
		tok, _ := p.s.next()
		names = append(names, tok.Text)
	}
	if len(names) == 0 {
		return p.s.errorAt("group name")
	}

	name := strings.Join(names, " ")
	if p.cur != nil && p.cur.Name == name {
		return nil
	}
	p.newObject(name)
	return nil
}

// useMaterial sets the material of an object that has none. Once an object
// has a material, every further usemtl starts a new object under the same
// group name, even when the name repeats.
func (p *objParser) useMaterial(name string) {
	p.activeMaterial = name
	switch {
	case p.cur == nil:
		p.newObject(DefaultObjectName).Material = name
	case p.cur.Material == "":
		p.cur.Material = name
	default:
		p.newObject(p.cur.Name).Material = name
	}
}

func (p *objParser) newObject(name string) *MeshObject {
	p.cur = &MeshObject{Name: name}
	p.mesh.Objects = append(p.mesh.Objects, p.cur)
	return p.cur
}

func (p *objParser) current() *MeshObject {
	if p.cur == nil {
		p.newObject(DefaultObjectName)
	}
	return p.cur
}

func (p *objParser) parseFace(fTok Token) error {
	var refs []VertexRef
	for p.s.peekKind(TokenNumber) {
		ref, err := p.parseVertexRef()
		if err != nil {
			return err
		}
		refs = append(refs, ref)
	}

	if len(refs) != 3 && len(refs) != 4 {
		return &Error{
			Kind:    ErrUnsupportedFaceArity,
			Offset:  fTok.Offset,
			Context: ContextWindow(p.s.src, fTok.Offset),
			Detail:  fmt.Sprintf("face has %d vertices, expected 3 or 4", len(refs)),
		}
	}

	obj := p.current()
	if obj.Material == "" {
		obj.Material = p.activeMaterial
	}
	obj.Faces = append(obj.Faces, Face{Refs: refs, Offset: fTok.Offset})
	return nil
}

// parseVertexRef reads "p", "p/t", "p//n" or "p/t/n". Sub-indices must be
// written without spaces around the slashes.
func (p *objParser) parseVertexRef() (VertexRef, error) {
	ref := VertexRef{TexCoord: -1, Normal: -1}

	idx, tok, err := p.s.integer("vertex index")
	if err != nil {
		return ref, err
	}
	if ref.Position, err = p.resolve(idx, len(p.mesh.Positions), tok, "vertex"); err != nil {
		return ref, err
	}

	last := tok
	for slot := 0; slot < 2; slot++ {
		slash, ok := p.s.peek()
		if !ok || slash.Kind != TokenSlash || !adjacent(last, slash) {
			break
		}
		p.s.pos++
		last = slash

		num, ok := p.s.peek()
		if !ok || num.Kind != TokenNumber || !adjacent(slash, num) {
			continue
		}
		idx, tok, err := p.s.integer("vertex sub-index")
		if err != nil {
			return ref, err
		}
		last = tok

		if slot == 0 {
			ref.TexCoord, err = p.resolve(idx, len(p.mesh.TexCoords), tok, "texture coordinate")
		} else {
			ref.Normal, err = p.resolve(idx, len(p.mesh.Normals), tok, "normal")
		}
		if err != nil {
			return ref, err
		}
	}
	return ref, nil
}

// resolve turns a 1-based or negative (relative to the current pool end)
// index into a 0-based pool offset.
func (p *objParser) resolve(idx, poolLen int, tok Token, what string) (int, error) {
	var abs int
	switch {
	case idx > 0:
		abs = idx - 1
	case idx < 0:
		abs = poolLen + idx
	default:
		abs = -1
	}
	if abs < 0 || abs >= poolLen {
		expected := fmt.Sprintf("%s index within a pool of %d", what, poolLen)
		return 0, p.s.errorAtToken(tok, expected)
	}
	return abs, nil
}

func (p *objParser) parseSmoothing() error {
	tok, ok := p.s.peek()
	if !ok {
		return p.s.errorAt("smoothing group")
	}

	var smooth bool
	switch {
	case tok.Kind == TokenNumber:
		smooth = tok.Value != 0
	case tok.Kind == TokenIdentifier && tok.Text == "on":
		smooth = true
	case tok.Kind == TokenIdentifier && tok.Text == "off":
		smooth = false
	default:
		return p.s.errorAt("smoothing group")
	}
	p.s.pos++
	p.current().Smooth = smooth
	return nil
}
