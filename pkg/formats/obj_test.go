package formats

import (
	"errors"
	"strings"
	"testing"

	smath "github.com/Faultbox/texelscene/pkg/math"
)

const fiveVertices = `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 0 0 1
`

func mustParseOBJ(t *testing.T, src string) *Mesh {
	t.Helper()
	mesh, err := ParseOBJ(src)
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	return mesh
}

func positions(f Face) []int {
	out := make([]int, len(f.Refs))
	for i, r := range f.Refs {
		out[i] = r.Position
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestParseOBJ_Pools(t *testing.T) {
	mesh := mustParseOBJ(t, `# cube corner
v 1.0 2.0 3.0
v -1 -2 -3 1.0
vt 0.5 0.25
vt 1 1 0
vn 0 1 0
`)

	if len(mesh.Positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(mesh.Positions))
	}
	if mesh.Positions[1] != (smath.Vec3{X: -1, Y: -2, Z: -3}) {
		t.Errorf("position 1: got %v", mesh.Positions[1])
	}
	if len(mesh.TexCoords) != 2 || mesh.TexCoords[0] != (smath.Vec2{X: 0.5, Y: 0.25}) {
		t.Errorf("texcoords: got %v", mesh.TexCoords)
	}
	if len(mesh.Normals) != 1 || mesh.Normals[0] != (smath.Vec3{Y: 1}) {
		t.Errorf("normals: got %v", mesh.Normals)
	}
}

func TestParseOBJ_NegativeIndices(t *testing.T) {
	mesh := mustParseOBJ(t, fiveVertices+"f -1 -5 -3\n")

	face := mesh.Objects[0].Faces[0]
	if got := positions(face); !equalInts(got, []int{4, 0, 2}) {
		t.Errorf("got positions %v, want [4 0 2]", got)
	}
}

func TestParseOBJ_NegativeIndicesUsePoolAtFaceTime(t *testing.T) {
	mesh := mustParseOBJ(t, `v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
v 0 0 1
v 1 0 1
f -3 -2 -1
`)

	faces := mesh.Objects[0].Faces
	if got := positions(faces[0]); !equalInts(got, []int{0, 1, 2}) {
		t.Errorf("first face: got %v, want [0 1 2]", got)
	}
	if got := positions(faces[1]); !equalInts(got, []int{2, 3, 4}) {
		t.Errorf("second face: got %v, want [2 3 4]", got)
	}
}

func TestParseOBJ_VertexRefForms(t *testing.T) {
	src := fiveVertices + `vt 0 0
vt 1 0
vn 0 0 1
vn 0 1 0
f 1 2 3
f 1/1 2/2 3/1
f 1//2 2//2 3//1
f 1/2/1 2/1/2 3/2/2
f 1/ 2/ 3/
`
	mesh := mustParseOBJ(t, src)
	faces := mesh.Objects[0].Faces
	if len(faces) != 5 {
		t.Fatalf("expected 5 faces, got %d", len(faces))
	}

	tests := []struct {
		name string
		face int
		ref  VertexRef
	}{
		{"position only", 0, VertexRef{Position: 0, TexCoord: -1, Normal: -1}},
		{"position/texcoord", 1, VertexRef{Position: 0, TexCoord: 0, Normal: -1}},
		{"position//normal", 2, VertexRef{Position: 0, TexCoord: -1, Normal: 1}},
		{"position/texcoord/normal", 3, VertexRef{Position: 0, TexCoord: 1, Normal: 0}},
		{"trailing slash", 4, VertexRef{Position: 0, TexCoord: -1, Normal: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := faces[tt.face].Refs[0]; got != tt.ref {
				t.Errorf("got %+v, want %+v", got, tt.ref)
			}
		})
	}

	if faces[0].HasNormals() {
		t.Error("face without normal refs should not report normals")
	}
	if !faces[2].HasNormals() {
		t.Error("face with normal refs should report normals")
	}
}

func TestParseOBJ_Quad(t *testing.T) {
	mesh := mustParseOBJ(t, fiveVertices+"f 1 2 3 4\n")
	face := mesh.Objects[0].Faces[0]
	if got := positions(face); !equalInts(got, []int{0, 1, 2, 3}) {
		t.Errorf("quad positions: got %v", got)
	}
}

func TestParseOBJ_FaceArity(t *testing.T) {
	tests := []struct {
		name string
		face string
	}{
		{"two vertices", "f 1 2\n"},
		{"five vertices", "f 1 2 3 4 5\n"},
		{"no vertices", "f\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOBJ(fiveVertices + tt.face)
			if !errors.Is(err, ErrUnsupportedFaceArity) {
				t.Errorf("expected ErrUnsupportedFaceArity, got %v", err)
			}
		})
	}
}

func TestParseOBJ_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"index zero", fiveVertices + "f 0 1 2\n"},
		{"index past end", fiveVertices + "f 1 2 6\n"},
		{"negative past start", fiveVertices + "f -6 1 2\n"},
		{"fractional index", fiveVertices + "f 1.5 2 3\n"},
		{"normal out of range", fiveVertices + "f 1//1 2//1 3//1\n"},
		{"short vertex", "v 1 2\nf 1 2 3\n"},
		{"statement without keyword", "foo 1 2 3\n"},
		{"usemtl without name", "usemtl\n"},
		{"group without name", "g\nv 0 0 0\n"},
		{"bad smoothing", "s maybe\n"},
		{"mtllib without name", "mtllib\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOBJ(tt.src)
			if !errors.Is(err, ErrParse) {
				t.Fatalf("expected ErrParse, got %v", err)
			}
			var perr *Error
			if !errors.As(err, &perr) || perr.Expected == "" {
				t.Errorf("expected a positional parse error, got %v", err)
			}
		})
	}
}

func TestParseOBJ_LexError(t *testing.T) {
	_, err := ParseOBJ("v 1 2 3\nf 1 2 3 !\n")
	if !errors.Is(err, ErrLex) {
		t.Errorf("expected ErrLex, got %v", err)
	}
}

func TestParseOBJ_GroupContinuation(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		names []string
	}{
		{"repeated group", "g foo\ng foo\n", []string{"foo"}},
		{"different groups", "g foo\ng bar\n", []string{"foo", "bar"}},
		{"group returns", "g foo\ng bar\ng foo\n", []string{"foo", "bar", "foo"}},
		{"object alias", "o foo\ng foo\n", []string{"foo"}},
		{"multi-name group", "g left wall\n", []string{"left wall"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh := mustParseOBJ(t, tt.src)
			if len(mesh.Objects) != len(tt.names) {
				t.Fatalf("got %d objects, want %d", len(mesh.Objects), len(tt.names))
			}
			for i, name := range tt.names {
				if mesh.Objects[i].Name != name {
					t.Errorf("object %d: got %q, want %q", i, mesh.Objects[i].Name, name)
				}
			}
		})
	}
}

func TestParseOBJ_MaterialUse(t *testing.T) {
	mesh := mustParseOBJ(t, fiveVertices+`g box
usemtl red
f 1 2 3
usemtl red
f 1 3 4
usemtl blue
f 2 3 4
g lid
f 1 2 5
`)

	if len(mesh.Objects) != 4 {
		t.Fatalf("expected 4 objects, got %d", len(mesh.Objects))
	}

	// A repeated usemtl still starts a new object.
	want := []struct {
		name     string
		material string
		faces    int
	}{
		{"box", "red", 1},
		{"box", "red", 1},
		{"box", "blue", 1},
		{"lid", "blue", 1},
	}
	for i, w := range want {
		obj := mesh.Objects[i]
		if obj.Name != w.name || obj.Material != w.material || len(obj.Faces) != w.faces {
			t.Errorf("object %d: got %q/%q/%d faces, want %q/%q/%d",
				i, obj.Name, obj.Material, len(obj.Faces), w.name, w.material, w.faces)
		}
	}
	if mesh.FaceCount() != 4 {
		t.Errorf("FaceCount() = %d, want 4", mesh.FaceCount())
	}
}

func TestParseOBJ_DefaultObject(t *testing.T) {
	mesh := mustParseOBJ(t, fiveVertices+"f 1 2 3\nusemtl red\nf 1 2 4\n")

	if len(mesh.Objects) != 1 {
		t.Fatalf("expected 1 object, got %d", len(mesh.Objects))
	}
	obj := mesh.Objects[0]
	if obj.Name != DefaultObjectName {
		t.Errorf("expected default object, got %q", obj.Name)
	}
	if obj.Material != "red" {
		t.Errorf("material-use on an object without material should set it, got %q", obj.Material)
	}
}

func TestParseOBJ_MaterialLibraries(t *testing.T) {
	mesh := mustParseOBJ(t, "mtllib scene.mtl ../shared/metal-v2.mtl\nmtllib ./extra.mtl\n")

	want := []string{"scene.mtl", "../shared/metal-v2.mtl", "./extra.mtl"}
	if len(mesh.MaterialLibs) != len(want) {
		t.Fatalf("got libs %v, want %v", mesh.MaterialLibs, want)
	}
	for i := range want {
		if mesh.MaterialLibs[i] != want[i] {
			t.Errorf("lib %d: got %q, want %q", i, mesh.MaterialLibs[i], want[i])
		}
	}
}

func TestParseOBJ_Smoothing(t *testing.T) {
	mesh := mustParseOBJ(t, fiveVertices+"g a\ns 1\nf 1 2 3\ng b\ns off\nf 1 2 3\ng c\ns on\n")

	want := []bool{true, false, true}
	for i, w := range want {
		if mesh.Objects[i].Smooth != w {
			t.Errorf("object %d smooth: got %v, want %v", i, mesh.Objects[i].Smooth, w)
		}
	}
}

func TestParseOBJ_ErrorPosition(t *testing.T) {
	src := fiveVertices + "f 1 2 7\n"
	_, err := ParseOBJ(src)

	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if perr.Offset != strings.Index(src, "7") {
		t.Errorf("expected offset of the bad index, got %d", perr.Offset)
	}
}
