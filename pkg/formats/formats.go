// Package formats provides lexers and parsers for the plain-text scene
// asset formats: Wavefront-style meshes (.obj) and their material
// libraries (.mtl). It also owns the error kinds shared by every stage of
// scene loading.
package formats

import (
	"fmt"
	"path"
	"strings"
)

// DocumentKind identifies a scene document format.
type DocumentKind uint8

const (
	KindUnknown  DocumentKind = iota
	KindMesh                  // .obj
	KindMaterial              // .mtl
	KindMarkup                // .xml
)

// String returns a human-readable kind name.
func (k DocumentKind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindMesh:
		return "mesh"
	case KindMaterial:
		return "material library"
	case KindMarkup:
		return "markup"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// DetectKind returns the document kind for a file name, by extension.
// Extensions are matched case-insensitively.
func DetectKind(name string) DocumentKind {
	switch strings.ToLower(path.Ext(name)) {
	case ".obj":
		return KindMesh
	case ".mtl":
		return KindMaterial
	case ".xml":
		return KindMarkup
	default:
		return KindUnknown
	}
}
