package formats

import (
	"fmt"

	smath "github.com/Faultbox/texelscene/pkg/math"
)

// MaterialField is a presence bit for an optional material field.
type MaterialField uint16

const (
	FieldSpecularExponent MaterialField = 1 << iota // Ns
	FieldRefractiveIndex                            // Ni
	FieldIllum                                      // illum
	FieldDissolve                                   // d or Tr
	FieldAmbient                                    // Ka
	FieldDiffuse                                    // Kd
	FieldSpecular                                   // Ks
	FieldEmissive                                   // Ke
	FieldTransmission                               // Tf
)

// Material is a named record from a material library.
// Fields are meaningful only when the matching presence bit is set.
type Material struct {
	Name string

	SpecularExponent float32 // Ns
	RefractiveIndex  float32 // Ni
	Illum            int     // Illumination model id
	Dissolve         float32 // d, or 1 - Tr

	Ambient            smath.Vec3 // Ka
	Diffuse            smath.Vec3 // Kd
	Specular           smath.Vec3 // Ks
	Emissive           smath.Vec3 // Ke
	TransmissionFilter smath.Vec3 // Tf

	Fields MaterialField
}

// Has reports whether field f was set.
func (m *Material) Has(f MaterialField) bool {
	return m.Fields&f != 0
}

// ParseMTL parses a material library document.
func ParseMTL(src string) ([]Material, error) {
	tokens, err := Lex(src, MaterialDialect)
	if err != nil {
		return nil, err
	}

	s := &tokenStream{src: src, tokens: tokens}
	var materials []Material
	seen := make(map[string]bool)

	for !s.done() {
		tok, _ := s.next()
		if tok.Kind != TokenKeyword {
			return nil, s.errorAtToken(tok, "material keyword")
		}

		if tok.Text == "newmtl" {
			name, nameTok, err := s.name("material name")
			if err != nil {
				return nil, err
			}
			if seen[name] {
				return nil, s.errorAtToken(nameTok, "unique material name")
			}
			seen[name] = true
			materials = append(materials, Material{Name: name})
			continue
		}

		if len(materials) == 0 {
			return nil, &Error{
				Kind:    ErrDanglingField,
				Offset:  tok.Offset,
				Context: ContextWindow(src, tok.Offset),
				Detail:  fmt.Sprintf("%q appears before any newmtl", tok.Text),
			}
		}
		if err := setMaterialField(s, &materials[len(materials)-1], tok.Text); err != nil {
			return nil, err
		}
	}
	return materials, nil
}

func setMaterialField(s *tokenStream, m *Material, key string) error {
	var err error
	switch key {
	case "Ns":
		m.SpecularExponent, err = s.float32("specular exponent")
		m.Fields |= FieldSpecularExponent
	case "Ni":
		m.RefractiveIndex, err = s.float32("refractive index")
		m.Fields |= FieldRefractiveIndex
	case "illum":
		m.Illum, _, err = s.integer("illumination model")
		m.Fields |= FieldIllum
	case "d":
		m.Dissolve, err = s.float32("dissolve")
		m.Fields |= FieldDissolve
	case "Tr":
		var tr float32
		tr, err = s.float32("transparency")
		m.Dissolve = 1 - tr
		m.Fields |= FieldDissolve
	case "Ka":
		m.Ambient, err = s.vec3("ambient color")
		m.Fields |= FieldAmbient
	case "Kd":
		m.Diffuse, err = s.vec3("diffuse color")
		m.Fields |= FieldDiffuse
	case "Ks":
		m.Specular, err = s.vec3("specular color")
		m.Fields |= FieldSpecular
	case "Ke":
		m.Emissive, err = s.vec3("emissive color")
		m.Fields |= FieldEmissive
	case "Tf":
		m.TransmissionFilter, err = s.vec3("transmission filter")
		m.Fields |= FieldTransmission
	}
	if err != nil {
		return err
	}

	// Every field has a fixed arity; a trailing number means too many values.
	if s.peekKind(TokenNumber) {
		return s.errorAt("next statement")
	}
	return nil
}
