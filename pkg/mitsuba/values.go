package mitsuba

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/texelscene/pkg/formats"
	smath "github.com/Faultbox/texelscene/pkg/math"
)

func valueError(el *Element, expected string) *formats.Error {
	return &formats.Error{
		Kind:     formats.ErrParse,
		Offset:   int(el.Offset),
		Context:  el.context(),
		Expected: expected,
		Found:    fmt.Sprintf("<%s value=%q>", el.Name, el.Attr["value"]),
	}
}

// parseFloats splits s on whitespace and commas.
func parseFloats(s string) ([]float32, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	out := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(v)
	}
	return out, nil
}

func parseFloat(el *Element) (float32, error) {
	vs, err := parseFloats(el.Attr["value"])
	if err != nil || len(vs) != 1 {
		return 0, valueError(el, "one number")
	}
	return vs[0], nil
}

// parseColor reads an rgb value. A single number is a grey level.
func parseColor(el *Element) (smath.Vec3, error) {
	vs, err := parseFloats(el.Attr["value"])
	if err != nil {
		return smath.Vec3{}, valueError(el, "color")
	}
	switch len(vs) {
	case 1:
		return smath.Vec3{X: vs[0], Y: vs[0], Z: vs[0]}, nil
	case 3:
		return smath.Vec3{X: vs[0], Y: vs[1], Z: vs[2]}, nil
	}
	return smath.Vec3{}, valueError(el, "1 or 3 color components")
}

// parseXYZ reads a point or vector given either as x/y/z attributes or as
// a value list. Missing attributes default to def.
func parseXYZ(el *Element, attrs [3]string, def float32) (smath.Vec3, error) {
	if v, ok := el.Attr["value"]; ok {
		vs, err := parseFloats(v)
		if err != nil {
			return smath.Vec3{}, valueError(el, "3 numbers")
		}
		switch len(vs) {
		case 1:
			return smath.Vec3{X: vs[0], Y: vs[0], Z: vs[0]}, nil
		case 3:
			return smath.Vec3{X: vs[0], Y: vs[1], Z: vs[2]}, nil
		}
		return smath.Vec3{}, valueError(el, "3 numbers")
	}

	out := [3]float32{def, def, def}
	for i, name := range attrs {
		s, ok := el.Attr[name]
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
		if err != nil {
			return smath.Vec3{}, &formats.Error{
				Kind:     formats.ErrParse,
				Offset:   int(el.Offset),
				Context:  el.context(),
				Expected: "number in attribute " + name,
				Found:    strconv.Quote(s),
			}
		}
		out[i] = float32(v)
	}
	return smath.Vec3{X: out[0], Y: out[1], Z: out[2]}, nil
}

var xyz = [3]string{"x", "y", "z"}

func parseMatrix(el *Element) (smath.Mat4, error) {
	vs, err := parseFloats(el.Attr["value"])
	if err != nil || len(vs) != 16 {
		return smath.Mat4{}, valueError(el, "16 numbers")
	}
	var m smath.Mat4
	copy(m[:], vs)
	return m, nil
}

// LookAt builds a camera-to-world matrix whose columns are left, up,
// forward and origin.
func LookAt(origin, target, up smath.Vec3) smath.Mat4 {
	dir := target.Sub(origin).Normalize()
	left := up.Normalize().Cross(dir).Normalize()
	newUp := dir.Cross(left)
	return smath.Mat4{
		left.X, newUp.X, dir.X, origin.X,
		left.Y, newUp.Y, dir.Y, origin.Y,
		left.Z, newUp.Z, dir.Z, origin.Z,
		0, 0, 0, 1,
	}
}

// parseTransform composes the children of a transform element. Each
// operation is applied after the ones before it.
func parseTransform(el *Element) (smath.Mat4, error) {
	m := smath.Identity()
	for _, c := range el.Children {
		var op smath.Mat4
		switch c.Name {
		case "matrix":
			var err error
			if op, err = parseMatrix(c); err != nil {
				return m, err
			}
		case "translate":
			v, err := parseXYZ(c, xyz, 0)
			if err != nil {
				return m, err
			}
			op = smath.Translate(v.X, v.Y, v.Z)
		case "scale":
			v, err := parseXYZ(c, xyz, 1)
			if err != nil {
				return m, err
			}
			op = smath.Scale(v.X, v.Y, v.Z)
		case "lookat", "lookAt":
			origin, err := parseVecAttr(c, "origin")
			if err != nil {
				return m, err
			}
			target, err := parseVecAttr(c, "target")
			if err != nil {
				return m, err
			}
			up := smath.Vec3{Y: 1}
			if _, ok := c.Attr["up"]; ok {
				if up, err = parseVecAttr(c, "up"); err != nil {
					return m, err
				}
			}
			op = LookAt(origin, target, up)
		default:
			continue
		}
		m = op.Mul(m)
	}
	return m, nil
}

func parseVecAttr(el *Element, name string) (smath.Vec3, error) {
	vs, err := parseFloats(el.Attr[name])
	if err != nil || len(vs) != 3 {
		return smath.Vec3{}, &formats.Error{
			Kind:     formats.ErrParse,
			Offset:   int(el.Offset),
			Context:  el.context(),
			Expected: "3 numbers in attribute " + name,
			Found:    strconv.Quote(el.Attr[name]),
		}
	}
	return smath.Vec3{X: vs[0], Y: vs[1], Z: vs[2]}, nil
}
