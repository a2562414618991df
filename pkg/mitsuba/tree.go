// Package mitsuba reads the subset of the Mitsuba scene markup used by the
// compiler: shapes with BSDFs, emitters, transforms and references, plus a
// single sensor.
package mitsuba

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"

	"github.com/Faultbox/texelscene/pkg/formats"
)

// Element is a node of the generic element tree.
type Element struct {
	Name     string
	Attr     map[string]string
	Children []*Element
	Offset   int64 // Byte offset of the start tag

	src *string // Whole document, shared by every element of one tree
}

// context returns the source text around the start tag, or "" for trees
// built without ParseTree.
func (e *Element) context() string {
	if e.src == nil {
		return ""
	}
	return formats.ContextWindow(*e.src, int(e.Offset))
}

// Get returns the value of attribute key, or "".
func (e *Element) Get(key string) string {
	return e.Attr[key]
}

// Child returns the first child with the given tag name.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Named returns the first child with the given tag and name attribute,
// e.g. Named("float", "fov").
func (e *Element) Named(tag, name string) *Element {
	for _, c := range e.Children {
		if c.Name == tag && c.Attr["name"] == name {
			return c
		}
	}
	return nil
}

// ParseTree reads a markup document into an element tree. Character data
// is discarded; only tags and attributes carry meaning in scene files.
func ParseTree(r io.Reader) (*Element, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, formats.NewLoadError("markup document", err)
	}
	src := string(data)

	d := xml.NewDecoder(bytes.NewReader(data))
	var root *Element
	var stack []*Element

	for {
		offset := d.InputOffset()
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, formats.NewParseError(src, int(d.InputOffset()), "well-formed markup", err.Error())
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{
				Name:   t.Name.Local,
				Attr:   make(map[string]string, len(t.Attr)),
				Offset: offset,
				src:    &src,
			}
			for _, a := range t.Attr {
				el.Attr[a.Name.Local] = a.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, formats.NewParseError(src, int(offset), "single root element", "<"+el.Name+">")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}

	if root == nil {
		return nil, formats.NewParseError(src, len(src), "root element", "end of input")
	}
	return root, nil
}

// indexIDs maps every declared id in the tree to its element. A ref's id
// names its target, so ref elements are never indexed. The first
// declaration of an id wins.
func indexIDs(root *Element) map[string]*Element {
	ids := make(map[string]*Element)
	var walk func(*Element)
	walk = func(e *Element) {
		if id := e.Attr["id"]; id != "" && e.Name != "ref" {
			if _, ok := ids[id]; !ok {
				ids[id] = e
			}
		}
		for _, c := range e.Children {
			walk(c)
		}
	}
	walk(root)
	return ids
}
