package formats

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every failure surfaced by the parsers, the assembler and the
// markup loader matches exactly one of these with errors.Is.
var (
	ErrLex                  = errors.New("unrecognized character")
	ErrParse                = errors.New("unexpected token")
	ErrDanglingField        = errors.New("field before declaration")
	ErrUnknownMaterial      = errors.New("unknown material")
	ErrUnsupportedFaceArity = errors.New("unsupported face arity")
	ErrCyclicReference      = errors.New("cyclic reference")
	ErrLoadFailure          = errors.New("asset load failed")
)

// contextRadius is the number of bytes shown on each side of an error offset.
const contextRadius = 16

// Error is a fatal parse or load error with positional context.
type Error struct {
	Kind     error  // One of the Err* kinds above
	Offset   int    // Byte offset into the source, -1 when not positional
	Context  string // Source text around Offset
	Expected string // What the parser wanted (ParseError only)
	Found    string // What it got instead
	Detail   string // Free-form message
	Err      error  // Underlying cause, e.g. an I/O error for ErrLoadFailure
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Expected != "" || e.Found != "" {
		fmt.Fprintf(&b, ": expected %s, found %s", e.Expected, e.Found)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}
	if e.Context != "" {
		fmt.Fprintf(&b, " near %q", e.Context)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ContextWindow returns up to contextRadius bytes of src on each side of
// offset, with line breaks flattened so the window prints on one line.
func ContextWindow(src string, offset int) string {
	if offset < 0 || len(src) == 0 {
		return ""
	}
	if offset > len(src) {
		offset = len(src)
	}
	start := max(0, offset-contextRadius)
	end := min(len(src), offset+contextRadius)
	window := src[start:end]
	window = strings.ReplaceAll(window, "\r", " ")
	return strings.ReplaceAll(window, "\n", " ")
}

// NewParseError builds an ErrParse error at offset in src.
func NewParseError(src string, offset int, expected, found string) *Error {
	return &Error{
		Kind:     ErrParse,
		Offset:   offset,
		Context:  ContextWindow(src, offset),
		Expected: expected,
		Found:    found,
	}
}

// NewLoadError wraps a failed asset fetch.
func NewLoadError(name string, err error) *Error {
	return &Error{
		Kind:   ErrLoadFailure,
		Offset: -1,
		Detail: fmt.Sprintf("loading %q", name),
		Err:    err,
	}
}

// NewUnknownMaterialError reports a material name with no library record.
func NewUnknownMaterialError(name string) *Error {
	return &Error{
		Kind:   ErrUnknownMaterial,
		Offset: -1,
		Detail: fmt.Sprintf("%q has no library record", name),
	}
}

// NewCyclicReferenceError reports a reference chain that returns to id.
func NewCyclicReferenceError(chain []string, id string) *Error {
	return &Error{
		Kind:   ErrCyclicReference,
		Offset: -1,
		Detail: strings.Join(append(append([]string{}, chain...), id), " -> "),
	}
}
