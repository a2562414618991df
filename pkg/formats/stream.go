package formats

import (
	"math"

	smath "github.com/Faultbox/texelscene/pkg/math"
)

// tokenStream is the cursor shared by the mesh and material parsers.
type tokenStream struct {
	src    string
	tokens []Token
	pos    int
}

func (s *tokenStream) done() bool {
	return s.pos >= len(s.tokens)
}

func (s *tokenStream) peek() (Token, bool) {
	if s.done() {
		return Token{}, false
	}
	return s.tokens[s.pos], true
}

func (s *tokenStream) next() (Token, bool) {
	tok, ok := s.peek()
	if ok {
		s.pos++
	}
	return tok, ok
}

// peekKind reports whether the next token has the given kind.
func (s *tokenStream) peekKind(kind TokenKind) bool {
	tok, ok := s.peek()
	return ok && tok.Kind == kind
}

// errorAt reports that the next token (or end of input) is not what the
// parser expected.
func (s *tokenStream) errorAt(expected string) *Error {
	tok, ok := s.peek()
	if !ok {
		return NewParseError(s.src, len(s.src), expected, "end of input")
	}
	return NewParseError(s.src, tok.Offset, expected, tok.String())
}

func (s *tokenStream) errorAtToken(tok Token, expected string) *Error {
	return NewParseError(s.src, tok.Offset, expected, tok.String())
}

func (s *tokenStream) number(what string) (float64, Token, error) {
	if !s.peekKind(TokenNumber) {
		return 0, Token{}, s.errorAt(what)
	}
	tok, _ := s.next()
	return tok.Value, tok, nil
}

// integer reads a number token that must hold an integral value.
func (s *tokenStream) integer(what string) (int, Token, error) {
	v, tok, err := s.number(what)
	if err != nil {
		return 0, tok, err
	}
	if v != math.Trunc(v) {
		return 0, tok, s.errorAtToken(tok, what)
	}
	return int(v), tok, nil
}

func (s *tokenStream) float32(what string) (float32, error) {
	v, _, err := s.number(what)
	return float32(v), err
}

func (s *tokenStream) vec3(what string) (smath.Vec3, error) {
	var out [3]float32
	for i := range out {
		v, err := s.float32(what)
		if err != nil {
			return smath.Vec3{}, err
		}
		out[i] = v
	}
	return smath.Vec3{X: out[0], Y: out[1], Z: out[2]}, nil
}

// optionalNumber consumes a trailing number if one follows.
func (s *tokenStream) optionalNumber() (float64, bool) {
	if !s.peekKind(TokenNumber) {
		return 0, false
	}
	tok, _ := s.next()
	return tok.Value, true
}

// name reads an identifier. Purely numeric names are accepted as well.
func (s *tokenStream) name(what string) (string, Token, error) {
	tok, ok := s.peek()
	if !ok || (tok.Kind != TokenIdentifier && tok.Kind != TokenNumber) {
		return "", Token{}, s.errorAt(what)
	}
	s.pos++
	return tok.Text, tok, nil
}

// adjacent reports whether b starts exactly where a ends.
func adjacent(a, b Token) bool {
	return a.Offset+len(a.Text) == b.Offset
}
