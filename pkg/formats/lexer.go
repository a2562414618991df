package formats

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// TokenKind identifies the variant of a Token.
type TokenKind uint8

const (
	TokenIdentifier TokenKind = iota // Names, paths
	TokenNumber                      // Integers and decimals
	TokenKeyword                     // Entries of the dialect keyword table
	TokenSlash                       // Face sub-index separator (mesh only)
)

// String returns a human-readable token kind name.
func (k TokenKind) String() string {
	switch k {
	case TokenIdentifier:
		return "identifier"
	case TokenNumber:
		return "number"
	case TokenKeyword:
		return "keyword"
	case TokenSlash:
		return "slash"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Token is a single lexeme. Tokens are produced in source order.
type Token struct {
	Kind   TokenKind
	Text   string  // Source text of the token
	Value  float64 // Numeric value (TokenNumber only)
	Offset int     // Byte offset of the first character
}

// String describes the token for error messages.
func (t Token) String() string {
	if t.Kind == TokenSlash {
		return "slash"
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}

// Dialect configures the shared lexer for one text format.
type Dialect struct {
	Name          string
	Keywords      []string // Longest first
	IdentExtra    string   // Non-alphanumeric characters allowed in identifiers
	SignedNumbers bool     // A leading '-' starts a number
	Slash         bool     // Emit TokenSlash for '/'
}

// NewDialect creates a dialect whose keyword table is ordered longest first,
// so a keyword that is a prefix of another never shadows it.
func NewDialect(name string, keywords []string, identExtra string, signed, slash bool) *Dialect {
	kw := append([]string(nil), keywords...)
	sort.SliceStable(kw, func(i, j int) bool {
		return len(kw[i]) > len(kw[j])
	})
	return &Dialect{
		Name:          name,
		Keywords:      kw,
		IdentExtra:    identExtra,
		SignedNumbers: signed,
		Slash:         slash,
	}
}

// Built-in dialects.
var (
	MeshDialect = NewDialect("mesh",
		[]string{"mtllib", "usemtl", "v", "vt", "vn", "g", "o", "f", "s"},
		"-._", true, true)

	MaterialDialect = NewDialect("material",
		[]string{"newmtl", "Ns", "Ni", "illum", "Ka", "Kd", "Ks", "Ke", "d", "Tr", "Tf"},
		"-._", false, false)
)

// Lex converts src into tokens using dialect d.
// The input is consumed left to right exactly once.
func Lex(src string, d *Dialect) ([]Token, error) {
	l := &lexer{src: src, d: d}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

type lexer struct {
	src    string
	pos    int
	d      *Dialect
	tokens []Token
}

func (l *lexer) run() error {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isSpace(c):
			l.pos++
		case c == '#':
			l.skipComment()
		case c == '/' && l.d.Slash:
			l.emit(TokenSlash, l.pos, l.pos+1)
			l.pos++
		case l.matchKeyword():
		case l.startsNumber():
			if err := l.lexNumber(); err != nil {
				return err
			}
		case l.isIdentStart(c):
			l.lexIdentifier(l.pos)
		default:
			return &Error{
				Kind:    ErrLex,
				Offset:  l.pos,
				Context: ContextWindow(l.src, l.pos),
				Detail:  fmt.Sprintf("byte 0x%02x (%q) in %s document", c, c, l.d.Name),
			}
		}
	}
	return nil
}

func (l *lexer) emit(kind TokenKind, start, end int) {
	l.tokens = append(l.tokens, Token{Kind: kind, Text: l.src[start:end], Offset: start})
}

func (l *lexer) skipComment() {
	if i := strings.IndexByte(l.src[l.pos:], '\n'); i >= 0 {
		l.pos += i + 1
		return
	}
	l.pos = len(l.src)
}

// matchKeyword emits the longest keyword at the current position that is
// followed by whitespace or end of input.
func (l *lexer) matchKeyword() bool {
	rest := l.src[l.pos:]
	for _, kw := range l.d.Keywords {
		if !strings.HasPrefix(rest, kw) {
			continue
		}
		if len(rest) > len(kw) && !isSpace(rest[len(kw)]) {
			continue
		}
		l.emit(TokenKeyword, l.pos, l.pos+len(kw))
		l.pos += len(kw)
		return true
	}
	return false
}

func (l *lexer) startsNumber() bool {
	i := l.pos
	if l.d.SignedNumbers && l.src[i] == '-' {
		i++
	}
	if i >= len(l.src) {
		return false
	}
	if isDigit(l.src[i]) {
		return true
	}
	return l.src[i] == '.' && i+1 < len(l.src) && isDigit(l.src[i+1])
}

func (l *lexer) lexNumber() error {
	start := l.pos
	if l.src[l.pos] == '-' {
		l.pos++
	}
	l.skipDigits()
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		l.pos++
		l.skipDigits()
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		j := l.pos + 1
		if j < len(l.src) && (l.src[j] == '-' || l.src[j] == '+') {
			j++
		}
		if j < len(l.src) && isDigit(l.src[j]) {
			l.pos = j
			l.skipDigits()
		}
	}

	// Names such as "01_red" start with digits but are identifiers.
	if l.pos < len(l.src) && (isLetter(l.src[l.pos]) || l.src[l.pos] == '_') {
		l.lexIdentifier(start)
		return nil
	}

	text := l.src[start:l.pos]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return &Error{
			Kind:    ErrLex,
			Offset:  start,
			Context: ContextWindow(l.src, start),
			Detail:  fmt.Sprintf("malformed number %q", text),
			Err:     err,
		}
	}
	l.tokens = append(l.tokens, Token{Kind: TokenNumber, Text: text, Value: v, Offset: start})
	return nil
}

func (l *lexer) skipDigits() {
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
}

func (l *lexer) lexIdentifier(start int) {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if !l.isIdentStart(c) && !isDigit(c) {
			break
		}
		l.pos++
	}
	l.emit(TokenIdentifier, start, l.pos)
}

func (l *lexer) isIdentStart(c byte) bool {
	return isLetter(c) || c == '_' || strings.IndexByte(l.d.IdentExtra, c) >= 0
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
