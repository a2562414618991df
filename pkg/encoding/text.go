// Package encoding provides text decoding utilities for scene asset files.
package encoding

import (
	"errors"
	"path"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrInvalidUTF8 is returned when asset bytes are not valid UTF-8 after
// byte-order-mark handling.
var ErrInvalidUTF8 = errors.New("asset text is not valid UTF-8")

// DecodeText converts raw asset bytes to a UTF-8 string.
// A UTF-8 or UTF-16 (LE/BE) byte-order mark selects the source encoding and
// is stripped; without one the data must already be UTF-8.
func DecodeText(data []byte) (string, error) {
	if !hasUTF16BOM(data) && !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	result, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", err
	}
	return string(result), nil
}

func hasUTF16BOM(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	return (data[0] == 0xFF && data[1] == 0xFE) || (data[0] == 0xFE && data[1] == 0xFF)
}

// NormalizeAssetPath normalizes an asset name for lookup.
// Backslashes become forward slashes, the path is cleaned and any leading
// "./" or "/" is dropped. Case is preserved: asset names are case-sensitive.
func NormalizeAssetPath(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Clean(name)
	name = strings.TrimPrefix(name, "/")
	if name == "." {
		return ""
	}
	return name
}

// JoinAssetPath resolves ref relative to the directory of base, the way a
// mesh document's material library names are relative to the mesh itself.
func JoinAssetPath(base, ref string) string {
	ref = strings.ReplaceAll(ref, "\\", "/")
	if strings.HasPrefix(ref, "/") {
		return NormalizeAssetPath(ref)
	}
	dir := path.Dir(NormalizeAssetPath(base))
	return NormalizeAssetPath(path.Join(dir, ref))
}
