package encoding

import (
	"errors"
	"testing"
)

func TestDecodeText(t *testing.T) {
	// "v 1\n" as UTF-16LE with BOM
	utf16 := []byte{0xFF, 0xFE, 'v', 0, ' ', 0, '1', 0, '\n', 0}

	tests := []struct {
		name    string
		data    []byte
		want    string
		wantErr error
	}{
		{"plain utf-8", []byte("newmtl red\n"), "newmtl red\n", nil},
		{"utf-8 bom", append([]byte{0xEF, 0xBB, 0xBF}, "f 1 2 3"...), "f 1 2 3", nil},
		{"utf-16le bom", utf16, "v 1\n", nil},
		{"empty", []byte{}, "", nil},
		{"invalid utf-8", []byte{'v', ' ', 0xFF, 0xFE, 0xFD}, "", ErrInvalidUTF8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeText(tt.data)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeAssetPath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"meshes/bunny.obj", "meshes/bunny.obj"},
		{"meshes\\Bunny.obj", "meshes/Bunny.obj"},
		{"./scene.xml", "scene.xml"},
		{"/abs/scene.xml", "abs/scene.xml"},
		{"a/../b/c.mtl", "b/c.mtl"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeAssetPath(tt.input); got != tt.want {
				t.Errorf("NormalizeAssetPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestJoinAssetPath(t *testing.T) {
	tests := []struct {
		base, ref string
		want      string
	}{
		{"meshes/box.obj", "box.mtl", "meshes/box.mtl"},
		{"box.obj", "box.mtl", "box.mtl"},
		{"meshes/box.obj", "../materials/box.mtl", "materials/box.mtl"},
		{"meshes/box.obj", "/shared/common.mtl", "shared/common.mtl"},
		{"scenes\\cbox.xml", "meshes\\floor.obj", "scenes/meshes/floor.obj"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			if got := JoinAssetPath(tt.base, tt.ref); got != tt.want {
				t.Errorf("JoinAssetPath(%q, %q) = %q, want %q", tt.base, tt.ref, got, tt.want)
			}
		})
	}
}
