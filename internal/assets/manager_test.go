package assets

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"
)

func TestManager_Priority(t *testing.T) {
	base := fstest.MapFS{
		"scene/cube.obj": {Data: []byte("v 0 0 0\n")},
		"scene/cube.mtl": {Data: []byte("newmtl base\n")},
	}
	patch := fstest.MapFS{
		"scene/cube.mtl": {Data: []byte("newmtl patched\n")},
	}

	m := NewManager()
	m.AddFS("base", base)
	m.AddFS("patch", patch)

	ctx := context.Background()
	text, err := m.LoadText(ctx, "scene/cube.mtl")
	if err != nil {
		t.Fatalf("LoadText failed: %v", err)
	}
	if text != "newmtl patched\n" {
		t.Errorf("later root should win, got %q", text)
	}

	text, err = m.LoadText(ctx, `scene\cube.obj`)
	if err != nil {
		t.Fatalf("LoadText failed: %v", err)
	}
	if text != "v 0 0 0\n" {
		t.Errorf("fallback to earlier root failed, got %q", text)
	}
}

func TestManager_NotFound(t *testing.T) {
	m := NewManager()
	m.AddFS("empty", fstest.MapFS{})

	_, err := m.LoadText(context.Background(), "missing.obj")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestManager_InvalidName(t *testing.T) {
	m := NewManager()
	m.AddFS("root", fstest.MapFS{})

	for _, name := range []string{"", "../outside.obj", "."} {
		if _, err := m.Load(context.Background(), name); !errors.Is(err, fs.ErrInvalid) {
			t.Errorf("Load(%q): expected fs.ErrInvalid, got %v", name, err)
		}
	}
}

func TestManager_Cache(t *testing.T) {
	m := NewManager()
	m.AddFS("root", fstest.MapFS{"a.obj": {Data: []byte("v 1 2 3\n")}})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := m.LoadText(ctx, "a.obj"); err != nil {
			t.Fatalf("LoadText failed: %v", err)
		}
	}

	hits, misses := m.CacheStats()
	if hits != 2 || misses != 1 {
		t.Errorf("stats = %d hits, %d misses, want 2, 1", hits, misses)
	}

	m.Clear()
	if m.Roots() != 0 {
		t.Error("Clear should drop roots")
	}
	if hits, misses := m.CacheStats(); hits != 0 || misses != 0 {
		t.Error("Clear should reset stats")
	}
}

func TestManager_ConcurrentLoads(t *testing.T) {
	m := NewManager()
	m.AddFS("root", fstest.MapFS{"a.obj": {Data: []byte("v 1 2 3\n")}})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.LoadText(context.Background(), "a.obj"); err != nil {
				t.Errorf("LoadText failed: %v", err)
			}
		}()
	}
	wg.Wait()

	hits, misses := m.CacheStats()
	if hits+misses != 16 {
		t.Errorf("expected 16 lookups, got %d", hits+misses)
	}
}

func TestManager_DecodesUTF16(t *testing.T) {
	data := []byte{0xFF, 0xFE, 'v', 0, ' ', 0, '1', 0}
	m := NewManager()
	m.AddFS("root", fstest.MapFS{"w.obj": {Data: data}})

	text, err := m.LoadText(context.Background(), "w.obj")
	if err != nil {
		t.Fatalf("LoadText failed: %v", err)
	}
	if text != "v 1" {
		t.Errorf("got %q, want %q", text, "v 1")
	}
}

func TestManager_AddDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "room.xml"), []byte("<scene/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	if err := m.AddDir(dir); err != nil {
		t.Fatalf("AddDir failed: %v", err)
	}
	text, err := m.LoadText(context.Background(), "room.xml")
	if err != nil || text != "<scene/>" {
		t.Errorf("LoadText = %q, %v", text, err)
	}

	if err := m.AddDir(filepath.Join(dir, "room.xml")); err == nil {
		t.Error("AddDir should reject a file")
	}
	if err := m.AddDir(filepath.Join(dir, "nope")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("AddDir on a missing dir: got %v", err)
	}
}

func TestManager_CanceledContext(t *testing.T) {
	m := NewManager()
	m.AddFS("root", fstest.MapFS{"a.obj": {Data: []byte("v 1 2 3\n")}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.LoadText(ctx, "a.obj"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestMapSource(t *testing.T) {
	src := MapSource{"meshes/a.obj": "v 0 0 0\n"}

	text, err := src.LoadText(context.Background(), "./meshes/a.obj")
	if err != nil || text != "v 0 0 0\n" {
		t.Errorf("LoadText = %q, %v", text, err)
	}
	if _, err := src.LoadText(context.Background(), "b.obj"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

var _ Source = (*Manager)(nil)
var _ Source = MapSource(nil)
