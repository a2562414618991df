// Package assets loads scene documents by name from directories and
// in-memory file systems.
package assets

import (
	"context"
	"io/fs"
	"os"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/texelscene/internal/logger"
	"github.com/Faultbox/texelscene/pkg/encoding"
)

// Source loads a text asset by name. Names use forward slashes and are
// relative to the source root.
type Source interface {
	LoadText(ctx context.Context, name string) (string, error)
}

type root struct {
	name string
	fsys fs.FS
}

// Manager searches registered roots for assets and caches decoded text.
type Manager struct {
	roots []root
	cache *Cache
	mu    sync.RWMutex
	log   *zap.Logger
}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
		log:   logger.Named("assets"),
	}
}

// AddDir adds a directory root.
// Roots are searched in reverse order (last added = highest priority).
func (m *Manager) AddDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return errors.Wrapf(err, "adding asset directory %s", dir)
	}
	if !info.IsDir() {
		return errors.Errorf("adding asset directory %s: not a directory", dir)
	}
	m.AddFS(dir, os.DirFS(dir))
	return nil
}

// AddFS adds an fs.FS root under a display name.
func (m *Manager) AddFS(name string, fsys fs.FS) {
	m.mu.Lock()
	m.roots = append(m.roots, root{name: name, fsys: fsys})
	m.mu.Unlock()

	m.log.Debug("asset root added", zap.String("root", name))
}

// Roots returns the number of registered roots.
func (m *Manager) Roots() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.roots)
}

// Load reads raw bytes for name from the highest-priority root that has it.
func (m *Manager) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, "loading %s", name)
	}

	key := encoding.NormalizeAssetPath(name)
	if !fs.ValidPath(key) || key == "" {
		return nil, errors.Wrapf(fs.ErrInvalid, "asset name %q", name)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.roots) - 1; i >= 0; i-- {
		data, err := fs.ReadFile(m.roots[i].fsys, key)
		if err == nil {
			m.log.Debug("asset loaded",
				zap.String("name", key),
				zap.String("root", m.roots[i].name),
				zap.Int("bytes", len(data)))
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(err, "reading %s from %s", key, m.roots[i].name)
		}
	}

	return nil, errors.Wrapf(fs.ErrNotExist, "asset %s", key)
}

// LoadText loads name and decodes it to UTF-8. Decoded text is cached.
func (m *Manager) LoadText(ctx context.Context, name string) (string, error) {
	key := encoding.NormalizeAssetPath(name)
	if text, ok := m.cache.Get(key); ok {
		return text, nil
	}

	data, err := m.Load(ctx, name)
	if err != nil {
		return "", err
	}
	text, err := encoding.DecodeText(data)
	if err != nil {
		return "", errors.Wrapf(err, "decoding %s", key)
	}

	m.cache.Set(key, text)
	return text, nil
}

// CacheStats returns cache hits and misses.
func (m *Manager) CacheStats() (hits, misses int) {
	return m.cache.Stats()
}

// Clear drops every root and cached entry.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roots = nil
	m.cache.Clear()
}

// MapSource serves documents from memory, keyed by normalized name.
type MapSource map[string]string

// LoadText implements Source.
func (s MapSource) LoadText(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := encoding.NormalizeAssetPath(name)
	text, ok := s[key]
	if !ok {
		return "", errors.Wrapf(fs.ErrNotExist, "asset %s", key)
	}
	return text, nil
}
