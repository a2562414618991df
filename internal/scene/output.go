package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ManifestFile is the name of the manifest written next to the buffers.
const ManifestFile = "manifest.yaml"

// Manifest describes a compiled output directory.
type Manifest struct {
	BuildID    string         `yaml:"build_id"`
	Source     string         `yaml:"source"`
	Created    time.Time      `yaml:"created"`
	Buffers    []BufferInfo   `yaml:"buffers"`
	Materials  []MaterialInfo `yaml:"materials"`
	Camera     *CameraInfo    `yaml:"camera,omitempty"`
	Bounds     *BoundsInfo    `yaml:"bounds,omitempty"`
	Lights     int            `yaml:"lights"`
	Degenerate int            `yaml:"degenerate,omitempty"` // Zero-area triangles
	Skipped    []string       `yaml:"skipped,omitempty"`
}

// BoundsInfo is the scene bounding box.
type BoundsInfo struct {
	Min [3]float32 `yaml:"min,flow"`
	Max [3]float32 `yaml:"max,flow"`
}

// BufferInfo describes one encoded buffer file.
type BufferInfo struct {
	Name     string `yaml:"name"`
	File     string `yaml:"file"`
	Stride   int    `yaml:"stride"`
	Capacity int    `yaml:"capacity"`
	Count    int    `yaml:"count"`
	Dropped  int    `yaml:"dropped,omitempty"`
}

// MaterialInfo records a registry entry and its triangle range.
type MaterialInfo struct {
	ID    int    `yaml:"id"`
	Name  string `yaml:"name"`
	Start int    `yaml:"start"`
	End   int    `yaml:"end"`
}

// CameraInfo is the decomposed sensor.
type CameraInfo struct {
	Position  [3]float32 `yaml:"position,flow"`
	Direction [3]float32 `yaml:"direction,flow"`
	Up        [3]float32 `yaml:"up,flow"`
	FOV       float32    `yaml:"fov"`
}

// Manifest builds the manifest for c.
func (c *Compiled) Manifest() *Manifest {
	m := &Manifest{
		BuildID:    c.BuildID,
		Source:     c.Source,
		Created:    c.Created,
		Lights:     c.Lights(),
		Degenerate: c.Degenerate,
		Skipped:    c.Skipped,
	}
	if b := c.Bounds(); !b.IsEmpty() {
		m.Bounds = &BoundsInfo{Min: b.Min.Array(), Max: b.Max.Array()}
	}
	for _, b := range c.buffers() {
		m.Buffers = append(m.Buffers, BufferInfo{
			Name:     b.name,
			File:     b.file,
			Stride:   b.buf.Stride,
			Capacity: b.buf.Capacity,
			Count:    b.buf.Count,
			Dropped:  b.wanted - b.buf.Count,
		})
	}
	for _, e := range c.Geometry.Materials {
		m.Materials = append(m.Materials, MaterialInfo{
			ID:    e.ID,
			Name:  e.Name,
			Start: e.Range.Start,
			End:   e.Range.End,
		})
	}
	if c.Camera != nil {
		m.Camera = &CameraInfo{
			Position:  c.Camera.Position.Array(),
			Direction: c.Camera.Direction.Array(),
			Up:        c.Camera.Up.Array(),
			FOV:       c.Camera.FOV,
		}
	}
	return m
}

// WriteOutput writes every buffer as little-endian float32 into dir, plus
// the manifest when withManifest is set.
func (c *Compiled) WriteOutput(dir string, withManifest bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	for _, b := range c.buffers() {
		if err := writeBuffer(filepath.Join(dir, b.file), b); err != nil {
			return err
		}
	}

	if !withManifest {
		return nil
	}
	data, err := yaml.Marshal(c.Manifest())
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), data, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

func writeBuffer(path string, b namedBuffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing %s buffer: %w", b.name, err)
	}
	if _, err := b.buf.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s buffer: %w", b.name, err)
	}
	return f.Close()
}

// ReadManifest loads a manifest written by WriteOutput.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return &m, nil
}
