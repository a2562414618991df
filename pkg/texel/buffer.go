// Package texel packs assembled scene data into flat float32 buffers with a
// fixed stride per record and a fixed record capacity.
//
// Every stride is a whole number of texels (4 lanes), so a consumer can
// read field f of record i at i*stride + f without branching. Records past
// the capacity are dropped; Count reports how many were kept.
package texel

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// LanesPerTexel is the number of float32 lanes in one RGBA texel.
const LanesPerTexel = 4

// Record strides in lanes.
const (
	TriangleStride  = 24
	MaterialStride  = 20
	SphereStride    = 12
	RectangleStride = 20
)

// ReflectionModel tags how a primitive scatters light.
type ReflectionModel int

const (
	Diffuse    ReflectionModel = 0
	Specular   ReflectionModel = 1
	Refractive ReflectionModel = 2
)

// String returns the model name.
func (m ReflectionModel) String() string {
	switch m {
	case Diffuse:
		return "diffuse"
	case Specular:
		return "specular"
	case Refractive:
		return "refractive"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// Illum returns the MTL illumination model id that selects the same
// scattering: 1 (Lambert), 3 (ray-traced reflection) or 7 (refraction with
// Fresnel). Material records always carry an MTL id in their illum lane.
func (m ReflectionModel) Illum() int {
	switch m {
	case Specular:
		return 3
	case Refractive:
		return 7
	default:
		return 1
	}
}

// GridCapacity returns the record capacity of a side x side texel grid.
func GridCapacity(side int) int {
	return side * side
}

// Buffer is a fixed-capacity array of records.
type Buffer struct {
	Data     []float32 // Capacity * Stride lanes, zero-filled past Count
	Stride   int
	Capacity int
	Count    int // Records actually written
}

// NewBuffer allocates a zeroed buffer.
func NewBuffer(stride, capacity int) *Buffer {
	if stride%LanesPerTexel != 0 {
		panic(fmt.Sprintf("texel: stride %d is not a multiple of %d", stride, LanesPerTexel))
	}
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{
		Data:     make([]float32, stride*capacity),
		Stride:   stride,
		Capacity: capacity,
	}
}

// Record returns the lanes of record i.
func (b *Buffer) Record(i int) []float32 {
	return b.Data[i*b.Stride : (i+1)*b.Stride]
}

// Truncated reports whether want records did not all fit.
func (b *Buffer) Truncated(want int) bool {
	return want > b.Count
}

// next returns the lanes for the next record, or nil when full.
func (b *Buffer) next() []float32 {
	if b.Count >= b.Capacity {
		return nil
	}
	rec := b.Record(b.Count)
	b.Count++
	return rec
}

// WriteTo writes every lane, including padding, as little-endian float32.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	out := make([]byte, 4*len(b.Data))
	for i, v := range b.Data {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	n, err := w.Write(out)
	return int64(n), err
}

// ReadBuffer reads a buffer previously written with WriteTo.
func ReadBuffer(r io.Reader, stride, capacity int) (*Buffer, error) {
	b := NewBuffer(stride, capacity)
	raw := make([]byte, 4*len(b.Data))
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("read buffer: %w", err)
	}
	for i := range b.Data {
		b.Data[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	b.Count = capacity
	return b, nil
}
