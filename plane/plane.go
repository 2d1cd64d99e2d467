// plane.go defines Plane: a single rectangular buffer of samples.

// Package plane provides the minimal picture buffer abstraction shared by
// the resampler and the film grain analyzer.
package plane

import (
	"fmt"
	"math"
)

type Storage int

const (
	StorageUndefined = Storage(iota)
	StorageUint8
	StorageUint16
	StorageFloat32
)

func (s Storage) String() string {
	switch s {
	case StorageUint8:
		return "uint8"
	case StorageUint16:
		return "uint16"
	case StorageFloat32:
		return "float32"
	default:
		return fmt.Sprintf("Storage(%d)", int(s))
	}
}

func (s Storage) IsFloat() bool {
	return s == StorageFloat32
}

// Plane is a raster-ordered buffer of Width*Height samples. Exactly one of
// U8, U16 and F32 is populated, according to Storage.
type Plane struct {
	Component Component
	Width     int
	Height    int
	BitDepth  int
	Storage   Storage

	U8  []uint8
	U16 []uint16
	F32 []float32
}

func New(
	component Component,
	width, height int,
	bitDepth int,
	storage Storage,
) (*Plane, error) {
	p := &Plane{
		Component: component,
		Width:     width,
		Height:    height,
		BitDepth:  bitDepth,
		Storage:   storage,
	}
	if err := p.validateHeader(); err != nil {
		return nil, err
	}
	count := width * height
	switch storage {
	case StorageUint8:
		p.U8 = make([]uint8, count)
	case StorageUint16:
		p.U16 = make([]uint16, count)
	case StorageFloat32:
		p.F32 = make([]float32, count)
	}
	return p, nil
}

func (p *Plane) validateHeader() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("invalid plane dimensions %dx%d", p.Width, p.Height)
	}
	switch p.Storage {
	case StorageUint8:
		if p.BitDepth < 1 || p.BitDepth > 8 {
			return fmt.Errorf("bit depth %d does not fit into %s storage", p.BitDepth, p.Storage)
		}
	case StorageUint16:
		if p.BitDepth < 1 || p.BitDepth > 16 {
			return fmt.Errorf("bit depth %d does not fit into %s storage", p.BitDepth, p.Storage)
		}
	case StorageFloat32:
	default:
		return fmt.Errorf("unsupported storage %s", p.Storage)
	}
	return nil
}

// Validate checks that the declared dimensions match the sample count.
func (p *Plane) Validate() error {
	if p == nil {
		return fmt.Errorf("nil plane")
	}
	if err := p.validateHeader(); err != nil {
		return err
	}
	count := p.Width * p.Height
	var actual int
	switch p.Storage {
	case StorageUint8:
		actual = len(p.U8)
	case StorageUint16:
		actual = len(p.U16)
	case StorageFloat32:
		actual = len(p.F32)
	}
	if actual != count {
		return fmt.Errorf("plane %s %dx%d has %d samples, expected %d", p.Component, p.Width, p.Height, actual, count)
	}
	return nil
}

func (p *Plane) String() string {
	return fmt.Sprintf("Plane(%s %dx%d %dbit %s)", p.Component, p.Width, p.Height, p.BitDepth, p.Storage)
}

func (p *Plane) MaxX() int { return p.Width - 1 }
func (p *Plane) MaxY() int { return p.Height - 1 }

// MaxValue is the largest representable sample value; 1.0 for float planes.
func (p *Plane) MaxValue() float64 {
	if p.Storage.IsFloat() {
		return 1
	}
	return float64(int(1)<<p.BitDepth - 1)
}

// At returns the sample at (x, y); the coordinates must be inside the plane.
func (p *Plane) At(x, y int) float64 {
	idx := y*p.Width + x
	switch p.Storage {
	case StorageUint8:
		return float64(p.U8[idx])
	case StorageUint16:
		return float64(p.U16[idx])
	default:
		return float64(p.F32[idx])
	}
}

// AtInt is At for integer storage, without the float conversion.
func (p *Plane) AtInt(x, y int) int {
	idx := y*p.Width + x
	switch p.Storage {
	case StorageUint8:
		return int(p.U8[idx])
	case StorageUint16:
		return int(p.U16[idx])
	default:
		return int(math.Round(float64(p.F32[idx])))
	}
}

// AtClamped is At with both coordinates clamped into the plane.
func (p *Plane) AtClamped(x, y int) float64 {
	return p.At(Clip(x, 0, p.Width-1), Clip(y, 0, p.Height-1))
}

// Set stores v at (x, y), rounding and saturating on integer storage.
func (p *Plane) Set(x, y int, v float64) {
	idx := y*p.Width + x
	switch p.Storage {
	case StorageUint8:
		p.U8[idx] = uint8(Clip(math.Round(v), 0, p.MaxValue()))
	case StorageUint16:
		p.U16[idx] = uint16(Clip(math.Round(v), 0, p.MaxValue()))
	default:
		p.F32[idx] = float32(v)
	}
}

func (p *Plane) Fill(v float64) {
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			p.Set(x, y, v)
		}
	}
}

func (p *Plane) Clone() *Plane {
	c := *p
	switch p.Storage {
	case StorageUint8:
		c.U8 = append([]uint8(nil), p.U8...)
	case StorageUint16:
		c.U16 = append([]uint16(nil), p.U16...)
	case StorageFloat32:
		c.F32 = append([]float32(nil), p.F32...)
	}
	return &c
}

// SameLayout reports whether two planes have identical dimensions and
// sample representation.
func (p *Plane) SameLayout(other *Plane) bool {
	return p.Width == other.Width &&
		p.Height == other.Height &&
		p.BitDepth == other.BitDepth &&
		p.Storage == other.Storage
}
