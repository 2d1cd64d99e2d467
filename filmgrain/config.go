package filmgrain

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/avpicture/canny"
	"github.com/xaionaro-go/avpicture/plane"
)

type BitDepths struct {
	Luma   int
	Chroma int
}

func (b BitDepths) Of(c plane.Component) int {
	if c.IsChroma() {
		return b.Chroma
	}
	return b.Luma
}

// PlaneSource provides planes computed outside of the analyzer, e.g. a mask
// or a denoised picture read from a file.
type PlaneSource interface {
	LoadPlane(
		ctx context.Context,
		c plane.Component,
		width, height int,
		bitDepth int,
	) (*plane.Plane, error)
}

type Config struct {
	// Width and Height are the luma dimensions of the analyzed pictures.
	Width  int
	Height int

	// PaddingWidth and PaddingHeight are the luma samples on the right and
	// bottom edges that are excluded from the analysis.
	PaddingWidth  int
	PaddingHeight int

	ChromaFormat plane.ChromaFormat
	BitDepths    BitDepths
	DoAnalysis   [3]bool

	BlockSize         int
	WindowSize        int
	LowIntensityRatio float64

	DilationIterations int
	ErosionIterations  int
	EdgeDetector       *canny.Detector

	// ExternalMask replaces the computed mask: non-zero samples are
	// excluded from the analysis.
	ExternalMask PlaneSource

	// ExternalDenoised replaces the built-in smoothing of the original.
	ExternalDenoised PlaneSource

	MaxLloydMaxIterations int
}

func DefaultConfig(width, height int) Config {
	return Config{
		Width:                 width,
		Height:                height,
		ChromaFormat:          plane.ChromaFormat420,
		BitDepths:             BitDepths{Luma: 10, Chroma: 10},
		DoAnalysis:            [3]bool{true, true, true},
		BlockSize:             64,
		WindowSize:            8,
		LowIntensityRatio:     0.1,
		DilationIterations:    4,
		ErosionIterations:     4,
		EdgeDetector:          canny.DefaultDetector(),
		MaxLloydMaxIterations: 1000,
	}
}

func (cfg Config) Validate() error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ErrConfiguration{Err: fmt.Errorf("invalid picture size %dx%d", cfg.Width, cfg.Height)}
	}
	if cfg.PaddingWidth < 0 || cfg.PaddingWidth >= cfg.Width || cfg.PaddingHeight < 0 || cfg.PaddingHeight >= cfg.Height {
		return ErrConfiguration{Err: fmt.Errorf("invalid padding %dx%d for %dx%d", cfg.PaddingWidth, cfg.PaddingHeight, cfg.Width, cfg.Height)}
	}
	if !cfg.ChromaFormat.Valid() {
		return ErrConfiguration{Err: fmt.Errorf("unsupported chroma format %s", cfg.ChromaFormat)}
	}
	for _, bd := range []int{cfg.BitDepths.Luma, cfg.BitDepths.Chroma} {
		if bd < 8 || bd > 16 {
			return ErrConfiguration{Err: fmt.Errorf("unsupported bit depth %d", bd)}
		}
	}
	enabled := 0
	for c, do := range cfg.DoAnalysis {
		if !do {
			continue
		}
		if c >= cfg.ChromaFormat.NumComponents() {
			return ErrConfiguration{Err: fmt.Errorf("component %s is enabled, but the chroma format is %s", plane.Component(c), cfg.ChromaFormat)}
		}
		enabled++
	}
	if enabled == 0 {
		return ErrConfiguration{Err: fmt.Errorf("no component is enabled for the analysis")}
	}
	if cfg.BlockSize < 4 {
		return ErrConfiguration{Err: fmt.Errorf("the block size must be at least 4, got %d", cfg.BlockSize)}
	}
	if cfg.WindowSize < 2 {
		return ErrConfiguration{Err: fmt.Errorf("the window size must be at least 2, got %d", cfg.WindowSize)}
	}
	if cfg.LowIntensityRatio < 0 || cfg.LowIntensityRatio >= 1 {
		return ErrConfiguration{Err: fmt.Errorf("the low intensity ratio must be in [0, 1), got %g", cfg.LowIntensityRatio)}
	}
	if cfg.DilationIterations < 0 || cfg.ErosionIterations < 0 {
		return ErrConfiguration{Err: fmt.Errorf("negative morphology iterations %d/%d", cfg.DilationIterations, cfg.ErosionIterations)}
	}
	if cfg.MaxLloydMaxIterations <= 0 {
		return ErrConfiguration{Err: fmt.Errorf("the quantizer needs at least one iteration")}
	}
	return nil
}

// regionSize returns the analyzed dimensions of component c.
func (cfg Config) regionSize(c plane.Component) (int, int) {
	w, h := cfg.ChromaFormat.ComponentSize(c, cfg.Width, cfg.Height)
	pw, ph := cfg.PaddingWidth, cfg.PaddingHeight
	if c.IsChroma() {
		sx, sy := cfg.ChromaFormat.SubsamplingShift()
		pw >>= sx
		ph >>= sy
	}
	return w - pw, h - ph
}
