// resampler.go implements the separable polyphase resampler over picture planes.

// Package resize applies separable filter tables to picture planes.
package resize

import (
	"context"
	"fmt"
	"math"

	"github.com/xaionaro-go/avpicture/coefficients"
	"github.com/xaionaro-go/avpicture/kernel"
	"github.com/xaionaro-go/avpicture/logger"
	"github.com/xaionaro-go/avpicture/plane"
)

type ErrConfiguration = coefficients.ErrConfiguration

type Config struct {
	Family    kernel.Family
	Lobes     int
	Precision uint

	// UseFloat selects the double precision path instead of the fixed point
	// one for integer planes. Float planes always use the double path.
	UseFloat bool

	ChromaLocation plane.ChromaLocation
}

func DefaultConfig() Config {
	return Config{
		Family:    kernel.FamilyLanczos,
		Lobes:     3,
		Precision: coefficients.DefaultPrecision,
	}
}

type Geometry struct {
	Width        int
	Height       int
	ChromaFormat plane.ChromaFormat
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d:%s", g.Width, g.Height, g.ChromaFormat)
}

// AxisPair is the horizontal and vertical filter of one kind of plane.
type AxisPair struct {
	X *coefficients.Table
	Y *coefficients.Table
}

// Resampler resizes pictures of one input geometry into one output geometry.
// It holds no per-call state: it may be used concurrently as long as every
// call writes into its own output.
type Resampler struct {
	Config Config
	Input  Geometry
	Output Geometry
	Luma   AxisPair
	Chroma AxisPair
}

func New(
	ctx context.Context,
	cfg Config,
	in Geometry,
	out Geometry,
) (_ret *Resampler, _err error) {
	logger.Tracef(ctx, "New: %s -> %s", in, out)
	defer func() { logger.Tracef(ctx, "/New: %s -> %s: %v", in, out, _err) }()

	if !cfg.Family.Valid() {
		return nil, ErrConfiguration{Err: fmt.Errorf("%w: %s", kernel.ErrUnknownFamily, cfg.Family)}
	}
	if in.Width <= 0 || in.Height <= 0 || out.Width <= 0 || out.Height <= 0 {
		return nil, ErrConfiguration{Err: fmt.Errorf("invalid geometry %s -> %s", in, out)}
	}
	if in.ChromaFormat != out.ChromaFormat || !in.ChromaFormat.Valid() {
		return nil, ErrConfiguration{Err: fmt.Errorf("chroma format conversion is not supported: %s -> %s", in.ChromaFormat, out.ChromaFormat)}
	}
	if cfg.Precision == 0 {
		cfg.Precision = coefficients.DefaultPrecision
	}

	r := &Resampler{
		Config: cfg,
		Input:  in,
		Output: out,
	}
	switch cfg.Family {
	case kernel.FamilyNull:
		if in.Width != out.Width || in.Height != out.Height {
			return nil, ErrConfiguration{Err: fmt.Errorf("%s cannot change the size %s -> %s", cfg.Family, in, out)}
		}
		return r, nil
	case kernel.FamilyCopy:
		return r, nil
	}

	var err error
	r.Luma, err = r.buildAxisPair(plane.ComponentY, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("unable to build the luma filters: %w", err)
	}
	if in.ChromaFormat != plane.ChromaFormat400 {
		phaseX, phaseY := cfg.ChromaLocation.Phase()
		sx, sy := in.ChromaFormat.SubsamplingShift()
		if sx == 0 {
			phaseX = 0
		}
		if sy == 0 {
			phaseY = 0
		}
		r.Chroma, err = r.buildAxisPair(plane.ComponentU, phaseX, phaseY)
		if err != nil {
			return nil, fmt.Errorf("unable to build the chroma filters: %w", err)
		}
	}
	logger.Debugf(ctx, "resampler %s: luma taps %dx%d", r, r.Luma.X.Taps, r.Luma.Y.Taps)
	return r, nil
}

func (r *Resampler) buildAxisPair(
	c plane.Component,
	phaseX, phaseY float64,
) (AxisPair, error) {
	iw, ih := r.Input.ChromaFormat.ComponentSize(c, r.Input.Width, r.Input.Height)
	ow, oh := r.Output.ChromaFormat.ComponentSize(c, r.Output.Width, r.Output.Height)

	spec := func(iSize, oSize int, phase float64) coefficients.FilterSpec {
		s := coefficients.FilterSpec{
			Family:     r.Config.Family,
			Lobes:      r.Config.Lobes,
			InputSize:  iSize,
			OutputSize: oSize,
			Precision:  r.Config.Precision,
		}
		// keeps the chroma samples sited where they were relative to luma
		s.Offset = phase * (s.Factor() - 1)
		return s
	}

	x, err := coefficients.Build(spec(iw, ow, phaseX))
	if err != nil {
		return AxisPair{}, fmt.Errorf("horizontal: %w", err)
	}
	y, err := coefficients.Build(spec(ih, oh, phaseY))
	if err != nil {
		return AxisPair{}, fmt.Errorf("vertical: %w", err)
	}
	return AxisPair{X: x, Y: y}, nil
}

func (r *Resampler) String() string {
	return fmt.Sprintf("Resampler(%s/%d: %s -> %s)", r.Config.Family, r.Config.Lobes, r.Input, r.Output)
}

func (r *Resampler) axisPair(c plane.Component) AxisPair {
	if c.IsChroma() {
		return r.Chroma
	}
	return r.Luma
}

// ResizePicture resizes every plane present in the input picture, clamping
// integer planes to their full sample range.
func (r *Resampler) ResizePicture(
	ctx context.Context,
	in *plane.Picture,
	out *plane.Picture,
) (_err error) {
	logger.Tracef(ctx, "ResizePicture")
	defer func() { logger.Tracef(ctx, "/ResizePicture: %v", _err) }()

	if in.ChromaFormat != r.Input.ChromaFormat || out.ChromaFormat != r.Output.ChromaFormat {
		return ErrConfiguration{Err: fmt.Errorf("picture chroma formats %s -> %s do not match %s", in.ChromaFormat, out.ChromaFormat, r)}
	}
	for c := range in.Planes {
		src, dst := in.Planes[c], out.Planes[c]
		if src == nil {
			continue
		}
		if dst == nil {
			return fmt.Errorf("the output picture has no plane %s", plane.Component(c))
		}
		vMin, vMax := 0.0, dst.MaxValue()
		if dst.Storage.IsFloat() {
			// float planes may carry values beyond the nominal [0, 1] range
			vMin, vMax = math.Inf(-1), math.Inf(1)
		}
		if err := r.ResizePlane(ctx, src, dst, vMin, vMax); err != nil {
			return fmt.Errorf("unable to resize plane %s: %w", plane.Component(c), err)
		}
	}
	out.ChromaLocation = in.ChromaLocation
	return nil
}

// ResizePlane resamples in into out, clamping results into [vMin, vMax].
// The plane component selects the luma or the chroma filters.
func (r *Resampler) ResizePlane(
	ctx context.Context,
	in *plane.Plane,
	out *plane.Plane,
	vMin, vMax float64,
) (_err error) {
	logger.Tracef(ctx, "ResizePlane: %s -> %s", in, out)
	defer func() { logger.Tracef(ctx, "/ResizePlane: %s -> %s: %v", in, out, _err) }()

	if err := in.Validate(); err != nil {
		return fmt.Errorf("invalid input plane: %w", err)
	}
	if err := out.Validate(); err != nil {
		return fmt.Errorf("invalid output plane: %w", err)
	}
	if in.Storage != out.Storage || in.BitDepth != out.BitDepth {
		return ErrConfiguration{Err: fmt.Errorf("sample representation conversion is not supported: %s -> %s", in, out)}
	}

	c := in.Component
	iw, ih := r.Input.ChromaFormat.ComponentSize(c, r.Input.Width, r.Input.Height)
	ow, oh := r.Output.ChromaFormat.ComponentSize(c, r.Output.Width, r.Output.Height)
	if in.Width != iw || in.Height != ih || out.Width != ow || out.Height != oh {
		return ErrConfiguration{Err: fmt.Errorf("planes %s -> %s do not match %s", in, out, r)}
	}

	switch r.Config.Family {
	case kernel.FamilyNull:
		copyPlane(in, out)
		return nil
	case kernel.FamilyCopy:
		duplicatePlane(in, out)
		return nil
	}

	axes := r.axisPair(c)
	if axes.X == nil || axes.Y == nil {
		return ErrConfiguration{Err: fmt.Errorf("%s has no filters for component %s", r, c)}
	}
	switch in.Storage {
	case plane.StorageUint8:
		lo, hi := int(vMin), int(vMax)
		if r.Config.UseFloat {
			filterFloat(in.U8, out.U8, axes, lo, hi)
		} else {
			filterFixed(in.U8, out.U8, axes, lo, hi)
		}
	case plane.StorageUint16:
		lo, hi := int(vMin), int(vMax)
		if r.Config.UseFloat {
			filterFloat(in.U16, out.U16, axes, lo, hi)
		} else {
			filterFixed(in.U16, out.U16, axes, lo, hi)
		}
	case plane.StorageFloat32:
		filterFloat32(in.F32, out.F32, axes, vMin, vMax)
	default:
		return ErrConfiguration{Err: fmt.Errorf("unsupported storage %s", in.Storage)}
	}
	return nil
}
