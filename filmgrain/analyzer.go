// Package filmgrain estimates a film grain model of a picture.
//
// The grain is measured in flat areas only: edges and dark areas are
// masked out. The residual of the original against a denoised version
// provides both the frequency cutoffs (through the block DCT spectrum) and
// the grain strength as a function of the intensity, which is quantized
// into a few intensity intervals.
package filmgrain

import (
	"context"
	"errors"
	"fmt"

	"github.com/xaionaro-go/avpicture/internal"
	"github.com/xaionaro-go/avpicture/logger"
	"github.com/xaionaro-go/avpicture/plane"
	"github.com/xaionaro-go/xsync"
	"go.uber.org/atomic"
)

// Analyzer estimates film grain models. Estimate calls are serialized; use
// an Analyzer per goroutine to analyze pictures in parallel.
type Analyzer struct {
	Config Config

	locker xsync.Mutex
	state  atomic.Int32
}

func New(
	ctx context.Context,
	cfg Config,
) (_ret *Analyzer, _err error) {
	logger.Tracef(ctx, "New")
	defer func() { logger.Tracef(ctx, "/New: %v", _err) }()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{
		Config: cfg,
	}, nil
}

// State is the last stage reached by the current or last Estimate call.
func (a *Analyzer) State() State {
	return State(a.state.Load())
}

func (a *Analyzer) setState(ctx context.Context, s State) {
	logger.Tracef(ctx, "state: %s", s)
	a.state.Store(int32(s))
}

// Estimate analyzes the enabled components of pic. Components without
// enough data are absent from the model (see ComponentModel.SkipReason);
// an error is returned only if pic does not match the configuration.
func (a *Analyzer) Estimate(
	ctx context.Context,
	pic *plane.Picture,
) (_ret *Model, _err error) {
	logger.Tracef(ctx, "Estimate")
	defer func() { logger.Tracef(ctx, "/Estimate: %v", _err) }()
	return xsync.DoA1R2(ctx, &a.locker, func(ctx context.Context) (*Model, error) {
		return a.estimateLocked(ctx, pic)
	}, ctx)
}

func (a *Analyzer) estimateLocked(
	ctx context.Context,
	pic *plane.Picture,
) (*Model, error) {
	a.setState(ctx, StateInit)
	if err := a.checkPicture(pic); err != nil {
		return nil, err
	}

	model := &Model{}
	for c := range model.Components {
		if !a.Config.DoAnalysis[c] {
			continue
		}
		comp := plane.Component(c)
		cm, err := a.estimateComponent(ctx, comp, pic.Planes[c])
		if err != nil {
			var insufficient ErrInsufficientData
			if !errors.As(err, &insufficient) && !errors.Is(err, ErrNotConverged) {
				return nil, fmt.Errorf("unable to analyze component %s: %w", comp, err)
			}
			logger.Debugf(ctx, "component %s is skipped: %v", comp, err)
			cm = ComponentModel{SkipReason: err}
		}
		model.Components[c] = cm
	}
	model.finalize()
	a.setState(ctx, StateModelReady)
	return model, nil
}

func (a *Analyzer) checkPicture(pic *plane.Picture) error {
	if pic.ChromaFormat != a.Config.ChromaFormat {
		return ErrConfiguration{Err: fmt.Errorf("the picture is %s, expected %s", pic.ChromaFormat, a.Config.ChromaFormat)}
	}
	for c, do := range a.Config.DoAnalysis {
		if !do {
			continue
		}
		comp := plane.Component(c)
		p := pic.Planes[c]
		if p == nil {
			return ErrConfiguration{Err: fmt.Errorf("the picture has no plane %s", comp)}
		}
		if err := p.Validate(); err != nil {
			return ErrConfiguration{Err: fmt.Errorf("invalid plane %s: %w", comp, err)}
		}
		w, h := a.Config.ChromaFormat.ComponentSize(comp, a.Config.Width, a.Config.Height)
		if p.Width != w || p.Height != h {
			return ErrConfiguration{Err: fmt.Errorf("plane %s is %dx%d, expected %dx%d", comp, p.Width, p.Height, w, h)}
		}
		if p.Storage.IsFloat() {
			return ErrConfiguration{Err: fmt.Errorf("plane %s: float samples are not supported", comp)}
		}
		if bd := a.Config.BitDepths.Of(comp); p.BitDepth != bd {
			return ErrConfiguration{Err: fmt.Errorf("plane %s has %d bits, expected %d", comp, p.BitDepth, bd)}
		}
	}
	return nil
}

func (a *Analyzer) estimateComponent(
	ctx context.Context,
	c plane.Component,
	p *plane.Plane,
) (_ret ComponentModel, _err error) {
	logger.Tracef(ctx, "estimateComponent: %s", c)
	defer func() { logger.Tracef(ctx, "/estimateComponent: %s: %v", c, _err) }()

	w, h := a.Config.regionSize(c)
	orig, err := crop(p, w, h)
	if err != nil {
		return ComponentModel{}, fmt.Errorf("unable to crop the padding: %w", err)
	}
	bitDepth := orig.BitDepth

	var mask *plane.Plane
	if a.Config.ExternalMask != nil {
		mask, err = a.loadMask(ctx, c, w, h)
	} else {
		mask, err = a.findMask(ctx, orig)
	}
	if err != nil {
		return ComponentModel{}, err
	}
	a.setState(ctx, StateMaskBuilt)

	denoised, err := a.denoise(ctx, c, orig)
	if err != nil {
		return ComponentModel{}, err
	}
	residual := subtract(orig, denoised)
	internal.Assert(ctx, len(residual) == len(mask.U8), len(residual), mask)

	blocks := flatBlocks(residual, mask, a.Config.BlockSize)
	logger.Debugf(ctx, "component %s: %d flat blocks", c, len(blocks))
	if len(blocks) < MinBlocksForCutoffEstimation {
		return ComponentModel{}, ErrInsufficientData{Reason: fmt.Sprintf("%d flat blocks of %dx%d, at least %d are required", len(blocks), a.Config.BlockSize, a.Config.BlockSize, MinBlocksForCutoffEstimation)}
	}
	a.setState(ctx, StateBlockAnalyzed)

	cm := ComponentModel{}
	cm.CutoffHorizontal, cm.CutoffVertical = estimateCutoff(blocks, a.Config.BlockSize)

	points, err := collectPoints(orig, residual, mask, a.Config.WindowSize)
	if err != nil {
		return ComponentModel{}, err
	}
	logger.Debugf(ctx, "component %s: %d intensity points", c, len(points))
	if len(points) < MinPointsForIntensityEstimation {
		return ComponentModel{}, ErrInsufficientData{Reason: fmt.Sprintf("%d intensity points, at least %d are required", len(points), MinPointsForIntensityEstimation)}
	}
	curve, err := fitScalingCurve(points, bitDepth)
	if err != nil {
		return ComponentModel{}, err
	}
	cm.ScalingCurve = averageScalingCurve(curve, bitDepth)
	a.setState(ctx, StateCurveFit)

	first, last := scaleFrom10Bit(MinIntensity, bitDepth), scaleFrom10Bit(MaxIntensity, bitDepth)
	quantized, distortion, err := LloydMax(cm.ScalingCurve[first:last+1], QuantLevels, a.Config.MaxLloydMaxIterations)
	if err != nil {
		return ComponentModel{}, err
	}
	logger.Debugf(ctx, "component %s: quantization distortion %g", c, distortion)
	a.setState(ctx, StateQuantized)

	cm.intervals = scaleDown(defineIntervals(quantized, first), bitDepth)
	cm.Present = true
	return cm, nil
}

// denoise returns the grain-free version of orig.
func (a *Analyzer) denoise(
	ctx context.Context,
	c plane.Component,
	orig *plane.Plane,
) ([]float64, error) {
	if a.Config.ExternalDenoised == nil {
		return smooth(orig), nil
	}
	ext, err := a.Config.ExternalDenoised.LoadPlane(ctx, c, orig.Width, orig.Height, orig.BitDepth)
	if err != nil {
		return nil, fmt.Errorf("unable to load the external denoised plane: %w", err)
	}
	if ext.Width < orig.Width || ext.Height < orig.Height {
		return nil, fmt.Errorf("the external denoised plane %s is smaller than %s", ext, orig)
	}
	denoised, err := crop(ext, orig.Width, orig.Height)
	if err != nil {
		return nil, err
	}
	return planeValues(denoised), nil
}
