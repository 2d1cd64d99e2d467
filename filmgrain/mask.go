package filmgrain

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/avpicture/canny"
	"github.com/xaionaro-go/avpicture/logger"
	"github.com/xaionaro-go/avpicture/morph"
	"github.com/xaionaro-go/avpicture/plane"
)

// findMask returns the mask of the samples excluded from the analysis:
// edges found at full and half resolution, closed, plus the dark samples.
func (a *Analyzer) findMask(
	ctx context.Context,
	orig *plane.Plane,
) (_ret *plane.Plane, _err error) {
	logger.Tracef(ctx, "findMask: %s", orig)
	defer func() { logger.Tracef(ctx, "/findMask: %s: %v", orig, _err) }()

	detector := a.Config.EdgeDetector
	if detector == nil {
		detector = canny.DefaultDetector()
	}

	mask, err := detector.Detect(ctx, orig)
	if err != nil {
		return nil, fmt.Errorf("unable to detect edges: %w", err)
	}

	if orig.Width >= 4 && orig.Height >= 4 {
		sub, err := subsample(orig)
		if err != nil {
			return nil, fmt.Errorf("unable to subsample: %w", err)
		}
		subMask, err := detector.Detect(ctx, sub)
		if err != nil {
			return nil, fmt.Errorf("unable to detect edges at half resolution: %w", err)
		}
		upMask, err := upsample(subMask, orig.Width, orig.Height)
		if err != nil {
			return nil, fmt.Errorf("unable to upsample the mask: %w", err)
		}
		combineMasks(mask, upMask)
	}

	if err := morph.CloseAsymmetric(ctx, mask, a.Config.DilationIterations, a.Config.ErosionIterations); err != nil {
		return nil, fmt.Errorf("unable to close the mask: %w", err)
	}

	threshold := a.Config.LowIntensityRatio * orig.MaxValue()
	suppressLowIntensity(orig, mask, threshold)
	return mask, nil
}

// loadMask reads the external mask, any non-zero sample is excluded.
func (a *Analyzer) loadMask(
	ctx context.Context,
	c plane.Component,
	w, h int,
) (*plane.Plane, error) {
	ext, err := a.Config.ExternalMask.LoadPlane(ctx, c, w, h, a.Config.BitDepths.Of(c))
	if err != nil {
		return nil, fmt.Errorf("unable to load the external mask: %w", err)
	}
	if ext.Width < w || ext.Height < h {
		return nil, fmt.Errorf("the external mask %s is smaller than %dx%d", ext, w, h)
	}
	mask, err := plane.New(c, w, h, 8, plane.StorageUint8)
	if err != nil {
		return nil, err
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if ext.At(x, y) != 0 {
				mask.U8[y*w+x] = morph.MaskSet
			}
		}
	}
	return mask, nil
}
