// Package morph implements binary morphology over mask planes.
//
// A mask is an 8-bit plane where any non-zero sample is set. Operations
// work in place with a 3x3 structuring element clamped to the plane.
package morph

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/avpicture/logger"
	"github.com/xaionaro-go/avpicture/plane"
)

// MaskSet is the value written into set mask samples.
const MaskSet = 255

func check(mask *plane.Plane, iterations int) error {
	if err := mask.Validate(); err != nil {
		return fmt.Errorf("invalid mask: %w", err)
	}
	if mask.Storage != plane.StorageUint8 {
		return fmt.Errorf("masks must be 8-bit planes, got %s", mask)
	}
	if iterations < 0 {
		return fmt.Errorf("the number of iterations must not be negative, got %d", iterations)
	}
	return nil
}

// Dilate sets every sample with a set neighbour, iterations times.
func Dilate(
	ctx context.Context,
	mask *plane.Plane,
	iterations int,
) (_err error) {
	logger.Tracef(ctx, "Dilate: %s x%d", mask, iterations)
	defer func() { logger.Tracef(ctx, "/Dilate: %s x%d: %v", mask, iterations, _err) }()
	if err := check(mask, iterations); err != nil {
		return err
	}
	apply(mask, iterations, true)
	return nil
}

// Erode clears every sample with a cleared neighbour, iterations times.
func Erode(
	ctx context.Context,
	mask *plane.Plane,
	iterations int,
) (_err error) {
	logger.Tracef(ctx, "Erode: %s x%d", mask, iterations)
	defer func() { logger.Tracef(ctx, "/Erode: %s x%d: %v", mask, iterations, _err) }()
	if err := check(mask, iterations); err != nil {
		return err
	}
	apply(mask, iterations, false)
	return nil
}

// Close is Dilate followed by Erode with the same number of iterations.
func Close(
	ctx context.Context,
	mask *plane.Plane,
	iterations int,
) error {
	return CloseAsymmetric(ctx, mask, iterations, iterations)
}

func CloseAsymmetric(
	ctx context.Context,
	mask *plane.Plane,
	dilations, erosions int,
) error {
	if err := Dilate(ctx, mask, dilations); err != nil {
		return fmt.Errorf("unable to dilate: %w", err)
	}
	if err := Erode(ctx, mask, erosions); err != nil {
		return fmt.Errorf("unable to erode: %w", err)
	}
	return nil
}

// apply runs the passes, each reading a full copy of the previous one.
// A dilation sets a sample if any neighbour is set, an erosion keeps it
// only if all neighbours are set.
func apply(mask *plane.Plane, iterations int, dilate bool) {
	w, h := mask.Width, mask.Height
	prev := make([]uint8, len(mask.U8))
	for iter := 0; iter < iterations; iter++ {
		copy(prev, mask.U8)
		changed := false
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				result := !dilate
				for j := max(y-1, 0); j <= min(y+1, h-1); j++ {
					for i := max(x-1, 0); i <= min(x+1, w-1); i++ {
						set := prev[j*w+i] != 0
						if dilate && set {
							result = true
						}
						if !dilate && !set {
							result = false
						}
					}
				}
				v := uint8(0)
				if result {
					v = MaskSet
				}
				idx := y*w + x
				if (prev[idx] != 0) != result {
					changed = true
				}
				mask.U8[idx] = v
			}
		}
		if !changed {
			return
		}
	}
}
