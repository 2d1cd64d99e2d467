// Package canny finds edges in picture planes with the Canny detector.
package canny

import (
	"context"
	"fmt"
	"math"

	"github.com/xaionaro-go/avpicture/logger"
	"github.com/xaionaro-go/avpicture/plane"
)

const (
	// MaskEdge is the value of edge pixels in the returned masks.
	MaskEdge = 255
)

var gauss5x5 = [5][5]int{
	{2, 4, 5, 4, 2},
	{4, 9, 12, 9, 4},
	{5, 12, 15, 12, 5},
	{4, 9, 12, 9, 4},
	{2, 4, 5, 4, 2},
}

const gauss5x5Sum = 159

var (
	sobelX = [3][3]int{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY = [3][3]int{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

type direction uint8

const (
	direction0 = direction(iota)
	direction45
	direction90
	direction135
)

type Detector struct {
	LowThresholdRatio  float64
	HighThresholdRatio float64

	// MinHighThreshold is the lowest strong-edge gradient, in 8-bit units.
	MinHighThreshold float64
}

func DefaultDetector() *Detector {
	return &Detector{
		LowThresholdRatio:  0.1,
		HighThresholdRatio: 3,
		MinHighThreshold:   32,
	}
}

func (d *Detector) String() string {
	return fmt.Sprintf("Canny(low:%g, high:%g, min:%g)", d.LowThresholdRatio, d.HighThresholdRatio, d.MinHighThreshold)
}

// Detect returns an 8-bit plane of the size of in, with MaskEdge on edge
// pixels and 0 elsewhere.
func (d *Detector) Detect(
	ctx context.Context,
	in *plane.Plane,
) (_ret *plane.Plane, _err error) {
	logger.Tracef(ctx, "Detect: %s", in)
	defer func() { logger.Tracef(ctx, "/Detect: %s: %v", in, _err) }()

	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("invalid input plane: %w", err)
	}
	if d.HighThresholdRatio <= 0 || d.LowThresholdRatio <= 0 {
		return nil, fmt.Errorf("threshold ratios must be positive: %s", d)
	}

	w, h := in.Width, in.Height
	blurred := gaussian(in)
	magnitude, directions := gradient(blurred, w, h)
	suppressed := suppressNonMax(magnitude, directions, w, h)

	// float planes are normalized to [0, 1]
	bitDepthScale := 1.0 / 255
	if !in.Storage.IsFloat() {
		bitDepthScale = math.Ldexp(1, in.BitDepth-8)
	}
	high, low := d.thresholds(suppressed, bitDepthScale)
	logger.Debugf(ctx, "%s: thresholds low:%g high:%g", in, low, high)

	out, err := plane.New(in.Component, w, h, 8, plane.StorageUint8)
	if err != nil {
		return nil, fmt.Errorf("unable to allocate the mask: %w", err)
	}
	edgeTracking(suppressed, out.U8, w, h, low, high)
	return out, nil
}

func (d *Detector) thresholds(magnitude []float64, bitDepthScale float64) (float64, float64) {
	maxGradient := 0.0
	for _, v := range magnitude {
		maxGradient = max(maxGradient, v)
	}
	high := maxGradient * d.LowThresholdRatio * d.HighThresholdRatio
	high = max(high, d.MinHighThreshold*bitDepthScale)
	return high, high / d.HighThresholdRatio
}

func gaussian(in *plane.Plane) []float64 {
	w, h := in.Width, in.Height
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			acc := 0.0
			for j := 0; j < 5; j++ {
				for i := 0; i < 5; i++ {
					acc += float64(gauss5x5[j][i]) * in.AtClamped(x+i-2, y+j-2)
				}
			}
			out[y*w+x] = acc / gauss5x5Sum
		}
	}
	return out
}

func gradient(in []float64, w, h int) ([]float64, []direction) {
	magnitude := make([]float64, w*h)
	directions := make([]direction, w*h)
	at := func(x, y int) float64 {
		return in[plane.Clip(y, 0, h-1)*w+plane.Clip(x, 0, w-1)]
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var gx, gy float64
			for j := 0; j < 3; j++ {
				for i := 0; i < 3; i++ {
					v := at(x+i-1, y+j-1)
					gx += float64(sobelX[j][i]) * v
					gy += float64(sobelY[j][i]) * v
				}
			}
			idx := y*w + x
			magnitude[idx] = math.Hypot(gx, gy)
			directions[idx] = quantizeDirection(gx, gy)
		}
	}
	return magnitude, directions
}

func quantizeDirection(gx, gy float64) direction {
	angle := math.Atan2(gy, gx) * 180 / math.Pi
	if angle < 0 {
		angle += 180
	}
	switch {
	case angle < 22.5 || angle >= 157.5:
		return direction0
	case angle < 67.5:
		return direction45
	case angle < 112.5:
		return direction90
	default:
		return direction135
	}
}

// suppressNonMax keeps the pixels whose gradient is a local maximum along
// the gradient direction. The outermost ring is always suppressed.
func suppressNonMax(magnitude []float64, directions []direction, w, h int) []float64 {
	out := make([]float64, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			idx := y*w + x
			var dx, dy int
			switch directions[idx] {
			case direction0:
				dx, dy = 1, 0
			case direction45:
				dx, dy = 1, 1
			case direction90:
				dx, dy = 0, 1
			case direction135:
				dx, dy = -1, 1
			}
			v := magnitude[idx]
			if v >= magnitude[(y+dy)*w+x+dx] && v >= magnitude[(y-dy)*w+x-dx] {
				out[idx] = v
			}
		}
	}
	return out
}

// edgeTracking marks strong pixels and every weak pixel 8-connected to a
// strong one through other weak pixels.
func edgeTracking(magnitude []float64, out []uint8, w, h int, low, high float64) {
	var stack []int
	for idx, v := range magnitude {
		if v > high {
			out[idx] = MaskEdge
			stack = append(stack, idx)
		}
	}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := idx%w, idx/w
		for j := max(y-1, 0); j <= min(y+1, h-1); j++ {
			for i := max(x-1, 0); i <= min(x+1, w-1); i++ {
				n := j*w + i
				if out[n] == MaskEdge || magnitude[n] <= low {
					continue
				}
				out[n] = MaskEdge
				stack = append(stack, n)
			}
		}
	}
}
