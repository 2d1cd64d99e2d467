package kernel

import (
	"math"
)

// Support returns the filter width, in input samples, of the family at
// unit scale.
func Support(f Family, lobes int) int {
	switch f {
	case FamilyNearest:
		return 1
	case FamilyBilinear, FamilyHalf:
		return 2
	case FamilyBicubic:
		return 4
	case FamilyLanczos, FamilyHanning, FamilyHamming, FamilySineWindow, FamilyGaussian:
		return 2 * lobes
	}
	return 0
}

func Sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// Tap returns the weight of a sample at the given distance from the
// interpolated position. The scale (max(factor, 1)) stretches the kernel
// when downsampling, so that it also acts as the anti-aliasing filter.
func Tap(f Family, distance float64, lobes int, scale float64) float64 {
	d := math.Abs(distance)
	if scale < 1 {
		scale = 1
	}
	l := float64(lobes)

	switch f {
	case FamilyGaussian:
		sd := 0.5 * scale
		if d > l*sd {
			return 0
		}
		x := d / sd
		return math.Exp(-x * x / 2)
	case FamilyHalf:
		if d <= 1 {
			return 1
		}
		return 0
	}

	x := d / scale
	switch f {
	case FamilyNearest:
		if x < 1 {
			return 1
		}
		return 0
	case FamilyBilinear:
		if x >= 1 {
			return 0
		}
		return 1 - x
	case FamilyBicubic:
		return bicubic(x)
	case FamilyLanczos:
		if x >= l {
			return 0
		}
		return Sinc(x) * Sinc(x/l)
	case FamilyHanning:
		if x >= l {
			return 0
		}
		return Sinc(x) * (0.5 + 0.5*math.Cos(math.Pi*x/l))
	case FamilyHamming:
		if x >= l {
			return 0
		}
		return Sinc(x) * (0.54 + 0.46*math.Cos(math.Pi*x/l))
	case FamilySineWindow:
		if x >= l {
			return 0
		}
		return Sinc(x) * math.Cos(math.Pi*x/(2*l))
	}
	return 0
}

// bicubic is the Keys cubic convolution kernel with a = -0.5.
func bicubic(x float64) float64 {
	const a = -0.5
	switch {
	case x < 1:
		return ((a+2)*x-(a+3))*x*x + 1
	case x < 2:
		return ((a*x-5*a)*x+8*a)*x - 4*a
	}
	return 0
}
