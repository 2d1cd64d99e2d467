package filmgrain

import (
	"github.com/xaionaro-go/avpicture/morph"
	"github.com/xaionaro-go/avpicture/plane"
)

var tapFilter = [3]float64{1, 2, 1}

const normTap = 4.0

// crop copies the top-left w x h samples of p.
func crop(p *plane.Plane, w, h int) (*plane.Plane, error) {
	if p.Width == w && p.Height == h {
		return p, nil
	}
	out, err := plane.New(p.Component, w, h, p.BitDepth, p.Storage)
	if err != nil {
		return nil, err
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Set(x, y, p.At(x, y))
		}
	}
	return out, nil
}

// smooth applies the separable [1,2,1] filter with clamped borders.
func smooth(p *plane.Plane) []float64 {
	w, h := p.Width, p.Height
	rows := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			acc := 0.0
			for i, tap := range tapFilter {
				acc += tap * p.AtClamped(x+i-1, y)
			}
			rows[y*w+x] = acc / normTap
		}
	}
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			acc := 0.0
			for j, tap := range tapFilter {
				acc += tap * rows[plane.Clip(y+j-1, 0, h-1)*w+x]
			}
			out[y*w+x] = acc / normTap
		}
	}
	return out
}

// subsample halves both dimensions, filtering with [1,2,1] first.
func subsample(p *plane.Plane) (*plane.Plane, error) {
	w, h := (p.Width+1)/2, (p.Height+1)/2
	out, err := plane.New(p.Component, w, h, p.BitDepth, p.Storage)
	if err != nil {
		return nil, err
	}
	smoothed := smooth(p)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Set(x, y, smoothed[2*y*p.Width+2*x])
		}
	}
	return out, nil
}

// upsample doubles both dimensions (cropped to w x h) by inserting zeros
// and interpolating with the [1,2,1] filter.
func upsample(p *plane.Plane, w, h int) (*plane.Plane, error) {
	out, err := plane.New(p.Component, w, h, p.BitDepth, p.Storage)
	if err != nil {
		return nil, err
	}
	interpolate := func(x, y int) float64 {
		if x%2 == 0 {
			return p.AtClamped(x/2, y)
		}
		return (p.AtClamped(x/2, y) + p.AtClamped(x/2+1, y)) * 2 / normTap
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var v float64
			if y%2 == 0 {
				v = interpolate(x, y/2)
			} else {
				v = (interpolate(x, y/2) + interpolate(x, y/2+1)) * 2 / normTap
			}
			out.Set(x, y, v)
		}
	}
	return out, nil
}

// combineMasks adds the samples set in src to dst.
func combineMasks(dst, src *plane.Plane) {
	for i, v := range src.U8 {
		if v != 0 {
			dst.U8[i] = morph.MaskSet
		}
	}
}

// suppressLowIntensity adds to mask every sample of orig below threshold.
func suppressLowIntensity(orig, mask *plane.Plane, threshold float64) {
	for y := 0; y < orig.Height; y++ {
		for x := 0; x < orig.Width; x++ {
			if orig.At(x, y) < threshold {
				mask.U8[y*mask.Width+x] = morph.MaskSet
			}
		}
	}
}

// subtract returns orig - denoised.
func subtract(orig *plane.Plane, denoised []float64) []float64 {
	out := make([]float64, len(denoised))
	for y := 0; y < orig.Height; y++ {
		for x := 0; x < orig.Width; x++ {
			idx := y*orig.Width + x
			out[idx] = orig.At(x, y) - denoised[idx]
		}
	}
	return out
}

func planeValues(p *plane.Plane) []float64 {
	out := make([]float64, p.Width*p.Height)
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			out[y*p.Width+x] = p.At(x, y)
		}
	}
	return out
}

func maskIsSet(mask *plane.Plane, x0, y0, w, h int) bool {
	for y := y0; y < y0+h; y++ {
		row := mask.U8[y*mask.Width:]
		for x := x0; x < x0+w; x++ {
			if row[x] != 0 {
				return true
			}
		}
	}
	return false
}
