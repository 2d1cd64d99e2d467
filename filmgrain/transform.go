package filmgrain

import (
	"math"

	"github.com/xaionaro-go/avpicture/plane"
	"gonum.org/v1/gonum/dsp/fourier"
)

// blockTransformer computes the squared 2D DCT of square blocks.
type blockTransformer struct {
	size int
	dct  *fourier.DCT
	src  []float64
	dst  []float64
}

func newBlockTransformer(size int) *blockTransformer {
	return &blockTransformer{
		size: size,
		dct:  fourier.NewDCT(size),
		src:  make([]float64, size),
		dst:  make([]float64, size),
	}
}

// transform returns the squared coefficients of the block at (x0, y0),
// indexed [vertical frequency][horizontal frequency].
func (t *blockTransformer) transform(residual []float64, stride, x0, y0 int) []float64 {
	n := t.size
	coeffs := make([]float64, n*n)
	for y := 0; y < n; y++ {
		copy(t.src, residual[(y0+y)*stride+x0:(y0+y)*stride+x0+n])
		t.dct.Transform(t.dst, t.src)
		copy(coeffs[y*n:], t.dst)
	}
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			t.src[y] = coeffs[y*n+x]
		}
		t.dct.Transform(t.dst, t.src)
		for y := 0; y < n; y++ {
			coeffs[y*n+x] = t.dst[y] * t.dst[y]
		}
	}
	return coeffs
}

// flatBlocks transforms every block of the residual without mask samples.
func flatBlocks(residual []float64, mask *plane.Plane, size int) [][]float64 {
	t := newBlockTransformer(size)
	var blocks [][]float64
	for y := 0; y+size <= mask.Height; y += size {
		for x := 0; x+size <= mask.Width; x += size {
			if maskIsSet(mask, x, y, size, size) {
				continue
			}
			blocks = append(blocks, t.transform(residual, mask.Width, x, y))
		}
	}
	return blocks
}

// estimateCutoff returns the horizontal and vertical cutoff frequencies
// of the mean block spectrum.
func estimateCutoff(blocks [][]float64, size int) (int, int) {
	horizontal := make([]float64, size)
	vertical := make([]float64, size)
	for _, b := range blocks {
		for v := 0; v < size; v++ {
			for u := 0; u < size; u++ {
				e := b[v*size+u]
				horizontal[u] += e
				vertical[v] += e
			}
		}
	}
	norm := float64(len(blocks) * size)
	for k := range horizontal {
		horizontal[k] /= norm
		vertical[k] /= norm
	}
	return cutoffFrequency(horizontal), cutoffFrequency(vertical)
}

// cutoffFrequency finds the first frequency past the energy peak where the
// smoothed energy falls below cutoffDecay of the peak. mean[0] is DC and is
// ignored. The result is expressed in 1/16 of the frequency range.
func cutoffFrequency(mean []float64) int {
	n := len(mean)
	if n < 3 {
		return cutoffDefault
	}
	ac := mean[1:]
	smoothed := make([]float64, len(ac))
	for i := range ac {
		acc := 0.0
		for j, tap := range tapFilter {
			acc += tap * ac[plane.Clip(i+j-1, 0, len(ac)-1)]
		}
		smoothed[i] = acc / normTap
	}

	peak := 0
	for i, v := range smoothed {
		if v > smoothed[peak] {
			peak = i
		}
	}
	for i := peak + 1; i < len(smoothed); i++ {
		if smoothed[i] < cutoffDecay*smoothed[peak] {
			k := i + 1
			return plane.Clip(int(math.Round(float64(k)*16/float64(n))), cutoffMin, cutoffMax)
		}
	}
	return cutoffMax
}
