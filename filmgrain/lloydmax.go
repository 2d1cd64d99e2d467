package filmgrain

import (
	"fmt"
	"sort"
)

// convergenceThreshold is the relative distortion decrease under which the
// quantizer is considered converged.
const convergenceThreshold = 1e-10

// LloydMax quantizes values into at most levels codewords minimizing the
// mean squared error. It returns the quantized values and their distortion.
//
// Values that already have at most levels distinct entries are returned
// unchanged, so quantizing twice gives the same result.
func LloydMax(
	values []float64,
	levels int,
	maxIterations int,
) ([]float64, float64, error) {
	if len(values) == 0 {
		return nil, 0, ErrInsufficientData{Reason: "nothing to quantize"}
	}
	if levels < 1 {
		return nil, 0, ErrConfiguration{Err: fmt.Errorf("at least one level is required, got %d", levels)}
	}

	distinct := distinctValues(values)
	if len(distinct) <= levels {
		return append([]float64(nil), values...), 0, nil
	}

	lo, hi := distinct[0], distinct[len(distinct)-1]
	codebook := make([]float64, levels)
	for i := range codebook {
		codebook[i] = lo + (float64(i)+0.5)*(hi-lo)/float64(levels)
	}

	partition := make([]float64, levels-1)
	sums := make([]float64, levels)
	counts := make([]int, levels)
	prevDistortion := 0.0
	for iter := 0; iter < maxIterations; iter++ {
		for i := range partition {
			partition[i] = (codebook[i] + codebook[i+1]) / 2
		}
		for i := range sums {
			sums[i], counts[i] = 0, 0
		}
		distortion := 0.0
		for _, v := range values {
			cell := sort.SearchFloat64s(partition, v)
			d := v - codebook[cell]
			distortion += d * d
			sums[cell] += v
			counts[cell]++
		}
		distortion /= float64(len(values))

		if distortion == 0 || (iter > 0 && prevDistortion-distortion <= convergenceThreshold*prevDistortion) {
			quantized, _ := quantize(values, partition, codebook)
			return quantized, distortion, nil
		}
		prevDistortion = distortion

		for i := range codebook {
			if counts[i] > 0 {
				codebook[i] = sums[i] / float64(counts[i])
			}
		}
	}
	return nil, 0, ErrNotConverged
}

// quantize maps every value onto the codeword of its partition cell.
func quantize(values, partition, codebook []float64) ([]float64, float64) {
	out := make([]float64, len(values))
	distortion := 0.0
	for i, v := range values {
		out[i] = codebook[sort.SearchFloat64s(partition, v)]
		d := v - out[i]
		distortion += d * d
	}
	return out, distortion / float64(len(values))
}

func distinctValues(values []float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	out := sorted[:0]
	for _, v := range sorted {
		if len(out) == 0 || v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
