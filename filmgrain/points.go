package filmgrain

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/xaionaro-go/avpicture/plane"
)

// intensityPoint is the residual variance observed at an intensity.
type intensityPoint struct {
	Intensity int
	Variance  float64
}

// collectPoints measures every window without mask samples: the mean of
// the original and the variance of the residual.
func collectPoints(
	orig *plane.Plane,
	residual []float64,
	mask *plane.Plane,
	window int,
) ([]intensityPoint, error) {
	w := orig.Width
	values := make([]float64, 0, window*window)
	grain := make([]float64, 0, window*window)
	var points []intensityPoint
	for y0 := 0; y0+window <= orig.Height; y0 += window {
		for x0 := 0; x0+window <= w; x0 += window {
			if maskIsSet(mask, x0, y0, window, window) {
				continue
			}
			values, grain = values[:0], grain[:0]
			for y := y0; y < y0+window; y++ {
				for x := x0; x < x0+window; x++ {
					values = append(values, orig.At(x, y))
					grain = append(grain, residual[y*w+x])
				}
			}
			mean, err := stats.Mean(values)
			if err != nil {
				return nil, fmt.Errorf("unable to compute the mean: %w", err)
			}
			variance, err := stats.PopulationVariance(grain)
			if err != nil {
				return nil, fmt.Errorf("unable to compute the variance: %w", err)
			}
			points = append(points, intensityPoint{
				Intensity: int(math.Round(mean)),
				Variance:  variance,
			})
		}
	}
	return points, nil
}
