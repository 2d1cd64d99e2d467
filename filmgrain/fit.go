package filmgrain

import (
	"fmt"
	"math"
	"sort"

	"github.com/xaionaro-go/avpicture/plane"
	"gonum.org/v1/gonum/mat"
)

// fitScalingCurve fits the residual variance as a function of the
// intensity, returning one value per intensity of the bit depth.
func fitScalingCurve(points []intensityPoint, bitDepth int) ([]float64, error) {
	var curve []float64
	for pass := 0; pass < NumPasses; pass++ {
		pts := points
		if pass > 0 {
			pts = dropOutliers(points, curve)
		}
		aggregated := aggregatePoints(pts, bitDepth)
		aggregated = filterNeighbours(aggregated, bitDepth)
		if len(aggregated) == 0 {
			return nil, ErrInsufficientData{Reason: fmt.Sprintf("no intensity interval has %d points (pass %d)", MinElementNumberPerIntensityInterval, pass+1)}
		}
		aggregated = extendPoints(aggregated, bitDepth)

		var err error
		curve, err = fitPolynomial(aggregated, Order, bitDepth)
		if err != nil {
			return nil, err
		}
	}
	return curve, nil
}

func intervalWidth(bitDepth int) int {
	return max(scaleFrom10Bit(IntervalSize, bitDepth), 1)
}

// dropOutliers keeps the points within [VarScaleUp, VarScaleDown] of the
// previous fit.
func dropOutliers(points []intensityPoint, curve []float64) []intensityPoint {
	var out []intensityPoint
	for _, p := range points {
		fitted := curve[plane.Clip(p.Intensity, 0, len(curve)-1)]
		if p.Variance < VarScaleUp*fitted || p.Variance > VarScaleDown*fitted {
			continue
		}
		out = append(out, p)
	}
	return out
}

// aggregatePoints averages the points of every intensity interval with at
// least MinElementNumberPerIntensityInterval points. The result is sorted.
func aggregatePoints(points []intensityPoint, bitDepth int) []intensityPoint {
	width := intervalWidth(bitDepth)
	type acc struct {
		intensity int
		variance  float64
		count     int
	}
	intervals := map[int]*acc{}
	for _, p := range points {
		idx := p.Intensity / width
		a := intervals[idx]
		if a == nil {
			a = &acc{}
			intervals[idx] = a
		}
		a.intensity += p.Intensity
		a.variance += p.Variance
		a.count++
	}

	var out []intensityPoint
	for _, a := range intervals {
		if a.count < MinElementNumberPerIntensityInterval {
			continue
		}
		out = append(out, intensityPoint{
			Intensity: int(math.Round(float64(a.intensity) / float64(a.count))),
			Variance:  a.variance / float64(a.count),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Intensity < out[j].Intensity })
	return out
}

// filterNeighbours removes isolated points and points whose variance is
// far from the average of their neighbours. The points must be sorted.
func filterNeighbours(points []intensityPoint, bitDepth int) []intensityPoint {
	if len(points) < 3 {
		return points
	}
	width := intervalWidth(bitDepth)
	var out []intensityPoint
	for i, p := range points {
		count := 0
		sum := 0.0
		for j, n := range points {
			if i == j {
				continue
			}
			d := n.Intensity/width - p.Intensity/width
			if d < -Window || d > Window {
				continue
			}
			count++
			sum += n.Variance
		}
		if count < Neighbours {
			continue
		}
		avg := sum / float64(count)
		if p.Variance < VarScaleUp*avg || p.Variance > VarScaleDown*avg {
			continue
		}
		out = append(out, p)
	}
	return out
}

// extendPoints adds up to MaxNumPointToExtend points past each end of the
// sorted points, PointStep apart, dividing the variance by PointScale at
// each step.
func extendPoints(points []intensityPoint, bitDepth int) []intensityPoint {
	if len(points) == 0 {
		return points
	}
	step := max(scaleFrom10Bit(PointStep, bitDepth), 1)
	minI, maxI := scaleFrom10Bit(MinIntensity, bitDepth), scaleFrom10Bit(MaxIntensity, bitDepth)

	var left []intensityPoint
	first := points[0]
	variance := first.Variance
	for k := 1; k <= MaxNumPointToExtend; k++ {
		x := first.Intensity - k*step
		if x < minI {
			break
		}
		variance /= PointScale
		left = append([]intensityPoint{{Intensity: x, Variance: variance}}, left...)
	}

	out := append(left, points...)
	last := points[len(points)-1]
	variance = last.Variance
	for k := 1; k <= MaxNumPointToExtend; k++ {
		x := last.Intensity + k*step
		if x > maxI {
			break
		}
		variance /= PointScale
		out = append(out, intensityPoint{Intensity: x, Variance: variance})
	}
	return out
}

// fitPolynomial fits a least squares polynomial of degree up to order to
// the sorted points and evaluates it for every intensity of the bit depth.
// The curve is constant outside of the fitted range and never negative.
func fitPolynomial(points []intensityPoint, order int, bitDepth int) ([]float64, error) {
	if len(points) > MaxPairs {
		points = points[:MaxPairs]
	}
	n := len(points)
	if n == 0 {
		return nil, ErrInsufficientData{Reason: "no points to fit"}
	}
	lo, hi := points[0].Intensity, points[n-1].Intensity
	degree := min(order, MaxOrder, n-1)
	if hi == lo {
		degree = 0
	}

	normalize := func(x int) float64 {
		if hi == lo {
			return 0
		}
		return 2*float64(x-lo)/float64(hi-lo) - 1
	}

	a := mat.NewDense(n, degree+1, nil)
	b := mat.NewVecDense(n, nil)
	for i, p := range points {
		t := normalize(p.Intensity)
		v := 1.0
		for j := 0; j <= degree; j++ {
			a.Set(i, j, v)
			v *= t
		}
		b.SetVec(i, p.Variance)
	}

	var coeffs mat.VecDense
	if err := coeffs.SolveVec(a, b); err != nil {
		return nil, ErrInsufficientData{Reason: fmt.Sprintf("the fit is degenerate: %v", err)}
	}
	for j := 0; j < coeffs.Len(); j++ {
		if c := coeffs.AtVec(j); math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, ErrInsufficientData{Reason: "the fit is not finite"}
		}
	}

	curve := make([]float64, 1<<bitDepth)
	for x := range curve {
		t := normalize(plane.Clip(x, lo, hi))
		v := 0.0
		for j := degree; j >= 0; j-- {
			v = v*t + coeffs.AtVec(j)
		}
		curve[x] = max(v, 0)
	}
	return curve, nil
}

// averageScalingCurve converts the variance curve into a standard
// deviation in 8-bit units, averaged over IntervalSize intensities.
func averageScalingCurve(curve []float64, bitDepth int) []float64 {
	n := len(curve)
	sigma := make([]float64, n)
	for i, v := range curve {
		sigma[i] = math.Sqrt(max(v, 0))
	}

	width := intervalWidth(bitDepth)
	half := width / 2
	scale := math.Ldexp(1, 8-bitDepth)
	out := make([]float64, n)
	for i := range sigma {
		from, to := max(i-half, 0), min(i+half, n-1)
		sum := 0.0
		for j := from; j <= to; j++ {
			sum += sigma[j]
		}
		out[i] = min(sum/float64(to-from+1)*scale, MaxRealScale)
	}
	return out
}
