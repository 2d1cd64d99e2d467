package filmgrain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCutoffFrequency(t *testing.T) {
	t.Run("flat", func(t *testing.T) {
		t.Parallel()
		mean := make([]float64, 16)
		for i := range mean {
			mean[i] = 3
		}
		require.Equal(t, cutoffMax, cutoffFrequency(mean))
	})
	t.Run("low-pass", func(t *testing.T) {
		t.Parallel()
		mean := []float64{100}
		for i := 0; i < 7; i++ {
			mean = append(mean, 10)
		}
		for i := 0; i < 8; i++ {
			mean = append(mean, 0)
		}
		require.Equal(t, 8, cutoffFrequency(mean))
	})
	t.Run("tiny", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, cutoffDefault, cutoffFrequency([]float64{1, 2}))
	})
}

func TestFitPolynomial(t *testing.T) {
	quadratic := func(x int) float64 {
		d := float64(x - 500)
		return 2 + d*d/10000
	}
	var points []intensityPoint
	for x := 100; x <= 900; x += 100 {
		points = append(points, intensityPoint{Intensity: x, Variance: quadratic(x)})
	}
	curve, err := fitPolynomial(points, Order, 10)
	require.NoError(t, err)
	require.Len(t, curve, 1024)
	for _, x := range []int{100, 250, 300, 500, 777, 900} {
		require.InDelta(t, quadratic(x), curve[x], 1e-6, "%d", x)
	}
	require.InDelta(t, quadratic(100), curve[0], 1e-6)
	require.InDelta(t, quadratic(900), curve[1023], 1e-6)

	curve, err = fitPolynomial([]intensityPoint{{Intensity: 300, Variance: 5}}, Order, 10)
	require.NoError(t, err)
	require.InDelta(t, 5.0, curve[0], 1e-9)
	require.InDelta(t, 5.0, curve[1023], 1e-9)

	_, err = fitPolynomial(nil, Order, 10)
	require.ErrorAs(t, err, &ErrInsufficientData{})
}

func TestFitPolynomialNonNegative(t *testing.T) {
	points := []intensityPoint{
		{Intensity: 100, Variance: 0},
		{Intensity: 200, Variance: 0},
		{Intensity: 300, Variance: 10},
	}
	curve, err := fitPolynomial(points, 1, 10)
	require.NoError(t, err)
	require.Zero(t, curve[100])
	require.InDelta(t, 8.3333333, curve[300], 1e-6)
	for _, v := range curve {
		require.GreaterOrEqual(t, v, 0.0)
	}
}

func TestExtendPoints(t *testing.T) {
	out := extendPoints([]intensityPoint{{Intensity: 512, Variance: 100}}, 10)
	require.Len(t, out, 1+2*MaxNumPointToExtend)
	require.Equal(t, 448, out[0].Intensity)
	require.Equal(t, 496, out[3].Intensity)
	require.InDelta(t, 80, out[3].Variance, 1e-9)
	require.InDelta(t, 100/(1.25*1.25*1.25*1.25), out[0].Variance, 1e-9)
	require.Equal(t, intensityPoint{Intensity: 512, Variance: 100}, out[4])
	require.Equal(t, 576, out[8].Intensity)

	out = extendPoints([]intensityPoint{{Intensity: 60, Variance: 10}}, 10)
	require.Equal(t, 44, out[0].Intensity)
	require.Equal(t, 60, out[1].Intensity)
	require.Len(t, out, 2+MaxNumPointToExtend)

	out = extendPoints([]intensityPoint{{Intensity: 128, Variance: 10}}, 8)
	require.Equal(t, 124, out[3].Intensity)
	require.Equal(t, 112, out[0].Intensity)

	require.Empty(t, extendPoints(nil, 10))
}

func TestAggregatePoints(t *testing.T) {
	var points []intensityPoint
	for i := 0; i < 8; i++ {
		points = append(points, intensityPoint{Intensity: 100 + i, Variance: float64(i + 1)})
	}
	for i := 0; i < 7; i++ {
		points = append(points, intensityPoint{Intensity: 300, Variance: 1})
	}
	for i := 0; i < 8; i++ {
		points = append(points, intensityPoint{Intensity: 50, Variance: 2})
	}
	require.Equal(t, []intensityPoint{
		{Intensity: 50, Variance: 2},
		{Intensity: 104, Variance: 4.5},
	}, aggregatePoints(points, 10))
}

func TestFilterNeighbours(t *testing.T) {
	points := []intensityPoint{
		{Intensity: 100, Variance: 10},
		{Intensity: 116, Variance: 11},
		{Intensity: 132, Variance: 30},
		{Intensity: 400, Variance: 10},
	}
	require.Equal(t, []intensityPoint{{Intensity: 100, Variance: 10}}, filterNeighbours(points, 10))

	two := points[2:]
	require.Equal(t, two, filterNeighbours(two, 10))
}

func TestIntervals(t *testing.T) {
	intervals := defineIntervals([]float64{1, 1, 2, 2, 2, 1}, 40)
	require.Equal(t, []scaleInterval{
		{Lower: 40, Upper: 41, Sigma: 1},
		{Lower: 42, Upper: 44, Sigma: 2},
		{Lower: 45, Upper: 45, Sigma: 1},
	}, intervals)
	require.Equal(t, []scaleInterval{
		{Lower: 10, Upper: 10, Sigma: 1},
		{Lower: 10, Upper: 11, Sigma: 2},
		{Lower: 11, Upper: 11, Sigma: 1},
	}, scaleDown(intervals, 10))
}

func TestConfirmIntervals(t *testing.T) {
	require.Equal(t, []IntensityInterval{
		{Lower: 0, Upper: 100, ScaleFactor: 3},
		{Lower: 121, Upper: 200, ScaleFactor: 5},
	}, confirmIntervals([]IntensityInterval{
		{Lower: 0, Upper: 50, ScaleFactor: 3},
		{Lower: 51, Upper: 100, ScaleFactor: 3},
		{Lower: 101, Upper: 120, ScaleFactor: 0},
		{Lower: 110, Upper: 200, ScaleFactor: 5},
		{Lower: 210, Upper: 255, ScaleFactor: 0},
	}))

	require.Equal(t, []IntensityInterval{
		{Lower: 0, Upper: 255, ScaleFactor: 2},
	}, confirmIntervals([]IntensityInterval{
		{Lower: 0, Upper: 255, ScaleFactor: 2},
		{Lower: 100, Upper: 255, ScaleFactor: 4},
	}))

	require.Empty(t, confirmIntervals([]IntensityInterval{{Lower: 0, Upper: 255}}))
}

func TestLog2ScaleFactor(t *testing.T) {
	for _, tc := range []struct {
		sigma    float64
		expected int
	}{
		{16, 3},
		{0.5, 7},
		{3.2, 6},
		{0, 7},
		{300, 0},
	} {
		require.Equal(t, tc.expected, log2ScaleFactor(tc.sigma), "%g", tc.sigma)
	}
}

func TestNumModelValues(t *testing.T) {
	require.Equal(t, 1, numModelValues(cutoffDefault, cutoffDefault))
	require.Equal(t, 2, numModelValues(10, 10))
	require.Equal(t, 3, numModelValues(cutoffDefault, 10))
}

func TestFinalize(t *testing.T) {
	m := &Model{}
	m.Components[0] = ComponentModel{
		Present:          true,
		CutoffHorizontal: cutoffDefault,
		CutoffVertical:   cutoffDefault,
		intervals: []scaleInterval{
			{Lower: 0, Upper: 100, Sigma: 0.5},
			{Lower: 101, Upper: 255, Sigma: 2},
		},
	}
	m.Components[2] = ComponentModel{
		Present:   true,
		intervals: []scaleInterval{{Lower: 0, Upper: 255, Sigma: 0}},
	}
	m.finalize()

	require.Equal(t, 6, m.Log2ScaleFactor)
	require.Equal(t, []IntensityInterval{
		{Lower: 0, Upper: 100, ScaleFactor: 32},
		{Lower: 101, Upper: 255, ScaleFactor: 128},
	}, m.Components[0].Intervals)
	require.Equal(t, 1, m.Components[0].NumModelValues)
	require.False(t, m.Components[1].Present)
	require.False(t, m.Components[2].Present)
	require.ErrorAs(t, m.Components[2].SkipReason, &ErrInsufficientData{})
}
