package filmgrain

import (
	"fmt"
	"math"
)

type IntensityInterval struct {
	Lower       uint8
	Upper       uint8
	ScaleFactor int
}

type ComponentModel struct {
	Present          bool
	NumModelValues   int
	Intervals        []IntensityInterval
	CutoffHorizontal int
	CutoffVertical   int

	// ScalingCurve is the grain standard deviation in 8-bit units for each
	// intensity of the component bit depth.
	ScalingCurve []float64 `json:"-"`

	// SkipReason is why the component is absent, if it is.
	SkipReason error `json:"-"`

	intervals []scaleInterval
}

// Model is a film grain model: scale factors per intensity interval of each
// colour component, sharing one log2 scale factor.
type Model struct {
	Log2ScaleFactor int
	Components      [3]ComponentModel
}

func (m *Model) String() string {
	present := 0
	for _, c := range m.Components {
		if c.Present {
			present++
		}
	}
	return fmt.Sprintf("FilmGrainModel(log2:%d, components:%d)", m.Log2ScaleFactor, present)
}

// ModelValues returns comp_model_value for the interval: the scale
// factor followed by the cutoff frequencies that cannot be inferred.
func (c *ComponentModel) ModelValues(iv IntensityInterval) []int {
	switch c.NumModelValues {
	case 1:
		return []int{iv.ScaleFactor}
	case 2:
		return []int{iv.ScaleFactor, c.CutoffHorizontal}
	default:
		return []int{iv.ScaleFactor, c.CutoffHorizontal, c.CutoffVertical}
	}
}

func numModelValues(horizontal, vertical int) int {
	switch {
	case horizontal == cutoffDefault && vertical == cutoffDefault:
		return 1
	case horizontal == vertical:
		return 2
	default:
		return 3
	}
}

// log2ScaleFactor is the largest shift keeping the scale factors within
// 8 bits.
func log2ScaleFactor(maxSigma float64) int {
	for l := maxLog2ScaleFactor; l > 0; l-- {
		if math.Round(math.Ldexp(maxSigma, l)) <= 255 {
			return l
		}
	}
	return 0
}

// finalize computes the shared log2 scale factor and the integer scale
// factors of every present component.
func (m *Model) finalize() {
	maxSigma := 0.0
	for _, c := range m.Components {
		if !c.Present {
			continue
		}
		for _, iv := range c.intervals {
			maxSigma = max(maxSigma, iv.Sigma)
		}
	}
	m.Log2ScaleFactor = log2ScaleFactor(maxSigma)

	for i := range m.Components {
		c := &m.Components[i]
		if !c.Present {
			continue
		}
		intervals := make([]IntensityInterval, 0, len(c.intervals))
		for _, iv := range c.intervals {
			intervals = append(intervals, IntensityInterval{
				Lower:       uint8(iv.Lower),
				Upper:       uint8(iv.Upper),
				ScaleFactor: min(int(math.Round(math.Ldexp(iv.Sigma, m.Log2ScaleFactor))), 255),
			})
		}
		c.Intervals = confirmIntervals(intervals)
		if len(c.Intervals) == 0 {
			c.Present = false
			c.SkipReason = ErrInsufficientData{Reason: "no intensity interval has a non-zero scale factor"}
			continue
		}
		c.NumModelValues = numModelValues(c.CutoffHorizontal, c.CutoffVertical)
	}
}
