package filmgrain

// Parameters of the estimation. Intensities and steps are in 10-bit units
// and are rescaled to the bit depth of the analyzed component.
const (
	MaxPairs     = 256
	MaxOrder     = 8
	MaxRealScale = 16
	Order        = 4
	QuantLevels  = 4
	IntervalSize = 16

	MinElementNumberPerIntensityInterval = 8
	MinPointsForIntensityEstimation      = 40
	MinBlocksForCutoffEstimation         = 2

	PointStep           = 16
	MaxNumPointToExtend = 4
	PointScale          = 1.25
	VarScaleDown        = 1.2
	VarScaleUp          = 0.6
	NumPasses           = 2
	Neighbours          = 1
	Window              = 1
	MinIntensity        = 40
	MaxIntensity        = 950
)

const (
	// cutoffDecay is the share of the peak energy below which the
	// frequency is considered cut off.
	cutoffDecay = 0.5

	// cutoffMin and cutoffMax bound the model cutoff values, in units of
	// 1/16 of the block frequency range.
	cutoffMin     = 2
	cutoffMax     = 14
	cutoffDefault = 8

	maxLog2ScaleFactor = 7
)

// scaleFrom10Bit converts a 10-bit intensity or step into bitDepth units.
func scaleFrom10Bit(v int, bitDepth int) int {
	if bitDepth >= 10 {
		return v << (bitDepth - 10)
	}
	return v >> (10 - bitDepth)
}
