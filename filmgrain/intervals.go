package filmgrain

// scaleInterval is an intensity interval with the grain standard
// deviation (8-bit units) before it is converted into a scale factor.
type scaleInterval struct {
	Lower int
	Upper int
	Sigma float64
}

// defineIntervals splits quantized, the values of the intensities starting
// at first, into runs of equal values.
func defineIntervals(quantized []float64, first int) []scaleInterval {
	var out []scaleInterval
	for i, v := range quantized {
		x := first + i
		if len(out) > 0 && out[len(out)-1].Sigma == v {
			out[len(out)-1].Upper = x
			continue
		}
		out = append(out, scaleInterval{Lower: x, Upper: x, Sigma: v})
	}
	return out
}

// scaleDown converts the bounds into 8-bit intensities.
func scaleDown(intervals []scaleInterval, bitDepth int) []scaleInterval {
	shift := bitDepth - 8
	out := make([]scaleInterval, len(intervals))
	for i, iv := range intervals {
		out[i] = scaleInterval{
			Lower: iv.Lower >> shift,
			Upper: iv.Upper >> shift,
			Sigma: iv.Sigma,
		}
	}
	return out
}

// confirmIntervals merges neighbours with the same scale factor, makes the
// bounds strictly increasing and drops the intervals without grain.
func confirmIntervals(intervals []IntensityInterval) []IntensityInterval {
	var out []IntensityInterval
	for _, iv := range intervals {
		if len(out) > 0 {
			prev := &out[len(out)-1]
			if prev.ScaleFactor == iv.ScaleFactor && int(prev.Upper)+1 >= int(iv.Lower) {
				prev.Upper = max(prev.Upper, iv.Upper)
				continue
			}
			if iv.Lower <= prev.Upper {
				if prev.Upper == 255 {
					continue
				}
				iv.Lower = prev.Upper + 1
			}
			if iv.Lower > iv.Upper {
				continue
			}
		}
		out = append(out, iv)
	}

	result := out[:0]
	for _, iv := range out {
		if iv.ScaleFactor != 0 {
			result = append(result, iv)
		}
	}
	return result
}
