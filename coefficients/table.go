package coefficients

import (
	"fmt"
	"math"

	"github.com/xaionaro-go/avpicture/kernel"
)

// Limits describe which part of the axis can be filtered without clamping.
// Positions outside [OMin, OMax] read clamped source coordinates, which
// approximates (but is not) edge replication.
type Limits struct {
	IMin int
	IMax int
	OMin int
	OMax int
}

// Table holds the filter of one axis. It is read-only once built and may be
// shared between goroutines.
type Table struct {
	Spec FilterSpec
	Taps int

	// Offsets are the tap positions relative to the mapped source coordinate.
	Offsets []int

	// Float holds OutputSize rows of Taps weights, each row summing to 1.
	Float []float64

	// Fixed holds the same rows quantized to Spec.Precision bits, each row
	// summing to exactly 1<<Spec.Precision.
	Fixed []int32

	// Source holds, per output position and tap, the source index already
	// clamped into [0, InputSize-1].
	Source []int

	Limits Limits
}

func (t *Table) String() string {
	return fmt.Sprintf("Table(%s, taps:%d)", t.Spec, t.Taps)
}

func (t *Table) Row(x int) []float64 {
	return t.Float[x*t.Taps : (x+1)*t.Taps]
}

func (t *Table) FixedRow(x int) []int32 {
	return t.Fixed[x*t.Taps : (x+1)*t.Taps]
}

func (t *Table) SourceRow(x int) []int {
	return t.Source[x*t.Taps : (x+1)*t.Taps]
}

// Origin is the source coordinate an output position maps to. The mapping
// truncates, it does not round.
func (t *Table) Origin(x int) int {
	return int(math.Floor(t.Spec.Offset + float64(x)*t.Spec.Factor()))
}

// Build computes the filter table of one axis.
func Build(spec FilterSpec) (*Table, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	taps := spec.Taps()
	if taps < 1 {
		return nil, ErrConfiguration{Err: fmt.Errorf("%s yields no taps", spec)}
	}
	t := &Table{
		Spec:    spec,
		Taps:    taps,
		Offsets: make([]int, taps),
		Float:   make([]float64, spec.OutputSize*taps),
		Fixed:   make([]int32, spec.OutputSize*taps),
		Source:  make([]int, spec.OutputSize*taps),
	}
	t.Limits = setFilterLimits(t.Offsets, taps, spec.InputSize, spec.OutputSize, spec.Factor())
	if err := t.prepareCoefficients(); err != nil {
		return nil, err
	}
	t.prepareSources()
	return t, nil
}

func setFilterLimits(
	offsets []int,
	taps int,
	iDimension, oDimension int,
	factor float64,
) Limits {
	for i := range offsets {
		offsets[i] = i - ((taps - 1) >> 1)
	}

	l := Limits{IMax: iDimension - 1}
	if factor != 1 {
		l.IMin = ((taps + 1) >> 1) + 2
		if factor <= 1 {
			l.OMin = int(float64(taps+1)/factor + 1)
		} else {
			l.OMin = taps + 2
		}
	}
	l.OMax = oDimension - l.OMin
	return l
}

func (t *Table) prepareCoefficients() error {
	spec := t.Spec
	factor := spec.Factor()
	scale := math.Max(factor, 1)
	one := int64(1) << spec.Precision

	// the center tap absorbs the rounding error of the fixed point row;
	// the index matches the reference design, clamped for a single tap
	center := min((t.Taps+1)>>1, t.Taps-1)

	for x := 0; x < spec.OutputSize; x++ {
		pos := spec.Offset + float64(x)*factor
		frac := pos - math.Floor(pos)

		row := t.Row(x)
		sum := 0.0
		for i, off := range t.Offsets {
			// |off - frac| for downsampling and |frac - off| for upsampling
			// are the same magnitude, and all kernels are symmetric
			dist := math.Abs(float64(off) - frac)
			row[i] = kernel.Tap(spec.Family, dist, spec.Lobes, scale)
			sum += row[i]
		}
		if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
			return fmt.Errorf("%w: %s at output position %d", ErrDegenerateFilter, spec, x)
		}
		for i := range row {
			row[i] /= sum
		}

		fixed := t.FixedRow(x)
		var fixedSum int64
		for i, w := range row {
			fixed[i] = int32(math.Floor(w*float64(one) + 0.5))
			fixedSum += int64(fixed[i])
		}
		fixed[center] += int32(one - fixedSum)
	}
	return nil
}

func (t *Table) prepareSources() {
	maxIdx := t.Spec.InputSize - 1
	for x := 0; x < t.Spec.OutputSize; x++ {
		origin := t.Origin(x)
		src := t.SourceRow(x)
		for i, off := range t.Offsets {
			src[i] = min(max(origin+off, 0), maxIdx)
		}
	}
}
