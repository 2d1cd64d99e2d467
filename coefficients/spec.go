// spec.go defines FilterSpec, the immutable description of one resampled axis.

// Package coefficients builds the per-output-position filter tables used by
// the separable resampler, both as normalized floating point weights and as
// fixed point coefficients.
package coefficients

import (
	"errors"
	"fmt"
	"math"

	"github.com/xaionaro-go/avpicture/kernel"
)

const (
	DefaultPrecision = 14
	MaxPrecision     = 15
)

var ErrDegenerateFilter = errors.New("the filter weights sum to zero")

type ErrConfiguration struct {
	Err error
}

func (e ErrConfiguration) Error() string {
	return fmt.Sprintf("invalid filter configuration: %v", e.Err)
}

func (e ErrConfiguration) Unwrap() error {
	return e.Err
}

type FilterSpec struct {
	Family     kernel.Family
	Lobes      int
	InputSize  int
	OutputSize int

	// Precision is the number of fractional bits of the fixed point table.
	Precision uint

	// Offset is the phase of the first output position, in input samples.
	Offset float64
}

func (s FilterSpec) String() string {
	return fmt.Sprintf("%s(lobes:%d, %d->%d, p:%d, off:%g)", s.Family, s.Lobes, s.InputSize, s.OutputSize, s.Precision, s.Offset)
}

// Factor is the input/output size ratio: > 1 when downsampling.
func (s FilterSpec) Factor() float64 {
	return float64(s.InputSize) / float64(s.OutputSize)
}

// Taps is the number of filter taps per output position.
func (s FilterSpec) Taps() int {
	factor := s.Factor()
	support := kernel.Support(s.Family, s.Lobes)
	switch {
	case s.Family == kernel.FamilyNearest:
		return 1
	case s.Family == kernel.FamilyHalf:
		return support
	case factor == 1:
		return 1
	case factor > 1:
		return int(math.Ceil(factor * float64(support)))
	default:
		return support
	}
}

func (s FilterSpec) Validate() error {
	if s.InputSize <= 0 || s.OutputSize <= 0 {
		return ErrConfiguration{Err: fmt.Errorf("sizes must be positive, got %d->%d", s.InputSize, s.OutputSize)}
	}
	if !s.Family.Valid() {
		return ErrConfiguration{Err: fmt.Errorf("%w: %s", kernel.ErrUnknownFamily, s.Family)}
	}
	if s.Family.IsBypass() {
		return ErrConfiguration{Err: fmt.Errorf("%s does not use filter coefficients", s.Family)}
	}
	if s.Family.HasLobes() && s.Lobes < 1 {
		return ErrConfiguration{Err: fmt.Errorf("%s requires at least one lobe, got %d", s.Family, s.Lobes)}
	}
	if s.Precision < 1 || s.Precision > MaxPrecision {
		return ErrConfiguration{Err: fmt.Errorf("precision must be within [1, %d], got %d", MaxPrecision, s.Precision)}
	}
	if s.Family == kernel.FamilyHalf && s.InputSize != 2*s.OutputSize {
		return ErrConfiguration{Err: fmt.Errorf("%s requires a 2:1 ratio, got %d->%d", s.Family, s.InputSize, s.OutputSize)}
	}
	if math.IsNaN(s.Offset) || math.IsInf(s.Offset, 0) {
		return ErrConfiguration{Err: fmt.Errorf("invalid offset %v", s.Offset)}
	}
	return nil
}
