// family.go defines the interpolation kernel families.

// Package kernel computes interpolation filter taps for the supported
// kernel families.
package kernel

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownFamily = errors.New("unknown kernel family")

type Family int

const (
	FamilyUndefined = Family(iota)

	// FamilyNull passes the planes through; only valid for equal sizes.
	FamilyNull

	// FamilyCopy copies the overlapping region and duplicates edge samples
	// into the rest.
	FamilyCopy

	FamilyNearest
	FamilyBilinear

	// FamilyHalf is a 2:1 box decimation.
	FamilyHalf

	FamilyBicubic
	FamilyLanczos
	FamilyHanning
	FamilyHamming
	FamilySineWindow
	FamilyGaussian

	endOfFamily
)

var familyNames = map[Family]string{
	FamilyNull:       "null",
	FamilyCopy:       "copy",
	FamilyNearest:    "nearest",
	FamilyBilinear:   "bilinear",
	FamilyHalf:       "half",
	FamilyBicubic:    "bicubic",
	FamilyLanczos:    "lanczos",
	FamilyHanning:    "hanning",
	FamilyHamming:    "hamming",
	FamilySineWindow: "sinewindow",
	FamilyGaussian:   "gaussian",
}

func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Family(%d)", int(f))
}

func (f Family) Valid() bool {
	return f > FamilyUndefined && f < endOfFamily
}

// IsBypass reports whether the family skips filtering entirely.
func (f Family) IsBypass() bool {
	return f == FamilyNull || f == FamilyCopy
}

// HasLobes reports whether the family is parametrized by a lobe count.
func (f Family) HasLobes() bool {
	switch f {
	case FamilyLanczos, FamilyHanning, FamilyHamming, FamilySineWindow, FamilyGaussian:
		return true
	}
	return false
}

func ParseFamily(s string) (Family, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, name := range familyNames {
		if name == s {
			return f, nil
		}
	}
	return FamilyUndefined, fmt.Errorf("%w: %q", ErrUnknownFamily, s)
}

// Set implements pflag.Value.
func (f *Family) Set(s string) error {
	v, err := ParseFamily(s)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Type implements pflag.Value.
func (f *Family) Type() string {
	return "kernel"
}
