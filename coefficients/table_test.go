package coefficients

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/avpicture/kernel"
)

var filteringFamilies = []kernel.Family{
	kernel.FamilyNearest,
	kernel.FamilyBilinear,
	kernel.FamilyBicubic,
	kernel.FamilyLanczos,
	kernel.FamilyHanning,
	kernel.FamilyHamming,
	kernel.FamilySineWindow,
	kernel.FamilyGaussian,
}

func TestRowSums(t *testing.T) {
	sizes := [][2]int{{64, 64}, {64, 32}, {32, 64}, {90, 60}, {60, 90}, {99, 33}, {17, 100}, {1920, 1280}}
	for _, f := range filteringFamilies {
		for _, lobes := range []int{2, 3, 4} {
			for _, size := range sizes {
				for _, precision := range []uint{6, 10, 14} {
					spec := FilterSpec{
						Family:     f,
						Lobes:      lobes,
						InputSize:  size[0],
						OutputSize: size[1],
						Precision:  precision,
					}
					t.Run(spec.String(), func(t *testing.T) {
						table, err := Build(spec)
						require.NoError(t, err)
						for x := 0; x < spec.OutputSize; x++ {
							var fixedSum int64
							for _, c := range table.FixedRow(x) {
								fixedSum += int64(c)
							}
							require.Equal(t, int64(1)<<precision, fixedSum, "row %d", x)

							floatSum := 0.0
							for _, w := range table.Row(x) {
								floatSum += w
							}
							require.InDelta(t, 1.0, floatSum, 1e-9, "row %d", x)
						}
					})
				}
			}
		}
	}
}

func TestTaps(t *testing.T) {
	for _, tc := range []struct {
		spec FilterSpec
		taps int
	}{
		{FilterSpec{Family: kernel.FamilyLanczos, Lobes: 3, InputSize: 100, OutputSize: 100}, 1},
		{FilterSpec{Family: kernel.FamilyLanczos, Lobes: 3, InputSize: 50, OutputSize: 100}, 6},
		{FilterSpec{Family: kernel.FamilyLanczos, Lobes: 3, InputSize: 200, OutputSize: 100}, 12},
		{FilterSpec{Family: kernel.FamilyLanczos, Lobes: 3, InputSize: 150, OutputSize: 100}, 9},
		{FilterSpec{Family: kernel.FamilyGaussian, Lobes: 2, InputSize: 101, OutputSize: 100}, 5},
		{FilterSpec{Family: kernel.FamilyBicubic, InputSize: 300, OutputSize: 100}, 12},
		{FilterSpec{Family: kernel.FamilyBilinear, InputSize: 10, OutputSize: 100}, 2},
		{FilterSpec{Family: kernel.FamilyNearest, InputSize: 300, OutputSize: 100}, 1},
		{FilterSpec{Family: kernel.FamilyHalf, InputSize: 200, OutputSize: 100}, 2},
	} {
		require.Equal(t, tc.taps, tc.spec.Taps(), tc.spec.String())
	}
}

func TestIdentityAxis(t *testing.T) {
	table, err := Build(FilterSpec{Family: kernel.FamilyLanczos, Lobes: 3, InputSize: 16, OutputSize: 16, Precision: 14})
	require.NoError(t, err)
	require.Equal(t, 1, table.Taps)
	require.Equal(t, []int{0}, table.Offsets)
	for x := 0; x < 16; x++ {
		require.Equal(t, []int32{1 << 14}, table.FixedRow(x))
		require.Equal(t, []int{x}, table.SourceRow(x))
	}
	require.Equal(t, Limits{IMin: 0, IMax: 15, OMin: 0, OMax: 16}, table.Limits)
}

func TestOffsetsAndLimits(t *testing.T) {
	table, err := Build(FilterSpec{Family: kernel.FamilyLanczos, Lobes: 3, InputSize: 64, OutputSize: 32, Precision: 14})
	require.NoError(t, err)
	require.Equal(t, []int{-5, -4, -3, -2, -1, 0, 1, 2, 3, 4, 5, 6}, table.Offsets)
	require.Equal(t, Limits{IMin: 8, IMax: 63, OMin: 14, OMax: 18}, table.Limits)

	table, err = Build(FilterSpec{Family: kernel.FamilyLanczos, Lobes: 3, InputSize: 32, OutputSize: 64, Precision: 14})
	require.NoError(t, err)
	require.Equal(t, []int{-2, -1, 0, 1, 2, 3}, table.Offsets)
	require.Equal(t, Limits{IMin: 5, IMax: 31, OMin: 15, OMax: 49}, table.Limits)
}

func TestSourcesAreClamped(t *testing.T) {
	table, err := Build(FilterSpec{Family: kernel.FamilyLanczos, Lobes: 3, InputSize: 20, OutputSize: 7, Precision: 14})
	require.NoError(t, err)
	for x := 0; x < 7; x++ {
		for i, src := range table.SourceRow(x) {
			require.GreaterOrEqual(t, src, 0)
			require.Less(t, src, 20)
			require.Equal(t, min(max(table.Origin(x)+table.Offsets[i], 0), 19), src)
		}
	}
}

func TestUpsamplingPhase(t *testing.T) {
	// at 2x upsampling every second output lands exactly on an input sample
	table, err := Build(FilterSpec{Family: kernel.FamilyLanczos, Lobes: 3, InputSize: 8, OutputSize: 16, Precision: 14})
	require.NoError(t, err)
	for x := 0; x < 16; x += 2 {
		row := table.Row(x)
		for i, off := range table.Offsets {
			if off == 0 {
				require.InDelta(t, 1.0, row[i], 1e-12)
			} else {
				require.InDelta(t, 0.0, row[i], 1e-12)
			}
		}
	}
	// and the odd ones are symmetric around the half-sample position
	row := table.Row(1)
	require.InDelta(t, row[2], row[3], 1e-12)
	require.InDelta(t, row[1], row[4], 1e-12)
}

func TestValidate(t *testing.T) {
	for _, spec := range []FilterSpec{
		{Family: kernel.FamilyLanczos, Lobes: 3, InputSize: 0, OutputSize: 10, Precision: 14},
		{Family: kernel.FamilyUndefined, Lobes: 3, InputSize: 10, OutputSize: 10, Precision: 14},
		{Family: kernel.FamilyCopy, InputSize: 10, OutputSize: 10, Precision: 14},
		{Family: kernel.FamilyLanczos, Lobes: 0, InputSize: 10, OutputSize: 10, Precision: 14},
		{Family: kernel.FamilyLanczos, Lobes: 3, InputSize: 10, OutputSize: 10, Precision: 16},
		{Family: kernel.FamilyHalf, InputSize: 10, OutputSize: 6, Precision: 14},
	} {
		t.Run(fmt.Sprint(spec), func(t *testing.T) {
			_, err := Build(spec)
			require.Error(t, err)
			require.ErrorAs(t, err, &ErrConfiguration{})
		})
	}
}
