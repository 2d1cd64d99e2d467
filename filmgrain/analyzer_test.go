package filmgrain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/avpicture/plane"
)

const (
	testSize      = 64
	testIntensity = 512
)

func testConfig() Config {
	cfg := DefaultConfig(testSize, testSize)
	cfg.ChromaFormat = plane.ChromaFormat400
	cfg.DoAnalysis = [3]bool{true, false, false}
	cfg.BlockSize = 32
	return cfg
}

// grainPicture is a flat 10-bit luma picture with gaussian noise.
func grainPicture(t *testing.T, sigma float64, seed int64) *plane.Picture {
	t.Helper()
	pic, err := plane.NewPicture(testSize, testSize, plane.ChromaFormat400, 10, plane.StorageUint16)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(seed))
	p := pic.Planes[plane.ComponentY]
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			p.Set(x, y, testIntensity+sigma*rng.NormFloat64())
		}
	}
	return pic
}

// sigmaAt is the grain standard deviation the model gives to an 8-bit
// luma intensity.
func sigmaAt(t *testing.T, m *Model, intensity uint8) float64 {
	t.Helper()
	c := m.Components[plane.ComponentY]
	require.True(t, c.Present, "%v", c.SkipReason)
	for _, iv := range c.Intervals {
		if iv.Lower <= intensity && intensity <= iv.Upper {
			return math.Ldexp(float64(iv.ScaleFactor), -m.Log2ScaleFactor)
		}
	}
	require.Failf(t, "no interval", "intensity %d is not covered: %v", intensity, c.Intervals)
	return 0
}

func estimate(t *testing.T, cfg Config, pic *plane.Picture) (*Analyzer, *Model) {
	t.Helper()
	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	m, err := a.Estimate(context.Background(), pic)
	require.NoError(t, err)
	return a, m
}

func TestEstimateGrain(t *testing.T) {
	var prev float64
	for _, sigma := range []float64{4, 8, 16} {
		a, m := estimate(t, testConfig(), grainPicture(t, sigma, 1))
		require.Equal(t, StateModelReady, a.State())
		require.False(t, m.Components[plane.ComponentU].Present)
		require.False(t, m.Components[plane.ComponentV].Present)

		got := sigmaAt(t, m, testIntensity>>2)
		require.Greater(t, got, 0.10*sigma, "sigma %g", sigma)
		require.Less(t, got, 0.26*sigma, "sigma %g", sigma)
		require.Greater(t, got, prev, "sigma %g", sigma)
		prev = got

		c := m.Components[plane.ComponentY]
		require.GreaterOrEqual(t, c.CutoffHorizontal, cutoffMin)
		require.LessOrEqual(t, c.CutoffHorizontal, cutoffMax)
		require.GreaterOrEqual(t, c.CutoffVertical, cutoffMin)
		require.LessOrEqual(t, c.CutoffVertical, cutoffMax)
		require.Len(t, c.ScalingCurve, 1024)
		for i := 1; i < len(c.Intervals); i++ {
			require.Greater(t, c.Intervals[i].Lower, c.Intervals[i-1].Upper)
		}

		payload, err := m.SEIPayload()
		require.NoError(t, err)
		require.NotEmpty(t, payload)
	}
}

func TestEstimateNoGrain(t *testing.T) {
	pic := grainPicture(t, 0, 1)
	a, m := estimate(t, testConfig(), pic)
	require.Equal(t, StateModelReady, a.State())
	c := m.Components[plane.ComponentY]
	require.False(t, c.Present)
	require.ErrorAs(t, c.SkipReason, &ErrInsufficientData{})
	require.Equal(t, maxLog2ScaleFactor, m.Log2ScaleFactor)
}

func TestEstimateTooFewBlocks(t *testing.T) {
	cfg := testConfig()
	cfg.BlockSize = 64
	_, m := estimate(t, cfg, grainPicture(t, 8, 1))
	c := m.Components[plane.ComponentY]
	require.False(t, c.Present)
	require.ErrorAs(t, c.SkipReason, &ErrInsufficientData{})
}

func TestEstimatePadding(t *testing.T) {
	cfg := testConfig()
	cfg.PaddingWidth = 8
	cfg.PaddingHeight = 8
	_, m := estimate(t, cfg, grainPicture(t, 8, 2))
	c := m.Components[plane.ComponentY]
	// 56x56 leaves a single 32x32 block
	require.False(t, c.Present)
	require.ErrorAs(t, c.SkipReason, &ErrInsufficientData{})
}

type planeSourceFunc func(c plane.Component, w, h, bitDepth int) (*plane.Plane, error)

func (fn planeSourceFunc) LoadPlane(
	_ context.Context,
	c plane.Component,
	w, h int,
	bitDepth int,
) (*plane.Plane, error) {
	return fn(c, w, h, bitDepth)
}

func constantSource(v float64, bitDepth int) PlaneSource {
	return planeSourceFunc(func(c plane.Component, w, h, _ int) (*plane.Plane, error) {
		storage := plane.StorageUint8
		if bitDepth > 8 {
			storage = plane.StorageUint16
		}
		p, err := plane.New(c, w, h, bitDepth, storage)
		if err != nil {
			return nil, err
		}
		p.Fill(v)
		return p, nil
	})
}

func TestExternalPlanes(t *testing.T) {
	t.Run("mask", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.ExternalMask = constantSource(1, 8)
		_, m := estimate(t, cfg, grainPicture(t, 8, 1))
		require.False(t, m.Components[plane.ComponentY].Present)
	})
	t.Run("empty-mask", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.ExternalMask = constantSource(0, 8)
		_, m := estimate(t, cfg, grainPicture(t, 8, 1))
		require.True(t, m.Components[plane.ComponentY].Present)
	})
	t.Run("denoised", func(t *testing.T) {
		t.Parallel()
		const sigma = 8
		cfg := testConfig()
		cfg.ExternalDenoised = constantSource(testIntensity, 10)
		_, m := estimate(t, cfg, grainPicture(t, sigma, 1))
		_, smoothed := estimate(t, testConfig(), grainPicture(t, sigma, 1))
		got := sigmaAt(t, m, testIntensity>>2)
		require.Greater(t, got, 0.15*sigma)
		require.Less(t, got, 0.32*sigma)
		require.Greater(t, got, sigmaAt(t, smoothed, testIntensity>>2))
	})
	t.Run("failure", func(t *testing.T) {
		t.Parallel()
		errLoad := errors.New("no such file")
		cfg := testConfig()
		cfg.ExternalDenoised = planeSourceFunc(func(plane.Component, int, int, int) (*plane.Plane, error) {
			return nil, errLoad
		})
		a, err := New(context.Background(), cfg)
		require.NoError(t, err)
		_, err = a.Estimate(context.Background(), grainPicture(t, 8, 1))
		require.ErrorIs(t, err, errLoad)
	})
	t.Run("small-mask", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.ExternalMask = planeSourceFunc(func(c plane.Component, _, _, _ int) (*plane.Plane, error) {
			return plane.New(c, 16, 16, 8, plane.StorageUint8)
		})
		a, err := New(context.Background(), cfg)
		require.NoError(t, err)
		_, err = a.Estimate(context.Background(), grainPicture(t, 8, 1))
		require.Error(t, err)
	})
}

func TestConfigValidate(t *testing.T) {
	for name, modify := range map[string]func(*Config){
		"size":            func(cfg *Config) { cfg.Width = 0 },
		"padding":         func(cfg *Config) { cfg.PaddingHeight = cfg.Height },
		"chroma-format":   func(cfg *Config) { cfg.ChromaFormat = plane.ChromaFormat(42) },
		"chroma-disabled": func(cfg *Config) { cfg.DoAnalysis[plane.ComponentU] = true },
		"bit-depth":       func(cfg *Config) { cfg.BitDepths.Luma = 7 },
		"nothing-enabled": func(cfg *Config) { cfg.DoAnalysis = [3]bool{} },
		"block-size":      func(cfg *Config) { cfg.BlockSize = 2 },
		"window-size":     func(cfg *Config) { cfg.WindowSize = 1 },
		"low-intensity":   func(cfg *Config) { cfg.LowIntensityRatio = 1 },
		"iterations":      func(cfg *Config) { cfg.ErosionIterations = -1 },
		"lloyd-max":       func(cfg *Config) { cfg.MaxLloydMaxIterations = 0 },
	} {
		modify := modify
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig()
			require.NoError(t, cfg.Validate())
			modify(&cfg)
			_, err := New(context.Background(), cfg)
			require.ErrorAs(t, err, &ErrConfiguration{})
		})
	}
	require.NoError(t, DefaultConfig(1920, 1080).Validate())
}

func TestEstimateMismatch(t *testing.T) {
	a, err := New(context.Background(), testConfig())
	require.NoError(t, err)

	for _, tc := range []struct {
		width, height int
		format        plane.ChromaFormat
		bitDepth      int
		storage       plane.Storage
	}{
		{testSize, testSize, plane.ChromaFormat420, 10, plane.StorageUint16},
		{testSize, testSize / 2, plane.ChromaFormat400, 10, plane.StorageUint16},
		{testSize, testSize, plane.ChromaFormat400, 8, plane.StorageUint8},
		{testSize, testSize, plane.ChromaFormat400, 10, plane.StorageFloat32},
	} {
		t.Run(fmt.Sprintf("%dx%d/%s/%d/%s", tc.width, tc.height, tc.format, tc.bitDepth, tc.storage), func(t *testing.T) {
			pic, err := plane.NewPicture(tc.width, tc.height, tc.format, tc.bitDepth, tc.storage)
			require.NoError(t, err)
			_, err = a.Estimate(context.Background(), pic)
			require.ErrorAs(t, err, &ErrConfiguration{})
		})
	}
}
