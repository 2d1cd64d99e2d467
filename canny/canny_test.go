package canny

import (
	"context"
	"math/rand"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/avpicture/plane"
)

func countEdges(m *plane.Plane) int {
	n := 0
	for _, v := range m.U8 {
		if v == MaskEdge {
			n++
		}
	}
	return n
}

func TestConstantPlane(t *testing.T) {
	ctx := context.Background()
	for _, bitDepth := range []int{8, 10} {
		storage := plane.StorageUint8
		if bitDepth > 8 {
			storage = plane.StorageUint16
		}
		p, err := plane.New(plane.ComponentY, 40, 30, bitDepth, storage)
		require.NoError(t, err)
		p.Fill(77)

		mask, err := DefaultDetector().Detect(ctx, p)
		require.NoError(t, err)
		require.Equal(t, 40, mask.Width)
		require.Equal(t, 30, mask.Height)
		require.Equal(t, plane.StorageUint8, mask.Storage)
		require.Zero(t, countEdges(mask))
	}
}

func TestVerticalStep(t *testing.T) {
	ctx := context.Background()
	p, err := plane.New(plane.ComponentY, 32, 24, 10, plane.StorageUint16)
	require.NoError(t, err)
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			v := 100.0
			if x >= 16 {
				v = 400
			}
			p.Set(x, y, v)
		}
	}

	mask, err := DefaultDetector().Detect(ctx, p)
	require.NoError(t, err)
	for y := 1; y < 23; y++ {
		require.True(t,
			mask.U8[y*32+15] == MaskEdge || mask.U8[y*32+16] == MaskEdge,
			"row %d: %s", y, spew.Sdump(mask.U8[y*32:(y+1)*32]),
		)
		for x := 0; x < 32; x++ {
			if x < 12 || x > 19 {
				require.Zero(t, mask.U8[y*32+x], "(%d,%d)", x, y)
			}
		}
	}
}

func TestNoiseBelowFloor(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(1))
	p, err := plane.New(plane.ComponentY, 64, 64, 10, plane.StorageUint16)
	require.NoError(t, err)
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			p.Set(x, y, 512+8*rng.NormFloat64())
		}
	}

	mask, err := DefaultDetector().Detect(ctx, p)
	require.NoError(t, err)
	require.Zero(t, countEdges(mask))

	// without the absolute floor the strongest noise gradients become edges
	d := DefaultDetector()
	d.MinHighThreshold = 0
	mask, err = d.Detect(ctx, p)
	require.NoError(t, err)
	require.NotZero(t, countEdges(mask))
}

func TestInvalidDetector(t *testing.T) {
	p, err := plane.New(plane.ComponentY, 4, 4, 8, plane.StorageUint8)
	require.NoError(t, err)
	d := DefaultDetector()
	d.HighThresholdRatio = 0
	_, err = d.Detect(context.Background(), p)
	require.Error(t, err)
}

func TestQuantizeDirection(t *testing.T) {
	require.Equal(t, direction0, quantizeDirection(1, 0))
	require.Equal(t, direction0, quantizeDirection(-1, 0.1))
	require.Equal(t, direction45, quantizeDirection(1, 1))
	require.Equal(t, direction90, quantizeDirection(0, -1))
	require.Equal(t, direction135, quantizeDirection(-1, 1))
}
