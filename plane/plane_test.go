package plane

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		p, err := New(ComponentY, 4, 3, 10, StorageUint16)
		require.NoError(t, err)
		require.Len(t, p.U16, 12)
		require.NoError(t, p.Validate())
		require.Equal(t, float64(1023), p.MaxValue())
	})
	t.Run("bit depth does not fit", func(t *testing.T) {
		_, err := New(ComponentY, 4, 3, 10, StorageUint8)
		require.Error(t, err)
	})
	t.Run("empty", func(t *testing.T) {
		_, err := New(ComponentY, 0, 3, 8, StorageUint8)
		require.Error(t, err)
	})
	t.Run("sample count mismatch", func(t *testing.T) {
		p, err := New(ComponentY, 4, 3, 8, StorageUint8)
		require.NoError(t, err)
		p.U8 = p.U8[:5]
		require.Error(t, p.Validate())
	})
}

func TestSetSaturates(t *testing.T) {
	p, err := New(ComponentU, 2, 2, 8, StorageUint8)
	require.NoError(t, err)
	p.Set(0, 0, 300)
	p.Set(1, 0, -5)
	p.Set(0, 1, 41.5)
	require.Equal(t, uint8(255), p.U8[0])
	require.Equal(t, uint8(0), p.U8[1])
	require.Equal(t, uint8(42), p.U8[2])
	require.Equal(t, float64(42), p.AtClamped(-3, 7))
}

func TestChromaFormat(t *testing.T) {
	w, h := ChromaFormat420.ComponentSize(ComponentU, 5, 3)
	require.Equal(t, 3, w)
	require.Equal(t, 2, h)
	w, h = ChromaFormat422.ComponentSize(ComponentV, 5, 3)
	require.Equal(t, 3, w)
	require.Equal(t, 3, h)
	w, h = ChromaFormat420.ComponentSize(ComponentY, 5, 3)
	require.Equal(t, 5, w)
	require.Equal(t, 3, h)
	require.Equal(t, 1, ChromaFormat400.NumComponents())
}

func TestChromaLocationPhase(t *testing.T) {
	x, y := ChromaLocationLeft.Phase()
	require.Equal(t, 0.0, x)
	require.Equal(t, 0.25, y)
	x, y = ChromaLocationBottom.Phase()
	require.Equal(t, 0.25, x)
	require.Equal(t, 0.5, y)
	x, y = ChromaLocationTopLeft.Phase()
	require.Equal(t, 0.0, x)
	require.Equal(t, 0.0, y)
}

func TestNewPicture(t *testing.T) {
	pic, err := NewPicture(16, 8, ChromaFormat420, 8, StorageUint8)
	require.NoError(t, err)
	require.NoError(t, pic.Validate())
	require.Equal(t, 8, pic.Plane(ComponentV).Width)
	require.Equal(t, 4, pic.Plane(ComponentV).Height)
	require.Nil(t, pic.Plane(ComponentA))

	pic.Planes[ComponentU].Width = 7
	require.Error(t, pic.Validate())
}
