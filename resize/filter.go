package resize

import (
	"github.com/xaionaro-go/avpicture/plane"
)

type integerSample interface {
	~uint8 | ~uint16
}

// filterFixed generates every output sample in place from the clamped
// neighbourhood, using the fixed point tables and a 64-bit accumulator.
func filterFixed[T integerSample](
	input, output []T,
	axes AxisPair,
	vMin, vMax int,
) {
	tx, ty := axes.X, axes.Y
	iSizeX := tx.Spec.InputSize
	oSizeX, oSizeY := tx.Spec.OutputSize, ty.Spec.OutputSize
	shift := 2 * tx.Spec.Precision
	rounding := int64(1) << (shift - 1)

	for y := 0; y < oSizeY; y++ {
		filterY := ty.FixedRow(y)
		srcY := ty.SourceRow(y)
		dst := output[y*oSizeX : (y+1)*oSizeX]
		for x := range dst {
			filterX := tx.FixedRow(x)
			srcX := tx.SourceRow(x)

			var result int64
			for j, cy := range filterY {
				if cy == 0 {
					continue
				}
				row := input[srcY[j]*iSizeX:]
				for i, cx := range filterX {
					result += int64(cy) * int64(cx) * int64(row[srcX[i]])
				}
			}
			result += rounding
			result >>= shift
			dst[x] = T(plane.Clip(int(result), vMin, vMax))
		}
	}
}

// filterFloat is filterFixed over the double precision tables.
func filterFloat[T integerSample](
	input, output []T,
	axes AxisPair,
	vMin, vMax int,
) {
	tx, ty := axes.X, axes.Y
	iSizeX := tx.Spec.InputSize
	oSizeX, oSizeY := tx.Spec.OutputSize, ty.Spec.OutputSize

	for y := 0; y < oSizeY; y++ {
		filterY := ty.Row(y)
		srcY := ty.SourceRow(y)
		dst := output[y*oSizeX : (y+1)*oSizeX]
		for x := range dst {
			filterX := tx.Row(x)
			srcX := tx.SourceRow(x)

			result := 0.0
			for j, cy := range filterY {
				row := input[srcY[j]*iSizeX:]
				for i, cx := range filterX {
					result += cy * cx * float64(row[srcX[i]])
				}
			}
			dst[x] = T(plane.Clip(int(result+0.5), vMin, vMax))
		}
	}
}

func filterFloat32(
	input, output []float32,
	axes AxisPair,
	vMin, vMax float64,
) {
	tx, ty := axes.X, axes.Y
	iSizeX := tx.Spec.InputSize
	oSizeX, oSizeY := tx.Spec.OutputSize, ty.Spec.OutputSize

	for y := 0; y < oSizeY; y++ {
		filterY := ty.Row(y)
		srcY := ty.SourceRow(y)
		dst := output[y*oSizeX : (y+1)*oSizeX]
		for x := range dst {
			filterX := tx.Row(x)
			srcX := tx.SourceRow(x)

			result := 0.0
			for j, cy := range filterY {
				row := input[srcY[j]*iSizeX:]
				for i, cx := range filterX {
					result += cy * cx * float64(row[srcX[i]])
				}
			}
			dst[x] = float32(plane.Clip(result, vMin, vMax))
		}
	}
}

func copyPlane(in, out *plane.Plane) {
	copy(out.U8, in.U8)
	copy(out.U16, in.U16)
	copy(out.F32, in.F32)
}

// duplicatePlane copies the overlapping region and fills the rest of the
// output with the nearest edge samples.
func duplicatePlane(in, out *plane.Plane) {
	switch in.Storage {
	case plane.StorageUint8:
		duplicate(in.U8, out.U8, in.Width, in.Height, out.Width, out.Height)
	case plane.StorageUint16:
		duplicate(in.U16, out.U16, in.Width, in.Height, out.Width, out.Height)
	case plane.StorageFloat32:
		duplicate(in.F32, out.F32, in.Width, in.Height, out.Width, out.Height)
	}
}

func duplicate[T any](input, output []T, iw, ih, ow, oh int) {
	for y := 0; y < oh; y++ {
		src := input[min(y, ih-1)*iw:]
		dst := output[y*ow : (y+1)*ow]
		n := copy(dst, src[:min(iw, ow)])
		for x := n; x < ow; x++ {
			dst[x] = src[iw-1]
		}
	}
}
