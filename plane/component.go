package plane

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

type Component int

const (
	ComponentY = Component(iota)
	ComponentU
	ComponentV
	ComponentA

	MaxComponents = 4
)

func (c Component) String() string {
	switch c {
	case ComponentY:
		return "Y"
	case ComponentU:
		return "U"
	case ComponentV:
		return "V"
	case ComponentA:
		return "A"
	default:
		return fmt.Sprintf("Component(%d)", int(c))
	}
}

func (c Component) IsChroma() bool {
	return c == ComponentU || c == ComponentV
}

type ChromaFormat int

const (
	ChromaFormat400 = ChromaFormat(iota)
	ChromaFormat420
	ChromaFormat422
	ChromaFormat444
)

func (f ChromaFormat) String() string {
	switch f {
	case ChromaFormat400:
		return "4:0:0"
	case ChromaFormat420:
		return "4:2:0"
	case ChromaFormat422:
		return "4:2:2"
	case ChromaFormat444:
		return "4:4:4"
	default:
		return fmt.Sprintf("ChromaFormat(%d)", int(f))
	}
}

func (f ChromaFormat) Valid() bool {
	return f >= ChromaFormat400 && f <= ChromaFormat444
}

// SubsamplingShift returns log2 of the horizontal and vertical chroma
// subsampling factors.
func (f ChromaFormat) SubsamplingShift() (uint, uint) {
	switch f {
	case ChromaFormat420:
		return 1, 1
	case ChromaFormat422:
		return 1, 0
	default:
		return 0, 0
	}
}

// NumComponents is the number of colour components (alpha excluded).
func (f ChromaFormat) NumComponents() int {
	if f == ChromaFormat400 {
		return 1
	}
	return 3
}

// ComponentSize returns the dimensions of the given component for a
// picture whose luma is width x height.
func (f ChromaFormat) ComponentSize(c Component, width, height int) (int, int) {
	if !c.IsChroma() {
		return width, height
	}
	sx, sy := f.SubsamplingShift()
	return (width + (1 << sx) - 1) >> sx, (height + (1 << sy) - 1) >> sy
}

// ChromaLocation is the H.273 chroma_sample_loc_type.
type ChromaLocation int

const (
	ChromaLocationLeft = ChromaLocation(iota)
	ChromaLocationCenter
	ChromaLocationTopLeft
	ChromaLocationTop
	ChromaLocationBottomLeft
	ChromaLocationBottom
)

func (l ChromaLocation) String() string {
	switch l {
	case ChromaLocationLeft:
		return "left"
	case ChromaLocationCenter:
		return "center"
	case ChromaLocationTopLeft:
		return "topleft"
	case ChromaLocationTop:
		return "top"
	case ChromaLocationBottomLeft:
		return "bottomleft"
	case ChromaLocationBottom:
		return "bottom"
	default:
		return fmt.Sprintf("ChromaLocation(%d)", int(l))
	}
}

// Phase returns the displacement of a chroma sample from the top-left luma
// sample it covers, in chroma sample units, for a 2x subsampled axis.
func (l ChromaLocation) Phase() (float64, float64) {
	var x, y float64
	switch l {
	case ChromaLocationCenter, ChromaLocationTop, ChromaLocationBottom:
		x = 0.25
	}
	switch l {
	case ChromaLocationLeft, ChromaLocationCenter:
		y = 0.25
	case ChromaLocationBottomLeft, ChromaLocationBottom:
		y = 0.5
	}
	return x, y
}

func Clip[T constraints.Integer | constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
