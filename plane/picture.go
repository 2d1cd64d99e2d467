package plane

import (
	"fmt"
)

// Picture groups the planes of one decoded picture. Absent components are nil.
type Picture struct {
	ChromaFormat   ChromaFormat
	ChromaLocation ChromaLocation
	Planes         [MaxComponents]*Plane
}

// NewPicture allocates the colour planes of a width x height picture,
// all with the same bit depth and storage.
func NewPicture(
	width, height int,
	format ChromaFormat,
	bitDepth int,
	storage Storage,
) (*Picture, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("unsupported chroma format %s", format)
	}
	pic := &Picture{ChromaFormat: format}
	for c := Component(0); int(c) < format.NumComponents(); c++ {
		w, h := format.ComponentSize(c, width, height)
		p, err := New(c, w, h, bitDepth, storage)
		if err != nil {
			return nil, fmt.Errorf("unable to allocate plane %s: %w", c, err)
		}
		pic.Planes[c] = p
	}
	return pic, nil
}

func (pic *Picture) Plane(c Component) *Plane {
	if c < 0 || int(c) >= MaxComponents {
		return nil
	}
	return pic.Planes[c]
}

// Size returns the dimensions of the luma plane.
func (pic *Picture) Size() (int, int) {
	y := pic.Planes[ComponentY]
	if y == nil {
		return 0, 0
	}
	return y.Width, y.Height
}

func (pic *Picture) Validate() error {
	y := pic.Planes[ComponentY]
	if y == nil {
		return fmt.Errorf("the picture has no luma plane")
	}
	for c, p := range pic.Planes {
		if p == nil {
			continue
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("invalid plane %s: %w", Component(c), err)
		}
		w, h := pic.ChromaFormat.ComponentSize(Component(c), y.Width, y.Height)
		if p.Width != w || p.Height != h {
			return fmt.Errorf("plane %s is %dx%d, but %dx%d is expected for %s", Component(c), p.Width, p.Height, w, h, pic.ChromaFormat)
		}
	}
	return nil
}
