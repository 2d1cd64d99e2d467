package imageio

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/avpicture/filmgrain"
	"github.com/xaionaro-go/avpicture/plane"
)

// FilePlaneSource reads the planes of an image file, e.g. an external mask
// or denoised picture for the grain analysis.
type FilePlaneSource struct {
	Path string
}

var _ filmgrain.PlaneSource = FilePlaneSource{}

func (s FilePlaneSource) String() string {
	return fmt.Sprintf("file:%s", s.Path)
}

// LoadPlane returns component c of the file rescaled to bitDepth. The size
// is not checked; the caller decides whether a larger plane is acceptable.
func (s FilePlaneSource) LoadPlane(
	ctx context.Context,
	c plane.Component,
	width, height int,
	bitDepth int,
) (*plane.Plane, error) {
	pic, err := Load(ctx, s.Path)
	if err != nil {
		return nil, err
	}
	p := pic.Plane(c)
	if p == nil {
		return nil, fmt.Errorf("'%s' (%s) has no component %s", s.Path, pic.ChromaFormat, c)
	}
	if p.Width < width || p.Height < height {
		return nil, fmt.Errorf("component %s of '%s' is %dx%d, at least %dx%d is required", c, s.Path, p.Width, p.Height, width, height)
	}
	return rescale(p, bitDepth)
}

// rescale converts the integer samples of p to another bit depth.
func rescale(p *plane.Plane, bitDepth int) (*plane.Plane, error) {
	if p.BitDepth == bitDepth {
		return p, nil
	}
	storage := plane.StorageUint8
	if bitDepth > 8 {
		storage = plane.StorageUint16
	}
	out, err := plane.New(p.Component, p.Width, p.Height, bitDepth, storage)
	if err != nil {
		return nil, fmt.Errorf("unable to allocate a %d-bit plane: %w", bitDepth, err)
	}
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			v := p.AtInt(x, y)
			if bitDepth > p.BitDepth {
				v <<= bitDepth - p.BitDepth
			} else {
				v >>= p.BitDepth - bitDepth
			}
			out.Set(x, y, float64(v))
		}
	}
	return out, nil
}
