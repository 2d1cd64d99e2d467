package imageio

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/transform"
	"github.com/xaionaro-go/avpicture/kernel"
)

var bildFilters = map[kernel.Family]transform.ResampleFilter{
	kernel.FamilyNearest:  transform.NearestNeighbor,
	kernel.FamilyBilinear: transform.Linear,
	kernel.FamilyHalf:     transform.Box,
	kernel.FamilyBicubic:  transform.CatmullRom,
	kernel.FamilyLanczos:  transform.Lanczos,
	kernel.FamilyGaussian: transform.Gaussian,
}

// BildFilter returns the bild filter closest to the kernel family.
func BildFilter(f kernel.Family) (transform.ResampleFilter, error) {
	filter, ok := bildFilters[f]
	if !ok {
		return transform.ResampleFilter{}, fmt.Errorf("bild has no filter for %s", f)
	}
	return filter, nil
}

// ReferenceResize resizes an RGB(A) image with bild.
func ReferenceResize(img image.Image, width, height int, f kernel.Family) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid size %dx%d", width, height)
	}
	filter, err := BildFilter(f)
	if err != nil {
		return nil, err
	}
	return transform.Resize(img, width, height, filter), nil
}
