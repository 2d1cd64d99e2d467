// Package imageio converts between Go images, image files and planar
// pictures.
package imageio

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/xaionaro-go/avpicture/logger"
	"github.com/xaionaro-go/avpicture/plane"
)

const jpegQuality = 95

// ToPicture converts img into a 4:0:0, 4:2:0, 4:2:2 or 4:4:4 picture.
// YCbCr images keep their subsampling, grayscale images become 4:0:0 and
// everything else is converted into 8-bit 4:4:4 YCbCr.
func ToPicture(img image.Image) (*plane.Picture, error) {
	r := img.Bounds()
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("empty image %v", r)
	}

	switch img := img.(type) {
	case *image.Gray:
		pic, err := plane.NewPicture(w, h, plane.ChromaFormat400, 8, plane.StorageUint8)
		if err != nil {
			return nil, err
		}
		y := pic.Planes[plane.ComponentY]
		for j := 0; j < h; j++ {
			off := img.PixOffset(r.Min.X, r.Min.Y+j)
			copy(y.U8[j*w:(j+1)*w], img.Pix[off:off+w])
		}
		return pic, nil
	case *image.Gray16:
		pic, err := plane.NewPicture(w, h, plane.ChromaFormat400, 16, plane.StorageUint16)
		if err != nil {
			return nil, err
		}
		y := pic.Planes[plane.ComponentY]
		for j := 0; j < h; j++ {
			for i := 0; i < w; i++ {
				y.U16[j*w+i] = img.Gray16At(r.Min.X+i, r.Min.Y+j).Y
			}
		}
		return pic, nil
	case *image.YCbCr:
		if format, ok := chromaFormatOf(img.SubsampleRatio); ok {
			return fromYCbCr(img, format)
		}
	}

	pic, err := plane.NewPicture(w, h, plane.ChromaFormat444, 8, plane.StorageUint8)
	if err != nil {
		return nil, err
	}
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			c := color.YCbCrModel.Convert(img.At(r.Min.X+i, r.Min.Y+j)).(color.YCbCr)
			idx := j*w + i
			pic.Planes[plane.ComponentY].U8[idx] = c.Y
			pic.Planes[plane.ComponentU].U8[idx] = c.Cb
			pic.Planes[plane.ComponentV].U8[idx] = c.Cr
		}
	}
	return pic, nil
}

func chromaFormatOf(ratio image.YCbCrSubsampleRatio) (plane.ChromaFormat, bool) {
	switch ratio {
	case image.YCbCrSubsampleRatio420:
		return plane.ChromaFormat420, true
	case image.YCbCrSubsampleRatio422:
		return plane.ChromaFormat422, true
	case image.YCbCrSubsampleRatio444:
		return plane.ChromaFormat444, true
	default:
		return 0, false
	}
}

func subsampleRatioOf(format plane.ChromaFormat) (image.YCbCrSubsampleRatio, bool) {
	switch format {
	case plane.ChromaFormat420:
		return image.YCbCrSubsampleRatio420, true
	case plane.ChromaFormat422:
		return image.YCbCrSubsampleRatio422, true
	case plane.ChromaFormat444:
		return image.YCbCrSubsampleRatio444, true
	default:
		return 0, false
	}
}

func fromYCbCr(img *image.YCbCr, format plane.ChromaFormat) (*plane.Picture, error) {
	r := img.Rect
	w, h := r.Dx(), r.Dy()
	pic, err := plane.NewPicture(w, h, format, 8, plane.StorageUint8)
	if err != nil {
		return nil, err
	}
	y := pic.Planes[plane.ComponentY]
	for j := 0; j < h; j++ {
		off := img.YOffset(r.Min.X, r.Min.Y+j)
		copy(y.U8[j*w:(j+1)*w], img.Y[off:off+w])
	}
	sx, sy := format.SubsamplingShift()
	u, v := pic.Planes[plane.ComponentU], pic.Planes[plane.ComponentV]
	for j := 0; j < u.Height; j++ {
		for i := 0; i < u.Width; i++ {
			off := img.COffset(r.Min.X+i<<sx, r.Min.Y+j<<sy)
			u.U8[j*u.Width+i] = img.Cb[off]
			v.U8[j*v.Width+i] = img.Cr[off]
		}
	}
	return pic, nil
}

// to8Bit converts a sample of p into 8 bits.
func to8Bit(p *plane.Plane, x, y int) uint8 {
	switch {
	case p.Storage.IsFloat():
		return uint8(plane.Clip(p.At(x, y)*255+0.5, 0, 255))
	case p.BitDepth > 8:
		shift := p.BitDepth - 8
		v := (p.AtInt(x, y) + 1<<(shift-1)) >> shift
		return uint8(plane.Clip(v, 0, 255))
	default:
		return uint8(p.AtInt(x, y) << (8 - p.BitDepth))
	}
}

// FromPicture converts pic into a Go image: 4:0:0 pictures become
// grayscale (16-bit above 8 bits per sample), the others 8-bit YCbCr.
func FromPicture(pic *plane.Picture) (image.Image, error) {
	if err := pic.Validate(); err != nil {
		return nil, fmt.Errorf("invalid picture: %w", err)
	}
	luma := pic.Planes[plane.ComponentY]
	w, h := luma.Width, luma.Height
	r := image.Rect(0, 0, w, h)

	if pic.ChromaFormat == plane.ChromaFormat400 {
		if luma.BitDepth > 8 && !luma.Storage.IsFloat() {
			img := image.NewGray16(r)
			shift := 16 - luma.BitDepth
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					img.SetGray16(x, y, color.Gray16{Y: uint16(luma.AtInt(x, y) << shift)})
				}
			}
			return img, nil
		}
		img := image.NewGray(r)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				img.Pix[y*img.Stride+x] = to8Bit(luma, x, y)
			}
		}
		return img, nil
	}

	ratio, ok := subsampleRatioOf(pic.ChromaFormat)
	if !ok {
		return nil, fmt.Errorf("unsupported chroma format %s", pic.ChromaFormat)
	}
	u, v := pic.Planes[plane.ComponentU], pic.Planes[plane.ComponentV]
	if u == nil || v == nil {
		return nil, fmt.Errorf("the %s picture has no chroma planes", pic.ChromaFormat)
	}
	img := image.NewYCbCr(r, ratio)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Y[y*img.YStride+x] = to8Bit(luma, x, y)
		}
	}
	for y := 0; y < u.Height; y++ {
		for x := 0; x < u.Width; x++ {
			img.Cb[y*img.CStride+x] = to8Bit(u, x, y)
			img.Cr[y*img.CStride+x] = to8Bit(v, x, y)
		}
	}
	return img, nil
}

// Load reads an image file into a picture.
func Load(
	ctx context.Context,
	path string,
) (_ret *plane.Picture, _err error) {
	logger.Tracef(ctx, "Load: '%s'", path)
	defer func() { logger.Tracef(ctx, "/Load: '%s': %v", path, _err) }()

	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open '%s': %w", path, err)
	}
	pic, err := ToPicture(img)
	if err != nil {
		return nil, fmt.Errorf("unable to convert '%s': %w", path, err)
	}
	return pic, nil
}

// Save writes pic into an image file; the format is chosen by the file
// extension (PNG, JPEG or BMP).
func Save(
	ctx context.Context,
	path string,
	pic *plane.Picture,
) (_err error) {
	logger.Tracef(ctx, "Save: '%s'", path)
	defer func() { logger.Tracef(ctx, "/Save: '%s': %v", path, _err) }()

	encoder, err := encoderFor(path)
	if err != nil {
		return err
	}
	img, err := FromPicture(pic)
	if err != nil {
		return err
	}
	if err := imgio.Save(path, img, encoder); err != nil {
		return fmt.Errorf("unable to save '%s': %w", path, err)
	}
	return nil
}

func encoderFor(path string) (imgio.Encoder, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return imgio.PNGEncoder(), nil
	case ".jpg", ".jpeg":
		return imgio.JPEGEncoder(jpegQuality), nil
	case ".bmp":
		return imgio.BMPEncoder(), nil
	default:
		return nil, fmt.Errorf("unsupported image file extension '%s'", ext)
	}
}
