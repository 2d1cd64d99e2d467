package scaler

import (
	"context"
	"fmt"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/avpicture/frame"
	"github.com/xaionaro-go/avpicture/plane"
)

// PixelFormatOf returns the planar YUV pixel format of pic.
func PixelFormatOf(pic *plane.Picture) (astiav.PixelFormat, error) {
	luma := pic.Planes[plane.ComponentY]
	if luma == nil {
		return astiav.PixelFormatNone, fmt.Errorf("the picture has no luma plane")
	}
	want := pixelLayout{ChromaFormat: pic.ChromaFormat, BitDepth: luma.BitDepth}
	for _, pixFmt := range []astiav.PixelFormat{
		astiav.PixelFormatYuv420P,
		astiav.PixelFormatYuv422P,
		astiav.PixelFormatYuv444P,
		astiav.PixelFormatYuv420P10Le,
		astiav.PixelFormatYuv422P10Le,
		astiav.PixelFormatYuv444P10Le,
	} {
		if pixelLayouts[pixFmt] == want {
			return pixFmt, nil
		}
	}
	return astiav.PixelFormatNone, fmt.Errorf("no pixel format for %s %d-bit", pic.ChromaFormat, luma.BitDepth)
}

// PictureToFrame copies pic into a new frame taken from frame.Pool.
func PictureToFrame(
	ctx context.Context,
	pic *plane.Picture,
) (*astiav.Frame, error) {
	pixFmt, err := PixelFormatOf(pic)
	if err != nil {
		return nil, err
	}
	layout := pixelLayouts[pixFmt]
	w, h := pic.Size()
	f, err := frame.NewBlankVideo(ctx, w, h, pixFmt)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, layout.bufferSize(Resolution{Width: uint32(w), Height: uint32(h)}))
	if err := layout.pack(pic, buf); err != nil {
		frame.Pool.Put(f)
		return nil, fmt.Errorf("unable to pack the picture: %w", err)
	}
	if err := f.Data().SetBytes(buf, frameAlign); err != nil {
		frame.Pool.Put(f)
		return nil, fmt.Errorf("unable to set the frame data: %w", err)
	}
	return f, nil
}

// FrameToPicture copies the samples of f into a new picture.
func FrameToPicture(f *astiav.Frame) (*plane.Picture, error) {
	layout, err := layoutOf(f.PixelFormat())
	if err != nil {
		return nil, err
	}
	pic, err := layout.newPicture(Resolution{Width: uint32(f.Width()), Height: uint32(f.Height())})
	if err != nil {
		return nil, err
	}
	buf, err := f.Data().Bytes(frameAlign)
	if err != nil {
		return nil, fmt.Errorf("unable to get the frame data: %w", err)
	}
	if err := layout.unpack(buf, pic); err != nil {
		return nil, err
	}
	return pic, nil
}
