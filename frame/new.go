package frame

import (
	"context"
	"fmt"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/avpicture/logger"
)

// NewBlankVideo returns a black frame taken from Pool.
func NewBlankVideo(
	ctx context.Context,
	width, height int,
	pixFmt astiav.PixelFormat,
) (_ret *astiav.Frame, _err error) {
	logger.Tracef(ctx, "NewBlankVideo(ctx, %dx%d, %s)", width, height, pixFmt)
	defer func() { logger.Tracef(ctx, "/NewBlankVideo(ctx, %dx%d, %s): %v", width, height, pixFmt, _err) }()

	f := Pool.Get()
	defer func() {
		if _err != nil {
			Pool.Put(f)
		}
	}()

	f.SetWidth(width)
	f.SetHeight(height)
	f.SetPixelFormat(pixFmt)
	if err := f.AllocBuffer(0); err != nil {
		return nil, fmt.Errorf("unable to allocate frame buffer: %w", err)
	}
	if err := f.ImageFillBlack(); err != nil {
		return nil, fmt.Errorf("unable to fill frame with black color: %w", err)
	}
	return f, nil
}
