package scaler

import (
	"context"
	"fmt"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/avpicture/logger"
	"github.com/xaionaro-go/avpicture/plane"
	"github.com/xaionaro-go/avpicture/pool"
	"github.com/xaionaro-go/avpicture/resize"
	"github.com/xaionaro-go/xsync"
)

// Polyphase scales frames with the separable resampler, without changing
// the pixel format.
type Polyphase struct {
	*closer
	Counters

	source      Resolution
	destination Resolution
	pixelFormat astiav.PixelFormat
	layout      pixelLayout

	locker    xsync.Mutex
	resampler *resize.Resampler

	sourcePictures      *pool.Pool[plane.Picture]
	destinationPictures *pool.Pool[plane.Picture]
}

var _ Scaler = (*Polyphase)(nil)

func NewPolyphase(
	ctx context.Context,
	src Resolution,
	dst Resolution,
	pixFmt astiav.PixelFormat,
	cfg resize.Config,
) (*Polyphase, error) {
	layout, err := layoutOf(pixFmt)
	if err != nil {
		return nil, err
	}
	p := &Polyphase{
		closer:      newCloser(),
		source:      src,
		destination: dst,
		pixelFormat: pixFmt,
		layout:      layout,
	}
	p.resampler, err = p.newResampler(ctx, cfg)
	if err != nil {
		return nil, err
	}
	p.sourcePictures, err = p.newPicturePool(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("unable to allocate a source picture: %w", err)
	}
	p.destinationPictures, err = p.newPicturePool(ctx, dst)
	if err != nil {
		return nil, fmt.Errorf("unable to allocate a destination picture: %w", err)
	}
	return p, nil
}

func (p *Polyphase) newPicturePool(
	ctx context.Context,
	res Resolution,
) (*pool.Pool[plane.Picture], error) {
	if _, err := p.layout.newPicture(res); err != nil {
		return nil, err
	}
	return pool.NewPool(
		func() *plane.Picture {
			pic, err := p.layout.newPicture(res)
			if err != nil {
				logger.Panicf(ctx, "unable to allocate a %s picture: %v", res, err)
			}
			return pic
		},
		nil,
		nil,
	), nil
}

func (p *Polyphase) newResampler(
	ctx context.Context,
	cfg resize.Config,
) (*resize.Resampler, error) {
	r, err := resize.New(ctx, cfg,
		resize.Geometry{Width: int(p.source.Width), Height: int(p.source.Height), ChromaFormat: p.layout.ChromaFormat},
		resize.Geometry{Width: int(p.destination.Width), Height: int(p.destination.Height), ChromaFormat: p.layout.ChromaFormat},
	)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize the resampler: %w", err)
	}
	return r, nil
}

// SetConfig replaces the filter configuration used by the following frames.
func (p *Polyphase) SetConfig(
	ctx context.Context,
	cfg resize.Config,
) (_err error) {
	logger.Tracef(ctx, "SetConfig: %#+v", cfg)
	defer func() { logger.Tracef(ctx, "/SetConfig: %#+v: %v", cfg, _err) }()
	r, err := p.newResampler(ctx, cfg)
	if err != nil {
		return err
	}
	xsync.DoR1(ctx, &p.locker, func() error {
		p.resampler = r
		return nil
	})
	p.Counters.Reconfigure.Add(1)
	return nil
}

func (p *Polyphase) Config(ctx context.Context) resize.Config {
	return p.getResampler(ctx).Config
}

func (p *Polyphase) getResampler(ctx context.Context) *resize.Resampler {
	return xsync.DoR1(xsync.WithNoLogging(ctx, true), &p.locker, func() *resize.Resampler {
		return p.resampler
	})
}

func (p *Polyphase) String() string {
	return fmt.Sprintf(
		"PolyphaseScaler(%s:%s -> %s:%s)",
		p.source, p.pixelFormat,
		p.destination, p.pixelFormat,
	)
}

func (p *Polyphase) Close(ctx context.Context) error {
	logger.Tracef(ctx, "Close")
	defer logger.Tracef(ctx, "/Close")
	p.closer.close(ctx)
	return nil
}

func (p *Polyphase) ScaleFrame(
	ctx context.Context,
	src *astiav.Frame,
	dst *astiav.Frame,
) (_err error) {
	logger.Tracef(ctx, "ScaleFrame")
	defer func() { logger.Tracef(ctx, "/ScaleFrame: %v", _err) }()
	defer func() {
		if _err != nil {
			p.Counters.Failures.Add(1)
		}
	}()
	if p.IsClosed() {
		return fmt.Errorf("scaler is closed")
	}
	if err := p.checkFrame(src, p.source); err != nil {
		return fmt.Errorf("invalid source frame: %w", err)
	}
	if err := p.checkFrame(dst, p.destination); err != nil {
		return fmt.Errorf("invalid destination frame: %w", err)
	}

	in, err := src.Data().Bytes(frameAlign)
	if err != nil {
		return fmt.Errorf("unable to get the source frame data: %w", err)
	}
	srcPic := p.sourcePictures.Get()
	defer p.sourcePictures.Put(srcPic)
	if err := p.layout.unpack(in, srcPic); err != nil {
		return fmt.Errorf("unable to read the source frame: %w", err)
	}

	dstPic := p.destinationPictures.Get()
	defer p.destinationPictures.Put(dstPic)
	if err := p.getResampler(ctx).ResizePicture(ctx, srcPic, dstPic); err != nil {
		return fmt.Errorf("unable to resize the picture: %w", err)
	}

	out := make([]byte, p.layout.bufferSize(p.destination))
	if err := p.layout.pack(dstPic, out); err != nil {
		return fmt.Errorf("unable to write the destination picture: %w", err)
	}
	if err := dst.MakeWritable(); err != nil {
		return fmt.Errorf("unable to make the destination frame writable: %w", err)
	}
	if err := dst.Data().SetBytes(out, frameAlign); err != nil {
		return fmt.Errorf("unable to set the destination frame data: %w", err)
	}

	p.Counters.Frames.Add(1)
	p.Counters.BytesIn.Add(uint64(len(in)))
	p.Counters.BytesOut.Add(uint64(len(out)))
	return nil
}

func (p *Polyphase) checkFrame(f *astiav.Frame, res Resolution) error {
	if f.PixelFormat() != p.pixelFormat {
		return fmt.Errorf("pixel format %s, expected %s", f.PixelFormat(), p.pixelFormat)
	}
	if f.Width() != int(res.Width) || f.Height() != int(res.Height) {
		return fmt.Errorf("resolution %dx%d, expected %s", f.Width(), f.Height(), res)
	}
	return nil
}

func (p *Polyphase) SourceResolution() Resolution {
	return p.source
}

func (p *Polyphase) SourcePixelFormat() astiav.PixelFormat {
	return p.pixelFormat
}

func (p *Polyphase) DestinationResolution() Resolution {
	return p.destination
}

func (p *Polyphase) DestinationPixelFormat() astiav.PixelFormat {
	return p.pixelFormat
}
