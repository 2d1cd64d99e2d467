package scaler

import (
	"context"
	"fmt"
	"runtime"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/avpicture/kernel"
	"github.com/xaionaro-go/avpicture/logger"
)

// Software scales frames with libswscale. It is used as a reference to
// compare the polyphase scaler against, and to convert pixel formats.
type Software struct {
	*closer
	Counters

	swsCtx      *astiav.SoftwareScaleContext
	source      Resolution
	sourceFmt   astiav.PixelFormat
	destination Resolution
	destFmt     astiav.PixelFormat
}

var _ Scaler = (*Software)(nil)

// SoftwareFlag returns the libswscale algorithm closest to the given family.
func SoftwareFlag(f kernel.Family) (astiav.SoftwareScaleContextFlag, error) {
	switch f {
	case kernel.FamilyNearest, kernel.FamilyCopy, kernel.FamilyNull:
		return astiav.SoftwareScaleContextFlagPoint, nil
	case kernel.FamilyBilinear, kernel.FamilyHalf:
		return astiav.SoftwareScaleContextFlagBilinear, nil
	case kernel.FamilyBicubic:
		return astiav.SoftwareScaleContextFlagBicubic, nil
	case kernel.FamilyGaussian:
		return astiav.SoftwareScaleContextFlagGauss, nil
	case kernel.FamilyLanczos, kernel.FamilyHanning, kernel.FamilyHamming, kernel.FamilySineWindow:
		return astiav.SoftwareScaleContextFlagLanczos, nil
	default:
		return 0, fmt.Errorf("%w: %s", kernel.ErrUnknownFamily, f)
	}
}

func NewSoftware(
	ctx context.Context,
	src Resolution,
	srcPixFmt astiav.PixelFormat,
	dst Resolution,
	dstPixFmt astiav.PixelFormat,
	family kernel.Family,
) (*Software, error) {
	flag, err := SoftwareFlag(family)
	if err != nil {
		return nil, err
	}
	swsCtx, err := astiav.CreateSoftwareScaleContext(
		int(src.Width),
		int(src.Height),
		srcPixFmt,
		int(dst.Width),
		int(dst.Height),
		dstPixFmt,
		astiav.NewSoftwareScaleContextFlags(flag),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create a software scale context: %w", err)
	}
	s := &Software{
		closer:      newCloser(),
		swsCtx:      swsCtx,
		source:      src,
		sourceFmt:   srcPixFmt,
		destination: dst,
		destFmt:     dstPixFmt,
	}
	runtime.SetFinalizer(s, func(s *Software) {
		logger.Debugf(ctx, "freeing %s", s)
		s.Close(ctx)
	})
	return s, nil
}

func (s *Software) String() string {
	return fmt.Sprintf(
		"SoftwareScaler(%s:%s -> %s:%s)",
		s.source, s.sourceFmt,
		s.destination, s.destFmt,
	)
}

// Close releases the libswscale context.
func (s *Software) Close(ctx context.Context) error {
	logger.Tracef(ctx, "Close")
	defer logger.Tracef(ctx, "/Close")
	if s.closer.close(ctx) {
		s.swsCtx.Free()
	}
	return nil
}

func (s *Software) ScaleFrame(
	ctx context.Context,
	src *astiav.Frame,
	dst *astiav.Frame,
) (_err error) {
	logger.Tracef(ctx, "ScaleFrame")
	defer func() { logger.Tracef(ctx, "/ScaleFrame: %v", _err) }()
	if s.IsClosed() {
		return fmt.Errorf("scaler is closed")
	}
	if err := s.swsCtx.ScaleFrame(src, dst); err != nil {
		s.Counters.Failures.Add(1)
		return fmt.Errorf("unable to scale a frame: %w", err)
	}
	s.Counters.Frames.Add(1)
	return nil
}

func (s *Software) SourceResolution() Resolution {
	return s.source
}

func (s *Software) SourcePixelFormat() astiav.PixelFormat {
	return s.sourceFmt
}

func (s *Software) DestinationResolution() Resolution {
	return s.destination
}

func (s *Software) DestinationPixelFormat() astiav.PixelFormat {
	return s.destFmt
}
