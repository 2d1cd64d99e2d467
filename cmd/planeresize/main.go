package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/asticode/go-astiav"
	"github.com/dustin/go-humanize"
	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/avpicture/coefficients"
	"github.com/xaionaro-go/avpicture/frame"
	"github.com/xaionaro-go/avpicture/imageio"
	"github.com/xaionaro-go/avpicture/kernel"
	"github.com/xaionaro-go/avpicture/plane"
	"github.com/xaionaro-go/avpicture/resize"
	"github.com/xaionaro-go/avpicture/scaler"
)

const (
	enginePolyphase = "polyphase"
	engineSwscale   = "swscale"
	engineBild      = "bild"
)

var chromaLocations = map[string]plane.ChromaLocation{
	"left":       plane.ChromaLocationLeft,
	"center":     plane.ChromaLocationCenter,
	"topleft":    plane.ChromaLocationTopLeft,
	"top":        plane.ChromaLocationTop,
	"bottomleft": plane.ChromaLocationBottomLeft,
	"bottom":     plane.ChromaLocationBottom,
}

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "syntax: %s [options] <image-from> <image-to>\n", os.Args[0])
		pflag.PrintDefaults()
	}

	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")
	family := kernel.FamilyLanczos
	pflag.Var(&family, "kernel", "interpolation kernel: null, copy, nearest, bilinear, half, bicubic, lanczos, hanning, hamming, sinewindow, gaussian")
	width := pflag.Int("width", 0, "output width; 0 keeps the aspect ratio of --height")
	height := pflag.Int("height", 0, "output height; 0 keeps the aspect ratio of --width")
	lobes := pflag.Int("lobes", 3, "lobes of the windowed kernels")
	precision := pflag.Uint("precision", coefficients.DefaultPrecision, "fixed point precision of the filter coefficients, in bits")
	useFloat := pflag.Bool("float", false, "filter in double precision instead of fixed point")
	chromaLocation := pflag.String("chroma-location", "left", "chroma sample location of subsampled pictures")
	engine := pflag.String("engine", enginePolyphase, "resizing engine: polyphase, swscale or bild")
	pflag.Parse()
	if len(pflag.Args()) != 2 {
		pflag.Usage()
		os.Exit(1)
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	astiav.SetLogLevel(scaler.LogLevelToAstiav(l.Level()))
	astiav.SetLogCallback(func(c astiav.Classer, level astiav.LogLevel, fmt, msg string) {
		var cs string
		if c != nil {
			if cl := c.Class(); cl != nil {
				cs = " - class: " + cl.String()
			}
		}
		l.Logf(
			scaler.LogLevelFromAstiav(level),
			"%s%s",
			strings.TrimSpace(msg), cs,
		)
	})

	fromPath, toPath := pflag.Arg(0), pflag.Arg(1)
	location, ok := chromaLocations[strings.ToLower(*chromaLocation)]
	if !ok {
		l.Fatalf("unknown chroma location '%s'", *chromaLocation)
	}

	l.Debugf("loading '%s'...", fromPath)
	in, err := imageio.Load(ctx, fromPath)
	if err != nil {
		l.Fatal(err)
	}
	in.ChromaLocation = location
	inW, inH := in.Size()
	outW, outH := outputSize(inW, inH, *width, *height)
	if outW <= 0 || outH <= 0 {
		l.Fatalf("invalid output size %dx%d", outW, outH)
	}

	cfg := resize.Config{
		Family:         family,
		Lobes:          *lobes,
		Precision:      *precision,
		UseFloat:       *useFloat,
		ChromaLocation: location,
	}

	startedAt := time.Now()
	var out *plane.Picture
	switch *engine {
	case enginePolyphase:
		out, err = resizePolyphase(ctx, cfg, in, outW, outH)
	case engineSwscale:
		out, err = resizeSwscale(ctx, family, in, outW, outH)
	case engineBild:
		out, err = resizeBild(family, in, outW, outH)
	default:
		err = fmt.Errorf("unknown engine '%s'", *engine)
	}
	if err != nil {
		l.Fatal(err)
	}
	elapsed := time.Since(startedAt)

	if err := imageio.Save(ctx, toPath, out); err != nil {
		l.Fatal(err)
	}
	fmt.Printf(
		"%s: %dx%d -> %dx%d (%s, %s) in %s\n",
		toPath, inW, inH, outW, outH, *engine, family, elapsed,
	)
	if info, err := os.Stat(toPath); err == nil {
		fmt.Printf("wrote %s\n", humanize.Bytes(uint64(info.Size())))
	}
}

func outputSize(inW, inH, w, h int) (int, int) {
	switch {
	case w == 0 && h == 0:
		return inW, inH
	case w == 0:
		return (inW*h + inH/2) / inH, h
	case h == 0:
		return w, (inH*w + inW/2) / inW
	default:
		return w, h
	}
}

func resizePolyphase(
	ctx context.Context,
	cfg resize.Config,
	in *plane.Picture,
	outW, outH int,
) (*plane.Picture, error) {
	inW, inH := in.Size()
	r, err := resize.New(ctx, cfg,
		resize.Geometry{Width: inW, Height: inH, ChromaFormat: in.ChromaFormat},
		resize.Geometry{Width: outW, Height: outH, ChromaFormat: in.ChromaFormat},
	)
	if err != nil {
		return nil, err
	}
	luma := in.Planes[plane.ComponentY]
	out, err := plane.NewPicture(outW, outH, in.ChromaFormat, luma.BitDepth, luma.Storage)
	if err != nil {
		return nil, err
	}
	out.ChromaLocation = in.ChromaLocation
	if err := r.ResizePicture(ctx, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func resizeSwscale(
	ctx context.Context,
	family kernel.Family,
	in *plane.Picture,
	outW, outH int,
) (*plane.Picture, error) {
	src, err := scaler.PictureToFrame(ctx, in)
	if err != nil {
		return nil, err
	}
	defer frame.Pool.Put(src)

	pixFmt := src.PixelFormat()
	dst, err := frame.NewBlankVideo(ctx, outW, outH, pixFmt)
	if err != nil {
		return nil, err
	}
	defer frame.Pool.Put(dst)

	s, err := scaler.NewSoftware(ctx,
		scaler.Resolution{Width: uint32(src.Width()), Height: uint32(src.Height())}, pixFmt,
		scaler.Resolution{Width: uint32(outW), Height: uint32(outH)}, pixFmt,
		family,
	)
	if err != nil {
		return nil, err
	}
	defer s.Close(ctx)
	if err := s.ScaleFrame(ctx, src, dst); err != nil {
		return nil, err
	}
	return scaler.FrameToPicture(dst)
}

func resizeBild(
	family kernel.Family,
	in *plane.Picture,
	outW, outH int,
) (*plane.Picture, error) {
	img, err := imageio.FromPicture(in)
	if err != nil {
		return nil, err
	}
	resized, err := imageio.ReferenceResize(img, outW, outH, family)
	if err != nil {
		return nil, err
	}
	return imageio.ToPicture(resized)
}
