package scaler

import (
	"context"
	"testing"

	"github.com/asticode/go-astiav"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/avpicture/frame"
	"github.com/xaionaro-go/avpicture/kernel"
	"github.com/xaionaro-go/avpicture/plane"
	"github.com/xaionaro-go/avpicture/resize"
)

func TestPixelLayoutPackUnpack(t *testing.T) {
	for _, pixFmt := range []astiav.PixelFormat{
		astiav.PixelFormatYuv420P,
		astiav.PixelFormatYuv422P10Le,
		astiav.PixelFormatYuv444P,
	} {
		pixFmt := pixFmt
		t.Run(pixFmt.String(), func(t *testing.T) {
			t.Parallel()
			layout, err := layoutOf(pixFmt)
			require.NoError(t, err)
			res := Resolution{Width: 7, Height: 5}
			pic, err := layout.newPicture(res)
			require.NoError(t, err)
			for _, p := range pic.Planes {
				if p == nil {
					continue
				}
				for y := 0; y < p.Height; y++ {
					for x := 0; x < p.Width; x++ {
						p.Set(x, y, float64((x*31+y*17+int(p.Component)*5)%(1<<layout.BitDepth)))
					}
				}
			}

			buf := make([]byte, layout.bufferSize(res))
			require.NoError(t, layout.pack(pic, buf))
			back, err := layout.newPicture(res)
			require.NoError(t, err)
			require.NoError(t, layout.unpack(buf, back))
			require.Equal(t, pic.Planes, back.Planes)

			require.Error(t, layout.unpack(buf[:len(buf)-1], back))
		})
	}

	_, err := layoutOf(astiav.PixelFormatNv12)
	require.Error(t, err)
}

func TestBufferSize(t *testing.T) {
	layout, err := layoutOf(astiav.PixelFormatYuv420P)
	require.NoError(t, err)
	require.Equal(t, 5*3+3*2*2, layout.bufferSize(Resolution{Width: 5, Height: 3}))

	layout, err = layoutOf(astiav.PixelFormatYuv444P10Le)
	require.NoError(t, err)
	require.Equal(t, 3*2*4*4, layout.bufferSize(Resolution{Width: 4, Height: 4}))
}

func TestPolyphaseScaleFrame(t *testing.T) {
	ctx := context.Background()
	src := Resolution{Width: 64, Height: 48}
	dst := Resolution{Width: 40, Height: 30}

	s, err := NewPolyphase(ctx, src, dst, astiav.PixelFormatYuv420P, resize.DefaultConfig())
	require.NoError(t, err)
	defer s.Close(ctx)
	require.Equal(t, dst, s.DestinationResolution())
	require.Equal(t, astiav.PixelFormatYuv420P, s.DestinationPixelFormat())

	in, err := frame.NewBlankVideo(ctx, 64, 48, astiav.PixelFormatYuv420P)
	require.NoError(t, err)
	defer frame.Pool.Put(in)
	out, err := frame.NewBlankVideo(ctx, 40, 30, astiav.PixelFormatYuv420P)
	require.NoError(t, err)
	defer frame.Pool.Put(out)

	layout, err := layoutOf(astiav.PixelFormatYuv420P)
	require.NoError(t, err)
	pic, err := layout.newPicture(src)
	require.NoError(t, err)
	pic.Planes[plane.ComponentY].Fill(100)
	pic.Planes[plane.ComponentU].Fill(60)
	pic.Planes[plane.ComponentV].Fill(200)
	buf := make([]byte, layout.bufferSize(src))
	require.NoError(t, layout.pack(pic, buf))
	require.NoError(t, in.Data().SetBytes(buf, frameAlign))

	require.NoError(t, s.ScaleFrame(ctx, in, out))

	data, err := out.Data().Bytes(frameAlign)
	require.NoError(t, err)
	scaled, err := layout.newPicture(dst)
	require.NoError(t, err)
	require.NoError(t, layout.unpack(data, scaled))
	for c, want := range []uint8{100, 60, 200} {
		for _, v := range scaled.Planes[c].U8 {
			require.Equal(t, want, v)
		}
	}

	stats := s.Counters.ToStats()
	require.Equal(t, uint64(1), stats.Frames)
	require.Equal(t, uint64(len(buf)), stats.BytesIn)
	require.Equal(t, uint64(layout.bufferSize(dst)), stats.BytesOut)

	t.Run("wrong-frame", func(t *testing.T) {
		require.Error(t, s.ScaleFrame(ctx, out, in))
		require.Equal(t, uint64(1), s.Counters.Failures.Load())
	})

	t.Run("reconfigure", func(t *testing.T) {
		cfg := resize.DefaultConfig()
		cfg.Family = kernel.FamilyBilinear
		require.NoError(t, s.SetConfig(ctx, cfg))
		require.Equal(t, kernel.FamilyBilinear, s.Config(ctx).Family)

		cfg.Family = kernel.FamilyNull
		require.Error(t, s.SetConfig(ctx, cfg))
		require.Equal(t, kernel.FamilyBilinear, s.Config(ctx).Family)
	})

	t.Run("closed", func(t *testing.T) {
		require.NoError(t, s.Close(ctx))
		require.NoError(t, s.Close(ctx))
		require.True(t, s.IsClosed())
		<-s.CloseChan()
		require.Error(t, s.ScaleFrame(ctx, in, out))
	})
}

func TestSoftwareFlag(t *testing.T) {
	flag, err := SoftwareFlag(kernel.FamilyLanczos)
	require.NoError(t, err)
	require.Equal(t, astiav.SoftwareScaleContextFlagLanczos, flag)

	_, err = SoftwareFlag(kernel.FamilyUndefined)
	require.ErrorIs(t, err, kernel.ErrUnknownFamily)
}

func TestSoftwareScaleFrame(t *testing.T) {
	ctx := context.Background()
	pic, err := plane.NewPicture(64, 48, plane.ChromaFormat420, 8, plane.StorageUint8)
	require.NoError(t, err)
	for c, v := range []float64{100, 60, 200} {
		pic.Planes[c].Fill(v)
	}
	in, err := PictureToFrame(ctx, pic)
	require.NoError(t, err)
	defer frame.Pool.Put(in)
	out, err := frame.NewBlankVideo(ctx, 40, 30, astiav.PixelFormatYuv420P)
	require.NoError(t, err)
	defer frame.Pool.Put(out)

	s, err := NewSoftware(ctx,
		Resolution{Width: 64, Height: 48}, astiav.PixelFormatYuv420P,
		Resolution{Width: 40, Height: 30}, astiav.PixelFormatYuv420P,
		kernel.FamilyBilinear,
	)
	require.NoError(t, err)
	require.Equal(t, Resolution{Width: 40, Height: 30}, s.DestinationResolution())
	require.NoError(t, s.ScaleFrame(ctx, in, out))
	require.Equal(t, uint64(1), s.Counters.Frames.Load())

	scaled, err := FrameToPicture(out)
	require.NoError(t, err)
	for c, want := range []float64{100, 60, 200} {
		p := scaled.Planes[c]
		for y := 0; y < p.Height; y++ {
			for x := 0; x < p.Width; x++ {
				require.InDelta(t, want, p.At(x, y), 1)
			}
		}
	}

	require.NoError(t, s.Close(ctx))
	require.NoError(t, s.Close(ctx))
	require.Error(t, s.ScaleFrame(ctx, in, out))
}
