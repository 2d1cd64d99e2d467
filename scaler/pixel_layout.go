package scaler

import (
	"encoding/binary"
	"fmt"

	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/avpicture/plane"
)

// frameAlign is the alignment used to copy frame data in and out of libav,
// 1 means the planes are tightly packed one after another.
const frameAlign = 1

type pixelLayout struct {
	ChromaFormat plane.ChromaFormat
	BitDepth     int
}

var pixelLayouts = map[astiav.PixelFormat]pixelLayout{
	astiav.PixelFormatYuv420P:     {ChromaFormat: plane.ChromaFormat420, BitDepth: 8},
	astiav.PixelFormatYuvj420P:    {ChromaFormat: plane.ChromaFormat420, BitDepth: 8},
	astiav.PixelFormatYuv422P:     {ChromaFormat: plane.ChromaFormat422, BitDepth: 8},
	astiav.PixelFormatYuv444P:     {ChromaFormat: plane.ChromaFormat444, BitDepth: 8},
	astiav.PixelFormatYuv420P10Le: {ChromaFormat: plane.ChromaFormat420, BitDepth: 10},
	astiav.PixelFormatYuv422P10Le: {ChromaFormat: plane.ChromaFormat422, BitDepth: 10},
	astiav.PixelFormatYuv444P10Le: {ChromaFormat: plane.ChromaFormat444, BitDepth: 10},
}

func layoutOf(pixFmt astiav.PixelFormat) (pixelLayout, error) {
	l, ok := pixelLayouts[pixFmt]
	if !ok {
		return pixelLayout{}, fmt.Errorf("pixel format %s is not supported", pixFmt)
	}
	return l, nil
}

func (l pixelLayout) storage() plane.Storage {
	if l.BitDepth > 8 {
		return plane.StorageUint16
	}
	return plane.StorageUint8
}

func (l pixelLayout) bytesPerSample() int {
	if l.BitDepth > 8 {
		return 2
	}
	return 1
}

func (l pixelLayout) newPicture(res Resolution) (*plane.Picture, error) {
	return plane.NewPicture(int(res.Width), int(res.Height), l.ChromaFormat, l.BitDepth, l.storage())
}

// bufferSize is the size of a packed buffer holding a whole picture.
func (l pixelLayout) bufferSize(res Resolution) int {
	total := 0
	for c := 0; c < l.ChromaFormat.NumComponents(); c++ {
		w, h := l.ChromaFormat.ComponentSize(plane.Component(c), int(res.Width), int(res.Height))
		total += w * h * l.bytesPerSample()
	}
	return total
}

// unpack reads a packed planar buffer into pic.
func (l pixelLayout) unpack(buf []byte, pic *plane.Picture) error {
	pos := 0
	for c := 0; c < l.ChromaFormat.NumComponents(); c++ {
		p := pic.Planes[c]
		n := len(p.U8) + len(p.U16)
		size := n * l.bytesPerSample()
		if pos+size > len(buf) {
			return fmt.Errorf("the buffer is too short: %d < %d", len(buf), pos+size)
		}
		src := buf[pos : pos+size]
		switch p.Storage {
		case plane.StorageUint8:
			copy(p.U8, src)
		case plane.StorageUint16:
			for i := range p.U16 {
				p.U16[i] = binary.LittleEndian.Uint16(src[2*i:])
			}
		}
		pos += size
	}
	return nil
}

// pack writes pic into a packed planar buffer.
func (l pixelLayout) pack(pic *plane.Picture, buf []byte) error {
	pos := 0
	for c := 0; c < l.ChromaFormat.NumComponents(); c++ {
		p := pic.Planes[c]
		n := len(p.U8) + len(p.U16)
		size := n * l.bytesPerSample()
		if pos+size > len(buf) {
			return fmt.Errorf("the buffer is too short: %d < %d", len(buf), pos+size)
		}
		dst := buf[pos : pos+size]
		switch p.Storage {
		case plane.StorageUint8:
			copy(dst, p.U8)
		case plane.StorageUint16:
			for i, v := range p.U16 {
				binary.LittleEndian.PutUint16(dst[2*i:], v)
			}
		}
		pos += size
	}
	return nil
}
