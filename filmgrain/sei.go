package filmgrain

import (
	"bytes"
	"fmt"
)

// bitWriter writes bits msb-first into a buffer.
type bitWriter struct {
	buf  bytes.Buffer
	byte byte
	n    uint8
}

func (w *bitWriter) writeBit(bit bool) {
	w.byte <<= 1
	if bit {
		w.byte |= 1
	}
	w.n++
	if w.n == 8 {
		w.buf.WriteByte(w.byte)
		w.byte = 0
		w.n = 0
	}
}

// writeBits writes the n least significant bits of v, u(n).
func (w *bitWriter) writeBits(v uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		w.writeBit(v>>uint(i)&1 == 1)
	}
}

func (w *bitWriter) writeFlag(v bool) {
	w.writeBit(v)
}

// writeUE writes an unsigned Exp-Golomb code, ue(v).
func (w *bitWriter) writeUE(v uint64) {
	v++
	length := 0
	for x := v; x > 1; x >>= 1 {
		length++
	}
	w.writeBits(0, length)
	w.writeBits(v, length+1)
}

// writeSE writes a signed Exp-Golomb code, se(v).
func (w *bitWriter) writeSE(v int64) {
	if v > 0 {
		w.writeUE(uint64(2*v - 1))
	} else {
		w.writeUE(uint64(-2 * v))
	}
}

func (w *bitWriter) byteAligned() bool {
	return w.n == 0
}

// bytes pads the last byte with zeros.
func (w *bitWriter) bytes() []byte {
	if w.n > 0 {
		w.buf.WriteByte(w.byte << (8 - w.n))
		w.byte = 0
		w.n = 0
	}
	return w.buf.Bytes()
}

// SEIPayload serializes the model as a film_grain_characteristics SEI
// payload (H.274 / HEVC), without the SEI message header.
func (m *Model) SEIPayload() ([]byte, error) {
	if m.Log2ScaleFactor < 0 || m.Log2ScaleFactor > 15 {
		return nil, fmt.Errorf("log2_scale_factor %d does not fit 4 bits", m.Log2ScaleFactor)
	}

	var w bitWriter
	w.writeFlag(false) // film_grain_characteristics_cancel_flag
	w.writeBits(0, 2)  // film_grain_model_id: frequency filtering
	w.writeFlag(false) // separate_colour_description_present_flag
	w.writeBits(0, 2)  // blending_mode_id: additive
	w.writeBits(uint64(m.Log2ScaleFactor), 4)
	for _, c := range m.Components {
		w.writeFlag(c.Present)
	}
	for i, c := range m.Components {
		if !c.Present {
			continue
		}
		if len(c.Intervals) == 0 || len(c.Intervals) > 256 {
			return nil, fmt.Errorf("component %d has %d intensity intervals", i, len(c.Intervals))
		}
		if c.NumModelValues < 1 || c.NumModelValues > 6 {
			return nil, fmt.Errorf("component %d has %d model values", i, c.NumModelValues)
		}
		w.writeBits(uint64(len(c.Intervals)-1), 8)
		w.writeBits(uint64(c.NumModelValues-1), 3)
		for _, iv := range c.Intervals {
			w.writeBits(uint64(iv.Lower), 8)
			w.writeBits(uint64(iv.Upper), 8)
			for _, v := range c.ModelValues(iv) {
				w.writeSE(int64(v))
			}
		}
	}
	w.writeFlag(true) // film_grain_characteristics_persistence_flag

	if !w.byteAligned() {
		w.writeFlag(true) // payload_bit_equal_to_one
		for !w.byteAligned() {
			w.writeFlag(false) // payload_bit_equal_to_zero
		}
	}
	return w.bytes(), nil
}
