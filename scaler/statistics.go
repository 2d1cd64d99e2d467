package scaler

import (
	"go.uber.org/atomic"
)

type Statistics struct {
	Frames      uint64 `json:",omitempty"`
	BytesIn     uint64 `json:",omitempty"`
	BytesOut    uint64 `json:",omitempty"`
	Failures    uint64 `json:",omitempty"`
	Reconfigure uint64 `json:",omitempty"`
}

type Counters struct {
	Frames      atomic.Uint64
	BytesIn     atomic.Uint64
	BytesOut    atomic.Uint64
	Failures    atomic.Uint64
	Reconfigure atomic.Uint64
}

func (c *Counters) ToStats() Statistics {
	return Statistics{
		Frames:      c.Frames.Load(),
		BytesIn:     c.BytesIn.Load(),
		BytesOut:    c.BytesOut.Load(),
		Failures:    c.Failures.Load(),
		Reconfigure: c.Reconfigure.Load(),
	}
}
