package scaler

import (
	"context"

	"github.com/xaionaro-go/avpicture/logger"
	"go.uber.org/atomic"
)

// closer marks a scaler as closed. Only the first close takes effect.
type closer struct {
	closed atomic.Bool
	done   chan struct{}
}

func newCloser() *closer {
	return &closer{done: make(chan struct{})}
}

// close reports whether this call is the one that closed.
func (c *closer) close(ctx context.Context) bool {
	if !c.closed.CompareAndSwap(false, true) {
		logger.Debugf(ctx, "already closed")
		return false
	}
	close(c.done)
	return true
}

func (c *closer) IsClosed() bool {
	return c.closed.Load()
}

// CloseChan is closed once the scaler is closed.
func (c *closer) CloseChan() <-chan struct{} {
	return c.done
}
