// pool.go implements a pool for reusing astiav.Frame objects.

// Package frame allocates and recycles libav video frames.
package frame

import (
	"github.com/asticode/go-astiav"
	"github.com/xaionaro-go/avpicture/pool"
)

var Pool = pool.NewPool(
	astiav.AllocFrame,
	func(p *astiav.Frame) { p.Unref() },
	func(p *astiav.Frame) { p.Free() },
)

// CloneAsWritable returns a new frame referencing the data of src, made
// writable so it may be changed without affecting src.
func CloneAsWritable(src *astiav.Frame) (*astiav.Frame, error) {
	dst := Pool.Get()
	if err := dst.Ref(src); err != nil {
		Pool.Put(dst)
		return nil, err
	}
	if err := dst.MakeWritable(); err != nil {
		Pool.Put(dst)
		return nil, err
	}
	return dst, nil
}
