// Package internal contains helpers shared by the packages of this module.
package internal

import (
	"context"
	"path/filepath"
	"runtime"

	"github.com/xaionaro-go/avpicture/logger"
)

// Assert panics through the context logger, reporting the caller, if an
// invariant does not hold.
func Assert(
	ctx context.Context,
	mustBeTrue bool,
	extraArgs ...any,
) {
	if mustBeTrue {
		return
	}
	_, file, line, _ := runtime.Caller(1)
	logger.Panicf(ctx, "assertion failed at %s:%d: %v", filepath.Base(file), line, extraArgs)
}
