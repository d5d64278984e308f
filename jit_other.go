//go:build !(linux && amd64)

package bfjit

import (
	"context"
	"fmt"
	"io"
	"runtime"
)

// JITSupported is true when the JIT strategy can run on this platform.
const JITSupported = false

func (p *Program) runNative(ctx context.Context, in io.Reader, out io.Writer) error {
	return fmt.Errorf("%w: no native code generator for %v/%v",
		ErrCodeGenLimit, runtime.GOOS, runtime.GOARCH)
}
