//go:build linux && amd64

package bfjit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/jcorbin/bfjit/internal/amd64"
	"github.com/jcorbin/bfjit/internal/execmem"
	"github.com/jcorbin/bfjit/internal/flushio"
	"github.com/jcorbin/bfjit/internal/tape"
)

// JITSupported is true when the JIT strategy can run on this platform.
const JITSupported = true

// nativeRun holds the resources of one native run.
type nativeRun struct {
	inFD, outFD int
	staged      *os.File // collects output for non-file writers
	out         flushio.WriteFlusher
	closers     []io.Closer
}

func (nr *nativeRun) Close() (err error) {
	for i := len(nr.closers) - 1; i >= 0; i-- {
		if cerr := nr.closers[i].Close(); err == nil {
			err = cerr
		}
	}
	nr.closers = nil
	return err
}

func (p *Program) runNative(ctx context.Context, in io.Reader, out io.Writer) (rerr error) {
	var nr nativeRun
	defer func() {
		if cerr := nr.Close(); rerr == nil && cerr != nil {
			rerr = fmt.Errorf("native cleanup: %w", cerr)
		}
	}()

	cells, err := execmem.NewData(p.tapeSize)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCodeGenLimit, err)
	}
	nr.closers = append(nr.closers, cells)

	status, err := execmem.NewData(amd64.StatusSize)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCodeGenLimit, err)
	}
	nr.closers = append(nr.closers, status)

	if err := nr.stageInput(in); err != nil {
		return err
	}
	if err := nr.stageOutput(out, p.tee); err != nil {
		return err
	}

	code, err := amd64.Compile(p.insts, amd64.Config{
		Tape:     cells.Addr(),
		TapeSize: p.tapeSize,
		Status:   status.Addr(),
		InFD:     nr.inFD,
		OutFD:    nr.outFD,
	})
	if err != nil {
		return codeGenError(err)
	}
	p.logf("jit", "size: %v", len(code))

	fn, err := execmem.NewCode(code)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCodeGenLimit, err)
	}
	nr.closers = append(nr.closers, fn)

	if err := ctx.Err(); err != nil {
		return err
	}
	p.logf("run", "jit: %v instructions, %v cells, fds in:%v out:%v", len(p.insts), p.tapeSize, nr.inFD, nr.outFD)
	fn.Call()
	runtime.KeepAlive(in)
	runtime.KeepAlive(out)

	st := amd64.DecodeStatus(status.Bytes())
	p.logf("halt", "status:%v result:%v ptr:%v", st.Code, st.Result, int64(st.Ptr)-int64(cells.Addr()))

	// output written before any fault is still delivered
	err = nr.copyOutput()
	if nerr := nativeError(st, cells.Addr(), p.tapeSize); nerr != nil {
		return nerr
	}
	return err
}

func (nr *nativeRun) stageInput(in io.Reader) error {
	if f, ok := in.(*os.File); ok {
		nr.inFD = int(f.Fd())
		return nil
	}

	f, err := memfd("bfjit-input")
	if err != nil {
		return err
	}
	nr.closers = append(nr.closers, f)
	if in != nil {
		if _, err := io.Copy(f, in); err != nil {
			return &IOError{"read", err}
		}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return &IOError{"read", err}
	}
	nr.inFD = int(f.Fd())
	return nil
}

func (nr *nativeRun) stageOutput(out, tee io.Writer) error {
	if f, ok := out.(*os.File); ok && tee == nil {
		nr.outFD = int(f.Fd())
		return nil
	}

	f, err := memfd("bfjit-output")
	if err != nil {
		return err
	}
	nr.closers = append(nr.closers, f)
	nr.staged = f
	nr.out = flushio.Tee(out, tee)
	nr.outFD = int(f.Fd())
	return nil
}

func (nr *nativeRun) copyOutput() error {
	if nr.staged == nil {
		return nil
	}
	if _, err := nr.staged.Seek(0, io.SeekStart); err != nil {
		return &IOError{"write", err}
	}
	if _, err := io.Copy(nr.out, nr.staged); err != nil {
		return &IOError{"write", err}
	}
	if err := nr.out.Flush(); err != nil {
		return &IOError{"write", err}
	}
	return nil
}

func memfd(name string) (*os.File, error) {
	fd, err := unix.MemfdCreate(name, unix.MFD_CLOEXEC)
	if err != nil {
		return nil, &IOError{"memfd", err}
	}
	return os.NewFile(uintptr(fd), name), nil
}

func codeGenError(err error) error {
	var be amd64.BracketError
	if errors.As(err, &be) {
		return &SyntaxError{be.Offset, be.Inst}
	}
	return fmt.Errorf("%w: %w", ErrCodeGenLimit, err)
}

// nativeError converts the status left by generated code into an error.
func nativeError(st amd64.Status, base uintptr, size int) error {
	switch st.Code {
	case amd64.StatusOK:
		return nil

	case amd64.StatusReadFault:
		if st.Result == 0 {
			return ErrInputUnavailable
		}
		return &IOError{"read", unix.Errno(-st.Result)}

	case amd64.StatusWriteFault:
		if st.Result < 0 {
			return &IOError{"write", unix.Errno(-st.Result)}
		}
		return &IOError{"write", io.ErrShortWrite}

	case amd64.StatusBoundsFault:
		return tape.BoundsError{
			Ptr:  int(int64(st.Ptr) - int64(base)),
			Size: size,
			Op:   "move",
		}
	}
	return fmt.Errorf("invalid native status code %v", st.Code)
}
