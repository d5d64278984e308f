package flushio

import (
	"fmt"
	"io"
)

// Tee returns a WriteFlusher around out that also mirrors every write and
// flush into tee; a nil tee just returns NewWriteFlusher(out).
// Errors from out take precedence; tee errors are prefixed with "tee: ".
func Tee(out, tee io.Writer) WriteFlusher {
	wf := NewWriteFlusher(out)
	if tee == nil {
		return wf
	}
	return teeWriteFlusher{wf, NewWriteFlusher(tee)}
}

type teeWriteFlusher struct{ out, tee WriteFlusher }

func (t teeWriteFlusher) Write(p []byte) (int, error) {
	n, err := t.out.Write(p)
	if err != nil {
		return n, err
	}
	if _, err := t.tee.Write(p); err != nil {
		return n, fmt.Errorf("tee: %w", err)
	}
	return n, nil
}

func (t teeWriteFlusher) Flush() error {
	err := t.out.Flush()
	if terr := t.tee.Flush(); terr != nil && err == nil {
		err = fmt.Errorf("tee: %w", terr)
	}
	return err
}
