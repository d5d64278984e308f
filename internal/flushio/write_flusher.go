package flushio

import (
	"bufio"
	"io"
)

// WriteFlusher is a flush-able io.Writer.
type WriteFlusher interface {
	io.Writer
	Flush() error
}

var discardWriteFlusher WriteFlusher = nopFlusher{io.Discard}

// NewWriteFlusher creates a new flushable writer: if the given writer is a
// buffer, a wrapping with a noop Flush is returned; otherwise, unless the
// original writer is already a WriteFlusher, a new bufio.Writer is returned.
// A nil writer discards.
func NewWriteFlusher(w io.Writer) WriteFlusher {
	// discard writer does not need flushing, nor does the lack of a writer
	if w == nil || w == io.Discard {
		return discardWriteFlusher
	}

	if wf, is := w.(WriteFlusher); is {
		return wf
	}

	// in memory buffers, as implemented by types like bytes.Buffer and
	// strings.Builder, do not need to be flushed
	type buffer interface {
		io.Writer
		Cap() int
		Len() int
		Grow(n int)
		Reset()
	}
	if _, isBuffer := w.(buffer); isBuffer {
		return nopFlusher{w}
	}

	return bufio.NewWriter(w)
}

type nopFlusher struct{ io.Writer }

func (nf nopFlusher) Flush() error { return nil }

// maxRepeatChunk bounds the scratch buffer used by WriteRepeat.
const maxRepeatChunk = 4096

// WriteRepeat writes n copies of b into wf, and then flushes it once, so that
// the bytes are visible to the underlying writer before returning.
// Copies are written in chunks of at most 4096 bytes from the scratch buffer,
// which is reused if large enough and returned for the next call.
func WriteRepeat(wf WriteFlusher, scratch []byte, b byte, n int) ([]byte, error) {
	buf := scratch[:0]
	for i := 0; i < n && i < maxRepeatChunk; i++ {
		buf = append(buf, b)
	}
	for n > 0 {
		m := min(n, len(buf))
		if _, err := wf.Write(buf[:m]); err != nil {
			return buf, err
		}
		n -= m
	}
	return buf, wf.Flush()
}
