package logio

import (
	"strconv"
	"sync"
)

// Writer is an io.Writer that logs each complete line written to it through
// Logf. Lines that are not printable text are logged quoted.
type Writer struct {
	Logf func(mess string, args ...interface{})

	mu   sync.Mutex
	line []byte
}

// Write buffers p, logging any lines that it completes. It never fails, and is
// safe to call from multiple goroutines.
func (lw *Writer) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	for _, b := range p {
		if b == '\n' {
			lw.logLine()
		} else {
			lw.line = append(lw.line, b)
		}
	}
	return len(p), nil
}

// Sync logs any partial last line.
func (lw *Writer) Sync() error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if len(lw.line) > 0 {
		lw.logLine()
	}
	return nil
}

// Close calls Sync.
func (lw *Writer) Close() error { return lw.Sync() }

func (lw *Writer) logLine() {
	if s := string(lw.line); strconv.CanBackquote(s) {
		lw.Logf("%s", s)
	} else {
		lw.Logf("%q", s)
	}
	lw.line = lw.line[:0]
}
