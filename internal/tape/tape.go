package tape

import (
	"errors"
	"fmt"
)

// DefaultSize provides a default for New.
const DefaultSize = 30000

// ErrOutOfBounds is matched by any BoundsError.
var ErrOutOfBounds = errors.New("pointer out of bounds")

// BoundsError indicates that an operation, like a pointer move or an offset
// store, would address a cell outside of the tape.
type BoundsError struct {
	Ptr  int
	Size int
	Op   string
}

func (be BoundsError) Error() string {
	return fmt.Sprintf("pointer out of bounds by %v @%v (tape size %v)", be.Op, be.Ptr, be.Size)
}

// Is returns true for ErrOutOfBounds.
func (be BoundsError) Is(target error) bool { return target == ErrOutOfBounds }

// Tape implements a fixed-size byte-cell memory with a single data pointer.
// All cell arithmetic wraps modulo 256; the pointer never leaves [0, Size).
type Tape struct {
	cells []byte
	ptr   int
}

// New allocates a zeroed tape of the given size; size <= 0 selects DefaultSize.
func New(size int) *Tape {
	if size <= 0 {
		size = DefaultSize
	}
	return &Tape{cells: make([]byte, size)}
}

// Wrap uses the given cells as tape memory, pointer at 0.
// The cells are not cleared.
func Wrap(cells []byte) *Tape {
	return &Tape{cells: cells}
}

// Size returns the number of cells.
func (t *Tape) Size() int { return len(t.cells) }

// Ptr returns the data pointer.
func (t *Tape) Ptr() int { return t.ptr }

// Cells returns the underlying cell memory.
func (t *Tape) Cells() []byte { return t.cells }

// Load returns the current cell value.
func (t *Tape) Load() byte { return t.cells[t.ptr] }

// Stor sets the current cell value.
func (t *Tape) Stor(val byte) { t.cells[t.ptr] = val }

// Add adds delta to the current cell, wrapping.
func (t *Tape) Add(delta byte) { t.cells[t.ptr] += delta }

// Move moves the data pointer by delta cells.
// Returns a BoundsError, leaving the pointer unchanged, if the result would
// fall outside the tape.
func (t *Tape) Move(delta int) error {
	ptr := t.ptr + delta
	if ptr < 0 || ptr >= len(t.cells) {
		return BoundsError{ptr, len(t.cells), "move"}
	}
	t.ptr = ptr
	return nil
}

// Seek sets the data pointer to an absolute cell.
func (t *Tape) Seek(ptr int) error {
	if ptr < 0 || ptr >= len(t.cells) {
		return BoundsError{ptr, len(t.cells), "seek"}
	}
	t.ptr = ptr
	return nil
}

// Scan moves the data pointer by step cells until it lands on a zero cell.
// Does nothing if the current cell is already zero.
func (t *Tape) Scan(step int) error {
	for t.cells[t.ptr] != 0 {
		if err := t.Move(step); err != nil {
			return BoundsError{t.ptr + step, len(t.cells), "scan"}
		}
	}
	return nil
}

// Transfer adds the current cell value into the cell at the given offset,
// and then zeroes the current cell. Does nothing if the current cell is zero.
func (t *Tape) Transfer(offset int) error {
	val := t.cells[t.ptr]
	if val == 0 {
		return nil
	}
	at := t.ptr + offset
	if at < 0 || at >= len(t.cells) {
		return BoundsError{at, len(t.cells), "transfer"}
	}
	t.cells[at] += val
	t.cells[t.ptr] = 0
	return nil
}

// LoadAt returns the value of any cell.
func (t *Tape) LoadAt(addr int) (byte, error) {
	if addr < 0 || addr >= len(t.cells) {
		return 0, BoundsError{addr, len(t.cells), "load"}
	}
	return t.cells[addr], nil
}

// StorAt stores values starting at addr.
// Returns an error if the tape would be exceeded; no partial store is done.
func (t *Tape) StorAt(addr int, values ...byte) error {
	if end := addr + len(values); addr < 0 || end > len(t.cells) {
		return BoundsError{end, len(t.cells), "stor"}
	}
	copy(t.cells[addr:], values)
	return nil
}
