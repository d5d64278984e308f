package bfjit

import (
	"errors"
	"fmt"

	"github.com/jcorbin/bfjit/internal/tape"
)

var (
	// ErrMalformedProgram is matched by errors about unbalanced brackets;
	// such programs never start running.
	ErrMalformedProgram = errors.New("malformed program")

	// ErrInputUnavailable is returned when a read instruction finds input
	// exhausted.
	ErrInputUnavailable = errors.New("input unavailable")

	// ErrIOFailure is matched by any *IOError.
	ErrIOFailure = errors.New("i/o failure")

	// ErrCodeGenLimit is returned when native code can not be generated or
	// mapped: a jump displacement overflows 32 bits, executable memory can not
	// be obtained, or the platform is unsupported.
	ErrCodeGenLimit = errors.New("code generation limit")

	// ErrPointerOutOfBounds is matched when a program moves its data pointer
	// off either end of the tape.
	ErrPointerOutOfBounds = tape.ErrOutOfBounds
)

// SyntaxError locates an unmatched bracket within the filtered instruction
// stream.
type SyntaxError struct {
	Offset int
	Inst   byte
}

func (se *SyntaxError) Error() string {
	if se.Inst == '[' {
		return fmt.Sprintf("%v: [ at instruction %v without a matching ]", ErrMalformedProgram, se.Offset)
	}
	return fmt.Sprintf("%v: ] at instruction %v without a matching [", ErrMalformedProgram, se.Offset)
}

func (se *SyntaxError) Unwrap() error { return ErrMalformedProgram }

// IOError wraps an input error, other than end of file, or any output error.
type IOError struct {
	Op  string
	Err error
}

func (ioe *IOError) Error() string { return fmt.Sprintf("%v error: %v", ioe.Op, ioe.Err) }
func (ioe *IOError) Unwrap() error { return ioe.Err }

// Is returns true for ErrIOFailure.
func (ioe *IOError) Is(target error) bool { return target == ErrIOFailure }
