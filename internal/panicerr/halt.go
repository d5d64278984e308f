package panicerr

import "fmt"

// Halt aborts the current Recover-ed call with err, which may be nil to
// indicate a normal stop. It never returns.
func Halt(err error) {
	panic(haltError{err})
}

// HaltIf calls Halt only if err is non-nil.
func HaltIf(err error) {
	if err != nil {
		panic(haltError{err})
	}
}

type haltError struct{ error }

func (err haltError) Error() string {
	if err.error != nil {
		return fmt.Sprintf("halted: %v", err.error)
	}
	return "halted"
}

func (err haltError) Unwrap() error { return err.error }
