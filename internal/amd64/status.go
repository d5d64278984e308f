package amd64

import "encoding/binary"

// StatusSize is the size of the status block written by exit stubs.
const StatusSize = 24

// Status codes, as stored in the first word of the status block.
const (
	StatusOK uint32 = iota
	StatusReadFault
	StatusWriteFault
	StatusBoundsFault
)

// Status is the decoded form of a status block.
type Status struct {
	Code   uint32
	Result int64   // raw rax after the faulting syscall
	Ptr    uintptr // data pointer at exit
}

// DecodeStatus decodes a status block; short blocks decode as StatusOK.
func DecodeStatus(block []byte) (st Status) {
	if len(block) < StatusSize {
		return st
	}
	st.Code = uint32(binary.LittleEndian.Uint64(block[0:]))
	st.Result = int64(binary.LittleEndian.Uint64(block[8:]))
	st.Ptr = uintptr(binary.LittleEndian.Uint64(block[16:]))
	return st
}
