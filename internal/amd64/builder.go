package amd64

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Config specifies the absolute addresses and file descriptors baked into
// generated code.
type Config struct {
	Tape     uintptr // address of the first tape cell
	TapeSize int
	Status   uintptr // address of a StatusSize byte block
	InFD     int
	OutFD    int
}

var (
	// ErrUnmatchedOpen is returned by Finish if any Open has no Close.
	ErrUnmatchedOpen = errors.New("unmatched [")
	// ErrUnmatchedClose is returned by Close if there is no pending Open.
	ErrUnmatchedClose = errors.New("unmatched ]")
)

// RangeError indicates that a relative jump does not fit in 32 bits.
type RangeError struct {
	From, To int
}

func (re RangeError) Error() string {
	return fmt.Sprintf("relative jump from %v to %v exceeds a 32-bit displacement", re.From, re.To)
}

// Builder accumulates machine code for one function. The zero value is not
// usable; see NewBuilder.
type Builder struct {
	cfg    Config
	code   []byte
	open   []int // offsets of jz instructions awaiting their Close
	fixups []fixup
}

// fixup is a rel32 field that jumps to an exit stub emitted by Finish.
type fixup struct {
	at   int
	exit uint32
}

// NewBuilder starts a new function with the prologue that loads the data
// pointer and tape bounds registers.
func NewBuilder(cfg Config) *Builder {
	b := &Builder{cfg: cfg}
	end := cfg.Tape + uintptr(cfg.TapeSize)

	// movabs $tape, %r13
	b.emit(0x49, 0xBD)
	b.emitU64(uint64(cfg.Tape))

	// movabs $tape, %r12
	b.emit(0x49, 0xBC)
	b.emitU64(uint64(cfg.Tape))

	// movabs $end, %rbx
	b.emit(0x48, 0xBB)
	b.emitU64(uint64(end))

	return b
}

// Len returns the size of code emitted so far.
func (b *Builder) Len() int { return len(b.code) }

// IncPtr emits a data pointer increment, faulting at the tape end.
func (b *Builder) IncPtr() {
	b.emit(0x49, 0xFF, 0xC5)            // inc %r13
	b.emit(0x49, 0x39, 0xDD)            // cmp %rbx, %r13
	b.jumpExit(0x83, StatusBoundsFault) // jae
}

// DecPtr emits a data pointer decrement, faulting below the tape base.
func (b *Builder) DecPtr() {
	b.emit(0x49, 0xFF, 0xCD)            // dec %r13
	b.emit(0x4D, 0x39, 0xE5)            // cmp %r12, %r13
	b.jumpExit(0x82, StatusBoundsFault) // jb
}

// IncData emits a byte increment of the current cell.
func (b *Builder) IncData() {
	b.emit(0x41, 0x80, 0x45, 0x00, 0x01) // addb $1, 0(%r13)
}

// DecData emits a byte decrement of the current cell.
func (b *Builder) DecData() {
	b.emit(0x41, 0x80, 0x6D, 0x00, 0x01) // subb $1, 0(%r13)
}

// Write emits a write(2) of the current cell to the output descriptor;
// anything but a one byte result is a fault.
func (b *Builder) Write() {
	b.syscall(sysWrite, b.cfg.OutFD)
	b.emit(0x48, 0x83, 0xF8, 0x01)     // cmp $1, %rax
	b.jumpExit(0x85, StatusWriteFault) // jne
}

// Read emits a read(2) into the current cell from the input descriptor;
// end of file or any error is a fault.
func (b *Builder) Read() {
	b.syscall(sysRead, b.cfg.InFD)
	b.emit(0x48, 0x85, 0xC0)          // test %rax, %rax
	b.jumpExit(0x8E, StatusReadFault) // jle
}

const (
	sysRead  = 0
	sysWrite = 1
)

func (b *Builder) syscall(nr, fd int) {
	b.emit(0x48, 0xC7, 0xC0) // mov $nr, %rax
	b.emitU32(uint32(nr))
	b.emit(0x48, 0xC7, 0xC7) // mov $fd, %rdi
	b.emitU32(uint32(fd))
	b.emit(0x4C, 0x89, 0xEE) // mov %r13, %rsi
	b.emit(0x48, 0xC7, 0xC2) // mov $1, %rdx
	b.emitU32(1)
	b.emit(0x0F, 0x05) // syscall
}

// Open emits the head of a loop: a test of the current cell, and a jump past
// the matching Close if it is zero. The jump displacement is left zero until
// Close patches it.
func (b *Builder) Open() {
	b.emit(0x41, 0x80, 0x7D, 0x00, 0x00) // cmpb $0, 0(%r13)
	b.open = append(b.open, len(b.code))
	b.emit(0x0F, 0x84) // jz
	b.emitU32(0)
}

// Close emits the tail of the innermost open loop: a jump back to its head
// test if the current cell is non-zero. The head's forward jump is then
// patched to land just after this tail.
func (b *Builder) Close() error {
	i := len(b.open) - 1
	if i < 0 {
		return ErrUnmatchedClose
	}
	jz := b.open[i]
	b.open = b.open[:i]

	b.emit(0x41, 0x80, 0x7D, 0x00, 0x00) // cmpb $0, 0(%r13)
	back, err := rel32(len(b.code)+6, jz-5)
	if err != nil {
		return err
	}
	b.emit(0x0F, 0x85) // jnz
	b.emitU32(back)

	fwd, err := rel32(jz+6, len(b.code))
	if err != nil {
		return err
	}
	b.patchU32(jz+2, fwd)
	return nil
}

// Finish emits the epilogue and any needed exit stubs, resolves all jumps
// into them, and returns the finished code.
func (b *Builder) Finish() ([]byte, error) {
	if len(b.open) > 0 {
		return nil, ErrUnmatchedOpen
	}

	b.emit(0xC3) // ret

	exits := make(map[uint32]int, 3)
	for _, fx := range b.fixups {
		addr, emitted := exits[fx.exit]
		if !emitted {
			addr = b.emitExit(fx.exit)
			exits[fx.exit] = addr
		}
		disp, err := rel32(fx.at+4, addr)
		if err != nil {
			return nil, err
		}
		b.patchU32(fx.at, disp)
	}
	b.fixups = nil

	return b.code, nil
}

func (b *Builder) jumpExit(cc byte, exit uint32) {
	b.emit(0x0F, cc)
	b.fixups = append(b.fixups, fixup{len(b.code), exit})
	b.emitU32(0)
}

func (b *Builder) emitExit(code uint32) int {
	at := len(b.code)
	b.emit(0x48, 0xB9) // movabs $status, %rcx
	b.emitU64(uint64(b.cfg.Status))
	b.emit(0x48, 0xC7, 0x01) // movq $code, (%rcx)
	b.emitU32(code)
	b.emit(0x48, 0x89, 0x41, 0x08) // mov %rax, 8(%rcx)
	b.emit(0x4C, 0x89, 0x69, 0x10) // mov %r13, 16(%rcx)
	b.emit(0xC3)                   // ret
	return at
}

func (b *Builder) emit(bs ...byte) { b.code = append(b.code, bs...) }

func (b *Builder) emitU32(n uint32) {
	b.code = binary.LittleEndian.AppendUint32(b.code, n)
}

func (b *Builder) emitU64(n uint64) {
	b.code = binary.LittleEndian.AppendUint64(b.code, n)
}

func (b *Builder) patchU32(at int, n uint32) {
	binary.LittleEndian.PutUint32(b.code[at:at+4], n)
}

// rel32 computes the displacement of a relative jump whose next instruction
// starts at from; negative displacements are returned in two's complement.
func rel32(from, to int) (uint32, error) {
	disp := int64(to) - int64(from)
	if disp < math.MinInt32 || disp > math.MaxInt32 {
		return 0, RangeError{from, to}
	}
	return uint32(int32(disp)), nil
}
