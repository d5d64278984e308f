//go:build linux && amd64

package execmem

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Data is an anonymous read-write mapping; its address never changes.
type Data struct {
	mem []byte
}

// NewData maps size zeroed bytes.
func NewData(size int) (*Data, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid data mapping size %v", size)
	}
	mem, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("mmap data: %w", err)
	}
	return &Data{mem}, nil
}

// Bytes returns the mapped memory; it is invalid after Close.
func (d *Data) Bytes() []byte { return d.mem }

// Addr returns the address of the first mapped byte.
func (d *Data) Addr() uintptr { return uintptr(unsafe.Pointer(&d.mem[0])) }

// Close unmaps the memory.
func (d *Data) Close() error {
	if d.mem == nil {
		return nil
	}
	err := unix.Munmap(d.mem)
	d.mem = nil
	return err
}

// Code is a read-execute mapping of a machine code function.
type Code struct {
	mem []byte
}

// NewCode maps a copy of the given machine code. The mapping is writable only
// while the code is copied in.
func NewCode(code []byte) (*Code, error) {
	if len(code) == 0 {
		return nil, fmt.Errorf("no machine code to map")
	}
	mem, err := unix.Mmap(-1, 0, len(code),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("mmap code: %w", err)
	}
	copy(mem, code)
	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		unix.Munmap(mem)
		return nil, fmt.Errorf("mprotect code: %w", err)
	}
	return &Code{mem}, nil
}

// Len returns the size of the mapped code.
func (c *Code) Len() int { return len(c.mem) }

// Call calls the mapped code as a parameterless function. The code must
// preserve rsp, rbp, r14 and r15, and must end in a ret.
func (c *Code) Call() {
	// A func value points at a word holding the entry address.
	entry := uintptr(unsafe.Pointer(&c.mem[0]))
	closure := &entry
	fn := *(*func())(unsafe.Pointer(&closure))
	fn()
}

// Close unmaps the code.
func (c *Code) Close() error {
	if c.mem == nil {
		return nil
	}
	err := unix.Munmap(c.mem)
	c.mem = nil
	return err
}
