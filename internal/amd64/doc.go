// Package amd64 emits x86-64 machine code for tape programs.
//
// The generated function takes no arguments and returns nothing; it is meant
// to be called as a Go func() value. Register use is fixed:
//
//	r13  data pointer, initialized to the tape base and used for nothing else
//	r12  tape base, lower bound for pointer moves
//	rbx  tape end, upper bound for pointer moves
//	rax, rdi, rsi, rdx, rcx, r11  syscall arguments and clobbers
//
// Loops are compiled with 32-bit relative conditional jumps; forward jumps are
// emitted as placeholders and back-patched once their target is known.
//
// Faults (a failed read or write syscall, or a pointer move off either end of
// the tape) jump to an exit stub that records a status code, the raw syscall
// result, and the data pointer in a status block, and then returns.
package amd64
