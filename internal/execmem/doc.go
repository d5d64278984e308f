// Package execmem manages memory mappings outside of the Go heap: plain
// read-write data blocks, and read-execute blocks holding generated machine
// code that may be called as a Go func().
//
// It is the only package in the module that uses unsafe, and is only built
// on linux/amd64.
package execmem
