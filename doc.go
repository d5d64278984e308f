/* Package bfjit runs programs for the classic eight instruction tape machine:

	>  move the data pointer one cell right
	<  move the data pointer one cell left
	+  increment the current cell
	-  decrement the current cell
	.  write the current cell to output
	,  read one byte of input into the current cell
	[  if the current cell is zero, jump past the matching ]
	]  if the current cell is non-zero, jump back past the matching [

Every other source byte is a comment.

The same program may run under one of four strategies, each faster than the
last:

Naive walks the filtered instruction stream one byte at a time, using a
precomputed bracket jump table.

Ops first translates the instruction stream into run-length encoded
operations, so that a run like "+++++" is a single AddData(5) dispatch; loop
branches are resolved during translation by back-patching.

OptimizedOps additionally replaces three small loop idioms with fused
operations as they are translated:

	[-]      ZeroCell           clear the current cell
	[>>]     ScanPtr(2)         move until landing on a zero cell
	[->+<]   TransferCell(1)    add the current cell into another, then clear it

JIT compiles the instruction stream straight into x86-64 machine code, maps
it executable, and calls it. It is only available on linux/amd64.

Cells are bytes that wrap modulo 256. The tape has a fixed size, 30000 cells
by default, for every strategy; moving the data pointer off either end stops
the run with ErrPointerOutOfBounds.

Output is flushed after every write instruction, so that interactive programs
see their prompts before blocking on input.
*/
package bfjit
