package bfjit

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// instsPerLine is how many instructions a dump prints per line.
const instsPerLine = 64

// WriteTo writes a human readable listing of the compiled program: one op
// per line for op strategies, or the filtered instruction stream otherwise.
func (p *Program) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	dump := programDumper{p: p, out: &buf}
	dump.dump()
	return buf.WriteTo(w)
}

type programDumper struct {
	p   *Program
	out *bytes.Buffer

	addrWidth int
}

func (dump programDumper) dump() {
	fmt.Fprintf(dump.out, "# Program strategy=%v tape=%v\n", dump.p.strategy, dump.p.tapeSize)
	switch dump.p.strategy {
	case Ops, OptimizedOps:
		dump.dumpOps()
	default:
		dump.dumpInsts()
	}
}

func (dump *programDumper) dumpOps() {
	ops := dump.p.ops
	fmt.Fprintf(dump.out, "# %v ops\n", len(ops))
	dump.addrWidth = len(strconv.Itoa(len(ops)))
	for i, op := range ops {
		fmt.Fprintf(dump.out, "%*d %v", dump.addrWidth, i, op)
		switch op.Kind {
		case OpBranchIfZero, OpBranchIfNonZero:
			fmt.Fprintf(dump.out, " -> @%v", op.Arg+1)
		}
		dump.out.WriteByte('\n')
	}
}

func (dump *programDumper) dumpInsts() {
	insts := dump.p.insts
	fmt.Fprintf(dump.out, "# %v instructions\n", len(insts))
	dump.addrWidth = len(strconv.Itoa(len(insts)))
	for i := 0; i < len(insts); i += instsPerLine {
		end := i + instsPerLine
		if end > len(insts) {
			end = len(insts)
		}
		fmt.Fprintf(dump.out, "%*d %s\n", dump.addrWidth, i, insts[i:end])
	}
}
