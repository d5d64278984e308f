package bfjit

import "fmt"

// OpKind is the closed set of operation kinds; the zero value is invalid.
type OpKind uint8

// Operation kinds.
//
// WriteOutput(n) reaches the output as n bytes followed by a single flush,
// where the n write instructions it replaces would each flush; a writer that
// counts writes or flushes can tell the two apart, the byte stream cannot.
const (
	opInvalid OpKind = iota

	OpMovePtr         // move the data pointer by Arg cells
	OpAddData         // add Arg, in [0, 256), to the current cell
	OpReadInput       // read Arg bytes into the current cell, keeping the last
	OpWriteOutput     // write the current cell Arg times
	OpBranchIfZero    // if the current cell is zero, continue after op Arg
	OpBranchIfNonZero // if the current cell is non-zero, continue after op Arg

	OpZeroCell     // set the current cell to zero
	OpScanPtr      // move the data pointer by Arg until it lands on a zero cell
	OpTransferCell // add the current cell into the one at offset Arg, then zero it

	numOpKinds
)

var opKindNames = [numOpKinds]string{
	opInvalid:         "Invalid",
	OpMovePtr:         "MovePtr",
	OpAddData:         "AddData",
	OpReadInput:       "ReadInput",
	OpWriteOutput:     "WriteOutput",
	OpBranchIfZero:    "BranchIfZero",
	OpBranchIfNonZero: "BranchIfNonZero",
	OpZeroCell:        "ZeroCell",
	OpScanPtr:         "ScanPtr",
	OpTransferCell:    "TransferCell",
}

func (kind OpKind) String() string {
	if kind < numOpKinds {
		return opKindNames[kind]
	}
	return fmt.Sprintf("OpKind(%d)", uint8(kind))
}

// fused returns true for kinds only produced by loop optimization.
func (kind OpKind) fused() bool {
	return kind >= OpZeroCell && kind < numOpKinds
}

// Op is one translated operation.
//
// Branches are paired: for a BranchIfZero at index i, ops[ops[i].Arg] is its
// BranchIfNonZero, whose Arg is i. Both branches continue at Arg+1 when taken.
type Op struct {
	Kind OpKind
	Arg  int
}

func (op Op) String() string {
	if op.Kind == OpZeroCell {
		return op.Kind.String()
	}
	return fmt.Sprintf("%v(%v)", op.Kind, op.Arg)
}

// runOp returns the operation for a run of n copies of inst; brackets, and
// non-instruction bytes, are not runs.
func runOp(inst byte, n int) (Op, bool) {
	switch inst {
	case '>':
		return Op{OpMovePtr, n}, true
	case '<':
		return Op{OpMovePtr, -n}, true
	case '+':
		return Op{OpAddData, n % 256}, true
	case '-':
		return Op{OpAddData, (256 - n%256) % 256}, true
	case ',':
		return Op{OpReadInput, n}, true
	case '.':
		return Op{OpWriteOutput, n}, true
	}
	return Op{}, false
}

// translate run-length encodes a filtered instruction stream into operations,
// resolving branch pairs as each loop closes. If optimize is true, each
// closed loop is first offered to optimizeLoop.
func translate(insts []byte, optimize bool) ([]Op, error) {
	type openBracket struct{ op, pc int }
	var (
		ops  []Op
		open []openBracket
	)
	for pc := 0; pc < len(insts); {
		switch inst := insts[pc]; inst {
		case '[':
			open = append(open, openBracket{len(ops), pc})
			ops = append(ops, Op{Kind: OpBranchIfZero})
			pc++

		case ']':
			i := len(open) - 1
			if i < 0 {
				return nil, &SyntaxError{pc, ']'}
			}
			at := open[i].op
			open = open[:i]
			pc++

			if optimize {
				if op, ok := optimizeLoop(ops[at+1:]); ok {
					ops = append(ops[:at], op)
					continue
				}
			}

			ops[at].Arg = len(ops)
			ops = append(ops, Op{OpBranchIfNonZero, at})

		default:
			start := pc
			for pc++; pc < len(insts) && insts[pc] == inst; pc++ {
			}
			if op, ok := runOp(inst, pc-start); ok {
				ops = append(ops, op)
			}
		}
	}
	if len(open) > 0 {
		return nil, &SyntaxError{open[0].pc, '['}
	}
	return ops, nil
}

// optimizeLoop returns a single fused operation equivalent to a loop with the
// given body, if the body is one of the recognized idioms:
//
//	[AddData(k)]                                         ZeroCell
//	[MovePtr(n)]                                         ScanPtr(n)
//	[AddData(255) MovePtr(m) AddData(1) MovePtr(-m)]     TransferCell(m)
//
// ZeroCell assumes the loop counts down to zero; that only holds for every
// starting value when k is odd. For even k the generic loop never ends unless
// the starting value is a multiple of k's largest power of two factor.
func optimizeLoop(body []Op) (Op, bool) {
	switch len(body) {
	case 1:
		switch op := body[0]; op.Kind {
		case OpAddData:
			return Op{Kind: OpZeroCell}, true
		case OpMovePtr:
			return Op{OpScanPtr, op.Arg}, true
		}

	case 4:
		if body[0] == (Op{OpAddData, 255}) &&
			body[1].Kind == OpMovePtr &&
			body[2] == (Op{OpAddData, 1}) &&
			body[3].Kind == OpMovePtr &&
			body[1].Arg != 0 &&
			body[3].Arg == -body[1].Arg {
			return Op{OpTransferCell, body[1].Arg}, true
		}
	}
	return Op{}, false
}
