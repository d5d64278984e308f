package bfjit

import (
	"context"
	"fmt"
	"io"

	"github.com/jcorbin/bfjit/internal/byteio"
	"github.com/jcorbin/bfjit/internal/flushio"
	"github.com/jcorbin/bfjit/internal/panicerr"
	"github.com/jcorbin/bfjit/internal/tape"
)

// cancelInterval is how many taken loop branches run between context checks.
const cancelInterval = 4096

// machine holds the state of one interpreted run. Any failure halts the run
// by panicking through panicerr.Halt, so it must run under panicerr.Recover.
type machine struct {
	config
	ctx     context.Context
	in      byteio.Reader
	out     flushio.WriteFlusher
	tape    *tape.Tape
	ticks   int
	scratch []byte
}

func (p *Program) newMachine(ctx context.Context, in io.Reader, out io.Writer) *machine {
	m := &machine{
		config: p.config,
		ctx:    ctx,
		in:     byteio.NewReader(in),
		out:    flushio.Tee(out, p.tee),
		tape:   tape.New(p.tapeSize),
	}
	return m
}

func (m *machine) halt(err error) {
	// ignore any panics while trying to flush output
	func() {
		defer func() { recover() }()
		if ferr := m.out.Flush(); err == nil && ferr != nil {
			err = &IOError{"write", ferr}
		}
	}()
	m.logf("halt", "error: %v (ptr:%v)", err, m.tape.Ptr())
	panicerr.Halt(err)
}

func (m *machine) flush() error {
	if err := m.out.Flush(); err != nil {
		return &IOError{"write", err}
	}
	m.logf("halt", "ok (ptr:%v)", m.tape.Ptr())
	return nil
}

// tick counts one taken loop branch, halting if the context is done.
func (m *machine) tick() {
	if m.ticks++; m.ticks%cancelInterval == 0 {
		if err := m.ctx.Err(); err != nil {
			m.halt(err)
		}
	}
}

func (m *machine) move(delta int) {
	if err := m.tape.Move(delta); err != nil {
		m.halt(err)
	}
}

func (m *machine) read() byte {
	b, err := m.in.ReadByte()
	if err == io.EOF {
		m.halt(ErrInputUnavailable)
	} else if err != nil {
		m.halt(&IOError{"read", err})
	}
	return b
}

// write writes n copies of the current cell, and flushes them.
func (m *machine) write(n int) {
	var err error
	m.scratch, err = flushio.WriteRepeat(m.out, m.scratch, m.tape.Load(), n)
	if err != nil {
		m.halt(&IOError{"write", err})
	}
}

// runNaive executes filtered instructions directly, using a jump table
// from buildJumpTable.
func (m *machine) runNaive(insts []byte, table []int) {
	m.logf("run", "naive: %v instructions, %v cells", len(insts), m.tape.Size())
	for pc := 0; pc < len(insts); pc++ {
		if m.logfn != nil {
			m.logf("exec", "@%v %c -- ptr:%v cell:%v", pc, insts[pc], m.tape.Ptr(), m.tape.Load())
		}
		switch insts[pc] {
		case '>':
			m.move(1)
		case '<':
			m.move(-1)
		case '+':
			m.tape.Add(1)
		case '-':
			m.tape.Add(255)
		case '.':
			m.write(1)
		case ',':
			m.tape.Stor(m.read())
		case '[':
			if m.tape.Load() == 0 {
				pc = table[pc]
			}
		case ']':
			if m.tape.Load() != 0 {
				pc = table[pc]
				m.tick()
			}
		}
	}
}

// runOps executes translated operations, including any fused loop
// operations produced by optimizeLoop.
func (m *machine) runOps(ops []Op) {
	m.logf("run", "ops: %v ops, %v cells", len(ops), m.tape.Size())
	for pc := 0; pc < len(ops); pc++ {
		op := ops[pc]
		if m.logfn != nil {
			m.logf("exec", "@%v %v -- ptr:%v cell:%v", pc, op, m.tape.Ptr(), m.tape.Load())
		}
		switch op.Kind {
		case OpMovePtr:
			m.move(op.Arg)

		case OpAddData:
			m.tape.Add(byte(op.Arg))

		case OpReadInput:
			for i := 0; i < op.Arg; i++ {
				m.tape.Stor(m.read())
			}

		case OpWriteOutput:
			m.write(op.Arg)

		case OpBranchIfZero:
			if m.tape.Load() == 0 {
				pc = op.Arg
			}

		case OpBranchIfNonZero:
			if m.tape.Load() != 0 {
				pc = op.Arg
				m.tick()
			}

		case OpZeroCell:
			m.tape.Stor(0)

		case OpScanPtr:
			if err := m.tape.Scan(op.Arg); err != nil {
				m.halt(err)
			}

		case OpTransferCell:
			if err := m.tape.Transfer(op.Arg); err != nil {
				m.halt(err)
			}

		default:
			m.halt(fmt.Errorf("invalid op %v at %v", op, pc))
		}
	}
}
