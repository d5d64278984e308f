package bfjit

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jcorbin/bfjit/internal/panicerr"
)

// Strategy selects how a program is executed.
type Strategy int

// Execution strategies, from slowest to fastest.
const (
	Naive Strategy = iota
	Ops
	OptimizedOps
	JIT
)

var strategyNames = [...]string{
	Naive:        "naive",
	Ops:          "ops",
	OptimizedOps: "optimized-ops",
	JIT:          "jit",
}

// Strategies lists all execution strategies.
var Strategies = []Strategy{Naive, Ops, OptimizedOps, JIT}

func (s Strategy) String() string {
	if s >= 0 && int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy parses a strategy name, or an optimization level from 1 to 3.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(s) {
	case "naive", "1":
		return Naive, nil
	case "ops", "2":
		return Ops, nil
	case "optimized-ops", "optimized", "3":
		return OptimizedOps, nil
	case "jit":
		return JIT, nil
	}
	return 0, fmt.Errorf("invalid strategy %q", s)
}

// Set implements flag.Value (and pflag.Value) through ParseStrategy.
func (s *Strategy) Set(value string) (err error) {
	*s, err = ParseStrategy(value)
	return err
}

// Type returns the value type name used in command line help.
func (s *Strategy) Type() string { return "strategy" }

// Program is a compiled program, ready to Run any number of times.
// Each run gets a fresh zeroed tape.
type Program struct {
	config
	strategy Strategy
	insts    []byte // filtered instructions, for Naive and JIT
	table    []int  // jump table, for Naive
	ops      []Op   // for Ops and OptimizedOps
}

// Compile prepares source for execution with the given strategy. Unbalanced
// brackets return an error matching ErrMalformedProgram.
func Compile(src []byte, strategy Strategy, opts ...Option) (*Program, error) {
	p := &Program{config: defaultConfig, strategy: strategy}
	Options(opts...).apply(&p.config)

	insts := filterInstructions(src)
	p.logf("compile", "%v: %v instructions from %v source bytes", strategy, len(insts), len(src))

	switch strategy {
	case Naive:
		table, err := buildJumpTable(insts)
		if err != nil {
			return nil, err
		}
		p.insts, p.table = insts, table

	case Ops, OptimizedOps:
		ops, err := translate(insts, strategy == OptimizedOps)
		if err != nil {
			return nil, err
		}
		p.ops = ops
		p.logf("compile", "translated into %v ops", len(ops))

	case JIT:
		if err := checkBalance(insts); err != nil {
			return nil, err
		}
		p.insts = insts

	default:
		return nil, fmt.Errorf("invalid strategy %v", strategy)
	}
	return p, nil
}

// Strategy returns the program's execution strategy.
func (p *Program) Strategy() Strategy { return p.strategy }

// TapeSize returns the number of tape cells allocated for each run.
func (p *Program) TapeSize() int { return p.tapeSize }

// Ops returns a copy of the program's translated operations; it is nil for
// the Naive and JIT strategies.
func (p *Program) Ops() []Op {
	if p.ops == nil {
		return nil
	}
	return append([]Op(nil), p.ops...)
}

// Run runs the program, reading from in and writing to out; a nil in is
// empty, and a nil out discards output.
//
// Interpreted runs check ctx periodically while looping, returning its error
// if done. Native runs check ctx only before starting.
func (p *Program) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return panicerr.Recover(p.strategy.String(), func() error {
		if p.strategy == JIT {
			return p.runNative(ctx, in, out)
		}
		m := p.newMachine(ctx, in, out)
		switch p.strategy {
		case Naive:
			m.runNaive(p.insts, p.table)
		default:
			m.runOps(p.ops)
		}
		return m.flush()
	})
}

// Execute compiles and runs src once.
func Execute(ctx context.Context, src []byte, in io.Reader, out io.Writer, strategy Strategy, opts ...Option) error {
	p, err := Compile(src, strategy, opts...)
	if err != nil {
		return err
	}
	return p.Run(ctx, in, out)
}
