package bfjit

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// imageVersion is bumped on any incompatible change to programImage.
const imageVersion = 1

// programImage is the serialized form of a compiled Program.
type programImage struct {
	Version  int      `cbor:"1,keyasint"`
	Strategy string   `cbor:"2,keyasint"`
	TapeSize int      `cbor:"3,keyasint"`
	Insts    []byte   `cbor:"4,keyasint,omitempty"`
	Ops      [][2]int `cbor:"5,keyasint,omitempty"`
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bfjit: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// ErrInvalidImage is matched by errors from UnmarshalProgram about images
// that decode but do not describe a valid program.
var ErrInvalidImage = errors.New("invalid program image")

// Limits on what an image may ask of a run. Source programs are bounded by
// their own length instead, so only images need them.
const (
	// MaxImageTapeSize is the largest tape size an image may carry.
	MaxImageTapeSize = 1 << 24

	// MaxImageCount is the largest ReadInput or WriteOutput count, and the
	// largest pointer offset, that an image may carry.
	MaxImageCount = 1 << 24
)

// MarshalBinary encodes the compiled program as a canonical CBOR image;
// identical programs always encode identically.
func (p *Program) MarshalBinary() ([]byte, error) {
	img := programImage{
		Version:  imageVersion,
		Strategy: p.strategy.String(),
		TapeSize: p.tapeSize,
	}
	if img.TapeSize > MaxImageTapeSize {
		return nil, fmt.Errorf("bfjit: marshal program: tape size %v exceeds %v", img.TapeSize, MaxImageTapeSize)
	}
	switch p.strategy {
	case Ops, OptimizedOps:
		img.Ops = make([][2]int, len(p.ops))
		for i, op := range p.ops {
			img.Ops[i] = [2]int{int(op.Kind), op.Arg}
		}
		if err := checkOpLimits(p.ops); err != nil {
			return nil, fmt.Errorf("bfjit: marshal program: %w", err)
		}
	default:
		img.Insts = p.insts
	}
	return cborEncMode.Marshal(img)
}

// UnmarshalProgram decodes an image written by MarshalBinary. The image is
// fully validated, so that running it is as safe as compiling from source:
// besides structure, its tape size and op arguments must be within
// MaxImageTapeSize and MaxImageCount.
// Options apply after the image's own settings.
func UnmarshalProgram(data []byte, opts ...Option) (*Program, error) {
	var img programImage
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("bfjit: unmarshal program: %w", err)
	}
	if img.Version != imageVersion {
		return nil, fmt.Errorf("%w: unsupported version %v", ErrInvalidImage, img.Version)
	}
	strategy, err := ParseStrategy(img.Strategy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}

	if img.TapeSize < 0 || img.TapeSize > MaxImageTapeSize {
		return nil, fmt.Errorf("%w: tape size %v out of range [0, %v]", ErrInvalidImage, img.TapeSize, MaxImageTapeSize)
	}

	p := &Program{config: defaultConfig, strategy: strategy}
	WithTapeSize(img.TapeSize).apply(&p.config)
	Options(opts...).apply(&p.config)

	switch strategy {
	case Naive, JIT:
		if len(img.Ops) > 0 {
			return nil, fmt.Errorf("%w: %v image with ops", ErrInvalidImage, strategy)
		}
		insts := filterInstructions(img.Insts)
		if len(insts) != len(img.Insts) {
			return nil, fmt.Errorf("%w: non-instruction bytes", ErrInvalidImage)
		}
		if strategy == Naive {
			if p.table, err = buildJumpTable(insts); err != nil {
				return nil, err
			}
		} else if err := checkBalance(insts); err != nil {
			return nil, err
		}
		p.insts = insts

	case Ops, OptimizedOps:
		if len(img.Insts) > 0 {
			return nil, fmt.Errorf("%w: %v image with instructions", ErrInvalidImage, strategy)
		}
		ops := make([]Op, len(img.Ops))
		for i, kv := range img.Ops {
			if kv[0] < 0 || kv[0] >= int(numOpKinds) {
				return nil, fmt.Errorf("%w: invalid op kind %v at %v", ErrInvalidImage, kv[0], i)
			}
			ops[i] = Op{OpKind(kv[0]), kv[1]}
		}
		if err := checkOpLimits(ops); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
		}
		if err := validateOps(ops, strategy == OptimizedOps); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
		}
		p.ops = ops
	}
	return p, nil
}

// checkOpLimits bounds the arguments of counted and offset ops.
func checkOpLimits(ops []Op) error {
	for i, op := range ops {
		switch op.Kind {
		case OpMovePtr, OpScanPtr, OpTransferCell, OpReadInput, OpWriteOutput:
			if op.Arg > MaxImageCount || op.Arg < -MaxImageCount {
				return fmt.Errorf("%v at %v exceeds %v", op, i, MaxImageCount)
			}
		}
	}
	return nil
}

// validateOps checks everything that translate guarantees about its output.
func validateOps(ops []Op, fused bool) error {
	for i, op := range ops {
		switch op.Kind {
		case OpMovePtr, OpScanPtr, OpTransferCell:
			if op.Arg == 0 {
				return fmt.Errorf("zero offset %v at %v", op, i)
			}
		case OpAddData:
			if op.Arg < 0 || op.Arg > 255 {
				return fmt.Errorf("out of range %v at %v", op, i)
			}
		case OpReadInput, OpWriteOutput:
			if op.Arg < 1 {
				return fmt.Errorf("non-positive count %v at %v", op, i)
			}
		case OpBranchIfZero:
			if j := op.Arg; j <= i || j >= len(ops) ||
				ops[j] != (Op{OpBranchIfNonZero, i}) {
				return fmt.Errorf("unpaired %v at %v", op, i)
			}
		case OpBranchIfNonZero:
			if j := op.Arg; j >= i || j < 0 ||
				ops[j] != (Op{OpBranchIfZero, i}) {
				return fmt.Errorf("unpaired %v at %v", op, i)
			}
		case OpZeroCell:
		default:
			return fmt.Errorf("invalid op %v at %v", op, i)
		}
		if op.Kind.fused() && !fused {
			return fmt.Errorf("fused %v at %v in an unoptimized program", op, i)
		}
	}

	// pairing alone allows crossed loops like [ ( ] ), so check nesting
	var open []int
	for i, op := range ops {
		switch op.Kind {
		case OpBranchIfZero:
			open = append(open, i)
		case OpBranchIfNonZero:
			if n := len(open); n == 0 || open[n-1] != op.Arg {
				return fmt.Errorf("crossed loop at %v", i)
			}
			open = open[:len(open)-1]
		}
	}
	return nil
}
