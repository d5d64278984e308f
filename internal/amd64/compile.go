package amd64

import "fmt"

// BracketError locates an unbalanced bracket in an instruction stream.
type BracketError struct {
	Offset int
	Inst   byte
}

func (be BracketError) Error() string {
	return fmt.Sprintf("unmatched %q at instruction %v", be.Inst, be.Offset)
}

// Compile translates an instruction stream directly into a function, one
// machine instruction sequence per instruction; bytes other than the eight
// instructions are ignored.
func Compile(insts []byte, cfg Config) ([]byte, error) {
	b := NewBuilder(cfg)
	var opens []int
	for pc, inst := range insts {
		switch inst {
		case '>':
			b.IncPtr()
		case '<':
			b.DecPtr()
		case '+':
			b.IncData()
		case '-':
			b.DecData()
		case '.':
			b.Write()
		case ',':
			b.Read()
		case '[':
			opens = append(opens, pc)
			b.Open()
		case ']':
			if len(opens) == 0 {
				return nil, BracketError{pc, ']'}
			}
			opens = opens[:len(opens)-1]
			if err := b.Close(); err != nil {
				return nil, err
			}
		}
	}
	if len(opens) > 0 {
		return nil, BracketError{opens[0], '['}
	}
	return b.Finish()
}
