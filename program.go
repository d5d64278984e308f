package bfjit

func isInstruction(b byte) bool {
	switch b {
	case '>', '<', '+', '-', '.', ',', '[', ']':
		return true
	}
	return false
}

// filterInstructions returns the instruction bytes of src, in order.
func filterInstructions(src []byte) []byte {
	insts := make([]byte, 0, len(src))
	for _, b := range src {
		if isInstruction(b) {
			insts = append(insts, b)
		}
	}
	return insts
}

// buildJumpTable maps the offset of every bracket to that of its partner;
// all other entries are -1.
func buildJumpTable(insts []byte) ([]int, error) {
	table := make([]int, len(insts))
	for i := range table {
		table[i] = -1
	}
	for pc, inst := range insts {
		switch inst {
		case '[':
			nesting, seek := 1, pc
			for nesting > 0 && seek+1 < len(insts) {
				seek++
				switch insts[seek] {
				case ']':
					nesting--
				case '[':
					nesting++
				}
			}
			if nesting != 0 {
				return nil, &SyntaxError{pc, '['}
			}
			table[pc] = seek
			table[seek] = pc

		case ']':
			// every [ before pc has already claimed its partner
			if table[pc] < 0 {
				return nil, &SyntaxError{pc, ']'}
			}
		}
	}
	return table, nil
}

// checkBalance verifies bracket nesting without building any table.
func checkBalance(insts []byte) error {
	var open []int
	for pc, inst := range insts {
		switch inst {
		case '[':
			open = append(open, pc)
		case ']':
			if len(open) == 0 {
				return &SyntaxError{pc, ']'}
			}
			open = open[:len(open)-1]
		}
	}
	if len(open) > 0 {
		return &SyntaxError{open[0], '['}
	}
	return nil
}
