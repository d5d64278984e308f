package bfjit

import (
	"strings"
	"testing"

	"github.com/lithammer/dedent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgram_WriteTo(t *testing.T) {
	for _, tc := range []struct {
		strategy Strategy
		src      string
		want     string
	}{
		{Ops, "+[->+<]", `
			# Program strategy=ops tape=30000
			# 7 ops
			0 AddData(1)
			1 BranchIfZero(6) -> @7
			2 AddData(255)
			3 MovePtr(1)
			4 AddData(1)
			5 MovePtr(-1)
			6 BranchIfNonZero(1) -> @2
		`},

		{OptimizedOps, "+[->+<]>.", `
			# Program strategy=optimized-ops tape=30000
			# 4 ops
			0 AddData(1)
			1 TransferCell(1)
			2 MovePtr(1)
			3 WriteOutput(1)
		`},

		{OptimizedOps, "", `
			# Program strategy=optimized-ops tape=30000
			# 0 ops
		`},

		{Naive, "+ [ - ] > .", `
			# Program strategy=naive tape=30000
			# 6 instructions
			0 +[-]>.
		`},

		{JIT, strings.Repeat("+-", 40), `
			# Program strategy=jit tape=30000
			# 80 instructions
			 0 +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-
			64 +-+-+-+-+-+-+-+-
		`},
	} {
		t.Run(tc.strategy.String(), func(t *testing.T) {
			p, err := Compile([]byte(tc.src), tc.strategy)
			require.NoError(t, err)
			var out strings.Builder
			n, err := p.WriteTo(&out)
			require.NoError(t, err)
			assert.Equal(t, int64(out.Len()), n)
			assert.Equal(t, strings.TrimPrefix(dedent.Dedent(tc.want), "\n"), out.String())
		})
	}
}
