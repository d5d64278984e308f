package bfjit

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/bfjit/internal/fixture"
)

func strategyRunner(strategy Strategy) fixture.Runner {
	return func(ctx context.Context, src []byte, in io.Reader, out io.Writer) error {
		return Execute(ctx, src, in, out, strategy)
	}
}

func TestFixtures(t *testing.T) {
	fixtures, err := fixture.Load("testdata")
	require.NoError(t, err)
	require.True(t, len(fixtures) > 5, "expected more than 5 fixtures, got %v", len(fixtures))

	runners := make(map[string]fixture.Runner)
	for _, strategy := range available() {
		runners[strategy.String()] = strategyRunner(strategy)
	}

	results, err := fixture.Check(context.Background(), fixtures, runners, 4)
	require.NoError(t, err)
	for _, res := range results {
		if !assert.True(t, res.OK(), "%v", res) && res.Err == nil {
			t.Logf("%v output diff:\n%v", res, res.PrettyDiff())
		}
	}
}
