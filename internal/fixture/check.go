package fixture

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/sync/errgroup"
)

// Runner runs program source against input, writing any output.
type Runner func(ctx context.Context, src []byte, in io.Reader, out io.Writer) error

// Result records one fixture run under one named runner.
type Result struct {
	Fixture
	Runner string
	Output string
	Err    error
	Diffs  []diffmatchpatch.Diff
}

// OK returns true if the run succeeded with the expected output.
func (res Result) OK() bool {
	return res.Err == nil && res.Output == res.Expect
}

func (res Result) String() string {
	switch {
	case res.Err != nil:
		return fmt.Sprintf("FAIL %v/%v: %v", res.Runner, res.Name, res.Err)
	case !res.OK():
		return fmt.Sprintf("FAIL %v/%v: output mismatch", res.Runner, res.Name)
	default:
		return fmt.Sprintf("ok   %v/%v", res.Runner, res.Name)
	}
}

// PrettyDiff renders the expected-to-actual output difference with ANSI
// colors; it is empty when the output matched.
func (res Result) PrettyDiff() string {
	if len(res.Diffs) == 0 {
		return ""
	}
	return diffmatchpatch.New().DiffPrettyText(res.Diffs)
}

// Check runs every fixture under every runner, running at most limit runs at
// a time; limit <= 0 means no limit. Results are ordered by fixture and then
// by runner name. Only context cancellation is returned as an error; run
// failures are recorded in each Result.
func Check(ctx context.Context, fixtures []Fixture, runners map[string]Runner, limit int) ([]Result, error) {
	names := make([]string, 0, len(runners))
	for name := range runners {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]Result, len(fixtures)*len(names))
	eg, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		eg.SetLimit(limit)
	}
	for i, fx := range fixtures {
		for j, name := range names {
			res := &results[i*len(names)+j]
			res.Fixture = fx
			res.Runner = name
			run := runners[name]
			eg.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				res.run(ctx, run)
				return nil
			})
		}
	}
	return results, eg.Wait()
}

func (res *Result) run(ctx context.Context, run Runner) {
	var out bytes.Buffer
	res.Err = run(ctx, res.Source, strings.NewReader(res.Input), &out)
	res.Output = out.String()
	if res.Output != res.Expect {
		dmp := diffmatchpatch.New()
		res.Diffs = dmp.DiffMain(res.Expect, res.Output, false)
	}
}
