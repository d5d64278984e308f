package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/bfjit"
	"github.com/jcorbin/bfjit/internal/logio"
)

const helloWorld = "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++."

type cliResult struct {
	out  string
	logs string
	err  error
	code int
}

func runCLI(t *testing.T, input string, args ...string) cliResult {
	var out, logs bytes.Buffer
	var log logio.Logger
	log.SetOutput(&logs)

	cmd := newRootCommand(&log, strings.NewReader(input), &out)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&logs)
	err := cmd.ExecuteContext(context.Background())
	log.ErrorIf(err)
	return cliResult{out.String(), logs.String(), err, log.ExitCode()}
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	hello := writeFile(t, dir, "hello.bf", helloWorld)
	echo := writeFile(t, dir, "echo.bf", ",[.,]")

	for _, args := range [][]string{
		{"run", hello},
		{"run", "-o", "1", hello},
		{"run", "-o", "2", hello},
		{"run", "-o", "3", hello},
	} {
		t.Run(strings.Join(args[:len(args)-1], " "), func(t *testing.T) {
			res := runCLI(t, "", args...)
			require.NoError(t, res.err)
			assert.Equal(t, "Hello World!\n", res.out)
			assert.Equal(t, 0, res.code)
		})
	}

	t.Run("echo exhausts input", func(t *testing.T) {
		res := runCLI(t, "abc", "run", "-o", "3", echo)
		assert.ErrorIs(t, res.err, bfjit.ErrInputUnavailable)
		assert.Equal(t, "abc", res.out)
		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.logs, "ERROR: ")
	})

	t.Run("input files", func(t *testing.T) {
		first := writeFile(t, dir, "first.txt", "ab\n")
		second := writeFile(t, dir, "second.txt", "cd")
		res := runCLI(t, "xy", "-v", "run", "-o", "2", "-i", first, "-i", "-", "-i", second, echo)
		assert.ErrorIs(t, res.err, bfjit.ErrInputUnavailable)
		assert.Equal(t, "ab\nxycd", res.out)
		assert.Contains(t, res.logs, "DEBUG: input exhausted at "+second+":1 after 7 bytes")
	})

	t.Run("missing input file", func(t *testing.T) {
		res := runCLI(t, "", "run", "-i", filepath.Join(dir, "nope.txt"), echo)
		assert.ErrorIs(t, res.err, os.ErrNotExist)
	})

	t.Run("optimize conflicts with jit", func(t *testing.T) {
		res := runCLI(t, "", "run", "-o", "2", "-j", hello)
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "none of the others can be")
		assert.Empty(t, res.out)
	})

	t.Run("bad level", func(t *testing.T) {
		res := runCLI(t, "", "run", "-o", "4", hello)
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "invalid optimization level 4")
	})

	t.Run("tape size", func(t *testing.T) {
		res := runCLI(t, "", "run", "--tape-size", "2", writeFile(t, dir, "far.bf", ">>"))
		assert.ErrorIs(t, res.err, bfjit.ErrPointerOutOfBounds)
	})

	t.Run("malformed", func(t *testing.T) {
		res := runCLI(t, "", "run", writeFile(t, dir, "bad.bf", "+[["))
		assert.ErrorIs(t, res.err, bfjit.ErrMalformedProgram)
		assert.Contains(t, res.err.Error(), "bad.bf")
	})

	t.Run("debug logs", func(t *testing.T) {
		res := runCLI(t, "", "-v", "run", hello)
		require.NoError(t, res.err)
		assert.Contains(t, res.logs, "DEBUG: compiled "+hello+" for naive")
		assert.Contains(t, res.logs, "DEBUG: naive run took ")
		assert.NotContains(t, res.logs, "TRACE: ")
	})

	t.Run("log output", func(t *testing.T) {
		res := runCLI(t, "", "run", "-o", "3", "--log-output", hello)
		require.NoError(t, res.err)
		assert.Equal(t, "Hello World!\n", res.out)
		assert.Equal(t, "OUTPUT: Hello World!\n", res.logs)
	})

	t.Run("trace logs", func(t *testing.T) {
		res := runCLI(t, "", "-vv", "run", "-o", "2", writeFile(t, dir, "plus.bf", "++."))
		require.NoError(t, res.err)
		assert.Equal(t, "\x02", res.out)
		assert.Contains(t, res.logs, "TRACE: exec @0 ")
	})
}

func TestRunCommand_config(t *testing.T) {
	dir := t.TempDir()
	far := writeFile(t, dir, "far.bf", ">>>>.")
	conf := writeFile(t, dir, "bfjit.toml", "strategy = \"optimized-ops\"\ntape-size = 4\n")

	res := runCLI(t, "", "--config", conf, "run", far)
	assert.ErrorIs(t, res.err, bfjit.ErrPointerOutOfBounds)

	res = runCLI(t, "", "--config", conf, "run", "--tape-size", "8", far)
	require.NoError(t, res.err)
	assert.Equal(t, "\x00", res.out)

	bad := writeFile(t, dir, "bad.toml", "stratgey = \"jit\"\n")
	res = runCLI(t, "", "--config", bad, "run", far)
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "unknown keys stratgey")
}

func TestCompileCommand(t *testing.T) {
	dir := t.TempDir()
	hello := writeFile(t, dir, "hello.bf", helloWorld)

	res := runCLI(t, "", "compile", hello)
	require.NoError(t, res.err)
	image := filepath.Join(dir, "hello.bfo")
	require.FileExists(t, image)

	res = runCLI(t, "", "run", image)
	require.NoError(t, res.err)
	assert.Equal(t, "Hello World!\n", res.out)

	res = runCLI(t, "", "dump", image)
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.out, "# Program strategy=optimized-ops tape=30000\n"), "got %q", res.out)

	out := filepath.Join(dir, "plain.bfo")
	res = runCLI(t, "", "compile", "-s", "ops", "-o", out, hello)
	require.NoError(t, res.err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	p, err := bfjit.UnmarshalProgram(data)
	require.NoError(t, err)
	assert.Equal(t, bfjit.Ops, p.Strategy())

	garbage := writeFile(t, dir, "garbage.bfo", "not an image")
	res = runCLI(t, "", "run", garbage)
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "garbage.bfo: ")
}

func TestDumpCommand(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "clear.bf", "+++[-]")

	res := runCLI(t, "", "dump", src)
	require.NoError(t, res.err)
	assert.Equal(t, "# Program strategy=optimized-ops tape=30000\n"+
		"# 2 ops\n"+
		"0 AddData(3)\n"+
		"1 ZeroCell\n", res.out)

	res = runCLI(t, "", "dump", "-s", "naive", src)
	require.NoError(t, res.err)
	assert.Equal(t, "# Program strategy=naive tape=30000\n"+
		"# 6 instructions\n"+
		"0 +++[-]\n", res.out)
}

func TestCheckCommand(t *testing.T) {
	res := runCLI(t, "", "check", "-s", "naive,ops", "-s", "optimized-ops", "../../testdata")
	require.NoError(t, res.err)
	lines := strings.Split(strings.TrimSpace(res.out), "\n")
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "ok   "), "line %q", line)
	}
	assert.Contains(t, lines, "ok   optimized-ops/hello")

	dir := t.TempDir()
	writeFile(t, dir, "wrong.bf", "+++.")
	writeFile(t, dir, "wrong.test", `{"feed-in": "", "expect-out": "\u0004"}`)
	res = runCLI(t, "", "-v", "check", "-s", "ops", dir)
	require.Error(t, res.err)
	assert.Equal(t, "FAIL ops/wrong: output mismatch\n", res.out)
	assert.Contains(t, res.logs, "DEBUG: ops/wrong output diff:")
	assert.Equal(t, 1, res.code)
}
