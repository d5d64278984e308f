package logio

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	var out strings.Builder
	var log Logger
	log.SetOutput(&out)

	log.Printf("INFO", "hello %v", "world")
	log.Printf("", "bare line\n")
	assert.Equal(t, 0, log.ExitCode())

	log.ErrorIf(nil)
	assert.Equal(t, 0, log.ExitCode())

	log.ErrorIf(errors.New("nope"))
	assert.Equal(t, 1, log.ExitCode())

	assert.Equal(t, strings.Join([]string{
		"INFO: hello world",
		"bare line",
		"ERROR: nope",
	}, "\n")+"\n", out.String())
}

func TestLogger_verbosity(t *testing.T) {
	var out strings.Builder
	log := Logger{Verbosity: 1}
	log.SetOutput(&out)

	assert.Nil(t, log.Verbosef(2, "TRACE"))
	debugf := log.Verbosef(1, "DEBUG")
	if assert.NotNil(t, debugf) {
		debugf("n=%v", 3)
	}
	assert.Equal(t, "DEBUG: n=3\n", out.String())
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, errors.New("broken") }

func TestLogger_outputError(t *testing.T) {
	var log Logger
	log.SetOutput(failWriter{})
	log.Printf("INFO", "lost")
	assert.Equal(t, 2, log.ExitCode())
}

func TestWriter(t *testing.T) {
	var lines []string
	lw := Writer{Logf: func(mess string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(mess, args...))
	}}
	lw.Write([]byte("one\ntw"))
	lw.Write([]byte("o\nthr"))
	assert.Equal(t, []string{"one", "two"}, lines)
	assert.NoError(t, lw.Close())
	assert.Equal(t, []string{"one", "two", "thr"}, lines)

	lines = nil
	lw.Write([]byte("\n\x00\x01\ttab\n"))
	assert.Equal(t, []string{"", `"\x00\x01\ttab"`}, lines, "expected binary lines to be quoted")
}
