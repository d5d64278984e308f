package fileinput

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedReader struct {
	io.Reader
	name   string
	closed *int
}

func (nr namedReader) Name() string { return nr.name }

func (nr namedReader) Close() error {
	*nr.closed++
	return nil
}

func TestInput(t *testing.T) {
	var closed int
	in := Input{Queue: []io.Reader{
		namedReader{strings.NewReader("ab\nc"), "first", &closed},
		strings.NewReader(""),
		namedReader{strings.NewReader("d\ne\n"), "second", &closed},
	}}

	b, err := in.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte('a'), b)
	assert.Equal(t, Location{"first", 1}, in.Loc)

	buf := make([]byte, 3)
	n, err := in.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "b\nc", string(buf[:n]))
	assert.Equal(t, "first:2", in.Loc.String())

	rest, err := io.ReadAll(&in)
	require.NoError(t, err)
	assert.Equal(t, "d\ne\n", string(rest))
	assert.Equal(t, Location{"second", 3}, in.Loc)
	assert.Equal(t, 8, in.Total)
	assert.Equal(t, 2, closed)

	_, err = in.ReadByte()
	assert.Equal(t, io.EOF, err)
}

type failReader struct{}

func (failReader) Read(p []byte) (int, error) { return 0, errors.New("disk on fire") }

func TestInput_error(t *testing.T) {
	in := Input{Queue: []io.Reader{failReader{}, strings.NewReader("unreached")}}
	_, err := in.ReadByte()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
	assert.Contains(t, err.Error(), "<unnamed fileinput.failReader>:1")
}

func TestInput_Close(t *testing.T) {
	var closed int
	in := Input{Queue: []io.Reader{
		namedReader{strings.NewReader("x"), "a", &closed},
		namedReader{strings.NewReader("y"), "b", &closed},
	}}
	_, err := in.ReadByte()
	require.NoError(t, err)
	require.NoError(t, in.Close())
	assert.Equal(t, 2, closed)
	assert.Empty(t, in.Queue)
}
