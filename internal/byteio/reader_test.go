package byteio_test

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/jcorbin/bfjit/internal/byteio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plainReader struct{ r io.Reader }

func (pr plainReader) Read(p []byte) (int, error) { return pr.r.Read(p) }

func Test_NewReader(t *testing.T) {
	br := bytes.NewReader([]byte("ab"))
	assert.Equal(t, byteio.Reader(br), byteio.NewReader(br), "byte readers pass through")

	r := byteio.NewReader(plainReader{strings.NewReader("xyz")})
	b, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte('x'), b)
	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "yz", string(rest), "Read must agree with ReadByte")

	_, err = byteio.NewReader(nil).ReadByte()
	assert.Equal(t, io.EOF, err, "nil reader is empty")
}

func Test_NameOf(t *testing.T) {
	assert.Equal(t, "<nil>", byteio.NameOf(nil))
	assert.Equal(t, os.Stdin.Name(), byteio.NameOf(os.Stdin))
	assert.Equal(t, "<unnamed *strings.Reader>", byteio.NameOf(strings.NewReader("")))
}
