package byteio

import (
	"bufio"
	"fmt"
	"io"
)

// Reader is an io.Reader that also supports reading single bytes.
type Reader interface {
	io.Reader
	io.ByteReader
}

// NewReader returns a Reader from r; if r already implements it, it is simply
// returned. Otherwise bufio.Reader is used to provide byte reading around the
// given reader. A nil reader is always at EOF.
// If r implements Name() string, so will the returned Reader.
func NewReader(r io.Reader) Reader {
	if r == nil {
		return emptyReader{}
	}
	if impl, ok := r.(Reader); ok {
		return impl
	}
	br := byteReader{r, bufio.NewReader(r)}
	if impl, ok := r.(interface{ Name() string }); ok {
		return namedByteReader{br, impl.Name()}
	}
	return br
}

type byteReader struct {
	io.Reader
	io.ByteReader
}

// Read goes through the buffer, so that it agrees with ReadByte.
func (br byteReader) Read(p []byte) (int, error) {
	return br.ByteReader.(*bufio.Reader).Read(p)
}

type namedByteReader struct {
	byteReader
	name string
}

func (nr namedByteReader) Name() string { return nr.name }

type emptyReader struct{}

func (emptyReader) Read(p []byte) (int, error) { return 0, io.EOF }
func (emptyReader) ReadByte() (byte, error)    { return 0, io.EOF }

// NameOf returns a descriptive name for any stream, for logging.
func NameOf(obj interface{}) string {
	if nom, ok := obj.(interface{ Name() string }); ok {
		return nom.Name()
	}
	if obj == nil {
		return "<nil>"
	}
	return fmt.Sprintf("<unnamed %T>", obj)
}
