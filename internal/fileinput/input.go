package fileinput

import (
	"fmt"
	"io"

	"github.com/jcorbin/bfjit/internal/byteio"
)

// Location names a line in an Input stream.
type Location struct {
	Name string
	Line int
}

func (loc Location) String() string { return fmt.Sprintf("%v:%v", loc.Name, loc.Line) }

// Input implements sequential byte reading through a Queue of one or more
// input streams, tracking the location of the last byte read so that
// program input may be reported back to the user.
type Input struct {
	br    byteio.Reader
	cl    io.Closer
	Queue []io.Reader

	// Loc is the location of the next byte read, while Total counts all bytes
	// read so far.
	Loc   Location
	Total int
}

// ReadByte reads one byte from the current input stream, advancing through
// the Queue at EOF; streams that implement io.Closer are closed once drained.
func (in *Input) ReadByte() (byte, error) {
	for {
		if in.br == nil && !in.nextIn() {
			return 0, io.EOF
		}
		b, err := in.br.ReadByte()
		if err == nil {
			in.Total++
			if b == '\n' {
				in.Loc.Line++
			}
			return b, nil
		}
		if err != io.EOF {
			return 0, fmt.Errorf("%v: %w", in.Loc, err)
		}
		if !in.nextIn() {
			return 0, io.EOF
		}
	}
}

// Read fills p through ReadByte, crossing stream boundaries as needed.
func (in *Input) Read(p []byte) (n int, err error) {
	for n < len(p) {
		var b byte
		if b, err = in.ReadByte(); err != nil {
			break
		}
		p[n] = b
		n++
	}
	if n > 0 && err == io.EOF {
		err = nil
	}
	return n, err
}

// Close closes the current stream and any remaining queued streams.
func (in *Input) Close() (err error) {
	for in.br != nil || len(in.Queue) > 0 {
		if cerr := in.closeCurrent(); err == nil {
			err = cerr
		}
		in.nextIn()
	}
	return err
}

func (in *Input) closeCurrent() (err error) {
	if in.cl != nil {
		err = in.cl.Close()
	}
	in.br, in.cl = nil, nil
	return err
}

func (in *Input) nextIn() bool {
	in.closeCurrent()
	if len(in.Queue) > 0 {
		r := in.Queue[0]
		in.Queue = in.Queue[1:]
		in.br = byteio.NewReader(r)
		in.cl, _ = r.(io.Closer)
		in.Loc = Location{byteio.NameOf(r), 1}
	}
	return in.br != nil
}
