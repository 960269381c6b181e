package eval

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"src.tide.sh/pkg/eval/stream"
	"src.tide.sh/pkg/eval/vals"
)

// The standard files of an evaluation.
type ports struct {
	stdin  *os.File
	stdout io.Writer
	stderr io.Writer
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Adapts a stream of values to an io.Reader, writing the string form of each
// value followed by a newline.
type valuesReader struct {
	values *stream.Values
	buf    []byte
}

func newValuesReader(vs *stream.Values) *valuesReader {
	return &valuesReader{values: vs}
}

func (r *valuesReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		v, ok := r.values.Next()
		if !ok {
			if err := r.values.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		r.buf = append(r.buf, vals.ToString(v)...)
		r.buf = append(r.buf, '\n')
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

func (r *valuesReader) Close() error {
	r.values.Close()
	return nil
}
