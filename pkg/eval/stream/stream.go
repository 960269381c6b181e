// Package stream contains the data threaded between pipeline stages.
//
// A stage's input and output is a Data, which is one of four things: nothing,
// a single realized value, a lazy stream of values, or raw bytes from an
// external command. Streams are pulled by the consumer: a stage that only
// needs a few elements never forces its producer to make more.
//
// Both kinds of streams are single-pass. Once drained, they stay drained.
package stream

import (
	"io"
	"sync"

	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/vals"
)

// Data is the input or output of a pipeline stage. Its implementations are
// Empty, Single, *Values and *Bytes.
type Data interface {
	isData()
}

// Empty is the output of a stage that outputs nothing.
type Empty struct{}

// Single is one realized value.
type Single struct {
	Value vals.Value
}

func (Empty) isData()   {}
func (Single) isData()  {}
func (*Values) isData() {}
func (*Bytes) isData()  {}

// Puller produces the next element of a stream. It returns false when there
// are no more elements; a non-nil error also ends the stream.
type Puller func() (vals.Value, bool, error)

// Values is a lazy stream of values.
type Values struct {
	pull   Puller
	closer func()
	intr   <-chan struct{}

	done bool
	err  error
}

// NewValues makes a stream from a Puller. When intr is closed, the next pull
// fails with errs.ErrInterrupted. The closer, if not nil, is called once when
// the stream ends or is closed.
func NewValues(intr <-chan struct{}, pull Puller, closer func()) *Values {
	return &Values{pull: pull, closer: closer, intr: intr}
}

// FromSlice makes a stream that yields the given values.
func FromSlice(intr <-chan struct{}, vs []vals.Value) *Values {
	i := 0
	return NewValues(intr, func() (vals.Value, bool, error) {
		if i >= len(vs) {
			return nil, false, nil
		}
		i++
		return vs[i-1], true, nil
	}, nil)
}

// Next returns the next element, or false when the stream has ended. After
// it has returned false, Err tells whether the stream ended with an error.
func (s *Values) Next() (vals.Value, bool) {
	if s.done {
		return nil, false
	}
	if s.intr != nil {
		select {
		case <-s.intr:
			s.finish(errs.ErrInterrupted)
			return nil, false
		default:
		}
	}
	v, ok, err := s.pull()
	if err != nil {
		s.finish(err)
		return nil, false
	}
	if !ok {
		s.finish(nil)
		return nil, false
	}
	return v, true
}

// Err returns the error the stream ended with, if any.
func (s *Values) Err() error { return s.err }

// Close ends the stream early. It is safe to call Close several times, and
// on a stream that has already ended.
func (s *Values) Close() { s.finish(nil) }

func (s *Values) finish(err error) {
	if s.done {
		return
	}
	s.done = true
	s.err = err
	if s.closer != nil {
		s.closer()
	}
}

// Bytes is raw output of an external command.
type Bytes struct {
	mu    sync.Mutex
	r     io.ReadCloser
	taken bool
}

// NewBytes wraps a reader.
func NewBytes(r io.ReadCloser) *Bytes { return &Bytes{r: r} }

// Reader returns the underlying reader. Only the first call gets the actual
// reader; later calls get an empty one, since the bytes have been consumed
// by whoever called first.
func (b *Bytes) Reader() io.ReadCloser {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.taken {
		return io.NopCloser(eofReader{})
	}
	b.taken = true
	return b.r
}

// Close closes the underlying reader if nobody has taken it.
func (b *Bytes) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.taken {
		b.taken = true
		b.r.Close()
	}
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
