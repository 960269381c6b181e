package eval

import (
	"io"
	"sync"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval/stream"
	"src.tide.sh/pkg/eval/vals"
)

// Frame contains information of the current running code, akin to a call
// frame in native CPU execution. A Frame is only modified during and very
// shortly after creation; new Frames are "forked" when needed.
type Frame struct {
	*Evaler

	src   diag.Source
	scope *Scope
	in    *input

	intr  <-chan struct{}
	ports ports

	traceback *StackTrace
}

// Returns a copy of fm. Fields are copied shallowly.
func (fm *Frame) fork() *Frame {
	newFm := *fm
	return &newFm
}

// Returns a copy of fm evaluating in the given scope.
func (fm *Frame) withScope(s *Scope) *Frame {
	newFm := fm.fork()
	newFm.scope = s
	return newFm
}

// Returns a copy of fm whose $in is backed by the given stream.
func (fm *Frame) withInput(d stream.Data) *Frame {
	newFm := fm.fork()
	newFm.in = newInput(d)
	return newFm
}

// Returns a copy of fm with the call at r pushed onto the traceback.
func (fm *Frame) withCall(r diag.Ranger) *Frame {
	newFm := fm.fork()
	newFm.traceback = fm.addTraceback(r)
	return newFm
}

// Stdout returns the writer for the byte output that goes straight to the
// session.
func (fm *Frame) Stdout() io.Writer { return fm.ports.stdout }

// Stderr returns the writer for diagnostic output.
func (fm *Frame) Stderr() io.Writer { return fm.ports.stderr }

// Stream creates a lazy stream of values that stops when the evaluation is
// interrupted. The closer, if not nil, is called once the stream is
// exhausted or closed.
func (fm *Frame) Stream(pull stream.Puller, closer func()) *stream.Values {
	return stream.NewValues(fm.intr, pull, closer)
}

// Values converts pipeline data to a stream of values. Lists and ranges are
// iterated, and bytes are split into lines.
func (fm *Frame) Values(d stream.Data) *stream.Values {
	return stream.IntoValues(fm.intr, d)
}

// Input returns the value of $in in this frame.
func (fm *Frame) Input() (vals.Value, error) {
	return fm.in.value()
}

func (fm *Frame) addTraceback(r diag.Ranger) *StackTrace {
	return &StackTrace{
		Head: diag.NewContext(fm.src, r),
		Next: fm.traceback,
	}
}

// Returns an Exception with specified range and cause. Flows and errors that
// are already exceptions are returned unchanged.
func (fm *Frame) errorp(r diag.Ranger, err error) error {
	switch err.(type) {
	case nil:
		return nil
	case *Exception, *Flow:
		return err
	default:
		return &Exception{err, fm.addTraceback(r)}
	}
}

// The input of a block. The first stage of the block's first pipeline takes
// the stream; reading $in collects it. Whichever happens first wins: once $in
// is realized the stage gets the collected value, and once the stage has
// taken the stream $in is nothing.
type input struct {
	// If not nil, $in is read from the parent and the stream can't be taken.
	parent *input

	mu       sync.Mutex
	data     stream.Data
	taken    bool
	realized bool
	val      vals.Value
	err      error
}

func newInput(d stream.Data) *input { return &input{data: d} }

// Returns an input for a subexpression, which sees the same $in but doesn't
// get the stream.
func (in *input) nested() *input { return &input{parent: in} }

func (in *input) take() stream.Data {
	if in.parent != nil {
		return stream.Empty{}
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	switch {
	case in.realized:
		if in.err != nil || vals.IsNothing(in.val) {
			return stream.Empty{}
		}
		return stream.Single{Value: in.val}
	case in.taken:
		return stream.Empty{}
	}
	in.taken = true
	return in.data
}

func (in *input) value() (vals.Value, error) {
	if in.parent != nil {
		return in.parent.value()
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	if !in.realized {
		in.realized = true
		if in.taken {
			in.val = vals.Nothing{Ranging: diag.NoRange}
		} else {
			in.val, in.err = stream.Collect(in.data)
		}
	}
	return in.val, in.err
}
