package eval

import (
	"errors"
	"io"
	"sync"

	"src.tide.sh/pkg/ast"
	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/errutil"
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/stream"
	"src.tide.sh/pkg/eval/vals"
)

// The state of a running pipeline: the external processes it started and
// the streams to close when it ends.
type pipeline struct {
	fm *Frame
	// Whether the stage being started is the last one.
	last bool

	// Called before waiting for processes, so that no process is blocked
	// writing to a pipe nobody reads. Only byte streams go here.
	closers []func()
	// Called after waiting for processes. Value streams go here: the stdin
	// of a process may be copied from a value stream whose upstream reaches
	// any earlier stage, and cmd.Wait returns only once that copy is done.
	after []func()
	procs []*process

	waitOnce sync.Once
	waitErr  error
}

// Evaluates a pipeline. Internal stages are connected by lazy streams, so a
// stage only computes what later stages pull. External stages run
// concurrently, connected by OS pipes.
//
// Errors from external commands are reported when the pipeline ends: right
// away if the output is a value, or when the output stream is exhausted if
// it is lazy.
func (fm *Frame) evalPipeline(p *ast.Pipeline, capture bool) (stream.Data, error) {
	if len(p.Stages) == 0 {
		return stream.Empty{}, nil
	}
	pl := &pipeline{fm: fm}
	var data stream.Data
	for i, stage := range p.Stages {
		pl.last = i == len(p.Stages)-1
		in := fm.in
		if i > 0 {
			in = newInput(data)
		}
		out, err := pl.runStage(stage, in, i == 0, pl.last && !capture)
		if err != nil {
			return nil, pl.waitWith(err)
		}
		data = out
	}
	return pl.finish(data)
}

func (pl *pipeline) runStage(stage ast.Stage, in *input, first, direct bool) (stream.Data, error) {
	fm := pl.fm.fork()
	fm.in = in
	switch s := stage.(type) {
	case *ast.InternalCall:
		cmd, err := fm.LookupCommand(s.Name)
		if err != nil {
			return nil, fm.errorp(s, err)
		}
		args, err := fm.evalArgs(s.Args)
		if err != nil {
			return nil, err
		}
		call, err := fm.bind(cmd.Signature(), s.Range(), args)
		if err != nil {
			return nil, err
		}
		return pl.runCommand(fm, s, cmd, call, in.take())
	case *ast.ClosureCall:
		callee, err := fm.evalExpr(s.Callee)
		if err != nil {
			return nil, err
		}
		c, ok := callee.(*Closure)
		if !ok {
			return nil, fm.errorp(s.Callee, errs.TypeMismatch{What: "callee", Want: "closure", Got: vals.KindName(callee)})
		}
		args, err := fm.evalArgs(s.Args)
		if err != nil {
			return nil, err
		}
		call, err := fm.bind(c.sig, s.Range(), args)
		if err != nil {
			return nil, err
		}
		return pl.runCommand(fm, s, c, call, in.take())
	case *ast.BlockStage:
		return pl.runBlock(fm, s.Body, in.take())
	case *ast.ExprStage:
		// A subexpression is an expression too: its output is collected, and
		// it sees the stage input only through $in.
		v, err := fm.evalExpr(s.Expr)
		pl.discard(in.take())
		if err != nil {
			return nil, err
		}
		return single(v), nil
	case *ast.ExternalCall:
		return pl.runExternal(fm, s, in.take(), first, direct)
	}
	return nil, fm.errorp(stage, errs.ParseHandoffError{Message: "unknown pipeline stage"})
}

// Runs a block literal with the stage input as its $in.
func (pl *pipeline) runBlock(fm *Frame, body *ast.Block, input stream.Data) (stream.Data, error) {
	pl.track(input)
	return fm.withInput(input).evalBlockIn(body, NewScope(fm.scope), true)
}

func (pl *pipeline) runCommand(fm *Frame, r diag.Ranger, cmd Command, call *Call, input stream.Data) (stream.Data, error) {
	sig := cmd.Signature()
	input, err := adaptInput(fm, sig, input)
	if err != nil {
		return nil, fm.errorp(r, err)
	}
	pl.track(input)
	if isUserCode(cmd) {
		fm = fm.withCall(r)
	}
	out, err := cmd.Run(fm, call, input)
	if err != nil {
		return nil, fm.errorp(r, err)
	}
	if out == nil {
		out = stream.Empty{}
	}
	return out, nil
}

func isUserCode(cmd Command) bool {
	if r, ok := cmd.(registered); ok {
		cmd = r.Command
	}
	switch cmd.(type) {
	case *Closure, *defCommand:
		return true
	}
	return false
}

// Converts the input of a command to what its signature expects. Bytes
// become lines, or a single string or binary value for commands taking
// strings or binaries. A single value must match the input shape.
func adaptInput(fm *Frame, sig *Signature, input stream.Data) (stream.Data, error) {
	switch in := input.(type) {
	case *stream.Bytes:
		switch sig.In {
		case ShapeString, ShapeBinary:
			bs, err := stream.ReadAll(in)
			if err != nil {
				return nil, err
			}
			if sig.In == ShapeString {
				return stream.Single{Value: vals.String{Val: string(bs), Ranging: diag.NoRange}}, nil
			}
			return stream.Single{Value: vals.Binary{Val: bs, Ranging: diag.NoRange}}, nil
		}
		return fm.Values(in), nil
	case stream.Single:
		if sig.In != ShapeAny && !sig.In.Accepts(in.Value) {
			return nil, errs.InputTypeMismatch{Command: sig.Name, Want: sig.In.String(),
				Got: vals.KindName(in.Value)}
		}
	}
	return input, nil
}

// Registers a stream to be closed when the pipeline ends.
func (pl *pipeline) track(d stream.Data) {
	switch d := d.(type) {
	case *stream.Values:
		pl.after = append(pl.after, d.Close)
	case *stream.Bytes:
		pl.closers = append(pl.closers, d.Close)
	}
}

// Closes a stream nobody is going to read.
func (pl *pipeline) discard(d stream.Data) {
	switch d := d.(type) {
	case *stream.Values:
		d.Close()
	case *stream.Bytes:
		d.Close()
	}
}

// Ends the pipeline once its output has been consumed.
func (pl *pipeline) finish(out stream.Data) (stream.Data, error) {
	switch out := out.(type) {
	case *stream.Values:
		return pl.fm.Stream(func() (vals.Value, bool, error) {
			v, ok := out.Next()
			if ok {
				return v, true, nil
			}
			return nil, false, pl.waitWith(out.Err())
		}, func() {
			out.Close()
			pl.wait()
		}), nil
	case *stream.Bytes:
		return stream.NewBytes(&waitReader{out.Reader(), pl}), nil
	}
	if err := pl.wait(); err != nil {
		return nil, err
	}
	if out == nil {
		return stream.Empty{}, nil
	}
	return out, nil
}

// Closes intermediate streams and waits for all processes. Only the first
// call does anything; later calls return the same error.
func (pl *pipeline) wait() error {
	pl.waitOnce.Do(func() {
		for _, f := range pl.closers {
			f()
		}
		procErrs := make([]error, 0, len(pl.procs))
		for _, p := range pl.procs {
			if err := p.wait(); err != nil {
				procErrs = append(procErrs, pl.fm.errorp(p.span, err))
			}
		}
		for _, f := range pl.after {
			f()
		}
		pl.waitErr = errutil.Multi(procErrs...)
	})
	return pl.waitErr
}

// Waits for the pipeline and combines the result with err. A stage that read
// the output of an external command may already have got the wait error at
// EOF, in which case it is not repeated.
func (pl *pipeline) waitWith(err error) error {
	waitErr := pl.wait()
	if err != nil && waitErr != nil && errors.Is(err, waitErr) {
		return err
	}
	return errutil.Multi(err, waitErr)
}

// Reads the output of a pipeline whose last stage is external. The pipeline
// is waited for at EOF, and its error takes the place of io.EOF.
type waitReader struct {
	r  io.ReadCloser
	pl *pipeline
}

func (wr *waitReader) Read(p []byte) (int, error) {
	n, err := wr.r.Read(p)
	if err == io.EOF {
		if waitErr := wr.pl.wait(); waitErr != nil {
			return n, waitErr
		}
	}
	return n, err
}

func (wr *waitReader) Close() error {
	err := wr.r.Close()
	wr.pl.wait()
	return err
}
