package core

import (
	"errors"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/stream"
	"src.tide.sh/pkg/eval/vals"
)

func echo(_ *eval.Frame, call *eval.Call, _ stream.Data) (stream.Data, error) {
	args := call.Rest()
	switch len(args) {
	case 0:
		return stream.Empty{}, nil
	case 1:
		return stream.Single{Value: args[0]}, nil
	}
	return stream.Single{Value: vals.NewList(args...)}, nil
}

func ignore(_ *eval.Frame, _ *eval.Call, input stream.Data) (stream.Data, error) {
	return stream.Empty{}, stream.Discard(input)
}

func describe(_ *eval.Frame, _ *eval.Call, input stream.Data) (stream.Data, error) {
	v, err := stream.Collect(input)
	if err != nil {
		return nil, err
	}
	return stream.Single{Value: vals.String{Val: vals.KindName(v), Ranging: diag.NoRange}}, nil
}

func do(fm *eval.Frame, call *eval.Call, input stream.Data) (stream.Data, error) {
	f := call.Req("closure").(*eval.Closure)
	out, err := fm.CallClosure(f, call.Rest(), input)
	if err == nil {
		if !call.HasFlag("ignore-errors") && !call.HasFlag("capture-errors") {
			return out, nil
		}
		// Realize the output so that failures of lazy stages are seen here.
		var v vals.Value
		v, err = stream.Collect(out)
		if err == nil {
			return stream.Single{Value: v}, nil
		}
	}
	var flow *eval.Flow
	if errors.As(err, &flow) {
		return nil, err
	}
	switch {
	case call.HasFlag("capture-errors"):
		return stream.Single{Value: vals.Error{Err: eval.Reason(err), Ranging: diag.NoRange}}, nil
	case call.HasFlag("ignore-errors"):
		logger.Println("do: ignoring", err)
		return stream.Empty{}, nil
	}
	return nil, err
}

// UserError is raised by error make.
type UserError struct {
	Msg string
	// Label, if not empty, describes the culprit.
	Label string
}

func (e UserError) Error() string {
	if e.Label != "" {
		return e.Msg + ": " + e.Label
	}
	return e.Msg
}

func errorMake(_ *eval.Frame, call *eval.Call, _ stream.Data) (stream.Data, error) {
	r := call.Req("error").(vals.Record)
	msg, ok := r.Get("msg")
	if !ok {
		return nil, errs.ColumnNotFound{Column: "msg"}
	}
	if _, ok := msg.(vals.String); !ok {
		return nil, errs.TypeMismatch{What: "msg of error make", Valid: "string", Got: vals.KindName(msg)}
	}
	e := UserError{Msg: vals.ToString(msg)}
	if label, ok := r.Get("label"); ok {
		e.Label = vals.ToString(label)
	}
	return nil, e
}
