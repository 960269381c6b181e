package core

import (
	"strconv"
	"strings"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/stream"
	"src.tide.sh/pkg/eval/vals"
)

// ParsePath parses a cell path written as a dotted string, like "a.0.b".
// Members that are decimal integers are list indices.
func ParsePath(s string) []vals.PathMember {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ".")
	path := make([]vals.PathMember, len(parts))
	for i, part := range parts {
		if n, err := strconv.Atoi(part); err == nil && n >= 0 {
			path[i] = vals.PathMember{Index: n, IsIndex: true}
		} else {
			path[i] = vals.PathMember{Name: part}
		}
	}
	return path
}

func pathArg(v vals.Value) ([]vals.PathMember, error) {
	switch v := v.(type) {
	case vals.String:
		return ParsePath(v.Val), nil
	case vals.Int:
		return []vals.PathMember{{Index: int(v.Val), IsIndex: true}}, nil
	}
	return nil, errs.ArgTypeMismatch{Command: "get", Param: "path", Want: "string or int", Got: vals.KindName(v)}
}

func get(_ *eval.Frame, call *eval.Call, input stream.Data) (stream.Data, error) {
	path, err := pathArg(call.Req("path"))
	if err != nil {
		return nil, err
	}
	if call.HasFlag("optional") {
		for i := range path {
			path[i].Optional = true
		}
	}
	v, err := stream.Collect(input)
	if err != nil {
		return nil, err
	}
	got, err := vals.FollowPath(v, path)
	if err != nil {
		return nil, err
	}
	return stream.Single{Value: got}, nil
}

func selectCmd(fm *eval.Frame, call *eval.Call, input stream.Data) (stream.Data, error) {
	cols := make([]string, len(call.Rest()))
	for i, col := range call.Rest() {
		cols[i] = vals.ToString(col)
	}
	return mapRecords(fm, input, "select", func(r vals.Record) (vals.Value, error) {
		var b vals.RecordBuilder
		for _, col := range cols {
			v, ok := r.Get(col)
			if !ok {
				return nil, errs.ColumnNotFound{Column: col}
			}
			b.Add(col, v)
		}
		return b.Record()
	})
}

func wrap(fm *eval.Frame, call *eval.Call, input stream.Data) (stream.Data, error) {
	col := vals.ToString(call.Req("column"))
	return mapInput(fm, input, func(v vals.Value) (vals.Value, error) {
		return new(vals.RecordBuilder).Add(col, v).Record()
	})
}

func columns(fm *eval.Frame, _ *eval.Call, input stream.Data) (stream.Data, error) {
	var names []string
	if single, ok := input.(stream.Single); ok {
		if r, ok := single.Value.(vals.Record); ok {
			names = r.Columns()
			return stringStream(fm, names), nil
		}
	}
	vs, err := stream.Drain(fm.Values(input))
	if err != nil {
		return nil, err
	}
	l := vals.NewList(vs...)
	if !vals.IsTable(l) {
		return nil, errs.InputTypeMismatch{Command: "columns", Want: "record or table", Got: vals.KindName(l)}
	}
	return stringStream(fm, vals.Columns(l)), nil
}

func stringStream(fm *eval.Frame, ss []string) *stream.Values {
	vs := make([]vals.Value, len(ss))
	for i, s := range ss {
		vs[i] = vals.String{Val: s, Ranging: diag.NoRange}
	}
	return stream.FromSlice(fm.Interrupts(), vs)
}

// Applies f to a single record, or to every record of any other input.
func mapRecords(fm *eval.Frame, input stream.Data, cmd string, f func(vals.Record) (vals.Value, error)) (stream.Data, error) {
	return mapInput(fm, input, func(v vals.Value) (vals.Value, error) {
		r, ok := v.(vals.Record)
		if !ok {
			return nil, errs.InputTypeMismatch{Command: cmd, Want: "record or table", Got: vals.KindName(v)}
		}
		return f(r)
	})
}
