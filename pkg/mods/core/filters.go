package core

import (
	"sort"
	"strconv"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/stream"
	"src.tide.sh/pkg/eval/vals"
	"src.tide.sh/pkg/strutil"
)

func each(fm *eval.Frame, call *eval.Call, input stream.Data) (stream.Data, error) {
	f := call.Req("closure").(*eval.Closure)
	keepEmpty := call.HasFlag("keep-empty")
	in := fm.Values(input)
	return fm.Stream(func() (vals.Value, bool, error) {
		for {
			v, ok := in.Next()
			if !ok {
				return nil, false, in.Err()
			}
			out, err := fm.CallClosureValue(f, []vals.Value{v}, stream.Single{Value: v})
			if err != nil {
				return nil, false, err
			}
			if vals.IsNothing(out) && !keepEmpty {
				continue
			}
			return out, true, nil
		}
	}, in.Close), nil
}

func where(fm *eval.Frame, call *eval.Call, input stream.Data) (stream.Data, error) {
	f := call.Req("closure").(*eval.Closure)
	return stream.Filter(fm.Interrupts(), fm.Values(input), func(v vals.Value) (bool, error) {
		out, err := fm.CallClosureValue(f, []vals.Value{v}, stream.Single{Value: v})
		if err != nil {
			return false, err
		}
		b, ok := out.(vals.Bool)
		if !ok {
			return false, errs.TypeMismatch{What: "result of where", Valid: "bool", Got: vals.KindName(out)}
		}
		return b.Val, nil
	}), nil
}

// Scans an optional count, reporting whether it was given.
func count(call *eval.Call, name string) (int, bool, error) {
	if _, given := call.Opt(name); !given {
		return 0, false, nil
	}
	var n int
	if err := call.Scan(name, &n); err != nil {
		return 0, false, err
	}
	if n < 0 {
		return 0, false, errs.BadValue{What: name, Valid: "non-negative integer", Actual: strconv.Itoa(n)}
	}
	return n, true, nil
}

var errEmptyInput = errs.BadValue{What: "input", Valid: "at least one element", Actual: "empty"}

func first(fm *eval.Frame, call *eval.Call, input stream.Data) (stream.Data, error) {
	n, given, err := count(call, "n")
	if err != nil {
		return nil, err
	}
	in := fm.Values(input)
	if given {
		return stream.Take(fm.Interrupts(), in, n), nil
	}
	defer in.Close()
	v, ok := in.Next()
	if !ok {
		if err := in.Err(); err != nil {
			return nil, err
		}
		return nil, errEmptyInput
	}
	return stream.Single{Value: v}, nil
}

func skip(fm *eval.Frame, call *eval.Call, input stream.Data) (stream.Data, error) {
	n, given, err := count(call, "n")
	if err != nil {
		return nil, err
	}
	if !given {
		n = 1
	}
	return stream.Skip(fm.Interrupts(), fm.Values(input), n), nil
}

func last(fm *eval.Frame, call *eval.Call, input stream.Data) (stream.Data, error) {
	n, given, err := count(call, "n")
	if err != nil {
		return nil, err
	}
	keep := n
	if !given {
		keep = 1
	}
	in := fm.Values(input)
	var window []vals.Value
	for {
		v, ok := in.Next()
		if !ok {
			break
		}
		if keep == 0 {
			continue
		}
		if len(window) == keep {
			window = window[1:]
		}
		window = append(window, v)
	}
	if err := in.Err(); err != nil {
		return nil, err
	}
	if !given {
		if len(window) == 0 {
			return nil, errEmptyInput
		}
		return stream.Single{Value: window[0]}, nil
	}
	return stream.FromSlice(fm.Interrupts(), window), nil
}

func length(fm *eval.Frame, _ *eval.Call, input stream.Data) (stream.Data, error) {
	if single, ok := input.(stream.Single); ok {
		switch v := single.Value.(type) {
		case vals.Record:
			return stream.Single{Value: vals.Int{Val: int64(v.Len()), Ranging: diag.NoRange}}, nil
		case vals.Range:
			if v.Bounded {
				return stream.Single{Value: vals.Int{Val: v.Len(), Ranging: diag.NoRange}}, nil
			}
		}
	}
	in := fm.Values(input)
	var n int64
	for {
		if _, ok := in.Next(); !ok {
			break
		}
		n++
	}
	if err := in.Err(); err != nil {
		return nil, err
	}
	return stream.Single{Value: vals.Int{Val: n, Ranging: diag.NoRange}}, nil
}

func sortCmd(fm *eval.Frame, call *eval.Call, input stream.Data) (stream.Data, error) {
	vs, err := stream.Drain(fm.Values(input))
	if err != nil {
		return nil, err
	}
	keys := vs
	if by, given := call.GetFlag("by"); given {
		col := vals.ToString(by)
		keys = make([]vals.Value, len(vs))
		for i, v := range vs {
			if keys[i], err = vals.GetColumn(v, col); err != nil {
				return nil, err
			}
		}
	}
	reverse := call.HasFlag("reverse")
	order := make([]int, len(vs))
	for i := range order {
		order[i] = i
	}
	var cmpErr error
	sort.SliceStable(order, func(i, j int) bool {
		if cmpErr != nil {
			return false
		}
		c, err := vals.Cmp(keys[order[i]], keys[order[j]])
		if err != nil {
			cmpErr = err
			return false
		}
		if reverse {
			return c > 0
		}
		return c < 0
	})
	if cmpErr != nil {
		return nil, cmpErr
	}
	sorted := make([]vals.Value, len(vs))
	for i, k := range order {
		sorted[i] = vs[k]
	}
	return stream.FromSlice(fm.Interrupts(), sorted), nil
}

func reduce(fm *eval.Frame, call *eval.Call, input stream.Data) (stream.Data, error) {
	f := call.Req("closure").(*eval.Closure)
	numbered := call.HasFlag("numbered")
	in := fm.Values(input)
	defer in.Close()

	item := func(i int64, v vals.Value) vals.Value {
		if !numbered {
			return v
		}
		return new(vals.RecordBuilder).
			Add("index", vals.Int{Val: i, Ranging: diag.NoRange}).
			Add("item", v).MustRecord()
	}

	var i int64
	acc, folded := call.GetFlag("fold")
	if !folded {
		v, ok := in.Next()
		if !ok {
			if err := in.Err(); err != nil {
				return nil, err
			}
			return nil, errEmptyInput
		}
		acc = v
		i++
	}
	for {
		v, ok := in.Next()
		if !ok {
			break
		}
		acc = unnumbered(acc)
		var err error
		acc, err = fm.CallClosureValue(f, []vals.Value{item(i, v), acc}, stream.Single{Value: acc})
		if err != nil {
			return nil, err
		}
		i++
	}
	if err := in.Err(); err != nil {
		return nil, err
	}
	return stream.Single{Value: acc}, nil
}

// Unwraps an accumulator that is exactly an {index, item} record, so that a
// closure returning its numbered argument keeps reducing over items.
func unnumbered(acc vals.Value) vals.Value {
	r, ok := acc.(vals.Record)
	if !ok {
		return acc
	}
	if cols := r.Columns(); len(cols) == 2 && cols[0] == "index" && cols[1] == "item" {
		return r.Values()[1]
	}
	return acc
}

func lines(fm *eval.Frame, _ *eval.Call, input stream.Data) (stream.Data, error) {
	if b, ok := input.(*stream.Bytes); ok {
		return stream.Lines(fm.Interrupts(), b), nil
	}
	in := fm.Values(input)
	var pending []string
	return fm.Stream(func() (vals.Value, bool, error) {
		for len(pending) == 0 {
			v, ok := in.Next()
			if !ok {
				return nil, false, in.Err()
			}
			s, ok := v.(vals.String)
			if !ok {
				return nil, false, errs.TypeMismatch{What: "input of lines", Valid: "string", Got: vals.KindName(v)}
			}
			pending = strutil.SplitLines(s.Val)
		}
		line := pending[0]
		pending = pending[1:]
		return vals.String{Val: line, Ranging: diag.NoRange}, true, nil
	}, in.Close), nil
}

func collect(fm *eval.Frame, call *eval.Call, input stream.Data) (stream.Data, error) {
	vs, err := stream.Drain(fm.Values(input))
	if err != nil {
		return nil, err
	}
	l := vals.NewList(vs...)
	if f, given := call.Opt("closure"); given {
		return fm.CallClosure(f.(*eval.Closure), []vals.Value{l}, stream.Single{Value: l})
	}
	return stream.Single{Value: l}, nil
}
