// Package math contains the math commands. Functions of one number map over
// their input; aggregates reduce their input to one value.
package math

import (
	"math"
	"strconv"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/stream"
	"src.tide.sh/pkg/eval/vals"
)

// Commands contains the math commands.
var Commands = []eval.Command{
	mapper("math abs", "Outputs the absolute value.", abs),
	mapper("math ceil", "Outputs the least integer not less than the input.",
		integerize(math.Ceil)),
	mapper("math floor", "Outputs the greatest integer not greater than the input.",
		integerize(math.Floor)),
	mapper("math sqrt", "Outputs the square root.", func(v vals.Value) (vals.Value, error) {
		f, _ := vals.ToFloat(v)
		if f < 0 {
			return nil, errs.BadValue{What: "input to math sqrt", Valid: "non-negative number",
				Actual: strconv.FormatFloat(f, 'g', -1, 64)}
		}
		return vals.Float{Val: math.Sqrt(f), Ranging: diag.NoRange}, nil
	}),
	eval.CommandFunc(eval.NewSignature("math round").
		Usage("Rounds half away from zero, to an int or to a number of decimal places.").
		Named("precision", 'p', eval.ShapeInt, "decimal places to keep"),
		round),
	aggregate("math sum", "Outputs the sum of the input. An empty input sums to 0.", sum),
	aggregate("math max", "Outputs the greatest element of the input.", extreme(1)),
	aggregate("math min", "Outputs the least element of the input.", extreme(-1)),
	aggregate("math avg", "Outputs the mean of the input.", avg),
}

const (
	maxInt = math.MaxInt64
	minInt = math.MinInt64
)

// Applies f to every number of the input.
func mapNumbers(fm *eval.Frame, cmd string, input stream.Data, f func(vals.Value) (vals.Value, error)) (stream.Data, error) {
	g := func(v vals.Value) (vals.Value, error) {
		switch v.(type) {
		case vals.Int, vals.Float:
			return f(v)
		}
		return nil, errs.InputTypeMismatch{Command: cmd, Want: "number", Got: vals.KindName(v)}
	}
	if single, ok := input.(stream.Single); ok {
		switch single.Value.(type) {
		case vals.List, vals.Range:
		default:
			v, err := g(single.Value)
			if err != nil {
				return nil, err
			}
			return stream.Single{Value: v}, nil
		}
	}
	return stream.Map(fm.Interrupts(), fm.Values(input), g), nil
}

func mapper(name, usage string, f func(vals.Value) (vals.Value, error)) eval.Command {
	return eval.CommandFunc(eval.NewSignature(name).Usage(usage),
		func(fm *eval.Frame, _ *eval.Call, input stream.Data) (stream.Data, error) {
			return mapNumbers(fm, name, input, f)
		})
}

func abs(v vals.Value) (vals.Value, error) {
	switch v := v.(type) {
	case vals.Int:
		if v.Val == minInt {
			return nil, errs.Overflow{Op: "math abs"}
		}
		if v.Val < 0 {
			return vals.Int{Val: -v.Val, Ranging: v.Ranging}, nil
		}
		return v, nil
	case vals.Float:
		return vals.Float{Val: math.Abs(v.Val), Ranging: v.Ranging}, nil
	}
	panic("unreachable")
}

// Rounds a number with fn. Ints are left as they are; floats that fit are
// converted to ints.
func integerize(fn func(float64) float64) func(vals.Value) (vals.Value, error) {
	return func(v vals.Value) (vals.Value, error) {
		switch v := v.(type) {
		case vals.Int:
			return v, nil
		case vals.Float:
			f := fn(v.Val)
			if math.IsNaN(f) || math.IsInf(f, 0) || f < minInt || f >= maxInt {
				return vals.Float{Val: f, Ranging: v.Ranging}, nil
			}
			return vals.Int{Val: int64(f), Ranging: v.Ranging}, nil
		}
		panic("unreachable")
	}
}

func round(fm *eval.Frame, call *eval.Call, input stream.Data) (stream.Data, error) {
	if _, given := call.GetFlag("precision"); !given {
		return mapNumbers(fm, "math round", input, integerize(math.Round))
	}
	var places int
	if err := call.Scan("precision", &places); err != nil {
		return nil, err
	}
	scale := math.Pow(10, float64(places))
	return mapNumbers(fm, "math round", input, func(v vals.Value) (vals.Value, error) {
		f, _ := vals.ToFloat(v)
		return vals.Float{Val: math.Round(f*scale) / scale, Ranging: v.Range()}, nil
	})
}

func aggregate(name, usage string, f func([]vals.Value) (vals.Value, error)) eval.Command {
	return eval.CommandFunc(eval.NewSignature(name).Usage(usage),
		func(fm *eval.Frame, _ *eval.Call, input stream.Data) (stream.Data, error) {
			vs, err := stream.Drain(fm.Values(input))
			if err != nil {
				return nil, err
			}
			v, err := f(vs)
			if err != nil {
				return nil, err
			}
			return stream.Single{Value: v}, nil
		})
}

var errNoNumbers = errs.BadValue{What: "input", Valid: "at least one element", Actual: "empty"}

func sum(vs []vals.Value) (vals.Value, error) {
	var acc vals.Value = vals.Int{Val: 0, Ranging: diag.NoRange}
	for i, v := range vs {
		if i == 0 {
			acc = v
			continue
		}
		var err error
		if acc, err = vals.BinaryOp("+", acc, v); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// Returns the element that compares as sign against all others.
func extreme(sign int) func([]vals.Value) (vals.Value, error) {
	return func(vs []vals.Value) (vals.Value, error) {
		if len(vs) == 0 {
			return nil, errNoNumbers
		}
		best := vs[0]
		for _, v := range vs[1:] {
			c, err := vals.Cmp(v, best)
			if err != nil {
				return nil, err
			}
			if c*sign > 0 {
				best = v
			}
		}
		return best, nil
	}
}

func avg(vs []vals.Value) (vals.Value, error) {
	if len(vs) == 0 {
		return nil, errNoNumbers
	}
	total, err := sum(vs)
	if err != nil {
		return nil, err
	}
	if i, ok := total.(vals.Int); ok {
		return vals.Float{Val: float64(i.Val) / float64(len(vs)), Ranging: diag.NoRange}, nil
	}
	return vals.BinaryOp("/", total, vals.Int{Val: int64(len(vs)), Ranging: diag.NoRange})
}
