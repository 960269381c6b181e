package vals

import (
	"math"
	"testing"
	"time"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/tt"
)

var date = Date{Val: time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC), Ranging: diag.NoRange}

func TestBinaryOp(t *testing.T) {
	tt.Test(t, tt.Fn("BinaryOp", BinaryOp), tt.Table{
		tt.Args("+", i(1), i(2)).Rets(i(3), nil),
		tt.Args("+", i(1), f(0.5)).Rets(f(1.5), nil),
		tt.Args("+", f(0.5), i(1)).Rets(f(1.5), nil),
		tt.Args("+", i(math.MaxInt64), i(1)).Rets(nil, errs.Overflow{Op: "+"}),
		tt.Args("-", i(math.MinInt64), i(1)).Rets(nil, errs.Overflow{Op: "-"}),
		tt.Args("*", i(math.MaxInt64/2+1), i(2)).Rets(nil, errs.Overflow{Op: "*"}),
		tt.Args("*", i(-3), i(4)).Rets(i(-12), nil),
		tt.Args("+", s("foo"), s("bar")).Rets(s("foobar"), nil),
		tt.Args("+", s("foo"), i(1)).Rets(nil,
			errs.IncompatibleOperands{Op: "+", Left: "string", Right: "int"}),

		tt.Args("/", i(6), i(3)).Rets(i(2), nil),
		tt.Args("/", i(7), i(2)).Rets(f(3.5), nil),
		tt.Args("/", i(1), i(0)).Rets(nil, errs.DivideByZero{}),
		tt.Args("/", f(1), i(0)).Rets(nil, errs.DivideByZero{}),
		tt.Args("//", i(7), i(2)).Rets(i(3), nil),
		tt.Args("//", i(-7), i(2)).Rets(i(-4), nil),
		tt.Args("//", f(7.5), i(2)).Rets(f(3), nil),
		tt.Args("mod", i(7), i(3)).Rets(i(1), nil),
		tt.Args("mod", i(-7), i(3)).Rets(i(2), nil),
		tt.Args("mod", i(7), i(0)).Rets(nil, errs.DivideByZero{}),
		tt.Args("**", i(2), i(10)).Rets(i(1024), nil),
		tt.Args("**", i(2), i(-1)).Rets(f(0.5), nil),
		tt.Args("**", i(2), i(64)).Rets(nil, errs.Overflow{Op: "**"}),

		tt.Args("+", dur(time.Second), dur(time.Minute)).Rets(dur(61*time.Second), nil),
		tt.Args("*", dur(time.Second), i(3)).Rets(dur(3*time.Second), nil),
		tt.Args("*", i(3), dur(time.Second)).Rets(dur(3*time.Second), nil),
		tt.Args("*", dur(time.Second), f(1.5)).Rets(dur(1500*time.Millisecond), nil),
		tt.Args("/", dur(time.Minute), i(4)).Rets(dur(15*time.Second), nil),
		tt.Args("/", dur(time.Minute), dur(time.Second)).Rets(f(60), nil),
		tt.Args("+", dur(time.Second), size(1)).Rets(nil,
			errs.IncompatibleOperands{Op: "+", Left: "duration", Right: "filesize"}),
		tt.Args("+", dur(time.Second), i(1)).Rets(nil,
			errs.IncompatibleOperands{Op: "+", Left: "duration", Right: "int"}),
		tt.Args("+", size(1024), size(1024)).Rets(size(2048), nil),
		tt.Args("*", size(1024), i(2)).Rets(size(2048), nil),
		tt.Args("-", size(10), size(4)).Rets(size(6), nil),
		tt.Args("mod", size(10), size(4)).Rets(size(2), nil),

		tt.Args("+", date, dur(time.Hour)).Rets(
			Date{Val: date.Val.Add(time.Hour), Ranging: diag.NoRange}, nil),
		tt.Args("-", date, date).Rets(dur(0), nil),

		tt.Args("++", list(i(1)), list(i(2))).Rets(list(i(1), i(2)), nil),
		tt.Args("++", s("a"), s("b")).Rets(s("ab"), nil),

		tt.Args("==", i(1), f(1)).Rets(b(true), nil),
		tt.Args("!=", s("a"), s("b")).Rets(b(true), nil),
		tt.Args("==", i(1), Nothing{}).Rets(b(false), nil),
		tt.Args("==", i(1), s("1")).Rets(nil,
			errs.IncompatibleOperands{Op: "==", Left: "int", Right: "string"}),
		tt.Args("<", i(1), f(1.5)).Rets(b(true), nil),
		tt.Args(">=", s("b"), s("a")).Rets(b(true), nil),
		tt.Args("<", i(1), s("a")).Rets(nil,
			errs.IncompatibleOperands{Op: "<", Left: "int", Right: "string"}),

		tt.Args("and", b(true), b(false)).Rets(b(false), nil),
		tt.Args("or", b(true), b(false)).Rets(b(true), nil),
		tt.Args("xor", b(true), b(true)).Rets(b(false), nil),
		tt.Args("and", b(true), i(1)).Rets(nil,
			errs.IncompatibleOperands{Op: "and", Left: "bool", Right: "int"}),

		tt.Args("in", i(2), list(i(1), i(2))).Rets(b(true), nil),
		tt.Args("not-in", i(3), list(i(1), i(2))).Rets(b(true), nil),
		tt.Args("in", s("ell"), s("hello")).Rets(b(true), nil),
		tt.Args("in", s("a"), rec("a", 1)).Rets(b(true), nil),
		tt.Args("in", i(4), Range{Start: 0, Step: 2, End: 10, Bounded: true}).Rets(b(true), nil),
		tt.Args("starts-with", s("foobar"), s("foo")).Rets(b(true), nil),
		tt.Args("ends-with", s("foobar"), s("foo")).Rets(b(false), nil),
		tt.Args("=~", s("foobar"), s("o+b")).Rets(b(true), nil),
		tt.Args("!~", s("foobar"), s("^b")).Rets(b(true), nil),
	})
}

func TestUnaryOp(t *testing.T) {
	tt.Test(t, tt.Fn("UnaryOp", UnaryOp), tt.Table{
		tt.Args("-", i(3)).Rets(i(-3), nil),
		tt.Args("-", f(1.5)).Rets(f(-1.5), nil),
		tt.Args("-", dur(time.Second)).Rets(dur(-time.Second), nil),
		tt.Args("-", i(math.MinInt64)).Rets(nil, errs.Overflow{Op: "negation"}),
		tt.Args("not", b(true)).Rets(b(false), nil),
		tt.Args("not", i(1)).Rets(nil,
			errs.TypeMismatch{What: "operand of not", Valid: "bool", Got: "int"}),
		tt.Args("-", s("x")).Rets(nil, errs.TypeMismatch{What: "operand of -",
			Valid: "number, duration or filesize", Got: "string"}),
	})
}
