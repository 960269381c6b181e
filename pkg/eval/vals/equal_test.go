package vals

import (
	"math"
	"testing"
	"time"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/tt"
)

var equalitySamples = []Value{
	Nothing{Ranging: diag.NoRange},
	b(true), b(false),
	i(0), i(1), i(-7), f(1), f(1.5), f(math.NaN()),
	s(""), s("foo"),
	Binary{Val: []byte("ab"), Ranging: diag.NoRange},
	Date{Val: time.Date(2022, 3, 4, 5, 6, 7, 0, time.UTC), Ranging: diag.NoRange},
	dur(time.Second), size(1024),
	Range{Start: 0, Step: 1, End: 5, Bounded: true, Ranging: diag.NoRange},
	list(), list(i(1), s("x")),
	rec(), rec("a", 1, "b", "x"), rec("b", "x", "a", 1),
	Error{Err: errTest("boom"), Ranging: diag.NoRange},
}

type errTest string

func (e errTest) Error() string { return string(e) }

func TestEqual_Reflexive(t *testing.T) {
	for _, v := range equalitySamples {
		if !Equal(v, v) {
			t.Errorf("Equal(%s, %s) = false", Repr(v), Repr(v))
		}
	}
}

func TestEqual_Symmetric(t *testing.T) {
	for _, a := range equalitySamples {
		for _, b := range equalitySamples {
			if Equal(a, b) != Equal(b, a) {
				t.Errorf("Equal(%s, %s) != Equal(%s, %s)", Repr(a), Repr(b), Repr(b), Repr(a))
			}
		}
	}
}

func TestEqual_Transitive(t *testing.T) {
	for _, a := range equalitySamples {
		for _, b := range equalitySamples {
			for _, c := range equalitySamples {
				if Equal(a, b) && Equal(b, c) && !Equal(a, c) {
					t.Errorf("%s == %s == %s but not %s == %s",
						Repr(a), Repr(b), Repr(c), Repr(a), Repr(c))
				}
			}
		}
	}
}

func TestEqual_IntFloatCoercion(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 42, 1 << 40, -(1 << 52)} {
		if !Equal(i(n), f(float64(n))) {
			t.Errorf("Int(%d) != Float(%d)", n, n)
		}
	}
}

func TestEqual_LargeIntFloat(t *testing.T) {
	const big = 1 << 53
	// float64(big+1) rounds to big.
	samples := []Value{i(big), i(big + 1), f(big), f(big + 2),
		i(math.MaxInt64), f(math.MaxInt64), i(math.MinInt64), f(math.MinInt64)}
	for _, a := range samples {
		for _, b := range samples {
			for _, c := range samples {
				if Equal(a, b) && Equal(b, c) && !Equal(a, c) {
					t.Errorf("%s == %s == %s but not %s == %s",
						Repr(a), Repr(b), Repr(c), Repr(a), Repr(c))
				}
			}
		}
	}
	if Equal(i(big+1), f(big)) {
		t.Errorf("Int(2^53+1) == Float(2^53)")
	}
	if Equal(i(math.MaxInt64), f(math.MaxInt64)) {
		t.Errorf("Int(MaxInt64) == Float(2^63)")
	}
	if !Equal(i(math.MinInt64), f(math.MinInt64)) {
		t.Errorf("Int(MinInt64) != Float(-2^63)")
	}
}

func TestEqual(t *testing.T) {
	tt.Test(t, tt.Fn("Equal", Equal), tt.Table{
		// Spans don't matter.
		tt.Args(Int{Val: 1, Ranging: diag.Ranging{From: 3, To: 4}}, i(1)).Rets(true),
		tt.Args(i(1), s("1")).Rets(false),
		tt.Args(Nothing{}, nil).Rets(true),
		tt.Args(Nothing{}, s("")).Rets(false),
		// Field order doesn't matter.
		tt.Args(rec("a", 1, "b", 2), rec("b", 2, "a", 1)).Rets(true),
		tt.Args(rec("a", 1), rec("a", 1, "b", 2)).Rets(false),
		tt.Args(list(i(1), f(2)), list(f(1), i(2))).Rets(true),
		tt.Args(list(i(1)), list(i(1), i(2))).Rets(false),
		tt.Args(dur(time.Second), i(int64(time.Second))).Rets(false),
		tt.Args(
			Range{Start: 1, Step: 1, Bounded: false, End: 3},
			Range{Start: 1, Step: 1, Bounded: false, End: 9}).Rets(true),
	})
}
