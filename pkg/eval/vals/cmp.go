package vals

import (
	"bytes"
	"math"
	"strings"

	"src.tide.sh/pkg/eval/errs"
)

// Cmp compares two values, returning -1, 0 or 1. Only values of the same
// variant can be compared, except that Int and Float compare numerically.
// Other combinations fail with errs.IncompatibleOperands.
//
// NaN compares equal to NaN and less than every other number, so that sorting
// is deterministic.
func Cmp(a, b Value) (int, error) {
	if IsNothing(a) && IsNothing(b) {
		return 0, nil
	}
	switch a := a.(type) {
	case Bool:
		if b, ok := b.(Bool); ok {
			switch {
			case a.Val == b.Val:
				return 0, nil
			case !a.Val:
				return -1, nil
			default:
				return 1, nil
			}
		}
	case Int:
		switch b := b.(type) {
		case Int:
			return cmpOrdered(a.Val, b.Val), nil
		case Float:
			return cmpIntFloat(a.Val, b.Val), nil
		}
	case Float:
		switch b := b.(type) {
		case Int:
			return -cmpIntFloat(b.Val, a.Val), nil
		case Float:
			return cmpFloat(a.Val, b.Val), nil
		}
	case String:
		if b, ok := b.(String); ok {
			return strings.Compare(a.Val, b.Val), nil
		}
	case Binary:
		if b, ok := b.(Binary); ok {
			return bytes.Compare(a.Val, b.Val), nil
		}
	case Date:
		if b, ok := b.(Date); ok {
			return a.Val.Compare(b.Val), nil
		}
	case Duration:
		if b, ok := b.(Duration); ok {
			return cmpOrdered(a.Val, b.Val), nil
		}
	case Filesize:
		if b, ok := b.(Filesize); ok {
			return cmpOrdered(a.Val, b.Val), nil
		}
	case List:
		if b, ok := b.(List); ok {
			for i := 0; i < len(a.Vals) && i < len(b.Vals); i++ {
				c, err := Cmp(a.Vals[i], b.Vals[i])
				if err != nil || c != 0 {
					return c, err
				}
			}
			return cmpOrdered(len(a.Vals), len(b.Vals)), nil
		}
	}
	return 0, errs.IncompatibleOperands{Op: "comparison", Left: KindName(a), Right: KindName(b)}
}

type ordered interface {
	~int | ~int64 | ~float64 | ~string
}

func cmpOrdered[T ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case math.IsNaN(a) && math.IsNaN(b):
		return 0
	case math.IsNaN(a):
		return -1
	case math.IsNaN(b):
		return 1
	}
	return cmpOrdered(a, b)
}

// Compares an int with a float exactly, without converting the int to a
// float, which loses precision beyond 2^53.
func cmpIntFloat(i int64, f float64) int {
	switch {
	case math.IsNaN(f):
		return 1
	case f >= math.MaxInt64:
		// float64(math.MaxInt64) is 2^63.
		return -1
	case f < math.MinInt64:
		return 1
	}
	t := math.Trunc(f)
	if c := cmpOrdered(i, int64(t)); c != 0 {
		return c
	}
	return cmpFloat(t, f)
}
