package vals

import (
	"bytes"
	"math"
)

// Equaler is implemented by Value types defined outside this package that
// need custom equality, like closures.
type Equaler interface {
	Equal(other Value) bool
}

// Equal reports whether two values are equal. Numbers compare by value across
// Int and Float, NaN equals NaN, and spans are ignored. Values of different
// variants are otherwise never equal.
func Equal(a, b Value) bool {
	if IsNothing(a) || IsNothing(b) {
		return IsNothing(a) && IsNothing(b)
	}
	switch a := a.(type) {
	case Bool:
		b, ok := b.(Bool)
		return ok && a.Val == b.Val
	case Int:
		switch b := b.(type) {
		case Int:
			return a.Val == b.Val
		case Float:
			return cmpIntFloat(a.Val, b.Val) == 0
		}
		return false
	case Float:
		switch b := b.(type) {
		case Int:
			return cmpIntFloat(b.Val, a.Val) == 0
		case Float:
			return floatEqual(a.Val, b.Val)
		}
		return false
	case String:
		b, ok := b.(String)
		return ok && a.Val == b.Val
	case Binary:
		b, ok := b.(Binary)
		return ok && bytes.Equal(a.Val, b.Val)
	case Date:
		b, ok := b.(Date)
		return ok && a.Val.Equal(b.Val)
	case Duration:
		b, ok := b.(Duration)
		return ok && a.Val == b.Val
	case Filesize:
		b, ok := b.(Filesize)
		return ok && a.Val == b.Val
	case Range:
		b, ok := b.(Range)
		return ok && a.Start == b.Start && a.Step == b.Step && a.Bounded == b.Bounded &&
			(!a.Bounded || (a.End == b.End && a.Inclusive == b.Inclusive))
	case List:
		b, ok := b.(List)
		if !ok || len(a.Vals) != len(b.Vals) {
			return false
		}
		for i := range a.Vals {
			if !Equal(a.Vals[i], b.Vals[i]) {
				return false
			}
		}
		return true
	case Record:
		b, ok := b.(Record)
		if !ok || a.Len() != b.Len() {
			return false
		}
		for i, col := range a.cols {
			bv, ok := b.Get(col)
			if !ok || !Equal(a.vals[i], bv) {
				return false
			}
		}
		return true
	case Error:
		b, ok := b.(Error)
		return ok && a.Err.Error() == b.Err.Error()
	case Equaler:
		return a.Equal(b)
	}
	return false
}

func floatEqual(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}
