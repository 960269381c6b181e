package vals

import (
	"math"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval/errs"
)

// Range is an arithmetic progression of integers. An unbounded Range never
// ends; iterating it has to be stopped by the consumer.
type Range struct {
	Start     int64
	Step      int64
	End       int64
	Inclusive bool
	Bounded   bool
	diag.Ranging
}

// Kind returns KindRange.
func (Range) Kind() Kind { return KindRange }

// NewRange builds a bounded Range. A zero step fails with errs.InvalidRange.
func NewRange(start, step, end int64, inclusive bool) (Range, error) {
	if step == 0 {
		return Range{}, errs.InvalidRange{Reason: "step must not be 0"}
	}
	return Range{start, step, end, inclusive, true, diag.NoRange}, nil
}

// NewUnboundedRange builds a Range with no end.
func NewUnboundedRange(start, step int64) (Range, error) {
	if step == 0 {
		return Range{}, errs.InvalidRange{Reason: "step must not be 0"}
	}
	return Range{Start: start, Step: step, Ranging: diag.NoRange}, nil
}

// DefaultStep returns the step implied by start and end when none is given:
// 1 when counting up, -1 when counting down.
func DefaultStep(start, end int64) int64 {
	if start > end {
		return -1
	}
	return 1
}

// Contains reports whether n is one of the elements.
func (r Range) Contains(n int64) bool {
	if !r.inBounds(n) {
		return false
	}
	return (n-r.Start)%r.Step == 0
}

func (r Range) inBounds(n int64) bool {
	if r.Step > 0 {
		if n < r.Start {
			return false
		}
		if r.Bounded && (n > r.End || (!r.Inclusive && n == r.End)) {
			return false
		}
	} else {
		if n > r.Start {
			return false
		}
		if r.Bounded && (n < r.End || (!r.Inclusive && n == r.End)) {
			return false
		}
	}
	return true
}

// Len returns the number of elements, or math.MaxInt64 for an unbounded
// Range.
func (r Range) Len() int64 {
	if !r.Bounded {
		return math.MaxInt64
	}
	last := r.End
	if !r.Inclusive {
		if r.Step > 0 {
			last--
		} else {
			last++
		}
	}
	if (r.Step > 0 && last < r.Start) || (r.Step < 0 && last > r.Start) {
		return 0
	}
	return (last-r.Start)/r.Step + 1
}

// Nth returns the i-th element.
func (r Range) Nth(i int64) (Value, bool) {
	if i < 0 || i >= r.Len() {
		return nil, false
	}
	return Int{Val: r.Start + i*r.Step, Ranging: r.Ranging}, true
}

// Iterator returns a function that yields the elements one at a time. It is
// lazy, so it is safe to use on unbounded ranges.
func (r Range) Iterator() func() (Value, bool) {
	next := r.Start
	done := false
	return func() (Value, bool) {
		if done || !r.inBounds(next) {
			done = true
			return nil, false
		}
		v := Int{Val: next, Ranging: r.Ranging}
		n, overflow := addInt(next, r.Step)
		if overflow {
			done = true
		}
		next = n
		return v, true
	}
}
