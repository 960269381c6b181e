package evaltest

import (
	"math"
	"regexp"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval/vals"
)

// ValueMatcher is a value that can be passed to [Case.Puts] and has its own
// matching semantics.
type ValueMatcher interface{ matchValue(vals.Value) bool }

// Wraps a ValueMatcher so that it can sit among the expected values.
type matcherValue struct{ ValueMatcher }

func (matcherValue) Kind() vals.Kind     { return vals.KindNothing }
func (matcherValue) Range() diag.Ranging { return diag.NoRange }
func (m matcherValue) Repr() string      { return "<matcher>" }

// Anything matches anything. It is useful when the value contains information
// that is useful when the test fails.
var Anything ValueMatcher = anything{}

type anything struct{}

func (anything) matchValue(vals.Value) bool { return true }

// AnyInteger matches any integer.
var AnyInteger ValueMatcher = anyInteger{}

type anyInteger struct{}

func (anyInteger) matchValue(x vals.Value) bool {
	_, ok := x.(vals.Int)
	return ok
}

// ApproximatelyThreshold defines the threshold for matching float64 values when
// using [Approximately].
const ApproximatelyThreshold = 1e-15

// Approximately matches a float within the threshold defined by
// [ApproximatelyThreshold].
func Approximately(f float64) ValueMatcher { return approximately{f} }

type approximately struct{ value float64 }

func (a approximately) matchValue(value vals.Value) bool {
	if value, ok := value.(vals.Float); ok {
		return matchFloat64(a.value, value.Val, ApproximatelyThreshold)
	}
	return false
}

func matchFloat64(a, b, threshold float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	if math.IsInf(a, 0) && math.IsInf(b, 0) &&
		math.Signbit(a) == math.Signbit(b) {
		return true
	}
	return math.Abs(a-b) <= threshold
}

// StringMatching matches any string matching a regexp pattern. If the pattern
// is not a valid regexp, the function panics.
func StringMatching(p string) ValueMatcher { return stringMatching{regexp.MustCompile(p)} }

type stringMatching struct{ pattern *regexp.Regexp }

func (s stringMatching) matchValue(value vals.Value) bool {
	if value, ok := value.(vals.String); ok {
		return s.pattern.MatchString(value.Val)
	}
	return false
}

// RecordContaining matches any record that contains the given fields, given
// as alternating names and values. The values can also be [ValueMatcher]s.
func RecordContaining(pairs ...any) ValueMatcher {
	m := recordContaining{}
	for i := 0; i+1 < len(pairs); i += 2 {
		m.names = append(m.names, pairs[i].(string))
		if vm, ok := pairs[i+1].(ValueMatcher); ok {
			m.values = append(m.values, matcherValue{vm})
		} else {
			m.values = append(m.values, vals.FromGo(pairs[i+1]))
		}
	}
	return m
}

type recordContaining struct {
	names  []string
	values []vals.Value
}

func (m recordContaining) matchValue(value vals.Value) bool {
	r, ok := value.(vals.Record)
	if !ok {
		return false
	}
	for i, name := range m.names {
		got, ok := r.Get(name)
		if !ok || !match(got, m.values[i]) {
			return false
		}
	}
	return true
}
