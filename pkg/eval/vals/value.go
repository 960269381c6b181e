// Package vals contains the runtime data model: the Value variants, their
// equality and ordering, arithmetic with its coercion rules, and conversions
// between variants and Go values.
//
// Values are immutable. Operations that "modify" a container return a new one.
package vals

import (
	"time"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval/errs"
)

// Kind identifies a Value variant.
type Kind uint8

// Value variants.
const (
	KindNothing Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBinary
	KindDate
	KindDuration
	KindFilesize
	KindRange
	KindList
	KindRecord
	KindClosure
	KindError
)

var kindNames = [...]string{
	"nothing", "bool", "int", "float", "string", "binary", "date", "duration",
	"filesize", "range", "list", "record", "closure", "error",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is a runtime datum. Every Value carries the span of the code that
// produced it; the span is only used for diagnostics and never affects
// equality.
type Value interface {
	Kind() Kind
	diag.Ranger
}

// Nothing is the absence of a value.
type Nothing struct{ diag.Ranging }

// Bool is a boolean.
type Bool struct {
	Val bool
	diag.Ranging
}

// Int is a 64-bit signed integer.
type Int struct {
	Val int64
	diag.Ranging
}

// Float is a 64-bit float.
type Float struct {
	Val float64
	diag.Ranging
}

// String is a UTF-8 string.
type String struct {
	Val string
	diag.Ranging
}

// Binary is a byte sequence.
type Binary struct {
	Val []byte
	diag.Ranging
}

// Date is a point in time together with its UTC offset.
type Date struct {
	Val time.Time
	diag.Ranging
}

// Duration is a span of time in nanoseconds.
type Duration struct {
	Val time.Duration
	diag.Ranging
}

// Filesize is a size in bytes.
type Filesize struct {
	Val int64
	diag.Ranging
}

// List is an ordered sequence of values. A List whose elements are all
// Records is a table.
type List struct {
	Vals []Value
	diag.Ranging
}

// Error is an error turned into data. It flows through pipelines like any
// other value and is raised again when it reaches a sink.
type Error struct {
	Err error
	diag.Ranging
}

func (Nothing) Kind() Kind  { return KindNothing }
func (Bool) Kind() Kind     { return KindBool }
func (Int) Kind() Kind      { return KindInt }
func (Float) Kind() Kind    { return KindFloat }
func (String) Kind() Kind   { return KindString }
func (Binary) Kind() Kind   { return KindBinary }
func (Date) Kind() Kind     { return KindDate }
func (Duration) Kind() Kind { return KindDuration }
func (Filesize) Kind() Kind { return KindFilesize }
func (List) Kind() Kind     { return KindList }
func (Error) Kind() Kind    { return KindError }

// Error returns the message of the wrapped error.
func (e Error) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e Error) Unwrap() error { return e.Err }

// Category returns the category of the wrapped error.
func (e Error) Category() errs.Category { return errs.CategoryOf(e.Err) }

// Len returns the number of elements.
func (l List) Len() int { return len(l.Vals) }

// NewList builds a List from the given values.
func NewList(vs ...Value) List { return List{Vals: vs, Ranging: diag.NoRange} }

// KindName returns the name of the kind of v as shown to users. It is the same
// as v.Kind().String(), except that lists of records are called tables.
func KindName(v Value) string {
	if v == nil {
		return "nothing"
	}
	if l, ok := v.(List); ok && IsTable(l) {
		return "table"
	}
	return v.Kind().String()
}

// WithSpan returns v with its span replaced by r. Values of types defined
// outside this package are returned unchanged.
func WithSpan(v Value, r diag.Ranging) Value {
	switch v := v.(type) {
	case Nothing:
		v.Ranging = r
		return v
	case Bool:
		v.Ranging = r
		return v
	case Int:
		v.Ranging = r
		return v
	case Float:
		v.Ranging = r
		return v
	case String:
		v.Ranging = r
		return v
	case Binary:
		v.Ranging = r
		return v
	case Date:
		v.Ranging = r
		return v
	case Duration:
		v.Ranging = r
		return v
	case Filesize:
		v.Ranging = r
		return v
	case Range:
		v.Ranging = r
		return v
	case List:
		v.Ranging = r
		return v
	case Record:
		v.Ranging = r
		return v
	case Error:
		v.Ranging = r
		return v
	}
	return v
}

// IsNothing reports whether v is nil or Nothing.
func IsNothing(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Nothing)
	return ok
}
