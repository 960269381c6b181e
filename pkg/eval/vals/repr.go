package vals

import (
	"encoding/hex"
	"math"
	"strconv"
	"strings"
	"time"
)

// Reprer is implemented by Value types defined outside this package.
type Reprer interface {
	Repr() string
}

// Repr returns the literal form of a value: strings are quoted and containers
// are written as [a, b] and {k: v}.
func Repr(v Value) string {
	var sb strings.Builder
	writeRepr(&sb, v)
	return sb.String()
}

func writeRepr(sb *strings.Builder, v Value) {
	switch v := v.(type) {
	case nil, Nothing:
		sb.WriteString("null")
	case Bool:
		sb.WriteString(strconv.FormatBool(v.Val))
	case Int:
		sb.WriteString(strconv.FormatInt(v.Val, 10))
	case Float:
		sb.WriteString(formatFloat(v.Val))
	case String:
		sb.WriteString(quote(v.Val))
	case Binary:
		sb.WriteString("0x[")
		sb.WriteString(hex.EncodeToString(v.Val))
		sb.WriteString("]")
	case Date:
		sb.WriteString(v.Val.Format(time.RFC3339Nano))
	case Duration:
		sb.WriteString(formatDuration(v.Val))
	case Filesize:
		sb.WriteString(strconv.FormatInt(v.Val, 10))
		sb.WriteString("b")
	case Range:
		sb.WriteString(strconv.FormatInt(v.Start, 10))
		if v.Bounded && v.Step != DefaultStep(v.Start, v.End) || !v.Bounded && v.Step != 1 {
			sb.WriteString("..")
			sb.WriteString(strconv.FormatInt(v.Start+v.Step, 10))
		}
		switch {
		case !v.Bounded:
			sb.WriteString("..")
		case v.Inclusive:
			sb.WriteString("..")
			sb.WriteString(strconv.FormatInt(v.End, 10))
		default:
			sb.WriteString("..<")
			sb.WriteString(strconv.FormatInt(v.End, 10))
		}
	case List:
		sb.WriteString("[")
		for i, elem := range v.Vals {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeRepr(sb, elem)
		}
		sb.WriteString("]")
	case Record:
		sb.WriteString("{")
		for i, col := range v.cols {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(quoteKey(col))
			sb.WriteString(": ")
			writeRepr(sb, v.vals[i])
		}
		sb.WriteString("}")
	case Error:
		sb.WriteString("error(")
		sb.WriteString(quote(v.Err.Error()))
		sb.WriteString(")")
	case Reprer:
		sb.WriteString(v.Repr())
	default:
		sb.WriteString("<" + v.Kind().String() + ">")
	}
}

func quote(s string) string { return strconv.Quote(s) }

// Record keys are written bare when they look like identifiers.
func quoteKey(s string) string {
	if s == "" {
		return `""`
	}
	for _, r := range s {
		if !(r == '_' || r == '-' || '0' <= r && r <= '9' || 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z') {
			return quote(s)
		}
	}
	return s
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

var durationSteps = []struct {
	unit string
	d    time.Duration
}{
	{"wk", 7 * 24 * time.Hour},
	{"day", 24 * time.Hour},
	{"hr", time.Hour},
	{"min", time.Minute},
	{"sec", time.Second},
	{"ms", time.Millisecond},
	{"us", time.Microsecond},
	{"ns", time.Nanosecond},
}

// Writes a duration in the largest unit that divides it exactly, so that the
// result parses back with ParseDuration.
func formatDuration(d time.Duration) string {
	if d == 0 {
		return "0sec"
	}
	for _, step := range durationSteps {
		if d%step.d == 0 {
			return strconv.FormatInt(int64(d/step.d), 10) + step.unit
		}
	}
	return strconv.FormatInt(int64(d), 10) + "ns"
}
