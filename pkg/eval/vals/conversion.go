package vals

import (
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/dustin/go-humanize"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval/errs"
)

// Conversions between variants. None of them truncate: a conversion that
// would lose information fails instead.

// ToInt converts a value to an int64. Floats must be integral; strings must
// be decimal, hexadecimal (0x), octal (0o) or binary (0b) integers.
func ToInt(v Value) (int64, error) {
	switch v := v.(type) {
	case Int:
		return v.Val, nil
	case Float:
		if v.Val != math.Trunc(v.Val) || v.Val < math.MinInt64 || v.Val >= math.MaxInt64 {
			return 0, errs.BadValue{What: "number", Valid: "integer", Actual: formatFloat(v.Val)}
		}
		return int64(v.Val), nil
	case String:
		n, err := strconv.ParseInt(strings.ReplaceAll(v.Val, "_", ""), 0, 64)
		if err != nil {
			return 0, errs.BadValue{What: "string", Valid: "integer", Actual: strconv.Quote(v.Val)}
		}
		return n, nil
	case Bool:
		if v.Val {
			return 1, nil
		}
		return 0, nil
	case Filesize:
		return v.Val, nil
	case Duration:
		return int64(v.Val), nil
	case Date:
		return v.Val.UnixNano(), nil
	}
	return 0, errs.TypeMismatch{What: "value", Valid: "int, float, string, bool, filesize, duration or date", Got: KindName(v)}
}

// ToFloat converts a value to a float64.
func ToFloat(v Value) (float64, error) {
	switch v := v.(type) {
	case Int:
		return float64(v.Val), nil
	case Float:
		return v.Val, nil
	case String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Val), 64)
		if err != nil {
			return 0, errs.BadValue{What: "string", Valid: "number", Actual: strconv.Quote(v.Val)}
		}
		return f, nil
	}
	return 0, errs.TypeMismatch{What: "value", Valid: "number or string", Got: KindName(v)}
}

// ToBool converts a value to a bool. Only true/false and 0/1 are accepted.
func ToBool(v Value) (bool, error) {
	switch v := v.(type) {
	case Bool:
		return v.Val, nil
	case Int:
		switch v.Val {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
		return false, errs.BadValue{What: "integer", Valid: "0 or 1", Actual: strconv.FormatInt(v.Val, 10)}
	case String:
		switch strings.ToLower(strings.TrimSpace(v.Val)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return false, errs.BadValue{What: "string", Valid: "true or false", Actual: strconv.Quote(v.Val)}
	}
	return false, errs.TypeMismatch{What: "value", Valid: "bool, int or string", Got: KindName(v)}
}

// Stringer is implemented by Value types defined outside this package that
// have their own string form.
type Stringer interface {
	String() string
}

// ToString converts a value to its default string form. This is the form
// used when values are written to an external command: strings are written
// as-is, scalars in their literal form and containers in Repr form.
func ToString(v Value) string {
	switch v := v.(type) {
	case nil, Nothing:
		return ""
	case String:
		return v.Val
	case Binary:
		return string(v.Val)
	case Error:
		return v.Err.Error()
	case Bool, Int, Float, Date, Duration, Filesize, Range, List, Record:
		return Repr(v)
	case Stringer:
		return v.String()
	}
	return Repr(v)
}

// ParseDate parses a date in any of the formats understood by dateparse.
// Dates without a zone are in local time.
func ParseDate(s string) (time.Time, error) {
	t, err := dateparse.ParseLocal(strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, errs.BadValue{What: "string", Valid: "date", Actual: strconv.Quote(s)}
	}
	return t, nil
}

// ParseFilesize parses a size like "10", "1.5 KB" or "2MiB" into bytes.
func ParseFilesize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	n, err := humanize.ParseBytes(strings.TrimPrefix(s, "-"))
	if err != nil || n > math.MaxInt64 {
		return 0, errs.BadValue{What: "string", Valid: "file size", Actual: strconv.Quote(s)}
	}
	if neg {
		return -int64(n), nil
	}
	return int64(n), nil
}

// String formats the size with binary units, like "1.5 KiB".
func (f Filesize) String() string {
	if f.Val < 0 {
		return "-" + humanize.IBytes(uint64(-f.Val))
	}
	return humanize.IBytes(uint64(f.Val))
}

var durationUnits = map[string]time.Duration{
	"ns":  time.Nanosecond,
	"us":  time.Microsecond,
	"µs":  time.Microsecond,
	"ms":  time.Millisecond,
	"sec": time.Second,
	"min": time.Minute,
	"hr":  time.Hour,
	"day": 24 * time.Hour,
	"wk":  7 * 24 * time.Hour,
}

var durationPattern = regexp.MustCompile(`^(-?[0-9]+(?:\.[0-9]+)?)\s*(ns|us|µs|ms|sec|min|hr|day|wk)$`)

// ParseDuration parses a duration with a single unit like "3sec" or "1.5hr",
// or anything accepted by time.ParseDuration.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if m := durationPattern.FindStringSubmatch(s); m != nil {
		f, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			d := f * float64(durationUnits[m[2]])
			if d < math.MaxInt64 && d > math.MinInt64 {
				return time.Duration(math.Round(d)), nil
			}
		}
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errs.BadValue{What: "string", Valid: "duration", Actual: strconv.Quote(s)}
	}
	return d, nil
}

// FromGo converts a Go value to a Value. Values are returned as-is.
func FromGo(a any) Value {
	switch a := a.(type) {
	case nil:
		return Nothing{Ranging: diag.NoRange}
	case Value:
		return a
	case bool:
		return Bool{Val: a, Ranging: diag.NoRange}
	case int:
		return Int{Val: int64(a), Ranging: diag.NoRange}
	case int64:
		return Int{Val: a, Ranging: diag.NoRange}
	case float64:
		return Float{Val: a, Ranging: diag.NoRange}
	case string:
		return String{Val: a, Ranging: diag.NoRange}
	case []byte:
		return Binary{Val: a, Ranging: diag.NoRange}
	case time.Time:
		return Date{Val: a, Ranging: diag.NoRange}
	case time.Duration:
		return Duration{Val: a, Ranging: diag.NoRange}
	case []any:
		vs := make([]Value, len(a))
		for i, elem := range a {
			vs[i] = FromGo(elem)
		}
		return List{Vals: vs, Ranging: diag.NoRange}
	case []string:
		vs := make([]Value, len(a))
		for i, elem := range a {
			vs[i] = String{Val: elem, Ranging: diag.NoRange}
		}
		return List{Vals: vs, Ranging: diag.NoRange}
	case error:
		return Error{Err: a, Ranging: diag.NoRange}
	}
	panic("vals.FromGo: unsupported type " + reflect.TypeOf(a).String())
}

var valueType = reflect.TypeOf((*Value)(nil)).Elem()

// ScanToGo converts a Value into the Go variable that ptr points to. Supported
// destinations are *int, *int64, *float64, *string, *bool, *time.Duration,
// *time.Time, *[]byte, pointers to Value and to any concrete Value type.
//
// Numbers are converted only when no information is lost: a Float scans into
// an int only if it is integral.
func ScanToGo(v Value, ptr any) error {
	switch ptr := ptr.(type) {
	case *int:
		n, err := scanInt(v)
		if err != nil {
			return err
		}
		if n < math.MinInt || n > math.MaxInt {
			return errs.OutOfRange{What: "integer", ValidLow: math.MinInt, ValidHigh: math.MaxInt,
				Actual: strconv.FormatInt(n, 10)}
		}
		*ptr = int(n)
	case *int64:
		n, err := scanInt(v)
		if err != nil {
			return err
		}
		*ptr = n
	case *float64:
		switch v := v.(type) {
		case Int:
			*ptr = float64(v.Val)
		case Float:
			*ptr = v.Val
		default:
			return scanMismatch("number", v)
		}
	case *string:
		s, ok := v.(String)
		if !ok {
			return scanMismatch("string", v)
		}
		*ptr = s.Val
	case *bool:
		b, ok := v.(Bool)
		if !ok {
			return scanMismatch("bool", v)
		}
		*ptr = b.Val
	case *time.Duration:
		d, ok := v.(Duration)
		if !ok {
			return scanMismatch("duration", v)
		}
		*ptr = d.Val
	case *time.Time:
		d, ok := v.(Date)
		if !ok {
			return scanMismatch("date", v)
		}
		*ptr = d.Val
	case *[]byte:
		switch v := v.(type) {
		case Binary:
			*ptr = v.Val
		case String:
			*ptr = []byte(v.Val)
		default:
			return scanMismatch("binary", v)
		}
	default:
		dst := reflect.ValueOf(ptr)
		if dst.Kind() != reflect.Pointer || !dst.Type().Elem().Implements(valueType) {
			panic("vals.ScanToGo: unsupported destination " + dst.Type().String())
		}
		elem := dst.Elem()
		src := reflect.ValueOf(v)
		if v == nil || !src.Type().AssignableTo(elem.Type()) {
			return scanMismatch(kindOfType(elem.Type()), v)
		}
		elem.Set(src)
	}
	return nil
}

func scanInt(v Value) (int64, error) {
	switch v := v.(type) {
	case Int:
		return v.Val, nil
	case Float:
		if v.Val == math.Trunc(v.Val) && v.Val >= math.MinInt64 && v.Val < math.MaxInt64 {
			return int64(v.Val), nil
		}
		return 0, errs.TypeMismatch{What: "argument", Valid: "integer", Got: "non-integral float"}
	}
	return 0, scanMismatch("int", v)
}

func scanMismatch(want string, v Value) error {
	return errs.TypeMismatch{What: "argument", Want: want, Got: KindName(v)}
}

func kindOfType(t reflect.Type) string {
	if t == valueType {
		return "any"
	}
	if t.Kind() == reflect.Interface {
		return t.Name()
	}
	if k, ok := reflect.Zero(t).Interface().(Value); ok {
		return k.Kind().String()
	}
	return t.String()
}
