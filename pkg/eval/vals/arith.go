package vals

import (
	"bytes"
	"math"
	"regexp"
	"strings"
	"time"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval/errs"
)

// BinaryOp applies a binary operator. The coercion rules are:
//
//   - Int op Int stays Int, failing with errs.Overflow instead of wrapping;
//     "/" gives an Int only when the division is exact.
//   - Int op Float and Float op Int are done in Float.
//   - Durations and filesizes can be added to and subtracted from values of
//     the same kind, and multiplied or divided by numbers. Mixing the two
//     fails.
//   - A Date plus or minus a Duration is a Date; Date minus Date is a
//     Duration.
//   - Comparisons follow Cmp, except that == and != accept Nothing on either
//     side.
//
// Any other combination fails with errs.IncompatibleOperands.
func BinaryOp(op string, a, b Value) (Value, error) {
	var (
		v   Value
		err error
	)
	switch op {
	case "+":
		v, err = add(a, b)
	case "-":
		v, err = sub(a, b)
	case "*":
		v, err = mul(a, b)
	case "/":
		v, err = div(a, b)
	case "//":
		v, err = floorDiv(a, b)
	case "mod":
		v, err = mod(a, b)
	case "**":
		v, err = pow(a, b)
	case "++":
		v, err = concat(a, b)
	case "==", "!=":
		if !IsNothing(a) && !IsNothing(b) && !sameFamily(a, b) {
			return nil, incompatible(op, a, b)
		}
		eq := Equal(a, b)
		v = Bool{Val: eq == (op == "=="), Ranging: diag.NoRange}
	case "<", "<=", ">", ">=":
		c, cmpErr := Cmp(a, b)
		if cmpErr != nil {
			return nil, incompatible(op, a, b)
		}
		var result bool
		switch op {
		case "<":
			result = c < 0
		case "<=":
			result = c <= 0
		case ">":
			result = c > 0
		case ">=":
			result = c >= 0
		}
		v = Bool{Val: result, Ranging: diag.NoRange}
	case "and", "or", "xor":
		x, ok1 := a.(Bool)
		y, ok2 := b.(Bool)
		if !ok1 || !ok2 {
			return nil, incompatible(op, a, b)
		}
		var result bool
		switch op {
		case "and":
			result = x.Val && y.Val
		case "or":
			result = x.Val || y.Val
		default:
			result = x.Val != y.Val
		}
		v = Bool{Val: result, Ranging: diag.NoRange}
	case "in", "not-in":
		in, inErr := contains(b, a)
		if inErr != nil {
			return nil, inErr
		}
		v = Bool{Val: in == (op == "in"), Ranging: diag.NoRange}
	case "starts-with", "ends-with":
		x, ok1 := a.(String)
		y, ok2 := b.(String)
		if !ok1 || !ok2 {
			return nil, incompatible(op, a, b)
		}
		if op == "starts-with" {
			v = Bool{Val: strings.HasPrefix(x.Val, y.Val), Ranging: diag.NoRange}
		} else {
			v = Bool{Val: strings.HasSuffix(x.Val, y.Val), Ranging: diag.NoRange}
		}
	case "=~", "!~":
		x, ok1 := a.(String)
		y, ok2 := b.(String)
		if !ok1 || !ok2 {
			return nil, incompatible(op, a, b)
		}
		re, reErr := regexp.Compile(y.Val)
		if reErr != nil {
			return nil, errs.BadValue{What: "regular expression", Valid: "valid regexp", Actual: reErr.Error()}
		}
		v = Bool{Val: re.MatchString(x.Val) == (op == "=~"), Ranging: diag.NoRange}
	default:
		return nil, errs.ParseHandoffError{Message: "unknown binary operator " + op}
	}
	return v, err
}

// UnaryOp applies "-" or "not".
func UnaryOp(op string, v Value) (Value, error) {
	switch op {
	case "-":
		switch v := v.(type) {
		case Int:
			if v.Val == math.MinInt64 {
				return nil, errs.Overflow{Op: "negation"}
			}
			return Int{Val: -v.Val, Ranging: diag.NoRange}, nil
		case Float:
			return Float{Val: -v.Val, Ranging: diag.NoRange}, nil
		case Duration:
			return Duration{Val: -v.Val, Ranging: diag.NoRange}, nil
		case Filesize:
			return Filesize{Val: -v.Val, Ranging: diag.NoRange}, nil
		}
	case "not":
		if b, ok := v.(Bool); ok {
			return Bool{Val: !b.Val, Ranging: diag.NoRange}, nil
		}
		return nil, errs.TypeMismatch{What: "operand of not", Valid: "bool", Got: KindName(v)}
	default:
		return nil, errs.ParseHandoffError{Message: "unknown unary operator " + op}
	}
	return nil, errs.TypeMismatch{What: "operand of -", Valid: "number, duration or filesize", Got: KindName(v)}
}

func incompatible(op string, a, b Value) error {
	return errs.IncompatibleOperands{Op: op, Left: KindName(a), Right: KindName(b)}
}

func isNumber(v Value) bool {
	switch v.(type) {
	case Int, Float:
		return true
	}
	return false
}

func sameFamily(a, b Value) bool {
	return a.Kind() == b.Kind() || (isNumber(a) && isNumber(b))
}

func toFloat(v Value) float64 {
	switch v := v.(type) {
	case Int:
		return float64(v.Val)
	case Float:
		return v.Val
	}
	panic("toFloat on non-number")
}

func add(a, b Value) (Value, error) {
	switch a := a.(type) {
	case Int:
		switch b := b.(type) {
		case Int:
			n, overflow := addInt(a.Val, b.Val)
			if overflow {
				return nil, errs.Overflow{Op: "+"}
			}
			return Int{Val: n, Ranging: diag.NoRange}, nil
		case Float:
			return Float{Val: float64(a.Val) + b.Val, Ranging: diag.NoRange}, nil
		}
	case Float:
		if isNumber(b) {
			return Float{Val: a.Val + toFloat(b), Ranging: diag.NoRange}, nil
		}
	case String:
		if b, ok := b.(String); ok {
			return String{Val: a.Val + b.Val, Ranging: diag.NoRange}, nil
		}
	case Duration:
		switch b := b.(type) {
		case Duration:
			n, overflow := addInt(int64(a.Val), int64(b.Val))
			if overflow {
				return nil, errs.Overflow{Op: "+"}
			}
			return Duration{Val: time.Duration(n), Ranging: diag.NoRange}, nil
		case Date:
			return Date{Val: b.Val.Add(a.Val), Ranging: diag.NoRange}, nil
		}
	case Filesize:
		if b, ok := b.(Filesize); ok {
			n, overflow := addInt(a.Val, b.Val)
			if overflow {
				return nil, errs.Overflow{Op: "+"}
			}
			return Filesize{Val: n, Ranging: diag.NoRange}, nil
		}
	case Date:
		if b, ok := b.(Duration); ok {
			return Date{Val: a.Val.Add(b.Val), Ranging: diag.NoRange}, nil
		}
	}
	return nil, incompatible("+", a, b)
}

func sub(a, b Value) (Value, error) {
	switch a := a.(type) {
	case Int:
		switch b := b.(type) {
		case Int:
			n, overflow := subInt(a.Val, b.Val)
			if overflow {
				return nil, errs.Overflow{Op: "-"}
			}
			return Int{Val: n, Ranging: diag.NoRange}, nil
		case Float:
			return Float{Val: float64(a.Val) - b.Val, Ranging: diag.NoRange}, nil
		}
	case Float:
		if isNumber(b) {
			return Float{Val: a.Val - toFloat(b), Ranging: diag.NoRange}, nil
		}
	case Duration:
		if b, ok := b.(Duration); ok {
			n, overflow := subInt(int64(a.Val), int64(b.Val))
			if overflow {
				return nil, errs.Overflow{Op: "-"}
			}
			return Duration{Val: time.Duration(n), Ranging: diag.NoRange}, nil
		}
	case Filesize:
		if b, ok := b.(Filesize); ok {
			n, overflow := subInt(a.Val, b.Val)
			if overflow {
				return nil, errs.Overflow{Op: "-"}
			}
			return Filesize{Val: n, Ranging: diag.NoRange}, nil
		}
	case Date:
		switch b := b.(type) {
		case Duration:
			return Date{Val: a.Val.Add(-b.Val), Ranging: diag.NoRange}, nil
		case Date:
			return Duration{Val: a.Val.Sub(b.Val), Ranging: diag.NoRange}, nil
		}
	}
	return nil, incompatible("-", a, b)
}

func mul(a, b Value) (Value, error) {
	// Put the unit-carrying operand first.
	if isNumber(a) {
		switch b.(type) {
		case Duration, Filesize:
			a, b = b, a
		}
	}
	switch a := a.(type) {
	case Int:
		switch b := b.(type) {
		case Int:
			n, overflow := mulInt(a.Val, b.Val)
			if overflow {
				return nil, errs.Overflow{Op: "*"}
			}
			return Int{Val: n, Ranging: diag.NoRange}, nil
		case Float:
			return Float{Val: float64(a.Val) * b.Val, Ranging: diag.NoRange}, nil
		}
	case Float:
		if isNumber(b) {
			return Float{Val: a.Val * toFloat(b), Ranging: diag.NoRange}, nil
		}
	case Duration:
		n, err := scaleInt("*", int64(a.Val), b)
		if err != nil {
			return nil, err
		}
		return Duration{Val: time.Duration(n), Ranging: diag.NoRange}, nil
	case Filesize:
		n, err := scaleInt("*", a.Val, b)
		if err != nil {
			return nil, err
		}
		return Filesize{Val: n, Ranging: diag.NoRange}, nil
	}
	return nil, incompatible("*", a, b)
}

func div(a, b Value) (Value, error) {
	switch a := a.(type) {
	case Int:
		switch b := b.(type) {
		case Int:
			if b.Val == 0 {
				return nil, errs.DivideByZero{}
			}
			if a.Val%b.Val == 0 {
				if a.Val == math.MinInt64 && b.Val == -1 {
					return nil, errs.Overflow{Op: "/"}
				}
				return Int{Val: a.Val / b.Val, Ranging: diag.NoRange}, nil
			}
			return Float{Val: float64(a.Val) / float64(b.Val), Ranging: diag.NoRange}, nil
		case Float:
			if b.Val == 0 {
				return nil, errs.DivideByZero{}
			}
			return Float{Val: float64(a.Val) / b.Val, Ranging: diag.NoRange}, nil
		}
	case Float:
		if isNumber(b) {
			if toFloat(b) == 0 {
				return nil, errs.DivideByZero{}
			}
			return Float{Val: a.Val / toFloat(b), Ranging: diag.NoRange}, nil
		}
	case Duration:
		if b, ok := b.(Duration); ok {
			if b.Val == 0 {
				return nil, errs.DivideByZero{}
			}
			return Float{Val: float64(a.Val) / float64(b.Val), Ranging: diag.NoRange}, nil
		}
		n, err := scaleInt("/", int64(a.Val), b)
		if err != nil {
			return nil, err
		}
		return Duration{Val: time.Duration(n), Ranging: diag.NoRange}, nil
	case Filesize:
		if b, ok := b.(Filesize); ok {
			if b.Val == 0 {
				return nil, errs.DivideByZero{}
			}
			return Float{Val: float64(a.Val) / float64(b.Val), Ranging: diag.NoRange}, nil
		}
		n, err := scaleInt("/", a.Val, b)
		if err != nil {
			return nil, err
		}
		return Filesize{Val: n, Ranging: diag.NoRange}, nil
	}
	return nil, incompatible("/", a, b)
}

// Multiplies or divides a unit magnitude by a plain number.
func scaleInt(op string, n int64, by Value) (int64, error) {
	switch by := by.(type) {
	case Int:
		if op == "*" {
			r, overflow := mulInt(n, by.Val)
			if overflow {
				return 0, errs.Overflow{Op: op}
			}
			return r, nil
		}
		if by.Val == 0 {
			return 0, errs.DivideByZero{}
		}
		return n / by.Val, nil
	case Float:
		var f float64
		if op == "*" {
			f = float64(n) * by.Val
		} else {
			if by.Val == 0 {
				return 0, errs.DivideByZero{}
			}
			f = float64(n) / by.Val
		}
		if math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
			return 0, errs.Overflow{Op: op}
		}
		return int64(math.Round(f)), nil
	}
	return 0, errs.IncompatibleOperands{Op: op, Left: "duration or filesize", Right: KindName(by)}
}

func floorDiv(a, b Value) (Value, error) {
	switch a := a.(type) {
	case Int:
		switch b := b.(type) {
		case Int:
			if b.Val == 0 {
				return nil, errs.DivideByZero{}
			}
			if a.Val == math.MinInt64 && b.Val == -1 {
				return nil, errs.Overflow{Op: "//"}
			}
			q := a.Val / b.Val
			if (a.Val%b.Val != 0) && ((a.Val < 0) != (b.Val < 0)) {
				q--
			}
			return Int{Val: q, Ranging: diag.NoRange}, nil
		case Float:
			if b.Val == 0 {
				return nil, errs.DivideByZero{}
			}
			return Float{Val: math.Floor(float64(a.Val) / b.Val), Ranging: diag.NoRange}, nil
		}
	case Float:
		if isNumber(b) {
			if toFloat(b) == 0 {
				return nil, errs.DivideByZero{}
			}
			return Float{Val: math.Floor(a.Val / toFloat(b)), Ranging: diag.NoRange}, nil
		}
	}
	return nil, incompatible("//", a, b)
}

func mod(a, b Value) (Value, error) {
	switch a := a.(type) {
	case Int:
		switch b := b.(type) {
		case Int:
			if b.Val == 0 {
				return nil, errs.DivideByZero{}
			}
			m := a.Val % b.Val
			if m != 0 && (m < 0) != (b.Val < 0) {
				m += b.Val
			}
			return Int{Val: m, Ranging: diag.NoRange}, nil
		case Float:
			return floatMod(float64(a.Val), b.Val)
		}
	case Float:
		if isNumber(b) {
			return floatMod(a.Val, toFloat(b))
		}
	case Duration:
		if b, ok := b.(Duration); ok {
			if b.Val == 0 {
				return nil, errs.DivideByZero{}
			}
			return Duration{Val: a.Val % b.Val, Ranging: diag.NoRange}, nil
		}
	case Filesize:
		if b, ok := b.(Filesize); ok {
			if b.Val == 0 {
				return nil, errs.DivideByZero{}
			}
			return Filesize{Val: a.Val % b.Val, Ranging: diag.NoRange}, nil
		}
	}
	return nil, incompatible("mod", a, b)
}

func floatMod(a, b float64) (Value, error) {
	if b == 0 {
		return nil, errs.DivideByZero{}
	}
	m := math.Mod(a, b)
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return Float{Val: m, Ranging: diag.NoRange}, nil
}

func pow(a, b Value) (Value, error) {
	if x, ok := a.(Int); ok {
		if y, ok := b.(Int); ok && y.Val >= 0 {
			result := int64(1)
			for i := int64(0); i < y.Val; i++ {
				var overflow bool
				result, overflow = mulInt(result, x.Val)
				if overflow {
					return nil, errs.Overflow{Op: "**"}
				}
				if result == 0 || result == 1 {
					break
				}
			}
			return Int{Val: result, Ranging: diag.NoRange}, nil
		}
	}
	if isNumber(a) && isNumber(b) {
		return Float{Val: math.Pow(toFloat(a), toFloat(b)), Ranging: diag.NoRange}, nil
	}
	return nil, incompatible("**", a, b)
}

func concat(a, b Value) (Value, error) {
	switch a := a.(type) {
	case String:
		if b, ok := b.(String); ok {
			return String{Val: a.Val + b.Val, Ranging: diag.NoRange}, nil
		}
	case List:
		if b, ok := b.(List); ok {
			vs := make([]Value, 0, len(a.Vals)+len(b.Vals))
			vs = append(append(vs, a.Vals...), b.Vals...)
			return List{Vals: vs, Ranging: diag.NoRange}, nil
		}
	case Binary:
		if b, ok := b.(Binary); ok {
			return Binary{Val: bytes.Join([][]byte{a.Val, b.Val}, nil), Ranging: diag.NoRange}, nil
		}
	}
	return nil, incompatible("++", a, b)
}

// Reports whether needle is in haystack: an element of a list or range, a
// substring of a string, or a field name of a record.
func contains(haystack, needle Value) (bool, error) {
	switch h := haystack.(type) {
	case List:
		for _, v := range h.Vals {
			if Equal(v, needle) {
				return true, nil
			}
		}
		return false, nil
	case Range:
		if n, ok := needle.(Int); ok {
			return h.Contains(n.Val), nil
		}
		return false, nil
	case String:
		if n, ok := needle.(String); ok {
			return strings.Contains(h.Val, n.Val), nil
		}
	case Record:
		if n, ok := needle.(String); ok {
			_, found := h.Get(n.Val)
			return found, nil
		}
	}
	return false, incompatible("in", needle, haystack)
}

func addInt(a, b int64) (int64, bool) {
	c := a + b
	return c, (c > a) != (b > 0)
}

func subInt(a, b int64) (int64, bool) {
	c := a - b
	return c, (c < a) != (b > 0)
}

func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, false
	}
	c := a * b
	if (c < 0) != ((a < 0) != (b < 0)) || c/b != a {
		return c, true
	}
	return c, false
}
