// Package into contains the into commands, which convert values between
// kinds. A single value is converted to a single value; lists, ranges and
// streams are converted element by element.
package into

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/stream"
	"src.tide.sh/pkg/eval/vals"
)

// Commands contains the into commands.
var Commands = []eval.Command{
	eval.CommandFunc(eval.NewSignature("into int").
		Usage("Converts to int. Strings may be parsed in another radix.").
		Named("radix", 'r', eval.ShapeInt, "the radix of strings, from 2 to 36").
		Output(eval.ShapeInt),
		intoInt),
	converter("into float", eval.ShapeFloat, "Converts to float.", toFloat),
	converter("into string", eval.ShapeString, "Converts to string.", toString),
	converter("into bool", eval.ShapeBool, "Converts true/false and 0/1 to bool.", toBool),
	converter("into datetime", eval.ShapeDate, "Parses dates, or converts nanoseconds since the epoch.", toDate),
	converter("into duration", eval.ShapeDuration, "Parses durations like 3sec, or converts nanoseconds.", toDuration),
	converter("into filesize", eval.ShapeFilesize, "Parses sizes like 1.5KB, or converts bytes.", toFilesize),
	converter("into binary", eval.ShapeBinary, "Converts to bytes.", toBinary),
}

func converter(name string, out eval.Shape, usage string, f func(vals.Value) (vals.Value, error)) eval.Command {
	return eval.CommandFunc(eval.NewSignature(name).Usage(usage).Output(out),
		func(fm *eval.Frame, _ *eval.Call, input stream.Data) (stream.Data, error) {
			return convert(fm, input, f)
		})
}

func convert(fm *eval.Frame, input stream.Data, f func(vals.Value) (vals.Value, error)) (stream.Data, error) {
	if single, ok := input.(stream.Single); ok {
		switch single.Value.(type) {
		case vals.List, vals.Range:
		default:
			v, err := f(single.Value)
			if err != nil {
				return nil, err
			}
			return stream.Single{Value: v}, nil
		}
	}
	return stream.Map(fm.Interrupts(), fm.Values(input), f), nil
}

func intoInt(fm *eval.Frame, call *eval.Call, input stream.Data) (stream.Data, error) {
	radix := 0
	if _, given := call.GetFlag("radix"); given {
		if err := call.Scan("radix", &radix); err != nil {
			return nil, err
		}
		if radix < 2 || radix > 36 {
			return nil, errs.OutOfRange{What: "radix", ValidLow: 2, ValidHigh: 36, Actual: strconv.Itoa(radix)}
		}
	}
	return convert(fm, input, func(v vals.Value) (vals.Value, error) {
		if s, ok := v.(vals.String); ok && radix != 0 {
			n, err := strconv.ParseInt(strings.TrimSpace(s.Val), radix, 64)
			if err != nil {
				return nil, errs.BadValue{What: "string", Valid: "integer in radix " + strconv.Itoa(radix),
					Actual: strconv.Quote(s.Val)}
			}
			return vals.Int{Val: n, Ranging: s.Ranging}, nil
		}
		if s, ok := v.(vals.String); ok {
			v = vals.String{Val: strings.TrimSpace(s.Val), Ranging: s.Ranging}
		}
		n, err := vals.ToInt(v)
		if err != nil {
			return nil, err
		}
		return vals.Int{Val: n, Ranging: v.Range()}, nil
	})
}

func toFloat(v vals.Value) (vals.Value, error) {
	f, err := vals.ToFloat(v)
	if err != nil {
		return nil, err
	}
	return vals.Float{Val: f, Ranging: v.Range()}, nil
}

func toString(v vals.Value) (vals.Value, error) {
	switch v := v.(type) {
	case vals.String:
		return v, nil
	case vals.Record, vals.List:
		return nil, errs.TypeMismatch{What: "value", Valid: "scalar", Got: vals.KindName(v)}
	case vals.Date:
		return vals.String{Val: v.Val.Format(time.RFC3339), Ranging: v.Ranging}, nil
	}
	return vals.String{Val: vals.ToString(v), Ranging: v.Range()}, nil
}

func toBool(v vals.Value) (vals.Value, error) {
	b, err := vals.ToBool(v)
	if err != nil {
		return nil, err
	}
	return vals.Bool{Val: b, Ranging: v.Range()}, nil
}

func toDate(v vals.Value) (vals.Value, error) {
	switch v := v.(type) {
	case vals.Date:
		return v, nil
	case vals.String:
		t, err := vals.ParseDate(v.Val)
		if err != nil {
			return nil, err
		}
		return vals.Date{Val: t, Ranging: v.Ranging}, nil
	case vals.Int:
		return vals.Date{Val: time.Unix(0, v.Val), Ranging: v.Ranging}, nil
	}
	return nil, errs.TypeMismatch{What: "value", Valid: "string, int or date", Got: vals.KindName(v)}
}

func toDuration(v vals.Value) (vals.Value, error) {
	switch v := v.(type) {
	case vals.Duration:
		return v, nil
	case vals.String:
		d, err := vals.ParseDuration(v.Val)
		if err != nil {
			return nil, err
		}
		return vals.Duration{Val: d, Ranging: v.Ranging}, nil
	case vals.Int:
		return vals.Duration{Val: time.Duration(v.Val), Ranging: v.Ranging}, nil
	}
	return nil, errs.TypeMismatch{What: "value", Valid: "string, int or duration", Got: vals.KindName(v)}
}

func toFilesize(v vals.Value) (vals.Value, error) {
	switch v := v.(type) {
	case vals.Filesize:
		return v, nil
	case vals.String:
		n, err := vals.ParseFilesize(v.Val)
		if err != nil {
			return nil, err
		}
		return vals.Filesize{Val: n, Ranging: v.Ranging}, nil
	case vals.Int:
		return vals.Filesize{Val: v.Val, Ranging: v.Ranging}, nil
	case vals.Float:
		return vals.Filesize{Val: int64(v.Val), Ranging: v.Ranging}, nil
	}
	return nil, errs.TypeMismatch{What: "value", Valid: "string, number or filesize", Got: vals.KindName(v)}
}

func toBinary(v vals.Value) (vals.Value, error) {
	switch v := v.(type) {
	case vals.Binary:
		return v, nil
	case vals.String:
		return vals.Binary{Val: []byte(v.Val), Ranging: v.Ranging}, nil
	case vals.Int:
		bs := make([]byte, 8)
		binary.LittleEndian.PutUint64(bs, uint64(v.Val))
		return vals.Binary{Val: bs, Ranging: v.Ranging}, nil
	case vals.Record, vals.List:
		return nil, errs.TypeMismatch{What: "value", Valid: "scalar", Got: vals.KindName(v)}
	}
	return vals.Binary{Val: []byte(vals.ToString(v)), Ranging: diag.NoRange}, nil
}
