// Package str contains the str commands, which work on string input. A single
// string is transformed into a single value; lists and streams are
// transformed element by element.
package str

import (
	"bytes"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/stream"
	"src.tide.sh/pkg/eval/vals"
)

// Commands contains the str commands.
var Commands = []eval.Command{
	mapper(eval.NewSignature("str upcase").Usage("Converts to upper case."),
		func(_ *eval.Call, s string) (vals.Value, error) { return str(strings.ToUpper(s)), nil }),
	mapper(eval.NewSignature("str downcase").Usage("Converts to lower case."),
		func(_ *eval.Call, s string) (vals.Value, error) { return str(strings.ToLower(s)), nil }),
	mapper(eval.NewSignature("str trim").
		Usage("Removes leading and trailing whitespace, or the given characters.").
		Named("char", 'c', eval.ShapeString, "characters to trim instead of whitespace"),
		trim),
	mapper(eval.NewSignature("str length").Usage("Outputs the number of codepoints."),
		func(_ *eval.Call, s string) (vals.Value, error) {
			return vals.Int{Val: int64(utf8.RuneCountInString(s)), Ranging: diag.NoRange}, nil
		}),
	mapper(eval.NewSignature("str contains").
		Usage("Outputs whether the input contains a substring.").
		Required("substring", eval.ShapeString, "").
		Switch("ignore-case", 'i', "compare under case folding"),
		contains),
	mapper(eval.NewSignature("str starts-with").
		Usage("Outputs whether the input starts with a prefix.").
		Required("prefix", eval.ShapeString, ""),
		func(call *eval.Call, s string) (vals.Value, error) {
			return boolean(strings.HasPrefix(s, vals.ToString(call.Req("prefix")))), nil
		}),
	mapper(eval.NewSignature("str ends-with").
		Usage("Outputs whether the input ends with a suffix.").
		Required("suffix", eval.ShapeString, ""),
		func(call *eval.Call, s string) (vals.Value, error) {
			return boolean(strings.HasSuffix(s, vals.ToString(call.Req("suffix")))), nil
		}),
	mapper(eval.NewSignature("str replace").
		Usage("Replaces the first occurrence of a string, or all of them with --all.").
		Required("find", eval.ShapeString, "").
		Required("replace", eval.ShapeString, "").
		Switch("all", 'a', "replace all occurrences"),
		replace),
	mapper(eval.NewSignature("str to-codepoints").Usage("Outputs the codepoints of the input."),
		toCodepoints),
	eval.CommandFunc(eval.NewSignature("str split").
		Usage("Splits the input by a separator. An empty separator splits into codepoints.").
		Required("separator", eval.ShapeString, "").
		Named("number", 'n', eval.ShapeInt, "the maximum number of parts"),
		split),
	eval.CommandFunc(eval.NewSignature("str join").
		Usage("Joins strings in the input with a separator.").
		OptionalDefault("separator", eval.ShapeString, str(""), "").
		Output(eval.ShapeString),
		join),
	eval.CommandFunc(eval.NewSignature("str from-codepoints").
		Usage("Outputs the string with the given codepoints.").
		Rest("codepoints", eval.ShapeInt, "").
		Output(eval.ShapeString),
		fromCodepoints),
}

func str(s string) vals.Value { return vals.String{Val: s, Ranging: diag.NoRange} }

func boolean(b bool) vals.Value { return vals.Bool{Val: b, Ranging: diag.NoRange} }

// Makes a command applying f to every string of its input.
func mapper(sig *eval.Signature, f func(*eval.Call, string) (vals.Value, error)) eval.Command {
	return eval.CommandFunc(sig, func(fm *eval.Frame, call *eval.Call, input stream.Data) (stream.Data, error) {
		g := func(v vals.Value) (vals.Value, error) {
			s, ok := v.(vals.String)
			if !ok {
				return nil, errs.InputTypeMismatch{Command: call.Name(), Want: "string", Got: vals.KindName(v)}
			}
			return f(call, s.Val)
		}
		if single, ok := input.(stream.Single); ok {
			if _, isList := single.Value.(vals.List); !isList {
				v, err := g(single.Value)
				if err != nil {
					return nil, err
				}
				return stream.Single{Value: v}, nil
			}
		}
		return stream.Map(fm.Interrupts(), fm.Values(input), g), nil
	})
}

func trim(call *eval.Call, s string) (vals.Value, error) {
	if chars, given := call.GetFlag("char"); given {
		return str(strings.Trim(s, vals.ToString(chars))), nil
	}
	return str(strings.TrimSpace(s)), nil
}

func contains(call *eval.Call, s string) (vals.Value, error) {
	sub := vals.ToString(call.Req("substring"))
	if call.HasFlag("ignore-case") {
		s, sub = strings.ToLower(s), strings.ToLower(sub)
	}
	return boolean(strings.Contains(s, sub)), nil
}

func replace(call *eval.Call, s string) (vals.Value, error) {
	n := 1
	if call.HasFlag("all") {
		n = -1
	}
	return str(strings.Replace(s, vals.ToString(call.Req("find")), vals.ToString(call.Req("replace")), n)), nil
}

func toCodepoints(_ *eval.Call, s string) (vals.Value, error) {
	var vs []vals.Value
	for _, r := range s {
		vs = append(vs, vals.Int{Val: int64(r), Ranging: diag.NoRange})
	}
	return vals.NewList(vs...), nil
}

func split(fm *eval.Frame, call *eval.Call, input stream.Data) (stream.Data, error) {
	sep := vals.ToString(call.Req("separator"))
	n := -1
	if _, given := call.GetFlag("number"); given {
		if err := call.Scan("number", &n); err != nil {
			return nil, err
		}
	}
	in := fm.Values(input)
	var pending []string
	return fm.Stream(func() (vals.Value, bool, error) {
		for len(pending) == 0 {
			v, ok := in.Next()
			if !ok {
				return nil, false, in.Err()
			}
			s, ok := v.(vals.String)
			if !ok {
				return nil, false, errs.InputTypeMismatch{Command: "str split", Want: "string", Got: vals.KindName(v)}
			}
			pending = strings.SplitN(s.Val, sep, n)
		}
		part := pending[0]
		pending = pending[1:]
		return str(part), true, nil
	}, in.Close), nil
}

func join(fm *eval.Frame, call *eval.Call, input stream.Data) (stream.Data, error) {
	sep := vals.ToString(call.Req("separator"))
	var buf bytes.Buffer
	in := fm.Values(input)
	for first := true; ; first = false {
		v, ok := in.Next()
		if !ok {
			break
		}
		if !first {
			buf.WriteString(sep)
		}
		s, ok := v.(vals.String)
		if !ok {
			in.Close()
			return nil, errs.BadValue{What: "input to str join", Valid: "string", Actual: vals.KindName(v)}
		}
		buf.WriteString(s.Val)
	}
	if err := in.Err(); err != nil {
		return nil, err
	}
	return stream.Single{Value: str(buf.String())}, nil
}

func fromCodepoints(_ *eval.Frame, call *eval.Call, _ stream.Data) (stream.Data, error) {
	var b bytes.Buffer
	for _, v := range call.Rest() {
		num := v.(vals.Int).Val
		if num < 0 || num > unicode.MaxRune {
			return nil, errs.OutOfRange{
				What:     "codepoint",
				ValidLow: 0, ValidHigh: unicode.MaxRune,
				Actual: hex(num),
			}
		}
		if !utf8.ValidRune(rune(num)) {
			return nil, errs.BadValue{
				What:   "argument to str from-codepoints",
				Valid:  "valid Unicode codepoint",
				Actual: hex(num),
			}
		}
		b.WriteRune(rune(num))
	}
	return stream.Single{Value: str(b.String())}, nil
}

func hex(i int64) string {
	if i < 0 {
		return "-0x" + strconv.FormatInt(-i, 16)
	}
	return "0x" + strconv.FormatInt(i, 16)
}
