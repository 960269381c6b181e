// Package re contains the re commands, which match regular expressions
// against string input. The syntax is that of Go's regexp package.
package re

import (
	"regexp"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/stream"
	"src.tide.sh/pkg/eval/vals"
)

// Commands contains the re commands.
var Commands = []eval.Command{
	eval.CommandFunc(eval.NewSignature("re quote").
		Usage("Quotes the input so that it matches itself literally."),
		onStrings(func(_ *eval.Frame, _ *eval.Call, s string) (vals.Value, error) {
			return str(regexp.QuoteMeta(s)), nil
		})),
	eval.CommandFunc(patternSig("re match", "Outputs whether the input matches the pattern."),
		withPattern(func(_ *eval.Frame, _ *eval.Call, p *regexp.Regexp, s string) (vals.Value, error) {
			return vals.Bool{Val: p.MatchString(s), Ranging: diag.NoRange}, nil
		})),
	eval.CommandFunc(patternSig("re find", "Outputs a record for each match, with its text, start, end and groups.").
		Named("max", 'm', eval.ShapeInt, "the maximum number of matches"),
		find),
	eval.CommandFunc(patternSig("re replace", "Replaces matches with a string or the output of a closure.").
		Required("replacement", eval.ShapeAny, "a string, in which $1 refers to groups, or a closure").
		Switch("literal", 'L', "use the replacement string as is"),
		withPattern(replace)),
	eval.CommandFunc(patternSig("re split", "Splits the input around matches.").
		Named("max", 'm', eval.ShapeInt, "the maximum number of parts"),
		split),
}

func str(s string) vals.Value { return vals.String{Val: s, Ranging: diag.NoRange} }

func integer(i int) vals.Value { return vals.Int{Val: int64(i), Ranging: diag.NoRange} }

func patternSig(name, usage string) *eval.Signature {
	return eval.NewSignature(name).Usage(usage).
		Required("pattern", eval.ShapeString, "the regular expression").
		Switch("posix", 'p', "use POSIX syntax with leftmost-longest matching").
		Switch("longest", 'l', "prefer leftmost-longest matches")
}

func makePattern(call *eval.Call) (*regexp.Regexp, error) {
	src := vals.ToString(call.Req("pattern"))
	var pattern *regexp.Regexp
	var err error
	if call.HasFlag("posix") {
		pattern, err = regexp.CompilePOSIX(src)
	} else {
		pattern, err = regexp.Compile(src)
	}
	if err != nil {
		return nil, errs.BadValue{What: "pattern", Valid: "valid regular expression", Actual: err.Error()}
	}
	if call.HasFlag("longest") {
		pattern.Longest()
	}
	return pattern, nil
}

func maxArg(call *eval.Call) (int, error) {
	n := -1
	if _, given := call.GetFlag("max"); given {
		if err := call.Scan("max", &n); err != nil {
			return 0, err
		}
	}
	return n, nil
}

// Makes the body of a command that applies f to every string of its input.
func onStrings(f func(*eval.Frame, *eval.Call, string) (vals.Value, error)) eval.RunFunc {
	return func(fm *eval.Frame, call *eval.Call, input stream.Data) (stream.Data, error) {
		g := func(v vals.Value) (vals.Value, error) {
			s, ok := v.(vals.String)
			if !ok {
				return nil, errs.InputTypeMismatch{Command: call.Name(), Want: "string", Got: vals.KindName(v)}
			}
			return f(fm, call, s.Val)
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
	}
}

func withPattern(f func(*eval.Frame, *eval.Call, *regexp.Regexp, string) (vals.Value, error)) eval.RunFunc {
	return func(fm *eval.Frame, call *eval.Call, input stream.Data) (stream.Data, error) {
		pattern, err := makePattern(call)
		if err != nil {
			return nil, err
		}
		return onStrings(func(fm *eval.Frame, call *eval.Call, s string) (vals.Value, error) {
			return f(fm, call, pattern, s)
		})(fm, call, input)
	}
}

// Like withPattern, but f outputs several values per string.
func flatWithPattern(f func(*eval.Call, *regexp.Regexp, string) ([]vals.Value, error)) eval.RunFunc {
	return func(fm *eval.Frame, call *eval.Call, input stream.Data) (stream.Data, error) {
		pattern, err := makePattern(call)
		if err != nil {
			return nil, err
		}
		in := fm.Values(input)
		var pending []vals.Value
		return fm.Stream(func() (vals.Value, bool, error) {
			for len(pending) == 0 {
				v, ok := in.Next()
				if !ok {
					return nil, false, in.Err()
				}
				s, ok := v.(vals.String)
				if !ok {
					return nil, false, errs.InputTypeMismatch{Command: call.Name(), Want: "string", Got: vals.KindName(v)}
				}
				if pending, err = f(call, pattern, s.Val); err != nil {
					return nil, false, err
				}
			}
			v := pending[0]
			pending = pending[1:]
			return v, true, nil
		}, in.Close), nil
	}
}

var find = flatWithPattern(func(call *eval.Call, pattern *regexp.Regexp, source string) ([]vals.Value, error) {
	n, err := maxArg(call)
	if err != nil {
		return nil, err
	}
	var out []vals.Value
	for _, match := range pattern.FindAllStringSubmatchIndex(source, n) {
		start, end := match[0], match[1]
		var groups []vals.Value
		for i := 0; i < len(match); i += 2 {
			start, end := match[i], match[i+1]
			text := ""
			// Groups that didn't participate in the match have negative
			// indices.
			if start >= 0 && end >= 0 {
				text = source[start:end]
			}
			groups = append(groups, new(vals.RecordBuilder).
				Add("text", str(text)).Add("start", integer(start)).Add("end", integer(end)).
				MustRecord())
		}
		out = append(out, new(vals.RecordBuilder).
			Add("text", str(source[start:end])).Add("start", integer(start)).Add("end", integer(end)).
			Add("groups", vals.NewList(groups...)).
			MustRecord())
	}
	return out, nil
})

var split = flatWithPattern(func(call *eval.Call, pattern *regexp.Regexp, source string) ([]vals.Value, error) {
	n, err := maxArg(call)
	if err != nil {
		return nil, err
	}
	pieces := pattern.Split(source, n)
	out := make([]vals.Value, len(pieces))
	for i, piece := range pieces {
		out[i] = str(piece)
	}
	return out, nil
})

func replace(fm *eval.Frame, call *eval.Call, pattern *regexp.Regexp, source string) (vals.Value, error) {
	switch repl := call.Req("replacement").(type) {
	case vals.String:
		if call.HasFlag("literal") {
			return str(pattern.ReplaceAllLiteralString(source, repl.Val)), nil
		}
		return str(pattern.ReplaceAllString(source, repl.Val)), nil
	case *eval.Closure:
		if call.HasFlag("literal") {
			return nil, errs.BadValue{What: "literal replacement", Valid: "string", Actual: vals.KindName(repl)}
		}
		var errReplace error
		replaced := pattern.ReplaceAllStringFunc(source, func(s string) string {
			if errReplace != nil {
				return ""
			}
			out, err := fm.CallClosureValue(repl, []vals.Value{str(s)}, stream.Single{Value: str(s)})
			if err != nil {
				errReplace = err
				return ""
			}
			output, ok := out.(vals.String)
			if !ok {
				errReplace = errs.BadValue{What: "replacement closure output",
					Valid: "string", Actual: vals.KindName(out)}
				return ""
			}
			return output.Val
		})
		return str(replaced), errReplace
	default:
		return nil, errs.BadValue{What: "replacement", Valid: "string or closure", Actual: vals.KindName(repl)}
	}
}
