// Package formats converts between structured values and JSON or YAML text.
package formats

import (
	"strings"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/stream"
	"src.tide.sh/pkg/eval/vals"
)

// Commands contains from json, from yaml, to json and to yaml.
var Commands = []eval.Command{
	eval.CommandFunc(eval.NewSignature("from json").
		Usage("Parses JSON text into values.").
		Switch("objects", 'o', "parse one document per line").
		Input(eval.ShapeString),
		fromJSON),
	eval.CommandFunc(eval.NewSignature("from yaml").
		Usage("Parses YAML text into values.").
		Input(eval.ShapeString),
		fromYAML),
	eval.CommandFunc(eval.NewSignature("to json").
		Usage("Encodes the input as JSON text.").
		NamedDefault("indent", 'i', eval.ShapeInt, vals.Int{Val: 2, Ranging: diag.NoRange},
			"spaces per indentation level").
		Switch("raw", 'r', "encode without whitespace").
		Output(eval.ShapeString),
		toJSON),
	eval.CommandFunc(eval.NewSignature("to yaml").
		Usage("Encodes the input as YAML text.").
		Output(eval.ShapeString),
		toYAML),
}

// DecoderFor returns the decoder for files with the given extension, or nil.
func DecoderFor(ext string) func([]byte) (vals.Value, error) {
	switch strings.ToLower(ext) {
	case ".json":
		return vals.FromJSON
	case ".yaml", ".yml":
		return FromYAML
	}
	return nil
}

// Reads the input as text. A stream of strings is joined with newlines.
func inputText(fm *eval.Frame, input stream.Data) (string, error) {
	if single, ok := input.(stream.Single); ok {
		if s, ok := single.Value.(vals.String); ok {
			return s.Val, nil
		}
	}
	vs, err := stream.Drain(fm.Values(input))
	if err != nil {
		return "", err
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		s, ok := v.(vals.String)
		if !ok {
			return "", errs.InputTypeMismatch{Command: "from", Want: "string", Got: vals.KindName(v)}
		}
		parts[i] = s.Val
	}
	return strings.Join(parts, "\n"), nil
}

func fromJSON(fm *eval.Frame, call *eval.Call, input stream.Data) (stream.Data, error) {
	text, err := inputText(fm, input)
	if err != nil {
		return nil, err
	}
	if !call.HasFlag("objects") {
		v, err := vals.FromJSON([]byte(text))
		if err != nil {
			return nil, err
		}
		return stream.Single{Value: v}, nil
	}
	var vs []vals.Value
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		v, err := vals.FromJSON([]byte(line))
		if err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
	return stream.FromSlice(fm.Interrupts(), vs), nil
}

func fromYAML(fm *eval.Frame, _ *eval.Call, input stream.Data) (stream.Data, error) {
	text, err := inputText(fm, input)
	if err != nil {
		return nil, err
	}
	v, err := FromYAML([]byte(text))
	if err != nil {
		return nil, err
	}
	return stream.Single{Value: v}, nil
}

func toJSON(_ *eval.Frame, call *eval.Call, input stream.Data) (stream.Data, error) {
	v, err := stream.Collect(input)
	if err != nil {
		return nil, err
	}
	indent := ""
	if !call.HasFlag("raw") {
		var n int
		if err := call.Scan("indent", &n); err != nil {
			return nil, err
		}
		indent = strings.Repeat(" ", n)
	}
	bs, err := vals.ToJSON(v, indent)
	if err != nil {
		return nil, err
	}
	return stream.Single{Value: vals.String{Val: string(bs), Ranging: diag.NoRange}}, nil
}

func toYAML(_ *eval.Frame, _ *eval.Call, input stream.Data) (stream.Data, error) {
	v, err := stream.Collect(input)
	if err != nil {
		return nil, err
	}
	bs, err := ToYAML(v)
	if err != nil {
		return nil, err
	}
	return stream.Single{Value: vals.String{Val: string(bs), Ranging: diag.NoRange}}, nil
}
