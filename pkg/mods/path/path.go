// Package path contains the path commands, which manipulate filesystem path
// names given as input. Relative paths are relative to the session's working
// directory.
package path

import (
	"os"
	"path/filepath"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/stream"
	"src.tide.sh/pkg/eval/vals"
)

// Commands contains the path commands.
var Commands = []eval.Command{
	pure("path basename", "Outputs the last element of the path.", filepath.Base),
	pure("path dirname", "Outputs all but the last element of the path.", filepath.Dir),
	pure("path extension", "Outputs the extension of the path, including the dot.", filepath.Ext),
	pure("path clean", "Outputs the shortest equivalent path.", filepath.Clean),
	eval.CommandFunc(eval.NewSignature("path join").
		Usage("Joins the path with more elements.").
		Rest("elements", eval.ShapeString, "elements to append"),
		join),
	eval.CommandFunc(eval.NewSignature("path expand").
		Usage("Makes the path absolute, expanding a leading ~."),
		withFrame(func(fm *eval.Frame, _ *eval.Call, path string) (vals.Value, error) {
			return str(fm.ResolvePath(path)), nil
		})),
	eval.CommandFunc(eval.NewSignature("path exists").
		Usage("Outputs whether the path exists."),
		withFrame(func(fm *eval.Frame, _ *eval.Call, path string) (vals.Value, error) {
			_, err := os.Lstat(fm.ResolvePath(path))
			return vals.Bool{Val: err == nil, Ranging: diag.NoRange}, nil
		})),
	eval.CommandFunc(eval.NewSignature("path type").
		Usage("Outputs the type of the file at the path: file, dir, symlink or other.").
		Switch("follow-symlink", 'l', "describe the target of a symlink"),
		withFrame(fileType)),
}

func str(s string) vals.Value { return vals.String{Val: s, Ranging: diag.NoRange} }

func pure(name, usage string, f func(string) string) eval.Command {
	return eval.CommandFunc(eval.NewSignature(name).Usage(usage),
		withFrame(func(_ *eval.Frame, _ *eval.Call, path string) (vals.Value, error) {
			return str(f(path)), nil
		}))
}

// Makes the body of a command that applies f to every path of its input.
func withFrame(f func(*eval.Frame, *eval.Call, string) (vals.Value, error)) eval.RunFunc {
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

var join = withFrame(func(_ *eval.Frame, call *eval.Call, path string) (vals.Value, error) {
	elems := []string{path}
	for _, v := range call.Rest() {
		elems = append(elems, vals.ToString(v))
	}
	return str(filepath.Join(elems...)), nil
})

func fileType(fm *eval.Frame, call *eval.Call, path string) (vals.Value, error) {
	path = fm.ResolvePath(path)
	stat := os.Lstat
	if call.HasFlag("follow-symlink") {
		stat = os.Stat
	}
	fi, err := stat(path)
	if err != nil {
		return nil, err
	}
	mode := fi.Mode()
	switch {
	case mode.IsRegular():
		return str("file"), nil
	case mode.IsDir():
		return str("dir"), nil
	case mode&os.ModeSymlink != 0:
		return str("symlink"), nil
	}
	return str("other"), nil
}
