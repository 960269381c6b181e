package core

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/stream"
	"src.tide.sh/pkg/eval/vals"
	"src.tide.sh/pkg/mods/formats"
)

const envOldPWD = "OLDPWD"

func cd(fm *eval.Frame, call *eval.Call, _ stream.Data) (stream.Data, error) {
	var dir string
	if v, given := call.Opt("path"); given {
		dir = vals.ToString(v)
	} else if home, ok := fm.Getenv("HOME"); ok {
		dir = home
	} else {
		return nil, errs.VariableNotFound{Name: "env.HOME"}
	}
	if dir == "-" {
		old, ok := fm.Getenv(envOldPWD)
		if !ok {
			return nil, errs.VariableNotFound{Name: "env." + envOldPWD}
		}
		dir = old
	}
	old := fm.Pwd()
	if err := fm.Chdir(dir); err != nil {
		return nil, err
	}
	return stream.Empty{}, fm.Setenv(envOldPWD, old)
}

func save(fm *eval.Frame, call *eval.Call, input stream.Data) (stream.Data, error) {
	path := fm.ResolvePath(vals.ToString(call.Req("path")))
	flags := os.O_WRONLY | os.O_CREATE
	switch {
	case call.HasFlag("append"):
		flags |= os.O_APPEND
	case call.HasFlag("force"):
		flags |= os.O_TRUNC
	default:
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, errs.BadValue{What: "destination of save",
				Valid: "a new file, or --force or --append", Actual: path}
		}
		return nil, err
	}
	logger.Println("saving to", path)
	if err := writeData(fm, f, input); err != nil {
		f.Close()
		return nil, err
	}
	return stream.Empty{}, f.Close()
}

// Writes data to w. Strings and binaries are written as-is and a stream of
// strings as lines; other values are encoded as JSON.
func writeData(fm *eval.Frame, w io.Writer, input stream.Data) error {
	switch in := input.(type) {
	case nil, stream.Empty:
		return nil
	case *stream.Bytes:
		r := in.Reader()
		defer r.Close()
		_, err := io.Copy(w, r)
		return err
	case stream.Single:
		if _, isList := in.Value.(vals.List); !isList {
			return writeValue(w, in.Value)
		}
	}
	vs, err := stream.Drain(fm.Values(input))
	if err != nil {
		return err
	}
	var sb strings.Builder
	for _, v := range vs {
		s, ok := v.(vals.String)
		if !ok {
			return writeValue(w, vals.NewList(vs...))
		}
		sb.WriteString(s.Val + "\n")
	}
	_, err = io.WriteString(w, sb.String())
	return err
}

func writeValue(w io.Writer, v vals.Value) error {
	var bs []byte
	switch v := v.(type) {
	case nil, vals.Nothing:
		return nil
	case vals.String:
		bs = []byte(v.Val)
	case vals.Binary:
		bs = v.Val
	case vals.List, vals.Record, vals.Range:
		var err error
		if bs, err = vals.ToJSON(v, "  "); err != nil {
			return err
		}
		bs = append(bs, '\n')
	default:
		bs = []byte(vals.ToString(v))
	}
	_, err := w.Write(bs)
	return err
}

func open(fm *eval.Frame, call *eval.Call, _ stream.Data) (stream.Data, error) {
	path := fm.ResolvePath(vals.ToString(call.Req("path")))
	decode := formats.DecoderFor(filepath.Ext(path))
	if decode == nil || call.HasFlag("raw") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return stream.NewBytes(f), nil
	}
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	v, err := decode(bs)
	if err != nil {
		return nil, err
	}
	return stream.Single{Value: v}, nil
}
