// Package os contains filesystem commands: mkdir, rm, stat and ls. Relative
// paths are relative to the session's working directory.
package os

import (
	"errors"
	"io/fs"
	"os"
	"sort"
	"strconv"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/stream"
	"src.tide.sh/pkg/eval/vals"
)

// Commands contains the filesystem commands.
var Commands = []eval.Command{
	eval.CommandFunc(eval.NewSignature("mkdir").
		Usage("Creates a directory.").
		Required("path", eval.ShapeString, "the directory to create").
		NamedDefault("perm", 'm', eval.ShapeInt, vals.Int{Val: 0755, Ranging: diag.NoRange},
			"permission bits, before the umask").
		Switch("parents", 'p', "create missing parents and accept an existing directory").
		Output(eval.ShapeNothing),
		mkdir),
	eval.CommandFunc(eval.NewSignature("rm").
		Usage("Removes a file or an empty directory.").
		Required("path", eval.ShapeString, "the path to remove").
		Switch("recursive", 'r', "remove directories with their content, ignoring missing paths").
		Output(eval.ShapeNothing),
		rm),
	eval.CommandFunc(eval.NewSignature("stat").
		Usage("Outputs a record describing a file.").
		Required("path", eval.ShapeString, "the file").
		Switch("follow-symlink", 'l', "describe the target of a symlink").
		Output(eval.ShapeRecord),
		stat),
	eval.CommandFunc(eval.NewSignature("ls").
		Usage("Outputs a table of the entries of a directory, sorted by name.").
		OptionalDefault("path", eval.ShapeString, vals.String{Val: ".", Ranging: diag.NoRange},
			"the directory").
		Switch("all", 'a', "include entries whose names start with a dot"),
		ls),
}

// ErrEmptyPath is raised by rm when given an empty path.
var ErrEmptyPath = errs.BadValue{
	What: "path", Valid: "non-empty string", Actual: "empty string"}

func mkdir(fm *eval.Frame, call *eval.Call, _ stream.Data) (stream.Data, error) {
	var perm int
	if err := call.Scan("perm", &perm); err != nil {
		return nil, err
	}
	if perm < 0 || perm > 0777 {
		return nil, errs.OutOfRange{What: "perm", ValidLow: 0, ValidHigh: 0777, Actual: "0o" + strconv.FormatInt(int64(perm), 8)}
	}
	path := fm.ResolvePath(vals.ToString(call.Req("path")))
	if call.HasFlag("parents") {
		return stream.Empty{}, os.MkdirAll(path, fs.FileMode(perm))
	}
	return stream.Empty{}, os.Mkdir(path, fs.FileMode(perm))
}

func rm(fm *eval.Frame, call *eval.Call, _ stream.Data) (stream.Data, error) {
	path := vals.ToString(call.Req("path"))
	if path == "" {
		return nil, ErrEmptyPath
	}
	// Resolved first, since the working directory could change while
	// os.RemoveAll is running.
	path = fm.ResolvePath(path)
	if call.HasFlag("recursive") {
		return stream.Empty{}, os.RemoveAll(path)
	}
	return stream.Empty{}, os.Remove(path)
}

func stat(fm *eval.Frame, call *eval.Call, _ stream.Data) (stream.Data, error) {
	path := fm.ResolvePath(vals.ToString(call.Req("path")))
	statFn := os.Lstat
	if call.HasFlag("follow-symlink") {
		statFn = os.Stat
	}
	fi, err := statFn(path)
	if err != nil {
		return nil, err
	}
	return stream.Single{Value: statRecord(fi)}, nil
}

func ls(fm *eval.Frame, call *eval.Call, _ stream.Data) (stream.Data, error) {
	dir := fm.ResolvePath(vals.ToString(call.Req("path")))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	all := call.HasFlag("all")
	i := 0
	return fm.Stream(func() (vals.Value, bool, error) {
		for i < len(entries) {
			entry := entries[i]
			i++
			if !all && entry.Name()[0] == '.' {
				continue
			}
			fi, err := entry.Info()
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					// Removed since the directory was read.
					continue
				}
				return nil, false, err
			}
			return statRecord(fi), true, nil
		}
		return nil, false, nil
	}, nil), nil
}
