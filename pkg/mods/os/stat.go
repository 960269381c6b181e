package os

import (
	"fmt"
	"io/fs"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval/vals"
)

func typeName(t fs.FileMode) string {
	switch {
	case t == 0:
		return "file"
	case t&fs.ModeDir != 0:
		return "dir"
	case t&fs.ModeSymlink != 0:
		return "symlink"
	case t&fs.ModeNamedPipe != 0:
		return "named-pipe"
	case t&fs.ModeSocket != 0:
		return "socket"
	case t&fs.ModeCharDevice != 0:
		return "char-device"
	case t&fs.ModeDevice != 0:
		return "device"
	case t&fs.ModeIrregular != 0:
		return "irregular"
	}
	return fmt.Sprintf("unknown %d", t)
}

func specialModes(mode fs.FileMode) vals.List {
	var names []vals.Value
	if mode&fs.ModeSetuid != 0 {
		names = append(names, str("setuid"))
	}
	if mode&fs.ModeSetgid != 0 {
		names = append(names, str("setgid"))
	}
	if mode&fs.ModeSticky != 0 {
		names = append(names, str("sticky"))
	}
	return vals.NewList(names...)
}

// Builds the record output by stat and by every row of ls.
func statRecord(fi fs.FileInfo) vals.Record {
	mode := fi.Mode()
	return new(vals.RecordBuilder).
		Add("name", str(fi.Name())).
		Add("type", str(typeName(mode.Type()))).
		Add("size", vals.Filesize{Val: fi.Size(), Ranging: diag.NoRange}).
		Add("perm", vals.Int{Val: int64(mode & fs.ModePerm), Ranging: diag.NoRange}).
		Add("special_modes", specialModes(mode)).
		Add("modified", vals.Date{Val: fi.ModTime(), Ranging: diag.NoRange}).
		MustRecord()
}

func str(s string) vals.Value { return vals.String{Val: s, Ranging: diag.NoRange} }
