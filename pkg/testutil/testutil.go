// Package testutil contains common test utilities.
package testutil

import (
	"io"
	"os"
	"path/filepath"
)

// Cleanuper wraps the Cleanup method. It is a subset of testing.TB.
type Cleanuper interface {
	Cleanup(func())
}

// TempDir creates a temporary directory with symlinks resolved, removed when
// the test finishes.
func TempDir(c Cleanuper) string {
	dir, err := os.MkdirTemp("", "tidetest")
	if err != nil {
		panic(err)
	}
	dir, err = filepath.EvalSymlinks(dir)
	if err != nil {
		panic(err)
	}
	c.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

// MustWriteFile writes a file and panics on failure.
func MustWriteFile(name string, content string) {
	if err := os.WriteFile(name, []byte(content), 0600); err != nil {
		panic(err)
	}
}

// MustPipe calls os.Pipe and panics on failure.
func MustPipe() (*os.File, *os.File) {
	r, w, err := os.Pipe()
	if err != nil {
		panic(err)
	}
	return r, w
}

// MustReadAllAndClose reads r to the end and closes it, panicking on failure.
func MustReadAllAndClose(r io.ReadCloser) []byte {
	bs, err := io.ReadAll(r)
	if err != nil {
		panic(err)
	}
	r.Close()
	return bs
}
