//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package platform

import (
	"errors"
	"runtime"

	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/eval/stream"
)

var isUnix = runtime.GOOS != "windows" && runtime.GOOS != "plan9" && runtime.GOOS != "js"

func kernelVersion() string { return "" }

var errUmaskUnsupported = errors.New("umask is not supported on " + runtime.GOOS)

func umask(*eval.Frame, *eval.Call, stream.Data) (stream.Data, error) {
	return nil, errUmaskUnsupported
}
