// Package platform contains commands that describe the platform being run on.
package platform

import (
	"os"
	"runtime"
	"strings"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/eval/stream"
	"src.tide.sh/pkg/eval/vals"
	"src.tide.sh/pkg/logutil"
)

var logger = logutil.GetLogger("[mods/platform] ")

// Commands contains sys host and sys umask.
var Commands = []eval.Command{
	eval.CommandFunc(eval.NewSignature("sys host").
		Usage("Outputs a record describing the host: name, arch, hostname, kernel_version and is_unix.").
		Switch("strip-domain", 's', "strip the domain from the hostname").
		Output(eval.ShapeRecord),
		host),
	eval.CommandFunc(eval.NewSignature("sys umask").
		Usage("Outputs the file creation mask as an octal string, or sets it.").
		Optional("mask", eval.ShapeAny, "the new mask; strings are octal"),
		umask),
}

var osHostname = os.Hostname // to allow mocking in unit tests

func hostname(stripDomain bool) (string, error) {
	hostname, err := osHostname()
	if err != nil {
		return "", err
	}
	if !stripDomain {
		return hostname, nil
	}
	parts := strings.SplitN(hostname, ".", 2)
	return parts[0], nil
}

func str(s string) vals.Value { return vals.String{Val: s, Ranging: diag.NoRange} }

func host(_ *eval.Frame, call *eval.Call, _ stream.Data) (stream.Data, error) {
	name, err := hostname(call.HasFlag("strip-domain"))
	if err != nil {
		return nil, err
	}
	var b vals.RecordBuilder
	b.Add("name", str(runtime.GOOS)).
		Add("arch", str(runtime.GOARCH)).
		Add("hostname", str(name)).
		Add("kernel_version", str(kernelVersion())).
		Add("is_unix", vals.Bool{Val: isUnix, Ranging: diag.NoRange})
	r, err := b.Record()
	if err != nil {
		return nil, err
	}
	return stream.Single{Value: r}, nil
}
