package platform

import (
	"errors"
	"runtime"
	"testing"

	. "src.tide.sh/pkg/ast"
	"src.tide.sh/pkg/eval"
	. "src.tide.sh/pkg/eval/evaltest"
)

func setup(ev *eval.Evaler) {
	for _, cmd := range Commands {
		ev.AddCommand(cmd)
	}
}

func TestHost(t *testing.T) {
	saved := osHostname
	t.Cleanup(func() { osHostname = saved })
	osHostname = func() (string, error) { return "mach1.domain.tld", nil }

	TestWithSetup(t, setup,
		That(Pipe(Call("sys host"))).Puts(RecordContaining(
			"name", runtime.GOOS, "arch", runtime.GOARCH, "hostname", "mach1.domain.tld")),
		That(Pipe(Call("sys host", Sw("strip-domain")))).Puts(RecordContaining("hostname", "mach1")),
	)
}

func TestHost_HostnameError(t *testing.T) {
	saved := osHostname
	t.Cleanup(func() { osHostname = saved })
	errHostname := errors.New("hostname failed")
	osHostname = func() (string, error) { return "", errHostname }

	TestWithSetup(t, setup,
		That(Pipe(Call("sys host"))).Throws(ErrorWithMessage("hostname failed")),
	)
}
