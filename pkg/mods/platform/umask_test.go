//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package platform

import (
	"testing"

	"golang.org/x/sys/unix"

	. "src.tide.sh/pkg/ast"
	"src.tide.sh/pkg/eval/errs"
	. "src.tide.sh/pkg/eval/evaltest"
)

func TestUmask(t *testing.T) {
	saved := umaskVal
	t.Cleanup(func() { restoreUmask(saved) })

	TestWithSetup(t, setup,
		That(Pipe(Call("sys umask", Pos(Str("027"))))).Then(Pipe(Call("sys umask"))).Puts("0o027"),
		That(Pipe(Call("sys umask", Pos(Int(0o22))))).Then(Pipe(Call("sys umask"))).Puts("0o022"),
		That(Pipe(Call("sys umask", Pos(Str("0x3f"))))).Then(Pipe(Call("sys umask"))).Puts("0o077"),
		That(Pipe(Call("sys umask", Pos(Lit(1.5))))).
			Throws(errs.BadValue{What: "umask", Valid: validUmaskMsg, Actual: "1.5"}),
		That(Pipe(Call("sys umask", Pos(Str("x"))))).
			Throws(errs.BadValue{What: "umask", Valid: validUmaskMsg, Actual: `"x"`}),
		That(Pipe(Call("sys umask", Pos(Int(0o1000))))).
			Throws(errs.OutOfRange{What: "umask", ValidLow: 0, ValidHigh: 0o777, Actual: "0o1000"}),
	)
}

func restoreUmask(mask int) {
	umaskMutex.Lock()
	defer umaskMutex.Unlock()
	umaskVal = mask
	unix.Umask(mask)
}
