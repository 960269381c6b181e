//go:build unix

package eval_test

import (
	"os"
	"path/filepath"
	"testing"

	. "src.tide.sh/pkg/ast"
	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/eval/errs"
	. "src.tide.sh/pkg/eval/evaltest"
	"src.tide.sh/pkg/testutil"
)

func TestExternalCommands(t *testing.T) {
	testutil.FakeCommands(t, map[string]string{
		"fail7":  "cat > /dev/null\nexit 7",
		"noisy":  "echo oops >&2",
		"half":   "echo a\nexit 3",
		"upcase": "tr a-z A-Z",
		"nlines": "wc -l | tr -d ' '",
	})
	dir := testutil.TempDir(t)
	out := filepath.Join(dir, "out.txt")

	TestWithSetup(t, addTestCommands,
		That(Pipe(Ext("echo", "hello"))).Prints("hello\n"),
		That(Pipe(Ext("printf", `a\nb\nc\n`), Call("collect"))).
			Named("lines of an external command").Puts([]any{"a", "b", "c"}),
		That(Pipe(Call("write-file", Pos(Str(out))), Ext("fail7"))).
			Named("failure at the end keeps earlier effects").
			Throws(CmdExit(7)).
			Passes(func(t *testing.T) {
				content, err := os.ReadFile(out)
				if err != nil || string(content) != "written" {
					t.Errorf("file has %q, %v; want %q", content, err, "written")
				}
			}),
		That(Pipe(Ext("half"), Call("collect"))).
			Named("failure of a stream producer").Throws(CmdExit(3)),
		That(Pipe(Ext("half"))).Prints("a\n").Throws(CmdExit(3)),
		That(Pipe(Ext("nonexistent-command-for-test"))).
			Throws(ErrorInCategory(errs.ExternalSpawn)),
		That(Pipe(Val(List(Str("x"), Str("y"))), Ext("cat"))).
			Named("values are written one per line").Prints("x\ny\n"),
		That(Pipe(Call("count"), Call("first", Pos(Int(2))), Ext("cat"))).Prints("0\n1\n"),
		That(Pipe(Call("count"), Call("first", Pos(Int(200000))), Ext("nlines"))).
			Named("a long value stream reaches the external in full").Prints("200000\n"),
		That(Pipe(Val(List(Int(1), Int(2), Int(3))),
			Call("each", Pos(Closure(Params("x"), Pipe(Val(Bin(Var("x"), "*", Int(2))))))),
			Ext("cat"))).Named("closures feeding an external").Prints("2\n4\n6\n"),
		That(Pipe(Val(Str("abc")), Ext("upcase"))).Prints("ABC"),
		That(Pipe(Ext("printf", `b\na\n`), Ext("sort"))).Prints("a\nb\n"),
		That(Pipe(Ext("yes"), Ext("head", "-n", "2"))).
			Named("early stages killed by SIGPIPE").Prints("y\ny\n"),
		That(Pipe(Call("count"), Ext("head", "-n", "1"))).
			Named("unbounded values into an external").Prints("0\n"),
		That(&Let{Ranging: noRange, Name: "x", Value: Pipe(Ext("echo", "hi"))},
			Pipe(Val(Var("x")))).Named("captured output").Puts("hi"),
		That(Pipe(Ext("noisy"))).PrintsStderrWith("oops"),
		That(Pipe(&ExternalCall{Ranging: noRange, Head: Str("noisy"), StderrToStdout: true})).
			Prints("oops\n"),
		That(Pipe(Ext("false"))).Throws(CmdExit(1)),
		That(Pipe(Ext("pwd"))).
			WithSetup(func(ev *eval.Evaler) {
				if err := ev.Chdir(dir); err != nil {
					panic(err)
				}
			}).
			Named("external commands start in the working directory").Prints(dir+"\n"),
	)
}
