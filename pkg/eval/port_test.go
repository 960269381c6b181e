//go:build unix

package eval

import (
	"io"
	"strings"
	"testing"

	"github.com/creack/pty"

	"src.tide.sh/pkg/ast"
	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval/stream"
	"src.tide.sh/pkg/eval/vals"
	"src.tide.sh/pkg/testutil"
)

func TestIsTerminal(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skip("cannot open pty:", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	if !isTerminal(tty) {
		t.Errorf("isTerminal(tty) -> false")
	}
	r, w := testutil.MustPipe()
	defer r.Close()
	defer w.Close()
	if isTerminal(r) {
		t.Errorf("isTerminal(pipe) -> true")
	}
	if isTerminal(nil) {
		t.Errorf("isTerminal(nil) -> true")
	}
}

// Only the first stage of a pipeline reads from the terminal.
func TestExternal_TerminalStdin(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skip("cannot open pty:", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	run := func(p *ast.Pipeline) string {
		ev := NewEvaler()
		r, w := testutil.MustPipe()
		err := ev.Eval(diag.Source{Name: "[test]"}, ast.Blk(p), EvalCfg{Stdin: tty, Stdout: w})
		w.Close()
		out := string(testutil.MustReadAllAndClose(r))
		if err != nil {
			t.Errorf("Eval -> %v", err)
		}
		return out
	}

	check := ast.Ext("sh", "-c", "if test -t 0; then echo tty; else echo notty; fi")
	if out := run(ast.Pipe(check)); out != "tty\n" {
		t.Errorf("first stage got %q, want tty", out)
	}
	if out := run(ast.Pipe(ast.Val(ast.Str("x")), check)); out != "notty\n" {
		t.Errorf("later stage got %q, want notty", out)
	}
}

func TestValuesReader(t *testing.T) {
	vs := stream.FromSlice(nil, []vals.Value{vals.FromGo("a"), vals.FromGo(1), vals.FromGo(true)})
	r := newValuesReader(vs)
	bs, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(bs); got != "a\n1\ntrue\n" {
		t.Errorf("read %q", got)
	}
	r.Close()
	if _, ok := vs.Next(); ok {
		t.Errorf("stream not closed")
	}
}

func TestValuesReader_SmallBuffer(t *testing.T) {
	r := newValuesReader(stream.FromSlice(nil, []vals.Value{vals.FromGo(strings.Repeat("x", 10))}))
	buf := make([]byte, 3)
	var sb strings.Builder
	for {
		n, err := r.Read(buf)
		sb.Write(buf[:n])
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
	}
	if sb.String() != strings.Repeat("x", 10)+"\n" {
		t.Errorf("read %q", sb.String())
	}
}
