// Package evaltest provides a framework for testing code run by the
// evaluator.
//
// The entry point for the framework is the Test function, which accepts a
// *testing.T and any number of test cases.
//
// Test cases are constructed using the That function, which takes statements
// built with the helpers in pkg/ast, followed by method calls that add
// additional information to it.
//
// Example:
//
//	Test(t,
//	    That(Pipe(Call("echo", Pos(Str("x"))))).Puts("x"),
//	    That(Pipe(Ext("echo", "x"))).Prints("x\n"))
//
// If some setup is needed, use the TestWithSetup function instead.
package evaltest

import (
	"bytes"
	"fmt"
	"os"
	"reflect"
	"strings"
	"testing"

	"src.tide.sh/pkg/ast"
	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/eval/vals"
	"src.tide.sh/pkg/testutil"
)

// Case is a test case that can be used in Test.
type Case struct {
	name   string
	blocks []*ast.Block
	setup  func(ev *eval.Evaler)
	verify func(t *testing.T)
	want   result
}

type result struct {
	ValueOut  []vals.Value
	BytesOut  []byte
	StderrOut []byte

	Exception error
}

// That returns a new Case that evaluates the given statements as one piece of
// top-level code. To specify multiple pieces of code that are evaluated
// separately, use the Then method.
//
// When combined with subsequent method calls, a test case reads like English.
// For example, a test for the fact that "echo x" outputs "x" reads:
//
//	That(Pipe(Call("echo", Pos(Str("x"))))).Puts("x")
func That(stmts ...ast.Stmt) Case {
	return Case{blocks: []*ast.Block{ast.Blk(stmts...)}}
}

// ThatBlock is like That, but takes a whole block.
func ThatBlock(b *ast.Block) Case {
	return Case{blocks: []*ast.Block{b}}
}

// Named returns a Case with the given name, used as the name of the subtest.
func (c Case) Named(name string) Case {
	c.name = name
	return c
}

// Then returns a new Case that evaluates the given statements in addition,
// as a separate piece of code with the same Evaler.
func (c Case) Then(stmts ...ast.Stmt) Case {
	c.blocks = append(c.blocks, ast.Blk(stmts...))
	return c
}

// WithSetup returns a new Case with the given setup function executed on the
// Evaler before the code is executed.
func (c Case) WithSetup(f func(*eval.Evaler)) Case {
	c.setup = f
	return c
}

// DoesNothing returns c unchanged. It is useful to mark tests that don't have
// any side effects.
func (c Case) DoesNothing() Case {
	return c
}

// Passes returns an altered Case that runs an additional verification
// function.
func (c Case) Passes(f func(t *testing.T)) Case {
	c.verify = f
	return c
}

// Puts returns an altered Case that requires the code to output the specified
// values. Go values are converted with vals.FromGo; ValueMatcher values have
// their own matching semantics.
func (c Case) Puts(vs ...any) Case {
	c.want.ValueOut = make([]vals.Value, len(vs))
	for i, v := range vs {
		if m, ok := v.(ValueMatcher); ok {
			c.want.ValueOut[i] = matcherValue{m}
		} else {
			c.want.ValueOut[i] = vals.FromGo(v)
		}
	}
	return c
}

// Prints returns an altered Case that requires the code to write the
// specified bytes to stdout.
func (c Case) Prints(s string) Case {
	c.want.BytesOut = []byte(s)
	return c
}

// PrintsStderrWith returns an altered Case that requires the stderr output to
// contain the given text.
func (c Case) PrintsStderrWith(s string) Case {
	c.want.StderrOut = []byte(s)
	return c
}

// Throws returns an altered Case that requires the code to throw an
// exception with the given reason. The reason supports special matcher values
// constructed by functions like ErrorWithMessage.
func (c Case) Throws(reason error) Case {
	c.want.Exception = exc{reason}
	return c
}

// Test runs test cases. For each test case, a new Evaler is created with
// NewEvaler.
func Test(t *testing.T, tests ...Case) {
	t.Helper()
	TestWithSetup(t, func(*eval.Evaler) {}, tests...)
}

// TestWithSetup runs test cases. For each test case, a new Evaler is created
// with NewEvaler and passed to the setup function.
func TestWithSetup(t *testing.T, setup func(*eval.Evaler), tests ...Case) {
	t.Helper()
	for i, tc := range tests {
		name := tc.name
		if name == "" {
			name = fmt.Sprintf("case %d", i)
		}
		t.Run(name, func(t *testing.T) {
			t.Helper()
			ev := eval.NewEvaler()
			setup(ev)
			if tc.setup != nil {
				tc.setup(ev)
			}

			r := evalAndCollect(t, ev, tc.blocks)

			if tc.verify != nil {
				tc.verify(t)
			}
			if !matchOut(tc.want.ValueOut, r.ValueOut) {
				t.Errorf("got value out %s, want %s", reprs(r.ValueOut), reprs(tc.want.ValueOut))
			}
			if !bytes.Equal(tc.want.BytesOut, r.BytesOut) {
				t.Errorf("got bytes out %q, want %q", r.BytesOut, tc.want.BytesOut)
			}
			if tc.want.StderrOut == nil {
				if len(r.StderrOut) > 0 {
					t.Errorf("got stderr out %q, want empty", r.StderrOut)
				}
			} else {
				if !bytes.Contains(r.StderrOut, tc.want.StderrOut) {
					t.Errorf("got stderr out %q, want output containing %q",
						r.StderrOut, tc.want.StderrOut)
				}
			}
			if !matchErr(tc.want.Exception, r.Exception) {
				t.Errorf("unexpected exception")
				if exc, ok := r.Exception.(*eval.Exception); ok {
					// For an *eval.Exception report the type of the underlying error.
					t.Logf("got: %T: %v", exc.Reason, exc)
				} else {
					t.Logf("got: %T: %v", r.Exception, r.Exception)
				}
				t.Errorf("want: %v", tc.want.Exception)
			}
		})
	}
}

func evalAndCollect(t *testing.T, ev *eval.Evaler, blocks []*ast.Block) result {
	var r result

	stdin, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatal(err)
	}
	defer stdin.Close()
	stdout, collectStdout := capture()
	stderr, collectStderr := capture()

	for _, block := range blocks {
		err := ev.Eval(diag.Source{Name: "[test]"}, block, eval.EvalCfg{
			Stdin: stdin, Stdout: stdout, Stderr: stderr,
			PutValue: func(v vals.Value) error {
				r.ValueOut = append(r.ValueOut, v)
				return nil
			},
		})
		if err != nil {
			// NOTE: If multiple code pieces throw exceptions, only the last one
			// is saved.
			r.Exception = err
		}
	}

	r.BytesOut = collectStdout()
	r.StderrOut = collectStderr()
	return r
}

// Returns the writing end of a pipe, and a function that closes it and
// returns everything written to it.
func capture() (*os.File, func() []byte) {
	r, w := testutil.MustPipe()
	ch := make(chan []byte, 1)
	go func() {
		ch <- testutil.MustReadAllAndClose(r)
	}()
	return w, func() []byte {
		w.Close()
		return <-ch
	}
}

func reprs(vs []vals.Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = vals.Repr(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func matchOut(want, got []vals.Value) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if !match(got[i], want[i]) {
			return false
		}
	}
	return true
}

func match(got, want vals.Value) bool {
	if m, ok := want.(matcherValue); ok {
		return m.matchValue(got)
	}
	return vals.Equal(got, want)
}

func matchErr(want, got error) bool {
	if want == nil {
		return got == nil
	}
	if matcher, ok := want.(errorMatcher); ok {
		return matcher.matchError(got)
	}
	return reflect.DeepEqual(want, got)
}
