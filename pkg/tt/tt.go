// Package tt supports table-driven tests with little boilerplate.
//
// A test table is a list of cases built with Args(...).Rets(...); Test calls
// the function under test with each case's arguments and compares the return
// values:
//
//	tt.Test(t, tt.Fn("strings.ToUpper", strings.ToUpper), tt.Table{
//		tt.Args("a").Rets("A"),
//	})
package tt

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// Table is a list of test cases.
type Table []*Case

// Case is one test case.
type Case struct {
	args []any
	rets [][]any
}

// Args starts a new Case with the given arguments.
func Args(args ...any) *Case { return &Case{args: args} }

// Rets adds an expectation on the return values and returns the receiver.
// Each expected value may be a Matcher; other values are compared with
// go-cmp, including unexported fields.
func (c *Case) Rets(matchers ...any) *Case {
	c.rets = append(c.rets, matchers)
	return c
}

// FnToTest is a function under test along with how to show its calls.
type FnToTest struct {
	name    string
	body    any
	argsFmt string
	retsFmt string
}

// Fn wraps a function to test.
func Fn(name string, body any) *FnToTest { return &FnToTest{name: name, body: body} }

// ArgsFmt sets the format string used to show arguments in failures.
func (fn *FnToTest) ArgsFmt(s string) *FnToTest {
	fn.argsFmt = s
	return fn
}

// RetsFmt sets the format string used to show return values in failures.
func (fn *FnToTest) RetsFmt(s string) *FnToTest {
	fn.retsFmt = s
	return fn
}

// T is the subset of testing.TB used by Test.
type T interface {
	Helper()
	Errorf(format string, args ...any)
}

// Matcher can be used as an expected return value to customize matching.
type Matcher interface {
	Match(got RetValue) bool
}

// RetValue is the type of values passed to Matcher.Match. It is a distinct
// type so that Matcher isn't implemented by accident.
type RetValue any

// Any matches any value.
var Any Matcher = anyMatcher{}

type anyMatcher struct{}

func (anyMatcher) Match(RetValue) bool { return true }

var cmpOpt = cmp.Exporter(func(reflect.Type) bool { return true })

// Test runs all cases in the table.
func Test(t T, fn *FnToTest, table Table) {
	t.Helper()
	for _, c := range table {
		got := call(fn.body, c.args)
		for _, want := range c.rets {
			if match(want, got) {
				continue
			}
			args := joinAny(c.args)
			if fn.argsFmt != "" {
				args = fmt.Sprintf(fn.argsFmt, c.args...)
			}
			if fn.retsFmt != "" {
				t.Errorf("%s(%s) -> %s, want %s", fn.name, args,
					fmt.Sprintf(fn.retsFmt, got...), fmt.Sprintf(fn.retsFmt, want...))
			} else {
				t.Errorf("%s(%s) returns (-want +got):\n%s", fn.name, args,
					cmp.Diff(want, got, cmpOpt))
			}
		}
	}
}

func call(fn any, args []any) []any {
	in := make([]reflect.Value, len(args))
	fnType := reflect.TypeOf(fn)
	for i, arg := range args {
		if arg == nil {
			// reflect.ValueOf(nil) is invalid; use the zero value of the
			// parameter type instead.
			var paramType reflect.Type
			if fnType.IsVariadic() && i >= fnType.NumIn()-1 {
				paramType = fnType.In(fnType.NumIn() - 1).Elem()
			} else {
				paramType = fnType.In(i)
			}
			in[i] = reflect.Zero(paramType)
		} else {
			in[i] = reflect.ValueOf(arg)
		}
	}
	outs := reflect.ValueOf(fn).Call(in)
	rets := make([]any, len(outs))
	for i, out := range outs {
		rets[i] = out.Interface()
	}
	return rets
}

func match(want, got []any) bool {
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if m, ok := want[i].(Matcher); ok {
			if !m.Match(got[i]) {
				return false
			}
		} else if !cmp.Equal(want[i], got[i], cmpOpt) {
			return false
		}
	}
	return true
}

func joinAny(vs []any) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf("%#v", v)
	}
	return strings.Join(parts, ", ")
}
