package eval_test

import (
	"errors"
	"strings"
	"testing"

	. "src.tide.sh/pkg/ast"
	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/errutil"
	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/eval/errs"
)

func at(from, to int) diag.Ranging { return diag.Ranging{From: from, To: to} }

func TestException_Show(t *testing.T) {
	ev := eval.NewEvaler()
	addTestCommands(ev)
	// fail
	src := diag.Source{Name: "[test]", Code: "fail"}
	tree := &Block{Ranging: at(0, 4), Stmts: []Stmt{
		&Pipeline{Ranging: at(0, 4), Stages: []Stage{&InternalCall{Ranging: at(0, 4), Name: "fail"}}},
	}}
	err := ev.Eval(src, tree, eval.EvalCfg{PutValue: discardValue})

	exc, ok := err.(*eval.Exception)
	if !ok {
		t.Fatalf("got %T, want *eval.Exception", err)
	}
	if _, ok := exc.Reason.(errs.BadValue); !ok {
		t.Errorf("got reason %T, want errs.BadValue", exc.Reason)
	}
	if exc.Category() != errs.Type {
		t.Errorf("got category %v, want %v", exc.Category(), errs.Type)
	}
	shown := exc.Show("")
	for _, want := range []string{"Exception: ", exc.Reason.Error(), "[test], line 1:"} {
		if !strings.Contains(shown, want) {
			t.Errorf("Show() -> %q, want it to contain %q", shown, want)
		}
	}
}

func TestException_Traceback(t *testing.T) {
	ev := eval.NewEvaler()
	addTestCommands(ev)
	// def f { fail }; f
	src := diag.Source{Name: "[test]", Code: "def f { fail }; f"}
	tree := &Block{Ranging: at(0, 17), Stmts: []Stmt{
		&Def{Ranging: at(0, 14), Name: "f", Body: &Block{Ranging: at(6, 14), Stmts: []Stmt{
			&Pipeline{Ranging: at(8, 12), Stages: []Stage{&InternalCall{Ranging: at(8, 12), Name: "fail"}}},
		}}},
		&Pipeline{Ranging: at(16, 17), Stages: []Stage{&InternalCall{Ranging: at(16, 17), Name: "f"}}},
	}}
	err := ev.Eval(src, tree, eval.EvalCfg{PutValue: discardValue})

	exc, ok := err.(*eval.Exception)
	if !ok {
		t.Fatalf("got %T, want *eval.Exception", err)
	}
	if exc.StackTrace == nil || exc.StackTrace.Next == nil {
		t.Fatalf("want a stack trace with at least two entries")
	}
	if got := exc.StackTrace.Head.Culprit(); got != "fail" {
		t.Errorf("innermost culprit is %q, want %q", got, "fail")
	}
	if !strings.Contains(exc.Show(""), "Traceback:") {
		t.Errorf("Show() -> %q, want a traceback", exc.Show(""))
	}
}

func TestException_ShowMultipleCauses(t *testing.T) {
	exc := &eval.Exception{Reason: errutil.Multi(errors.New("first"), errors.New("second"))}
	shown := exc.Show("")
	for _, want := range []string{"Caused by:", "first", "second"} {
		if !strings.Contains(shown, want) {
			t.Errorf("Show() -> %q, want it to contain %q", shown, want)
		}
	}
}

func TestFlow(t *testing.T) {
	f := &eval.Flow{Kind: eval.Break, Ranging: diag.NoRange}
	if f.Error() != "break" {
		t.Errorf("Error() -> %q, want break", f.Error())
	}
	if s := eval.FlowKind(10).String(); s != "!(BAD FLOW: 10)" {
		t.Errorf("String() of bad kind -> %q", s)
	}
}

func TestReason(t *testing.T) {
	err := errors.New("x")
	if eval.Reason(err) != err {
		t.Errorf("Reason of a plain error should be itself")
	}
	if eval.Reason(&eval.Exception{Reason: err}) != err {
		t.Errorf("Reason of an exception should be its reason")
	}
}
