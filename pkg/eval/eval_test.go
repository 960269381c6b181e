package eval_test

import (
	"errors"
	"testing"

	. "src.tide.sh/pkg/ast"
	"src.tide.sh/pkg/eval/errs"
	. "src.tide.sh/pkg/eval/evaltest"
)

func TestPipeline_Lazy(t *testing.T) {
	TestWithSetup(t, addTestCommands,
		That(Pipe(Call("count"), Call("first", Pos(Int(3))))).
			Named("first 3 of an unbounded stream").Puts(0, 1, 2),
		That(Pipe(Call("count"), Call("first", Pos(Int(3))), Call("collect"))).
			Puts([]any{0, 1, 2}),
		That(Pipe(Val(Sub(Pipe(Call("count"), Call("first", Pos(Int(2)))))))).
			Named("subexpression collects a stream").Puts([]any{0, 1}),
		That(Pipe(Call("count"), Call("first", Pos(Int(2))),
			Val(Sub(Pipe(Val(Bin(Var("in"), "++", List(Int(2))))))))).
			Named("subexpression stage reads its input as $in").Puts([]any{0, 1, 2}),
		That(Pipe(Val(List(Int(1), Int(2), Int(3))),
			Call("each", Pos(Closure(Params("x"), Pipe(Val(Bin(Var("x"), "*", Int(2))))))))).
			Puts(2, 4, 6),
		That(Pipe(Val(rangeE(Int(1), nil, Int(3), true)), Call("collect"))).
			Puts([]any{1, 2, 3}),
		That(Pipe(Val(rangeE(Int(5), nil, nil, false)), Call("first", Pos(Int(2))))).
			Named("unbounded range").Puts(5, 6),
	)
}

func TestInput(t *testing.T) {
	TestWithSetup(t, addTestCommands,
		That(Pipe(Val(Int(2)), BlkStage(Pipe(Val(Bin(Var("in"), "*", Int(3))))))).Puts(6),
		That(Pipe(Call("count"), Call("first", Pos(Int(3))), BlkStage(Pipe(Val(Var("in")))))).
			Named("$in collects the stream").Puts([]any{0, 1, 2}),
		That(Pipe(Val(Int(1)), BlkStage(Pipe(Val(Var("in"))), Pipe(Call("collect"))))).
			Named("first stage sees $in after it is read").Puts([]any{1}),
		That(Pipe(Val(Int(1)), BlkStage(Pipe(Call("collect")), Pipe(Val(Var("in")))))).
			Named("$in is nothing after the first stage took it").Puts(),
		That(Pipe(Val(Var("in")))).Named("$in at top level").Puts(),
	)
}

func TestVariables(t *testing.T) {
	Test(t,
		That(LetS("x", Int(1)), Pipe(Val(Var("x")))).Puts(1),
		That(LetS("x", Int(1)), Set("x", Int(2))).
			Throws(errs.ImmutableVariable{Name: "x"}),
		That(MutS("x", Int(1)), Set("x", Int(2)), Pipe(Val(Var("x")))).Puts(2),
		That(MutS("x", Int(1)), compound("x", "+=", Int(2)), Pipe(Val(Var("x")))).Puts(3),
		That(MutS("r", Rec("a", Int(1))), Set("r", Int(2), "a"), Pipe(Val(Var("r", "a")))).Puts(2),
		That(MutS("r", Rec("a", Int(1))), compound("r", "+=", Int(4), "a"), Pipe(Val(Var("r", "a")))).Puts(5),
		That(MutS("x", Int(1)),
			ifS(Lit(true), Blk(LetS("x", Int(2))), nil),
			Pipe(Val(Var("x")))).Named("shadowing in a block").Puts(1),
		That(Pipe(Val(Var("nope")))).Throws(errs.VariableNotFound{Name: "nope"}),
		That(Set("nope", Int(1))).Throws(errs.VariableNotFound{Name: "nope"}),
		That(LetS("r", Rec("a", Int(1))), Pipe(Val(Var("r", "b")))).
			Throws(errs.ColumnNotFound{Column: "b"}),
		That(Pipe(Val(Rec("a", Int(1), "a", Int(2))))).Throws(errs.DuplicateField{Field: "a"}),
		That(Pipe(Ext("true"))).Then(Pipe(Val(Int(1)))).Named("state is kept between pieces of code").Puts(1),
		That(MutS("x", Int(1))).Then(Pipe(Val(Var("x")))).Puts(1),
	)
}

func TestExpressions(t *testing.T) {
	Test(t,
		That(Pipe(Val(Bin(Int(1), "+", Int(2))))).Puts(3),
		That(Pipe(Val(Bin(Int(1), "==", Lit(1.0))))).Puts(true),
		That(Pipe(Val(Bin(Int(1), "+", Str("a"))))).Throws(ErrorInCategory(errs.Type)),
		That(Pipe(Val(Bin(Lit(false), "and", Var("nope"))))).Named("and short-circuits").Puts(false),
		That(Pipe(Val(Bin(Lit(true), "or", Var("nope"))))).Named("or short-circuits").Puts(true),
		That(Pipe(Val(Bin(Int(1), "and", Lit(true))))).Throws(ErrorWithType(errs.IncompatibleOperands{})),
		That(Pipe(Val(interp(Str("a"), Int(1), Str("b"))))).Puts("a1b"),
		That(Pipe(Val(List(Int(1), Str("a"))))).Puts([]any{1, "a"}),
		That(Pipe(Val(rangeE(Int(1), Int(1), Int(3), false)))).
			Throws(ErrorWithType(errs.InvalidRange{})),
		That(Pipe(Val(rangeE(Str("a"), nil, Int(3), false)))).
			Throws(ErrorWithType(errs.TypeMismatch{})),
		That(Pipe(Val(Lit(errors.New("boom"))))).Named("an error value raises at top level").
			Throws(ErrorWithMessage("boom")),
	)
}

func TestControlFlow(t *testing.T) {
	TestWithSetup(t, addTestCommands,
		That(ifS(Lit(true), Blk(Pipe(Val(Str("then")))), Blk(Pipe(Val(Str("else")))))).Puts("then"),
		That(ifS(Lit(false), Blk(Pipe(Val(Str("then")))), Blk(Pipe(Val(Str("else")))))).Puts("else"),
		That(ifS(Int(1), Blk(), nil)).
			Throws(errs.TypeMismatch{What: "condition", Want: "bool", Got: "int"}),
		That(MutS("i", Int(0)),
			whileS(Bin(Var("i"), "<", Int(3)), compound("i", "+=", Int(1))),
			Pipe(Val(Var("i")))).Puts(3),
		That(MutS("acc", List()),
			forS("i", List(Int(1), Int(2), Int(3)),
				ifS(Bin(Var("i"), "==", Int(2)), Blk(continueS()), nil),
				compound("acc", "++=", List(Var("i")))),
			Pipe(Val(Var("acc")))).Named("continue").Puts([]any{1, 3}),
		That(MutS("acc", List()),
			forS("i", rangeE(Int(0), nil, nil, false),
				ifS(Bin(Var("i"), ">=", Int(2)), Blk(breakS()), nil),
				compound("acc", "++=", List(Var("i")))),
			Pipe(Val(Var("acc")))).Named("break out of an unbounded range").Puts([]any{0, 1}),
		That(forS("i", List(Int(1)), Set("i", Int(2)))).Throws(errs.ImmutableVariable{Name: "i"}),
		That(breakS()).Throws(errs.UnexpectedControlFlowError{Flow: "break"}),
		That(continueS()).Throws(errs.UnexpectedControlFlowError{Flow: "continue"}),
		That(returnS(nil)).Throws(errs.UnexpectedControlFlowError{Flow: "return"}),
		That(LetS("f", Closure(nil, returnS(Int(1)), Pipe(Val(Int(2))))),
			Pipe(CallClosure(Var("f")))).Puts(1),
		That(defS("first-big", nil,
			forS("x", List(Int(1), Int(5), Int(10)),
				ifS(Bin(Var("x"), ">", Int(3)), Blk(returnS(Var("x"))), nil))),
			Pipe(Call("first-big"))).Named("return from inside a loop").Puts(5),

		That(defS("stop", nil, breakS()),
			MutS("n", Int(0)),
			forS("x", List(Int(1), Int(2), Int(3)), Pipe(Call("stop")), compound("n", "+=", Int(1)))).
			Named("break does not leave a def").Throws(errs.UnexpectedControlFlowError{Flow: "break"}),
		That(forS("x", List(Int(1), Int(2)), Pipe(CallClosure(Closure(nil, continueS()))))).
			Named("continue does not leave a closure").
			Throws(errs.UnexpectedControlFlowError{Flow: "continue"}),
		That(forS("x", List(Int(1)),
			Pipe(Val(List(Int(1), Int(2))), Call("each", Pos(Closure(Params("y"), breakS())))))).
			Named("break in a closure called by a command").
			Throws(errs.UnexpectedControlFlowError{Flow: "break"}),
	)
}

func TestTry(t *testing.T) {
	TestWithSetup(t, addTestCommands,
		That(tryS(Blk(Pipe(Call("fail"))), "e", Blk(Pipe(Val(Var("e", "category")))))).Puts("type"),
		That(tryS(Blk(Pipe(Call("fail"))), "e", Blk(Pipe(Val(Var("e", "msg")))))).
			Puts(errs.BadValue{What: "input", Valid: "anything else", Actual: "this"}.Error()),
		That(tryS(Blk(Pipe(Call("fail"))), "", Blk(Pipe(Val(Var("in", "category")))))).
			Named("catch block gets the error as $in").Puts("type"),
		That(tryS(Blk(Pipe(Call("fail"))), "", nil)).Named("try without catch").Puts(),
		That(tryS(Blk(Pipe(Val(Int(1)))), "e", Blk(Pipe(Val(Int(2)))))).Puts(1),
		That(tryS(Blk(Pipe(Ext("false"))), "e", Blk(Pipe(Val(Var("e", "category")))))).
			Named("catch external failure").Puts("external-failed"),
		That(whileS(Lit(true), tryS(Blk(breakS()), "", Blk(Pipe(Val(Str("caught")))))),
			Pipe(Val(Str("after")))).Named("try does not catch break").Puts("after"),
		That(Pipe(Call("fail"))).Then(Pipe(Val(Int(1)))).
			Named("an error does not end the session").Puts(1).Throws(AnyError),
	)
}

func TestClosures(t *testing.T) {
	TestWithSetup(t, addTestCommands,
		That(LetS("add", Closure(Params("a", "b"), Pipe(Val(Bin(Var("a"), "+", Var("b")))))),
			Pipe(CallClosure(Var("add"), Pos(Int(1)), Pos(Int(2))))).Puts(3),
		That(LetS("add", Closure(Params("a", "b"), Pipe(Val(Var("a"))))),
			Pipe(CallClosure(Var("add"), Pos(Int(1))))).
			Throws(errs.MissingMandatoryPositional{Command: "closure", Param: "b"}),
		That(Pipe(CallClosure(Int(1)))).
			Throws(errs.TypeMismatch{What: "callee", Want: "closure", Got: "int"}),
		That(MutS("x", Int(1)),
			LetS("f", Closure(nil, Set("x", Int(2)))),
			Pipe(CallClosure(Var("f")))).Throws(errs.ImmutableVariable{Name: "x"}),
		That(LetS("f", Closure(nil, Pipe(Val(Var("later"))))),
			LetS("later", Int(1)),
			Pipe(CallClosure(Var("f")))).Named("globals defined later are visible").Puts(1),
		That(Pipe(Val(Int(7)), CallClosure(Closure(nil, Pipe(Val(Var("in"))))))).
			Named("closure input is $in").Puts(7),
		That(Pipe(CallClosure(Closure(Params("a"), Pipe(Val(Var("a")))), Pos(Int(1)), Pos(Int(2))))).
			Named("a closure stage rejects extra arguments").
			Throws(ErrorWithType(errs.TooManyPositionals{})),
		That(Pipe(Val(List(Int(1), Int(2))), Call("each", Pos(Closure(nil, Pipe(Val(Int(0)))))))).
			Named("commands calling closures drop extra arguments").Puts(0, 0),
	)
}

// Variables are captured when the closure is made; commands are looked up
// when the closure runs. Both are pinned here side by side.
func TestBindingStrategies(t *testing.T) {
	TestWithSetup(t, addTestCommands,
		That(MutS("x", Int(5)),
			LetS("f", Closure(nil, Pipe(Val(Var("x"))))),
			Set("x", Int(6)),
			Pipe(CallClosure(Var("f")))).Named("closure snapshots variables").Puts(5),
		That(defS("greet", nil, Pipe(Val(Str("old")))),
			LetS("f", Closure(nil, Pipe(Call("greet")))),
			defS("greet", nil, Pipe(Val(Str("new")))),
			Pipe(CallClosure(Var("f")))).Named("closure sees redefined command").Puts("new"),
		That(MutS("x", Int(1)),
			defS("show", nil, Pipe(Val(Var("x")))),
			Set("x", Int(2)),
			Pipe(Call("show"))).Named("def reads live globals").Puts(2),
		That(Pipe(Call("greet"))).Throws(errs.CommandNotFound{Name: "greet"}),
		That(Pipe(Call("later")), defS("later", nil)).
			Named("defs are not hoisted").Throws(errs.CommandNotFound{Name: "later"}),
	)
}

func TestDef(t *testing.T) {
	greet := defS("greet",
		[]Param{{Name: "name", Kind: Required}, {Name: "loud", Kind: Switch, Short: 'l'}},
		ifS(Var("loud"), Blk(Pipe(Val(Str("HI")))), Blk(Pipe(Val(Var("name"))))))
	Test(t,
		That(greet, Pipe(Call("greet", Pos(Str("bob"))))).Puts("bob"),
		That(greet, Pipe(Call("greet", Pos(Str("bob")), Sw("loud")))).Puts("HI"),
		That(greet, Pipe(Call("greet", Pos(Str("bob")), shortFl("l", nil)))).Puts("HI"),
		That(greet, Pipe(Call("greet"))).
			Throws(errs.MissingMandatoryPositional{Command: "greet", Param: "name"}),
		That(defS("run", []Param{{Name: "dry-run", Kind: Switch}}, Pipe(Val(Var("dry_run")))),
			Pipe(Call("run", Sw("dry-run")))).Named("dashes become underscores").Puts(true),
		That(defS("opt", []Param{{Name: "n", Kind: Optional, Default: Int(3)}}, Pipe(Val(Var("n")))),
			Pipe(Call("opt"))).Puts(3),
		That(defS("all", []Param{{Name: "xs", Kind: Rest}}, Pipe(Val(Var("xs")))),
			Pipe(Call("all", Pos(Int(1)), Pos(Int(2))))).Puts([]any{1, 2}),
		That(defS("typed", []Param{{Name: "n", Shape: "int"}}, Pipe(Val(Var("n")))),
			Pipe(Call("typed", Pos(Str("x"))))).Throws(ErrorWithType(errs.ArgTypeMismatch{})),
		That(defS("bad", []Param{{Name: "n", Shape: "bogus"}})).
			Throws(ErrorInCategory(errs.ParseHandoff)),
	)
}

func TestEnv(t *testing.T) {
	Test(t,
		That(setEnv("TIDE_TEST_VAR", Str("bar")), Pipe(Val(Var("env", "TIDE_TEST_VAR")))).Puts("bar"),
		That(setEnv("TIDE_TEST_VAR", Int(3)), Pipe(Val(Var("env", "TIDE_TEST_VAR")))).
			Named("scalars become strings").Puts("3"),
		That(setEnv("TIDE_TEST_VAR", List())).Throws(ErrorWithType(errs.TypeMismatch{})),
		That(setEnv("TIDE_TEST_VAR", Str("a")),
			&Assign{Ranging: noRange, Name: "env", Path: Path("TIDE_TEST_VAR"), Op: "++=",
				Value: Pipe(Val(Str("b")))},
			Pipe(Val(Var("env", "TIDE_TEST_VAR")))).Puts("ab"),
		That(setEnv("TIDE_TEST_VAR", Str("x")), Pipe(Ext("sh", "-c", "echo $TIDE_TEST_VAR"))).
			Named("external commands see the environment").Prints("x\n"),
		That(setEnv("PWD", Str("/nonexistent-dir"))).Throws(AnyError),
		That(Pipe(Val(Bin(Var("pwd"), "==", Var("env", "PWD"))))).Puts(true),
		That(Set("pwd", Str("/"))).Throws(errs.ImmutableVariable{Name: "pwd"}),
	)
}
