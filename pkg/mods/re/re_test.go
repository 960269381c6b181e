package re_test

import (
	"testing"

	. "src.tide.sh/pkg/ast"
	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/eval/errs"
	. "src.tide.sh/pkg/eval/evaltest"
	"src.tide.sh/pkg/eval/vals"
	"src.tide.sh/pkg/mods/re"
)

func setup(ev *eval.Evaler) {
	for _, cmd := range re.Commands {
		ev.AddCommand(cmd)
	}
}

func on(s string, name string, args ...Arg) *Pipeline {
	return Pipe(Val(Str(s)), Call(name, args...))
}

func span(text string, start, end int) *vals.RecordBuilder {
	return new(vals.RecordBuilder).
		Add("text", vals.FromGo(text)).Add("start", vals.FromGo(start)).Add("end", vals.FromGo(end))
}

func match(text string, start, end int, groups ...vals.Value) vals.Value {
	return span(text, start, end).Add("groups", vals.NewList(groups...)).MustRecord()
}

func group(text string, start, end int) vals.Value { return span(text, start, end).MustRecord() }

func TestMatchAndQuote(t *testing.T) {
	TestWithSetup(t, setup,
		That(on("abc", "re match", Pos(Str("b+")))).Puts(true),
		That(on("abc", "re match", Pos(Str("^b")))).Puts(false),
		That(Pipe(Val(List(Str("a1"), Str("b"))), Call("re match", Pos(Str(`\d`))))).Puts(true, false),
		That(on("abc", "re match", Pos(Str("(")))).Throws(ErrorWithType(errs.BadValue{})),
		That(Pipe(Val(Int(1)), Call("re match", Pos(Str("1"))))).
			Throws(errs.InputTypeMismatch{Command: "re match", Want: "string", Got: "int"}),

		That(on("a.b*", "re quote")).Puts(`a\.b\*`),
	)
}

func TestFind(t *testing.T) {
	TestWithSetup(t, setup,
		That(on("a1 b22", "re find", Pos(Str(`[a-z](\d+)`)))).Puts(
			match("a1", 0, 2, group("a1", 0, 2), group("1", 1, 2)),
			match("b22", 3, 6, group("b22", 3, 6), group("22", 4, 6))),
		That(on("a1 b22", "re find", Pos(Str(`\d+`)), Fl("max", Int(1)))).Puts(
			match("1", 1, 2, group("1", 1, 2))),
		That(on("ab", "re find", Pos(Str(`a(x)?`)))).Named("unmatched group").Puts(
			match("a", 0, 1, group("a", 0, 1), group("", -1, -1))),
		That(on("abc", "re find", Pos(Str("x")))).Puts(),
		That(on("aaa", "re find", Pos(Str("a|aa")), Sw("longest"))).Puts(
			match("aa", 0, 2, group("aa", 0, 2)),
			match("a", 2, 3, group("a", 2, 3))),
	)
}

func TestReplace(t *testing.T) {
	upper := Closure(Params("m"), Pipe(Val(Bin(Var("m"), "+", Str("!")))))
	TestWithSetup(t, setup,
		That(on("a1b22", "re replace", Pos(Str(`\d+`)), Pos(Str("#")))).Puts("a#b#"),
		That(on("ab", "re replace", Pos(Str(`(a)(b)`)), Pos(Str("$2$1")))).Puts("ba"),
		That(on("ab", "re replace", Pos(Str(`(a)`)), Pos(Str("$1$1")), Sw("literal"))).Puts("$1$1b"),
		That(on("a1b22", "re replace", Pos(Str(`\d+`)), Pos(upper))).Puts("a1!b22!"),
		That(on("a1", "re replace", Pos(Str(`\d`)), Pos(Closure(Params("m"), Pipe(Val(Int(1))))))).
			Throws(errs.BadValue{What: "replacement closure output", Valid: "string", Actual: "int"}),
		That(on("a1", "re replace", Pos(Str(`\d`)), Pos(upper), Sw("literal"))).
			Throws(errs.BadValue{What: "literal replacement", Valid: "string", Actual: "closure"}),
		That(on("a1", "re replace", Pos(Str(`\d`)), Pos(Int(1)))).
			Throws(errs.BadValue{What: "replacement", Valid: "string or closure", Actual: "int"}),
	)
}

func TestSplit(t *testing.T) {
	TestWithSetup(t, setup,
		That(on("a1b22c", "re split", Pos(Str(`\d+`)))).Puts("a", "b", "c"),
		That(on("a1b22c", "re split", Pos(Str(`\d+`)), Fl("max", Int(2)))).Puts("a", "b22c"),
		That(Pipe(Val(List(Str("a,b"), Str("c"))), Call("re split", Pos(Str(","))))).Puts("a", "b", "c"),
	)
}
