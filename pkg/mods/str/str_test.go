package str_test

import (
	"testing"
	"unicode"

	. "src.tide.sh/pkg/ast"
	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/eval/errs"
	. "src.tide.sh/pkg/eval/evaltest"
	"src.tide.sh/pkg/mods/str"
)

func setup(ev *eval.Evaler) {
	for _, cmd := range str.Commands {
		ev.AddCommand(cmd)
	}
}

func on(s string, name string, args ...Arg) *Pipeline {
	return Pipe(Val(Str(s)), Call(name, args...))
}

func TestStr(t *testing.T) {
	TestWithSetup(t, setup,
		That(on("aBc", "str upcase")).Puts("ABC"),
		That(on("aBc", "str downcase")).Puts("abc"),
		That(Pipe(Val(List(Str("a"), Str("b"))), Call("str upcase"))).Puts("A", "B"),
		That(Pipe(Val(Int(1)), Call("str upcase"))).
			Throws(errs.InputTypeMismatch{Command: "str upcase", Want: "string", Got: "int"}),

		That(on("  a b \n", "str trim")).Puts("a b"),
		That(on("--a-", "str trim", Fl("char", Str("-")))).Puts("a"),
		That(on("你好", "str length")).Puts(2),

		That(on("abcd", "str contains", Pos(Str("bc")))).Puts(true),
		That(on("abcd", "str contains", Pos(Str("BC")))).Puts(false),
		That(on("abcd", "str contains", Pos(Str("BC")), Sw("ignore-case"))).Puts(true),
		That(on("abcd", "str starts-with", Pos(Str("ab")))).Puts(true),
		That(on("abcd", "str ends-with", Pos(Str("ab")))).Puts(false),

		That(on("aXbX", "str replace", Pos(Str("X")), Pos(Str("-")))).Puts("a-bX"),
		That(on("aXbX", "str replace", Pos(Str("X")), Pos(Str("-")), Sw("all"))).Puts("a-b-"),

		That(on("ab", "str to-codepoints")).Puts([]any{0x61, 0x62}),
	)
}

func TestSplitJoin(t *testing.T) {
	TestWithSetup(t, setup,
		That(on("a,b,c", "str split", Pos(Str(",")))).Puts("a", "b", "c"),
		That(on("a,b,c", "str split", Pos(Str(",")), Fl("number", Int(2)))).Puts("a", "b,c"),
		That(on("ab", "str split", Pos(Str("")))).Puts("a", "b"),
		That(Pipe(Val(List(Str("a b"), Str("c"))), Call("str split", Pos(Str(" "))))).Puts("a", "b", "c"),

		That(Pipe(Val(List(Str("a"), Str("b"))), Call("str join", Pos(Str(", "))))).Puts("a, b"),
		That(Pipe(Val(List(Str("a"), Str("b"))), Call("str join"))).Puts("ab"),
		That(Pipe(Val(List()), Call("str join", Pos(Str(","))))).Puts(""),
		That(Pipe(Val(List(Str("a"), Int(1))), Call("str join"))).
			Throws(errs.BadValue{What: "input to str join", Valid: "string", Actual: "int"}),
	)
}

func TestFromCodepoints(t *testing.T) {
	TestWithSetup(t, setup,
		That(Pipe(Call("str from-codepoints", Pos(Int(0x61))))).Puts("a"),
		That(Pipe(Call("str from-codepoints", Pos(Int(0x4f60)), Pos(Int(0x597d))))).Puts("你好"),
		That(Pipe(Call("str from-codepoints"))).Puts(""),
		That(Pipe(Call("str from-codepoints", Pos(Int(-1))))).Throws(errs.OutOfRange{
			What:     "codepoint",
			ValidLow: 0, ValidHigh: unicode.MaxRune,
			Actual: "-0x1"}),
		That(Pipe(Call("str from-codepoints", Pos(Int(unicode.MaxRune+1))))).Throws(errs.OutOfRange{
			What:     "codepoint",
			ValidLow: 0, ValidHigh: unicode.MaxRune,
			Actual: "0x110000"}),
		That(Pipe(Call("str from-codepoints", Pos(Int(0xd800))))).Throws(errs.BadValue{
			What:   "argument to str from-codepoints",
			Valid:  "valid Unicode codepoint",
			Actual: "0xd800"}),
	)
}
