package mods_test

import (
	"testing"

	. "src.tide.sh/pkg/ast"
	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/eval/errs"
	. "src.tide.sh/pkg/eval/evaltest"
	"src.tide.sh/pkg/mods"
	"src.tide.sh/pkg/store"
)

func TestAddTo(t *testing.T) {
	TestWithSetup(t, mods.AddTo,
		That(Pipe(Val(List(Str("3"), Str("1"))), Call("into int"), Call("sort"), Call("math sum"))).Puts(4),
		That(Pipe(Val(Str("a,b")), Call("str split", Pos(Str(","))), Call("str upcase"),
			Call("str join", Pos(Str("+"))))).Puts("A+B"),
		That(Pipe(Val(Rec("a", Int(1))), Call("to json", Sw("raw")), Call("from json"), Call("get", Pos(Str("a"))))).
			Puts(1),
		That(Pipe(Val(Str("a/b.txt")), Call("path extension"), Call("re replace", Pos(Str(`^\.`)), Pos(Str(""))))).
			Puts("txt"),
		That(Pipe(Call("shared list"))).Throws(errs.CommandNotFound{Name: "shared list"}),
	)
}

func TestAddWithStore(t *testing.T) {
	setup := func(ev *eval.Evaler) { mods.AddWithStore(ev, store.MustTempStore(t)) }
	TestWithSetup(t, setup,
		That(Pipe(Call("echo", Pos(Int(1)), Pos(Int(2))), Call("shared set", Pos(Str("l"))))).
			Then(Pipe(Call("shared get", Pos(Str("l"))), Call("length"))).Puts(2),
	)
}
