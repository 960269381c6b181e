package formats_test

import (
	"testing"
	"time"

	. "src.tide.sh/pkg/ast"
	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/eval/errs"
	. "src.tide.sh/pkg/eval/evaltest"
	"src.tide.sh/pkg/eval/vals"
	"src.tide.sh/pkg/mods/formats"
)

func setup(ev *eval.Evaler) {
	for _, cmd := range formats.Commands {
		ev.AddCommand(cmd)
	}
}

func rec(kvs ...any) vals.Value {
	var b vals.RecordBuilder
	for i := 0; i+1 < len(kvs); i += 2 {
		b.Add(kvs[i].(string), vals.FromGo(kvs[i+1]))
	}
	return b.MustRecord()
}

func TestFromJSON(t *testing.T) {
	TestWithSetup(t, setup,
		That(Pipe(Val(Str(`{"b": 1, "a": [true, null, 1.5, "x"]}`)), Call("from json"))).
			Puts(rec("b", 1, "a", []any{true, nil, 1.5, "x"})),
		That(Pipe(Val(Str("{\"n\": 1}\n\n{\"n\": 2}\n")), Call("from json", Sw("objects")))).
			Puts(rec("n", 1), rec("n", 2)),
		That(Pipe(Val(Str(`{"a":`)), Call("from json"))).Throws(AnyError),
		That(Pipe(Val(Int(1)), Call("from json"))).
			Throws(errs.InputTypeMismatch{Command: "from json", Want: "string", Got: "int"}),
	)
}

func TestToJSON(t *testing.T) {
	data := Rec("a", Int(1), "b", List(Str("x")))
	TestWithSetup(t, setup,
		That(Pipe(Val(data), Call("to json"))).Puts("{\n  \"a\": 1,\n  \"b\": [\n    \"x\"\n  ]\n}"),
		That(Pipe(Val(data), Call("to json", Sw("raw")))).Puts(`{"a":1,"b":["x"]}`),
		That(Pipe(Val(Rec("a", Int(1))), Call("to json", Fl("indent", Int(4))))).Puts("{\n    \"a\": 1\n}"),
		That(Pipe(Val(data), Call("to json", Sw("raw")), Call("from json"))).
			Named("round trip").Puts(rec("a", 1, "b", []any{"x"})),
	)
}

func TestYAML(t *testing.T) {
	TestWithSetup(t, setup,
		That(Pipe(Val(Str("z: 1\na:\n  - x\n  - 2.5\nok: true\nnone: null\n")), Call("from yaml"))).
			Puts(rec("z", 1, "a", []any{"x", 2.5}, "ok", true, "none", nil)),
		That(Pipe(Val(Str("base: &b {n: 1}\nref: *b\n")), Call("from yaml"))).
			Named("aliases").Puts(rec("base", rec("n", 1), "ref", rec("n", 1))),
		That(Pipe(Val(Str("a: 1\n---\na: 2\n")), Call("from yaml"))).
			Named("several documents").Puts([]any{rec("a", 1), rec("a", 2)}),
		That(Pipe(Val(Str("")), Call("from yaml"))).Puts(),
		That(Pipe(Val(Str("a: [")), Call("from yaml"))).Throws(ErrorWithType(errs.BadValue{})),

		That(Pipe(Val(Rec("b", Int(1), "a", Str("x"))), Call("to yaml"))).Puts("b: 1\na: x\n"),
		That(Pipe(Val(Rec("b", Int(1), "a", List(Str("x"), Lit(true)))), Call("to yaml"), Call("from yaml"))).
			Named("round trip").Puts(rec("b", 1, "a", []any{"x", true})),
	)
}

func TestYAMLScalars(t *testing.T) {
	when := time.Date(2021, 1, 2, 3, 4, 5, 0, time.UTC)
	v, err := formats.FromYAML([]byte("t: 2021-01-02T03:04:05Z\nbin: !!binary aGk=\ns: '1'\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := rec("t", when, "bin", []byte("hi"), "s", "1")
	if !vals.Equal(v, want) {
		t.Errorf("got %s, want %s", vals.Repr(v), vals.Repr(want))
	}

	bs, err := formats.ToYAML(rec("t", when, "d", 2*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(bs), "t: 2021-01-02T03:04:05Z\nd: 2000000000\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDecoderFor(t *testing.T) {
	for _, ext := range []string{".json", ".YAML", ".yml"} {
		if formats.DecoderFor(ext) == nil {
			t.Errorf("no decoder for %s", ext)
		}
	}
	if formats.DecoderFor(".txt") != nil {
		t.Errorf("decoder for .txt")
	}
}
