package eval_test

import (
	"testing"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/eval/vals"
	"src.tide.sh/pkg/tt"
)

func TestParseShape(t *testing.T) {
	tt.Test(t, tt.Fn("ParseShape", eval.ParseShape), tt.Table{
		tt.Args("").Rets(eval.ShapeAny, true),
		tt.Args("int").Rets(eval.ShapeInt, true),
		tt.Args("datetime").Rets(eval.ShapeDate, true),
		tt.Args("date").Rets(eval.ShapeDate, true),
		tt.Args("closure").Rets(eval.ShapeClosure, true),
		tt.Args("bogus").Rets(eval.ShapeAny, false),
	})
}

func TestShape_Accepts(t *testing.T) {
	table := vals.NewList(rec("a", 1), rec("a", 2))
	unbounded, _ := vals.NewUnboundedRange(0, 1)
	tt.Test(t, tt.Fn("Shape.Accepts", eval.Shape.Accepts), tt.Table{
		tt.Args(eval.ShapeAny, vals.FromGo("x")).Rets(true),
		tt.Args(eval.ShapeInt, vals.FromGo(1)).Rets(true),
		tt.Args(eval.ShapeInt, vals.FromGo(1.0)).Rets(false),
		tt.Args(eval.ShapeNumber, vals.FromGo(1.5)).Rets(true),
		tt.Args(eval.ShapeNumber, vals.FromGo("1")).Rets(false),
		tt.Args(eval.ShapeList, vals.NewList()).Rets(true),
		tt.Args(eval.ShapeList, unbounded).Rets(true),
		tt.Args(eval.ShapeTable, table).Rets(true),
		tt.Args(eval.ShapeTable, vals.NewList(vals.FromGo(1))).Rets(false),
		tt.Args(eval.ShapeNothing, vals.Nothing{Ranging: diag.NoRange}).Rets(true),
		tt.Args(eval.ShapeRecord, rec("a", 1)).Rets(true),
		tt.Args(eval.ShapeString, vals.FromGo([]byte("x"))).Rets(false),
	})
}

func TestSignature_Help(t *testing.T) {
	sig := eval.NewSignature("greet").Usage("Greets someone.").
		Required("name", eval.ShapeString, "who to greet").
		OptionalDefault("times", eval.ShapeInt, vals.FromGo(1), "").
		Named("style", 's', eval.ShapeString, "greeting style").
		Switch("loud", 0, "")
	want := `greet <name> [times] {flags}

Greets someone.

Parameters:
  name <string>: who to greet
  times <int> (default: 1)

Flags:
  --style, -s <string>: greeting style
  --loud`
	if got := sig.Help(); got != want {
		t.Errorf("Help() ->\n%s\nwant:\n%s", got, want)
	}
}
