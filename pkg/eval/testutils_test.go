package eval_test

import (
	"os"

	. "src.tide.sh/pkg/ast"
	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/stream"
	"src.tide.sh/pkg/eval/vals"
)

var noRange = diag.NoRange

// Commands used by the tests in this package. The real catalog lives in
// pkg/mods, which depends on this package.
func addTestCommands(ev *eval.Evaler) {
	ev.DefineCommand(eval.NewSignature("count").Usage("Outputs 0, 1, 2, ... without end."),
		func(fm *eval.Frame, _ *eval.Call, _ stream.Data) (stream.Data, error) {
			var i int64
			return fm.Stream(func() (vals.Value, bool, error) {
				i++
				return vals.Int{Val: i - 1, Ranging: noRange}, true, nil
			}, nil), nil
		})
	ev.DefineCommand(eval.NewSignature("first").Required("n", eval.ShapeInt, ""),
		func(fm *eval.Frame, call *eval.Call, input stream.Data) (stream.Data, error) {
			var n int
			if err := call.Scan("n", &n); err != nil {
				return nil, err
			}
			return stream.Take(fm.Interrupts(), fm.Values(input), n), nil
		})
	ev.DefineCommand(eval.NewSignature("collect").Output(eval.ShapeList),
		func(fm *eval.Frame, _ *eval.Call, input stream.Data) (stream.Data, error) {
			vs, err := stream.Drain(fm.Values(input))
			if err != nil {
				return nil, err
			}
			return stream.Single{Value: vals.NewList(vs...)}, nil
		})
	ev.DefineCommand(eval.NewSignature("each").Required("f", eval.ShapeClosure, ""),
		func(fm *eval.Frame, call *eval.Call, input stream.Data) (stream.Data, error) {
			f := call.Req("f").(*eval.Closure)
			return stream.Map(fm.Interrupts(), fm.Values(input), func(v vals.Value) (vals.Value, error) {
				return fm.CallClosureValue(f, []vals.Value{v}, stream.Single{Value: v})
			}), nil
		})
	ev.DefineCommand(eval.NewSignature("fail"),
		func(*eval.Frame, *eval.Call, stream.Data) (stream.Data, error) {
			return nil, errs.BadValue{What: "input", Valid: "anything else", Actual: "this"}
		})
	ev.DefineCommand(eval.NewSignature("interrupt-self"),
		func(fm *eval.Frame, _ *eval.Call, input stream.Data) (stream.Data, error) {
			fm.Interrupt()
			return input, nil
		})
	ev.DefineCommand(eval.NewSignature("write-file").Required("path", eval.ShapeString, ""),
		func(fm *eval.Frame, call *eval.Call, _ stream.Data) (stream.Data, error) {
			var path string
			if err := call.Scan("path", &path); err != nil {
				return nil, err
			}
			if err := os.WriteFile(path, []byte("written"), 0644); err != nil {
				return nil, err
			}
			return stream.Single{Value: vals.String{Val: "written", Ranging: noRange}}, nil
		})
}

func ifS(cond Expr, then, els *Block) *If {
	return &If{Ranging: noRange, Cond: cond, Then: then, Else: els}
}

func whileS(cond Expr, stmts ...Stmt) *While {
	return &While{Ranging: noRange, Cond: cond, Body: Blk(stmts...)}
}

func forS(name string, iter Expr, stmts ...Stmt) *For {
	return &For{Ranging: noRange, Var: name, Iter: iter, Body: Blk(stmts...)}
}

func breakS() *Break       { return &Break{Ranging: noRange} }
func continueS() *Continue { return &Continue{Ranging: noRange} }

func returnS(e Expr) *Return { return &Return{Ranging: noRange, Value: e} }

func defS(name string, params []Param, stmts ...Stmt) *Def {
	return &Def{Ranging: noRange, Name: name, Params: params, Body: Blk(stmts...)}
}

func tryS(body *Block, catchVar string, catch *Block) *Try {
	return &Try{Ranging: noRange, Body: body, CatchVar: catchVar, Catch: catch}
}

func rangeE(from, next, to Expr, inclusive bool) *RangeExpr {
	return &RangeExpr{Ranging: noRange, From: from, Next: next, To: to, Inclusive: inclusive}
}

func compound(name, op string, e Expr, path ...any) *Assign {
	return &Assign{Ranging: noRange, Name: name, Path: Path(path...), Op: op, Value: Pipe(Val(e))}
}

func setEnv(name string, e Expr) *Assign {
	return &Assign{Ranging: noRange, Name: "env", Path: Path(name), Op: "=", Value: Pipe(Val(e))}
}

func shortFl(names string, e Expr) Arg {
	return Arg{Ranging: noRange, Flag: names, Short: true, Value: e}
}

func interp(parts ...Expr) *StringInterp {
	return &StringInterp{Ranging: noRange, Parts: parts}
}

func rec(kvs ...any) vals.Record {
	var rb vals.RecordBuilder
	for i := 0; i < len(kvs); i += 2 {
		rb.Add(kvs[i].(string), vals.FromGo(kvs[i+1]))
	}
	return rb.MustRecord()
}
