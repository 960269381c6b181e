package ast

import (
	"fmt"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval/vals"
)

// Constructors for building trees in Go code, mostly tests. Nodes built with
// them have unknown spans.

var noRange = diag.NoRange

// Blk makes a Block without parameters.
func Blk(stmts ...Stmt) *Block { return &Block{Ranging: noRange, Stmts: stmts} }

// Fn makes a Block with parameters, to be used as the body of a closure.
func Fn(params []Param, stmts ...Stmt) *Block {
	return &Block{Ranging: noRange, Params: params, Stmts: stmts}
}

// Params makes required parameters with the given names.
func Params(names ...string) []Param {
	ps := make([]Param, len(names))
	for i, name := range names {
		ps[i] = Param{Name: name, Kind: Required}
	}
	return ps
}

// Pipe makes a Pipeline.
func Pipe(stages ...Stage) *Pipeline { return &Pipeline{Ranging: noRange, Stages: stages} }

// Call makes an InternalCall stage.
func Call(name string, args ...Arg) *InternalCall {
	return &InternalCall{Ranging: noRange, Name: name, Args: args}
}

// Ext makes an ExternalCall stage whose arguments are string literals.
func Ext(name string, args ...string) *ExternalCall {
	exprs := make([]Expr, len(args))
	for i, arg := range args {
		exprs[i] = Str(arg)
	}
	return &ExternalCall{Ranging: noRange, Head: Str(name), Args: exprs}
}

// CallClosure makes a ClosureCall stage.
func CallClosure(callee Expr, args ...Arg) *ClosureCall {
	return &ClosureCall{Ranging: noRange, Callee: callee, Args: args}
}

// BlkStage makes a BlockStage.
func BlkStage(stmts ...Stmt) *BlockStage { return &BlockStage{Ranging: noRange, Body: Blk(stmts...)} }

// Val makes an ExprStage.
func Val(e Expr) *ExprStage { return &ExprStage{Ranging: noRange, Expr: e} }

// Pos makes a positional argument.
func Pos(e Expr) Arg { return Arg{Ranging: noRange, Value: e} }

// Fl makes a flag argument with a value.
func Fl(name string, e Expr) Arg { return Arg{Ranging: noRange, Flag: name, Value: e} }

// Sw makes a switch argument.
func Sw(name string) Arg { return Arg{Ranging: noRange, Flag: name} }

// Lit makes a Literal from a Go value, converted with vals.FromGo.
func Lit(v any) *Literal { return &Literal{Ranging: noRange, Value: vals.FromGo(v)} }

// Str makes a string Literal.
func Str(s string) *Literal { return Lit(s) }

// Int makes an int Literal.
func Int(n int) *Literal { return Lit(n) }

// Var makes a VarRef. Each path element is a string (a column) or an int (an
// index).
func Var(name string, path ...any) *VarRef {
	return &VarRef{Ranging: noRange, Name: name, Path: Path(path...)}
}

// Path makes a cell path. Each element is a string (a column) or an int (an
// index).
func Path(members ...any) []vals.PathMember {
	if len(members) == 0 {
		return nil
	}
	path := make([]vals.PathMember, len(members))
	for i, m := range members {
		switch m := m.(type) {
		case string:
			path[i] = vals.PathMember{Name: m}
		case int:
			path[i] = vals.PathMember{Index: m, IsIndex: true}
		default:
			panic(fmt.Sprintf("ast.Path: bad member %v", m))
		}
	}
	return path
}

// Bin makes a BinaryExpr.
func Bin(left Expr, op string, right Expr) *BinaryExpr {
	return &BinaryExpr{Ranging: noRange, Op: op, Left: left, Right: right}
}

// Sub makes a Subexpr.
func Sub(stmts ...Stmt) *Subexpr { return &Subexpr{Ranging: noRange, Body: Blk(stmts...)} }

// List makes a ListExpr.
func List(elems ...Expr) *ListExpr { return &ListExpr{Ranging: noRange, Elems: elems} }

// Rec makes a RecordExpr from alternating keys and values.
func Rec(kvs ...any) *RecordExpr {
	fields := make([]Field, 0, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		fields = append(fields, Field{Key: kvs[i].(string), Value: kvs[i+1].(Expr)})
	}
	return &RecordExpr{Ranging: noRange, Fields: fields}
}

// Closure makes a ClosureExpr.
func Closure(params []Param, stmts ...Stmt) *ClosureExpr {
	return &ClosureExpr{Ranging: noRange, Body: Fn(params, stmts...)}
}

// LetS makes an immutable Let whose value is a single expression.
func LetS(name string, e Expr) *Let {
	return &Let{Ranging: noRange, Name: name, Value: Pipe(Val(e))}
}

// MutS makes a mutable Let whose value is a single expression.
func MutS(name string, e Expr) *Let {
	return &Let{Ranging: noRange, Name: name, Mutable: true, Value: Pipe(Val(e))}
}

// Set makes an Assign with the "=" operator.
func Set(name string, e Expr, path ...any) *Assign {
	return &Assign{Ranging: noRange, Name: name, Path: Path(path...), Op: "=", Value: Pipe(Val(e))}
}
