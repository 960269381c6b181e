// Package ast declares the syntax tree the evaluator walks.
//
// The parser hands over a fully classified tree: every stage of a pipeline
// already knows whether it calls an internal command, an external program, a
// closure held in a variable, a block literal or a bare expression. The
// evaluator trusts this classification.
//
// Every node embeds diag.Ranging, the span of source code it came from.
package ast

import (
	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval/vals"
)

// Node is implemented by all nodes.
type Node interface {
	diag.Ranger
}

// Stmt is a statement in a Block.
type Stmt interface {
	Node
	isStmt()
}

// Stage is one stage of a Pipeline.
type Stage interface {
	Node
	isStage()
}

// Expr is an expression.
type Expr interface {
	Node
	isExpr()
}

// Block is a sequence of statements, with parameters if it is the body of a
// closure.
type Block struct {
	diag.Ranging
	Params []Param
	Stmts  []Stmt
}

// ParamKind says how a parameter is bound.
type ParamKind int

// Parameter kinds.
const (
	Required ParamKind = iota
	Optional
	Rest
	// Flag is a named parameter taking a value.
	Flag
	// Switch is a named parameter that is true when present.
	Switch
)

// Param is a parameter of a closure or a def.
type Param struct {
	Name string
	Kind ParamKind
	// Shape constrains the argument; "" or "any" accepts anything.
	Shape string
	// Default is the value of an absent Optional or Flag parameter.
	Default Expr
	// Short is the one-letter alias of a Flag or Switch.
	Short rune
}

// Statements.
type (
	// Pipeline is a chain of stages connected by streams.
	Pipeline struct {
		diag.Ranging
		Stages []Stage
	}

	// Let declares a variable in the current scope. Mutable is set for mut.
	Let struct {
		diag.Ranging
		Name    string
		Mutable bool
		Value   *Pipeline
	}

	// Assign assigns to an existing variable or to a field inside it. Op is
	// "=" or a compound operator like "+=".
	Assign struct {
		diag.Ranging
		Name  string
		Path  []vals.PathMember
		Op    string
		Value *Pipeline
	}

	// If runs Then when Cond is true, and Else (which may be nil) otherwise.
	// An else-if chain is an Else block holding another If.
	If struct {
		diag.Ranging
		Cond Expr
		Then *Block
		Else *Block
	}

	While struct {
		diag.Ranging
		Cond Expr
		Body *Block
	}

	// For runs Body with Var bound to each element of Iter.
	For struct {
		diag.Ranging
		Var  string
		Iter Expr
		Body *Block
	}

	Break struct{ diag.Ranging }

	Continue struct{ diag.Ranging }

	// Return leaves the innermost closure or def. Value may be nil.
	Return struct {
		diag.Ranging
		Value Expr
	}

	// Def defines a command.
	Def struct {
		diag.Ranging
		Name   string
		Usage  string
		Params []Param
		Body   *Block
	}

	// Try runs Body. If it fails, Catch runs with CatchVar (if not empty)
	// bound to the error as a value.
	Try struct {
		diag.Ranging
		Body     *Block
		CatchVar string
		Catch    *Block
	}
)

// Stages.
type (
	// InternalCall calls a command in the registry.
	InternalCall struct {
		diag.Ranging
		Name string
		Args []Arg
	}

	// ExternalCall runs an external program. Head evaluates to the program
	// name or path.
	ExternalCall struct {
		diag.Ranging
		Head           Expr
		Args           []Expr
		StderrToStdout bool
	}

	// ClosureCall calls the closure Callee evaluates to.
	ClosureCall struct {
		diag.Ranging
		Callee Expr
		Args   []Arg
	}

	// BlockStage runs a block literal with the stage input as $in.
	BlockStage struct {
		diag.Ranging
		Body *Block
	}

	// ExprStage outputs the value of an expression. The stage input is
	// available as $in.
	ExprStage struct {
		diag.Ranging
		Expr Expr
	}
)

// Arg is an argument of a call. A positional argument has an empty Flag.
// For a switch, Value is nil.
type Arg struct {
	diag.Ranging
	Flag string
	// Short is set when Flag was written as -f rather than --flag.
	Short bool
	Value Expr
}

// Expressions.
type (
	Literal struct {
		diag.Ranging
		Value vals.Value
	}

	// StringInterp concatenates the string forms of its parts.
	StringInterp struct {
		diag.Ranging
		Parts []Expr
	}

	// VarRef reads a variable, then follows Path into it.
	VarRef struct {
		diag.Ranging
		Name string
		Path []vals.PathMember
	}

	// PathExpr follows a cell path into the value of an arbitrary
	// expression, like (ls).name.
	PathExpr struct {
		diag.Ranging
		Head Expr
		Path []vals.PathMember
	}

	// BinaryExpr applies an operator. "and" and "or" short-circuit.
	BinaryExpr struct {
		diag.Ranging
		Op          string
		Left, Right Expr
	}

	UnaryExpr struct {
		diag.Ranging
		Op      string
		Operand Expr
	}

	// Subexpr evaluates a block and collects its output.
	Subexpr struct {
		diag.Ranging
		Body *Block
	}

	ListExpr struct {
		diag.Ranging
		Elems []Expr
	}

	RecordExpr struct {
		diag.Ranging
		Fields []Field
	}

	// RangeExpr builds a range. Next is the optional second element that
	// determines the step; To is nil for an unbounded range.
	RangeExpr struct {
		diag.Ranging
		From, Next, To Expr
		Inclusive      bool
	}

	// ClosureExpr creates a closure capturing the current scope.
	ClosureExpr struct {
		diag.Ranging
		Body *Block
	}
)

// Field is a field of a RecordExpr.
type Field struct {
	Key   string
	Value Expr
}

func (*Pipeline) isStmt() {}
func (*Let) isStmt()      {}
func (*Assign) isStmt()   {}
func (*If) isStmt()       {}
func (*While) isStmt()    {}
func (*For) isStmt()      {}
func (*Break) isStmt()    {}
func (*Continue) isStmt() {}
func (*Return) isStmt()   {}
func (*Def) isStmt()      {}
func (*Try) isStmt()      {}

func (*InternalCall) isStage() {}
func (*ExternalCall) isStage() {}
func (*ClosureCall) isStage()  {}
func (*BlockStage) isStage()   {}
func (*ExprStage) isStage()    {}

func (*Literal) isExpr()      {}
func (*StringInterp) isExpr() {}
func (*VarRef) isExpr()       {}
func (*PathExpr) isExpr()     {}
func (*BinaryExpr) isExpr()   {}
func (*UnaryExpr) isExpr()    {}
func (*Subexpr) isExpr()      {}
func (*ListExpr) isExpr()     {}
func (*RecordExpr) isExpr()   {}
func (*RangeExpr) isExpr()    {}
func (*ClosureExpr) isExpr()  {}
