package eval

import (
	"unicode/utf8"

	"src.tide.sh/pkg/ast"
	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/stream"
	"src.tide.sh/pkg/eval/vals"
	"src.tide.sh/pkg/eval/vars"
	"src.tide.sh/pkg/strutil"
)

// Evaluates the statements of a block in the given scope. The output of all
// but the last statement is discarded, and the output of the last one is
// returned.
//
// When capture is false, a last external stage of the last statement writes
// straight to stdout instead of producing output. Other statements never
// capture.
func (fm *Frame) evalBlockIn(b *ast.Block, scope *Scope, capture bool) (stream.Data, error) {
	fm = fm.withScope(scope)
	var out stream.Data = stream.Empty{}
	for i, stmt := range b.Stmts {
		if fm.IsInterrupted() {
			return nil, fm.errorp(stmt, ErrInterrupted)
		}
		last := i == len(b.Stmts)-1
		var err error
		out, err = fm.evalStmt(stmt, capture && last)
		if err != nil {
			return nil, err
		}
		if !last {
			if err := stream.Discard(out); err != nil {
				return nil, fm.errorp(stmt, err)
			}
		}
	}
	return out, nil
}

func (fm *Frame) evalStmt(stmt ast.Stmt, capture bool) (stream.Data, error) {
	switch s := stmt.(type) {
	case *ast.Pipeline:
		return fm.evalPipeline(s, capture)
	case *ast.Let:
		v, err := fm.evalPipelineValue(s.Value)
		if err != nil {
			return nil, err
		}
		fm.scope.Define(s.Name, newVar(s.Name, v, s.Mutable))
		return stream.Empty{}, nil
	case *ast.Assign:
		return stream.Empty{}, fm.errorp(s, fm.evalAssign(s))
	case *ast.If:
		return fm.evalIf(s, capture)
	case *ast.While:
		return stream.Empty{}, fm.evalWhile(s)
	case *ast.For:
		return stream.Empty{}, fm.evalFor(s)
	case *ast.Break:
		return nil, &Flow{Kind: Break, Ranging: s.Range()}
	case *ast.Continue:
		return nil, &Flow{Kind: Continue, Ranging: s.Range()}
	case *ast.Return:
		var v vals.Value
		if s.Value != nil {
			var err error
			v, err = fm.evalExpr(s.Value)
			if err != nil {
				return nil, err
			}
		}
		return nil, &Flow{Kind: Return, Value: v, Ranging: s.Range()}
	case *ast.Def:
		return stream.Empty{}, fm.evalDef(s)
	case *ast.Try:
		return fm.evalTry(s, capture)
	}
	return nil, fm.errorp(stmt, errs.ParseHandoffError{Message: "unknown statement"})
}

// Evaluates a pipeline and collects its output into a single value. Bytes
// become a string with the trailing newline removed, or binary if they are
// not valid UTF-8.
func (fm *Frame) evalPipelineValue(p *ast.Pipeline) (vals.Value, error) {
	out, err := fm.evalPipeline(p, true)
	if err != nil {
		return nil, err
	}
	v, err := collectValue(out)
	return v, fm.errorp(p, err)
}

func collectValue(out stream.Data) (vals.Value, error) {
	b, ok := out.(*stream.Bytes)
	if !ok {
		return stream.Collect(out)
	}
	bs, err := stream.ReadAll(b)
	if err != nil {
		return nil, err
	}
	if utf8.Valid(bs) {
		return vals.String{Val: strutil.ChopLineEnding(string(bs)), Ranging: diag.NoRange}, nil
	}
	return vals.Binary{Val: bs, Ranging: diag.NoRange}, nil
}

var assignOps = map[string]string{
	"+=": "+", "-=": "-", "*=": "*", "/=": "/", "++=": "++",
}

func (fm *Frame) evalAssign(s *ast.Assign) error {
	binop := ""
	if s.Op != "=" {
		var ok bool
		binop, ok = assignOps[s.Op]
		if !ok {
			return errs.ParseHandoffError{Message: "unknown assignment operator " + s.Op}
		}
	}
	rhs, err := fm.evalPipelineValue(s.Value)
	if err != nil {
		return err
	}
	if s.Name == "env" && len(s.Path) > 0 {
		return fm.assignEnv(s, binop, rhs)
	}
	variable := fm.scope.Lookup(s.Name)
	if variable == nil {
		return errs.VariableNotFound{Name: s.Name}
	}
	if binop != "" {
		old, err := vals.FollowPath(variable.Get(), s.Path)
		if err != nil {
			return err
		}
		rhs, err = vals.BinaryOp(binop, old, rhs)
		if err != nil {
			return err
		}
	}
	return vars.MakeElement(variable, s.Path).Set(rhs)
}

// Assigns to $env.NAME.
func (fm *Frame) assignEnv(s *ast.Assign, binop string, rhs vals.Value) error {
	if len(s.Path) > 1 || s.Path[0].IsIndex {
		return errs.TypeMismatch{What: "$env assignment target", Valid: "$env.NAME",
			Got: "$env." + pathString(s.Path)}
	}
	name := s.Path[0].Name
	if binop != "" {
		old, _ := fm.Getenv(name)
		var err error
		rhs, err = vals.BinaryOp(binop, vals.String{Val: old, Ranging: diag.NoRange}, rhs)
		if err != nil {
			return err
		}
	}
	value, err := envString(name, rhs)
	if err != nil {
		return err
	}
	return fm.Setenv(name, value)
}

func pathString(path []vals.PathMember) string {
	s := ""
	for i, m := range path {
		if i > 0 {
			s += "."
		}
		s += m.String()
	}
	return s
}

func (fm *Frame) evalCond(e ast.Expr) (bool, error) {
	v, err := fm.evalExpr(e)
	if err != nil {
		return false, err
	}
	b, ok := v.(vals.Bool)
	if !ok {
		return false, fm.errorp(e, errs.TypeMismatch{What: "condition", Want: "bool", Got: vals.KindName(v)})
	}
	return b.Val, nil
}

func (fm *Frame) evalIf(s *ast.If, capture bool) (stream.Data, error) {
	cond, err := fm.evalCond(s.Cond)
	if err != nil {
		return nil, err
	}
	switch {
	case cond:
		return fm.evalBlockIn(s.Then, NewScope(fm.scope), capture)
	case s.Else != nil:
		return fm.evalBlockIn(s.Else, NewScope(fm.scope), capture)
	}
	return stream.Empty{}, nil
}

// Runs the body of a loop, discarding its output. It reports whether the
// loop should stop.
func (fm *Frame) evalLoopBody(body *ast.Block, scope *Scope) (bool, error) {
	out, err := fm.evalBlockIn(body, scope, false)
	if err == nil {
		err = fm.errorp(body, stream.Discard(out))
	}
	if err != nil {
		if _, ok := isFlow(err, Break); ok {
			return true, nil
		}
		if _, ok := isFlow(err, Continue); ok {
			return false, nil
		}
		return true, err
	}
	return false, nil
}

func (fm *Frame) evalWhile(s *ast.While) error {
	for {
		if fm.IsInterrupted() {
			return fm.errorp(s, ErrInterrupted)
		}
		cond, err := fm.evalCond(s.Cond)
		if err != nil || !cond {
			return err
		}
		stop, err := fm.evalLoopBody(s.Body, NewScope(fm.scope))
		if stop {
			return err
		}
	}
}

func (fm *Frame) evalFor(s *ast.For) error {
	iter, err := fm.evalExpr(s.Iter)
	if err != nil {
		return err
	}
	elems := fm.Values(stream.Single{Value: iter})
	defer elems.Close()
	for {
		if fm.IsInterrupted() {
			return fm.errorp(s, ErrInterrupted)
		}
		elem, ok := elems.Next()
		if !ok {
			return fm.errorp(s.Iter, elems.Err())
		}
		scope := NewScope(fm.scope)
		scope.Define(s.Var, vars.NewReadOnly(s.Var, elem))
		stop, err := fm.evalLoopBody(s.Body, scope)
		if stop {
			return err
		}
	}
}

// Runs the body of a try with its output collected, so that errors from
// lazy streams surface inside it. Control flows and interrupts are not
// caught.
func (fm *Frame) evalTry(s *ast.Try, capture bool) (stream.Data, error) {
	out, err := fm.evalBlockIn(s.Body, NewScope(fm.scope), true)
	var v vals.Value
	if err == nil {
		v, err = collectValue(out)
		err = fm.errorp(s.Body, err)
	}
	if err == nil {
		if vals.IsNothing(v) {
			return stream.Empty{}, nil
		}
		return stream.Single{Value: v}, nil
	}
	if _, ok := err.(*Flow); ok {
		return nil, err
	}
	reason := Reason(err)
	if reason == ErrInterrupted {
		return nil, err
	}
	if s.Catch == nil {
		return stream.Empty{}, nil
	}
	span := s.Body.Range()
	if exc, ok := err.(*Exception); ok && exc.StackTrace != nil {
		span = exc.StackTrace.Head.Range()
	}
	errVal := vals.Error{Err: reason, Ranging: span}
	scope := NewScope(fm.scope)
	if s.CatchVar != "" {
		scope.Define(s.CatchVar, vars.NewReadOnly(s.CatchVar, errVal))
	}
	return fm.withInput(stream.Single{Value: errVal}).evalBlockIn(s.Catch, scope, capture)
}
