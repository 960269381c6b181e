package eval

import (
	"strings"

	"src.tide.sh/pkg/ast"
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/stream"
	"src.tide.sh/pkg/eval/vals"
)

// Evaluates an expression. Errors are exceptions carrying the span of the
// innermost failing expression.
func (fm *Frame) evalExpr(e ast.Expr) (vals.Value, error) {
	v, err := fm.evalExprInner(e)
	if err != nil {
		return nil, fm.errorp(e, err)
	}
	return v, nil
}

func (fm *Frame) evalExprInner(expr ast.Expr) (vals.Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return vals.WithSpan(e.Value, e.Range()), nil
	case *ast.StringInterp:
		var sb strings.Builder
		for _, part := range e.Parts {
			v, err := fm.evalExpr(part)
			if err != nil {
				return nil, err
			}
			sb.WriteString(vals.ToString(v))
		}
		return vals.String{Val: sb.String(), Ranging: e.Range()}, nil
	case *ast.VarRef:
		v, err := fm.lookupVar(e.Name)
		if err != nil {
			return nil, err
		}
		return vals.FollowPath(v, e.Path)
	case *ast.PathExpr:
		v, err := fm.evalExpr(e.Head)
		if err != nil {
			return nil, err
		}
		return vals.FollowPath(v, e.Path)
	case *ast.BinaryExpr:
		return fm.evalBinary(e)
	case *ast.UnaryExpr:
		v, err := fm.evalExpr(e.Operand)
		if err != nil {
			return nil, err
		}
		result, err := vals.UnaryOp(e.Op, v)
		if err != nil {
			return nil, err
		}
		return vals.WithSpan(result, e.Range()), nil
	case *ast.Subexpr:
		newFm := fm.fork()
		newFm.in = fm.in.nested()
		out, err := newFm.evalBlockIn(e.Body, NewScope(fm.scope), true)
		if err != nil {
			return nil, err
		}
		return collectValue(out)
	case *ast.ListExpr:
		elems := make([]vals.Value, len(e.Elems))
		for i, elemExpr := range e.Elems {
			v, err := fm.evalExpr(elemExpr)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return vals.List{Vals: elems, Ranging: e.Range()}, nil
	case *ast.RecordExpr:
		var rb vals.RecordBuilder
		for _, field := range e.Fields {
			v, err := fm.evalExpr(field.Value)
			if err != nil {
				return nil, err
			}
			rb.Add(field.Key, v)
		}
		r, err := rb.Record()
		if err != nil {
			return nil, err
		}
		return vals.WithSpan(r, e.Range()), nil
	case *ast.RangeExpr:
		return fm.evalRange(e)
	case *ast.ClosureExpr:
		return fm.newClosure(e)
	}
	return nil, errs.ParseHandoffError{Message: "unknown expression"}
}

// Looks up a variable. $in is the input of the enclosing block.
func (fm *Frame) lookupVar(name string) (vals.Value, error) {
	if name == "in" {
		return fm.in.value()
	}
	if v := fm.scope.Lookup(name); v != nil {
		return v.Get(), nil
	}
	return nil, errs.VariableNotFound{Name: name}
}

func (fm *Frame) evalBinary(e *ast.BinaryExpr) (vals.Value, error) {
	left, err := fm.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	if e.Op == "and" || e.Op == "or" {
		l, ok := left.(vals.Bool)
		if !ok {
			return nil, errs.IncompatibleOperands{Op: e.Op, Left: vals.KindName(left), Right: "bool"}
		}
		if l.Val == (e.Op == "or") {
			return vals.Bool{Val: l.Val, Ranging: e.Range()}, nil
		}
	}
	right, err := fm.evalExpr(e.Right)
	if err != nil {
		return nil, err
	}
	result, err := vals.BinaryOp(e.Op, left, right)
	if err != nil {
		return nil, err
	}
	return vals.WithSpan(result, e.Range()), nil
}

func (fm *Frame) evalRange(e *ast.RangeExpr) (vals.Value, error) {
	bound := func(be ast.Expr, def int64) (int64, error) {
		if be == nil {
			return def, nil
		}
		v, err := fm.evalExpr(be)
		if err != nil {
			return 0, err
		}
		i, ok := v.(vals.Int)
		if !ok {
			return 0, fm.errorp(be, errs.TypeMismatch{What: "range bound", Want: "int", Got: vals.KindName(v)})
		}
		return i.Val, nil
	}
	from, err := bound(e.From, 0)
	if err != nil {
		return nil, err
	}
	var step int64
	if e.Next != nil {
		next, err := bound(e.Next, 0)
		if err != nil {
			return nil, err
		}
		step = next - from
	}
	var r vals.Range
	if e.To == nil {
		if e.Next == nil {
			step = 1
		}
		r, err = vals.NewUnboundedRange(from, step)
	} else {
		to, toErr := bound(e.To, 0)
		if toErr != nil {
			return nil, toErr
		}
		if e.Next == nil {
			step = vals.DefaultStep(from, to)
		}
		r, err = vals.NewRange(from, step, to, e.Inclusive)
	}
	if err != nil {
		return nil, err
	}
	return vals.WithSpan(r, e.Range()), nil
}

// Evaluates the arguments of a call.
func (fm *Frame) evalArgs(args []ast.Arg) ([]argValue, error) {
	values := make([]argValue, len(args))
	for i, arg := range args {
		values[i] = argValue{Ranging: arg.Range(), flag: arg.Flag, short: arg.Short}
		if arg.Value != nil {
			v, err := fm.evalExpr(arg.Value)
			if err != nil {
				return nil, err
			}
			values[i].value = v
		}
	}
	return values, nil
}

// Used by commands that evaluate to a stream of one value.
func single(v vals.Value) stream.Data {
	if vals.IsNothing(v) {
		return stream.Empty{}
	}
	return stream.Single{Value: v}
}
