package eval

import (
	"errors"
	"fmt"
	"strings"

	"src.tide.sh/pkg/ast"
	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/stream"
	"src.tide.sh/pkg/eval/vals"
	"src.tide.sh/pkg/eval/vars"
)

// Closure is a block of code together with a snapshot of the variables
// visible where it was created. Each Closure has its unique identity.
//
// Variables are captured by value: reassigning a variable after the closure
// is created is not seen by the closure, and the closure can't assign to
// captured variables. Commands are looked up by name when called, so the
// closure sees commands defined after it was created.
type Closure struct {
	// Span of the closure literal.
	diag.Ranging

	sig      *Signature
	params   []ast.Param
	body     *ast.Block
	src      diag.Source
	captured *Scope
}

var (
	_ vals.Value    = &Closure{}
	_ vals.Equaler  = &Closure{}
	_ vals.Reprer   = &Closure{}
	_ vals.Stringer = &Closure{}
)

// Kind returns vals.KindClosure.
func (*Closure) Kind() vals.Kind { return vals.KindClosure }

// Equal compares by address.
func (c *Closure) Equal(other vals.Value) bool {
	return c == other
}

// Repr returns the source of the closure, or a placeholder when it is not
// available.
func (c *Closure) Repr() string {
	if c.Ranging.Known() && c.To <= len(c.src.Code) {
		return c.src.Code[c.From:c.To]
	}
	return fmt.Sprintf("<closure %p>", c)
}

func (c *Closure) String() string { return c.Repr() }

// Signature returns the parameters of the closure as a signature.
func (c *Closure) Signature() *Signature { return c.sig }

// Creates a closure from a literal, capturing the current scope.
func (fm *Frame) newClosure(e *ast.ClosureExpr) (*Closure, error) {
	sig, err := fm.buildSignature("closure", "", e.Body.Params)
	if err != nil {
		return nil, err
	}
	return &Closure{
		Ranging:  e.Range(),
		sig:      sig,
		params:   e.Body.Params,
		body:     e.Body,
		src:      fm.src,
		captured: fm.scope.snapshot(fm.Builtin, fm.Global),
	}, nil
}

// Run calls the closure with bound arguments.
func (c *Closure) Run(fm *Frame, call *Call, input stream.Data) (stream.Data, error) {
	return fm.runBody(c.src, c.body, c.params, NewScope(c.captured), call, input)
}

// CallClosure calls a closure with positional arguments and the given
// input, which is also the closure's $in. Commands taking closures as
// arguments use this.
//
// Unlike a closure called as a pipeline stage, which fails with
// errs.TooManyPositionals, arguments beyond what the closure declares are
// dropped when it has no rest parameter. This lets commands like reduce
// pass an accumulator that {|x| ...} ignores. Missing arguments still fail.
func (fm *Frame) CallClosure(c *Closure, args []vals.Value, input stream.Data) (stream.Data, error) {
	argVals := make([]argValue, len(args))
	for i, arg := range args {
		argVals[i] = argValue{Ranging: c.Ranging, value: arg}
	}
	if c.sig.RestParam == nil {
		if n := len(c.sig.Req) + len(c.sig.Opt); len(argVals) > n {
			argVals = argVals[:n]
		}
	}
	call, err := fm.bind(c.sig, c.Ranging, argVals)
	if err != nil {
		return nil, err
	}
	return c.Run(fm.withCall(c), call, input)
}

// CallClosureValue is like CallClosure, but collects the output into a
// single value.
func (fm *Frame) CallClosureValue(c *Closure, args []vals.Value, input stream.Data) (vals.Value, error) {
	out, err := fm.CallClosure(c, args, input)
	if err != nil {
		return nil, err
	}
	return stream.Collect(out)
}

// Runs a block with parameters bound from a call in a new scope with the
// given parent, consuming any return. A break or continue can't leave the
// body; it becomes an error instead of ending a loop of the caller.
func (fm *Frame) runBody(src diag.Source, body *ast.Block, params []ast.Param, scope *Scope, call *Call, input stream.Data) (stream.Data, error) {
	bindParams(scope, params, call)
	newFm := fm.withScope(scope)
	newFm.src = src
	newFm.in = newInput(input)
	out, err := newFm.evalBlockIn(body, scope, true)
	var flow *Flow
	if errors.As(err, &flow) {
		if flow.Kind != Return {
			return nil, newFm.errorp(flow, errs.UnexpectedControlFlowError{Flow: flow.Kind.String()})
		}
		if flow.Value == nil {
			return stream.Empty{}, nil
		}
		return stream.Single{Value: flow.Value}, nil
	}
	return out, err
}

// Defines variables for the parameters of a block. Flags with dashes in
// their names are available with underscores instead.
func bindParams(scope *Scope, params []ast.Param, call *Call) {
	for _, p := range params {
		var v vals.Value
		switch p.Kind {
		case ast.Required:
			v = call.Req(p.Name)
		case ast.Optional:
			v, _ = call.Opt(p.Name)
		case ast.Rest:
			v = vals.NewList(call.Rest()...)
		case ast.Flag:
			v, _ = call.GetFlag(p.Name)
		case ast.Switch:
			v = vals.Bool{Val: call.HasFlag(p.Name), Ranging: diag.NoRange}
		}
		name := strings.ReplaceAll(p.Name, "-", "_")
		scope.Define(name, vars.NewReadOnly(name, v))
	}
}

// Builds a signature from the parameters of a closure or def, evaluating
// defaults in the current frame.
func (fm *Frame) buildSignature(name, usage string, params []ast.Param) (*Signature, error) {
	sig := NewSignature(name).Usage(usage)
	for _, p := range params {
		shape, ok := ParseShape(p.Shape)
		if !ok {
			return nil, errs.ParseHandoffError{Message: "unknown shape " + p.Shape + " of parameter " + p.Name}
		}
		var def vals.Value
		if p.Default != nil {
			v, err := fm.evalExpr(p.Default)
			if err != nil {
				return nil, err
			}
			def = v
		}
		switch p.Kind {
		case ast.Required:
			sig.Required(p.Name, shape, "")
		case ast.Optional:
			sig.OptionalDefault(p.Name, shape, def, "")
		case ast.Rest:
			if sig.RestParam != nil {
				return nil, errs.ParseHandoffError{Message: "more than one rest parameter"}
			}
			sig.Rest(p.Name, shape, "")
		case ast.Flag:
			sig.NamedDefault(p.Name, p.Short, shape, def, "")
		case ast.Switch:
			sig.Switch(p.Name, p.Short, "")
		default:
			return nil, errs.ParseHandoffError{Message: fmt.Sprintf("bad parameter kind %d", p.Kind)}
		}
	}
	return sig, nil
}
