package eval

import (
	"src.tide.sh/pkg/ast"
	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval/stream"
)

// A command defined with def. Its body runs in a new scope whose parent is
// the live global scope, so it sees the current values of global variables
// rather than a snapshot.
type defCommand struct {
	sig    *Signature
	params []ast.Param
	body   *ast.Block
	src    diag.Source
}

func (d *defCommand) Signature() *Signature { return d.sig }

func (d *defCommand) Run(fm *Frame, call *Call, input stream.Data) (stream.Data, error) {
	return fm.runBody(d.src, d.body, d.params, NewScope(fm.Global), call, input)
}

func (fm *Frame) evalDef(d *ast.Def) error {
	sig, err := fm.buildSignature(d.Name, d.Usage, d.Params)
	if err != nil {
		return fm.errorp(d, err)
	}
	fm.AddCommand(&defCommand{sig, d.Params, d.Body, fm.src})
	return nil
}
