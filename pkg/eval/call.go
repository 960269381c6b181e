package eval

import (
	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/vals"
)

// Call holds the arguments of a command invocation, bound against the
// command's signature. Commands only ever see calls that bound successfully.
type Call struct {
	// The span of the call site.
	diag.Ranging

	sig   *Signature
	pos   map[string]vals.Value
	given map[string]bool
	rest  []vals.Value
	flags map[string]vals.Value
}

// Name returns the name of the command being called.
func (c *Call) Name() string { return c.sig.Name }

// Signature returns the signature the call was bound against.
func (c *Call) Signature() *Signature { return c.sig }

// Req returns the value of a required positional parameter.
func (c *Call) Req(name string) vals.Value {
	if v, ok := c.pos[name]; ok {
		return v
	}
	return nothing
}

// Opt returns the value of an optional positional parameter, which is its
// default when absent, and whether it was given.
func (c *Call) Opt(name string) (vals.Value, bool) {
	v, ok := c.pos[name]
	if !ok {
		return nothing, false
	}
	return v, c.given[name]
}

// Rest returns the arguments bound to the rest parameter.
func (c *Call) Rest() []vals.Value { return c.rest }

// GetFlag returns the value of a flag, which is its default when absent, and
// whether it was given.
func (c *Call) GetFlag(name string) (vals.Value, bool) {
	if v, ok := c.flags[name]; ok {
		return v, true
	}
	if f := c.sig.flag(name); f != nil && f.Default != nil {
		return f.Default, false
	}
	return nothing, false
}

// HasFlag reports whether a switch is on.
func (c *Call) HasFlag(name string) bool {
	v, ok := c.flags[name]
	if !ok {
		return false
	}
	b, isBool := v.(vals.Bool)
	return !isBool || b.Val
}

// Scan converts the value of a positional parameter or flag into a Go value.
func (c *Call) Scan(name string, ptr any) error {
	v, ok := c.pos[name]
	if !ok {
		v, _ = c.GetFlag(name)
	}
	if err := vals.ScanToGo(v, ptr); err != nil {
		if tm, ok := err.(errs.TypeMismatch); ok {
			tm.What = "argument " + name + " of " + c.sig.Name
			return tm
		}
		return err
	}
	return nil
}

// An evaluated argument.
type argValue struct {
	diag.Ranging
	flag  string
	short bool
	// nil for a flag written without a value
	value vals.Value
}

// Binds evaluated arguments against a signature. Errors carry the span of
// the offending argument, or of the call site when an argument is missing.
func (fm *Frame) bind(sig *Signature, site diag.Ranging, args []argValue) (*Call, error) {
	call := &Call{
		Ranging: site,
		sig:     sig,
		pos:     make(map[string]vals.Value),
		given:   make(map[string]bool),
		flags:   make(map[string]vals.Value),
	}
	var positionals []argValue
	for _, arg := range args {
		if arg.flag == "" {
			positionals = append(positionals, arg)
			continue
		}
		if err := bindFlag(call, arg); err != nil {
			return nil, fm.errorp(arg, err)
		}
	}

	n := len(positionals)
	if n < len(sig.Req) {
		return nil, fm.errorp(site, errs.MissingMandatoryPositional{
			Command: sig.Name, Param: sig.Req[n].Name})
	}
	maxPos := len(sig.Req) + len(sig.Opt)
	if n > maxPos && sig.RestParam == nil {
		return nil, fm.errorp(positionals[maxPos], errs.TooManyPositionals{
			Command: sig.Name, Max: maxPos, Actual: n})
	}
	params := append(append([]Param(nil), sig.Req...), sig.Opt...)
	for i, p := range params {
		if i >= n {
			call.pos[p.Name] = defaultOf(p)
			continue
		}
		v, err := conform(sig.Name, p.Name, p.Shape, positionals[i].value)
		if err != nil {
			return nil, fm.errorp(positionals[i], err)
		}
		call.pos[p.Name] = v
		call.given[p.Name] = true
	}
	if sig.RestParam != nil {
		call.rest = []vals.Value{}
		for i := maxPos; i < n; i++ {
			v, err := conform(sig.Name, sig.RestParam.Name, sig.RestParam.Shape, positionals[i].value)
			if err != nil {
				return nil, fm.errorp(positionals[i], err)
			}
			call.rest = append(call.rest, v)
		}
	}
	return call, nil
}

func bindFlag(call *Call, arg argValue) error {
	sig := call.sig
	if arg.short {
		// Several short switches may be combined, like -nf; only the last one
		// may take the value.
		runes := []rune(arg.flag)
		for i, r := range runes {
			f := sig.shortFlag(r)
			if f == nil {
				return errs.UnknownFlag{Command: sig.Name, Flag: "-" + string(r)}
			}
			value := arg.value
			if i < len(runes)-1 {
				value = nil
			}
			if err := setFlag(call, f, value); err != nil {
				return err
			}
		}
		return nil
	}
	f := sig.flag(arg.flag)
	if f == nil {
		candidates := sig.flagsWithPrefix(arg.flag)
		switch len(candidates) {
		case 0:
			return errs.UnknownFlag{Command: sig.Name, Flag: "--" + arg.flag}
		case 1:
			f = candidates[0]
		default:
			names := make([]string, len(candidates))
			for i, c := range candidates {
				names[i] = "--" + c.Long
			}
			return errs.UnknownFlag{Command: sig.Name, Flag: "--" + arg.flag, Candidates: names}
		}
	}
	return setFlag(call, f, arg.value)
}

func setFlag(call *Call, f *Flag, value vals.Value) error {
	if f.IsSwitch() {
		if value == nil {
			call.flags[f.Long] = vals.Bool{Val: true, Ranging: diag.NoRange}
			return nil
		}
		if _, ok := value.(vals.Bool); !ok {
			return errs.ArgTypeMismatch{Command: call.sig.Name, Param: "--" + f.Long,
				Want: "bool", Got: vals.KindName(value)}
		}
		call.flags[f.Long] = value
		return nil
	}
	if value == nil {
		return errs.MissingFlagValue{Command: call.sig.Name, Flag: f.Long}
	}
	v, err := conform(call.sig.Name, "--"+f.Long, f.Shape, value)
	if err != nil {
		return err
	}
	call.flags[f.Long] = v
	return nil
}

// Checks an argument against a shape. Ints are accepted as floats.
func conform(cmd, param string, shape Shape, v vals.Value) (vals.Value, error) {
	if shape.Accepts(v) {
		return v, nil
	}
	if i, ok := v.(vals.Int); ok && shape == ShapeFloat {
		return vals.Float{Val: float64(i.Val), Ranging: i.Ranging}, nil
	}
	return nil, errs.ArgTypeMismatch{Command: cmd, Param: param,
		Want: shape.String(), Got: vals.KindName(v)}
}

func defaultOf(p Param) vals.Value {
	if p.Default != nil {
		return p.Default
	}
	return nothing
}
