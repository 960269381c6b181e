package vars

import (
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/vals"
)

type readOnly struct {
	name  string
	value vals.Value
}

// NewReadOnly creates a variable that always returns errs.ImmutableVariable
// on Set. It is used for let bindings and for bindings captured by closures.
func NewReadOnly(name string, v vals.Value) Var {
	return readOnly{name, v}
}

func (rv readOnly) Set(vals.Value) error {
	return errs.ImmutableVariable{Name: rv.name}
}

func (rv readOnly) Get() vals.Value {
	return rv.value
}

// IsReadOnly returns whether v is a read-only variable.
func IsReadOnly(v Var) bool {
	switch v.(type) {
	case readOnly, roCallback:
		return true
	default:
		return false
	}
}
