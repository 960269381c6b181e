package vars

import (
	"src.tide.sh/pkg/eval/vals"
)

type elem struct {
	variable Var
	path     []vals.PathMember
	setValue vals.Value
}

func (ev *elem) Set(v vals.Value) error {
	updated, err := vals.Upsert(ev.variable.Get(), ev.path, v)
	if err != nil {
		return err
	}
	if err := ev.variable.Set(updated); err != nil {
		return err
	}
	ev.setValue = v
	return nil
}

func (ev *elem) Get() vals.Value {
	return ev.setValue
}

// MakeElement returns a variable that, when set, replaces the value at path
// inside v. Assigning to $r.a.b is the same as assigning to $r a copy of $r
// with the field a.b replaced.
func MakeElement(v Var, path []vals.PathMember) Var {
	if len(path) == 0 {
		return v
	}
	return &elem{variable: v, path: path}
}

// HeadOfElement gets the underlying head variable of an element variable, or
// nil if the argument is not an element variable.
func HeadOfElement(v Var) Var {
	if ev, ok := v.(*elem); ok {
		return ev.variable
	}
	return nil
}
