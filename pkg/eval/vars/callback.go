package vars

import (
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/vals"
)

type callback struct {
	set func(vals.Value) error
	get func() vals.Value
}

// FromSetGet makes a variable from a set callback and a get callback.
func FromSetGet(set func(vals.Value) error, get func() vals.Value) Var {
	return &callback{set, get}
}

func (cv *callback) Set(val vals.Value) error { return cv.set(val) }

func (cv *callback) Get() vals.Value { return cv.get() }

type roCallback struct {
	name string
	get  func() vals.Value
}

// FromGet makes a read-only variable from a get callback.
func FromGet(name string, get func() vals.Value) Var {
	return roCallback{name, get}
}

func (cv roCallback) Set(vals.Value) error { return errs.ImmutableVariable{Name: cv.name} }

func (cv roCallback) Get() vals.Value { return cv.get() }
