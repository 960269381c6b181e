// Package shared contains commands for shared variables, which are kept in
// the store and visible to every session using the same database.
package shared

import (
	"errors"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/stream"
	"src.tide.sh/pkg/eval/vals"
	"src.tide.sh/pkg/store"
)

// ErrNoStore is raised when the session has no store.
var ErrNoStore = errors.New("no store for shared variables")

// Commands contains shared get, shared set, shared del and shared list.
var Commands = []eval.Command{
	eval.CommandFunc(eval.NewSignature("shared get").
		Usage("Outputs the value of a shared variable.").
		Required("name", eval.ShapeString, "the variable"),
		get),
	eval.CommandFunc(eval.NewSignature("shared set").
		Usage("Sets a shared variable to a value, or to the input without a value.").
		Required("name", eval.ShapeString, "the variable").
		Optional("value", eval.ShapeAny, "the new value").
		Output(eval.ShapeNothing),
		set),
	eval.CommandFunc(eval.NewSignature("shared del").
		Usage("Deletes a shared variable.").
		Required("name", eval.ShapeString, "the variable").
		Output(eval.ShapeNothing),
		del),
	eval.CommandFunc(eval.NewSignature("shared list").
		Usage("Outputs the names of all shared variables.").
		Output(eval.ShapeList),
		list),
}

// AddTo sets the store of the Evaler and adds the commands.
func AddTo(ev *eval.Evaler, st store.Store) {
	ev.SetStore(st)
	for _, cmd := range Commands {
		ev.AddCommand(cmd)
	}
}

func storeOf(fm *eval.Frame) (store.Store, error) {
	st := fm.Store()
	if st == nil {
		return nil, ErrNoStore
	}
	return st, nil
}

func get(fm *eval.Frame, call *eval.Call, _ stream.Data) (stream.Data, error) {
	st, err := storeOf(fm)
	if err != nil {
		return nil, err
	}
	name := vals.ToString(call.Req("name"))
	text, err := st.SharedVar(name)
	if err != nil {
		if errors.Is(err, store.ErrNoSharedVar) {
			return nil, errs.VariableNotFound{Name: "shared." + name}
		}
		return nil, err
	}
	v, err := vals.FromJSON([]byte(text))
	if err != nil {
		return nil, err
	}
	return stream.Single{Value: v}, nil
}

func set(fm *eval.Frame, call *eval.Call, input stream.Data) (stream.Data, error) {
	st, err := storeOf(fm)
	if err != nil {
		return nil, err
	}
	v, given := call.Opt("value")
	if !given {
		if v, err = stream.Collect(input); err != nil {
			return nil, err
		}
	}
	text, err := vals.ToJSON(v, "")
	if err != nil {
		return nil, err
	}
	return stream.Empty{}, st.SetSharedVar(vals.ToString(call.Req("name")), string(text))
}

func del(fm *eval.Frame, call *eval.Call, _ stream.Data) (stream.Data, error) {
	st, err := storeOf(fm)
	if err != nil {
		return nil, err
	}
	return stream.Empty{}, st.DelSharedVar(vals.ToString(call.Req("name")))
}

func list(fm *eval.Frame, _ *eval.Call, _ stream.Data) (stream.Data, error) {
	st, err := storeOf(fm)
	if err != nil {
		return nil, err
	}
	names, err := st.SharedVarNames()
	if err != nil {
		return nil, err
	}
	vs := make([]vals.Value, len(names))
	for i, name := range names {
		vs[i] = vals.String{Val: name, Ranging: diag.NoRange}
	}
	return stream.Single{Value: vals.NewList(vs...)}, nil
}
