// Package core contains the commands every session has: filters over
// streams, table helpers, filesystem sources and sinks, and error raising.
package core

import (
	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/eval/stream"
	"src.tide.sh/pkg/eval/vals"
	"src.tide.sh/pkg/logutil"
)

var logger = logutil.GetLogger("[mods/core] ")

// Commands contains the core commands.
var Commands = []eval.Command{
	eval.CommandFunc(eval.NewSignature("echo").
		Usage("Outputs its arguments. Several arguments are output as a list.").
		Rest("rest", eval.ShapeAny, "the values to output"),
		echo),
	eval.CommandFunc(eval.NewSignature("ignore").
		Usage("Consumes its input and outputs nothing.").
		Output(eval.ShapeNothing),
		ignore),
	eval.CommandFunc(eval.NewSignature("describe").
		Usage("Outputs the kind of its input.").
		Output(eval.ShapeString),
		describe),
	eval.CommandFunc(eval.NewSignature("do").
		Usage("Runs a closure with the given arguments and the input as $in.").
		Required("closure", eval.ShapeClosure, "the closure to run").
		Rest("args", eval.ShapeAny, "arguments to the closure").
		Switch("ignore-errors", 'i', "output nothing instead of failing").
		Switch("capture-errors", 'c', "output failures as error values"),
		do),
	eval.CommandFunc(eval.NewSignature("error make").
		Usage("Raises an error from a record with a msg field.").
		Required("error", eval.ShapeRecord, "the error record"),
		errorMake),

	eval.CommandFunc(eval.NewSignature("each").
		Usage("Runs a closure on every element of the input.").
		Required("closure", eval.ShapeClosure, "the closure to run").
		Switch("keep-empty", 'k', "keep results that are nothing"),
		each),
	eval.CommandFunc(eval.NewSignature("where").
		Usage("Keeps the elements for which a closure outputs true.").
		Required("closure", eval.ShapeClosure, "the predicate"),
		where),
	eval.CommandFunc(eval.NewSignature("first").
		Usage("Outputs the first n elements, or the first element without n.").
		Optional("n", eval.ShapeInt, "how many elements"),
		first),
	eval.CommandFunc(eval.NewSignature("skip").
		Usage("Drops the first n elements.").
		OptionalDefault("n", eval.ShapeInt, vals.Int{Val: 1, Ranging: diag.NoRange}, "how many elements"),
		skip),
	eval.CommandFunc(eval.NewSignature("last").
		Usage("Outputs the last n elements, or the last element without n.").
		Optional("n", eval.ShapeInt, "how many elements"),
		last),
	eval.CommandFunc(eval.NewSignature("length").
		Usage("Outputs the number of elements of the input.").
		Output(eval.ShapeInt),
		length),
	eval.CommandFunc(eval.NewSignature("sort").
		Usage("Sorts the input.").
		Switch("reverse", 'r', "sort in descending order").
		Named("by", 'b', eval.ShapeString, "sort records by a column"),
		sortCmd),
	eval.CommandFunc(eval.NewSignature("reduce").
		Usage("Combines the elements of the input with a closure taking the element and the accumulator.").
		Required("closure", eval.ShapeClosure, "the reducer").
		Named("fold", 'f', eval.ShapeAny, "the initial accumulator").
		Switch("numbered", 'n', "pass {index, item} records instead of elements"),
		reduce),
	eval.CommandFunc(eval.NewSignature("lines").
		Usage("Splits the input into lines."),
		lines),
	eval.CommandFunc(eval.NewSignature("collect").
		Usage("Collects the input into a list, optionally passing it to a closure.").
		Optional("closure", eval.ShapeClosure, "the closure to run on the list"),
		collect),

	eval.CommandFunc(eval.NewSignature("get").
		Usage("Follows a cell path like a.0.b into the input.").
		Required("path", eval.ShapeAny, "the cell path").
		Switch("optional", 'o', "output nothing for missing members"),
		get),
	eval.CommandFunc(eval.NewSignature("select").
		Usage("Keeps the given columns of a record or table.").
		Rest("columns", eval.ShapeString, "the columns to keep"),
		selectCmd),
	eval.CommandFunc(eval.NewSignature("columns").
		Usage("Outputs the column names of a record or table."),
		columns),
	eval.CommandFunc(eval.NewSignature("wrap").
		Usage("Wraps every element of the input in a record with one column.").
		Required("column", eval.ShapeString, "the column name"),
		wrap),

	eval.CommandFunc(eval.NewSignature("cd").
		Usage("Changes the working directory. Without a path, goes home; - goes back.").
		Optional("path", eval.ShapeString, "the new directory").
		Output(eval.ShapeNothing),
		cd),
	eval.CommandFunc(eval.NewSignature("save").
		Usage("Writes the input to a file.").
		Required("path", eval.ShapeString, "the file to write").
		Switch("append", 'a', "append to the file").
		Switch("force", 'f', "overwrite an existing file").
		Output(eval.ShapeNothing),
		save),
	eval.CommandFunc(eval.NewSignature("open").
		Usage("Reads a file. JSON and YAML files are decoded unless --raw is given.").
		Required("path", eval.ShapeString, "the file to read").
		Switch("raw", 'r', "output the bytes of the file"),
		open),
}

// Returns Nothing.
func nothing() vals.Value { return vals.Nothing{Ranging: diag.NoRange} }

// Applies f to a single non-container value, or to every element of any
// other input.
func mapInput(fm *eval.Frame, input stream.Data, f func(vals.Value) (vals.Value, error)) (stream.Data, error) {
	if single, ok := input.(stream.Single); ok && !isContainer(single.Value) {
		v, err := f(single.Value)
		if err != nil {
			return nil, err
		}
		return stream.Single{Value: v}, nil
	}
	return stream.Map(fm.Interrupts(), fm.Values(input), f), nil
}

func isContainer(v vals.Value) bool {
	switch v.(type) {
	case vals.List, vals.Range:
		return true
	}
	return false
}
