// Package errs declares the error types of the evaluation engine.
//
// Every error type belongs to one Category; the evaluator and embedding
// programs use categories to decide how to report an error without knowing
// every concrete type.
package errs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Category classifies errors.
type Category int

// Error categories.
const (
	Generic Category = iota
	// ParseHandoff means the evaluator got a malformed AST.
	ParseHandoff
	// Binding means arguments don't fit a command's signature.
	Binding
	// Type means a value has the wrong variant for an operation.
	Type
	// NotFound means a variable, command or column lookup missed.
	NotFound
	// ExternalFailed means an external command exited with non-zero status.
	ExternalFailed
	// ExternalSpawn means an external command could not be started.
	ExternalSpawn
	// UnexpectedControlFlow means break, continue or return escaped its
	// boundary.
	UnexpectedControlFlow
	// Interrupted means evaluation was interrupted.
	Interrupted
)

var categoryNames = [...]string{
	"generic", "parse-handoff", "binding", "type", "not-found",
	"external-failed", "external-spawn", "unexpected-control-flow", "interrupted",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "category(" + strconv.Itoa(int(c)) + ")"
	}
	return categoryNames[c]
}

// Categorized is implemented by errors that know their category.
type Categorized interface {
	Category() Category
}

// CategoryOf finds the category of err, looking through wrapped errors. Errors
// without a category are Generic.
func CategoryOf(err error) Category {
	var c Categorized
	if errors.As(err, &c) {
		return c.Category()
	}
	return Generic
}

// ParseHandoffError is raised when the AST is not what the evaluator expects.
// It indicates a bug in the parser rather than in user code.
type ParseHandoffError struct {
	Message string
}

func (e ParseHandoffError) Error() string { return "malformed AST: " + e.Message }

func (ParseHandoffError) Category() Category { return ParseHandoff }

// TypeMismatch is raised when an operation gets a value of the wrong kind.
type TypeMismatch struct {
	// What is being checked, like "left operand of +" or "argument of into int".
	What  string
	Want  string
	Valid string
	Got   string
}

func (e TypeMismatch) Error() string {
	if e.Valid != "" {
		return fmt.Sprintf("type mismatch: %s must be %s, but is %s", e.What, e.Valid, e.Got)
	}
	return fmt.Sprintf("type mismatch: %s must be %s, but is %s", e.What, e.Want, e.Got)
}

func (TypeMismatch) Category() Category { return Type }

// IncompatibleOperands is raised when a binary operator doesn't support the
// combination of its operand kinds.
type IncompatibleOperands struct {
	Op    string
	Left  string
	Right string
}

func (e IncompatibleOperands) Error() string {
	return fmt.Sprintf("operator %s not supported between %s and %s", e.Op, e.Left, e.Right)
}

func (IncompatibleOperands) Category() Category { return Type }

// BadValue is raised when a value has the right kind but an invalid content.
type BadValue struct {
	What   string
	Valid  string
	Actual string
}

func (e BadValue) Error() string {
	return fmt.Sprintf("bad value: %s must be %s, but is %s", e.What, e.Valid, e.Actual)
}

func (BadValue) Category() Category { return Type }

// Overflow is raised when integer arithmetic leaves the 64-bit range.
type Overflow struct {
	Op string
}

func (e Overflow) Error() string { return "integer overflow in " + e.Op }

func (Overflow) Category() Category { return Type }

// DivideByZero is raised on division or modulo by zero.
type DivideByZero struct{}

func (DivideByZero) Error() string { return "division by zero" }

func (DivideByZero) Category() Category { return Type }

// OutOfRange is raised when an index is outside the valid range.
type OutOfRange struct {
	What      string
	ValidLow  int
	ValidHigh int
	Actual    string
}

func (e OutOfRange) Error() string {
	if e.ValidHigh < e.ValidLow {
		return fmt.Sprintf("out of range: %s has no valid value, but is %s", e.What, e.Actual)
	}
	return fmt.Sprintf("out of range: %s must be from %d to %d, but is %s",
		e.What, e.ValidLow, e.ValidHigh, e.Actual)
}

func (OutOfRange) Category() Category { return NotFound }

// DuplicateField is raised when a record would get the same field twice.
type DuplicateField struct {
	Field string
}

func (e DuplicateField) Error() string { return "duplicate record field: " + e.Field }

func (DuplicateField) Category() Category { return Type }

// InvalidRange is raised when a range can't be constructed.
type InvalidRange struct {
	Reason string
}

func (e InvalidRange) Error() string { return "invalid range: " + e.Reason }

func (InvalidRange) Category() Category { return Type }

// ColumnNotFound is raised when a record or table lacks a column.
type ColumnNotFound struct {
	Column string
}

func (e ColumnNotFound) Error() string { return "column not found: " + e.Column }

func (ColumnNotFound) Category() Category { return NotFound }

// VariableNotFound is raised when a variable can't be resolved.
type VariableNotFound struct {
	Name string
}

func (e VariableNotFound) Error() string { return "variable not found: $" + e.Name }

func (VariableNotFound) Category() Category { return NotFound }

// CommandNotFound is raised when a command isn't in the registry.
type CommandNotFound struct {
	Name string
}

func (e CommandNotFound) Error() string { return "command not found: " + e.Name }

func (CommandNotFound) Category() Category { return NotFound }

// ImmutableVariable is raised when assigning to a variable declared with let
// or captured by a closure.
type ImmutableVariable struct {
	Name string
}

func (e ImmutableVariable) Error() string {
	return "cannot assign to immutable variable $" + e.Name
}

func (ImmutableVariable) Category() Category { return Type }

// MissingMandatoryPositional is raised when a required positional argument is
// absent.
type MissingMandatoryPositional struct {
	Command string
	Param   string
}

func (e MissingMandatoryPositional) Error() string {
	return fmt.Sprintf("%s: missing required positional argument %s", e.Command, e.Param)
}

func (MissingMandatoryPositional) Category() Category { return Binding }

// TooManyPositionals is raised when a command without a rest parameter gets
// more positional arguments than it declares.
type TooManyPositionals struct {
	Command string
	Max     int
	Actual  int
}

func (e TooManyPositionals) Error() string {
	return fmt.Sprintf("%s: accepts at most %d positional %s, but got %d",
		e.Command, e.Max, plural(e.Max, "argument"), e.Actual)
}

func (TooManyPositionals) Category() Category { return Binding }

// UnknownFlag is raised when a flag matches no declared flag, or when an
// abbreviated flag matches several.
type UnknownFlag struct {
	Command string
	Flag    string
	// Candidates is set when the flag is an ambiguous prefix.
	Candidates []string
}

func (e UnknownFlag) Error() string {
	if len(e.Candidates) > 0 {
		return fmt.Sprintf("%s: ambiguous flag %s, could be %s",
			e.Command, e.Flag, strings.Join(e.Candidates, ", "))
	}
	return fmt.Sprintf("%s: unknown flag %s", e.Command, e.Flag)
}

func (UnknownFlag) Category() Category { return Binding }

// MissingFlagValue is raised when a flag that takes a value gets none.
type MissingFlagValue struct {
	Command string
	Flag    string
}

func (e MissingFlagValue) Error() string {
	return fmt.Sprintf("%s: flag --%s requires a value", e.Command, e.Flag)
}

func (MissingFlagValue) Category() Category { return Binding }

// ArgTypeMismatch is raised during binding when an argument has the wrong
// shape.
type ArgTypeMismatch struct {
	Command string
	Param   string
	Want    string
	Got     string
}

func (e ArgTypeMismatch) Error() string {
	return fmt.Sprintf("%s: argument %s must be %s, but is %s", e.Command, e.Param, e.Want, e.Got)
}

func (ArgTypeMismatch) Category() Category { return Binding }

// InputTypeMismatch is raised when a command gets pipeline input it doesn't
// accept.
type InputTypeMismatch struct {
	Command string
	Want    string
	Got     string
}

func (e InputTypeMismatch) Error() string {
	return fmt.Sprintf("%s: input must be %s, but is %s", e.Command, e.Want, e.Got)
}

func (InputTypeMismatch) Category() Category { return Type }

// ExternalCommandFailed is raised when an external command exits with a
// non-zero status or is killed by a signal.
type ExternalCommandFailed struct {
	Cmd  string
	Code int
	// Signal is the name of the terminating signal, if any.
	Signal string
}

func (e ExternalCommandFailed) Error() string {
	if e.Signal != "" {
		return fmt.Sprintf("%s killed by signal %s", e.Cmd, e.Signal)
	}
	return fmt.Sprintf("%s exited with %d", e.Cmd, e.Code)
}

func (ExternalCommandFailed) Category() Category { return ExternalFailed }

// ExternalSpawnFailed is raised when an external command can't be started.
type ExternalSpawnFailed struct {
	Cmd string
	Err error
}

func (e ExternalSpawnFailed) Error() string {
	return fmt.Sprintf("cannot run %s: %v", e.Cmd, e.Err)
}

func (e ExternalSpawnFailed) Unwrap() error { return e.Err }

func (ExternalSpawnFailed) Category() Category { return ExternalSpawn }

// UnexpectedControlFlowError is raised when break, continue or return is used
// where nothing can consume it.
type UnexpectedControlFlowError struct {
	Flow string
}

func (e UnexpectedControlFlowError) Error() string {
	return e.Flow + " used outside of " + boundaryOf(e.Flow)
}

func (UnexpectedControlFlowError) Category() Category { return UnexpectedControlFlow }

func boundaryOf(flow string) string {
	if flow == "return" {
		return "a closure or command"
	}
	return "a loop"
}

// ErrInterrupted is raised when evaluation is interrupted.
var ErrInterrupted = interruptedError{}

type interruptedError struct{}

func (interruptedError) Error() string { return "interrupted" }

func (interruptedError) Category() Category { return Interrupted }

// ReaderGone is raised by writes to a stream whose reader has exited.
type ReaderGone struct{}

func (ReaderGone) Error() string { return "reader gone" }

func plural(n int, s string) string {
	if n == 1 {
		return s
	}
	return s + "s"
}
