package eval

import (
	"bytes"
	"errors"
	"fmt"

	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/vals"
)

// Exception is an error raised during evaluation, together with the place
// where it was raised and the chain of calls leading there.
type Exception struct {
	Reason     error
	StackTrace *StackTrace
}

// StackTrace represents a stack trace as a linked list of diag.Context. The
// head is the innermost stack.
type StackTrace struct {
	Head *diag.Context
	Next *StackTrace
}

// Reason returns the Reason field if err is an *Exception. Otherwise it
// returns err itself.
func Reason(err error) error {
	if exc, ok := err.(*Exception); ok {
		return exc.Reason
	}
	return err
}

// Error returns the message of the cause of the exception.
func (exc *Exception) Error() string { return exc.Reason.Error() }

// Unwrap returns the cause of the exception.
func (exc *Exception) Unwrap() error { return exc.Reason }

// Category returns the category of the cause.
func (exc *Exception) Category() errs.Category { return errs.CategoryOf(exc.Reason) }

// Show shows the exception.
func (exc *Exception) Show(indent string) string {
	buf := new(bytes.Buffer)

	var causeDescription string
	if shower, ok := exc.Reason.(diag.Shower); ok {
		causeDescription = shower.Show(indent)
	} else {
		causeDescription = "\033[31;1m" + exc.Reason.Error() + "\033[m"
	}
	fmt.Fprintf(buf, "Exception: %s", causeDescription)

	if exc.StackTrace != nil {
		buf.WriteString("\n")
		if exc.StackTrace.Next == nil {
			buf.WriteString(exc.StackTrace.Head.ShowCompact(indent))
		} else {
			buf.WriteString(indent + "Traceback:")
			for tb := exc.StackTrace; tb != nil; tb = tb.Next {
				buf.WriteString("\n" + indent + "  ")
				buf.WriteString(tb.Head.Show(indent + "    "))
			}
		}
	}

	if multi, ok := exc.Reason.(interface{ Unwrap() []error }); ok {
		buf.WriteString("\n" + indent + "Caused by:")
		for _, e := range multi.Unwrap() {
			buf.WriteString("\n" + indent + "  ")
			if shower, ok := e.(diag.Shower); ok {
				buf.WriteString(shower.Show(indent + "  "))
			} else {
				buf.WriteString(e.Error())
			}
		}
	}

	return buf.String()
}

// FlowKind identifies a control flow.
type FlowKind uint

// Control flows.
const (
	Return FlowKind = iota
	Break
	Continue
)

var flowNames = [...]string{
	"return", "break", "continue",
}

func (k FlowKind) String() string {
	if k >= FlowKind(len(flowNames)) {
		return fmt.Sprintf("!(BAD FLOW: %d)", k)
	}
	return flowNames[k]
}

// Flow is a special error used for control flows. It travels up to the loop,
// closure or command that consumes it and is never wrapped in an Exception.
type Flow struct {
	Kind FlowKind
	// Value is the value of a return, or nil.
	Value vals.Value
	diag.Ranging
}

func (f *Flow) Error() string { return f.Kind.String() }

// Show shows the flow "error".
func (f *Flow) Show(string) string {
	return "\033[33;1m" + f.Kind.String() + "\033[m"
}

// Reports whether err is a flow of the given kind.
func isFlow(err error, kind FlowKind) (*Flow, bool) {
	var flow *Flow
	if errors.As(err, &flow) && flow.Kind == kind {
		return flow, true
	}
	return nil, false
}
