package diag

import "fmt"

// Error is an error with a message and a source context.
type Error struct {
	Type    string
	Message string
	Context Context
}

// Error returns a plain text representation of the error.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %d-%d in %s: %s",
		e.Type, e.Context.From, e.Context.To, e.Context.Name, e.Message)
}

// Range returns the span of the error.
func (e *Error) Range() Ranging { return e.Context.Range() }

// Show shows the error with its context.
func (e *Error) Show(indent string) string {
	return fmt.Sprintf("%s: \033[31;1m%s\033[m\n", e.Type, e.Message) +
		indent + "  " + e.Context.ShowCompact(indent+"  ")
}
