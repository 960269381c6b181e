package diag

import (
	"fmt"
	"io"
)

// Shower wraps the Show method.
type Shower interface {
	// Show returns a possibly multi-line description, each continuation line
	// prefixed with indent.
	Show(indent string) string
}

// ShowError writes err to w, using Show if err implements [Shower].
func ShowError(w io.Writer, err error) {
	if shower, ok := err.(Shower); ok {
		fmt.Fprintln(w, shower.Show(""))
	} else {
		fmt.Fprintf(w, "\033[31;1m%s\033[m\n", err.Error())
	}
}
