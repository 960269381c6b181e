// Package vars contains the variable cells that scopes bind names to.
package vars

import "src.tide.sh/pkg/eval/vals"

// Var is a variable cell. Set fails for read-only cells.
type Var interface {
	Set(v vals.Value) error
	Get() vals.Value
}
