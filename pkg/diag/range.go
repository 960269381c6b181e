// Package diag contains building blocks for source-level diagnostics: spans
// into source code, and a way to show them to the user.
package diag

// Ranger wraps the Range method. Every AST node and every runtime value
// implements it, so that errors can always point at the code that caused
// them.
type Ranger interface {
	// Range returns the span associated with the receiver.
	Range() Ranging
}

// Ranging is a half-open span [From, To) of byte offsets into a source. Structs
// embed it to satisfy [Ranger].
//
// A Ranging with From == -1 means the position is unknown, which is the case
// for values synthesized by Go code.
type Ranging struct {
	From int
	To   int
}

// Range returns the Ranging itself.
func (r Ranging) Range() Ranging { return r }

// Known reports whether the span points somewhere in a source.
func (r Ranging) Known() bool { return r.From >= 0 }

// NoRange is the span used for values that don't come from any source code.
var NoRange = Ranging{-1, -1}

// PointRanging returns a zero-width span at p.
func PointRanging(p int) Ranging { return Ranging{p, p} }

// MixedRanging returns a span from the start of a to the end of b.
func MixedRanging(a, b Ranger) Ranging {
	return Ranging{a.Range().From, b.Range().To}
}
