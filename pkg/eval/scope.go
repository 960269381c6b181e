package eval

import (
	"sort"

	"src.tide.sh/pkg/eval/vars"
)

// Scope maps names to variables. Scopes form a chain through their parents;
// lookup walks the chain from the innermost scope outwards, so inner
// definitions shadow outer ones.
type Scope struct {
	parent *Scope
	names  map[string]vars.Var
}

// NewScope creates an empty scope with the given parent, which may be nil.
func NewScope(parent *Scope) *Scope {
	return &Scope{parent, make(map[string]vars.Var)}
}

// Define binds a name in this scope, replacing any binding of the same name
// in this scope.
func (s *Scope) Define(name string, v vars.Var) {
	s.names[name] = v
}

// Lookup finds the variable bound to name, or returns nil.
func (s *Scope) Lookup(name string) vars.Var {
	for ; s != nil; s = s.parent {
		if v, ok := s.names[name]; ok {
			return v
		}
	}
	return nil
}

// Names returns the names bound in this scope alone, sorted.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.names))
	for name := range s.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Returns a new scope holding read-only copies of the current values of all
// variables visible from s, excluding those in stop and its ancestors. The
// new scope's parent is parent.
func (s *Scope) snapshot(stop, parent *Scope) *Scope {
	captured := NewScope(parent)
	for ; s != nil && s != stop; s = s.parent {
		for name, v := range s.names {
			if _, shadowed := captured.names[name]; !shadowed {
				captured.names[name] = vars.NewReadOnly(name, v.Get())
			}
		}
	}
	return captured
}
