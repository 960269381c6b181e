package vars

import (
	"sync"

	"src.tide.sh/pkg/eval/vals"
)

// cell is a mutable variable. Closures running in concurrent pipeline stages
// may share one, so access is locked.
type cell struct {
	mu *sync.RWMutex
	v  *vals.Value
}

// FromInit creates a mutable variable with an initial value. It can be
// assigned values of any kind.
func FromInit(v vals.Value) Var {
	return cell{new(sync.RWMutex), &v}
}

func (c cell) Get() vals.Value {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return *c.v
}

func (c cell) Set(v vals.Value) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	*c.v = v
	return nil
}
