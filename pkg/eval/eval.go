// Package eval is the evaluation engine: it walks a syntax tree and threads
// values, lazy streams of values and raw bytes between the stages of
// pipelines, dispatching to built-in commands, user-defined commands,
// closures and external programs.
package eval

import (
	"io"
	"os"
	"sync"

	"src.tide.sh/pkg/ast"
	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/stream"
	"src.tide.sh/pkg/eval/vals"
	"src.tide.sh/pkg/eval/vars"
	"src.tide.sh/pkg/logutil"
	"src.tide.sh/pkg/store"
)

var logger = logutil.GetLogger("[eval] ")

// Evaler is the state of a session. It is created once and reused for every
// piece of code evaluated in the session; variables, commands, the
// environment and the working directory persist between evaluations.
//
// The global scope and the command registry are only modified by the
// goroutine running Eval. The environment and the working directory are
// guarded by a mutex, since external commands snapshot them while other
// goroutines may be pulling streams.
type Evaler struct {
	// Builtin holds variables backed by the Evaler itself, like $env. It is the
	// parent of Global.
	Builtin *Scope
	// Global is the scope of top-level code.
	Global *Scope

	commands map[string]Command

	mu  sync.RWMutex
	env map[string]string
	cwd string

	afterChdir []func(string)

	intr interrupter

	stdin  *os.File
	stdout io.Writer
	stderr io.Writer

	store store.Store
}

// NewEvaler creates a new Evaler. The environment and working directory are
// initialized from the process.
func NewEvaler() *Evaler {
	ev := &Evaler{
		commands: make(map[string]Command),
		env:      environFromOS(),
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	if wd, err := os.Getwd(); err == nil {
		ev.cwd = wd
	} else {
		logger.Println("cannot get working directory:", err)
		ev.cwd = "/"
	}
	ev.Builtin = NewScope(nil)
	ev.Builtin.Define("env", vars.FromSetGet(ev.setEnvRecord, func() vals.Value {
		return ev.EnvRecord()
	}))
	ev.Builtin.Define("pwd", vars.FromGet("pwd", func() vals.Value { return vals.FromGo(ev.Pwd()) }))
	ev.Global = NewScope(ev.Builtin)
	return ev
}

// SetStdio replaces the session's standard files. Passing nil keeps the
// current one.
func (ev *Evaler) SetStdio(stdin *os.File, stdout, stderr io.Writer) {
	if stdin != nil {
		ev.stdin = stdin
	}
	if stdout != nil {
		ev.stdout = stdout
	}
	if stderr != nil {
		ev.stderr = stderr
	}
}

// SetStore sets the store used for shared variables.
func (ev *Evaler) SetStore(st store.Store) { ev.store = st }

// Store returns the store used for shared variables, or nil.
func (ev *Evaler) Store() store.Store { return ev.store }

// DefineVar defines a variable in the global scope. It replaces any existing
// global variable with the same name.
func (ev *Evaler) DefineVar(name string, v vals.Value, mutable bool) {
	ev.Global.Define(name, newVar(name, v, mutable))
}

// ResolveVar returns the value of a global variable.
func (ev *Evaler) ResolveVar(name string) (vals.Value, error) {
	if v := ev.Global.Lookup(name); v != nil {
		return v.Get(), nil
	}
	return nil, errs.VariableNotFound{Name: name}
}

func newVar(name string, v vals.Value, mutable bool) vars.Var {
	if mutable {
		return vars.FromInit(v)
	}
	return vars.NewReadOnly(name, v)
}

// EvalCfg keeps configuration for (*Evaler).Eval.
type EvalCfg struct {
	// Stdin, Stdout and Stderr override the session's standard files for this
	// evaluation.
	Stdin  *os.File
	Stdout io.Writer
	Stderr io.Writer
	// PutValue, if not nil, receives the values output by the code instead of
	// having them written to Stdout. Bytes output by a last external stage are
	// still written to Stdout.
	PutValue func(vals.Value) error
	// Interrupts makes Eval listen to SIGINT and SIGQUIT while evaluating.
	Interrupts bool
}

func (cfg *EvalCfg) fillDefaults(ev *Evaler) {
	if cfg.Stdin == nil {
		cfg.Stdin = ev.stdin
	}
	if cfg.Stdout == nil {
		cfg.Stdout = ev.stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = ev.stderr
	}
}

// Eval evaluates a block of top-level code. The values it outputs are passed
// to cfg.PutValue, or written to the standard output one per line.
//
// An error terminates the evaluation, but not the session: Eval can be
// called again with the same Evaler. Errors from the code are *Exception
// values that can show the span of code that failed.
func (ev *Evaler) Eval(src diag.Source, tree *ast.Block, cfg EvalCfg) error {
	cfg.fillDefaults(ev)
	intCh, cleanup := ev.intr.reset()
	defer cleanup()
	if cfg.Interrupts {
		stop := listenInterrupts(ev.Interrupt)
		defer stop()
	}
	fm := &Frame{
		Evaler: ev,
		src:    src,
		scope:  ev.Global,
		in:     newInput(stream.Empty{}),
		intr:   intCh,
		ports:  ports{cfg.Stdin, cfg.Stdout, cfg.Stderr},
	}
	out, err := fm.evalBlockIn(tree, ev.Global, false)
	if err != nil {
		return fm.topLevelError(tree, err)
	}
	return fm.topLevelError(tree, fm.sink(out, cfg.PutValue))
}

// Escaped control flow becomes an error, and errors without a span get the
// span of the whole tree.
func (fm *Frame) topLevelError(tree *ast.Block, err error) error {
	if err == nil {
		return nil
	}
	if flow, ok := err.(*Flow); ok {
		return fm.errorp(flow, errs.UnexpectedControlFlowError{Flow: flow.Kind.String()})
	}
	return fm.errorp(tree, err)
}

// Writes or passes on the output of top-level code. An Error value raises.
func (fm *Frame) sink(out stream.Data, put func(vals.Value) error) error {
	if put == nil {
		put = func(v vals.Value) error {
			_, err := io.WriteString(fm.ports.stdout, vals.ToString(v)+"\n")
			return err
		}
	}
	emit := func(v vals.Value) error {
		if e, ok := v.(vals.Error); ok {
			return fm.errorp(e, e.Err)
		}
		return put(v)
	}
	switch out := out.(type) {
	case nil, stream.Empty:
		return nil
	case stream.Single:
		if vals.IsNothing(out.Value) {
			return nil
		}
		return emit(out.Value)
	case *stream.Values:
		defer out.Close()
		for {
			v, ok := out.Next()
			if !ok {
				return out.Err()
			}
			if err := emit(v); err != nil {
				return err
			}
		}
	case *stream.Bytes:
		r := out.Reader()
		defer r.Close()
		_, err := io.Copy(fm.ports.stdout, r)
		return err
	}
	return nil
}
