package eval

import (
	"sort"

	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/stream"
)

// Command is implemented by everything that can be called by name in a
// pipeline: built-in commands and commands defined with def.
//
// Run is only called with a call that bound successfully against the
// signature. It may ignore input, transform it, or drain it and output
// nothing. It returns errors instead of panicking on bad input.
type Command interface {
	Signature() *Signature
	Run(fm *Frame, call *Call, input stream.Data) (stream.Data, error)
}

// RunFunc is the type of the body of a built-in command.
type RunFunc func(fm *Frame, call *Call, input stream.Data) (stream.Data, error)

// CommandFunc makes a Command from a signature and a function.
func CommandFunc(sig *Signature, run RunFunc) Command {
	return &funcCommand{sig, run}
}

type funcCommand struct {
	sig *Signature
	run RunFunc
}

func (c *funcCommand) Signature() *Signature { return c.sig }

func (c *funcCommand) Run(fm *Frame, call *Call, input stream.Data) (stream.Data, error) {
	return c.run(fm, call, input)
}

// A registered command, with the signature frozen at registration.
type registered struct {
	Command
	sig *Signature
}

func (r registered) Signature() *Signature { return r.sig }

// DefineCommand registers a built-in command.
func (ev *Evaler) DefineCommand(sig *Signature, run RunFunc) {
	ev.AddCommand(CommandFunc(sig, run))
}

// AddCommand registers a command under the name in its signature, replacing
// any command with the same name. Code that calls the command by name sees
// the replacement from then on, including closures created earlier.
func (ev *Evaler) AddCommand(cmd Command) {
	sig := cmd.Signature().clone()
	logger.Println("registering command", sig.Name)
	ev.commands[sig.Name] = registered{cmd, sig}
}

// LookupCommand finds a command by name.
func (ev *Evaler) LookupCommand(name string) (Command, error) {
	if cmd, ok := ev.commands[name]; ok {
		return cmd, nil
	}
	return nil, errs.CommandNotFound{Name: name}
}

// CommandNames returns the names of all registered commands, sorted.
func (ev *Evaler) CommandNames() []string {
	names := make([]string, 0, len(ev.commands))
	for name := range ev.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
