//go:build unix

package eval

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"

	"src.tide.sh/pkg/eval/errs"
)

// Converts the state of an exited process to an error. Processes killed by
// SIGPIPE give no error when ignoreSIGPIPE is true.
func exitStatusError(name string, state *os.ProcessState, ignoreSIGPIPE bool) error {
	ws, ok := state.Sys().(syscall.WaitStatus)
	if !ok {
		return errs.ExternalCommandFailed{Cmd: name, Code: state.ExitCode()}
	}
	switch {
	case ws.Exited():
		if ws.ExitStatus() == 0 {
			return nil
		}
		return errs.ExternalCommandFailed{Cmd: name, Code: ws.ExitStatus()}
	case ws.Signaled():
		sig := ws.Signal()
		if ignoreSIGPIPE && sig == unix.SIGPIPE {
			return nil
		}
		return errs.ExternalCommandFailed{Cmd: name, Code: 128 + int(sig), Signal: unix.SignalName(sig)}
	}
	return errs.ExternalCommandFailed{Cmd: name, Code: state.ExitCode()}
}

func terminate(p *os.Process) error {
	return unix.Kill(p.Pid, unix.SIGTERM)
}
