//go:build !unix

package eval

import (
	"os"

	"src.tide.sh/pkg/eval/errs"
)

func exitStatusError(name string, state *os.ProcessState, _ bool) error {
	if state.Success() {
		return nil
	}
	return errs.ExternalCommandFailed{Cmd: name, Code: state.ExitCode()}
}

func terminate(p *os.Process) error {
	return p.Kill()
}
