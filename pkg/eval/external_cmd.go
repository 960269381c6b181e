package eval

import (
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"

	"src.tide.sh/pkg/ast"
	"src.tide.sh/pkg/diag"
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/stream"
	"src.tide.sh/pkg/eval/vals"
)

// A running external command.
type process struct {
	cmd  *exec.Cmd
	name string
	span diag.Ranging
	// Whether the process is the last stage of its pipeline. Earlier stages
	// killed by SIGPIPE were stopped by a reader that went away, which is not
	// an error.
	last bool

	done        chan struct{}
	interrupted atomic.Bool
}

// Starts an external command for a pipeline stage. The returned data is the
// stdout of the command, or Empty when direct is true and stdout goes to the
// session.
func (pl *pipeline) runExternal(fm *Frame, s *ast.ExternalCall, input stream.Data, first, direct bool) (stream.Data, error) {
	head, err := fm.evalExpr(s.Head)
	if err != nil {
		return nil, err
	}
	name := vals.ToString(head)
	args := make([]string, 0, len(s.Args))
	for _, argExpr := range s.Args {
		v, err := fm.evalExpr(argExpr)
		if err != nil {
			return nil, err
		}
		args = append(args, vals.ToString(v))
	}

	path, err := fm.lookPath(name)
	if err != nil {
		pl.discard(input)
		return nil, fm.errorp(s, errs.ExternalSpawnFailed{Cmd: name, Err: err})
	}
	cmd := exec.Command(path, args...)
	cmd.Args[0] = name
	cmd.Env = fm.EnvSnapshot()
	cmd.Dir = fm.Pwd()

	var afterStart []func()
	switch in := input.(type) {
	case *stream.Bytes:
		r := in.Reader()
		if f, ok := r.(*os.File); ok {
			// The child gets its own copy of the descriptor.
			cmd.Stdin = f
			afterStart = append(afterStart, func() { f.Close() })
		} else {
			cmd.Stdin = r
			pl.after = append(pl.after, func() { r.Close() })
		}
	case *stream.Values:
		// The values are pulled by the goroutine os/exec starts to copy
		// stdin. The pipeline closes value streams only after cmd.Wait,
		// which joins that goroutine, so nothing else pulls them meanwhile.
		cmd.Stdin = newValuesReader(in)
		pl.after = append(pl.after, in.Close)
	case stream.Single:
		switch v := in.Value.(type) {
		case nil, vals.Nothing:
		case vals.String:
			cmd.Stdin = strings.NewReader(v.Val)
		case vals.Binary:
			cmd.Stdin = strings.NewReader(string(v.Val))
		default:
			values := fm.Values(in)
			cmd.Stdin = newValuesReader(values)
			pl.after = append(pl.after, values.Close)
		}
	default:
		if first && isTerminal(fm.ports.stdin) {
			cmd.Stdin = fm.ports.stdin
		}
	}

	var out stream.Data = stream.Empty{}
	if direct {
		cmd.Stdout = fm.ports.stdout
	} else {
		pr, pw, err := os.Pipe()
		if err != nil {
			return nil, fm.errorp(s, err)
		}
		cmd.Stdout = pw
		afterStart = append(afterStart, func() { pw.Close() })
		bytes := stream.NewBytes(pr)
		pl.closers = append(pl.closers, bytes.Close)
		out = bytes
	}
	if s.StderrToStdout {
		cmd.Stderr = cmd.Stdout
	} else {
		cmd.Stderr = fm.ports.stderr
	}

	logger.Println("starting", path, args)
	err = cmd.Start()
	for _, f := range afterStart {
		f()
	}
	if err != nil {
		if b, ok := out.(*stream.Bytes); ok {
			b.Close()
		}
		return nil, fm.errorp(s, errs.ExternalSpawnFailed{Cmd: name, Err: err})
	}

	p := &process{cmd: cmd, name: name, span: s.Range(), last: direct || pl.last,
		done: make(chan struct{})}
	go p.watchInterrupts(fm.intr)
	pl.procs = append(pl.procs, p)
	return out, nil
}

// Terminates the process when the evaluation is interrupted.
func (p *process) watchInterrupts(intr <-chan struct{}) {
	if intr == nil {
		return
	}
	select {
	case <-intr:
		p.interrupted.Store(true)
		if err := terminate(p.cmd.Process); err != nil {
			logger.Println("cannot terminate", p.name, err)
		}
	case <-p.done:
	}
}

// Waits for the process to exit, returning an error for a failed exit.
func (p *process) wait() error {
	err := p.cmd.Wait()
	close(p.done)
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if p.interrupted.Load() {
			return ErrInterrupted
		}
		return exitStatusError(p.name, exitErr.ProcessState, !p.last)
	}
	return err
}

// Finds the program to run for an external call. Names containing a slash
// are paths relative to the working directory; other names are searched in
// $env.PATH.
func (fm *Frame) lookPath(name string) (string, error) {
	if name == "" {
		return "", exec.ErrNotFound
	}
	if strings.ContainsRune(name, '/') {
		path := fm.ResolvePath(name)
		if err := checkExecutable(path); err != nil {
			return "", err
		}
		return path, nil
	}
	pathEnv, _ := fm.Getenv("PATH")
	for _, dir := range filepath.SplitList(pathEnv) {
		if dir == "" {
			dir = "."
		}
		path := filepath.Join(fm.ResolvePath(dir), name)
		if checkExecutable(path) == nil {
			return path, nil
		}
	}
	return "", exec.ErrNotFound
}

func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() || info.Mode()&0o111 == 0 {
		return fs.ErrPermission
	}
	return nil
}
