package eval

import (
	"os"
	"path/filepath"

	"src.tide.sh/pkg/eval/errs"
)

// Pwd returns the working directory of the session.
func (ev *Evaler) Pwd() string {
	ev.mu.RLock()
	defer ev.mu.RUnlock()
	return ev.cwd
}

// Chdir changes the working directory of the session. Relative paths are
// resolved against the current working directory. The process's own working
// directory is not changed; external commands are started in the session's.
func (ev *Evaler) Chdir(path string) error {
	path = ev.ResolvePath(path)
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errs.BadValue{What: "directory", Valid: "a directory", Actual: path}
	}
	ev.mu.Lock()
	ev.cwd = path
	hooks := ev.afterChdir
	ev.mu.Unlock()

	logger.Println("chdir", path)
	for _, hook := range hooks {
		hook(path)
	}
	return nil
}

// ResolvePath makes path absolute against the session's working directory.
func (ev *Evaler) ResolvePath(path string) string {
	if path == "~" || len(path) > 1 && path[:2] == "~/" {
		if home, ok := ev.Getenv("HOME"); ok {
			path = home + path[1:]
		}
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(ev.Pwd(), path)
	}
	return filepath.Clean(path)
}

// AddAfterChdir adds a function to run after changing directory.
func (ev *Evaler) AddAfterChdir(f func(string)) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	ev.afterChdir = append(ev.afterChdir, f)
}
