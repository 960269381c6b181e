package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

type cleanuper struct{ fns []func() }

func (c *cleanuper) Cleanup(fn func()) { c.fns = append(c.fns, fn) }

func (c *cleanuper) runCleanups() {
	for i := len(c.fns) - 1; i >= 0; i-- {
		c.fns[i]()
	}
}

func TestTempDir_RemovedOnCleanup(t *testing.T) {
	c := &cleanuper{}
	dir := TempDir(c)
	MustWriteFile(filepath.Join(dir, "a"), "content")
	c.runCleanups()
	if _, err := os.Stat(dir); err == nil {
		t.Errorf("dir %q still exists after cleanup", dir)
	}
}

func TestSetenv_Restores(t *testing.T) {
	const name = "TIDE_TESTUTIL_VAR"
	os.Setenv(name, "old")
	defer os.Unsetenv(name)

	c := &cleanuper{}
	Setenv(c, name, "new")
	if os.Getenv(name) != "new" {
		t.Errorf("Setenv didn't set")
	}
	c.runCleanups()
	if os.Getenv(name) != "old" {
		t.Errorf("Setenv didn't restore")
	}
}

func TestFakeCommands(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts need a unix shell")
	}
	FakeCommands(t, map[string]string{"say-hi": "echo hi"})
	out, err := exec.Command("say-hi").Output()
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(out)) != "hi" {
		t.Errorf("got %q", out)
	}
}
