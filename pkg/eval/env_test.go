package eval_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"src.tide.sh/pkg/eval"
	"src.tide.sh/pkg/eval/errs"
	"src.tide.sh/pkg/eval/vals"
	"src.tide.sh/pkg/testutil"
)

func TestEnv_SetGet(t *testing.T) {
	testutil.Setenv(t, "TIDE_FROM_OS", "os")
	ev := eval.NewEvaler()

	if v, ok := ev.Getenv("TIDE_FROM_OS"); !ok || v != "os" {
		t.Errorf("Getenv -> (%q, %v), want (\"os\", true)", v, ok)
	}
	if err := ev.Setenv("TIDE_X", "1"); err != nil {
		t.Fatal(err)
	}
	if os.Getenv("TIDE_X") != "" {
		t.Errorf("Setenv changed the environment of the process")
	}
	if err := ev.Setenv("A=B", "1"); err == nil {
		t.Errorf("Setenv with = in name succeeded")
	} else if _, ok := err.(errs.BadValue); !ok {
		t.Errorf("Setenv with bad name -> %T, want errs.BadValue", err)
	}
	ev.Unsetenv("TIDE_X")
	if _, ok := ev.Getenv("TIDE_X"); ok {
		t.Errorf("variable still set after Unsetenv")
	}
}

func TestEnvSnapshot(t *testing.T) {
	ev := eval.NewEvaler()
	ev.Setenv("TIDE_B", "2")
	ev.Setenv("TIDE_A", "1")
	snapshot := ev.EnvSnapshot()

	index := func(kv string) int {
		for i, s := range snapshot {
			if s == kv {
				return i
			}
		}
		return -1
	}
	a, b := index("TIDE_A=1"), index("TIDE_B=2")
	if a == -1 || b == -1 || a > b {
		t.Errorf("snapshot %v not sorted or missing variables", snapshot)
	}
	if index("PWD="+ev.Pwd()) == -1 {
		t.Errorf("snapshot %v lacks PWD", snapshot)
	}

	// Later changes don't affect an earlier snapshot.
	ev.Setenv("TIDE_A", "changed")
	if snapshot[a] != "TIDE_A=1" {
		t.Errorf("snapshot changed to %q", snapshot[a])
	}

	r := ev.EnvRecord()
	if v, ok := r.Get("TIDE_A"); !ok || !vals.Equal(v, vals.FromGo("changed")) {
		t.Errorf("EnvRecord has TIDE_A = %v, want \"changed\"", v)
	}
}

func TestChdir(t *testing.T) {
	dir := testutil.TempDir(t)
	testutil.MustWriteFile(filepath.Join(dir, "file"), "")
	os.Mkdir(filepath.Join(dir, "sub"), 0755)
	ev := eval.NewEvaler()

	var hooked []string
	ev.AddAfterChdir(func(path string) { hooked = append(hooked, path) })

	if err := ev.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	if err := ev.Chdir("sub"); err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "sub"); ev.Pwd() != want {
		t.Errorf("Pwd() -> %q, want %q", ev.Pwd(), want)
	}
	if v, _ := ev.Getenv("PWD"); v != ev.Pwd() {
		t.Errorf("$env.PWD is %q, want %q", v, ev.Pwd())
	}
	if len(hooked) != 2 {
		t.Errorf("after-chdir hooks ran %d times, want 2", len(hooked))
	}

	if _, ok := ev.Chdir(filepath.Join(dir, "file")).(errs.BadValue); !ok {
		t.Errorf("Chdir to a file should fail with BadValue")
	}
	if ev.Chdir(filepath.Join(dir, "nonexistent")) == nil {
		t.Errorf("Chdir to a nonexistent directory succeeded")
	}
	if err := ev.Setenv("PWD", dir); err != nil || ev.Pwd() != dir {
		t.Errorf("setting PWD -> %v, pwd %q; want nil, %q", err, ev.Pwd(), dir)
	}
}

func TestResolvePath(t *testing.T) {
	ev := eval.NewEvaler()
	ev.Setenv("HOME", "/home/u")
	ev.Chdir("/")

	for _, c := range []struct{ in, want string }{
		{"~", "/home/u"},
		{"~/x", "/home/u/x"},
		{"a/../b", "/b"},
		{"/abs", "/abs"},
		{"~x", "/~x"},
	} {
		if got := ev.ResolvePath(c.in); got != c.want {
			t.Errorf("ResolvePath(%q) -> %q, want %q", c.in, got, c.want)
		}
	}
	if !strings.HasPrefix(ev.Pwd(), "/") {
		t.Errorf("Pwd() is not absolute")
	}
}
