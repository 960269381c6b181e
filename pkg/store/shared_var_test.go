package store_test

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"src.tide.sh/pkg/store"
	"src.tide.sh/pkg/testutil"
)

func TestSharedVar(t *testing.T) {
	st := store.MustTempStore(t)

	const (
		varname1 = "foo"
		value1   = "lorem ipsum"
		value2   = "o mores, o tempora"
	)

	if _, err := st.SharedVar(varname1); err != store.ErrNoSharedVar {
		t.Errorf("SharedVar -> error %v, want %v", err, store.ErrNoSharedVar)
	}
	if err := st.SetSharedVar(varname1, value1); err != nil {
		t.Errorf("SetSharedVar -> error %v, want nil", err)
	}
	if v, err := st.SharedVar(varname1); v != value1 || err != nil {
		t.Errorf("SharedVar -> (%q, %v), want (%q, nil)", v, err, value1)
	}
	if err := st.SetSharedVar(varname1, value2); err != nil {
		t.Errorf("SetSharedVar -> error %v, want nil", err)
	}
	if v, err := st.SharedVar(varname1); v != value2 || err != nil {
		t.Errorf("SharedVar -> (%q, %v), want (%q, nil)", v, err, value2)
	}
	if err := st.DelSharedVar(varname1); err != nil {
		t.Errorf("DelSharedVar -> error %v, want nil", err)
	}
	if _, err := st.SharedVar(varname1); err != store.ErrNoSharedVar {
		t.Errorf("SharedVar -> error %v, want %v", err, store.ErrNoSharedVar)
	}
	if err := st.DelSharedVar("nonexistent"); err != nil {
		t.Errorf("DelSharedVar of missing variable -> error %v, want nil", err)
	}
}

func TestSharedVarNames(t *testing.T) {
	st := store.MustTempStore(t)
	for _, name := range []string{"b", "a", "c"} {
		if err := st.SetSharedVar(name, "x"); err != nil {
			t.Fatal(err)
		}
	}
	names, err := st.SharedVarNames()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, names); diff != "" {
		t.Errorf("SharedVarNames (-want +got):\n%s", diff)
	}
}

func TestSharedVar_PersistsAcrossStores(t *testing.T) {
	path := filepath.Join(testutil.TempDir(t), "sub", "db.bolt")
	st, err := store.NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.SetSharedVar("k", "v"); err != nil {
		t.Fatal(err)
	}
	st.Close()

	st, err = store.NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if v, err := st.SharedVar("k"); v != "v" || err != nil {
		t.Errorf("SharedVar after reopen -> (%q, %v), want (\"v\", nil)", v, err)
	}
}

func TestDefaultPath(t *testing.T) {
	testutil.Setenv(t, store.EnvDB, "/tmp/x.bolt")
	if p, err := store.DefaultPath(); p != "/tmp/x.bolt" || err != nil {
		t.Errorf("DefaultPath -> (%q, %v), want (\"/tmp/x.bolt\", nil)", p, err)
	}

	testutil.Unsetenv(t, store.EnvDB)
	testutil.Setenv(t, "XDG_DATA_HOME", "/data")
	if p, err := store.DefaultPath(); p != "/data/tide/db.bolt" || err != nil {
		t.Errorf("DefaultPath -> (%q, %v), want (\"/data/tide/db.bolt\", nil)", p, err)
	}
}
