package store

import (
	"fmt"
	"path/filepath"

	"src.tide.sh/pkg/testutil"
)

// MustTempStore returns a Store backed by a file in a temporary directory. The
// Store is closed and the directory removed when the test finishes.
func MustTempStore(c testutil.Cleanuper) DBStore {
	dir := testutil.TempDir(c)
	st, err := NewStore(filepath.Join(dir, "db.bolt"))
	if err != nil {
		panic(fmt.Sprintf("failed to create store: %v", err))
	}
	c.Cleanup(func() {
		if err := st.Close(); err != nil {
			panic(fmt.Sprintf("failed to close store: %v", err))
		}
	})
	return st
}
