package store

import (
	"path/filepath"

	"github.com/junhg0211/lintre/pkg/must"
	"github.com/junhg0211/lintre/pkg/testutil"
)

// MustTempStore returns a Store backed by a temporary file, which is closed
// and removed when the test finishes.
func MustTempStore(c testutil.Cleanuper) DBStore {
	dir := testutil.TempDir(c)
	st := must.OK1(NewStore(filepath.Join(dir, "db.bolt")))
	// Cleanup functions run last-in first-out, so the store is closed before
	// the directory is removed.
	c.Cleanup(func() { st.Close() })
	return st
}
