package testutil

import (
	"os"
	"path/filepath"

	"github.com/junhg0211/lintre/pkg/env"
	"github.com/junhg0211/lintre/pkg/must"
)

// TempDir creates a temporary directory for testing that will be removed
// after the test finishes. It is different from testing.TB.TempDir in that it
// resolves symlinks in the path of the directory.
func TempDir(c Cleanuper) string {
	dir := must.OK1(os.MkdirTemp("", "lintretest"))
	dir = must.OK1(filepath.EvalSymlinks(dir))
	c.Cleanup(func() {
		err := os.RemoveAll(dir)
		if err != nil {
			println("failed to remove temp dir:", err.Error())
		}
	})
	return dir
}

// InTempDir is like TempDir, but also changes into the directory, and changes
// back to the original directory when the test finishes. It returns the path
// of the temporary directory.
func InTempDir(c Cleanuper) string {
	dir := TempDir(c)
	Chdir(c, dir)
	return dir
}

// Chdir changes into a directory, and restores the original working directory
// when a test finishes. It returns the directory for easier chaining.
func Chdir(c Cleanuper, dir string) string {
	oldWd := must.OK1(os.Getwd())
	must.Chdir(dir)
	c.Cleanup(func() { must.Chdir(oldWd) })
	return dir
}

// InTempHome is like InTempDir, but it also points the XDG base directories
// into the temporary directory, so that tests never read or write the real
// configuration and state of the user.
func InTempHome(c Cleanuper) string {
	dir := InTempDir(c)
	Setenv(c, env.HOME, dir)
	Setenv(c, env.XDG_CONFIG_HOME, filepath.Join(dir, "config"))
	Setenv(c, env.XDG_STATE_HOME, filepath.Join(dir, "state"))
	return dir
}
