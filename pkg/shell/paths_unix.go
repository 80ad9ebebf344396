//go:build !windows

package shell

import (
	"os"
	"path/filepath"
)

func defaultConfigHome() (string, error) { return homePath(".config") }

func defaultStateHome() (string, error) { return homePath(".local", "state") }

func homePath(elems ...string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{home}, elems...)...), nil
}
