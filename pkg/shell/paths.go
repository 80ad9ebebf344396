package shell

import (
	"os"
	"path/filepath"

	"github.com/junhg0211/lintre/pkg/env"
)

// ConfigPath returns the path of the default config file.
func ConfigPath() (string, error) {
	return xdgPath(env.XDG_CONFIG_HOME, defaultConfigHome, "config.yaml")
}

// DBPath returns the path of the default history database.
func DBPath() (string, error) {
	return xdgPath(env.XDG_STATE_HOME, defaultStateHome, "db.bolt")
}

// Returns $envName/lintre/name, using defaultHome for $envName if it is
// empty.
func xdgPath(envName string, defaultHome func() (string, error), name string) (string, error) {
	home := os.Getenv(envName)
	if home == "" {
		var err error
		home, err = defaultHome()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(home, "lintre", name), nil
}
