// Package paths locates the calccell configuration directory and the
// config.yaml inside it.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// EnvConfigDir overrides the configuration directory.
	EnvConfigDir = "CALCCELL_CONFIG_DIR"

	// ConfigFileName is the config file read from the configuration directory.
	ConfigFileName = "config.yaml"

	appDirName = "calccell"
)

// Source records which setting chose the configuration directory.
type Source string

// Configuration directory sources, highest precedence first.
const (
	SourceFlag     Source = "flag"
	SourceEnv      Source = "env"
	SourcePlatform Source = "platform"
)

// ConfigDir is a resolved configuration directory.
type ConfigDir struct {
	Dir    string // Absolute path.
	Source Source
}

// ConfigFile returns the path of config.yaml in the directory.
func (d ConfigDir) ConfigFile() string {
	return filepath.Join(d.Dir, ConfigFileName)
}

// DefaultConfigDir returns calccell's directory under the user config root:
// $XDG_CONFIG_HOME or ~/.config on Linux, ~/Library/Application Support on
// macOS, %AppData% on Windows.
func DefaultConfigDir() (string, error) {
	root, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config dir: %w", err)
	}
	return filepath.Join(root, appDirName), nil
}

// ResolveConfigDir picks the configuration directory: the flag value when
// set, then $CALCCELL_CONFIG_DIR, then DefaultConfigDir. Relative paths are
// made absolute against the working directory.
func ResolveConfigDir(flag string) (ConfigDir, error) {
	dir, src := flag, SourceFlag
	if dir == "" {
		dir, src = os.Getenv(EnvConfigDir), SourceEnv
	}
	if dir == "" {
		def, err := DefaultConfigDir()
		if err != nil {
			return ConfigDir{}, err
		}
		return ConfigDir{Dir: def, Source: SourcePlatform}, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return ConfigDir{}, fmt.Errorf("resolving %s config dir %q: %w", src, dir, err)
	}
	return ConfigDir{Dir: abs, Source: src}, nil
}
