package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/calccell/internal/paths"
)

// Config keys, also read from CALCCELL_<KEY> environment variables.
const (
	cfgKeyLogLevel = "log_level"
	cfgKeyJournal  = "journal"
	cfgKeyOutput   = "output"

	envPrefix = "CALCCELL"
)

// ErrInvalidConfig is returned for config values calccell cannot use.
var ErrInvalidConfig = errors.New("invalid configuration")

// defaultConfigYAML is written to config.yaml when the directory has none.
const defaultConfigYAML = `# calccell configuration

# Log level: trace, debug, info, warn, error, off
log_level: warn

# Record every write and print the journal after "run" results
journal: false

# Output format for results: json or yaml
output: json
`

// settings are the config values after validation.
type settings struct {
	LogLevel hclog.Level
	Journal  bool
	Output   string
}

// loadConfig makes sure dir exists and holds a config.yaml, then reads it
// with environment overrides layered on top.
func loadConfig(dir paths.ConfigDir) (*viper.Viper, error) {
	if err := os.MkdirAll(dir.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating config dir: %w", err)
	}
	if err := writeDefaultConfig(dir.ConfigFile()); err != nil {
		return nil, fmt.Errorf("writing default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyLogLevel, "warn")
	v.SetDefault(cfgKeyJournal, false)
	v.SetDefault(cfgKeyOutput, outputJSON)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetConfigFile(dir.ConfigFile())

	// The file may vanish between writing and reading; defaults still apply.
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", dir.ConfigFile(), err)
	}
	return v, nil
}

// writeDefaultConfig creates path with defaultConfigYAML unless it exists.
func writeDefaultConfig(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := f.WriteString(defaultConfigYAML); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// readSettings validates the merged config values.
func readSettings(v *viper.Viper) (settings, error) {
	s := settings{
		Journal: v.GetBool(cfgKeyJournal),
		Output:  v.GetString(cfgKeyOutput),
	}
	if !isValidOutput(s.Output) {
		return settings{}, fmt.Errorf("%w: unknown output format %q (valid: json, yaml)", ErrInvalidConfig, s.Output)
	}
	level := v.GetString(cfgKeyLogLevel)
	s.LogLevel = hclog.LevelFromString(level)
	if s.LogLevel == hclog.NoLevel {
		return settings{}, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, level)
	}
	return s, nil
}
