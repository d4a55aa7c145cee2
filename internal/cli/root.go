// Package cli implements the calccell command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/calccell/internal/paths"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	logLevel  string
	output    string
}

// app is the state shared by subcommands once PersistentPreRunE has run.
type app struct {
	flags     rootFlags
	configDir paths.ConfigDir
	settings  settings
	logger    hclog.Logger
}

// exitError carries the process exit code for an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitError{code: exitSysError, err: err} }

// exitCode maps an error returned by the root command to a process exit code.
// Errors without a code are usage errors from cobra.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// NewRootCmd creates the top-level "calccell" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "calccell",
		Short: "Evaluate graphs of typed, change-propagating cells",
		Long: `calccell builds named cells with typed columns from a sheet definition,
links their columns so writes propagate, replays the sheet's steps, and prints
every cell as plain data.`,
		Version: Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// version needs no config.
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $CALCCELL_CONFIG_DIR or the platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "", "log level: trace, debug, info, warn, error, off")
	root.PersistentFlags().StringVarP(&a.flags.output, "output", "o", "", "output format: json or yaml")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newCheckCmd(a))
	root.AddCommand(newRunCmd(a))

	return root
}

// setup resolves the config directory, loads config.yaml and builds the
// logger. Flags override config values.
func (a *app) setup(cmd *cobra.Command) error {
	dir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(err)
	}
	a.configDir = dir

	v, err := loadConfig(dir)
	if err != nil {
		return sysError(err)
	}
	if err := v.BindPFlag(cfgKeyLogLevel, cmd.Flags().Lookup("log-level")); err != nil {
		return sysError(err)
	}
	if err := v.BindPFlag(cfgKeyOutput, cmd.Flags().Lookup("output")); err != nil {
		return sysError(err)
	}

	s, err := readSettings(v)
	if err != nil {
		return userError(err)
	}
	a.settings = s

	a.logger = newLogger(s.LogLevel, cmd.ErrOrStderr())
	a.logger.Debug("config loaded", "config_dir", dir.Dir, "source", dir.Source, "file", v.ConfigFileUsed())
	return nil
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI with the given arguments and returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(stderr, "calccell:", err)
	}
	return exitCode(err)
}
