// Package cli implements the menagerie command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/menagerie/internal/paths"
	"github.com/mesh-intelligence/menagerie/pkg/types"
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
	verbose   bool
}

var flags rootFlags

// NewRootCmd creates the top-level "menagerie" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "menagerie",
		Short: "Resolve zoo and animal queries against an in-process store",
		Long: "Menagerie keeps zoos and their animals in an isolated context and answers\n" +
			"selection queries over them. Scenarios script mutations and queries in YAML.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newRunCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	os.Exit(exitCode(root.Execute()))
}

// exitError carries the process exit code of a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitError{code: exitSysError, err: err} }

// exitCode maps a command error onto an exit code. Errors without a code,
// such as flag parse failures, are user errors.
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

// session is the resolved configuration shared by commands that open a
// context.
type session struct {
	configDir string
	cfg       types.Config
	logger    *zap.Logger
}

func newSession(cmd *cobra.Command) (*session, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return nil, sysError(fmt.Errorf("resolving config dir: %w", err))
	}
	cfg, err := loadConfig(configDir, cmd.Flags())
	if err != nil {
		return nil, userError(err)
	}
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, flags.verbose)
	if err != nil {
		return nil, userError(err)
	}
	return &session{configDir: configDir, cfg: cfg, logger: logger}, nil
}
