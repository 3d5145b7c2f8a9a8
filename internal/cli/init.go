package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/menagerie/internal/paths"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration directory",
		Long:  "Create the configuration directory with a default config.yaml and an empty scenarios directory.",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolving config dir: %w", err))
	}

	wrote, err := ensureDefaultConfigFile(configDir)
	if err != nil {
		return sysError(err)
	}
	if err := os.MkdirAll(filepath.Join(configDir, paths.ScenariosDirName), 0o755); err != nil {
		return sysError(fmt.Errorf("create scenarios directory: %w", err))
	}

	if wrote {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", filepath.Join(configDir, configFileExt))
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Keeping existing %s\n", filepath.Join(configDir, configFileExt))
	}
	return nil
}
