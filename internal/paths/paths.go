// Package paths resolves the configuration directory and scenario file
// locations.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user configuration directory.
const AppName = "menagerie"

// ScenariosDirName is the subdirectory of the configuration directory
// searched for scenario files given by relative path.
const ScenariosDirName = "scenarios"

// EnvConfigDir overrides the configuration directory.
const EnvConfigDir = "MENAGERIE_CONFIG_DIR"

// ErrScenarioNotFound is returned when no candidate scenario path exists.
var ErrScenarioNotFound = errors.New("scenario file not found")

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/menagerie (fallback ~/.config/menagerie)
// macOS:   ~/Library/Application Support/menagerie
// Windows: %APPDATA%/menagerie
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, AppName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", AppName), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > MENAGERIE_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveScenario returns the absolute path of a scenario file. An absolute
// arg is returned unchanged if it exists. A relative arg is tried against the
// working directory first and then against configDir/scenarios.
func ResolveScenario(arg, configDir string) (string, error) {
	if arg == "" {
		return "", fmt.Errorf("%w: empty path", ErrScenarioNotFound)
	}

	candidates := []string{arg}
	if !filepath.IsAbs(arg) && configDir != "" {
		candidates = append(candidates, filepath.Join(configDir, ScenariosDirName, arg))
	}
	for _, c := range candidates {
		info, err := os.Stat(c)
		if err != nil || info.IsDir() {
			continue
		}
		return filepath.Abs(c)
	}
	return "", fmt.Errorf("%w: %s", ErrScenarioNotFound, arg)
}
