package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/menagerie/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
	envPrefix      = "MENAGERIE"

	cfgKeyBackend  = "backend"
	cfgKeyStrict   = "strict_references"
	cfgKeyLogLevel = "log_level"

	defaultLogLevel = "info"
)

// flagKeys maps command flags onto config keys. A flag only overrides the
// config file when it is set on the command line.
var flagKeys = map[string]string{
	"backend":   cfgKeyBackend,
	"strict":    cfgKeyStrict,
	"log-level": cfgKeyLogLevel,
}

// defaultConfigYAML is the content written to config.yaml by init.
const defaultConfigYAML = `# Menagerie CLI configuration

# Store backend: memory or sqlite
backend: memory

# Reject animal inserts whose zoo does not exist
strict_references: false

# debug, info, warn or error
log_level: info
`

// loadConfig resolves the Config from, in decreasing precedence, set flags,
// MENAGERIE_* environment variables, config.yaml in configDir, and defaults.
// A missing config.yaml is not an error.
func loadConfig(configDir string, fs *pflag.FlagSet) (types.Config, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendMemory)
	v.SetDefault(cfgKeyStrict, false)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return types.Config{}, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// ensureDefaultConfigFile creates configDir and a default config.yaml unless
// the file already exists. It reports whether a file was written.
func ensureDefaultConfigFile(configDir string) (bool, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}

	path := filepath.Join(configDir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0o644); err != nil {
		return false, fmt.Errorf("write config file: %w", err)
	}
	return true, nil
}
