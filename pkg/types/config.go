package types

import "errors"

// Config selects the store backend and engine behaviour for a context.
type Config struct {
	Backend          string `json:"backend" yaml:"backend" mapstructure:"backend"`
	StrictReferences bool   `json:"strict_references" yaml:"strict_references" mapstructure:"strict_references"`
	LogLevel         string `json:"log_level,omitempty" yaml:"log_level,omitempty" mapstructure:"log_level"`
}

// Supported backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendMemory: true,
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return nil
}
