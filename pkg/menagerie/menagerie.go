// Package menagerie opens contexts: one isolated store of zoos and animals
// with its own key counter.
package menagerie

import (
	"fmt"

	"github.com/mesh-intelligence/menagerie/internal/memory"
	"github.com/mesh-intelligence/menagerie/internal/sqlite"
	"github.com/mesh-intelligence/menagerie/pkg/types"
)

// Version is the current menagerie release.
const Version = "0.3.0"

// Open validates cfg and returns a fresh, empty store for the configured
// backend. The caller owns the store and must Close it.
//
// Example:
//
//	store, err := menagerie.Open(types.Config{Backend: types.BackendSQLite})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
func Open(cfg types.Config) (types.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case types.BackendMemory:
		return memory.NewStore(), nil
	case types.BackendSQLite:
		b, err := sqlite.Open()
		if err != nil {
			return nil, fmt.Errorf("opening sqlite context: %w", err)
		}
		return b, nil
	}
	return nil, types.ErrBackendUnknown
}
