package pantry

import (
	"fmt"

	"github.com/mesh-intelligence/pantry/internal/jsonl"
	"github.com/mesh-intelligence/pantry/internal/sqlite"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// NewBackend creates an unattached backend by name (see types.BackendNames).
// Call Attach with a Config to initialize it.
//
// Example:
//
//	backend, err := pantry.NewBackend(types.BackendJSONL)
//	if err != nil { ... }
//	err = backend.Attach(types.Config{
//	    Backend: types.BackendJSONL,
//	    DataDir: ".pantry-db",
//	})
//	defer backend.Detach()
func NewBackend(name string) (types.Backend, error) {
	switch name {
	case types.BackendJSONL:
		return jsonl.NewBackend(), nil
	case types.BackendSQLite:
		return sqlite.NewBackend(), nil
	case "":
		return nil, types.ErrBackendEmpty
	}
	return nil, fmt.Errorf("%q: %w", name, types.ErrBackendUnknown)
}

// Open creates the backend named by cfg.Backend and attaches it.
func Open(cfg types.Config) (types.Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b, err := NewBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}
	if err := b.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach %s backend: %w", cfg.Backend, err)
	}
	return b, nil
}
