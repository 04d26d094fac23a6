package types

import (
	"context"
	"encoding/json"
	"errors"
)

// Backend persists whole collections. Callers attach to a backend, load and
// save collections by name, and detach when done. Records cross the boundary
// as one JSON object each, in collection order.
type Backend interface {
	// Attach connects the backend to the storage described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, Load and Save return ErrDetached.
	Detach() error

	// Load returns every stored record of the collection in order. A
	// collection that was never saved loads as empty.
	Load(collection string) ([]json.RawMessage, error)

	// Save replaces the stored collection with records. The write is
	// atomic: a failed Save leaves the previous contents in place.
	Save(collection string, records []json.RawMessage) error
}

// Querier is implemented by backends that can evaluate equality filters
// natively. Match returns the IDs of matching records in collection order.
type Querier interface {
	Match(collection string, filter map[string]any) ([]string, error)
}

// Watcher is implemented by backends that can report external changes to a
// collection. Watch blocks until ctx is done, calling fn after each change.
type Watcher interface {
	Watch(ctx context.Context, collection string, fn func()) error
}

// Backend lifecycle errors.
var (
	ErrDetached        = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
	ErrTableNotFound   = errors.New("collection not found")
	ErrNotSupported    = errors.New("operation not supported by backend")
)
