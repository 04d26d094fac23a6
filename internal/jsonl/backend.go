package jsonl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mesh-intelligence/pantry/internal/logger"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Backend implements types.Backend with one JSONL file per collection.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	dataDir  string
}

// NewBackend creates a new JSONL backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach creates DataDir if needed and an empty file for every known
// collection that does not have one yet.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	for _, name := range types.CollectionNames {
		path := filepath.Join(dataDir, name+FileExt)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
	}

	b.dataDir = dataDir
	b.attached = true
	logger.Debug("jsonl backend attached", "data_dir", dataDir)
	return nil
}

// Detach marks the backend detached. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attached = false
	return nil
}

// Path returns the file that stores the collection.
func (b *Backend) Path(collection string) string {
	return filepath.Join(b.dataDir, collection+FileExt)
}

// Load reads the collection file. Malformed lines are skipped.
func (b *Backend) Load(collection string) ([]json.RawMessage, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}
	if _, err := types.Lookup(collection); err != nil {
		return nil, err
	}
	return readFile(b.Path(collection))
}

// Save rewrites the collection file with records, one per line.
func (b *Backend) Save(collection string, records []json.RawMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrDetached
	}
	if _, err := types.Lookup(collection); err != nil {
		return err
	}

	lines := make([]json.RawMessage, len(records))
	for i, rec := range records {
		var buf bytes.Buffer
		if err := json.Compact(&buf, rec); err != nil {
			return fmt.Errorf("record %d: %w", i, types.ErrInvalidData)
		}
		lines[i] = buf.Bytes()
	}

	if err := writeFile(b.Path(collection), lines); err != nil {
		return fmt.Errorf("save %s: %w", collection, err)
	}
	logger.Debug("collection saved", "collection", collection, "records", len(records))
	return nil
}
