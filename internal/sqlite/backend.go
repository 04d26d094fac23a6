// Package sqlite implements the structured-store backend on SQLite. Records
// live in a single table keyed by collection and ID, and equality filters
// are evaluated in SQL with json_extract.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/pantry/internal/logger"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// DBFile is the database file name inside DataDir.
const DBFile = "pantry.db"

// Backend implements types.Backend and types.Querier using SQLite.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach opens (or creates) the database in DataDir and applies the schema.
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

	db, err := sql.Open("sqlite", filepath.Join(dataDir, DBFile))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	// One writer at a time; SQLite serializes anyway.
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.config = config
	b.attached = true
	logger.Debug("sqlite backend attached", "data_dir", dataDir)
	return nil
}

func applySchema(db *sql.DB) error {
	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	var version int
	err := db.QueryRow("SELECT version FROM schema_version").Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case version > schemaVersion:
		return fmt.Errorf("database schema version %d is newer than supported %d", version, schemaVersion)
	}
	return nil
}

// Detach closes the database. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	return nil
}

// Load returns the collection's documents ordered by position.
func (b *Backend) Load(collection string) ([]json.RawMessage, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}
	if _, err := types.Lookup(collection); err != nil {
		return nil, err
	}

	rows, err := b.db.Query(
		"SELECT data FROM records WHERE collection = ? ORDER BY position", collection)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, json.RawMessage(data))
	}
	return records, rows.Err()
}

// Save replaces the collection inside one transaction. Each record must
// carry a non-empty, unique "id".
func (b *Backend) Save(collection string, records []json.RawMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrDetached
	}
	if _, err := types.Lookup(collection); err != nil {
		return err
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM records WHERE collection = ?", collection); err != nil {
		return fmt.Errorf("clearing %s: %w", collection, err)
	}

	stmt, err := tx.Prepare(
		"INSERT INTO records (collection, record_id, position, data) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	seen := make(map[string]bool, len(records))
	for i, rec := range records {
		var head struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(rec, &head); err != nil {
			return fmt.Errorf("record %d: %w", i, types.ErrInvalidData)
		}
		if head.ID == "" {
			return fmt.Errorf("record %d: %w", i, types.ErrInvalidID)
		}
		if seen[head.ID] {
			return fmt.Errorf("record %q: %w", head.ID, types.ErrDuplicateID)
		}
		seen[head.ID] = true

		if _, err := stmt.Exec(collection, head.ID, i, string(rec)); err != nil {
			return fmt.Errorf("inserting %s: %w", head.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	logger.Debug("collection saved", "collection", collection, "records", len(records))
	return nil
}
