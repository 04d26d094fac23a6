// Package transfer copies collections between backends so a data directory
// can move from one persistence format to another.
package transfer

import (
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/pantry/internal/logger"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Count is the outcome for one collection.
type Count struct {
	Collection string `json:"collection"`
	Copied     int    `json:"copied"`
	Skipped    int    `json:"skipped"`
}

// Copy reads every collection from src and replaces the same collection in
// dst. Records that do not decode, lack an ID, or repeat an ID are skipped;
// the rest keep their order. Both backends must be attached.
//
// Collections are written one at a time. If a save fails, the collections
// before it have already been replaced in dst.
func Copy(src, dst types.Backend) ([]Count, error) {
	counts := make([]Count, 0, len(types.CollectionNames))
	for _, name := range types.CollectionNames {
		schema, err := types.Lookup(name)
		if err != nil {
			return counts, err
		}

		raw, err := src.Load(name)
		if err != nil {
			return counts, fmt.Errorf("read %s: %w", name, err)
		}

		kept, skipped := clean(schema, raw)
		if err := dst.Save(name, kept); err != nil {
			return counts, fmt.Errorf("write %s: %w", name, err)
		}

		logger.Info("collection copied", "collection", name, "copied", len(kept), "skipped", skipped)
		counts = append(counts, Count{Collection: name, Copied: len(kept), Skipped: skipped})
	}
	return counts, nil
}

// clean drops records the store would refuse to load.
func clean(schema types.Schema, raw []json.RawMessage) ([]json.RawMessage, int) {
	kept := make([]json.RawMessage, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, data := range raw {
		rec := schema.New()
		if err := json.Unmarshal(data, rec); err != nil {
			logger.Warn("skipping undecodable record", "collection", schema.Name, "index", i, "err", err)
			continue
		}
		id := rec.RecordID()
		if id == "" || seen[id] {
			logger.Warn("skipping record with missing or repeated id", "collection", schema.Name, "index", i)
			continue
		}
		seen[id] = true
		kept = append(kept, data)
	}
	return kept, len(raw) - len(kept)
}
