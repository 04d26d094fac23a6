// Package store holds the generic in-memory controller shared by every
// collection. A Store owns an ordered slice of records loaded once from a
// backend and re-saves the whole slice after each mutation.
package store

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/pantry/internal/logger"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// RecordPtr constrains P to be *T and a types.Record, so a Store can keep
// plain values while calling pointer methods on them.
type RecordPtr[T any] interface {
	*T
	types.Record
}

// Store is the ordered collection of one record kind.
type Store[T any, P RecordPtr[T]] struct {
	mu      sync.RWMutex
	backend types.Backend
	schema  types.Schema
	items   []T
	loaded  bool

	now   func() time.Time
	newID func() string
}

// New creates an unloaded store for schema on backend. Call Load before use.
func New[T any, P RecordPtr[T]](backend types.Backend, schema types.Schema) *Store[T, P] {
	return &Store[T, P]{
		backend: backend,
		schema:  schema,
		now:     time.Now,
		newID:   newUUID,
	}
}

// newUUID generates a UUID v7 string, falling back to v4.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Schema returns the collection schema.
func (s *Store[T, P]) Schema() types.Schema {
	return s.schema
}

// Load replaces the in-memory collection with the backend's contents.
// Records that fail to decode, lack an ID, or repeat an earlier ID are
// skipped with a warning.
func (s *Store[T, P]) Load() error {
	raw, err := s.backend.Load(s.schema.Name)
	if err != nil {
		return fmt.Errorf("load %s: %w", s.schema.Name, err)
	}

	items := make([]T, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, data := range raw {
		var rec T
		if err := json.Unmarshal(data, P(&rec)); err != nil {
			logger.Warn("skipping undecodable record", "collection", s.schema.Name, "index", i, "err", err)
			continue
		}
		id := P(&rec).RecordID()
		if id == "" {
			logger.Warn("skipping record without id", "collection", s.schema.Name, "index", i)
			continue
		}
		if seen[id] {
			logger.Warn("skipping duplicate record", "collection", s.schema.Name, "id", id)
			continue
		}
		seen[id] = true
		items = append(items, rec)
	}

	s.mu.Lock()
	s.items = items
	s.loaded = true
	s.mu.Unlock()

	logger.Debug("collection loaded", "collection", s.schema.Name, "records", len(items))
	return nil
}

// Len returns the number of records.
func (s *Store[T, P]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// All returns a copy of the collection in order.
func (s *Store[T, P]) All() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Get returns the record with the given ID.
func (s *Store[T, P]) Get(id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var zero T
	if !s.loaded {
		return zero, types.ErrNotLoaded
	}
	i := s.indexLocked(id)
	if i < 0 {
		return zero, fmt.Errorf("%s %q: %w", s.schema.Singular, id, types.ErrNotFound)
	}
	return s.items[i], nil
}

// Add validates rec, assigns an ID and creation time when missing, appends
// it, and saves. Creation times are stored in UTC. An invalid record leaves the store unchanged.
func (s *Store[T, P]) Add(rec T) (T, error) {
	var zero T
	p := P(&rec)
	if n, ok := any(p).(types.Normalizer); ok {
		n.Normalize()
	}
	if err := p.Validate(); err != nil {
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return zero, types.ErrNotLoaded
	}
	if p.RecordID() == "" {
		p.SetRecordID(s.newID())
	} else if s.indexLocked(p.RecordID()) >= 0 {
		return zero, fmt.Errorf("%s %q: %w", s.schema.Singular, p.RecordID(), types.ErrDuplicateID)
	}
	if p.Created().IsZero() {
		p.SetCreated(s.now())
	}
	p.SetCreated(p.Created().UTC())

	next := append(slices.Clone(s.items), rec)
	if err := s.commitLocked(next); err != nil {
		return zero, err
	}
	logger.Debug("record added", "collection", s.schema.Name, "id", p.RecordID())
	return rec, nil
}

// Update validates rec and replaces the stored record with the same ID in
// place. A zero creation time is carried over from the stored record.
func (s *Store[T, P]) Update(rec T) (T, error) {
	var zero T
	p := P(&rec)
	if p.RecordID() == "" {
		return zero, types.ErrInvalidID
	}
	if n, ok := any(p).(types.Normalizer); ok {
		n.Normalize()
	}
	if err := p.Validate(); err != nil {
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return zero, types.ErrNotLoaded
	}
	i := s.indexLocked(p.RecordID())
	if i < 0 {
		return zero, fmt.Errorf("%s %q: %w", s.schema.Singular, p.RecordID(), types.ErrNotFound)
	}
	if p.Created().IsZero() {
		p.SetCreated(P(&s.items[i]).Created())
	}
	p.SetCreated(p.Created().UTC())

	next := slices.Clone(s.items)
	next[i] = rec
	if err := s.commitLocked(next); err != nil {
		return zero, err
	}
	logger.Debug("record updated", "collection", s.schema.Name, "id", p.RecordID())
	return rec, nil
}

// Delete removes exactly the record with the given ID. The others keep their
// order and content.
func (s *Store[T, P]) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return types.ErrNotLoaded
	}
	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%s %q: %w", s.schema.Singular, id, types.ErrNotFound)
	}

	next := slices.Delete(slices.Clone(s.items), i, i+1)
	if err := s.commitLocked(next); err != nil {
		return err
	}
	logger.Debug("record deleted", "collection", s.schema.Name, "id", id)
	return nil
}

// Toggle flips a boolean field of the record and saves. Toggling twice
// restores the original record.
func (s *Store[T, P]) Toggle(id, field string) (T, error) {
	var zero T

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return zero, types.ErrNotLoaded
	}
	i := s.indexLocked(id)
	if i < 0 {
		return zero, fmt.Errorf("%s %q: %w", s.schema.Singular, id, types.ErrNotFound)
	}

	rec := s.items[i]
	if err := P(&rec).Toggle(field); err != nil {
		return zero, fmt.Errorf("%s.%s: %w", s.schema.Name, field, err)
	}

	next := slices.Clone(s.items)
	next[i] = rec
	if err := s.commitLocked(next); err != nil {
		return zero, err
	}
	logger.Debug("record toggled", "collection", s.schema.Name, "id", id, "field", field)
	return rec, nil
}

// Where returns the records whose fields equal every filter value, in
// collection order. The filter is pushed down to the backend when it
// implements types.Querier.
func (s *Store[T, P]) Where(filter map[string]any) ([]T, error) {
	for k := range filter {
		if _, ok := s.schema.Field(k); !ok {
			return nil, fmt.Errorf("%s.%s: %w", s.schema.Name, k, types.ErrInvalidField)
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return nil, types.ErrNotLoaded
	}
	if len(filter) == 0 {
		return slices.Clone(s.items), nil
	}

	if q, ok := s.backend.(types.Querier); ok {
		ids, err := q.Match(s.schema.Name, filter)
		if err != nil {
			return nil, fmt.Errorf("match %s: %w", s.schema.Name, err)
		}
		want := make(map[string]bool, len(ids))
		for _, id := range ids {
			want[id] = true
		}
		return Filter(s.items, func(r T) bool { return want[P(&r).RecordID()] }), nil
	}

	var matchErr error
	out := Filter(s.items, func(r T) bool {
		ok, err := Match(P(&r), filter)
		if err != nil {
			matchErr = err
		}
		return ok
	})
	if matchErr != nil {
		return nil, matchErr
	}
	return out, nil
}

// Query describes a derived view: equality filter, day range, sort and limit.
type Query struct {
	Where map[string]any
	From  types.Day
	To    types.Day
	Sort  string
	Desc  bool
	Limit int
}

// Query returns the derived view described by q. It is recomputed on every
// call.
func (s *Store[T, P]) Query(q Query) ([]T, error) {
	recs, err := s.Where(q.Where)
	if err != nil {
		return nil, err
	}
	if !q.From.IsZero() || !q.To.IsZero() {
		if s.schema.DayField == "" {
			return nil, fmt.Errorf("%s has no day field: %w", s.schema.Name, types.ErrInvalidField)
		}
		recs, err = InRange[T, P](recs, s.schema.DayField, q.From, q.To)
		if err != nil {
			return nil, err
		}
	}
	if q.Sort != "" {
		if _, ok := s.schema.Field(q.Sort); !ok {
			return nil, fmt.Errorf("sort by %s: %w", q.Sort, types.ErrInvalidField)
		}
		if err := SortBy[T, P](recs, q.Sort, q.Desc); err != nil {
			return nil, err
		}
	}
	if q.Limit > 0 && len(recs) > q.Limit {
		recs = recs[:q.Limit]
	}
	return recs, nil
}

// Days groups the view described by q by the schema's day field.
func (s *Store[T, P]) Days(q Query) ([]DayGroup[T], error) {
	if s.schema.DayField == "" {
		return nil, fmt.Errorf("%s has no day field: %w", s.schema.Name, types.ErrInvalidField)
	}
	q.Limit = 0
	recs, err := s.Query(q)
	if err != nil {
		return nil, err
	}
	return GroupByDay[T, P](recs, s.schema.DayField)
}

func (s *Store[T, P]) indexLocked(id string) int {
	return slices.IndexFunc(s.items, func(r T) bool { return P(&r).RecordID() == id })
}

// commitLocked saves next and, only on success, makes it the collection.
// The caller must hold s.mu.
func (s *Store[T, P]) commitLocked(next []T) error {
	raw := make([]json.RawMessage, len(next))
	for i := range next {
		data, err := json.Marshal(P(&next[i]))
		if err != nil {
			return fmt.Errorf("encode %s: %w", s.schema.Singular, err)
		}
		raw[i] = data
	}
	if err := s.backend.Save(s.schema.Name, raw); err != nil {
		logger.Error("save failed; change discarded", "collection", s.schema.Name, "err", err)
		return fmt.Errorf("save %s: %w", s.schema.Name, err)
	}
	s.items = next
	return nil
}
