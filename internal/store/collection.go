package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Collection is a Store seen through types.Record, for callers that pick the
// collection by name at run time (the CLI).
type Collection interface {
	Schema() types.Schema
	Load() error
	Len() int
	Records() []types.Record
	Record(id string) (types.Record, error)
	// AddJSON decodes a record from a JSON object and adds it. Unknown
	// fields are rejected.
	AddJSON(data []byte) (types.Record, error)
	// UpdateJSON overlays a JSON object onto the stored record and saves it.
	// Fields absent from data keep their values; the ID cannot change.
	UpdateJSON(id string, data []byte) (types.Record, error)
	Delete(id string) error
	Toggle(id, field string) (types.Record, error)
	List(q Query) ([]types.Record, error)
	Days(q Query) ([]DayGroup[types.Record], error)
}

// Open returns the Collection for name on backend, not yet loaded.
// Returns ErrTableNotFound for unknown names.
func Open(backend types.Backend, name string) (Collection, error) {
	switch name {
	case types.MoviesCollection:
		return erase(New[types.Movie](backend, types.MovieSchema)), nil
	case types.IdeasCollection:
		return erase(New[types.Idea](backend, types.IdeaSchema)), nil
	case types.WishesCollection:
		return erase(New[types.Wish](backend, types.WishSchema)), nil
	case types.MoodsCollection:
		return erase(New[types.MoodDay](backend, types.MoodSchema)), nil
	case types.GroceriesCollection:
		return erase(New[types.Grocery](backend, types.GrocerySchema)), nil
	}
	return nil, fmt.Errorf("%q: %w", name, types.ErrTableNotFound)
}

// Load opens and loads a collection in one step.
func Load(backend types.Backend, name string) (Collection, error) {
	c, err := Open(backend, name)
	if err != nil {
		return nil, err
	}
	if err := c.Load(); err != nil {
		return nil, err
	}
	return c, nil
}

type erased[T any, P RecordPtr[T]] struct {
	*Store[T, P]
}

func erase[T any, P RecordPtr[T]](s *Store[T, P]) Collection {
	return erased[T, P]{s}
}

func records[T any, P RecordPtr[T]](recs []T) []types.Record {
	out := make([]types.Record, len(recs))
	for i := range recs {
		out[i] = P(&recs[i])
	}
	return out
}

func (e erased[T, P]) Records() []types.Record {
	return records[T, P](e.All())
}

func (e erased[T, P]) Record(id string) (types.Record, error) {
	rec, err := e.Get(id)
	if err != nil {
		return nil, err
	}
	return P(&rec), nil
}

func (e erased[T, P]) AddJSON(data []byte) (types.Record, error) {
	var rec T
	if err := decodeStrict(data, P(&rec)); err != nil {
		return nil, err
	}
	added, err := e.Add(rec)
	if err != nil {
		return nil, err
	}
	return P(&added), nil
}

func (e erased[T, P]) UpdateJSON(id string, data []byte) (types.Record, error) {
	rec, err := e.Get(id)
	if err != nil {
		return nil, err
	}
	if err := decodeStrict(data, P(&rec)); err != nil {
		return nil, err
	}
	P(&rec).SetRecordID(id)
	updated, err := e.Update(rec)
	if err != nil {
		return nil, err
	}
	return P(&updated), nil
}

func (e erased[T, P]) Toggle(id, field string) (types.Record, error) {
	rec, err := e.Store.Toggle(id, field)
	if err != nil {
		return nil, err
	}
	return P(&rec), nil
}

func (e erased[T, P]) List(q Query) ([]types.Record, error) {
	recs, err := e.Query(q)
	if err != nil {
		return nil, err
	}
	return records[T, P](recs), nil
}

func (e erased[T, P]) Days(q Query) ([]DayGroup[types.Record], error) {
	groups, err := e.Store.Days(q)
	if err != nil {
		return nil, err
	}
	out := make([]DayGroup[types.Record], len(groups))
	for i, g := range groups {
		out[i] = DayGroup[types.Record]{Day: g.Day, Records: records[T, P](g.Records)}
	}
	return out, nil
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	return nil
}
