package sqlite

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Match returns the IDs of records whose fields equal every filter value,
// in collection order. Filter keys must be schema fields. An empty filter
// matches everything.
func (b *Backend) Match(collection string, filter map[string]any) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}
	schema, err := types.Lookup(collection)
	if err != nil {
		return nil, err
	}

	query := "SELECT record_id FROM records WHERE collection = ?"
	args := []any{collection}

	// Sorted keys keep the generated SQL stable.
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var conditions []string
	for _, k := range keys {
		field, ok := schema.Field(k)
		if !ok {
			return nil, fmt.Errorf("%s.%s: %w", collection, k, types.ErrInvalidField)
		}
		v, err := sqlValue(filter[k])
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", collection, k, err)
		}
		// Times are compared as instants, whatever offset they were written with.
		if field.Kind == types.KindTime {
			conditions = append(conditions, "julianday(json_extract(data, ?)) = julianday(?)")
		} else {
			conditions = append(conditions, "json_extract(data, ?) = ?")
		}
		args = append(args, "$."+k, v)
	}
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY position"

	rows, err := b.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", collection, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// sqlValue converts a typed field value to what json_extract yields for the
// same JSON value: booleans become 0/1, days their JSON strings and times
// UTC RFC 3339 text for julianday.
func sqlValue(v any) (any, error) {
	switch x := v.(type) {
	case string, int64, float64:
		return x, nil
	case int:
		return int64(x), nil
	case bool:
		if x {
			return int64(1), nil
		}
		return int64(0), nil
	case types.Day:
		return x.String(), nil
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano), nil
	}
	return nil, types.ErrInvalidFilter
}
