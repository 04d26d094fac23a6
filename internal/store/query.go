package store

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Filter returns the records satisfying pred, in their original order.
func Filter[T any](recs []T, pred func(T) bool) []T {
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// Match reports whether every filter entry equals the record's field.
// Returns ErrInvalidField when a key is not a field of the record.
func Match(rec types.Record, filter map[string]any) (bool, error) {
	for k, want := range filter {
		got, ok := rec.Field(k)
		if !ok {
			return false, fmt.Errorf("%s: %w", k, types.ErrInvalidField)
		}
		if !EqualValues(got, want) {
			return false, nil
		}
	}
	return true, nil
}

// SortBy stable-sorts recs by the named field, in place. Sorting an already
// sorted slice by the same key leaves it unchanged.
func SortBy[T any, P RecordPtr[T]](recs []T, key string, desc bool) error {
	if len(recs) == 0 {
		return nil
	}
	if _, ok := P(&recs[0]).Field(key); !ok {
		return fmt.Errorf("sort by %s: %w", key, types.ErrInvalidField)
	}
	slices.SortStableFunc(recs, func(a, b T) int {
		va, _ := P(&a).Field(key)
		vb, _ := P(&b).Field(key)
		c := CompareValues(va, vb)
		if desc {
			return -c
		}
		return c
	})
	return nil
}

// InRange keeps records whose day field lies within [from, to]. A zero bound
// is open. Records with no day are dropped when either bound is set.
func InRange[T any, P RecordPtr[T]](recs []T, field string, from, to types.Day) ([]T, error) {
	if from.IsZero() && to.IsZero() {
		return recs, nil
	}
	var err error
	out := Filter(recs, func(r T) bool {
		v, ok := P(&r).Field(field)
		d, isDay := v.(types.Day)
		if !ok || !isDay {
			err = fmt.Errorf("%s is not a day field: %w", field, types.ErrInvalidField)
			return false
		}
		if d.IsZero() {
			return false
		}
		if !from.IsZero() && d.Before(from) {
			return false
		}
		if !to.IsZero() && d.After(to) {
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DayGroup holds the records that share one calendar day.
type DayGroup[T any] struct {
	Day     types.Day
	Records []T
}

// GroupByDay groups records by a day field, ascending by day. Records keep
// their relative order inside a group. Records without a day are omitted.
func GroupByDay[T any, P RecordPtr[T]](recs []T, field string) ([]DayGroup[T], error) {
	index := make(map[types.Day]int)
	var groups []DayGroup[T]
	for _, r := range recs {
		v, ok := P(&r).Field(field)
		d, isDay := v.(types.Day)
		if !ok || !isDay {
			return nil, fmt.Errorf("%s is not a day field: %w", field, types.ErrInvalidField)
		}
		if d.IsZero() {
			continue
		}
		i, seen := index[d]
		if !seen {
			i = len(groups)
			index[d] = i
			groups = append(groups, DayGroup[T]{Day: d})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	slices.SortFunc(groups, func(a, b DayGroup[T]) int { return a.Day.Compare(b.Day) })
	return groups, nil
}

// CompareValues orders two field values of the same kind. Strings compare
// case-insensitively with a case-sensitive tie break, false sorts before
// true, and nil sorts first. Mixed ints and floats compare numerically.
func CompareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			return cmp.Compare(fa, fb)
		}
	}
	switch x := a.(type) {
	case string:
		y, _ := b.(string)
		if c := cmp.Compare(strings.ToLower(x), strings.ToLower(y)); c != 0 {
			return c
		}
		return cmp.Compare(x, y)
	case bool:
		y, _ := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case types.Day:
		y, _ := b.(types.Day)
		return x.Compare(y)
	case time.Time:
		y, _ := b.(time.Time)
		return x.Compare(y)
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// EqualValues is exact equality over field values; ints and floats compare
// numerically and times by instant.
func EqualValues(a, b any) bool {
	if fa, ok := number(a); ok {
		fb, ok := number(b)
		return ok && fa == fb
	}
	switch x := a.(type) {
	case types.Day:
		y, ok := b.(types.Day)
		return ok && x.Equal(y)
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	return false
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}
