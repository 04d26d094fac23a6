package sqlite

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

func seedMovies(t *testing.T, b *Backend) {
	t.Helper()
	recs := []json.RawMessage{
		raw(`{"id":"m1","title":"Alien","watched":"2024-01-05","rating":5,"genre":"scifi","favorite":true}`),
		raw(`{"id":"m2","title":"Heat","watched":"2024-01-06","rating":4,"genre":"crime","favorite":false}`),
		raw(`{"id":"m3","title":"Arrival","watched":"2024-02-01","rating":5,"genre":"scifi","favorite":false}`),
	}
	require.NoError(t, b.Save(types.MoviesCollection, recs))
}

func TestMatch(t *testing.T) {
	b, _ := attached(t)
	seedMovies(t, b)

	tests := []struct {
		name   string
		filter map[string]any
		want   []string
	}{
		{"empty filter matches all in order", nil, []string{"m1", "m2", "m3"}},
		{"bool true", map[string]any{"favorite": true}, []string{"m1"}},
		{"bool false", map[string]any{"favorite": false}, []string{"m2", "m3"}},
		{"string", map[string]any{"genre": "scifi"}, []string{"m1", "m3"}},
		{"int", map[string]any{"rating": 5}, []string{"m1", "m3"}},
		{"float against int", map[string]any{"rating": 4.0}, []string{"m2"}},
		{"day", map[string]any{"watched": types.NewDay(2024, time.January, 6)}, []string{"m2"}},
		{"conjunction", map[string]any{"genre": "scifi", "rating": 5, "favorite": false}, []string{"m3"}},
		{"no match", map[string]any{"genre": "western"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Match(types.MoviesCollection, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchComparesTimesAsInstants(t *testing.T) {
	b, _ := attached(t)
	require.NoError(t, b.Save(types.WishesCollection, []json.RawMessage{
		raw(`{"id":"w1","name":"Tent","price":199.99,"created_at":"2024-01-01T08:00:00Z"}`),
		raw(`{"id":"w2","name":"Kettle","price":40,"created_at":"2024-01-01T10:00:00+02:00"}`),
		raw(`{"id":"w3","name":"Lamp","price":12.5,"created_at":"2024-01-01T10:00:00Z"}`),
	}))

	plus2 := time.FixedZone("", 2*60*60)
	tests := []struct {
		name   string
		filter map[string]any
		want   []string
	}{
		{"utc value", map[string]any{"created_at": time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)}, []string{"w1", "w2"}},
		{"offset value", map[string]any{"created_at": time.Date(2024, 1, 1, 10, 0, 0, 0, plus2)}, []string{"w1", "w2"}},
		{"other instant", map[string]any{"created_at": time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}, []string{"w3"}},
		{"float", map[string]any{"price": 199.99}, []string{"w1"}},
		{"whole float against int", map[string]any{"price": 40.0}, []string{"w2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Match(types.WishesCollection, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchRejectsUnknownField(t *testing.T) {
	b, _ := attached(t)
	seedMovies(t, b)

	_, err := b.Match(types.MoviesCollection, map[string]any{"director": "Scott"})
	assert.ErrorIs(t, err, types.ErrInvalidField)
}

func TestMatchRejectsUnsupportedValue(t *testing.T) {
	b, _ := attached(t)
	_, err := b.Match(types.MoviesCollection, map[string]any{"title": []string{"a"}})
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
}

func TestMatchPathIsNotInjectable(t *testing.T) {
	b, _ := attached(t)
	seedMovies(t, b)

	_, err := b.Match(types.MoviesCollection, map[string]any{"title') OR 1=1 --": "x"})
	assert.ErrorIs(t, err, types.ErrInvalidField)
}
