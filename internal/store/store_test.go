package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// memBackend keeps collections in memory and can be told to fail saves.
type memBackend struct {
	data     map[string][]json.RawMessage
	failSave error
	saves    int
}

func newMemBackend() *memBackend {
	return &memBackend{data: make(map[string][]json.RawMessage)}
}

func (m *memBackend) Attach(types.Config) error { return nil }
func (m *memBackend) Detach() error             { return nil }

func (m *memBackend) Load(collection string) ([]json.RawMessage, error) {
	return m.data[collection], nil
}

func (m *memBackend) Save(collection string, records []json.RawMessage) error {
	if m.failSave != nil {
		return m.failSave
	}
	m.saves++
	m.data[collection] = records
	return nil
}

// sequentialIDs makes generated IDs predictable.
func sequentialIDs[T any, P RecordPtr[T]](s *Store[T, P]) {
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("id-%02d", n)
	}
}

func loadedGroceries(t *testing.T, b types.Backend) *Store[types.Grocery, *types.Grocery] {
	t.Helper()
	s := New[types.Grocery](b, types.GrocerySchema)
	sequentialIDs(s)
	require.NoError(t, s.Load())
	return s
}

func TestAddAssignsIDAndCreated(t *testing.T) {
	b := newMemBackend()
	s := loadedGroceries(t, b)
	fixed := time.Date(2025, time.March, 1, 9, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	g, err := s.Add(types.Grocery{Name: "Milk", Category: "dairy"})
	require.NoError(t, err)
	assert.Equal(t, "id-01", g.ID)
	assert.Equal(t, fixed, g.CreatedAt)
	assert.Equal(t, 1, g.Quantity, "quantity normalized")
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, b.saves)
}

func TestCreatedStoredInUTC(t *testing.T) {
	s := loadedGroceries(t, newMemBackend())
	plus2 := time.FixedZone("", 2*60*60)
	at := time.Date(2024, time.January, 1, 10, 0, 0, 0, plus2)

	g, err := s.Add(types.Grocery{Meta: types.Meta{CreatedAt: at}, Name: "Milk"})
	require.NoError(t, err)
	assert.Equal(t, time.UTC, g.CreatedAt.Location())
	assert.True(t, g.CreatedAt.Equal(at))

	later := at.Add(time.Hour)
	g.CreatedAt = later
	g, err = s.Update(g)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, g.CreatedAt.Location())
	assert.True(t, g.CreatedAt.Equal(later))
}

func TestAddRejectsInvalidAndLeavesStoreUnchanged(t *testing.T) {
	b := newMemBackend()
	s := loadedGroceries(t, b)
	_, err := s.Add(types.Grocery{Name: "Bread"})
	require.NoError(t, err)
	before := s.All()

	_, err = s.Add(types.Grocery{Name: "   "})
	assert.ErrorIs(t, err, types.ErrInvalidData)
	assert.ErrorIs(t, err, types.ErrEmptyField)

	assert.Equal(t, before, s.All())
	assert.Equal(t, 1, b.saves, "nothing saved for the rejected record")
}

func TestAddRejectsDuplicateID(t *testing.T) {
	s := loadedGroceries(t, newMemBackend())
	_, err := s.Add(types.Grocery{Meta: types.Meta{ID: "fixed"}, Name: "Tea"})
	require.NoError(t, err)

	_, err = s.Add(types.Grocery{Meta: types.Meta{ID: "fixed"}, Name: "Coffee"})
	assert.ErrorIs(t, err, types.ErrDuplicateID)
	assert.Equal(t, 1, s.Len())
}

func TestOperationsRequireLoad(t *testing.T) {
	s := New[types.Idea](newMemBackend(), types.IdeaSchema)

	_, err := s.Add(types.Idea{Title: "x"})
	assert.ErrorIs(t, err, types.ErrNotLoaded)
	_, err = s.Get("x")
	assert.ErrorIs(t, err, types.ErrNotLoaded)
	assert.ErrorIs(t, s.Delete("x"), types.ErrNotLoaded)
	_, err = s.Where(nil)
	assert.ErrorIs(t, err, types.ErrNotLoaded)
}

func TestUpdateReplacesInPlace(t *testing.T) {
	s := loadedGroceries(t, newMemBackend())
	for _, n := range []string{"Apples", "Pears", "Plums"} {
		_, err := s.Add(types.Grocery{Name: n})
		require.NoError(t, err)
	}
	orig, err := s.Get("id-02")
	require.NoError(t, err)

	changed := orig
	changed.Quantity = 6
	changed.CreatedAt = time.Time{}
	got, err := s.Update(changed)
	require.NoError(t, err)
	assert.Equal(t, orig.CreatedAt, got.CreatedAt, "created_at carried over")

	all := s.All()
	require.Len(t, all, 3)
	assert.Equal(t, "Pears", all[1].Name)
	assert.Equal(t, 6, all[1].Quantity)
}

func TestUpdateErrors(t *testing.T) {
	s := loadedGroceries(t, newMemBackend())
	_, err := s.Add(types.Grocery{Name: "Rice"})
	require.NoError(t, err)

	_, err = s.Update(types.Grocery{Name: "Rice"})
	assert.ErrorIs(t, err, types.ErrInvalidID)

	_, err = s.Update(types.Grocery{Meta: types.Meta{ID: "nope"}, Name: "Rice"})
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = s.Update(types.Grocery{Meta: types.Meta{ID: "id-01"}, Name: ""})
	assert.ErrorIs(t, err, types.ErrEmptyField)

	got, err := s.Get("id-01")
	require.NoError(t, err)
	assert.Equal(t, "Rice", got.Name)
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	s := loadedGroceries(t, newMemBackend())
	for _, n := range []string{"a", "b", "c", "d"} {
		_, err := s.Add(types.Grocery{Name: n})
		require.NoError(t, err)
	}
	before := s.All()

	require.NoError(t, s.Delete("id-02"))

	after := s.All()
	require.Len(t, after, len(before)-1)
	assert.Equal(t, []types.Grocery{before[0], before[2], before[3]}, after)

	assert.ErrorIs(t, s.Delete("id-02"), types.ErrNotFound)
	assert.ErrorIs(t, s.Delete(""), types.ErrInvalidID)
}

func TestToggleTwiceIsIdentity(t *testing.T) {
	s := loadedGroceries(t, newMemBackend())
	orig, err := s.Add(types.Grocery{Name: "Butter"})
	require.NoError(t, err)

	once, err := s.Toggle(orig.ID, "bought")
	require.NoError(t, err)
	assert.True(t, once.Bought)

	twice, err := s.Toggle(orig.ID, "bought")
	require.NoError(t, err)
	assert.Equal(t, orig, twice)

	stored, err := s.Get(orig.ID)
	require.NoError(t, err)
	assert.Equal(t, orig, stored)
}

func TestToggleErrors(t *testing.T) {
	s := loadedGroceries(t, newMemBackend())
	g, err := s.Add(types.Grocery{Name: "Jam"})
	require.NoError(t, err)

	_, err = s.Toggle(g.ID, "name")
	assert.ErrorIs(t, err, types.ErrNotToggleable)
	_, err = s.Toggle("missing", "bought")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestFailedSaveRollsBack(t *testing.T) {
	b := newMemBackend()
	s := loadedGroceries(t, b)
	g, err := s.Add(types.Grocery{Name: "Oats"})
	require.NoError(t, err)
	before := s.All()

	b.failSave = errors.New("disk full")

	_, err = s.Add(types.Grocery{Name: "Salt"})
	assert.ErrorContains(t, err, "disk full")
	_, err = s.Toggle(g.ID, "bought")
	assert.Error(t, err)
	assert.Error(t, s.Delete(g.ID))
	g.Quantity = 3
	_, err = s.Update(g)
	assert.Error(t, err)

	assert.Equal(t, before, s.All(), "memory matches what was last persisted")
}

func TestLoadSkipsBadRecords(t *testing.T) {
	b := newMemBackend()
	b.data[types.IdeasCollection] = []json.RawMessage{
		json.RawMessage(`{"id":"1","title":"Museum"}`),
		json.RawMessage(`{"title":"no id"}`),
		json.RawMessage(`{"id":"2","title":"Concert","planned":"not-a-day"}`),
		json.RawMessage(`{"id":"1","title":"Duplicate"}`),
		json.RawMessage(`{"id":"3","title":"Picnic","future_field":"ignored"}`),
	}

	s := New[types.Idea](b, types.IdeaSchema)
	require.NoError(t, s.Load())

	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, "Museum", all[0].Title)
	assert.Equal(t, "Picnic", all[1].Title)
}

func TestAllReturnsCopy(t *testing.T) {
	s := loadedGroceries(t, newMemBackend())
	_, err := s.Add(types.Grocery{Name: "Figs"})
	require.NoError(t, err)

	all := s.All()
	all[0].Name = "changed"

	got, err := s.Get("id-01")
	require.NoError(t, err)
	assert.Equal(t, "Figs", got.Name)
}
