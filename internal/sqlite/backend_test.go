package sqlite

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

func attached(t *testing.T) (*Backend, string) {
	t.Helper()
	dir := t.TempDir()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	t.Cleanup(func() { b.Detach() })
	return b, dir
}

func raw(s string) json.RawMessage { return json.RawMessage(s) }

func TestBackend_Attach(t *testing.T) {
	_, dir := attached(t)

	_, err := os.Stat(filepath.Join(dir, DBFile))
	assert.NoError(t, err, "pantry.db not created")
}

func TestBackend_AttachTwice(t *testing.T) {
	b, dir := attached(t)
	err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir})
	assert.ErrorIs(t, err, types.ErrAlreadyAttached)
}

func TestBackend_Detach(t *testing.T) {
	b, _ := attached(t)

	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach(), "second Detach should not error")

	_, err := b.Load(types.MoviesCollection)
	assert.ErrorIs(t, err, types.ErrDetached)
	_, err = b.Match(types.MoviesCollection, nil)
	assert.ErrorIs(t, err, types.ErrDetached)
}

func TestBackend_SaveLoad(t *testing.T) {
	b, _ := attached(t)

	recs := []json.RawMessage{
		raw(`{"id":"b","title":"Second"}`),
		raw(`{"id":"a","title":"First"}`),
	}
	require.NoError(t, b.Save(types.IdeasCollection, recs))

	got, err := b.Load(types.IdeasCollection)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.JSONEq(t, string(recs[0]), string(got[0]), "position order is kept")
	assert.JSONEq(t, string(recs[1]), string(got[1]))

	other, err := b.Load(types.WishesCollection)
	require.NoError(t, err)
	assert.Empty(t, other, "collections are isolated")
}

func TestBackend_SaveReplaces(t *testing.T) {
	b, _ := attached(t)

	require.NoError(t, b.Save(types.GroceriesCollection, []json.RawMessage{raw(`{"id":"1"}`), raw(`{"id":"2"}`)}))
	require.NoError(t, b.Save(types.GroceriesCollection, []json.RawMessage{raw(`{"id":"2"}`)}))

	got, err := b.Load(types.GroceriesCollection)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.JSONEq(t, `{"id":"2"}`, string(got[0]))
}

func TestBackend_SaveIsAtomic(t *testing.T) {
	b, _ := attached(t)
	require.NoError(t, b.Save(types.MoviesCollection, []json.RawMessage{raw(`{"id":"keep"}`)}))

	tests := []struct {
		name    string
		recs    []json.RawMessage
		wantErr error
	}{
		{"missing id", []json.RawMessage{raw(`{"id":"x"}`), raw(`{"title":"no id"}`)}, types.ErrInvalidID},
		{"duplicate id", []json.RawMessage{raw(`{"id":"x"}`), raw(`{"id":"x"}`)}, types.ErrDuplicateID},
		{"not json", []json.RawMessage{raw(`nope`)}, types.ErrInvalidData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, b.Save(types.MoviesCollection, tt.recs), tt.wantErr)

			got, err := b.Load(types.MoviesCollection)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.JSONEq(t, `{"id":"keep"}`, string(got[0]))
		})
	}
}

func TestBackend_PersistsAcrossAttach(t *testing.T) {
	dir := t.TempDir()
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	b := NewBackend()
	require.NoError(t, b.Attach(cfg))
	require.NoError(t, b.Save(types.MoodsCollection, []json.RawMessage{raw(`{"id":"d1","color":"#112233"}`)}))
	require.NoError(t, b.Detach())

	b2 := NewBackend()
	require.NoError(t, b2.Attach(cfg))
	defer b2.Detach()

	got, err := b2.Load(types.MoodsCollection)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.JSONEq(t, `{"id":"d1","color":"#112233"}`, string(got[0]))
}

func TestBackend_UnknownCollection(t *testing.T) {
	b, _ := attached(t)
	_, err := b.Load("recipes")
	assert.ErrorIs(t, err, types.ErrTableNotFound)
	assert.ErrorIs(t, b.Save("recipes", nil), types.ErrTableNotFound)
}
