package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/fieldsales/internal/db"
	"github.com/vbonduro/fieldsales/internal/kvstore"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	d, err := db.OpenInMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return NewStore(d)
}

func TestStoreSetAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "purchases", []byte(`[{"id":1}]`)))

	value, ok, err := store.Get(ctx, "purchases")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"id":1}]`, string(value))
}

func TestStoreGetMissing(t *testing.T) {
	store := newTestStore(t)

	value, ok, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, value)
}

func TestStoreSetOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "purchases", []byte(`[{"id":1}]`)))
	require.NoError(t, store.Set(ctx, "purchases", []byte(`[{"id":2},{"id":1}]`)))

	value, _, err := store.Get(ctx, "purchases")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":2},{"id":1}]`, string(value))
}

func TestStoreSetRejectsInvalidJSON(t *testing.T) {
	store := newTestStore(t)

	err := store.Set(context.Background(), "purchases", []byte(`[{"id":`))
	assert.Error(t, err)
}

func TestStoreRemoveAndClear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", []byte(`1`)))
	require.NoError(t, store.Set(ctx, "b", []byte(`2`)))

	require.NoError(t, store.Remove(ctx, "a"))
	_, ok, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Clear(ctx))
	_, ok, err = store.Get(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreJSONHelpers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	type userData struct {
		Username string `json:"username"`
	}
	require.NoError(t, kvstore.SetJSON(ctx, store, kvstore.KeyUserData, userData{Username: "awa"}))

	var got userData
	ok, err := kvstore.GetJSON(ctx, store, kvstore.KeyUserData, &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "awa", got.Username)

	var missing userData
	ok, err = kvstore.GetJSON(ctx, store, "other", &missing)
	require.NoError(t, err)
	assert.False(t, ok)
}
