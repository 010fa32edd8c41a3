package nodebuilder

import (
	"context"
	"testing"

	"github.com/ipfs/go-datastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepo(t *testing.T) {
	dir := t.TempDir()

	_, err := OpenStore(dir)
	assert.ErrorIs(t, err, ErrNotInited)

	err = Init(*DefaultConfig(), dir)
	require.NoError(t, err)

	store, err := OpenStore(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, store.Path())

	_, err = OpenStore(dir)
	assert.ErrorIs(t, err, ErrOpened)

	data, err := store.Datastore()
	require.NoError(t, err)
	assert.NotNil(t, data)

	// the same instance is handed out on every call
	again, err := store.Datastore()
	require.NoError(t, err)
	assert.Same(t, data, again)

	cfg, err := store.Config()
	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	err = store.Close()
	assert.NoError(t, err)

	// the lock is released on close
	store, err = OpenStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestStore_DatastorePersists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, Init(*DefaultConfig(), dir))

	key := datastore.NewKey("/checkpoint")
	store, err := OpenStore(dir)
	require.NoError(t, err)
	ds, err := store.Datastore()
	require.NoError(t, err)
	require.NoError(t, ds.Put(ctx, key, []byte("42")))
	require.NoError(t, store.Close())

	store, err = OpenStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	ds, err = store.Datastore()
	require.NoError(t, err)
	value, err := ds.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("42"), value)
}

func TestStore_PutConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(*DefaultConfig(), dir))

	store, err := OpenStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	cfg, err := store.Config()
	require.NoError(t, err)
	cfg.DASer.AppID = 7
	require.NoError(t, store.PutConfig(cfg))

	cfg, err = store.Config()
	require.NoError(t, err)
	assert.Equal(t, uint32(7), cfg.DASer.AppID)
}
