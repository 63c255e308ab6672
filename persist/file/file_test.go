package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/imdone/pmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func TestStoreLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := NewPersistForPath(dir)

	name := hashName([]byte("hello"))
	err := p.Store(ctx, name, []byte("hello"))
	require.NoError(t, err)
	loaded, err := p.Load(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), loaded)
}

// TestMapSnapshotRoundTrip exercises Persist as a pmap.Persist backend: it
// saves a Map's nodes and collision buckets as content-hash-named files,
// then reconstructs an equal Map from a fresh Load.
func TestMapSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewPersistForPath(dir)

	m := pmap.New[string, int](0, nil).
		Add("alpha", 1).
		Add("bravo", 2).
		Add("charlie", 3)

	cfg := &pmap.Config[string, int]{Store: store}
	snap, err := pmap.Save(ctx, m, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, snap.Root)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries, "Save should have written at least one content-addressed file")

	loaded, err := pmap.Load[string, int](ctx, snap, cfg, nil)
	require.NoError(t, err)

	assert.True(t, m.Equal(loaded))
	v := loaded.Get("bravo")
	require.NotEqual(t, loaded.Default(), v)
	assert.Equal(t, 2, v)
}

// TestLoadDetectsCorruption confirms Load rejects a file whose contents no
// longer hash to its own name.
func TestLoadDetectsCorruption(t *testing.T) {
	dir := t.TempDir()
	p := NewPersistForPath(dir)

	name := hashName([]byte("hello"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("hello"), 0o644))

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("tampered"), 0o644))
	_, err := p.Load(ctx, name)
	assert.Error(t, err)
}
