package pmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollisionBucketOrdersByKey(t *testing.T) {
	a := NewArena[string, int]()
	order := DefaultOrder[string]()

	b := newCollisionBucket(a, "zebra", 1, "apple", 2, order)
	k0, v0 := b.entryAt(0)
	k1, v1 := b.entryAt(1)
	assert.Equal(t, "apple", k0)
	assert.Equal(t, 2, v0)
	assert.Equal(t, "zebra", k1)
	assert.Equal(t, 1, v1)
	assert.Equal(t, 2, b.len())
}

func TestCollisionBucketGet(t *testing.T) {
	a := NewArena[string, int]()
	order := DefaultOrder[string]()
	b := newCollisionBucket(a, "a", 1, "b", 2, order)

	v, ok := b.get("a", order)
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = b.get("b", order)
	require.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = b.get("c", order)
	assert.False(t, ok)
}

func TestCollisionBucketWithSetInsertsAndUpdates(t *testing.T) {
	a := NewArena[string, int]()
	order := DefaultOrder[string]()
	b := newCollisionBucket(a, "a", 1, "c", 3, order)

	inserted := b.withSet(a, "b", 2, order)
	assert.Equal(t, 3, inserted.len())
	v, ok := inserted.get("b", order)
	require.True(t, ok)
	assert.Equal(t, 2, v)
	// original bucket untouched (copy-on-write)
	_, ok = b.get("b", order)
	assert.False(t, ok)

	updated := inserted.withSet(a, "b", 20, order)
	v, ok = updated.get("b", order)
	require.True(t, ok)
	assert.Equal(t, 20, v)
	v, ok = inserted.get("b", order)
	require.True(t, ok)
	assert.Equal(t, 2, v, "withSet must not mutate the bucket it was called on")
}
