package pmap

import lru "github.com/hashicorp/golang-lru"

// NodeCache caches serialized node bytes by content-hash name, both to
// avoid re-Storing a name already known to be persisted and to avoid
// re-Loading bytes already seen. One NodeCache may be shared
// across any number of Saves/Loads.
//
// NodeCache holds encoded bytes rather than deserialized nodes, since a
// stored value here (wireNode/wireBucket bytes) isn't typed on K/V the way
// an in-memory *focusedNode is.
type NodeCache interface {
	// Add records that name's bytes have been persisted/loaded.
	Add(name string, bytes []byte)
	// Contains reports whether name is already known to be persisted.
	Contains(name string) bool
	// Get retrieves previously-cached bytes for name.
	Get(name string) (bytes []byte, ok bool)
}

type lruNodeCache struct {
	cache *lru.ARCCache
}

// NewNodeCache returns an ARC-based NodeCache holding up to size entries.
func NewNodeCache(size int) NodeCache {
	cache, err := lru.NewARC(size)
	if err != nil {
		panic(invariantError{"persist: NewNodeCache: invalid size", size})
	}
	return &lruNodeCache{cache: cache}
}

func (c *lruNodeCache) Add(name string, bytes []byte) { c.cache.Add(name, bytes) }

func (c *lruNodeCache) Contains(name string) bool { return c.cache.Contains(name) }

func (c *lruNodeCache) Get(name string) ([]byte, bool) {
	v, ok := c.cache.Get(name)
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}
