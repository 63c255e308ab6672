package pmap

// Map is the persistent associative map handle: a small value holding a
// root focusedNode pointer, a default value, and an Arena reference.
// Copying a Map is O(1) — every update produces a new logical map while
// reusing structure from the prior version.
//
// K must be comparable so that key equality and hashing are well-defined;
// V must be comparable so that Get against the default value, and the
// no-op-insert short-circuit in Add, can compare by value.
type Map[K comparable, V comparable] struct {
	root         *focusedNode[K, V]
	defaultValue V
	arena        *Arena[K, V]
	hasher       Hasher[K]
	order        Order[K]
}

// Options configures a Map at construction: plain Go struct fields rather
// than a CLI or config file.
type Options[K comparable, V comparable] struct {
	// Hasher computes a key's HashStamp. Defaults to DefaultHasher[K]().
	Hasher Hasher[K]
	// Order gives keys a total order for collision-bucket stability.
	// Defaults to DefaultOrder[K]().
	Order Order[K]
	// Arena backs all node allocation. Defaults to a fresh private Arena.
	// Share one Arena across Maps to share node-pool bookkeeping; this
	// does not require locking unless Maps sharing an Arena are mutated
	// concurrently.
	Arena *Arena[K, V]
}

// New returns the everywhere-default map: a nil root denotes the
// everywhere-default map, whose Get returns defaultValue for every
// key until Add/Set override specific keys.
func New[K comparable, V comparable](defaultValue V, opts *Options[K, V]) *Map[K, V] {
	if opts == nil {
		opts = &Options[K, V]{}
	}
	hasher := opts.Hasher
	if hasher == nil {
		hasher = DefaultHasher[K]()
	}
	order := opts.Order
	if order == nil {
		order = DefaultOrder[K]()
	}
	arena := opts.Arena
	if arena == nil {
		arena = NewArena[K, V]()
	}
	return &Map[K, V]{defaultValue: defaultValue, arena: arena, hasher: hasher, order: order}
}

// Default returns the map's default value.
func (m *Map[K, V]) Default() V { return m.defaultValue }

// LastDepth is a cheap O(1) estimate of the trie's depth: the length of the
// most recently added focusedNode, or 0 for an empty map. Named after
// persistent-map.h's PersistentMap::last_depth().
func (m *Map[K, V]) LastDepth() int {
	if m.root == nil {
		return 0
	}
	return int(m.root.length)
}

// getFocusedValue returns the value node holds for key, or the map's
// default if node is nil or doesn't hold key. Direct port of
// persistent-map.h's GetFocusedValue, folding in the nil-tree case its
// callers otherwise each check separately.
func (m *Map[K, V]) getFocusedValue(node *focusedNode[K, V], key K) V {
	if node == nil {
		return m.defaultValue
	}
	if v, ok := node.valueForKey(key, m.order); ok {
		return v
	}
	return m.defaultValue
}

// findHash locates the focusedNode whose focused key hashes to hash.
// Direct port of persistent-map.h's single-output FindHash.
func (m *Map[K, V]) findHash(hash HashStamp) *focusedNode[K, V] {
	tree := m.root
	level := 0
	for tree != nil && tree.keyHash != hash {
		for tree.keyHash.Xor(hash).Bit(level) == left {
			level++
		}
		if level < int(tree.length) {
			tree = tree.sideAt(level)
		} else {
			tree = nil
		}
		level++
	}
	return tree
}

// findHashPath locates the focusedNode for hash (or nil, if absent) while
// recording the off-side pointer array that a new focusedNode for hash
// would need. Direct port of persistent-map.h's path-recording FindHash
// overload.
func (m *Map[K, V]) findHashPath(hash HashStamp) (old *focusedNode[K, V], path [hashBits]*focusedNode[K, V], length int) {
	tree := m.root
	level := 0
	for tree != nil && tree.keyHash != hash {
		mapLength := int(tree.length)
		for tree.keyHash.Xor(hash).Bit(level) == left {
			if level < mapLength {
				path[level] = tree.sideAt(level)
			} else {
				path[level] = nil
			}
			level++
		}
		path[level] = tree
		if level < int(tree.length) {
			tree = tree.sideAt(level)
		} else {
			tree = nil
		}
		level++
	}
	if tree != nil {
		for level < int(tree.length) {
			path[level] = tree.sideAt(level)
			level++
		}
	}
	return tree, path, level
}

// Get returns the value bound to key, or the map's default if key has
// never been Add/Set to something else.
func (m *Map[K, V]) Get(key K) V {
	hash := m.hasher(key)
	node := m.findHash(hash)
	return m.getFocusedValue(node, key)
}

// Add returns a new Map with key bound to value, reusing every subtree
// unaffected by the change. If key is already bound to value, Add returns
// m itself unchanged (same root pointer).
func (m *Map[K, V]) Add(key K, value V) *Map[K, V] {
	hash := m.hasher(key)
	old, path, length := m.findHashPath(hash)
	if m.getFocusedValue(old, key) == value {
		return m
	}

	var bucket *collisionBucket[K, V]
	if old != nil && !(old.more == nil && old.key == key) {
		if old.more != nil {
			bucket = old.more.withSet(m.arena, key, value, m.order)
		} else {
			bucket = newCollisionBucket(m.arena, old.key, old.value, key, value, m.order)
		}
	}

	n := m.arena.newNode(length)
	n.key = key
	n.value = value
	n.keyHash = hash
	n.length = int8(length)
	n.more = bucket
	copy(n.side, path[:length])

	return &Map[K, V]{root: n, defaultValue: m.defaultValue, arena: m.arena, hasher: m.hasher, order: m.order}
}

// Set assigns Add(key, value) back into *m, in place. The prior tree
// remains valid and unaffected wherever else it's still referenced —
// Set mutates the handle variable, not the tree itself.
func (m *Map[K, V]) Set(key K, value V) {
	*m = *m.Add(key, value)
}

// Iterator returns a forward iterator over m's non-default entries in
// (HashStamp, key) order.
func (m *Map[K, V]) Iterator() Iterator[K, V] {
	return newIterator(m.root, m.defaultValue)
}

// Zip returns a ZipIterator walking m and other in lockstep.
func (m *Map[K, V]) Zip(other *Map[K, V]) *ZipIterator[K, V] {
	return newZipIterator(m.Iterator(), other.Iterator(), m.order)
}

// Equal reports whether m and other map every key to the same value and
// share the same default. Once the defaults match, identical root
// pointers short-circuit to true in O(1); otherwise this walks Zip over
// every non-default entry of both maps.
func (m *Map[K, V]) Equal(other *Map[K, V]) bool {
	if m.defaultValue != other.defaultValue {
		return false
	}
	if m.root == other.root {
		return true
	}
	z := m.Zip(other)
	for !z.Done() {
		_, av, bv := z.Entry()
		if av != bv {
			return false
		}
		z.Next()
	}
	return true
}
