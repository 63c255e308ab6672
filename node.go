package pmap

// focusedNode is an immutable record that simultaneously represents every
// trie level along one root-to-leaf path — the Go re-expression of
// persistent-map.h's FocusedTree. side[i] holds the off-side subtree at
// depth i for i < length; side is nil-length for a fresh single-entry map.
//
// FocusedTree's path_array flexible array member becomes a plain slice
// here, backed by the same Arena rather than the node's own trailing
// memory.
type focusedNode[K comparable, V comparable] struct {
	key     K
	value   V
	keyHash HashStamp
	length  int8
	more    *collisionBucket[K, V]
	side    []*focusedNode[K, V]
}

// sideAt returns side[i]. Callers only reach here once their own traversal
// has already established i < n.length, so len(n.side) should always cover
// i; sideAt is the one place that assumption gets checked, panicking with a
// legible invariantError instead of letting a focusedNode decoded from a
// corrupt snapshot (length and len(side) disagreeing) fail with runtime's
// bare "index out of range".
func (n *focusedNode[K, V]) sideAt(i int) *focusedNode[K, V] {
	if i < 0 || i >= len(n.side) {
		panic(invariantError{"focusedNode: side index out of range", [2]int{i, len(n.side)}})
	}
	return n.side[i]
}

// child returns the FocusedTree representing n's child at depth level on
// side bit: n itself (still representing the deeper level) if bit matches
// n's own hash at that depth, else the stored side-pointer. Direct port of
// persistent-map.h's PersistentMap::GetChild.
func (n *focusedNode[K, V]) child(level int, bit Bit) *focusedNode[K, V] {
	if n.keyHash.Bit(level) == bit {
		return n
	}
	if level < int(n.length) {
		return n.sideAt(level)
	}
	return nil
}

// valueForKey returns the value focusedNode n stores for key, or ok=false
// if n's focused leaf (or collision bucket) doesn't contain key. n must be
// non-nil; a nil subtree (meaning "only default values") is handled by the
// caller. Direct port of persistent-map.h's GetFocusedValue.
func (n *focusedNode[K, V]) valueForKey(key K, order Order[K]) (V, bool) {
	if n.more != nil {
		return n.more.get(key, order)
	}
	if n.key == key {
		return n.value, true
	}
	var zero V
	return zero, false
}
