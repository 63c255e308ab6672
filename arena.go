package pmap

// Arena is a region allocator standing in for V8's Zone: a collaborator
// that owns node lifetime independent of any single Map handle. Go doesn't
// expose raw byte allocation the way Zone does, so Arena instead pools the
// two allocation shapes the trie actually needs — focusedNodes (with a
// variable-length slice of side-pointers) and collisionBuckets — and frees
// them wholesale via Reset rather than per-node.
//
// Arena keeps no internal lock: multiple goroutines calling Add against
// Maps sharing one Arena must externally serialize. Persist implementations
// make the same tradeoff, documenting their own concurrency guarantees
// rather than Arena promising one for them.
type Arena[K comparable, V comparable] struct {
	nodes   []*focusedNode[K, V]
	buckets []*collisionBucket[K, V]
}

// NewArena returns a fresh, empty Arena.
func NewArena[K comparable, V comparable]() *Arena[K, V] {
	return &Arena[K, V]{}
}

// newNode allocates a focusedNode with length inline side-pointer slots.
func (a *Arena[K, V]) newNode(length int) *focusedNode[K, V] {
	n := &focusedNode[K, V]{}
	if length > 0 {
		n.side = make([]*focusedNode[K, V], length)
	}
	a.nodes = append(a.nodes, n)
	return n
}

// newBucket allocates an empty collisionBucket.
func (a *Arena[K, V]) newBucket() *collisionBucket[K, V] {
	b := &collisionBucket[K, V]{}
	a.buckets = append(a.buckets, b)
	return b
}

// Len returns the number of focusedNodes ever allocated from this Arena
// (including ones no longer reachable from any live Map handle).
func (a *Arena[K, V]) Len() int { return len(a.nodes) }

// Reset drops the Arena's own references to every node and bucket it
// allocated. Any Map handle still holding a root from before Reset remains
// individually valid; Reset only relinquishes the Arena's bulk-retention of
// allocations, letting Go's GC reclaim whatever no handle still reaches.
func (a *Arena[K, V]) Reset() {
	a.nodes = nil
	a.buckets = nil
}
