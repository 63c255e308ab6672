package pmap

import (
	"context"
	"fmt"
	"sync"
)

// Persist is the interface for storing and loading serialized focusedNodes
// and collision buckets by content hash. The given string name corresponds
// to content that is immutable once stored — a Persist implementation never
// needs to handle the same name being Store-d with different bytes.
//
// Snapshots are loaded eagerly in one Load call: focusedNode.side holds
// live pointers rather than lazy links, so Persist itself carries no
// notion of a partially-resolved tree.
type Persist interface {
	// Store makes bytes accessible under name, a content hash of bytes
	// computed by the caller.
	Store(ctx context.Context, name string, bytes []byte) error
	// Load retrieves the bytes previously Stored under name.
	Load(ctx context.Context, name string) ([]byte, error)
}

// Snapshot identifies a Map whose nodes have been written to a Persist: a
// small, serializable descriptor a caller keeps around (in a database row,
// a config file, wherever) to later reconstitute the Map via Load.
type Snapshot struct {
	// Root is the content-hash name of the map's root node, or "" for the
	// everywhere-default map.
	Root string
	// Default is the marshaled default value, so Load can reconstruct a
	// Map with the same semantics as the one Saved.
	Default []byte
}

// Config controls how a Map's nodes are marshaled and where they're
// stored.
type Config[K comparable, V comparable] struct {
	// Store is used to persist and retrieve serialized nodes. Required.
	Store Persist
	// Cache deduplicates re-storing of already-persisted nodes and avoids
	// re-Loading the bytes of already-loaded ones. Shared safely across Saves
	// and Loads of different Maps. Optional.
	Cache NodeCache
	// Marshal encodes a key or value. Defaults to sonnet.Marshal.
	Marshal func(interface{}) ([]byte, error)
	// Unmarshal decodes a key or value. Defaults to sonnet.Unmarshal.
	Unmarshal func([]byte, interface{}) error
	// Concurrency bounds the number of in-flight Store/Load calls during
	// a single Save/Load. Defaults to 32.
	Concurrency int
}

func (c *Config[K, V]) marshal() func(interface{}) ([]byte, error) {
	if c.Marshal != nil {
		return c.Marshal
	}
	return defaultMarshal
}

func (c *Config[K, V]) unmarshal() func([]byte, interface{}) error {
	if c.Unmarshal != nil {
		return c.Unmarshal
	}
	return defaultUnmarshal
}

func (c *Config[K, V]) concurrency() int {
	if c.Concurrency > 0 {
		return c.Concurrency
	}
	return 32
}

// Save writes every focusedNode and collisionBucket reachable from m's root
// that isn't already present (per cfg.Cache or a prior Store of the same
// content hash) and returns a Snapshot describing the result.
//
// Subtrees are walked by concurrent goroutines, with at most
// cfg.Concurrency Store calls in flight at once; the first error wins and
// subsequent work is skipped once set.
func Save[K comparable, V comparable](ctx context.Context, m *Map[K, V], cfg *Config[K, V]) (Snapshot, error) {
	if cfg == nil || cfg.Store == nil {
		return Snapshot{}, fmt.Errorf("persist: Config.Store is required")
	}
	defaultBytes, err := cfg.marshal()(m.defaultValue)
	if err != nil {
		return Snapshot{}, fmt.Errorf("marshal default value: %w", err)
	}
	if m.root == nil {
		return Snapshot{Default: defaultBytes}, nil
	}

	sp := newStoreState[K, V](ctx, cfg.Store, cfg.Cache, cfg.marshal(), cfg.concurrency())
	rootName, err := sp.storeNode(m.root)
	sp.wait()
	if err != nil {
		return Snapshot{}, err
	}
	if err := sp.firstError(); err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Root: rootName, Default: defaultBytes}, nil
}

// Load reconstructs a Map from a Snapshot, eagerly resolving every node and
// collision bucket the snapshot's root transitively references.
//
// Loading is eager rather than lazy, since focusedNode.side holds live
// pointers, not lazy links.
func Load[K comparable, V comparable](ctx context.Context, snap Snapshot, cfg *Config[K, V], opts *Options[K, V]) (*Map[K, V], error) {
	if cfg == nil || cfg.Store == nil {
		return nil, fmt.Errorf("persist: Config.Store is required")
	}
	m := New[K, V](zeroOf[V](), opts)
	if err := cfg.unmarshal()(snap.Default, &m.defaultValue); err != nil {
		return nil, fmt.Errorf("unmarshal default value: %w", err)
	}
	if snap.Root == "" {
		return m, nil
	}

	lp := newLoadState[K, V](ctx, cfg.Store, cfg.Cache, cfg.unmarshal(), cfg.concurrency())
	root, err := lp.loadNode(snap.Root)
	lp.wait()
	if err != nil {
		return nil, err
	}
	if err := lp.firstError(); err != nil {
		return nil, err
	}
	m.root = root
	return m, nil
}

func zeroOf[V any]() V {
	var z V
	return z
}

// storeState runs the bounded-concurrency store walk for Save.
type storeState[K comparable, V comparable] struct {
	ctx     context.Context
	persist Persist
	cache   NodeCache
	marshal func(interface{}) ([]byte, error)
	gate    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	err     error
}

func newStoreState[K comparable, V comparable](ctx context.Context, persist Persist, cache NodeCache, marshal func(interface{}) ([]byte, error), concurrency int) *storeState[K, V] {
	return &storeState[K, V]{ctx: ctx, persist: persist, cache: cache, marshal: marshal, gate: make(chan struct{}, concurrency)}
}

func (s *storeState[K, V]) wait() { s.wg.Wait() }

func (s *storeState[K, V]) firstError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *storeState[K, V]) setError(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
}

// storeNode stores n and everything it references, returning n's content
// hash name. Children are stored concurrently; storeBytes bounds the
// number of in-flight Store calls to the configured concurrency.
func (s *storeState[K, V]) storeNode(n *focusedNode[K, V]) (string, error) {
	if s.firstError() != nil {
		return "", s.firstError()
	}
	sideNames := make([]string, len(n.side))
	childErrs := make([]error, len(n.side))
	var children sync.WaitGroup
	for i, child := range n.side {
		if child == nil {
			continue
		}
		i, child := i, child
		s.wg.Add(1)
		children.Add(1)
		go func() {
			defer s.wg.Done()
			defer children.Done()
			name, err := s.storeNode(child)
			if err != nil {
				childErrs[i] = err
				s.setError(err)
				return
			}
			sideNames[i] = name
		}()
	}

	var bucketName string
	if n.more != nil {
		name, err := s.storeBucket(n.more)
		if err != nil {
			s.setError(err)
			return "", err
		}
		bucketName = name
	}

	children.Wait()
	for _, err := range childErrs {
		if err != nil {
			return "", err
		}
	}

	keyBytes, err := s.marshal(n.key)
	if err != nil {
		return "", fmt.Errorf("marshal key: %w", err)
	}
	valueBytes, err := s.marshal(n.value)
	if err != nil {
		return "", fmt.Errorf("marshal value: %w", err)
	}
	wire := wireNode{
		Key:    keyBytes,
		Value:  valueBytes,
		Hash:   uint32(n.keyHash),
		Length: n.length,
		Side:   sideNames,
		Bucket: bucketName,
	}
	encoded, err := encodeWireNode(&wire)
	if err != nil {
		return "", err
	}
	return s.storeBytes(encoded)
}

func (s *storeState[K, V]) storeBucket(b *collisionBucket[K, V]) (string, error) {
	keyBytes := make([][]byte, len(b.keys))
	valueBytes := make([][]byte, len(b.values))
	for i := range b.keys {
		kb, err := s.marshal(b.keys[i])
		if err != nil {
			return "", fmt.Errorf("marshal bucket key: %w", err)
		}
		vb, err := s.marshal(b.values[i])
		if err != nil {
			return "", fmt.Errorf("marshal bucket value: %w", err)
		}
		keyBytes[i], valueBytes[i] = kb, vb
	}
	encoded, err := encodeWireBucket(&wireBucket{Keys: keyBytes, Values: valueBytes})
	if err != nil {
		return "", err
	}
	return s.storeBytes(encoded)
}

func (s *storeState[K, V]) storeBytes(encoded []byte) (string, error) {
	name := contentHash(encoded)
	if s.cache != nil && s.cache.Contains(name) {
		return name, nil
	}
	s.gate <- struct{}{}
	err := s.persist.Store(s.ctx, name, encoded)
	<-s.gate
	if err != nil {
		return "", fmt.Errorf("persist store %s: %w", name, err)
	}
	if s.cache != nil {
		s.cache.Add(name, encoded)
	}
	return name, nil
}

// loadState runs the bounded-concurrency load walk for Load.
type loadState[K comparable, V comparable] struct {
	ctx       context.Context
	persist   Persist
	cache     NodeCache
	unmarshal func([]byte, interface{}) error
	gate      chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	err       error
}

func newLoadState[K comparable, V comparable](ctx context.Context, persist Persist, cache NodeCache, unmarshal func([]byte, interface{}) error, concurrency int) *loadState[K, V] {
	return &loadState[K, V]{ctx: ctx, persist: persist, cache: cache, unmarshal: unmarshal, gate: make(chan struct{}, concurrency)}
}

func (l *loadState[K, V]) wait() { l.wg.Wait() }

func (l *loadState[K, V]) firstError() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

func (l *loadState[K, V]) setError(err error) {
	l.mu.Lock()
	if l.err == nil {
		l.err = err
	}
	l.mu.Unlock()
}

func (l *loadState[K, V]) loadBytes(name string) ([]byte, error) {
	if l.cache != nil {
		if cached, ok := l.cache.Get(name); ok {
			return cached, nil
		}
	}
	l.gate <- struct{}{}
	encoded, err := l.persist.Load(l.ctx, name)
	<-l.gate
	if err != nil {
		return nil, fmt.Errorf("persist load %s: %w", name, err)
	}
	if l.cache != nil {
		l.cache.Add(name, encoded)
	}
	return encoded, nil
}

func (l *loadState[K, V]) loadNode(name string) (*focusedNode[K, V], error) {
	if l.firstError() != nil {
		return nil, l.firstError()
	}
	encoded, err := l.loadBytes(name)
	if err != nil {
		return nil, err
	}
	var wire wireNode
	if err := decodeWireNode(encoded, &wire); err != nil {
		return nil, fmt.Errorf("decode node %s: %w", name, err)
	}

	n := &focusedNode[K, V]{keyHash: HashStamp(wire.Hash), length: wire.Length, side: make([]*focusedNode[K, V], len(wire.Side))}
	if err := l.unmarshal(wire.Key, &n.key); err != nil {
		return nil, fmt.Errorf("unmarshal key in %s: %w", name, err)
	}
	if err := l.unmarshal(wire.Value, &n.value); err != nil {
		return nil, fmt.Errorf("unmarshal value in %s: %w", name, err)
	}

	childErrs := make([]error, len(wire.Side))
	var children sync.WaitGroup
	for i, sideName := range wire.Side {
		if sideName == "" {
			continue
		}
		i, sideName := i, sideName
		l.wg.Add(1)
		children.Add(1)
		go func() {
			defer l.wg.Done()
			defer children.Done()
			child, err := l.loadNode(sideName)
			if err != nil {
				childErrs[i] = err
				l.setError(err)
				return
			}
			n.side[i] = child
		}()
	}

	var bucket *collisionBucket[K, V]
	if wire.Bucket != "" {
		bucket, err = l.loadBucket(wire.Bucket)
		if err != nil {
			l.setError(err)
			return nil, err
		}
	}

	children.Wait()
	for _, err := range childErrs {
		if err != nil {
			return nil, err
		}
	}
	n.more = bucket
	return n, nil
}

func (l *loadState[K, V]) loadBucket(name string) (*collisionBucket[K, V], error) {
	encoded, err := l.loadBytes(name)
	if err != nil {
		return nil, err
	}
	var wire wireBucket
	if err := decodeWireBucket(encoded, &wire); err != nil {
		return nil, fmt.Errorf("decode bucket %s: %w", name, err)
	}
	b := &collisionBucket[K, V]{keys: make([]K, len(wire.Keys)), values: make([]V, len(wire.Values))}
	for i := range wire.Keys {
		if err := l.unmarshal(wire.Keys[i], &b.keys[i]); err != nil {
			return nil, fmt.Errorf("unmarshal bucket key[%d] in %s: %w", i, name, err)
		}
		if err := l.unmarshal(wire.Values[i], &b.values[i]); err != nil {
			return nil, fmt.Errorf("unmarshal bucket value[%d] in %s: %w", i, name, err)
		}
	}
	return b, nil
}
