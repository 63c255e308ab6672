package pmap

import (
	"context"
	"fmt"
	"sync"
)

type inMemoryPersist struct {
	mu      sync.Mutex
	entries map[string][]byte
}

// NewInMemoryPersist returns a Persist that stores serialized nodes in a
// map, for tests and for programs that want persistence machinery (content
// addressing, snapshotting) without a durable backing store.
func NewInMemoryPersist() Persist {
	return &inMemoryPersist{entries: make(map[string][]byte)}
}

func (p *inMemoryPersist) Store(_ context.Context, name string, bytes []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[name] = bytes
	return nil
}

func (p *inMemoryPersist) Load(_ context.Context, name string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	bytes, ok := p.entries[name]
	if !ok {
		return nil, fmt.Errorf("pmap: inMemoryPersist: no entry for %s", name)
	}
	return bytes, nil
}
