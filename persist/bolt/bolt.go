// Package bolt implements a pmap.Persist backed by a single bbolt file,
// storing every blob in one bucket keyed by its content-hash name.
//
// Grounded on elves-elvish's pkg/store (cmd.go/dir.go): the
// CreateBucketIfNotExists-in-init, db.Update/db.View-per-operation style is
// carried over directly, adapted from a command/directory history store to
// a content-addressed blob store.
package bolt

import (
	"context"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var blobBucket = []byte("pmap-blobs")

// Persist implements pmap.Persist for a bbolt-backed store.
type Persist struct {
	db *bolt.DB
}

// Open opens (creating if needed) a bbolt file at path and returns a
// Persist backed by it. The caller must Close it when done.
func Open(path string) (*Persist, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("bolt: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(blobBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bolt: create bucket: %w", err)
	}
	return &Persist{db: db}, nil
}

// Close closes the underlying bbolt file.
func (p *Persist) Close() error { return p.db.Close() }

// Store persists bytes under name, overwriting any existing entry. Names
// are content hashes, so an overwrite writes the same bytes again, and this
// doesn't need file.Persist's explicit existence check.
func (p *Persist) Store(_ context.Context, name string, bytes []byte) error {
	return p.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(blobBucket)
		return b.Put([]byte(name), bytes)
	})
}

// Load retrieves the bytes previously Stored under name.
func (p *Persist) Load(_ context.Context, name string) ([]byte, error) {
	var out []byte
	err := p.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(blobBucket)
		v := b.Get([]byte(name))
		if v == nil {
			return fmt.Errorf("bolt: no entry for %s", name)
		}
		out = make([]byte, len(v))
		copy(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
