package file

import (
	"context"
	"encoding/base64"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/minio/blake2b-simd"
)

// Persist implements the pmap.Persist interface for storing and loading
// snapshot blobs as files, one blob per file named after its content hash.
type Persist struct {
	basepath string
}

// Load loads the bytes persisted in the named file and verifies name is
// still that file's content hash before returning it, catching a file
// that's been truncated or edited out from under the store.
func (p Persist) Load(ctx context.Context, name string) ([]byte, error) {
	b, err := ioutil.ReadFile(filepath.Join(p.basepath, name))
	if err != nil {
		return nil, err
	}
	if got := hashName(b); got != name {
		return nil, fmt.Errorf("file: content hash mismatch for %s: file now hashes to %s", name, got)
	}
	return b, nil
}

// hashName names bytes the same way pmap names a stored node: blake2b-256,
// base64 (URL, unpadded).
func hashName(b []byte) string {
	sum := blake2b.Sum256(b)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Store persists the given bytes in a file of the given name, if it
// doesn't exist already.
func (p Persist) Store(ctx context.Context, name string, bytes []byte) error {
	path := filepath.Join(p.basepath, name)
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ioutil.WriteFile(filepath.Join(p.basepath, name), bytes, 0o644)
	}
	return nil
}

// NewPersistForPath returns a Persist that loads and stores snapshot blobs
// as files in the directory at the given path.
//
//	p := NewPersistForPath("/var/db/mymap")
//	blob, err := p.Load(ctx, "Mk3PAn3UowqTLEQfNlol6GsXPe-kuOWJSCU0cbgbcs8")
func NewPersistForPath(path string) Persist {
	return Persist{path}
}
