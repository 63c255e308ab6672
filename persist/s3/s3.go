package s3

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io/ioutil"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/imdone/pmap"
	"github.com/minio/blake2b-simd"
)

type S3Interface interface {
	DeleteObjectWithContext(ctx aws.Context, input *s3.DeleteObjectInput, opts ...request.Option) (*s3.DeleteObjectOutput, error)
	GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error)
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
}

// Persist implements the pmap.Persist interface for storing and loading
// snapshot blobs as S3 objects. Repeat Stores of a name already known to be
// persisted are deduplicated against seen, a pmap.NodeCache, rather than
// against S3 object existence: names are content hashes, so once seen is
// non-empty for a name the object is guaranteed unchanged.
type Persist struct {
	s3         S3Interface
	BucketName string
	Prefix     string
	seen       pmap.NodeCache
}

// Load loads the bytes persisted in the named object and verifies name is
// still that object's content hash before returning it.
func (p *Persist) Load(ctx context.Context, name string) ([]byte, error) {
	input := s3.GetObjectInput{
		Bucket: &p.BucketName,
		Key:    aws.String(p.Prefix + name),
	}
	output, err := p.s3.GetObjectWithContext(ctx, &input)
	if err != nil {
		return nil, err
	}
	b, err := ioutil.ReadAll(output.Body)
	if err != nil {
		return nil, err
	}
	if got := hashName(b); got != name {
		return nil, fmt.Errorf("s3: content hash mismatch for %s: object now hashes to %s", name, got)
	}
	p.seen.Add(name, b)
	return b, nil
}

// Store persists the given bytes as an object of the given name, if it
// isn't already known (via seen) to be persisted.
func (p *Persist) Store(ctx context.Context, name string, b []byte) error {
	if p.seen.Contains(name) {
		return nil
	}
	input := s3.PutObjectInput{
		Bucket: &p.BucketName,
		Key:    aws.String(p.Prefix + name),
		Body:   bytes.NewReader(b),
	}
	_, err := p.s3.PutObjectWithContext(ctx, &input)
	if err != nil {
		return err
	}
	p.seen.Add(name, b)
	return nil
}

// NewPersist returns a Persist that loads and stores snapshot blobs as
// objects with the given S3 client and bucket name, deduplicating repeat
// Stores against an internal 1000-entry pmap.NodeCache.
func NewPersist(client S3Interface, bucketName, prefix string) *Persist {
	return &Persist{s3: client, BucketName: bucketName, Prefix: prefix, seen: pmap.NewNodeCache(1000)}
}

// hashName names bytes the same way pmap names a stored node: blake2b-256,
// base64 (URL, unpadded).
func hashName(b []byte) string {
	sum := blake2b.Sum256(b)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
