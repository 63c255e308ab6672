package pmap

import (
	"encoding/base64"
	"encoding/binary"
	"errors"

	"github.com/minio/blake2b-simd"
	"github.com/sugawarayuuta/sonnet"
)

// defaultMarshal and defaultUnmarshal encode a focusedNode's key/value and
// a Map's default value when a Config leaves Marshal/Unmarshal nil.
// sonnet is a drop-in encoding/json replacement, used here rather than the
// standard library since node payloads are small, numerous, and on the hot
// path of every Save/Load.
var (
	defaultMarshal   = sonnet.Marshal
	defaultUnmarshal = sonnet.Unmarshal
)

// contentHash names a blob by its content: blake2b-256 of the encoded
// bytes, base64 (URL, unpadded).
func contentHash(encoded []byte) string {
	sum := blake2b.Sum256(encoded)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// wireNode is the serialized form of a focusedNode. Side holds one
// content-hash name per off-side pointer, "" for a nil slot; Bucket holds
// the content-hash name of the node's collisionBucket, "" if it has none.
//
// The wire format is manual length-then-bytes framing rather than
// marshaling a Go struct directly with the configured marshal func: node
// fields mix raw uint32/int8 with opaque marshaled K/V bytes, so a manual
// frame avoids forcing the configured marshal func to also understand
// these struct shapes.
type wireNode struct {
	Key    []byte
	Value  []byte
	Hash   uint32
	Length int8
	Side   []string // each entry is a content-hash name, or "" for nil
	Bucket string   // "" if no bucket
}

type wireBucket struct {
	Keys   [][]byte
	Values [][]byte
}

func appendLenPrefixed(buf []byte, b []byte) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], uint64(len(b)))
	buf = append(buf, tmp[:n]...)
	return append(buf, b...)
}

func readLenPrefixed(buf []byte) (body, rest []byte, err error) {
	length, n := binary.Uvarint(buf)
	if n <= 0 {
		return nil, nil, errors.New("pmap: codec: bad length prefix")
	}
	buf = buf[n:]
	if uint64(len(buf)) < length {
		return nil, nil, errors.New("pmap: codec: truncated frame")
	}
	return buf[:length], buf[length:], nil
}

func encodeWireNode(n *wireNode) ([]byte, error) {
	var buf []byte
	buf = appendLenPrefixed(buf, n.Key)
	buf = appendLenPrefixed(buf, n.Value)

	var hashBytes [4]byte
	binary.BigEndian.PutUint32(hashBytes[:], n.Hash)
	buf = append(buf, hashBytes[:]...)
	buf = append(buf, byte(n.Length))

	var countBuf [binary.MaxVarintLen64]byte
	c := binary.PutUvarint(countBuf[:], uint64(len(n.Side)))
	buf = append(buf, countBuf[:c]...)
	for _, name := range n.Side {
		buf = appendLenPrefixed(buf, []byte(name))
	}
	buf = appendLenPrefixed(buf, []byte(n.Bucket))
	return buf, nil
}

func decodeWireNode(buf []byte, n *wireNode) error {
	var err error
	n.Key, buf, err = readLenPrefixed(buf)
	if err != nil {
		return err
	}
	n.Value, buf, err = readLenPrefixed(buf)
	if err != nil {
		return err
	}
	if len(buf) < 5 {
		return errors.New("pmap: codec: truncated node header")
	}
	n.Hash = binary.BigEndian.Uint32(buf[:4])
	n.Length = int8(buf[4])
	buf = buf[5:]

	count, c := binary.Uvarint(buf)
	if c <= 0 {
		return errors.New("pmap: codec: bad side count")
	}
	buf = buf[c:]
	n.Side = make([]string, count)
	for i := range n.Side {
		var name []byte
		name, buf, err = readLenPrefixed(buf)
		if err != nil {
			return err
		}
		n.Side[i] = string(name)
	}
	bucket, _, err := readLenPrefixed(buf)
	if err != nil {
		return err
	}
	n.Bucket = string(bucket)
	return nil
}

func encodeWireBucket(b *wireBucket) ([]byte, error) {
	var buf []byte
	var countBuf [binary.MaxVarintLen64]byte
	c := binary.PutUvarint(countBuf[:], uint64(len(b.Keys)))
	buf = append(buf, countBuf[:c]...)
	for i := range b.Keys {
		buf = appendLenPrefixed(buf, b.Keys[i])
		buf = appendLenPrefixed(buf, b.Values[i])
	}
	return buf, nil
}

func decodeWireBucket(buf []byte, b *wireBucket) error {
	count, c := binary.Uvarint(buf)
	if c <= 0 {
		return errors.New("pmap: codec: bad bucket count")
	}
	buf = buf[c:]
	b.Keys = make([][]byte, count)
	b.Values = make([][]byte, count)
	var err error
	for i := range b.Keys {
		b.Keys[i], buf, err = readLenPrefixed(buf)
		if err != nil {
			return err
		}
		b.Values[i], buf, err = readLenPrefixed(buf)
		if err != nil {
			return err
		}
	}
	return nil
}
