package pmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashStampBitMSBFirst(t *testing.T) {
	h := HashStamp(0x80000001)
	assert.Equal(t, right, h.Bit(0))
	assert.Equal(t, left, h.Bit(1))
	assert.Equal(t, right, h.Bit(31))
}

func TestHashStampBitOutOfRangePanics(t *testing.T) {
	h := HashStamp(0)
	assert.Panics(t, func() { h.Bit(-1) })
	assert.Panics(t, func() { h.Bit(32) })
}

func TestHashStampLessMatchesUnsignedOrder(t *testing.T) {
	assert.True(t, HashStamp(1).Less(HashStamp(2)))
	assert.False(t, HashStamp(2).Less(HashStamp(1)))
	assert.False(t, HashStamp(1).Less(HashStamp(1)))
}

func TestHashStampXorEqual(t *testing.T) {
	a, b := HashStamp(0xdeadbeef), HashStamp(0xdeadbeef)
	assert.Equal(t, HashStamp(0), a.Xor(b))
	assert.True(t, a.Equal(b))
}

func TestFirstDiff(t *testing.T) {
	a := HashStamp(0b10110000_00000000_00000000_00000000)
	b := HashStamp(0b10100000_00000000_00000000_00000000)
	require.Equal(t, 3, firstDiff(a, b, 0))
	assert.Equal(t, hashBits, firstDiff(a, a, 0))
}
