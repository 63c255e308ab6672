package pmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZipBothEmpty(t *testing.T) {
	a := New[string, int](0, nil)
	b := New[string, int](0, nil)
	z := a.Zip(b)
	assert.True(t, z.Done())
}

func TestZipDisjointKeys(t *testing.T) {
	a := New[string, int](0, nil)
	a.Set("a", 1)
	b := New[string, int](0, nil)
	b.Set("b", 2)

	got := map[string][2]int{}
	z := a.Zip(b)
	for !z.Done() {
		k, av, bv := z.Entry()
		got[k] = [2]int{av, bv}
		z.Next()
	}
	assert.Equal(t, map[string][2]int{"a": {1, 0}, "b": {0, 2}}, got)
}

func TestZipSharedAndChangedKeys(t *testing.T) {
	a := New[string, int](0, nil)
	a.Set("same", 1)
	a.Set("changed", 10)
	b := New[string, int](0, nil)
	b.Set("same", 1)
	b.Set("changed", 20)

	got := map[string][2]int{}
	z := a.Zip(b)
	for !z.Done() {
		k, av, bv := z.Entry()
		got[k] = [2]int{av, bv}
		z.Next()
	}
	assert.Equal(t, map[string][2]int{"same": {1, 1}, "changed": {10, 20}}, got)
}

func TestZipNextPastEndPanics(t *testing.T) {
	a := New[string, int](0, nil)
	b := New[string, int](0, nil)
	z := a.Zip(b)
	assert.Panics(t, func() { z.Next() })
}

func TestZipUsedForEqual(t *testing.T) {
	a := New[string, int](0, nil).Add("x", 1)
	b := New[string, int](0, nil).Add("x", 1)
	assert.True(t, a.Equal(b))

	c := New[string, int](0, nil).Add("x", 2)
	assert.False(t, a.Equal(c))
}
