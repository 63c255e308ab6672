package pmap

// ZipIterator walks two Maps in lockstep, in (HashStamp, key) order,
// producing a triple for every key where at least one side differs from
// its own default. Direct port of persistent-map.h's double_iterator: at
// each step the "behind" iterator(s) are the ones actually positioned at
// the yielded key; the other side reports its default in the absent slot
// and does not advance.
type ZipIterator[K comparable, V comparable] struct {
	a, b               Iterator[K, V]
	order              Order[K]
	aCurrent, bCurrent bool
}

// newZipIterator builds a ZipIterator over two already-positioned forward
// iterators, using order to break ties when both sides are at hashes that
// happen to collide but differ in key.
func newZipIterator[K comparable, V comparable](a, b Iterator[K, V], order Order[K]) *ZipIterator[K, V] {
	z := &ZipIterator[K, V]{a: a, b: b, order: order}
	z.sync()
	return z
}

// sync recomputes which side(s) are positioned at the smaller (or equal)
// key, mirroring persistent-map.h's double_iterator constructor.
func (z *ZipIterator[K, V]) sync() {
	if z.a.Equal(&z.b) {
		z.aCurrent, z.bCurrent = true, true
	} else if z.a.less(&z.b, z.order) {
		z.aCurrent, z.bCurrent = true, false
	} else {
		z.aCurrent, z.bCurrent = false, true
	}
}

// Done reports whether both sides are exhausted.
func (z *ZipIterator[K, V]) Done() bool { return z.a.Done() && z.b.Done() }

// Entry returns the current key and its value on each side (the other
// side's default value stands in when that side isn't positioned at key).
func (z *ZipIterator[K, V]) Entry() (key K, a V, b V) {
	if z.aCurrent {
		k, av := z.a.Entry()
		if z.bCurrent {
			_, bv := z.b.Entry()
			return k, av, bv
		}
		return k, av, z.b.defaultValue
	}
	k, bv := z.b.Entry()
	return k, z.a.defaultValue, bv
}

// Next advances whichever side(s) were positioned at the just-yielded key.
// Calling Next once Done is a programmer bug: both sides claim to be at
// the end, yet Next was still called.
func (z *ZipIterator[K, V]) Next() {
	if z.Done() {
		panic(invariantError{"ZipIterator.Next: called past end", nil})
	}
	if z.aCurrent {
		z.a.Next()
	}
	if z.bCurrent {
		z.b.Next()
	}
	z.sync()
}
