package pmap

import (
	"fmt"
	"strings"
)

// String renders m as "{k1: v1, k2: v2, ...}" in iteration order, a direct
// port of persistent-map.h's operator<<.
func (m *Map[K, V]) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	it := m.Iterator()
	for !it.Done() {
		if !first {
			b.WriteString(", ")
		}
		first = false
		k, v := it.Entry()
		fmt.Fprintf(&b, "%v: %v", k, v)
		it.Next()
	}
	b.WriteByte('}')
	return b.String()
}

var _ fmt.Stringer = (*Map[string, int])(nil)
