package mmap

import (
	"iter"
	"sort"
)

// Ordered is satisfied by any type with a total order expressed as a three-way
// comparison, mirroring the Compare methods on identity.PatchId and identity.NodeId.
// Multimap keys and values must both implement it so that Get and GetFrom can walk
// entries in sorted order.
type Ordered[T any] interface {
	Compare(other T) int
}

// entry is one key's bucket: a key paired with its values, kept in ascending order.
type entry[K Ordered[K], V Ordered[V]] struct {
	key    K
	values []V
}

// Multimap is an ordered multimap: each key owns an ordered set of values (no
// duplicate key/value pairs), and both keys and the values within a key's bucket can
// be range-queried in sorted order via GetFrom.
//
// The zero value is not usable; construct with New. Not safe for concurrent use.
type Multimap[K Ordered[K], V Ordered[V]] struct {
	entries []entry[K, V]
}

// New returns an empty Multimap.
func New[K Ordered[K], V Ordered[V]]() *Multimap[K, V] {
	return &Multimap[K, V]{}
}

// Clone returns a deep copy of m: mutating the clone never affects m and vice versa.
func (m *Multimap[K, V]) Clone() *Multimap[K, V] {
	out := &Multimap[K, V]{entries: make([]entry[K, V], len(m.entries))}
	for i, e := range m.entries {
		out.entries[i] = entry[K, V]{key: e.key, values: append([]V(nil), e.values...)}
	}
	return out
}

// findKey returns the index of key's bucket and whether it was found.
func (m *Multimap[K, V]) findKey(key K) (int, bool) {
	i := sort.Search(len(m.entries), func(i int) bool {
		return m.entries[i].key.Compare(key) >= 0
	})
	if i < len(m.entries) && m.entries[i].key.Compare(key) == 0 {
		return i, true
	}
	return i, false
}

// findValue returns the index of val within bucket.values and whether it was found.
func findValue[V Ordered[V]](values []V, val V) (int, bool) {
	i := sort.Search(len(values), func(i int) bool {
		return values[i].Compare(val) >= 0
	})
	if i < len(values) && values[i].Compare(val) == 0 {
		return i, true
	}
	return i, false
}

// Insert adds the pair (key, val). It reports whether the pair was newly inserted;
// inserting a pair that is already present is a no-op and returns false.
func (m *Multimap[K, V]) Insert(key K, val V) bool {
	ki, found := m.findKey(key)
	if !found {
		m.entries = append(m.entries, entry[K, V]{})
		copy(m.entries[ki+1:], m.entries[ki:])
		m.entries[ki] = entry[K, V]{key: key}
	}
	bucket := &m.entries[ki]
	vi, found := findValue(bucket.values, val)
	if found {
		return false
	}
	bucket.values = append(bucket.values, val)
	copy(bucket.values[vi+1:], bucket.values[vi:])
	bucket.values[vi] = val
	return true
}

// Remove deletes the pair (key, val), reporting whether it was present. If key's
// bucket becomes empty, the key itself is dropped.
func (m *Multimap[K, V]) Remove(key K, val V) bool {
	ki, found := m.findKey(key)
	if !found {
		return false
	}
	bucket := &m.entries[ki]
	vi, found := findValue(bucket.values, val)
	if !found {
		return false
	}
	bucket.values = append(bucket.values[:vi], bucket.values[vi+1:]...)
	if len(bucket.values) == 0 {
		m.entries = append(m.entries[:ki], m.entries[ki+1:]...)
	}
	return true
}

// RemoveAll deletes key's entire bucket, reporting whether it had any values.
func (m *Multimap[K, V]) RemoveAll(key K) bool {
	ki, found := m.findKey(key)
	if !found {
		return false
	}
	m.entries = append(m.entries[:ki], m.entries[ki+1:]...)
	return true
}

// Contains reports whether (key, val) is present.
func (m *Multimap[K, V]) Contains(key K, val V) bool {
	ki, found := m.findKey(key)
	if !found {
		return false
	}
	_, found = findValue(m.entries[ki].values, val)
	return found
}

// ContainsKey reports whether key has any values at all.
func (m *Multimap[K, V]) ContainsKey(key K) bool {
	_, found := m.findKey(key)
	return found
}

// Count returns the number of values stored under key.
func (m *Multimap[K, V]) Count(key K) int {
	ki, found := m.findKey(key)
	if !found {
		return 0
	}
	return len(m.entries[ki].values)
}

// Len returns the total number of (key, val) pairs across all keys.
func (m *Multimap[K, V]) Len() int {
	n := 0
	for _, e := range m.entries {
		n += len(e.values)
	}
	return n
}

// Get returns key's values in ascending order. The sequence is empty if key is
// absent.
func (m *Multimap[K, V]) Get(key K) iter.Seq[V] {
	return func(yield func(V) bool) {
		ki, found := m.findKey(key)
		if !found {
			return
		}
		for _, v := range m.entries[ki].values {
			if !yield(v) {
				return
			}
		}
	}
}

// GetFrom returns key's values that are >= from, in ascending order. This is the
// building block for the Edge ordering trick described in the package doc: calling
// GetFrom with the smallest Deleted edge and stopping at the first non-matching value
// (or simply taking Get and breaking on the first Deleted edge) separates live/pseudo
// out-edges from deleted ones without a second index.
func (m *Multimap[K, V]) GetFrom(key K, from V) iter.Seq[V] {
	return func(yield func(V) bool) {
		ki, found := m.findKey(key)
		if !found {
			return
		}
		values := m.entries[ki].values
		start := sort.Search(len(values), func(i int) bool {
			return values[i].Compare(from) >= 0
		})
		for _, v := range values[start:] {
			if !yield(v) {
				return
			}
		}
	}
}

// Keys returns every key with a non-empty bucket, in ascending order.
func (m *Multimap[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for _, e := range m.entries {
			if !yield(e.key) {
				return
			}
		}
	}
}

// All returns every (key, val) pair, keys ascending and values within a key ascending.
func (m *Multimap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, e := range m.entries {
			for _, v := range e.values {
				if !yield(e.key, v) {
					return
				}
			}
		}
	}
}
