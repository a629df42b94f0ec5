// Package partition implements a union-find (disjoint-set) structure: a set of
// elements, partitioned into disjoint parts, that supports merging two parts and
// answering "are these two elements in the same part" in near-constant time.
//
// It is the engine behind graph.WeakComponents and behind
// graggle.ResolvePseudoEdges's dirty-component tracking: both need to group nodes
// into components and enumerate each component's members.
//
// The structure is a representative-parent map plus a child map (for enumerating a
// part's members without a reverse scan) with union by rank and path compression on
// lookup. The child map is a mmap.Multimap, reusing this module's own
// ordered-multimap package rather than a second map-of-slices implementation.
package partition
