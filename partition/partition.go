package partition

import (
	"fmt"
	"iter"

	"github.com/jneem/ojo/mmap"
)

// Elem is the constraint on a Partition's element type: it must be comparable (so it
// can key a Go map) and totally ordered (so it can live in a mmap.Multimap child map).
type Elem[T any] interface {
	comparable
	Compare(other T) int
}

// Partition is a disjoint-set structure over elements of type T.
//
// The zero value is not usable; construct with New. Not safe for concurrent use.
type Partition[T Elem[T]] struct {
	ranks     map[T]int
	parentMap map[T]T
	childMap  *mmap.Multimap[T, T]
}

// New returns an empty Partition.
func New[T Elem[T]]() *Partition[T] {
	return &Partition[T]{
		ranks:     make(map[T]int),
		parentMap: make(map[T]T),
		childMap:  mmap.New[T, T](),
	}
}

// Clone returns a deep copy of p: mutating the clone never affects p and vice versa.
func (p *Partition[T]) Clone() *Partition[T] {
	out := &Partition[T]{
		ranks:     make(map[T]int, len(p.ranks)),
		parentMap: make(map[T]T, len(p.parentMap)),
		childMap:  p.childMap.Clone(),
	}
	for k, v := range p.ranks {
		out.ranks[k] = v
	}
	for k, v := range p.parentMap {
		out.parentMap[k] = v
	}
	return out
}

// Insert adds elt as a new singleton part. It panics if elt is already present, since
// a caller that hits this has a bug: every node and patch id in this module is unique
// by construction.
func (p *Partition[T]) Insert(elt T) {
	if _, ok := p.ranks[elt]; ok {
		panic(fmt.Sprintf("partition: tried to insert %v twice", elt))
	}
	p.ranks[elt] = 0
}

// isRep reports whether elt is the representative of its part.
func (p *Partition[T]) isRep(elt T) bool {
	_, hasParent := p.parentMap[elt]
	return !hasParent
}

// IsRep reports whether elt is the representative of its part.
func (p *Partition[T]) IsRep(elt T) bool {
	return p.isRep(elt)
}

// Contains reports whether elt has been inserted into the partition.
func (p *Partition[T]) Contains(elt T) bool {
	_, ok := p.ranks[elt]
	return ok
}

// Representative returns elt's part representative without mutating the structure.
func (p *Partition[T]) Representative(elt T) T {
	ret := elt
	for {
		parent, ok := p.parentMap[ret]
		if !ok {
			return ret
		}
		ret = parent
	}
}

// RepresentativeMut returns elt's part representative, and reparents elt directly to
// it (path compression) if it wasn't already a direct child of the representative.
func (p *Partition[T]) RepresentativeMut(elt T) T {
	rep := p.Representative(elt)
	if origParent, ok := p.parentMap[elt]; ok && origParent != rep {
		p.childMap.Remove(origParent, elt)
		p.childMap.Insert(rep, elt)
		p.parentMap[elt] = rep
	}
	return rep
}

// mergeReps joins two part representatives by rank. It panics if either argument is
// not actually a representative, a caller-only invariant never reachable from
// Merge.
func (p *Partition[T]) mergeReps(rep1, rep2 T) {
	if !p.isRep(rep1) || !p.isRep(rep2) {
		panic("partition: mergeReps called on non-representatives")
	}
	rank1, rank2 := p.ranks[rep1], p.ranks[rep2]
	if rank1 <= rank2 {
		p.parentMap[rep1] = rep2
		p.childMap.Insert(rep2, rep1)
		if rank1 == rank2 {
			p.ranks[rep2] = rank2 + 1
		}
	} else {
		p.parentMap[rep2] = rep1
		p.childMap.Insert(rep1, rep2)
	}
}

// Merge joins elt1's and elt2's parts, reporting whether a merge actually happened
// (false if they were already in the same part).
func (p *Partition[T]) Merge(elt1, elt2 T) bool {
	rep1 := p.RepresentativeMut(elt1)
	rep2 := p.RepresentativeMut(elt2)
	if rep1 == rep2 {
		return false
	}
	p.mergeReps(rep1, rep2)
	return true
}

// SamePart reports whether elt1 and elt2 are in the same part, without mutating the
// structure.
func (p *Partition[T]) SamePart(elt1, elt2 T) bool {
	return p.Representative(elt1) == p.Representative(elt2)
}

// SamePartMut reports whether elt1 and elt2 are in the same part, path-compressing
// both along the way.
func (p *Partition[T]) SamePartMut(elt1, elt2 T) bool {
	return p.RepresentativeMut(elt1) == p.RepresentativeMut(elt2)
}

// RemovePart deletes every element in elt's part from the partition entirely.
func (p *Partition[T]) RemovePart(elt T) {
	members := make([]T, 0)
	for m := range p.IterPart(elt) {
		members = append(members, m)
	}
	for _, m := range members {
		delete(p.parentMap, m)
		delete(p.ranks, m)
		p.childMap.RemoveAll(m)
	}
}

// IterPart walks every member of elt's part, in a pre-order traversal of the
// union-find tree rooted at the part's representative. Order is unspecified beyond
// that, and should not be relied on for anything other than enumeration.
func (p *Partition[T]) IterPart(elt T) iter.Seq[T] {
	root := p.Representative(elt)
	return func(yield func(T) bool) {
		stack := [][]T{{root}}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if len(top) == 0 {
				stack = stack[:len(stack)-1]
				continue
			}
			item := top[0]
			stack[len(stack)-1] = top[1:]
			if !yield(item) {
				return
			}
			var children []T
			for c := range p.childMap.Get(item) {
				children = append(children, c)
			}
			stack = append(stack, children)
		}
	}
}

// IterParts walks every part, each as its own IterPart-style member sequence. The
// order in which parts are produced is unspecified.
func (p *Partition[T]) IterParts() iter.Seq[iter.Seq[T]] {
	return func(yield func(iter.Seq[T]) bool) {
		for elt := range p.ranks {
			if !p.isRep(elt) {
				continue
			}
			if !yield(p.IterPart(elt)) {
				return
			}
		}
	}
}

// Len returns the number of elements inserted into the partition (across all parts).
func (p *Partition[T]) Len() int {
	return len(p.ranks)
}
