package graph

import (
	"iter"

	"github.com/jneem/ojo/partition"
)

// EdgeFiltered restricts Graph to the edges for which predicate(u, e) holds, where u
// is the node OutEdges/InEdges was called on. Nodes are unrestricted; pair with
// NodeFiltered to also drop nodes.
type EdgeFiltered[N comparable, E Edge[N]] struct {
	Graph     Graph[N, E]
	Predicate func(u N, e E) bool
}

// Nodes returns every node of the underlying graph.
func (f EdgeFiltered[N, E]) Nodes() iter.Seq[N] {
	return f.Graph.Nodes()
}

// OutEdges returns u's out-edges that pass Predicate.
func (f EdgeFiltered[N, E]) OutEdges(u N) iter.Seq[E] {
	return func(yield func(E) bool) {
		for e := range f.Graph.OutEdges(u) {
			if f.Predicate(u, e) && !yield(e) {
				return
			}
		}
	}
}

// InEdges returns u's in-edges that pass Predicate.
func (f EdgeFiltered[N, E]) InEdges(u N) iter.Seq[E] {
	return func(yield func(E) bool) {
		for e := range f.Graph.InEdges(u) {
			if f.Predicate(u, e) && !yield(e) {
				return
			}
		}
	}
}

// NeighborSet returns every node adjacent (by an out- or in-edge) to some node in
// nodes, as a set. The nodes themselves are not automatically included.
func NeighborSet[N comparable, E Edge[N]](g Graph[N, E], nodes iter.Seq[N]) map[N]struct{} {
	set := make(map[N]struct{})
	for n := range nodes {
		for nb := range OutNeighbors(g, n) {
			set[nb] = struct{}{}
		}
		for nb := range InNeighbors(g, n) {
			set[nb] = struct{}{}
		}
	}
	return set
}

// WeakComponents partitions g's nodes into weakly connected components: components
// of the undirected graph obtained by ignoring edge direction. Each component is
// returned as a slice of its members; component order and member order within a
// component are unspecified.
func WeakComponents[N partition.Elem[N], E Edge[N]](g Graph[N, E]) [][]N {
	p := partition.New[N]()
	for n := range g.Nodes() {
		p.Insert(n)
	}
	for n := range g.Nodes() {
		for nb := range OutNeighbors(g, n) {
			p.Merge(n, nb)
		}
		for nb := range InNeighbors(g, n) {
			p.Merge(n, nb)
		}
	}

	var comps [][]N
	for part := range p.IterParts() {
		var members []N
		for m := range part {
			members = append(members, m)
		}
		comps = append(comps, members)
	}
	return comps
}
