package graph

import (
	"iter"

	"github.com/jneem/ojo/identity"
)

// Edge is anything that points at a target node. A plain node value (e.g. identity.NodeId)
// satisfies Edge trivially via SelfEdge; graggle.Edge implements it directly so that an
// edge can carry extra data (its EdgeKind) alongside its target.
type Edge[N comparable] interface {
	Target() N
}

// SelfEdge adapts a bare node value into an Edge whose target is itself, for graphs
// whose edges carry no information beyond their destination.
type SelfEdge[N comparable] struct{ Node N }

// Target returns the wrapped node.
func (e SelfEdge[N]) Target() N { return e.Node }

// Graph is the minimal view every algorithm in this package operates on: enumerate
// the nodes, and for any node, enumerate its outgoing and incoming edges.
type Graph[N comparable, E Edge[N]] interface {
	Nodes() iter.Seq[N]
	OutEdges(u N) iter.Seq[E]
	InEdges(u N) iter.Seq[E]
}

// OutNeighbors returns the targets of u's out-edges.
func OutNeighbors[N comparable, E Edge[N]](g Graph[N, E], u N) iter.Seq[N] {
	return func(yield func(N) bool) {
		for e := range g.OutEdges(u) {
			if !yield(e.Target()) {
				return
			}
		}
	}
}

// InNeighbors returns the sources of u's in-edges.
func InNeighbors[N comparable, E Edge[N]](g Graph[N, E], u N) iter.Seq[N] {
	return func(yield func(N) bool) {
		for e := range g.InEdges(u) {
			if !yield(e.Target()) {
				return
			}
		}
	}
}

// NodeId is the node identity used throughout the rest of this module; declared here
// as a convenience alias so call sites don't need to import identity just to name it.
type NodeId = identity.NodeId

// NodeFiltered restricts Graph to the nodes for which predicate returns true (and,
// transitively, the edges whose target passes predicate too).
type NodeFiltered[N comparable, E Edge[N]] struct {
	Graph     Graph[N, E]
	Predicate func(N) bool
}

// Nodes returns the nodes of the underlying graph that pass Predicate.
func (f NodeFiltered[N, E]) Nodes() iter.Seq[N] {
	return func(yield func(N) bool) {
		for n := range f.Graph.Nodes() {
			if f.Predicate(n) && !yield(n) {
				return
			}
		}
	}
}

// OutEdges returns u's out-edges whose target passes Predicate.
func (f NodeFiltered[N, E]) OutEdges(u N) iter.Seq[E] {
	return func(yield func(E) bool) {
		for e := range f.Graph.OutEdges(u) {
			if f.Predicate(e.Target()) && !yield(e) {
				return
			}
		}
	}
}

// InEdges returns u's in-edges whose source passes Predicate.
func (f NodeFiltered[N, E]) InEdges(u N) iter.Seq[E] {
	return func(yield func(E) bool) {
		for e := range f.Graph.InEdges(u) {
			if f.Predicate(e.Target()) && !yield(e) {
				return
			}
		}
	}
}

// TopSort returns a topological sort of g's nodes, or false if g has a cycle.
//
// It works by running a DFS and pushing each node onto the result as the DFS retreats
// from it, then reversing; a back-edge to a node still being visited means g has a
// cycle and there is no topological sort.
func TopSort[N comparable, E Edge[N]](g Graph[N, E]) ([]N, bool) {
	visiting := make(map[N]bool)
	var topSort []N

	for visit := range DFS(g) {
		switch visit.Kind {
		case VisitEdge:
			if visiting[visit.Dst] {
				return nil, false
			}
			if visit.Status == StatusNew {
				visiting[visit.Dst] = true
			}
		case VisitRetreat:
			topSort = append(topSort, visit.U)
			delete(visiting, visit.U)
		case VisitRoot:
			visiting[visit.U] = true
		}
	}

	for i, j := 0, len(topSort)-1; i < j; i, j = i+1, j-1 {
		topSort[i], topSort[j] = topSort[j], topSort[i]
	}
	return topSort, true
}

// LinearOrder returns g's unique topological sort, or false if g has a cycle or has
// more than one topological sort. A topological sort is unique exactly when every
// node in it has an edge to the node immediately following it.
func LinearOrder[N comparable, E Edge[N]](g Graph[N, E]) ([]N, bool) {
	top, ok := TopSort(g)
	if !ok {
		return nil, false
	}
	for i := 0; i+1 < len(top); i++ {
		u, v := top[i], top[i+1]
		found := false
		for n := range OutNeighbors(g, u) {
			if n == v {
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return top, true
}
