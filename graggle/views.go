package graggle

import (
	"iter"

	"github.com/jneem/ojo/graph"
	"github.com/jneem/ojo/identity"
)

// Graggle is a read-only view into a Data, exposing both the live-only accessors used
// by most callers and the all-nodes accessors ResolvePseudoEdges needs.
type Graggle struct {
	data *Data
}

// Nodes returns every live node.
func (g Graggle) Nodes() iter.Seq[identity.NodeId] {
	return func(yield func(identity.NodeId) bool) {
		for n := range g.data.nodes {
			if !yield(n) {
				return
			}
		}
	}
}

// OutEdges returns node's edges to other live nodes (Live and Pseudo, never Deleted).
// It relies on Edge ordering: a node's out-edge bucket lists Live and Pseudo edges
// before any Deleted ones, so this stops at the first Deleted edge.
func (g Graggle) OutEdges(node identity.NodeId) iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		for e := range g.data.edges.Get(node) {
			if !e.notDeleted() {
				return
			}
			if !yield(e) {
				return
			}
		}
	}
}

// InEdges returns node's back-edges from other live nodes (Live and Pseudo).
func (g Graggle) InEdges(node identity.NodeId) iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		for e := range g.data.backEdges.Get(node) {
			if !e.notDeleted() {
				return
			}
			if !yield(e) {
				return
			}
		}
	}
}

// OutNeighbors returns the live out-neighbors of node.
func (g Graggle) OutNeighbors(node identity.NodeId) iter.Seq[identity.NodeId] {
	return graph.OutNeighbors[identity.NodeId, Edge](g, node)
}

// InNeighbors returns the live in-neighbors of node.
func (g Graggle) InNeighbors(node identity.NodeId) iter.Seq[identity.NodeId] {
	return graph.InNeighbors[identity.NodeId, Edge](g, node)
}

// AllOutEdges returns every out-edge of node, live, pseudo, and deleted alike.
func (g Graggle) AllOutEdges(node identity.NodeId) iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		for _, e := range g.data.allOutEdges(node) {
			if !yield(e) {
				return
			}
		}
	}
}

// AllInEdges returns every in-edge of node, live, pseudo, and deleted alike.
func (g Graggle) AllInEdges(node identity.NodeId) iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		for _, e := range g.data.allInEdges(node) {
			if !yield(e) {
				return
			}
		}
	}
}

// HasNode reports whether node belongs to this graggle at all (live or deleted).
func (g Graggle) HasNode(node identity.NodeId) bool {
	if _, ok := g.data.nodes[node]; ok {
		return true
	}
	_, ok := g.data.deletedNodes[node]
	return ok
}

// IsLive reports whether node is live. Panics if node does not belong to this
// graggle.
func (g Graggle) IsLive(node identity.NodeId) bool {
	if !g.HasNode(node) {
		panic("graggle: IsLive called on a node that doesn't exist")
	}
	_, ok := g.data.nodes[node]
	return ok
}

// AsLiveGraph wraps g as a graph.Graph over only its live nodes.
func (g Graggle) AsLiveGraph() LiveGraph {
	return LiveGraph{g}
}

// AsFullGraph wraps g as a graph.Graph over all (live and deleted) nodes.
func (g Graggle) AsFullGraph() FullGraph {
	return FullGraph{g}
}

// LiveGraph adapts Graggle to graph.Graph over only its live nodes and edges.
type LiveGraph struct{ g Graggle }

// Nodes returns every live node.
func (l LiveGraph) Nodes() iter.Seq[identity.NodeId] { return l.g.Nodes() }

// OutEdges returns node's live out-edges.
func (l LiveGraph) OutEdges(node identity.NodeId) iter.Seq[Edge] { return l.g.OutEdges(node) }

// InEdges returns node's live in-edges.
func (l LiveGraph) InEdges(node identity.NodeId) iter.Seq[Edge] { return l.g.InEdges(node) }

// FullGraph adapts Graggle to graph.Graph over every node (live and deleted) and
// every edge (including Deleted ones).
type FullGraph struct{ g Graggle }

// Nodes returns every node, live and deleted.
func (f FullGraph) Nodes() iter.Seq[identity.NodeId] {
	return func(yield func(identity.NodeId) bool) {
		for n := range f.g.data.nodes {
			if !yield(n) {
				return
			}
		}
		for n := range f.g.data.deletedNodes {
			if !yield(n) {
				return
			}
		}
	}
}

// OutEdges returns every out-edge of node, including Deleted ones.
func (f FullGraph) OutEdges(node identity.NodeId) iter.Seq[Edge] { return f.g.AllOutEdges(node) }

// InEdges returns every in-edge of node, including Deleted ones.
func (f FullGraph) InEdges(node identity.NodeId) iter.Seq[Edge] { return f.g.AllInEdges(node) }
