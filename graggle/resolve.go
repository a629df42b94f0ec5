package graggle

import (
	"github.com/jneem/ojo/graph"
	"github.com/jneem/ojo/identity"
)

// ResolvePseudoEdges recomputes pseudo-edges for every component touched since the
// last call (tracked via dirtyReps), without re-examining components that were not
// affected.
//
// The key move is restricting the weak-components computation to the subgraph of
// deleted nodes whose current partition representative is dirty: that subgraph might
// have fractured into more components than before (if an edge inside it was
// removed), so those components need to be rediscovered and re-inserted into
// deletedPartition before new pseudo-edges are computed for each one.
func (d *Data) ResolvePseudoEdges() {
	dirty := d.dirtyReps
	d.dirtyReps = make(map[identity.NodeId]struct{})
	if len(dirty) == 0 {
		return
	}

	g := d.View()
	full := g.AsFullGraph()
	subGraph := graph.NodeFiltered[identity.NodeId, Edge]{
		Graph: full,
		Predicate: func(u identity.NodeId) bool {
			if g.IsLive(u) {
				return false
			}
			_, isDirty := dirty[d.deletedPartition.Representative(u)]
			return isDirty
		},
	}
	components := graph.WeakComponents[identity.NodeId, Edge](subGraph)

	for rep := range dirty {
		d.deletedPartition.RemovePart(rep)
	}
	for _, component := range components {
		rep := component[0]
		d.deletedPartition.Insert(rep)
		for _, u := range component[1:] {
			d.deletedPartition.Insert(u)
			d.deletedPartition.Merge(rep, u)
		}
	}

	for _, component := range components {
		d.addComponentPseudoEdges(component)
	}

	log.WithField("dirty_components", len(dirty)).Debug("resolved pseudo-edges")
}

// addComponentPseudoEdges adds every pseudo-edge induced by a single connected
// component of deleted nodes: for every live boundary node u and every live node v
// that u reaches through the component (and that u does not already reach by a live
// edge), a pseudo-edge u -> v is added, mirrored in the back-edge index.
func (d *Data) addComponentPseudoEdges(component []identity.NodeId) {
	g := d.View()
	full := g.AsFullGraph()

	componentSet := make(map[identity.NodeId]struct{}, len(component))
	for _, u := range component {
		componentSet[u] = struct{}{}
	}
	neighborhood := graph.NeighborSet[identity.NodeId, Edge](full, sliceSeq(component))
	for u := range componentSet {
		neighborhood[u] = struct{}{}
	}

	rep := d.deletedPartition.Representative(component[0])

	var boundary []identity.NodeId
	for u := range neighborhood {
		if g.IsLive(u) {
			boundary = append(boundary, u)
		}
	}

	type pair struct{ src, dest identity.NodeId }
	var pairs []pair
	for _, u := range boundary {
		sub := graph.EdgeFiltered[identity.NodeId, Edge]{
			Graph: full,
			Predicate: func(src identity.NodeId, e Edge) bool {
				if _, ok := componentSet[e.Dest]; src == u && ok {
					return true
				}
				_, ok := componentSet[src]
				return ok
			},
		}
		for visit := range graph.DFSFrom[identity.NodeId, Edge](sub, u) {
			if visit.Kind != graph.VisitEdge {
				continue
			}
			if visit.Status == graph.StatusNew && g.IsLive(visit.Dst) {
				pairs = append(pairs, pair{src: u, dest: visit.Dst})
			}
		}
	}

	for _, p := range pairs {
		if d.hasLiveEdge(p.src, p.dest) {
			continue
		}
		d.edges.Insert(p.src, newPseudoEdge(p.dest))
		d.backEdges.Insert(p.dest, newPseudoEdge(p.src))
		key := edgePair{Src: p.src, Dest: p.dest}
		d.pseudoEdgeReasons.Insert(key, rep)
		d.reasonPseudoEdges.Insert(rep, key)
	}
}

// pseudoEdges brute-forces the set of pseudo-edges that should start at u, by DFS
// through edges that are either u's own edges to a deleted node, or any edge starting
// at a deleted node (while ignoring existing pseudo-edges, which might be stale).
// CheckInvariants uses this as the ground truth to validate the incrementally
// maintained pseudo-edges against.
func (d *Data) pseudoEdges(u identity.NodeId) map[identity.NodeId]struct{} {
	g := d.View()
	full := g.AsFullGraph()
	ret := make(map[identity.NodeId]struct{})

	sub := graph.EdgeFiltered[identity.NodeId, Edge]{
		Graph: full,
		Predicate: func(src identity.NodeId, e Edge) bool {
			if e.Kind == Pseudo {
				return false
			}
			if src == u {
				return !g.IsLive(e.Dest)
			}
			return !g.IsLive(src)
		},
	}
	for visit := range graph.DFSFrom[identity.NodeId, Edge](sub, u) {
		if visit.Kind != graph.VisitEdge || visit.Status != graph.StatusNew {
			continue
		}
		if visit.Dst != u && g.IsLive(visit.Dst) && !d.hasLiveEdge(u, visit.Dst) {
			ret[visit.Dst] = struct{}{}
		}
	}
	return ret
}

func sliceSeq[T any](s []T) func(func(T) bool) {
	return func(yield func(T) bool) {
		for _, v := range s {
			if !yield(v) {
				return
			}
		}
	}
}
