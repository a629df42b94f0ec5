package graggle

import (
	"github.com/jneem/ojo/identity"
)

// EdgeKind distinguishes the three kinds of edge a graggle can hold.
//
// The numeric order is significant: Live < Pseudo < Deleted, and Edge.Compare sorts
// on Kind first. That means a mmap.Multimap bucket of a node's out-edges always lists
// its live and pseudo edges before its deleted ones, so walking the bucket and
// stopping at the first Deleted edge yields exactly the live-and-pseudo out-edges,
// with no separate index needed to skip tombstoned neighbors.
type EdgeKind int

const (
	// Live marks an edge pointing at a live node.
	Live EdgeKind = iota
	// Pseudo marks a synthetic edge added to skip over a run of deleted nodes.
	Pseudo
	// Deleted marks an edge pointing at a deleted node.
	Deleted
)

func kindFromDeleted(deleted bool) EdgeKind {
	if deleted {
		return Deleted
	}
	return Live
}

// Edge is a directed edge in a graggle. It stores only the destination; the source is
// implicit in however the edge was obtained (Graggle.OutEdges/InEdges).
type Edge struct {
	Kind EdgeKind
	Dest identity.NodeId
	// Patch is the patch that introduced this edge. For a Pseudo edge it is always
	// the CurPatchID sentinel, since pseudo-edges aren't introduced by any patch;
	// see Edge.Patch's role in disambiguating two patches that both add the same edge
	// (unapplying one must leave the edge behind if the other still wants it).
	Patch identity.PatchId
}

// Target returns e.Dest, satisfying graph.Edge[identity.NodeId].
func (e Edge) Target() identity.NodeId { return e.Dest }

// Compare orders edges by Kind, then Dest, then Patch. Kind comes first so that the
// live and pseudo out-edges of a node form a prefix of its edge bucket.
func (e Edge) Compare(other Edge) int {
	if e.Kind != other.Kind {
		if e.Kind < other.Kind {
			return -1
		}
		return 1
	}
	if c := e.Dest.Compare(other.Dest); c != 0 {
		return c
	}
	return e.Patch.Compare(other.Patch)
}

func (e Edge) notDeleted() bool { return e.Kind != Deleted }

func newPseudoEdge(dest identity.NodeId) Edge {
	return Edge{Kind: Pseudo, Dest: dest, Patch: identity.CurPatchID()}
}

func newLiveEdge(dest identity.NodeId, patch identity.PatchId) Edge {
	return Edge{Kind: Live, Dest: dest, Patch: patch}
}

func newDeletedEdge(dest identity.NodeId, patch identity.PatchId) Edge {
	return Edge{Kind: Deleted, Dest: dest, Patch: patch}
}

// newRealEdge builds a Live or Deleted edge (never Pseudo) according to deleted.
func newRealEdge(dest identity.NodeId, deleted bool, patch identity.PatchId) Edge {
	return Edge{Kind: kindFromDeleted(deleted), Dest: dest, Patch: patch}
}

// edgePair keys the pseudo-edge bookkeeping maps: a (source, destination) pair,
// ordered lexicographically.
type edgePair struct {
	Src, Dest identity.NodeId
}

// Compare orders edgePairs by Src then Dest.
func (p edgePair) Compare(other edgePair) int {
	if c := p.Src.Compare(other.Src); c != 0 {
		return c
	}
	return p.Dest.Compare(other.Dest)
}
