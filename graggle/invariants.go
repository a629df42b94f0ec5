package graggle

import (
	"fmt"

	"github.com/jneem/ojo/identity"
)

// CheckInvariants walks d's internal structure and returns an error describing the
// first inconsistency found, or nil if d is internally consistent. It is meant for
// tests and debugging, not the hot path.
func (d *Data) CheckInvariants() error {
	for n := range d.nodes {
		if _, ok := d.deletedNodes[n]; ok {
			return fmt.Errorf("graggle: node %s is both live and deleted", n)
		}
	}

	nodeExists := func(id identity.NodeId) bool {
		_, live := d.nodes[id]
		_, deleted := d.deletedNodes[id]
		return live || deleted
	}

	seenBackEdges := make(map[identity.NodeId]map[Edge]struct{})
	for src, edge := range d.edges.All() {
		if !nodeExists(src) {
			return fmt.Errorf("graggle: edge source %s does not exist", src)
		}
		if !nodeExists(edge.Dest) {
			return fmt.Errorf("graggle: edge destination %s does not exist", edge.Dest)
		}
		if src == edge.Dest {
			return fmt.Errorf("graggle: self-loop at %s", src)
		}
		_, destDeleted := d.deletedNodes[edge.Dest]
		if destDeleted != (edge.Kind == Deleted) {
			return fmt.Errorf("graggle: edge %s -> %s kind %v disagrees with destination's liveness", src, edge.Dest, edge.Kind)
		}

		backKind := edge.Kind
		if edge.Kind != Pseudo {
			_, srcDeleted := d.deletedNodes[src]
			backKind = kindFromDeleted(srcDeleted)
		}
		backEdge := Edge{Dest: src, Kind: backKind, Patch: edge.Patch}
		if !d.backEdges.Contains(edge.Dest, backEdge) {
			return fmt.Errorf("graggle: missing back-edge for %s -> %s", src, edge.Dest)
		}
		if seenBackEdges[edge.Dest] == nil {
			seenBackEdges[edge.Dest] = make(map[Edge]struct{})
		}
		seenBackEdges[edge.Dest][backEdge] = struct{}{}
	}
	for src, backEdge := range d.backEdges.All() {
		if _, ok := seenBackEdges[src][backEdge]; !ok {
			return fmt.Errorf("graggle: back-edge %s -> %s has no corresponding forward edge", src, backEdge.Dest)
		}
	}

	for u := range d.deletedNodes {
		if !d.deletedPartition.Contains(u) {
			return fmt.Errorf("graggle: deleted node %s is missing from the deleted-node partition", u)
		}
	}

	if len(d.dirtyReps) > 0 {
		return nil
	}

	for part := range d.deletedPartition.IterParts() {
		for u := range part {
			if _, ok := d.deletedNodes[u]; !ok {
				return fmt.Errorf("graggle: deleted-node partition contains live node %s", u)
			}
		}
	}

	for src, edge := range d.edges.All() {
		if edge.Kind != Pseudo {
			continue
		}
		if !d.pseudoEdgeReasons.ContainsKey(edgePair{Src: src, Dest: edge.Dest}) {
			return fmt.Errorf("graggle: pseudo-edge %s -> %s has no reason on record", src, edge.Dest)
		}
	}

	for key := range d.pseudoEdgeReasons.Keys() {
		if !d.edges.Contains(key.Src, newPseudoEdge(key.Dest)) {
			return fmt.Errorf("graggle: recorded pseudo-edge reason for %s -> %s has no matching edge", key.Src, key.Dest)
		}
	}

	for reason := range d.reasonPseudoEdges.Keys() {
		if !d.deletedPartition.IsRep(reason) {
			return fmt.Errorf("graggle: %s is used as a pseudo-edge reason but is not a partition representative", reason)
		}
	}

	for u := range d.nodes {
		correct := d.pseudoEdges(u)
		actual := make(map[identity.NodeId]struct{})
		for _, e := range d.allOutEdges(u) {
			if e.Kind == Pseudo {
				actual[e.Dest] = struct{}{}
			}
		}
		if !sameSet(correct, actual) {
			return fmt.Errorf("graggle: pseudo-edges out of %s are stale (want %v, have %v)", u, correct, actual)
		}
	}

	return nil
}

func sameSet[T comparable](a, b map[T]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
