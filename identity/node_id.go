package identity

import "fmt"

// NodeId globally identifies a node: the PatchId of the patch that introduced it,
// plus a per-patch counter assigned at authoring time. A patch that does not yet know
// its own id (see CurPatchID) refers to its own nodes with NodeId.Patch set to the
// sentinel; patch.UnidentifiedPatch.WriteOut rewrites these once the patch is hashed.
type NodeId struct {
	Patch PatchId
	Node  uint64
}

// CurNodeID builds a NodeId referring to a node introduced by the patch currently
// being authored (see CurPatchID).
func CurNodeID(node uint64) NodeId {
	return NodeId{Patch: CurPatchID(), Node: node}
}

// SetPatchID rewrites id's patch component to newID, but only if id currently carries
// the CurPatchID sentinel. It is the building block of patch stamping: every internal
// reference in a freshly-hashed patch is rewritten this way.
func (id NodeId) SetPatchID(newID PatchId) NodeId {
	if id.Patch.IsCur() {
		id.Patch = newID
	}
	return id
}

// Compare orders two NodeIds first by patch, then by node index.
func (id NodeId) Compare(other NodeId) int {
	if c := id.Patch.Compare(other.Patch); c != 0 {
		return c
	}
	switch {
	case id.Node < other.Node:
		return -1
	case id.Node > other.Node:
		return 1
	default:
		return 0
	}
}

// Less reports whether id sorts before other; a convenience wrapper around Compare
// for use with sort.Slice and ordered containers.
func (id NodeId) Less(other NodeId) bool {
	return id.Compare(other) < 0
}

// String renders id as "<patch>/<index>", or "cur/<index>" for a node that still
// carries the CurPatchID sentinel.
func (id NodeId) String() string {
	if id.Patch.IsCur() {
		return fmt.Sprintf("cur/%d", id.Node)
	}
	return fmt.Sprintf("%s/%d", id.Patch.String(), id.Node)
}
