package patch

import (
	"bytes"

	"github.com/jneem/ojo/graggle"
	"github.com/jneem/ojo/identity"
	"github.com/jneem/ojo/linediff"
)

// ChangeKind distinguishes the three kinds of mutation a Change can carry.
type ChangeKind int

const (
	// NewNode introduces a node with some byte contents.
	NewNode ChangeKind = iota
	// DeleteNode tombstones an existing node.
	DeleteNode
	// NewEdge introduces an edge between two existing (or concurrently introduced)
	// nodes.
	NewEdge
)

// Change is a single node or edge mutation, one element of a Changes batch.
//
// Only the fields relevant to Kind are meaningful: ID/Contents for NewNode, ID for
// DeleteNode, Src/Dst for NewEdge.
type Change struct {
	Kind     ChangeKind
	ID       identity.NodeId
	Contents []byte
	Src, Dst identity.NodeId
}

// NewNodeChange builds a Change that introduces id with the given contents.
func NewNodeChange(id identity.NodeId, contents []byte) Change {
	return Change{Kind: NewNode, ID: id, Contents: contents}
}

// DeleteNodeChange builds a Change that tombstones id.
func DeleteNodeChange(id identity.NodeId) Change {
	return Change{Kind: DeleteNode, ID: id}
}

// NewEdgeChange builds a Change that introduces an edge from src to dst.
func NewEdgeChange(src, dst identity.NodeId) Change {
	return Change{Kind: NewEdge, Src: src, Dst: dst}
}

// applyToGraggle replays c against d. patchID identifies the patch c belongs to; it
// distinguishes edges introduced by distinct patches that happen to share the same
// endpoints, so unapplying one patch leaves the other's edge in place.
func (c Change) applyToGraggle(d *graggle.Data, patchID identity.PatchId) {
	switch c.Kind {
	case NewNode:
		d.AddNode(c.ID)
	case DeleteNode:
		d.DeleteNode(c.ID)
	case NewEdge:
		d.AddEdge(c.Src, c.Dst, patchID)
	}
}

// unapplyFromGraggle reverses applyToGraggle.
func (c Change) unapplyFromGraggle(d *graggle.Data, patchID identity.PatchId) {
	switch c.Kind {
	case NewNode:
		d.UnaddNode(c.ID)
	case DeleteNode:
		d.UndeleteNode(c.ID)
	case NewEdge:
		d.UnaddEdge(c.Src, c.Dst, patchID)
	}
}

// ContentStore is the subset of storage.Storage that StoreContents/RemoveContents
// need. Declaring it here, at the point of use, keeps patch from importing storage
// (storage imports patch, not the other way around).
type ContentStore interface {
	AddContents(id identity.NodeId, contents []byte)
	RemoveContents(id identity.NodeId)
}

// storeContents records c's new contents in cs, if c is a NewNode change.
func (c Change) storeContents(cs ContentStore) {
	if c.Kind == NewNode {
		cs.AddContents(c.ID, c.Contents)
	}
}

// removeContents undoes storeContents.
func (c Change) removeContents(cs ContentStore) {
	if c.Kind == NewNode {
		cs.RemoveContents(c.ID)
	}
}

// equal reports whether c and other carry identical fields.
func (c Change) equal(other Change) bool {
	return c.Kind == other.Kind &&
		c.ID == other.ID &&
		bytes.Equal(c.Contents, other.Contents) &&
		c.Src == other.Src &&
		c.Dst == other.Dst
}

// unstamp rewrites every NodeId in c that patchID itself introduced back to the
// CurPatchID sentinel. It is setPatchID's inverse, the per-change building block of
// Patch.Unidentified.
func (c *Change) unstamp(patchID identity.PatchId) {
	unstampID := func(id identity.NodeId) identity.NodeId {
		if id.Patch == patchID {
			return identity.CurNodeID(id.Node)
		}
		return id
	}
	switch c.Kind {
	case NewNode, DeleteNode:
		c.ID = unstampID(c.ID)
	case NewEdge:
		c.Src = unstampID(c.Src)
		c.Dst = unstampID(c.Dst)
	}
}

// setPatchID rewrites every CurPatchID-tagged NodeId that c carries to newID. It is
// the per-change building block of Patch stamping.
func (c *Change) setPatchID(newID identity.PatchId) {
	switch c.Kind {
	case NewNode, DeleteNode:
		c.ID = c.ID.SetPatchID(newID)
	case NewEdge:
		c.Src = c.Src.SetPatchID(newID)
		c.Dst = c.Dst.SetPatchID(newID)
	}
}

// Changes is an ordered batch of Change values, the payload of a patch.
type Changes struct {
	Changes []Change
}

// lastLineKind tracks, while walking a line diff, where the previous output line came
// from: nowhere yet, file a, or file b. Needed because a run of New lines must chain
// off whatever line preceded them, regardless of which file it came from.
type lastLineKind int

const (
	lastNone lastLineKind = iota
	lastA
	lastB
)

// FileLineSource is the minimal view of a materialized file that FromDiff needs: the
// stable id of each line, and its raw contents. storage.File implements this.
type FileLineSource interface {
	LineID(i int) identity.NodeId
	Line(i int) []byte
}

// FromDiff turns a line-level diff between fileA and fileB into a Changes batch:
// every New line becomes a NewNode (plus a NewEdge linking it to whatever came
// before), every Delete line becomes a DeleteNode, and every Keep line following a
// run of New lines gets a NewEdge linking the new run back into the kept sequence.
func FromDiff(fileA, fileB FileLineSource, diff []linediff.LineDiff) Changes {
	var changes []Change
	last := lastNone
	var lastID identity.NodeId

	for _, d := range diff {
		switch d.Kind {
		case linediff.New:
			id := fileB.LineID(d.B)
			changes = append(changes, NewNodeChange(id, fileB.Line(d.B)))
			if last != lastNone {
				changes = append(changes, NewEdgeChange(lastID, id))
			}
			last, lastID = lastB, id
		case linediff.Keep:
			id := fileA.LineID(d.A)
			if last == lastB {
				changes = append(changes, NewEdgeChange(lastID, id))
			}
			last, lastID = lastA, id
		case linediff.Delete:
			changes = append(changes, DeleteNodeChange(fileA.LineID(d.A)))
		}
	}
	return Changes{Changes: changes}
}

// ApplyToGraggle replays every change in cs, in order, against d.
func (cs Changes) ApplyToGraggle(d *graggle.Data, patchID identity.PatchId) {
	for _, c := range cs.Changes {
		c.applyToGraggle(d, patchID)
	}
}

// UnapplyToGraggle reverses ApplyToGraggle. It proceeds in two passes: first every
// DeleteNode (undelete) and NewEdge (unadd), then every NewNode (unadd). The
// two-pass order is required because unadding an edge needs both of its endpoints to
// still exist, and a patch's own edges may reference its own nodes.
func (cs Changes) UnapplyToGraggle(d *graggle.Data, patchID identity.PatchId) {
	for _, c := range cs.Changes {
		if c.Kind != NewNode {
			c.unapplyFromGraggle(d, patchID)
		}
	}
	for _, c := range cs.Changes {
		if c.Kind == NewNode {
			c.unapplyFromGraggle(d, patchID)
		}
	}
}

// StoreContents records the contents of every NewNode change in cs.
func (cs Changes) StoreContents(store ContentStore) {
	for _, c := range cs.Changes {
		c.storeContents(store)
	}
}

// RemoveContents undoes StoreContents.
func (cs Changes) RemoveContents(store ContentStore) {
	for _, c := range cs.Changes {
		c.removeContents(store)
	}
}

// setPatchID rewrites every change in cs in place.
func (cs *Changes) setPatchID(newID identity.PatchId) {
	for i := range cs.Changes {
		cs.Changes[i].setPatchID(newID)
	}
}

// unstamp returns a copy of cs with every NodeId patchID itself introduced rewritten
// back to the CurPatchID sentinel.
func (cs Changes) unstamp(patchID identity.PatchId) Changes {
	out := Changes{Changes: append([]Change(nil), cs.Changes...)}
	for i := range out.Changes {
		out.Changes[i].unstamp(patchID)
	}
	return out
}

// equal reports whether cs and other contain the same changes in the same order.
func (cs Changes) equal(other Changes) bool {
	if len(cs.Changes) != len(other.Changes) {
		return false
	}
	for i := range cs.Changes {
		if !cs.Changes[i].equal(other.Changes[i]) {
			return false
		}
	}
	return true
}

// Deps returns every PatchId referenced by cs that is not the CurPatchID sentinel:
// delete targets and edge endpoints, but not new-node ids (a new node cannot depend
// on the patch that introduces it). Order is unspecified; callers that need a
// canonical order should sort the result.
func (cs Changes) Deps() []identity.PatchId {
	seen := make(map[identity.PatchId]struct{})
	var deps []identity.PatchId
	add := func(id identity.NodeId) {
		if id.Patch.IsCur() {
			return
		}
		if _, ok := seen[id.Patch]; ok {
			return
		}
		seen[id.Patch] = struct{}{}
		deps = append(deps, id.Patch)
	}
	for _, c := range cs.Changes {
		switch c.Kind {
		case DeleteNode:
			add(c.ID)
		case NewEdge:
			add(c.Src)
			add(c.Dst)
		}
	}
	return deps
}
