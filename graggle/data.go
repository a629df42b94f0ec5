package graggle

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/jneem/ojo/identity"
	"github.com/jneem/ojo/mmap"
	"github.com/jneem/ojo/partition"
)

var log = logrus.WithField("component", "graggle")

// Data is the mutable storage backing a graggle: live and deleted nodes, their edges
// (forward and back), and the bookkeeping needed to keep pseudo-edges correct as
// nodes are deleted and undeleted.
//
// The zero value is not usable; construct with NewData.
type Data struct {
	nodes        map[identity.NodeId]struct{}
	deletedNodes map[identity.NodeId]struct{}
	edges        *mmap.Multimap[identity.NodeId, Edge]
	backEdges    *mmap.Multimap[identity.NodeId, Edge]

	// deletedPartition groups the deleted nodes into weakly connected components.
	deletedPartition *partition.Partition[identity.NodeId]
	// pseudoEdgeReasons maps a forward pseudo-edge to the set of component
	// representatives responsible for it existing.
	pseudoEdgeReasons *mmap.Multimap[edgePair, identity.NodeId]
	// reasonPseudoEdges is the reverse index of pseudoEdgeReasons: representative to
	// the pseudo-edges it is responsible for.
	reasonPseudoEdges *mmap.Multimap[identity.NodeId, edgePair]
	// dirtyReps holds the component representatives whose pseudo-edges may be stale
	// and need recomputing by ResolvePseudoEdges.
	dirtyReps map[identity.NodeId]struct{}
}

// NewData returns an empty graggle.
func NewData() *Data {
	return &Data{
		nodes:             make(map[identity.NodeId]struct{}),
		deletedNodes:      make(map[identity.NodeId]struct{}),
		edges:             mmap.New[identity.NodeId, Edge](),
		backEdges:         mmap.New[identity.NodeId, Edge](),
		deletedPartition:  partition.New[identity.NodeId](),
		pseudoEdgeReasons: mmap.New[edgePair, identity.NodeId](),
		reasonPseudoEdges: mmap.New[identity.NodeId, edgePair](),
		dirtyReps:         make(map[identity.NodeId]struct{}),
	}
}

// View returns a read-only Graggle view of d.
func (d *Data) View() Graggle {
	return Graggle{data: d}
}

// Clone returns a deep copy of d: mutating the clone never affects d and vice versa.
// Used by storage.Storage.CloneInode to give a newly branched INode its own
// independent snapshot of an existing graggle.
func (d *Data) Clone() *Data {
	out := &Data{
		nodes:             make(map[identity.NodeId]struct{}, len(d.nodes)),
		deletedNodes:      make(map[identity.NodeId]struct{}, len(d.deletedNodes)),
		edges:             d.edges.Clone(),
		backEdges:         d.backEdges.Clone(),
		deletedPartition:  d.deletedPartition.Clone(),
		pseudoEdgeReasons: d.pseudoEdgeReasons.Clone(),
		reasonPseudoEdges: d.reasonPseudoEdges.Clone(),
		dirtyReps:         make(map[identity.NodeId]struct{}, len(d.dirtyReps)),
	}
	for n := range d.nodes {
		out.nodes[n] = struct{}{}
	}
	for n := range d.deletedNodes {
		out.deletedNodes[n] = struct{}{}
	}
	for n := range d.dirtyReps {
		out.dirtyReps[n] = struct{}{}
	}
	return out
}

// NodeRecord is one node's serializable state: its id, and whether it is currently a
// tombstone. Used by Snapshot/FromSnapshot to round-trip a Data through a wire format
// without exposing its internal bookkeeping.
type NodeRecord struct {
	ID      identity.NodeId `yaml:"id"`
	Deleted bool            `yaml:"deleted"`
}

// EdgeRecord is one real (non-pseudo) edge's serializable state. Pseudo-edges are
// never recorded: they're synthetic bookkeeping that FromSnapshot rebuilds by calling
// ResolvePseudoEdges, so persisting them would just be redundant.
type EdgeRecord struct {
	Src   identity.NodeId  `yaml:"src"`
	Dest  identity.NodeId  `yaml:"dest"`
	Patch identity.PatchId `yaml:"patch"`
}

// Snapshot captures d's live/deleted nodes and real edges, suitable for persisting
// and later restoring via FromSnapshot.
func (d *Data) Snapshot() ([]NodeRecord, []EdgeRecord) {
	var nodes []NodeRecord
	var edges []EdgeRecord

	for n := range d.nodes {
		nodes = append(nodes, NodeRecord{ID: n})
		for _, e := range d.allOutEdges(n) {
			if e.Kind != Pseudo {
				edges = append(edges, EdgeRecord{Src: n, Dest: e.Dest, Patch: e.Patch})
			}
		}
	}
	for n := range d.deletedNodes {
		nodes = append(nodes, NodeRecord{ID: n, Deleted: true})
		for _, e := range d.allOutEdges(n) {
			if e.Kind != Pseudo {
				edges = append(edges, EdgeRecord{Src: n, Dest: e.Dest, Patch: e.Patch})
			}
		}
	}
	return nodes, edges
}

// FromSnapshot rebuilds a Data from the output of Snapshot. Nodes are added live
// first, then tombstoned as needed, then edges are replayed: by the time an edge is
// added its endpoints already carry their final live/deleted status, so AddEdge
// derives the right edge kind and dirty/merge bookkeeping without needing to know the
// original order of mutations. Finally ResolvePseudoEdges is called, so the returned
// Data's pseudo-edges are already up to date.
func FromSnapshot(nodes []NodeRecord, edges []EdgeRecord) *Data {
	d := NewData()
	for _, n := range nodes {
		d.AddNode(n.ID)
	}
	for _, n := range nodes {
		if n.Deleted {
			d.DeleteNode(n.ID)
		}
	}
	for _, e := range edges {
		d.AddEdge(e.Src, e.Dest, e.Patch)
	}
	d.ResolvePseudoEdges()
	return d
}

type dataWire struct {
	Nodes []NodeRecord `yaml:"nodes"`
	Edges []EdgeRecord `yaml:"edges"`
}

// MarshalYAML encodes d via Snapshot, so a Data embedded in a larger document (e.g.
// storage.Storage) serializes as plain node/edge records rather than internal
// bookkeeping.
func (d *Data) MarshalYAML() (interface{}, error) {
	nodes, edges := d.Snapshot()
	return dataWire{Nodes: nodes, Edges: edges}, nil
}

// UnmarshalYAML decodes d via FromSnapshot.
func (d *Data) UnmarshalYAML(value *yaml.Node) error {
	var w dataWire
	if err := value.Decode(&w); err != nil {
		return err
	}
	*d = *FromSnapshot(w.Nodes, w.Edges)
	return nil
}

// allOutEdges returns every out-edge of node, live, pseudo, and deleted alike.
func (d *Data) allOutEdges(node identity.NodeId) []Edge {
	var out []Edge
	for e := range d.edges.Get(node) {
		out = append(out, e)
	}
	return out
}

// allInEdges returns every in-edge of node, live, pseudo, and deleted alike.
func (d *Data) allInEdges(node identity.NodeId) []Edge {
	var out []Edge
	for e := range d.backEdges.Get(node) {
		out = append(out, e)
	}
	return out
}

// AddNode adds id as a new live node. The caller is responsible for ensuring id is
// not already present.
func (d *Data) AddNode(id identity.NodeId) {
	d.nodes[id] = struct{}{}
}

// hasLiveEdge reports whether there is a Live edge from src to dest. It relies on
// Edge ordering (Live < Pseudo < Deleted, and NodeId/PatchId comparison within a
// kind) to locate the smallest edge that could possibly go from src to dest via a
// single GetFrom range query.
func (d *Data) hasLiveEdge(src, dest identity.NodeId) bool {
	probe := newLiveEdge(dest, identity.CurPatchID())
	for actual := range d.edges.GetFrom(src, probe) {
		return actual.Dest == dest && actual.Kind == Live
	}
	return false
}

// removePseudoEdgeReasons cleans up the bookkeeping for a pseudo-edge that was just
// removed from src to dest.
func (d *Data) removePseudoEdgeReasons(src, dest identity.NodeId) {
	key := edgePair{Src: src, Dest: dest}
	var reasons []identity.NodeId
	for r := range d.pseudoEdgeReasons.Get(key) {
		reasons = append(reasons, r)
	}
	d.pseudoEdgeReasons.RemoveAll(key)
	for _, r := range reasons {
		d.reasonPseudoEdges.Remove(r, key)
	}
}

// internalDeleteEdge removes edge (in both the forward and back direction) without
// touching any other bookkeeping.
func (d *Data) internalDeleteEdge(src identity.NodeId, edge Edge) {
	d.edges.Remove(src, edge)
	backEdge := Edge{Dest: src, Kind: edge.Kind, Patch: edge.Patch}
	d.backEdges.Remove(edge.Dest, backEdge)
}

// internalDeleteBackEdge is internalDeleteEdge's mirror image, starting from a back-edge.
func (d *Data) internalDeleteBackEdge(dest identity.NodeId, backEdge Edge) {
	d.backEdges.Remove(dest, backEdge)
	edge := Edge{Dest: dest, Kind: backEdge.Kind, Patch: backEdge.Patch}
	d.edges.Remove(backEdge.Dest, edge)
}

// UnaddNode undoes AddNode: removes a live node entirely, along with any edges still
// touching it (ordinarily already gone, but a lingering pseudo-edge is possible).
//
// Panics if id is not currently a live node: unapplying patches in dependency order
// guarantees any reverse-dependency has already been unapplied, so id cannot be a
// tombstone here.
func (d *Data) UnaddNode(id identity.NodeId) {
	if _, ok := d.nodes[id]; !ok {
		panic(fmt.Sprintf("graggle: UnaddNode: %s is not a live node", id))
	}
	delete(d.nodes, id)

	for _, e := range d.allOutEdges(id) {
		d.internalDeleteEdge(id, e)
		if e.Kind == Pseudo {
			d.removePseudoEdgeReasons(id, e.Dest)
		}
	}
	for _, e := range d.allInEdges(id) {
		d.internalDeleteBackEdge(id, e)
		if e.Kind == Pseudo {
			d.removePseudoEdgeReasons(e.Dest, id)
		}
	}
	// id was live, so its removal cannot affect any pseudo-edge bookkeeping further.
}

// DeleteNode turns a live node into a tombstone: it is not removed, but it stops
// being part of the live graph, and every edge touching it is marked Deleted.
//
// Panics if id does not exist as a live node.
func (d *Data) DeleteNode(id identity.NodeId) {
	if _, ok := d.nodes[id]; !ok {
		panic(fmt.Sprintf("graggle: DeleteNode: %s is not a live node", id))
	}
	delete(d.nodes, id)
	d.deletedNodes[id] = struct{}{}
	// deletedPartition may already track id if pseudo-edges haven't been resolved
	// since the last time id's component changed.
	if !d.deletedPartition.Contains(id) {
		d.deletedPartition.Insert(id)
	}

	for _, e := range d.allOutEdges(id) {
		d.deleteOppositeEdge(id, e, true)
	}
	for _, e := range d.allInEdges(id) {
		d.deleteOppositeEdge(id, e, false)
	}
	d.markDirty(id)
	log.WithField("node", id.String()).Debug("deleted node")
}

// UndeleteNode reverses DeleteNode: a tombstone becomes live again.
//
// Panics if id is not currently a tombstone.
func (d *Data) UndeleteNode(id identity.NodeId) {
	if _, ok := d.deletedNodes[id]; !ok {
		panic(fmt.Sprintf("graggle: UndeleteNode: %s is not a deleted node", id))
	}
	delete(d.deletedNodes, id)
	d.nodes[id] = struct{}{}

	for _, e := range d.allOutEdges(id) {
		d.undeleteOppositeEdge(id, e, true)
	}
	for _, e := range d.allInEdges(id) {
		d.undeleteOppositeEdge(id, e, false)
	}

	// The whole component id used to belong to is marked dirty rather than split
	// here; ResolvePseudoEdges figures out the new connectivity lazily.
	d.markDirty(id)
	log.WithField("node", id.String()).Debug("undeleted node")
}

// deleteOppositeEdge updates the edge pointing from edge.Dest back to src, after src
// has just been deleted. edgePointsForwards says whether edge was one of src's
// out-edges (true) or in-edges (false).
func (d *Data) deleteOppositeEdge(src identity.NodeId, edge Edge, edgePointsForwards bool) {
	opposite := d.backEdges
	if !edgePointsForwards {
		opposite = d.edges
	}

	if edge.Kind == Pseudo {
		opposite.Remove(edge.Dest, newPseudoEdge(src))
	} else {
		old := newLiveEdge(src, edge.Patch)
		opposite.Remove(edge.Dest, old)
		old.Kind = Deleted
		opposite.Insert(edge.Dest, old)
	}

	if edge.Kind == Deleted {
		d.mergeComponents(src, edge.Dest)
	}
}

// undeleteOppositeEdge is deleteOppositeEdge's mirror image for UndeleteNode: there
// is no possibility of encountering a pseudo-edge here, since none could have pointed
// at src while it was deleted.
func (d *Data) undeleteOppositeEdge(src identity.NodeId, edge Edge, edgePointsForwards bool) {
	opposite := d.backEdges
	if !edgePointsForwards {
		opposite = d.edges
	}

	old := newDeletedEdge(src, edge.Patch)
	opposite.Remove(edge.Dest, old)
	old.Kind = Live
	opposite.Insert(edge.Dest, old)
}

// mergeComponents records that id1 and id2 (both deleted) are now connected,
// merging their deleted-component partition entries and discarding any pseudo-edges
// that depended on the old (now-stale) components.
func (d *Data) mergeComponents(id1, id2 identity.NodeId) {
	rep1 := d.deletedPartition.Representative(id1)
	rep2 := d.deletedPartition.Representative(id2)
	d.deletedPartition.Merge(rep1, rep2)
	newRep := d.deletedPartition.Representative(rep1)

	d.deleteObsoleteReason(rep1)
	d.deleteObsoleteReason(rep2)

	delete(d.dirtyReps, rep1)
	delete(d.dirtyReps, rep2)
	d.dirtyReps[newRep] = struct{}{}
}

// deleteObsoleteReason discards every pseudo-edge attributed to reason, since reason
// was (or still is) a component representative that just changed shape and can no
// longer be trusted to justify any pseudo-edge.
func (d *Data) deleteObsoleteReason(reason identity.NodeId) {
	var obsolete []edgePair
	for p := range d.reasonPseudoEdges.Get(reason) {
		obsolete = append(obsolete, p)
	}

	for _, p := range obsolete {
		e := newPseudoEdge(p.Dest)
		d.pseudoEdgeReasons.Remove(p, reason)
		if !d.pseudoEdgeReasons.ContainsKey(p) {
			d.internalDeleteEdge(p.Src, e)
		}
	}
	d.reasonPseudoEdges.RemoveAll(reason)
}

// markDirty marks the deleted component containing id as needing its pseudo-edges
// recomputed.
func (d *Data) markDirty(id identity.NodeId) {
	rep := d.deletedPartition.Representative(id)
	d.deleteObsoleteReason(rep)
	d.dirtyReps[rep] = struct{}{}
}

// AddEdge adds an edge from -> to, introduced by patch. Either endpoint may be live
// or deleted; if both are deleted, their components are merged.
func (d *Data) AddEdge(from, to identity.NodeId, patch identity.PatchId) {
	_, fromLive := d.nodes[from]
	_, toLive := d.nodes[to]
	fromDeleted, toDeleted := !fromLive, !toLive
	if fromDeleted {
		if _, ok := d.deletedNodes[from]; !ok {
			panic(fmt.Sprintf("graggle: AddEdge: %s is neither live nor deleted", from))
		}
	}
	if toDeleted {
		if _, ok := d.deletedNodes[to]; !ok {
			panic(fmt.Sprintf("graggle: AddEdge: %s is neither live nor deleted", to))
		}
	}

	d.edges.Insert(from, newRealEdge(to, toDeleted, patch))
	d.backEdges.Insert(to, newRealEdge(from, fromDeleted, patch))

	switch {
	case fromDeleted && toDeleted:
		d.mergeComponents(from, to)
	case fromDeleted:
		d.markDirty(from)
	case toDeleted:
		d.markDirty(to)
	default:
		// A live edge makes a pseudo-edge between the same two nodes redundant.
		if d.edges.Contains(from, newPseudoEdge(to)) {
			d.internalDeleteEdge(from, newPseudoEdge(to))
			d.removePseudoEdgeReasons(from, to)
		}
	}
}

// UnaddEdge removes an edge previously added by AddEdge. Both endpoints must still
// exist (live or deleted) in the graggle; removing a node removes its own edges
// automatically, so callers must unadd an edge before unadding either endpoint.
func (d *Data) UnaddEdge(from, to identity.NodeId, patch identity.PatchId) {
	_, fromDeleted := d.deletedNodes[from]
	_, toDeleted := d.deletedNodes[to]
	_, fromLive := d.nodes[from]
	_, toLive := d.nodes[to]
	if !fromDeleted && !fromLive {
		panic(fmt.Sprintf("graggle: UnaddEdge: %s does not exist", from))
	}
	if !toDeleted && !toLive {
		panic(fmt.Sprintf("graggle: UnaddEdge: %s does not exist", to))
	}

	forward := newRealEdge(to, toDeleted, patch)
	backward := newRealEdge(from, fromDeleted, patch)
	d.edges.Remove(from, forward)
	d.backEdges.Remove(to, backward)

	if fromDeleted {
		d.markDirty(from)
	}
	if toDeleted {
		d.markDirty(to)
	}
	if fromLive && toLive && !d.hasLiveEdge(from, to) {
		// The removed live edge may have been suppressing a pseudo-edge through one of
		// from's deleted neighbors; recompute those components.
		for _, e := range d.allOutEdges(from) {
			if e.Kind == Deleted {
				d.markDirty(e.Dest)
			}
		}
	}
}
