package storage

import (
	"fmt"
	"iter"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/jneem/ojo/graggle"
	"github.com/jneem/ojo/identity"
	"github.com/jneem/ojo/mmap"
	"github.com/jneem/ojo/patch"
)

var log = logrus.WithField("component", "storage")

// INode uniquely identifies a graggle within a repository's storage. Branches
// reference their data indirectly through an INode so that renaming a branch never
// touches the underlying data, and so that CloneInode can give a new branch its own
// copy-on-write-free snapshot of an existing graggle.
type INode struct {
	n uint64
}

// stringKey adapts plain strings to mmap.Ordered, so branch names can key a
// Multimap alongside the PatchId-keyed ones.
type stringKey string

func (s stringKey) Compare(other stringKey) int { return strings.Compare(string(s), string(other)) }

// Storage holds every piece of repository state that grows with history: node
// contents, per-branch graggles, and the full patch pool together with its
// dependency indices.
type Storage struct {
	nextInode uint64

	contents map[identity.NodeId][]byte
	branches map[string]INode
	graggles map[INode]*graggle.Data

	patches map[identity.PatchId]patch.Patch

	branchPatches *mmap.Multimap[stringKey, identity.PatchId]
	patchDeps     *mmap.Multimap[identity.PatchId, identity.PatchId]
	patchRevDeps  *mmap.Multimap[identity.PatchId, identity.PatchId]
}

// New returns an empty Storage.
func New() *Storage {
	return &Storage{
		contents:      make(map[identity.NodeId][]byte),
		branches:      make(map[string]INode),
		graggles:      make(map[INode]*graggle.Data),
		patches:       make(map[identity.PatchId]patch.Patch),
		branchPatches: mmap.New[stringKey, identity.PatchId](),
		patchDeps:     mmap.New[identity.PatchId, identity.PatchId](),
		patchRevDeps:  mmap.New[identity.PatchId, identity.PatchId](),
	}
}

// AllocateInode mints a fresh INode backed by an empty graggle.
func (s *Storage) AllocateInode() INode {
	ret := INode{n: s.nextInode}
	s.nextInode++
	s.graggles[ret] = graggle.NewData()
	return ret
}

// CloneInode mints a fresh INode whose graggle starts as a copy of inode's.
func (s *Storage) CloneInode(inode INode) INode {
	ret := INode{n: s.nextInode}
	s.nextInode++
	s.graggles[ret] = s.graggles[inode].Clone()
	return ret
}

// Contents returns the stored contents of id. Panics if id is unknown: callers are
// expected to have already checked node existence via the graggle.
func (s *Storage) Contents(id identity.NodeId) []byte {
	c, ok := s.contents[id]
	if !ok {
		panic(fmt.Sprintf("storage: no contents recorded for %s", id))
	}
	return c
}

// ContainsNode reports whether id has recorded contents.
func (s *Storage) ContainsNode(id identity.NodeId) bool {
	_, ok := s.contents[id]
	return ok
}

// AddContents records contents for id. Recording the same contents twice is a
// no-op; a different contents value for an id already on record is an internal
// invariant violation and panics.
func (s *Storage) AddContents(id identity.NodeId, contents []byte) {
	existing, ok := s.contents[id]
	if ok {
		if string(existing) != string(contents) {
			panic(fmt.Sprintf("storage: contents mismatch for %s", id))
		}
		return
	}
	s.contents[id] = contents
}

// RemoveContents discards the recorded contents of id.
func (s *Storage) RemoveContents(id identity.NodeId) {
	delete(s.contents, id)
}

// Inode returns the INode a branch currently points at.
func (s *Storage) Inode(branch string) (INode, bool) {
	n, ok := s.branches[branch]
	return n, ok
}

// SetInode points branch at inode, returning the INode it previously pointed at, if
// any.
func (s *Storage) SetInode(branch string, inode INode) (INode, bool) {
	old, ok := s.branches[branch]
	s.branches[branch] = inode
	return old, ok
}

// RemoveInode forgets that branch maps to any INode (the INode's graggle itself is
// untouched).
func (s *Storage) RemoveInode(branch string) {
	delete(s.branches, branch)
}

// UpdateCache resolves pseudo-edges on inode's graggle.
func (s *Storage) UpdateCache(inode INode) {
	s.graggles[inode].ResolvePseudoEdges()
}

// Graggle returns a read-only view of inode's graggle.
func (s *Storage) Graggle(inode INode) graggle.Graggle {
	return s.graggles[inode].View()
}

// RemoveGraggle discards inode's graggle entirely.
func (s *Storage) RemoveGraggle(inode INode) {
	delete(s.graggles, inode)
}

// SetGraggle replaces inode's graggle wholesale.
func (s *Storage) SetGraggle(inode INode, g *graggle.Data) {
	s.graggles[inode] = g
}

// Branches returns every known branch name.
func (s *Storage) Branches() []string {
	names := make([]string, 0, len(s.branches))
	for name := range s.branches {
		names = append(names, name)
	}
	return names
}

// ApplyChanges replays ch against inode's graggle (node and edge mutations), then
// records the new nodes' contents. patchID identifies the patch ch belongs to.
func (s *Storage) ApplyChanges(inode INode, ch patch.Changes, patchID identity.PatchId) {
	g := s.graggles[inode]
	ch.ApplyToGraggle(g, patchID)
	ch.StoreContents(s)
	log.WithFields(logrus.Fields{"inode": inode.n, "patch": patchID.String()}).Debug("applied changes")
}

// UnapplyChanges reverses ApplyChanges.
func (s *Storage) UnapplyChanges(inode INode, ch patch.Changes, patchID identity.PatchId) {
	g := s.graggles[inode]
	ch.UnapplyToGraggle(g, patchID)
	ch.RemoveContents(s)
	log.WithFields(logrus.Fields{"inode": inode.n, "patch": patchID.String()}).Debug("unapplied changes")
}

// Patch returns a previously-registered patch by id.
func (s *Storage) Patch(id identity.PatchId) (patch.Patch, bool) {
	p, ok := s.patches[id]
	return p, ok
}

// AllPatchIDs returns every patch id ever registered, applied or otherwise.
func (s *Storage) AllPatchIDs() iter.Seq[identity.PatchId] {
	return func(yield func(identity.PatchId) bool) {
		for id := range s.patches {
			if !yield(id) {
				return
			}
		}
	}
}

// AddPatch registers p in the pool and indexes its dependency edges.
func (s *Storage) AddPatch(p patch.Patch) {
	s.patches[p.ID()] = p
	for _, dep := range p.Deps() {
		s.patchDeps.Insert(p.ID(), dep)
		s.patchRevDeps.Insert(dep, p.ID())
	}
}

// PatchDeps returns the ids of every patch that id declares as a dependency.
func (s *Storage) PatchDeps(id identity.PatchId) iter.Seq[identity.PatchId] {
	return s.patchDeps.Get(id)
}

// PatchRevDeps returns the ids of every patch that declares id as a dependency.
func (s *Storage) PatchRevDeps(id identity.PatchId) iter.Seq[identity.PatchId] {
	return s.patchRevDeps.Get(id)
}

// BranchHasPatch reports whether branch's history includes patch id.
func (s *Storage) BranchHasPatch(branch string, id identity.PatchId) bool {
	return s.branchPatches.Contains(stringKey(branch), id)
}

// AddBranchPatch records that branch's history includes patch id.
func (s *Storage) AddBranchPatch(branch string, id identity.PatchId) {
	s.branchPatches.Insert(stringKey(branch), id)
}

// RemoveBranchPatch undoes AddBranchPatch.
func (s *Storage) RemoveBranchPatch(branch string, id identity.PatchId) {
	s.branchPatches.Remove(stringKey(branch), id)
}

// ClearBranchPatches drops every patch membership entry recorded for branch.
func (s *Storage) ClearBranchPatches(branch string) {
	s.branchPatches.RemoveAll(stringKey(branch))
}

// BranchPatches returns every patch id recorded as part of branch's history.
func (s *Storage) BranchPatches(branch string) iter.Seq[identity.PatchId] {
	return s.branchPatches.Get(stringKey(branch))
}

// CloneBranchPatches copies every patch membership entry from one branch name to
// another, used when cloning a branch so the new branch starts with the same
// applied-patch bookkeeping as its source.
func (s *Storage) CloneBranchPatches(from, to string) {
	for id := range s.branchPatches.Get(stringKey(from)) {
		s.branchPatches.Insert(stringKey(to), id)
	}
}

type contentEntry struct {
	ID       identity.NodeId `yaml:"id"`
	Contents []byte          `yaml:"contents"`
}

type branchEntry struct {
	Name  string `yaml:"name"`
	Inode uint64 `yaml:"inode"`
}

type graggleEntry struct {
	Inode uint64        `yaml:"inode"`
	Data  *graggle.Data `yaml:"data"`
}

type patchEntry struct {
	ID      identity.PatchId   `yaml:"id"`
	Header  patch.PatchHeader  `yaml:"header"`
	Changes patch.Changes      `yaml:"changes"`
	Deps    []identity.PatchId `yaml:"deps"`
}

type branchPatchEntry struct {
	Branch string           `yaml:"branch"`
	Patch  identity.PatchId `yaml:"patch"`
}

// storageWire is Storage's wire representation: every field serialized explicitly as
// a slice of entries, since Storage's real fields are unexported maps and multimaps
// with no natural YAML mapping of their own. patchDeps/patchRevDeps are deliberately
// not part of this: they're fully derivable from each patch's own Deps, and
// UnmarshalYAML rebuilds them via AddPatch instead of persisting redundant state.
type storageWire struct {
	NextInode     uint64             `yaml:"next_inode"`
	Contents      []contentEntry     `yaml:"contents"`
	Branches      []branchEntry      `yaml:"branches"`
	Graggles      []graggleEntry     `yaml:"graggles"`
	Patches       []patchEntry       `yaml:"patches"`
	BranchPatches []branchPatchEntry `yaml:"branch_patches"`
}

// MarshalYAML encodes s as a storageWire.
func (s *Storage) MarshalYAML() (interface{}, error) {
	w := storageWire{NextInode: s.nextInode}

	for id, c := range s.contents {
		w.Contents = append(w.Contents, contentEntry{ID: id, Contents: c})
	}
	for name, inode := range s.branches {
		w.Branches = append(w.Branches, branchEntry{Name: name, Inode: inode.n})
	}
	for inode, g := range s.graggles {
		w.Graggles = append(w.Graggles, graggleEntry{Inode: inode.n, Data: g})
	}
	for id, p := range s.patches {
		w.Patches = append(w.Patches, patchEntry{ID: id, Header: p.Header(), Changes: p.Changes(), Deps: p.Deps()})
	}
	for _, name := range s.Branches() {
		for id := range s.branchPatches.Get(stringKey(name)) {
			w.BranchPatches = append(w.BranchPatches, branchPatchEntry{Branch: name, Patch: id})
		}
	}

	return w, nil
}

// UnmarshalYAML decodes s from a storageWire, rebuilding patchDeps/patchRevDeps via
// AddPatch rather than reading them from the wire.
func (s *Storage) UnmarshalYAML(value *yaml.Node) error {
	var w storageWire
	if err := value.Decode(&w); err != nil {
		return err
	}

	*s = *New()
	s.nextInode = w.NextInode

	for _, c := range w.Contents {
		s.contents[c.ID] = c.Contents
	}
	for _, b := range w.Branches {
		s.branches[b.Name] = INode{n: b.Inode}
	}
	for _, g := range w.Graggles {
		s.graggles[INode{n: g.Inode}] = g.Data
	}
	for _, p := range w.Patches {
		s.AddPatch(patch.FromParts(p.ID, p.Header, p.Changes, p.Deps))
	}
	for _, bp := range w.BranchPatches {
		s.branchPatches.Insert(stringKey(bp.Branch), bp.Patch)
	}

	return nil
}
