package ojo

import (
	"bytes"
	"iter"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jneem/ojo/graggle"
	"github.com/jneem/ojo/graph"
	"github.com/jneem/ojo/identity"
	"github.com/jneem/ojo/linediff"
	"github.com/jneem/ojo/patch"
	"github.com/jneem/ojo/storage"
)

// Repo is the main interface to an ojo repository. Modifications made to it are not
// saved unless Write is called.
type Repo struct {
	// RootDir is the path to the root directory of the repository. Empty for a
	// repository created with InitTmp.
	RootDir string
	// RepoDir is the path to the directory where all of ojo's data is stored
	// (RootDir/.ojo).
	RepoDir string
	// DbPath is the path to the database file containing all of the history.
	DbPath string
	// CurrentBranch is the name of the branch currently checked out.
	CurrentBranch string

	storage  *storage.Storage
	diffAlgo linediff.Algorithm[string]
}

func defaultDiffAlgorithm() linediff.Algorithm[string] {
	return linediff.Default[string]()
}

// inode resolves branch to its INode, or ErrUnknownBranch.
func (r *Repo) inode(branch string) (storage.INode, error) {
	inode, ok := r.storage.Inode(branch)
	if !ok {
		return storage.INode{}, newErr(ErrKindUnknownBranch, ErrUnknownBranch, "ojo: branch %q", branch)
	}
	return inode, nil
}

// Clear resets branch's graggle to empty and drops its patch membership, without
// deleting the branch itself.
func (r *Repo) Clear(branch string) error {
	inode, err := r.inode(branch)
	if err != nil {
		return err
	}
	r.storage.ClearBranchPatches(branch)
	r.storage.RemoveGraggle(inode)
	r.storage.SetGraggle(inode, graggle.NewData())
	return nil
}

// Graggle returns a read-only view of the graggle backing branch.
func (r *Repo) Graggle(branch string) (graggle.Graggle, error) {
	inode, err := r.inode(branch)
	if err != nil {
		return graggle.Graggle{}, err
	}
	return r.storage.Graggle(inode), nil
}

// File renders branch as a totally ordered file, assuming its graggle represents one.
// Returns an ErrKindNotOrdered Error if it has cycles or diamonds (i.e. no unique
// topological sort).
func (r *Repo) File(branch string) (storage.File, error) {
	g, err := r.Graggle(branch)
	if err != nil {
		return storage.File{}, err
	}
	order, ok := graph.LinearOrder[identity.NodeId, graggle.Edge](g.AsLiveGraph())
	if !ok {
		return storage.File{}, newErr(ErrKindNotOrdered, ErrNotOrdered, "ojo: branch %q", branch)
	}
	return storage.FromIDs(order, r.storage), nil
}

// Contents returns the contents recorded for id.
func (r *Repo) Contents(id identity.NodeId) []byte {
	return r.storage.Contents(id)
}

// OpenPatch returns a previously-registered patch by id.
func (r *Repo) OpenPatch(id identity.PatchId) (patch.Patch, error) {
	p, ok := r.storage.Patch(id)
	if !ok {
		return patch.Patch{}, newErr(ErrKindUnknownPatch, ErrUnknownPatch, "ojo: open patch %s", id)
	}
	return p, nil
}

// OpenPatchData returns id's canonical wire-format bytes: the same format
// RegisterPatch consumes.
func (r *Repo) OpenPatchData(id identity.PatchId) ([]byte, error) {
	p, err := r.OpenPatch(id)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := p.WriteTo(&buf); err != nil {
		return nil, newErr(ErrKindDbCorruption, ErrDbCorruption, "ojo: open patch data %s: %v", id, err)
	}
	return buf.Bytes(), nil
}

// checkPatchValidity validates p before it is trusted as internal data: every
// declared dependency must already be a known patch, and every node p references
// must either be newly introduced by p or already present and covered by a
// dependency.
func (r *Repo) checkPatchValidity(p patch.Patch) error {
	for _, dep := range p.Deps() {
		if _, ok := r.storage.Patch(dep); !ok {
			return newErr(ErrKindMissingDep, ErrMissingDep, "ojo: register patch %s: dependency %s", p.ID(), dep)
		}
	}

	depSet := make(map[identity.PatchId]struct{}, len(p.Deps()))
	for _, d := range p.Deps() {
		depSet[d] = struct{}{}
	}
	newNodes := make(map[identity.NodeId]struct{})
	for _, c := range p.Changes().Changes {
		if c.Kind == patch.NewNode {
			newNodes[c.ID] = struct{}{}
		}
	}
	hasNode := func(id identity.NodeId) bool {
		if _, ok := newNodes[id]; ok {
			return true
		}
		_, depOK := depSet[id.Patch]
		return depOK && r.storage.ContainsNode(id)
	}

	for _, c := range p.Changes().Changes {
		switch c.Kind {
		case patch.NewNode, patch.DeleteNode:
			if !hasNode(c.ID) {
				return newErr(ErrKindUnknownNode, ErrUnknownNode, "ojo: register patch %s: node %s", p.ID(), c.ID)
			}
		case patch.NewEdge:
			if !hasNode(c.Src) {
				return newErr(ErrKindUnknownNode, ErrUnknownNode, "ojo: register patch %s: node %s", p.ID(), c.Src)
			}
			if !hasNode(c.Dst) {
				return newErr(ErrKindUnknownNode, ErrUnknownNode, "ojo: register patch %s: node %s", p.ID(), c.Dst)
			}
		}
	}
	return nil
}

// registerPatchWithData records p in storage.patches and its dependency indices,
// after validating it. If a patch with p's id is already known, this is a no-op if
// the two agree, or an ErrKindPatchCollision Error if they don't.
func (r *Repo) registerPatchWithData(p patch.Patch) error {
	if existing, ok := r.storage.Patch(p.ID()); ok {
		if existing.Equal(p) {
			return nil
		}
		return newErr(ErrKindPatchCollision, ErrPatchCollision, "ojo: patch %s", p.ID())
	}
	if err := r.checkPatchValidity(p); err != nil {
		return err
	}
	r.storage.AddPatch(p)
	return nil
}

// RegisterPatch introduces a patch, encoded in its canonical wire format, to the
// repository. After registering, it can be applied to any branch by its id.
func (r *Repo) RegisterPatch(data []byte) (identity.PatchId, error) {
	p, err := patch.ParseRegisteredPatch(bytes.NewReader(data))
	if err != nil {
		return identity.PatchId{}, newErr(ErrKindDbCorruption, ErrDbCorruption, "ojo: register patch: %v", err)
	}
	if err := r.registerPatchWithData(p); err != nil {
		return identity.PatchId{}, err
	}
	return p.ID(), nil
}

// CreatePatch authors, hashes, and registers a new patch from changes and returns its
// id. There is no need to separately call RegisterPatch on the result.
func (r *Repo) CreatePatch(author, description string, changes patch.Changes) (identity.PatchId, error) {
	up := patch.NewUnidentifiedPatch(author, description, changes, time.Now())
	var buf bytes.Buffer
	p, err := up.WriteOut(&buf)
	if err != nil {
		return identity.PatchId{}, newErr(ErrKindDbCorruption, ErrDbCorruption, "ojo: create patch: %v", err)
	}
	if err := r.registerPatchWithData(p); err != nil {
		return identity.PatchId{}, err
	}
	return p.ID(), nil
}

// planApplyOrder computes, without mutating anything, the order in which id and its
// transitive unapplied dependencies must be applied to branch. Returns an error (and
// no mutation ever happens) if any patch reached in the closure is unknown, so a
// failed apply never leaves the branch partially applied.
func (r *Repo) planApplyOrder(branch string, id identity.PatchId) ([]identity.PatchId, error) {
	if r.storage.BranchHasPatch(branch, id) {
		return nil, nil
	}

	willApply := make(map[identity.PatchId]struct{})
	var order []identity.PatchId
	stack := []identity.PatchId{id}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		if _, ok := r.storage.Patch(cur); !ok {
			return nil, newErr(ErrKindUnknownPatch, ErrUnknownPatch, "ojo: apply patch %s", cur)
		}

		var unapplied []identity.PatchId
		for dep := range r.storage.PatchDeps(cur) {
			if _, planned := willApply[dep]; planned {
				continue
			}
			if !r.storage.BranchHasPatch(branch, dep) {
				unapplied = append(unapplied, dep)
			}
		}

		if len(unapplied) == 0 {
			if _, planned := willApply[cur]; !planned && !r.storage.BranchHasPatch(branch, cur) {
				willApply[cur] = struct{}{}
				order = append(order, cur)
			}
			stack = stack[:len(stack)-1]
		} else {
			stack = append(stack, unapplied...)
		}
	}
	return order, nil
}

// ApplyPatch applies a patch, and all of its not-yet-applied dependencies, to branch.
// Returns every patch id that was actually applied, in application order. A no-op
// (returning an empty slice) if id is already applied to branch.
func (r *Repo) ApplyPatch(branch string, id identity.PatchId) ([]identity.PatchId, error) {
	inode, err := r.inode(branch)
	if err != nil {
		return nil, err
	}
	order, err := r.planApplyOrder(branch, id)
	if err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return nil, nil
	}

	for _, pid := range order {
		p, _ := r.storage.Patch(pid)
		r.storage.ApplyChanges(inode, p.Changes(), pid)
		r.storage.AddBranchPatch(branch, pid)
	}
	r.storage.UpdateCache(inode)
	log.WithFields(logrus.Fields{"branch": branch, "patch": id.String(), "applied": len(order)}).Debug("applied patch")
	return order, nil
}

// planUnapplyOrder mirrors planApplyOrder, over reverse dependencies: a patch can
// only be unapplied after every applied patch that depends on it. Like
// planApplyOrder, it surfaces any unknown patch before anything mutates.
func (r *Repo) planUnapplyOrder(branch string, id identity.PatchId) ([]identity.PatchId, error) {
	if !r.storage.BranchHasPatch(branch, id) {
		return nil, nil
	}

	willUnapply := make(map[identity.PatchId]struct{})
	var order []identity.PatchId
	stack := []identity.PatchId{id}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		if _, ok := r.storage.Patch(cur); !ok {
			return nil, newErr(ErrKindUnknownPatch, ErrUnknownPatch, "ojo: unapply patch %s", cur)
		}

		var appliedRevDeps []identity.PatchId
		for dep := range r.storage.PatchRevDeps(cur) {
			if _, planned := willUnapply[dep]; planned {
				continue
			}
			if r.storage.BranchHasPatch(branch, dep) {
				appliedRevDeps = append(appliedRevDeps, dep)
			}
		}

		if len(appliedRevDeps) == 0 {
			if _, planned := willUnapply[cur]; !planned && r.storage.BranchHasPatch(branch, cur) {
				willUnapply[cur] = struct{}{}
				order = append(order, cur)
			}
			stack = stack[:len(stack)-1]
		} else {
			stack = append(stack, appliedRevDeps...)
		}
	}
	return order, nil
}

// UnapplyPatch unapplies a patch, and everything applied to branch that depends on
// it, in an order that never unapplies a patch while an applied reverse-dependency
// remains. Returns every patch id that was actually unapplied. A no-op if id is not
// currently applied to branch.
func (r *Repo) UnapplyPatch(branch string, id identity.PatchId) ([]identity.PatchId, error) {
	inode, err := r.inode(branch)
	if err != nil {
		return nil, err
	}
	order, err := r.planUnapplyOrder(branch, id)
	if err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return nil, nil
	}

	for _, pid := range order {
		p, _ := r.storage.Patch(pid)
		r.storage.UnapplyChanges(inode, p.Changes(), pid)
		r.storage.RemoveBranchPatch(branch, pid)
	}
	r.storage.UpdateCache(inode)
	log.WithFields(logrus.Fields{"branch": branch, "patch": id.String(), "unapplied": len(order)}).Debug("unapplied patch")
	return order, nil
}

// AllPatches returns every patch id the repository has ever registered, applied or
// otherwise.
func (r *Repo) AllPatches() iter.Seq[identity.PatchId] {
	return r.storage.AllPatchIDs()
}

// Patches returns every patch id applied to branch.
func (r *Repo) Patches(branch string) iter.Seq[identity.PatchId] {
	return r.storage.BranchPatches(branch)
}

// PatchDeps returns every direct dependency of id.
func (r *Repo) PatchDeps(id identity.PatchId) iter.Seq[identity.PatchId] {
	return r.storage.PatchDeps(id)
}

// PatchRevDeps returns every patch that directly depends on id.
func (r *Repo) PatchRevDeps(id identity.PatchId) iter.Seq[identity.PatchId] {
	return r.storage.PatchRevDeps(id)
}

// Branches returns the names of every known branch.
func (r *Repo) Branches() []string {
	return r.storage.Branches()
}

// CreateBranch creates a new, empty branch named branch.
func (r *Repo) CreateBranch(branch string) error {
	if _, ok := r.storage.Inode(branch); ok {
		return newErr(ErrKindBranchExists, ErrBranchExists, "ojo: create branch %q", branch)
	}
	inode := r.storage.AllocateInode()
	r.storage.SetInode(branch, inode)
	return nil
}

// CloneBranch copies from's graggle and patch membership to a new branch named to,
// which must not already exist. The clone carries patch membership alongside the
// deep-copied graggle, not just the graph data.
func (r *Repo) CloneBranch(from, to string) error {
	if _, ok := r.storage.Inode(to); ok {
		return newErr(ErrKindBranchExists, ErrBranchExists, "ojo: clone branch: %q", to)
	}
	fromInode, err := r.inode(from)
	if err != nil {
		return err
	}
	toInode := r.storage.CloneInode(fromInode)
	r.storage.SetInode(to, toInode)
	r.storage.CloneBranchPatches(from, to)
	return nil
}

// DeleteBranch removes branch entirely, along with its graggle and patch membership.
// Fails with an ErrKindCurrentBranch Error if branch is the currently checked-out
// branch.
func (r *Repo) DeleteBranch(branch string) error {
	if branch == r.CurrentBranch {
		return newErr(ErrKindCurrentBranch, ErrCurrentBranch, "ojo: delete branch %q", branch)
	}
	inode, err := r.inode(branch)
	if err != nil {
		return err
	}
	r.storage.RemoveGraggle(inode)
	r.storage.RemoveInode(branch)
	r.storage.ClearBranchPatches(branch)
	return nil
}

// SwitchBranch changes the currently checked-out branch to branch, which must
// already exist.
func (r *Repo) SwitchBranch(branch string) error {
	if _, ok := r.storage.Inode(branch); !ok {
		return newErr(ErrKindUnknownBranch, ErrUnknownBranch, "ojo: switch branch %q", branch)
	}
	r.CurrentBranch = branch
	return nil
}

// Diff is the result of diffing a branch's file rendering against raw bytes.
type Diff struct {
	// FileA is the branch's current rendering.
	FileA storage.File
	// FileB is the raw bytes, split into lines.
	FileB storage.File
	// LineDiff is the line-level diff taking FileA to FileB.
	LineDiff []linediff.LineDiff
}

// Diff renders branch as a File (failing with ErrKindNotOrdered if it isn't a
// totally ordered file) and diffs it, line by line, against raw bytes.
func (r *Repo) Diff(branch string, raw []byte) (Diff, error) {
	fileA, err := r.File(branch)
	if err != nil {
		return Diff{}, err
	}
	fileB := storage.FromBytes(raw)

	linesA := make([]string, fileA.NumNodes())
	for i := range linesA {
		linesA[i] = string(fileA.Line(i))
	}
	linesB := make([]string, fileB.NumNodes())
	for i := range linesB {
		linesB[i] = string(fileB.Line(i))
	}

	d := r.diffAlgo.Diff(linesA, linesB)
	return Diff{FileA: fileA, FileB: fileB, LineDiff: d}, nil
}
