package storage_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jneem/ojo/identity"
	"github.com/jneem/ojo/patch"
	"github.com/jneem/ojo/storage"
)

func TestAllocateAndSetInode(t *testing.T) {
	require := require.New(t)
	s := storage.New()

	inode := s.AllocateInode()
	s.SetInode("master", inode)

	got, ok := s.Inode("master")
	require.True(ok)
	require.Equal(inode, got)
}

func TestCloneInodeIsIndependent(t *testing.T) {
	require := require.New(t)
	s := storage.New()

	orig := s.AllocateInode()
	s.ApplyChanges(orig, patch.Changes{Changes: []patch.Change{
		patch.NewNodeChange(identity.CurNodeID(0), []byte("x")),
	}}, identity.CurPatchID())

	clone := s.CloneInode(orig)
	s.ApplyChanges(clone, patch.Changes{Changes: []patch.Change{
		patch.NewNodeChange(identity.CurNodeID(1), []byte("y")),
	}}, identity.CurPatchID())

	require.True(s.Graggle(orig).HasNode(identity.CurNodeID(0)))
	require.False(s.Graggle(orig).HasNode(identity.CurNodeID(1)))
	require.True(s.Graggle(clone).HasNode(identity.CurNodeID(1)))
}

func TestApplyUnapplyChangesRoundTrips(t *testing.T) {
	require := require.New(t)
	s := storage.New()
	inode := s.AllocateInode()

	ch := patch.Changes{Changes: []patch.Change{
		patch.NewNodeChange(identity.CurNodeID(0), []byte("a\n")),
		patch.NewNodeChange(identity.CurNodeID(1), []byte("b\n")),
		patch.NewEdgeChange(identity.CurNodeID(0), identity.CurNodeID(1)),
	}}
	patchID := identity.CurPatchID()

	s.ApplyChanges(inode, ch, patchID)
	require.True(s.ContainsNode(identity.CurNodeID(0)))
	require.True(s.Graggle(inode).HasNode(identity.CurNodeID(1)))

	s.UnapplyChanges(inode, ch, patchID)
	require.False(s.ContainsNode(identity.CurNodeID(0)))
	require.False(s.Graggle(inode).HasNode(identity.CurNodeID(1)))
}

func TestBranchPatchesTracksMembership(t *testing.T) {
	require := require.New(t)
	s := storage.New()

	var id identity.PatchId
	require.False(s.BranchHasPatch("master", id))

	s.AddBranchPatch("master", id)
	require.True(s.BranchHasPatch("master", id))

	s.RemoveBranchPatch("master", id)
	require.False(s.BranchHasPatch("master", id))
}

func TestCloneBranchPatchesCopiesMembership(t *testing.T) {
	require := require.New(t)
	s := storage.New()

	var id1, id2 identity.PatchId
	idBytes := [32]byte{1}
	id2 = identity.PatchIDFromHash(idBytes)

	s.AddBranchPatch("master", id1)
	s.AddBranchPatch("master", id2)

	s.CloneBranchPatches("master", "feature")

	require.True(s.BranchHasPatch("feature", id1))
	require.True(s.BranchHasPatch("feature", id2))
}

func TestAddPatchIndexesDeps(t *testing.T) {
	require := require.New(t)
	s := storage.New()

	var depBytes [32]byte
	depBytes[0] = 7
	depID := identity.PatchIDFromHash(depBytes)

	up := patch.NewUnidentifiedPatch("a", "d", patch.Changes{Changes: []patch.Change{
		patch.DeleteNodeChange(identity.NodeId{Patch: depID, Node: 0}),
	}}, time.Unix(0, 0).UTC())
	p, err := up.WriteOut(discard{})
	require.NoError(err)

	s.AddPatch(p)

	var deps []identity.PatchId
	for d := range s.PatchDeps(p.ID()) {
		deps = append(deps, d)
	}
	require.Equal([]identity.PatchId{depID}, deps)

	var revDeps []identity.PatchId
	for d := range s.PatchRevDeps(depID) {
		revDeps = append(revDeps, d)
	}
	require.Equal([]identity.PatchId{p.ID()}, revDeps)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
