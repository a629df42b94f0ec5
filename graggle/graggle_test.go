package graggle_test

import (
	"math/rand"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/require"

	"github.com/jneem/ojo/graggle"
	"github.com/jneem/ojo/identity"
)

func curNode(i uint64) identity.NodeId { return identity.CurNodeID(i) }

// buildGraggle builds a Data from the given live nodes, deleted nodes (added live
// then deleted), and src-dest edge pairs.
func buildGraggle(live, deleted []uint64, edges [][2]uint64) *graggle.Data {
	d := graggle.NewData()
	for _, n := range live {
		d.AddNode(curNode(n))
	}
	for _, n := range deleted {
		id := curNode(n)
		d.AddNode(id)
		d.DeleteNode(id)
	}
	for _, e := range edges {
		d.AddEdge(curNode(e[0]), curNode(e[1]), identity.CurPatchID())
	}
	return d
}

// pseudoEdgeSet returns every (src,dest) pair with a Pseudo edge currently recorded,
// as node-counter pairs (all test nodes are built with CurNodeID, so the patch
// component is always the zero sentinel).
func pseudoEdgeSet(t *testing.T, d *graggle.Data) map[[2]uint64]struct{} {
	t.Helper()
	out := make(map[[2]uint64]struct{})
	g := d.View()
	for src := range allNodeIds(d) {
		for e := range g.AllOutEdges(src) {
			if e.Kind == graggle.Pseudo {
				out[[2]uint64{src.Node, e.Dest.Node}] = struct{}{}
			}
		}
	}
	return out
}

// allNodeIds enumerates every node (live or deleted) currently known to d, by
// reconstructing candidate ids from the full graph view.
func allNodeIds(d *graggle.Data) func(func(identity.NodeId) bool) {
	return d.View().AsFullGraph().Nodes()
}

func assertPseudoEdges(t *testing.T, d *graggle.Data, want map[[2]uint64]struct{}) {
	t.Helper()
	require.NoError(t, d.CheckInvariants())
	d.ResolvePseudoEdges()
	require.NoError(t, d.CheckInvariants())
	if want == nil {
		want = map[[2]uint64]struct{}{}
	}
	require.Equal(t, want, pseudoEdgeSet(t, d))
}

func pairSet(pairs ...[2]uint64) map[[2]uint64]struct{} {
	out := make(map[[2]uint64]struct{}, len(pairs))
	for _, p := range pairs {
		out[p] = struct{}{}
	}
	return out
}

func TestDeleteMiddleAddsPseudoEdge(t *testing.T) {
	d := buildGraggle([]uint64{0, 2}, []uint64{1}, [][2]uint64{{0, 1}, {1, 2}})
	assertPseudoEdges(t, d, pairSet([2]uint64{0, 2}))
}

func TestDeleteMiddleWithExistingEdgeAddsNone(t *testing.T) {
	d := buildGraggle([]uint64{0, 2}, []uint64{1}, [][2]uint64{{0, 1}, {1, 2}, {0, 2}})
	assertPseudoEdges(t, d, nil)
}

func TestDeleteLongMiddle(t *testing.T) {
	d := buildGraggle(
		[]uint64{0, 5},
		[]uint64{1, 2, 3, 4},
		[][2]uint64{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}},
	)
	assertPseudoEdges(t, d, pairSet([2]uint64{0, 5}))

	d.UnaddEdge(curNode(2), curNode(3), identity.CurPatchID())
	assertPseudoEdges(t, d, nil)

	d.AddEdge(curNode(2), curNode(3), identity.CurPatchID())
	assertPseudoEdges(t, d, pairSet([2]uint64{0, 5}))
}

func TestUndeleteNodeRemovesPseudoEdge(t *testing.T) {
	d := buildGraggle([]uint64{0, 2}, []uint64{1}, [][2]uint64{{0, 1}, {1, 2}})
	assertPseudoEdges(t, d, pairSet([2]uint64{0, 2}))

	d.UndeleteNode(curNode(1))
	assertPseudoEdges(t, d, nil)
}

func TestMultipleDeletedBranchesShareBoundary(t *testing.T) {
	// 0 -> 1 -> 3, 0 -> 2 -> 3, with 1 and 2 both deleted: the pseudo-edge from 0 to 3
	// should appear once, not once per deleted branch.
	d := buildGraggle(
		[]uint64{0, 3},
		[]uint64{1, 2},
		[][2]uint64{{0, 1}, {1, 3}, {0, 2}, {2, 3}},
	)
	assertPseudoEdges(t, d, pairSet([2]uint64{0, 3}))
}

func TestUndeleteChainShrinksPseudoEdgesGradually(t *testing.T) {
	d := buildGraggle(
		[]uint64{0, 5},
		[]uint64{1, 2, 3, 4},
		[][2]uint64{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}},
	)
	assertPseudoEdges(t, d, pairSet([2]uint64{0, 5}))

	d.UndeleteNode(curNode(3))
	assertPseudoEdges(t, d, pairSet([2]uint64{0, 3}, [2]uint64{3, 5}))

	d.UndeleteNode(curNode(1))
	d.UndeleteNode(curNode(2))
	assertPseudoEdges(t, d, pairSet([2]uint64{3, 5}))

	d.UndeleteNode(curNode(4))
	assertPseudoEdges(t, d, nil)
}

func TestAddNodeNextToDeleted(t *testing.T) {
	d := buildGraggle([]uint64{0, 2}, []uint64{1}, [][2]uint64{{0, 1}, {1, 2}})
	d.AddNode(curNode(3))
	d.AddEdge(curNode(1), curNode(3), identity.CurPatchID())
	assertPseudoEdges(t, d, pairSet([2]uint64{0, 2}, [2]uint64{0, 3}))
}

func TestBoundaryVsInteriorNoPseudoEdges(t *testing.T) {
	// Every live node has an edge into the deleted node 3, but 3 has no out-edges, so
	// no path leads through it to another live node and no pseudo-edges should appear.
	d := buildGraggle(
		[]uint64{0, 1, 2},
		[]uint64{3},
		[][2]uint64{{0, 1}, {1, 2}, {2, 0}, {0, 3}, {1, 3}, {2, 3}},
	)
	assertPseudoEdges(t, d, nil)
}

func TestBoundaryVsInteriorConnected(t *testing.T) {
	// Adding edges back out of the deleted node gives every live node a path through
	// it to every other live node.
	d := buildGraggle(
		[]uint64{0, 1, 2},
		[]uint64{3},
		[][2]uint64{
			{0, 1}, {1, 2}, {2, 0},
			{0, 3}, {1, 3}, {2, 3},
			{3, 0}, {3, 1}, {3, 2},
		},
	)
	assertPseudoEdges(t, d, pairSet([2]uint64{0, 2}, [2]uint64{2, 1}, [2]uint64{1, 0}))
}

func TestPseudoEdgeSurvivesOneOfTwoReasons(t *testing.T) {
	d := buildGraggle(
		[]uint64{0, 3},
		[]uint64{1, 2},
		[][2]uint64{{0, 1}, {1, 3}, {0, 2}, {2, 3}},
	)
	assertPseudoEdges(t, d, pairSet([2]uint64{0, 3}))

	d.UndeleteNode(curNode(1))
	assertPseudoEdges(t, d, pairSet([2]uint64{0, 3}))

	d.UndeleteNode(curNode(2))
	assertPseudoEdges(t, d, nil)
}

func TestUnaddNodeCleansUpLingeringPseudoEdges(t *testing.T) {
	d := buildGraggle([]uint64{0, 2}, []uint64{1}, [][2]uint64{{0, 1}, {1, 2}})
	d.ResolvePseudoEdges()
	require.NoError(t, d.CheckInvariants())

	d.UnaddEdge(curNode(0), curNode(1), identity.CurPatchID())
	d.UnaddNode(curNode(0))
	require.NoError(t, d.CheckInvariants())
}

// TestRandomizedMutationsKeepInvariants drives a pseudo-random sequence of
// mutations, resolving and checking invariants along the way, then unwinds the whole
// sequence and checks the graggle comes back empty.
func TestRandomizedMutationsKeepInvariants(t *testing.T) {
	property := func(seed int64) bool {
		rng := rand.New(rand.NewSource(seed))
		d := graggle.NewData()

		const numNodes = 8
		for i := uint64(0); i < numNodes; i++ {
			d.AddNode(curNode(i))
		}

		var edges [][2]uint64
		var deleted []uint64
		deletedSet := make(map[uint64]struct{})
		for op := 0; op < 40; op++ {
			switch rng.Intn(3) {
			case 0: // add an edge between two distinct nodes
				a := uint64(rng.Intn(numNodes))
				b := uint64(rng.Intn(numNodes))
				if a == b {
					continue
				}
				d.AddEdge(curNode(a), curNode(b), identity.CurPatchID())
				edges = append(edges, [2]uint64{a, b})
			case 1: // delete a live node
				n := uint64(rng.Intn(numNodes))
				if _, ok := deletedSet[n]; ok {
					continue
				}
				d.DeleteNode(curNode(n))
				deletedSet[n] = struct{}{}
				deleted = append(deleted, n)
			case 2: // resolve at a random quiescent point
				d.ResolvePseudoEdges()
				if err := d.CheckInvariants(); err != nil {
					t.Logf("seed %d: %v", seed, err)
					return false
				}
			}
		}
		d.ResolvePseudoEdges()
		if err := d.CheckInvariants(); err != nil {
			t.Logf("seed %d: %v", seed, err)
			return false
		}

		// Unwind everything: edges first (unadding an edge needs both endpoints),
		// then undelete, then unadd. The graggle must come back empty.
		for i := len(edges) - 1; i >= 0; i-- {
			d.UnaddEdge(curNode(edges[i][0]), curNode(edges[i][1]), identity.CurPatchID())
		}
		for i := len(deleted) - 1; i >= 0; i-- {
			d.UndeleteNode(curNode(deleted[i]))
		}
		for i := uint64(0); i < numNodes; i++ {
			d.UnaddNode(curNode(i))
		}
		d.ResolvePseudoEdges()
		if err := d.CheckInvariants(); err != nil {
			t.Logf("seed %d: %v", seed, err)
			return false
		}
		return len(pseudoEdgeSet(t, d)) == 0
	}
	if err := quick.Check(property, &quick.Config{MaxCount: 50}); err != nil {
		t.Error(err)
	}
}
