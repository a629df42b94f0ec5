package chaingraggle_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jneem/ojo/chaingraggle"
	"github.com/jneem/ojo/graggle"
	"github.com/jneem/ojo/identity"
)

func node(i uint64) identity.NodeId { return identity.CurNodeID(i) }

func buildLiveGraggle(live []uint64, edges [][2]uint64) *graggle.Data {
	d := graggle.NewData()
	for _, n := range live {
		d.AddNode(node(n))
	}
	for _, e := range edges {
		d.AddEdge(node(e[0]), node(e[1]), identity.CurPatchID())
	}
	return d
}

// TestDiamondHasFourSingletonChains checks that a diamond-shaped graph
// (0 -> 1, 0 -> 2, 1 -> 3, 2 -> 3) has no chains longer than one node, since
// every node has either two out-neighbors or two in-neighbors.
func TestDiamondHasFourSingletonChains(t *testing.T) {
	require := require.New(t)

	d := buildLiveGraggle([]uint64{0, 1, 2, 3}, [][2]uint64{{0, 1}, {0, 2}, {1, 3}, {2, 3}})
	decomp := chaingraggle.FromGraph[graggle.Edge](d.View().AsLiveGraph())

	require.Equal(4, decomp.NumChains())
	for i := 0; i < decomp.NumChains(); i++ {
		require.Len(decomp.Chain(i), 1)
	}
}

// TestChainsPartitionNodeSet checks that the chains of the decomposition partition
// the underlying node set exactly (no repeats, no omissions).
func TestChainsPartitionNodeSet(t *testing.T) {
	require := require.New(t)

	d := buildLiveGraggle(
		[]uint64{0, 1, 2, 3, 4, 5},
		[][2]uint64{{0, 1}, {1, 2}, {3, 4}, {4, 5}, {2, 3}},
	)
	decomp := chaingraggle.FromGraph[graggle.Edge](d.View().AsLiveGraph())

	seen := make(map[identity.NodeId]struct{})
	total := 0
	for i := 0; i < decomp.NumChains(); i++ {
		for _, n := range decomp.Chain(i) {
			_, dup := seen[n]
			require.False(dup, "node %s appeared in more than one chain", n)
			seen[n] = struct{}{}
			total++
		}
	}

	var wantCount int
	for range d.View().Nodes() {
		wantCount++
	}
	require.Equal(wantCount, total)
}

// TestSingleChainForLinearGraggle checks that a purely linear graggle (a File)
// collapses to exactly one chain containing every node in order.
func TestSingleChainForLinearGraggle(t *testing.T) {
	require := require.New(t)

	d := buildLiveGraggle([]uint64{0, 1, 2}, [][2]uint64{{0, 1}, {1, 2}})
	decomp := chaingraggle.FromGraph[graggle.Edge](d.View().AsLiveGraph())

	require.Equal(1, decomp.NumChains())
	require.Equal([]identity.NodeId{node(0), node(1), node(2)}, decomp.Chain(0))
}

// TestCycleBecomesCluster checks that a nontrivial SCC (a 2-cycle) collapses into
// two singleton chains recorded together as one cluster.
func TestCycleBecomesCluster(t *testing.T) {
	require := require.New(t)

	d := buildLiveGraggle([]uint64{0, 1}, [][2]uint64{{0, 1}, {1, 0}})
	decomp := chaingraggle.FromGraph[graggle.Edge](d.View().AsLiveGraph())

	require.Equal(2, decomp.NumChains())

	var clusters []map[int]struct{}
	for cl := range decomp.Clusters() {
		clusters = append(clusters, cl)
	}
	require.Len(clusters, 1)
	require.Len(clusters[0], 2)
}
