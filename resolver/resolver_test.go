package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jneem/ojo/graggle"
	"github.com/jneem/ojo/identity"
	"github.com/jneem/ojo/patch"
)

func node(i uint64) identity.NodeId { return identity.CurNodeID(i) }

func buildGraggle(live []uint64, edges [][2]uint64) graggle.Graggle {
	d := graggle.NewData()
	for _, n := range live {
		d.AddNode(node(n))
	}
	for _, e := range edges {
		d.AddEdge(node(e[0]), node(e[1]), identity.CurPatchID())
	}
	return d.View()
}

func chainIDs(cc CandidateChain) []identity.NodeId {
	var ids []identity.NodeId
	for id := range cc.Iter() {
		ids = append(ids, id)
	}
	return ids
}

// TestChainIterFollowsUniqueRuns mirrors the "chain_iter" scenario: a chain
// continues past a node only while it has exactly one out-neighbor and that
// out-neighbor has exactly one in-neighbor.
func TestChainIterFollowsUniqueRuns(t *testing.T) {
	require := require.New(t)

	g := buildGraggle(
		[]uint64{0, 1, 2, 3, 4, 5},
		[][2]uint64{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}, {0, 5}, {2, 5}},
	)

	check := func(start uint64, want []uint64) {
		cc := CandidateChain{graggle: g, id: node(start)}
		wantIDs := make([]identity.NodeId, len(want))
		for i, w := range want {
			wantIDs[i] = node(w)
		}
		require.Equal(wantIDs, chainIDs(cc))
	}

	check(0, []uint64{0})
	check(1, []uint64{1, 2})
	check(2, []uint64{2})
	check(3, []uint64{3, 4})
	check(4, []uint64{4})
	check(5, []uint64{5})
}

// TestResolverDiamond mirrors the "resolver_diamond" scenario: a diamond graggle has
// no cycles, so OrderResolver's initial candidates are driven entirely by in-degree.
func TestResolverDiamond(t *testing.T) {
	require := require.New(t)

	g := buildGraggle([]uint64{0, 1, 2, 3}, [][2]uint64{{0, 1}, {0, 2}, {1, 3}, {2, 3}})
	res := NewCycleResolver(g)
	_, ok := res.NextComponent()
	require.False(ok, "a diamond has no cycles")

	ord := res.IntoOrderResolver()

	require.ElementsMatch([]identity.NodeId{node(0)}, collectFirsts(ord))

	ord.Choose(node(0))
	require.ElementsMatch([]identity.NodeId{node(1), node(2)}, collectFirsts(ord))

	ord.Choose(node(1))
	require.ElementsMatch([]identity.NodeId{node(2)}, collectFirsts(ord))

	ord.Choose(node(2))
	require.ElementsMatch([]identity.NodeId{node(3)}, collectFirsts(ord))

	ord.Choose(node(3))
	require.True(ord.IsFinished())

	want := patch.Changes{Changes: []patch.Change{
		patch.NewEdgeChange(node(1), node(2)),
	}}
	require.Equal(want, ord.Changes())
}

func collectFirsts(ord *OrderResolver) []identity.NodeId {
	var ids []identity.NodeId
	for cc := range ord.Candidates() {
		ids = append(ids, cc.First())
	}
	return ids
}

// TestCycleResolverChoosesSurvivorFromEachSCC checks that a 2-cycle is resolved by
// picking a surviving representative, and that the loser is scheduled for deletion in
// the resulting Changes.
func TestCycleResolverChoosesSurvivorFromEachSCC(t *testing.T) {
	require := require.New(t)

	g := buildGraggle([]uint64{0, 1}, [][2]uint64{{0, 1}, {1, 0}})
	res := NewCycleResolver(g)

	comp, ok := res.NextComponent()
	require.True(ok)
	require.ElementsMatch([]identity.NodeId{node(0), node(1)}, comp)

	res.ResolveComponent(node(0))
	_, ok = res.NextComponent()
	require.False(ok)

	ord := res.IntoOrderResolver()
	require.ElementsMatch([]identity.NodeId{node(0)}, collectFirsts(ord))

	ord.Choose(node(0))
	require.True(ord.IsFinished())

	var deletesNode1 bool
	for _, c := range ord.Changes().Changes {
		if c.Kind == patch.DeleteNode && c.ID == node(1) {
			deletesNode1 = true
		}
	}
	require.True(deletesNode1)
}
