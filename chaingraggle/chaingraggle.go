package chaingraggle

import (
	"iter"

	"github.com/jneem/ojo/graph"
	"github.com/jneem/ojo/identity"
	"github.com/jneem/ojo/mmap"
)

// intKey adapts plain ints to mmap.Ordered, so chain indices can key a Multimap.
type intKey int

func (i intKey) Compare(other intKey) int {
	switch {
	case i < other:
		return -1
	case i > other:
		return 1
	default:
		return 0
	}
}

// ChainGraggle is a graggle with every maximal chain collapsed into a single node.
// Its own node set is the set of chain indices 0..NumChains, and it is itself a
// graph.Graph[int, graph.SelfEdge[int]] over those indices.
type ChainGraggle struct {
	chains   [][]identity.NodeId
	edges    *mmap.Multimap[intKey, intKey]
	clusters []map[int]struct{}
}

// NumChains returns how many chains the decomposition produced.
func (c *ChainGraggle) NumChains() int {
	return len(c.chains)
}

// Chain returns the sequence of NodeIds making up the chain at index i, in order.
func (c *ChainGraggle) Chain(i int) []identity.NodeId {
	return c.chains[i]
}

// Clusters returns the chain-index sets of every nontrivial strongly connected
// component found in the original graph; each one collapsed to length-1 chains that
// are worth grouping visually as a single cluster.
func (c *ChainGraggle) Clusters() iter.Seq[map[int]struct{}] {
	return func(yield func(map[int]struct{}) bool) {
		for _, cl := range c.clusters {
			if !yield(cl) {
				return
			}
		}
	}
}

// Nodes returns every chain index.
func (c *ChainGraggle) Nodes() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := range c.chains {
			if !yield(i) {
				return
			}
		}
	}
}

// OutEdges returns the chain-to-chain out-edges of chain u.
func (c *ChainGraggle) OutEdges(u int) iter.Seq[graph.SelfEdge[int]] {
	return func(yield func(graph.SelfEdge[int]) bool) {
		for v := range c.edges.Get(intKey(u)) {
			if !yield(graph.SelfEdge[int]{Node: int(v)}) {
				return
			}
		}
	}
}

// InEdges is not implemented: the underlying edge index only stores forward edges,
// and nothing in this module needs reverse chain-to-chain traversal.
func (c *ChainGraggle) InEdges(u int) iter.Seq[graph.SelfEdge[int]] {
	panic("chaingraggle: InEdges is not implemented for ChainGraggle")
}

// onChain reports whether node has at most one in-neighbor and at most one
// out-neighbor in g, the necessary condition (together with not belonging to a
// nontrivial SCC, checked by the caller) for node to sit on a chain.
func onChain[N comparable, E graph.Edge[N]](g graph.Graph[N, E], node N) bool {
	return takeAtMost2(graph.OutNeighbors[N, E](g, node)) <= 1 &&
		takeAtMost2(graph.InNeighbors[N, E](g, node)) <= 1
}

func takeAtMost2[N any](seq iter.Seq[N]) int {
	count := 0
	for range seq {
		count++
		if count >= 2 {
			return count
		}
	}
	return count
}

func firstOrZero[N any](seq iter.Seq[N]) (N, bool) {
	for v := range seq {
		return v, true
	}
	var zero N
	return zero, false
}

// chainFirst follows node backward through its in-neighbors as long as they remain
// on-chain, returning the first node of the chain node belongs to.
func chainFirst[N comparable, E graph.Edge[N]](g graph.Graph[N, E], node N) N {
	if !onChain[N, E](g, node) {
		return node
	}
	ret := node
	for {
		prev, ok := firstOrZero(graph.InNeighbors[N, E](g, ret))
		if !ok || !onChain[N, E](g, prev) {
			return ret
		}
		ret = prev
	}
}

// collectChain walks forward from first, following the unique out-neighbor as long
// as it stays on-chain, and returns the resulting node sequence.
func collectChain[N comparable, E graph.Edge[N]](g graph.Graph[N, E], first N) []N {
	ret := []N{first}
	if !onChain[N, E](g, first) {
		return ret
	}
	cur := first
	for {
		next, ok := firstOrZero(graph.OutNeighbors[N, E](g, cur))
		if !ok || !onChain[N, E](g, next) {
			return ret
		}
		ret = append(ret, next)
		cur = next
	}
}

// FromGraph decomposes g into a ChainGraggle.
func FromGraph[E graph.Edge[identity.NodeId]](g graph.Graph[identity.NodeId, E]) *ChainGraggle {
	sccs := graph.Tarjan[identity.NodeId, E](g)

	singles := make(map[identity.NodeId]struct{})
	var chains [][]identity.NodeId
	nodePart := make(map[identity.NodeId]int)

	for _, part := range sccs.Parts() {
		if len(part) == 1 {
			singles[part[0]] = struct{}{}
			continue
		}
		for _, n := range part {
			nodePart[n] = len(chains)
			chains = append(chains, []identity.NodeId{n})
		}
	}

	for len(singles) > 0 {
		var start identity.NodeId
		for n := range singles {
			start = n
			break
		}
		first := chainFirst[identity.NodeId, E](g, start)
		chain := collectChain[identity.NodeId, E](g, first)
		idx := len(chains)
		for _, v := range chain {
			delete(singles, v)
			nodePart[v] = idx
		}
		chains = append(chains, chain)
	}

	edges := mmap.New[intKey, intKey]()
	for u := range g.Nodes() {
		for v := range graph.OutNeighbors[identity.NodeId, E](g, u) {
			uIdx, vIdx := nodePart[u], nodePart[v]
			if uIdx != vIdx {
				edges.Insert(intKey(uIdx), intKey(vIdx))
			}
		}
	}

	var clusters []map[int]struct{}
	for _, part := range sccs.Parts() {
		if len(part) <= 1 {
			continue
		}
		cluster := make(map[int]struct{}, len(part))
		for _, n := range part {
			cluster[nodePart[n]] = struct{}{}
		}
		clusters = append(clusters, cluster)
	}

	return &ChainGraggle{chains: chains, edges: edges, clusters: clusters}
}
