package resolver

import (
	"fmt"
	"iter"

	"github.com/jneem/ojo/graggle"
	"github.com/jneem/ojo/graph"
	"github.com/jneem/ojo/identity"
	"github.com/jneem/ojo/patch"
)

// CycleResolver interactively removes cycles from a graggle.
//
// Since a graggle never deletes edges outright, cycles are resolved by deleting
// nodes: the graggle is partitioned into strongly connected components, and from
// each component with more than one node exactly one representative must be chosen
// to survive.
type CycleResolver struct {
	g    graggle.Graggle
	sccs *graph.Decomposition[identity.NodeId, graggle.Edge]

	// largeSCCs holds the indices of every component with more than one member,
	// shrinking as each is resolved.
	largeSCCs []int
	sccReps   map[int]identity.NodeId
}

// NewCycleResolver builds a resolver for eliminating cycles in g.
func NewCycleResolver(g graggle.Graggle) *CycleResolver {
	sccs := graph.Tarjan[identity.NodeId, graggle.Edge](g.AsLiveGraph())

	var large []int
	for i, part := range sccs.Parts() {
		if len(part) >= 2 {
			large = append(large, i)
		}
	}

	return &CycleResolver{
		g:         g,
		sccs:      sccs,
		largeSCCs: large,
		sccReps:   make(map[int]identity.NodeId),
	}
}

// NextComponent returns the next strongly connected component that still needs a
// representative chosen, and false if none remain.
func (c *CycleResolver) NextComponent() ([]identity.NodeId, bool) {
	if len(c.largeSCCs) == 0 {
		return nil, false
	}
	return c.sccs.Part(c.largeSCCs[len(c.largeSCCs)-1]), true
}

func (c *CycleResolver) cur() int {
	return c.largeSCCs[len(c.largeSCCs)-1]
}

// ResolveComponent resolves the current strongly connected component by choosing rep
// to survive and (implicitly) every other node in the component for deletion.
//
// Panics if rep does not belong to the current component, or if there is no
// component left to resolve.
func (c *CycleResolver) ResolveComponent(rep identity.NodeId) {
	cur := c.cur()
	if !contains(c.sccs.Part(cur), rep) {
		panic("resolver: rep is not a member of the current component")
	}
	c.largeSCCs = c.largeSCCs[:len(c.largeSCCs)-1]
	c.sccReps[cur] = rep
}

// IntoOrderResolver moves to the next stage of resolution, assuming every cycle has
// already been resolved.
//
// Panics if any strongly connected component still awaits a chosen representative.
func (c *CycleResolver) IntoOrderResolver() *OrderResolver {
	if len(c.largeSCCs) != 0 {
		panic("resolver: cannot move to order resolution with unresolved cycles")
	}

	sccReps := make([]identity.NodeId, c.sccs.NumComponents())
	for i := 0; i < c.sccs.NumComponents(); i++ {
		if rep, ok := c.sccReps[i]; ok {
			sccReps[i] = rep
			continue
		}
		part := c.sccs.Part(i)
		if len(part) != 1 {
			panic("resolver: unresolved component must have had size 1")
		}
		sccReps[i] = part[0]
	}

	remainingInEdges := make(map[int]int, c.sccs.NumComponents())
	var candidates []int
	for u := range c.sccs.Nodes() {
		count := 0
		for range c.sccs.InEdges(u) {
			count++
		}
		remainingInEdges[u] = count
		if count == 0 {
			candidates = append(candidates, u)
		}
	}

	return &OrderResolver{
		graggle:          c.g,
		sccs:             c.sccs,
		sccReps:          sccReps,
		seen:             make(map[int]struct{}),
		candidates:       candidates,
		remainingInEdges: remainingInEdges,
	}
}

// CandidateChain is a node, plus the sequence of nodes that naturally (but not
// necessarily) follow it, that could come next in the ordered output.
type CandidateChain struct {
	graggle graggle.Graggle
	id      identity.NodeId
}

// First returns the first element of the chain.
func (c CandidateChain) First() identity.NodeId { return c.id }

// Iter walks the chain starting from First, continuing for as long as the current
// node has exactly one out-neighbor and that out-neighbor has exactly one
// in-neighbor.
func (c CandidateChain) Iter() iter.Seq[identity.NodeId] {
	return func(yield func(identity.NodeId) bool) {
		cur := c.id
		for {
			if !yield(cur) {
				return
			}

			var next identity.NodeId
			outCount := 0
			for n := range c.graggle.OutNeighbors(cur) {
				outCount++
				if outCount == 1 {
					next = n
				} else {
					break
				}
			}
			if outCount != 1 {
				return
			}

			inCount := 0
			for range c.graggle.InNeighbors(next) {
				inCount++
				if inCount > 1 {
					break
				}
			}
			if inCount != 1 {
				return
			}
			cur = next
		}
	}
}

// OrderResolver interactively imposes a linear order on a graggle that has no
// cycles. Usually built via CycleResolver.IntoOrderResolver, which guarantees that.
type OrderResolver struct {
	graggle graggle.Graggle
	ordered []identity.NodeId

	sccs    *graph.Decomposition[identity.NodeId, graggle.Edge]
	sccReps []identity.NodeId

	seen             map[int]struct{}
	candidates       []int
	remainingInEdges map[int]int
}

// OrderedNodes returns the nodes already placed in the output order.
func (o *OrderResolver) OrderedNodes() []identity.NodeId {
	return o.ordered
}

// Candidates returns the current set of chains that could come next in the output.
func (o *OrderResolver) Candidates() iter.Seq[CandidateChain] {
	return func(yield func(CandidateChain) bool) {
		for _, u := range o.candidates {
			cc := CandidateChain{graggle: o.graggle, id: o.sccReps[u]}
			if !yield(cc) {
				return
			}
		}
	}
}

// advancePast removes scc from the candidate list and promotes any component whose
// remaining in-edge count has just dropped to zero, inserting new candidates at the
// position the removed one occupied (so the visible candidate order stays stable for
// an interactive caller).
func (o *OrderResolver) advancePast(scc int) {
	idx := -1
	for i, c := range o.candidates {
		if c == scc {
			idx = i
			break
		}
	}
	if idx < 0 {
		panic("resolver: tried to advance past a non-candidate")
	}
	o.candidates = append(o.candidates[:idx], o.candidates[idx+1:]...)

	for v := range graph.OutNeighbors[int, graph.ComponentEdge](o.sccs, scc) {
		remaining := o.remainingInEdges[v]
		if remaining < 1 {
			panic(fmt.Sprintf("resolver: component %d has no remaining in-edges to decrement", v))
		}
		remaining--
		o.remainingInEdges[v] = remaining
		if remaining == 0 {
			o.candidates = append(o.candidates[:idx], append([]int{v}, o.candidates[idx:]...)...)
		}
	}
}

// Choose places next next in the ordered output.
//
// Panics unless next is the representative of a current candidate component.
func (o *OrderResolver) Choose(next identity.NodeId) {
	idx := o.sccs.IndexOf(next)
	if !contains(o.candidates, idx) || o.sccReps[idx] != next {
		panic("resolver: chosen node is not a valid candidate")
	}

	o.ordered = append(o.ordered, next)
	o.seen[idx] = struct{}{}
	o.advancePast(idx)
}

// Delete removes u from consideration instead of including it in the ordered output.
//
// Panics unless u is the representative of a current candidate component.
func (o *OrderResolver) Delete(u identity.NodeId) {
	idx := o.sccs.IndexOf(u)
	if !contains(o.candidates, idx) || o.sccReps[idx] != u {
		panic("resolver: deleted node is not a valid candidate")
	}
	o.advancePast(idx)
}

// IsFinished reports whether every node has been placed or deleted.
func (o *OrderResolver) IsFinished() bool {
	return len(o.candidates) == 0
}

// Changes returns the Changes that, applied to the original graggle, produce the
// linear order just built.
//
// Assumes IsFinished(); callers that invoke this early will simply get Changes that
// delete everything not yet ordered.
func (o *OrderResolver) Changes() patch.Changes {
	var changes []patch.Change

	notDeleted := make(map[identity.NodeId]struct{}, len(o.ordered))
	for _, u := range o.ordered {
		notDeleted[u] = struct{}{}
	}
	for u := range o.graggle.Nodes() {
		if _, ok := notDeleted[u]; !ok {
			changes = append(changes, patch.DeleteNodeChange(u))
		}
	}

	for i := 1; i < len(o.ordered); i++ {
		u, v := o.ordered[i-1], o.ordered[i]
		linked := false
		for w := range o.graggle.OutNeighbors(u) {
			if w == v {
				linked = true
				break
			}
		}
		if !linked {
			changes = append(changes, patch.NewEdgeChange(u, v))
		}
	}

	return patch.Changes{Changes: changes}
}

func contains[T comparable](s []T, v T) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
