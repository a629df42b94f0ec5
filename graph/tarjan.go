package graph

import "iter"

type nodeState struct {
	onStack bool
	index   int
	lowlink int
}

// Decomposition is the output of Tarjan: g's nodes partitioned into strongly
// connected components, numbered in topological order (every edge between distinct
// components goes from a lower index to a higher one), and itself usable as a Graph
// over component indices.
type Decomposition[N comparable, E Edge[N]] struct {
	sets      [][]N
	nodeIndex map[N]int
	edges     map[int][]int
	backEdges map[int][]int
}

// Tarjan decomposes g into strongly connected components via Tarjan's algorithm,
// running a single DFS and tracking each node's discovery index and lowlink.
func Tarjan[N comparable, E Edge[N]](g Graph[N, E]) *Decomposition[N, E] {
	states := make(map[N]*nodeState)
	var stack []N
	nextIndex := 0
	var sccs [][]N

	for visit := range DFS(g) {
		switch visit.Kind {
		case VisitRoot:
			stack = append(stack, visit.U)
			states[visit.U] = &nodeState{onStack: true, index: nextIndex, lowlink: nextIndex}
			nextIndex++

		case VisitEdge:
			if visit.Status == StatusNew {
				stack = append(stack, visit.Dst)
				states[visit.Dst] = &nodeState{onStack: true, index: nextIndex, lowlink: nextIndex}
				nextIndex++
			} else if states[visit.Dst].onStack {
				if idx := states[visit.Dst].index; idx < states[visit.Src].lowlink {
					states[visit.Src].lowlink = idx
				}
			}

		case VisitRetreat:
			s := states[visit.U]
			if visit.HasParent {
				if p := states[visit.Parent]; s.lowlink < p.lowlink {
					p.lowlink = s.lowlink
				}
			}
			if s.lowlink == s.index {
				var scc []N
				for {
					v := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					states[v].onStack = false
					scc = append(scc, v)
					if v == visit.U {
						break
					}
				}
				sccs = append(sccs, scc)
			}
		}
	}

	// An SCC is emitted only after everything reachable from it has finished, so
	// emission order is reverse topological; reversing puts the components in
	// topological order, edges running from lower index to higher.
	for i, j := 0, len(sccs)-1; i < j; i, j = i+1, j-1 {
		sccs[i], sccs[j] = sccs[j], sccs[i]
	}

	return newDecomposition(g, sccs)
}

func newDecomposition[N comparable, E Edge[N]](g Graph[N, E], sets [][]N) *Decomposition[N, E] {
	nodeIndex := make(map[N]int)
	for i, set := range sets {
		for _, u := range set {
			nodeIndex[u] = i
		}
	}

	edges := make(map[int][]int)
	backEdges := make(map[int][]int)
	for u := range g.Nodes() {
		uIdx := nodeIndex[u]
		for v := range OutNeighbors(g, u) {
			vIdx := nodeIndex[v]
			if uIdx == vIdx {
				continue
			}
			edges[uIdx] = append(edges[uIdx], vIdx)
			backEdges[vIdx] = append(backEdges[vIdx], uIdx)
		}
	}

	return &Decomposition[N, E]{sets: sets, nodeIndex: nodeIndex, edges: edges, backEdges: backEdges}
}

// NumComponents returns the number of strongly connected components.
func (d *Decomposition[N, E]) NumComponents() int {
	return len(d.sets)
}

// Parts returns each component's member set, in component-index order.
func (d *Decomposition[N, E]) Parts() iter.Seq2[int, []N] {
	return func(yield func(int, []N) bool) {
		for i, set := range d.sets {
			if !yield(i, set) {
				return
			}
		}
	}
}

// Part returns the member set of component i.
func (d *Decomposition[N, E]) Part(i int) []N {
	return d.sets[i]
}

// IndexOf returns the component index containing u.
func (d *Decomposition[N, E]) IndexOf(u N) int {
	return d.nodeIndex[u]
}

// ComponentEdge is the trivial int-valued Edge used by Decomposition's own Graph
// implementation over component indices.
type ComponentEdge struct{ idx int }

// Target returns the component index this edge points to.
func (e ComponentEdge) Target() int { return e.idx }

// Nodes returns every component index, 0..NumComponents.
func (d *Decomposition[N, E]) Nodes() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; i < len(d.sets); i++ {
			if !yield(i) {
				return
			}
		}
	}
}

// OutEdges returns the component indices that component u has an edge to.
func (d *Decomposition[N, E]) OutEdges(u int) iter.Seq[ComponentEdge] {
	return func(yield func(ComponentEdge) bool) {
		for _, v := range d.edges[u] {
			if !yield(ComponentEdge{v}) {
				return
			}
		}
	}
}

// InEdges returns the component indices that have an edge to component u.
func (d *Decomposition[N, E]) InEdges(u int) iter.Seq[ComponentEdge] {
	return func(yield func(ComponentEdge) bool) {
		for _, v := range d.backEdges[u] {
			if !yield(ComponentEdge{v}) {
				return
			}
		}
	}
}
