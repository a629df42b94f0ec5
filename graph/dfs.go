package graph

import "iter"

// Status reports whether an edge's destination is being visited for the first time
// or was already visited.
type Status int

const (
	// StatusNew means the DFS is about to descend into the destination.
	StatusNew Status = iota
	// StatusRepeated means the destination was already visited (or is currently being
	// visited), so the DFS does not descend into it again.
	StatusRepeated
)

// VisitKind tags which field of a Visit is meaningful.
type VisitKind int

const (
	// VisitRoot marks the start of a new DFS tree, at node U.
	VisitRoot VisitKind = iota
	// VisitEdge marks the traversal of the edge Src -> Dst.
	VisitEdge
	// VisitRetreat marks the DFS backtracking out of U, back to Parent (or to no
	// parent, if U was a root).
	VisitRetreat
)

// Visit is one event in a DFS traversal. Exactly the fields relevant to Kind are
// populated; see VisitRoot, VisitEdge, VisitRetreat.
type Visit[N comparable] struct {
	Kind VisitKind

	// Populated for VisitRoot and VisitRetreat.
	U N
	// Populated for VisitRetreat: the node the DFS backtracks to, if any.
	Parent    N
	HasParent bool

	// Populated for VisitEdge.
	Src, Dst N
	Status   Status
}

type dfsFrame[N comparable, E Edge[N]] struct {
	u         N
	neighbors []E
	pos       int
}

// DFS runs a depth-first search over every node of g (visiting unreached nodes as
// additional roots, in the order g.Nodes() produces them), yielding the sequence of
// Root/Edge/Retreat events.
//
// Traversal uses an explicit stack rather than recursion, both to avoid stack
// exhaustion on pathological inputs and because the event stream itself, not just
// the final visited set, is what Tarjan and TopSort consume.
func DFS[N comparable, E Edge[N]](g Graph[N, E]) iter.Seq[Visit[N]] {
	return dfs(g, g.Nodes())
}

// DFSFrom runs a depth-first search rooted only at root.
func DFSFrom[N comparable, E Edge[N]](g Graph[N, E], root N) iter.Seq[Visit[N]] {
	return dfs(g, func(yield func(N) bool) { yield(root) })
}

func dfs[N comparable, E Edge[N]](g Graph[N, E], roots iter.Seq[N]) iter.Seq[Visit[N]] {
	return func(yield func(Visit[N]) bool) {
		visited := make(map[N]bool)
		var stack []*dfsFrame[N, E]

		pushFrame := func(u N) {
			var neighbors []E
			for e := range g.OutEdges(u) {
				neighbors = append(neighbors, e)
			}
			stack = append(stack, &dfsFrame[N, E]{u: u, neighbors: neighbors})
		}

		curNode := func() (N, bool) {
			if len(stack) == 0 {
				var zero N
				return zero, false
			}
			return stack[len(stack)-1].u, true
		}

		next, stop := iter.Pull(roots)
		defer stop()

		for {
			if len(stack) > 0 {
				frame := stack[len(stack)-1]
				if frame.pos < len(frame.neighbors) {
					e := frame.neighbors[frame.pos]
					frame.pos++
					dst := e.Target()
					status := StatusNew
					if visited[dst] {
						status = StatusRepeated
					} else {
						visited[dst] = true
						pushFrame(dst)
					}
					if !yield(Visit[N]{Kind: VisitEdge, Src: frame.u, Dst: dst, Status: status}) {
						return
					}
					continue
				}
				stack = stack[:len(stack)-1]
				parent, hasParent := curNode()
				if !yield(Visit[N]{Kind: VisitRetreat, U: frame.u, Parent: parent, HasParent: hasParent}) {
					return
				}
				continue
			}

			root, ok := next()
			for ok && visited[root] {
				root, ok = next()
			}
			if !ok {
				return
			}
			visited[root] = true
			pushFrame(root)
			if !yield(Visit[N]{Kind: VisitRoot, U: root}) {
				return
			}
		}
	}
}
