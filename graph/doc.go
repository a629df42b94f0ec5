// Package graph defines the minimal directed-graph abstraction shared by the rest of
// this module, plus the handful of generic algorithms built on it: an explicit-stack
// depth-first search that yields a lazy event stream, Tarjan's strongly-connected-
// components algorithm, topological sort, and the stricter "linear order" check.
//
// A type only needs three methods (Nodes, OutEdges, InEdges) to be a Graph; graggle's
// LiveGraph/FullGraph views, chaingraggle's chain/cluster view, and the SCC
// decomposition this package itself produces all implement it, so algorithms written
// once against the interface run over any of them.
//
// The DFS is a Go 1.23 range-over-func iterator (iter.Seq) holding an explicit
// stack, so Tarjan and the topological-sort check are plain consumers of its
// Root/Edge/Retreat event stream.
package graph
