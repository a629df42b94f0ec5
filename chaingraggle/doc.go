// Package chaingraggle decomposes a graggle into maximal chains: runs of nodes each
// having at most one in-neighbor and at most one out-neighbor, outside of any
// nontrivial strongly connected component. Most graggles arising in practice are
// long chains (a totally ordered graggle, i.e. a File, is one chain), so collapsing
// each chain to a single node gives a much smaller graph, useful for rendering.
package chaingraggle
