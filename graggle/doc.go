// Package graggle implements the graggle: a directed graph generalizing the notion of
// a file. Where a plain file is a strict sequence of lines, a graggle's lines (nodes)
// form a DAG-like structure that later gets linearized by the resolver. This is what
// lets two patches touch nearby lines without one having to know the other's exact
// insertion point.
//
// A node is Live or Deleted (tombstoned, never actually removed, so unapplying a
// patch can always restore it). An edge is Live, Pseudo, or Deleted; pseudo-
// edges are synthetic live-to-live edges inserted to skip over a deleted region, so
// that algorithms that only care about live structure (the resolver, in particular)
// never have to special-case tombstones. ResolvePseudoEdges is the subsystem that
// keeps them correct as nodes are deleted and undeleted, recomputing only the
// connected components that were actually touched.
//
// Built on mmap.Multimap (edge storage),
// partition.Partition (the deleted-node connectivity partition), and graph.Graph
// (the Live/Full views, and the DFS/weak-components machinery ResolvePseudoEdges
// depends on). Uses logrus for mutation tracing, matching the rest of this module's
// ambient logging.
package graggle
