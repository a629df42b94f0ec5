// Package ojo is the outward-facing orchestrator of a content-addressed,
// patch-based version control engine whose unit of storage is a graggle, a
// directed graph of tombstoned nodes, rather than a flat sequence of bytes.
//
// Repo ties together storage.Storage (per-branch graggles, the patch pool, and
// dependency indices), patch.Patch (immutable, content-hashed bundles of graph
// mutations), and graggle.Data (the mutable graph itself, including the
// incrementally-maintained pseudo-edges that keep a live subgraph with deleted
// interior nodes usefully connected). Applying or unapplying a patch always closes
// over its declared dependencies first, and always leaves the graggle's invariants
// intact by the time control returns to the caller.
package ojo
