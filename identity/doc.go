// Package identity defines the two globally-unique identifiers that every other
// package in this module builds on: PatchId, a content hash identifying an immutable
// patch, and NodeId, a (PatchId, counter) pair identifying a node within a graggle.
//
// Neither type depends on graph, storage, or patch structure, so it sits at the
// bottom of the module's dependency graph and can be imported everywhere.
package identity
