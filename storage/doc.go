// Package storage holds everything about a repository that grows with its history:
// node contents, per-branch graggles (addressed indirectly through INode so a branch
// can be renamed without touching its data), the patch pool, and the patch dependency
// multimaps used to compute apply/unapply closures.
//
// Uses mmap.Multimap for the branch-patch membership and patch dependency indices.
package storage
