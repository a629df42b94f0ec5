// Package linediff computes a line-level diff between two sequences, in the style of
// a traditional text diff: each line of the old and new sequence is classified as
// kept (present in both), deleted (old only), or new (new only).
//
// patch.FromDiff turns a LineDiff sequence into Change values, so this package's
// output feeds directly into patch construction. The root package's Repo computes
// that sequence through the Algorithm interface, so a caller can swap in a different
// diffing strategy (ojo.WithDiffAlgorithm) without touching patch construction itself.
//
// The algorithm: match the common prefix/suffix first, find the lines that are
// unique in both remaining middles, take the longest increasing subsequence of their
// cross-referenced positions (the "patience diff" trick), and fill in the gaps
// between LIS anchors with plain prefix/suffix matching.
package linediff
