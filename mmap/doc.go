// Package mmap implements an ordered multimap: a key maps to an ordered set of
// values, and both keys and values can be range-queried in sorted order.
//
// This is the workhorse container for the rest of the module: graggle edges,
// back-edges, pseudo-edge reasons, and the partition's child links are all stored in
// a Multimap. The critical property it must preserve: because graggle.Edge orders
// Live < Pseudo < Deleted, taking a prefix of Multimap.Get(src) up to the first
// Deleted edge yields exactly the live-and-pseudo out-edges. That only works if Get
// and GetFrom walk values in sorted order, which is the reason this is a
// sorted-slice multimap rather than a bag of hash sets.
package mmap
