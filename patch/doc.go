// Package patch defines the unit of change that mutates a graggle: Change (one node
// or edge mutation), Changes (an ordered batch), and the Patch/UnidentifiedPatch pair
// that gives a batch of changes a content-derived identity.
//
// A patch's id is the SHA256 hash of its own canonical YAML encoding. Since a patch's
// changes may need to refer to nodes the patch itself introduces, and those changes
// are part of what gets hashed, authoring happens in two stages: an UnidentifiedPatch
// whose self-references carry the identity.CurPatchID sentinel, hashed via WriteOut
// into a Patch whose self-references have been rewritten ("stamped") to the freshly
// computed id.
package patch
