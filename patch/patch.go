package patch

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jneem/ojo/identity"
)

// hashingWriter wraps an io.Writer, accumulating a SHA256 digest of everything
// written through it. Used to derive a patch's id from the exact bytes of its
// canonical YAML encoding.
type hashingWriter struct {
	w      io.Writer
	hasher hash.Hash
}

func newHashingWriter(w io.Writer) *hashingWriter {
	return &hashingWriter{w: w, hasher: sha256.New()}
}

func (hw *hashingWriter) Write(p []byte) (int, error) {
	hw.hasher.Write(p)
	return hw.w.Write(p)
}

func (hw *hashingWriter) sum() [32]byte {
	var out [32]byte
	copy(out[:], hw.hasher.Sum(nil))
	return out
}

// hashingReader wraps an io.Reader, accumulating a SHA256 digest of everything read
// through it. Used to recompute a patch's id while parsing it back.
type hashingReader struct {
	r      io.Reader
	hasher hash.Hash
}

func newHashingReader(r io.Reader) *hashingReader {
	return &hashingReader{r: r, hasher: sha256.New()}
}

func (hr *hashingReader) Read(p []byte) (int, error) {
	n, err := hr.r.Read(p)
	hr.hasher.Write(p[:n])
	return n, err
}

func (hr *hashingReader) sum() [32]byte {
	var out [32]byte
	copy(out[:], hr.hasher.Sum(nil))
	return out
}

// PatchHeader is metadata that does not affect what a patch does, but is still
// hashed as part of it: changing the author or description of a patch produces a
// different PatchId.
type PatchHeader struct {
	Author      string    `yaml:"author"`
	Description string    `yaml:"description"`
	Timestamp   time.Time `yaml:"timestamp"`
}

// UnidentifiedPatch is a patch that has not yet been hashed into a Patch. Every
// self-reference in its Changes carries the identity.CurPatchID sentinel rather than
// a real id, since the id isn't known until the patch's bytes are hashed. It cannot
// be applied to a repository, only written out or inspected.
type UnidentifiedPatch struct {
	Header  PatchHeader        `yaml:"header"`
	Changes Changes            `yaml:"changes"`
	Deps    []identity.PatchId `yaml:"deps"`
}

// NewUnidentifiedPatch builds an UnidentifiedPatch from authorship metadata and a
// batch of changes, deriving Deps from every non-cur PatchId the changes reference.
// Deps is sorted by raw PatchId byte value so that two patches with semantically
// identical dependency sets hash identically regardless of collection order.
func NewUnidentifiedPatch(author, description string, changes Changes, now time.Time) UnidentifiedPatch {
	deps := changes.Deps()
	sort.Slice(deps, func(i, j int) bool { return deps[i].Compare(deps[j]) < 0 })
	return UnidentifiedPatch{
		Header: PatchHeader{
			Author:      author,
			Description: description,
			Timestamp:   now,
		},
		Changes: changes,
		Deps:    deps,
	}
}

// setID stamps up with id, rewriting every cur-tagged NodeId in its changes, and
// returns the resulting Patch.
func (up UnidentifiedPatch) setID(id identity.PatchId) Patch {
	changes := up.Changes
	changes.setPatchID(id)
	return Patch{
		id:      id,
		header:  up.Header,
		changes: changes,
		deps:    up.Deps,
	}
}

// WriteOut serializes up as canonical YAML to w, computing its PatchId as the SHA256
// hash of the exact bytes written, and returns the resulting stamped Patch.
func (up UnidentifiedPatch) WriteOut(w io.Writer) (Patch, error) {
	hw := newHashingWriter(w)
	enc := yaml.NewEncoder(hw)
	if err := enc.Encode(up); err != nil {
		return Patch{}, fmt.Errorf("patch: encoding unidentified patch: %w", err)
	}
	if err := enc.Close(); err != nil {
		return Patch{}, fmt.Errorf("patch: closing patch encoder: %w", err)
	}
	return up.setID(identity.PatchIDFromHash(hw.sum())), nil
}

// Patch is a Changes batch together with metadata and a content-derived id.
type Patch struct {
	id      identity.PatchId
	header  PatchHeader
	changes Changes
	deps    []identity.PatchId
}

// ParseRegisteredPatch parses a Patch from r, deriving its id as the SHA256 hash of
// the exact bytes read, without comparing it against any expected id. This is the
// form used when registering external patch data whose id isn't known in advance:
// the id comes out of the parse, rather than going in.
func ParseRegisteredPatch(r io.Reader) (Patch, error) {
	hr := newHashingReader(r)
	var up UnidentifiedPatch
	dec := yaml.NewDecoder(hr)
	if err := dec.Decode(&up); err != nil {
		return Patch{}, fmt.Errorf("patch: decoding patch: %w", err)
	}
	return up.setID(identity.PatchIDFromHash(hr.sum())), nil
}

// FromReader parses a Patch from r, recomputing its id as the SHA256 hash of the
// exact bytes read. wantID is the id the caller expected to find (e.g. taken from the
// patch's filename in storage); if the recomputed hash disagrees, FromReader returns
// an IdMismatchError rather than a patch with a silently wrong identity.
func FromReader(r io.Reader, wantID identity.PatchId) (Patch, error) {
	p, err := ParseRegisteredPatch(r)
	if err != nil {
		return Patch{}, err
	}
	if p.id != wantID {
		return Patch{}, &IdMismatchError{Want: wantID, Got: p.id}
	}
	return p, nil
}

// IdMismatchError reports that a patch's recomputed content hash disagreed with the
// id it was expected to have (typically the id encoded in its filename).
type IdMismatchError struct {
	Want, Got identity.PatchId
}

func (e *IdMismatchError) Error() string {
	return fmt.Sprintf("patch: id mismatch: want %s, got %s", e.Want, e.Got)
}

// FromParts reassembles a Patch from already-validated parts (id, header, changes,
// deps) without recomputing or verifying the content hash. Used when restoring a
// Patch from a repository's own database, where the hash was already verified once
// when the patch was first registered.
func FromParts(id identity.PatchId, header PatchHeader, changes Changes, deps []identity.PatchId) Patch {
	return Patch{id: id, header: header, changes: changes, deps: deps}
}

// ID returns p's unique, content-derived id.
func (p Patch) ID() identity.PatchId { return p.id }

// Header returns p's metadata.
func (p Patch) Header() PatchHeader { return p.header }

// Changes returns the batch of changes p makes.
func (p Patch) Changes() Changes { return p.changes }

// Deps returns the ids of every patch that must be applied before p, in the
// canonical ascending-byte order fixed at authoring time.
func (p Patch) Deps() []identity.PatchId { return p.deps }

// Unidentified reconstructs p's UnidentifiedPatch form, rewriting every NodeId that p
// itself introduced back to the CurPatchID sentinel. Writing the result back out via
// WriteOut reproduces p's id and its original wire bytes.
func (p Patch) Unidentified() UnidentifiedPatch {
	return UnidentifiedPatch{
		Header:  p.header,
		Changes: p.changes.unstamp(p.id),
		Deps:    append([]identity.PatchId(nil), p.deps...),
	}
}

// WriteTo serializes p's canonical wire bytes to w: the same format
// ParseRegisteredPatch/FromReader consume, and the format a caller that wants to
// persist or transmit a Patch should use.
func (p Patch) WriteTo(w io.Writer) error {
	_, err := p.Unidentified().WriteOut(w)
	return err
}

// Equal reports whether p and other are the same patch: same id, and (since two
// different patches are never supposed to share an id) the same header, changes, and
// deps too. Registering a patch whose id collides with a known one but whose content
// differs is exactly the ErrPatchCollision case this distinguishes.
func (p Patch) Equal(other Patch) bool {
	if p.id != other.id {
		return false
	}
	if p.header.Author != other.header.Author ||
		p.header.Description != other.header.Description ||
		!p.header.Timestamp.Equal(other.header.Timestamp) {
		return false
	}
	if len(p.deps) != len(other.deps) {
		return false
	}
	for i := range p.deps {
		if p.deps[i] != other.deps[i] {
			return false
		}
	}
	return p.changes.equal(other.changes)
}
