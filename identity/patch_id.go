package identity

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"gopkg.in/yaml.v3"
)

// patchIDLen is the number of raw hash bytes backing a PatchId (sha256 digest size).
const patchIDLen = 32

// patchIDStringLen is the length of a PatchId rendered via String: the letter 'P'
// followed by the 44-character padded URL-safe base64 encoding of 32 bytes.
const patchIDStringLen = 1 + 44

// PatchId is a content hash identifying a patch.
//
// Two distinct patches must never share a PatchId; the engine rejects collisions at
// registration time. The reserved all-zero value, returned by CurPatchID, tags node
// references internal to a patch that has not yet been hashed; hashing a patch (see
// patch.UnidentifiedPatch.WriteOut) rewrites every such reference to the real id.
type PatchId struct {
	data [patchIDLen]byte
}

// CurPatchID returns the sentinel id used by a patch under construction to refer to
// itself before it has been hashed.
func CurPatchID() PatchId {
	return PatchId{}
}

// IsCur reports whether p is the CurPatchID sentinel.
func (p PatchId) IsCur() bool {
	return p == PatchId{}
}

// PatchIDFromHash builds a PatchId from a precomputed 32-byte digest.
func PatchIDFromHash(digest [patchIDLen]byte) PatchId {
	return PatchId{data: digest}
}

// Bytes returns the raw 32-byte digest backing p.
func (p PatchId) Bytes() []byte {
	out := make([]byte, patchIDLen)
	copy(out, p.data[:])
	return out
}

// Compare orders two PatchIds by their raw byte value. It is used both for ordered
// containers keyed by PatchId and to fix a canonical order for a patch's dependency
// list before hashing, so that two patches differing only in dep order hash alike.
func (p PatchId) Compare(other PatchId) int {
	return bytes.Compare(p.data[:], other.data[:])
}

// String renders p as 'P' followed by the URL-safe, padded base64 encoding of its
// 32 bytes (45 characters total). The leading letter guards against the first
// character of the base64 alphabet being '-', which a CLI could otherwise mistake
// for a flag.
func (p PatchId) String() string {
	var buf [patchIDStringLen]byte
	buf[0] = 'P'
	base64.URLEncoding.Encode(buf[1:], p.data[:])
	return string(buf[:])
}

// ParsePatchID parses the String form of a PatchId.
func ParsePatchID(s string) (PatchId, error) {
	if len(s) != patchIDStringLen || s[0] != 'P' {
		return PatchId{}, fmt.Errorf("identity: invalid PatchId length or prefix: %q", s)
	}
	decoded, err := base64.URLEncoding.DecodeString(s[1:])
	if err != nil {
		return PatchId{}, fmt.Errorf("identity: decoding PatchId: %w", err)
	}
	if len(decoded) != patchIDLen {
		return PatchId{}, fmt.Errorf("identity: PatchId decoded to %d bytes, want %d", len(decoded), patchIDLen)
	}
	var p PatchId
	copy(p.data[:], decoded)
	return p, nil
}

// MarshalYAML renders p as its String form, so that PatchIds appear as compact
// strings in the patch wire format and the database blob rather than byte arrays.
func (p PatchId) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

// UnmarshalYAML parses p from its String form.
func (p *PatchId) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParsePatchID(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
