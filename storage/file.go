package storage

import "github.com/jneem/ojo/identity"

// File is a linear view of a graggle: a sequence of node ids together with their
// concatenated contents, as produced by Repo.File or synthesized directly from raw
// bytes via FromBytes.
type File struct {
	ids        []identity.NodeId
	contents   []byte
	boundaries []int
}

// FromIDs builds a File from an explicit node order, looking up each node's contents
// in s. Panics if any id lacks recorded contents: callers are expected to pass only
// ids already verified present (e.g. from a linear order over a live graggle).
func FromIDs(ids []identity.NodeId, s *Storage) File {
	contents := make([]byte, 0)
	boundaries := make([]int, 0, len(ids)+1)
	for _, id := range ids {
		boundaries = append(boundaries, len(contents))
		contents = append(contents, s.Contents(id)...)
	}
	boundaries = append(boundaries, len(contents))
	return File{
		ids:        append([]identity.NodeId(nil), ids...),
		contents:   contents,
		boundaries: boundaries,
	}
}

// FromBytes splits bytes into lines (each line keeping its trailing '\n', if any; if
// the buffer doesn't end in '\n' the final line has none) and synthesizes a NodeId
// for each one via identity.CurNodeID, starting from zero.
func FromBytes(bytes []byte) File {
	contents := append([]byte(nil), bytes...)

	boundaries := []int{0}
	for i, b := range bytes {
		if b == '\n' {
			boundaries = append(boundaries, i+1)
		}
	}
	if len(bytes) > 0 && bytes[len(bytes)-1] != '\n' {
		boundaries = append(boundaries, len(bytes))
	}

	numNodes := len(boundaries) - 1
	ids := make([]identity.NodeId, numNodes)
	for i := range ids {
		ids[i] = identity.CurNodeID(uint64(i))
	}

	return File{ids: ids, contents: contents, boundaries: boundaries}
}

// NumNodes returns how many lines (nodes) f has.
func (f File) NumNodes() int {
	return len(f.ids)
}

// Line returns the contents of the node at idx, including its trailing '\n' if it
// had one.
func (f File) Line(idx int) []byte {
	return f.contents[f.boundaries[idx]:f.boundaries[idx+1]]
}

// LineID returns the id of the node at idx.
func (f File) LineID(idx int) identity.NodeId {
	return f.ids[idx]
}

// AsBytes returns f's full contents as a single byte slice.
func (f File) AsBytes() []byte {
	return f.contents
}
