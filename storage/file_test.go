package storage_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jneem/ojo/identity"
	"github.com/jneem/ojo/storage"
)

func TestFromBytesEmpty(t *testing.T) {
	require := require.New(t)
	f := storage.FromBytes(nil)
	require.Equal(0, f.NumNodes())
}

func TestFromBytesOneEmptyLine(t *testing.T) {
	require := require.New(t)
	f := storage.FromBytes([]byte("\n"))
	require.Equal(1, f.NumNodes())
	require.Equal([]byte("\n"), f.Line(0))
}

func TestFromBytesOneLineNoNewline(t *testing.T) {
	require := require.New(t)
	f := storage.FromBytes([]byte("test"))
	require.Equal(1, f.NumNodes())
	require.Equal([]byte("test"), f.Line(0))
}

func TestFromBytesOneLine(t *testing.T) {
	require := require.New(t)
	f := storage.FromBytes([]byte("test\n"))
	require.Equal(1, f.NumNodes())
	require.Equal([]byte("test\n"), f.Line(0))
}

func TestFromBytesTwoLines(t *testing.T) {
	require := require.New(t)
	f := storage.FromBytes([]byte("test1\ntest2\n"))
	require.Equal(2, f.NumNodes())
	require.Equal([]byte("test1\n"), f.Line(0))
	require.Equal([]byte("test2\n"), f.Line(1))
	require.Equal([]byte("test1\ntest2\n"), f.AsBytes())
}

func TestFromIDsConcatenatesContentsInOrder(t *testing.T) {
	require := require.New(t)
	s := storage.New()

	n0, n1 := identity.CurNodeID(0), identity.CurNodeID(1)
	s.AddContents(n0, []byte("first\n"))
	s.AddContents(n1, []byte("second\n"))

	f := storage.FromIDs([]identity.NodeId{n0, n1}, s)
	require.Equal(2, f.NumNodes())
	require.Equal([]byte("first\n"), f.Line(0))
	require.Equal([]byte("second\n"), f.Line(1))
	require.Equal(n0, f.LineID(0))
	require.Equal([]byte("first\nsecond\n"), f.AsBytes())
}
